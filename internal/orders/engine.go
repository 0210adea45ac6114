package orders

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/diewo77/postres-app/internal/models"
	"github.com/diewo77/postres-app/internal/store"
)

var (
	ErrEmptyOrder    = errors.New("empty_order")
	ErrBlankCustomer = errors.New("blank_customer_name")
	// ErrNotFound is returned by status mutations on an unknown order id.
	// The reference app re-persisted the unchanged list instead; a missing
	// id here is a stale screen, and the caller should reload.
	ErrNotFound       = errors.New("order_not_found")
	ErrUnknownPayment = errors.New("unknown_payment_method")
)

// Engine owns creation, mutation, aggregation, and archival of orders.
type Engine struct {
	store *store.KV
}

func NewEngine(kv *store.KV) *Engine { return &Engine{store: kv} }

func loadOrders(ctx context.Context, kv *store.KV, key string) ([]models.Order, error) {
	var orders []models.Order
	if _, err := kv.Get(ctx, key, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// sortOrders applies the engine's ordering contract: undelivered orders
// first, then most recent first. The sort is stable so createdAt ties
// keep their prior relative order.
func sortOrders(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if a.DeliveryStatus != b.DeliveryStatus {
			return !a.DeliveryStatus
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// List returns the current orders sorted per the ordering contract.
func (e *Engine) List(ctx context.Context) ([]models.Order, error) {
	orders, err := loadOrders(ctx, e.store, store.KeyOrders)
	if err != nil {
		return nil, err
	}
	sortOrders(orders)
	return orders, nil
}

// Archived returns the historical collection, oldest cycle first.
func (e *Engine) Archived(ctx context.Context) ([]models.Order, error) {
	return loadOrders(ctx, e.store, store.KeyArchivedOrders)
}

// Create registers a new order from the quantities selected per product
// id. Selections whose product is not in available are dropped silently:
// they are stale picks for products that went unavailable while the
// order was being composed. Prices are snapshotted into the line items
// at this moment; later catalog edits never change this order.
func (e *Engine) Create(ctx context.Context, customerName string, selections map[string]int, available []models.Product) (*models.Order, error) {
	items := make([]models.OrderItem, 0, len(selections))
	total := decimal.Zero
	for _, p := range available {
		qty := selections[p.ID]
		if qty <= 0 {
			continue
		}
		item := models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  qty,
		}
		items = append(items, item)
		total = total.Add(item.Subtotal())
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, ErrBlankCustomer
	}

	order := models.Order{
		ID:             uuid.NewString(),
		CustomerName:   strings.TrimSpace(customerName),
		CreatedAt:      time.Now().UTC(),
		Items:          items,
		Total:          total,
		PaymentStatus:  models.PaymentPending,
		DeliveryStatus: false,
	}
	orders, err := loadOrders(ctx, e.store, store.KeyOrders)
	if err != nil {
		return nil, err
	}
	orders = append(orders, order)
	if err := e.store.Set(ctx, store.KeyOrders, orders); err != nil {
		return nil, err
	}
	return &order, nil
}

// SetPaymentStatus records how an order was paid. Selecting the method
// already active toggles the order back to pending.
func (e *Engine) SetPaymentStatus(ctx context.Context, orderID string, method models.PaymentStatus) (*models.Order, error) {
	if !method.Method() {
		return nil, ErrUnknownPayment
	}
	orders, err := loadOrders(ctx, e.store, store.KeyOrders)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			if orders[i].PaymentStatus == method {
				orders[i].PaymentStatus = models.PaymentPending
			} else {
				orders[i].PaymentStatus = method
			}
			if err := e.store.Set(ctx, store.KeyOrders, orders); err != nil {
				return nil, err
			}
			o := orders[i]
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

// ToggleDelivery flips the delivery flag and re-sorts the whole
// collection before persisting: delivered orders must sink below
// pending ones on every mutation, not just on load. Returns the sorted
// collection for the caller to render.
func (e *Engine) ToggleDelivery(ctx context.Context, orderID string) ([]models.Order, error) {
	orders, err := loadOrders(ctx, e.store, store.KeyOrders)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range orders {
		if orders[i].ID == orderID {
			orders[i].DeliveryStatus = !orders[i].DeliveryStatus
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}
	sortOrders(orders)
	if err := e.store.Set(ctx, store.KeyOrders, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Delete removes an order from the current collection. No tombstone;
// deleting an absent id is a no-op. A copy already archived is not
// touched.
func (e *Engine) Delete(ctx context.Context, orderID string) error {
	orders, err := loadOrders(ctx, e.store, store.KeyOrders)
	if err != nil {
		return err
	}
	kept := orders[:0]
	for _, o := range orders {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	return e.store.Set(ctx, store.KeyOrders, kept)
}

// Archive moves all current orders onto the end of the archive and
// clears the current collection, marking the start of a new sales
// cycle. Both writes happen in one store transaction, closing the
// crash window the reference app had between its two writes. Returns
// the number of orders archived; zero with no writes when there is
// nothing to archive.
func (e *Engine) Archive(ctx context.Context) (int, error) {
	archived := 0
	err := e.store.Update(ctx, func(tx *store.KV) error {
		current, err := loadOrders(ctx, tx, store.KeyOrders)
		if err != nil {
			return err
		}
		if len(current) == 0 {
			return nil
		}
		history, err := loadOrders(ctx, tx, store.KeyArchivedOrders)
		if err != nil {
			return err
		}
		history = append(history, current...)
		if err := tx.Set(ctx, store.KeyArchivedOrders, history); err != nil {
			return err
		}
		if err := tx.Remove(ctx, store.KeyOrders); err != nil {
			return err
		}
		archived = len(current)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return archived, nil
}
