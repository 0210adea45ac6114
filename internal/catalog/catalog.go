package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/diewo77/postres-app/internal/models"
	"github.com/diewo77/postres-app/internal/store"
)

var (
	// ErrNotFound is returned by Update and ToggleAvailability when no
	// product has the given id. The reference app silently no-ops here;
	// we treat a missing id as a caller bug instead.
	ErrNotFound     = errors.New("product_not_found")
	ErrBlankName    = errors.New("blank_name")
	ErrInvalidPrice = errors.New("invalid_price")
)

// Service owns the product catalog collection.
type Service struct {
	store *store.KV
}

func NewService(kv *store.KV) *Service { return &Service{store: kv} }

func (s *Service) load(ctx context.Context, kv *store.KV) ([]models.Product, error) {
	var products []models.Product
	if _, err := kv.Get(ctx, store.KeyProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// List returns all products in store order.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.load(ctx, s.store)
}

// ListAvailable returns the products flagged available today, in store
// order. This is the subset offered during order registration.
func (s *Service) ListAvailable(ctx context.Context) ([]models.Product, error) {
	products, err := s.load(ctx, s.store)
	if err != nil {
		return nil, err
	}
	available := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.AvailableToday {
			available = append(available, p)
		}
	}
	return available, nil
}

func validate(name string, unitPrice decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	if unitPrice.Sign() <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Add creates a product with a fresh id, available today by default.
func (s *Service) Add(ctx context.Context, name string, unitPrice decimal.Decimal) (*models.Product, error) {
	if err := validate(name, unitPrice); err != nil {
		return nil, err
	}
	products, err := s.load(ctx, s.store)
	if err != nil {
		return nil, err
	}
	p := models.Product{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(name),
		UnitPrice:      unitPrice,
		AvailableToday: true,
	}
	products = append(products, p)
	if err := s.store.Set(ctx, store.KeyProducts, products); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces name and price in place. AvailableToday is untouched;
// existing orders keep their snapshots.
func (s *Service) Update(ctx context.Context, id, name string, unitPrice decimal.Decimal) (*models.Product, error) {
	if err := validate(name, unitPrice); err != nil {
		return nil, err
	}
	products, err := s.load(ctx, s.store)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			products[i].Name = strings.TrimSpace(name)
			products[i].UnitPrice = unitPrice
			if err := s.store.Set(ctx, store.KeyProducts, products); err != nil {
				return nil, err
			}
			p := products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes the product unconditionally. No cascade: line-item
// snapshots in historical orders stay valid. Deleting an absent id is a
// no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	products, err := s.load(ctx, s.store)
	if err != nil {
		return err
	}
	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.store.Set(ctx, store.KeyProducts, kept)
}

// ToggleAvailability flips the availableToday flag.
func (s *Service) ToggleAvailability(ctx context.Context, id string) (*models.Product, error) {
	products, err := s.load(ctx, s.store)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			products[i].AvailableToday = !products[i].AvailableToday
			if err := s.store.Set(ctx, store.KeyProducts, products); err != nil {
				return nil, err
			}
			p := products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}
