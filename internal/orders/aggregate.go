package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diewo77/postres-app/internal/models"
	"github.com/diewo77/postres-app/internal/store"
)

// ProductTotal is one row of the production consolidation. UnitPrice is
// the first price seen under the group key; when historical orders
// recorded different prices for the same product this field shows only
// the first-seen value. The grand totals stay correct regardless,
// because each line's own subtotal accrues into them.
type ProductTotal struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Consolidation is the rollup of all current orders into per-product
// quantity and revenue totals. Products keeps first-seen key order so
// rendering and export are deterministic. FallbackItems counts line
// items grouped by name because they carried no product id — a degraded
// mode worth watching, since same-named items with different prices
// merge under one row.
type Consolidation struct {
	Products      []ProductTotal  `json:"products"`
	TotalItems    int             `json:"totalItems"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	FallbackItems int             `json:"fallbackItems"`
}

// Aggregate rolls up order line items into per-product totals. Orders
// without a well-formed item list contribute nothing; they never fail
// the whole aggregation. The group key is the item's product id, or a
// name-derived fallback when the id is missing.
func Aggregate(orders []models.Order) Consolidation {
	c := Consolidation{Products: []ProductTotal{}, TotalRevenue: decimal.Zero}
	index := map[string]int{}
	for _, o := range orders {
		for _, item := range o.Items {
			key := item.ProductID
			if key == "" {
				key = "name:" + item.Name
				c.FallbackItems++
			}
			i, ok := index[key]
			if !ok {
				i = len(c.Products)
				index[key] = i
				c.Products = append(c.Products, ProductTotal{
					ProductID: item.ProductID,
					Name:      item.Name,
					UnitPrice: item.UnitPrice,
					LineTotal: decimal.Zero,
				})
			}
			sub := item.Subtotal()
			c.Products[i].Quantity += item.Quantity
			c.Products[i].LineTotal = c.Products[i].LineTotal.Add(sub)
			c.TotalItems += item.Quantity
			c.TotalRevenue = c.TotalRevenue.Add(sub)
		}
	}
	return c
}

// Consolidate aggregates the current orders collection.
func (e *Engine) Consolidate(ctx context.Context) (Consolidation, error) {
	orders, err := loadOrders(ctx, e.store, store.KeyOrders)
	if err != nil {
		return Consolidation{}, err
	}
	return Aggregate(orders), nil
}

// ShareText renders the consolidation as the plain-text production
// summary the seller shares with the kitchen.
func (c Consolidation) ShareText() string {
	var b strings.Builder
	b.WriteString("📝 Consolidado de Pedidos:\n\n")
	b.WriteString("--------------------------------------\n")
	for _, p := range c.Products {
		fmt.Fprintf(&b, "Postre: %s\n", p.Name)
		fmt.Fprintf(&b, "Cantidad: %d\n", p.Quantity)
		fmt.Fprintf(&b, "Precio Unitario: $%s\n", p.UnitPrice.String())
		fmt.Fprintf(&b, "Total: $%s\n", p.LineTotal.String())
		b.WriteString("--------------------------------------\n")
	}
	fmt.Fprintf(&b, "TOTAL GENERAL DE POSTRES: %d\n", c.TotalItems)
	fmt.Fprintf(&b, "INGRESO TOTAL: $%s\n\n", c.TotalRevenue.String())
	b.WriteString("¡Gracias por tu compra! 😊")
	return b.String()
}
