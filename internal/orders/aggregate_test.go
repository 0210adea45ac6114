package orders

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/postres-app/internal/models"
)

func item(productID, name, unitPrice string, qty int) models.OrderItem {
	return models.OrderItem{ProductID: productID, Name: name, UnitPrice: price(unitPrice), Quantity: qty}
}

func orderWith(items ...models.OrderItem) models.Order {
	return models.Order{ID: "o", CustomerName: "c", CreatedAt: time.Now(), Items: items}
}

func TestAggregateTwoOrdersSameProduct(t *testing.T) {
	c := Aggregate([]models.Order{
		orderWith(item("p1", "Flan", "2000", 2)),
		orderWith(item("p1", "Flan", "2000", 1)),
	})
	require.Len(t, c.Products, 1)
	require.Equal(t, "p1", c.Products[0].ProductID)
	require.Equal(t, 3, c.Products[0].Quantity)
	require.True(t, c.Products[0].LineTotal.Equal(price("6000")))
	require.Equal(t, 3, c.TotalItems)
	require.True(t, c.TotalRevenue.Equal(price("6000")))
	require.Zero(t, c.FallbackItems)
}

func TestAggregateGrandTotalsInvariant(t *testing.T) {
	orders := []models.Order{
		orderWith(item("p1", "Flan", "2000", 2), item("p2", "Brownie", "1500.50", 3)),
		orderWith(item("", "Flan", "1800", 1)),
		{ID: "malformed", Items: nil},
		orderWith(item("p1", "Flan", "2100", 4)),
	}
	c := Aggregate(orders)

	wantItems := 0
	wantRevenue := decimal.Zero
	for _, o := range orders {
		for _, it := range o.Items {
			wantItems += it.Quantity
			wantRevenue = wantRevenue.Add(it.Subtotal())
		}
	}
	require.Equal(t, wantItems, c.TotalItems)
	require.True(t, c.TotalRevenue.Equal(wantRevenue), "got %s want %s", c.TotalRevenue, wantRevenue)

	// Group line totals add up to the grand total as well.
	sum := decimal.Zero
	for _, p := range c.Products {
		sum = sum.Add(p.LineTotal)
	}
	require.True(t, sum.Equal(wantRevenue))
}

func TestAggregateIdempotent(t *testing.T) {
	orders := []models.Order{
		orderWith(item("p1", "Flan", "2000", 2)),
		orderWith(item("p2", "Brownie", "1500", 1), item("", "Suspiro", "900", 2)),
	}
	a := Aggregate(orders)
	b := Aggregate(orders)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("aggregate not idempotent:\n%+v\n%+v", a, b)
	}
}

func TestAggregateFirstSeenOrderAndPrice(t *testing.T) {
	// Price changed between historical orders: the group shows the
	// first-seen price while totals use each line's own subtotal.
	c := Aggregate([]models.Order{
		orderWith(item("p2", "Brownie", "1500", 1)),
		orderWith(item("p1", "Flan", "2000", 1)),
		orderWith(item("p1", "Flan", "2500", 2)),
	})
	require.Equal(t, "p2", c.Products[0].ProductID, "first-seen key order")
	require.Equal(t, "p1", c.Products[1].ProductID)
	require.True(t, c.Products[1].UnitPrice.Equal(price("2000")), "first-seen price kept")
	require.True(t, c.Products[1].LineTotal.Equal(price("7000")))
	require.True(t, c.TotalRevenue.Equal(price("8500")))
}

func TestAggregateNameFallbackKey(t *testing.T) {
	// Items without a product id group by name. Two differently priced
	// snapshots of the same name merge under one row; only the shared
	// price field degrades, the totals stay exact.
	c := Aggregate([]models.Order{
		orderWith(item("", "Flan", "2000", 1)),
		orderWith(item("", "Flan", "1800", 2)),
		orderWith(item("p1", "Flan", "2000", 1)),
	})
	require.Len(t, c.Products, 2)
	require.Equal(t, 3, c.Products[0].Quantity)
	require.True(t, c.Products[0].LineTotal.Equal(price("5600")))
	require.Equal(t, 2, c.FallbackItems)
	require.True(t, c.TotalRevenue.Equal(price("7600")))
}

func TestAggregateEmpty(t *testing.T) {
	c := Aggregate(nil)
	require.Empty(t, c.Products)
	require.Zero(t, c.TotalItems)
	require.True(t, c.TotalRevenue.IsZero())
}

func TestShareText(t *testing.T) {
	c := Aggregate([]models.Order{
		orderWith(item("p1", "Flan", "2000", 3)),
		orderWith(item("p2", "Brownie", "1500", 2)),
	})
	text := c.ShareText()
	for _, want := range []string{
		"Consolidado de Pedidos",
		"Postre: Flan",
		"Cantidad: 3",
		"Precio Unitario: $2000",
		"Total: $6000",
		"Postre: Brownie",
		"TOTAL GENERAL DE POSTRES: 5",
		"INGRESO TOTAL: $9000",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("export missing %q in:\n%s", want, text)
		}
	}
	// Flan was seen first, so it renders first.
	if strings.Index(text, "Flan") > strings.Index(text, "Brownie") {
		t.Fatalf("export does not preserve first-seen order:\n%s", text)
	}
}
