package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/session"
)

type stubCatalog struct {
	products map[int64]domain.Product
	variants map[int64]domain.ProductVariant
}

func (c *stubCatalog) ProductsByIDs(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	out := make(map[int64]domain.Product)
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (c *stubCatalog) VariantsByIDs(_ context.Context, ids []int64) (map[int64]domain.ProductVariant, error) {
	out := make(map[int64]domain.ProductVariant)
	for _, id := range ids {
		if v, ok := c.variants[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func testProduct(t *testing.T, id int64, price string) domain.Product {
	t.Helper()
	return domain.Product{ID: id, Name: "Product", Slug: "product", Price: dec(t, price), IsActive: true}
}

func newTestStore(catalog *stubCatalog) *Store {
	return New(session.NewMemoryStore(), catalog, nil)
}

const sid = "test-session"

func TestAddAccumulatesQuantity(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "10.00")
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	for _, q := range []int{2, 3, 1} {
		if err := store.Add(ctx, sid, p, nil, q, false); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got, err := store.Quantity(ctx, sid, p, nil)
	if err != nil {
		t.Fatalf("quantity: %v", err)
	}
	if got != 6 {
		t.Fatalf("expected quantity 6, got %d", got)
	}
}

func TestAddOverrideReplacesQuantity(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "10.00")
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	if err := store.Add(ctx, sid, p, nil, 5, true); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, sid, p, nil, 2, true); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, _ := store.Quantity(ctx, sid, p, nil)
	if got != 2 {
		t.Fatalf("expected override to leave quantity 2, got %d", got)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "10.00")
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	if err := store.Add(ctx, sid, p, nil, 2, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Remove(ctx, sid, p, nil); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(ctx, sid, p, nil); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	got, _ := store.Quantity(ctx, sid, p, nil)
	if got != 0 {
		t.Fatalf("expected quantity 0 after remove, got %d", got)
	}
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "10.00")
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	if err := store.Add(ctx, sid, p, nil, 3, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.UpdateQuantity(ctx, sid, p, nil, 0); err != nil {
		t.Fatalf("update: %v", err)
	}

	count, _ := store.DistinctCount(ctx, sid)
	if count != 0 {
		t.Fatalf("expected no rows after update to 0, got %d", count)
	}
}

func TestUpdateQuantitySetsAbsolute(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "10.00")
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	if err := store.Add(ctx, sid, p, nil, 3, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.UpdateQuantity(ctx, sid, p, nil, 7); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := store.Quantity(ctx, sid, p, nil)
	if got != 7 {
		t.Fatalf("expected quantity 7, got %d", got)
	}
}

func TestUpdateQuantityAbsentRowIsNoop(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "10.00")
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	if err := store.UpdateQuantity(ctx, sid, p, nil, 5); err != nil {
		t.Fatalf("update: %v", err)
	}
	count, _ := store.DistinctCount(ctx, sid)
	if count != 0 {
		t.Fatalf("expected empty cart, got %d rows", count)
	}
}

func TestTotalPriceDecimalExact(t *testing.T) {
	ctx := context.Background()
	a := testProduct(t, 1, "19.99")
	b := testProduct(t, 2, "5.00")
	c := testProduct(t, 3, "100.00")
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: a, 2: b, 3: c}})

	if err := store.Add(ctx, sid, a, nil, 3, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, sid, b, nil, 1, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, sid, c, nil, 1, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	total, err := store.TotalPrice(ctx, sid)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.Equal(dec(t, "164.97")) {
		t.Fatalf("expected exactly 164.97, got %s", total)
	}
}

func TestItemCountInvariantUnderSplit(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "10.00")
	catalog := &stubCatalog{products: map[int64]domain.Product{1: p}}

	bulk := newTestStore(catalog)
	if err := bulk.Add(ctx, "bulk", p, nil, 3, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	split := newTestStore(catalog)
	for i := 0; i < 3; i++ {
		if err := split.Add(ctx, "split", p, nil, 1, false); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	bulkCount, _ := bulk.ItemCount(ctx, "bulk")
	splitCount, _ := split.ItemCount(ctx, "split")
	if bulkCount != 3 || splitCount != 3 {
		t.Fatalf("expected both counts 3, got bulk=%d split=%d", bulkCount, splitCount)
	}
}

func TestItemCountVersusDistinctCount(t *testing.T) {
	ctx := context.Background()
	a := testProduct(t, 1, "10.00")
	b := testProduct(t, 2, "4.00")
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: a, 2: b}})

	if err := store.Add(ctx, sid, a, nil, 4, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, sid, b, nil, 1, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	items, _ := store.ItemCount(ctx, sid)
	rows, _ := store.DistinctCount(ctx, sid)
	if items != 5 {
		t.Fatalf("expected item count 5, got %d", items)
	}
	if rows != 2 {
		t.Fatalf("expected 2 rows, got %d", rows)
	}
}

func TestVariantLinesAreDistinct(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "20.00")
	v := domain.ProductVariant{ID: 9, ProductID: 1, Name: "Color", Value: "Gold", PriceAdjustment: dec(t, "5.00"), StockQuantity: 10, IsActive: true}
	store := newTestStore(&stubCatalog{
		products: map[int64]domain.Product{1: p},
		variants: map[int64]domain.ProductVariant{9: v},
	})

	if err := store.Add(ctx, sid, p, nil, 1, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, sid, p, &v, 2, false); err != nil {
		t.Fatalf("add variant: %v", err)
	}

	rows, _ := store.DistinctCount(ctx, sid)
	if rows != 2 {
		t.Fatalf("expected 2 distinct rows, got %d", rows)
	}

	items, err := store.Items(ctx, sid)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Sorted by key: the plain line first, the variant line second.
	if !items[0].UnitPrice.Equal(dec(t, "20.00")) {
		t.Fatalf("expected base price 20.00, got %s", items[0].UnitPrice)
	}
	if !items[1].UnitPrice.Equal(dec(t, "25.00")) {
		t.Fatalf("expected variant price 25.00, got %s", items[1].UnitPrice)
	}
	if items[1].Variant == nil || items[1].Variant.ID != 9 {
		t.Fatalf("expected variant 9 attached, got %+v", items[1].Variant)
	}
	if !items[1].TotalPrice.Equal(dec(t, "50.00")) {
		t.Fatalf("expected variant line total 50.00, got %s", items[1].TotalPrice)
	}
}

func TestPriceSnapshotSurvivesCatalogChange(t *testing.T) {
	ctx := context.Background()
	sale := dec(t, "50.00")
	p := domain.Product{ID: 1, Name: "On Sale", Slug: "on-sale", Price: dec(t, "80.00"), SalePrice: &sale, IsActive: true}
	catalog := &stubCatalog{products: map[int64]domain.Product{1: p}}
	store := newTestStore(catalog)

	if err := store.Add(ctx, sid, p, nil, 2, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	total, _ := store.TotalPrice(ctx, sid)
	if !total.Equal(dec(t, "100.00")) {
		t.Fatalf("expected total 100.00, got %s", total)
	}

	// Admin raises the sale price after the item is in the cart.
	raised := dec(t, "60.00")
	p.SalePrice = &raised
	catalog.products[1] = p

	total, _ = store.TotalPrice(ctx, sid)
	if !total.Equal(dec(t, "100.00")) {
		t.Fatalf("expected snapshot total 100.00 after price change, got %s", total)
	}
	items, err := store.Items(ctx, sid)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if !items[0].UnitPrice.Equal(dec(t, "50.00")) {
		t.Fatalf("expected snapshot unit price 50.00, got %s", items[0].UnitPrice)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "10.00")
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	if err := store.Add(ctx, sid, p, nil, 3, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Clear(ctx, sid); err != nil {
		t.Fatalf("clear: %v", err)
	}

	items, _ := store.ItemCount(ctx, sid)
	rows, _ := store.DistinctCount(ctx, sid)
	if items != 0 || rows != 0 {
		t.Fatalf("expected empty cart after clear, got items=%d rows=%d", items, rows)
	}
}

func TestValidateQuantityAbsoluteCeiling(t *testing.T) {
	ctx := context.Background()
	p := domain.Product{ID: 1, Name: "Limited", Slug: "limited", Price: decimal.New(10, 0), ManageStock: true, StockQuantity: 5, IsActive: true}
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	check, err := store.ValidateQuantity(ctx, sid, p, nil, 6)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if check.OK {
		t.Fatalf("expected invalid for quantity above stock")
	}
	if check.Available != 5 {
		t.Fatalf("expected available 5, got %d", check.Available)
	}
	if check.Message != "Only 5 items available" {
		t.Fatalf("unexpected message %q", check.Message)
	}
}

func TestValidateQuantityIncrementalCeiling(t *testing.T) {
	ctx := context.Background()
	p := domain.Product{ID: 1, Name: "Limited", Slug: "limited", Price: decimal.New(10, 0), ManageStock: true, StockQuantity: 5, IsActive: true}
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	check, err := store.ValidateQuantity(ctx, sid, p, nil, 3)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !check.OK {
		t.Fatalf("expected first request of 3 to be valid: %q", check.Message)
	}
	if err := store.Add(ctx, sid, p, nil, 3, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	check, err = store.ValidateQuantity(ctx, sid, p, nil, 3)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if check.OK {
		t.Fatalf("expected second request of 3 to be invalid")
	}
	if check.Available != 2 {
		t.Fatalf("expected remaining allowance 2, got %d", check.Available)
	}
	if check.Message != "Only 2 more items can be added (already have 3 in cart)" {
		t.Fatalf("unexpected message %q", check.Message)
	}
}

func TestValidateQuantityUnmanagedStockIsUnlimited(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "10.00") // ManageStock false
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	check, err := store.ValidateQuantity(ctx, sid, p, nil, 100000)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !check.OK || check.Available != UnlimitedStock {
		t.Fatalf("expected unlimited stock to always validate, got %+v", check)
	}
}

func TestValidateQuantityVariantUsesVariantStock(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "20.00") // unmanaged product stock
	v := domain.ProductVariant{ID: 9, ProductID: 1, Name: "Size", Value: "L", StockQuantity: 2, IsActive: true}
	store := newTestStore(&stubCatalog{
		products: map[int64]domain.Product{1: p},
		variants: map[int64]domain.ProductVariant{9: v},
	})

	check, err := store.ValidateQuantity(ctx, sid, p, &v, 3)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if check.OK || check.Available != 2 {
		t.Fatalf("expected variant stock ceiling 2, got %+v", check)
	}
}

func TestItemsSkipsDeletedProductWithoutPurging(t *testing.T) {
	ctx := context.Background()
	a := testProduct(t, 1, "10.00")
	b := testProduct(t, 2, "5.00")
	catalog := &stubCatalog{products: map[int64]domain.Product{1: a, 2: b}}
	store := newTestStore(catalog)

	if err := store.Add(ctx, sid, a, nil, 1, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, sid, b, nil, 1, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	delete(catalog.products, 1)

	items, err := store.Items(ctx, sid)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 1 || items[0].Product.ID != 2 {
		t.Fatalf("expected only product 2 in items, got %+v", items)
	}

	// The dangling line stays in storage; totals still include its snapshot.
	rows, _ := store.DistinctCount(ctx, sid)
	if rows != 2 {
		t.Fatalf("expected dangling line retained, got %d rows", rows)
	}
}

func TestItemsKeepsLineWhenVariantDeleted(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "20.00")
	v := domain.ProductVariant{ID: 9, ProductID: 1, Name: "Color", Value: "Gold", PriceAdjustment: dec(t, "5.00"), StockQuantity: 5, IsActive: true}
	catalog := &stubCatalog{
		products: map[int64]domain.Product{1: p},
		variants: map[int64]domain.ProductVariant{9: v},
	}
	store := newTestStore(catalog)

	if err := store.Add(ctx, sid, p, &v, 1, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	delete(catalog.variants, 9)

	items, err := store.Items(ctx, sid)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected line kept, got %d items", len(items))
	}
	if items[0].Variant != nil {
		t.Fatalf("expected no variant attached, got %+v", items[0].Variant)
	}
	if !items[0].UnitPrice.Equal(dec(t, "25.00")) {
		t.Fatalf("expected snapshot price 25.00 kept, got %s", items[0].UnitPrice)
	}
}

func TestAddNonPositiveResultRemovesRow(t *testing.T) {
	ctx := context.Background()
	p := testProduct(t, 1, "10.00")
	store := newTestStore(&stubCatalog{products: map[int64]domain.Product{1: p}})

	if err := store.Add(ctx, sid, p, nil, 2, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, sid, p, nil, -2, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	rows, _ := store.DistinctCount(ctx, sid)
	if rows != 0 {
		t.Fatalf("expected row removed when quantity drops to 0, got %d rows", rows)
	}
}
