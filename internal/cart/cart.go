// Package cart implements the session-backed shopping cart: a mapping from
// (product, optional variant) to a quantity and a unit price snapshotted at
// add time. Totals are computed from the snapshots with exact decimal
// arithmetic; the catalog is consulted on reads only to enrich lines for
// display, never to reprice them.
package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/session"
)

// sessionField is the field name the cart occupies inside a session.
const sessionField = "cart"

// UnlimitedStock is returned by AvailableStock when no stock ceiling applies.
const UnlimitedStock = -1

// LineKey identifies one cart row. VariantID is zero when no variant was
// selected; the same product with and without a variant forms distinct rows.
type LineKey struct {
	ProductID int64
	VariantID int64
}

func NewLineKey(product domain.Product, variant *domain.ProductVariant) LineKey {
	key := LineKey{ProductID: product.ID}
	if variant != nil {
		key.VariantID = variant.ID
	}
	return key
}

// String renders the storage form of the key: "12" or "12_34".
func (k LineKey) String() string {
	if k.VariantID != 0 {
		return fmt.Sprintf("%d_%d", k.ProductID, k.VariantID)
	}
	return fmt.Sprintf("%d", k.ProductID)
}

// Line is one stored cart row. UnitPrice is the price at add time; later
// catalog price changes do not affect it.
type Line struct {
	ProductID int64
	VariantID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l Line) Key() LineKey {
	return LineKey{ProductID: l.ProductID, VariantID: l.VariantID}
}

// TotalPrice is unit price times quantity.
func (l Line) TotalPrice() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Item is a stored line enriched with the live catalog objects for display.
type Item struct {
	Key        LineKey
	Product    domain.Product
	Variant    *domain.ProductVariant
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// QuantityCheck is the result of a stock validation. When OK is false,
// Available carries the ceiling that was exceeded: the full stock when the
// request alone is too large, or the remaining allowance when the cart
// already holds some of the stock.
type QuantityCheck struct {
	OK        bool
	Available int
	Message   string
}

// Catalog is the read-only product lookup the cart consumes.
type Catalog interface {
	ProductsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	VariantsByIDs(ctx context.Context, ids []int64) (map[int64]domain.ProductVariant, error)
}

// Store maintains per-session cart lines on top of a session key-value
// store. Every operation loads the stored document, mutates it in memory,
// and writes it back; concurrent requests for one session are not guarded.
type Store struct {
	sessions session.Store
	catalog  Catalog
	logger   *log.Logger
}

func New(sessions session.Store, catalog Catalog, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{sessions: sessions, catalog: catalog, logger: logger}
}

// Add puts a product (optionally a specific variant) into the cart. With
// override false the quantity increments any existing row; with override
// true it replaces it. The unit price is snapshotted only when the row is
// created. Stock is not checked here; see ValidateQuantity.
func (s *Store) Add(ctx context.Context, sessionID string, product domain.Product, variant *domain.ProductVariant, quantity int, override bool) error {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	key := NewLineKey(product, variant)
	line, ok := lines[key]
	if !ok {
		price := product.CurrentPrice()
		if variant != nil {
			price = variant.FinalPrice(product)
		}
		line = Line{ProductID: key.ProductID, VariantID: key.VariantID, UnitPrice: price}
	}
	if override {
		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}

	// Rows never persist with a non-positive quantity.
	if line.Quantity <= 0 {
		delete(lines, key)
	} else {
		lines[key] = line
	}

	return s.save(ctx, sessionID, lines)
}

// Remove deletes the row for the product/variant pair. Removing an absent
// row is a no-op.
func (s *Store) Remove(ctx context.Context, sessionID string, product domain.Product, variant *domain.ProductVariant) error {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	key := NewLineKey(product, variant)
	if _, ok := lines[key]; !ok {
		return nil
	}
	delete(lines, key)
	return s.save(ctx, sessionID, lines)
}

// UpdateQuantity sets the stored quantity directly. A quantity of zero or
// less removes the row. Updating an absent row is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID string, product domain.Product, variant *domain.ProductVariant, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, sessionID, product, variant)
	}
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	key := NewLineKey(product, variant)
	line, ok := lines[key]
	if !ok {
		return nil
	}
	line.Quantity = quantity
	lines[key] = line
	return s.save(ctx, sessionID, lines)
}

// Items resolves the stored lines against the catalog and returns them
// enriched with live product and variant data. Lines whose product no longer
// exists are skipped and logged, not purged from storage; a missing variant
// keeps the line with the snapshot price and no variant attached.
func (s *Store) Items(ctx context.Context, sessionID string) ([]Item, error) {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}

	var productIDs, variantIDs []int64
	for key := range lines {
		productIDs = append(productIDs, key.ProductID)
		if key.VariantID != 0 {
			variantIDs = append(variantIDs, key.VariantID)
		}
	}

	products, err := s.catalog.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("cart: resolve products: %w", err)
	}
	variants := map[int64]domain.ProductVariant{}
	if len(variantIDs) > 0 {
		variants, err = s.catalog.VariantsByIDs(ctx, variantIDs)
		if err != nil {
			return nil, fmt.Errorf("cart: resolve variants: %w", err)
		}
	}

	items := make([]Item, 0, len(lines))
	for _, key := range sortedKeys(lines) {
		line := lines[key]
		product, ok := products[line.ProductID]
		if !ok {
			s.logger.Printf("cart: session=%s line=%s skipped: product no longer exists", sessionID, key)
			continue
		}
		var variant *domain.ProductVariant
		if line.VariantID != 0 {
			if v, ok := variants[line.VariantID]; ok {
				variant = &v
			} else {
				s.logger.Printf("cart: session=%s line=%s variant no longer exists, keeping line", sessionID, key)
			}
		}
		items = append(items, Item{
			Key:        key,
			Product:    product,
			Variant:    variant,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice(),
		})
	}
	return items, nil
}

// ItemCount is the total number of items: the sum of quantities across all
// rows, not the number of rows.
func (s *Store) ItemCount(ctx context.Context, sessionID string) (int, error) {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total, nil
}

// DistinctCount is the number of rows, independent of quantities.
func (s *Store) DistinctCount(ctx context.Context, sessionID string) (int, error) {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

// TotalPrice sums unit price times quantity over all rows using the
// snapshotted prices. The catalog is not consulted.
func (s *Store) TotalPrice(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.TotalPrice())
	}
	return total, nil
}

// Quantity returns the stored quantity for the product/variant pair, or 0.
func (s *Store) Quantity(ctx context.Context, sessionID string, product domain.Product, variant *domain.ProductVariant) (int, error) {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return lines[NewLineKey(product, variant)].Quantity, nil
}

// Clear removes the whole cart from the session store.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID, sessionField)
}

// AvailableStock returns the stock ceiling for a product/variant pair: the
// variant's stock when a variant is given, the product's stock when stock
// management is enabled, else UnlimitedStock.
func AvailableStock(product domain.Product, variant *domain.ProductVariant) int {
	if variant != nil {
		return variant.StockQuantity
	}
	if product.ManageStock {
		return product.StockQuantity
	}
	return UnlimitedStock
}

// ValidateQuantity checks whether quantity more units can be added for the
// product/variant pair. The check has two tiers: the requested quantity
// alone must not exceed available stock, and the request plus what the cart
// already holds must not exceed it either. The two failures report different
// numbers and messages.
func (s *Store) ValidateQuantity(ctx context.Context, sessionID string, product domain.Product, variant *domain.ProductVariant, quantity int) (QuantityCheck, error) {
	available := AvailableStock(product, variant)
	if available == UnlimitedStock {
		return QuantityCheck{OK: true, Available: UnlimitedStock}, nil
	}

	if quantity > available {
		return QuantityCheck{
			Available: available,
			Message:   fmt.Sprintf("Only %d items available", available),
		}, nil
	}

	current, err := s.Quantity(ctx, sessionID, product, variant)
	if err != nil {
		return QuantityCheck{}, err
	}
	if current+quantity > available {
		remaining := available - current
		return QuantityCheck{
			Available: remaining,
			Message:   fmt.Sprintf("Only %d more items can be added (already have %d in cart)", remaining, current),
		}, nil
	}

	return QuantityCheck{OK: true, Available: available}, nil
}

func (s *Store) load(ctx context.Context, sessionID string) (map[LineKey]Line, error) {
	raw, err := s.sessions.Get(ctx, sessionID, sessionField)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return map[LineKey]Line{}, nil
		}
		return nil, err
	}

	lines, legacy, diags, err := decodeLines(raw)
	if err != nil {
		return nil, fmt.Errorf("cart: decode session=%s: %w", sessionID, err)
	}
	for _, d := range diags {
		s.logger.Printf("cart: session=%s %s", sessionID, d)
	}

	if len(legacy) > 0 {
		s.migrateLegacy(ctx, sessionID, lines, legacy)
	}
	return lines, nil
}

// migrateLegacy reprices pre-snapshot entries from the live catalog, the
// only price source a legacy entry ever had. Lines whose product is gone are
// dropped with a logged diagnostic.
func (s *Store) migrateLegacy(ctx context.Context, sessionID string, lines map[LineKey]Line, legacy []legacyLine) {
	ids := make([]int64, 0, len(legacy))
	for _, l := range legacy {
		ids = append(ids, l.ProductID)
	}
	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		s.logger.Printf("cart: session=%s legacy reprice failed, dropping %d entries: %v", sessionID, len(legacy), err)
		return
	}
	for _, l := range legacy {
		product, ok := products[l.ProductID]
		if !ok {
			s.logger.Printf("cart: session=%s legacy entry product=%d dropped: product no longer exists", sessionID, l.ProductID)
			continue
		}
		key := LineKey{ProductID: l.ProductID}
		if _, exists := lines[key]; exists {
			s.logger.Printf("cart: session=%s legacy entry product=%d dropped: conflicts with stored line", sessionID, l.ProductID)
			continue
		}
		lines[key] = Line{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: product.CurrentPrice()}
		s.logger.Printf("cart: session=%s migrated legacy entry product=%d qty=%d", sessionID, l.ProductID, l.Quantity)
	}
}

func (s *Store) save(ctx context.Context, sessionID string, lines map[LineKey]Line) error {
	raw, err := encodeLines(lines)
	if err != nil {
		return fmt.Errorf("cart: encode session=%s: %w", sessionID, err)
	}
	return s.sessions.Set(ctx, sessionID, sessionField, raw)
}

func sortedKeys(lines map[LineKey]Line) []LineKey {
	keys := make([]LineKey, 0, len(lines))
	for key := range lines {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		return keys[i].VariantID < keys[j].VariantID
	})
	return keys
}
