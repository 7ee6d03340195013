package cart

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// The cart is stored as a JSON object keyed by the line-key string form,
// each value carrying product id, optional variant id, quantity, and the
// snapshotted unit price as a decimal string:
//
//	{"12":{"product_id":12,"variant_id":null,"quantity":2,"price":"19.99"},
//	 "12_34":{"product_id":12,"variant_id":34,"quantity":1,"price":"24.99"}}
//
// Two legacy shapes predate variant support and are still accepted at the
// decode boundary: an object without a product_id (the id lives in the key)
// and a bare number meaning a quantity. Both lack a trusted price snapshot,
// so they are migrated by repricing from the live catalog; anything else
// unparseable is rejected with a diagnostic, never silently dropped.

type storedLine struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// legacyLine is a pre-snapshot entry awaiting a catalog reprice.
type legacyLine struct {
	ProductID int64
	Quantity  int
}

// decodeLines parses the stored document into typed lines plus any legacy
// entries that still need repricing. Diagnostics describe every entry that
// was rejected and why. Only a malformed top-level document is an error.
func decodeLines(raw []byte) (map[LineKey]Line, []legacyLine, []string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, nil, fmt.Errorf("malformed cart document: %w", err)
	}

	lines := make(map[LineKey]Line, len(doc))
	var legacy []legacyLine
	var diags []string

	for key, rawEntry := range doc {
		var entry storedLine
		if err := json.Unmarshal(rawEntry, &entry); err == nil {
			if entry.ProductID != 0 {
				line, diag := lineFromStored(key, entry)
				if diag != "" {
					diags = append(diags, diag)
					continue
				}
				lines[line.Key()] = line
				continue
			}
			// Object without product_id: pre-variant entry keyed by
			// product id, price (if any) untrusted.
			productID, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				diags = append(diags, fmt.Sprintf("entry %q rejected: no product id in key or value", key))
				continue
			}
			qty := entry.Quantity
			if qty <= 0 {
				qty = 1
			}
			legacy = append(legacy, legacyLine{ProductID: productID, Quantity: qty})
			continue
		}

		// Bare number: legacy quantity-only entry.
		var qty int
		if err := json.Unmarshal(rawEntry, &qty); err == nil {
			productID, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				diags = append(diags, fmt.Sprintf("entry %q rejected: bare quantity with non-numeric key", key))
				continue
			}
			if qty <= 0 {
				diags = append(diags, fmt.Sprintf("entry %q rejected: non-positive quantity %d", key, qty))
				continue
			}
			legacy = append(legacy, legacyLine{ProductID: productID, Quantity: qty})
			continue
		}

		diags = append(diags, fmt.Sprintf("entry %q rejected: unrecognized shape", key))
	}

	return lines, legacy, diags, nil
}

func lineFromStored(key string, entry storedLine) (Line, string) {
	if entry.Quantity <= 0 {
		return Line{}, fmt.Sprintf("entry %q rejected: non-positive quantity %d", key, entry.Quantity)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(entry.Price))
	if err != nil {
		return Line{}, fmt.Sprintf("entry %q rejected: bad price %q", key, entry.Price)
	}
	line := Line{ProductID: entry.ProductID, Quantity: entry.Quantity, UnitPrice: price}
	if entry.VariantID != nil {
		line.VariantID = *entry.VariantID
	}
	return line, ""
}

func encodeLines(lines map[LineKey]Line) ([]byte, error) {
	doc := make(map[string]storedLine, len(lines))
	for key, line := range lines {
		stored := storedLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice.String(),
		}
		if line.VariantID != 0 {
			variantID := line.VariantID
			stored.VariantID = &variantID
		}
		doc[key.String()] = stored
	}
	return json.Marshal(doc)
}
