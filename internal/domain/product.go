package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               int64            `json:"id"`
	CategoryID       int64            `json:"categoryId,omitempty"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	SKU              string           `json:"sku,omitempty"`
	ShortDescription string           `json:"shortDescription,omitempty"`
	Description      string           `json:"description,omitempty"`
	Price            decimal.Decimal  `json:"price"`
	SalePrice        *decimal.Decimal `json:"salePrice,omitempty"`
	ManageStock      bool             `json:"manageStock"`
	StockQuantity    int              `json:"stockQuantity"`
	IsActive         bool             `json:"isActive"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// CurrentPrice returns the sale price when one is set, else the base price.
func (p Product) CurrentPrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// ProductVariant is a priced, separately stocked option of a product
// (e.g. Color: Gold) adjusting the base price by a fixed delta.
type ProductVariant struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"productId"`
	Name            string          `json:"name"`
	Value           string          `json:"value"`
	SKU             string          `json:"sku,omitempty"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
	StockQuantity   int             `json:"stockQuantity"`
	IsActive        bool            `json:"isActive"`
}

// FinalPrice is the product's current price plus the variant adjustment.
func (v ProductVariant) FinalPrice(p Product) decimal.Decimal {
	return p.CurrentPrice().Add(v.PriceAdjustment)
}
