package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

type Order struct {
	ID                 int64           `json:"id"`
	UserID             string          `json:"userId,omitempty"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone,omitempty"`
	ShippingName       string          `json:"shippingName"`
	ShippingAddress    string          `json:"shippingAddress"`
	ShippingCity       string          `json:"shippingCity"`
	ShippingState      string          `json:"shippingState,omitempty"`
	ShippingPostalCode string          `json:"shippingPostalCode"`
	ShippingCountry    string          `json:"shippingCountry"`
	OrderNumber        string          `json:"orderNumber"`
	Status             string          `json:"status"`
	PaymentMethod      string          `json:"paymentMethod"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxAmount          decimal.Decimal `json:"taxAmount"`
	ShippingCost       decimal.Decimal `json:"shippingCost"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	Items              []OrderItem     `json:"items,omitempty"`
}

// OrderItem denormalizes product name, SKU, and variant labels so order
// history survives catalog deletions.
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"orderId"`
	ProductID    int64           `json:"productId"`
	VariantID    *int64          `json:"variantId,omitempty"`
	ProductName  string          `json:"productName"`
	ProductSKU   string          `json:"productSku,omitempty"`
	VariantName  string          `json:"variantName,omitempty"`
	VariantValue string          `json:"variantValue,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

// TotalPrice is the line total for the item.
func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalItems sums quantities across all lines.
func (o Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
