package events

import (
	"context"
	"time"
)

// OrderPlaced is emitted after an order has been persisted.
type OrderPlaced struct {
	OrderNumber string            `json:"orderNumber"`
	UserID      string            `json:"userId,omitempty"`
	Email       string            `json:"email"`
	TotalAmount string            `json:"totalAmount"`
	ItemCount   int               `json:"itemCount"`
	PlacedAt    time.Time         `json:"placedAt"`
	Items       []OrderPlacedItem `json:"items"`
}

type OrderPlacedItem struct {
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

// Publisher emits domain events to downstream consumers.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }

func (NopPublisher) Close() error { return nil }
