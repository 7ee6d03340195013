package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
)

type Service struct {
	carts     cartStore
	orders    orderRepo
	stock     stockRepo
	publisher events.Publisher
	metrics   *metrics.AppMetrics
	taxRate   decimal.Decimal
	shipping  decimal.Decimal
	logger    *log.Logger
	now       func() time.Time
}

type cartStore interface {
	Items(ctx context.Context, sessionID string) ([]cart.Item, error)
	Clear(ctx context.Context, sessionID string) error
}

type orderRepo interface {
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type stockRepo interface {
	ReduceStock(ctx context.Context, productID int64, quantity int) error
	ReduceVariantStock(ctx context.Context, variantID int64, quantity int) error
}

func New(carts cartStore, orders orderRepo, stock stockRepo, publisher events.Publisher, appMetrics *metrics.AppMetrics, taxRate, shippingCost decimal.Decimal, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		carts:     carts,
		orders:    orders,
		stock:     stock,
		publisher: publisher,
		metrics:   appMetrics,
		taxRate:   taxRate,
		shipping:  shippingCost,
		logger:    logger,
		now:       time.Now,
	}
}

type PlaceOrderInput struct {
	Email              string `json:"email"`
	Phone              string `json:"phone,omitempty"`
	ShippingName       string `json:"shippingName"`
	ShippingAddress    string `json:"shippingAddress"`
	ShippingCity       string `json:"shippingCity"`
	ShippingState      string `json:"shippingState,omitempty"`
	ShippingPostalCode string `json:"shippingPostalCode"`
	ShippingCountry    string `json:"shippingCountry"`
	PaymentMethod      string `json:"paymentMethod"`
	Notes              string `json:"notes,omitempty"`
}

func (in PlaceOrderInput) validate() error {
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("%w: email required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ShippingName) == "" {
		return fmt.Errorf("%w: shipping name required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return fmt.Errorf("%w: shipping address required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ShippingCity) == "" {
		return fmt.Errorf("%w: shipping city required", domain.ErrInvalidInput)
	}
	switch in.PaymentMethod {
	case domain.PaymentMethodCOD, domain.PaymentMethodOnline:
		return nil
	default:
		return fmt.Errorf("%w: unsupported payment method %q", domain.ErrInvalidInput, in.PaymentMethod)
	}
}

// PlaceOrder converts the session cart into a persisted order: line items
// are denormalized at their snapshot prices, totals derived, stock reduced,
// an event published, and the cart cleared. Stock reduction failures after
// the order exists are logged but do not fail the order.
func (s *Service) PlaceOrder(ctx context.Context, sessionID, userID string, in PlaceOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	items, err := s.carts.Items(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	subtotal := decimal.Zero
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		oi := domain.OrderItem{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			ProductSKU:  item.Product.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
		if item.Variant != nil {
			id := item.Variant.ID
			oi.VariantID = &id
			oi.VariantName = item.Variant.Name
			oi.VariantValue = item.Variant.Value
		} else if item.Key.VariantID != 0 {
			id := item.Key.VariantID
			oi.VariantID = &id
		}
		orderItems = append(orderItems, oi)
		subtotal = subtotal.Add(item.TotalPrice)
	}

	tax := subtotal.Mul(s.taxRate).Round(2)
	total := subtotal.Add(tax).Add(s.shipping)

	order := domain.Order{
		UserID:             userID,
		Email:              in.Email,
		Phone:              in.Phone,
		ShippingName:       in.ShippingName,
		ShippingAddress:    in.ShippingAddress,
		ShippingCity:       in.ShippingCity,
		ShippingState:      in.ShippingState,
		ShippingPostalCode: in.ShippingPostalCode,
		ShippingCountry:    in.ShippingCountry,
		OrderNumber:        s.newOrderNumber(),
		Status:             domain.OrderStatusPending,
		PaymentMethod:      in.PaymentMethod,
		Subtotal:           subtotal,
		TaxAmount:          tax,
		ShippingCost:       s.shipping,
		TotalAmount:        total,
		Notes:              in.Notes,
		Items:              orderItems,
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.reduceStock(ctx, created.OrderNumber, items)
	s.publish(ctx, created)
	s.metrics.RecordOrderPlaced(ctx, created.TotalAmount, created.PaymentMethod)

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Printf("order %s: clear cart: %v", created.OrderNumber, err)
	}
	return created, nil
}

func (s *Service) OrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.orders.GetByNumber(ctx, orderNumber)
}

func (s *Service) OrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// reduceStock decrements inventory for each line. The order already
// exists at this point, so shortfalls are warnings, not failures.
// Products that do not manage stock are left untouched.
func (s *Service) reduceStock(ctx context.Context, orderNumber string, items []cart.Item) {
	for _, item := range items {
		var err error
		switch {
		case item.Variant != nil:
			err = s.stock.ReduceVariantStock(ctx, item.Variant.ID, item.Quantity)
		case item.Product.ManageStock:
			err = s.stock.ReduceStock(ctx, item.Product.ID, item.Quantity)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("order %s: reduce stock for product %d: %v", orderNumber, item.Product.ID, err)
		}
	}
}

func (s *Service) publish(ctx context.Context, order *domain.Order) {
	event := events.OrderPlaced{
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Email:       order.Email,
		TotalAmount: order.TotalAmount.String(),
		ItemCount:   order.TotalItems(),
		PlacedAt:    order.CreatedAt,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, events.OrderPlacedItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			SKU:       item.ProductSKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		})
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Printf("order %s: publish event: %v", order.OrderNumber, err)
	}
}

func (s *Service) newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", s.now().UTC().Format("20060102"), suffix)
}
