package httpserver

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	reviewsvc "storefront/internal/service/review"
)

// CatalogService exposes catalog reads to the HTTP layer.
type CatalogService interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Products(ctx context.Context, categorySlug string) ([]domain.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*catalogsvc.ProductDetail, error)
	ProductByID(ctx context.Context, id int64) (*domain.Product, error)
	Variant(ctx context.Context, productID, variantID int64) (*domain.ProductVariant, error)
}

// CartStore exposes the session cart operations to the HTTP layer.
type CartStore interface {
	Add(ctx context.Context, sessionID string, product domain.Product, variant *domain.ProductVariant, quantity int, override bool) error
	Remove(ctx context.Context, sessionID string, product domain.Product, variant *domain.ProductVariant) error
	UpdateQuantity(ctx context.Context, sessionID string, product domain.Product, variant *domain.ProductVariant, quantity int) error
	Items(ctx context.Context, sessionID string) ([]cart.Item, error)
	ItemCount(ctx context.Context, sessionID string) (int, error)
	DistinctCount(ctx context.Context, sessionID string) (int, error)
	TotalPrice(ctx context.Context, sessionID string) (decimal.Decimal, error)
	ValidateQuantity(ctx context.Context, sessionID string, product domain.Product, variant *domain.ProductVariant, quantity int) (cart.QuantityCheck, error)
	Clear(ctx context.Context, sessionID string) error
}

type CheckoutService interface {
	PlaceOrder(ctx context.Context, sessionID, userID string, in checkoutsvc.PlaceOrderInput) (*domain.Order, error)
	OrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	OrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type WishlistService interface {
	Add(ctx context.Context, userID string, productID int64) error
	Remove(ctx context.Context, userID string, productID int64) error
	List(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Clear(ctx context.Context, userID string) error
}

type ReviewService interface {
	Create(ctx context.Context, userID string, productID int64, in reviewsvc.CreateInput) (*domain.Review, error)
	ListApproved(ctx context.Context, productID int64) ([]domain.Review, error)
	Summary(ctx context.Context, productID int64) (domain.ReviewSummary, error)
}

// Deps carries the services the router wires handlers to.
type Deps struct {
	Catalog     CatalogService
	Cart        CartStore
	Checkout    CheckoutService
	Wishlist    WishlistService
	Reviews     ReviewService
	Metrics     *metrics.AppMetrics
	SessionTTL  time.Duration
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.CORSOrigins) == 1 && deps.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else if len(deps.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = deps.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-User-ID")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	api.Use(sessionMiddleware(deps.SessionTTL))

	api.GET("/categories", h.listCategories)
	api.GET("/products", h.listProducts)
	api.GET("/products/:slug", h.productDetail)
	api.GET("/products/:slug/reviews", h.listReviews)
	api.POST("/products/:slug/reviews", h.createReview)

	api.GET("/cart", h.cartView)
	api.POST("/cart/items", h.cartAdd)
	api.PUT("/cart/items", h.cartUpdate)
	api.DELETE("/cart/items", h.cartRemove)
	api.DELETE("/cart", h.cartClear)

	api.POST("/checkout", h.placeOrder)
	api.GET("/orders", h.listOrders)
	api.GET("/orders/:number", h.orderDetail)

	api.GET("/wishlist", h.wishlistView)
	api.POST("/wishlist", h.wishlistAdd)
	api.DELETE("/wishlist/:productID", h.wishlistRemove)
	api.DELETE("/wishlist", h.wishlistClear)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
