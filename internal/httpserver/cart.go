package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

type cartLineRequest struct {
	ProductID int64  `json:"productId" binding:"required"`
	VariantID *int64 `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
	Override  bool   `json:"override,omitempty"`
}

type cartItemView struct {
	ProductID    int64           `json:"productId"`
	VariantID    *int64          `json:"variantId,omitempty"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	VariantName  string          `json:"variantName,omitempty"`
	VariantValue string          `json:"variantValue,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

type cartView struct {
	Items         []cartItemView  `json:"items"`
	ItemCount     int             `json:"itemCount"`
	DistinctCount int             `json:"distinctCount"`
	Total         decimal.Decimal `json:"total"`
}

func (h *handlers) cartView(c *gin.Context) {
	view, err := h.buildCartView(c.Request.Context(), sessionID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) cartAdd(c *gin.Context) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeError(c, http.StatusBadRequest, "quantity must be positive")
		return
	}

	ctx := c.Request.Context()
	product, variant, ok := h.resolveLine(c, req)
	if !ok {
		return
	}

	sid := sessionID(c)
	if req.Override {
		if !h.checkAbsolute(c, *product, variant, req.Quantity) {
			return
		}
	} else {
		check, err := h.deps.Cart.ValidateQuantity(ctx, sid, *product, variant, req.Quantity)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if !check.OK {
			c.JSON(http.StatusConflict, gin.H{"error": check.Message, "available": check.Available})
			return
		}
	}

	if err := h.deps.Cart.Add(ctx, sid, *product, variant, req.Quantity, req.Override); err != nil {
		writeServiceError(c, err)
		return
	}
	h.deps.Metrics.RecordCartOperation(ctx, "add")
	h.respondWithCart(c, sid)
}

func (h *handlers) cartUpdate(c *gin.Context) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	product, variant, ok := h.resolveLine(c, req)
	if !ok {
		return
	}

	sid := sessionID(c)
	if req.Quantity > 0 && !h.checkAbsolute(c, *product, variant, req.Quantity) {
		return
	}
	if err := h.deps.Cart.UpdateQuantity(ctx, sid, *product, variant, req.Quantity); err != nil {
		writeServiceError(c, err)
		return
	}
	h.deps.Metrics.RecordCartOperation(ctx, "update")
	h.respondWithCart(c, sid)
}

func (h *handlers) cartRemove(c *gin.Context) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	product, variant, ok := h.resolveLine(c, req)
	if !ok {
		return
	}

	sid := sessionID(c)
	if err := h.deps.Cart.Remove(c.Request.Context(), sid, *product, variant); err != nil {
		writeServiceError(c, err)
		return
	}
	h.deps.Metrics.RecordCartOperation(c.Request.Context(), "remove")
	h.respondWithCart(c, sid)
}

func (h *handlers) cartClear(c *gin.Context) {
	sid := sessionID(c)
	if err := h.deps.Cart.Clear(c.Request.Context(), sid); err != nil {
		writeServiceError(c, err)
		return
	}
	h.deps.Metrics.RecordCartOperation(c.Request.Context(), "clear")
	c.Status(http.StatusNoContent)
}

// resolveLine loads the product and optional variant for a cart request,
// writing the error response itself when resolution fails.
func (h *handlers) resolveLine(c *gin.Context, req cartLineRequest) (*domain.Product, *domain.ProductVariant, bool) {
	ctx := c.Request.Context()
	product, err := h.deps.Catalog.ProductByID(ctx, req.ProductID)
	if err != nil {
		writeServiceError(c, err)
		return nil, nil, false
	}
	if !product.IsActive {
		writeError(c, http.StatusNotFound, "not found")
		return nil, nil, false
	}
	var variant *domain.ProductVariant
	if req.VariantID != nil {
		variant, err = h.deps.Catalog.Variant(ctx, req.ProductID, *req.VariantID)
		if err != nil {
			writeServiceError(c, err)
			return nil, nil, false
		}
	}
	return product, variant, true
}

// checkAbsolute enforces the plain stock ceiling, used when the requested
// quantity replaces the cart row instead of adding to it.
func (h *handlers) checkAbsolute(c *gin.Context, product domain.Product, variant *domain.ProductVariant, quantity int) bool {
	available := cart.AvailableStock(product, variant)
	if available != cart.UnlimitedStock && quantity > available {
		c.JSON(http.StatusConflict, gin.H{
			"error":     fmt.Sprintf("Only %d items available", available),
			"available": available,
		})
		return false
	}
	return true
}

func (h *handlers) respondWithCart(c *gin.Context, sid string) {
	view, err := h.buildCartView(c.Request.Context(), sid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// buildCartView renders the stored cart. Counts and the total come from
// the stored lines, so rows whose product has vanished from the catalog
// still count until they are removed.
func (h *handlers) buildCartView(ctx context.Context, sid string) (*cartView, error) {
	items, err := h.deps.Cart.Items(ctx, sid)
	if err != nil {
		return nil, err
	}
	itemCount, err := h.deps.Cart.ItemCount(ctx, sid)
	if err != nil {
		return nil, err
	}
	distinct, err := h.deps.Cart.DistinctCount(ctx, sid)
	if err != nil {
		return nil, err
	}
	total, err := h.deps.Cart.TotalPrice(ctx, sid)
	if err != nil {
		return nil, err
	}

	view := &cartView{
		Items:         make([]cartItemView, 0, len(items)),
		ItemCount:     itemCount,
		DistinctCount: distinct,
		Total:         total,
	}
	for _, item := range items {
		v := cartItemView{
			ProductID:  item.Product.ID,
			Name:       item.Product.Name,
			Slug:       item.Product.Slug,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
		if item.Variant != nil {
			id := item.Variant.ID
			v.VariantID = &id
			v.VariantName = item.Variant.Name
			v.VariantValue = item.Variant.Value
		} else if item.Key.VariantID != 0 {
			id := item.Key.VariantID
			v.VariantID = &id
		}
		view.Items = append(view.Items, v)
	}
	return view, nil
}
