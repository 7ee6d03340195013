package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	wishlistsvc "storefront/internal/service/wishlist"
)

type wishlistAddRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
}

func (h *handlers) wishlistView(c *gin.Context) {
	items, err := h.deps.Wishlist.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if items == nil {
		items = []domain.WishlistItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *handlers) wishlistAdd(c *gin.Context) {
	var req wishlistAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.deps.Wishlist.Add(c.Request.Context(), currentUserID(c), req.ProductID)
	if err != nil {
		if errors.Is(err, wishlistsvc.ErrLimitReached) {
			writeError(c, http.StatusConflict, err.Error())
			return
		}
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) wishlistRemove(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productID"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.deps.Wishlist.Remove(c.Request.Context(), currentUserID(c), productID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) wishlistClear(c *gin.Context) {
	if err := h.deps.Wishlist.Clear(c.Request.Context(), currentUserID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
