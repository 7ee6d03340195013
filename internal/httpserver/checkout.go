package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutsvc "storefront/internal/service/checkout"
)

func (h *handlers) placeOrder(c *gin.Context) {
	var in checkoutsvc.PlaceOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	// Guests check out with an empty user ID; the order stays reachable
	// by its number.
	userID := c.GetHeader("X-User-ID")
	order, err := h.deps.Checkout.PlaceOrder(c.Request.Context(), sessionID(c), userID, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *handlers) orderDetail(c *gin.Context) {
	order, err := h.deps.Checkout.OrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) listOrders(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		writeError(c, http.StatusBadRequest, "X-User-ID header required")
		return
	}
	orders, err := h.deps.Checkout.OrdersByUser(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}
