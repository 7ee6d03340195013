package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reviewsvc "storefront/internal/service/review"
)

func (h *handlers) listReviews(c *gin.Context) {
	detail, err := h.deps.Catalog.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	reviews, err := h.deps.Reviews.ListApproved(c.Request.Context(), detail.Product.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"summary": detail.Reviews,
	})
}

func (h *handlers) createReview(c *gin.Context) {
	var in reviewsvc.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	detail, err := h.deps.Catalog.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	review, err := h.deps.Reviews.Create(c.Request.Context(), currentUserID(c), detail.Product.ID, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
