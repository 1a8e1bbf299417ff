package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListAmenities handles GET /api/amenities.
func (h *Handler) ListAmenities(c *gin.Context) {
	amenities, err := h.store.ListAmenities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve amenities"})
		return
	}
	c.JSON(http.StatusOK, amenities)
}
