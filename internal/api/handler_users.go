package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"society-booking-backend/internal/mw"
)

// GetProfile handles GET /api/users/profile: the calling resident's
// account, including the current dues summary.
func (h *Handler) GetProfile(c *gin.Context) {
	caller, ok := mw.CallerFrom(c)
	if !ok || caller.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "resident account required"})
		return
	}

	u, err := h.store.GetUserByID(c.Request.Context(), caller.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}
