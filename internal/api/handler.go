package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/SherClockHolmes/webpush-go"

	"society-booking-backend/config"
	"society-booking-backend/internal/booking"
	"society-booking-backend/internal/notification"
	"society-booking-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	bookings *booking.Service
	cfg      *config.Config
	webpush  *webpush.Options
	notify   *notification.WorkerPool
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, bookings *booking.Service, cfg *config.Config, webpushOptions *webpush.Options, notify *notification.WorkerPool) *Handler {
	return &Handler{
		store:    s,
		bookings: bookings,
		cfg:      cfg,
		webpush:  webpushOptions,
		notify:   notify,
	}
}

// writeBookingError maps core error taxonomy to HTTP statuses. Business
// outcomes (conflict, illegal transition) get 4xx with detail; storage
// failures are the only 500.
func writeBookingError(c *gin.Context, err error) {
	var conflict *booking.ConflictError
	var invalid *booking.InvalidTransitionError

	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": conflict.Error(),
			"conflict": gin.H{
				"start": conflict.Start,
				"end":   conflict.End,
				"event": conflict.Event,
			},
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
	case errors.Is(err, booking.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, booking.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking store unavailable, try again later"})
	}
}
