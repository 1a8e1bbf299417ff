package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"society-booking-backend/internal/mw"
)

// NewRouter creates and configures the Gin router around a fully wired
// handler.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(h.cfg.Server.RateLimitPerSec), h.cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(h.cfg.Server.CacheTTLSeconds) * time.Second
	caching := mw.Cache(cache.New(cacheTTL, 2*cacheTTL), cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/admin/login", h.AdminLogin)
		}

		api.GET("/vapid_public_key", caching, h.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(mw.Authenticate(h.cfg.Auth.JWTSecret))
		{
			authed.GET("/amenities", caching, h.ListAmenities)

			authed.GET("/bookings", h.ListBookings)
			authed.GET("/bookings/my", h.MyBookings)
			authed.POST("/bookings", h.CreateBooking)
			authed.POST("/bookings/:id/cancel", h.CancelBooking)
			authed.PATCH("/bookings/:id/status", mw.RequireAdmin(), h.UpdateBookingStatus)

			authed.GET("/users/profile", h.GetProfile)

			authed.GET("/subscriptions", h.GetSubscription)
			authed.PUT("/subscriptions", h.PutSubscription)
			authed.DELETE("/subscriptions", h.DeleteSubscription)
		}
	}

	return r
}
