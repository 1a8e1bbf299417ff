package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"society-booking-backend/internal/model"
	"society-booking-backend/internal/mw"
	"society-booking-backend/internal/store"
)

type createBookingRequest struct {
	AmenityName      string    `json:"amenityName" binding:"required"`
	EventDescription string    `json:"eventDescription"`
	StartTime        time.Time `json:"startTime" binding:"required"`
	EndTime          time.Time `json:"endTime" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// residentRef is the owner view embedded in booking responses. Dues and
// audit fields stay private to the profile endpoint.
type residentRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ResidentID string `json:"residentId"`
}

type bookingResponse struct {
	ID               string              `json:"id"`
	AmenityName      string              `json:"amenityName"`
	EventDescription string              `json:"eventDescription"`
	StartTime        time.Time           `json:"startTime"`
	EndTime          time.Time           `json:"endTime"`
	Status           model.BookingStatus `json:"status"`
	BookedBy         *residentRef        `json:"bookedBy,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
	resp := bookingResponse{
		ID:               b.ID,
		AmenityName:      b.AmenityName,
		EventDescription: b.EventDescription,
		StartTime:        b.StartTime,
		EndTime:          b.EndTime,
		Status:           b.Status,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
	if b.Resident != nil {
		resp.BookedBy = &residentRef{
			ID:         b.Resident.ID,
			Name:       b.Resident.Name,
			ResidentID: b.Resident.ResidentID,
		}
	}
	return resp
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	caller, ok := mw.CallerFrom(c)
	if !ok || caller.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only residents can request bookings"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amenity name, start time and end time are required"})
		return
	}

	b, err := h.bookings.Create(c.Request.Context(), req.AmenityName, caller.ID, req.EventDescription, req.StartTime, req.EndTime)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	// Re-read with the resident populated for display.
	if full, err := h.store.GetBooking(c.Request.Context(), b.ID); err == nil {
		b = full
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

// ListBookings handles GET /api/bookings with optional amenityName,
// startDate and endDate filters.
func (h *Handler) ListBookings(c *gin.Context) {
	var f store.BookingFilter
	f.AmenityName = c.Query("amenityName")

	if v := c.Query("startDate"); v != "" {
		t, err := parseDateOrTime(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate, use YYYY-MM-DD or RFC3339"})
			return
		}
		f.From = t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := parseDateOrTime(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate, use YYYY-MM-DD or RFC3339"})
			return
		}
		// A bare end date means "through that day".
		if len(v) == len("2006-01-02") {
			t = t.Add(24 * time.Hour)
		}
		f.To = t
	}

	bookings, err := h.store.ListBookings(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve bookings"})
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

// MyBookings handles GET /api/bookings/my for the calling resident.
func (h *Handler) MyBookings(c *gin.Context) {
	caller, ok := mw.CallerFrom(c)
	if !ok || caller.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only residents have personal bookings"})
		return
	}

	bookings, err := h.store.ListBookingsByUser(c.Request.Context(), caller.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve your bookings"})
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

// UpdateBookingStatus handles PATCH /api/bookings/:id/status (admin only,
// enforced by middleware).
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	caller, _ := mw.CallerFrom(c)

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	target := model.BookingStatus(req.Status)
	if !target.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of Pending, Approved, Rejected, Cancelled"})
		return
	}

	updated, err := h.bookings.Transition(c.Request.Context(), c.Param("id"), target, caller)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	if h.notify != nil && (updated.Status == model.StatusApproved || updated.Status == model.StatusRejected) {
		h.notify.Dispatch(updated.ID)
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

// CancelBooking handles POST /api/bookings/:id/cancel. Residents may vacate
// their own pending or approved bookings.
func (h *Handler) CancelBooking(c *gin.Context) {
	caller, ok := mw.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	cancelled, err := h.bookings.Cancel(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func parseDateOrTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
