package booking

import (
	"errors"
	"fmt"
	"time"

	"society-booking-backend/internal/model"
)

var (
	// ErrNotFound means the booking id is unknown to the store.
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidRange means the requested time window is malformed:
	// start not before end, or start already in the past at creation.
	ErrInvalidRange = errors.New("invalid booking time range")

	// ErrStorageUnavailable wraps a store read/write failure. A failed
	// conflict check surfaces this and blocks admission; it never falls
	// through as "no conflict".
	ErrStorageUnavailable = errors.New("booking store unavailable")

	// ErrForbidden means the caller lacks the capability for the
	// requested operation (e.g. a resident touching another resident's
	// booking, or a non-admin approving one).
	ErrForbidden = errors.New("operation not permitted for caller")
)

// ConflictError reports that a requested window overlaps an existing
// non-terminal booking. It carries the colliding window so callers can
// tell the resident when the amenity frees up.
type ConflictError struct {
	AmenityName string
	Start       time.Time
	End         time.Time
	Event       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already booked from %s to %s",
		e.AmenityName,
		e.Start.Format(time.RFC3339),
		e.End.Format(time.RFC3339))
}

// NewConflictError builds a ConflictError from the colliding booking.
func NewConflictError(existing *model.Booking) *ConflictError {
	return &ConflictError{
		AmenityName: existing.AmenityName,
		Start:       existing.StartTime,
		End:         existing.EndTime,
		Event:       existing.EventDescription,
	}
}

// InvalidTransitionError reports an illegal status change attempt,
// including the current status so the caller can explain the refusal.
type InvalidTransitionError struct {
	From model.BookingStatus
	To   model.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.From.Terminal() {
		return fmt.Sprintf("booking is already %s and cannot change to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot change booking from %s to %s", e.From, e.To)
}
