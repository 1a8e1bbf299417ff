// Package booking implements the amenity booking core: interval conflict
// detection and the booking status lifecycle. Persistence is behind the
// Store interface; the HTTP layer lives in internal/api.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"society-booking-backend/internal/model"
)

// DefaultEventDescription is used when a resident leaves the label empty.
const DefaultEventDescription = "General Booking"

// Caller is the resolved identity of the requester, produced by the auth
// layer. The core never sees tokens.
type Caller struct {
	ID      string
	IsAdmin bool
}

// Store is the persistence surface the core depends on. The check-and-write
// methods must be atomic per amenity: no two overlapping non-terminal
// bookings may ever be committed, even under concurrent calls.
type Store interface {
	// CreateBooking inserts b unless its window overlaps an existing
	// non-terminal booking for the same amenity, in which case it returns
	// a *ConflictError and writes nothing.
	CreateBooking(ctx context.Context, b *model.Booking) error

	// UpdateBookingStatus applies a status change after validating it
	// against the lifecycle table. A change to Approved re-checks the
	// window (excluding the booking itself) inside the same critical
	// section. Returns ErrNotFound, *InvalidTransitionError or
	// *ConflictError as appropriate; on success the updated record.
	UpdateBookingStatus(ctx context.Context, id string, to model.BookingStatus) (*model.Booking, error)

	GetBooking(ctx context.Context, id string) (*model.Booking, error)

	// FindConflict returns the first non-terminal booking for the amenity
	// overlapping [start, end), ordered by start time, or nil when the
	// window is free. excludeID, when non-empty, is left out of the scan.
	FindConflict(ctx context.Context, amenity string, start, end time.Time, excludeID string) (*model.Booking, error)

	// FindConflicts is the report-all variant of FindConflict.
	FindConflicts(ctx context.Context, amenity string, start, end time.Time, excludeID string) ([]model.Booking, error)
}

// Service composes validation, conflict detection and the status lifecycle
// on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a booking service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create admits a new reservation request. The booking starts life as
// Pending; approval is a separate, admin-gated transition.
func (s *Service) Create(ctx context.Context, amenity, userID, description string, start, end time.Time) (*model.Booking, error) {
	if amenity == "" {
		return nil, fmt.Errorf("%w: amenity name is required", ErrInvalidRange)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrInvalidRange)
	}
	if start.Before(s.now()) {
		return nil, fmt.Errorf("%w: start time cannot be in the past", ErrInvalidRange)
	}
	if description == "" {
		description = DefaultEventDescription
	}

	b := &model.Booking{
		ID:               uuid.NewString(),
		AmenityName:      amenity,
		BookedBy:         userID,
		EventDescription: description,
		StartTime:        start,
		EndTime:          end,
		Status:           model.StatusPending,
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		return nil, wrapStoreErr(err)
	}
	return b, nil
}

// CheckConflict decides whether the window can be admitted for the amenity.
// It is a pure read: a nil ConflictError means the slot is free. A store
// failure blocks admission rather than assuming no conflict.
func (s *Service) CheckConflict(ctx context.Context, amenity string, start, end time.Time, excludeID string) (*ConflictError, error) {
	if amenity == "" || !start.Before(end) {
		return nil, fmt.Errorf("%w: malformed conflict-check window", ErrInvalidRange)
	}
	existing, err := s.store.FindConflict(ctx, amenity, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if existing == nil {
		return nil, nil
	}
	return NewConflictError(existing), nil
}

// CheckAllConflicts reports every colliding non-terminal booking instead of
// failing fast on the first hit.
func (s *Service) CheckAllConflicts(ctx context.Context, amenity string, start, end time.Time, excludeID string) ([]model.Booking, error) {
	if amenity == "" || !start.Before(end) {
		return nil, fmt.Errorf("%w: malformed conflict-check window", ErrInvalidRange)
	}
	found, err := s.store.FindConflicts(ctx, amenity, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return found, nil
}

// Transition moves a booking to a new status on behalf of actor. Admins may
// perform any legal transition; residents may only cancel their own
// bookings. Approval re-checks the window atomically with the write.
func (s *Service) Transition(ctx context.Context, id string, target model.BookingStatus, actor Caller) (*model.Booking, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRange, string(target))
	}

	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	if !actor.IsAdmin {
		if target != model.StatusCancelled {
			return nil, fmt.Errorf("%w: residents may only cancel bookings", ErrForbidden)
		}
		if b.BookedBy != actor.ID {
			return nil, fmt.Errorf("%w: booking belongs to another resident", ErrForbidden)
		}
	}

	updated, err := s.store.UpdateBookingStatus(ctx, id, target)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return updated, nil
}

// Cancel vacates a booking. It is the one transition residents may trigger
// themselves, on their own bookings.
func (s *Service) Cancel(ctx context.Context, id string, actor Caller) (*model.Booking, error) {
	return s.Transition(ctx, id, model.StatusCancelled, actor)
}

// wrapStoreErr passes through typed business outcomes and folds everything
// else into ErrStorageUnavailable so callers can tell a 409 from a 500.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	var conflict *ConflictError
	var invalid *InvalidTransitionError
	if errors.Is(err, ErrNotFound) || errors.As(err, &conflict) || errors.As(err, &invalid) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
