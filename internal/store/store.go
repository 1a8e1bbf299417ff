package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"society-booking-backend/internal/booking"
	"society-booking-backend/internal/model"
)

// BookingFilter narrows a booking listing. Zero values mean "no filter".
// The date bounds apply to the booking start time, matching how residents
// browse a day's schedule.
type BookingFilter struct {
	AmenityName string
	From        time.Time
	To          time.Time
}

// Store defines the interface for all database operations. It includes the
// atomic check-and-write surface the booking core depends on.
type Store interface {
	booking.Store

	DB() *gorm.DB

	ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)

	CreateUser(ctx context.Context, u *model.User) error
	GetUserByResidentID(ctx context.Context, residentID string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetAdminByAdminID(ctx context.Context, adminID string) (*model.Admin, error)

	ListAmenities(ctx context.Context) ([]model.Amenity, error)

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint, userID string) error
}

// gormStore implements the Store interface using GORM. A per-amenity mutex
// serializes every check-and-write for that amenity within this process; on
// Postgres the transaction additionally locks candidate rows FOR UPDATE so
// multi-replica deployments stay correct, with the partial exclusion
// constraint as the final backstop.
type gormStore struct {
	db      *gorm.DB
	timeout time.Duration

	mu        sync.Mutex
	byAmenity map[string]*sync.Mutex
}

// NewGormStore creates a new GORM-backed store. timeout bounds every store
// operation; zero disables the bound.
func NewGormStore(db *gorm.DB, timeout time.Duration) Store {
	return &gormStore{
		db:        db,
		timeout:   timeout,
		byAmenity: make(map[string]*sync.Mutex),
	}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *gormStore) amenityLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byAmenity[name]
	if !ok {
		m = &sync.Mutex{}
		s.byAmenity[name] = m
	}
	return m
}

// --- Bookings ---

// CreateBooking runs the conflict check and the insert as one critical
// section per amenity, so two concurrent requests for overlapping windows
// can never both land.
func (s *gormStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	lock := s.amenityLock(b.AmenityName)
	lock.Lock()
	defer lock.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findConflictTx(tx, true, b.AmenityName, b.StartTime, b.EndTime, "", activeStatuses)
		if err != nil {
			return err
		}
		if existing != nil {
			return booking.NewConflictError(existing)
		}
		return tx.Create(b).Error
	})
}

// UpdateBookingStatus validates the lifecycle transition and, for a change
// to Approved, re-runs the conflict check excluding the booking itself.
// Both happen inside the amenity's critical section so no other approval
// can interleave between the check and the write.
func (s *gormStore) UpdateBookingStatus(ctx context.Context, id string, to model.BookingStatus) (*model.Booking, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	// The amenity of a booking never changes, so it is safe to resolve it
	// with a plain read before taking the lock.
	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	lock := s.amenityLock(current.AmenityName)
	lock.Lock()
	defer lock.Unlock()

	var updated model.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Take(&updated, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return booking.ErrNotFound
			}
			return err
		}

		if err := booking.ValidateTransition(updated.Status, to); err != nil {
			return err
		}

		if to == model.StatusApproved {
			// Re-check against Approved bookings only: of two racing
			// pending requests the first approval wins, the second is
			// refused here.
			conflict, err := findConflictTx(tx, true, updated.AmenityName, updated.StartTime, updated.EndTime, updated.ID, approvedOnly)
			if err != nil {
				return err
			}
			if conflict != nil {
				return booking.NewConflictError(conflict)
			}
		}

		updated.Status = to
		return tx.Save(&updated).Error
	})
	if err != nil {
		return nil, err
	}

	// Re-read with the resident association populated for API responses.
	if res, err := s.GetBooking(ctx, id); err == nil {
		return res, nil
	}
	return &updated, nil
}

func (s *gormStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var b model.Booking
	err := s.db.WithContext(ctx).Preload("Resident").Take(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

var (
	activeStatuses = []string{string(model.StatusPending), string(model.StatusApproved)}
	approvedOnly   = []string{string(model.StatusApproved)}
)

// FindConflict is the pure-read conflict probe: the first colliding
// non-terminal booking by start time, or nil when the window is free.
func (s *gormStore) FindConflict(ctx context.Context, amenity string, start, end time.Time, excludeID string) (*model.Booking, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return findConflictTx(s.db.WithContext(ctx), false, amenity, start, end, excludeID, activeStatuses)
}

// FindConflicts reports every colliding non-terminal booking.
func (s *gormStore) FindConflicts(ctx context.Context, amenity string, start, end time.Time, excludeID string) ([]model.Booking, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var found []model.Booking
	err := conflictQuery(s.db.WithContext(ctx), amenity, start, end, excludeID, activeStatuses).Find(&found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// conflictQuery builds the indexed range scan over slot-holding bookings.
// Half-open overlap: existing.start < end AND existing.end > start.
func conflictQuery(tx *gorm.DB, amenity string, start, end time.Time, excludeID string, statuses []string) *gorm.DB {
	q := tx.Model(&model.Booking{}).
		Where("amenity_name = ? AND status IN ?", amenity, statuses).
		Where("start_time < ? AND end_time > ?", end, start).
		Order("start_time ASC, id ASC")
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	return q
}

func findConflictTx(tx *gorm.DB, forUpdate bool, amenity string, start, end time.Time, excludeID string, statuses []string) (*model.Booking, error) {
	q := conflictQuery(tx, amenity, start, end, excludeID, statuses)
	if forUpdate && tx.Dialector.Name() == "postgres" {
		// SQLite serializes writers on its own and rejects FOR UPDATE.
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var existing model.Booking
	err := q.Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *gormStore) ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	q := s.db.WithContext(ctx).Model(&model.Booking{}).Preload("Resident")
	if f.AmenityName != "" {
		q = q.Where("amenity_name = ?", f.AmenityName)
	}
	if !f.From.IsZero() {
		q = q.Where("start_time >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("start_time < ?", f.To)
	}

	var out []model.Booking
	if err := q.Order("start_time ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *gormStore) ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var out []model.Booking
	err := s.db.WithContext(ctx).
		Where("booked_by = ?", userID).
		Order("start_time DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --- Users and admins ---

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *gormStore) GetUserByResidentID(ctx context.Context, residentID string) (*model.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var u model.User
	if err := s.db.WithContext(ctx).Take(&u, "resident_id = ?", residentID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *gormStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var u model.User
	if err := s.db.WithContext(ctx).Take(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *gormStore) GetAdminByAdminID(ctx context.Context, adminID string) (*model.Admin, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var a model.Admin
	if err := s.db.WithContext(ctx).Take(&a, "admin_id = ?", adminID).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// --- Amenities ---

func (s *gormStore) ListAmenities(ctx context.Context) ([]model.Amenity, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var out []model.Amenity
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// --- Push subscriptions ---

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Take(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint, userID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.db.WithContext(ctx).
		Where("endpoint = ? AND user_id = ?", endpoint, userID).
		Delete(&model.PushSubscription{}).Error
}
