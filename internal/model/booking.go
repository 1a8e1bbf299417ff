package model

import "time"

// BookingStatus enumerates the lifecycle states of an amenity booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusApproved  BookingStatus = "Approved"
	StatusRejected  BookingStatus = "Rejected"
	StatusCancelled BookingStatus = "Cancelled"
)

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether a booking in this status is vacated for good.
// Terminal bookings never count toward conflict detection.
func (s BookingStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// ActiveStatuses are the statuses that hold a time slot.
var ActiveStatuses = []BookingStatus{StatusPending, StatusApproved}

// Booking represents one amenity reservation with a half-open
// [StartTime, EndTime) interval.
type Booking struct {
	ID               string        `gorm:"primaryKey;size:36" json:"id"`
	AmenityName      string        `gorm:"size:128;not null;index:idx_bookings_amenity_window,priority:1" json:"amenityName"`
	BookedBy         string        `gorm:"size:36;not null;index" json:"-"`
	EventDescription string        `gorm:"size:512;not null" json:"eventDescription"`
	StartTime        time.Time     `gorm:"not null;index:idx_bookings_amenity_window,priority:2" json:"startTime"`
	EndTime          time.Time     `gorm:"not null;index:idx_bookings_amenity_window,priority:3" json:"endTime"`
	Status           BookingStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`

	// Associations
	Resident *User `gorm:"foreignKey:BookedBy" json:"bookedBy,omitempty"`
}
