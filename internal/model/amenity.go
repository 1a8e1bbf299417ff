package model

import "time"

// Amenity is a shared, schedulable facility. The catalog is small and
// seeded at startup; bookings reference amenities by display name.
type Amenity struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// DefaultAmenities is the seed catalog for a fresh database.
var DefaultAmenities = []Amenity{
	{ID: "clubhouse", Name: "Clubhouse"},
	{ID: "pool", Name: "Swimming Pool Area"},
	{ID: "gym", Name: "Gymnasium"},
	{ID: "tennis", Name: "Tennis Court"},
}
