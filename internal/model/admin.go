package model

import "time"

// Admin represents a society management account with the administrative
// capability (approving and rejecting bookings, maintaining dues).
type Admin struct {
	ID           string    `gorm:"primaryKey;size:36"`
	AdminID      string    `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
