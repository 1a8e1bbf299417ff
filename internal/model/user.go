package model

import "time"

// DuesStatus tracks whether a resident's maintenance dues are settled.
type DuesStatus string

const (
	DuesPending DuesStatus = "Pending"
	DuesPaid    DuesStatus = "Paid"
	DuesOverdue DuesStatus = "Overdue"
)

// User represents a resident account.
type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Name         string `gorm:"size:256;not null" json:"name"`
	ResidentID   string `gorm:"uniqueIndex;size:64;not null" json:"residentId"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Current dues summary, maintained by the admin side.
	DuesAmount  float64    `gorm:"not null;default:0" json:"duesAmount"`
	DuesDueDate *time.Time `json:"duesDueDate,omitempty"`
	DuesStatus  DuesStatus `gorm:"size:16;not null;default:'Pending'" json:"duesStatus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
