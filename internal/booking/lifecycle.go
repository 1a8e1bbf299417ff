package booking

import "society-booking-backend/internal/model"

// transitions is the legal status-change table. Rejected and Cancelled are
// terminal; Approved may still be cancelled.
var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.StatusPending:  {model.StatusApproved, model.StatusRejected, model.StatusCancelled},
	model.StatusApproved: {model.StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to
// another.
func CanTransition(from, to model.BookingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an InvalidTransitionError when the change is
// illegal, nil otherwise.
func ValidateTransition(from, to model.BookingStatus) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
