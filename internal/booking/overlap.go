package booking

import "time"

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// intersect. The end instant is excluded, so a booking ending exactly when
// another starts is not a conflict. Strict containment falls out of the
// same inequality.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
