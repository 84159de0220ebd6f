package entity

import "time"

// Registration is the join record marking an active (user, event)
// registration. Unique per pair; created on register, deleted on unregister
// or cascading admin repair.
type Registration struct {
	ID           string
	UserID       string
	EventID      string
	Attended     bool
	RegisteredAt time.Time
}
