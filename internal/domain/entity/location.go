package entity

import "time"

// AssignmentStatus tracks whether a daily location assignment is current.
type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "ACTIVE"
	AssignmentInactive AssignmentStatus = "INACTIVE"
)

// LocationChange records a prior venue in a day's assignment history.
type LocationChange struct {
	VenueID   string    `json:"venue"`
	ChangedAt time.Time `json:"changedAt"`
	Reason    string    `json:"reason"`
}

// LocationAssignment is the single venue a user is designated to attend on a
// given calendar day. At most one record exists per (user, day); reassigning
// the day mutates the record and pushes the old venue into History.
type LocationAssignment struct {
	ID           string
	UserID       string
	VenueID      string
	Day          time.Time // normalized to midnight UTC
	Status       AssignmentStatus
	History      []LocationChange
	RegisteredAt time.Time
}

// LocationLog is a raw GPS sample captured during live verification.
type LocationLog struct {
	ID        string
	UserID    string
	Latitude  float64
	Longitude float64
	LoggedAt  time.Time
}
