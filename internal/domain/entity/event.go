package entity

import "time"

// EventCategory classifies an event.
type EventCategory string

const (
	CategoryConference EventCategory = "conference"
	CategoryMeetup     EventCategory = "meetup"
	CategoryWorkshop   EventCategory = "workshop"
	CategoryWebinar    EventCategory = "webinar"
	CategoryOther      EventCategory = "other"
)

// Event is a time-boxed gathering at a single venue.
//
// Registered is the authoritative attendee membership list; the
// registered_events join rows are a secondary index over the same fact.
// Attendees is a legacy list kept for downstream consumers; it is tracked
// independently and never merged into Registered.
type Event struct {
	ID          string
	Name        string
	Description string
	Speakers    []string
	Date        time.Time  // the calendar day the event takes place on
	StartsAt    *time.Time // nil for all-day events
	EndsAt      *time.Time // nil for all-day events
	VenueID     string
	CreatedBy   string
	Visible     bool
	MaxSeats    int // 0 means unlimited
	Category    EventCategory
	Attendees   []string
	Registered  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRegistered reports whether userID is in the registered set.
func (e *Event) IsRegistered(userID string) bool {
	for _, id := range e.Registered {
		if id == userID {
			return true
		}
	}
	return false
}

// HasAttendee reports whether userID is in the legacy attendees set.
func (e *Event) HasAttendee(userID string) bool {
	for _, id := range e.Attendees {
		if id == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the seat cap is reached. Events without a cap are
// never full.
func (e *Event) IsFull() bool {
	return e.MaxSeats > 0 && len(e.Registered) >= e.MaxSeats
}

// Timed reports whether the event has both a start and an end time. All-day
// events never participate in time-conflict checks.
func (e *Event) Timed() bool {
	return e.StartsAt != nil && e.EndsAt != nil
}

// Overlaps reports whether two timed events collide under half-open interval
// semantics: an event ending exactly when another starts does not conflict.
func (e *Event) Overlaps(other *Event) bool {
	if !e.Timed() || !other.Timed() {
		return false
	}
	return other.StartsAt.Before(*e.EndsAt) && other.EndsAt.After(*e.StartsAt)
}

// Day returns the event's calendar day normalized to midnight UTC.
func (e *Event) Day() time.Time {
	return NormalizeDay(e.Date)
}

// NormalizeDay strips the time-of-day portion, anchoring the date at
// midnight UTC.
func NormalizeDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
