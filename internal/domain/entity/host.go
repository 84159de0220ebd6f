package entity

import "time"

// HostContact is the contact person recorded for an organizing host.
type HostContact struct {
	PersonName string
	Role       string
	Email      string
	Phone      string
}

// Host is an organizing entity. Every member's User.HostID must equal the
// host's ID, and a host with members may not be emptied through the member
// removal path.
type Host struct {
	ID                 string
	Name               string
	LegalName          string
	OrgType            string
	VenueID            string // home venue, required
	Contact            HostContact
	RegistrationNumber string
	TaxID              string
	IsVerified         bool
	Members            []string
	HostedEvents       []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasMember reports whether userID is in the host's member set.
func (h *Host) HasMember(userID string) bool {
	for _, m := range h.Members {
		if m == userID {
			return true
		}
	}
	return false
}
