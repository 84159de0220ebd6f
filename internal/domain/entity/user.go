package entity

import "time"

// User is the aggregate root for attendees, organisers and admins.
// Password holds a bcrypt hash. HostID is set while the user is a member of
// an organizing host; a user belongs to at most one host at a time.
type User struct {
	ID           string
	Fullname     string
	Email        string
	Password     string
	AvatarURL    string
	Role         Role
	Subrole      Subrole
	HostID       string // empty when the user belongs to no host
	IsVerified   bool
	PushToken    string
	PushPlatform string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
