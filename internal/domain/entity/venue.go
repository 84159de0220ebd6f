package entity

import "time"

// Address is the postal breakdown of a venue.
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Venue is a physical event location with coordinates and an allowed
// proximity radius for geofence checks.
type Venue struct {
	ID          string
	Name        string
	Address     Address
	Longitude   float64
	Latitude    float64
	RangeMeters float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
