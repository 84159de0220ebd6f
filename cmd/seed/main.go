package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/venuepass/venuepass/config"
	"github.com/venuepass/venuepass/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@venuepass.dev"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (fullname, email, password_hash, role, is_verified)
		VALUES ($1, $2, $3, 'admin', true)
		ON CONFLICT (email) DO UPDATE SET role = 'admin'
		RETURNING id
	`, "Demo Admin", email, hash).Scan(&adminID)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", adminID, email, password)

	venues := []struct {
		name     string
		city     string
		lon, lat float64
		rangeM   float64
	}{
		{"Main Exhibition Hall", "Berlin", 13.4050, 52.5200, 75},
		{"Riverside Auditorium", "Berlin", 13.4150, 52.5150, 50},
		{"Garden Pavilion", "Berlin", 13.3950, 52.5250, 100},
	}

	venueIDs := make([]string, 0, len(venues))
	for _, v := range venues {
		var id string
		err := db.QueryRow(`
			INSERT INTO venues (name, city, longitude, latitude, range_m)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, v.name, v.city, v.lon, v.lat, v.rangeM).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed venue %q: %v", v.name, err)
		}
		venueIDs = append(venueIDs, id)
		fmt.Printf("seeded venue: id=%s name=%s\n", id, v.name)
	}

	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	events := []struct {
		name    string
		venue   string
		startH  int
		endH    int
		seats   int
		allDay  bool
		visible bool
	}{
		{"Opening Keynote", venueIDs[0], 9, 10, 200, false, true},
		{"Poster Session", venueIDs[1], 10, 12, 80, false, true},
		{"Exhibition Day", venueIDs[2], 0, 0, 0, true, true},
	}

	for _, e := range events {
		var startsAt, endsAt any
		if !e.allDay {
			startsAt = day.Add(time.Duration(e.startH) * time.Hour)
			endsAt = day.Add(time.Duration(e.endH) * time.Hour)
		}
		var id string
		err := db.QueryRow(`
			INSERT INTO events (name, date, starts_at, ends_at, venue_id, created_by, visible, max_seats)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, e.name, day, startsAt, endsAt, e.venue, adminID, e.visible, e.seats).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed event %q: %v", e.name, err)
		}
		fmt.Printf("seeded event: id=%s name=%s\n", id, e.name)
	}
}
