package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
	repo "github.com/venuepass/venuepass/internal/domain/repository"
)

// EventInput is the payload for creating or updating an event. An empty ID
// creates; a set ID updates.
type EventInput struct {
	ID          string
	Name        string
	Description string
	Speakers    []string
	Date        time.Time
	StartsAt    *time.Time
	EndsAt      *time.Time
	VenueID     string
	Visible     *bool
	MaxSeats    int
	Category    entity.EventCategory
}

// EventService handles event CRUD and the search index. Registration rules
// live in RegistrationService.
type EventService struct {
	Events  repo.EventRepository
	Venues  repo.VenueRepository
	ES      *elasticsearch.Client
	ESIndex string
	Logger  *logrus.Logger
	now     func() time.Time
}

func NewEventService(events repo.EventRepository, venues repo.VenueRepository, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *EventService {
	return &EventService{Events: events, Venues: venues, ES: es, ESIndex: esIndex, Logger: logger, now: time.Now}
}

// CreateOrUpdate validates and persists the event, then refreshes the search
// index (best effort).
func (s *EventService) CreateOrUpdate(ctx context.Context, createdBy string, in EventInput) (*entity.Event, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.New(apperr.ValidationError, "event name is required")
	}
	if in.Date.IsZero() {
		return nil, apperr.New(apperr.ValidationError, "event date is required")
	}
	if in.VenueID == "" {
		return nil, apperr.New(apperr.ValidationError, "event venue is required")
	}
	if (in.StartsAt == nil) != (in.EndsAt == nil) {
		return nil, apperr.New(apperr.ValidationError, "start and end time must be set together")
	}
	if in.StartsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		return nil, apperr.New(apperr.ValidationError, "event end time must be after its start time")
	}
	if in.MaxSeats < 0 {
		return nil, apperr.New(apperr.ValidationError, "max seats cannot be negative")
	}
	if _, err := s.Venues.GetByID(ctx, in.VenueID); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = entity.CategoryOther
	}

	var ev *entity.Event
	if in.ID == "" {
		ev = &entity.Event{
			Name:        in.Name,
			Description: in.Description,
			Speakers:    in.Speakers,
			Date:        in.Date,
			StartsAt:    in.StartsAt,
			EndsAt:      in.EndsAt,
			VenueID:     in.VenueID,
			CreatedBy:   createdBy,
			Visible:     in.Visible == nil || *in.Visible,
			MaxSeats:    in.MaxSeats,
			Category:    in.Category,
			Attendees:   []string{},
			Registered:  []string{},
		}
		if err := s.Events.Create(ctx, ev); err != nil {
			return nil, err
		}
	} else {
		existing, err := s.Events.GetByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		existing.Name = in.Name
		existing.Description = in.Description
		existing.Speakers = in.Speakers
		existing.Date = in.Date
		existing.StartsAt = in.StartsAt
		existing.EndsAt = in.EndsAt
		existing.VenueID = in.VenueID
		existing.MaxSeats = in.MaxSeats
		existing.Category = in.Category
		if in.Visible != nil {
			existing.Visible = *in.Visible
		}
		if err := s.Events.Update(ctx, existing); err != nil {
			return nil, err
		}
		ev = existing
	}

	s.indexEvent(ctx, ev)
	return ev, nil
}

// List returns all events.
func (s *EventService) List(ctx context.Context) ([]entity.Event, error) {
	return s.Events.List(ctx)
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id string) (*entity.Event, error) {
	if id == "" {
		return nil, apperr.New(apperr.ValidationError, "event id is required")
	}
	return s.Events.GetByID(ctx, id)
}

// indexEvent pushes the event document into Elasticsearch. Index failures
// are logged; the write already succeeded in Postgres.
func (s *EventService) indexEvent(ctx context.Context, ev *entity.Event) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"name":        ev.Name,
		"description": ev.Description,
		"speakers":    ev.Speakers,
		"category":    ev.Category,
		"date":        ev.Date,
		"venue_id":    ev.VenueID,
		"visible":     ev.Visible,
	}
	b, _ := json.Marshal(doc)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: ev.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("event_id", ev.ID).Warn("event index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("event_id", ev.ID).WithField("status", res.StatusCode).Warn("event index rejected")
	}
}

// Search performs a multi_match query over name, description and speakers.
func (s *EventService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "description", "speakers"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		src := h.Source
		if src == nil {
			src = map[string]any{}
		}
		src["id"] = h.ID
		out = append(out, src)
	}
	return out, nil
}

// CreateOrUpdateVenue is the admin CRUD entry for venues.
func (s *EventService) CreateOrUpdateVenue(ctx context.Context, v *entity.Venue) (*entity.Venue, error) {
	if strings.TrimSpace(v.Name) == "" {
		return nil, apperr.New(apperr.ValidationError, "venue name is required")
	}
	if v.Latitude < -90 || v.Latitude > 90 || v.Longitude < -180 || v.Longitude > 180 {
		return nil, apperr.New(apperr.ValidationError, "venue coordinates are out of range")
	}
	if v.RangeMeters <= 0 {
		return nil, apperr.New(apperr.ValidationError, "venue range must be positive")
	}
	if v.ID == "" {
		if err := s.Venues.Create(ctx, v); err != nil {
			return nil, err
		}
		return v, nil
	}
	if err := s.Venues.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ListVenues returns all venues.
func (s *EventService) ListVenues(ctx context.Context) ([]entity.Venue, error) {
	return s.Venues.List(ctx)
}
