package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
	repo "github.com/venuepass/venuepass/internal/domain/repository"
	"github.com/venuepass/venuepass/pkg/geo"
)

// VerificationStatus is the outcome class of a live-location check.
type VerificationStatus string

const (
	StatusVerified           VerificationStatus = "verified"
	StatusRelocated          VerificationStatus = "relocated"
	StatusOutOfBounds        VerificationStatus = "out_of_bounds"
	StatusUnregisteredNearby VerificationStatus = "unregistered_nearby"
	StatusNoEventAtNearest   VerificationStatus = "no_event_today_at_nearest"
	StatusNoNearbyEvents     VerificationStatus = "no_nearby_events"
	StatusError              VerificationStatus = "error"
)

// VerificationResult is returned to the caller; persistence failures surface
// as StatusError, never as a raised error.
type VerificationResult struct {
	Success          bool               `json:"success"`
	Status           VerificationStatus `json:"status"`
	Message          string             `json:"message"`
	NearestVenueID   string             `json:"nearest_venue_id,omitempty"`
	NearestVenueName string             `json:"nearest_venue_name,omitempty"`
	DistanceMeters   float64            `json:"distance_meters,omitempty"`
}

// VerificationService checks a user's live GPS position against their daily
// venue assignment, falling back to a nearest-venue search when no
// assignment exists for today.
type VerificationService struct {
	Ledger *LocationService
	Venues repo.VenueRepository
	Events repo.EventRepository
	Logger *logrus.Logger
	now    func() time.Time
}

func NewVerificationService(ledger *LocationService, venues repo.VenueRepository, events repo.EventRepository, logger *logrus.Logger) *VerificationService {
	return &VerificationService{Ledger: ledger, Venues: venues, Events: events, Logger: logger, now: time.Now}
}

// Verify resolves the user's position against today's assignment.
func (s *VerificationService) Verify(ctx context.Context, userID string, lat, lon float64) *VerificationResult {
	s.logSample(ctx, userID, lat, lon)

	today := entity.NormalizeDay(s.now())
	assignment, err := s.Ledger.ActiveAssignmentFor(ctx, userID, today)
	switch {
	case err == nil:
		return s.verifyAssigned(ctx, assignment, today, lat, lon)
	case apperr.Is(err, apperr.NotFound):
		return s.verifyUnassigned(ctx, today, lat, lon)
	default:
		s.Logger.WithError(err).WithField("user_id", userID).Error("location verification failed")
		return errorResult()
	}
}

func (s *VerificationService) verifyAssigned(ctx context.Context, assignment *entity.LocationAssignment, today time.Time, lat, lon float64) *VerificationResult {
	assigned, err := s.Venues.GetByID(ctx, assignment.VenueID)
	if err != nil {
		s.Logger.WithError(err).WithField("venue_id", assignment.VenueID).Error("assigned venue lookup failed")
		return errorResult()
	}

	distance := geo.Distance(lat, lon, assigned.Latitude, assigned.Longitude)
	if distance <= assigned.RangeMeters {
		return &VerificationResult{
			Success: true,
			Status:  StatusVerified,
			Message: fmt.Sprintf("You are at your assigned venue: %s.", assigned.Name),
		}
	}

	venues, err := s.venuesWithEventsOn(ctx, today)
	if err != nil {
		s.Logger.WithError(err).Error("today's venues lookup failed")
		return errorResult()
	}

	var nearest *entity.Venue
	minDistance := math.Inf(1)
	for i := range venues {
		v := &venues[i]
		if v.ID == assigned.ID {
			continue
		}
		d := geo.Distance(lat, lon, v.Latitude, v.Longitude)
		if d <= v.RangeMeters {
			return &VerificationResult{
				Status: StatusRelocated,
				Message: fmt.Sprintf("You are at %q, but you are assigned to %q. Please ask an organizer to update your location.",
					v.Name, assigned.Name),
				NearestVenueID:   v.ID,
				NearestVenueName: v.Name,
				DistanceMeters:   math.Round(d),
			}
		}
		if d < minDistance {
			minDistance = d
			nearest = v
		}
	}

	res := &VerificationResult{Status: StatusOutOfBounds}
	msg := fmt.Sprintf("You are not in range of your assigned venue %q.", assigned.Name)
	if nearest != nil {
		msg += fmt.Sprintf(" The nearest other event venue is %q, approximately %.0f meters away.", nearest.Name, minDistance)
		res.NearestVenueID = nearest.ID
		res.NearestVenueName = nearest.Name
		res.DistanceMeters = math.Round(minDistance)
	}
	res.Message = msg + " Please ask an organizer for assistance."
	return res
}

func (s *VerificationService) verifyUnassigned(ctx context.Context, today time.Time, lat, lon float64) *VerificationResult {
	venues, err := s.Venues.List(ctx)
	if err != nil {
		s.Logger.WithError(err).Error("venue list failed")
		return errorResult()
	}
	if len(venues) == 0 {
		return &VerificationResult{
			Status:  StatusNoNearbyEvents,
			Message: "You do not have an assigned venue for today and no nearby events were found.",
		}
	}

	// True nearest neighbor, no maximum radius.
	var nearest *entity.Venue
	minDistance := math.Inf(1)
	for i := range venues {
		d := geo.Distance(lat, lon, venues[i].Latitude, venues[i].Longitude)
		if d < minDistance {
			minDistance = d
			nearest = &venues[i]
		}
	}

	events, err := s.Events.ListOnDay(ctx, today)
	if err != nil {
		s.Logger.WithError(err).Error("today's events lookup failed")
		return errorResult()
	}
	for i := range events {
		if events[i].VenueID == nearest.ID {
			return &VerificationResult{
				Status: StatusUnregisteredNearby,
				Message: fmt.Sprintf("You are not assigned for today, but the event %q is happening at nearby venue %q. You are approximately %.0f meters away. Please see an organizer to get registered.",
					events[i].Name, nearest.Name, minDistance),
				NearestVenueID:   nearest.ID,
				NearestVenueName: nearest.Name,
				DistanceMeters:   math.Round(minDistance),
			}
		}
	}
	return &VerificationResult{
		Status: StatusNoEventAtNearest,
		Message: fmt.Sprintf("You do not have an assigned venue for today. The nearest event venue is %q, but there are no events scheduled there for today.",
			nearest.Name),
		NearestVenueID:   nearest.ID,
		NearestVenueName: nearest.Name,
		DistanceMeters:   math.Round(minDistance),
	}
}

// venuesWithEventsOn returns the distinct venues hosting an event on the day.
func (s *VerificationService) venuesWithEventsOn(ctx context.Context, day time.Time) ([]entity.Venue, error) {
	events, err := s.Events.ListOnDay(ctx, day)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(events))
	ids := make([]string, 0, len(events))
	for i := range events {
		if id := events[i].VenueID; !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.Venues.ListByIDs(ctx, ids)
}

// logSample records the raw GPS sample for the audit trail; failures are
// logged and do not affect the verification outcome.
func (s *VerificationService) logSample(ctx context.Context, userID string, lat, lon float64) {
	l := &entity.LocationLog{UserID: userID, Latitude: lat, Longitude: lon, LoggedAt: s.now()}
	if err := s.Ledger.Locations.AppendLog(ctx, l); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("location log append failed")
	}
}

func errorResult() *VerificationResult {
	return &VerificationResult{
		Status:  StatusError,
		Message: "An error occurred during location verification.",
	}
}
