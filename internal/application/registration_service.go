package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
	repo "github.com/venuepass/venuepass/internal/domain/repository"
)

// RegistrationService is the self-service registration engine. Register runs
// the full rule chain (visibility, capacity, duplicate, daily location match,
// time-conflict scan) and then hands the two-write sequence to the
// registration repository, which re-checks the racy gates under a per-event
// lock.
type RegistrationService struct {
	Events        repo.EventRepository
	Registrations repo.RegistrationRepository
	Ledger        *LocationService
	Logger        *logrus.Logger
}

func NewRegistrationService(events repo.EventRepository, registrations repo.RegistrationRepository, ledger *LocationService, logger *logrus.Logger) *RegistrationService {
	return &RegistrationService{Events: events, Registrations: registrations, Ledger: ledger, Logger: logger}
}

// Register registers the user for the event, enforcing every self-service
// rule. Returns the updated event.
func (s *RegistrationService) Register(ctx context.Context, eventID, userID string) (*entity.Event, error) {
	ev, err := s.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !ev.Visible {
		return nil, apperr.New(apperr.Forbidden, "event %q is not open for registration", ev.Name)
	}
	if ev.IsFull() {
		return nil, apperr.New(apperr.CapacityExceeded, "event %q is full", ev.Name)
	}
	if ev.IsRegistered(userID) {
		return nil, apperr.New(apperr.AlreadyRegistered, "you are already registered for event %q", ev.Name)
	}
	if ev.Date.IsZero() {
		return nil, apperr.New(apperr.ValidationError, "event %q has no valid date", ev.Name)
	}

	day := ev.Day()
	assignment, err := s.Ledger.ActiveAssignmentFor(ctx, userID, day)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.LocationNotAssigned,
				"no location assigned for %s; register a location for the day first", day.Format("2006-01-02"))
		}
		return nil, err
	}
	if assignment.VenueID != ev.VenueID {
		return nil, apperr.New(apperr.LocationMismatch,
			"event %q is not at your assigned venue for %s", ev.Name, day.Format("2006-01-02"))
	}

	// Held events come back ordered by start time, so the first collision
	// reported is stable for a given snapshot.
	held, err := s.Events.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range held {
		other := &held[i]
		if other.ID == ev.ID {
			continue
		}
		if ev.Overlaps(other) {
			return nil, apperr.New(apperr.TimeConflict,
				"event %q overlaps with %q, which you are already registered for", ev.Name, other.Name)
		}
	}

	updated, err := s.Registrations.Register(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"event_id": eventID, "user_id": userID}).Info("user registered for event")
	return updated, nil
}

// Unregister removes the user's registration, including the legacy attendees
// entry and the join row.
func (s *RegistrationService) Unregister(ctx context.Context, eventID, userID string) (*entity.Event, error) {
	updated, err := s.Registrations.Unregister(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"event_id": eventID, "user_id": userID}).Info("user unregistered from event")
	return updated, nil
}

// RegisteredEvents lists the events the user currently holds a registration
// for, ordered by start time.
func (s *RegistrationService) RegisteredEvents(ctx context.Context, userID string) ([]entity.Event, error) {
	return s.Events.ListByUser(ctx, userID)
}
