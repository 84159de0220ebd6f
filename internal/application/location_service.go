package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
	repo "github.com/venuepass/venuepass/internal/domain/repository"
)

// DefaultChangeReason is recorded when a reassignment carries no reason.
const DefaultChangeReason = "USER_LOCATION_UPDATE"

// LocationService is the daily location ledger: one active assignment per
// user per calendar day, with prior venues kept as a history trail. All
// mutations go through Assign.
type LocationService struct {
	Locations repo.LocationRepository
	Venues    repo.VenueRepository
	Logger    *logrus.Logger
	now       func() time.Time
}

func NewLocationService(locations repo.LocationRepository, venues repo.VenueRepository, logger *logrus.Logger) *LocationService {
	return &LocationService{Locations: locations, Venues: venues, Logger: logger, now: time.Now}
}

// Assign creates or updates the user's assignment for the given day.
// The day is normalized to midnight before any lookup. Re-assigning the same
// venue is a no-op; a different venue pushes the previous one into history
// and keeps the record ACTIVE.
func (s *LocationService) Assign(ctx context.Context, userID, venueID string, day time.Time, reason string) (*entity.LocationAssignment, error) {
	if userID == "" {
		return nil, apperr.New(apperr.ValidationError, "user id is required")
	}
	if venueID == "" {
		return nil, apperr.New(apperr.ValidationError, "venue id is required")
	}
	if day.IsZero() {
		return nil, apperr.New(apperr.ValidationError, "day is required")
	}
	if _, err := s.Venues.GetByID(ctx, venueID); err != nil {
		return nil, err
	}

	target := entity.NormalizeDay(day)
	if reason == "" {
		reason = DefaultChangeReason
	}

	// An insert losing the unique-key race retries as an update of the
	// record the winner created; an update losing the compare-and-swap
	// re-reads and retries so no history entry is lost.
	for attempt := 0; attempt < 5; attempt++ {
		existing, err := s.Locations.GetForDay(ctx, userID, target)
		if err != nil && !apperr.Is(err, apperr.NotFound) {
			return nil, err
		}

		if existing == nil {
			a := &entity.LocationAssignment{
				UserID:       userID,
				VenueID:      venueID,
				Day:          target,
				Status:       entity.AssignmentActive,
				History:      []entity.LocationChange{},
				RegisteredAt: s.now(),
			}
			err := s.Locations.Insert(ctx, a)
			if errors.Is(err, repo.ErrDuplicateDay) {
				s.Logger.WithFields(logrus.Fields{"user_id": userID, "day": target}).
					Debug("lost assignment insert race, retrying as update")
				continue
			}
			if err != nil {
				return nil, err
			}
			return a, nil
		}

		if existing.VenueID == venueID {
			return existing, nil
		}

		prevVenue := existing.VenueID
		existing.History = append(existing.History, entity.LocationChange{
			VenueID:   prevVenue,
			ChangedAt: s.now(),
			Reason:    reason,
		})
		existing.VenueID = venueID
		existing.Status = entity.AssignmentActive
		existing.RegisteredAt = s.now()
		err = s.Locations.Update(ctx, existing, prevVenue)
		if errors.Is(err, repo.ErrStaleAssignment) {
			s.Logger.WithFields(logrus.Fields{"user_id": userID, "day": target}).
				Debug("lost assignment update race, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		return existing, nil
	}
	return nil, apperr.New(apperr.Internal, "could not settle location assignment")
}

// ActiveAssignmentFor returns the ACTIVE assignment for the user on the
// given day, or NotFound.
func (s *LocationService) ActiveAssignmentFor(ctx context.Context, userID string, day time.Time) (*entity.LocationAssignment, error) {
	a, err := s.Locations.GetForDay(ctx, userID, entity.NormalizeDay(day))
	if err != nil {
		return nil, err
	}
	if a.Status != entity.AssignmentActive {
		return nil, apperr.New(apperr.NotFound, "no active location assignment for this day")
	}
	return a, nil
}

// AssignmentsFor lists the user's ledger records, newest day first.
func (s *LocationService) AssignmentsFor(ctx context.Context, userID string) ([]entity.LocationAssignment, error) {
	return s.Locations.ListByUser(ctx, userID)
}
