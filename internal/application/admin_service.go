package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
	repo "github.com/venuepass/venuepass/internal/domain/repository"
	"github.com/venuepass/venuepass/pkg/mailer"
)

// NotificationPublisher pushes notification jobs onto the message queue.
// Satisfied by helpers.RabbitPublisher.
type NotificationPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ForceRegisterResult reports what an administrative force-registration did.
type ForceRegisterResult struct {
	Event                *entity.Event `json:"event"`
	UnregisteredFrom     []string      `json:"unregistered_from"`
	RemovedFromAttendees bool          `json:"removed_from_attendees"`
}

// AdminService is the privileged conflict resolver. ForceRegister bypasses
// the self-service rules and repairs any time conflicts the override creates
// by cascading unregistration.
type AdminService struct {
	Events        repo.EventRepository
	Registrations repo.RegistrationRepository
	Users         repo.UserRepository
	Engine        *RegistrationService
	Notifier      NotificationPublisher
	Logger        *logrus.Logger
}

func NewAdminService(events repo.EventRepository, registrations repo.RegistrationRepository, users repo.UserRepository, engine *RegistrationService, notifier NotificationPublisher, logger *logrus.Logger) *AdminService {
	return &AdminService{Events: events, Registrations: registrations, Users: users, Engine: engine, Notifier: notifier, Logger: logger}
}

// ForceRegister registers the user for the event regardless of visibility,
// capacity or location rules. Every timed event of the user that overlaps
// the target is unregistered first; if any of those cascading unregisters
// fails, the whole operation fails and the target registration is not
// written. The cascade is serialized per user.
func (s *AdminService) ForceRegister(ctx context.Context, eventID, userID string) (*ForceRegisterResult, error) {
	var result *ForceRegisterResult
	err := s.Registrations.WithUserLock(ctx, userID, func(ctx context.Context) error {
		ev, err := s.Events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if ev.IsRegistered(userID) {
			result = &ForceRegisterResult{Event: ev, UnregisteredFrom: []string{}}
			return nil
		}

		unregistered := []string{}
		if ev.Timed() {
			held, err := s.Events.ListByUser(ctx, userID)
			if err != nil {
				return err
			}
			for i := range held {
				other := &held[i]
				if other.ID == ev.ID || !ev.Overlaps(other) {
					continue
				}
				if _, err := s.Engine.Unregister(ctx, other.ID, userID); err != nil {
					return apperr.Wrap(apperr.ConflictResolutionFailed, err,
						"could not unregister user from conflicting event %q", other.Name)
				}
				unregistered = append(unregistered, other.Name)
			}
		}

		updated, removedFromAttendees, err := s.Registrations.AdminUpsert(ctx, eventID, userID)
		if err != nil {
			return err
		}
		result = &ForceRegisterResult{
			Event:                updated,
			UnregisteredFrom:     unregistered,
			RemovedFromAttendees: removedFromAttendees,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"event_id":          eventID,
		"user_id":           userID,
		"unregistered_from": result.UnregisteredFrom,
	}).Info("admin force-registered user")
	s.notify(ctx, userID, result)
	return result, nil
}

// ReconcileRegistrations is the consistency check over the two-write
// sequence: every id in a registered set must have a join row and vice
// versa. Runs outside the synchronous request path.
func (s *AdminService) ReconcileRegistrations(ctx context.Context) ([]repo.Discrepancy, error) {
	return s.Registrations.Reconcile(ctx)
}

// notify publishes a best-effort notification about the override; delivery
// failures are logged, never surfaced to the admin caller.
func (s *AdminService) notify(ctx context.Context, userID string, res *ForceRegisterResult) {
	if s.Notifier == nil {
		return
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("skipping force-register notification")
		return
	}
	body := fmt.Sprintf("An organizer registered you for %q.", res.Event.Name)
	if len(res.UnregisteredFrom) > 0 {
		body += fmt.Sprintf(" You were unregistered from: %s.", strings.Join(res.UnregisteredFrom, ", "))
	}
	job := mailer.Job{
		To:        user.Email,
		Subject:   "Your event registration was updated",
		Text:      body,
		PushToken: user.PushToken,
		PushTitle: "Registration updated",
		PushBody:  body,
	}
	if err := s.Notifier.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("publish force-register notification failed")
	}
}
