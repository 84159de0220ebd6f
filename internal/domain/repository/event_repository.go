package repository

import (
	"context"
	"time"

	"github.com/venuepass/venuepass/internal/domain/entity"
)

// EventRepository defines persistence for events.
type EventRepository interface {
	Create(ctx context.Context, e *entity.Event) error
	Update(ctx context.Context, e *entity.Event) error
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	List(ctx context.Context) ([]entity.Event, error)
	// ListByUser returns the events the user is currently registered for,
	// ordered by ascending start time so conflict scans are deterministic.
	ListByUser(ctx context.Context, userID string) ([]entity.Event, error)
	// ListOnDay returns the events taking place on the given calendar day
	// (normalized to midnight).
	ListOnDay(ctx context.Context, day time.Time) ([]entity.Event, error)
}
