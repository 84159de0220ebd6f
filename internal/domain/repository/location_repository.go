package repository

import (
	"context"
	"errors"
	"time"

	"github.com/venuepass/venuepass/internal/domain/entity"
)

// ErrDuplicateDay is returned by Insert when another assignment for the same
// (user, day) pair already exists; the caller retries as an update.
var ErrDuplicateDay = errors.New("location assignment already exists for this day")

// ErrStaleAssignment is returned by Update when the record no longer holds
// the venue the caller read; the caller re-reads and retries.
var ErrStaleAssignment = errors.New("location assignment changed since read")

// LocationRepository persists the daily location ledger and raw GPS logs.
type LocationRepository interface {
	// GetForDay returns the assignment for the user on the given normalized
	// day, or a NotFound error when none exists.
	GetForDay(ctx context.Context, userID string, day time.Time) (*entity.LocationAssignment, error)
	// Insert creates a new assignment, relying on the unique
	// (user, day) key; losing that race surfaces as ErrDuplicateDay.
	Insert(ctx context.Context, a *entity.LocationAssignment) error
	// Update writes the mutated assignment only if the stored record still
	// holds prevVenueID, so concurrent reassignments cannot overwrite each
	// other's history; a lost race surfaces as ErrStaleAssignment.
	Update(ctx context.Context, a *entity.LocationAssignment, prevVenueID string) error
	ListByUser(ctx context.Context, userID string) ([]entity.LocationAssignment, error)
	AppendLog(ctx context.Context, l *entity.LocationLog) error
}
