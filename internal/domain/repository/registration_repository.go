package repository

import (
	"context"

	"github.com/venuepass/venuepass/internal/domain/entity"
)

// Discrepancy is one inconsistency found between an event's registered set
// and the registered_events join rows.
type Discrepancy struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Problem string `json:"problem"` // "missing_join_row" or "orphan_join_row"
}

// RegistrationRepository performs the serialized registration mutations.
//
// Register, Unregister and AdminUpsert each update the event's registered
// set and the join rows inside one transaction, holding a row lock on the
// event so concurrent attempts cannot jointly pass the capacity or duplicate
// gate.
type RegistrationRepository interface {
	// Register appends the user to the event's registered set and creates
	// the join row. Re-checks capacity and duplicates under the lock and
	// fails with CapacityExceeded or AlreadyRegistered when the race was
	// lost. Returns the updated event.
	Register(ctx context.Context, eventID, userID string) (*entity.Event, error)
	// Unregister removes the user from the registered set and from the
	// legacy attendees set, and deletes matching join rows. Fails with
	// NotRegistered when the user is not in the registered set.
	Unregister(ctx context.Context, eventID, userID string) (*entity.Event, error)
	// AdminUpsert force-adds the user, removing them from the legacy
	// attendees set when present (the returned bool reports that removal).
	// The join row write is an upsert and never duplicates.
	AdminUpsert(ctx context.Context, eventID, userID string) (*entity.Event, bool, error)
	// ListByUser returns the user's active join rows.
	ListByUser(ctx context.Context, userID string) ([]entity.Registration, error)
	// WithUserLock runs fn while holding an exclusive per-user lock,
	// serializing multi-write cascades for the same user.
	WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context) error) error
	// Reconcile reports every id present in a registered set without a join
	// row, and every join row without a matching registered entry.
	Reconcile(ctx context.Context) ([]Discrepancy, error)
}
