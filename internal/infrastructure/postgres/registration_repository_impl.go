package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
	"github.com/venuepass/venuepass/internal/domain/repository"
)

// RegistrationRepository owns the two-write registration sequence. Each
// mutation runs in one transaction holding a FOR UPDATE lock on the event
// row, so the capacity and duplicate gates are re-checked serially and the
// registered set can never diverge from the join rows.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) lockEvent(ctx context.Context, tx pgx.Tx, eventID string) (*entity.Event, error) {
	return scanEvent(tx.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventID))
}

func (r *RegistrationRepository) Register(ctx context.Context, eventID, userID string) (*entity.Event, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ev, err := r.lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.IsRegistered(userID) {
		return nil, apperr.New(apperr.AlreadyRegistered, "you are already registered for event %q", ev.Name)
	}
	if ev.IsFull() {
		return nil, apperr.New(apperr.CapacityExceeded, "event %q is full", ev.Name)
	}

	row := tx.QueryRow(ctx, `
		UPDATE events
		SET registered = array_append(registered, $2::uuid), updated_at = now()
		WHERE id = $1
		RETURNING `+eventColumns+`
	`, eventID, userID)
	updated, err := scanEvent(row)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO registered_events (user_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`, userID, eventID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RegistrationRepository) Unregister(ctx context.Context, eventID, userID string) (*entity.Event, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ev, err := r.lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if !ev.IsRegistered(userID) {
		return nil, apperr.New(apperr.NotRegistered, "user is not registered for event %q", ev.Name)
	}

	row := tx.QueryRow(ctx, `
		UPDATE events
		SET registered = array_remove(registered, $2::uuid),
			attendees = array_remove(attendees, $2::uuid),
			updated_at = now()
		WHERE id = $1
		RETURNING `+eventColumns+`
	`, eventID, userID)
	updated, err := scanEvent(row)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM registered_events
		WHERE user_id = $1 AND event_id = $2
	`, userID, eventID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RegistrationRepository) AdminUpsert(ctx context.Context, eventID, userID string) (*entity.Event, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	ev, err := r.lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, false, err
	}
	removed := ev.HasAttendee(userID)

	row := tx.QueryRow(ctx, `
		UPDATE events
		SET attendees = array_remove(attendees, $2::uuid),
			registered = CASE WHEN $2::uuid = ANY(registered)
				THEN registered ELSE array_append(registered, $2::uuid) END,
			updated_at = now()
		WHERE id = $1
		RETURNING `+eventColumns+`
	`, eventID, userID)
	updated, err := scanEvent(row)
	if err != nil {
		return nil, false, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO registered_events (user_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`, userID, eventID); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return updated, removed, nil
}

func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string) ([]entity.Registration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, event_id, attended, registered_at
		FROM registered_events
		WHERE user_id = $1
		ORDER BY registered_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Registration
	for rows.Next() {
		var reg entity.Registration
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.Attended, &reg.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// WithUserLock serializes fn per user via a session advisory lock held on a
// dedicated connection. Releasing the connection releases the lock even if
// fn panics.
func (r *RegistrationRepository) WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, userID); err != nil {
		return err
	}
	defer conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, userID)

	return fn(ctx)
}

func (r *RegistrationRepository) Reconcile(ctx context.Context) ([]repository.Discrepancy, error) {
	var out []repository.Discrepancy

	rows, err := r.pool.Query(ctx, `
		SELECT e.id, u::text
		FROM events e, unnest(e.registered) AS u
		WHERE NOT EXISTS (
			SELECT 1 FROM registered_events re
			WHERE re.event_id = e.id AND re.user_id = u
		)
		ORDER BY e.id, u
	`)
	if err != nil {
		return nil, err
	}
	out, err = collectDiscrepancies(rows, "missing_join_row", out)
	if err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT re.event_id, re.user_id
		FROM registered_events re
		LEFT JOIN events e ON e.id = re.event_id
		WHERE e.id IS NULL OR NOT (re.user_id = ANY(e.registered))
		ORDER BY re.event_id, re.user_id
	`)
	if err != nil {
		return nil, err
	}
	return collectDiscrepancies(rows, "orphan_join_row", out)
}

func collectDiscrepancies(rows pgx.Rows, problem string, out []repository.Discrepancy) ([]repository.Discrepancy, error) {
	defer rows.Close()
	for rows.Next() {
		d := repository.Discrepancy{Problem: problem}
		if err := rows.Scan(&d.EventID, &d.UserID); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

var _ repository.RegistrationRepository = (*RegistrationRepository)(nil)
