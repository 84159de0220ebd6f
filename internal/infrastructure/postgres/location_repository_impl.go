package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
	"github.com/venuepass/venuepass/internal/domain/repository"
)

const uniqueViolation = "23505"

type LocationRepository struct {
	pool *pgxpool.Pool
}

func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

func scanAssignment(row pgx.Row) (*entity.LocationAssignment, error) {
	a := &entity.LocationAssignment{}
	var history []byte
	err := row.Scan(&a.ID, &a.UserID, &a.VenueID, &a.Day, &a.Status, &history, &a.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "no location assignment for this day")
		}
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.History); err != nil {
			return nil, err
		}
	}
	if a.History == nil {
		a.History = []entity.LocationChange{}
	}
	return a, nil
}

func (r *LocationRepository) GetForDay(ctx context.Context, userID string, day time.Time) (*entity.LocationAssignment, error) {
	return scanAssignment(r.pool.QueryRow(ctx, `
		SELECT id, user_id, venue_id, event_date, status, history, registered_at
		FROM registered_locations
		WHERE user_id = $1 AND event_date = $2
	`, userID, day))
}

func (r *LocationRepository) Insert(ctx context.Context, a *entity.LocationAssignment) error {
	history, err := json.Marshal(a.History)
	if err != nil {
		return err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO registered_locations (user_id, venue_id, event_date, status, history, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, a.UserID, a.VenueID, a.Day, a.Status, history, a.RegisteredAt)

	if err := row.Scan(&a.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateDay
		}
		return err
	}
	return nil
}

func (r *LocationRepository) Update(ctx context.Context, a *entity.LocationAssignment, prevVenueID string) error {
	history, err := json.Marshal(a.History)
	if err != nil {
		return err
	}

	// Compare-and-swap on the venue read by the caller; a concurrent
	// reassignment makes the predicate miss and the caller retries.
	res, err := r.pool.Exec(ctx, `
		UPDATE registered_locations
		SET venue_id = $1, status = $2, history = $3, registered_at = $4
		WHERE user_id = $5 AND event_date = $6 AND venue_id = $7
	`, a.VenueID, a.Status, history, a.RegisteredAt, a.UserID, a.Day, prevVenueID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrStaleAssignment
	}
	return nil
}

func (r *LocationRepository) ListByUser(ctx context.Context, userID string) ([]entity.LocationAssignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, venue_id, event_date, status, history, registered_at
		FROM registered_locations
		WHERE user_id = $1
		ORDER BY event_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.LocationAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *LocationRepository) AppendLog(ctx context.Context, l *entity.LocationLog) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO location_logs (user_id, latitude, longitude, logged_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, l.UserID, l.Latitude, l.Longitude, l.LoggedAt)

	return row.Scan(&l.ID)
}

var _ repository.LocationRepository = (*LocationRepository)(nil)
