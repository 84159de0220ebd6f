package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
	"github.com/venuepass/venuepass/internal/domain/repository"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, name, description, speakers, date, starts_at, ends_at, venue_id,
	COALESCE(created_by::text, ''), visible, max_seats, category,
	attendees::text[], registered::text[], created_at, updated_at`

func scanEvent(row pgx.Row) (*entity.Event, error) {
	e := &entity.Event{}
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Speakers, &e.Date, &e.StartsAt, &e.EndsAt,
		&e.VenueID, &e.CreatedBy, &e.Visible, &e.MaxSeats, &e.Category,
		&e.Attendees, &e.Registered, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "event not found")
		}
		return nil, err
	}
	return e, nil
}

func (r *EventRepository) Create(ctx context.Context, e *entity.Event) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (name, description, speakers, date, starts_at, ends_at, venue_id,
			created_by, visible, max_seats, category, attendees, registered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, '')::uuid, $9, $10, $11,
			COALESCE($12::uuid[], '{}'), COALESCE($13::uuid[], '{}'))
		RETURNING id, created_at, updated_at
	`, e.Name, e.Description, e.Speakers, e.Date, e.StartsAt, e.EndsAt, e.VenueID,
		e.CreatedBy, e.Visible, e.MaxSeats, e.Category, e.Attendees, e.Registered)

	return row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update rewrites the descriptive fields only; the attendees and registered
// sets are owned by the registration repository.
func (r *EventRepository) Update(ctx context.Context, e *entity.Event) error {
	e.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE events
		SET name = $1, description = $2, speakers = $3, date = $4, starts_at = $5, ends_at = $6,
			venue_id = $7, visible = $8, max_seats = $9, category = $10, updated_at = $11
		WHERE id = $12
	`, e.Name, e.Description, e.Speakers, e.Date, e.StartsAt, e.EndsAt,
		e.VenueID, e.Visible, e.MaxSeats, e.Category, e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "event not found")
	}

	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1
	`, id))
}

func (r *EventRepository) List(ctx context.Context) ([]entity.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		ORDER BY date, starts_at NULLS LAST, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepository) ListByUser(ctx context.Context, userID string) ([]entity.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE $1::uuid = ANY(registered)
		ORDER BY starts_at NULLS LAST, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListOnDay matches any timestamp falling on the day; stored dates may carry
// a time-of-day component.
func (r *EventRepository) ListOnDay(ctx context.Context, day time.Time) ([]entity.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE date >= $1 AND date < $1 + interval '1 day'
		ORDER BY starts_at NULLS LAST, id
	`, entity.NormalizeDay(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]entity.Event, error) {
	var out []entity.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

var _ repository.EventRepository = (*EventRepository)(nil)
