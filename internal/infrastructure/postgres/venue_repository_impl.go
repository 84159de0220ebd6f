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

type VenueRepository struct {
	pool *pgxpool.Pool
}

func NewVenueRepository(pool *pgxpool.Pool) *VenueRepository {
	return &VenueRepository{pool: pool}
}

const venueColumns = `id, name, address_line1, address_line2, city, state, postal_code, country,
	longitude, latitude, range_m, created_at, updated_at`

func scanVenue(row pgx.Row) (*entity.Venue, error) {
	v := &entity.Venue{}
	err := row.Scan(&v.ID, &v.Name, &v.Address.Line1, &v.Address.Line2, &v.Address.City,
		&v.Address.State, &v.Address.PostalCode, &v.Address.Country,
		&v.Longitude, &v.Latitude, &v.RangeMeters, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "venue not found")
		}
		return nil, err
	}
	return v, nil
}

func (r *VenueRepository) Create(ctx context.Context, v *entity.Venue) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO venues (name, address_line1, address_line2, city, state, postal_code, country,
			longitude, latitude, range_m)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, v.Name, v.Address.Line1, v.Address.Line2, v.Address.City, v.Address.State,
		v.Address.PostalCode, v.Address.Country, v.Longitude, v.Latitude, v.RangeMeters)

	return row.Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VenueRepository) Update(ctx context.Context, v *entity.Venue) error {
	v.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE venues
		SET name = $1, address_line1 = $2, address_line2 = $3, city = $4, state = $5,
			postal_code = $6, country = $7, longitude = $8, latitude = $9, range_m = $10,
			updated_at = $11
		WHERE id = $12
	`, v.Name, v.Address.Line1, v.Address.Line2, v.Address.City, v.Address.State,
		v.Address.PostalCode, v.Address.Country, v.Longitude, v.Latitude, v.RangeMeters,
		v.UpdatedAt, v.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "venue not found")
	}

	return nil
}

func (r *VenueRepository) GetByID(ctx context.Context, id string) (*entity.Venue, error) {
	return scanVenue(r.pool.QueryRow(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE id = $1
	`, id))
}

func (r *VenueRepository) List(ctx context.Context) ([]entity.Venue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVenues(rows)
}

func (r *VenueRepository) ListByIDs(ctx context.Context, ids []string) ([]entity.Venue, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE id = ANY($1::uuid[])
		ORDER BY name, id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVenues(rows)
}

func collectVenues(rows pgx.Rows) ([]entity.Venue, error) {
	var out []entity.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

var _ repository.VenueRepository = (*VenueRepository)(nil)
