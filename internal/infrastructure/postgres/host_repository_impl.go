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

type HostRepository struct {
	pool *pgxpool.Pool
}

func NewHostRepository(pool *pgxpool.Pool) *HostRepository {
	return &HostRepository{pool: pool}
}

const hostColumns = `id, name, legal_name, org_type, venue_id, contact_person, contact_role,
	contact_email, contact_phone, registration_number, tax_id, is_verified,
	members::text[], hosted_events::text[], created_at, updated_at`

func scanHost(row pgx.Row) (*entity.Host, error) {
	h := &entity.Host{}
	err := row.Scan(&h.ID, &h.Name, &h.LegalName, &h.OrgType, &h.VenueID,
		&h.Contact.PersonName, &h.Contact.Role, &h.Contact.Email, &h.Contact.Phone,
		&h.RegistrationNumber, &h.TaxID, &h.IsVerified,
		&h.Members, &h.HostedEvents, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "host not found")
		}
		return nil, err
	}
	return h, nil
}

func (r *HostRepository) Create(ctx context.Context, h *entity.Host) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO hosts (name, legal_name, org_type, venue_id, contact_person, contact_role,
			contact_email, contact_phone, registration_number, tax_id, is_verified,
			members, hosted_events)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			COALESCE($12::uuid[], '{}'), COALESCE($13::uuid[], '{}'))
		RETURNING id, created_at, updated_at
	`, h.Name, h.LegalName, h.OrgType, h.VenueID, h.Contact.PersonName, h.Contact.Role,
		h.Contact.Email, h.Contact.Phone, h.RegistrationNumber, h.TaxID, h.IsVerified,
		h.Members, h.HostedEvents)

	return row.Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
}

func (r *HostRepository) Update(ctx context.Context, h *entity.Host) error {
	h.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE hosts
		SET name = $1, legal_name = $2, org_type = $3, venue_id = $4, contact_person = $5,
			contact_role = $6, contact_email = $7, contact_phone = $8, registration_number = $9,
			tax_id = $10, is_verified = $11, members = COALESCE($12::uuid[], '{}'),
			hosted_events = COALESCE($13::uuid[], '{}'), updated_at = $14
		WHERE id = $15
	`, h.Name, h.LegalName, h.OrgType, h.VenueID, h.Contact.PersonName,
		h.Contact.Role, h.Contact.Email, h.Contact.Phone, h.RegistrationNumber,
		h.TaxID, h.IsVerified, h.Members, h.HostedEvents, h.UpdatedAt, h.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "host not found")
	}
	return nil
}

func (r *HostRepository) GetByID(ctx context.Context, id string) (*entity.Host, error) {
	return scanHost(r.pool.QueryRow(ctx, `
		SELECT `+hostColumns+`
		FROM hosts
		WHERE id = $1
	`, id))
}

func (r *HostRepository) List(ctx context.Context) ([]entity.Host, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+hostColumns+`
		FROM hosts
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Host
	for rows.Next() {
		h, err := scanHost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

var _ repository.HostRepository = (*HostRepository)(nil)
