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

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, fullname, email, password_hash, avatar_url, role, subrole,
	COALESCE(host_id::text, ''), is_verified, push_token, push_platform, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Fullname, &u.Email, &u.Password, &u.AvatarURL, &u.Role, &u.Subrole,
		&u.HostID, &u.IsVerified, &u.PushToken, &u.PushPlatform, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (fullname, email, password_hash, avatar_url, role, subrole, host_id,
			is_verified, push_token, push_platform)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, u.Fullname, u.Email, u.Password, u.AvatarURL, u.Role, u.Subrole, u.HostID,
		u.IsVerified, u.PushToken, u.PushPlatform)

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET fullname = $1, email = $2, password_hash = $3, avatar_url = $4, role = $5,
			subrole = $6, host_id = NULLIF($7, '')::uuid, is_verified = $8,
			push_token = $9, push_platform = $10, updated_at = $11
		WHERE id = $12
	`, u.Fullname, u.Email, u.Password, u.AvatarURL, u.Role,
		u.Subrole, u.HostID, u.IsVerified,
		u.PushToken, u.PushPlatform, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}

	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
