package repository

import (
	"context"

	"github.com/venuepass/venuepass/internal/domain/entity"
)

// HostRepository defines persistence for organizing hosts.
type HostRepository interface {
	Create(ctx context.Context, h *entity.Host) error
	Update(ctx context.Context, h *entity.Host) error
	GetByID(ctx context.Context, id string) (*entity.Host, error)
	List(ctx context.Context) ([]entity.Host, error)
}
