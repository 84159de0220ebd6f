package repository

import (
	"context"

	"github.com/venuepass/venuepass/internal/domain/entity"
)

// VenueRepository defines persistence for event venues.
type VenueRepository interface {
	Create(ctx context.Context, v *entity.Venue) error
	Update(ctx context.Context, v *entity.Venue) error
	GetByID(ctx context.Context, id string) (*entity.Venue, error)
	List(ctx context.Context) ([]entity.Venue, error)
	ListByIDs(ctx context.Context, ids []string) ([]entity.Venue, error)
}
