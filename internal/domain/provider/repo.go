package provider

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Provider, int, error)
}

type AvailabilityRepository interface {
	GetWeekly(ctx context.Context, providerID uuid.UUID) (WeeklyAvailability, error)
	ReplaceWeekly(ctx context.Context, providerID uuid.UUID, weekly WeeklyAvailability) error
}
