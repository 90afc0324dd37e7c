package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	providers    Repository
	availability AvailabilityRepository
}

func NewService(providers Repository, availability AvailabilityRepository) *Service {
	return &Service{providers: providers, availability: availability}
}

func (s *Service) Create(ctx context.Context, p *Provider) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Active == nil {
		active := true
		p.Active = &active
	}
	return s.providers.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Provider) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.providers.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.providers.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.providers.List(ctx, limit, offset)
}

// GetProfile loads a provider's weekly working hours. Days without a
// row in the schedule are days off.
func (s *Service) GetProfile(ctx context.Context, providerID uuid.UUID) (*Profile, error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, fmt.Errorf("provider %s: %w", providerID, err)
	}
	weekly, err := s.availability.GetWeekly(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return &Profile{ProviderID: providerID, Weekly: weekly}, nil
}

// SetWeeklyAvailability replaces the full weekly schedule after
// validating every day window and break interval.
func (s *Service) SetWeeklyAvailability(ctx context.Context, providerID uuid.UUID, weekly WeeklyAvailability) error {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return fmt.Errorf("provider %s: %w", providerID, err)
	}
	for weekday, day := range weekly {
		if err := validateDay(day); err != nil {
			return fmt.Errorf("%s: %w", weekday, err)
		}
	}
	return s.availability.ReplaceWeekly(ctx, providerID, weekly)
}

func validateDay(day DailyAvailability) error {
	if !day.Start.Before(day.End) {
		return fmt.Errorf("start %s must be before end %s", day.Start, day.End)
	}
	for _, b := range day.Breaks {
		if !b.Start.Before(b.End) {
			return fmt.Errorf("break %q: start %s must be before end %s", b.Label, b.Start, b.End)
		}
		if b.Start.Before(day.Start) || day.End.Before(b.End) {
			return fmt.Errorf("break %q (%s-%s) falls outside working hours %s-%s",
				b.Label, b.Start, b.End, day.Start, day.End)
		}
	}
	return nil
}
