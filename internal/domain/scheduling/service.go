package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinsched/clinsched/internal/domain/provider"
	"github.com/clinsched/clinsched/internal/domain/recurrence"
)

// ProfileSource supplies provider working hours. Satisfied by
// provider.Service.
type ProfileSource interface {
	GetProfile(ctx context.Context, providerID uuid.UUID) (*provider.Profile, error)
}

type Service struct {
	appointments AppointmentRepository
	profiles     ProfileSource
}

func NewService(appointments AppointmentRepository, profiles ProfileSource) *Service {
	return &Service{appointments: appointments, profiles: profiles}
}

// snapshot loads the booking set the engine checks a window against,
// widened to whole calendar days.
func (s *Service) snapshot(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	return s.appointments.ListByProviderAndRange(ctx, providerID,
		startOfDay(from), startOfDay(to).AddDate(0, 0, 1))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *Service) validate(a *Appointment) error {
	if a.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if err := a.Span.Validate(); err != nil {
		return err
	}
	if a.Kind == "" {
		a.Kind = KindOrdinary
	}
	if !validKinds[a.Kind] {
		return fmt.Errorf("invalid appointment kind: %s", a.Kind)
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	return nil
}

// Create books an appointment after a full conflict check. A rejected
// booking returns a *ConflictError carrying the report; nothing is
// persisted.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if err := s.validate(a); err != nil {
		return err
	}
	profile, err := s.profiles.GetProfile(ctx, a.ProviderID)
	if err != nil {
		return err
	}
	existing, err := s.snapshot(ctx, a.ProviderID, a.Span.Start, a.Span.End)
	if err != nil {
		return err
	}
	report, err := CheckSingleOccurrenceConflict(a, existing, profile)
	if err != nil {
		return err
	}
	if report.HasConflict {
		return &ConflictError{Report: report}
	}
	return s.appointments.Create(ctx, a)
}

// Reschedule moves an existing appointment to newStart, optionally resizing
// it. The appointment's own booking never counts against it.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newStart time.Time, durationOverrideMinutes int) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, a.ProviderID)
	if err != nil {
		return nil, err
	}

	duration := a.Span.Duration()
	if durationOverrideMinutes > 0 {
		duration = time.Duration(durationOverrideMinutes) * time.Minute
	}
	newEnd := newStart.Add(duration)

	existing, err := s.snapshot(ctx, a.ProviderID, newStart, newEnd)
	if err != nil {
		return nil, err
	}
	report, err := CheckAppointmentConflicts(a, newStart, durationOverrideMinutes, existing, profile)
	if err != nil {
		return nil, err
	}
	if report.HasConflict {
		return nil, &ConflictError{Report: report}
	}

	a.Span = TimeSpan{Start: newStart, End: newEnd}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.appointments.Delete(ctx, id)
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByProvider(ctx, providerID, limit, offset)
}

// UpdateStatus moves an appointment through its lifecycle. Status changes
// skip conflict checks; cancelling a booking releases its span for others.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid appointment status: %s", status)
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = status
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CheckConflicts runs the single-occurrence check without persisting
// anything; the report goes back to the caller either way.
func (s *Service) CheckConflicts(ctx context.Context, candidate *Appointment) (ConflictReport, error) {
	if err := s.validate(candidate); err != nil {
		return ConflictReport{}, err
	}
	profile, err := s.profiles.GetProfile(ctx, candidate.ProviderID)
	if err != nil {
		return ConflictReport{}, err
	}
	existing, err := s.snapshot(ctx, candidate.ProviderID, candidate.Span.Start, candidate.Span.End)
	if err != nil {
		return ConflictReport{}, err
	}
	return CheckSingleOccurrenceConflict(candidate, existing, profile)
}

// CheckRecurring expands the pattern and checks every occurrence against the
// provider's bookings across the series' full range.
func (s *Service) CheckRecurring(ctx context.Context, base *Appointment, pattern recurrence.Pattern) (RecurringConflictReport, error) {
	if err := s.validate(base); err != nil {
		return RecurringConflictReport{}, err
	}
	occurrences, err := recurrence.Expand(pattern, base.Span.Start, base.Span.Duration())
	if err != nil {
		return RecurringConflictReport{}, err
	}
	profile, err := s.profiles.GetProfile(ctx, base.ProviderID)
	if err != nil {
		return RecurringConflictReport{}, err
	}

	rangeEnd := base.Span.End
	if n := len(occurrences); n > 0 {
		rangeEnd = occurrences[n-1].End
	}
	existing, err := s.snapshot(ctx, base.ProviderID, base.Span.Start, rangeEnd)
	if err != nil {
		return RecurringConflictReport{}, err
	}
	return CheckRecurringConflicts(base, pattern, existing, profile)
}

// GetAvailableSlots lists bookable start times for one provider and day.
func (s *Service) GetAvailableSlots(ctx context.Context, providerID uuid.UUID, date time.Time, slotMinutes, stepMinutes int) ([]time.Time, error) {
	profile, err := s.profiles.GetProfile(ctx, providerID)
	if err != nil {
		return nil, err
	}
	existing, err := s.snapshot(ctx, providerID, date, date)
	if err != nil {
		return nil, err
	}
	return FindAvailableSlots(date, profile, existing, slotMinutes, stepMinutes)
}

// SuggestAlternatives proposes the nearest open slots on the requested day
// for an appointment that could not be booked as asked.
func (s *Service) SuggestAlternatives(ctx context.Context, candidate *Appointment, requestedStart time.Time, maxSuggestions int) ([]time.Time, error) {
	if err := s.validate(candidate); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, candidate.ProviderID)
	if err != nil {
		return nil, err
	}
	existing, err := s.snapshot(ctx, candidate.ProviderID, requestedStart, requestedStart)
	if err != nil {
		return nil, err
	}
	return SuggestAlternativeSlots(candidate, requestedStart, profile, existing, maxSuggestions)
}

// SuggestRecurringAlternatives probes later start days for a whole series.
func (s *Service) SuggestRecurringAlternatives(ctx context.Context, base *Appointment, pattern recurrence.Pattern, maxSuggestions, horizonDays int) ([]time.Time, error) {
	if err := s.validate(base); err != nil {
		return nil, err
	}
	if horizonDays <= 0 {
		horizonDays = DefaultRecurringHorizonDays
	}
	occurrences, err := recurrence.Expand(pattern, base.Span.Start, base.Span.Duration())
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, base.ProviderID)
	if err != nil {
		return nil, err
	}

	// One snapshot covers every probed shift: the series' own range plus
	// the full probe horizon.
	rangeEnd := base.Span.End
	if n := len(occurrences); n > 0 {
		rangeEnd = occurrences[n-1].End
	}
	rangeEnd = rangeEnd.AddDate(0, 0, horizonDays)
	existing, err := s.snapshot(ctx, base.ProviderID, base.Span.Start, rangeEnd)
	if err != nil {
		return nil, err
	}
	return SuggestAlternativeRecurringSlots(base, pattern, existing, profile, maxSuggestions, horizonDays)
}

// IsSlotAvailable answers the single yes/no form of the slot query.
func (s *Service) IsSlotAvailable(ctx context.Context, providerID uuid.UUID, start time.Time, durationMinutes int) (bool, error) {
	profile, err := s.profiles.GetProfile(ctx, providerID)
	if err != nil {
		return false, err
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	existing, err := s.snapshot(ctx, providerID, start, end)
	if err != nil {
		return false, err
	}
	return IsTimeSlotAvailable(start, durationMinutes, providerID, existing, profile)
}
