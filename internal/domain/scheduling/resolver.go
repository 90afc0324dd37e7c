package scheduling

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clinsched/clinsched/internal/domain/provider"
	"github.com/clinsched/clinsched/internal/domain/recurrence"
)

const (
	// DefaultStepMinutes is the slot-search granularity when the caller
	// does not pick one.
	DefaultStepMinutes = 15

	// DefaultRecurringHorizonDays bounds the day probe in
	// SuggestAlternativeRecurringSlots.
	DefaultRecurringHorizonDays = 60
)

// CheckRecurringConflicts expands pattern from the base appointment's span
// and checks every occurrence. Only conflicting occurrences appear in the
// report.
func CheckRecurringConflicts(base *Appointment, pattern recurrence.Pattern, existing []*Appointment, profile *provider.Profile) (RecurringConflictReport, error) {
	if err := base.Span.Validate(); err != nil {
		return RecurringConflictReport{}, err
	}
	occurrences, err := recurrence.Expand(pattern, base.Span.Start, base.Span.Duration())
	if err != nil {
		return RecurringConflictReport{}, err
	}

	var report RecurringConflictReport
	for _, occ := range occurrences {
		synthetic := *base
		synthetic.Span = TimeSpan{Start: occ.Start, End: occ.End}
		occReport, err := CheckSingleOccurrenceConflict(&synthetic, existing, profile)
		if err != nil {
			return RecurringConflictReport{}, err
		}
		if occReport.HasConflict {
			report.PerOccurrence = append(report.PerOccurrence, OccurrenceConflicts{
				Date:      occ.Start,
				Conflicts: occReport.Conflicts,
				Reason:    occReport.Reason,
			})
		}
	}
	report.HasConflicts = len(report.PerOccurrence) > 0
	return report, nil
}

// FindAvailableSlots walks candidate start instants across date's working
// window in stepMinutes increments and returns, in chronological order, every
// start where a slotMinutes-long booking would be conflict-free. Only slots
// that fit entirely before day close are considered. An empty result is not
// an error; a day the provider does not work simply yields no slots.
func FindAvailableSlots(date time.Time, profile *provider.Profile, existing []*Appointment, slotMinutes, stepMinutes int) ([]time.Time, error) {
	if slotMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", slotMinutes)
	}
	if stepMinutes <= 0 {
		stepMinutes = DefaultStepMinutes
	}
	if profile == nil {
		return nil, fmt.Errorf("provider profile is required for slot search")
	}

	day, ok := profile.ForDay(date)
	if !ok {
		return nil, nil
	}

	open := day.Start.On(date)
	close := day.End.On(date)
	slotLen := time.Duration(slotMinutes) * time.Minute
	step := time.Duration(stepMinutes) * time.Minute

	var slots []time.Time
	for start := open; !start.Add(slotLen).After(close); start = start.Add(step) {
		candidate := &Appointment{
			ProviderID: profile.ProviderID,
			Span:       TimeSpan{Start: start, End: start.Add(slotLen)},
		}
		report, err := CheckSingleOccurrenceConflict(candidate, existing, profile)
		if err != nil {
			return nil, err
		}
		if !report.HasConflict {
			slots = append(slots, start)
		}
	}
	return slots, nil
}

// IsTimeSlotAvailable reports whether one specific slot is bookable.
func IsTimeSlotAvailable(start time.Time, durationMinutes int, providerID uuid.UUID, existing []*Appointment, profile *provider.Profile) (bool, error) {
	if durationMinutes <= 0 {
		return false, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}
	candidate := &Appointment{
		ProviderID: providerID,
		Span:       TimeSpan{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)},
	}
	report, err := CheckSingleOccurrenceConflict(candidate, existing, profile)
	if err != nil {
		return false, err
	}
	return !report.HasConflict, nil
}

// SuggestAlternativeSlots finds open slots on the requested instant's day
// and orders them by distance from requestedStart, nearest first, ties
// resolved chronologically. An empty result means no slot exists that day;
// searching further days is the caller's call.
func SuggestAlternativeSlots(appt *Appointment, requestedStart time.Time, profile *provider.Profile, existing []*Appointment, maxSuggestions int) ([]time.Time, error) {
	if err := appt.Span.Validate(); err != nil {
		return nil, err
	}
	slotMinutes := int(appt.Span.Duration() / time.Minute)

	// Exclude the appointment being moved so its current slot is offered
	// back when it is still the best fit.
	others := make([]*Appointment, 0, len(existing))
	for _, other := range existing {
		if appt.ID != uuid.Nil && other.ID == appt.ID {
			continue
		}
		others = append(others, other)
	}

	slots, err := FindAvailableSlots(requestedStart, profile, others, slotMinutes, DefaultStepMinutes)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(slots, func(i, j int) bool {
		di := absDuration(slots[i].Sub(requestedStart))
		dj := absDuration(slots[j].Sub(requestedStart))
		if di != dj {
			return di < dj
		}
		return slots[i].Before(slots[j])
	})
	if maxSuggestions > 0 && len(slots) > maxSuggestions {
		slots = slots[:maxSuggestions]
	}
	return slots, nil
}

// SuggestAlternativeRecurringSlots probes successive days after the base
// start, shifting the whole series one day at a time, and returns the first
// maxSuggestions start dates whose full expansion is conflict-free. A shifted
// start whose expansion is empty books nothing and is never suggested; for a
// date-terminated pattern that ends the probe early. Otherwise the probe
// stops at horizonDays; this is the most expensive operation here, so the
// horizon is a hard bound, not a hint.
func SuggestAlternativeRecurringSlots(base *Appointment, pattern recurrence.Pattern, existing []*Appointment, profile *provider.Profile, maxSuggestions, horizonDays int) ([]time.Time, error) {
	if err := base.Span.Validate(); err != nil {
		return nil, err
	}
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	if maxSuggestions <= 0 {
		return nil, fmt.Errorf("max suggestions must be positive, got %d", maxSuggestions)
	}
	if horizonDays <= 0 {
		horizonDays = DefaultRecurringHorizonDays
	}

	var starts []time.Time
	for dayOffset := 1; dayOffset <= horizonDays && len(starts) < maxSuggestions; dayOffset++ {
		shifted := *base
		shifted.Span = TimeSpan{
			Start: base.Span.Start.AddDate(0, 0, dayOffset),
			End:   base.Span.End.AddDate(0, 0, dayOffset),
		}
		occurrences, err := recurrence.Expand(pattern, shifted.Span.Start, shifted.Span.Duration())
		if err != nil {
			return nil, err
		}
		if len(occurrences) == 0 {
			// The shifted start is past the pattern's end date. Every later
			// shift expands to nothing too, so the probe is done.
			break
		}
		report, err := CheckRecurringConflicts(&shifted, pattern, existing, profile)
		if err != nil {
			return nil, err
		}
		if !report.HasConflicts {
			starts = append(starts, shifted.Span.Start)
		}
	}
	return starts, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
