package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinsched/clinsched/internal/domain/provider"
)

// CheckSingleOccurrenceConflict validates one occurrence against the
// provider's working hours and the existing booking set. Every check runs
// regardless of earlier failures: the returned Conflicts set is always the
// complete overlap set, and Reason carries the first failing check only.
//
// A nil profile skips the working-hours checks; only overlap and duration
// checks apply. That is the degraded mode for callers that have not loaded
// provider data yet, not an error.
func CheckSingleOccurrenceConflict(candidate *Appointment, existing []*Appointment, profile *provider.Profile) (ConflictReport, error) {
	if err := candidate.Span.Validate(); err != nil {
		return ConflictReport{}, err
	}

	var reasons []string

	if profile != nil {
		if reason := checkWorkingHours(candidate.Span, profile); reason != "" {
			reasons = append(reasons, reason)
		}
	}

	conflicts := overlapSet(candidate, existing)
	if len(conflicts) > 0 {
		reasons = append(reasons, fmt.Sprintf("overlaps %d existing booking(s)", len(conflicts)))
	}

	if reason := checkDuration(candidate, candidate.Span.Duration()); reason != "" {
		reasons = append(reasons, reason)
	}

	report := ConflictReport{Conflicts: conflicts}
	if len(reasons) > 0 {
		report.HasConflict = true
		report.Reason = reasons[0]
	}
	return report, nil
}

// CheckAppointmentConflicts is the reschedule/resize entry point: the
// candidate keeps its identity (for self-exclusion) but is checked at
// requestedStart with an optional duration override in minutes. A zero
// requestedStart keeps the candidate's own start; a zero override keeps the
// candidate's own duration.
func CheckAppointmentConflicts(candidate *Appointment, requestedStart time.Time, durationOverrideMinutes int, existing []*Appointment, profile *provider.Profile) (ConflictReport, error) {
	if durationOverrideMinutes < 0 {
		return ConflictReport{}, fmt.Errorf("duration override must not be negative, got %d", durationOverrideMinutes)
	}

	shifted := *candidate
	start := candidate.Span.Start
	if !requestedStart.IsZero() {
		start = requestedStart
	}
	duration := candidate.Span.Duration()
	if durationOverrideMinutes > 0 {
		duration = time.Duration(durationOverrideMinutes) * time.Minute
	}
	shifted.Span = TimeSpan{Start: start, End: start.Add(duration)}

	return CheckSingleOccurrenceConflict(&shifted, existing, profile)
}

// checkWorkingHours returns the first availability failure for span, or ""
// when the span sits inside the day's window and clear of every break.
func checkWorkingHours(span TimeSpan, profile *provider.Profile) string {
	day, ok := profile.ForDay(span.Start)
	if !ok {
		return fmt.Sprintf("provider unavailable on %s", strings.ToLower(span.Start.Weekday().String()))
	}
	if !day.WithinHours(span.Start) || !day.WithinHours(span.End) {
		return fmt.Sprintf("outside working hours %s-%s", day.Start, day.End)
	}
	if b := day.OverlappingBreak(span.Start, span.End); b != nil {
		return fmt.Sprintf("overlaps break %q (%s-%s)", b.Label, b.Start, b.End)
	}
	return ""
}

// overlapSet filters existing to the candidate provider's live bookings whose
// spans intersect the candidate's, excluding the candidate itself by id.
func overlapSet(candidate *Appointment, existing []*Appointment) []*Appointment {
	var conflicts []*Appointment
	for _, other := range existing {
		if other.ProviderID != candidate.ProviderID {
			continue
		}
		if other.ID != uuid.Nil && other.ID == candidate.ID {
			continue
		}
		if !other.CountsForOverlap() {
			continue
		}
		if candidate.Span.Overlaps(other.Span) {
			conflicts = append(conflicts, other)
		}
	}
	return conflicts
}

func checkDuration(candidate *Appointment, duration time.Duration) string {
	minutes := int(duration / time.Minute)
	if candidate.MinDurationMinutes != nil && minutes < *candidate.MinDurationMinutes {
		return fmt.Sprintf("duration %d min is shorter than the %d min minimum", minutes, *candidate.MinDurationMinutes)
	}
	if candidate.MaxDurationMinutes != nil && minutes > *candidate.MaxDurationMinutes {
		return fmt.Sprintf("duration %d min is longer than the %d min maximum", minutes, *candidate.MaxDurationMinutes)
	}
	return ""
}
