package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeSpan is a half-open interval [Start, End). Times are naive local
// wall-clock values; no timezone conversion happens anywhere in this package.
type TimeSpan struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (s TimeSpan) Validate() error {
	if !s.Start.Before(s.End) {
		return fmt.Errorf("span start %s must be before end %s",
			s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339))
	}
	return nil
}

func (s TimeSpan) Duration() time.Duration { return s.End.Sub(s.Start) }

// Overlaps reports whether two half-open spans intersect. A span ending at T
// does not overlap one starting at T.
func (s TimeSpan) Overlaps(o TimeSpan) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Appointment kinds.
const (
	KindOrdinary  = "ordinary"
	KindBreak     = "break"
	KindTentative = "tentative"
)

var validKinds = map[string]bool{
	KindOrdinary: true, KindBreak: true, KindTentative: true,
}

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCheckedIn = "checked-in"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusCheckedIn: true, StatusCompleted: true,
	StatusCancelled: true, StatusNoShow: true,
}

// Appointment maps to the appointment table. The ID is used only for
// self-exclusion during reschedule checks; the engine never mutates an
// appointment, it reads and returns verdicts.
type Appointment struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	ProviderID         uuid.UUID `db:"provider_id" json:"provider_id"`
	PatientName        string    `db:"patient_name" json:"patient_name,omitempty"`
	Span               TimeSpan  `json:"span"`
	Kind               string    `db:"kind" json:"kind"`
	Status             string    `db:"status" json:"status"`
	MinDurationMinutes *int      `db:"min_duration_minutes" json:"min_duration_minutes,omitempty"`
	MaxDurationMinutes *int      `db:"max_duration_minutes" json:"max_duration_minutes,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// CountsForOverlap reports whether an existing appointment still blocks its
// span. Cancelled and no-show bookings release their time.
func (a *Appointment) CountsForOverlap() bool {
	return a.Status != StatusCancelled && a.Status != StatusNoShow
}

// ConflictReport is the verdict for one occurrence. Conflicts always holds
// the complete set of overlapping bookings, even when Reason was produced by
// an earlier availability or duration check.
type ConflictReport struct {
	HasConflict bool           `json:"has_conflict"`
	Conflicts   []*Appointment `json:"conflicts"`
	Reason      string         `json:"reason,omitempty"`
}

// OccurrenceConflicts is one conflicting occurrence within a recurring check.
type OccurrenceConflicts struct {
	Date      time.Time      `json:"date"`
	Conflicts []*Appointment `json:"conflicts"`
	Reason    string         `json:"reason,omitempty"`
}

// RecurringConflictReport aggregates per-occurrence verdicts. Only
// occurrences that conflict appear in PerOccurrence.
type RecurringConflictReport struct {
	HasConflicts  bool                  `json:"has_conflicts"`
	PerOccurrence []OccurrenceConflicts `json:"per_occurrence"`
}

// ConflictError is returned by write paths when a booking is rejected. The
// report travels with the error so the HTTP layer can return it in the 409
// body.
type ConflictError struct {
	Report ConflictReport
}

func (e *ConflictError) Error() string {
	if e.Report.Reason != "" {
		return "appointment conflict: " + e.Report.Reason
	}
	return "appointment conflict"
}
