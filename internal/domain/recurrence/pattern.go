package recurrence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Common errors returned when validating a recurrence pattern.
var (
	ErrNoTermination        = errors.New("recurrence pattern has no termination: set EndOn or EndAfter")
	ErrAmbiguousTermination = errors.New("recurrence pattern has both an end date and an occurrence count")
	ErrBadInterval          = errors.New("recurrence interval must be a positive integer")
	ErrBadFrequency         = errors.New("unknown recurrence frequency")
	ErrBadDayOfMonth        = errors.New("day of month must be between 1 and 31")
)

// Frequency is the unit a recurrence pattern advances by.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Termination bounds a pattern's expansion. Exactly one of the two bounds is
// set; the zero value is invalid, so an unbounded pattern cannot be
// constructed through this package's API.
type Termination struct {
	endDate *time.Time
	count   int
}

// EndOn terminates expansion after the last occurrence starting on or before t.
func EndOn(t time.Time) Termination {
	return Termination{endDate: &t}
}

// EndAfter terminates expansion after n occurrences. The series' first
// occurrence counts toward n.
func EndAfter(n int) Termination {
	return Termination{count: n}
}

func (t Termination) valid() error {
	if t.endDate == nil && t.count == 0 {
		return ErrNoTermination
	}
	if t.endDate != nil && t.count != 0 {
		return ErrAmbiguousTermination
	}
	if t.endDate == nil && t.count < 1 {
		return fmt.Errorf("occurrence count must be positive, got %d", t.count)
	}
	return nil
}

// MarshalJSON encodes the bound that is set: {"end_date": ...} or
// {"count": n}.
func (t Termination) MarshalJSON() ([]byte, error) {
	if t.endDate != nil {
		return json.Marshal(struct {
			EndDate time.Time `json:"end_date"`
		}{*t.endDate})
	}
	return json.Marshal(struct {
		Count int `json:"count"`
	}{t.count})
}

func (t *Termination) UnmarshalJSON(data []byte) error {
	var raw struct {
		EndDate *time.Time `json:"end_date"`
		Count   int        `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Termination{endDate: raw.EndDate, count: raw.Count}
	return t.valid()
}

// Pattern describes how a base appointment repeats.
//
// DaysOfWeek applies to weekly patterns only: when set, expansion advances
// day by day to the next listed weekday rather than jumping whole weeks.
// DayOfMonth applies to monthly patterns only: when set, each occurrence
// lands on that day, clamped to the last day of shorter months.
type Pattern struct {
	Frequency  Frequency      `json:"frequency"`
	Interval   int            `json:"interval"`
	DaysOfWeek []time.Weekday `json:"days_of_week,omitempty"`
	DayOfMonth int            `json:"day_of_month,omitempty"`
	End        Termination    `json:"end"`
}

// Validate reports whether the pattern can be expanded safely. Expand calls
// this itself; callers validating user input early get the same errors.
func (p Pattern) Validate() error {
	switch p.Frequency {
	case Daily, Weekly, Monthly:
	default:
		return fmt.Errorf("%w: %q", ErrBadFrequency, p.Frequency)
	}
	if p.Interval < 1 {
		return fmt.Errorf("%w: got %d", ErrBadInterval, p.Interval)
	}
	if p.DayOfMonth != 0 && (p.DayOfMonth < 1 || p.DayOfMonth > 31) {
		return fmt.Errorf("%w: got %d", ErrBadDayOfMonth, p.DayOfMonth)
	}
	if len(p.DaysOfWeek) > 0 && p.Frequency != Weekly {
		return fmt.Errorf("days of week only apply to weekly patterns, frequency is %q", p.Frequency)
	}
	if p.DayOfMonth != 0 && p.Frequency != Monthly {
		return fmt.Errorf("day of month only applies to monthly patterns, frequency is %q", p.Frequency)
	}
	return p.End.valid()
}
