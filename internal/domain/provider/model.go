package provider

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider maps to the provider table.
type Provider struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	Active    *bool     `db:"active" json:"active,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TimeOfDay is a naive wall-clock time with minute precision. It marshals as
// "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" in 24-hour notation.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

// TimeOfDayAt extracts the wall-clock time of an instant.
func TimeOfDayAt(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.Minutes() < o.Minutes() }

func (t TimeOfDay) After(o TimeOfDay) bool { return t.Minutes() > o.Minutes() }

// On anchors the time of day to the calendar date of day.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// BreakInterval is an unavailable window nested inside a working day, such as
// a lunch break.
type BreakInterval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
	Label string    `json:"label"`
}

// DailyAvailability is one weekday's working window with its breaks. Breaks
// are evaluated in listed order and are expected to be non-overlapping;
// malformed data is evaluated as given, never repaired.
type DailyAvailability struct {
	Start  TimeOfDay       `json:"start"`
	End    TimeOfDay       `json:"end"`
	Breaks []BreakInterval `json:"breaks,omitempty"`
}

// WeeklyAvailability maps weekdays to working windows. A weekday with no
// entry means the provider does not work that day. It marshals with weekday
// names ("monday") as keys.
type WeeklyAvailability map[time.Weekday]DailyAvailability

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func (w WeeklyAvailability) MarshalJSON() ([]byte, error) {
	out := make(map[string]DailyAvailability, len(w))
	for weekday, day := range w {
		out[strings.ToLower(weekday.String())] = day
	}
	return json.Marshal(out)
}

func (w *WeeklyAvailability) UnmarshalJSON(data []byte) error {
	var raw map[string]DailyAvailability
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(WeeklyAvailability, len(raw))
	for name, day := range raw {
		weekday, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown weekday %q", name)
		}
		out[weekday] = day
	}
	*w = out
	return nil
}

// Profile is a provider plus the weekly template the scheduling engine
// evaluates against.
type Profile struct {
	ProviderID uuid.UUID          `json:"provider_id"`
	Weekly     WeeklyAvailability `json:"weekly"`
}

// ForDay returns the availability for the weekday of day, if any.
func (p *Profile) ForDay(day time.Time) (DailyAvailability, bool) {
	if p == nil || p.Weekly == nil {
		return DailyAvailability{}, false
	}
	d, ok := p.Weekly[day.Weekday()]
	return d, ok
}
