package recurrence

import (
	"time"
)

// Occurrence is one concrete instance of a recurring series.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Expand produces the finite series of occurrences for the pattern, starting
// with start itself. Every occurrence keeps the duration of the base span.
// Expansion is deterministic: the same arguments always yield the same
// series.
func Expand(p Pattern, start time.Time, duration time.Duration) ([]Occurrence, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var out []Occurrence
	cur := start
	for {
		if p.End.endDate != nil && cur.After(*p.End.endDate) {
			break
		}
		out = append(out, Occurrence{Start: cur, End: cur.Add(duration)})
		if p.End.count > 0 && len(out) == p.End.count {
			break
		}
		cur = next(p, start, cur)
	}
	return out, nil
}

func next(p Pattern, base, prev time.Time) time.Time {
	switch p.Frequency {
	case Daily:
		return prev.AddDate(0, 0, p.Interval)
	case Weekly:
		if len(p.DaysOfWeek) == 0 {
			return prev.AddDate(0, 0, 7*p.Interval)
		}
		// Step one day at a time to the next listed weekday. The interval is
		// deliberately not scaled into week skips here; the day set alone
		// determines cadence.
		cur := prev.AddDate(0, 0, 1)
		for !weekdayIn(cur.Weekday(), p.DaysOfWeek) {
			cur = cur.AddDate(0, 0, 1)
		}
		return cur
	case Monthly:
		day := p.DayOfMonth
		if day == 0 {
			day = base.Day()
		}
		return addMonthsClamped(prev, p.Interval, day)
	}
	// Validate rejects other frequencies before expansion starts.
	return prev
}

func weekdayIn(d time.Weekday, set []time.Weekday) bool {
	for _, w := range set {
		if w == d {
			return true
		}
	}
	return false
}

// addMonthsClamped advances t by n months and pins the result to day,
// clamped to the last day of the target month (Jan 31 + 1 month = Feb 28/29).
func addMonthsClamped(t time.Time, n, day int) time.Time {
	year, month := t.Year(), int(t.Month())+n
	for month > 12 {
		month -= 12
		year++
	}
	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
