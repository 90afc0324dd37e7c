package provider

import "time"

// WithinHours reports whether the instant's wall-clock time falls inside the
// working window. Both boundaries are inclusive: an appointment that ends
// exactly at close time is still inside.
func (d DailyAvailability) WithinHours(t time.Time) bool {
	m := TimeOfDayAt(t).Minutes()
	return m >= d.Start.Minutes() && m <= d.End.Minutes()
}

// OverlappingBreak returns the first break (in listed order) whose window
// overlaps the [start, end) span, or nil when no break does. The span's end
// is measured relative to the start's day, so a span running past midnight
// still closes out against that day's breaks.
func (d DailyAvailability) OverlappingBreak(start, end time.Time) *BreakInterval {
	startMin := TimeOfDayAt(start).Minutes()
	endMin := startMin + int(end.Sub(start).Minutes())
	for i := range d.Breaks {
		b := &d.Breaks[i]
		if startMin < b.End.Minutes() && b.Start.Minutes() < endMin {
			return b
		}
	}
	return nil
}

// WorkingMinutes is the length of the working window minus the sum of break
// durations, floored at zero when breaks over-subtract.
func (d DailyAvailability) WorkingMinutes() int {
	total := d.End.Minutes() - d.Start.Minutes()
	for _, b := range d.Breaks {
		total -= b.End.Minutes() - b.Start.Minutes()
	}
	if total < 0 {
		return 0
	}
	return total
}
