package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinsched/clinsched/internal/domain/provider"
	"github.com/clinsched/clinsched/internal/domain/recurrence"
)

// mondayMorning returns a profile working Monday 09:00-12:00 only.
func mondayMorning() *provider.Profile {
	return testProfile(provider.WeeklyAvailability{
		time.Monday: {
			Start: provider.TimeOfDay{Hour: 9},
			End:   provider.TimeOfDay{Hour: 12},
		},
	})
}

func TestFindAvailableSlots(t *testing.T) {
	profile := mondayMorning()
	existing := []*Appointment{booking(profile, span(10, 0, 10, 30))}

	slots, err := FindAvailableSlots(at(0, 0), profile, existing, 30, 15)
	if err != nil {
		t.Fatalf("FindAvailableSlots: %v", err)
	}

	want := []time.Time{
		at(9, 0), at(9, 15), at(9, 30),
		at(10, 30), at(10, 45),
		at(11, 0), at(11, 15), at(11, 30),
	}
	if len(slots) != len(want) {
		t.Fatalf("slots = %v, want %v", slots, want)
	}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Errorf("slot[%d] = %v, want %v", i, slots[i], want[i])
		}
	}
}

func TestFindAvailableSlotsDayOff(t *testing.T) {
	profile := mondayMorning()
	sunday := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slots, err := FindAvailableSlots(sunday, profile, nil, 30, 15)
	if err != nil {
		t.Fatalf("FindAvailableSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots on a day off, got %v", slots)
	}
}

func TestFindAvailableSlotsInputValidation(t *testing.T) {
	profile := mondayMorning()
	if _, err := FindAvailableSlots(at(0, 0), profile, nil, 0, 15); err == nil {
		t.Error("expected error for zero slot duration")
	}
	if _, err := FindAvailableSlots(at(0, 0), nil, nil, 30, 15); err == nil {
		t.Error("expected error for nil profile")
	}
}

func TestSuggestAlternativeSlotsOrdering(t *testing.T) {
	profile := mondayMorning()
	existing := []*Appointment{booking(profile, span(10, 0, 10, 30))}
	appt := &Appointment{
		ProviderID: profile.ProviderID,
		Span:       span(10, 0, 10, 30),
		Status:     StatusScheduled,
	}

	slots, err := SuggestAlternativeSlots(appt, at(10, 0), profile, existing, 4)
	if err != nil {
		t.Fatalf("SuggestAlternativeSlots: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("got %d suggestions, want 4", len(slots))
	}
	// 09:45 and 10:15 would overlap the 10:00-10:30 booking, so the
	// nearest open starts are 09:30 and 10:30 (tie broken chronologically),
	// then 09:15 and 10:45.
	want := []time.Time{at(9, 30), at(10, 30), at(9, 15), at(10, 45)}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Errorf("suggestion[%d] = %v, want %v", i, slots[i], want[i])
		}
	}
}

func TestSuggestAlternativeSlotsOffersOwnSlotBack(t *testing.T) {
	profile := mondayMorning()
	appt := booking(profile, span(10, 0, 10, 30))

	slots, err := SuggestAlternativeSlots(appt, at(10, 0), profile, []*Appointment{appt}, 1)
	if err != nil {
		t.Fatalf("SuggestAlternativeSlots: %v", err)
	}
	if len(slots) != 1 || !slots[0].Equal(at(10, 0)) {
		t.Errorf("slots = %v, want the appointment's own 10:00 slot", slots)
	}
}

func TestSuggestAlternativeSlotsEmptyDay(t *testing.T) {
	profile := mondayMorning()
	// Fill the whole morning.
	existing := []*Appointment{booking(profile, span(9, 0, 12, 0))}
	appt := &Appointment{ProviderID: profile.ProviderID, Span: span(10, 0, 10, 30), Status: StatusScheduled}

	slots, err := SuggestAlternativeSlots(appt, at(10, 0), profile, existing, 5)
	if err != nil {
		t.Fatalf("SuggestAlternativeSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no suggestions on a fully booked day, got %v", slots)
	}
}

func TestCheckRecurringConflicts(t *testing.T) {
	profile := testProfile(provider.WeeklyAvailability{
		time.Monday:    {Start: provider.TimeOfDay{Hour: 9}, End: provider.TimeOfDay{Hour: 17}},
		time.Wednesday: {Start: provider.TimeOfDay{Hour: 9}, End: provider.TimeOfDay{Hour: 17}},
	})
	// Existing booking on the second Monday (March 10) at the same time.
	blocked := booking(profile, TimeSpan{
		Start: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
	})

	base := &Appointment{
		ID:         uuid.New(),
		ProviderID: profile.ProviderID,
		Span:       span(10, 0, 11, 0),
		Status:     StatusScheduled,
	}
	pattern := recurrence.Pattern{
		Frequency:  recurrence.Weekly,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday},
		End:        recurrence.EndAfter(4),
	}

	report, err := CheckRecurringConflicts(base, pattern, []*Appointment{blocked}, profile)
	if err != nil {
		t.Fatalf("CheckRecurringConflicts: %v", err)
	}
	if !report.HasConflicts {
		t.Fatal("expected conflicts")
	}
	if len(report.PerOccurrence) != 1 {
		t.Fatalf("per-occurrence = %+v, want exactly the March 10 occurrence", report.PerOccurrence)
	}
	if !report.PerOccurrence[0].Date.Equal(blocked.Span.Start) {
		t.Errorf("conflicting date = %v, want %v", report.PerOccurrence[0].Date, blocked.Span.Start)
	}
}

func TestCheckRecurringConflictsCleanSeries(t *testing.T) {
	profile := nineToFive(false)
	base := &Appointment{
		ID:         uuid.New(),
		ProviderID: profile.ProviderID,
		Span:       span(10, 0, 11, 0),
		Status:     StatusScheduled,
	}
	pattern := recurrence.Pattern{
		Frequency: recurrence.Weekly,
		Interval:  1,
		End:       recurrence.EndAfter(3),
	}
	report, err := CheckRecurringConflicts(base, pattern, nil, profile)
	if err != nil {
		t.Fatalf("CheckRecurringConflicts: %v", err)
	}
	if report.HasConflicts {
		t.Errorf("clean series reported conflicts: %+v", report)
	}
}

func TestCheckRecurringConflictsRejectsUnterminatedPattern(t *testing.T) {
	profile := nineToFive(false)
	base := booking(profile, span(10, 0, 11, 0))
	pattern := recurrence.Pattern{Frequency: recurrence.Daily, Interval: 1}
	if _, err := CheckRecurringConflicts(base, pattern, nil, profile); err == nil {
		t.Error("expected error for pattern without termination")
	}
}

func TestIsTimeSlotAvailable(t *testing.T) {
	profile := mondayMorning()
	existing := []*Appointment{booking(profile, span(10, 0, 10, 30))}

	ok, err := IsTimeSlotAvailable(at(9, 0), 30, profile.ProviderID, existing, profile)
	if err != nil {
		t.Fatalf("IsTimeSlotAvailable: %v", err)
	}
	if !ok {
		t.Error("09:00 should be available")
	}

	ok, err = IsTimeSlotAvailable(at(10, 0), 30, profile.ProviderID, existing, profile)
	if err != nil {
		t.Fatalf("IsTimeSlotAvailable: %v", err)
	}
	if ok {
		t.Error("10:00 should be taken")
	}

	if _, err := IsTimeSlotAvailable(at(9, 0), 0, profile.ProviderID, existing, profile); err == nil {
		t.Error("expected error for zero duration")
	}
}

func TestSuggestAlternativeRecurringSlots(t *testing.T) {
	// Provider works every weekday; block the base series' Monday start so
	// the probe has to shift at least one day.
	weekly := provider.WeeklyAvailability{}
	for d := time.Monday; d <= time.Friday; d++ {
		weekly[d] = provider.DailyAvailability{
			Start: provider.TimeOfDay{Hour: 9},
			End:   provider.TimeOfDay{Hour: 17},
		}
	}
	profile := testProfile(weekly)
	blocked := booking(profile, span(10, 0, 11, 0))

	base := &Appointment{
		ID:         uuid.New(),
		ProviderID: profile.ProviderID,
		Span:       span(10, 0, 11, 0),
		Status:     StatusScheduled,
	}
	pattern := recurrence.Pattern{
		Frequency: recurrence.Daily,
		Interval:  7,
		End:       recurrence.EndAfter(2),
	}

	starts, err := SuggestAlternativeRecurringSlots(base, pattern, []*Appointment{blocked}, profile, 2, 30)
	if err != nil {
		t.Fatalf("SuggestAlternativeRecurringSlots: %v", err)
	}
	if len(starts) != 2 {
		t.Fatalf("starts = %v, want 2 suggestions", starts)
	}
	// March 4 (Tuesday) is the first clean shift; its second occurrence
	// lands on March 11, also a working day.
	if !starts[0].Equal(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("first suggestion = %v, want March 4 10:00", starts[0])
	}

	if _, err := SuggestAlternativeRecurringSlots(base, pattern, nil, profile, 0, 30); err == nil {
		t.Error("expected error for non-positive max suggestions")
	}
}

func TestSuggestAlternativeRecurringSlotsDateBoundExhausted(t *testing.T) {
	// Provider works every day, but every 10:00 slot through the pattern's
	// end date is taken, so no shift inside the series' window is clean.
	// Shifts past the end date expand to zero occurrences and must not be
	// offered as suggestions.
	weekly := provider.WeeklyAvailability{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		weekly[d] = provider.DailyAvailability{
			Start: provider.TimeOfDay{Hour: 9},
			End:   provider.TimeOfDay{Hour: 17},
		}
	}
	profile := testProfile(weekly)

	var existing []*Appointment
	for day := 3; day <= 9; day++ {
		existing = append(existing, booking(profile, TimeSpan{
			Start: time.Date(2025, 3, day, 10, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 3, day, 11, 0, 0, 0, time.UTC),
		}))
	}

	base := &Appointment{
		ID:         uuid.New(),
		ProviderID: profile.ProviderID,
		Span:       span(10, 0, 11, 0),
		Status:     StatusScheduled,
	}
	pattern := recurrence.Pattern{
		Frequency: recurrence.Daily,
		Interval:  1,
		End:       recurrence.EndOn(time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)),
	}

	starts, err := SuggestAlternativeRecurringSlots(base, pattern, existing, profile, 3, 30)
	if err != nil {
		t.Fatalf("SuggestAlternativeRecurringSlots: %v", err)
	}
	if len(starts) != 0 {
		t.Errorf("starts = %v, want none; a suggested start must book at least one occurrence", starts)
	}
}
