package domain

import (
	"sort"
	"strings"
	"time"
)

// DaySet is a set of weekday labels. Schedules store days as a comma separated
// string; parsing happens once at the boundary and everything past that works
// on the set.
type DaySet map[time.Weekday]struct{}

var dayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDays parses a comma separated weekday list ("Monday,Friday"). Order,
// case, and surrounding whitespace are ignored; duplicates collapse. An
// unknown label is a validation error.
func ParseDays(raw string) (DaySet, error) {
	out := DaySet{}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		wd, ok := dayNames[strings.ToLower(p)]
		if !ok {
			return nil, ValidationError{Field: "days", Msg: "hari tidak dikenal: " + p}
		}
		out[wd] = struct{}{}
	}
	if len(out) == 0 {
		return nil, ValidationError{Field: "days", Msg: "minimal satu hari harus diisi"}
	}
	return out, nil
}

// Intersect returns the days present in both sets, in week order starting
// Sunday.
func (s DaySet) Intersect(other DaySet) []string {
	shared := []time.Weekday{}
	for wd := range s {
		if _, ok := other[wd]; ok {
			shared = append(shared, wd)
		}
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })
	out := make([]string, 0, len(shared))
	for _, wd := range shared {
		out = append(out, wd.String())
	}
	return out
}

func (s DaySet) Contains(wd time.Weekday) bool {
	_, ok := s[wd]
	return ok
}

// Canonical renders the set back to the stored comma form, week ordered.
func (s DaySet) Canonical() string {
	days := make([]time.Weekday, 0, len(s))
	for wd := range s {
		days = append(days, wd)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	names := make([]string, 0, len(days))
	for _, wd := range days {
		names = append(names, wd.String())
	}
	return strings.Join(names, ",")
}

func JoinDays(days []string) string {
	return strings.Join(days, ",")
}

// IsWeekendDay reports whether the weekday falls in the high-demand window.
// The window is Friday through Sunday, three days, intentionally wider than a
// conventional weekend; pricing on the read and write paths both go through
// here.
func IsWeekendDay(wd time.Weekday) bool {
	return wd == time.Friday || wd == time.Saturday || wd == time.Sunday
}

// IsWeekendDate applies IsWeekendDay to a trip date.
func IsWeekendDate(t time.Time) bool {
	return IsWeekendDay(t.Weekday())
}
