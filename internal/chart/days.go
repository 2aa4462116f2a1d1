package chart

import (
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

// Eastern is the default reference zone for day boundaries and day labels.
var Eastern = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("chart: loading zone " + name + ": " + err.Error())
	}
	return loc
}

// DayBoundary is the half-open interval [Start, End) of one calendar day,
// in epoch milliseconds.
type DayBoundary struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Contains reports whether ms falls inside the day.
func (d DayBoundary) Contains(ms int64) bool {
	return ms >= d.Start && ms < d.End
}

// Midpoint returns the instant halfway through the day.
func (d DayBoundary) Midpoint() int64 {
	return d.Start + (d.End-d.Start)/2
}

// StartOfDay returns local midnight of the day containing ms in loc.
func StartOfDay(ms int64, loc *time.Location) time.Time {
	t := time.UnixMilli(ms).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// nextDay advances by one calendar day. Going through time.Date keeps the
// result on local midnight across DST changes, where days are 23 or 25 hours.
func nextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

// DayBoundaries splits [StartOfDay(start), StartOfDay(end)+1 day) into
// calendar days of loc. It returns nil when end <= StartOfDay(start).
func DayBoundaries(start, end int64, loc *time.Location) []DayBoundary {
	if loc == nil {
		loc = Eastern
	}
	cur := StartOfDay(start, loc)
	if end <= cur.UnixMilli() {
		return nil
	}
	last := StartOfDay(end, loc)
	var days []DayBoundary
	for !cur.After(last) {
		next := nextDay(cur)
		days = append(days, DayBoundary{Start: cur.UnixMilli(), End: next.UnixMilli()})
		cur = next
	}
	return days
}

var weekdayAbbrev = [...]string{
	time.Sunday:    "Su",
	time.Monday:    "M",
	time.Tuesday:   "Tu",
	time.Wednesday: "W",
	time.Thursday:  "Th",
	time.Friday:    "F",
	time.Saturday:  "Sa",
}

// DayLabel formats a day as a short weekday and month/day, e.g. "Th 10/15".
func DayLabel(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = Eastern
	}
	t := time.UnixMilli(ms).In(loc)
	return weekdayAbbrev[t.Weekday()] + " " + t.Format("1/2")
}
