package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// DateOf drops the time of day and pins the date to UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts "2006-01-02" or a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// Key is the map key for a date inside Overrides.
func Key(t time.Time) string {
	return t.Format(DateLayout)
}

// Nights counts nights between check-in and check-out, rounding a partial day up.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	n := int(d / day)
	if d%day != 0 {
		n++
	}
	return n
}

// Dates lists every date in [start, endExclusive).
func Dates(start, endExclusive time.Time) []time.Time {
	start, endExclusive = DateOf(start), DateOf(endExclusive)
	var out []time.Time
	for d := start; d.Before(endExclusive); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
