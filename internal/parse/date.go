package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	millisRe  = regexp.MustCompile(`^-?\d{13,}$`)
	secondsRe = regexp.MustCompile(`^-?\d{9,12}$`)
)

// layouts tried in order for non-numeric dates.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// BookingDate converts a date field from the booking service into a time in loc.
// The service uses epoch milliseconds in requests but has been seen returning
// ISO-like strings in listings, so both are accepted. Numbers of 13 or more
// digits are milliseconds, 9 to 12 digits are seconds.
func BookingDate(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty booking date")
	}
	if loc == nil {
		loc = time.UTC
	}

	if millisRe.MatchString(s) {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("unable to parse booking date %q: %w", raw, err)
		}
		return time.UnixMilli(ms).In(loc), nil
	}
	if secondsRe.MatchString(s) {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("unable to parse booking date %q: %w", raw, err)
		}
		return time.Unix(sec, 0).In(loc), nil
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse booking date: %q", raw)
}

// DayLabel formats a booking date as YYYY-MM-DD, falling back to the raw value.
func DayLabel(raw string, loc *time.Location) string {
	t, err := BookingDate(raw, loc)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}
