package utils

import (
	"fmt"
	"time"
)

// BrasiliaTZ is the fixed civil timezone for calendar days and "HH:MM"
// inputs, independent of server or client machine locale.
var BrasiliaTZ = time.FixedZone("BRT", -3*60*60)

const isoLayout = "2006-01-02T15:04:05.000Z"

// ISOString formats t the way the system serializes instants everywhere:
// millisecond precision, always UTC.
func ISOString(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// LocalDate returns the Brasília calendar day of t as yyyy-MM-dd.
func LocalDate(t time.Time) string {
	return t.In(BrasiliaTZ).Format("2006-01-02")
}

// DayBucket maps t to the instant its entry is stored under: midnight UTC
// of t's Brasília calendar day.
func DayBucket(t time.Time) time.Time {
	local := t.In(BrasiliaTZ)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// CombineDayAndClock rebuilds an absolute instant from a stored day bucket
// and a civil "HH:MM" wall-clock string interpreted in loc.
func CombineDayAndClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	d := day.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}

// MonthRange parses "YYYY-MM" into the UTC half-open interval [start, end).
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// CalcDurationMinutes returns the whole-minute difference between clockOut
// and clockIn, truncated toward zero.
func CalcDurationMinutes(clockIn, clockOut time.Time) int {
	return int(clockOut.Sub(clockIn).Minutes())
}

// FormatMinutes renders a minute count as e.g. "8h 30min". Negative values
// keep a single leading sign.
func FormatMinutes(minutes int) string {
	abs := minutes
	sign := ""
	if minutes < 0 {
		abs = -minutes
		sign = "-"
	}
	return fmt.Sprintf("%s%dh %02dmin", sign, abs/60, abs%60)
}

// ParseISOTime accepts the timestamp formats clients are known to send.
func ParseISOTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, fmt.Errorf("empty time string")
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t, nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("failed to parse time: %v", s)
}
