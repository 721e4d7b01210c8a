package timezone

import (
	"strconv"
	"strings"
	"time"
)

// ISOLayout matches what browsers emit for Date.toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Layouts that carry their own offset.
var absoluteFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700", // Without colon
	"2006-01-02T15:04-07:00",
	"2006-01-02 15:04:05Z07:00",
}

// Layouts read as wall-clock time in the form's zone, like a datetime-local input.
var wallClockFormats = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Date-only values are UTC midnight, as in ECMAScript date parsing.
const dateOnly = "2006-01-02"

// LoadLocation resolves a zone name. Accepts IANA names, "UTC", "Local" and
// fixed offsets written as "UTC+7" or "UTC-05:30". Unknown names fall back to UTC.
func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	switch strings.ToUpper(name) {
	case "", "UTC", "Z", "GMT":
		return time.UTC
	case "LOCAL":
		return time.Local
	}

	upper := strings.ToUpper(name)
	if strings.HasPrefix(upper, "UTC+") || strings.HasPrefix(upper, "UTC-") {
		if offset, ok := parseOffset(name[3:]); ok {
			return time.FixedZone(upper, offset)
		}
	}

	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}

func parseOffset(s string) (int, bool) {
	sign := 1
	switch s[0] {
	case '-':
		sign = -1
	case '+':
	default:
		return 0, false
	}
	s = s[1:]

	hoursPart, minutesPart, _ := strings.Cut(s, ":")
	hours, err := strconv.Atoi(hoursPart)
	if err != nil || hours > 14 {
		return 0, false
	}
	minutes := 0
	if minutesPart != "" {
		minutes, err = strconv.Atoi(minutesPart)
		if err != nil || minutes >= 60 {
			return 0, false
		}
	}
	return sign * (hours*3600 + minutes*60), true
}

// Parse reads a form date/time value. Values without an offset are interpreted in loc.
func Parse(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.UTC
	}

	for _, format := range absoluteFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}

	for _, format := range wallClockFormats {
		if t, err := time.ParseInLocation(format, value, loc); err == nil {
			return t, nil
		}
	}

	if t, err := time.Parse(dateOnly, value); err == nil {
		return t, nil
	}

	return time.Time{}, &time.ParseError{
		Value:   value,
		Message: "unable to parse time string",
	}
}

// Valid reports whether value parses as a date/time.
func Valid(value string) bool {
	_, err := Parse(value, time.UTC)
	return err == nil
}

// ISO formats t as an absolute UTC instant with millisecond precision.
func ISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// Normalize parses value in loc and returns it as an ISO-8601 UTC instant.
func Normalize(value string, loc *time.Location) (string, error) {
	t, err := Parse(value, loc)
	if err != nil {
		return "", err
	}
	return ISO(t), nil
}
