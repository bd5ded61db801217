package normalizer

import (
	"strings"
	"time"
)

// isoLayouts are tried in order before the positional fallback. Layouts
// without a zone are read in the normalizer's location.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// ParseDate resolves raw into an instant using, in order: a standard
// layout, a positional Y-M-D / D-M-Y split of the date portion, and an
// HH:MM override taken from the text after the first space. When all of
// that fails it returns now() and ok=false. The result is in loc.
func ParseDate(raw string, loc *time.Location, now func() time.Time) (t time.Time, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return now().In(loc), false
	}

	t, ok = parseStandard(s, loc)
	if !ok {
		t, ok = parsePositional(s, loc)
	}
	if ok && strings.Contains(s, ":") {
		t, ok = overrideClock(t, s, loc)
	}
	if !ok {
		return now().In(loc), false
	}
	return t, true
}

func parseStandard(s string, loc *time.Location) (time.Time, bool) {
	// Apps Script serialises dates as "Fri Mar 01 2024 08:10:00 GMT+0800 (Malaysia Time)".
	if i := strings.Index(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		s = s[:i]
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// parsePositional splits the date portion on '/' or '-'. A first part
// above 1900 means Y-M-D; otherwise D-M-Y with two-digit years in 2000+.
// Out-of-range parts roll over the way time.Date normalises them.
func parsePositional(s string, loc *time.Location) (time.Time, bool) {
	datePart := strings.SplitN(s, " ", 2)[0]
	parts := strings.FieldsFunc(datePart, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 || strings.Count(datePart, "/")+strings.Count(datePart, "-") != 2 {
		return time.Time{}, false
	}

	var p [3]int
	for i, part := range parts {
		n, ok := leadingInt(part)
		if !ok {
			return time.Time{}, false
		}
		p[i] = n
	}

	if p[0] > 1900 {
		return time.Date(p[0], time.Month(p[1]), p[2], 0, 0, 0, 0, loc), true
	}
	year := p[2]
	if year < 100 {
		year += 2000
	}
	return time.Date(year, time.Month(p[1]), p[0], 0, 0, 0, 0, loc), true
}

// overrideClock sets hour and minute from the token after the first space.
// A missing token leaves t alone; a malformed one invalidates the date.
func overrideClock(t time.Time, s string, loc *time.Location) (time.Time, bool) {
	fields := strings.Split(s, " ")
	if len(fields) < 2 || fields[1] == "" {
		return t, true
	}
	clock := strings.Split(fields[1], ":")
	if len(clock) < 2 {
		return t, true
	}
	hour, ok := leadingInt(clock[0])
	if !ok {
		return t, false
	}
	minute := 0
	if clock[1] != "" {
		if minute, ok = leadingInt(clock[1]); !ok {
			return t, false
		}
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, t.Second(), t.Nanosecond(), loc), true
}

// leadingInt reads the leading decimal digits of s, ignoring surrounding
// whitespace and trailing garbage ("08am" is 8). No digits is not ok.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if digits < 9 {
			n = n*10 + int(r-'0')
		}
		digits++
	}
	return n, digits > 0
}
