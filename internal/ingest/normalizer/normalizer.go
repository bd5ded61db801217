// Package normalizer converts one decoded row plus its field schema into a
// model.LateRecord: identity fields are trimmed, upper-cased and defaulted,
// the timestamp goes through a layered parse, and lateness is derived from
// the arrival time against a fixed 07:30 start.
package normalizer

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crimson-sun/latewatch/internal/model"
)

// StartMinutes is the start of the school day (07:30) in minutes past midnight.
const StartMinutes = 7*60 + 30

const syntheticIDOffset = 1000

// Defaults are substituted for unresolved or blank fields.
type Defaults struct {
	Name   string
	Group  string
	Reason string
}

// DefaultsFor returns the fallback labels for a locale ("ms" or "en").
// Unknown locales get the Malay labels used by the source sheets.
func DefaultsFor(locale string) Defaults {
	switch strings.ToLower(locale) {
	case "en":
		return Defaults{Name: "UNKNOWN", Group: "GENERAL", Reason: "No record"}
	default:
		return Defaults{Name: "UNKNOWN", Group: "UMUM", Reason: "Tiada Rekod"}
	}
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLocation sets the zone used for calendar dates and arrival times.
// Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// WithClock sets the source of the current instant used for unparseable
// dates. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// WithDefaults overrides the fallback labels.
func WithDefaults(d Defaults) Option {
	return func(n *Normalizer) { n.defaults = d }
}

// Normalizer is immutable after New and safe for concurrent use.
type Normalizer struct {
	loc      *time.Location
	now      func() time.Time
	defaults Defaults
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		loc:      time.Local,
		now:      time.Now,
		defaults: DefaultsFor("ms"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Location returns the zone records are normalized in.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Outcome reports how a row was handled, for diagnostics.
type Outcome struct {
	Rejected     bool // neither name nor identifier resolved
	DateFallback bool // timestamp defaulted to now
}

// Normalize builds the record for the row at index (0-based, header
// excluded). ok is false when the row cannot be attributed to anyone.
func (n *Normalizer) Normalize(row model.Row, s model.FieldSchema, index int) (rec model.LateRecord, out Outcome, ok bool) {
	if !s.Identifiable() {
		return model.LateRecord{}, Outcome{Rejected: true}, false
	}

	upper := cases.Upper(language.Und)
	field := func(role model.Role) string {
		col, ok := s.Lookup(role)
		if !ok {
			return ""
		}
		return strings.TrimSpace(row.Cell(col.Index))
	}
	ident := func(role model.Role, fallback string) string {
		if v := upper.String(field(role)); v != "" {
			return v
		}
		return fallback
	}

	ts, parsed := ParseDate(field(model.RoleTimestamp), n.loc, n.now)

	reason := field(model.RoleReason)
	if reason == "" {
		reason = n.defaults.Reason
	}

	rec = model.LateRecord{
		ID:          "REC-" + strconv.Itoa(index),
		PersonID:    ident(model.RoleIdentifier, "S-"+strconv.Itoa(syntheticIDOffset+index)),
		PersonName:  ident(model.RoleName, n.defaults.Name),
		GroupName:   ident(model.RoleGroup, n.defaults.Group),
		Timestamp:   ts,
		Reason:      reason,
		MinutesLate: MinutesLate(ts, n.loc),
	}
	return rec, Outcome{DateFallback: !parsed}, true
}

// MinutesLate is max(0, arrival - 07:30) using t's wall clock in loc.
func MinutesLate(t time.Time, loc *time.Location) int {
	t = t.In(loc)
	arrival := t.Hour()*60 + t.Minute()
	return max(0, arrival-StartMinutes)
}
