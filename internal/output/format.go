package output

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/latewatch/internal/model"
)

// Verbosity controls how much of a record reaches an output.
type Verbosity int

const (
	Standard Verbosity = iota
	Minimal
)

func (v Verbosity) String() string {
	if v == Minimal {
		return "minimal"
	}
	return "standard"
}

// ParseVerbosity maps a config string to a Verbosity. Empty means Standard.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return Standard, nil
	case "minimal":
		return Minimal, nil
	default:
		return Standard, fmt.Errorf("unknown verbosity %q", s)
	}
}

// FormatRecord returns a copy of rec with fields stripped according to
// verbosity. At Minimal the record ID and reason are dropped (both are
// omitempty in JSON).
func FormatRecord(rec model.LateRecord, verbosity Verbosity) model.LateRecord {
	if verbosity == Minimal {
		rec.ID = ""
		rec.Reason = ""
	}
	return rec
}
