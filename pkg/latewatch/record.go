package latewatch

import (
	"time"

	"github.com/crimson-sun/latewatch/internal/ingest"
	"github.com/crimson-sun/latewatch/internal/model"
)

// Record is one normalized late arrival.
type Record struct {
	ID          string    `json:"id"`
	PersonID    string    `json:"personId"`
	PersonName  string    `json:"personName"`
	GroupName   string    `json:"groupName"`
	Timestamp   time.Time `json:"timestamp"`
	Reason      string    `json:"reason"`
	MinutesLate int       `json:"minutesLate"`
}

// Report is a normalize result with row-level diagnostics.
type Report struct {
	Records []Record
	// InputRows counts data rows after any header row.
	InputRows int
	// Rejected counts rows with neither a name nor an identifier column.
	Rejected int
	// Duplicates counts rows dropped as repeats of an earlier person-day.
	Duplicates int
	// DateFallbacks counts rows whose date could not be parsed and took
	// the current time instead.
	DateFallbacks int
}

func recordFromModel(r model.LateRecord) Record {
	return Record{
		ID:          r.ID,
		PersonID:    r.PersonID,
		PersonName:  r.PersonName,
		GroupName:   r.GroupName,
		Timestamp:   r.Timestamp,
		Reason:      r.Reason,
		MinutesLate: r.MinutesLate,
	}
}

func reportFromResult(res ingest.Result) Report {
	out := Report{
		Records:       make([]Record, len(res.Records)),
		InputRows:     res.InputRows,
		Rejected:      res.Rejected,
		Duplicates:    res.Duplicates,
		DateFallbacks: res.DateFallbacks,
	}
	for i, r := range res.Records {
		out.Records[i] = recordFromModel(r)
	}
	return out
}
