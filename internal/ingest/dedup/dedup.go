package dedup

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crimson-sun/latewatch/internal/model"
)

// Deduplicator collapses repeated sightings of the same person on the same
// calendar day and orders the survivors newest first.
type Deduplicator struct {
	loc *time.Location
}

// New creates a Deduplicator that buckets days in loc (nil means time.Local).
func New(loc *time.Location) *Deduplicator {
	if loc == nil {
		loc = time.Local
	}
	return &Deduplicator{loc: loc}
}

// Key returns the dedup key: lower-cased trimmed name, "_", and the
// calendar date in loc. Time of day, group and reason are ignored.
func (d *Deduplicator) Key(r model.LateRecord) string {
	t := r.Timestamp.In(d.loc)
	name := cases.Lower(language.Und).String(strings.TrimSpace(r.PersonName))
	return fmt.Sprintf("%s_%d-%d-%d", name, t.Year(), int(t.Month()), t.Day())
}

// DeduplicateBatch keeps the first record per key in input order and
// drops the rest, even when their times differ.
func (d *Deduplicator) DeduplicateBatch(records []model.LateRecord) []model.LateRecord {
	if len(records) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(records))
	out := make([]model.LateRecord, 0, len(records))
	for _, r := range records {
		k := d.Key(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Apply deduplicates then sorts newest first. Equal timestamps keep their
// relative order. The input slice is not modified.
func (d *Deduplicator) Apply(records []model.LateRecord) []model.LateRecord {
	out := d.DeduplicateBatch(records)
	SortNewestFirst(out)
	return out
}

// SortNewestFirst stably orders records by timestamp, most recent first.
func SortNewestFirst(records []model.LateRecord) {
	slices.SortStableFunc(records, func(a, b model.LateRecord) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
