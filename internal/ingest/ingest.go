// Package ingest turns a fetched feed body into the final record sequence:
// decode, resolve schema, normalize each row, then deduplicate and order.
package ingest

import (
	"log/slog"
	"time"

	"github.com/crimson-sun/latewatch/internal/ingest/decoder"
	"github.com/crimson-sun/latewatch/internal/ingest/dedup"
	"github.com/crimson-sun/latewatch/internal/ingest/normalizer"
	"github.com/crimson-sun/latewatch/internal/ingest/schema"
	"github.com/crimson-sun/latewatch/internal/model"
)

// Result is the outcome of one ingest. InputRows counts data rows after
// the header, so an empty feed (InputRows == 0) can be told apart from a
// feed whose rows were all rejected.
type Result struct {
	Records       []model.LateRecord
	Mode          model.Mode
	InputRows     int
	Rejected      int
	Duplicates    int
	DateFallbacks int
}

// Engine orchestrates decode → resolve → normalize → dedup. It keeps no
// state between calls and is safe for concurrent use.
type Engine struct {
	resolver   *schema.Resolver
	normalizer *normalizer.Normalizer
	dedup      *dedup.Deduplicator
}

// New creates an Engine from its components.
func New(res *schema.Resolver, norm *normalizer.Normalizer, dd *dedup.Deduplicator) *Engine {
	return &Engine{
		resolver:   res,
		normalizer: norm,
		dedup:      dd,
	}
}

// Options bundles the settings needed to build a default Engine.
type Options struct {
	Location *time.Location
	Clock    func() time.Time
	Locale   string
}

// NewDefault wires the default synonym table with the given zone, clock
// and locale.
func NewDefault(o Options) *Engine {
	norm := normalizer.New(
		normalizer.WithLocation(o.Location),
		normalizer.WithClock(o.Clock),
		normalizer.WithDefaults(normalizer.DefaultsFor(o.Locale)),
	)
	return New(schema.New(nil), norm, dedup.New(norm.Location()))
}

// Normalize processes a whole body. Only decode-level problems are errors.
func (e *Engine) Normalize(body []byte, contentType string) (Result, error) {
	grid, err := decoder.Decode(body, contentType)
	if err != nil {
		return Result{}, err
	}

	res := Result{Mode: grid.Mode, InputRows: len(grid.Rows)}
	if grid.Empty() {
		return res, nil
	}

	schemaFor := e.resolver.ForGrid(grid)
	records := make([]model.LateRecord, 0, len(grid.Rows))
	for i, row := range grid.Rows {
		rec, out, ok := e.normalizer.Normalize(row, schemaFor(row), i)
		if out.DateFallback {
			res.DateFallbacks++
		}
		if !ok {
			res.Rejected++
			continue
		}
		records = append(records, rec)
	}

	res.Records = e.dedup.Apply(records)
	res.Duplicates = len(records) - len(res.Records)

	slog.Debug("ingest complete",
		"mode", grid.Mode.String(),
		"rows", res.InputRows,
		"rejected", res.Rejected,
		"duplicates", res.Duplicates,
		"date_fallbacks", res.DateFallbacks,
	)
	return res, nil
}

// FetchAndNormalize is Normalize reduced to the record sequence.
func (e *Engine) FetchAndNormalize(responseText, contentType string) ([]model.LateRecord, error) {
	res, err := e.Normalize([]byte(responseText), contentType)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Key returns the dedup key the engine uses for rec.
func (e *Engine) Key(rec model.LateRecord) string {
	return e.dedup.Key(rec)
}
