package latewatch

import (
	"github.com/crimson-sun/latewatch/internal/ingest"
)

// Errors returned by Normalize. Match them with errors.Is.
var (
	ErrAuthRequired     = ingest.ErrAuthRequired
	ErrDecodeFailure    = ingest.ErrDecodeFailure
	ErrTransportFailure = ingest.ErrTransportFailure
)

// Latewatch normalizes feed bodies with a fixed zone, clock and locale.
type Latewatch struct {
	engine *ingest.Engine
}

// New creates a Latewatch instance.
func New(opts ...Option) *Latewatch {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Latewatch{engine: ingest.NewDefault(ingest.Options{
		Location: o.location,
		Clock:    o.clock,
		Locale:   o.locale,
	})}
}

// Normalize decodes body and returns the deduplicated records, newest
// first. An empty feed yields an empty slice and no error.
func (l *Latewatch) Normalize(body []byte, contentType string) ([]Record, error) {
	rep, err := l.NormalizeReport(body, contentType)
	if err != nil {
		return nil, err
	}
	return rep.Records, nil
}

// NormalizeReport is Normalize with row-level diagnostics.
func (l *Latewatch) NormalizeReport(body []byte, contentType string) (Report, error) {
	res, err := l.engine.Normalize(body, contentType)
	if err != nil {
		return Report{}, err
	}
	return reportFromResult(res), nil
}

// Normalize is a one-shot New(opts...).Normalize(body, contentType).
func Normalize(body []byte, contentType string, opts ...Option) ([]Record, error) {
	return New(opts...).Normalize(body, contentType)
}
