package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/latewatch/internal/model"
	"github.com/crimson-sun/latewatch/internal/output"
)

// Multi fans records out to several outputs in order. A failing output does
// not stop delivery to the rest; all errors are joined.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi over the given outputs. Nil entries are skipped.
func New(outputs ...output.Output) *Multi {
	m := &Multi{}
	for _, o := range outputs {
		if o != nil {
			m.outputs = append(m.outputs, o)
		}
	}
	return m
}

// Len reports how many outputs are attached.
func (m *Multi) Len() int { return len(m.outputs) }

func (m *Multi) Write(ctx context.Context, rec model.LateRecord) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
