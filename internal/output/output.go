package output

import (
	"context"

	"github.com/crimson-sun/latewatch/internal/model"
)

// Output is a destination for normalized late records.
type Output interface {
	Write(ctx context.Context, rec model.LateRecord) error
	Close() error
}
