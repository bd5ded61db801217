package ingest

import (
	"errors"

	"github.com/crimson-sun/latewatch/internal/ingest/decoder"
)

// Fetch-level failures. Row rejections and unparseable dates are absorbed
// and only show up in Result counters.
var (
	// ErrAuthRequired: the feed answered with a login page. Do not retry;
	// the deployment needs reconfiguring.
	ErrAuthRequired = decoder.ErrAuthRequired

	// ErrDecodeFailure: the body is neither JSON nor delimited text.
	ErrDecodeFailure = decoder.ErrDecodeFailure

	// ErrTransportFailure: the fetch itself failed (non-2xx, network).
	// Raised by connectors before the body reaches the core.
	ErrTransportFailure = errors.New("transport failure")
)
