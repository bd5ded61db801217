package connector

import (
	"context"
	"time"
)

// Connector fetches one snapshot of a feed. Implementations return the body
// untouched; classifying it (login page, JSON, CSV) is the ingest engine's job.
type Connector interface {
	Fetch(ctx context.Context, cfg ConnectorConfig) (Payload, error)
}

// Notifier is implemented by connectors that can signal when their source
// changed, so watch mode can refetch without polling.
type Notifier interface {
	Changes(ctx context.Context, cfg ConnectorConfig) (<-chan struct{}, error)
}

// ConnectorConfig holds provider-specific connection settings.
type ConnectorConfig struct {
	Provider string
	APIKey   string
	Endpoint string
	Extra    map[string]string
}

// Payload is a fetched body and the content type it was served with.
type Payload struct {
	Source      string
	Body        []byte
	ContentType string
	FetchedAt   time.Time
}
