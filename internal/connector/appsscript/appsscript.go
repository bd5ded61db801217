package appsscript

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/crimson-sun/latewatch/internal/connector"
	"github.com/crimson-sun/latewatch/internal/connector/httpclient"
	"github.com/crimson-sun/latewatch/internal/ingest"
)

const defaultEndpoint = "https://script.google.com"

func init() {
	connector.Register("appsscript", func() connector.Connector {
		return &Connector{}
	})
}

// Connector fetches a Google Apps Script web-app deployment that exports
// a sheet as JSON or CSV.
type Connector struct{}

// ExecPath returns the web-app path for a deployment id.
func ExecPath(scriptID string) string {
	return "/macros/s/" + url.PathEscape(scriptID) + "/exec"
}

// Fetch issues one GET. Non-2xx answers and network errors wrap
// ingest.ErrTransportFailure, except HTML pages: those come back as the
// payload whatever the status, so decoding reports them as a sign-in wall.
func (c *Connector) Fetch(ctx context.Context, cfg connector.ConnectorConfig) (connector.Payload, error) {
	scriptID := strings.TrimSpace(cfg.Extra["script_id"])
	if scriptID == "" {
		return connector.Payload{}, fmt.Errorf("appsscript connector: missing required config key \"script_id\" in Extra")
	}

	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = defaultEndpoint
	}

	var opts []httpclient.Option
	if v := cfg.Extra["timeout"]; v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			opts = append(opts, httpclient.WithTimeout(d))
		}
	}
	client := httpclient.New(strings.TrimRight(baseURL, "/"), cfg.APIKey, opts...)

	var query url.Values
	if sheet := cfg.Extra["sheet"]; sheet != "" {
		query = url.Values{"sheet": []string{sheet}}
	}

	resp, err := client.Get(ctx, ExecPath(scriptID), query)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return connector.Payload{}, err
		}
		var apiErr *httpclient.APIError
		if errors.As(err, &apiErr) && apiErr.IsMarkup() {
			return connector.Payload{
				Source:      "appsscript:" + scriptID,
				Body:        apiErr.Raw,
				ContentType: apiErr.ContentType,
				FetchedAt:   time.Now(),
			}, nil
		}
		return connector.Payload{}, fmt.Errorf("appsscript connector: %w: %w", ingest.ErrTransportFailure, err)
	}

	return connector.Payload{
		Source:      "appsscript:" + scriptID,
		Body:        resp.Body,
		ContentType: resp.ContentType,
		FetchedAt:   time.Now(),
	}, nil
}
