package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/crimson-sun/latewatch/internal/connector"
)

func init() {
	connector.Register("file", func() connector.Connector {
		return &Connector{}
	})
}

var extContentTypes = map[string]string{
	".json": "application/json",
	".csv":  "text/csv",
	".tsv":  "text/tab-separated-values",
	".txt":  "text/plain",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".html": "text/html",
	".htm":  "text/html",
}

// Connector reads a feed export from the local filesystem. Useful for
// replaying a saved response or for sheets synced to disk.
type Connector struct{}

// ContentTypeFor guesses a content type from the file extension.
// Unknown extensions return "" and leave detection to the decoder.
func ContentTypeFor(path string) string {
	return extContentTypes[strings.ToLower(filepath.Ext(path))]
}

func (c *Connector) Fetch(ctx context.Context, cfg connector.ConnectorConfig) (connector.Payload, error) {
	path, err := pathOf(cfg)
	if err != nil {
		return connector.Payload{}, err
	}
	if err := ctx.Err(); err != nil {
		return connector.Payload{}, err
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return connector.Payload{}, fmt.Errorf("file connector: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return connector.Payload{}, fmt.Errorf("file connector: %w", err)
	}

	ct := cfg.Extra["content_type"]
	if ct == "" {
		ct = ContentTypeFor(path)
	}
	return connector.Payload{
		Source:      "file:" + path,
		Body:        body,
		ContentType: ct,
		FetchedAt:   info.ModTime(),
	}, nil
}

// Changes emits whenever the file is written, created or renamed into
// place. The directory is watched rather than the file so editors that
// replace the file atomically are still seen. The channel closes when ctx
// is done.
func (c *Connector) Changes(ctx context.Context, cfg connector.ConnectorConfig) (<-chan struct{}, error) {
	path, err := pathOf(cfg)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("file connector: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("file connector: watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("file connector: watch %s: %w", filepath.Dir(abs), err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				// Coalesce bursts; one pending signal is enough.
				select {
				case ch <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("file connector watch error", "path", abs, "error", err)
			}
		}
	}()
	return ch, nil
}

func pathOf(cfg connector.ConnectorConfig) (string, error) {
	path := cfg.Extra["path"]
	if path == "" {
		path = cfg.Endpoint
	}
	if path == "" {
		return "", fmt.Errorf("file connector: missing required config key \"path\" in Extra")
	}
	return path, nil
}
