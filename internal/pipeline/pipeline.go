// Package pipeline wires a connector, the ingest engine and an output
// together for one-shot, fan-out and watch runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/latewatch/internal/connector"
	"github.com/crimson-sun/latewatch/internal/ingest"
	"github.com/crimson-sun/latewatch/internal/model"
	"github.com/crimson-sun/latewatch/internal/output"
)

const defaultConcurrency = 4

// Processor turns a fetched body into records. *ingest.Engine satisfies it.
type Processor interface {
	Normalize(body []byte, contentType string) (ingest.Result, error)
	Key(rec model.LateRecord) string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency caps how many sources RunAll fetches at once. Default: 4.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// Pipeline connects a connector, processor and output.
type Pipeline struct {
	connector   connector.Connector
	proc        Processor
	output      output.Output
	concurrency int
}

// New creates a Pipeline from the given components.
func New(conn connector.Connector, proc Processor, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		connector:   conn,
		proc:        proc,
		output:      out,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run fetches one source, normalizes it and writes every record.
func (p *Pipeline) Run(ctx context.Context, cfg connector.ConnectorConfig) (ingest.Result, error) {
	return p.run(ctx, cfg, nil)
}

// RunAll runs every source concurrently. Results come back in the order of
// cfgs. The first failure cancels the remaining fetches.
func (p *Pipeline) RunAll(ctx context.Context, cfgs []connector.ConnectorConfig) ([]ingest.Result, error) {
	results := make([]ingest.Result, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			res, err := p.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Watch re-runs the source whenever it changes (connectors that implement
// connector.Notifier) or every interval otherwise, and writes only records
// whose dedup key has not been written before. An auth wall ends the watch
// because retrying cannot clear it; other failures are logged and the next
// trigger tries again. Watch returns ctx.Err() once ctx is done.
func (p *Pipeline) Watch(ctx context.Context, cfg connector.ConnectorConfig, interval time.Duration) error {
	triggers, stop, err := p.triggers(ctx, cfg, interval)
	if err != nil {
		return fmt.Errorf("pipeline watch: %w", err)
	}
	defer stop()

	seen := newSeenSet()
	for {
		if _, err := p.run(ctx, cfg, seen); err != nil {
			if errors.Is(err, ingest.ErrAuthRequired) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("watch poll failed", "provider", cfg.Provider, "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-triggers:
			if !ok {
				return ctx.Err()
			}
		}
	}
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}

// run is one fetch → normalize → write cycle. With a non-nil seen set only
// unseen records are written.
func (p *Pipeline) run(ctx context.Context, cfg connector.ConnectorConfig, seen *seenSet) (ingest.Result, error) {
	log := slog.With("fetch_id", uuid.NewString(), "provider", cfg.Provider)
	start := time.Now()

	payload, err := p.connector.Fetch(ctx, cfg)
	if err != nil {
		return ingest.Result{}, fmt.Errorf("pipeline fetch: %w", err)
	}

	res, err := p.proc.Normalize(payload.Body, payload.ContentType)
	if err != nil {
		return ingest.Result{}, fmt.Errorf("pipeline normalize %s: %w", payload.Source, err)
	}

	written := 0
	for _, rec := range res.Records {
		key := p.proc.Key(rec)
		if seen != nil && seen.has(key) {
			continue
		}
		if err := p.output.Write(ctx, rec); err != nil {
			return res, fmt.Errorf("pipeline output: %w", err)
		}
		if seen != nil {
			seen.add(key)
		}
		written++
	}

	log.Info("fetch complete",
		"source", payload.Source,
		"bytes", len(payload.Body),
		"rows", res.InputRows,
		"records", len(res.Records),
		"written", written,
		"rejected", res.Rejected,
		"duplicates", res.Duplicates,
		"date_fallbacks", res.DateFallbacks,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// triggers returns the channel that drives Watch and a func releasing it.
func (p *Pipeline) triggers(ctx context.Context, cfg connector.ConnectorConfig, interval time.Duration) (<-chan struct{}, func(), error) {
	if n, ok := p.connector.(connector.Notifier); ok {
		ch, err := n.Changes(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return ch, func() {}, nil
	}
	if interval <= 0 {
		return nil, nil, fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	ch := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, func() {
		ticker.Stop()
		close(done)
	}, nil
}
