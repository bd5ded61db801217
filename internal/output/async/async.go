package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crimson-sun/latewatch/internal/model"
	"github.com/crimson-sun/latewatch/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultDrainTimeout = 5 * time.Second
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("async output closed")

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write drop the record instead of blocking when the
// buffer is full.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// WithDrainTimeout bounds how long Close waits for the buffer to empty.
// Default: 5s.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// Async hands records to a background goroutine that writes them to the
// wrapped output. Inner write errors go to errFunc, not the caller.
type Async struct {
	inner        output.Output
	ch           chan model.LateRecord
	done         chan struct{}
	errFunc      func(error)
	bufSize      int
	dropOnFull   bool
	drainTimeout time.Duration
	dropped      atomic.Int64

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// New wraps inner and starts the drain goroutine.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
		errFunc:      func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.LateRecord, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues rec. It blocks while the buffer is full unless drop mode is
// on, and gives up when ctx is cancelled.
func (a *Async) Write(ctx context.Context, rec model.LateRecord) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	if a.dropOnFull {
		select {
		case a.ch <- rec:
		default:
			a.dropped.Add(1)
			slog.Warn("async output buffer full, dropping record",
				"person", rec.PersonName, "timestamp", rec.Timestamp)
		}
		return nil
	}

	select {
	case a.ch <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped reports how many records drop mode has discarded.
func (a *Async) Dropped() int64 { return a.dropped.Load() }

// Close stops accepting records, waits for the drain (bounded by the drain
// timeout), then closes the inner output.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.ch)
		a.mu.Unlock()

		select {
		case <-a.done:
		case <-time.After(a.drainTimeout):
			slog.Warn("async output drain timed out", "pending", len(a.ch))
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for rec := range a.ch {
		if err := a.inner.Write(context.Background(), rec); err != nil {
			a.errFunc(err)
		}
	}
}
