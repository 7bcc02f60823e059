package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
)

// ErrClosed is returned when enqueuing into a closed Ingester.
var ErrClosed = errors.New("ingester closed")

// Stats counts what an Ingester has done so far.
type Stats struct {
	Applied int64 // adds that changed the contest
	Noops   int64 // adds classified NOOP
	Skipped int64 // lines that failed to decode
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(in *Ingester) {
		in.logger = l
	}
}

// Ingester is the single writer of a contest.
//
// Thread-safety model:
//   - Enqueue, Close, Stats: safe from any goroutine
//   - Run: exactly one goroutine
type Ingester struct {
	contest *contest.Contest
	queue   *queue
	logger  *slog.Logger

	applied atomic.Int64
	noops   atomic.Int64
	skipped atomic.Int64
}

// NewIngester returns an Ingester feeding c.
func NewIngester(c *contest.Contest, opts ...Option) *Ingester {
	in := &Ingester{
		contest: c,
		queue:   newQueue(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Enqueue submits obj for application.
func (in *Ingester) Enqueue(obj model.Object) error {
	if !in.queue.enqueue(obj) {
		return ErrClosed
	}
	return nil
}

// Close stops accepting objects. Run returns after the queue drains.
func (in *Ingester) Close() {
	in.queue.close()
}

// Pending returns the number of queued objects.
func (in *Ingester) Pending() int {
	return in.queue.size()
}

// Stats returns the counters.
func (in *Ingester) Stats() Stats {
	return Stats{
		Applied: in.applied.Load(),
		Noops:   in.noops.Load(),
		Skipped: in.skipped.Load(),
	}
}

// Run applies queued objects in FIFO order until the queue is closed and
// drained, or ctx is done.
func (in *Ingester) Run(ctx context.Context) error {
	in.logger.Debug("ingester starting", "contest", in.contest.Name())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if obj, ok := in.queue.tryDequeue(); ok {
			in.apply(obj)
			continue
		}
		if in.queue.drained() {
			in.logger.Debug("ingester stopped", "applied", in.applied.Load())
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-in.queue.wait():
		}
	}
}

func (in *Ingester) apply(obj model.Object) {
	if in.contest.Add(obj) == model.NOOP {
		in.noops.Add(1)
		return
	}
	in.applied.Add(1)
}

// ReadFrom decodes r and enqueues every object. Lines that fail to decode
// are logged and skipped. It returns the number of objects enqueued.
func (in *Ingester) ReadFrom(r io.Reader) (int64, error) {
	fr := NewReader(r)
	var n int64
	for {
		obj, err := fr.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		var de *DecodeError
		if errors.As(err, &de) {
			in.skipped.Add(1)
			in.logger.Warn("skipping feed line", "line", de.Line, "type", de.Kind, "error", de.Err)
			continue
		}
		if err != nil {
			return n, err
		}
		if err := in.Enqueue(obj); err != nil {
			return n, err
		}
		n++
	}
}

// Load reads the whole feed r into c and returns once every event has been
// applied.
func Load(ctx context.Context, r io.Reader, c *contest.Contest, opts ...Option) (Stats, error) {
	in := NewIngester(c, opts...)
	done := make(chan error, 1)
	go func() {
		done <- in.Run(ctx)
	}()

	_, readErr := in.ReadFrom(r)
	in.Close()
	runErr := <-done

	if readErr != nil {
		return in.Stats(), fmt.Errorf("load feed: %w", readErr)
	}
	if runErr != nil {
		return in.Stats(), fmt.Errorf("load feed: %w", runErr)
	}
	in.logger.Info("feed loaded",
		"contest", c.Name(),
		"applied", in.applied.Load(),
		"noops", in.noops.Load(),
		"skipped", in.skipped.Load(),
	)
	return in.Stats(), nil
}
