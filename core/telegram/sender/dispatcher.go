// Package sender runs outbound Telegram calls with bounded retries, either
// synchronously (Do) or on a worker pool (Enqueue).
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pixol20/MemeSender/core/logger"
	"github.com/pixol20/MemeSender/core/telegram/netutil"
)

const component = "tg.sender"

var (
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	ErrQueueFull   = errors.New("telegram sender: queue full")

	errNilRun = errors.New("telegram sender: nil run function")
)

// Options controls the dispatcher. Zero values select the defaults below;
// a zero MaxRetries means a single attempt.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on one call including retries.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

// call is one outbound request. run must be safe to repeat.
type call struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

func (c call) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", c.action)}
	if c.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", c.endpoint))
	}
	return append(attrs, extra...)
}

// Dispatcher executes outbound Telegram calls with retries.
type Dispatcher struct {
	opts  Options
	queue chan call

	mu     sync.RWMutex
	closed bool
	once   sync.Once
	wg     sync.WaitGroup

	failures atomic.Uint64
}

// NewDispatcher starts opts.Workers workers draining the queue.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, queue: make(chan call, opts.QueueSize)}
	d.wg.Add(opts.Workers)
	for range opts.Workers {
		go func() {
			defer d.wg.Done()
			for c := range d.queue {
				d.finish(d.execute(c))
			}
		}()
	}
	return d
}

// Enqueue schedules run on the worker pool without waiting for it.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilRun
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queue <- call{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Do runs fn on the caller's goroutine with the retry policy and returns
// the last error.
func (d *Dispatcher) Do(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilRun
	}
	return d.finish(d.execute(call{ctx: ctx, action: action, endpoint: endpoint, run: run}))
}

// ErrorCount returns the number of calls that failed after all retries.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failures.Load()
}

// Close rejects new jobs and waits for the queued ones to finish.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) finish(err error) error {
	if err != nil {
		d.failures.Add(1)
	}
	return err
}

func (d *Dispatcher) execute(c call) error {
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	bounded, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = c.run(); err == nil {
			logSuccess(ctx, c, attempt, logger.Took(start))
			return nil
		}
		if !netutil.ShouldRetry(err) || attempt == attempts {
			logFailure(ctx, c, err, attempt, logger.Took(start))
			return err
		}

		delay := max(d.opts.RetryBackoff*time.Duration(attempt), netutil.RetryAfter(err))
		logger.Debug(ctx, component, "send.retry.backoff",
			c.attrs(slog.Int("attempt", attempt), slog.Duration("delay", delay))...)
		if werr := wait(bounded, delay); werr != nil {
			logFailure(ctx, c, werr, attempt, logger.Took(start))
			return werr
		}
	}
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func logSuccess(ctx context.Context, c call, attempt int, took time.Duration) {
	if attempt == 1 {
		logger.Debug(ctx, component, "send.success", c.attrs(slog.Duration("elapsed", took))...)
		return
	}
	logger.Info(ctx, component, "send.retry.success",
		c.attrs(slog.Int("attempt", attempt), slog.Duration("elapsed", took))...)
}

func logFailure(ctx context.Context, c call, err error, attempts int, took time.Duration) {
	logger.Error(ctx, component, "send.fail", c.attrs(
		slog.String("err", redact(err)),
		slog.String("err_code", classify(err)),
		slog.Int("attempts", attempts),
		slog.Duration("elapsed", took),
	)...)
}
