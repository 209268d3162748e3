package logger

import (
	"bufio"
	"io"
	"sync"
)

type writeJob struct {
	line []byte
	ack  chan error
}

// asyncWriter serializes log lines onto a single goroutine that fans them out
// to every sink. Output is flushed whenever the queue drains.
type asyncWriter struct {
	jobs chan writeJob
	done chan struct{}
	out  *bufio.Writer

	// mu guards closed; senders hold it shared while enqueueing.
	mu     sync.RWMutex
	closed bool

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(sinks []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	live := make([]io.Writer, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	w := &asyncWriter{
		jobs: make(chan writeJob, 256),
		done: make(chan struct{}),
		out:  bufio.NewWriterSize(io.MultiWriter(live...), bufSize),
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for job := range w.jobs {
		if job.line != nil {
			if _, err := w.out.Write(job.line); err != nil {
				w.fail(err)
			}
		}
		if job.ack != nil || len(w.jobs) == 0 {
			err := w.out.Flush()
			if err != nil {
				w.fail(err)
			}
			if job.ack != nil {
				job.ack <- err
			}
		}
	}
	if err := w.out.Flush(); err != nil {
		w.fail(err)
	}
}

// Write queues a copy of p. It blocks when the queue is full so that no line
// is dropped.
func (w *asyncWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return io.ErrClosedPipe
	}
	if err := w.firstErr(); err != nil {
		return err
	}
	w.jobs <- writeJob{line: append([]byte(nil), p...)}
	return nil
}

// Flush waits until every queued line has reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return w.firstErr()
	}
	w.jobs <- writeJob{ack: ack}
	w.mu.RUnlock()
	return <-ack
}

// Close drains the queue and returns the first write error, if any.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) fail(err error) {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
