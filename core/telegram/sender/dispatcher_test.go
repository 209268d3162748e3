package sender

import (
	"context"
	"errors"
	"net"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond, MaxDuration: time.Second})
	t.Cleanup(d.Close)
	return d
}

func TestDoRetriesTransient(t *testing.T) {
	d := newTestDispatcher(t)
	calls := 0
	err := d.Do(context.Background(), "send.text", "sendMessage", func() error {
		calls++
		if calls < 3 {
			return &net.OpError{Op: "dial", Err: errors.New("refused")}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("err %v calls %d", err, calls)
	}
	if d.ErrorCount() != 0 {
		t.Fatalf("error count = %d", d.ErrorCount())
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	d := newTestDispatcher(t)
	boom := errors.New("bad request")
	calls := 0
	err := d.Do(context.Background(), "send.text", "sendMessage", func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("err %v calls %d", err, calls)
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("error count = %d", d.ErrorCount())
	}
}

func TestEnqueueRunsAndCloseDrains(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2})
	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		if err := d.Enqueue(context.Background(), "send.text", "", func() error {
			ran.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	d.Close()
	if ran.Load() != 5 {
		t.Fatalf("ran = %d", ran.Load())
	}
	if err := d.Enqueue(context.Background(), "x", "", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Enqueue after Close = %v", err)
	}
}

func TestRedact(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123:abc-DEF/sendMessage": timeout`)
	if got := redact(err); got != `Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout` {
		t.Fatalf("got %s", got)
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]error{
		"timeout":  context.DeadlineExceeded,
		"dns":      &url.Error{Op: "Post", URL: "u", Err: &net.DNSError{Err: "no such host"}},
		"dial":     &net.OpError{Op: "dial", Err: errors.New("refused")},
		"http_4xx": &tele.Error{Code: 400, Description: "Bad Request"},
		"http_5xx": errors.New("telegram: internal error (502)"),
		"unknown":  errors.New("boom"),
	}
	for want, err := range cases {
		if got := classify(err); got != want {
			t.Errorf("classify(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestDoHonoursDeadline(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 5, RetryBackoff: time.Hour, MaxDuration: 20 * time.Millisecond})
	t.Cleanup(d.Close)
	err := d.Do(context.Background(), "send.text", "sendMessage", func() error {
		return &net.OpError{Op: "dial", Err: errors.New("refused")}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	d.Close()
	if err := d.Enqueue(context.Background(), "x", "", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v", err)
	}
}
