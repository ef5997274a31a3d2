package async

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/denoland-id/denoid/pkg/observability"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SafeGo task did not finish")
	}
}

func TestSafeGo_Success(t *testing.T) {
	out := &syncBuffer{}
	logger := observability.NewLogger(observability.InfoLevel, out)

	executed := false
	waitDone(t, SafeGo(context.Background(), logger, time.Second, "test task", func(ctx context.Context) error {
		executed = true
		return nil
	}))

	if !executed {
		t.Error("SafeGo did not execute function")
	}
	if out.String() != "" {
		t.Errorf("Expected no log output, got %q", out.String())
	}
}

func TestSafeGo_LogsError(t *testing.T) {
	out := &syncBuffer{}
	logger := observability.NewLogger(observability.InfoLevel, out)

	waitDone(t, SafeGo(context.Background(), logger, time.Second, "seed", func(ctx context.Context) error {
		return errors.New("airtable unavailable")
	}))

	got := out.String()
	if !strings.Contains(got, "airtable unavailable") || !strings.Contains(got, `"task":"seed"`) {
		t.Errorf("Expected error to be logged with task name, got %q", got)
	}
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	out := &syncBuffer{}
	logger := observability.NewLogger(observability.InfoLevel, out)

	waitDone(t, SafeGo(context.Background(), logger, time.Second, "panicky", func(ctx context.Context) error {
		panic("boom")
	}))

	if !strings.Contains(out.String(), "PANIC recovered") {
		t.Errorf("Expected panic to be logged, got %q", out.String())
	}
}

func TestSafeGo_Timeout(t *testing.T) {
	logger := observability.NewLogger(observability.InfoLevel, &syncBuffer{})

	var ctxErr error
	waitDone(t, SafeGo(context.Background(), logger, 20*time.Millisecond, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		ctxErr = ctx.Err()
		return ctxErr
	}))

	if !errors.Is(ctxErr, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", ctxErr)
	}
}

func TestSafeGo_NoTimeout(t *testing.T) {
	logger := observability.NewLogger(observability.InfoLevel, &syncBuffer{})

	var hasDeadline bool
	waitDone(t, SafeGo(context.Background(), logger, 0, "watcher", func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return ctx.Err()
	}))

	if hasDeadline {
		t.Error("Expected no deadline when timeout is zero")
	}
}
