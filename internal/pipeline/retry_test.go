package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/russellconstruction9/RRsolutions/internal/generate"
)

func TestBackoff(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second} {
		d := Backoff(attempt)
		if d < base || d > base+base/4 {
			t.Errorf("Backoff(%d): expected [%v, %v], got %v", attempt, base, base+base/4, d)
		}
	}
}

func TestRetry(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	noWait := func(int) time.Duration { return 0 }

	calls := 0
	v, made, err := Retry(context.Background(), 3, noWait, log, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, &generate.RetryableError{StatusCode: 429}
		}
		return 42, nil
	})
	if err != nil || v != 42 || made != 3 {
		t.Errorf("expected 42 after 3 calls, got %d after %d (%v)", v, made, err)
	}

	permanent := errors.New("bad request")
	_, made, err = Retry(context.Background(), 3, noWait, log, func() (int, error) {
		return 0, permanent
	})
	if !errors.Is(err, permanent) || made != 1 {
		t.Errorf("expected one call for a permanent error, got %d (%v)", made, err)
	}

	_, made, err = Retry(context.Background(), 2, noWait, log, func() (int, error) {
		return 0, &generate.RetryableError{StatusCode: 503}
	})
	if !IsRetryable(err) || made != 2 {
		t.Errorf("expected retryable error after 2 calls, got %d (%v)", made, err)
	}
}

type flakyRenderer struct {
	fails int
	calls int
}

func (f *flakyRenderer) GeneratePDF(context.Context, generate.PDFRequest) (string, error) {
	f.calls++
	if f.calls <= f.fails {
		return "", &generate.RetryableError{StatusCode: 500}
	}
	return "JVBERi0=", nil
}

func TestRetryingRenderer(t *testing.T) {
	inner := &flakyRenderer{fails: 2}
	r := &RetryingRenderer{Renderer: inner, backoff: func(int) time.Duration { return 0 }}

	out, err := r.GeneratePDF(context.Background(), generate.PDFRequest{Title: "t"})
	if err != nil {
		t.Fatalf("GeneratePDF: %v", err)
	}
	if out != "JVBERi0=" || inner.calls != 3 {
		t.Errorf("expected success on third call, got %q after %d", out, inner.calls)
	}
}
