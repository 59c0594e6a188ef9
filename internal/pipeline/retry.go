package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/russellconstruction9/RRsolutions/internal/export"
	"github.com/russellconstruction9/RRsolutions/internal/generate"
)

// MaxRetries is the number of model attempts per call.
const MaxRetries = 3

// IsRetryable reports whether the model asked us to come back later.
func IsRetryable(err error) bool {
	var retryErr *generate.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff doubles from one second (1s, 2s, 4s, ...) up to 8s, plus up to a
// quarter of that again as jitter.
func Backoff(attempt int) time.Duration {
	base := time.Second << min(attempt, 3)
	return base + time.Duration(rand.Int64N(int64(base)/4+1))
}

// Retry calls fn up to attempts times while it fails with a retryable error.
// It returns the last result, the number of calls made and the last error.
func Retry[T any](ctx context.Context, attempts int, backoff func(int) time.Duration, log *slog.Logger, fn func() (T, error)) (T, int, error) {
	if attempts <= 0 {
		attempts = MaxRetries
	}
	if backoff == nil {
		backoff = Backoff
	}
	var (
		v    T
		err  error
		made int
	)
	for attempt := range attempts {
		made++
		v, err = fn()
		if err == nil || !IsRetryable(err) || attempt == attempts-1 {
			break
		}
		wait := backoff(attempt)
		log.Warn("retryable model error", "attempt", attempt+1, "of", attempts, "wait", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			var zero T
			return zero, made, ctx.Err()
		}
	}
	return v, made, err
}

// RetryingRenderer retries PDF rendering the same way report generation is
// retried.
type RetryingRenderer struct {
	Renderer   export.PDFRenderer
	MaxRetries int
	Log        *slog.Logger

	backoff func(int) time.Duration
}

func (r *RetryingRenderer) GeneratePDF(ctx context.Context, req generate.PDFRequest) (string, error) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	out, _, err := Retry(ctx, r.MaxRetries, r.backoff, log.With("title", req.Title), func() (string, error) {
		return r.Renderer.GeneratePDF(ctx, req)
	})
	return out, err
}
