package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ideavault/ideavault-backend/internal/observability"
	"github.com/ideavault/ideavault-backend/internal/pkg/httpx"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

const (
	DefaultAttemptTimeout = 20 * time.Second
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = 1 * time.Second
	DefaultMaxDelay       = 4 * time.Second
)

var tracer = otel.Tracer("ideavault/llm")

// Retrier bounds every attempt with a timeout and retries timeouts and
// transient upstream failures with exponential backoff.
type Retrier struct {
	log            *logger.Logger
	AttemptTimeout time.Duration
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Jitter         bool
	Sleep          func(ctx context.Context, d time.Duration) error
}

func NewRetrier(log *logger.Logger) *Retrier {
	return &Retrier{
		log:            log.With("component", "LLMRetrier"),
		AttemptTimeout: DefaultAttemptTimeout,
		MaxAttempts:    DefaultMaxAttempts,
		BaseDelay:      DefaultBaseDelay,
		MaxDelay:       DefaultMaxDelay,
		Jitter:         true,
		Sleep:          sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempts are used up. The returned error is always an *Error.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var last *Error

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return &Error{Kind: Classify(ctx.Err()), Op: op, Err: ctx.Err()}
		}

		err := r.attempt(ctx, op, attempt, fn)
		if err == nil {
			return nil
		}
		kind := Classify(err)
		last = &Error{Kind: kind, Op: op, Err: err}

		if !kind.Retryable() || attempt == r.MaxAttempts {
			return last
		}

		sleepFor := httpx.Backoff(attempt, r.BaseDelay, r.MaxDelay)
		if r.Jitter {
			sleepFor = httpx.JitterSleep(sleepFor)
		}
		if r.log != nil {
			r.log.Warn("LLM request retrying",
				"op", op,
				"attempt", attempt,
				"max_attempts", r.MaxAttempts,
				"sleep", sleepFor.String(),
				"kind", string(kind),
				"error", err.Error(),
			)
		}
		if err := r.Sleep(ctx, sleepFor); err != nil {
			return &Error{Kind: Classify(err), Op: op, Err: err}
		}
	}
	return last
}

func (r *Retrier) attempt(ctx context.Context, op string, n int, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "llm."+op)
	defer span.End()
	span.SetAttributes(attribute.Int("llm.attempt", n))

	if r.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.AttemptTimeout)
		defer cancel()
	}
	start := time.Now()
	err := fn(ctx)
	outcome := "ok"
	if err != nil {
		outcome = string(Classify(err))
		span.SetAttributes(attribute.String("llm.error_kind", outcome))
		span.SetStatus(codes.Error, err.Error())
	}
	observability.Current().ObserveLLMAttempt(op, outcome, time.Since(start))
	return err
}
