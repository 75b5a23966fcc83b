package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/observability/metrics"
	"github.com/arbeit/talentportal/internal/reliability/circuitbreaker"
	"github.com/arbeit/talentportal/internal/reliability/retry"
)

// ResilientProvider calls primary with retries behind a circuit breaker and
// answers from fallback when primary fails or the breaker is open.
type ResilientProvider struct {
	primary  Provider
	fallback Provider
	breaker  *circuitbreaker.CircuitBreaker
	retryCfg *retry.Config
	timeout  time.Duration
	logger   *slog.Logger
}

func NewResilientProvider(primary, fallback Provider, breaker *circuitbreaker.CircuitBreaker, retryCfg *retry.Config, timeout time.Duration, logger *slog.Logger) *ResilientProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(5, 1, 30*time.Second)
	}
	breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("ai circuit breaker state changed",
			slog.String("provider", primary.Name()),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return &ResilientProvider{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		retryCfg: retryCfg,
		timeout:  timeout,
		logger:   logger,
	}
}

func (rp *ResilientProvider) Name() string { return rp.primary.Name() }

func (rp *ResilientProvider) ParseCV(ctx context.Context, text string) (*domain.ParsedResume, error) {
	return call(ctx, rp, "parse_cv",
		func(ctx context.Context, p Provider) (*domain.ParsedResume, error) { return p.ParseCV(ctx, text) })
}

func (rp *ResilientProvider) GenerateStory(ctx context.Context, resume *domain.ParsedResume, job *domain.Job) (*domain.CandidateStory, error) {
	return call(ctx, rp, "generate_story",
		func(ctx context.Context, p Provider) (*domain.CandidateStory, error) { return p.GenerateStory(ctx, resume, job) })
}

func call[T any](ctx context.Context, rp *ResilientProvider, op string, fn func(context.Context, Provider) (T, error)) (T, error) {
	start := time.Now()
	var out T
	err := rp.breaker.Execute(func() error {
		callCtx := ctx
		if rp.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, rp.timeout)
			defer cancel()
		}
		var err error
		out, err = retry.Do(callCtx, rp.retryCfg, rp.logger, op, func(ctx context.Context) (T, error) {
			return fn(ctx, rp.primary)
		})
		return err
	})
	switch {
	case err == nil:
		metrics.ObserveStory(rp.primary.Name(), op+"_ok", time.Since(start))
		return out, nil
	case errors.Is(err, circuitbreaker.ErrOpen):
		metrics.ObserveStory(rp.primary.Name(), op+"_circuit_open", time.Since(start))
	default:
		metrics.ObserveStory(rp.primary.Name(), op+"_error", time.Since(start))
		rp.logger.Warn("ai provider failed, using fallback",
			slog.String("provider", rp.primary.Name()),
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
	}

	if ctx.Err() != nil {
		var zero T
		return zero, ctx.Err()
	}
	fallbackStart := time.Now()
	out, err = fn(ctx, rp.fallback)
	result := op + "_ok"
	if err != nil {
		result = op + "_error"
	}
	metrics.ObserveStory(rp.fallback.Name(), result, time.Since(fallbackStart))
	return out, err
}
