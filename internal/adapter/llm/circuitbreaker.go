package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"dispatch-ai/internal/domain"
	"dispatch-ai/internal/infra/config"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// CircuitBreakerClassifier wraps a domain.Classifier with circuit breaker
// protection. When the provider fails repeatedly, the circuit opens and
// subsequent calls fail fast; the router degrades to pattern routing.
type CircuitBreakerClassifier struct {
	inner   domain.Classifier
	breaker *gobreaker.CircuitBreaker[*domain.Completion]
	logger  *slog.Logger
}

// NewCircuitBreakerClassifier wraps inner with a circuit breaker.
// Zero-valued cfg fields use defaults.
func NewCircuitBreakerClassifier(inner domain.Classifier, cfg config.BreakerConfig, logger *slog.Logger) *CircuitBreakerClassifier {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[*domain.Completion](gobreaker.Settings{
		Name:        "classifier:" + inner.Name(),
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &CircuitBreakerClassifier{inner: inner, breaker: cb, logger: logger}
}

// Complete implements domain.Classifier through the circuit breaker.
func (p *CircuitBreakerClassifier) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.Completion, error) {
	resp, err := p.breaker.Execute(func() (*domain.Completion, error) {
		return p.inner.Complete(ctx, req)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("classifier %q circuit open: %w", p.inner.Name(), err)
		}
		return nil, err
	}
	return resp, nil
}

// Name implements domain.Classifier.
func (p *CircuitBreakerClassifier) Name() string { return p.inner.Name() }

// State returns the current circuit breaker state for monitoring.
func (p *CircuitBreakerClassifier) State() gobreaker.State {
	return p.breaker.State()
}

var _ domain.Classifier = (*CircuitBreakerClassifier)(nil)
