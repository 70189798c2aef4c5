package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"dispatch-ai/internal/domain"
)

// RateLimitedClassifier caps the call rate to the classification provider.
// Waiting respects the caller's context; the core adds no timeout of its own.
type RateLimitedClassifier struct {
	inner   domain.Classifier
	limiter *rate.Limiter
}

// NewRateLimitedClassifier wraps inner with a per-minute rate cap.
// perMinute <= 0 disables limiting.
func NewRateLimitedClassifier(inner domain.Classifier, perMinute int) *RateLimitedClassifier {
	var limiter *rate.Limiter
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return &RateLimitedClassifier{inner: inner, limiter: limiter}
}

// Complete implements domain.Classifier, waiting for a rate token first.
func (p *RateLimitedClassifier) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.Completion, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, domain.WrapOp("classifier rate limit", err)
		}
	}
	return p.inner.Complete(ctx, req)
}

// Name implements domain.Classifier.
func (p *RateLimitedClassifier) Name() string { return p.inner.Name() }

var _ domain.Classifier = (*RateLimitedClassifier)(nil)
