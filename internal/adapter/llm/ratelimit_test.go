package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch-ai/internal/domain"
)

func TestRateLimitDisabled(t *testing.T) {
	inner := &mockClassifier{name: "test"}
	rl := NewRateLimitedClassifier(inner, 0)

	for i := 0; i < 5; i++ {
		resp, err := rl.Complete(context.Background(), domain.CompletionRequest{})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Content)
	}
}

func TestRateLimitName(t *testing.T) {
	rl := NewRateLimitedClassifier(&mockClassifier{name: "openai"}, 10)
	assert.Equal(t, "openai", rl.Name())
}

func TestRateLimitAllowsBurst(t *testing.T) {
	inner := &mockClassifier{name: "test"}
	rl := NewRateLimitedClassifier(inner, 60)

	// The burst size equals the per-minute rate, so these pass immediately.
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := rl.Complete(context.Background(), domain.CompletionRequest{})
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimitHonorsContextCancel(t *testing.T) {
	inner := &mockClassifier{name: "test"}
	rl := NewRateLimitedClassifier(inner, 1) // 1/min, burst 1

	// Drain the single burst token.
	_, err := rl.Complete(context.Background(), domain.CompletionRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = rl.Complete(ctx, domain.CompletionRequest{})
	require.Error(t, err)
}
