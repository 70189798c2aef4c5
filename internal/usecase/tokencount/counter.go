// Package tokencount estimates token usage for prompt budget enforcement.
package tokencount

import (
	"github.com/pkoukk/tiktoken-go"

	"dispatch-ai/internal/domain"
)

// approxCharsPerToken is used when no tiktoken encoding is available
// (unknown model, or encoding files not cached locally).
const approxCharsPerToken = 4

// Counter counts tokens for a specific model, falling back to a
// character-based estimate when the encoding cannot be loaded.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New creates a counter for the given model. Never fails: if the model is
// unknown it tries the cl100k_base encoding, and if that is unavailable
// too the counter degrades to an approximate estimate.
func New(model string) *Counter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return &Counter{}
		}
	}
	return &Counter{enc: enc}
}

// Count returns the token count of s.
func (c *Counter) Count(s string) int {
	if c.enc == nil {
		return (len(s) + approxCharsPerToken - 1) / approxCharsPerToken
	}
	return len(c.enc.Encode(s, nil, nil))
}

// CountMessages returns the total token count across messages, including a
// small per-message overhead for role framing.
func (c *Counter) CountMessages(msgs []domain.ChatMessage) int {
	const perMessageOverhead = 4
	total := 0
	for _, m := range msgs {
		total += c.Count(m.Content) + perMessageOverhead
	}
	return total
}
