package domain

import "context"

// Role constants for classifier chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single message sent to the classification provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is sent to the LLM classification provider.
type CompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
}

// Usage tracks token consumption reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the normalized result of one provider call. Adapters absorb
// provider wire-format variance and always populate Content.
type Completion struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
	Usage   Usage  `json:"usage,omitempty"`
}

// Classifier is the outbound contract to the LLM classification provider.
// Implementations normalize whatever response shape the provider returns
// into a Completion; callers never see raw wire formats.
type Classifier interface {
	// Complete sends one request and returns the normalized completion.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	// Name returns the provider's identifier (e.g., "openai", "ollama").
	Name() string
}
