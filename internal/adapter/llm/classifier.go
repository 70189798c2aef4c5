// Package llm adapts LLM providers to the domain.Classifier contract. All
// provider wire-format variance is absorbed here; callers only ever see a
// normalized Completion.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"dispatch-ai/internal/domain"
	"dispatch-ai/internal/infra/config"
	"dispatch-ai/internal/infra/tracer"
)

// Default provider timeouts.
const (
	defaultConnTimeout = 30 * time.Second
	defaultRespTimeout = 120 * time.Second
)

// OpenAIClassifier implements domain.Classifier against any
// OpenAI-compatible chat completion endpoint.
type OpenAIClassifier struct {
	name    string
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewOpenAIClassifier creates a classifier provider with configured timeouts.
func NewOpenAIClassifier(cfg config.ClassifierConfig, logger *slog.Logger) *OpenAIClassifier {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIClassifier{
		name:    cfg.Name,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  newHTTPClient(cfg),
		logger:  logger,
	}
}

// Complete implements domain.Classifier.
func (p *OpenAIClassifier) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.Completion, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.complete",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", p.name),
			tracer.StringAttr("llm.model", req.Model),
		),
	)
	defer span.End()

	if req.Model == "" {
		req.Model = p.model
	}

	body, err := json.Marshal(toWireRequest(req))
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	respBody, err := doJSONRequest(ctx, p.client, p.baseURL+"/chat/completions", body, headers)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	completion := parseCompletion(respBody)
	span.SetAttributes(
		tracer.IntAttr("llm.prompt_tokens", completion.Usage.PromptTokens),
		tracer.IntAttr("llm.completion_tokens", completion.Usage.CompletionTokens),
	)
	tracer.SetOK(span)

	p.logger.Debug("llm completion finished",
		"provider", p.name,
		"model", completion.Model,
		"tokens", completion.Usage.TotalTokens,
	)
	return completion, nil
}

// Name implements domain.Classifier.
func (p *OpenAIClassifier) Name() string { return p.name }

// --- wire types ---

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireResponse struct {
	Model   string `json:"model"`
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func toWireRequest(req domain.CompletionRequest) wireRequest {
	msgs := make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, wireMessage{Role: m.Role, Content: m.Content})
	}
	wire := wireRequest{
		Model:     req.Model,
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature > 0 {
		t := req.Temperature
		wire.Temperature = &t
	}
	if req.TopP > 0 {
		tp := req.TopP
		wire.TopP = &tp
	}
	return wire
}

// parseCompletion normalizes the three known provider response shapes into
// one Completion: a bare JSON string, {message:{content}}, and
// {choices:[{message:{content}}]}. Anything else is treated as opaque text.
func parseCompletion(body []byte) *domain.Completion {
	// Shape 1: bare JSON string.
	var direct string
	if err := json.Unmarshal(body, &direct); err == nil {
		return &domain.Completion{Content: direct}
	}

	var resp wireResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		// Shape 2: top-level message object.
		if resp.Message != nil && resp.Message.Content != "" {
			return &domain.Completion{
				Content: resp.Message.Content,
				Model:   resp.Model,
				Usage: domain.Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}
		}
		// Shape 3: choices array.
		if len(resp.Choices) > 0 {
			return &domain.Completion{
				Content: resp.Choices[0].Message.Content,
				Model:   resp.Model,
				Usage: domain.Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}
		}
	}

	// Unknown shape: pass the raw body through as opaque content.
	return &domain.Completion{Content: string(body)}
}

// newHTTPClient builds an *http.Client with pooled transport and timeout
// defaults suitable for LLM APIs: few hosts, long-lived connections.
func newHTTPClient(cfg config.ClassifierConfig) *http.Client {
	connTimeout := cfg.ConnTimeout
	if connTimeout == 0 {
		connTimeout = defaultConnTimeout
	}
	respTimeout := cfg.RespTimeout
	if respTimeout == 0 {
		respTimeout = defaultRespTimeout
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   connTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: respTimeout,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       120 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: connTimeout + respTimeout,
	}
}

var _ domain.Classifier = (*OpenAIClassifier)(nil)
