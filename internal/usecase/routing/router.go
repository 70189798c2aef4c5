// Package routing classifies free-text requests into routing decisions via
// deterministic pattern matching with an LLM classifier fallback.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dispatch-ai/internal/domain"
	"dispatch-ai/internal/infra/tracer"
	"dispatch-ai/internal/usecase/tokencount"
)

// fastPathThreshold is the confidence above which the pattern-based
// decision is returned without consulting the LLM classifier.
const fastPathThreshold = 0.8

// Config holds the classifier call parameters.
type Config struct {
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	TopP         float64 `yaml:"top_p"`
	PromptBudget int     `yaml:"prompt_budget"` // max prompt tokens
}

// Router turns a request into a RoutingDecision. It holds no mutable state
// and is safe for concurrent use.
type Router struct {
	classifier domain.Classifier
	caps       []domain.AgentCapability
	counter    *tokencount.Counter
	config     Config
	bus        domain.EventBus
	logger     *slog.Logger
}

// New creates a Router. classifier may be nil, in which case every request
// resolves on the pattern fast path. bus may be nil.
func New(classifier domain.Classifier, caps []domain.AgentCapability, cfg Config, bus domain.EventBus, logger *slog.Logger) *Router {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 300
	}
	if cfg.TopP == 0 {
		cfg.TopP = 0.9
	}
	if cfg.PromptBudget == 0 {
		cfg.PromptBudget = 2000
	}
	return &Router{
		classifier: classifier,
		caps:       caps,
		counter:    tokencount.New(cfg.Model),
		config:     cfg,
		bus:        bus,
		logger:     logger,
	}
}

// Classify produces the routing decision for one request. It never returns
// an error: any classifier or parse failure falls back to the pattern-based
// decision.
func (r *Router) Classify(ctx context.Context, request string, reqCtx map[string]any) domain.RoutingDecision {
	ctx, span := tracer.StartSpan(ctx, "routing.classify")
	defer span.End()

	quick := QuickRouteAnalysis(request)
	if quick.Confidence > fastPathThreshold || r.classifier == nil {
		span.SetAttributes(
			tracer.StringAttr("routing.source", string(quick.Source)),
			tracer.StringAttr("routing.primary", string(quick.Primary)),
		)
		tracer.SetOK(span)
		return quick
	}

	decision, err := r.classifyLLM(ctx, request, reqCtx)
	if err != nil {
		r.logger.Warn("llm classification failed, using pattern decision",
			"error", err, "primary", quick.Primary)
		r.publishFallback(ctx, err)
		tracer.RecordError(span, err)
		quick.Source = domain.SourceFallback
		return quick
	}

	span.SetAttributes(
		tracer.StringAttr("routing.source", string(decision.Source)),
		tracer.StringAttr("routing.primary", string(decision.Primary)),
	)
	tracer.SetOK(span)
	return decision
}

// classifyLLM asks the classification provider for a structured decision.
func (r *Router) classifyLLM(ctx context.Context, request string, reqCtx map[string]any) (domain.RoutingDecision, error) {
	messages := r.buildPrompt(request, reqCtx)

	completion, err := r.classifier.Complete(ctx, domain.CompletionRequest{
		Model:       r.config.Model,
		Messages:    messages,
		Temperature: r.config.Temperature,
		MaxTokens:   r.config.MaxTokens,
		TopP:        r.config.TopP,
	})
	if err != nil {
		return domain.RoutingDecision{}, domain.WrapOp("classify", err)
	}

	decision, err := parseDecision(completion.Content)
	if err != nil {
		return domain.RoutingDecision{}, err
	}
	decision.Source = domain.SourceLLM
	return decision, nil
}

// buildPrompt assembles the classification prompt from live capability
// descriptors, trimming detail lines when the prompt exceeds the token
// budget.
func (r *Router) buildPrompt(request string, reqCtx map[string]any) []domain.ChatMessage {
	var b strings.Builder
	b.WriteString("You are a routing classifier for a multi-agent system.\n")
	b.WriteString("Pick the best strategy and agents for the user request.\n\n")
	b.WriteString("Available agents:\n")
	for _, c := range r.caps {
		fmt.Fprintf(&b, "- %s: %s (cost: %s)\n", c.AgentType, c.Specialization, c.ResourceUsage)
		fmt.Fprintf(&b, "  strengths: %s; limitations: %s\n",
			strings.Join(c.Strengths, ", "), strings.Join(c.Limitations, ", "))
	}
	b.WriteString("\nRespond with JSON only:\n")
	b.WriteString(`{"strategy":"single_agent|multi_agent|orchestrator_analysis",` +
		`"primary_agent":"<agent type>","secondary_agents":[],` +
		`"confidence":0.0,"reasoning":"<short>"}` + "\n")

	system := b.String()
	if r.counter.Count(system) > r.config.PromptBudget {
		// Over budget: drop the strengths/limitations detail lines.
		var compact strings.Builder
		compact.WriteString("You are a routing classifier for a multi-agent system.\n")
		compact.WriteString("Available agents:\n")
		for _, c := range r.caps {
			fmt.Fprintf(&compact, "- %s: %s\n", c.AgentType, c.Specialization)
		}
		compact.WriteString("\nRespond with JSON only:\n")
		compact.WriteString(`{"strategy":"single_agent|multi_agent|orchestrator_analysis",` +
			`"primary_agent":"<agent type>","secondary_agents":[],` +
			`"confidence":0.0,"reasoning":"<short>"}` + "\n")
		system = compact.String()
	}

	user := request
	if len(reqCtx) > 0 {
		if ctxJSON, err := json.Marshal(reqCtx); err == nil {
			user = fmt.Sprintf("%s\n\nContext: %s", request, ctxJSON)
		}
	}

	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: user},
	}
}

// wireDecision mirrors the JSON shape the classifier is instructed to emit.
type wireDecision struct {
	Strategy        string   `json:"strategy"`
	PrimaryAgent    string   `json:"primary_agent"`
	SecondaryAgents []string `json:"secondary_agents"`
	Confidence      float64  `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
}

// parseDecision validates the classifier's structured response. Unknown
// agent names or strategies are validation failures, not best-effort
// guesses.
func parseDecision(content string) (domain.RoutingDecision, error) {
	raw := stripCodeFence(content)

	var wire wireDecision
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return domain.RoutingDecision{}, domain.NewDomainError("parseDecision", domain.ErrInvalidDecision, err.Error())
	}

	var strategy domain.RoutingStrategy
	switch wire.Strategy {
	case string(domain.StrategySingleAgent):
		strategy = domain.StrategySingleAgent
	case string(domain.StrategyMultiAgent):
		strategy = domain.StrategyMultiAgent
	case string(domain.StrategyOrchestrator):
		strategy = domain.StrategyOrchestrator
	default:
		return domain.RoutingDecision{}, domain.NewDomainError("parseDecision", domain.ErrInvalidDecision,
			fmt.Sprintf("unknown strategy %q", wire.Strategy))
	}

	primary, err := domain.ParseAgentType(wire.PrimaryAgent)
	if err != nil {
		return domain.RoutingDecision{}, err
	}

	secondary := make([]domain.AgentType, 0, len(wire.SecondaryAgents))
	for _, name := range wire.SecondaryAgents {
		t, err := domain.ParseAgentType(name)
		if err != nil {
			return domain.RoutingDecision{}, err
		}
		secondary = append(secondary, t)
	}

	confidence := wire.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return domain.RoutingDecision{
		Strategy:   strategy,
		Primary:    primary,
		Secondary:  secondary,
		Confidence: confidence,
		Reasoning:  wire.Reasoning,
	}, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// providers wrap around JSON despite instructions.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// AdaptForSecondary reframes the original request for a secondary agent
// using the primary agent's output. Pure string transform.
func AdaptForSecondary(original, primaryResult string, secondary domain.AgentType) string {
	switch secondary {
	case domain.AgentRAG:
		return fmt.Sprintf(
			"Synthesize a final answer for the request %q using this initial result:\n\n%s",
			original, primaryResult)
	case domain.AgentResearch:
		return fmt.Sprintf(
			"Find additional information relevant to %q beyond what is covered here:\n\n%s",
			original, primaryResult)
	case domain.AgentKnowledgeRetrieval:
		return fmt.Sprintf(
			"Retrieve knowledge-base entries related to %q to supplement:\n\n%s",
			original, primaryResult)
	default:
		return original
	}
}

func (r *Router) publishFallback(ctx context.Context, cause error) {
	if r.bus == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"error": cause.Error()})
	r.bus.Publish(ctx, domain.Event{
		Type:      domain.EventClassifierFallback,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
