// Package executor carries out routing decisions: single-agent dispatch,
// multi-agent execution with synthesis, orchestrator fallback, and
// load-aware distributed dispatch against the agent pool.
package executor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"dispatch-ai/internal/domain"
	"dispatch-ai/internal/infra/tracer"
	"dispatch-ai/internal/usecase/routing"
)

// fallbackApology is the fixed user-facing message when even the terminal
// fallback handler fails.
const fallbackApology = "I'm sorry, I wasn't able to process your request right now. Please try again."

// Executor drives request execution. It holds no mutable state of its own
// and is safe for concurrent use; all shared mutation lives in the pool.
type Executor struct {
	router *routing.Router
	agents map[domain.AgentType]domain.Agent // closed handler map for legacy mode
	pool   domain.AgentPool
	synth  Synthesizer
	audit  domain.AuditStore // nil = auditing disabled
	bus    domain.EventBus
	logger *slog.Logger
}

// New creates an Executor. agents is the closed AgentType → handler map for
// legacy mode; pool backs distributed mode and may be nil when distributed
// dispatch is unused. bus may be nil.
func New(router *routing.Router, agents map[domain.AgentType]domain.Agent, pool domain.AgentPool, bus domain.EventBus, logger *slog.Logger) *Executor {
	return &Executor{
		router: router,
		agents: agents,
		pool:   pool,
		synth:  sectionSynthesizer{},
		bus:    bus,
		logger: logger,
	}
}

// SetAudit enables best-effort routing-decision auditing.
func (e *Executor) SetAudit(store domain.AuditStore) { e.audit = store }

// SetSynthesizer replaces the default concatenating synthesizer.
func (e *Executor) SetSynthesizer(s Synthesizer) { e.synth = s }

// ExecuteLegacy classifies the request and executes it against the fixed
// handler map. It never returns an error: every failure path terminates in
// an error-status result with a routing_strategy tag identifying the path.
func (e *Executor) ExecuteLegacy(ctx context.Context, request string, reqCtx map[string]any, history []domain.ChatMessage) *domain.DispatchResult {
	ctx, span := tracer.StartSpan(ctx, "executor.legacy")
	defer span.End()

	requestID := newRequestID()
	start := time.Now()

	decision := e.router.Classify(ctx, request, reqCtx)
	e.publishEvent(ctx, domain.EventRequestRouted, requestID, map[string]string{
		"strategy": string(decision.Strategy),
		"primary":  string(decision.Primary),
	})

	var result *domain.DispatchResult
	switch decision.Strategy {
	case domain.StrategySingleAgent:
		result = e.executeSingle(ctx, requestID, request, reqCtx, history, decision)
	case domain.StrategyMultiAgent:
		result = e.executeMulti(ctx, requestID, request, reqCtx, history, decision)
	default:
		result = e.executeFallback(ctx, requestID, request, reqCtx, history)
	}

	result.ExecutionTime = time.Since(start)
	span.SetAttributes(
		tracer.StringAttr("dispatch.strategy", result.RoutingStrategy),
		tracer.StringAttr("dispatch.status", string(result.Status)),
	)
	tracer.SetOK(span)

	e.recordAudit(ctx, requestID, decision, result)
	return result
}

// executeSingle invokes exactly one handler from the closed map. An
// unmapped type is a programming error, converted here rather than
// propagated.
func (e *Executor) executeSingle(ctx context.Context, requestID, request string, reqCtx map[string]any, history []domain.ChatMessage, decision domain.RoutingDecision) *domain.DispatchResult {
	agent, ok := e.agents[decision.Primary]
	if !ok {
		e.logger.Error("no handler for agent type", "agent_type", decision.Primary)
		return &domain.DispatchResult{
			Status:          domain.StatusError,
			Content:         fmt.Sprintf("no handler registered for agent type %q", decision.Primary),
			RoutingStrategy: domain.TagSingleAgentError,
		}
	}

	resp, err := e.invokeAgent(ctx, agent, requestID, request, reqCtx, history)
	if err != nil {
		e.logger.Warn("single agent execution failed", "agent_type", decision.Primary, "error", err)
		return &domain.DispatchResult{
			Status:          domain.StatusError,
			Content:         fmt.Sprintf("agent %s failed: %v", decision.Primary, err),
			RoutingStrategy: domain.TagSingleAgentError,
			AgentID:         agent.ID(),
		}
	}

	return &domain.DispatchResult{
		Status:          domain.StatusSuccess,
		Content:         agentText(resp),
		RoutingStrategy: domain.TagSingleAgent,
		AgentID:         agent.ID(),
	}
}

// executeMulti runs the primary to completion, then each secondary strictly
// sequentially: secondary requests are seeded by the primary's output. A
// failed secondary is logged and dropped; a failed primary aborts the whole
// attempt.
func (e *Executor) executeMulti(ctx context.Context, requestID, request string, reqCtx map[string]any, history []domain.ChatMessage, decision domain.RoutingDecision) *domain.DispatchResult {
	primary, ok := e.agents[decision.Primary]
	if !ok {
		return &domain.DispatchResult{
			Status:          domain.StatusError,
			Content:         fmt.Sprintf("no handler registered for primary agent %q", decision.Primary),
			RoutingStrategy: domain.TagMultiAgent,
		}
	}

	primaryResp, err := e.invokeAgent(ctx, primary, requestID, request, reqCtx, history)
	if err != nil {
		e.logger.Warn("primary agent failed, aborting multi-agent execution",
			"agent_type", decision.Primary, "error", err)
		return &domain.DispatchResult{
			Status:          domain.StatusError,
			Content:         fmt.Sprintf("primary agent %s failed: %v", decision.Primary, err),
			RoutingStrategy: domain.TagMultiAgent,
			AgentID:         primary.ID(),
		}
	}
	primaryText := agentText(primaryResp)

	var secondaryTexts []string
	for _, secType := range decision.Secondary {
		secondary, ok := e.agents[secType]
		if !ok {
			e.logger.Warn("no handler for secondary agent, skipping", "agent_type", secType)
			continue
		}

		adapted := routing.AdaptForSecondary(request, primaryText, secType)
		resp, err := e.invokeAgent(ctx, secondary, requestID, adapted, reqCtx, nil)
		if err != nil {
			e.logger.Warn("secondary agent failed, dropping its contribution",
				"agent_type", secType, "error", err)
			continue
		}
		secondaryTexts = append(secondaryTexts, agentText(resp))
	}

	content := e.synthesize(ctx, request, primaryText, secondaryTexts)
	return &domain.DispatchResult{
		Status:          domain.StatusSuccess,
		Content:         content,
		RoutingStrategy: domain.TagMultiAgent,
		AgentID:         primary.ID(),
	}
}

// synthesize combines results, degrading to the primary text when the
// synthesizer fails or panics.
func (e *Executor) synthesize(ctx context.Context, original, primaryText string, secondaryTexts []string) (content string) {
	content = primaryText
	if len(secondaryTexts) == 0 {
		return content
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("synthesizer panicked, returning primary result", "panic", r)
			content = primaryText
		}
	}()

	synthesized, err := e.synth.Synthesize(ctx, original, primaryText, secondaryTexts)
	if err != nil {
		e.logger.Warn("synthesis failed, returning primary result", "error", err)
		return primaryText
	}
	return synthesized
}

// executeFallback delegates to the orchestrator handler, the last line of
// defense. If it fails anyway, the caller gets a fixed apology.
func (e *Executor) executeFallback(ctx context.Context, requestID, request string, reqCtx map[string]any, history []domain.ChatMessage) *domain.DispatchResult {
	orchestrator, ok := e.agents[domain.AgentOrchestrator]
	if !ok {
		e.logger.Error("orchestrator handler missing")
		return &domain.DispatchResult{
			Status:          domain.StatusError,
			Content:         fallbackApology,
			RoutingStrategy: domain.TagFinalFallback,
		}
	}

	resp, err := e.invokeAgent(ctx, orchestrator, requestID, request, reqCtx, history)
	if err != nil {
		e.logger.Error("terminal fallback handler failed", "error", err)
		return &domain.DispatchResult{
			Status:          domain.StatusError,
			Content:         fallbackApology,
			RoutingStrategy: domain.TagFinalFallback,
			AgentID:         orchestrator.ID(),
		}
	}

	return &domain.DispatchResult{
		Status:          domain.StatusSuccess,
		Content:         agentText(resp),
		RoutingStrategy: domain.TagOrchestrator,
		AgentID:         orchestrator.ID(),
	}
}

// invokeAgent builds the request envelope and calls the agent, converting
// panics and malformed envelopes into errors. The span covers the full
// agent call.
func (e *Executor) invokeAgent(ctx context.Context, agent domain.Agent, requestID, request string, reqCtx map[string]any, history []domain.ChatMessage) (resp *domain.AgentResponse, err error) {
	ctx, span := tracer.StartSpan(ctx, "executor.invoke",
		trace.WithAttributes(
			tracer.StringAttr("agent.id", agent.ID()),
			tracer.StringAttr("agent.type", string(agent.Type())),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = domain.NewDomainError("invokeAgent", domain.ErrAgentInvoke,
				fmt.Sprintf("agent %s panicked: %v", agent.ID(), r))
			tracer.RecordError(span, err)
		}
	}()

	payload := map[string]any{"request": request}
	if len(reqCtx) > 0 {
		payload["context"] = reqCtx
	}
	if len(history) > 0 {
		payload["history"] = history
	}

	resp, err = agent.ProcessRequest(ctx, domain.AgentRequest{
		RequestID: requestID,
		AgentType: agent.Type(),
		Action:    "process",
		Payload:   payload,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, domain.WrapOp("invokeAgent", err)
	}
	if resp == nil {
		err = domain.NewDomainError("invokeAgent", domain.ErrAgentInvoke, "agent returned nil response")
		tracer.RecordError(span, err)
		return nil, err
	}
	if resp.Status == domain.StatusError {
		err = domain.NewDomainError("invokeAgent", domain.ErrAgentInvoke, resp.Error)
		tracer.RecordError(span, err)
		return nil, err
	}

	tracer.SetOK(span)
	return resp, nil
}

// agentText extracts the response text from an agent envelope, tolerating
// the known provider result shapes.
func agentText(resp *domain.AgentResponse) string {
	if resp == nil || resp.Result == nil {
		return ""
	}
	if v, ok := resp.Result["response"]; ok {
		return routing.ExtractContent(v)
	}
	return routing.ExtractContent(resp.Result)
}

func (e *Executor) recordAudit(ctx context.Context, requestID string, decision domain.RoutingDecision, result *domain.DispatchResult) {
	if e.audit == nil {
		return
	}
	rec := domain.DecisionRecord{
		RequestID:       requestID,
		Strategy:        decision.Strategy,
		Primary:         decision.Primary,
		Secondary:       decision.Secondary,
		Confidence:      decision.Confidence,
		Source:          decision.Source,
		RoutingStrategy: result.RoutingStrategy,
		Status:          result.Status,
		Duration:        result.ExecutionTime,
		CreatedAt:       time.Now(),
	}
	if err := e.audit.Append(ctx, rec); err != nil {
		e.logger.Warn("audit append failed", "request_id", requestID, "error", err)
	}
}

func (e *Executor) publishEvent(ctx context.Context, eventType domain.EventType, requestID string, detail map[string]string) {
	if e.bus == nil {
		return
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return
	}
	e.bus.Publish(ctx, domain.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		RequestID: requestID,
		Payload:   payload,
	})
}

// newRequestID generates a ULID request identifier.
func newRequestID() string {
	t := time.Now()
	entropy := ulid.Monotonic(mathrand.New(mathrand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// newTaskID generates a dispatch task ID with a random 8-hex-char suffix.
func newTaskID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand is effectively infallible; fall back to time bits.
		return fmt.Sprintf("task-%08x", time.Now().UnixNano()&0xffffffff)
	}
	return "task-" + hex.EncodeToString(buf)
}
