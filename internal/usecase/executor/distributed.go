package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dispatch-ai/internal/domain"
	"dispatch-ai/internal/infra/tracer"
)

// Content-affinity keyword sets for distributed selection. A match
// restricts selection to the corresponding pool agent type, overriding
// caller preference and load.
var (
	codeSearchKeywords = []string{
		"search code", "find the function", "find function", "codebase",
		"grep", "symbol", "where is the class", "definition of",
	}
	classificationKeywords = []string{
		"classify", "categorize", "label this", "what intent",
	}
)

// ExecuteDistributed selects an agent from the health-tracked pool and
// dispatches the request to it. Selection priority: content affinity, then
// caller preference, then least-loaded. When no healthy agent is suitable
// it returns ErrNoHealthyAgent; it never reports an empty success.
func (e *Executor) ExecuteDistributed(ctx context.Context, request string, reqCtx map[string]any, preferred []string) (*domain.DispatchResult, error) {
	ctx, span := tracer.StartSpan(ctx, "executor.distributed")
	defer span.End()

	healthy := e.pool.HealthyAgents()
	if len(healthy) == 0 {
		err := domain.NewDomainError("ExecuteDistributed", domain.ErrNoHealthyAgent, "pool is empty or all agents unhealthy")
		tracer.RecordError(span, err)
		return nil, err
	}

	agent := e.selectAgent(healthy, request, preferred)
	if agent == nil {
		err := domain.NewDomainError("ExecuteDistributed", domain.ErrNoHealthyAgent, "no agent matched selection policy")
		tracer.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		tracer.StringAttr("agent.id", agent.ID()),
		tracer.StringAttr("agent.type", string(agent.Type())),
	)

	requestID := newRequestID()
	taskID := newTaskID()

	if err := e.pool.AddActiveTask(agent.ID(), taskID); err != nil {
		// Agent vanished between selection and bookkeeping.
		tracer.RecordError(span, err)
		return nil, domain.NewDomainError("ExecuteDistributed", domain.ErrNoHealthyAgent, err.Error())
	}
	// Release on every exit path: success, agent error, or panic.
	defer e.pool.RemoveActiveTask(agent.ID(), taskID)

	e.publishEvent(ctx, domain.EventDispatchStarted, requestID, map[string]string{
		"agent_id": agent.ID(), "task_id": taskID,
	})

	start := time.Now()
	resp, err := e.invokeAgent(ctx, agent, requestID, request, reqCtx, nil)
	elapsed := time.Since(start)

	result := &domain.DispatchResult{
		RoutingStrategy: domain.TagDistributed,
		AgentID:         agent.ID(),
		TaskID:          taskID,
		ExecutionTime:   elapsed,
	}
	if err != nil {
		e.logger.Warn("distributed dispatch failed",
			"agent_id", agent.ID(), "task_id", taskID, "error", err)
		result.Status = domain.StatusError
		result.Content = fmt.Sprintf("agent %s failed: %v", agent.ID(), err)
		e.publishEvent(ctx, domain.EventDispatchFailed, requestID, map[string]string{
			"agent_id": agent.ID(), "task_id": taskID, "error": err.Error(),
		})
		tracer.RecordError(span, err)
	} else {
		result.Status = domain.StatusSuccess
		result.Content = agentText(resp)
		e.publishEvent(ctx, domain.EventDispatchCompleted, requestID, map[string]string{
			"agent_id": agent.ID(), "task_id": taskID,
		})
		tracer.SetOK(span)
	}

	e.recordAudit(ctx, requestID, domain.RoutingDecision{
		Strategy: domain.StrategySingleAgent,
		Primary:  agent.Type(),
		Source:   domain.SourcePattern,
	}, result)
	return result, nil
}

// selectAgent applies the selection policy in strict priority order over
// the healthy slice, which arrives sorted by agent ID.
func (e *Executor) selectAgent(healthy []domain.Agent, request string, preferred []string) domain.Agent {
	lowered := strings.ToLower(request)

	// 1. Content affinity beats everything, including caller preference.
	if containsAny(lowered, codeSearchKeywords) {
		if a := firstOfType(healthy, domain.AgentCodeSearch); a != nil {
			return a
		}
	} else if containsAny(lowered, classificationKeywords) {
		if a := firstOfType(healthy, domain.AgentClassification); a != nil {
			return a
		}
	}

	// 2. Caller preference: first healthy agent matching any entry by ID
	// or type, in enumeration order.
	if len(preferred) > 0 {
		for _, a := range healthy {
			for _, p := range preferred {
				if a.ID() == p || string(a.Type()) == p {
					return a
				}
			}
		}
	}

	// 3. Least-loaded; ties broken by the sorted enumeration order.
	var best domain.Agent
	bestLoad := -1
	for _, a := range healthy {
		load := e.pool.ActiveTaskCount(a.ID())
		if best == nil || load < bestLoad {
			best = a
			bestLoad = load
		}
	}
	return best
}

func firstOfType(agents []domain.Agent, t domain.AgentType) domain.Agent {
	for _, a := range agents {
		if a.Type() == t {
			return a
		}
	}
	return nil
}

func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// PoolSnapshot reports the active-task state of every healthy agent. Used
// by operators; not part of the dispatch path.
func (e *Executor) PoolSnapshot() (json.RawMessage, error) {
	type agentLoad struct {
		AgentID string           `json:"agent_id"`
		Type    domain.AgentType `json:"agent_type"`
		Active  int              `json:"active_tasks"`
	}
	healthy := e.pool.HealthyAgents()
	loads := make([]agentLoad, 0, len(healthy))
	for _, a := range healthy {
		loads = append(loads, agentLoad{
			AgentID: a.ID(),
			Type:    a.Type(),
			Active:  e.pool.ActiveTaskCount(a.ID()),
		})
	}
	return json.Marshal(loads)
}
