package domain

import "time"

// RoutingStrategy selects how a request is executed.
type RoutingStrategy string

const (
	StrategySingleAgent  RoutingStrategy = "single_agent"
	StrategyMultiAgent   RoutingStrategy = "multi_agent"
	StrategyOrchestrator RoutingStrategy = "orchestrator_analysis"
)

// DecisionSource records which path produced a routing decision.
type DecisionSource string

const (
	SourcePattern  DecisionSource = "pattern"
	SourceLLM      DecisionSource = "llm"
	SourceFallback DecisionSource = "fallback"
)

// RoutingDecision is the classification output for one request. It is
// produced once, immutable, and consumed exactly once by the executor.
type RoutingDecision struct {
	Strategy   RoutingStrategy `json:"strategy"`
	Primary    AgentType       `json:"primary_agent"`
	Secondary  []AgentType     `json:"secondary_agents,omitempty"`
	Confidence float64         `json:"confidence"`
	Reasoning  string          `json:"reasoning,omitempty"`
	Source     DecisionSource  `json:"source,omitempty"`
}

// Routing-strategy tags carried on DispatchResult. These identify the path
// taken, for observability; callers should not branch on them.
const (
	TagSingleAgent      = "single_agent"
	TagMultiAgent       = "multi_agent"
	TagOrchestrator     = "orchestrator_analysis"
	TagSingleAgentError = "single_agent_error"
	TagFinalFallback    = "final_fallback"
	TagDistributed      = "distributed"
)

// DispatchResult is the terminal response of any execution path. Every
// path produces one; no path leaks a panic or raw internal error.
type DispatchResult struct {
	Status          ResponseStatus `json:"status"`
	Content         string         `json:"content"`
	RoutingStrategy string         `json:"routing_strategy"`
	AgentID         string         `json:"agent_id,omitempty"`
	TaskID          string         `json:"task_id,omitempty"`
	ExecutionTime   time.Duration  `json:"execution_time,omitempty"`
}
