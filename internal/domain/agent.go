package domain

import "context"

// AgentType identifies a category of specialized worker agent.
// The set is closed and known at compile time.
type AgentType string

const (
	AgentChat               AgentType = "chat"
	AgentSystemCommands     AgentType = "system_commands"
	AgentRAG                AgentType = "rag"
	AgentKnowledgeRetrieval AgentType = "knowledge_retrieval"
	AgentResearch           AgentType = "research"
	AgentOrchestrator       AgentType = "orchestrator"

	// Pool-only types available in distributed mode.
	AgentCodeSearch     AgentType = "code_search"
	AgentClassification AgentType = "classification"
)

// KnownAgentTypes lists every valid AgentType.
var KnownAgentTypes = []AgentType{
	AgentChat,
	AgentSystemCommands,
	AgentRAG,
	AgentKnowledgeRetrieval,
	AgentResearch,
	AgentOrchestrator,
	AgentCodeSearch,
	AgentClassification,
}

// ParseAgentType converts a string to an AgentType.
// Returns ErrUnknownAgentType for anything outside the closed set.
func ParseAgentType(s string) (AgentType, error) {
	for _, t := range KnownAgentTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", NewDomainError("ParseAgentType", ErrUnknownAgentType, s)
}

// AgentRequest is the envelope sent to an agent. The core validates only
// envelope shape; payload semantics belong to the agent.
type AgentRequest struct {
	RequestID string         `json:"request_id"`
	AgentType AgentType      `json:"agent_type"`
	Action    string         `json:"action"`
	Payload   map[string]any `json:"payload,omitempty"`
	Priority  int            `json:"priority,omitempty"`
}

// ResponseStatus is the outcome tag on an AgentResponse.
type ResponseStatus string

const (
	StatusSuccess ResponseStatus = "success"
	StatusError   ResponseStatus = "error"
)

// AgentResponse is the envelope returned by an agent.
type AgentResponse struct {
	Status    ResponseStatus `json:"status"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	AgentID   string         `json:"agent_id"`
	AgentType AgentType      `json:"agent_type"`
}

// Agent is the contract every concrete agent implements. Concrete
// implementations (prompting, command validation, vector search) live
// outside this core.
type Agent interface {
	// ID returns the unique identifier of this agent instance.
	ID() string
	// Type returns the agent's category.
	Type() AgentType
	// ProcessRequest handles one request envelope. A non-nil error means
	// the agent failed; callers decide whether that aborts or degrades.
	ProcessRequest(ctx context.Context, req AgentRequest) (*AgentResponse, error)
}
