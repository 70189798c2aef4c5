package domain

// ModelSize is a coarse bucket for the model backing an agent.
type ModelSize string

const (
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

// ResourceUsage is a coarse bucket for an agent's runtime cost.
type ResourceUsage string

const (
	ResourceLow    ResourceUsage = "low"
	ResourceMedium ResourceUsage = "medium"
	ResourceHigh   ResourceUsage = "high"
)

// AgentCapability is a static descriptor of what one agent type is good at.
// Capabilities are loaded once at startup and never mutated; they feed the
// classifier prompt and informational filtering only.
type AgentCapability struct {
	AgentType      AgentType     `json:"agent_type"      yaml:"agent_type"`
	ModelSize      ModelSize     `json:"model_size"      yaml:"model_size"`
	Specialization string        `json:"specialization"  yaml:"specialization"`
	Strengths      []string      `json:"strengths"       yaml:"strengths"`
	Limitations    []string      `json:"limitations"     yaml:"limitations"`
	ResourceUsage  ResourceUsage `json:"resource_usage"  yaml:"resource_usage"`
}
