package routing

import "dispatch-ai/internal/domain"

// DefaultCapabilities returns the static per-agent-type descriptors used to
// build the classifier prompt. Loaded once at startup and never mutated.
func DefaultCapabilities() []domain.AgentCapability {
	return []domain.AgentCapability{
		{
			AgentType:      domain.AgentChat,
			ModelSize:      domain.ModelSmall,
			Specialization: "conversational responses and casual dialogue",
			Strengths:      []string{"greetings", "small talk", "short factual answers"},
			Limitations:    []string{"no tool access", "no long-document reasoning"},
			ResourceUsage:  domain.ResourceLow,
		},
		{
			AgentType:      domain.AgentSystemCommands,
			ModelSize:      domain.ModelSmall,
			Specialization: "generating safe shell commands from natural language",
			Strengths:      []string{"command generation", "system status queries"},
			Limitations:    []string{"no command execution", "no interactive sessions"},
			ResourceUsage:  domain.ResourceLow,
		},
		{
			AgentType:      domain.AgentRAG,
			ModelSize:      domain.ModelMedium,
			Specialization: "synthesizing answers from retrieved context",
			Strengths:      []string{"grounded synthesis", "multi-source summarization"},
			Limitations:    []string{"depends on retrieval quality"},
			ResourceUsage:  domain.ResourceMedium,
		},
		{
			AgentType:      domain.AgentKnowledgeRetrieval,
			ModelSize:      domain.ModelMedium,
			Specialization: "looking up facts in the local knowledge base",
			Strengths:      []string{"definitions", "documentation lookup"},
			Limitations:    []string{"no live web access"},
			ResourceUsage:  domain.ResourceMedium,
		},
		{
			AgentType:      domain.AgentResearch,
			ModelSize:      domain.ModelLarge,
			Specialization: "web research and current-events queries",
			Strengths:      []string{"recent information", "multi-step research"},
			Limitations:    []string{"slow", "high cost"},
			ResourceUsage:  domain.ResourceHigh,
		},
		{
			AgentType:      domain.AgentOrchestrator,
			ModelSize:      domain.ModelLarge,
			Specialization: "decomposing complex requests and coordinating agents",
			Strengths:      []string{"ambiguous requests", "multi-part tasks"},
			Limitations:    []string{"highest latency"},
			ResourceUsage:  domain.ResourceHigh,
		},
		{
			AgentType:      domain.AgentCodeSearch,
			ModelSize:      domain.ModelMedium,
			Specialization: "searching code repositories for symbols and definitions",
			Strengths:      []string{"function lookup", "cross-reference search"},
			Limitations:    []string{"code corpora only"},
			ResourceUsage:  domain.ResourceMedium,
		},
		{
			AgentType:      domain.AgentClassification,
			ModelSize:      domain.ModelSmall,
			Specialization: "labeling and categorizing short texts",
			Strengths:      []string{"intent classification", "tagging"},
			Limitations:    []string{"no generation beyond labels"},
			ResourceUsage:  domain.ResourceLow,
		},
	}
}
