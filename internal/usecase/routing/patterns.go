package routing

import (
	"strings"

	"dispatch-ai/internal/domain"
)

// Category keyword sets for the deterministic fast path. Matching is
// case-insensitive substring containment.
var (
	chatKeywords = []string{
		"hello", "hi there", "hey", "good morning", "good afternoon",
		"good evening", "how are you", "what's up", "thanks", "thank you",
		"goodbye", "bye",
	}
	systemCommandKeywords = []string{
		"run ", "execute", "command", "ls -", "ls -la", "disk usage",
		"memory usage", "cpu usage", "df -", "ps aux", "systemctl",
		"restart", "shutdown", "install", "uptime", "kill process",
	}
	researchKeywords = []string{
		"research", "latest", "news", "current", "recent", "look up",
		"find out", "search the web", "what's happening", "trending",
	}
	knowledgeKeywords = []string{
		"explain", "what is", "how does", "define", "describe",
		"tell me about", "documentation", "docs", "knowledge base",
		"according to",
	}
)

// shortRequestTokens is the length-heuristic cutoff: requests with this
// many whitespace-separated tokens or fewer default to chat.
const shortRequestTokens = 10

// QuickRouteAnalysis classifies a request with fixed-priority keyword
// matching. Categories are checked in this exact order, first match wins:
// chat, system commands, research, knowledge. The ordering is a deliberate
// tie-break, not a scoring system. It is a pure function of the request
// string.
func QuickRouteAnalysis(request string) domain.RoutingDecision {
	lowered := strings.ToLower(request)

	if containsAny(lowered, chatKeywords) {
		return domain.RoutingDecision{
			Strategy:   domain.StrategySingleAgent,
			Primary:    domain.AgentChat,
			Confidence: 0.9,
			Reasoning:  "matched chat greeting pattern",
			Source:     domain.SourcePattern,
		}
	}
	if containsAny(lowered, systemCommandKeywords) {
		return domain.RoutingDecision{
			Strategy:   domain.StrategySingleAgent,
			Primary:    domain.AgentSystemCommands,
			Confidence: 0.9,
			Reasoning:  "matched system command pattern",
			Source:     domain.SourcePattern,
		}
	}
	if containsAny(lowered, researchKeywords) {
		return domain.RoutingDecision{
			Strategy:   domain.StrategyMultiAgent,
			Primary:    domain.AgentResearch,
			Secondary:  []domain.AgentType{domain.AgentRAG},
			Confidence: 0.85,
			Reasoning:  "matched research pattern",
			Source:     domain.SourcePattern,
		}
	}
	if containsAny(lowered, knowledgeKeywords) {
		return domain.RoutingDecision{
			Strategy:   domain.StrategyMultiAgent,
			Primary:    domain.AgentKnowledgeRetrieval,
			Secondary:  []domain.AgentType{domain.AgentRAG},
			Confidence: 0.85,
			Reasoning:  "matched knowledge pattern",
			Source:     domain.SourcePattern,
		}
	}

	// No category matched: short requests default to chat, longer ones go
	// to orchestrator analysis.
	if len(strings.Fields(request)) <= shortRequestTokens {
		return domain.RoutingDecision{
			Strategy:   domain.StrategySingleAgent,
			Primary:    domain.AgentChat,
			Confidence: 0.6,
			Reasoning:  "short request, defaulting to chat",
			Source:     domain.SourcePattern,
		}
	}
	return domain.RoutingDecision{
		Strategy:   domain.StrategyOrchestrator,
		Primary:    domain.AgentOrchestrator,
		Confidence: 0.5,
		Reasoning:  "long unmatched request, needs orchestrator analysis",
		Source:     domain.SourcePattern,
	}
}

func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
