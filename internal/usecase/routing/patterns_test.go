package routing

import (
	"testing"

	"dispatch-ai/internal/domain"
)

func TestQuickRouteGreeting(t *testing.T) {
	d := QuickRouteAnalysis("Hello there, how's it going?")
	if d.Primary != domain.AgentChat {
		t.Errorf("got %q, want %q", d.Primary, domain.AgentChat)
	}
	if d.Strategy != domain.StrategySingleAgent {
		t.Errorf("got strategy %q, want %q", d.Strategy, domain.StrategySingleAgent)
	}
	if d.Confidence != 0.9 {
		t.Errorf("got confidence %v, want 0.9", d.Confidence)
	}
	if d.Source != domain.SourcePattern {
		t.Errorf("got source %q, want %q", d.Source, domain.SourcePattern)
	}
}

func TestQuickRouteSystemCommand(t *testing.T) {
	d := QuickRouteAnalysis("please run ls -la and show disk usage")
	if d.Primary != domain.AgentSystemCommands {
		t.Errorf("got %q, want %q", d.Primary, domain.AgentSystemCommands)
	}
	if d.Confidence != 0.9 {
		t.Errorf("got confidence %v, want 0.9", d.Confidence)
	}
}

func TestQuickRouteResearch(t *testing.T) {
	d := QuickRouteAnalysis("look up the latest news on quantum networking hardware please")
	if d.Primary != domain.AgentResearch {
		t.Errorf("got %q, want %q", d.Primary, domain.AgentResearch)
	}
	if d.Strategy != domain.StrategyMultiAgent {
		t.Errorf("got strategy %q, want %q", d.Strategy, domain.StrategyMultiAgent)
	}
	if len(d.Secondary) != 1 || d.Secondary[0] != domain.AgentRAG {
		t.Errorf("got secondary %v, want [rag]", d.Secondary)
	}
	if d.Confidence != 0.85 {
		t.Errorf("got confidence %v, want 0.85", d.Confidence)
	}
}

func TestQuickRouteKnowledge(t *testing.T) {
	d := QuickRouteAnalysis("can you explain how the scheduler assigns work to nodes in detail")
	if d.Primary != domain.AgentKnowledgeRetrieval {
		t.Errorf("got %q, want %q", d.Primary, domain.AgentKnowledgeRetrieval)
	}
	if d.Strategy != domain.StrategyMultiAgent {
		t.Errorf("got strategy %q, want %q", d.Strategy, domain.StrategyMultiAgent)
	}
}

func TestQuickRoutePriorityChatBeatsCommand(t *testing.T) {
	// Contains both a greeting and a command keyword; chat is checked first.
	d := QuickRouteAnalysis("hello, can you run uptime for me")
	if d.Primary != domain.AgentChat {
		t.Errorf("got %q, want %q (chat outranks system commands)", d.Primary, domain.AgentChat)
	}
}

func TestQuickRoutePriorityCommandBeatsResearch(t *testing.T) {
	d := QuickRouteAnalysis("execute a scan for the latest kernel vulnerabilities")
	if d.Primary != domain.AgentSystemCommands {
		t.Errorf("got %q, want %q (system commands outrank research)", d.Primary, domain.AgentSystemCommands)
	}
}

func TestQuickRoutePriorityResearchBeatsKnowledge(t *testing.T) {
	d := QuickRouteAnalysis("research the topic and then describe the findings for me today")
	if d.Primary != domain.AgentResearch {
		t.Errorf("got %q, want %q (research outranks knowledge)", d.Primary, domain.AgentResearch)
	}
}

func TestQuickRouteShortDefaultsToChat(t *testing.T) {
	d := QuickRouteAnalysis("fix it")
	if d.Primary != domain.AgentChat {
		t.Errorf("got %q, want %q", d.Primary, domain.AgentChat)
	}
	if d.Confidence != 0.6 {
		t.Errorf("got confidence %v, want 0.6", d.Confidence)
	}
}

func TestQuickRouteLongGoesToOrchestrator(t *testing.T) {
	d := QuickRouteAnalysis("the deployment pipeline keeps producing inconsistent artifacts across regions and I need a plan to reconcile them without downtime")
	if d.Primary != domain.AgentOrchestrator {
		t.Errorf("got %q, want %q", d.Primary, domain.AgentOrchestrator)
	}
	if d.Strategy != domain.StrategyOrchestrator {
		t.Errorf("got strategy %q, want %q", d.Strategy, domain.StrategyOrchestrator)
	}
	if d.Confidence != 0.5 {
		t.Errorf("got confidence %v, want 0.5", d.Confidence)
	}
}

func TestQuickRouteCaseInsensitive(t *testing.T) {
	d := QuickRouteAnalysis("HELLO THERE")
	if d.Primary != domain.AgentChat {
		t.Errorf("got %q, want %q", d.Primary, domain.AgentChat)
	}
}

func TestQuickRouteDeterministic(t *testing.T) {
	const req = "look up recent benchmarks and explain the methodology behind them"
	first := QuickRouteAnalysis(req)
	for i := 0; i < 10; i++ {
		d := QuickRouteAnalysis(req)
		if d.Primary != first.Primary || d.Strategy != first.Strategy || d.Confidence != first.Confidence {
			t.Fatalf("run %d diverged: %+v vs %+v", i, d, first)
		}
	}
}
