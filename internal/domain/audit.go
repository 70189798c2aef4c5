package domain

import (
	"context"
	"time"
)

// DecisionRecord is one row in the routing audit trail. It captures what
// the core decided and how the dispatch went, never conversation content.
type DecisionRecord struct {
	RequestID       string          `json:"request_id"`
	Strategy        RoutingStrategy `json:"strategy"`
	Primary         AgentType       `json:"primary_agent"`
	Secondary       []AgentType     `json:"secondary_agents,omitempty"`
	Confidence      float64         `json:"confidence"`
	Source          DecisionSource  `json:"source"`
	RoutingStrategy string          `json:"routing_strategy"`
	Status          ResponseStatus  `json:"status"`
	Duration        time.Duration   `json:"duration"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AuditStore persists routing decisions for observability. Writes are
// best-effort; a failed append never fails the dispatch that produced it.
type AuditStore interface {
	Append(ctx context.Context, rec DecisionRecord) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]DecisionRecord, error)
	Close() error
}
