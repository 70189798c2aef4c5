package domain

import "time"

// Health is the liveness state of a pooled agent. It is maintained by
// health reporting outside this core and only read during selection.
type Health string

const (
	Healthy   Health = "healthy"
	Unhealthy Health = "unhealthy"
)

// TaskEntry records one in-flight dispatch against a pooled agent.
type TaskEntry struct {
	TaskID    string    `json:"task_id"`
	AgentID   string    `json:"agent_id"`
	StartTime time.Time `json:"start_time"`
}

// PoolAgentInfo is a read-only snapshot of one pool entry. ActiveTasks is
// a copy; mutating it does not affect the pool.
type PoolAgentInfo struct {
	AgentID         string               `json:"agent_id"`
	AgentType       AgentType            `json:"agent_type"`
	Health          Health               `json:"health"`
	LastHealthCheck time.Time            `json:"last_health_check"`
	ActiveTasks     map[string]TaskEntry `json:"active_tasks"`
}

// AgentPool is the registry contract the executor depends on.
//
// While a dispatch is in flight its task ID appears in exactly one agent's
// active-task set, and in none before dispatch or after completion. The
// executor guarantees release on every exit path, so RemoveActiveTask must
// be idempotent on an absent task ID.
type AgentPool interface {
	// HealthyAgents returns all healthy agents sorted by agent ID
	// ascending. The order is part of the contract: preference matching
	// and least-loaded tie-breaking both rely on it.
	HealthyAgents() []Agent
	// AgentInfo returns a snapshot for one agent, or ErrAgentNotFound.
	AgentInfo(agentID string) (PoolAgentInfo, error)
	// ActiveTaskCount returns the number of in-flight tasks for an agent.
	// Unknown agents count as zero.
	ActiveTaskCount(agentID string) int
	// AddActiveTask records a task as in flight on the given agent.
	AddActiveTask(agentID, taskID string) error
	// RemoveActiveTask releases a task. Removing an absent task is a no-op.
	RemoveActiveTask(agentID, taskID string)
}
