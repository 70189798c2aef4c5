// Package pool manages the registry of distributed agents: health state and
// per-agent in-flight task bookkeeping used for load-aware selection.
package pool

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dispatch-ai/internal/domain"
)

// ManagerConfig holds configuration for the pool manager.
type ManagerConfig struct {
	// SweepSchedule is a cron expression for the background health sweep.
	// Empty disables the sweep.
	SweepSchedule string
	// StaleAfter marks an agent unhealthy when its last health report is
	// older than this. Defaults to 60s.
	StaleAfter time.Duration
}

type entry struct {
	agent           domain.Agent // shared reference; lifecycle managed elsewhere
	health          domain.Health
	lastHealthCheck time.Time
	activeTasks     map[string]domain.TaskEntry
}

// Manager is the concrete agent pool. Its registry and per-agent task sets
// are the only mutable state shared across concurrent requests; every
// mutation happens under mu.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*entry
	config  ManagerConfig
	bus     domain.EventBus
	logger  *slog.Logger
	cron    *cron.Cron
}

// NewManager creates a pool manager. bus may be nil.
func NewManager(cfg ManagerConfig, bus domain.EventBus, logger *slog.Logger) *Manager {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 60 * time.Second
	}
	return &Manager{
		entries: make(map[string]*entry),
		config:  cfg,
		bus:     bus,
		logger:  logger,
	}
}

// Register adds an agent to the pool as healthy.
// Returns ErrAgentDuplicate if the ID is already registered.
func (m *Manager) Register(ctx context.Context, agent domain.Agent) error {
	id := agent.ID()
	if id == "" {
		return domain.NewDomainError("Manager.Register", domain.ErrAgentNotFound, "empty agent ID")
	}

	m.mu.Lock()
	if _, exists := m.entries[id]; exists {
		m.mu.Unlock()
		return domain.NewDomainError("Manager.Register", domain.ErrAgentDuplicate, id)
	}
	m.entries[id] = &entry{
		agent:           agent,
		health:          domain.Healthy,
		lastHealthCheck: time.Now(),
		activeTasks:     make(map[string]domain.TaskEntry),
	}
	m.mu.Unlock()

	m.publishEvent(ctx, domain.EventAgentRegistered, map[string]string{
		"agent_id": id, "agent_type": string(agent.Type()),
	})
	m.logger.Info("agent registered", "agent_id", id, "agent_type", agent.Type())
	return nil
}

// Remove unregisters an agent. In-flight tasks recorded against it are
// discarded; their executors still release without error because removal
// makes RemoveActiveTask a no-op.
func (m *Manager) Remove(ctx context.Context, agentID string) error {
	m.mu.Lock()
	if _, exists := m.entries[agentID]; !exists {
		m.mu.Unlock()
		return domain.NewDomainError("Manager.Remove", domain.ErrAgentNotFound, agentID)
	}
	delete(m.entries, agentID)
	m.mu.Unlock()

	m.publishEvent(ctx, domain.EventAgentRemoved, map[string]string{"agent_id": agentID})
	m.logger.Info("agent removed", "agent_id", agentID)
	return nil
}

// HealthyAgents returns all healthy agents sorted by agent ID ascending.
// The sorted order is a documented part of the AgentPool contract.
func (m *Manager) HealthyAgents() []domain.Agent {
	m.mu.RLock()
	agents := make([]domain.Agent, 0, len(m.entries))
	for _, e := range m.entries {
		if e.health == domain.Healthy {
			agents = append(agents, e.agent)
		}
	}
	m.mu.RUnlock()

	sort.Slice(agents, func(i, j int) bool {
		return agents[i].ID() < agents[j].ID()
	})
	return agents
}

// AgentInfo returns a snapshot for one agent. The active-task map is copied.
func (m *Manager) AgentInfo(agentID string) (domain.PoolAgentInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[agentID]
	if !ok {
		return domain.PoolAgentInfo{}, domain.NewDomainError("Manager.AgentInfo", domain.ErrAgentNotFound, agentID)
	}

	tasks := make(map[string]domain.TaskEntry, len(e.activeTasks))
	for id, t := range e.activeTasks {
		tasks[id] = t
	}
	return domain.PoolAgentInfo{
		AgentID:         agentID,
		AgentType:       e.agent.Type(),
		Health:          e.health,
		LastHealthCheck: e.lastHealthCheck,
		ActiveTasks:     tasks,
	}, nil
}

// ActiveTaskCount returns the number of in-flight tasks for an agent.
// Unknown agents count as zero.
func (m *Manager) ActiveTaskCount(agentID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[agentID]
	if !ok {
		return 0
	}
	return len(e.activeTasks)
}

// AddActiveTask records a task as in flight on the given agent.
func (m *Manager) AddActiveTask(agentID, taskID string) error {
	now := time.Now()

	m.mu.Lock()
	e, ok := m.entries[agentID]
	if !ok {
		m.mu.Unlock()
		return domain.NewDomainError("Manager.AddActiveTask", domain.ErrAgentNotFound, agentID)
	}
	e.activeTasks[taskID] = domain.TaskEntry{TaskID: taskID, AgentID: agentID, StartTime: now}
	m.mu.Unlock()

	m.publishEvent(context.Background(), domain.EventTaskStarted, map[string]string{
		"agent_id": agentID, "task_id": taskID,
	})
	return nil
}

// RemoveActiveTask releases a task. The executor calls this unconditionally
// on every exit path, so removing an absent task (or a task on a removed
// agent) is a no-op, never an error.
func (m *Manager) RemoveActiveTask(agentID, taskID string) {
	m.mu.Lock()
	e, ok := m.entries[agentID]
	if !ok {
		m.mu.Unlock()
		return
	}
	_, present := e.activeTasks[taskID]
	delete(e.activeTasks, taskID)
	m.mu.Unlock()

	if present {
		m.publishEvent(context.Background(), domain.EventTaskReleased, map[string]string{
			"agent_id": agentID, "task_id": taskID,
		})
	}
}

// Heartbeat refreshes an agent's health report and marks it healthy.
func (m *Manager) Heartbeat(ctx context.Context, agentID string) error {
	m.mu.Lock()
	e, ok := m.entries[agentID]
	if !ok {
		m.mu.Unlock()
		return domain.NewDomainError("Manager.Heartbeat", domain.ErrAgentNotFound, agentID)
	}
	e.lastHealthCheck = time.Now()
	e.health = domain.Healthy
	m.mu.Unlock()

	m.publishEvent(ctx, domain.EventAgentHeartbeat, map[string]string{"agent_id": agentID})
	return nil
}

// SetHealth overrides an agent's health state directly.
func (m *Manager) SetHealth(ctx context.Context, agentID string, h domain.Health) error {
	m.mu.Lock()
	e, ok := m.entries[agentID]
	if !ok {
		m.mu.Unlock()
		return domain.NewDomainError("Manager.SetHealth", domain.ErrAgentNotFound, agentID)
	}
	e.health = h
	e.lastHealthCheck = time.Now()
	m.mu.Unlock()

	if h == domain.Unhealthy {
		m.publishEvent(ctx, domain.EventAgentUnhealthy, map[string]string{"agent_id": agentID})
	}
	return nil
}

// StartHealthSweep schedules the background sweep that marks agents
// unhealthy when their last health report is older than StaleAfter.
// No-op when SweepSchedule is empty.
func (m *Manager) StartHealthSweep(ctx context.Context) error {
	if m.config.SweepSchedule == "" {
		return nil
	}

	m.cron = cron.New()
	_, err := m.cron.AddFunc(m.config.SweepSchedule, func() {
		m.sweep(ctx)
	})
	if err != nil {
		return domain.WrapOp("pool.sweep schedule", err)
	}
	m.cron.Start()
	m.logger.Info("health sweep started", "schedule", m.config.SweepSchedule, "stale_after", m.config.StaleAfter)
	return nil
}

// StopHealthSweep stops the background sweep and waits for a running
// sweep to finish.
func (m *Manager) StopHealthSweep() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
}

func (m *Manager) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-m.config.StaleAfter)

	// Collect stale agents under the lock, publish after releasing.
	var stale []string

	m.mu.Lock()
	for id, e := range m.entries {
		if e.health == domain.Healthy && e.lastHealthCheck.Before(cutoff) {
			e.health = domain.Unhealthy
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.logger.Warn("agent marked unhealthy", "agent_id", id)
		m.publishEvent(ctx, domain.EventAgentUnhealthy, map[string]string{"agent_id": id})
	}
}

func (m *Manager) publishEvent(ctx context.Context, eventType domain.EventType, detail map[string]string) {
	if m.bus == nil {
		return
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		m.logger.Error("failed to marshal event payload", "event", string(eventType), "error", err)
		return
	}
	m.bus.Publish(ctx, domain.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

var _ domain.AgentPool = (*Manager)(nil)
