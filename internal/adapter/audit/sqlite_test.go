package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dispatch-ai/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteAuditStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	store, err := NewSQLiteAuditStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteAuditStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteAuditStore_AppendAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := domain.DecisionRecord{
		RequestID:       "req-1",
		Strategy:        domain.StrategyMultiAgent,
		Primary:         domain.AgentResearch,
		Secondary:       []domain.AgentType{domain.AgentRAG},
		Confidence:      0.85,
		Source:          domain.SourcePattern,
		RoutingStrategy: domain.TagMultiAgent,
		Status:          domain.StatusSuccess,
		Duration:        120 * time.Millisecond,
		CreatedAt:       time.Now().UTC(),
	}
	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	got := records[0]
	if got.RequestID != "req-1" {
		t.Errorf("RequestID = %q", got.RequestID)
	}
	if got.Strategy != domain.StrategyMultiAgent {
		t.Errorf("Strategy = %q", got.Strategy)
	}
	if got.Primary != domain.AgentResearch {
		t.Errorf("Primary = %q", got.Primary)
	}
	if len(got.Secondary) != 1 || got.Secondary[0] != domain.AgentRAG {
		t.Errorf("Secondary = %v", got.Secondary)
	}
	if got.Confidence != 0.85 {
		t.Errorf("Confidence = %v", got.Confidence)
	}
	if got.Duration != 120*time.Millisecond {
		t.Errorf("Duration = %v", got.Duration)
	}
	if got.Status != domain.StatusSuccess {
		t.Errorf("Status = %q", got.Status)
	}
}

func TestSQLiteAuditStore_RecentNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"req-1", "req-2", "req-3"} {
		rec := domain.DecisionRecord{
			RequestID:       id,
			Strategy:        domain.StrategySingleAgent,
			Primary:         domain.AgentChat,
			Source:          domain.SourcePattern,
			RoutingStrategy: domain.TagSingleAgent,
			Status:          domain.StatusSuccess,
		}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append %s: %v", id, err)
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].RequestID != "req-3" || records[1].RequestID != "req-2" {
		t.Errorf("got order %q, %q; want req-3, req-2", records[0].RequestID, records[1].RequestID)
	}
}

func TestSQLiteAuditStore_RecentEmpty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestSQLiteAuditStore_DefaultLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := domain.DecisionRecord{
		RequestID:       "req-1",
		Strategy:        domain.StrategySingleAgent,
		Primary:         domain.AgentChat,
		Source:          domain.SourcePattern,
		RoutingStrategy: domain.TagSingleAgent,
		Status:          domain.StatusSuccess,
	}
	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Zero and negative limits fall back to the default.
	records, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestSQLiteAuditStore_ZeroCreatedAtFilledIn(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := domain.DecisionRecord{
		RequestID:       "req-1",
		Strategy:        domain.StrategySingleAgent,
		Primary:         domain.AgentChat,
		Source:          domain.SourcePattern,
		RoutingStrategy: domain.TagSingleAgent,
		Status:          domain.StatusSuccess,
	}
	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if records[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not filled in on append")
	}
}
