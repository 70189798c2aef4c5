// Package audit persists routing decisions to SQLite. The trail records
// what the core decided, not conversation content.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"dispatch-ai/internal/domain"
)

// SQLiteAuditStore implements domain.AuditStore using SQLite.
type SQLiteAuditStore struct {
	db *sql.DB
}

// NewSQLiteAuditStore opens (or creates) a SQLite database at dbPath
// and runs the schema migration.
func NewSQLiteAuditStore(dbPath string) (*SQLiteAuditStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}
	return &SQLiteAuditStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS routing_decisions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id       TEXT NOT NULL,
			strategy         TEXT NOT NULL,
			primary_agent    TEXT NOT NULL,
			secondary_agents TEXT NOT NULL DEFAULT '[]',
			confidence       REAL NOT NULL,
			source           TEXT NOT NULL,
			routing_strategy TEXT NOT NULL,
			status           TEXT NOT NULL,
			duration_ms      INTEGER NOT NULL,
			created_at       TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteAuditStore) Close() error {
	return s.db.Close()
}

// Append implements domain.AuditStore.
func (s *SQLiteAuditStore) Append(_ context.Context, rec domain.DecisionRecord) error {
	secJSON, err := json.Marshal(rec.Secondary)
	if err != nil {
		return fmt.Errorf("marshal secondary agents: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.Exec(
		`INSERT INTO routing_decisions
			(request_id, strategy, primary_agent, secondary_agents, confidence, source, routing_strategy, status, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, string(rec.Strategy), string(rec.Primary), string(secJSON),
		rec.Confidence, string(rec.Source), rec.RoutingStrategy, string(rec.Status),
		rec.Duration.Milliseconds(), createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuditWrite, err)
	}
	return nil
}

// Recent implements domain.AuditStore. Records come back newest first.
func (s *SQLiteAuditStore) Recent(_ context.Context, limit int) ([]domain.DecisionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT request_id, strategy, primary_agent, secondary_agents, confidence, source, routing_strategy, status, duration_ms, created_at
		FROM routing_decisions ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.DecisionRecord
	for rows.Next() {
		rec, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanDecision(rows *sql.Rows) (domain.DecisionRecord, error) {
	var rec domain.DecisionRecord
	var strategy, primary, secStr, source, status, createdStr string
	var durationMs int64
	if err := rows.Scan(&rec.RequestID, &strategy, &primary, &secStr, &rec.Confidence,
		&source, &rec.RoutingStrategy, &status, &durationMs, &createdStr); err != nil {
		return rec, err
	}
	rec.Strategy = domain.RoutingStrategy(strategy)
	rec.Primary = domain.AgentType(primary)
	if err := json.Unmarshal([]byte(secStr), &rec.Secondary); err != nil {
		return rec, fmt.Errorf("unmarshal secondary agents: %w", err)
	}
	rec.Source = domain.DecisionSource(source)
	rec.Status = domain.ResponseStatus(status)
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

var _ domain.AuditStore = (*SQLiteAuditStore)(nil)
