// Package storage persists evaluation runs, ranked lists, and metric reports
// in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	"github.com/bugloc/bugloc/internal/models"
)

// Store is the SQLite-backed run archive. Index data lives in its own binary
// files; the database keeps what the dashboard and the evaluation read back:
// runs, per-query ranked lists, and the computed reports.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates a SQLite database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project, created_at);

	CREATE TABLE IF NOT EXISTS ranked_results (
		run_id TEXT NOT NULL,
		bug_id TEXT NOT NULL,
		family TEXT NOT NULL,
		variant TEXT NOT NULL,
		rank INTEGER NOT NULL,
		file_path TEXT NOT NULL,
		lexical_score REAL NOT NULL,
		semantic_score REAL NOT NULL,
		fused_score REAL NOT NULL,
		PRIMARY KEY (run_id, bug_id, family, variant, rank),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON ranked_results(run_id);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		project TEXT NOT NULL,
		family TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_reports_project ON reports(project, family, created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// BeginRun records a new evaluation run for project and returns its ID.
func (s *Store) BeginRun(ctx context.Context, project string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, project, created_at) VALUES (?, ?, ?)`,
		id, project, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// LatestRunID returns the most recent run ID for project.
func (s *Store) LatestRunID(ctx context.Context, project string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs WHERE project = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		project,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no runs for project: %s", project)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// SaveRankedList stores one ranked list under a run in a single transaction.
func (s *Store) SaveRankedList(ctx context.Context, runID string, rl *models.RankedList) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ranked_results
		 (run_id, bug_id, family, variant, rank, file_path, lexical_score, semantic_score, fused_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range rl.Results {
		if _, err := stmt.ExecContext(ctx,
			runID, rl.BugID, string(rl.Family), string(rl.Variant),
			i+1, r.FilePath, r.LexicalScore, r.SemanticScore, r.FusedScore,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetRankedList returns one ranked list of a run, in rank order.
func (s *Store) GetRankedList(ctx context.Context, runID string, key models.QueryKey) (*models.RankedList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path, lexical_score, semantic_score, fused_score
		 FROM ranked_results
		 WHERE run_id = ? AND bug_id = ? AND family = ? AND variant = ?
		 ORDER BY rank`,
		runID, key.BugID, string(key.Family), string(key.Variant),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rl := &models.RankedList{BugID: key.BugID, Family: key.Family, Variant: key.Variant}
	for rows.Next() {
		var r models.ScoredResult
		if err := rows.Scan(&r.FilePath, &r.LexicalScore, &r.SemanticScore, &r.FusedScore); err != nil {
			return nil, err
		}
		rl.Results = append(rl.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rl.Results) == 0 {
		return nil, fmt.Errorf("ranked list not found: %s/%s/%s", key.BugID, key.Family, key.Variant)
	}
	return rl, nil
}

// ListRankedLists returns every ranked list of a run as ordered file paths,
// keyed by (bug, family, variant). This is the shape the evaluation consumes.
func (s *Store) ListRankedLists(ctx context.Context, runID string) (map[models.QueryKey][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bug_id, family, variant, file_path
		 FROM ranked_results WHERE run_id = ?
		 ORDER BY bug_id, family, variant, rank`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := make(map[models.QueryKey][]string)
	for rows.Next() {
		var bugID, family, variant, path string
		if err := rows.Scan(&bugID, &family, &variant, &path); err != nil {
			return nil, err
		}
		key := models.QueryKey{
			BugID:   bugID,
			Family:  models.QueryFamily(family),
			Variant: models.QueryVariant(variant),
		}
		lists[key] = append(lists[key], path)
	}
	return lists, rows.Err()
}

// ListRankedListsForBug returns the ranked lists of a run for one bug.
func (s *Store) ListRankedListsForBug(ctx context.Context, runID, bugID string) ([]*models.RankedList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT family, variant, file_path, lexical_score, semantic_score, fused_score
		 FROM ranked_results WHERE run_id = ? AND bug_id = ?
		 ORDER BY family, variant, rank`,
		runID, bugID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []*models.RankedList
	var current *models.RankedList
	for rows.Next() {
		var family, variant string
		var r models.ScoredResult
		if err := rows.Scan(&family, &variant, &r.FilePath, &r.LexicalScore, &r.SemanticScore, &r.FusedScore); err != nil {
			return nil, err
		}
		if current == nil || string(current.Family) != family || string(current.Variant) != variant {
			current = &models.RankedList{
				BugID:   bugID,
				Family:  models.QueryFamily(family),
				Variant: models.QueryVariant(variant),
			}
			lists = append(lists, current)
		}
		current.Results = append(current.Results, r)
	}
	return lists, rows.Err()
}

// SaveReport stores a metric report under a run. The payload is YAML so a
// report row round-trips through the same codec as the report files on disk.
func (s *Store) SaveReport(ctx context.Context, runID string, report *models.MetricReport) error {
	payload, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, run_id, project, family, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, report.Project, string(report.Family), string(payload), time.Now(),
	)
	return err
}

// LatestReport returns the most recent report for (project, family).
func (s *Store) LatestReport(ctx context.Context, project string, family models.QueryFamily) (*models.MetricReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE project = ? AND family = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		project, string(family),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report not found: %s/%s", project, family)
	}
	if err != nil {
		return nil, err
	}
	var report models.MetricReport
	if err := yaml.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// CountRankedLists returns the number of distinct ranked lists in a run.
func (s *Store) CountRankedLists(ctx context.Context, runID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (
			SELECT DISTINCT bug_id, family, variant FROM ranked_results WHERE run_id = ?
		)`, runID,
	).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
