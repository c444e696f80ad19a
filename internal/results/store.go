package results

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/analysis"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store keeps a history of benchmark runs in SQLite.
type Store struct {
	db *sql.DB
}

// Run is one persisted pipeline run.
type Run struct {
	RunID       string
	Annotations string // annotations dir the run was computed from
	Segments    int
	CreatedAt   int64
}

// Open opens (creating if necessary) the results database at path and brings
// its schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration setup: %w", err)
	}
	// Note: m is not closed here because that would close the underlying
	// DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SaveRun persists a complete run (correlation rows plus tier summary) in
// one transaction and returns the generated run id.
func (s *Store) SaveRun(annotationsDir string, segments int, records []analysis.Record, summary []analysis.TierSummary) (string, error) {
	runID := uuid.New().String()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, annotations, segments, created_at) VALUES (?, ?, ?, ?)`,
		runID, annotationsDir, segments, time.Now().UnixNano(),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, r := range records {
		if _, err := tx.Exec(`
			INSERT INTO correlations (
				run_id, lang, resource_tier, metric, n,
				pearson_r, pearson_p, spearman_r, spearman_p
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, r.Lang, r.ResourceTier, r.Metric, r.N,
			nullable(r.PearsonR), nullable(r.PearsonP),
			nullable(r.SpearmanR), nullable(r.SpearmanP),
		); err != nil {
			return "", fmt.Errorf("insert correlation (%s, %s): %w", r.Lang, r.Metric, err)
		}
	}

	for _, row := range summary {
		if _, err := tx.Exec(`
			INSERT INTO tier_summary (run_id, metric, resource_tier, pearson_r, spearman_r)
			VALUES (?, ?, ?, ?, ?)`,
			runID, row.Metric, row.ResourceTier,
			nullable(row.PearsonR), nullable(row.SpearmanR),
		); err != nil {
			return "", fmt.Errorf("insert tier summary (%s, %s): %w", row.Metric, row.ResourceTier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns persisted runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, annotations, segments, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Annotations, &r.Segments, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Correlations returns the correlation rows of a run in the stored (export)
// order.
func (s *Store) Correlations(runID string) ([]analysis.Record, error) {
	rows, err := s.db.Query(`
		SELECT lang, resource_tier, metric, n, pearson_r, pearson_p, spearman_r, spearman_p
		FROM correlations WHERE run_id = ? ORDER BY metric, resource_tier, lang`, runID)
	if err != nil {
		return nil, fmt.Errorf("query correlations: %w", err)
	}
	defer rows.Close()

	var records []analysis.Record
	for rows.Next() {
		var r analysis.Record
		var pr, pp, sr, sp sql.NullFloat64
		if err := rows.Scan(&r.Lang, &r.ResourceTier, &r.Metric, &r.N, &pr, &pp, &sr, &sp); err != nil {
			return nil, fmt.Errorf("scan correlation: %w", err)
		}
		r.PearsonR = fromNull(pr)
		r.PearsonP = fromNull(pp)
		r.SpearmanR = fromNull(sr)
		r.SpearmanP = fromNull(sp)
		records = append(records, r)
	}
	return records, rows.Err()
}

// TierSummary returns the tier summary rows of a run in export order.
func (s *Store) TierSummary(runID string) ([]analysis.TierSummary, error) {
	rows, err := s.db.Query(`
		SELECT metric, resource_tier, pearson_r, spearman_r
		FROM tier_summary WHERE run_id = ? ORDER BY metric, resource_tier`, runID)
	if err != nil {
		return nil, fmt.Errorf("query tier summary: %w", err)
	}
	defer rows.Close()

	var summary []analysis.TierSummary
	for rows.Next() {
		var t analysis.TierSummary
		var pr, sr sql.NullFloat64
		if err := rows.Scan(&t.Metric, &t.ResourceTier, &pr, &sr); err != nil {
			return nil, fmt.Errorf("scan tier summary: %w", err)
		}
		t.PearsonR = fromNull(pr)
		t.SpearmanR = fromNull(sr)
		summary = append(summary, t)
	}
	return summary, rows.Err()
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
