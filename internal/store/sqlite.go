package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/coco2yolo/internal/domain"
)

//go:embed schema.sql
var schema string

// Store keeps a ledger of conversion runs
type Store struct {
	db *sql.DB
}

// New opens the ledger at dbPath, creating the schema if needed
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun records a new running conversion
func (s *Store) StartRun(inputPath, outputPath string) (*domain.Run, error) {
	run := &domain.Run{
		ID:         uuid.New().String(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Status:     domain.StatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO runs (id, input_path, output_path, status, started_at) VALUES (?, ?, ?, ?, ?)",
		run.ID, run.InputPath, run.OutputPath, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final status, classes and split stats of a run
func (s *Store) FinishRun(run *domain.Run) error {
	classes, err := json.Marshal(run.Classes)
	if err != nil {
		return fmt.Errorf("encode classes: %w", err)
	}
	if run.Classes == nil {
		classes = []byte("[]")
	}
	finished := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"UPDATE runs SET status = ?, error = ?, classes = ?, finished_at = ? WHERE id = ?",
		run.Status, run.Error, string(classes), finished, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update run: %s not found", run.ID)
	}

	for _, st := range run.Splits {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO split_stats
			(run_id, split, images, labels, lines, unmatched_images, skipped_annotations)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, string(st.Split), st.Images, st.Labels, st.Lines, st.UnmatchedImages, st.SkippedAnnotations,
		)
		if err != nil {
			return fmt.Errorf("insert split stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	run.FinishedAt = &finished
	return nil
}

// GetRun retrieves a run by ID with its split stats
func (s *Store) GetRun(id string) (*domain.Run, error) {
	row := s.db.QueryRow(
		"SELECT id, input_path, output_path, status, error, classes, started_at, finished_at FROM runs WHERE id = ?",
		id,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	splits, err := s.GetSplitStats(id)
	if err != nil {
		return nil, err
	}
	run.Splits = splits

	return run, nil
}

// ListRuns returns recent runs with pagination
func (s *Store) ListRuns(limit, offset int) ([]domain.Run, error) {
	rows, err := s.db.Query(
		`SELECT id, input_path, output_path, status, error, classes, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// GetSplitStats returns the per-split counters of a run in split order
func (s *Store) GetSplitStats(runID string) ([]domain.SplitStats, error) {
	rows, err := s.db.Query(`
		SELECT split, images, labels, lines, unmatched_images, skipped_annotations
		FROM split_stats
		WHERE run_id = ?
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get split stats: %w", err)
	}
	defer rows.Close()

	bySplit := make(map[domain.Split]domain.SplitStats)
	for rows.Next() {
		var st domain.SplitStats
		var split string
		if err := rows.Scan(&split, &st.Images, &st.Labels, &st.Lines, &st.UnmatchedImages, &st.SkippedAnnotations); err != nil {
			return nil, fmt.Errorf("scan split stats: %w", err)
		}
		st.Split = domain.Split(split)
		bySplit[st.Split] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get split stats: %w", err)
	}

	var stats []domain.SplitStats
	for _, split := range domain.Splits {
		if st, ok := bySplit[split]; ok {
			stats = append(stats, st)
		}
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.Run, error) {
	var run domain.Run
	var classes string
	var finished sql.NullTime
	if err := row.Scan(&run.ID, &run.InputPath, &run.OutputPath, &run.Status, &run.Error, &classes, &run.StartedAt, &finished); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(classes), &run.Classes); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
