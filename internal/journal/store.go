package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"moviemeta/internal/config"
	"moviemeta/internal/enrich"
	"moviemeta/internal/services"
)

// ErrLocked reports that another process holds the journal.
var ErrLocked = errors.New("journal is locked by another moviemeta process")

// ErrRunNotFound reports an unknown run id. It matches services.ErrNotFound.
var ErrRunNotFound = fmt.Errorf("run %w", services.ErrNotFound)

// Status is the lifecycle state of a journaled run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one row of the runs table.
type Run struct {
	ID     string
	Source string
	Status Status
	// Total counts the titles the run has classified plus those still
	// pending when it was last started or finished.
	Total        int
	Found        int
	NotFound     int
	Restarts     int
	Passes       int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Classified returns found + not found.
func (r Run) Classified() int {
	return r.Found + r.NotFound
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the journal database, locks it and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "journal", "open", "config required", nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.JournalPath()
	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire journal lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database and releases the lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// StartRun inserts a running row with a fresh id.
func (s *Store) StartRun(ctx context.Context, source string, total int) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    StatusRunning,
		Total:     total,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, status, total, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Status, run.Total, run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// ResumeRun marks an earlier run as running again. Later classifications
// append to the same run; pending is the number of titles still to classify.
func (s *Store) ResumeRun(ctx context.Context, id string, pending int) (*Run, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	var classified int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM classifications WHERE run_id = ?`, run.ID).Scan(&classified); err != nil {
		return nil, fmt.Errorf("count classifications: %w", err)
	}
	total := classified + pending
	if _, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, total = ?, error_message = NULL, finished_at = NULL WHERE id = ?`,
		StatusRunning, total, run.ID); err != nil {
		return nil, fmt.Errorf("resume run: %w", err)
	}
	run.Status = StatusRunning
	run.Total = total
	run.ErrorMessage = ""
	run.FinishedAt = time.Time{}
	return run, nil
}

// FinishRun stores the final status of a run. Passes accumulate across
// resumes; found and not-found counts are recomputed from classifications.
// The total is recomputed from the summary's pending titles when the engine
// ran, so titles covered by another classification no longer count.
func (s *Store) FinishRun(ctx context.Context, id string, status Status, summary enrich.Summary, runErr error) error {
	var message any
	if runErr != nil {
		message = runErr.Error()
	}
	pending := -1
	if summary.Passes > 0 {
		pending = max(summary.Total-summary.Classified, 0)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs
         SET status = ?, passes = passes + ?, error_message = ?, finished_at = ?,
             found = (SELECT COUNT(1) FROM classifications WHERE run_id = ? AND found = 1),
             not_found = (SELECT COUNT(1) FROM classifications WHERE run_id = ? AND found = 0),
             total = CASE WHEN ? < 0 THEN total
                          ELSE (SELECT COUNT(1) FROM classifications WHERE run_id = ?) + ? END
         WHERE id = ?`,
		status, summary.Passes, message, time.Now().UTC().Format(time.RFC3339Nano),
		id, id, pending, id, pending, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// RecordClassification appends one classification to a run.
func (s *Store) RecordClassification(ctx context.Context, runID string, ev enrich.Event) error {
	var payload any
	if ev.Found && ev.Movie != nil {
		data, err := json.Marshal(ev.Movie)
		if err != nil {
			return fmt.Errorf("marshal movie: %w", err)
		}
		payload = string(data)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO classifications (run_id, seq, title, year, found, payload_json, classified_at)
         VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM classifications WHERE run_id = ?), ?, ?, ?, ?, ?)`,
		runID, runID, ev.Candidate.Title, nullableString(ev.Candidate.Year), boolToInt(ev.Found), payload,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert classification: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE runs SET found = found + ?, not_found = not_found + ? WHERE id = ?`,
		boolToInt(ev.Found), boolToInt(!ev.Found), runID); err != nil {
		return fmt.Errorf("update run counters: %w", err)
	}
	return nil
}

// RecordRestart bumps the restart counter of a run.
func (s *Store) RecordRestart(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE runs SET restarts = restarts + 1 WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("record restart: %w", err)
	}
	return nil
}

// GetRun fetches a run by id. A unique id prefix is accepted.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("get run: %w", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY started_at DESC LIMIT 2`,
		id, stripWildcards(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LoadState rebuilds the classified records of a run in classification
// order.
func (s *Store) LoadState(ctx context.Context, runID string) ([]enrich.FoundRecord, []enrich.NotFoundRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, year, found, payload_json FROM classifications WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load classifications: %w", err)
	}
	defer rows.Close()

	var (
		found    []enrich.FoundRecord
		notFound []enrich.NotFoundRecord
	)
	for rows.Next() {
		var (
			title   string
			year    sql.NullString
			isFound int
			payload sql.NullString
		)
		if err := rows.Scan(&title, &year, &isFound, &payload); err != nil {
			return nil, nil, fmt.Errorf("scan classification: %w", err)
		}
		if isFound == 0 {
			notFound = append(notFound, enrich.NotFoundRecord{Title: title, Year: year.String})
			continue
		}
		rec := enrich.FoundRecord{}
		rec.Query.Title = title
		rec.Query.Year = year.String
		if payload.Valid {
			if err := json.Unmarshal([]byte(payload.String), &rec.Movie); err != nil {
				return nil, nil, fmt.Errorf("decode payload for %q: %w", title, err)
			}
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate classifications: %w", err)
	}
	return found, notFound, nil
}

// DeleteRun removes a run and its classifications.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrRunNotFound)
	}
	return nil
}
