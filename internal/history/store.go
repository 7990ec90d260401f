package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one ledger row.
type Run struct {
	ID                  string
	Status              Status
	Language            string
	CaptionMode         string
	CustomScript        bool
	Speed               float64
	VideoPath           string
	BackgroundAudioPath string
	WorkDir             string
	OutputPath          string
	CaptionsPath        string
	FailedStage         string
	FailureKind         string
	ErrorMessage        string
	StartedAt           time.Time
	FinishedAt          time.Time
}

// Duration reports how long a finished run took, or zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome carries the fields written when a run finishes.
type Outcome struct {
	Status       Status
	VideoPath    string
	OutputPath   string
	CaptionsPath string
	FailedStage  string
	FailureKind  string
	ErrorMessage string
}

// ErrNotFound is returned when a run ID has no row.
var ErrNotFound = errors.New("run not found")

// Store manages the run ledger.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const runColumns = "id, status, language, caption_mode, custom_script, speed, video_path, background_audio_path, work_dir, output_path, captions_path, failed_stage, failure_kind, error_message, started_at, finished_at"

// Open initializes or connects to the ledger at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Begin records a run in the running state. StartedAt defaults to now.
func (s *Store) Begin(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, status, language, caption_mode, custom_script, speed, video_path, background_audio_path, work_dir, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(StatusRunning), run.Language, run.CaptionMode, boolToInt(run.CustomScript), run.Speed,
		nullString(run.VideoPath), nullString(run.BackgroundAudioPath), nullString(run.WorkDir),
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish stamps the terminal state of a run.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome) error {
	if outcome.Status != StatusSucceeded && outcome.Status != StatusFailed {
		return fmt.Errorf("finish run: invalid status %q", outcome.Status)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, video_path = COALESCE(?, video_path), output_path = ?, captions_path = ?,
		 failed_stage = ?, failure_kind = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(outcome.Status), nullString(outcome.VideoPath), nullString(outcome.OutputPath), nullString(outcome.CaptionsPath),
		nullString(outcome.FailedStage), nullString(outcome.FailureKind), nullString(outcome.ErrorMessage),
		formatTime(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Get returns the run with id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// List returns the most recent runs first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
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
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		status      string
		custom      int
		videoPath   sql.NullString
		bgAudio     sql.NullString
		workDir     sql.NullString
		outputPath  sql.NullString
		captions    sql.NullString
		failedStage sql.NullString
		failureKind sql.NullString
		errorMsg    sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID, &status, &run.Language, &run.CaptionMode, &custom, &run.Speed,
		&videoPath, &bgAudio, &workDir, &outputPath, &captions,
		&failedStage, &failureKind, &errorMsg, &startedRaw, &finishedRaw,
	); err != nil {
		return Run{}, err
	}
	run.Status = Status(status)
	run.CustomScript = custom != 0
	run.VideoPath = videoPath.String
	run.BackgroundAudioPath = bgAudio.String
	run.WorkDir = workDir.String
	run.OutputPath = outputPath.String
	run.CaptionsPath = captions.String
	run.FailedStage = failedStage.String
	run.FailureKind = failureKind.String
	run.ErrorMessage = errorMsg.String
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	return run, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	return sql.NullString{String: value, Valid: value != ""}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// timeLayout is fixed-width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return t
}
