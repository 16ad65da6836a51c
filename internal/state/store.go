// Package state is the incremental-build cache: content hashes of every
// compiled script plus a record of past builds, stored in SQLite.
package state

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// BuildStatus is the terminal state of a recorded build.
type BuildStatus string

// Build statuses.
const (
	StatusRunning   BuildStatus = "running"
	StatusSucceeded BuildStatus = "succeeded"
	StatusFailed    BuildStatus = "failed"
)

// Build is one recorded compilation.
type Build struct {
	ID          string
	Project     string
	Status      BuildStatus
	Package     string // output path of the emitted package
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Store wraps the SQLite cache database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the cache database at path. Use ":memory:" for an
// ephemeral store. The schema is migrated to the latest version on open.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging cache database: %w", err)
	}
	// the cache sees no concurrent writers, but WAL keeps watch-mode rebuilds
	// from blocking on readers
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		logger.Debug("wal not available", slog.String("error", err.Error()))
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// newID creates a build run identifier.
func newID() string {
	return uuid.New().String()
}

// StartBuild records the beginning of a build and returns its run.
func (s *Store) StartBuild(projectName string) (*Build, error) {
	b := &Build{
		ID:        newID(),
		Project:   projectName,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	s.logger.Debug("recording build start",
		slog.String("id", b.ID), slog.String("project", projectName))

	_, err := s.db.Exec(
		`INSERT INTO builds (id, project, status, started_at) VALUES (?, ?, ?, ?)`,
		b.ID, b.Project, string(b.Status), b.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("recording build: %w", err)
	}
	return b, nil
}

// FinishBuild marks a build finished. errMsg is empty on success.
func (s *Store) FinishBuild(id, packagePath, errMsg string) error {
	status := StatusSucceeded
	if errMsg != "" {
		status = StatusFailed
	}
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`UPDATE builds SET status = ?, package = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(status), packagePath, errMsg, now, id,
	)
	if err != nil {
		return fmt.Errorf("finishing build: %w", err)
	}
	return nil
}

// LatestBuild returns the most recent build for a project, or nil when the
// project has never been built.
func (s *Store) LatestBuild(projectName string) (*Build, error) {
	row := s.db.QueryRow(
		`SELECT id, project, status, COALESCE(package, ''), started_at, completed_at, COALESCE(error, '')
		 FROM builds WHERE project = ? ORDER BY started_at DESC LIMIT 1`,
		projectName,
	)

	b := &Build{}
	var status string
	var completed sql.NullTime
	err := row.Scan(&b.ID, &b.Project, &status, &b.Package, &b.StartedAt, &completed, &b.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest build: %w", err)
	}
	b.Status = BuildStatus(status)
	if completed.Valid {
		t := completed.Time
		b.CompletedAt = &t
	}
	return b, nil
}
