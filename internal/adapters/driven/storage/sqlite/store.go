// Package sqlite provides a SQLite-backed request audit log.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/arcline-labs/askdoc/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RequestLogStore = (*Store)(nil)

// Store is a SQLite-backed request log.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.askdoc/data/requests.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".askdoc", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "requests.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record stores one request/response pair.
func (s *Store) Record(ctx context.Context, rec driven.RequestRecord) error {
	questionsJSON, err := json.Marshal(rec.Questions)
	if err != nil {
		return fmt.Errorf("marshalling questions: %w", err)
	}
	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("marshalling answers: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO request_log (id, document_url, questions, answers, full_text_bypass, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.DocumentURL, string(questionsJSON), string(answersJSON),
		rec.FullTextBypass, rec.Duration.Milliseconds(), createdAt)

	if err != nil {
		return fmt.Errorf("recording request: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]driven.RequestRecord, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_url, questions, answers, full_text_bypass, duration_ms, created_at
		FROM request_log
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying request log: %w", err)
	}
	defer rows.Close()

	var records []driven.RequestRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec driven.RequestRecord
		var questionsJSON, answersJSON string
		var durationMs int64
		var createdAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.DocumentURL, &questionsJSON, &answersJSON,
			&rec.FullTextBypass, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning request record: %w", err)
		}

		if err := json.Unmarshal([]byte(questionsJSON), &rec.Questions); err != nil {
			return nil, fmt.Errorf("unmarshaling questions: %w", err)
		}
		if err := json.Unmarshal([]byte(answersJSON), &rec.Answers); err != nil {
			return nil, fmt.Errorf("unmarshaling answers: %w", err)
		}

		rec.Duration = time.Duration(durationMs) * time.Millisecond
		if createdAt.Valid {
			rec.CreatedAt = createdAt.Time
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating request log: %w", err)
	}

	return records, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
