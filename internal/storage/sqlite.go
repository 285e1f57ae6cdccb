// Package storage is the durable document store: a string-keyed SQLite
// table holding the serialized history collection and user profile. Reads
// treat absent or malformed data as "no data", never as an error; writes
// always serialize the full document.
package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kalambet/searchbot/internal/profile"
	"github.com/kalambet/searchbot/internal/search"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Durable storage keys.
const (
	historyKey = "searchbot:history"
	userKey    = "searchbot:user"
)

// Store wraps a SQLite database holding the app's two documents.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "searchbot.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db, logger: slog.Default()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies embedded SQL migrations that haven't been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %d: %w", version, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// getDocument returns the raw value for key, or nil when absent.
func (s *Store) getDocument(key string) ([]byte, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM documents WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading document %q: %w", key, err)
	}
	return []byte(value), nil
}

// setDocument upserts the full serialized document for key.
func (s *Store) setDocument(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("writing document %q: %w", key, err)
	}
	return nil
}

// LoadHistory returns the persisted history collection. Absent or
// malformed data resolves to an empty collection.
func (s *Store) LoadHistory() ([]search.HistoryRecord, error) {
	raw, err := s.getDocument(historyKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []search.HistoryRecord{}, nil
	}

	var records []search.HistoryRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		s.logger.Warn("malformed history document, treating as empty", "error", err)
		return []search.HistoryRecord{}, nil
	}
	return records, nil
}

// SaveHistory serializes and writes the full history collection.
func (s *Store) SaveHistory(records []search.HistoryRecord) error {
	if records == nil {
		records = []search.HistoryRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshalling history: %w", err)
	}
	return s.setDocument(historyKey, raw)
}

// LoadProfile returns the persisted profile, or nil when absent or
// malformed.
func (s *Store) LoadProfile() (*profile.Profile, error) {
	raw, err := s.getDocument(userKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var p profile.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.Warn("malformed profile document, treating as absent", "error", err)
		return nil, nil
	}
	return &p, nil
}

// SaveProfile serializes and writes the full profile document.
func (s *Store) SaveProfile(p profile.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshalling profile: %w", err)
	}
	return s.setDocument(userKey, raw)
}

// ClearAll removes both documents.
func (s *Store) ClearAll() error {
	_, err := s.db.Exec("DELETE FROM documents WHERE key IN (?, ?)", historyKey, userKey)
	if err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}
