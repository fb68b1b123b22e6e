package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/franz/netease-audit/internal/util"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	currentSchemaVersion = 2
)

// Store is the durable state shared by every pipeline run. It is the source
// of truth across runs; the pipeline only owns in-memory collections.
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity() error {
	var result string
	err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}

// migrate applies database migrations
func (s *Store) migrate() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}

	if version >= currentSchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if version < 1 {
		if _, err := tx.Exec(schemaV1); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
		if err := s.setSchemaVersion(tx, 1); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	// v2 - infringement sweep hits
	if version < 2 {
		if _, err := tx.Exec(schemaV2); err != nil {
			return fmt.Errorf("failed to apply schema v2: %w", err)
		}
		if err := s.setSchemaVersion(tx, 2); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (s *Store) getSchemaVersion() (int, error) {
	var exists int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}

	if exists == 0 {
		return 0, nil
	}

	var version int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion records a schema version in a transaction
func (s *Store) setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// classifyWriteError turns constraint violations into PersistenceConflictError.
// "Already exists" never reaches here because inserts use ON CONFLICT DO NOTHING.
func classifyWriteError(table string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "constraint") {
		return &util.PersistenceConflictError{Table: table, Err: err}
	}
	return fmt.Errorf("write %s: %w", table, err)
}

// Artist is a resolved NetEase artist profile. Identity is ID; rows are
// insert-if-absent and never updated afterwards.
type Artist struct {
	ID         int64
	Name       string
	Aliases    []string
	AlbumCount int
	VideoCount int
	Followers  int64
}

// CatalogEntry is one (song, credited artist) pair from an artist catalog.
// A song with N credited artists yields N entries sharing SongID.
type CatalogEntry struct {
	SongID      int64
	SongName    string
	ArtistID    int64
	ArtistName  string
	AlbumID     int64
	CopyrightID *int64
	Popularity  int
	Fee         int
	TrackNumber int
}

// AlbumDetail is the album metadata broadcast onto catalog entries
type AlbumDetail struct {
	AlbumID     int64
	Name        string
	Label       string
	ReleaseDate time.Time
}

// LyricRecord is the classified lyric payload of one song
type LyricRecord struct {
	SongID           int64
	VariantID        string
	Instrumental     bool
	Songwriters      []string
	Lyrics           string
	TranslatedLyrics *string
}

// SearchHit is a song found by an infringement sweep search
type SearchHit struct {
	SongID      int64
	SearchTerm  string
	SearchKind  string
	SongName    string
	ArtistNames string
	ArtistIDs   string
	AlbumID     int64
	AlbumName   string
	PublishTime int64
	CopyrightID *int64
	Fee         int
	Own         bool
}
