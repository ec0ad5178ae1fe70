package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get when no preview exists for a URL.
var ErrNotFound = errors.New("preview not found")

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const previewColumns = `url, added_date, saved, embellished, bookmarked, source, title, published_date, tags, summary`

// Store persists previews keyed by URL. Writes are serialized through mu so
// a single sqlite handle is never shared by concurrent transactions.
type Store struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewStore opens the default sqlite database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	return Open(DriverSQLite, SQLiteDSN(dataDir))
}

// SQLiteDSN returns the sqlite DSN for the database file under dataDir.
func SQLiteDSN(dataDir string) string {
	return filepath.Join(dataDir, "linkstitcher.db") + "?_journal_mode=WAL&_busy_timeout=5000"
}

// Open connects to driver/dsn and applies the schema.
func Open(driver, dsn string) (*Store, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS previews (
			url TEXT PRIMARY KEY,
			added_date DATE NOT NULL,
			saved BOOLEAN NOT NULL DEFAULT FALSE,
			embellished BOOLEAN NOT NULL DEFAULT FALSE,
			bookmarked BOOLEAN NOT NULL DEFAULT FALSE,
			source TEXT,
			title TEXT,
			published_date TEXT,
			tags TEXT,
			summary TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_previews_added_date ON previews(added_date)`,
		`CREATE INDEX IF NOT EXISTS idx_previews_source ON previews(source)`,
		`CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Upsert inserts p when its URL is unknown, otherwise updates only the
// enrichment fields and flags, leaving url, added_date and saved untouched.
// It reports whether a new row was created.
func (s *Store) Upsert(ctx context.Context, p *Preview) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM previews WHERE url = ?`), p.URL); err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", p.URL, err)
	}
	isNew := n == 0

	if isNew {
		if err := insertPreview(ctx, tx, p); err != nil {
			return false, err
		}
	} else {
		query := s.db.Rebind(`UPDATE previews SET
			source = ?, title = ?, published_date = ?, tags = ?, summary = ?, embellished = ?, bookmarked = ?
			WHERE url = ?`)
		if _, err := tx.ExecContext(ctx, query,
			p.Source, p.Title, p.PublishedDate, p.Tags, p.Summary, p.Embellished, p.Bookmarked, p.URL,
		); err != nil {
			return false, fmt.Errorf("failed to update %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return isNew, nil
}

// Insert adds a new preview. A known URL is a constraint error.
func (s *Store) Insert(ctx context.Context, p *Preview) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertPreview(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func insertPreview(ctx context.Context, tx *sqlx.Tx, p *Preview) error {
	query := tx.Rebind(`INSERT INTO previews (` + previewColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := tx.ExecContext(ctx, query,
		p.URL, p.AddedDate.UTC(), p.Saved, p.Embellished, p.Bookmarked,
		p.Source, p.Title, p.PublishedDate, p.Tags, p.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", p.URL, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, url string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM previews WHERE url = ?`), url)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", url, err)
	}
	return n > 0, nil
}

func (s *Store) Get(ctx context.Context, url string) (*Preview, error) {
	var p Preview
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+previewColumns+` FROM previews WHERE url = ?`), url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", url, err)
	}
	return &p, nil
}

// All returns every stored preview, newest first.
func (s *Store) All(ctx context.Context) ([]Preview, error) {
	return s.Recent(ctx, RecentQuery{})
}

// RecentQuery narrows Recent. Zero values disable each condition.
type RecentQuery struct {
	Since     time.Time
	Source    string
	SavedOnly bool
}

// Recent returns previews matching q ordered by added_date descending.
func (s *Store) Recent(ctx context.Context, q RecentQuery) ([]Preview, error) {
	query := `SELECT ` + previewColumns + ` FROM previews WHERE 1=1`
	var args []interface{}
	if !q.Since.IsZero() {
		query += ` AND added_date > ?`
		args = append(args, q.Since.UTC())
	}
	if q.Source != "" {
		query += ` AND source = ?`
		args = append(args, q.Source)
	}
	if q.SavedOnly {
		query += ` AND saved = ?`
		args = append(args, true)
	}
	query += ` ORDER BY added_date DESC, url`

	var previews []Preview
	if err := s.db.SelectContext(ctx, &previews, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list previews: %w", err)
	}
	return previews, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM previews`)
	return n, err
}

func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`SELECT value FROM metadata WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`), key, value)
	return err
}
