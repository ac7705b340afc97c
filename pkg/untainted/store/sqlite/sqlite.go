package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
	"github.com/amantheshaikh/untainted/pkg/untainted/store"
)

// sqliteStore implements store.ProfileStore using SQLite
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// profile table if needed.
func OpenSQLite(ctx context.Context, path string) (store.ProfileStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", internalerr.ErrStoreUnavailable, path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enable WAL: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", internalerr.ErrStoreUnavailable, err)
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	name TEXT,
	preferences TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Get loads one profile
func (s *sqliteStore) Get(ctx context.Context, id string) (store.Profile, error) {
	id, err := store.NormalizeID(id)
	if err != nil {
		return store.Profile{}, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT id, name, preferences, updated_at FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Profile{}, store.NotFound(id)
	}
	if err != nil {
		return store.Profile{}, fmt.Errorf("get profile %q: %w", id, err)
	}
	return p, nil
}

// Put inserts or updates a profile
func (s *sqliteStore) Put(ctx context.Context, p store.Profile) error {
	id, err := store.NormalizeID(p.ID)
	if err != nil {
		return err
	}
	prefsJSON, err := json.Marshal(p.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO profiles (id, name, preferences, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name=excluded.name,
	preferences=excluded.preferences,
	updated_at=excluded.updated_at;
`, id, p.Name, string(prefsJSON), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put profile %q: %w", id, err)
	}
	return nil
}

// Delete removes a profile
func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	id, err := store.NormalizeID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile %q: %w", id, err)
	}
	if n == 0 {
		return store.NotFound(id)
	}
	return nil
}

// List returns all profiles ordered by id
func (s *sqliteStore) List(ctx context.Context) ([]store.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, preferences, updated_at FROM profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []store.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (store.Profile, error) {
	var (
		p         store.Profile
		name      sql.NullString
		prefsJSON string
		updatedAt string
	)
	if err := row.Scan(&p.ID, &name, &prefsJSON, &updatedAt); err != nil {
		return store.Profile{}, err
	}
	p.Name = name.String

	var decoded prefs.Preferences
	if err := json.Unmarshal([]byte(prefsJSON), &decoded); err != nil {
		return store.Profile{}, fmt.Errorf("decode preferences: %w", err)
	}
	p.Preferences = decoded

	t, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return store.Profile{}, fmt.Errorf("parse updated_at: %w", err)
	}
	p.UpdatedAt = t
	return p, nil
}
