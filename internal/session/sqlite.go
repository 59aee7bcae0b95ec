package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Keys under which session fields are stored.
const (
	keyToken         = "token"
	keyRefresh       = "refresh"
	keyShopID        = "shopid"
	keyShopName      = "shopname"
	keyDisplayName   = "displayname"
	keyUsername      = "username"
	keyAuthenticated = "authenticated"
)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the state database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// A single connection is plenty for a client-side store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS report_filters (
			family TEXT PRIMARY KEY,
			page INTEGER NOT NULL,
			page_size INTEGER NOT NULL,
			search TEXT NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to migrate state database: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Session loads the persisted session. A missing database yields the zero
// session, not an error.
func (s *SQLiteStore) Session(ctx context.Context) (Session, error) {
	var sess Session
	var err error

	if sess.Token, err = s.get(ctx, keyToken); err != nil {
		return Session{}, err
	}
	if sess.Refresh, err = s.get(ctx, keyRefresh); err != nil {
		return Session{}, err
	}
	if sess.ShopID, err = s.get(ctx, keyShopID); err != nil {
		return Session{}, err
	}
	if sess.ShopName, err = s.get(ctx, keyShopName); err != nil {
		return Session{}, err
	}
	if sess.DisplayName, err = s.get(ctx, keyDisplayName); err != nil {
		return Session{}, err
	}
	if sess.Username, err = s.get(ctx, keyUsername); err != nil {
		return Session{}, err
	}
	auth, err := s.get(ctx, keyAuthenticated)
	if err != nil {
		return Session{}, err
	}
	sess.Authenticated, _ = strconv.ParseBool(auth)

	return sess, nil
}

// SaveSession persists the session wholesale.
func (s *SQLiteStore) SaveSession(ctx context.Context, sess Session) error {
	fields := map[string]string{
		keyToken:         sess.Token,
		keyRefresh:       sess.Refresh,
		keyShopID:        sess.ShopID,
		keyShopName:      sess.ShopName,
		keyDisplayName:   sess.DisplayName,
		keyUsername:      sess.Username,
		keyAuthenticated: strconv.FormatBool(sess.Authenticated),
	}
	for key, value := range fields {
		if err := s.set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Clear wipes the session fields. Preferences and filter snapshots are
// left in place.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	keys := []string{keyToken, keyRefresh, keyShopID, keyShopName,
		keyDisplayName, keyUsername, keyAuthenticated}
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}
	return nil
}

// Preference reads a UI preference, empty string when unset.
func (s *SQLiteStore) Preference(ctx context.Context, key string) (string, error) {
	return s.get(ctx, "pref."+key)
}

// SetPreference writes a UI preference.
func (s *SQLiteStore) SetPreference(ctx context.Context, key, value string) error {
	return s.set(ctx, "pref."+key, value)
}

// Snapshot loads the persisted filter state for a report family.
func (s *SQLiteStore) Snapshot(ctx context.Context, family string) (FilterSnapshot, bool, error) {
	var snap FilterSnapshot
	err := s.db.QueryRowContext(ctx,
		"SELECT page, page_size, search FROM report_filters WHERE family = ?",
		family).Scan(&snap.Page, &snap.PageSize, &snap.Search)
	if errors.Is(err, sql.ErrNoRows) {
		return FilterSnapshot{}, false, nil
	}
	if err != nil {
		return FilterSnapshot{}, false, fmt.Errorf("failed to read filter snapshot: %w", err)
	}
	return snap, true, nil
}

// SaveSnapshot persists the filter state for a report family.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, family string, snap FilterSnapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_filters (family, page, page_size, search, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(family) DO UPDATE SET
			page = excluded.page,
			page_size = excluded.page_size,
			search = excluded.search,
			updated_at = CURRENT_TIMESTAMP`,
		family, snap.Page, snap.PageSize, snap.Search)
	if err != nil {
		return fmt.Errorf("failed to save filter snapshot: %w", err)
	}
	return nil
}

// ClearSnapshots drops all filter snapshots.
func (s *SQLiteStore) ClearSnapshots(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM report_filters"); err != nil {
		return fmt.Errorf("failed to clear filter snapshots: %w", err)
	}
	return nil
}
