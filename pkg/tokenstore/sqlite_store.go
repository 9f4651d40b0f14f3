package tokenstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps tokens in a local SQLite database. Tokens are stored in
// clear text; protect the file with file system permissions.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens or creates the database at path. ":memory:" is accepted.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS tokens_v1 (
		name TEXT PRIMARY KEY,
		variant TEXT NOT NULL,
		app_id TEXT NOT NULL DEFAULT '',
		access_token TEXT NOT NULL,
		token_type TEXT NOT NULL DEFAULT '',
		expires TIMESTAMP NOT NULL,
		last_modified TIMESTAMP NOT NULL
	)
	`)
	if err != nil {
		return fmt.Errorf("failed to create tokens table: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(token *StoredToken) error {
	if token == nil || !validName(token.Name) {
		return ErrInvalidToken
	}
	_, err := s.db.NamedExec(`
	INSERT INTO tokens_v1 (name, variant, app_id, access_token, token_type, expires, last_modified)
	VALUES (:name, :variant, :app_id, :access_token, :token_type, :expires, :last_modified)
	ON CONFLICT(name) DO UPDATE SET
		variant = excluded.variant,
		app_id = excluded.app_id,
		access_token = excluded.access_token,
		token_type = excluded.token_type,
		expires = excluded.expires,
		last_modified = excluded.last_modified
	`, token)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(name string) (*StoredToken, error) {
	if !validName(name) {
		return nil, ErrInvalidToken
	}
	var t StoredToken
	err := s.db.Get(&t, "SELECT name, variant, app_id, access_token, token_type, expires, last_modified FROM tokens_v1 WHERE name = $1", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	return &t, nil
}

func (s *SQLiteStore) List() ([]*StoredToken, error) {
	var tokens []*StoredToken
	err := s.db.Select(&tokens, "SELECT name, variant, app_id, access_token, token_type, expires, last_modified FROM tokens_v1 ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

func (s *SQLiteStore) Delete(name string) error {
	if !validName(name) {
		return ErrInvalidToken
	}
	res, err := s.db.Exec("DELETE FROM tokens_v1 WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (s *SQLiteStore) Exists(name string) bool {
	var n int
	err := s.db.Get(&n, "SELECT COUNT(*) FROM tokens_v1 WHERE name = $1", name)
	return err == nil && n > 0
}
