// Package snapshot keeps gob-encoded values in a single sqlite table. The
// terminal client uses it for its save slots.
package snapshot

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrBadName  = errors.New("table name may only contain latin letters and underscores")
	ErrNotFound = errors.New("value not found")
)

type Store struct {
	mu    sync.Mutex
	table string
	db    *sql.DB
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_') {
			return false
		}
	}
	return true
}

// Open connects to the sqlite database at path and opens table in it.
func Open(ctx context.Context, path, table string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	s, err := New(ctx, db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New creates table in db unless it exists. table is spliced into queries and
// is therefore restricted to [a-zA-Z_].
func New(ctx context.Context, db *sql.DB, table string) (*Store, error) {
	if !validName(table) {
		return nil, ErrBadName
	}
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+table+` (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`)
	if err != nil {
		return nil, fmt.Errorf("unable to create table %s: %w", table, err)
	}
	return &Store{table: table, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get decodes the value under key into value, which must be a pointer or nil.
// A nil value only checks that key exists.
func (s *Store) Get(ctx context.Context, key string, value any) error {
	var buf []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM `+s.table+` WHERE key = ?;`, key).Scan(&buf)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	return gob.NewDecoder(bytes.NewReader(buf)).Decode(value)
}

// Set inserts or replaces the value under key.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO `+s.table+` (key, value)
VALUES (?, ?)
ON CONFLICT(key)
DO UPDATE SET value = excluded.value;`,
		key, buf.Bytes())
	return err
}

// Delete removes key whether or not it exists.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE key = ?;`, key)
	return err
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+s.table+`;`).Scan(&n)
	return n, err
}

// Keys returns every key in ascending order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM `+s.table+` ORDER BY key;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
