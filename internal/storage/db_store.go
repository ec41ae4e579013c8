package storage

import (
	"database/sql"
	"errors"

	"mentorspractice/internal/database"
)

// DBStore persists local state in the local_state table.
type DBStore struct {
	db *database.DB
}

// NewDBStore creates a database-backed store.
func NewDBStore(db *database.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Get(key string) (string, bool, error) {
	var value string
	query := `SELECT state_value FROM local_state WHERE state_key = ?`
	err := s.db.QueryRow(query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *DBStore) Set(key, value string) error {
	_, err := s.db.Exec(s.db.Dialect.UpsertLocalState(), key, value)
	return err
}

func (s *DBStore) Clear(key string) error {
	_, err := s.db.Exec(`DELETE FROM local_state WHERE state_key = ?`, key)
	return err
}
