package service

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"mentorspractice/internal/database"
)

// BackupService exports and imports the local_state table as JSON
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// BackupData represents the complete backup structure
type BackupData struct {
	Version    string        `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Entries    []StateRecord `json:"entries"`
}

// StateRecord is a single key-value row from local_state
type StateRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Export writes the full local_state table to a JSON file
func (s *BackupService) Export(outputPath string) error {
	rows, err := s.db.Query(`SELECT state_key, state_value FROM local_state ORDER BY state_key`)
	if err != nil {
		return fmt.Errorf("failed to read local state: %w", err)
	}
	defer rows.Close()

	backup := BackupData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
	}

	for rows.Next() {
		var record StateRecord
		if err := rows.Scan(&record.Key, &record.Value); err != nil {
			return fmt.Errorf("failed to scan state row: %w", err)
		}
		backup.Entries = append(backup.Entries, record)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read state rows: %w", err)
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	return nil
}

// Import reads a JSON backup file and upserts every entry into local_state.
// Existing keys are overwritten with the backup's values.
func (s *BackupService) Import(inputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("failed to parse backup file: %w", err)
	}

	upsert := s.db.Dialect.UpsertLocalState()
	for _, record := range backup.Entries {
		if record.Key == "" {
			continue
		}
		if _, err := s.db.Exec(upsert, record.Key, record.Value); err != nil {
			return fmt.Errorf("failed to import key %s: %w", record.Key, err)
		}
	}

	return nil
}
