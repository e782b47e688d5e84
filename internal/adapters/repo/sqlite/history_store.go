// Package sqlite provides a HistoryStore backed by a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/ports"
	"github.com/spf13/viper"
	_ "modernc.org/sqlite"
)

const (
	sqlitePathKey   = "history.sqlite_path"
	dataDirKey      = "data.dir"
	defaultDataDir  = ".support-agent"
	defaultFileName = "history.db"
)

type HistoryStore struct {
	db *sql.DB
}

var _ ports.HistoryStore = (*HistoryStore)(nil)

// NewHistoryStore opens history.sqlite_path, defaulting to history.db in data.dir.
func NewHistoryStore(cfg *viper.Viper) (*HistoryStore, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(sqlitePathKey)
	if path == "" {
		dir := cfg.GetString(dataDirKey)
		if dir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve home directory: %w", err)
			}
			dir = filepath.Join(homeDir, defaultDataDir)
		}
		path = filepath.Join(dir, defaultFileName)
	}

	return Open(path)
}

func Open(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *HistoryStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS history_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		query TEXT NOT NULL,
		resolution TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		metadata_json TEXT NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS idx_history_user ON history_entries(user_id, id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) Load(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT query, resolution, timestamp, metadata_json
		FROM history_entries WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var query, resolution, timestamp, metadataJSON string
		if err := rows.Scan(&query, &resolution, &timestamp, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		metadata := map[string]string{}
		if strings.TrimSpace(metadataJSON) != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
				return nil, fmt.Errorf("decode history metadata: %w", err)
			}
		}

		entry, err := domain.NewHistoryEntry(query, resolution, timestamp, metadata)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	return entries, nil
}

// Append is a single INSERT, so concurrent appends for one user cannot lose entries.
func (s *HistoryStore) Append(ctx context.Context, userID string, entry domain.HistoryEntry) error {
	if err := domain.ValidateUserID(userID); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode history metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO history_entries (user_id, query, resolution, timestamp, metadata_json)
		VALUES (?, ?, ?, ?, ?)`,
		userID, entry.Query, entry.Resolution, entry.Timestamp, string(metadataJSON))
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}

	return nil
}

func (s *HistoryStore) Clear(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history_entries WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}
