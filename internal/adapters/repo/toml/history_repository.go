package toml

import (
	"context"
	"net/url"
	"path/filepath"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	historyPathKey = "history.path"
	historyDirName = "history"
	historyLabel   = "history"
)

// HistoryRepository keeps one TOML file per user inside a directory.
type HistoryRepository struct {
	dir string
}

var _ ports.HistoryStore = (*HistoryRepository)(nil)

func NewHistoryRepository(cfg *viper.Viper) (*HistoryRepository, error) {
	dir, err := resolvePath(cfg, historyPathKey, historyDirName)
	if err != nil {
		return nil, err
	}

	return &HistoryRepository{dir: dir}, nil
}

func (r *HistoryRepository) Load(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := r.userPath(userID)
	var file historyFileSchema
	err := withFileRLock(ctx, path, func() error {
		var err error
		file, err = readHistoryFile(path)
		return err
	})
	if err != nil {
		return nil, err
	}

	return fromHistorySchema(file.Entries), nil
}

func (r *HistoryRepository) Append(ctx context.Context, userID string, entry domain.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := domain.ValidateUserID(userID); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	path := r.userPath(userID)
	return withFileLock(ctx, path, func() error {
		file, err := readHistoryFile(path)
		if err != nil {
			return err
		}

		file.UserID = userID
		file.LastUpdated = entry.Timestamp
		file.Entries = append(file.Entries, toHistorySchema(entry))

		if err := ctx.Err(); err != nil {
			return err
		}

		return writeTOMLFile(path, historyLabel, file)
	})
}

func (r *HistoryRepository) Clear(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := r.userPath(userID)
	return withFileLock(ctx, path, func() error {
		return removeFile(path, historyLabel)
	})
}

// userPath escapes the id so it can never leave the history directory.
func (r *HistoryRepository) userPath(userID string) string {
	return filepath.Join(r.dir, "user_"+url.PathEscape(userID)+".toml")
}

func readHistoryFile(path string) (historyFileSchema, error) {
	var file historyFileSchema
	if _, err := readTOMLFile(path, historyLabel, &file); err != nil {
		return historyFileSchema{}, err
	}
	if err := validateVersion(historyLabel, file.Version); err != nil {
		return historyFileSchema{}, err
	}
	applyVersion(&file.Version)

	return file, nil
}

func toHistorySchema(entry domain.HistoryEntry) historyEntrySchema {
	return historyEntrySchema{
		Query:      entry.Query,
		Resolution: entry.Resolution,
		Timestamp:  entry.Timestamp,
		Metadata:   entry.Metadata,
	}
}

// fromHistorySchema drops entries that no longer validate instead of failing the whole load.
func fromHistorySchema(entries []historyEntrySchema) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, 0, len(entries))
	for _, raw := range entries {
		entry, err := domain.NewHistoryEntry(raw.Query, raw.Resolution, raw.Timestamp, raw.Metadata)
		if err != nil {
			continue
		}
		out = append(out, entry)
	}

	return out
}
