package toml

import (
	"context"
	"fmt"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	sessionsPathKey  = "sessions.path"
	sessionsFileName = "sessions.toml"
	sessionsLabel    = "sessions"
)

// SessionRepository stores the carried message log of every thread in one file.
type SessionRepository struct {
	path string
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(cfg *viper.Viper) (*SessionRepository, error) {
	path, err := resolvePath(cfg, sessionsPathKey, sessionsFileName)
	if err != nil {
		return nil, err
	}

	return &SessionRepository{path: path}, nil
}

func (r *SessionRepository) Get(ctx context.Context, userID, threadID string) (domain.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return domain.Transcript{}, err
	}

	var file sessionsFileSchema
	err := withFileRLock(ctx, r.path, func() error {
		var err error
		file, err = r.readSchema()
		return err
	})
	if err != nil {
		return domain.Transcript{}, err
	}

	for _, entry := range file.Sessions {
		if entry.UserID == userID && entry.ThreadID == threadID {
			return fromSessionSchema(entry)
		}
	}

	return domain.Transcript{}, domain.ErrSessionNotFound
}

func (r *SessionRepository) Save(ctx context.Context, transcript domain.Transcript) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := domain.ValidateIdentifiers(transcript.UserID, transcript.ThreadID); err != nil {
		return err
	}

	return withFileLock(ctx, r.path, func() error {
		file, err := r.readSchema()
		if err != nil {
			return err
		}

		encoded := toSessionSchema(transcript)
		updated := false
		for i := range file.Sessions {
			if file.Sessions[i].UserID == encoded.UserID && file.Sessions[i].ThreadID == encoded.ThreadID {
				file.Sessions[i] = encoded
				updated = true
				break
			}
		}
		if !updated {
			file.Sessions = append(file.Sessions, encoded)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		return writeTOMLFile(r.path, sessionsLabel, file)
	})
}

// Delete removes every thread of the user. It reports how many were removed.
func (r *SessionRepository) Delete(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	removed := 0
	err := withFileLock(ctx, r.path, func() error {
		file, err := r.readSchema()
		if err != nil {
			return err
		}

		kept := file.Sessions[:0]
		for _, entry := range file.Sessions {
			if entry.UserID != userID {
				kept = append(kept, entry)
			}
		}
		if len(kept) == len(file.Sessions) {
			return nil
		}
		removed = len(file.Sessions) - len(kept)
		file.Sessions = kept

		return writeTOMLFile(r.path, sessionsLabel, file)
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

func (r *SessionRepository) readSchema() (sessionsFileSchema, error) {
	var file sessionsFileSchema
	if _, err := readTOMLFile(r.path, sessionsLabel, &file); err != nil {
		return sessionsFileSchema{}, err
	}
	if err := validateVersion(sessionsLabel, file.Version); err != nil {
		return sessionsFileSchema{}, err
	}
	applyVersion(&file.Version)

	return file, nil
}

func toSessionSchema(transcript domain.Transcript) sessionSchema {
	messages := make([]messageSchema, 0, len(transcript.Messages))
	for _, msg := range transcript.Messages {
		messages = append(messages, messageSchema{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: formatTime(msg.Timestamp),
		})
	}

	return sessionSchema{
		UserID:         transcript.UserID,
		ThreadID:       transcript.ThreadID,
		UpdatedAt:      formatTime(transcript.UpdatedAt),
		ReviewDecision: transcript.ReviewDecision,
		Messages:       messages,
	}
}

func fromSessionSchema(entry sessionSchema) (domain.Transcript, error) {
	updatedAt := parseTime(entry.UpdatedAt)
	messages := make([]domain.Message, 0, len(entry.Messages))
	for i, raw := range entry.Messages {
		msg, err := domain.MessageFromMap(map[string]any{
			"role":      raw.Role,
			"content":   raw.Content,
			"timestamp": raw.Timestamp,
		}, updatedAt)
		if err != nil {
			return domain.Transcript{}, fmt.Errorf("decode session %s message %d: %w", domain.SessionID(entry.UserID, entry.ThreadID), i, err)
		}
		messages = append(messages, msg)
	}

	return domain.Transcript{
		UserID:         entry.UserID,
		ThreadID:       entry.ThreadID,
		Messages:       messages,
		UpdatedAt:      updatedAt,
		ReviewDecision: entry.ReviewDecision,
	}, nil
}
