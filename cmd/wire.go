package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bnema/support-agent-cli/internal/adapters/render/transcript"
	sqliterepo "github.com/bnema/support-agent-cli/internal/adapters/repo/sqlite"
	tomlrepo "github.com/bnema/support-agent-cli/internal/adapters/repo/toml"
	"github.com/bnema/support-agent-cli/internal/application"
	"github.com/bnema/support-agent-cli/internal/classify"
	"github.com/bnema/support-agent-cli/internal/config"
	"github.com/bnema/support-agent-cli/internal/contextmgr"
	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/logging"
	"github.com/bnema/support-agent-cli/internal/pipeline"
	"github.com/bnema/support-agent-cli/internal/ports"
	"github.com/bnema/support-agent-cli/internal/respond"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	service     *application.Service
	escalations *application.EscalationService
	cfg         config.Config
	logger      *zap.Logger
	render      renderers
	closers     []io.Closer
	now         func() time.Time
}

type renderers struct {
	session     func(application.SessionInfo) (string, error)
	turn        func(application.TurnResult, transcript.TurnOptions) (string, error)
	history     func(string, []domain.HistoryEntry) (string, error)
	escalations func([]domain.Escalation, time.Time) (string, error)
	resolution  func(application.Resolution) (string, error)
}

func wireApp() (*app, error) {
	v := viper.New()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	history, closers, err := wireHistoryStore(v, cfg)
	if err != nil {
		return nil, err
	}

	sessions, err := tomlrepo.NewSessionRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	escalationRepo, err := tomlrepo.NewEscalationRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire escalation repository: %w", err)
	}

	clock := ports.SystemClock{}
	engine := pipeline.NewEngine(
		history,
		classify.New(cfg.Classifier),
		respond.New(cfg.Responder),
		contextmgr.New(cfg.Context),
		clock,
		logger,
	)
	escalations := application.NewEscalationService(escalationRepo, history, sessions, clock, cfg.Escalations.TTL, logger)

	return &app{
		service:     application.NewService(engine, history, sessions, escalations, clock, logger),
		escalations: escalations,
		cfg:         cfg,
		logger:      logger,
		render: renderers{
			session:     transcript.RenderSession,
			turn:        transcript.RenderTurn,
			history:     transcript.RenderHistory,
			escalations: transcript.RenderEscalations,
			resolution:  transcript.RenderResolution,
		},
		closers: closers,
		now:     clock.Now,
	}, nil
}

func wireHistoryStore(v *viper.Viper, cfg config.Config) (ports.HistoryStore, []io.Closer, error) {
	switch cfg.History.Backend {
	case config.BackendSQLite:
		store, err := sqliterepo.NewHistoryStore(v)
		if err != nil {
			return nil, nil, fmt.Errorf("wire sqlite history store: %w", err)
		}
		return store, []io.Closer{store}, nil
	default:
		repo, err := tomlrepo.NewHistoryRepository(v)
		if err != nil {
			return nil, nil, fmt.Errorf("wire history repository: %w", err)
		}
		return repo, nil, nil
	}
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
