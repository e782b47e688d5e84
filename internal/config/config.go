// Package config loads runtime settings from ~/.support-agent/config.toml,
// a .env file and SA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/support-agent-cli/internal/application"
	"github.com/bnema/support-agent-cli/internal/classify"
	"github.com/bnema/support-agent-cli/internal/contextmgr"
	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/respond"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "SA"
	defaultDataDir  = ".support-agent"
	defaultFileName = "config.toml"

	BackendTOML   = "toml"
	BackendSQLite = "sqlite"
)

// Keys shared with the repository constructors, which read them from the same viper instance.
const (
	KeyConfigFile          = "config_file"
	KeyEnvFile             = "env_file"
	KeyDataDir             = "data.dir"
	KeyHistoryBackend      = "history.backend"
	KeyHistoryPath         = "history.path"
	KeyHistorySQLitePath   = "history.sqlite_path"
	KeySessionsPath        = "sessions.path"
	KeyEscalationsPath     = "escalations.path"
	KeyEscalationsTTL      = "escalations.ttl"
	KeySweepSchedule       = "escalations.sweep_schedule"
	KeyMaxMessages         = "context.max_messages"
	KeyPreserveSystem      = "context.preserve_system"
	KeyExcludeRoles        = "context.exclude_roles"
	KeyFilterGreetings     = "filter.filter_greetings"
	KeyFilterShort         = "filter.filter_short"
	KeyFilterMinLength     = "filter.min_length"
	KeyFilterRepetitive    = "filter.filter_repetitive"
	KeyFilterNonActionable = "filter.filter_non_actionable"
	KeyPreserveImportant   = "filter.preserve_important"
	KeyLogLevel            = "log.level"
	KeyLogFormat           = "log.format"

	keyClassifier = "classifier"
	keyResponder  = "responder"
	keyKeywords   = "keywords"
)

type Config struct {
	DataDir     string
	History     HistoryConfig
	Escalations EscalationConfig
	Context     contextmgr.Options
	Classifier  classify.Catalog
	Responder   respond.Catalog
	Log         LogConfig
	// File is the config file that was read; empty when none exists.
	File string
}

type HistoryConfig struct {
	Backend    string
	Path       string
	SQLitePath string
}

type EscalationConfig struct {
	Path          string
	TTL           time.Duration
	SweepSchedule string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load populates v and returns the typed view of it. A missing config or
// .env file is not an error.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := loadDotEnv(v.GetString(KeyEnvFile)); err != nil {
		return Config{}, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	setDefaults(v, filepath.Join(homeDir, defaultDataDir))

	file, err := readConfigFile(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DataDir: v.GetString(KeyDataDir),
		History: HistoryConfig{
			Backend:    strings.ToLower(strings.TrimSpace(v.GetString(KeyHistoryBackend))),
			Path:       v.GetString(KeyHistoryPath),
			SQLitePath: v.GetString(KeyHistorySQLitePath),
		},
		Escalations: EscalationConfig{
			Path:          v.GetString(KeyEscalationsPath),
			TTL:           v.GetDuration(KeyEscalationsTTL),
			SweepSchedule: v.GetString(KeySweepSchedule),
		},
		Context: contextmgr.Options{
			MaxMessages:    v.GetInt(KeyMaxMessages),
			PreserveSystem: v.GetBool(KeyPreserveSystem),
			ExcludeRoles:   roles(v.GetStringSlice(KeyExcludeRoles)),
			Filter: contextmgr.FilterConfig{
				FilterGreetings:     v.GetBool(KeyFilterGreetings),
				FilterShort:         v.GetBool(KeyFilterShort),
				MinLength:           v.GetInt(KeyFilterMinLength),
				FilterRepetitive:    v.GetBool(KeyFilterRepetitive),
				FilterNonActionable: v.GetBool(KeyFilterNonActionable),
				PreserveImportant:   v.GetBool(KeyPreserveImportant),
			},
			Keywords: contextmgr.DefaultKeywords(),
		},
		Classifier: classify.DefaultCatalog(),
		Responder:  respond.DefaultCatalog(),
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		File: file,
	}

	if cfg.Classifier, err = decodeSection(v, keyClassifier, cfg.Classifier); err != nil {
		return Config{}, err
	}
	if cfg.Responder, err = decodeSection(v, keyResponder, cfg.Responder); err != nil {
		return Config{}, err
	}
	if cfg.Context.Keywords, err = decodeSection(v, keyKeywords, cfg.Context.Keywords); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.History.Backend {
	case BackendTOML, BackendSQLite:
	default:
		return &domain.ValidationError{Field: KeyHistoryBackend, Reason: fmt.Sprintf("unsupported backend %q", c.History.Backend)}
	}
	if c.Context.MaxMessages <= 0 {
		return &domain.ValidationError{Field: KeyMaxMessages, Reason: "must be positive"}
	}
	if c.Context.Filter.MinLength < 0 {
		return &domain.ValidationError{Field: KeyFilterMinLength, Reason: "must not be negative"}
	}
	if c.Escalations.TTL <= 0 {
		return &domain.ValidationError{Field: KeyEscalationsTTL, Reason: "must be positive"}
	}
	if strings.TrimSpace(c.Escalations.SweepSchedule) == "" {
		return &domain.ValidationError{Field: KeySweepSchedule, Reason: "is required"}
	}
	for _, role := range c.Context.ExcludeRoles {
		if !role.Valid() {
			return &domain.ValidationError{Field: KeyExcludeRoles, Reason: fmt.Sprintf("unknown role %q", role)}
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, dataDir string) {
	filter := contextmgr.DefaultFilterConfig()
	ctx := contextmgr.DefaultOptions()

	v.SetDefault(KeyDataDir, dataDir)
	v.SetDefault(KeyHistoryBackend, BackendTOML)
	v.SetDefault(KeyEscalationsTTL, application.DefaultEscalationTTL)
	v.SetDefault(KeySweepSchedule, application.DefaultSweepSchedule)
	v.SetDefault(KeyMaxMessages, ctx.MaxMessages)
	v.SetDefault(KeyPreserveSystem, ctx.PreserveSystem)
	v.SetDefault(KeyExcludeRoles, []string{})
	v.SetDefault(KeyFilterGreetings, filter.FilterGreetings)
	v.SetDefault(KeyFilterShort, filter.FilterShort)
	v.SetDefault(KeyFilterMinLength, filter.MinLength)
	v.SetDefault(KeyFilterRepetitive, filter.FilterRepetitive)
	v.SetDefault(KeyFilterNonActionable, filter.FilterNonActionable)
	v.SetDefault(KeyPreserveImportant, filter.PreserveImportant)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "console")
}

// readConfigFile reads config_file, else config.toml in data.dir.
func readConfigFile(v *viper.Viper) (string, error) {
	path := v.GetString(KeyConfigFile)
	if path == "" {
		path = filepath.Join(v.GetString(KeyDataDir), defaultFileName)
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")

	err := v.ReadInConfig()
	if err == nil {
		return path, nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	return "", fmt.Errorf("read config %s: %w", path, err)
}

func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}

	// Existing environment variables win over the file.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}

// decodeSection replaces fallback with the configured table. Lists left out of
// the table stay empty; classify.New and contextmgr.New default each one.
func decodeSection[T any](v *viper.Viper, key string, fallback T) (T, error) {
	if !v.IsSet(key) {
		return fallback, nil
	}

	var out T
	if err := v.UnmarshalKey(key, &out); err != nil {
		return fallback, fmt.Errorf("decode %s: %w", key, err)
	}

	return out, nil
}

func roles(values []string) []domain.Role {
	out := make([]domain.Role, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, domain.Role(strings.ToLower(value)))
	}
	return out
}
