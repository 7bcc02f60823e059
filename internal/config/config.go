package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/joho/godotenv"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/ranking"
)

//go:embed schema.cue
var schemaCUE string

// Environment variables that override file settings.
const (
	EnvLogLevel  = "CDS_LOG_LEVEL"
	EnvJournal   = "CDS_JOURNAL"
	EnvRedisAddr = "CDS_REDIS_ADDR"
	EnvListen    = "CDS_LISTEN"
)

// Config is the decoded configuration.
type Config struct {
	ContestID    string   `json:"contest_id"`
	Feed         string   `json:"feed"`
	Journal      string   `json:"journal"`
	LogLevel     string   `json:"log_level"`
	LogFormat    string   `json:"log_format"`
	Scoring      string   `json:"scoring"`
	HiddenPolicy string   `json:"hidden_policy"`
	TeamViews    []string `json:"team_views"`
	Listen       string   `json:"listen"`
	Redis        Redis    `json:"redis"`
}

// Redis configures the scoreboard publisher. An empty Addr disables it.
type Redis struct {
	Addr   string `json:"addr"`
	Prefix string `json:"prefix"`
}

// ConfigError reports an invalid configuration file.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Message)
}

// Default returns the configuration with every default applied.
func Default() *Config {
	cfg, err := Parse("", nil)
	if err != nil {
		// The embedded schema is fixed; failing here is a build defect.
		panic(err)
	}
	return cfg
}

// Load reads the CUE file at path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse("", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, data)
}

// Parse unifies src with the schema and decodes the result. filename is
// used in error positions only.
func Parse(filename string, src []byte) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &ConfigError{Path: "schema.cue", Message: cueerrors.Details(err, nil)}
	}
	value := schema.LookupPath(cue.ParsePath("#Config"))

	if len(src) > 0 {
		file := ctx.CompileBytes(src, cue.Filename(filename))
		if err := file.Err(); err != nil {
			return nil, &ConfigError{Path: filename, Message: cueerrors.Details(err, nil)}
		}
		value = value.Unify(file)
	}

	if err := value.Validate(); err != nil {
		return nil, &ConfigError{Path: filename, Message: cueerrors.Details(err, nil)}
	}
	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, &ConfigError{Path: filename, Message: cueerrors.Details(err, nil)}
	}
	return &cfg, nil
}

// LoadEnv reads .env style files into the process environment. Missing
// files are ignored; with no arguments ".env" is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from the environment and re-checks them.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvJournal); ok {
		c.Journal = v
	}
	if v, ok := os.LookupEnv(EnvRedisAddr); ok {
		c.Redis.Addr = v
	}
	if v, ok := os.LookupEnv(EnvListen); ok && v != "" {
		c.Listen = v
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return &ConfigError{Path: EnvLogLevel, Message: err.Error()}
	}
	return nil
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// NewLogger builds a logger writing to w in the configured format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ContestOptions returns the contest options implied by the configuration.
func (c *Config) ContestOptions() []contest.Option {
	var opts []contest.Option
	if mode, ok := ranking.ParseMode(c.Scoring); ok {
		opts = append(opts, contest.WithScoring(mode))
	}
	if policy, ok := contest.ParseHiddenPolicy(c.HiddenPolicy); ok {
		opts = append(opts, contest.WithHiddenPolicy(policy))
	}
	return opts
}
