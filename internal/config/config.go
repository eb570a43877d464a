// Package config loads the timer's YAML settings file.
//
// A file is decoded strictly (unknown keys are errors), then unified with a
// CUE schema that supplies defaults and rejects out-of-range values. The
// result converts to a pomodoro.Config for the state machine.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pomodoro/internal/pomodoro"
)

//go:embed schema.cue
var schemaCUE string

// File mirrors the YAML document. Nil fields were not set.
type File struct {
	WorkMinutes       *int    `yaml:"work_minutes"`
	ShortBreakMinutes *int    `yaml:"short_break_minutes"`
	LongBreakMinutes  *int    `yaml:"long_break_minutes"`
	LogLevel          *string `yaml:"log_level"`
	Journal           *string `yaml:"journal"`
}

// Config is the effective configuration after defaults are applied.
type Config struct {
	WorkMinutes       int    `json:"work_minutes" yaml:"work_minutes"`
	ShortBreakMinutes int    `json:"short_break_minutes" yaml:"short_break_minutes"`
	LongBreakMinutes  int    `json:"long_break_minutes" yaml:"long_break_minutes"`
	LogLevel          string `json:"log_level" yaml:"log_level"`
	Journal           string `json:"journal,omitempty" yaml:"journal,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		WorkMinutes:       int(pomodoro.DefaultWork / time.Minute),
		ShortBreakMinutes: int(pomodoro.DefaultShortBreak / time.Minute),
		LongBreakMinutes:  int(pomodoro.DefaultLongBreak / time.Minute),
		LogLevel:          "info",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/pomodoro/config.yaml or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "pomodoro", "config.yaml"), nil
}

// Load reads the file at path. A missing file yields Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document and applies schema defaults.
// An empty document is valid and yields Default().
func Parse(data []byte) (Config, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return f.Resolve()
}

// Resolve unifies f with the schema and returns the concrete result.
func (f File) Resolve() (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(f.fields()))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fromCUE(err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, fromCUE(err)
	}
	return cfg, nil
}

// fields returns only the keys that were set, so the schema's defaults
// fill in the rest.
func (f File) fields() map[string]any {
	m := map[string]any{}
	if f.WorkMinutes != nil {
		m["work_minutes"] = *f.WorkMinutes
	}
	if f.ShortBreakMinutes != nil {
		m["short_break_minutes"] = *f.ShortBreakMinutes
	}
	if f.LongBreakMinutes != nil {
		m["long_break_minutes"] = *f.LongBreakMinutes
	}
	if f.LogLevel != nil {
		m["log_level"] = *f.LogLevel
	}
	if f.Journal != nil {
		m["journal"] = *f.Journal
	}
	return m
}

// fromCUE converts the first schema violation to a ConfigError naming the
// offending key.
func fromCUE(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return pomodoro.NewConfigError("config", err.Error())
	}

	first := errs[0]
	var path []string
	for _, p := range first.Path() {
		if strings.HasPrefix(p, "#") {
			continue
		}
		path = append(path, p)
	}
	field := strings.Join(path, ".")
	if field == "" {
		field = "config"
	}

	format, args := first.Msg()
	return pomodoro.NewConfigError(field, fmt.Sprintf(format, args...))
}

// Validate checks a Config that may have been changed after Resolve, for
// example by command-line overrides.
func (c Config) Validate() error {
	minutes := []struct {
		field string
		value int
	}{
		{"work_minutes", c.WorkMinutes},
		{"short_break_minutes", c.ShortBreakMinutes},
		{"long_break_minutes", c.LongBreakMinutes},
	}
	for _, m := range minutes {
		if m.value <= 0 {
			return pomodoro.NewConfigError(m.field, fmt.Sprintf("must be positive, got %d", m.value))
		}
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return pomodoro.NewConfigError("log_level", err.Error())
	}
	return nil
}

// Timer converts the minute values to a state machine configuration.
func (c Config) Timer() pomodoro.Config {
	return pomodoro.Config{
		Work:       time.Duration(c.WorkMinutes) * time.Minute,
		ShortBreak: time.Duration(c.ShortBreakMinutes) * time.Minute,
		LongBreak:  time.Duration(c.LongBreakMinutes) * time.Minute,
		Tick:       pomodoro.DefaultTick,
	}
}

// Level returns the slog level for LogLevel. Unknown names map to Info.
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Save writes c to path as YAML, creating parent directories.
func Save(path string, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
