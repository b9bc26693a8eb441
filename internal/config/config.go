// Package config provides Viper-based configuration loading for the game.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File optionally mirrors log output to a file in addition to stderr.
	File string `mapstructure:"file"`
}

// ContentConfig holds the directories game content is loaded from.
type ContentConfig struct {
	ItemsDir   string `mapstructure:"items_dir"`
	SpellsDir  string `mapstructure:"spells_dir"`
	NPCsDir    string `mapstructure:"npcs_dir"`
	ClassesDir string `mapstructure:"classes_dir"`
	RacesDir   string `mapstructure:"races_dir"`
}

// GameConfig holds combat engine tuning.
type GameConfig struct {
	// UnarmedDice is the damage notation for unarmed attacks.
	UnarmedDice string `mapstructure:"unarmed_dice"`
	// CritSuccessAt / CritFailureAt override the d20 critical thresholds;
	// 0 keeps the defaults (20 and 1).
	CritSuccessAt int `mapstructure:"crit_success_at"`
	CritFailureAt int `mapstructure:"crit_failure_at"`
	// ScriptInstructionLimit caps Lua opcodes per effect hook; 0 keeps the
	// scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// NarrationConfig holds AI narration settings. The API key is never read
// from the config file; it comes from the environment.
type NarrationConfig struct {
	// Enabled switches model-backed narration on; templates are used when off.
	Enabled bool `mapstructure:"enabled"`
	// Model is the Anthropic model identifier.
	Model string `mapstructure:"model"`
	// MaxTokens bounds the length of one narration.
	MaxTokens int64 `mapstructure:"max_tokens"`
	// Buffer is the narration event queue depth.
	Buffer int `mapstructure:"buffer"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Content   ContentConfig   `mapstructure:"content"`
	Game      GameConfig      `mapstructure:"game"`
	Narration NarrationConfig `mapstructure:"narration"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateNarration(c.Narration); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	for field, dir := range map[string]string{
		"content.items_dir":   c.ItemsDir,
		"content.spells_dir":  c.SpellsDir,
		"content.npcs_dir":    c.NPCsDir,
		"content.classes_dir": c.ClassesDir,
		"content.races_dir":   c.RacesDir,
	} {
		if dir == "" {
			errs = append(errs, field+" must not be empty")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.UnarmedDice == "" {
		errs = append(errs, "game.unarmed_dice must not be empty")
	}
	if g.CritSuccessAt < 0 || g.CritSuccessAt > 20 {
		errs = append(errs, fmt.Sprintf("game.crit_success_at must be 0-20, got %d", g.CritSuccessAt))
	}
	if g.CritFailureAt < 0 || g.CritFailureAt > 20 {
		errs = append(errs, fmt.Sprintf("game.crit_failure_at must be 0-20, got %d", g.CritFailureAt))
	}
	if g.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("game.script_instruction_limit must be >= 0, got %d", g.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateNarration(n NarrationConfig) error {
	var errs []string
	if n.Enabled && n.Model == "" {
		errs = append(errs, "narration.model must not be empty when narration is enabled")
	}
	if n.MaxTokens < 0 {
		errs = append(errs, fmt.Sprintf("narration.max_tokens must be >= 0, got %d", n.MaxTokens))
	}
	if n.Buffer < 0 {
		errs = append(errs, fmt.Sprintf("narration.buffer must be >= 0, got %d", n.Buffer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DND_ prefix
	v.SetEnvPrefix("DND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dnd")
	v.SetDefault("database.password", "dnd")
	v.SetDefault("database.name", "dnd")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.items_dir", "content/items")
	v.SetDefault("content.spells_dir", "content/spells")
	v.SetDefault("content.npcs_dir", "content/npcs")
	v.SetDefault("content.classes_dir", "content/classes")
	v.SetDefault("content.races_dir", "content/races")

	v.SetDefault("game.unarmed_dice", "1d4")
	v.SetDefault("game.crit_success_at", 20)
	v.SetDefault("game.crit_failure_at", 1)
	v.SetDefault("game.script_instruction_limit", 0)

	v.SetDefault("narration.enabled", false)
	v.SetDefault("narration.model", "claude-sonnet-4-5")
	v.SetDefault("narration.max_tokens", 300)
	v.SetDefault("narration.buffer", 64)
}
