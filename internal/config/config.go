// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/paychat/internal/model"
	"github.com/jeranaias/paychat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete paychat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend endpoint and request policy
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Assistant reply pacing
	Dialogue DialogueConfig `toml:"dialogue" json:"dialogue"`

	// Payment flow settings
	Payment PaymentConfig `toml:"payment" json:"payment"`

	// Client-persisted state
	Storage StorageConfig `toml:"storage" json:"storage"`

	UI  UIConfig  `toml:"ui" json:"ui"`
	Log LogConfig `toml:"log" json:"log"`

	// Local development backend
	Sandbox SandboxConfig `toml:"sandbox" json:"sandbox"`
}

// BackendConfig describes how the backend is reached.
type BackendConfig struct {
	BaseURL             string `toml:"base_url" json:"base_url"`
	CSRFCookie          string `toml:"csrf_cookie" json:"csrf_cookie"`
	CSRFHeader          string `toml:"csrf_header" json:"csrf_header"`
	DialogueTimeoutSecs int    `toml:"dialogue_timeout_secs" json:"dialogue_timeout_secs"`
	PaymentTimeoutSecs  int    `toml:"payment_timeout_secs" json:"payment_timeout_secs"`
	// PrimeOnStart issues GET / at startup so the backend can set the
	// anti-forgery cookie.
	PrimeOnStart bool `toml:"prime_on_start" json:"prime_on_start"`
}

// DialogueTimeout returns the assistant request timeout.
func (b BackendConfig) DialogueTimeout() time.Duration {
	return time.Duration(b.DialogueTimeoutSecs) * time.Second
}

// PaymentTimeout returns the payment and status request timeout.
func (b BackendConfig) PaymentTimeout() time.Duration {
	return time.Duration(b.PaymentTimeoutSecs) * time.Second
}

// DialogueConfig controls the pause before replies are shown.
type DialogueConfig struct {
	ReplyDelayMinMs int `toml:"reply_delay_min_ms" json:"reply_delay_min_ms"`
	ReplyDelayMaxMs int `toml:"reply_delay_max_ms" json:"reply_delay_max_ms"`
	FailureDelayMs  int `toml:"failure_delay_ms" json:"failure_delay_ms"`
}

// PaymentConfig holds payment flow settings.
type PaymentConfig struct {
	DefaultPlan string `toml:"default_plan" json:"default_plan"`
	// PollIntervalSecs is the period of automatic status checks while a
	// payment awaits confirmation. Zero disables polling.
	PollIntervalSecs int `toml:"poll_interval_secs" json:"poll_interval_secs"`
}

// PollInterval returns the status polling period.
func (p PaymentConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalSecs) * time.Second
}

// StorageConfig selects where session values are persisted.
type StorageConfig struct {
	// Path of the SQLite database; empty means ~/.paychat/paychat.db.
	Path string `toml:"path" json:"path"`
	// Ephemeral keeps everything in memory.
	Ephemeral bool `toml:"ephemeral" json:"ephemeral"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	Theme          string `toml:"theme" json:"theme"` // "auto", "dark", "light"
	Markdown       bool   `toml:"markdown" json:"markdown"`
	ShowTimestamps bool   `toml:"show_timestamps" json:"show_timestamps"`
}

// LogConfig configures the log file.
type LogConfig struct {
	// File is the log path; empty means ~/.paychat/paychat.log.
	File  string `toml:"file" json:"file"`
	Level string `toml:"level" json:"level"`
}

// SandboxConfig configures the local development backend.
type SandboxConfig struct {
	Addr           string   `toml:"addr" json:"addr"`
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
	// ApproveAfterChecks is the number of status checks a PIX or boleto
	// transaction stays pending before it is approved.
	ApproveAfterChecks int `toml:"approve_after_checks" json:"approve_after_checks"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			BaseURL:             "http://127.0.0.1:8000",
			CSRFCookie:          "csrftoken",
			CSRFHeader:          "X-CSRFToken",
			DialogueTimeoutSecs: 15,
			PaymentTimeoutSecs:  30,
			PrimeOnStart:        true,
		},

		Dialogue: DialogueConfig{
			ReplyDelayMinMs: 500,
			ReplyDelayMaxMs: 1500,
			FailureDelayMs:  500,
		},

		Payment: PaymentConfig{
			DefaultPlan:      model.DefaultPlanID,
			PollIntervalSecs: 30,
		},

		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
		},

		Log: LogConfig{
			Level: "info",
		},

		Sandbox: SandboxConfig{
			Addr:               "127.0.0.1:8000",
			AllowedOrigins:     []string{"http://localhost:*", "http://127.0.0.1:*"},
			ApproveAfterChecks: 2,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the paychat configuration directory path. PAYCHAT_HOME
// overrides the default ~/.paychat.
func ConfigDir() (string, error) {
	if dir := os.Getenv("PAYCHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".paychat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ActivePath returns the file Load reads: config.toml, or config.json when
// only that one exists. A fresh install gets the TOML path.
func ActivePath() (string, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); errors.Is(err, os.ErrNotExist) {
		if jsonPath, err := ConfigPathJSON(); err == nil {
			if _, err := os.Stat(jsonPath); err == nil {
				return jsonPath, nil
			}
		}
	}
	return tomlPath, nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// StoragePath returns the resolved SQLite database path.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "paychat.db"), nil
}

// LogPath returns the resolved log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "paychat.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path on top of the
// defaults, then applies environment overrides and validates.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// normalize canonicalizes values that have several accepted spellings.
func (c *Config) normalize() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if plan, ok := model.GetPlan(c.Payment.DefaultPlan); ok {
		c.Payment.DefaultPlan = plan.ID
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to ActivePath, keeping the file's format.
func Save(cfg *Config) error {
	path, err := ActivePath()
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".json") {
		return SaveJSON(cfg, path)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# paychat configuration file\n")
	b.WriteString("# Environment variables (PAYCHAT_*) override these values.\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// maxTimeoutSecs bounds request timeouts; a hung request must not block a
// payment flow forever.
const maxTimeoutSecs = 300

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Backend
	if u, err := url.Parse(c.Backend.BaseURL); err != nil {
		add("backend.base_url", "invalid URL: %v", err)
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("backend.base_url", "must be an absolute http(s) URL, got '%s'", c.Backend.BaseURL)
	}
	if c.Backend.CSRFCookie == "" {
		add("backend.csrf_cookie", "cannot be empty")
	}
	if c.Backend.CSRFHeader == "" {
		add("backend.csrf_header", "cannot be empty")
	}
	if c.Backend.DialogueTimeoutSecs <= 0 || c.Backend.DialogueTimeoutSecs > maxTimeoutSecs {
		add("backend.dialogue_timeout_secs", "must be between 1 and %d", maxTimeoutSecs)
	}
	if c.Backend.PaymentTimeoutSecs <= 0 || c.Backend.PaymentTimeoutSecs > maxTimeoutSecs {
		add("backend.payment_timeout_secs", "must be between 1 and %d", maxTimeoutSecs)
	}

	// Dialogue
	if c.Dialogue.ReplyDelayMinMs < 0 || c.Dialogue.ReplyDelayMaxMs < 0 || c.Dialogue.FailureDelayMs < 0 {
		add("dialogue", "delays cannot be negative")
	}
	if c.Dialogue.ReplyDelayMaxMs < c.Dialogue.ReplyDelayMinMs {
		add("dialogue.reply_delay_max_ms", "must not be below reply_delay_min_ms")
	}

	// Payment
	if _, ok := model.GetPlan(c.Payment.DefaultPlan); !ok {
		add("payment.default_plan", "unknown plan '%s', must be one of: %s",
			c.Payment.DefaultPlan, strings.Join(model.PlanIDs(), ", "))
	}
	if c.Payment.PollIntervalSecs < 0 {
		add("payment.poll_interval_secs", "cannot be negative")
	}

	// UI
	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}

	// Log
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	// Sandbox
	if c.Sandbox.Addr == "" {
		add("sandbox.addr", "cannot be empty")
	}
	if c.Sandbox.ApproveAfterChecks < 0 {
		add("sandbox.approve_after_checks", "cannot be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PAYCHAT_BASE_URL: overrides backend.base_url
//   - PAYCHAT_PLAN: overrides payment.default_plan
//   - PAYCHAT_POLL_INTERVAL: overrides payment.poll_interval_secs
//   - PAYCHAT_DB: overrides storage.path
//   - PAYCHAT_EPHEMERAL: set to "1" or "true" to keep state in memory
//   - PAYCHAT_THEME: overrides ui.theme
//   - PAYCHAT_LOG_FILE: overrides log.file
//   - PAYCHAT_LOG_LEVEL: overrides log.level
//   - PAYCHAT_SANDBOX_ADDR: overrides sandbox.addr
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PAYCHAT_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("PAYCHAT_PLAN"); v != "" {
		c.Payment.DefaultPlan = v
	}
	if v := os.Getenv("PAYCHAT_POLL_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Payment.PollIntervalSecs = secs
		}
	}
	if v := os.Getenv("PAYCHAT_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("PAYCHAT_EPHEMERAL"); v != "" {
		c.Storage.Ephemeral = v == "1" || strings.ToLower(v) == "true"
	}
	if v := os.Getenv("PAYCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("PAYCHAT_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("PAYCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PAYCHAT_SANDBOX_ADDR"); v != "" {
		c.Sandbox.Addr = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"backend.base_url",
		"backend.csrf_cookie",
		"backend.csrf_header",
		"backend.dialogue_timeout_secs",
		"backend.payment_timeout_secs",
		"backend.prime_on_start",
		"dialogue.reply_delay_min_ms",
		"dialogue.reply_delay_max_ms",
		"dialogue.failure_delay_ms",
		"payment.default_plan",
		"payment.poll_interval_secs",
		"storage.path",
		"storage.ephemeral",
		"ui.theme",
		"ui.markdown",
		"ui.show_timestamps",
		"log.file",
		"log.level",
		"sandbox.addr",
		"sandbox.allowed_origins",
		"sandbox.approve_after_checks",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Sandbox.AllowedOrigins != nil {
		clone.Sandbox.AllowedOrigins = append([]string(nil), c.Sandbox.AllowedOrigins...)
	}
	return &clone
}

// String returns the config as indented JSON for display.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk and returns it.
// On error the current global configuration is kept. Thread-safe.
func ReloadGlobal() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	SetGlobal(cfg)
	return cfg, nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
