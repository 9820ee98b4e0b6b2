// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory at a temporary directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PAYCHAT_HOME", dir)
	return dir
}

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal() can be
// safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

// TestConfig_ConcurrentReload tests concurrent ReloadGlobal and Global calls.
func TestConfig_ConcurrentReload(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	_ = Global()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ReloadGlobal()
		}()
	}
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfig_GlobalInitialization(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()

	cfg := Global()
	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.Version)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.BaseURL)
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	_ = Global()

	custom := Default()
	custom.Version = "custom-version"
	SetGlobal(custom)

	assert.Equal(t, "custom-version", Global().Version)
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15*time.Second, cfg.Backend.DialogueTimeout())
	assert.Equal(t, 30*time.Second, cfg.Backend.PaymentTimeout())
	assert.Equal(t, 30*time.Second, cfg.Payment.PollInterval())
	assert.Equal(t, "basico", cfg.Payment.DefaultPlan)
	assert.Equal(t, "csrftoken", cfg.Backend.CSRFCookie)
	assert.Equal(t, "X-CSRFToken", cfg.Backend.CSRFHeader)
	assert.Equal(t, "auto", cfg.UI.Theme)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"relative base url", func(c *Config) { c.Backend.BaseURL = "/api" }, true},
		{"ftp base url", func(c *Config) { c.Backend.BaseURL = "ftp://host" }, true},
		{"https base url", func(c *Config) { c.Backend.BaseURL = "https://pay.example.com" }, false},
		{"empty csrf cookie", func(c *Config) { c.Backend.CSRFCookie = "" }, true},
		{"zero dialogue timeout", func(c *Config) { c.Backend.DialogueTimeoutSecs = 0 }, true},
		{"huge payment timeout", func(c *Config) { c.Backend.PaymentTimeoutSecs = 3600 }, true},
		{"inverted delays", func(c *Config) { c.Dialogue.ReplyDelayMinMs = 2000 }, true},
		{"negative failure delay", func(c *Config) { c.Dialogue.FailureDelayMs = -1 }, true},
		{"zero delays", func(c *Config) { c.Dialogue = DialogueConfig{} }, false},
		{"unknown plan", func(c *Config) { c.Payment.DefaultPlan = "gold" }, true},
		{"polling disabled", func(c *Config) { c.Payment.PollIntervalSecs = 0 }, false},
		{"negative poll interval", func(c *Config) { c.Payment.PollIntervalSecs = -5 }, true},
		{"invalid theme", func(c *Config) { c.UI.Theme = "neon" }, true},
		{"invalid log level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"empty sandbox addr", func(c *Config) { c.Sandbox.Addr = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				var verrs ValidateErrors
				require.True(t, errors.As(err, &verrs), "want ValidateErrors, got %v", err)
				assert.NotEmpty(t, verrs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("PAYCHAT_BASE_URL", "https://pay.example.com/")
	t.Setenv("PAYCHAT_PLAN", "Premium")
	t.Setenv("PAYCHAT_POLL_INTERVAL", "5")
	t.Setenv("PAYCHAT_EPHEMERAL", "true")
	t.Setenv("PAYCHAT_THEME", "LIGHT")
	t.Setenv("PAYCHAT_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.normalize()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://pay.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "premium", cfg.Payment.DefaultPlan)
	assert.Equal(t, 5, cfg.Payment.PollIntervalSecs)
	assert.True(t, cfg.Storage.Ephemeral)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfig_LoadTOML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[backend]
base_url = "http://localhost:9000"

[payment]
poll_interval_secs = 10

[ui]
theme = "dark"
`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 10, cfg.Payment.PollIntervalSecs)
	assert.Equal(t, "dark", cfg.UI.Theme)
	// Unset values keep their defaults.
	assert.Equal(t, 30, cfg.Backend.PaymentTimeoutSecs)
}

func TestConfig_LoadJSONFallback(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"payment": {"default_plan": "premium"}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "premium", cfg.Payment.DefaultPlan)
}

func TestConfig_LoadInvalid(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[ui]\ntheme = \"neon\"\n"), 0600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui.theme")
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	cfg.UI.Theme = "light"
	cfg.Sandbox.ApproveAfterChecks = 4

	require.NoError(t, Save(cfg))
	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "light", loaded.UI.Theme)
	assert.Equal(t, 4, loaded.Sandbox.ApproveAfterChecks)

	jsonPath := filepath.Join(dir, "copy.json")
	require.NoError(t, SaveJSON(cfg, jsonPath))
	fromJSON, err := LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Sandbox.AllowedOrigins, fromJSON.Sandbox.AllowedOrigins)
}

func TestConfig_SaveKeepsJSONFormat(t *testing.T) {
	dir := isolate(t)
	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"ui": {"theme": "dark"}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Set("ui.theme", "light"))
	require.NoError(t, Save(cfg))

	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "no TOML file should appear")
	loaded, err := LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "light", loaded.UI.Theme)
}

func TestConfig_ReloadGlobalKeepsCurrentOnError(t *testing.T) {
	dir := isolate(t)
	ResetGlobalForTesting()
	require.Equal(t, "auto", Global().UI.Theme)

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))
	_, err := ReloadGlobal()
	require.Error(t, err)
	assert.Equal(t, "auto", Global().UI.Theme)

	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"dark\"\n"), 0600))
	cfg, err := ReloadGlobal()
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, "dark", Global().UI.Theme)
}

func TestConfig_Paths(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	p, err := cfg.StoragePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "paychat.db"), p)

	cfg.Storage.Path = "/tmp/x.db"
	p, err = cfg.StoragePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", p)

	p, err = cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "paychat.log"), p)
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("backend.base_url")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", val)

	require.NoError(t, cfg.Set("payment.poll_interval_secs", "12"))
	assert.Equal(t, 12, cfg.Payment.PollIntervalSecs)

	require.NoError(t, cfg.Set("storage.ephemeral", "yes"))
	assert.True(t, cfg.Storage.Ephemeral)

	require.NoError(t, cfg.Set("sandbox.allowed_origins", "http://a, http://b"))
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Sandbox.AllowedOrigins)

	_, err = cfg.Get("invalid.key")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("backend.base_url.more", "x"))
}

func TestConfig_AllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestConfig_Clone(t *testing.T) {
	original := Default()
	clone := original.Clone()

	clone.Version = "cloned"
	clone.Sandbox.AllowedOrigins[0] = "http://changed"

	assert.Equal(t, "1.0.0", original.Version)
	assert.Equal(t, "http://localhost:*", original.Sandbox.AllowedOrigins[0])
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := isolate(t)
	ResetGlobalForTesting()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"dark\"\n"), 0600))

	got := make(chan *Config, 4)
	w, err := NewWatcher(path, func(c *Config) { got <- c })
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Invalid content is ignored; the next valid write is delivered.
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0600))

	select {
	case cfg := <-got:
		assert.Equal(t, "light", cfg.UI.Theme)
		assert.Equal(t, "light", Global().UI.Theme)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not deliver the reloaded config")
	}
}
