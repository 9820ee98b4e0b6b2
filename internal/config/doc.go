// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for paychat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation and hot reload.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (PAYCHAT_*), optionally from a .env file
//   - ~/.paychat/config.toml
//   - ~/.paychat/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	timeout := cfg.Backend.PaymentTimeout()
//
// A Watcher reloads the file when it changes and replaces the global
// configuration:
//
//	w, _ := config.NewWatcher(path, func(cfg *config.Config) { ... })
//	go w.Run(ctx)
package config
