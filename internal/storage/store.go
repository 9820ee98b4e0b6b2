// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/jeranaias/paychat/internal/model"
)

// Keys of the persisted session values.
const (
	KeyLastTransactionID = "lastTransactionId"
	KeySelectedPlan      = "selectedPlan"
	KeyDarkTheme         = "darkTheme"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Close releases resources held by the store.
	Close() error
}

// =============================================================================
// TYPED PREFERENCES
// =============================================================================

// Prefs provides typed access to the persisted session values. Read errors
// are logged and treated as "absent" so a broken store never blocks the
// conversation.
type Prefs struct {
	store Store
}

// NewPrefs wraps a store.
func NewPrefs(store Store) *Prefs {
	return &Prefs{store: store}
}

// LastTransactionID returns the id of the most recent payment, if any.
func (p *Prefs) LastTransactionID() (string, bool) {
	v, ok := p.get(KeyLastTransactionID)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SetLastTransactionID persists the id of the most recent payment.
func (p *Prefs) SetLastTransactionID(id string) error {
	return p.store.Set(KeyLastTransactionID, id)
}

// SelectedPlan returns the selected plan id, or the default plan.
func (p *Prefs) SelectedPlan() string {
	v, ok := p.get(KeySelectedPlan)
	if !ok || v == "" {
		return model.DefaultPlanID
	}
	return v
}

// SetSelectedPlan persists the plan the user is buying.
func (p *Prefs) SetSelectedPlan(id string) error {
	return p.store.Set(KeySelectedPlan, id)
}

// DarkTheme returns the persisted theme preference and whether one exists.
func (p *Prefs) DarkTheme() (dark bool, ok bool) {
	v, ok := p.get(KeyDarkTheme)
	if !ok {
		return false, false
	}
	dark, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return dark, true
}

// SetDarkTheme persists the theme preference.
func (p *Prefs) SetDarkTheme(dark bool) error {
	return p.store.Set(KeyDarkTheme, strconv.FormatBool(dark))
}

func (p *Prefs) get(key string) (string, bool) {
	v, ok, err := p.store.Get(key)
	if err != nil {
		slog.Warn("storage read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}
