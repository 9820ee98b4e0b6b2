// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/paychat/internal/model"
)

// =============================================================================
// STORE CONTRACT TESTS
// =============================================================================

func testStoreContract(t *testing.T, s Store) {
	t.Helper()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v1"))
	require.NoError(t, s.Set("k", "v2"))
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete("k"))
	require.NoError(t, s.Delete("k"))
	_, ok, err = s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, _, err = s.Get("k")
	assert.True(t, errors.Is(err, ErrClosed))
	assert.True(t, errors.Is(s.Set("k", "v"), ErrClosed))
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "session.db"))
	require.NoError(t, err)
	testStoreContract(t, s)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, NewPrefs(s).SetLastTransactionID("PIX_basico_1"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	tx, ok := NewPrefs(s).LastTransactionID()
	assert.True(t, ok)
	assert.Equal(t, "PIX_basico_1", tx)
	assert.Equal(t, path, s.Path())
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}

// =============================================================================
// PREFS TESTS
// =============================================================================

func TestPrefs_Defaults(t *testing.T) {
	p := NewPrefs(NewMemoryStore())

	_, ok := p.LastTransactionID()
	assert.False(t, ok)
	assert.Equal(t, model.DefaultPlanID, p.SelectedPlan())
	_, ok = p.DarkTheme()
	assert.False(t, ok)
}

func TestPrefs_RoundTrip(t *testing.T) {
	p := NewPrefs(NewMemoryStore())

	require.NoError(t, p.SetSelectedPlan("premium"))
	require.NoError(t, p.SetDarkTheme(true))
	require.NoError(t, p.SetLastTransactionID("tx-1"))

	assert.Equal(t, "premium", p.SelectedPlan())
	dark, ok := p.DarkTheme()
	assert.True(t, ok)
	assert.True(t, dark)
	tx, _ := p.LastTransactionID()
	assert.Equal(t, "tx-1", tx)
}

func TestPrefs_ClosedStoreReadsAsAbsent(t *testing.T) {
	s := NewMemoryStore()
	p := NewPrefs(s)
	require.NoError(t, p.SetLastTransactionID("tx-1"))
	require.NoError(t, s.Close())

	_, ok := p.LastTransactionID()
	assert.False(t, ok)
	assert.Equal(t, model.DefaultPlanID, p.SelectedPlan())
}
