// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the small amount of client state that must
// survive a restart: the last transaction id, the selected plan and the
// theme preference.
//
// # Key Types
//
//   - Store: key/value persistence interface
//   - SQLiteStore: file-backed store (modernc.org/sqlite, no cgo)
//   - MemoryStore: in-process store for tests and ephemeral sessions
//   - Prefs: typed accessors over a Store
//
// # Usage
//
//	store, err := storage.OpenSQLite("~/.paychat/session.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	prefs := storage.NewPrefs(store)
//	tx, ok := prefs.LastTransactionID()
//
// # Storage Location
//
// The default database lives in ~/.paychat/session.db.
package storage
