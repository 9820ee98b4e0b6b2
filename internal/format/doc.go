// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format turns conversation text into display markup.
//
// User text is always HTML-escaped and nothing else. Assistant text gets a
// lightweight markup pass in a fixed order:
//
//  1. http(s) URLs become anchors that open in a new context
//  2. **bold** becomes <strong>
//  3. _italic_ becomes <em>
//  4. newlines become <br>
//
// All functions are pure and deterministic.
package format
