// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the paychat command line: argument parsing, the
// line-mode chat REPL, one-shot status checks, the config command and the
// local sandbox backend.
//
// Usage:
//
//	paychat                    start the TUI (default)
//	paychat chat               line-mode chat
//	paychat status [--json]    check the last transaction
//	paychat sandbox [--addr]   run the local sandbox backend
//	paychat config [show|get|set|path]
//	paychat version
package cli
