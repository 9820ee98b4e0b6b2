// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session wires the components of one client session together.
//
// A Session owns the persistent store, the backend client, the transcript
// renderer, the dialogue and payment controllers and the status poller.
// Front-ends (the TUI and the line-mode REPL) open one session, read its
// components and close it on exit.
//
// # Usage
//
//	s, err := session.Open(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	s.Start(ctx)
//	s.Dialogue.Send("quero o plano premium")
//
// Reset clears the conversation and the payment panel but keeps the
// persisted transaction id and plan.
package session
