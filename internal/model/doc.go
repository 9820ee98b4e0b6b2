// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the conversation and
// payment layers.
//
// # Key Types
//
//   - Message: a single immutable conversation turn (author, text, markup, time)
//   - Transcript: append-only ordered sequence of messages
//   - Actions: side-effect payload an assistant reply may carry
//   - Plan: a subscription plan from the catalog
//   - Role: message author enumeration (user, assistant)
//
// # Usage
//
//	var t model.Transcript
//	t.Append(model.NewMessage(model.RoleUser, "quero o plano premium", markup))
//	for _, m := range t.Messages() {
//	    fmt.Println(m.Role.DisplayName(), m.Text)
//	}
package model
