// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dialogue sends user messages to the assistant endpoint and renders
// the replies.
//
// Messages are queued and answered strictly in order by a single worker, so
// a user typing faster than the assistant answers never loses a turn. The
// composing indicator stays visible while anything is queued or in flight.
//
// Replies are shown after a short randomized pause; failures are reported
// in the conversation with a generic apology.
package dialogue
