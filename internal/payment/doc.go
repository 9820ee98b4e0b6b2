// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package payment drives the payment sub-flow of a conversation.
//
// # State Machine
//
//	Idle ──SelectMethod──▶ MethodSelected
//	  │                         │
//	  ├──PresentCardForm──▶ CollectingCredentials ──Submit──▶ Submitting
//	  │                                                         │
//	  │                              ┌──────────────┬───────────┤
//	  │                              ▼              ▼           ▼
//	  │                          Approved       Declined      Failed
//	  │                                             └──Retry──┘ (empty form)
//	  │
//	  └──PresentInstantTransfer / PresentBankSlip──▶ AwaitingConfirmation
//	                      CheckStatus: approved ──▶ Approved
//	                                   other    ──▶ AwaitingConfirmation
//
// Dismiss returns to Idle from any state. The last transaction id is
// persisted independently of the in-memory session so a status check still
// works after a restart.
//
// # Views
//
// Controller.View is a pure projection of the controller state. Front-ends
// redraw it whenever an OnChange listener fires and never keep their own copy
// of payment state.
//
// # Concurrency
//
// All operations are safe for concurrent use. Exactly one card submission
// and one status check may be in flight; concurrent attempts are rejected.
// The controller never calls its collaborators while holding its lock.
package payment
