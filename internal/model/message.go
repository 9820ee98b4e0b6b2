// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the label shown next to a message.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Você"
	case RoleAssistant:
		return "Assistente"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single conversation turn. Messages are values and are never
// modified after they are appended to a Transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Markup    string    `json:"markup"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the current wall-clock time.
func NewMessage(role Role, text, markup string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Markup:    markup,
		Timestamp: time.Now(),
	}
}

// IsUser returns true if the message was written by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant returns true if the message was written by the assistant.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// FormattedTime returns the display timestamp (HH:MM).
func (m Message) FormattedTime() string {
	return m.Timestamp.Format("15:04")
}
