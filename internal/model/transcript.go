// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Transcript is the append-only ordered list of messages of one session.
// Ordering is append order. The zero value is ready to use. Transcript is not
// safe for concurrent use; owners guard it.
type Transcript struct {
	messages []Message
}

// Append adds a message at the end of the transcript.
func (t *Transcript) Append(m Message) {
	t.messages = append(t.messages, m)
}

// Messages returns a copy of the messages in order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Clear drops every message. It is only used when the user starts a new
// conversation.
func (t *Transcript) Clear() {
	t.messages = nil
}
