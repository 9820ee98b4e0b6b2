// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript owns the visible conversation: the ordered message list,
// the single "assistant is composing" indicator and the scroll position.
//
// The Renderer is the only writer of the transcript. Front-ends read it
// through Snapshot and redraw when an OnChange listener fires.
package transcript

import (
	"sync"

	"github.com/jeranaias/paychat/internal/format"
	"github.com/jeranaias/paychat/internal/model"
)

// EffectHandler receives the side-effect payload of an assistant reply.
type EffectHandler interface {
	ApplyActions(actions *model.Actions)
}

// Snapshot is a consistent, read-only view of the renderer state.
type Snapshot struct {
	Messages  []model.Message
	Composing bool
	// ScrollSeq increases every time the view should jump to the latest
	// message. Front-ends compare it to the value they last honoured.
	ScrollSeq uint64
}

// Renderer appends messages to the transcript and tracks the composing
// indicator. It is safe for concurrent use.
type Renderer struct {
	mu         sync.Mutex
	transcript model.Transcript
	composing  bool
	scrollSeq  uint64

	handler   EffectHandler
	listeners []func()
}

// NewRenderer creates an empty renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// SetEffectHandler registers the component that interprets reply actions.
func (r *Renderer) SetEffectHandler(h EffectHandler) {
	r.mu.Lock()
	r.handler = h
	r.mu.Unlock()
}

// OnChange registers fn to be called after every visible change.
// Listeners run outside the renderer lock and must not block.
func (r *Renderer) OnChange(fn func()) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// AppendUser escapes text and appends it as a user turn.
func (r *Renderer) AppendUser(text string) model.Message {
	msg := model.NewMessage(model.RoleUser, text, format.User(text))

	r.mu.Lock()
	r.transcript.Append(msg)
	r.scrollSeq++
	r.mu.Unlock()

	r.notify()
	return msg
}

// AppendAssistant hides the composing indicator, appends the formatted
// reply, hands actions to the effect handler and scrolls to the latest turn.
func (r *Renderer) AppendAssistant(text string, actions *model.Actions) model.Message {
	msg := model.NewMessage(model.RoleAssistant, text, format.Assistant(text))

	r.mu.Lock()
	r.composing = false
	r.transcript.Append(msg)
	handler := r.handler
	r.mu.Unlock()

	if handler != nil && !actions.IsEmpty() {
		handler.ApplyActions(actions)
	}

	r.ScrollToLatest()
	return msg
}

// ShowComposing shows the composing indicator. At most one indicator exists;
// calling this while it is shown changes nothing.
func (r *Renderer) ShowComposing() {
	r.mu.Lock()
	if r.composing {
		r.mu.Unlock()
		return
	}
	r.composing = true
	r.scrollSeq++
	r.mu.Unlock()

	r.notify()
}

// HideComposing removes the composing indicator if present.
func (r *Renderer) HideComposing() {
	r.mu.Lock()
	if !r.composing {
		r.mu.Unlock()
		return
	}
	r.composing = false
	r.mu.Unlock()

	r.notify()
}

// Composing reports whether the indicator is shown.
func (r *Renderer) Composing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.composing
}

// ScrollToLatest asks front-ends to bring the newest content into view.
func (r *Renderer) ScrollToLatest() {
	r.mu.Lock()
	r.scrollSeq++
	r.mu.Unlock()

	r.notify()
}

// Snapshot returns a copy of the current state.
func (r *Renderer) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Messages:  r.transcript.Messages(),
		Composing: r.composing,
		ScrollSeq: r.scrollSeq,
	}
}

// Len returns the number of messages in the transcript.
func (r *Renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcript.Len()
}

// Clear starts a new conversation: every message and the indicator are gone.
func (r *Renderer) Clear() {
	r.mu.Lock()
	r.transcript.Clear()
	r.composing = false
	r.scrollSeq++
	r.mu.Unlock()

	r.notify()
}

func (r *Renderer) notify() {
	r.mu.Lock()
	listeners := make([]func(), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
