// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify provides transient, non-blocking notifications ("toasts")
// and the clipboard copy action that reports through them.
//
// Toasts never enter the conversation transcript. Front-ends poll Active on
// a tick and may register OnChange for immediate redraws.
package notify

import (
	"sync"
	"time"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// Kind represents the type of toast notification.
type Kind int

const (
	// KindStatus is an informational toast.
	KindStatus Kind = iota
	// KindError is an error toast.
	KindError
	// KindWarning is a warning toast.
	KindWarning
	// KindSuccess is a success toast.
	KindSuccess
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindWarning:
		return "warning"
	case KindSuccess:
		return "success"
	default:
		return "status"
	}
}

// DefaultDuration is the auto-dismiss duration for status and success toasts.
const DefaultDuration = 3 * time.Second

// ErrorDuration is the auto-dismiss duration for error toasts (longer to read).
const ErrorDuration = 6 * time.Second

// WarningDuration is the auto-dismiss duration for warning toasts.
const WarningDuration = 4 * time.Second

// maxToasts is the number of toasts kept at once.
const maxToasts = 5

// Toast is a single transient notification.
type Toast struct {
	ID        int
	Message   string
	Kind      Kind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the toast should be dismissed.
func (t Toast) IsExpired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// TimeRemaining returns how much time is left before auto-dismiss.
func (t Toast) TimeRemaining(now time.Time) time.Duration {
	remaining := t.Duration - now.Sub(t.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// Manager keeps the active toasts, newest first. It is safe for concurrent
// use.
type Manager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	now       func() time.Time
	listeners []func()
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{nextID: 1, now: time.Now}
}

// OnChange registers fn to be called whenever a toast is added or removed
// explicitly. Expiry is observed by polling Active.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Add shows a toast and returns its id.
func (m *Manager) Add(kind Kind, message string, d time.Duration) int {
	m.mu.Lock()
	t := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: m.now(),
		Duration:  d,
	}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[:maxToasts]
	}
	m.mu.Unlock()

	m.notify()
	return t.ID
}

// Status shows an informational toast.
func (m *Manager) Status(message string) int {
	return m.Add(KindStatus, message, DefaultDuration)
}

// Error shows an error toast.
func (m *Manager) Error(message string) int {
	return m.Add(KindError, message, ErrorDuration)
}

// Warning shows a warning toast.
func (m *Manager) Warning(message string) int {
	return m.Add(KindWarning, message, WarningDuration)
}

// Success shows a success toast.
func (m *Manager) Success(message string) int {
	return m.Add(KindSuccess, message, DefaultDuration)
}

// Remove dismisses a toast by id.
func (m *Manager) Remove(id int) {
	m.mu.Lock()
	removed := false
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			removed = true
			break
		}
	}
	m.mu.Unlock()

	if removed {
		m.notify()
	}
}

// Active drops expired toasts and returns a copy of the remaining ones.
func (m *Manager) Active() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.IsExpired(now) {
			active = append(active, t)
		}
	}
	m.toasts = active

	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Clear removes all toasts.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.toasts = nil
	m.mu.Unlock()

	m.notify()
}

func (m *Manager) notify() {
	m.mu.Lock()
	listeners := make([]func(), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
