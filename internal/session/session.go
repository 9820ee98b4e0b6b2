// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/paychat/internal/backend"
	"github.com/jeranaias/paychat/internal/config"
	"github.com/jeranaias/paychat/internal/dialogue"
	"github.com/jeranaias/paychat/internal/notify"
	"github.com/jeranaias/paychat/internal/payment"
	"github.com/jeranaias/paychat/internal/storage"
	"github.com/jeranaias/paychat/internal/transcript"
)

// Greeting is the first assistant message of every conversation.
const Greeting = "Olá! Sou o Assistente Virtual de Pagamentos. Como posso ajudar você hoje?"

// NoteStorageFallback is shown when the persistent store cannot be opened.
const NoteStorageFallback = "Não foi possível abrir o armazenamento local; os dados desta sessão não serão salvos."

// =============================================================================
// SESSION
// =============================================================================

// Session is one running client session.
type Session struct {
	ID        string
	StartTime time.Time

	Prefs      *storage.Prefs
	Client     *backend.Client
	Toasts     *notify.Manager
	Transcript *transcript.Renderer
	Dialogue   *dialogue.Controller
	Payment    *payment.Controller
	Poller     *payment.Poller

	cfg    *config.Config
	store  storage.Store
	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	closed  bool
}

// Open builds a session from cfg. Nothing touches the network until Start.
func Open(cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
		cfg:       cfg,
	}
	s.logger = logger.With("session", s.ID)

	client, err := backend.New(cfg.Backend.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}
	s.Client = client.
		WithTimeouts(cfg.Backend.DialogueTimeout(), cfg.Backend.PaymentTimeout()).
		WithCSRF(cfg.Backend.CSRFCookie, cfg.Backend.CSRFHeader).
		WithLogger(s.logger)

	s.Toasts = notify.NewManager()
	s.store = s.openStore()
	s.Prefs = storage.NewPrefs(s.store)
	s.seedPlan()

	s.Transcript = transcript.NewRenderer()
	s.Payment = payment.NewController(s.Client, s.Prefs, s.Transcript, s.Toasts,
		payment.WithLogger(s.logger))
	s.Transcript.SetEffectHandler(s.Payment)

	s.Dialogue = dialogue.New(s.Client, s.Transcript,
		dialogue.WithDelays(dialogue.Delays{
			ReplyMin: time.Duration(cfg.Dialogue.ReplyDelayMinMs) * time.Millisecond,
			ReplyMax: time.Duration(cfg.Dialogue.ReplyDelayMaxMs) * time.Millisecond,
			Failure:  time.Duration(cfg.Dialogue.FailureDelayMs) * time.Millisecond,
		}),
		dialogue.WithLogger(s.logger))

	s.Poller = payment.NewPoller(s.Payment, cfg.Payment.PollInterval())

	s.logger.Info("session opened",
		"backend", s.Client.BaseURL(),
		"ephemeral", cfg.Storage.Ephemeral,
		"poll_interval", s.Poller.Interval())
	return s, nil
}

// openStore opens the SQLite store, falling back to memory on failure.
func (s *Session) openStore() storage.Store {
	if s.cfg.Storage.Ephemeral {
		return storage.NewMemoryStore()
	}

	path, err := s.cfg.StoragePath()
	if err == nil {
		var db *storage.SQLiteStore
		if db, err = storage.OpenSQLite(path); err == nil {
			return db
		}
	}
	s.logger.Warn("persistent store unavailable, using memory", "error", err)
	s.Toasts.Warning(NoteStorageFallback)
	return storage.NewMemoryStore()
}

// seedPlan stores the configured default plan unless a plan was already
// chosen in an earlier session.
func (s *Session) seedPlan() {
	if _, ok, err := s.store.Get(storage.KeySelectedPlan); err == nil && ok {
		return
	}
	if err := s.Prefs.SetSelectedPlan(s.cfg.Payment.DefaultPlan); err != nil {
		s.logger.Warn("failed to seed selected plan", "error", err)
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start greets the user, primes the backend cookies and starts the poller.
// Calling Start more than once has no effect.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.Greet()

	if s.cfg.Backend.PrimeOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.Client.Prime(ctx); err != nil {
				s.logger.Warn("backend prime failed", "error", err)
				return
			}
			_, ok := s.Client.CSRFToken()
			s.logger.Debug("backend primed", "csrf", ok)
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Poller.Run(ctx)
	}()
}

// Greet appends the greeting when the transcript is empty.
func (s *Session) Greet() {
	if s.Transcript.Len() == 0 {
		s.Transcript.AppendAssistant(Greeting, nil)
	}
}

// Reset clears the conversation, discards pending replies and closes the
// payment panel. Persisted values survive.
func (s *Session) Reset() {
	s.Dialogue.Reset()
	s.Payment.Dismiss()
	s.Transcript.Clear()
	s.Toasts.Clear()
	s.Greet()
	s.logger.Info("conversation reset")
}

// Duration returns how long the session has been open.
func (s *Session) Duration() time.Duration {
	return time.Since(s.StartTime)
}

// Close stops background work and releases the store. It is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.Dialogue.Close()
	s.wg.Wait()

	s.logger.Info("session closed", "duration", s.Duration().Round(time.Second))
	return s.store.Close()
}
