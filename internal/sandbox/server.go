// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jeranaias/paychat/internal/backend"
	"github.com/jeranaias/paychat/internal/config"
	"github.com/jeranaias/paychat/internal/model"
)

// Response messages, as the production backend words them.
const (
	msgInvalidJSON       = "Erro ao processar a mensagem. Formato JSON inválido."
	msgInvalidPayment    = "Erro ao processar a requisição. Formato JSON inválido."
	msgMissingMethodPlan = "Método de pagamento e plano são obrigatórios"
	msgUnknownMethod     = "Método de pagamento não suportado"
	msgUnknownPlan       = "Plano não encontrado"
	msgMissingField      = "Campo obrigatório ausente: %s"
	msgCardApproved      = "Pagamento com cartão aprovado"
	msgCardDeclined      = "Pagamento recusado: saldo insuficiente"
	msgPixStarted        = "Pagamento PIX iniciado com sucesso"
	msgBoletoIssued      = "Boleto gerado com sucesso"
	msgMissingTxID       = "ID da transação é obrigatório"
	msgUnknownTx         = "Transação não encontrada"
)

// DeclinedCardSuffix makes a card number decline.
const DeclinedCardSuffix = "0002"

// requiredCardFields are checked in order; the first missing one is reported.
var requiredCardFields = []string{"numero_cartao", "validade", "cvv", "nome_cartao"}

// ============================================================================
// SERVER
// ============================================================================

// Server is the sandbox HTTP backend.
type Server struct {
	cfg    config.SandboxConfig
	ledger *Ledger
	dialog *Dialog
	logger *slog.Logger
	router chi.Router
	start  time.Time

	server *http.Server
}

// New creates a sandbox server from cfg.
func New(cfg config.SandboxConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	ledger := NewLedger(cfg.ApproveAfterChecks)
	s := &Server{
		cfg:    cfg,
		ledger: ledger,
		dialog: NewDialog(ledger),
		logger: logger.With("component", "sandbox"),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// Ledger exposes the transaction ledger.
func (s *Server) Ledger() *Ledger {
	return s.ledger
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware(s.logger))
	r.Use(chiMiddleware.RealIP)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(SecurityHeadersMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", CSRFHeader, "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(RateLimitMiddleware(NewRateLimiter(20, 40)))
	r.Use(SessionMiddleware)
	r.Use(CSRFMiddleware(s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Post(backend.PathAssistant, s.handleAssistant)
	r.Post(backend.PathPayment, s.handlePayment)
	r.Get(backend.PathStatus, s.handleStatus)

	s.router = r
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"servico": "assistente de pagamentos (sandbox)",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.start).Seconds()),
	})
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req backend.AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusOK, backend.AssistantReply{Text: msgInvalidJSON})
		return
	}

	reply, err := s.dialog.Reply(SessionFromContext(r.Context()), req.Message)
	if err != nil {
		s.logger.Error("assistant reply failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, reply)
}

// paymentBody keeps the card fields loose so missing ones can be named.
type paymentBody struct {
	Method string            `json:"metodo"`
	PlanID string            `json:"plano_id"`
	Card   map[string]string `json:"dados_pagamento"`
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusOK, backend.PaymentResult{Message: msgInvalidPayment})
		return
	}
	session := SessionFromContext(r.Context())

	if req.Method == "" || req.PlanID == "" {
		s.writeJSON(w, http.StatusOK, backend.PaymentResult{Message: msgMissingMethodPlan})
		return
	}
	plan, ok := model.GetPlan(req.PlanID)
	if !ok {
		s.writeJSON(w, http.StatusOK, backend.PaymentResult{Message: msgUnknownPlan})
		return
	}

	switch req.Method {
	case "pix":
		tx := s.ledger.Create(session, "pix", plan.ID, StatusPending)
		s.writeJSON(w, http.StatusOK, pendingResult(msgPixStarted, tx))
	case "boleto":
		tx := s.ledger.Create(session, "boleto", plan.ID, StatusPending)
		s.writeJSON(w, http.StatusOK, pendingResult(msgBoletoIssued, tx))
	case backend.MethodCard:
		s.writeJSON(w, http.StatusOK, s.chargeCard(session, plan.ID, req.Card))
	default:
		s.writeJSON(w, http.StatusOK, backend.PaymentResult{Message: msgUnknownMethod})
	}
}

func (s *Server) chargeCard(session, planID string, card map[string]string) backend.PaymentResult {
	for _, field := range requiredCardFields {
		if strings.TrimSpace(card[field]) == "" {
			return backend.PaymentResult{Message: fmt.Sprintf(msgMissingField, field)}
		}
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, card["numero_cartao"])

	if strings.HasSuffix(digits, DeclinedCardSuffix) {
		tx := s.ledger.Create(session, backend.MethodCard, planID, StatusDeclined)
		s.logger.Info("card declined", "transaction_id", tx.ID, "plan", planID)
		return backend.PaymentResult{
			Message: msgCardDeclined,
			Data:    &backend.PaymentData{TransactionID: tx.ID, Status: StatusDeclined},
		}
	}

	tx := s.ledger.Create(session, backend.MethodCard, planID, StatusApproved)
	s.logger.Info("card approved", "transaction_id", tx.ID, "plan", planID)
	return backend.PaymentResult{
		Success: true,
		Message: msgCardApproved,
		Data:    &backend.PaymentData{TransactionID: tx.ID, Status: StatusApproved},
	}
}

func pendingResult(msg string, tx Transaction) backend.PaymentResult {
	return backend.PaymentResult{
		Success: true,
		Message: msg,
		Data:    &backend.PaymentData{TransactionID: tx.ID, Status: tx.Status},
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("transaction_id")
	if id == "" {
		s.writeJSON(w, http.StatusOK, backend.StatusResult{Message: msgMissingTxID})
		return
	}

	tx, ok := s.ledger.Check(id)
	if !ok {
		s.writeJSON(w, http.StatusOK, backend.StatusResult{Message: msgUnknownTx})
		return
	}
	s.writeJSON(w, http.StatusOK, backend.StatusResult{
		Success: true,
		Data:    &backend.StatusData{Status: tx.Status},
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("sandbox listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("sandbox listening", "addr", ln.Addr().String())
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("sandbox shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("sandbox shutdown: %w", err)
	}
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}
