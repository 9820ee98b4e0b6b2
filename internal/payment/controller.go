// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeranaias/paychat/internal/backend"
	"github.com/jeranaias/paychat/internal/model"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// API is the subset of the backend client used by the payment flow.
type API interface {
	ProcessPayment(ctx context.Context, req backend.PaymentRequest) (*backend.PaymentResult, error)
	PaymentStatus(ctx context.Context, transactionID string) (*backend.StatusResult, error)
}

// Store persists the values that outlive the in-memory session.
type Store interface {
	LastTransactionID() (string, bool)
	SetLastTransactionID(id string) error
	SelectedPlan() string
	SetSelectedPlan(id string) error
}

// Transcript receives the assistant messages the payment flow emits.
type Transcript interface {
	AppendAssistant(text string, actions *model.Actions) model.Message
}

// Notifier shows transient notifications.
type Notifier interface {
	Status(message string) int
	Warning(message string) int
	Error(message string) int
}

// Error variables for rejected operations.
var (
	ErrSubmissionInFlight  = errors.New("payment: a submission is already in flight")
	ErrStatusCheckInFlight = errors.New("payment: a status check is already in flight")
	ErrNoTransaction       = errors.New("payment: no transaction in progress")
	ErrNoForm              = errors.New("payment: no card form is open")
	ErrNothingToRetry      = errors.New("payment: nothing to retry")
	ErrUnknownMethod       = errors.New("payment: unknown method")
	ErrDeclined            = errors.New("payment: declined")
	ErrStatusRejected      = errors.New("payment: status query rejected")
)

// =============================================================================
// CONTROLLER
// =============================================================================

// presentation is what an awaiting-confirmation panel shows.
type presentation struct {
	kind        ViewKind
	code        string
	qrSource    string
	documentURL string
}

// Controller owns the payment flow state.
type Controller struct {
	api      API
	store    Store
	out      Transcript
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	session *Session
	pres    presentation
	form    *Form
	reason  string
	note    string
	// confirmed is set when the approval came from a status check rather
	// than from a card submission.
	confirmed  bool
	submitting bool
	checking   bool
	// gen changes whenever the panel is replaced, so results of requests
	// started for an older panel do not resurrect it.
	gen uint64

	listeners []func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller in the Idle state.
func NewController(api API, store Store, out Transcript, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		store:    store,
		out:      out,
		notifier: notifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers fn to be called after every state change. Listeners
// run outside the controller lock and must not block.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// State returns the current flow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the active payment session.
func (c *Controller) Session() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// =============================================================================
// PRESENTATION
// =============================================================================

// SelectMethod records the chosen method, shows its instructions and
// discards any card form in progress.
func (c *Controller) SelectMethod(m Method) error {
	if m == MethodNone {
		return ErrUnknownMethod
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if c.session == nil {
		c.session = &Session{Status: StatusPending}
	}
	c.session.Method = m
	c.state = StateMethodSelected
	c.resetPanelLocked()
	c.mu.Unlock()

	c.changed()
	return nil
}

// PresentInstantTransfer shows a PIX code with its QR image and the status
// check action.
func (c *Controller) PresentInstantTransfer(code, qrImage string) {
	c.present(MethodInstantTransfer, presentation{
		kind:     ViewInstantTransfer,
		code:     code,
		qrSource: QRSource(qrImage),
	})
}

// PresentBankSlip shows a boleto barcode, its document link and the status
// check action.
func (c *Controller) PresentBankSlip(barcode, documentURL string) {
	c.present(MethodBankSlip, presentation{
		kind:        ViewBankSlip,
		code:        barcode,
		documentURL: documentURL,
	})
}

func (c *Controller) present(m Method, p presentation) {
	c.mu.Lock()
	c.session = &Session{Method: m, Status: StatusAwaitingConfirmation}
	c.state = StateAwaitingConfirmation
	c.resetPanelLocked()
	c.pres = p
	c.mu.Unlock()

	c.changed()
}

// PresentCardForm shows an empty card form.
func (c *Controller) PresentCardForm() error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	c.openFormLocked()
	c.mu.Unlock()

	c.changed()
	return nil
}

// SetField masks raw input for a card form field, stores it and returns
// the display value.
func (c *Controller) SetField(field FormField, raw string) (string, error) {
	c.mu.Lock()
	if c.state != StateCollectingCredentials || c.form == nil {
		c.mu.Unlock()
		return "", ErrNoForm
	}
	v := c.form.Set(field, raw)
	c.mu.Unlock()

	c.changed()
	return v, nil
}

// Dismiss closes the panel and returns to Idle. The persisted transaction
// id is kept.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	c.state = StateIdle
	c.session = nil
	c.resetPanelLocked()
	c.mu.Unlock()

	c.changed()
}

// Retry re-opens an empty card form after a decline or failure.
func (c *Controller) Retry() error {
	c.mu.Lock()
	if !c.state.CanRetry() {
		c.mu.Unlock()
		return ErrNothingToRetry
	}
	c.openFormLocked()
	c.mu.Unlock()

	c.changed()
	return nil
}

// ApplyActions interprets the side effects of an assistant reply.
func (c *Controller) ApplyActions(a *model.Actions) {
	if a.IsEmpty() {
		return
	}

	if a.PlanID != "" {
		if err := c.store.SetSelectedPlan(a.PlanID); err != nil {
			c.logger.Warn("failed to persist selected plan", "error", err)
		}
	}

	switch {
	case a.PixCode != "":
		c.PresentInstantTransfer(a.PixCode, a.QRImage)
	case a.Barcode != "":
		c.PresentBankSlip(a.Barcode, a.PaymentURL)
	default:
		if m, ok := ParseMethod(a.PaymentMethod); ok && m == MethodCard {
			if err := c.PresentCardForm(); err != nil {
				c.logger.Warn("card form not opened", "error", err)
			}
		}
	}

	if a.TransactionID != "" {
		if err := c.store.SetLastTransactionID(a.TransactionID); err != nil {
			c.logger.Warn("failed to persist transaction id", "error", err)
		}
		c.mu.Lock()
		if c.session != nil {
			c.session.TransactionID = a.TransactionID
		}
		c.mu.Unlock()
		c.changed()
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

// SubmitForm submits the credentials typed into the open card form.
func (c *Controller) SubmitForm(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if c.state != StateCollectingCredentials || c.form == nil {
		c.mu.Unlock()
		return ErrNoForm
	}
	creds := c.form.Credentials()
	c.mu.Unlock()

	return c.SubmitCard(ctx, creds)
}

// SubmitCard submits card credentials for the selected plan. A second call
// while one is in flight is rejected with ErrSubmissionInFlight and sends
// nothing. Incomplete credentials are rejected with a *ValidationError and
// a notification. A decline returns an error wrapping ErrDeclined.
func (c *Controller) SubmitCard(ctx context.Context, creds Credentials) error {
	creds = creds.Normalize()

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if err := creds.Validate(); err != nil {
		c.mu.Unlock()
		c.notifier.Warning(NoteIncompleteCard)
		return err
	}
	c.submitting = true
	c.session = &Session{Method: MethodCard, Status: StatusPending}
	c.state = StateSubmitting
	c.resetPanelLocked()
	c.pres = presentation{kind: ViewCardForm}
	gen := c.gen
	c.mu.Unlock()
	c.changed()

	plan := c.store.SelectedPlan()
	c.logger.Info("submitting card payment", "plan", plan)

	res, err := c.api.ProcessPayment(ctx, backend.PaymentRequest{
		Method: backend.MethodCard,
		PlanID: plan,
		Card: backend.CardData{
			Number:     creds.Number,
			Expiry:     creds.Expiry,
			CVV:        creds.CVV,
			HolderName: creds.HolderName,
			NationalID: creds.NationalID,
		},
	})

	var (
		chat   string
		result error
		txID   string
	)

	c.mu.Lock()
	c.submitting = false
	current := gen == c.gen
	switch {
	case err != nil:
		c.logger.Warn("card payment failed", "error", err)
		if current {
			c.state = StateFailed
			c.session.Status = StatusFailed
		}
		chat, result = MsgCardFailed, err
	case !res.Success:
		reason := res.Message
		if reason == "" {
			reason = DefaultDeclineReason
		}
		c.logger.Info("card payment declined", "reason", reason)
		if current {
			c.state = StateDeclined
			c.session.Status = StatusDeclined
			c.reason = reason
		}
		chat, result = MsgCardDeclined, fmt.Errorf("%w: %s", ErrDeclined, reason)
	default:
		txID = res.TransactionID()
		c.logger.Info("card payment approved", "transaction_id", txID)
		if current {
			c.state = StateApproved
			c.session.Status = StatusApproved
			c.session.TransactionID = txID
		}
		chat = MsgCardApproved
	}
	c.mu.Unlock()

	if txID != "" {
		if err := c.store.SetLastTransactionID(txID); err != nil {
			c.logger.Warn("failed to persist transaction id", "error", err)
		}
	}
	c.changed()
	c.out.AppendAssistant(chat, nil)
	return result
}

// =============================================================================
// STATUS
// =============================================================================

// CheckStatus queries the status of the last transaction. Without a
// persisted transaction it only notifies the user and makes no request.
func (c *Controller) CheckStatus(ctx context.Context) error {
	return c.checkStatus(ctx, false)
}

// NeedsPolling reports whether a periodic status check would be useful.
func (c *Controller) NeedsPolling() bool {
	c.mu.Lock()
	waiting := c.state == StateAwaitingConfirmation && !c.checking
	c.mu.Unlock()
	if !waiting {
		return false
	}
	_, ok := c.store.LastTransactionID()
	return ok
}

// checkStatus performs one status query. Quiet checks come from the poller:
// they never notify and only echo terminal outcomes into the conversation.
func (c *Controller) checkStatus(ctx context.Context, quiet bool) error {
	tx, ok := c.store.LastTransactionID()
	if !ok {
		if !quiet {
			c.notifier.Status(NoteNoTransaction)
		}
		return ErrNoTransaction
	}

	c.mu.Lock()
	if c.checking {
		c.mu.Unlock()
		return ErrStatusCheckInFlight
	}
	c.checking = true
	if c.state == StateIdle {
		c.session = &Session{Method: methodFromTransactionID(tx), TransactionID: tx, Status: StatusPending}
	}
	gen := c.gen
	c.mu.Unlock()
	c.changed()

	res, err := c.api.PaymentStatus(ctx, tx)

	var chat string
	c.mu.Lock()
	c.checking = false
	current := gen == c.gen && c.state != StateCollectingCredentials && c.state != StateSubmitting
	switch {
	case err != nil, !res.Success:
	case IsApprovedStatus(res.Status()):
		if current {
			c.ensureSessionLocked(tx)
			c.session.Status = StatusApproved
			c.state = StateApproved
			c.confirmed = true
			c.note = ""
		}
		chat = MsgStatusConfirmed
	default:
		status := res.Status()
		if current {
			// A panel that is already showing stays as it was; only an
			// idle controller gets a generic awaiting panel.
			switch c.state {
			case StateIdle:
				c.ensureSessionLocked(tx)
				c.session.Status = StatusAwaitingConfirmation
				c.state = StateAwaitingConfirmation
				c.pres = presentation{kind: ViewAwaiting}
			case StateAwaitingConfirmation:
				c.ensureSessionLocked(tx)
				c.session.Status = StatusAwaitingConfirmation
			}
			c.note = statusAnnotation(status)
		}
		if !quiet {
			chat = msgStatusPending(status)
		}
	}
	c.mu.Unlock()
	c.changed()

	switch {
	case err != nil:
		c.logger.Warn("status check failed", "error", err)
		if !quiet {
			c.notifier.Error(NoteStatusTransport)
		}
		return err
	case !res.Success:
		msg := res.Message
		if msg == "" {
			msg = NoteStatusFailed
		}
		if !quiet {
			c.notifier.Error(msg)
		}
		return fmt.Errorf("%w: %s", ErrStatusRejected, msg)
	}

	if chat != "" {
		c.out.AppendAssistant(chat, nil)
	}
	return nil
}

// ensureSessionLocked makes sure a session exists for tx, inferring the
// method from the transaction id when the session was lost to a restart.
func (c *Controller) ensureSessionLocked(tx string) {
	if c.session == nil {
		c.session = &Session{Method: methodFromTransactionID(tx)}
	}
	c.session.TransactionID = tx
}

func methodFromTransactionID(tx string) Method {
	prefix, _, _ := strings.Cut(strings.ToLower(tx), "_")
	m, _ := ParseMethod(prefix)
	return m
}

// =============================================================================
// VIEW
// =============================================================================

// View projects the current state into a renderable panel.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{State: c.state, StatusNote: c.note}
	if c.session != nil {
		v.Method = c.session.Method
		v.TransactionID = c.session.TransactionID
	}

	if c.checking && c.state != StateSubmitting {
		v.Kind = ViewProgress
		v.Title = "Verificando Status"
		v.Lines = []string{"Verificando o status do seu pagamento..."}
		v.StatusNote = ""
		return v
	}

	switch c.state {
	case StateIdle:
		v.Kind = ViewNone

	case StateMethodSelected:
		v.Kind = ViewInstructions
		v.Title, v.Lines = instructions(v.Method)
		v.Actions = []Action{ActionDismiss}

	case StateCollectingCredentials:
		v.Kind = ViewCardForm
		v.Title = "Pagamento com Cartão de Crédito"
		for _, f := range FormFields {
			fv := FieldView{Field: f, Label: f.Label(), Placeholder: f.Placeholder()}
			if c.form != nil {
				fv.Value = c.form.Value(f)
			}
			v.Form = append(v.Form, fv)
		}
		v.Actions = []Action{ActionSubmit, ActionDismiss}

	case StateSubmitting:
		v.Kind = ViewProgress
		v.Title = "Processando Pagamento"
		v.Lines = []string{"Por favor, aguarde enquanto processamos seu pagamento..."}

	case StateAwaitingConfirmation:
		c.awaitingViewLocked(&v)

	case StateApproved:
		v.Kind = ViewApproved
		if c.confirmed {
			v.Title = "Pagamento Confirmado"
			v.Lines = []string{"Seu pagamento foi confirmado com sucesso!", "Status: Aprovado"}
		} else {
			v.Title = "Pagamento Aprovado"
			v.Lines = []string{"Seu pagamento foi processado com sucesso!"}
			if v.TransactionID != "" {
				v.Lines = append(v.Lines, "ID da Transação: "+v.TransactionID)
			}
		}
		v.Actions = []Action{ActionDismiss}

	case StateDeclined:
		v.Kind = ViewDeclined
		v.Title = "Pagamento Recusado"
		v.Lines = []string{"Não foi possível processar seu pagamento."}
		v.Reason = c.reason
		v.Actions = []Action{ActionRetry, ActionDismiss}

	case StateFailed:
		v.Kind = ViewFailed
		v.Title = "Erro no Processamento"
		v.Lines = []string{
			"Ocorreu um erro ao processar seu pagamento.",
			"Por favor, tente novamente mais tarde.",
		}
		v.Actions = []Action{ActionRetry, ActionDismiss}
	}
	return v
}

func (c *Controller) awaitingViewLocked(v *View) {
	v.Kind = c.pres.kind
	v.Code = c.pres.code
	switch c.pres.kind {
	case ViewInstantTransfer:
		v.Title = "Pagamento via PIX"
		v.QRSource = c.pres.qrSource
		v.Lines = []string{
			"Escaneie o QR Code com o aplicativo do seu banco",
			"Ou copie o código PIX:",
		}
		v.Note = "Após o pagamento, o sistema confirmará automaticamente a transação."
		v.Actions = []Action{ActionCopyCode, ActionCheckStatus, ActionDismiss}
	case ViewBankSlip:
		v.Title = "Pagamento via Boleto"
		v.DocumentURL = c.pres.documentURL
		v.Lines = []string{"Utilize o código de barras abaixo para pagar em qualquer banco ou casa lotérica:"}
		v.Note = "O pagamento será confirmado em até 3 dias úteis após o pagamento."
		v.Actions = []Action{ActionCopyCode}
		if v.DocumentURL != "" {
			v.Actions = append(v.Actions, ActionOpenDocument)
		}
		v.Actions = append(v.Actions, ActionCheckStatus, ActionDismiss)
	default:
		v.Kind = ViewAwaiting
		v.Title = "Pagamento em Processamento"
		v.Lines = []string{"Aguardando confirmação do pagamento..."}
		v.Actions = []Action{ActionCheckStatus, ActionDismiss}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Controller) openFormLocked() {
	c.session = &Session{Method: MethodCard, Status: StatusPending}
	c.state = StateCollectingCredentials
	c.resetPanelLocked()
	c.pres = presentation{kind: ViewCardForm}
	c.form = &Form{}
}

// resetPanelLocked drops everything the previous panel showed.
func (c *Controller) resetPanelLocked() {
	c.pres = presentation{}
	c.form = nil
	c.reason = ""
	c.note = ""
	c.confirmed = false
	c.gen++
}

func (c *Controller) changed() {
	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
