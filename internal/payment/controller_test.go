// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/paychat/internal/backend"
	"github.com/jeranaias/paychat/internal/model"
	"github.com/jeranaias/paychat/internal/notify"
	"github.com/jeranaias/paychat/internal/storage"
	"github.com/jeranaias/paychat/internal/transcript"
)

// fakeAPI records calls and answers with the configured functions.
type fakeAPI struct {
	mu          sync.Mutex
	payments    []backend.PaymentRequest
	statusCalls atomic.Int32

	pay    func(backend.PaymentRequest) (*backend.PaymentResult, error)
	status func(string) (*backend.StatusResult, error)
}

func (f *fakeAPI) ProcessPayment(_ context.Context, req backend.PaymentRequest) (*backend.PaymentResult, error) {
	f.mu.Lock()
	f.payments = append(f.payments, req)
	f.mu.Unlock()
	if f.pay == nil {
		return &backend.PaymentResult{Success: true, Data: &backend.PaymentData{TransactionID: "CARTAO_1"}}, nil
	}
	return f.pay(req)
}

func (f *fakeAPI) PaymentStatus(_ context.Context, tx string) (*backend.StatusResult, error) {
	f.statusCalls.Add(1)
	if f.status == nil {
		return &backend.StatusResult{Success: true, Data: &backend.StatusData{Status: "pendente"}}, nil
	}
	return f.status(tx)
}

func (f *fakeAPI) paymentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payments)
}

type harness struct {
	api    *fakeAPI
	prefs  *storage.Prefs
	out    *transcript.Renderer
	toasts *notify.Manager
	ctrl   *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		api:    &fakeAPI{},
		prefs:  storage.NewPrefs(storage.NewMemoryStore()),
		out:    transcript.NewRenderer(),
		toasts: notify.NewManager(),
	}
	h.ctrl = NewController(h.api, h.prefs, h.out, h.toasts)
	h.out.SetEffectHandler(h.ctrl)
	return h
}

func (h *harness) lastAssistant(t *testing.T) string {
	t.Helper()
	snap := h.out.Snapshot()
	require.NotEmpty(t, snap.Messages)
	return snap.Messages[len(snap.Messages)-1].Text
}

func (h *harness) toastMessages() []string {
	var msgs []string
	for _, toast := range h.toasts.Active() {
		msgs = append(msgs, toast.Message)
	}
	return msgs
}

func validCard() Credentials {
	return Credentials{
		Number:     "4111 1111 1111 1111",
		Expiry:     "12/30",
		CVV:        "123",
		HolderName: "  Maria   da Silva ",
		NationalID: "123.456.789-09",
	}
}

func TestController_StartsIdle(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.False(t, h.ctrl.View().Visible())
	_, ok := h.ctrl.Session()
	assert.False(t, ok)
}

func TestController_SelectMethodShowsInstructions(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.SelectMethod(MethodBankSlip))

	v := h.ctrl.View()
	assert.Equal(t, ViewInstructions, v.Kind)
	assert.Equal(t, MethodBankSlip, v.Method)
	assert.Equal(t, "Pagamento via Boleto", v.Title)
	assert.ErrorIs(t, h.ctrl.SelectMethod(MethodNone), ErrUnknownMethod)
}

func TestController_SelectMethodDiscardsCardForm(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.PresentCardForm())
	_, err := h.ctrl.SetField(FieldCardNumber, "4111111111111111")
	require.NoError(t, err)

	require.NoError(t, h.ctrl.SelectMethod(MethodInstantTransfer))
	v := h.ctrl.View()
	assert.Equal(t, ViewInstructions, v.Kind)
	assert.Empty(t, v.Form)

	// Re-opening the form must not resurrect the old values.
	require.NoError(t, h.ctrl.PresentCardForm())
	for _, f := range h.ctrl.View().Form {
		assert.Empty(t, f.Value, f.Label)
	}
}

func TestController_SetFieldMasks(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.SetField(FieldCVV, "123")
	assert.ErrorIs(t, err, ErrNoForm)

	require.NoError(t, h.ctrl.PresentCardForm())
	v, err := h.ctrl.SetField(FieldCardNumber, "4111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "4111 1111 1111 1111", v)

	v, err = h.ctrl.SetField(FieldExpiry, "1230")
	require.NoError(t, err)
	assert.Equal(t, "12/30", v)
}

func TestController_ApplyActionsInstantTransfer(t *testing.T) {
	h := newHarness(t)
	h.out.AppendAssistant("Aqui está seu PIX", &model.Actions{
		PlanID:        "premium",
		PixCode:       "00020126PIX",
		QRImage:       "iVBORw0KGgo=",
		TransactionID: "PIX_abc",
	})

	v := h.ctrl.View()
	assert.Equal(t, ViewInstantTransfer, v.Kind)
	assert.Equal(t, "00020126PIX", v.Code)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", v.QRSource)
	assert.True(t, v.Has(ActionCopyCode))
	assert.True(t, v.Has(ActionCheckStatus))
	assert.Equal(t, StateAwaitingConfirmation, h.ctrl.State())

	tx, ok := h.prefs.LastTransactionID()
	require.True(t, ok)
	assert.Equal(t, "PIX_abc", tx)
	assert.Equal(t, "premium", h.prefs.SelectedPlan())

	s, ok := h.ctrl.Session()
	require.True(t, ok)
	assert.Equal(t, MethodInstantTransfer, s.Method)
	assert.Equal(t, "PIX_abc", s.TransactionID)
}

func TestController_ApplyActionsBankSlip(t *testing.T) {
	h := newHarness(t)
	h.ctrl.ApplyActions(&model.Actions{Barcode: "23793.38128", PaymentURL: "https://example.com/boleto"})

	v := h.ctrl.View()
	assert.Equal(t, ViewBankSlip, v.Kind)
	assert.Equal(t, "23793.38128", v.Code)
	assert.True(t, v.Has(ActionOpenDocument))
}

func TestController_ApplyActionsCardOpensForm(t *testing.T) {
	h := newHarness(t)
	h.ctrl.ApplyActions(&model.Actions{PaymentMethod: "cartao", PlanID: "basico"})
	assert.Equal(t, StateCollectingCredentials, h.ctrl.State())
	assert.Len(t, h.ctrl.View().Form, len(FormFields))
}

func TestController_ApplyActionsEmptyIsNoop(t *testing.T) {
	h := newHarness(t)
	h.ctrl.ApplyActions(nil)
	h.ctrl.ApplyActions(&model.Actions{})
	assert.Equal(t, StateIdle, h.ctrl.State())
}

func TestController_SubmitCardApproved(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.prefs.SetSelectedPlan("premium"))

	require.NoError(t, h.ctrl.SubmitCard(context.Background(), validCard()))

	require.Equal(t, 1, h.api.paymentCount())
	req := h.api.payments[0]
	assert.Equal(t, backend.MethodCard, req.Method)
	assert.Equal(t, "premium", req.PlanID)
	assert.Equal(t, "4111111111111111", req.Card.Number)
	assert.Equal(t, "12/30", req.Card.Expiry)
	assert.Equal(t, "Maria da Silva", req.Card.HolderName)
	assert.Equal(t, "12345678909", req.Card.NationalID)

	assert.Equal(t, StateApproved, h.ctrl.State())
	v := h.ctrl.View()
	assert.Equal(t, ViewApproved, v.Kind)
	assert.Contains(t, v.Text(), "ID da Transação: CARTAO_1")
	assert.Equal(t, MsgCardApproved, h.lastAssistant(t))

	tx, ok := h.prefs.LastTransactionID()
	require.True(t, ok)
	assert.Equal(t, "CARTAO_1", tx)
}

func TestController_SubmitCardDeclinedThenRetry(t *testing.T) {
	h := newHarness(t)
	h.api.pay = func(backend.PaymentRequest) (*backend.PaymentResult, error) {
		return &backend.PaymentResult{Success: false, Message: "saldo insuficiente"}, nil
	}

	require.NoError(t, h.ctrl.PresentCardForm())
	for _, f := range []struct {
		field FormField
		raw   string
	}{
		{FieldCardNumber, "4000000000000002"},
		{FieldExpiry, "1230"},
		{FieldCVV, "123"},
		{FieldHolderName, "Maria"},
		{FieldNationalID, "12345678909"},
	} {
		_, err := h.ctrl.SetField(f.field, f.raw)
		require.NoError(t, err)
	}

	err := h.ctrl.SubmitForm(context.Background())
	require.ErrorIs(t, err, ErrDeclined)

	v := h.ctrl.View()
	assert.Equal(t, ViewDeclined, v.Kind)
	assert.Equal(t, "saldo insuficiente", v.Reason)
	assert.Contains(t, v.Text(), "Motivo: saldo insuficiente")
	assert.True(t, v.Has(ActionRetry))
	assert.Equal(t, MsgCardDeclined, h.lastAssistant(t))

	require.NoError(t, h.ctrl.Retry())
	v = h.ctrl.View()
	assert.Equal(t, ViewCardForm, v.Kind)
	require.Len(t, v.Form, len(FormFields))
	for _, f := range v.Form {
		assert.Empty(t, f.Value, f.Label)
	}
	assert.Empty(t, v.Reason)
}

func TestController_SubmitCardTransportFailure(t *testing.T) {
	h := newHarness(t)
	h.api.pay = func(backend.PaymentRequest) (*backend.PaymentResult, error) {
		return nil, backend.ErrTransport
	}

	err := h.ctrl.SubmitCard(context.Background(), validCard())
	require.ErrorIs(t, err, backend.ErrTransport)
	assert.Equal(t, StateFailed, h.ctrl.State())
	assert.Equal(t, MsgCardFailed, h.lastAssistant(t))
	assert.NoError(t, h.ctrl.Retry())
}

func TestController_SubmitCardIncomplete(t *testing.T) {
	h := newHarness(t)
	creds := validCard()
	creds.CVV = ""

	err := h.ctrl.SubmitCard(context.Background(), creds)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldCVV, verr.Field)
	assert.Zero(t, h.api.paymentCount())
	assert.Contains(t, h.toastMessages(), NoteIncompleteCard)
}

func TestController_SubmitCardRejectsConcurrentSubmission(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.api.pay = func(backend.PaymentRequest) (*backend.PaymentResult, error) {
		<-release
		return &backend.PaymentResult{Success: true, Data: &backend.PaymentData{TransactionID: "CARTAO_2"}}, nil
	}

	done := make(chan error, 1)
	go func() { done <- h.ctrl.SubmitCard(context.Background(), validCard()) }()

	require.Eventually(t, func() bool { return h.ctrl.State() == StateSubmitting }, time.Second, time.Millisecond)
	assert.ErrorIs(t, h.ctrl.SubmitCard(context.Background(), validCard()), ErrSubmissionInFlight)
	assert.ErrorIs(t, h.ctrl.SelectMethod(MethodCard), ErrSubmissionInFlight)
	assert.Equal(t, ViewProgress, h.ctrl.View().Kind)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.api.paymentCount())
	assert.Equal(t, StateApproved, h.ctrl.State())
}

func TestController_DismissDuringSubmissionKeepsOutcome(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.api.pay = func(backend.PaymentRequest) (*backend.PaymentResult, error) {
		<-release
		return &backend.PaymentResult{Success: true, Data: &backend.PaymentData{TransactionID: "CARTAO_3"}}, nil
	}

	done := make(chan error, 1)
	go func() { done <- h.ctrl.SubmitCard(context.Background(), validCard()) }()
	require.Eventually(t, func() bool { return h.ctrl.State() == StateSubmitting }, time.Second, time.Millisecond)

	h.ctrl.Dismiss()
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.Equal(t, MsgCardApproved, h.lastAssistant(t))
	tx, _ := h.prefs.LastTransactionID()
	assert.Equal(t, "CARTAO_3", tx)
}

func TestController_CheckStatusWithoutTransaction(t *testing.T) {
	h := newHarness(t)

	err := h.ctrl.CheckStatus(context.Background())
	require.ErrorIs(t, err, ErrNoTransaction)
	assert.Zero(t, h.api.statusCalls.Load())
	assert.Equal(t, []string{NoteNoTransaction}, h.toastMessages())
	assert.Zero(t, h.out.Len())
}

func TestController_CheckStatusApproved(t *testing.T) {
	h := newHarness(t)
	h.api.status = func(string) (*backend.StatusResult, error) {
		return &backend.StatusResult{Success: true, Data: &backend.StatusData{Status: "aprovado"}}, nil
	}
	h.ctrl.PresentInstantTransfer("PIXCODE", "")
	require.NoError(t, h.prefs.SetLastTransactionID("PIX_1"))

	require.NoError(t, h.ctrl.CheckStatus(context.Background()))
	assert.Equal(t, StateApproved, h.ctrl.State())
	v := h.ctrl.View()
	assert.Equal(t, "Pagamento Confirmado", v.Title)
	assert.Equal(t, MsgStatusConfirmed, h.lastAssistant(t))
	assert.False(t, h.ctrl.NeedsPolling())
}

func TestController_CheckStatusUnknownIsNonTerminal(t *testing.T) {
	h := newHarness(t)
	h.api.status = func(string) (*backend.StatusResult, error) {
		return &backend.StatusResult{Success: true, Data: &backend.StatusData{Status: "processing"}}, nil
	}
	require.NoError(t, h.prefs.SetLastTransactionID("BOLETO_9"))

	require.NoError(t, h.ctrl.CheckStatus(context.Background()))
	assert.Equal(t, StateAwaitingConfirmation, h.ctrl.State())

	v := h.ctrl.View()
	assert.Equal(t, ViewAwaiting, v.Kind)
	assert.Equal(t, "Status atual: processing", v.StatusNote)
	assert.Contains(t, v.Text(), "Aguardando confirmação do pagamento...")
	assert.Equal(t, "Seu pagamento está sendo processado. Status atual: processing", h.lastAssistant(t))

	s, ok := h.ctrl.Session()
	require.True(t, ok)
	assert.Equal(t, MethodBankSlip, s.Method)
	assert.True(t, h.ctrl.NeedsPolling())
}

func TestController_CheckStatusRestoresPanel(t *testing.T) {
	h := newHarness(t)
	h.ctrl.PresentBankSlip("23793", "")
	require.NoError(t, h.prefs.SetLastTransactionID("BOLETO_1"))

	require.NoError(t, h.ctrl.CheckStatus(context.Background()))
	v := h.ctrl.View()
	assert.Equal(t, ViewBankSlip, v.Kind)
	assert.Equal(t, "23793", v.Code)
	assert.Equal(t, "Status atual: pendente", v.StatusNote)
}

func TestController_CheckStatusPendingKeepsDeclinedView(t *testing.T) {
	h := newHarness(t)
	h.api.pay = func(backend.PaymentRequest) (*backend.PaymentResult, error) {
		return &backend.PaymentResult{Success: false, Message: "saldo insuficiente"}, nil
	}
	require.NoError(t, h.prefs.SetLastTransactionID("PIX_1"))
	require.ErrorIs(t, h.ctrl.SubmitCard(context.Background(), validCard()), ErrDeclined)

	require.NoError(t, h.ctrl.CheckStatus(context.Background()))
	assert.Equal(t, StateDeclined, h.ctrl.State())
	v := h.ctrl.View()
	assert.Equal(t, ViewDeclined, v.Kind)
	assert.Equal(t, "saldo insuficiente", v.Reason)
	assert.Equal(t, "Status atual: pendente", v.StatusNote)
	assert.True(t, v.Has(ActionRetry))

	require.NoError(t, h.ctrl.Retry())
	assert.Equal(t, ViewCardForm, h.ctrl.View().Kind)
}

func TestController_CheckStatusPendingKeepsInstructions(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.prefs.SetLastTransactionID("PIX_1"))
	require.NoError(t, h.ctrl.SelectMethod(MethodCard))
	before := h.ctrl.View()

	require.NoError(t, h.ctrl.CheckStatus(context.Background()))
	assert.Equal(t, StateMethodSelected, h.ctrl.State())
	v := h.ctrl.View()
	assert.Equal(t, ViewInstructions, v.Kind)
	assert.Equal(t, before.Title, v.Title)
	assert.Equal(t, MethodCard, v.Method)
	assert.Equal(t, "Status atual: pendente", v.StatusNote)
}

func TestController_CheckStatusFromIdleShowsProgress(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.api.status = func(string) (*backend.StatusResult, error) {
		<-release
		return &backend.StatusResult{Success: true, Data: &backend.StatusData{Status: "pendente"}}, nil
	}
	require.NoError(t, h.prefs.SetLastTransactionID("PIX_3"))

	done := make(chan error, 1)
	go func() { done <- h.ctrl.CheckStatus(context.Background()) }()
	require.Eventually(t, func() bool { return h.ctrl.View().Kind == ViewProgress }, time.Second, time.Millisecond)

	v := h.ctrl.View()
	assert.Equal(t, "Verificando Status", v.Title)
	assert.Equal(t, MethodInstantTransfer, v.Method)
	assert.Equal(t, "PIX_3", v.TransactionID)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateAwaitingConfirmation, h.ctrl.State())
	assert.Equal(t, ViewAwaiting, h.ctrl.View().Kind)
}

func TestController_CheckStatusRejected(t *testing.T) {
	h := newHarness(t)
	h.api.status = func(string) (*backend.StatusResult, error) {
		return &backend.StatusResult{Success: false}, nil
	}
	require.NoError(t, h.prefs.SetLastTransactionID("PIX_1"))

	err := h.ctrl.CheckStatus(context.Background())
	require.ErrorIs(t, err, ErrStatusRejected)
	assert.Contains(t, h.toastMessages(), NoteStatusFailed)
}

func TestController_CheckStatusTransportError(t *testing.T) {
	h := newHarness(t)
	h.api.status = func(string) (*backend.StatusResult, error) {
		return nil, errors.New("boom")
	}
	require.NoError(t, h.prefs.SetLastTransactionID("PIX_1"))

	require.Error(t, h.ctrl.CheckStatus(context.Background()))
	assert.Contains(t, h.toastMessages(), NoteStatusTransport)
	assert.Equal(t, StateIdle, h.ctrl.State())
}

func TestController_CheckStatusRejectsConcurrentCheck(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.api.status = func(string) (*backend.StatusResult, error) {
		<-release
		return &backend.StatusResult{Success: true, Data: &backend.StatusData{Status: "pendente"}}, nil
	}
	h.ctrl.PresentInstantTransfer("PIXCODE", "")
	require.NoError(t, h.prefs.SetLastTransactionID("PIX_1"))

	done := make(chan error, 1)
	go func() { done <- h.ctrl.CheckStatus(context.Background()) }()
	require.Eventually(t, func() bool { return h.ctrl.View().Kind == ViewProgress }, time.Second, time.Millisecond)

	assert.ErrorIs(t, h.ctrl.CheckStatus(context.Background()), ErrStatusCheckInFlight)
	close(release)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, h.api.statusCalls.Load())
	assert.Equal(t, ViewInstantTransfer, h.ctrl.View().Kind)
}

func TestController_DismissKeepsTransaction(t *testing.T) {
	h := newHarness(t)
	h.ctrl.ApplyActions(&model.Actions{PixCode: "X", TransactionID: "PIX_7"})
	h.ctrl.Dismiss()

	assert.Equal(t, StateIdle, h.ctrl.State())
	tx, ok := h.prefs.LastTransactionID()
	require.True(t, ok)
	assert.Equal(t, "PIX_7", tx)
	assert.ErrorIs(t, h.ctrl.Retry(), ErrNothingToRetry)
}

func TestController_OnChange(t *testing.T) {
	h := newHarness(t)
	var calls atomic.Int32
	h.ctrl.OnChange(func() { calls.Add(1) })

	require.NoError(t, h.ctrl.SelectMethod(MethodCard))
	h.ctrl.Dismiss()
	assert.EqualValues(t, 2, calls.Load())
}
