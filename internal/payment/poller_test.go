// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/paychat/internal/backend"
)

func TestPoller_DisabledIsNoop(t *testing.T) {
	h := newHarness(t)
	p := NewPoller(h.ctrl, 0)

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for a disabled poller")
	}
	assert.False(t, p.Tick(context.Background()))
}

func TestPoller_TickOnlyWhileAwaiting(t *testing.T) {
	h := newHarness(t)
	p := NewPoller(h.ctrl, time.Hour)
	require.NoError(t, h.prefs.SetLastTransactionID("PIX_1"))

	assert.False(t, p.Tick(context.Background()), "idle controller is not polled")
	assert.Zero(t, h.api.statusCalls.Load())

	h.ctrl.PresentInstantTransfer("PIXCODE", "")
	assert.True(t, p.Tick(context.Background()))
	assert.EqualValues(t, 1, h.api.statusCalls.Load())

	// The limiter allows one check per interval.
	assert.False(t, p.Tick(context.Background()))
	assert.EqualValues(t, 1, h.api.statusCalls.Load())
}

func TestPoller_QuietCheck(t *testing.T) {
	h := newHarness(t)
	p := NewPoller(h.ctrl, time.Hour)
	h.ctrl.PresentInstantTransfer("PIXCODE", "")
	require.NoError(t, h.prefs.SetLastTransactionID("PIX_1"))

	require.True(t, p.Tick(context.Background()))
	assert.Zero(t, h.out.Len(), "pending results are not echoed")
	assert.Empty(t, h.toastMessages())
	assert.Equal(t, "Status atual: pendente", h.ctrl.View().StatusNote)
}

func TestPoller_RunConfirms(t *testing.T) {
	h := newHarness(t)
	h.api.status = func(string) (*backend.StatusResult, error) {
		return &backend.StatusResult{Success: true, Data: &backend.StatusData{Status: "aprovado"}}, nil
	}
	h.ctrl.PresentBankSlip("23793", "")
	require.NoError(t, h.prefs.SetLastTransactionID("BOLETO_1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewPoller(h.ctrl, 10*time.Millisecond).Run(ctx)

	require.Eventually(t, func() bool { return h.ctrl.State() == StateApproved }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, MsgStatusConfirmed, h.lastAssistant(t))
}
