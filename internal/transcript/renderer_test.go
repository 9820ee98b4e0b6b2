// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/paychat/internal/model"
)

type recordingHandler struct {
	mu    sync.Mutex
	calls []*model.Actions
}

func (h *recordingHandler) ApplyActions(a *model.Actions) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, a)
}

func TestAppendUser_Escapes(t *testing.T) {
	r := NewRenderer()
	msg := r.AppendUser("<b>oi</b>")

	assert.Equal(t, model.RoleUser, msg.Role)
	assert.Equal(t, "<b>oi</b>", msg.Text)
	assert.Equal(t, "&lt;b&gt;oi&lt;/b&gt;", msg.Markup)
	assert.Equal(t, 1, r.Len())
}

func TestAppendAssistant_HidesComposingAndFormats(t *testing.T) {
	r := NewRenderer()
	r.ShowComposing()
	require.True(t, r.Composing())

	msg := r.AppendAssistant("**Plano** Premium", nil)

	assert.False(t, r.Composing())
	assert.Equal(t, "<strong>Plano</strong> Premium", msg.Markup)
}

func TestAppendAssistant_HandsActionsToHandler(t *testing.T) {
	r := NewRenderer()
	h := &recordingHandler{}
	r.SetEffectHandler(h)

	r.AppendAssistant("sem ações", nil)
	r.AppendAssistant("ações vazias", &model.Actions{})
	r.AppendAssistant("pix", &model.Actions{PixCode: "000201"})

	require.Len(t, h.calls, 1)
	assert.Equal(t, "000201", h.calls[0].PixCode)
}

func TestComposing_SingleIndicator(t *testing.T) {
	r := NewRenderer()
	var changes int32
	r.OnChange(func() { atomic.AddInt32(&changes, 1) })

	for i := 0; i < 5; i++ {
		r.ShowComposing()
	}
	assert.True(t, r.Snapshot().Composing)
	assert.Equal(t, int32(1), atomic.LoadInt32(&changes), "repeated ShowComposing must be a no-op")

	r.HideComposing()
	r.HideComposing()
	assert.False(t, r.Snapshot().Composing)
	assert.Equal(t, int32(2), atomic.LoadInt32(&changes))
}

func TestSnapshot_ScrollSeqAdvances(t *testing.T) {
	r := NewRenderer()
	before := r.Snapshot().ScrollSeq
	r.AppendAssistant("olá", nil)
	assert.Greater(t, r.Snapshot().ScrollSeq, before)
}

func TestClear(t *testing.T) {
	r := NewRenderer()
	r.AppendUser("a")
	r.ShowComposing()
	r.Clear()

	snap := r.Snapshot()
	assert.Empty(t, snap.Messages)
	assert.False(t, snap.Composing)
}

func TestConcurrentAppends(t *testing.T) {
	r := NewRenderer()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.AppendUser("u")
		}()
		go func() {
			defer wg.Done()
			r.AppendAssistant("a", nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, r.Len())
}
