// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dialogue

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/paychat/internal/backend"
	"github.com/jeranaias/paychat/internal/model"
)

// MsgFailure is appended when the assistant could not be reached.
const MsgFailure = "Desculpe, ocorreu um erro ao processar sua mensagem. Por favor, tente novamente."

// API is the assistant endpoint.
type API interface {
	AssistantReply(ctx context.Context, text string) (*backend.AssistantReply, error)
}

// Transcript is where turns are rendered.
type Transcript interface {
	AppendUser(text string) model.Message
	AppendAssistant(text string, actions *model.Actions) model.Message
	ShowComposing()
	HideComposing()
}

// Delays controls the pauses before a reply or an apology is shown.
type Delays struct {
	ReplyMin time.Duration
	ReplyMax time.Duration
	Failure  time.Duration
}

// DefaultDelays mimics a person typing.
var DefaultDelays = Delays{
	ReplyMin: 500 * time.Millisecond,
	ReplyMax: 1500 * time.Millisecond,
	Failure:  500 * time.Millisecond,
}

// reply returns a random delay in [ReplyMin, ReplyMax).
func (d Delays) reply() time.Duration {
	if d.ReplyMax <= d.ReplyMin {
		return d.ReplyMin
	}
	return d.ReplyMin + time.Duration(rand.Int63n(int64(d.ReplyMax-d.ReplyMin)))
}

type request struct {
	text string
	gen  uint64
}

// Controller owns the outgoing message queue.
type Controller struct {
	api    API
	out    Transcript
	logger *slog.Logger
	delays Delays

	// turnMu serializes transcript updates with queue bookkeeping so the
	// composing indicator always matches the queue.
	turnMu sync.Mutex

	mu     sync.Mutex
	queue  []request
	busy   bool
	gen    uint64
	closed bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Option configures a Controller.
type Option func(*Controller)

// WithDelays overrides the reply pauses.
func WithDelays(d Delays) Option {
	return func(c *Controller) { c.delays = d }
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a controller and starts its worker. Call Close to stop it.
func New(api API, out Transcript, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		api:    api,
		out:    out,
		logger: slog.Default(),
		delays: DefaultDelays,
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c
}

// Send renders the user turn and queues it for the assistant. Blank input
// is rejected without side effects. It returns true when the caller should
// clear its input.
func (c *Controller) Send(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.queue = append(c.queue, request{text: text, gen: c.gen})
	c.mu.Unlock()

	c.out.AppendUser(text)
	c.out.ShowComposing()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return true
}

// Pending returns the number of messages queued or awaiting a reply.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.queue)
	if c.busy {
		n++
	}
	return n
}

// Reset drops queued messages and discards replies to messages sent before
// the call.
func (c *Controller) Reset() {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	c.mu.Lock()
	c.queue = nil
	c.gen++
	c.mu.Unlock()

	c.out.HideComposing()
}

// Close stops the worker and waits for it to exit. Replies still in flight
// are dropped.
func (c *Controller) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.queue = nil
		c.mu.Unlock()
		c.cancel()
		<-c.done
	})
}

// =============================================================================
// WORKER
// =============================================================================

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.wake:
		}
		for {
			req, ok := c.next()
			if !ok {
				break
			}
			if !c.process(req) {
				return
			}
		}
	}
}

func (c *Controller) next() (request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 || c.closed {
		return request{}, false
	}
	req := c.queue[0]
	c.queue = c.queue[1:]
	c.busy = true
	return req, true
}

// process answers one request. It returns false once the controller is
// closing.
func (c *Controller) process(req request) bool {
	reply, err := c.api.AssistantReply(c.ctx, req.text)

	text, actions := MsgFailure, (*model.Actions)(nil)
	delay := c.delays.Failure
	if err != nil {
		c.logger.Warn("assistant request failed", "error", err)
	} else {
		text, actions = reply.Text, reply.Actions.Model()
		delay = c.delays.reply()
	}

	if !c.sleep(delay) {
		return false
	}

	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	c.mu.Lock()
	stale := req.gen != c.gen || c.closed
	c.mu.Unlock()

	if !stale {
		c.out.AppendAssistant(text, actions)
	}

	c.mu.Lock()
	c.busy = false
	more := len(c.queue) > 0
	c.mu.Unlock()

	if more {
		c.out.ShowComposing()
	}
	return true
}

func (c *Controller) sleep(d time.Duration) bool {
	if d <= 0 {
		return c.ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
