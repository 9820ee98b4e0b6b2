// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sandbox

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transaction statuses reported by the sandbox.
const (
	StatusPending  = "pendente"
	StatusApproved = "aprovado"
	StatusDeclined = "recusado"
)

// Transaction is one simulated payment.
type Transaction struct {
	ID        string
	Session   string
	Method    string
	PlanID    string
	Status    string
	Checks    int
	CreatedAt time.Time
}

// Ledger records transactions in memory.
type Ledger struct {
	mu           sync.Mutex
	txs          map[string]*Transaction
	approveAfter int
	now          func() time.Time
}

// NewLedger creates a ledger whose pending transactions are approved on
// the status check following approveAfter pending answers.
func NewLedger(approveAfter int) *Ledger {
	return &Ledger{
		txs:          make(map[string]*Transaction),
		approveAfter: approveAfter,
		now:          time.Now,
	}
}

// Create records a new transaction and returns a copy of it.
func (l *Ledger) Create(session, method, planID, status string) Transaction {
	tx := &Transaction{
		ID:        fmt.Sprintf("%s_%s_%s", strings.ToUpper(method), planID, uuid.NewString()[:8]),
		Session:   session,
		Method:    method,
		PlanID:    planID,
		Status:    status,
		CreatedAt: l.now(),
	}

	l.mu.Lock()
	l.txs[tx.ID] = tx
	l.mu.Unlock()
	return *tx
}

// Check answers a status query and advances pending transactions.
func (l *Ledger) Check(id string) (Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.txs[id]
	if !ok {
		return Transaction{}, false
	}
	if tx.Status == StatusPending {
		if tx.Checks >= l.approveAfter {
			tx.Status = StatusApproved
		}
		tx.Checks++
	}
	return *tx, true
}

// History returns the transactions of a session, oldest first.
func (l *Ledger) History(session string) []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Transaction
	for _, tx := range l.txs {
		if tx.Session == session {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
