// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jeranaias/paychat/internal/config"
	"github.com/jeranaias/paychat/internal/payment"
	"github.com/jeranaias/paychat/internal/session"
	"github.com/jeranaias/paychat/internal/ui/components"
)

// StatusReport is the --json output of the status command.
type StatusReport struct {
	TransactionID string   `json:"transaction_id,omitempty"`
	State         string   `json:"state"`
	Messages      []string `json:"messages,omitempty"`
	Notes         []string `json:"notes,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// HandleStatus checks the last persisted transaction once and prints the
// outcome.
func HandleStatus(ctx context.Context, cfg *config.Config, logger *slog.Logger, args Args, out io.Writer) error {
	sess, err := OpenSession(cfg, logger, args)
	if err != nil {
		return err
	}
	defer sess.Close()

	report := CheckOnce(ctx, sess)
	if args.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if out == os.Stdout {
		applyColorProfile()
	}
	fmt.Fprintln(out, TitleStyle.Render("Status do Pagamento"))
	if report.TransactionID != "" {
		fmt.Fprintln(out, RenderField("Transação", report.TransactionID))
	}
	fmt.Fprintln(out, RenderField("Estado", report.State))
	for _, m := range report.Messages {
		fmt.Fprintln(out, m)
	}
	for _, n := range report.Notes {
		fmt.Fprintln(out, DimStyle.Render(n))
	}
	if text := sess.Payment.View().Text(); text != "" {
		fmt.Fprintln(out, RenderSeparator(40))
		fmt.Fprintln(out, text)
	}
	return nil
}

// CheckOnce runs one status check on sess and collects what it produced.
func CheckOnce(ctx context.Context, sess *session.Session) StatusReport {
	var report StatusReport
	report.TransactionID, _ = sess.Prefs.LastTransactionID()

	err := sess.Payment.CheckStatus(ctx)
	if err != nil && !errors.Is(err, payment.ErrNoTransaction) {
		report.Error = err.Error()
	}

	report.State = sess.Payment.State().String()
	for _, m := range sess.Transcript.Snapshot().Messages {
		if m.IsAssistant() {
			report.Messages = append(report.Messages, m.Text)
		}
	}
	for _, t := range sess.Toasts.Active() {
		report.Notes = append(report.Notes, components.ToastLine(t))
	}
	return report
}
