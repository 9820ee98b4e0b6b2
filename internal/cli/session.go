// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"log/slog"

	"github.com/jeranaias/paychat/internal/config"
	"github.com/jeranaias/paychat/internal/model"
	"github.com/jeranaias/paychat/internal/session"
)

// OpenSession opens a client session for cfg. An explicit --plan replaces
// the persisted plan choice.
func OpenSession(cfg *config.Config, logger *slog.Logger, args Args) (*session.Session, error) {
	sess, err := session.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if args.Plan != "" {
		if _, ok := model.GetPlan(cfg.Payment.DefaultPlan); ok {
			if err := sess.Prefs.SetSelectedPlan(cfg.Payment.DefaultPlan); err != nil {
				logger.Warn("failed to persist plan", "error", err)
			}
		}
	}
	return sess, nil
}
