// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jeranaias/paychat/internal/config"
	"github.com/jeranaias/paychat/internal/sandbox"
)

// HandleSandbox runs the local sandbox backend until ctx is cancelled.
func HandleSandbox(ctx context.Context, cfg *config.Config, logger *slog.Logger, args Args, out io.Writer) error {
	sb := cfg.Sandbox
	if args.Addr != "" {
		sb.Addr = args.Addr
	}

	fmt.Fprintln(out, TitleStyle.Render("paychat sandbox"))
	fmt.Fprintln(out, RenderField("Endereço", "http://"+sb.Addr))
	fmt.Fprintln(out, RenderField("Aprova após", fmt.Sprintf("%d consultas", sb.ApproveAfterChecks)))
	fmt.Fprintln(out, DimStyle.Render("Cartões terminados em "+sandbox.DeclinedCardSuffix+" são recusados. Ctrl+C encerra."))

	return sandbox.New(sb, logger).ListenAndServe(ctx)
}
