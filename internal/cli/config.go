// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/paychat/internal/config"
)

// HandleConfig shows or edits the configuration. cfg is the effective
// configuration; set edits the file on disk.
func HandleConfig(cfg *config.Config, args Args, out io.Writer) error {
	switch strings.ToLower(args.Subcommand) {
	case "", "show":
		fmt.Fprintln(out, cfg.String())
		return nil

	case "get":
		if args.ConfigKey == "" {
			return fmt.Errorf("usage: paychat config get KEY (keys: %s)", strings.Join(config.GetAllKeys(), ", "))
		}
		v, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
		return nil

	case "set":
		if args.ConfigKey == "" {
			return fmt.Errorf("usage: paychat config set KEY VALUE")
		}
		// Reload so command-line overrides are not written back.
		onDisk, err := config.Load()
		if err != nil {
			return err
		}
		if err := onDisk.Set(args.ConfigKey, args.ConfigVal); err != nil {
			return err
		}
		if err := onDisk.Validate(); err != nil {
			return err
		}
		if err := config.Save(onDisk); err != nil {
			return err
		}
		fmt.Fprintln(out, SuccessStyle.Render("Salvo: "+args.ConfigKey+" = "+args.ConfigVal))
		return nil

	case "path":
		p, err := config.ActivePath()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, p)
		return nil

	case "keys":
		for _, k := range config.GetAllKeys() {
			fmt.Fprintln(out, k)
		}
		return nil

	default:
		return fmt.Errorf("unknown config subcommand %q (show, get, set, path, keys)", args.Subcommand)
	}
}
