// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the paychat TUI.

# Color System (colors.go)

All colors use Lip Gloss AdaptiveColor. Accents carry meaning:

  - Purple - assistant messages and focus
  - Cyan - user messages, codes and links
  - Emerald - approved payments
  - Amber - pending payments and warnings
  - Rose - declines and errors

# Theme System (theme.go)

The theme is chosen from configuration ("auto", "dark", "light"). In auto
mode the persisted darkTheme preference wins over terminal detection:

	dark, ok := prefs.DarkTheme()
	theme := styles.NewTheme(styles.ResolveDark(cfg.UI.Theme, dark, ok))
*/
package styles
