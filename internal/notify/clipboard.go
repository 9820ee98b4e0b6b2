// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Messages shown after a copy attempt.
const (
	CopiedMessage     = "Copiado para a área de transferência!"
	CopyFailedMessage = "Erro ao copiar texto"
)

// clipboardWrite is replaced in tests; CI machines have no clipboard.
var clipboardWrite = clipboard.WriteAll

// CopyToClipboard copies text to the system clipboard and reports the
// outcome as a toast.
func (m *Manager) CopyToClipboard(text string) error {
	if err := clipboardWrite(text); err != nil {
		m.Error(CopyFailedMessage)
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	m.Success(CopiedMessage)
	return nil
}
