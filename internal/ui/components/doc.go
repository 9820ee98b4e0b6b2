// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the rendering pieces of the paychat TUI.

Components are stateless renderers over domain views, except CardForm which
owns the text inputs of the card payment form.

# Display Components

Header (header.go) - Title bar with the selected plan and last transaction.
StatusBar (header.go) - Key hints for the focused area.
Message (message.go) - Transcript messages with role labels and timestamps.
PaymentPanel (panel.go) - Renders payment.View: instructions, codes, QR,
progress, outcome and available actions.
QR (qr.go) - Terminal QR codes drawn with half-block characters.
Toasts (toast.go) - Transient notifications, newest first.

# Input Components

CardForm (cardform.go) - Masked card inputs backed by bubbles/textinput.
*/
package components
