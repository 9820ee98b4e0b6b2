// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payment

import "fmt"

// Assistant messages appended to the conversation by the payment flow.
const (
	MsgCardApproved    = "Pagamento aprovado com sucesso! Seu plano já está ativo."
	MsgCardDeclined    = "Desculpe, seu pagamento foi recusado. Por favor, verifique os dados do cartão e tente novamente."
	MsgCardFailed      = "Desculpe, ocorreu um erro ao processar seu pagamento. Por favor, tente novamente mais tarde."
	MsgStatusConfirmed = "Seu pagamento foi confirmado! Seu plano já está ativo."
)

// Notification texts.
const (
	NoteNoTransaction   = "Nenhuma transação em andamento"
	NoteStatusFailed    = "Erro ao verificar status"
	NoteStatusTransport = "Erro ao verificar status do pagamento"
	NoteIncompleteCard  = "Preencha todos os dados do cartão"
)

// DefaultDeclineReason is shown when the backend declines without a reason.
const DefaultDeclineReason = "Pagamento recusado"

// msgStatusPending echoes a non-terminal status into the conversation.
func msgStatusPending(status string) string {
	return fmt.Sprintf("Seu pagamento está sendo processado. Status atual: %s", status)
}

// statusAnnotation is attached to the restored view after a status check.
func statusAnnotation(status string) string {
	return "Status atual: " + status
}
