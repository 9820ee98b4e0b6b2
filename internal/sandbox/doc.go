// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sandbox implements a local stand-in for the payment assistant
// backend, for development and end-to-end tests.
//
// Endpoints:
//   - GET  /                          - Issues session and anti-forgery cookies
//   - GET  /health                    - Health check
//   - POST /api/assistente/resposta/  - Keyword-driven assistant dialogue
//   - POST /api/pagamento/processar/  - Card payment submission
//   - GET  /api/pagamento/status/     - Transaction status
//
// POST requests must mirror the csrftoken cookie in the X-CSRFToken header.
//
// Payment rules:
//   - Card numbers ending in 0002 are declined with "saldo insuficiente"
//   - Card payments are otherwise approved immediately
//   - PIX and boleto transactions stay "pendente" for a configurable number
//     of status checks, then become "aprovado"
package sandbox
