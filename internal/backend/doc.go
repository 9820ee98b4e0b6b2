// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend implements the HTTP client for the assistant and payment
// endpoints.
//
// # Endpoints
//
//   - POST /api/assistente/resposta/   assistant reply for one user message
//   - POST /api/pagamento/processar/   card payment submission
//   - GET  /api/pagamento/status/      status of a transaction
//
// # Anti-forgery token
//
// The client keeps a cookie jar. When the backend has set a "csrftoken"
// cookie its value is mirrored in the X-CSRFToken header of every request.
// Without the cookie the header is omitted and the backend decides.
//
// # Errors
//
// Every failure that is not a well-formed JSON body with a 2xx status is a
// transport failure: errors.Is(err, ErrTransport) holds. Non-2xx statuses
// are additionally reported as *HTTPError.
package backend
