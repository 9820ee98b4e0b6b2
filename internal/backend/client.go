// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is where a locally running backend (or the sandbox) listens.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultDialogueTimeout bounds an assistant call.
	DefaultDialogueTimeout = 15 * time.Second

	// DefaultPaymentTimeout bounds payment submissions and status checks.
	DefaultPaymentTimeout = 30 * time.Second

	// DefaultCSRFCookie is the cookie carrying the anti-forgery token.
	DefaultCSRFCookie = "csrftoken"

	// DefaultCSRFHeader is the header the token is mirrored into.
	DefaultCSRFHeader = "X-CSRFToken"

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 1 * 1024 * 1024
)

// Endpoint paths.
const (
	PathAssistant = "/api/assistente/resposta/"
	PathPayment   = "/api/pagamento/processar/"
	PathStatus    = "/api/pagamento/status/"
)

// Error variables for backend failures.
var (
	// ErrTransport marks every network, timeout, HTTP status or decoding failure.
	ErrTransport = errors.New("backend transport failure")

	// ErrInvalidResponse indicates a 2xx response whose body could not be decoded.
	ErrInvalidResponse = errors.New("invalid response body")

	// ErrEmptyTransactionID is returned when a status query has no id.
	ErrEmptyTransactionID = errors.New("transaction id is empty")
)

// HTTPError is a non-2xx answer from the backend.
type HTTPError struct {
	Method string
	Path   string
	Status int
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Is makes every HTTPError match ErrTransport.
func (e *HTTPError) Is(target error) bool {
	return target == ErrTransport
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the assistant and payment endpoints. It is safe for
// concurrent use.
type Client struct {
	baseURL         *url.URL
	http            *http.Client
	csrfCookie      string
	csrfHeader      string
	dialogueTimeout time.Duration
	paymentTimeout  time.Duration
	logger          *slog.Logger
}

// New creates a client for the backend at baseURL.
func New(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Jar: jar,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		csrfCookie:      DefaultCSRFCookie,
		csrfHeader:      DefaultCSRFHeader,
		dialogueTimeout: DefaultDialogueTimeout,
		paymentTimeout:  DefaultPaymentTimeout,
		logger:          slog.Default(),
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client. The client's cookie
// jar is kept when hc has none.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc.Jar == nil {
		hc.Jar = c.http.Jar
	}
	c.http = hc
	return c
}

// WithTimeouts sets the per-class request timeouts. Zero keeps the current value.
func (c *Client) WithTimeouts(dialogue, payment time.Duration) *Client {
	if dialogue > 0 {
		c.dialogueTimeout = dialogue
	}
	if payment > 0 {
		c.paymentTimeout = payment
	}
	return c
}

// WithCSRF sets the cookie and header names used for the anti-forgery token.
func (c *Client) WithCSRF(cookie, header string) *Client {
	if cookie != "" {
		c.csrfCookie = cookie
	}
	if header != "" {
		c.csrfHeader = header
	}
	return c
}

// WithLogger sets the logger used for request tracing.
func (c *Client) WithLogger(l *slog.Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CSRFToken returns the anti-forgery token from the cookie jar.
func (c *Client) CSRFToken() (string, bool) {
	if c.http.Jar == nil {
		return "", false
	}
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == c.csrfCookie && ck.Value != "" {
			return ck.Value, true
		}
	}
	return "", false
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Prime loads the backend root page so it can hand out its session and
// anti-forgery cookies.
func (c *Client) Prime(ctx context.Context) error {
	return c.do(ctx, c.dialogueTimeout, http.MethodGet, "/", nil, nil, nil)
}

// AssistantReply sends one user message and returns the assistant's reply.
func (c *Client) AssistantReply(ctx context.Context, text string) (*AssistantReply, error) {
	var reply AssistantReply
	if err := c.do(ctx, c.dialogueTimeout, http.MethodPost, PathAssistant, nil, AssistantRequest{Message: text}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ProcessPayment submits a card payment. A decline is not an error: it is
// reported through PaymentResult.Success.
func (c *Client) ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	var result PaymentResult
	if err := c.do(ctx, c.paymentTimeout, http.MethodPost, PathPayment, nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PaymentStatus queries the status of a transaction.
func (c *Client) PaymentStatus(ctx context.Context, transactionID string) (*StatusResult, error) {
	if transactionID == "" {
		return nil, ErrEmptyTransactionID
	}
	var result StatusResult
	q := url.Values{"transaction_id": {transactionID}}
	if err := c.do(ctx, c.paymentTimeout, http.MethodGet, PathStatus, q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do performs one request. Bodies are never logged: they carry credentials.
func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, query url.Values, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := c.baseURL.JoinPath(path)
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	c.setHeaders(req, requestID, in != nil)

	c.logger.Debug("backend request", "method", method, "path", path, "request_id", requestID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend response", "status", resp.StatusCode, "path", path,
		"request_id", requestID, "duration", time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Method: method, Path: path, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w: %v", ErrTransport, ErrInvalidResponse, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, requestID string, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token, ok := c.CSRFToken(); ok {
		req.Header.Set(c.csrfHeader, token)
	}
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}
