// Package gateway is the console's only door to the external platform
// backend. It is a thin request/response mapper: it adds
// authentication, normalizes the backend's inconsistent envelopes and
// field names, and maps failures onto the domain error taxonomy. No
// business decisions are made here.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/appliancehub/console-api/internal/api/metrics"
	"github.com/appliancehub/console-api/internal/core/domain"
	"github.com/appliancehub/console-api/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client implements ports.Backend over HTTP.
type Client struct {
	baseURL string
	hc      *http.Client
	log     zerolog.Logger
}

// New creates a backend client. A default timeout is applied when none
// is provided.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		log:     log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
	Error json.RawMessage `json:"error"`
}

// Login authenticates against the kind-specific endpoint. Both a
// non-2xx status and a truthy error field on a 2xx response count as
// rejection; a body that does not decode as the expected structure is a
// protocol error carrying the status and a body snippet.
func (c *Client) Login(ctx context.Context, kind domain.Kind, email, password string) (domain.Credential, error) {
	if !kind.Valid() {
		return domain.Credential{}, fmt.Errorf("unknown principal kind %q", kind)
	}

	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return domain.Credential{}, fmt.Errorf("encode login request: %w", err)
	}

	status, data, err := c.do(ctx, http.MethodPost, "/auth/login/"+string(kind), "login", body, domain.Credential{})
	if err != nil {
		return domain.Credential{}, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}

	var payload loginResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.Credential{}, domain.NewProtocolError(status, data)
	}

	errMsg, rejected := truthyError(payload.Error)
	if status < 200 || status >= 300 || rejected {
		if errMsg == "" {
			errMsg = fmt.Sprintf("Login failed (status %d)", status)
		}
		return domain.Credential{}, fmt.Errorf("%w: %s", domain.ErrAuthFailure, errMsg)
	}

	if len(payload.User) == 0 {
		return domain.Credential{}, domain.NewProtocolError(status, data)
	}
	var rp rawPrincipal
	if err := json.Unmarshal(payload.User, &rp); err != nil {
		return domain.Credential{}, domain.NewProtocolError(status, data)
	}

	cred := domain.Credential{
		Principal: rp.normalize(),
		Token:     payload.Token,
		Mode:      domain.AuthModeCookie,
	}
	if cred.Token != "" {
		cred.Mode = domain.AuthModeBearer
	}
	return cred, nil
}

// Logout notifies the backend. Callers treat the result as advisory;
// the session clears locally whatever happens here.
func (c *Client) Logout(ctx context.Context, cred domain.Credential) error {
	_, _, err := c.do(ctx, http.MethodPost, "/auth/logout", "logout", nil, cred)
	return err
}

func (c *Client) ListProducts(ctx context.Context, cred domain.Credential) ([]domain.Product, error) {
	items, err := c.listRaw(ctx, cred, "/products", "products")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(items))
	for _, item := range items {
		var rp rawProduct
		if err := json.Unmarshal(item, &rp); err != nil {
			c.log.Debug().Err(err).Msg("skipping undecodable product record")
			continue
		}
		out = append(out, rp.normalize())
	}
	return out, nil
}

func (c *Client) ListOrders(ctx context.Context, cred domain.Credential) ([]domain.Order, error) {
	items, err := c.listRaw(ctx, cred, "/orders", "orders")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(items))
	for _, item := range items {
		var ro rawOrder
		if err := json.Unmarshal(item, &ro); err != nil {
			c.log.Debug().Err(err).Msg("skipping undecodable order record")
			continue
		}
		out = append(out, ro.normalize())
	}
	return out, nil
}

func (c *Client) ListPayments(ctx context.Context, cred domain.Credential) ([]domain.Payment, error) {
	items, err := c.listRaw(ctx, cred, "/payments", "payments")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		var rp rawPayment
		if err := json.Unmarshal(item, &rp); err != nil {
			c.log.Debug().Err(err).Msg("skipping undecodable payment record")
			continue
		}
		out = append(out, rp.normalize())
	}
	return out, nil
}

func (c *Client) ListCustomers(ctx context.Context, cred domain.Credential) ([]domain.Customer, error) {
	items, err := c.listRaw(ctx, cred, "/customers", "customers")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		var rc rawCustomer
		if err := json.Unmarshal(item, &rc); err != nil {
			c.log.Debug().Err(err).Msg("skipping undecodable customer record")
			continue
		}
		out = append(out, rc.normalize())
	}
	return out, nil
}

// Resource proxies a management call and hands the raw result back.
func (c *Client) Resource(ctx context.Context, cred domain.Credential, req ports.ResourceRequest) (*ports.ResourceResult, error) {
	path := req.Path
	if req.Query != "" {
		path += "?" + req.Query
	}

	httpReq, err := c.newRequest(ctx, req.Method, path, req.Body, cred)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues("resource", "error").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.BackendRequestsTotal.WithLabelValues("resource", strconv.Itoa(resp.StatusCode)).Inc()
	metrics.BackendRequestDuration.WithLabelValues("resource").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrTransport, err)
	}

	return &ports.ResourceResult{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// Ping probes backend reachability. Any HTTP response counts as
// reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodGet, "/health", "ping", nil, domain.Credential{})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	return nil
}

func (c *Client) listRaw(ctx context.Context, cred domain.Credential, path, key string) ([]json.RawMessage, error) {
	status, data, err := c.do(ctx, http.MethodGet, path, key, nil, cred)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	if status < 200 || status >= 300 {
		return nil, c.apiError(status, data)
	}

	items, err := unwrapCollection(data, key)
	if err != nil {
		return nil, domain.NewProtocolError(status, data)
	}
	return items, nil
}

// apiError maps a non-2xx backend response onto the error taxonomy.
func (c *Client) apiError(status int, data []byte) error {
	var envelope struct {
		Error string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(data, &envelope); err == nil {
		msg = envelope.Error
	}

	switch status {
	case http.StatusUnauthorized:
		if msg != "" {
			return fmt.Errorf("%w: %s", domain.ErrAuthFailure, msg)
		}
		return domain.ErrAuthFailure
	case http.StatusForbidden:
		if msg != "" {
			return fmt.Errorf("%w: %s", domain.ErrAccessDenied, msg)
		}
		return domain.ErrAccessDenied
	}
	if msg != "" {
		return fmt.Errorf("backend error (status %d): %s", status, msg)
	}
	return domain.NewProtocolError(status, data)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte, cred domain.Credential) (*http.Request, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred.Mode == domain.AuthModeBearer && cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}
	return req, nil
}

// do executes a request and returns the status plus the (size-limited)
// body. op is the logical operation label used for metrics.
func (c *Client) do(ctx context.Context, method, path, op string, body []byte, cred domain.Credential) (int, []byte, error) {
	req, err := c.newRequest(ctx, method, path, body, cred)
	if err != nil {
		return 0, nil, err
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(op, "error").Inc()
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.BackendRequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// truthyError interprets the backend's error field, which may be a
// string, boolean, null, or absent. A non-empty string or any other
// truthy value marks the response as a rejection even on a 2xx status.
func truthyError(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("false")) {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	}
	if bytes.Equal(trimmed, []byte("0")) {
		return "", false
	}
	return "", true
}
