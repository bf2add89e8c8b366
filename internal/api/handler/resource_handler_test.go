package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/appliancehub/console-api/internal/core/domain"
	"github.com/appliancehub/console-api/internal/core/ports"
)

type stubProxyBackend struct {
	lastReq  ports.ResourceRequest
	lastCred domain.Credential
	result   *ports.ResourceResult
	err      error
}

func (b *stubProxyBackend) Login(context.Context, domain.Kind, string, string) (domain.Credential, error) {
	return domain.Credential{}, nil
}
func (b *stubProxyBackend) Logout(context.Context, domain.Credential) error { return nil }
func (b *stubProxyBackend) ListProducts(context.Context, domain.Credential) ([]domain.Product, error) {
	return nil, nil
}
func (b *stubProxyBackend) ListOrders(context.Context, domain.Credential) ([]domain.Order, error) {
	return nil, nil
}
func (b *stubProxyBackend) ListPayments(context.Context, domain.Credential) ([]domain.Payment, error) {
	return nil, nil
}
func (b *stubProxyBackend) ListCustomers(context.Context, domain.Credential) ([]domain.Customer, error) {
	return nil, nil
}
func (b *stubProxyBackend) Resource(_ context.Context, cred domain.Credential, req ports.ResourceRequest) (*ports.ResourceResult, error) {
	b.lastReq = req
	b.lastCred = cred
	return b.result, b.err
}
func (b *stubProxyBackend) Ping(context.Context) error { return nil }

func signedInSession(kind domain.Kind) *stubSession {
	return &stubSession{
		kind: kind,
		state: domain.SessionState{
			Principal: &domain.Principal{ID: "p1", Role: kind.Role()},
			Token:     "backend-token",
			Mode:      domain.AuthModeBearer,
		},
	}
}

func TestResourceHandler_Collection(t *testing.T) {
	backend := &stubProxyBackend{result: &ports.ResourceResult{
		Status:      http.StatusOK,
		ContentType: echo.MIMEApplicationJSON,
		Body:        []byte(`[{"id":"1"}]`),
	}}
	h := NewResourceHandler(backend, signedInSession(domain.KindAdmin))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/products?category=washers", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Collection("products")(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != `[{"id":"1"}]` {
		t.Fatalf("response not passed through: %d %s", rec.Code, rec.Body.String())
	}
	if backend.lastReq.Path != "/products" || backend.lastReq.Query != "category=washers" {
		t.Fatalf("unexpected backend request: %+v", backend.lastReq)
	}
	if backend.lastCred.Token != "backend-token" {
		t.Fatalf("session credential not attached")
	}
}

func TestResourceHandler_ItemForwardsBodyAndStatus(t *testing.T) {
	backend := &stubProxyBackend{result: &ports.ResourceResult{
		Status: http.StatusUnprocessableEntity,
		Body:   []byte(`{"error":"stock cannot be negative"}`),
	}}
	h := NewResourceHandler(backend, signedInSession(domain.KindAdmin))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/products/42", strings.NewReader(`{"stock":-1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")

	if err := h.Item("products")(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("backend status must pass through, got %d", rec.Code)
	}
	if backend.lastReq.Method != http.MethodPut || backend.lastReq.Path != "/products/42" {
		t.Fatalf("unexpected backend request: %+v", backend.lastReq)
	}
	if string(backend.lastReq.Body) != `{"stock":-1}` {
		t.Fatalf("body not forwarded: %s", backend.lastReq.Body)
	}
}

func TestResourceHandler_AnonymousSession(t *testing.T) {
	backend := &stubProxyBackend{}
	h := NewResourceHandler(backend, &stubSession{kind: domain.KindAdmin})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Collection("products")(c); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestResourceHandler_BackendErrorPropagates(t *testing.T) {
	backend := &stubProxyBackend{err: domain.ErrTransport}
	h := NewResourceHandler(backend, signedInSession(domain.KindTechnician))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/technician/timeslots", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Collection("timeslots")(c); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}
