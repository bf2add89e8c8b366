package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/appliancehub/console-api/internal/core/domain"
	"github.com/appliancehub/console-api/internal/core/ports"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, zerolog.Nop()), srv
}

func bearerCred() domain.Credential {
	return domain.Credential{
		Principal: domain.Principal{ID: "a1", Role: "admin"},
		Token:     "backend-token",
		Mode:      domain.AuthModeBearer,
	}
}

func TestClient_Login_Success(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login/admin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		// Numeric id under a variant key; must still normalize.
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"user_Id":7,"email":"a@example.com","role":"admin"}}`))
	}))

	cred, err := c.Login(context.Background(), domain.KindAdmin, "a@example.com", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if cred.Principal.ID != "7" {
		t.Fatalf("expected normalized id 7, got %q", cred.Principal.ID)
	}
	if cred.Mode != domain.AuthModeBearer || cred.Token != "tok-1" {
		t.Fatalf("expected bearer credential, got %+v", cred)
	}
}

func TestClient_Login_CookieModeWithoutToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"t1","role":"technician"}}`))
	}))

	cred, err := c.Login(context.Background(), domain.KindTechnician, "t@example.com", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if cred.Mode != domain.AuthModeCookie {
		t.Fatalf("tokenless login must produce cookie mode, got %q", cred.Mode)
	}
}

func TestClient_Login_NonJSONBodyIsProtocolError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html><body>upstream exploded</body></html>"))
	}))

	_, err := c.Login(context.Background(), domain.KindAdmin, "a@example.com", "pw")
	var pe *domain.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if pe.Status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", pe.Status)
	}
	if !strings.Contains(pe.Snippet, "upstream exploded") {
		t.Fatalf("snippet should carry the body, got %q", pe.Snippet)
	}
}

func TestClient_Login_ErrorFieldOn200(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
	}))

	_, err := c.Login(context.Background(), domain.KindAdmin, "a@example.com", "bad")
	if !errors.Is(err, domain.ErrAuthFailure) {
		t.Fatalf("expected ErrAuthFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid credentials") {
		t.Fatalf("backend message must pass through, got %q", err.Error())
	}
}

func TestClient_Login_NonOKStatusWithoutMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := c.Login(context.Background(), domain.KindAdmin, "a@example.com", "bad")
	if !errors.Is(err, domain.ErrAuthFailure) {
		t.Fatalf("expected ErrAuthFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("fallback message should name the status, got %q", err.Error())
	}
}

func TestClient_Login_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := New(srv.URL, time.Second, zerolog.Nop())
	srv.Close()

	_, err := c.Login(context.Background(), domain.KindAdmin, "a@example.com", "pw")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestClient_ListOrders_EnvelopeShapes(t *testing.T) {
	bodies := map[string]string{
		"bare array": `[{"id":1,"user_id":"c1","total_amount":"10.50"}]`,
		"wrapped":    `{"orders":[{"id":1,"user_id":"c1","total_amount":10.5}]}`,
		"data key":   `{"data":[{"id":1,"user_id":"c1","amount":10.5}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))

			orders, err := c.ListOrders(context.Background(), bearerCred())
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(orders) != 1 {
				t.Fatalf("expected one order, got %d", len(orders))
			}
			if orders[0].ID != "1" || orders[0].CustomerID != "c1" {
				t.Fatalf("normalization failed: %+v", orders[0])
			}
			if !orders[0].Total.Equal(decimal.RequireFromString("10.5")) {
				t.Fatalf("unexpected total: %s", orders[0].Total)
			}
		})
	}
}

func TestClient_ListOrders_MissingEnvelopeKeyIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	orders, err := c.ListOrders(context.Background(), bearerCred())
	if err != nil {
		t.Fatalf("empty envelope must not error: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func TestClient_ListOrders_SkipsUndecodableRecords(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"1","user_id":"c1"}, 42, {"id":"2","user_id":"c2"}]`))
	}))

	orders, err := c.ListOrders(context.Background(), bearerCred())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("bad records must be skipped, not fatal: got %d", len(orders))
	}
}

func TestClient_ListOrders_ErrorStatuses(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrAuthFailure},
		{http.StatusForbidden, domain.ErrAccessDenied},
	}

	for _, tc := range cases {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))

		_, err := c.ListOrders(context.Background(), bearerCred())
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestClient_ListOrders_NonJSONIsProtocolError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))

	_, err := c.ListOrders(context.Background(), bearerCred())
	var pe *domain.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestClient_Resource_Passthrough(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/products/42" || r.URL.RawQuery != "active=true" {
			t.Errorf("unexpected url %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer backend-token" {
			t.Errorf("missing bearer header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	result, err := c.Resource(context.Background(), bearerCred(), ports.ResourceRequest{
		Method: http.MethodPut,
		Path:   "/products/42",
		Body:   []byte(`{"name":"washer"}`),
		Query:  "active=true",
	})
	if err != nil {
		t.Fatalf("resource call failed: %v", err)
	}
	if result.Status != http.StatusCreated {
		t.Fatalf("status must pass through, got %d", result.Status)
	}
	if string(result.Body) != `{"ok":true}` {
		t.Fatalf("body must pass through, got %s", result.Body)
	}
}

func TestClient_Ping(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("any HTTP response counts as reachable: %v", err)
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	dead := New(srv.URL, time.Second, zerolog.Nop())
	srv.Close()
	if err := dead.Ping(context.Background()); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}
