package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/appliancehub/console-api/internal/core/domain"
	"github.com/appliancehub/console-api/internal/core/ports"
)

type stubBackend struct {
	loginFn   func(kind domain.Kind, email, password string) (domain.Credential, error)
	logoutErr error
	logouts   int

	products     []domain.Product
	orders       []domain.Order
	payments     []domain.Payment
	customers    []domain.Customer
	productsErr  error
	ordersErr    error
	paymentsErr  error
	customersErr error
}

func (b *stubBackend) Login(_ context.Context, kind domain.Kind, email, password string) (domain.Credential, error) {
	return b.loginFn(kind, email, password)
}

func (b *stubBackend) Logout(_ context.Context, _ domain.Credential) error {
	b.logouts++
	return b.logoutErr
}

func (b *stubBackend) ListProducts(context.Context, domain.Credential) ([]domain.Product, error) {
	return b.products, b.productsErr
}
func (b *stubBackend) ListOrders(context.Context, domain.Credential) ([]domain.Order, error) {
	return b.orders, b.ordersErr
}
func (b *stubBackend) ListPayments(context.Context, domain.Credential) ([]domain.Payment, error) {
	return b.payments, b.paymentsErr
}
func (b *stubBackend) ListCustomers(context.Context, domain.Credential) ([]domain.Customer, error) {
	return b.customers, b.customersErr
}
func (b *stubBackend) Resource(context.Context, domain.Credential, ports.ResourceRequest) (*ports.ResourceResult, error) {
	return &ports.ResourceResult{Status: 200}, nil
}
func (b *stubBackend) Ping(context.Context) error { return nil }

type stubStore struct {
	mu       sync.Mutex
	saved    map[domain.Kind]domain.Credential
	remember map[domain.Kind]bool
	loadCred *domain.Credential
	loadErr  error
	saveErr  error
	clearErr error
	cleared  int
}

func newStubStore() *stubStore {
	return &stubStore{
		saved:    make(map[domain.Kind]domain.Credential),
		remember: make(map[domain.Kind]bool),
	}
}

func (s *stubStore) Save(_ context.Context, kind domain.Kind, cred domain.Credential, rememberMe bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[kind] = cred
	s.remember[kind] = rememberMe
	return nil
}

func (s *stubStore) Load(context.Context, domain.Kind) (*domain.Credential, error) {
	return s.loadCred, s.loadErr
}

func (s *stubStore) Clear(_ context.Context, kind domain.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	delete(s.saved, kind)
	return s.clearErr
}

func adminCredential() domain.Credential {
	return domain.Credential{
		Principal: domain.Principal{ID: "a1", Email: "admin@example.com", Role: "admin"},
		Token:     "backend-token",
		Mode:      domain.AuthModeBearer,
	}
}

func TestAuthSession_Login_Success(t *testing.T) {
	backend := &stubBackend{loginFn: func(domain.Kind, string, string) (domain.Credential, error) {
		return adminCredential(), nil
	}}
	store := newStubStore()
	s := NewAuthSession(domain.KindAdmin, backend, store, nil, zerolog.Nop())

	cred, err := s.Login(context.Background(), "admin@example.com", "pw", true)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if cred.Principal.ID != "a1" {
		t.Fatalf("unexpected principal: %+v", cred.Principal)
	}

	state := s.Current()
	if !state.Authenticated() || state.IsLoading || state.LastError != "" {
		t.Fatalf("unexpected state after login: %+v", state)
	}
	if !store.remember[domain.KindAdmin] {
		t.Fatalf("expected credential saved with remember-me")
	}
}

func TestAuthSession_Login_WrongRoleDenied(t *testing.T) {
	// Backend answers 200 on the admin endpoint but returns a technician
	// account; the session must refuse it.
	backend := &stubBackend{loginFn: func(domain.Kind, string, string) (domain.Credential, error) {
		return domain.Credential{
			Principal: domain.Principal{ID: "t1", Role: "technician"},
			Token:     "tok",
			Mode:      domain.AuthModeBearer,
		}, nil
	}}
	store := newStubStore()
	s := NewAuthSession(domain.KindAdmin, backend, store, nil, zerolog.Nop())

	if _, err := s.Login(context.Background(), "t@example.com", "pw", false); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	state := s.Current()
	if state.Authenticated() {
		t.Fatalf("session must stay anonymous after role rejection")
	}
	if state.LastError == "" {
		t.Fatalf("expected LastError to be set")
	}
	if len(store.saved) != 0 {
		t.Fatalf("rejected credential must not be persisted")
	}
}

func TestAuthSession_Login_BackendRejection(t *testing.T) {
	backend := &stubBackend{loginFn: func(domain.Kind, string, string) (domain.Credential, error) {
		return domain.Credential{}, domain.ErrAuthFailure
	}}
	s := NewAuthSession(domain.KindAdmin, backend, newStubStore(), nil, zerolog.Nop())

	if _, err := s.Login(context.Background(), "a@example.com", "bad", false); !errors.Is(err, domain.ErrAuthFailure) {
		t.Fatalf("expected ErrAuthFailure, got %v", err)
	}

	state := s.Current()
	if state.Authenticated() || state.IsLoading {
		t.Fatalf("unexpected state after rejection: %+v", state)
	}
	if state.LastError == "" {
		t.Fatalf("expected LastError to record the rejection")
	}
}

func TestAuthSession_Login_SecondAttemptWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &stubBackend{loginFn: func(domain.Kind, string, string) (domain.Credential, error) {
		close(started)
		<-release
		return adminCredential(), nil
	}}
	s := NewAuthSession(domain.KindAdmin, backend, newStubStore(), nil, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), "a@example.com", "pw", false)
		done <- err
	}()
	<-started

	if _, err := s.Login(context.Background(), "a@example.com", "pw", false); !errors.Is(err, domain.ErrLoginInFlight) {
		t.Fatalf("expected ErrLoginInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first login should have succeeded: %v", err)
	}
	if !s.Current().Authenticated() {
		t.Fatalf("first login must win")
	}
}

func TestAuthSession_Login_SaveFailureIsNonFatal(t *testing.T) {
	backend := &stubBackend{loginFn: func(domain.Kind, string, string) (domain.Credential, error) {
		return adminCredential(), nil
	}}
	store := newStubStore()
	store.saveErr = errors.New("redis down")
	s := NewAuthSession(domain.KindAdmin, backend, store, nil, zerolog.Nop())

	if _, err := s.Login(context.Background(), "a@example.com", "pw", false); err != nil {
		t.Fatalf("persistence failure must not fail login: %v", err)
	}
	if !s.Current().Authenticated() {
		t.Fatalf("expected authenticated state")
	}
}

func TestAuthSession_Bootstrap_RestoresCredential(t *testing.T) {
	store := newStubStore()
	cred := adminCredential()
	store.loadCred = &cred
	s := NewAuthSession(domain.KindAdmin, &stubBackend{}, store, nil, zerolog.Nop())

	if !s.Current().IsLoading {
		t.Fatalf("expected loading state before bootstrap")
	}

	s.Bootstrap(context.Background())

	state := s.Current()
	if state.IsLoading {
		t.Fatalf("bootstrap must end loading")
	}
	if !state.Authenticated() || state.Principal.ID != "a1" {
		t.Fatalf("expected restored session, got %+v", state)
	}
}

func TestAuthSession_Bootstrap_AlwaysTerminates(t *testing.T) {
	cases := []struct {
		name  string
		store *stubStore
	}{
		{"empty store", newStubStore()},
		{"store failure", func() *stubStore {
			s := newStubStore()
			s.loadErr = errors.New("storage offline")
			return s
		}()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewAuthSession(domain.KindAdmin, &stubBackend{}, tc.store, nil, zerolog.Nop())
			s.Bootstrap(context.Background())

			state := s.Current()
			if state.IsLoading {
				t.Fatalf("bootstrap must end with IsLoading=false")
			}
			if state.Authenticated() {
				t.Fatalf("expected anonymous session")
			}
		})
	}
}

func TestAuthSession_Logout_AlwaysClearsLocally(t *testing.T) {
	backend := &stubBackend{
		loginFn: func(domain.Kind, string, string) (domain.Credential, error) {
			return adminCredential(), nil
		},
		logoutErr: errors.New("backend unreachable"),
	}
	store := newStubStore()
	store.clearErr = errors.New("storage offline")
	s := NewAuthSession(domain.KindAdmin, backend, store, nil, zerolog.Nop())

	if _, err := s.Login(context.Background(), "a@example.com", "pw", false); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	s.Logout(context.Background())

	state := s.Current()
	if state.Authenticated() || state.Token != "" || state.LastError != "" {
		t.Fatalf("expected clean anonymous state, got %+v", state)
	}
	if backend.logouts != 1 {
		t.Fatalf("expected one backend logout notification, got %d", backend.logouts)
	}
}

func TestAuthSession_Independence(t *testing.T) {
	backend := &stubBackend{loginFn: func(kind domain.Kind, _, _ string) (domain.Credential, error) {
		return domain.Credential{
			Principal: domain.Principal{ID: string(kind) + "-1", Role: kind.Role()},
			Token:     "tok-" + string(kind),
			Mode:      domain.AuthModeBearer,
		}, nil
	}}

	admin := NewAuthSession(domain.KindAdmin, backend, newStubStore(), nil, zerolog.Nop())
	tech := NewAuthSession(domain.KindTechnician, backend, newStubStore(), nil, zerolog.Nop())
	admin.Bootstrap(context.Background())
	tech.Bootstrap(context.Background())

	if _, err := admin.Login(context.Background(), "a@example.com", "pw", false); err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if tech.Current().Authenticated() {
		t.Fatalf("technician session must be untouched by admin login")
	}

	if _, err := tech.Login(context.Background(), "t@example.com", "pw", false); err != nil {
		t.Fatalf("technician login failed: %v", err)
	}
	admin.Logout(context.Background())
	if !tech.Current().Authenticated() {
		t.Fatalf("admin logout must not end the technician session")
	}
}

func TestAuthSession_ClearError(t *testing.T) {
	backend := &stubBackend{loginFn: func(domain.Kind, string, string) (domain.Credential, error) {
		return domain.Credential{}, domain.ErrAuthFailure
	}}
	s := NewAuthSession(domain.KindAdmin, backend, newStubStore(), nil, zerolog.Nop())

	_, _ = s.Login(context.Background(), "a@example.com", "bad", false)
	if s.Current().LastError == "" {
		t.Fatalf("expected LastError set")
	}

	s.ClearError()
	if s.Current().LastError != "" {
		t.Fatalf("expected LastError cleared")
	}
}

func TestAuthSession_CurrentIsACopy(t *testing.T) {
	backend := &stubBackend{loginFn: func(domain.Kind, string, string) (domain.Credential, error) {
		return adminCredential(), nil
	}}
	s := NewAuthSession(domain.KindAdmin, backend, newStubStore(), nil, zerolog.Nop())
	if _, err := s.Login(context.Background(), "a@example.com", "pw", false); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	snap := s.Current()
	snap.Principal.ID = "mutated"
	time.Sleep(time.Millisecond)
	if s.Current().Principal.ID != "a1" {
		t.Fatalf("snapshot mutation leaked into session state")
	}
}
