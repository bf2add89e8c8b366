package ports

import (
	"context"

	"github.com/appliancehub/console-api/internal/core/domain"
)

// ResourceRequest is a passthrough call to one of the backend's
// management endpoints (products, categories, time slots, ...). The
// console adds authentication and forwards the body untouched.
type ResourceRequest struct {
	Method string
	Path   string // backend path, e.g. "/products/42"
	Body   []byte
	Query  string // raw query string, may be empty
}

// ResourceResult carries the backend's response back to the handler.
type ResourceResult struct {
	Status      int
	ContentType string
	Body        []byte
}

// Backend is the gateway to the external platform API. All business
// persistence and authority decisions live behind it; the console only
// consumes its request/response shapes.
type Backend interface {
	// Login authenticates against the kind-specific login endpoint and
	// returns a normalized credential. Failures map onto the domain
	// error taxonomy (ErrAuthFailure, ErrTransport, *ProtocolError).
	Login(ctx context.Context, kind domain.Kind, email, password string) (domain.Credential, error)
	// Logout notifies the backend that the session ended. Callers treat
	// it as fire-and-forget.
	Logout(ctx context.Context, cred domain.Credential) error

	ListProducts(ctx context.Context, cred domain.Credential) ([]domain.Product, error)
	ListOrders(ctx context.Context, cred domain.Credential) ([]domain.Order, error)
	ListPayments(ctx context.Context, cred domain.Credential) ([]domain.Payment, error)
	ListCustomers(ctx context.Context, cred domain.Credential) ([]domain.Customer, error)

	// Resource proxies an arbitrary management call.
	Resource(ctx context.Context, cred domain.Credential, req ResourceRequest) (*ResourceResult, error)

	// Ping probes backend reachability for the readiness endpoint.
	Ping(ctx context.Context) error
}
