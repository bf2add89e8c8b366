package ports

import (
	"context"

	"github.com/appliancehub/console-api/internal/core/domain"
)

// AuthSession owns the authentication state for one principal kind.
// Two independent instances (admin, technician) coexist without shared
// state; both may be logged in at the same time.
type AuthSession interface {
	Kind() domain.Kind
	// Bootstrap restores state from the credential store. It always
	// terminates with IsLoading=false, whatever the outcome.
	Bootstrap(ctx context.Context)
	// Login authenticates and persists the credential. On failure the
	// session returns to anonymous, LastError is set, and the error is
	// returned so callers can still react to it.
	Login(ctx context.Context, email, password string, rememberMe bool) (domain.Credential, error)
	// Logout clears local state unconditionally; backend notification is
	// best-effort and never fails the call.
	Logout(ctx context.Context)
	ClearError()
	Current() domain.SessionState
}

// AuditRecorder appends to and reads the console's audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}
