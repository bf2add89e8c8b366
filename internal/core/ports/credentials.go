package ports

import (
	"context"

	"github.com/appliancehub/console-api/internal/core/domain"
)

// CredentialTier is one of the two storage tiers a credential record can
// live in: durable (survives console restarts) or session-scoped
// (expires on its own). Get returns (nil, nil) when no record exists.
type CredentialTier interface {
	Put(ctx context.Context, kind domain.Kind, rec domain.CredentialRecord) error
	Get(ctx context.Context, kind domain.Kind) (*domain.CredentialRecord, error)
	Delete(ctx context.Context, kind domain.Kind) error
}

// CredentialStore persists and recovers the {token, principal} pair for
// each principal kind, honouring the remember-me tier choice.
type CredentialStore interface {
	// Save writes the credential to exactly one tier (durable when
	// rememberMe, session-scoped otherwise) and clears the other.
	Save(ctx context.Context, kind domain.Kind, cred domain.Credential, rememberMe bool) error
	// Load reads the durable tier first, then the session tier. A record
	// whose principal JSON fails to parse is treated as absent: both
	// tiers are cleared and (nil, nil) is returned. Load never surfaces
	// parse errors to the caller.
	Load(ctx context.Context, kind domain.Kind) (*domain.Credential, error)
	// Clear removes the record for kind from both tiers.
	Clear(ctx context.Context, kind domain.Kind) error
}
