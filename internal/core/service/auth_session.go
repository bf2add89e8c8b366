package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/appliancehub/console-api/internal/core/domain"
	"github.com/appliancehub/console-api/internal/core/ports"
)

// AuthSession holds the authentication state for one principal kind.
// The admin and technician instances are fully independent: logging in
// or out of one never touches the other.
type AuthSession struct {
	kind    domain.Kind
	backend ports.Backend
	store   ports.CredentialStore
	audit   ports.AuditRecorder
	log     zerolog.Logger

	mu       sync.Mutex
	state    domain.SessionState
	inFlight bool
}

// NewAuthSession creates a session in the bootstrapping state. Call
// Bootstrap before serving traffic; until then guarded routes report
// the session as pending.
func NewAuthSession(kind domain.Kind, backend ports.Backend, store ports.CredentialStore, audit ports.AuditRecorder, log zerolog.Logger) *AuthSession {
	return &AuthSession{
		kind:    kind,
		backend: backend,
		store:   store,
		audit:   audit,
		log:     log.With().Str("session", string(kind)).Logger(),
		state:   domain.SessionState{IsLoading: true},
	}
}

func (s *AuthSession) Kind() domain.Kind { return s.kind }

// Bootstrap restores session state from the credential store. Whatever
// happens — record found, record absent, corrupted record self-healed —
// it terminates with IsLoading=false. It never returns an error: a
// failed recovery just leaves the session anonymous.
func (s *AuthSession) Bootstrap(ctx context.Context) {
	cred, err := s.store.Load(ctx, s.kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = false
	if err != nil || cred == nil {
		if err != nil {
			s.log.Warn().Err(err).Msg("credential recovery failed, starting anonymous")
		}
		return
	}

	principal := cred.Principal
	s.state.Principal = &principal
	s.state.Token = cred.Token
	s.state.Mode = cred.Mode
	s.log.Info().Str("principal_id", principal.ID).Msg("session restored from storage")
}

// Login authenticates against the backend and persists the credential.
// A second Login while one is pending fails fast with ErrLoginInFlight;
// overlapping logins racing on session state are not allowed.
//
// On failure the session returns to anonymous, LastError records the
// message, and the error is returned so the caller can react too.
func (s *AuthSession) Login(ctx context.Context, email, password string, rememberMe bool) (domain.Credential, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return domain.Credential{}, domain.ErrLoginInFlight
	}
	s.inFlight = true
	s.state.IsLoading = true
	s.mu.Unlock()

	cred, err := s.backend.Login(ctx, s.kind, email, password)
	if err == nil && cred.Principal.Role != s.kind.Role() {
		// Never trust the backend to have filtered by endpoint.
		err = domain.ErrAccessDenied
	}

	s.mu.Lock()
	s.inFlight = false
	s.state.IsLoading = false
	if err != nil {
		s.state.Principal = nil
		s.state.Token = ""
		s.state.Mode = ""
		s.state.LastError = err.Error()
		s.mu.Unlock()

		s.recordAudit(ctx, domain.AuditLoginFailed, "", err.Error())
		s.log.Warn().Err(err).Str("email", email).Msg("login rejected")
		return domain.Credential{}, err
	}

	principal := cred.Principal
	s.state.Principal = &principal
	s.state.Token = cred.Token
	s.state.Mode = cred.Mode
	s.state.LastError = ""
	s.mu.Unlock()

	// Persistence failure must not undo an otherwise successful login;
	// the session just won't survive a restart.
	if saveErr := s.store.Save(ctx, s.kind, cred, rememberMe); saveErr != nil {
		s.log.Warn().Err(saveErr).Msg("failed to persist credential")
	}

	s.recordAudit(ctx, domain.AuditLogin, principal.ID, "")
	s.log.Info().Str("principal_id", principal.ID).Bool("remember_me", rememberMe).Msg("login succeeded")
	return cred, nil
}

// Logout notifies the backend on a best-effort basis, then clears the
// in-memory session and both credential tiers. It always succeeds
// locally; backend or storage failures are logged and swallowed.
func (s *AuthSession) Logout(ctx context.Context) {
	s.mu.Lock()
	cred := domain.Credential{Token: s.state.Token, Mode: s.state.Mode}
	var principalID string
	if s.state.Principal != nil {
		cred.Principal = *s.state.Principal
		principalID = s.state.Principal.ID
	}
	authenticated := s.state.Authenticated()
	s.state = domain.SessionState{}
	s.mu.Unlock()

	if authenticated {
		if err := s.backend.Logout(ctx, cred); err != nil {
			s.log.Debug().Err(err).Msg("backend logout notification failed, ignoring")
		}
	}
	if err := s.store.Clear(ctx, s.kind); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear stored credential")
	}
	if authenticated {
		s.recordAudit(ctx, domain.AuditLogout, principalID, "")
		s.log.Info().Str("principal_id", principalID).Msg("logged out")
	}
}

// ClearError resets LastError and nothing else.
func (s *AuthSession) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastError = ""
}

// Current returns a snapshot of the session state.
func (s *AuthSession) Current() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	if s.state.Principal != nil {
		principal := *s.state.Principal
		snap.Principal = &principal
	}
	return snap
}

func (s *AuthSession) recordAudit(ctx context.Context, action domain.AuditAction, principalID, detail string) {
	if s.audit == nil {
		return
	}
	entry := domain.AuditEntry{
		ID:          uuid.NewString(),
		Kind:        s.kind,
		PrincipalID: principalID,
		Action:      action,
		Detail:      detail,
		At:          time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", string(action)).Msg("audit write failed")
	}
}
