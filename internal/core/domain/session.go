package domain

// AuthMode distinguishes how an authenticated session talks to the
// backend. Some backend deployments issue a bearer token on login,
// others rely purely on cookies; the two must not be conflated under a
// sentinel token value.
type AuthMode string

const (
	AuthModeBearer AuthMode = "bearer"
	AuthModeCookie AuthMode = "cookie"
)

// Credential is the pair a successful login yields: the normalized
// principal plus how to authenticate follow-up backend calls.
// Token is non-empty if and only if Mode is AuthModeBearer.
type Credential struct {
	Principal Principal `json:"principal"`
	Token     string    `json:"token,omitempty"`
	Mode      AuthMode  `json:"mode"`
}

// CredentialRecord is the persisted form of a Credential, one per
// principal kind per storage tier. The principal is kept as raw JSON so
// a corrupted record can be detected (and self-healed) at load time
// rather than poisoning the session.
type CredentialRecord struct {
	Token      string   `json:"token,omitempty"`
	Principal  string   `json:"principal"`
	Mode       AuthMode `json:"mode"`
	RememberMe bool     `json:"remember_me"`
}

// SessionState is a point-in-time snapshot of one auth session.
// Invariant: Principal and Mode are both set or both zero — a session
// is never half-authenticated.
type SessionState struct {
	Principal *Principal `json:"principal"`
	Token     string     `json:"token,omitempty"`
	Mode      AuthMode   `json:"mode,omitempty"`
	IsLoading bool       `json:"is_loading"`
	LastError string     `json:"last_error,omitempty"`
}

// Authenticated reports whether the session currently holds a principal.
func (s SessionState) Authenticated() bool {
	return s.Principal != nil && s.Mode != ""
}
