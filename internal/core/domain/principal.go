package domain

// Kind identifies one of the two independent operator populations the
// console authenticates. Each kind has its own session, credential
// records, and login entry point; they never share state.
type Kind string

const (
	KindAdmin      Kind = "admin"
	KindTechnician Kind = "technician"
)

// Role returns the role string a principal of this kind must carry.
// The values intentionally mirror the kind names used by the backend.
func (k Kind) Role() string { return string(k) }

// Valid reports whether k is one of the known principal kinds.
func (k Kind) Valid() bool { return k == KindAdmin || k == KindTechnician }

// Principal is the canonical shape of an authenticated actor after the
// gateway has normalized the backend's field-name variants.
type Principal struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	// Name is an optional display name; in practice only technician
	// accounts carry one.
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
}
