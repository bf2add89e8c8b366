package handler

import (
	"github.com/appliancehub/console-api/internal/core/domain"
	"github.com/appliancehub/console-api/internal/core/ports"
)

// sessionCredential rebuilds the backend credential from the live
// session. The Guard middleware has already rejected anonymous and
// still-loading sessions, so an empty state here means the session was
// torn down mid-request.
func sessionCredential(session ports.AuthSession) (domain.Credential, error) {
	state := session.Current()
	if !state.Authenticated() {
		return domain.Credential{}, domain.ErrNotAuthenticated
	}
	return domain.Credential{
		Principal: *state.Principal,
		Token:     state.Token,
		Mode:      state.Mode,
	}, nil
}
