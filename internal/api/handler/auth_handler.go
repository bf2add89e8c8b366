package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appliancehub/console-api/internal/api/metrics"
	"github.com/appliancehub/console-api/internal/core/domain"
	"github.com/appliancehub/console-api/internal/core/ports"
	"github.com/appliancehub/console-api/internal/core/service"
)

// AuthHandler exposes the login lifecycle for one console (admin or
// technician). Each console gets its own instance bound to its own
// session; the two never share state.
type AuthHandler struct {
	session ports.AuthSession
	issuer  *service.TokenIssuer
}

func NewAuthHandler(session ports.AuthSession, issuer *service.TokenIssuer) *AuthHandler {
	return &AuthHandler{session: session, issuer: issuer}
}

// Login authenticates an operator and returns a console session token.
//
// @Summary      Sign in to a console
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	kind := h.session.Kind()

	cred, err := h.session.Login(c.Request().Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(kind), loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues(string(kind), "success").Inc()

	token, err := h.issuer.Issue(kind, cred.Principal)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token: token,
		User:  cred.Principal,
	})
}

// Logout ends the console session. It always succeeds.
//
// @Summary      Sign out of a console
// @Tags         auth
// @Produce      json
// @Success      204  "session cleared"
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.session.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Session reports the current session state without exposing the
// backend credential.
//
// @Summary      Current session state
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	state := h.session.Current()

	resp := sessionResponse{
		Authenticated: state.Authenticated(),
		IsLoading:     state.IsLoading,
		LastError:     state.LastError,
		Mode:          string(state.Mode),
		User:          state.Principal,
	}
	return c.JSON(http.StatusOK, resp)
}

// ClearError dismisses the last login error.
//
// @Summary      Dismiss the last auth error
// @Tags         auth
// @Success      204  "error cleared"
// @Router       /auth/session/error [delete]
func (h *AuthHandler) ClearError(c echo.Context) error {
	h.session.ClearError()
	return c.NoContent(http.StatusNoContent)
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrLoginInFlight):
		return "in_flight"
	case errors.Is(err, domain.ErrAccessDenied):
		return "wrong_role"
	case errors.Is(err, domain.ErrAuthFailure):
		return "rejected"
	default:
		return "error"
	}
}
