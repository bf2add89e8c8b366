package handler

import "github.com/appliancehub/console-api/internal/core/domain"

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  domain.Principal `json:"user"`
}

type sessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	IsLoading     bool              `json:"is_loading"`
	LastError     string            `json:"last_error,omitempty"`
	Mode          string            `json:"mode,omitempty"`
	User          *domain.Principal `json:"user,omitempty"`
}
