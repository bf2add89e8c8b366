package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appliancehub/console-api/internal/core/ports"
)

const maxProxyBody = 1 << 20 // 1 MiB

// ResourceHandler proxies management calls (products, categories, time
// slots, ...) straight through to the backend, attaching the session's
// credential. Bodies and statuses pass through untouched; the console
// adds no semantics of its own here.
type ResourceHandler struct {
	backend ports.Backend
	session ports.AuthSession
}

func NewResourceHandler(backend ports.Backend, session ports.AuthSession) *ResourceHandler {
	return &ResourceHandler{backend: backend, session: session}
}

// Collection handles list and create calls on a backend collection.
func (h *ResourceHandler) Collection(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.proxy(c, "/"+resource)
	}
}

// Item handles read, update, and delete calls on a single record.
func (h *ResourceHandler) Item(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.proxy(c, "/"+resource+"/"+c.Param("id"))
	}
}

func (h *ResourceHandler) proxy(c echo.Context, path string) error {
	cred, err := sessionCredential(h.session)
	if err != nil {
		return err
	}

	var body []byte
	if c.Request().Body != nil {
		body, err = io.ReadAll(io.LimitReader(c.Request().Body, maxProxyBody))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
		}
	}

	result, err := h.backend.Resource(c.Request().Context(), cred, ports.ResourceRequest{
		Method: c.Request().Method,
		Path:   path,
		Body:   body,
		Query:  c.QueryString(),
	})
	if err != nil {
		return err
	}

	contentType := result.ContentType
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return c.Blob(result.Status, contentType, result.Body)
}
