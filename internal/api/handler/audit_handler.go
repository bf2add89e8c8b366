package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/appliancehub/console-api/internal/core/ports"
)

// AuditHandler exposes the console's audit trail to administrators.
type AuditHandler struct {
	audit ports.AuditRecorder
}

func NewAuditHandler(audit ports.AuditRecorder) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns the most recent audit entries, newest first.
//
// @Summary      Audit trail
// @Tags         audit
// @Produce      json
// @Param        limit  query  int  false  "maximum entries to return"
// @Success      200  {array}  domain.AuditEntry
// @Router       /admin/audit [get]
func (h *AuditHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.audit.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
