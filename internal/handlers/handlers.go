package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"domainly/internal/domainutil"
	"domainly/internal/models"
	"domainly/internal/registrar"
	"domainly/internal/services"
	"domainly/internal/store"
)

type DomainHandler struct {
	store       *store.DomainStore
	engine      *services.ValidationEngine
	provisioner *services.ProvisioningClient
	diag        *services.DiagnosticService
}

func RegisterRoutes(api *echo.Group, st *store.DomainStore, engine *services.ValidationEngine, provisioner *services.ProvisioningClient, diag *services.DiagnosticService) {
	h := &DomainHandler{store: st, engine: engine, provisioner: provisioner, diag: diag}

	api.GET("/domains", h.ListDomains)
	api.POST("/domains", h.CreateDomain)
	api.GET("/domains/:id", h.GetDomain)
	api.DELETE("/domains/:id", h.DeleteDomain)
	api.POST("/domains/:id/validate", h.ValidateDomain)
	api.GET("/domains/:id/logs", h.ListLogs)
	api.GET("/domains/:id/diagnostics", h.Diagnostics)
	api.POST("/domains/:id/registrar/records", h.PushRegistrarRecords)
	api.POST("/registrar/records", h.ListRegistrarRecords)
}

func jsonError(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// mapErr translates store/provisioning errors to status codes. Internal
// details stay in the message, stack traces never reach the client.
func mapErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrDomainNotFound):
		return jsonError(c, http.StatusNotFound, "domain not found")
	case errors.Is(err, services.ErrInvalidDomainFormat):
		return jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotConfigured):
		return jsonError(c, http.StatusServiceUnavailable, "custom domains are not configured on this deployment")
	default:
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *DomainHandler) ListDomains(c echo.Context) error {
	domains, err := h.store.List(c.Request().Context(), c.QueryParam("owner_id"))
	if err != nil {
		return mapErr(c, err)
	}
	return c.JSON(http.StatusOK, domains)
}

func (h *DomainHandler) CreateDomain(c echo.Context) error {
	var req struct {
		Domain  string `json:"domain"`
		OwnerID string `json:"owner_id"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Domain == "" {
		return jsonError(c, http.StatusBadRequest, "domain is required")
	}

	name := domainutil.Normalize(req.Domain)
	ctx := c.Request().Context()

	if _, err := h.store.FindByName(ctx, name); err == nil {
		return jsonError(c, http.StatusConflict, "domain is already registered")
	} else if !errors.Is(err, store.ErrDomainNotFound) {
		return mapErr(c, err)
	}

	// Attach upstream first; this also rejects malformed domains before
	// anything is persisted.
	if _, err := h.provisioner.AddCustomDomain(ctx, name); err != nil {
		return mapErr(c, err)
	}

	domain := models.Domain{
		OwnerID:         req.OwnerID,
		DomainName:      name,
		Status:          models.StatusPending,
		RequiredARecord: h.provisioner.RequiredARecord(),
		RequiredCNAME:   h.provisioner.CNAMETarget(),
	}
	if err := h.store.Create(ctx, &domain); err != nil {
		return mapErr(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"domain":      domain,
		"dns_records": h.provisioner.RequiredRecords(domain.DomainName, domain.VerificationToken),
	})
}

func (h *DomainHandler) GetDomain(c echo.Context) error {
	domain, err := h.store.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"domain":      domain,
		"dns_records": h.provisioner.RequiredRecords(domain.DomainName, domain.VerificationToken),
	})
}

func (h *DomainHandler) DeleteDomain(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.store.FindByID(ctx, c.Param("id")); err != nil {
		return mapErr(c, err)
	}
	// An unconfigured deployment has nothing attached upstream; the row must
	// still be deletable.
	if err := h.provisioner.RemoveCustomDomain(ctx); err != nil && !errors.Is(err, services.ErrNotConfigured) {
		return mapErr(c, err)
	}
	if err := h.store.Delete(ctx, c.Param("id")); err != nil {
		return mapErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ValidateDomain runs one full validation pass and commits the outcome.
// ?trigger=auto marks a scheduled retry; anything else counts as manual and
// resets the auto-retry counter.
func (h *DomainHandler) ValidateDomain(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return jsonError(c, http.StatusBadRequest, "missing domain id")
	}
	ctx := c.Request().Context()

	domain, err := h.store.FindByID(ctx, id)
	if err != nil {
		return mapErr(c, err)
	}
	if err := h.store.BeginValidation(ctx, id); err != nil {
		return mapErr(c, err)
	}

	result := h.engine.Validate(ctx, domain)
	manual := c.QueryParam("trigger") != "auto"
	isValid, err := h.store.ApplyResult(ctx, id, result, manual)
	if err != nil {
		return mapErr(c, err)
	}

	status := models.StatusFailed
	if isValid {
		status = models.StatusActive
	}
	return c.JSON(http.StatusOK, map[string]any{
		"valid":  isValid,
		"status": status,
		"errors": result.Errors,
	})
}

func (h *DomainHandler) ListLogs(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.store.FindByID(ctx, c.Param("id")); err != nil {
		return mapErr(c, err)
	}
	logs, err := h.store.Logs(ctx, c.Param("id"))
	if err != nil {
		return mapErr(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *DomainHandler) Diagnostics(c echo.Context) error {
	ctx := c.Request().Context()
	domain, err := h.store.FindByID(ctx, c.Param("id"))
	if err != nil {
		return mapErr(c, err)
	}
	return c.JSON(http.StatusOK, h.diag.Diagnose(ctx, domain.DomainName))
}

// PushRegistrarRecords publishes the required records through the user's
// registrar. Credentials are used for this call only and never stored.
func (h *DomainHandler) PushRegistrarRecords(c echo.Context) error {
	ctx := c.Request().Context()
	domain, err := h.store.FindByID(ctx, c.Param("id"))
	if err != nil {
		return mapErr(c, err)
	}

	var creds registrar.Credentials
	if err := c.Bind(&creds); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	adapter, err := registrar.ForCode(creds.Registrar)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	type outcome struct {
		Record registrar.Record `json:"record"`
		Error  string           `json:"error,omitempty"`
	}
	var outcomes []outcome
	for _, inst := range h.provisioner.RequiredRecords(domain.DomainName, domain.VerificationToken) {
		rec := registrar.Record{Type: inst.Type, Name: inst.Name, Content: inst.Content, TTL: 300}
		o := outcome{Record: rec}
		if err := adapter.CreateRecord(ctx, domain.DomainName, rec, creds); err != nil {
			o.Error = err.Error()
		}
		outcomes = append(outcomes, o)
	}
	return c.JSON(http.StatusOK, map[string]any{"results": outcomes})
}

// ListRegistrarRecords is a diagnostic aid: it returns the normalized zone
// contents as the registrar reports them. POST because credentials travel in
// the body.
func (h *DomainHandler) ListRegistrarRecords(c echo.Context) error {
	var req struct {
		Domain string `json:"domain"`
		registrar.Credentials
	}
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Domain == "" {
		return jsonError(c, http.StatusBadRequest, "domain is required")
	}

	adapter, err := registrar.ForCode(req.Registrar)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	records, err := adapter.ListRecords(c.Request().Context(), domainutil.Normalize(req.Domain), req.Credentials)
	if err != nil {
		if errors.Is(err, registrar.ErrAuth) {
			return jsonError(c, http.StatusUnauthorized, err.Error())
		}
		return jsonError(c, http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, records)
}
