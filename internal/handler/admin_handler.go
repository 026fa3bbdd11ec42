package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/contract"
	"github.com/GustaavooC/mooda-sub000/internal/credstore"
	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/GustaavooC/mooda-sub000/internal/provision"
	"github.com/GustaavooC/mooda-sub000/internal/repository"
	"github.com/GustaavooC/mooda-sub000/pkg/logger"
	"github.com/GustaavooC/mooda-sub000/prometheus"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler serves the platform admin console: tenant provisioning,
// contract lifecycle and local credential management
type AdminHandler struct {
	workflow    *provision.Workflow
	tenants     *repository.TenantRepository
	credentials credstore.Store
	soonWindow  int
}

// NewAdminHandler creates an admin handler
func NewAdminHandler(workflow *provision.Workflow, tenants *repository.TenantRepository, credentials credstore.Store, expiringSoonDays int) *AdminHandler {
	return &AdminHandler{
		workflow:    workflow,
		tenants:     tenants,
		credentials: credentials,
		soonWindow:  expiringSoonDays,
	}
}

// ProvisionTenant runs the tenant provisioning workflow
func (h *AdminHandler) ProvisionTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("create")

	var req provision.Request
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse provisioning request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	result, err := h.workflow.Run(req)
	if err != nil {
		var verr *provision.ValidationError
		if errors.As(err, &verr) {
			prometheus.RecordProvisioning("failed")
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": verr.Message,
				"field": verr.Field,
				"steps": result.Steps,
			})
		}
		log.Error("Provisioning failed", zap.Error(err))
		prometheus.RecordProvisioning("failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
			"steps": result.Steps,
		})
	}

	if result.RealUserCreated {
		prometheus.RecordProvisioning("real_user")
	} else {
		prometheus.RecordProvisioning("demo_mode")
	}
	return c.JSON(http.StatusCreated, result)
}

// tenantSummary is a tenant row with its computed contract state
type tenantSummary struct {
	model.Tenant
	Contract     contract.Info `json:"contract"`
	Status       string        `json:"effective_status"`
	StatusText   string        `json:"status_text"`
	StatusColor  string        `json:"status_color"`
	ExpiringSoon bool          `json:"expiring_soon"`
}

func (h *AdminHandler) summarize(t model.Tenant, now time.Time) tenantSummary {
	info := contract.EvaluateTenant(&t, now)
	status := contract.EffectiveStatus(t.Status, info)
	text, color := contract.StatusLabel(status)
	return tenantSummary{
		Tenant:       t,
		Contract:     info,
		Status:       status,
		StatusText:   text,
		StatusColor:  color,
		ExpiringSoon: contract.ExpiringSoon(info, h.soonWindow),
	}
}

// ListTenants returns every tenant with its contract summary
func (h *AdminHandler) ListTenants(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("list")
	defer prometheus.TrackDBOperation("query")(time.Now())

	tenants, err := h.tenants.List()
	if err != nil {
		log.Error("Failed to list tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenants"})
	}

	now := time.Now()
	summaries := make([]tenantSummary, 0, len(tenants))
	for _, t := range tenants {
		summaries = append(summaries, h.summarize(t, now))
	}
	return c.JSON(http.StatusOK, echo.Map{"tenants": summaries, "count": len(summaries)})
}

// GetTenant returns a single tenant with its contract summary
func (h *AdminHandler) GetTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("access")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	t, err := h.tenants.GetByID(id)
	if err != nil {
		log.Warn("Tenant not found", zap.String("id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}
	return c.JSON(http.StatusOK, h.summarize(*t, time.Now()))
}

// GetContract returns the contract state for a tenant identifier. The
// identifier is resolved to a tagged reference: a database row makes it a
// real tenant; a credential-store profile makes it a demo tenant, which has
// no contract of its own. An identifier resolving to neither yields an
// empty "no contract info" state, not an error.
func (h *AdminHandler) GetContract(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.ContractEvaluationCounter.Inc()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	t, err := h.tenants.GetByID(id)
	if err == nil {
		summary := h.summarize(*t, time.Now())
		return c.JSON(http.StatusOK, echo.Map{
			"ref": model.TenantRef{
				Kind: model.TenantReal,
				ID:   t.ID,
				Slug: t.Slug,
				Name: t.Name,
			},
			"contract": summary.Contract,
			"status":   summary.Status,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("Contract lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "contract lookup failed"})
	}

	// No database row; the identifier may belong to a demo-only tenant
	// known solely to the credential store
	if ref, ok := h.demoRef(id); ok {
		return c.JSON(http.StatusOK, echo.Map{
			"ref":      ref,
			"contract": nil,
			"status":   model.TenantStatusTrial,
			"message":  "demo tenant has no contract",
		})
	}

	// Recovered local condition: report "no contract info" rather than an error
	return c.JSON(http.StatusOK, echo.Map{
		"ref":      nil,
		"contract": nil,
		"message":  "no contract info",
	})
}

func (h *AdminHandler) demoRef(id uuid.UUID) (*model.TenantRef, bool) {
	entries, err := h.credentials.List()
	if err != nil {
		return nil, false
	}
	for _, e := range entries {
		if e.Profile.TenantID == id {
			return &model.TenantRef{
				Kind: model.TenantDemo,
				ID:   e.Profile.TenantID,
				Slug: e.Profile.TenantSlug,
				Name: e.Profile.TenantName,
			}, true
		}
	}
	return nil, false
}

// ExtendContract adds days to a tenant's contract and returns the fresh
// state. Demo tenants have no row to extend and yield a 404.
func (h *AdminHandler) ExtendContract(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.ContractExtensionCounter.Inc()
	prometheus.RecordTenantOperation("extend_contract")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var req struct {
		AdditionalDays int `json:"additional_days"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.AdditionalDays <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "additional_days must be positive"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	t, err := h.tenants.ExtendContract(id, req.AdditionalDays)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Contract extension failed", zap.String("id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "contract extension failed"})
	}

	log.Info("Contract extended",
		zap.String("tenant_id", id.String()),
		zap.Int("additional_days", req.AdditionalDays))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "contract extended",
		"tenant":  h.summarize(*t, time.Now()),
	})
}

// ListCredentials lists the usable local credential entries. Passwords are
// never echoed back.
func (h *AdminHandler) ListCredentials(c echo.Context) error {
	entries, err := h.credentials.List()
	if err != nil {
		logger.FromEcho(c).Error("Failed to list credentials", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list credentials"})
	}

	type credentialView struct {
		Email      string `json:"email"`
		Name       string `json:"name"`
		TenantSlug string `json:"tenant_slug"`
		TenantName string `json:"tenant_name"`
		IsAdmin    bool   `json:"is_admin"`
	}
	views := make([]credentialView, 0, len(entries))
	for _, e := range entries {
		views = append(views, credentialView{
			Email:      e.Email,
			Name:       e.Profile.Name,
			TenantSlug: e.Profile.TenantSlug,
			TenantName: e.Profile.TenantName,
			IsAdmin:    e.Profile.IsAdmin,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"credentials": views, "count": len(views)})
}

// ClearCredentials wipes every dynamically added local credential. Seed
// credentials are never persisted, so they survive the wipe.
func (h *AdminHandler) ClearCredentials(c echo.Context) error {
	if err := h.credentials.Clear(); err != nil {
		logger.FromEcho(c).Error("Failed to clear credentials", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to clear credentials"})
	}
	logger.FromEcho(c).Info("Local credentials cleared")
	return c.JSON(http.StatusOK, echo.Map{"message": "local credentials cleared"})
}
