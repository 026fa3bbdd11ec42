package handler

import (
	"net/http"
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/contract"
	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/GustaavooC/mooda-sub000/internal/repository"
	"github.com/GustaavooC/mooda-sub000/pkg/logger"
	"github.com/GustaavooC/mooda-sub000/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StorefrontHandler serves the public storefront: store info, catalog and
// checkout, all looked up by slug. No authentication.
type StorefrontHandler struct {
	db      *gorm.DB
	tenants *repository.TenantRepository
}

// NewStorefrontHandler creates a storefront handler
func NewStorefrontHandler(db *gorm.DB, tenants *repository.TenantRepository) *StorefrontHandler {
	return &StorefrontHandler{db: db, tenants: tenants}
}

// resolveStore loads the tenant by slug and gates on contract state.
// An expired or suspended store is publicly unavailable. A nil tenant
// means the response has already been written; the caller returns the
// accompanying error value as-is.
func (h *StorefrontHandler) resolveStore(c echo.Context) (*model.Tenant, error) {
	t, err := h.tenants.GetBySlug(c.Param("slug"))
	if err != nil {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}

	info := contract.EvaluateTenant(t, time.Now())
	status := contract.EffectiveStatus(t.Status, info)
	if status == model.TenantStatusExpired || status == model.TenantStatusSuspended || status == model.TenantStatusInactive {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "store unavailable"})
	}
	return t, nil
}

// GetStore returns public store info plus its customization
func (h *StorefrontHandler) GetStore(c echo.Context) error {
	t, err := h.resolveStore(c)
	if t == nil {
		return err
	}

	var customization *model.StoreCustomization
	var row model.StoreCustomization
	if result := h.db.First(&row, "tenant_id = ?", t.ID); result.Error == nil {
		customization = &row
	}

	return c.JSON(http.StatusOK, echo.Map{
		"store": echo.Map{
			"id":          t.ID,
			"slug":        t.Slug,
			"name":        t.Name,
			"description": t.Description,
		},
		"customization": customization,
	})
}

// ListProducts returns the store's active catalog
func (h *StorefrontHandler) ListProducts(c echo.Context) error {
	t, err := h.resolveStore(c)
	if t == nil {
		return err
	}

	query := h.db.Where("tenant_id = ? AND is_active = ?", t.ID, true)
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var products []model.Product
	if result := query.Order("name ASC").Find(&products); result.Error != nil {
		logger.FromEcho(c).Error("Failed to list storefront products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}
	return c.JSON(http.StatusOK, products)
}

// ListCategories returns the store's categories
func (h *StorefrontHandler) ListCategories(c echo.Context) error {
	t, err := h.resolveStore(c)
	if t == nil {
		return err
	}

	var categories []model.Category
	if result := h.db.Where("tenant_id = ?", t.ID).Order("name ASC").Find(&categories); result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}
	return c.JSON(http.StatusOK, categories)
}

// Checkout places an order from the public storefront
func (h *StorefrontHandler) Checkout(c echo.Context) error {
	log := logger.FromEcho(c)

	t, err := h.resolveStore(c)
	if t == nil {
		return err
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.CustomerEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_email is required"})
	}

	order, status, err := placeOrder(h.db, t.ID, req)
	if err != nil {
		log.Warn("Storefront checkout failed", zap.String("slug", t.Slug), zap.Error(err))
		return c.JSON(status, echo.Map{"error": err.Error()})
	}

	prometheus.StorefrontOrderCounter.Inc()
	log.Info("Storefront order placed",
		zap.String("slug", t.Slug),
		zap.String("order_number", order.OrderNumber))
	return c.JSON(http.StatusCreated, order)
}
