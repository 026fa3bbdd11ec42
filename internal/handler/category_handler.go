package handler

import (
	"net/http"

	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/GustaavooC/mooda-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryHandler serves tenant-scoped category CRUD
type CategoryHandler struct {
	db *gorm.DB
}

// NewCategoryHandler creates a category handler
func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

// ListCategories returns the tenant's categories
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	log := logger.FromEcho(c)

	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var categories []model.Category
	if result := h.db.Where("tenant_id = ?", tenantID).Order("name ASC").Find(&categories); result.Error != nil {
		log.Error("Failed to list categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// CreateCategory creates a category for the tenant
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	log := logger.FromEcho(c)

	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var count int64
	h.db.Model(&model.Category{}).Where("tenant_id = ? AND name = ?", tenantID, req.Name).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Category already exists"})
	}

	category := model.Category{TenantID: tenantID, Name: req.Name}
	if result := h.db.Create(&category); result.Error != nil {
		log.Error("Failed to create category", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create category"})
	}

	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory renames a category
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var category model.Category
	if result := h.db.Where("tenant_id = ?", tenantID).First(&category, "id = ?", c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	category.Name = req.Name
	if result := h.db.Save(&category); result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update category"})
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory soft-deletes a category
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	result := h.db.Where("tenant_id = ? AND id = ?", tenantID, c.Param("id")).Delete(&model.Category{})
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete category"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted"})
}
