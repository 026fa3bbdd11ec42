package handler

import (
	"net/http"

	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/GustaavooC/mooda-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomizationHandler serves the tenant's storefront customization
type CustomizationHandler struct {
	db *gorm.DB
}

// NewCustomizationHandler creates a customization handler
func NewCustomizationHandler(db *gorm.DB) *CustomizationHandler {
	return &CustomizationHandler{db: db}
}

// GetCustomization returns the tenant's storefront customization
func (h *CustomizationHandler) GetCustomization(c echo.Context) error {
	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var customization model.StoreCustomization
	if result := h.db.First(&customization, "tenant_id = ?", tenantID); result.Error != nil {
		// Missing customization is an empty state, not a fault
		return c.JSON(http.StatusOK, echo.Map{"customization": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"customization": customization})
}

// UpsertCustomization creates or updates the tenant's customization row
func (h *CustomizationHandler) UpsertCustomization(c echo.Context) error {
	log := logger.FromEcho(c)

	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var req struct {
		LogoURL        string `json:"logo_url"`
		BannerURL      string `json:"banner_url"`
		PrimaryColor   string `json:"primary_color"`
		SecondaryColor string `json:"secondary_color"`
		AccentColor    string `json:"accent_color"`
		FontFamily     string `json:"font_family"`
		WelcomeMessage string `json:"welcome_message"`
		ShowBanner     bool   `json:"show_banner"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var customization model.StoreCustomization
	result := h.db.First(&customization, "tenant_id = ?", tenantID)
	if result.Error != nil {
		customization = model.StoreCustomization{TenantID: tenantID}
	}

	customization.LogoURL = req.LogoURL
	customization.BannerURL = req.BannerURL
	customization.PrimaryColor = req.PrimaryColor
	customization.SecondaryColor = req.SecondaryColor
	customization.AccentColor = req.AccentColor
	customization.FontFamily = req.FontFamily
	customization.WelcomeMessage = req.WelcomeMessage
	customization.ShowBanner = req.ShowBanner

	if err := h.db.Save(&customization).Error; err != nil {
		log.Error("Failed to save customization", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save customization"})
	}

	log.Info("Store customization saved", zap.String("tenant_id", tenantID.String()))
	return c.JSON(http.StatusOK, echo.Map{"customization": customization})
}
