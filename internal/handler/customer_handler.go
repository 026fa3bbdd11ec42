package handler

import (
	"net/http"
	"strings"

	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/GustaavooC/mooda-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomerHandler serves tenant-scoped customer CRUD
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler creates a customer handler
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// ListCustomers returns the tenant's customers with an optional search filter
func (h *CustomerHandler) ListCustomers(c echo.Context) error {
	log := logger.FromEcho(c)

	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	query := h.db.Where("tenant_id = ?", tenantID)
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var customers []model.Customer
	if result := query.Order("created_at DESC").Find(&customers); result.Error != nil {
		log.Error("Failed to list customers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve customers"})
	}
	return c.JSON(http.StatusOK, customers)
}

// GetCustomer returns a single customer
func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var customer model.Customer
	if result := h.db.Where("tenant_id = ?", tenantID).First(&customer, "id = ?", c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}
	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer creates a customer for the tenant
func (h *CustomerHandler) CreateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)

	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var req struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	h.db.Model(&model.Customer{}).Where("tenant_id = ? AND email = ?", tenantID, email).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Customer with this email already exists"})
	}

	customer := model.Customer{
		TenantID: tenantID,
		Email:    email,
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if result := h.db.Create(&customer); result.Error != nil {
		log.Error("Failed to create customer", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create customer"})
	}

	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer updates a customer record
func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var customer model.Customer
	if result := h.db.Where("tenant_id = ?", tenantID).First(&customer, "id = ?", c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	var req struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Address = req.Address
	if result := h.db.Save(&customer); result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update customer"})
	}
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer soft-deletes a customer
func (h *CustomerHandler) DeleteCustomer(c echo.Context) error {
	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	result := h.db.Where("tenant_id = ? AND id = ?", tenantID, c.Param("id")).Delete(&model.Customer{})
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete customer"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deleted"})
}
