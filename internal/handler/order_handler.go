package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/GustaavooC/mooda-sub000/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderItemRequest is one product line in a checkout request
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CheckoutRequest is the order placement payload
type CheckoutRequest struct {
	CustomerEmail string             `json:"customer_email"`
	CustomerName  string             `json:"customer_name"`
	Notes         string             `json:"notes"`
	Items         []OrderItemRequest `json:"items"`
}

// OrderHandler serves tenant-scoped order operations
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler creates an order handler
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

// ListOrders returns the tenant's orders with an optional status filter
func (h *OrderHandler) ListOrders(c echo.Context) error {
	log := logger.FromEcho(c)

	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	query := h.db.Where("tenant_id = ?", tenantID)
	if status := c.QueryParam("status"); status != "" {
		if !model.ValidOrderStatus(status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown order status"})
		}
		query = query.Where("status = ?", status)
	}

	var orders []model.Order
	if result := query.Preload("Items").Order("created_at DESC").Find(&orders); result.Error != nil {
		log.Error("Failed to list orders", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder returns a single order with its items
func (h *OrderHandler) GetOrder(c echo.Context) error {
	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var order model.Order
	if result := h.db.Where("tenant_id = ?", tenantID).Preload("Items").First(&order, "id = ?", c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus moves an order to a new status
func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	log := logger.FromEcho(c)

	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if !model.ValidOrderStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown order status"})
	}

	var order model.Order
	if result := h.db.Where("tenant_id = ?", tenantID).First(&order, "id = ?", c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
	}

	order.Status = req.Status
	if result := h.db.Save(&order); result.Error != nil {
		log.Error("Failed to update order status", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update order"})
	}

	log.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", order.Status))
	return c.JSON(http.StatusOK, order)
}

// CreateOrder places an order on behalf of the merchant (manual order entry)
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	log := logger.FromEcho(c)

	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	order, status, err := placeOrder(h.db, tenantID, req)
	if err != nil {
		log.Error("Failed to create order", zap.Error(err))
		return c.JSON(status, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, order)
}

// placeOrder validates a checkout request, computes the total from current
// product prices, decrements stock and inserts the order with its items in
// one transaction. Shared by the dashboard and the public storefront.
func placeOrder(db *gorm.DB, tenantID uuid.UUID, req CheckoutRequest) (*model.Order, int, error) {
	if len(req.Items) == 0 {
		return nil, http.StatusBadRequest, fmt.Errorf("order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, http.StatusBadRequest, fmt.Errorf("item quantity must be positive")
		}
	}

	var order *model.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make([]model.OrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			var product model.Product
			if err := tx.Where("tenant_id = ? AND is_active = ?", tenantID, true).
				First(&product, "id = ?", item.ProductID).Error; err != nil {
				return fmt.Errorf("product %s not available", item.ProductID)
			}
			if product.Stock < item.Quantity {
				return fmt.Errorf("insufficient stock for %s", product.Name)
			}
			if err := tx.Model(&product).Update("stock", product.Stock-item.Quantity).Error; err != nil {
				return err
			}
			total += product.Price * float64(item.Quantity)
			items = append(items, model.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
		}

		var customerID *uuid.UUID
		if email := strings.ToLower(strings.TrimSpace(req.CustomerEmail)); email != "" {
			var customer model.Customer
			err := tx.Where("tenant_id = ? AND email = ?", tenantID, email).First(&customer).Error
			if err != nil {
				customer = model.Customer{TenantID: tenantID, Email: email, Name: req.CustomerName}
				if err := tx.Create(&customer).Error; err != nil {
					return err
				}
			}
			id := customer.ID
			customerID = &id
		}

		order = &model.Order{
			TenantID:    tenantID,
			OrderNumber: newOrderNumber(),
			CustomerID:  customerID,
			Status:      model.OrderStatusPending,
			Total:       total,
			Notes:       req.Notes,
			Items:       items,
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}
	return order, http.StatusCreated, nil
}

func newOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().Unix(), strings.ToUpper(uuid.New().String()[:8]))
}
