package handler

import (
	"net/http"
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/GustaavooC/mooda-sub000/pkg/logger"
	"github.com/GustaavooC/mooda-sub000/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportHandler serves dashboard summary reports
type ReportHandler struct {
	db *gorm.DB
}

// NewReportHandler creates a report handler
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

// Summary returns the tenant's headline numbers: entity counts, orders by
// status and total revenue from non-cancelled orders
func (h *ReportHandler) Summary(c echo.Context) error {
	log := logger.FromEcho(c)

	tenantID, err := tenantIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var productCount, customerCount, orderCount int64
	h.db.Model(&model.Product{}).Where("tenant_id = ?", tenantID).Count(&productCount)
	h.db.Model(&model.Customer{}).Where("tenant_id = ?", tenantID).Count(&customerCount)
	h.db.Model(&model.Order{}).Where("tenant_id = ?", tenantID).Count(&orderCount)

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var byStatus []statusCount
	if err := h.db.Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&byStatus).Error; err != nil {
		log.Error("Failed to aggregate orders by status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to build report"})
	}

	var revenue float64
	if err := h.db.Model(&model.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("tenant_id = ? AND status <> ?", tenantID, model.OrderStatusCancelled).
		Scan(&revenue).Error; err != nil {
		log.Error("Failed to aggregate revenue", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to build report"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products":         productCount,
		"customers":        customerCount,
		"orders":           orderCount,
		"orders_by_status": byStatus,
		"revenue":          revenue,
	})
}
