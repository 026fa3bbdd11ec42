// Package jobs holds the background schedulers. The only job today is the
// daily contract status refresh, which flips overdue tenants to expired so
// list views and the storefront gate agree with the evaluator.
package jobs

import (
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/GustaavooC/mooda-sub000/internal/repository"
	"github.com/GustaavooC/mooda-sub000/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartContractScheduler schedules the daily contract status refresh and
// returns the running scheduler so the caller can stop it on shutdown.
func StartContractScheduler(tenants *repository.TenantRepository, schedule string, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		RefreshContractStatuses(tenants, log)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Info("Contract status scheduler started", zap.String("schedule", schedule))
	return c, nil
}

// RefreshContractStatuses marks tenants with an overdue contract as expired
// and refreshes the tenant gauges
func RefreshContractStatuses(tenants *repository.TenantRepository, log *zap.Logger) {
	changed, err := tenants.ExpireOverdue(time.Now())
	if err != nil {
		log.Error("Contract status refresh failed", zap.Error(err))
		return
	}
	if changed > 0 {
		log.Info("Tenants marked as expired", zap.Int64("count", changed))
	}

	if active, err := tenants.CountByStatus(model.TenantStatusActive); err == nil {
		prometheus.ActiveTenantsGauge.Set(float64(active))
	}
	if expired, err := tenants.CountByStatus(model.TenantStatusExpired); err == nil {
		prometheus.ExpiredTenantsGauge.Set(float64(expired))
	}
}
