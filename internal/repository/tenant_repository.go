package repository

import (
	"strings"
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/contract"
	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantRepository wraps tenant table access
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// SlugExists reports whether a tenant already uses the slug, matched
// case-insensitively
func (r *TenantRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Tenant{}).
		Where("LOWER(slug) = ?", strings.ToLower(slug)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a tenant row
func (r *TenantRepository) Create(t *model.Tenant) error {
	return r.db.Create(t).Error
}

// GetByID fetches a tenant by primary key
func (r *TenantRepository) GetByID(id uuid.UUID) (*model.Tenant, error) {
	var t model.Tenant
	if err := r.db.First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBySlug fetches a tenant by its public slug
func (r *TenantRepository) GetBySlug(slug string) (*model.Tenant, error) {
	var t model.Tenant
	if err := r.db.First(&t, "LOWER(slug) = ?", strings.ToLower(slug)).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all tenants, newest first
func (r *TenantRepository) List() ([]model.Tenant, error) {
	var tenants []model.Tenant
	if err := r.db.Order("created_at DESC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// AttachUser creates the tenant-user association
func (r *TenantRepository) AttachUser(tenantID, userID uuid.UUID, role string) error {
	return r.db.Create(&model.TenantUser{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		IsActive: true,
	}).Error
}

// FirstActiveMembership returns the user's first active tenant association
// with the tenant preloaded, or (nil, nil) when the user belongs to none.
func (r *TenantRepository) FirstActiveMembership(userID uuid.UUID) (*model.TenantUser, error) {
	var ut model.TenantUser
	err := r.db.Preload("Tenant").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		First(&ut).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ut, nil
}

// ExtendContract adds days to the tenant's contract duration and recomputes
// the persisted end date, then returns the fresh row. Extending twice by N
// is equivalent to extending once by 2N.
func (r *TenantRepository) ExtendContract(id uuid.UUID, additionalDays int) (*model.Tenant, error) {
	t, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	newDuration := t.ContractDurationDays + additionalDays
	newEnd := contract.EndDate(t.ContractStartDate, newDuration)

	updates := map[string]interface{}{
		"contract_duration_days": newDuration,
		"contract_end_date":      newEnd,
	}
	if err := r.db.Model(&model.Tenant{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	// Re-fetch rather than trusting the optimistic local value
	return r.GetByID(id)
}

// ExpireOverdue flips tenants whose contract end date has passed to the
// expired status. Returns the number of rows changed.
func (r *TenantRepository) ExpireOverdue(now time.Time) (int64, error) {
	result := r.db.Model(&model.Tenant{}).
		Where("contract_end_date < ? AND status <> ?", now, model.TenantStatusExpired).
		Update("status", model.TenantStatusExpired)
	return result.RowsAffected, result.Error
}

// CountByStatus returns the number of tenants with the given status
func (r *TenantRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Tenant{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
