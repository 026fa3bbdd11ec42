package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant lifecycle statuses
const (
	TenantStatusActive    = "active"
	TenantStatusInactive  = "inactive"
	TenantStatusSuspended = "suspended"
	TenantStatusTrial     = "trial"
	TenantStatusExpired   = "expired"
)

// Tenant represents a single merchant store within the platform.
// The slug is the only public lookup key for the storefront.
type Tenant struct {
	ID                   uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Slug                 string         `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name                 string         `json:"name" gorm:"type:varchar(100);not null"`
	Description          string         `json:"description" gorm:"type:text"`
	Status               string         `json:"status" gorm:"type:varchar(20);default:'active'"`
	Settings             string         `json:"settings" gorm:"type:jsonb"`
	OwnerID              *uuid.UUID     `json:"owner_id,omitempty" gorm:"type:uuid;index"` // nil for orphaned tenants
	ContractStartDate    time.Time      `json:"contract_start_date"`
	ContractDurationDays int            `json:"contract_duration_days" gorm:"default:30"`
	ContractEndDate      time.Time      `json:"contract_end_date" gorm:"index"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Provenance of a tenant reference. Demo tenants exist only in the local
// credential store; real tenants are backed by a database row.
type TenantProvenance string

const (
	TenantReal TenantProvenance = "real"
	TenantDemo TenantProvenance = "demo"
)

// TenantRef is a tagged tenant reference, carried instead of inferring
// provenance from the shape of an identifier string.
type TenantRef struct {
	Kind TenantProvenance `json:"kind"`
	ID   uuid.UUID        `json:"id"`
	Slug string           `json:"slug"`
	Name string           `json:"name"`
}
