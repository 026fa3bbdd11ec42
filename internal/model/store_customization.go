package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreCustomization holds the visual configuration of a storefront.
// Exactly one row per tenant; created with defaults during provisioning.
type StoreCustomization struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID      `json:"tenant_id" gorm:"type:uuid;uniqueIndex;not null"`
	LogoURL        string         `json:"logo_url" gorm:"type:varchar(500)"`
	BannerURL      string         `json:"banner_url" gorm:"type:varchar(500)"`
	PrimaryColor   string         `json:"primary_color" gorm:"type:varchar(20);default:'#1a1a2e'"`
	SecondaryColor string         `json:"secondary_color" gorm:"type:varchar(20);default:'#16213e'"`
	AccentColor    string         `json:"accent_color" gorm:"type:varchar(20);default:'#e94560'"`
	FontFamily     string         `json:"font_family" gorm:"type:varchar(100);default:'Inter'"`
	WelcomeMessage string         `json:"welcome_message" gorm:"type:text"`
	ShowBanner     bool           `json:"show_banner" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (s *StoreCustomization) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
