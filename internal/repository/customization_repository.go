package repository

import (
	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomizationRepository wraps store customization table access
type CustomizationRepository struct {
	db *gorm.DB
}

// NewCustomizationRepository creates a customization repository
func NewCustomizationRepository(db *gorm.DB) *CustomizationRepository {
	return &CustomizationRepository{db: db}
}

// CreateDefault inserts the default customization row for a new tenant
func (r *CustomizationRepository) CreateDefault(tenantID uuid.UUID) error {
	return r.db.Create(&model.StoreCustomization{
		TenantID:       tenantID,
		PrimaryColor:   "#1a1a2e",
		SecondaryColor: "#16213e",
		AccentColor:    "#e94560",
		FontFamily:     "Inter",
		WelcomeMessage: "Bem-vindo à nossa loja!",
		ShowBanner:     true,
	}).Error
}

// GetByTenant fetches the customization row for a tenant
func (r *CustomizationRepository) GetByTenant(tenantID uuid.UUID) (*model.StoreCustomization, error) {
	var c model.StoreCustomization
	if err := r.db.First(&c, "tenant_id = ?", tenantID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
