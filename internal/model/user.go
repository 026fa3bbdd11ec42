package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the user model stored in the database
type User struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Email           string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password        string         `json:"-" gorm:"type:varchar(255)"`
	Name            string         `json:"name" gorm:"type:varchar(100)"`
	IsPlatformAdmin bool           `json:"is_platform_admin" gorm:"default:false"`
	EmailConfirmed  bool           `json:"email_confirmed" gorm:"default:false"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
