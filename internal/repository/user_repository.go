package repository

import (
	"errors"
	"strings"

	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrEmailTaken is returned when a user with the email already exists
var ErrEmailTaken = errors.New("email already registered")

// UserRepository wraps user table access. It plays the part of the
// privileged user-creation API: creating a pre-confirmed account requires
// nothing more than a database connection here, but callers must still
// treat failure as a recoverable condition.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail fetches a user by email
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var u model.User
	if err := r.db.First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user with a bcrypt-hashed password
func (r *UserRepository) Create(email, name, password string) (*model.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := model.User{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Name:     name,
		Password: string(hashed),
	}
	if err := r.db.Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateConfirmed creates a pre-confirmed account for a new store admin.
// Returns ErrEmailTaken when the email is already registered.
func (r *UserRepository) CreateConfirmed(email, name, password string) (uuid.UUID, error) {
	var count int64
	if err := r.db.Model(&model.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return uuid.Nil, err
	}
	if count > 0 {
		return uuid.Nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, err
	}

	u := model.User{
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Name:           name,
		Password:       string(hashed),
		EmailConfirmed: true,
	}
	if err := r.db.Create(&u).Error; err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (r *UserRepository) VerifyPassword(u *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
