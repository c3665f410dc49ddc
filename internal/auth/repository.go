package auth

import (
	"errors"

	"gorm.io/gorm"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

// Repository handles user persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUsername fetches a user by username.
func (r *Repository) FindByUsername(username string) (*User, error) {
	var user User
	err := r.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("user %q", username)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("find user: %v", err)
	}
	return &user, nil
}

// FindByEmail fetches a user by email.
func (r *Repository) FindByEmail(email string) (*User, error) {
	var user User
	err := r.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("user with email %q", email)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("find user: %v", err)
	}
	return &user, nil
}

// FindByID fetches a user by primary key.
func (r *Repository) FindByID(id uint) (*User, error) {
	var user User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("user %d", id)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("find user: %v", err)
	}
	return &user, nil
}

// Create inserts a new user.
func (r *Repository) Create(user *User) error {
	if err := r.db.Create(user).Error; err != nil {
		return apperrors.Upstreamf("create user: %v", err)
	}
	return nil
}

// ListAll returns every user, newest first. Plain indexed query, not an
// id-iteration loop.
func (r *Repository) ListAll() ([]User, error) {
	var users []User
	if err := r.db.Order("id DESC").Find(&users).Error; err != nil {
		return nil, apperrors.Upstreamf("list users: %v", err)
	}
	return users, nil
}

// ListByTenant returns users bound to a tenant, insertion order.
func (r *Repository) ListByTenant(tenantID uint) ([]User, error) {
	var users []User
	if err := r.db.Where("tenant_id = ?", tenantID).Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperrors.Upstreamf("list tenant users: %v", err)
	}
	return users, nil
}

// UpdateStatus sets a user's status.
func (r *Repository) UpdateStatus(id uint, status string) error {
	res := r.db.Model(&User{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return apperrors.Upstreamf("update user status: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFoundf("user %d", id)
	}
	return nil
}

// UpdatePassword replaces the password hash.
func (r *Repository) UpdatePassword(id uint, hash string) error {
	res := r.db.Model(&User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return apperrors.Upstreamf("update password: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFoundf("user %d", id)
	}
	return nil
}

// TenantExists checks the tenants table directly; auth cannot import the
// tenant package without a cycle.
func (r *Repository) TenantExists(tenantID uint) (bool, error) {
	var count int64
	if err := r.db.Table("tenants").Where("id = ? AND deleted_at IS NULL", tenantID).Count(&count).Error; err != nil {
		return false, apperrors.Upstreamf("check tenant: %v", err)
	}
	return count > 0, nil
}
