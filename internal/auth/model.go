package auth

import (
	"time"

	"gorm.io/gorm"
)

// Role names form a closed set. Everything that gates on a role compares
// against these constants, never against free-form strings from a request.
const (
	RoleAdmin      = "admin"
	RoleConsultant = "consultant"
	RoleCustomer   = "customer"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleConsultant || role == RoleCustomer
}

// User represents an account. Customers always belong to exactly one tenant;
// admins and consultants may be unbound (TenantID nil).
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"column:password_hash;size:255;not null" json:"-"`
	Email        string         `gorm:"size:100;not null" json:"email"`
	FullName     string         `gorm:"column:full_name;size:100;not null" json:"full_name"`
	Role         string         `gorm:"size:20;not null;index" json:"role"`
	TenantID     *uint          `gorm:"column:tenant_id;index" json:"tenant_id,omitempty"`
	Status       string         `gorm:"size:20;default:active" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// CanAccessThread is the single capability decision point for reading or
// writing the response thread of a tenant question owned by tenantID.
// Admins and consultants see every tenant; customers only their own.
func (u User) CanAccessThread(tenantID uint) bool {
	switch u.Role {
	case RoleAdmin, RoleConsultant:
		return true
	default:
		return u.TenantID != nil && *u.TenantID == tenantID
	}
}

// CanManageTenant gates tenant-scoped mutations (question status updates).
// Unlike CanAccessThread, consultants must be bound to the tenant.
func (u User) CanManageTenant(tenantID uint) bool {
	if u.Role == RoleAdmin {
		return true
	}
	return u.TenantID != nil && *u.TenantID == tenantID
}

// Projection is the minimal user shape embedded in API payloads.
// The password hash never leaves the auth package.
type Projection struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Project returns the minimal projection of u.
func (u User) Project() Projection {
	return Projection{ID: u.ID, FullName: u.FullName, Role: u.Role}
}

// CreateUserInput is the admin user-creation payload.
type CreateUserInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	TenantID *uint  `json:"tenant_id"`
}

// UserResponse is the admin-facing user listing shape.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	TenantID  *uint     `json:"tenant_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		TenantID:  u.TenantID,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
