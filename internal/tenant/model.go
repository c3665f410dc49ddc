package tenant

import (
	"time"

	"gorm.io/gorm"
)

// Tenant is a customer organization, the unit of data isolation.
type Tenant struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:150;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Industry    string         `gorm:"size:100" json:"industry,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// TenantInput is the admin create/update payload.
type TenantInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
}
