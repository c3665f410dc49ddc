package domain

import "time"

// Domain is a global categorization axis for questions, e.g. "Access
// Reviews". Domains are not tenant-scoped.
type Domain struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Icon        string    `gorm:"size:100" json:"icon,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Domain) TableName() string {
	return "domains"
}

// DomainInput is the admin create/update payload.
type DomainInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}
