package auditlog

import (
	"gorm.io/gorm"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(entry *AuditLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return apperrors.Upstreamf("create audit log: %v", err)
	}
	return nil
}

// List returns entries newest first, optionally filtered, paginated.
func (r *Repository) List(tenantID uint, action string, limit, offset int) ([]AuditLog, int64, error) {
	query := r.db.Model(&AuditLog{})
	if tenantID > 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Upstreamf("count audit logs: %v", err)
	}

	var entries []AuditLog
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, apperrors.Upstreamf("list audit logs: %v", err)
	}
	return entries, total, nil
}
