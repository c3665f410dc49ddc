package tenant

import (
	"errors"

	"gorm.io/gorm"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

// Repository handles tenant persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(t *Tenant) error {
	if err := r.db.Create(t).Error; err != nil {
		return apperrors.Upstreamf("create tenant: %v", err)
	}
	return nil
}

func (r *Repository) GetByID(id uint) (*Tenant, error) {
	var t Tenant
	err := r.db.First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("tenant %d", id)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("get tenant: %v", err)
	}
	return &t, nil
}

func (r *Repository) List() ([]Tenant, error) {
	var tenants []Tenant
	if err := r.db.Order("id ASC").Find(&tenants).Error; err != nil {
		return nil, apperrors.Upstreamf("list tenants: %v", err)
	}
	return tenants, nil
}

func (r *Repository) Update(t *Tenant) error {
	if err := r.db.Save(t).Error; err != nil {
		return apperrors.Upstreamf("update tenant: %v", err)
	}
	return nil
}

// Delete removes the tenant and everything it owns: users, question
// assignments and, transitively, responses and attachments. The whole
// cascade runs in one transaction; the storage keys of the deleted
// attachments are returned so the caller can clean up the blobs.
func (r *Repository) Delete(id uint) ([]string, error) {
	var keys []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(
			"SELECT storage_key FROM attachments WHERE response_id IN (SELECT id FROM responses WHERE tenant_question_id IN (SELECT id FROM tenant_questions WHERE tenant_id = ?))",
			id,
		).Scan(&keys).Error; err != nil {
			return apperrors.Upstreamf("collect attachment keys: %v", err)
		}

		if err := tx.Exec(
			"DELETE FROM attachments WHERE response_id IN (SELECT id FROM responses WHERE tenant_question_id IN (SELECT id FROM tenant_questions WHERE tenant_id = ?))",
			id,
		).Error; err != nil {
			return apperrors.Upstreamf("delete attachments: %v", err)
		}

		if err := tx.Exec(
			"DELETE FROM responses WHERE tenant_question_id IN (SELECT id FROM tenant_questions WHERE tenant_id = ?)",
			id,
		).Error; err != nil {
			return apperrors.Upstreamf("delete responses: %v", err)
		}

		if err := tx.Exec("DELETE FROM tenant_questions WHERE tenant_id = ?", id).Error; err != nil {
			return apperrors.Upstreamf("delete assignments: %v", err)
		}

		if err := tx.Exec("DELETE FROM users WHERE tenant_id = ?", id).Error; err != nil {
			return apperrors.Upstreamf("delete tenant users: %v", err)
		}

		res := tx.Unscoped().Delete(&Tenant{}, id)
		if res.Error != nil {
			return apperrors.Upstreamf("delete tenant: %v", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFoundf("tenant %d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
