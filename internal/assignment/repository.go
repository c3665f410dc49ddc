package assignment

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the assignment. A unique-index violation means another
// request won the race for the same (tenant, question) pair.
func (r *Repository) Create(tq *TenantQuestion) error {
	err := r.db.Create(tq).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateAssignment
	}
	if err != nil {
		return apperrors.Upstreamf("create assignment: %v", err)
	}
	return nil
}

func (r *Repository) Exists(tenantID, questionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&TenantQuestion{}).
		Where("tenant_id = ? AND question_id = ?", tenantID, questionID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Upstreamf("check assignment: %v", err)
	}
	return count > 0, nil
}

func (r *Repository) GetByID(id uint) (*TenantQuestion, error) {
	var tq TenantQuestion
	err := r.db.Preload("Question.Domain").First(&tq, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("tenant question %d", id)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("get assignment: %v", err)
	}
	return &tq, nil
}

// ListByTenant returns assignments in insertion order with question and
// domain eagerly loaded.
func (r *Repository) ListByTenant(tenantID uint) ([]TenantQuestion, error) {
	var tqs []TenantQuestion
	err := r.db.Preload("Question.Domain").
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&tqs).Error
	if err != nil {
		return nil, apperrors.Upstreamf("list assignments: %v", err)
	}
	return tqs, nil
}

// AssignedQuestionIDs returns the question ids already assigned to the
// tenant, used to skip existing pairs on bulk default-assignment.
func (r *Repository) AssignedQuestionIDs(tenantID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.Model(&TenantQuestion{}).
		Where("tenant_id = ?", tenantID).
		Pluck("question_id", &ids).Error
	if err != nil {
		return nil, apperrors.Upstreamf("list assigned question ids: %v", err)
	}
	assigned := make(map[uint]bool, len(ids))
	for _, id := range ids {
		assigned[id] = true
	}
	return assigned, nil
}

func (r *Repository) Save(tq *TenantQuestion) error {
	if err := r.db.Save(tq).Error; err != nil {
		return apperrors.Upstreamf("save assignment: %v", err)
	}
	return nil
}

// Touch refreshes last_updated; called whenever thread activity lands.
func (r *Repository) Touch(id uint) error {
	err := r.db.Model(&TenantQuestion{}).
		Where("id = ?", id).
		Update("last_updated", time.Now()).Error
	if err != nil {
		return apperrors.Upstreamf("touch assignment: %v", err)
	}
	return nil
}

// Unassign removes the assignment and its thread in one transaction,
// returning the storage keys of the deleted attachments so the caller can
// clean up the blobs.
func (r *Repository) Unassign(id uint) ([]string, error) {
	var keys []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(
			"SELECT storage_key FROM attachments WHERE response_id IN (SELECT id FROM responses WHERE tenant_question_id = ?)",
			id,
		).Scan(&keys).Error; err != nil {
			return apperrors.Upstreamf("collect thread attachment keys: %v", err)
		}

		if err := tx.Exec(
			"DELETE FROM attachments WHERE response_id IN (SELECT id FROM responses WHERE tenant_question_id = ?)",
			id,
		).Error; err != nil {
			return apperrors.Upstreamf("delete thread attachments: %v", err)
		}
		if err := tx.Exec("DELETE FROM responses WHERE tenant_question_id = ?", id).Error; err != nil {
			return apperrors.Upstreamf("delete thread responses: %v", err)
		}

		res := tx.Delete(&TenantQuestion{}, id)
		if res.Error != nil {
			return apperrors.Upstreamf("delete assignment: %v", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFoundf("tenant question %d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
