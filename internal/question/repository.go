package question

import (
	"errors"

	"gorm.io/gorm"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(q *Question) error {
	if err := r.db.Create(q).Error; err != nil {
		return apperrors.Upstreamf("create question: %v", err)
	}
	return nil
}

// CreateBatch inserts all rows in one transaction; all-or-nothing.
func (r *Repository) CreateBatch(questions []Question) error {
	if len(questions) == 0 {
		return nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i := range questions {
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Upstreamf("bulk create questions: %v", err)
	}
	return nil
}

func (r *Repository) GetByID(id uint) (*Question, error) {
	var q Question
	err := r.db.Preload("Domain").First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("question %d", id)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("get question: %v", err)
	}
	return &q, nil
}

// List returns the global pool, optionally filtered by domain.
func (r *Repository) List(domainID uint) ([]Question, error) {
	query := r.db.Preload("Domain").Order("id ASC")
	if domainID > 0 {
		query = query.Where("domain_id = ?", domainID)
	}

	var questions []Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, apperrors.Upstreamf("list questions: %v", err)
	}
	return questions, nil
}

// ListRequired returns the questions flagged for default assignment.
func (r *Repository) ListRequired() ([]Question, error) {
	var questions []Question
	if err := r.db.Where("required = ?", true).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, apperrors.Upstreamf("list required questions: %v", err)
	}
	return questions, nil
}

func (r *Repository) Update(q *Question) error {
	if err := r.db.Save(q).Error; err != nil {
		return apperrors.Upstreamf("update question: %v", err)
	}
	return nil
}

// Delete removes a question from the pool. Assigned copies are removed with
// it (and their threads), mirroring the tenant cascade.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM attachments WHERE response_id IN (SELECT id FROM responses WHERE tenant_question_id IN (SELECT id FROM tenant_questions WHERE question_id = ?))",
			id,
		).Error; err != nil {
			return apperrors.Upstreamf("delete attachments: %v", err)
		}
		if err := tx.Exec(
			"DELETE FROM responses WHERE tenant_question_id IN (SELECT id FROM tenant_questions WHERE question_id = ?)",
			id,
		).Error; err != nil {
			return apperrors.Upstreamf("delete responses: %v", err)
		}
		if err := tx.Exec("DELETE FROM tenant_questions WHERE question_id = ?", id).Error; err != nil {
			return apperrors.Upstreamf("delete assignments: %v", err)
		}

		res := tx.Delete(&Question{}, id)
		if res.Error != nil {
			return apperrors.Upstreamf("delete question: %v", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFoundf("question %d", id)
		}
		return nil
	})
}
