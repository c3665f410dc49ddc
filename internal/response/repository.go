package response

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

func (r *Repository) Create(resp *Response) error {
	if err := r.db.Create(resp).Error; err != nil {
		return apperrors.Upstreamf("create response: %v", err)
	}
	return nil
}

func (r *Repository) GetByID(id uint) (*Response, error) {
	var resp Response
	err := r.db.Preload("Attachments").Preload("User").First(&resp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("response %d", id)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("get response: %v", err)
	}
	return &resp, nil
}

// ListByThread returns the thread chronologically, oldest first, with
// attachments and authors eagerly loaded.
func (r *Repository) ListByThread(tenantQuestionID uint) ([]Response, error) {
	var responses []Response
	err := r.db.Preload("Attachments").Preload("User").
		Where("tenant_question_id = ?", tenantQuestionID).
		Order("created_at ASC, id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, apperrors.Upstreamf("list responses: %v", err)
	}
	return responses, nil
}

func (r *Repository) Update(resp *Response) error {
	if err := r.db.Save(resp).Error; err != nil {
		return apperrors.Upstreamf("update response: %v", err)
	}
	return nil
}

// Delete removes the response and its attachment rows in one transaction.
// Stored blobs are the service's job.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("response_id = ?", id).Delete(&Attachment{}).Error; err != nil {
			return apperrors.Upstreamf("delete attachments: %v", err)
		}
		res := tx.Delete(&Response{}, id)
		if res.Error != nil {
			return apperrors.Upstreamf("delete response: %v", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFoundf("response %d", id)
		}
		return nil
	})
}

func (r *Repository) CreateAttachment(a *Attachment) error {
	if err := r.db.Create(a).Error; err != nil {
		return apperrors.Upstreamf("create attachment: %v", err)
	}
	return nil
}

func (r *Repository) GetAttachment(id uint) (*Attachment, error) {
	var a Attachment
	err := r.db.First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("attachment %d", id)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("get attachment: %v", err)
	}
	return &a, nil
}
