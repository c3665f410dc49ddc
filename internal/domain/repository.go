package domain

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

func (r *Repository) Create(d *Domain) error {
	if err := r.db.Create(d).Error; err != nil {
		return apperrors.Upstreamf("create domain: %v", err)
	}
	return nil
}

func (r *Repository) GetByID(id uint) (*Domain, error) {
	var d Domain
	err := r.db.First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("domain %d", id)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("get domain: %v", err)
	}
	return &d, nil
}

// GetByName resolves a domain by its exact name (bulk import).
func (r *Repository) GetByName(name string) (*Domain, error) {
	var d Domain
	err := r.db.Where("name = ?", name).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("domain %q", name)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("get domain: %v", err)
	}
	return &d, nil
}

func (r *Repository) List() ([]Domain, error) {
	var domains []Domain
	if err := r.db.Order("id ASC").Find(&domains).Error; err != nil {
		return nil, apperrors.Upstreamf("list domains: %v", err)
	}
	return domains, nil
}

func (r *Repository) Update(d *Domain) error {
	if err := r.db.Save(d).Error; err != nil {
		return apperrors.Upstreamf("update domain: %v", err)
	}
	return nil
}

func (r *Repository) Delete(id uint) error {
	res := r.db.Delete(&Domain{}, id)
	if res.Error != nil {
		return apperrors.Upstreamf("delete domain: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFoundf("domain %d", id)
	}
	return nil
}

// QuestionCount returns how many questions reference the domain.
func (r *Repository) QuestionCount(id uint) (int64, error) {
	var count int64
	if err := r.db.Table("questions").Where("domain_id = ?", id).Count(&count).Error; err != nil {
		return 0, apperrors.Upstreamf("count domain questions: %v", err)
	}
	return count, nil
}
