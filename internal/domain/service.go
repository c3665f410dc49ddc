package domain

import (
	"strings"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateDomain(in DomainInput) (*Domain, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validationf("domain name is required")
	}

	d := &Domain{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
	}
	if err := s.repo.Create(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDomain(id uint) (*Domain, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListDomains() ([]Domain, error) {
	return s.repo.List()
}

func (s *Service) UpdateDomain(id uint, in DomainInput) (*Domain, error) {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		d.Name = name
	}
	d.Description = strings.TrimSpace(in.Description)
	d.Icon = strings.TrimSpace(in.Icon)

	if err := s.repo.Update(d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDomain refuses to delete a domain that still has questions; callers
// must move or delete the questions first.
func (s *Service) DeleteDomain(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	count, err := s.repo.QuestionCount(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Validationf("domain %d still has %d questions", id, count)
	}

	return s.repo.Delete(id)
}
