package tenant

import (
	"context"
	"log"
	"strings"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/storage"
)

// Service provides tenant administration.
type Service struct {
	repo  *Repository
	store storage.Storage
}

func NewService(repo *Repository, store storage.Storage) *Service {
	return &Service{repo: repo, store: store}
}

func (s *Service) CreateTenant(in TenantInput) (*Tenant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validationf("tenant name is required")
	}

	t := &Tenant{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Industry:    strings.TrimSpace(in.Industry),
	}
	if err := s.repo.Create(t); err != nil {
		return nil, err
	}

	log.Printf("Tenant created: %s (id=%d)", t.Name, t.ID)
	return t, nil
}

func (s *Service) GetTenant(id uint) (*Tenant, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListTenants() ([]Tenant, error) {
	return s.repo.List()
}

func (s *Service) UpdateTenant(id uint, in TenantInput) (*Tenant, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		t.Name = name
	}
	t.Description = strings.TrimSpace(in.Description)
	t.Industry = strings.TrimSpace(in.Industry)

	if err := s.repo.Update(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) DeleteTenant(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	keys, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	// Blob cleanup is best effort; orphaned objects are harmless.
	for _, key := range keys {
		if err := s.store.Delete(context.Background(), key); err != nil {
			log.Printf("⚠️ Failed to delete stored file %s: %v", key, err)
		}
	}
	log.Printf("Tenant %d deleted with all owned data", id)
	return nil
}
