package assignment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/auditlog"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/internal/question"
	"github.com/grcworks/requirement-gathering-backend/internal/storage"
	"github.com/grcworks/requirement-gathering-backend/internal/tenant"
)

// Notifier delivers thread notifications. Delivery failures are the
// notifier's problem; callers never see them.
type Notifier interface {
	QuestionUpdated(tenantID, actorID uint, questionTitle string, tenantQuestionID uint)
}

type Service struct {
	repo      *Repository
	tenants   *tenant.Repository
	questions *question.Repository
	store     storage.Storage
	audit     *auditlog.Service
	notifier  Notifier
}

func NewService(repo *Repository, tenants *tenant.Repository, questions *question.Repository, store storage.Storage, audit *auditlog.Service, notifier Notifier) *Service {
	return &Service{
		repo:      repo,
		tenants:   tenants,
		questions: questions,
		store:     store,
		audit:     audit,
		notifier:  notifier,
	}
}

// AssignQuestion links a pool question to a tenant. The pre-check catches
// the common duplicate; the unique index catches the race, and both surface
// as the same DuplicateAssignment error.
func (s *Service) AssignQuestion(tenantID, questionID uint, actor *auth.User, ip string) (*TenantQuestion, error) {
	if _, err := s.tenants.GetByID(tenantID); err != nil {
		return nil, err
	}
	if _, err := s.questions.GetByID(questionID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(tenantID, questionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: question %d already assigned to tenant %d",
			apperrors.ErrDuplicateAssignment, questionID, tenantID)
	}

	tq := &TenantQuestion{
		TenantID:    tenantID,
		QuestionID:  questionID,
		Status:      StatusUnanswered,
		LastUpdated: time.Now(),
	}
	if err := s.repo.Create(tq); err != nil {
		return nil, err
	}

	s.audit.Record(actor.ID, &tenantID, auditlog.ActionQuestionAssigned,
		fmt.Sprintf("question %d assigned to tenant %d", questionID, tenantID), ip)

	loaded, err := s.repo.GetByID(tq.ID)
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

// AssignDefaults assigns every question flagged required to the tenant,
// skipping pairs that already exist. Returns the number created.
func (s *Service) AssignDefaults(tenantID uint, actor *auth.User, ip string) (int, error) {
	if _, err := s.tenants.GetByID(tenantID); err != nil {
		return 0, err
	}

	required, err := s.questions.ListRequired()
	if err != nil {
		return 0, err
	}
	assigned, err := s.repo.AssignedQuestionIDs(tenantID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, q := range required {
		if assigned[q.ID] {
			continue
		}
		tq := &TenantQuestion{
			TenantID:    tenantID,
			QuestionID:  q.ID,
			Status:      StatusUnanswered,
			LastUpdated: time.Now(),
		}
		err := s.repo.Create(tq)
		if errors.Is(err, apperrors.ErrDuplicateAssignment) {
			continue // raced with a concurrent assign; already there
		}
		if err != nil {
			return created, err
		}
		created++
	}

	s.audit.Record(actor.ID, &tenantID, auditlog.ActionQuestionAssigned,
		fmt.Sprintf("%d default questions assigned to tenant %d", created, tenantID), ip)
	return created, nil
}

// ListTenantQuestions returns the tenant's assignments as typed views, in
// insertion order. With sortByStatus the list is re-ordered open-work-first;
// the sort is stable so insertion order survives within each status.
func (s *Service) ListTenantQuestions(tenantID uint, sortByStatus bool) ([]TenantQuestionView, error) {
	if _, err := s.tenants.GetByID(tenantID); err != nil {
		return nil, err
	}

	tqs, err := s.repo.ListByTenant(tenantID)
	if err != nil {
		return nil, err
	}

	views := make([]TenantQuestionView, 0, len(tqs))
	for _, tq := range tqs {
		views = append(views, toView(tq))
	}

	if sortByStatus {
		sort.SliceStable(views, func(i, j int) bool {
			return statusPriority(views[i].Status) < statusPriority(views[j].Status)
		})
	}
	return views, nil
}

// SetStatus moves the thread to a new status. Customers may only touch
// their own tenant's threads; consultants are scoped the same way here
// since status is a management action.
func (s *Service) SetStatus(id uint, status string, actor *auth.User, ip string) (*TenantQuestion, error) {
	if !ValidStatus(status) {
		return nil, apperrors.Validationf("unknown status %q", status)
	}

	tq, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageTenant(tq.TenantID) {
		return nil, apperrors.Forbiddenf("user %d may not manage tenant %d", actor.ID, tq.TenantID)
	}

	tq.Status = status
	tq.LastUpdated = time.Now()
	if err := s.repo.Save(tq); err != nil {
		return nil, err
	}

	s.audit.Record(actor.ID, &tq.TenantID, auditlog.ActionStatusChanged,
		fmt.Sprintf("tenant question %d moved to %s", tq.ID, status), ip)

	if s.notifier != nil {
		title := ""
		if tq.Question != nil {
			title = tq.Question.Title
		}
		s.notifier.QuestionUpdated(tq.TenantID, actor.ID, title, tq.ID)
	}
	return tq, nil
}

// GetThread resolves the assignment and decides thread access in one place.
// Every thread read and write goes through this check.
func (s *Service) GetThread(id uint, actor *auth.User) (*TenantQuestion, error) {
	tq, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessThread(tq.TenantID) {
		return nil, apperrors.Forbiddenf("user %d may not access tenant %d threads", actor.ID, tq.TenantID)
	}
	return tq, nil
}

// TouchThread refreshes last_updated after thread activity.
func (s *Service) TouchThread(id uint) error {
	return s.repo.Touch(id)
}

// Unassign removes the assignment and its whole thread.
func (s *Service) Unassign(id uint, actor *auth.User, ip string) error {
	tq, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	keys, err := s.repo.Unassign(id)
	if err != nil {
		return err
	}
	// Blob cleanup is best effort; orphaned objects are harmless.
	for _, key := range keys {
		if err := s.store.Delete(context.Background(), key); err != nil {
			log.Printf("⚠️ Failed to delete stored file %s: %v", key, err)
		}
	}
	s.audit.Record(actor.ID, &tq.TenantID, auditlog.ActionQuestionUnassigned,
		fmt.Sprintf("question %d unassigned from tenant %d", tq.QuestionID, tq.TenantID), ip)
	return nil
}
