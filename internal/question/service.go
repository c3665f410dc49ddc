package question

import (
	"fmt"
	"log"
	"strings"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/domain"
)

type Service struct {
	repo       *Repository
	domainRepo *domain.Repository
}

func NewService(repo *Repository, domainRepo *domain.Repository) *Service {
	return &Service{repo: repo, domainRepo: domainRepo}
}

func (s *Service) CreateQuestion(in QuestionInput) (*Question, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.Validationf("question title is required")
	}

	if _, err := s.domainRepo.GetByID(in.DomainID); err != nil {
		return nil, err
	}

	q := &Question{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		DomainID:    in.DomainID,
		Required:    in.Required,
	}
	if err := q.SetTags(in.Tags); err != nil {
		return nil, apperrors.Validationf("invalid tags: %v", err)
	}

	if err := s.repo.Create(q); err != nil {
		return nil, err
	}
	return s.repo.GetByID(q.ID)
}

func (s *Service) GetQuestion(id uint) (*Question, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListQuestions(domainID uint) ([]Question, error) {
	return s.repo.List(domainID)
}

func (s *Service) UpdateQuestion(id uint, in QuestionInput) (*Question, error) {
	q, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		q.Title = title
	}
	q.Description = strings.TrimSpace(in.Description)
	if in.DomainID != 0 && in.DomainID != q.DomainID {
		if _, err := s.domainRepo.GetByID(in.DomainID); err != nil {
			return nil, err
		}
		q.DomainID = in.DomainID
	}
	q.Required = in.Required
	if err := q.SetTags(in.Tags); err != nil {
		return nil, apperrors.Validationf("invalid tags: %v", err)
	}

	// Save would also write the preloaded association; detach it first.
	q.Domain = nil
	if err := s.repo.Update(q); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) DeleteQuestion(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// ImportRows validates and inserts a batch of imported questions. A row with
// a blank title or an unknown domain rejects the whole batch; a partial
// import would make re-running the sheet ambiguous.
func (s *Service) ImportRows(rows []BulkQuestionRow) ([]Question, []RowError, error) {
	if len(rows) == 0 {
		return nil, nil, apperrors.Validationf("no rows to import")
	}

	domains, err := s.domainRepo.List()
	if err != nil {
		return nil, nil, err
	}
	byName := make(map[string]uint, len(domains))
	for _, d := range domains {
		byName[strings.ToLower(d.Name)] = d.ID
	}

	var rowErrs []RowError
	questions := make([]Question, 0, len(rows))

	for i, row := range rows {
		rowNum := i + 1
		title := strings.TrimSpace(row.Title)
		if title == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "title is required"})
			continue
		}

		domainName := strings.TrimSpace(row.Domain)
		if domainName == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "domain is required"})
			continue
		}
		domainID, ok := byName[strings.ToLower(domainName)]
		if !ok {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: fmt.Sprintf("unknown domain %q", domainName)})
			continue
		}

		q := Question{
			Title:       title,
			Description: strings.TrimSpace(row.Description),
			DomainID:    domainID,
			Required:    row.Required,
		}
		if err := q.SetTags(row.Tags); err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "invalid tags"})
			continue
		}
		questions = append(questions, q)
	}

	if len(rowErrs) > 0 {
		return nil, rowErrs, apperrors.Validationf("%d of %d rows rejected", len(rowErrs), len(rows))
	}

	if err := s.repo.CreateBatch(questions); err != nil {
		return nil, nil, err
	}

	log.Printf("Imported %d questions", len(questions))
	return questions, nil, nil
}
