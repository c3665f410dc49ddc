package progress

import (
	"math"

	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/internal/tenant"
)

type Service struct {
	repo    *Repository
	tenants *tenant.Repository
}

func NewService(repo *Repository, tenants *tenant.Repository) *Service {
	return &Service{repo: repo, tenants: tenants}
}

// GetTenantProgress computes the overall completion percentage and the
// per-domain split. A tenant with no assignments is simply 0% complete.
func (s *Service) GetTenantProgress(tenantID uint) (*TenantProgress, error) {
	if _, err := s.tenants.GetByID(tenantID); err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByDomain(tenantID)
	if err != nil {
		return nil, err
	}

	result := &TenantProgress{
		TenantID: tenantID,
		Domains:  make([]DomainProgress, 0, len(counts)),
	}
	for _, dc := range counts {
		result.TotalQuestions += dc.Total
		result.Answered += dc.Answered
		result.Domains = append(result.Domains, DomainProgress{
			DomainID:       dc.DomainID,
			DomainName:     dc.DomainName,
			Answered:       dc.Answered,
			TotalQuestions: dc.Total,
			Percent:        percent(dc.Answered, dc.Total),
		})
	}
	result.OverallCompletion = percent(result.Answered, result.TotalQuestions)
	return result, nil
}

// GetRecentActivity returns the latest thread responses annotated with
// author and question title.
func (s *Service) GetRecentActivity(tenantID uint) ([]ActivityItem, error) {
	if _, err := s.tenants.GetByID(tenantID); err != nil {
		return nil, err
	}

	rows, err := s.repo.RecentActivity(tenantID)
	if err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ActivityItem{
			ResponseID:       row.ResponseID,
			TenantQuestionID: row.TenantQuestionID,
			QuestionTitle:    row.QuestionTitle,
			User: auth.Projection{
				ID:       row.UserID,
				FullName: row.FullName,
				Role:     row.Role,
			},
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}

// GetDashboard bundles progress and recent activity.
func (s *Service) GetDashboard(tenantID uint) (*Dashboard, error) {
	prog, err := s.GetTenantProgress(tenantID)
	if err != nil {
		return nil, err
	}
	activity, err := s.GetRecentActivity(tenantID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Progress: *prog, RecentActivity: activity}, nil
}

func percent(answered, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(answered) / float64(total)))
}
