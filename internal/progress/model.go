package progress

import (
	"time"

	"github.com/grcworks/requirement-gathering-backend/internal/auth"
)

// DomainProgress is one per-domain completion split. Domains with no
// assigned questions never appear.
type DomainProgress struct {
	DomainID       uint   `json:"domain_id"`
	DomainName     string `json:"domain_name"`
	Answered       int    `json:"answered"`
	TotalQuestions int    `json:"total_questions"`
	Percent        int    `json:"percent"`
}

// TenantProgress is the full completion picture for one tenant.
type TenantProgress struct {
	TenantID          uint             `json:"tenant_id"`
	TotalQuestions    int              `json:"total_questions"`
	Answered          int              `json:"answered"`
	OverallCompletion int              `json:"overall_completion"`
	Domains           []DomainProgress `json:"domains"`
}

// ActivityItem is one recent-activity feed entry: a response annotated with
// its author and question title.
type ActivityItem struct {
	ResponseID       uint            `json:"response_id"`
	TenantQuestionID uint            `json:"tenant_question_id"`
	QuestionTitle    string          `json:"question_title"`
	User             auth.Projection `json:"user"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Dashboard bundles progress and recent activity in one payload.
type Dashboard struct {
	Progress       TenantProgress `json:"progress"`
	RecentActivity []ActivityItem `json:"recent_activity"`
}
