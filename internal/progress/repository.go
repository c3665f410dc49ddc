package progress

import (
	"time"

	"gorm.io/gorm"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/assignment"
)

// activityFeedLimit caps the recent-activity feed.
const activityFeedLimit = 5

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type domainCount struct {
	DomainID   uint
	DomainName string
	Total      int
	Answered   int
}

// CountByDomain aggregates assignment counts per domain for one tenant in a
// single indexed query. Domains without assignments are absent.
func (r *Repository) CountByDomain(tenantID uint) ([]domainCount, error) {
	var counts []domainCount
	err := r.db.Raw(`
		SELECT d.id AS domain_id,
		       d.name AS domain_name,
		       COUNT(tq.id) AS total,
		       SUM(CASE WHEN tq.status = ? THEN 1 ELSE 0 END) AS answered
		FROM tenant_questions tq
		JOIN questions q ON q.id = tq.question_id
		JOIN domains d ON d.id = q.domain_id
		WHERE tq.tenant_id = ?
		GROUP BY d.id, d.name
		ORDER BY d.name ASC`,
		assignment.StatusAnswered, tenantID,
	).Scan(&counts).Error
	if err != nil {
		return nil, apperrors.Upstreamf("aggregate progress: %v", err)
	}
	return counts, nil
}

type activityRow struct {
	ResponseID       uint
	TenantQuestionID uint
	QuestionTitle    string
	UserID           uint
	FullName         string
	Role             string
	CreatedAt        time.Time
}

// RecentActivity returns the tenant's latest responses, newest first with
// id as the tie-breaker.
func (r *Repository) RecentActivity(tenantID uint) ([]activityRow, error) {
	var rows []activityRow
	err := r.db.Raw(`
		SELECT r.id AS response_id,
		       r.tenant_question_id,
		       q.title AS question_title,
		       u.id AS user_id,
		       u.full_name,
		       u.role,
		       r.created_at
		FROM responses r
		JOIN tenant_questions tq ON tq.id = r.tenant_question_id
		JOIN questions q ON q.id = tq.question_id
		JOIN users u ON u.id = r.user_id
		WHERE tq.tenant_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?`,
		tenantID, activityFeedLimit,
	).Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Upstreamf("recent activity: %v", err)
	}
	return rows, nil
}
