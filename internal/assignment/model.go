package assignment

import (
	"time"

	"github.com/grcworks/requirement-gathering-backend/internal/question"
)

// Thread statuses. A fresh assignment starts Unanswered; the consultant or
// admin moves it forward as the thread develops.
const (
	StatusUnanswered = "Unanswered"
	StatusInProgress = "In Progress"
	StatusAnswered   = "Answered"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusUnanswered, StatusInProgress, StatusAnswered:
		return true
	}
	return false
}

// statusPriority orders the optional status sort: open work first.
func statusPriority(s string) int {
	switch s {
	case StatusUnanswered:
		return 0
	case StatusInProgress:
		return 1
	case StatusAnswered:
		return 2
	}
	return 3
}

// TenantQuestion links one pool question to one tenant and anchors that
// tenant's response thread. The composite unique index closes the
// concurrent double-assign race at the store level.
type TenantQuestion struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	TenantID    uint               `gorm:"not null;uniqueIndex:idx_tenant_question;index" json:"tenant_id"`
	QuestionID  uint               `gorm:"not null;uniqueIndex:idx_tenant_question" json:"question_id"`
	Question    *question.Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Status      string             `gorm:"size:20;not null" json:"status"`
	LastUpdated time.Time          `json:"last_updated"`
	CreatedAt   time.Time          `json:"created_at"`
}

func (TenantQuestion) TableName() string {
	return "tenant_questions"
}

// DomainRef is the slim domain shape embedded in list views.
type DomainRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// TenantQuestionView is the typed row served to the tenant question list:
// the assignment joined with its question and domain, no raw model nesting.
type TenantQuestionView struct {
	ID          uint      `json:"id"`
	TenantID    uint      `json:"tenant_id"`
	QuestionID  uint      `json:"question_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
	Tags        []string  `json:"tags"`
	Domain      DomainRef `json:"domain"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

func toView(tq TenantQuestion) TenantQuestionView {
	view := TenantQuestionView{
		ID:          tq.ID,
		TenantID:    tq.TenantID,
		QuestionID:  tq.QuestionID,
		Status:      tq.Status,
		LastUpdated: tq.LastUpdated,
		CreatedAt:   tq.CreatedAt,
		Tags:        []string{},
	}
	if tq.Question != nil {
		view.Title = tq.Question.Title
		view.Description = tq.Question.Description
		view.Required = tq.Question.Required
		view.Tags = tq.Question.TagList()
		if tq.Question.Domain != nil {
			view.Domain = DomainRef{
				ID:   tq.Question.Domain.ID,
				Name: tq.Question.Domain.Name,
				Icon: tq.Question.Domain.Icon,
			}
		}
	}
	return view
}

// AssignInput is the admin assignment payload.
type AssignInput struct {
	TenantID   uint `json:"tenant_id" binding:"required"`
	QuestionID uint `json:"question_id" binding:"required"`
}

// StatusInput carries a status transition.
type StatusInput struct {
	Status string `json:"status" binding:"required"`
}
