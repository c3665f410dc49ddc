package question

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/grcworks/requirement-gathering-backend/internal/domain"
)

// Question lives in the global pool shared by all tenants; it belongs to
// exactly one domain and only becomes visible to a tenant once assigned.
type Question struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	DomainID    uint           `gorm:"not null;index" json:"domain_id"`
	Domain      *domain.Domain `gorm:"foreignKey:DomainID" json:"domain,omitempty"`
	Required    bool           `gorm:"default:false" json:"required"`
	Tags        datatypes.JSON `json:"tags,omitempty"` // ordered JSON array of strings
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// SetTags stores an ordered tag list on the jsonb column.
func (q *Question) SetTags(tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	q.Tags = datatypes.JSON(raw)
	return nil
}

// TagList decodes the stored tags, preserving order.
func (q *Question) TagList() []string {
	if len(q.Tags) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(q.Tags, &tags); err != nil {
		return []string{}
	}
	return tags
}

// QuestionInput is the admin create/update payload.
type QuestionInput struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	DomainID    uint     `json:"domain_id" binding:"required"`
	Required    bool     `json:"required"`
	Tags        []string `json:"tags"`
}

// BulkQuestionRow is one row of a bulk import. The domain is referenced by
// name, the way questionnaire sheets are authored.
type BulkQuestionRow struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Domain      string   `json:"domain"`
	Required    bool     `json:"required"`
	Tags        []string `json:"tags"`
}

// RowError names a rejected import row.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
