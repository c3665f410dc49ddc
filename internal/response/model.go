package response

import (
	"time"

	"github.com/grcworks/requirement-gathering-backend/internal/auth"
)

// MaxAttachmentSize caps uploads at 10 MiB.
const MaxAttachmentSize = 10 << 20

// allowedContentTypes is the attachment MIME allow-list.
var allowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/png":  true,
	"image/jpeg": true,
}

// AllowedContentType reports whether ct may be attached.
func AllowedContentType(ct string) bool {
	return allowedContentTypes[ct]
}

// Response is one append-ordered entry in a tenant question's thread.
type Response struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	TenantQuestionID uint         `gorm:"not null;index" json:"tenant_question_id"`
	UserID           uint         `gorm:"not null;index" json:"user_id"`
	User             *auth.User   `gorm:"foreignKey:UserID" json:"-"`
	Content          string       `gorm:"type:text;not null" json:"content"`
	Attachments      []Attachment `gorm:"foreignKey:ResponseID" json:"attachments"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (Response) TableName() string {
	return "responses"
}

// Attachment is one stored file hanging off a response. StorageKey points
// into the storage backend; the row owns every piece of metadata.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ResponseID  uint      `gorm:"not null;index" json:"response_id"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	StorageKey  string    `gorm:"size:300;not null" json:"-"`
	ContentType string    `gorm:"size:120;not null" json:"content_type"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	UploadedBy  uint      `gorm:"not null" json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}

// ResponseView is the thread entry served to clients: the response with the
// author reduced to the minimal projection.
type ResponseView struct {
	ID               uint            `json:"id"`
	TenantQuestionID uint            `json:"tenant_question_id"`
	Content          string          `json:"content"`
	User             auth.Projection `json:"user"`
	Attachments      []Attachment    `json:"attachments"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toView(r Response) ResponseView {
	view := ResponseView{
		ID:               r.ID,
		TenantQuestionID: r.TenantQuestionID,
		Content:          r.Content,
		Attachments:      r.Attachments,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if view.Attachments == nil {
		view.Attachments = []Attachment{}
	}
	if r.User != nil {
		view.User = r.User.Project()
	} else {
		view.User = auth.Projection{ID: r.UserID}
	}
	return view
}

// ContentInput carries a response body for create and edit.
type ContentInput struct {
	Content string `json:"content" binding:"required"`
}
