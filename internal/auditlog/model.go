package auditlog

import "time"

// Action names recorded by services.
const (
	ActionQuestionAssigned   = "QUESTION_ASSIGNED"
	ActionQuestionUnassigned = "QUESTION_UNASSIGNED"
	ActionStatusChanged      = "STATUS_CHANGED"
	ActionResponsePosted     = "RESPONSE_POSTED"
	ActionResponseEdited     = "RESPONSE_EDITED"
	ActionResponseDeleted    = "RESPONSE_DELETED"
	ActionFileUploaded       = "FILE_UPLOADED"
	ActionQuestionsImport    = "QUESTIONS_IMPORTED"
	ActionTenantCreated      = "TENANT_CREATED"
	ActionTenantDeleted      = "TENANT_DELETED"
	ActionUserCreated        = "USER_CREATED"
)

// AuditLog is one recorded action with its actor and origin.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	TenantID  *uint     `gorm:"index" json:"tenant_id,omitempty"`
	Action    string    `gorm:"size:50;not null;index" json:"action"`
	Details   string    `gorm:"type:text" json:"details,omitempty"`
	IPAddress string    `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
