package notification

import (
	"time"

	"gorm.io/datatypes"
)

// Notification kinds. Every thread event maps to exactly one kind.
const (
	KindQuestionUpdated = "QuestionUpdated"
	KindResponseAdded   = "ResponseAdded"
	KindFileUploaded    = "FileUploaded"
)

// Event is the wire shape published to the Kafka topic (and handed to the
// in-process deliverer when Kafka is not configured).
type Event struct {
	ID               string    `json:"id"`
	Kind             string    `json:"kind"`
	TenantID         uint      `json:"tenant_id"`
	ActorID          uint      `json:"actor_id"`
	TenantQuestionID uint      `json:"tenant_question_id"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	CreatedAt        time.Time `json:"created_at"`
}

// InAppNotification is one bell entry for one user.
type InAppNotification struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	Kind             string    `gorm:"size:30;not null" json:"kind"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Message          string    `gorm:"type:text" json:"message"`
	TenantQuestionID uint      `gorm:"index" json:"tenant_question_id"`
	Read             bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt        time.Time `json:"created_at"`
}

func (InAppNotification) TableName() string {
	return "notifications"
}

// NotificationLog records one delivery attempt per event for operations.
type NotificationLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EventID    string         `gorm:"size:40;index" json:"event_id"`
	Kind       string         `gorm:"size:30;not null" json:"kind"`
	TenantID   uint           `gorm:"index" json:"tenant_id"`
	Recipients datatypes.JSON `json:"recipients"` // user ids notified
	Status     string         `gorm:"size:20;not null" json:"status"`
	Error      string         `gorm:"type:text" json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}

// DeviceToken is one registered FCM push target.
type DeviceToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"size:255;uniqueIndex;not null" json:"token"`
	Platform  string    `gorm:"size:20" json:"platform,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (DeviceToken) TableName() string {
	return "device_tokens"
}

// DeviceInput registers a push token.
type DeviceInput struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform"`
}
