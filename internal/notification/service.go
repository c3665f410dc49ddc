package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/grcworks/requirement-gathering-backend/utils"
)

// Service fans thread events out to the bell, email and push channels.
// Every method is fire-and-forget: failures are logged, never returned, so
// a broken mail server cannot fail a response post.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// QuestionUpdated announces a status change on a tenant question.
func (s *Service) QuestionUpdated(tenantID, actorID uint, questionTitle string, tenantQuestionID uint) {
	s.dispatch(Event{
		Kind:             KindQuestionUpdated,
		TenantID:         tenantID,
		ActorID:          actorID,
		TenantQuestionID: tenantQuestionID,
		Title:            "Question updated",
		Message:          fmt.Sprintf("The status of %q changed.", questionTitle),
	})
}

// ResponseAdded announces a new thread entry.
func (s *Service) ResponseAdded(tenantID, actorID uint, questionTitle string, tenantQuestionID uint) {
	s.dispatch(Event{
		Kind:             KindResponseAdded,
		TenantID:         tenantID,
		ActorID:          actorID,
		TenantQuestionID: tenantQuestionID,
		Title:            "New response",
		Message:          fmt.Sprintf("A new response was posted on %q.", questionTitle),
	})
}

// FileUploaded announces a new attachment.
func (s *Service) FileUploaded(tenantID, actorID uint, fileName string, tenantQuestionID uint) {
	s.dispatch(Event{
		Kind:             KindFileUploaded,
		TenantID:         tenantID,
		ActorID:          actorID,
		TenantQuestionID: tenantQuestionID,
		Title:            "File uploaded",
		Message:          fmt.Sprintf("File %q was attached to a response.", fileName),
	})
}

// dispatch publishes the event to Kafka when configured, otherwise it
// delivers in-process on a goroutine.
func (s *Service) dispatch(event Event) {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now()

	if utils.KafkaEnabled() {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("⚠️ Failed to encode notification event %s: %v", event.ID, err)
			return
		}
		if err := utils.PublishMessage([]byte(event.ID), payload); err != nil {
			log.Printf("⚠️ Failed to publish notification event %s, delivering in-process: %v", event.ID, err)
			go s.Deliver(event)
		}
		return
	}

	go s.Deliver(event)
}

// Deliver fans one event out to every channel. Called by the in-process
// path and by the Kafka consumer.
func (s *Service) Deliver(event Event) {
	recipients, err := s.repo.Recipients(event.TenantID, event.ActorID)
	if err != nil {
		log.Printf("⚠️ Notification %s: %v", event.ID, err)
		s.logDelivery(event, nil, "failed", err.Error())
		return
	}
	if len(recipients) == 0 {
		s.logDelivery(event, nil, "skipped", "no recipients")
		return
	}

	userIDs := make([]uint, 0, len(recipients))
	rows := make([]InAppNotification, 0, len(recipients))
	for _, u := range recipients {
		userIDs = append(userIDs, u.ID)
		rows = append(rows, InAppNotification{
			UserID:           u.ID,
			Kind:             event.Kind,
			Title:            event.Title,
			Message:          event.Message,
			TenantQuestionID: event.TenantQuestionID,
		})
	}

	status := "delivered"
	var lastErr string
	if err := s.repo.CreateInAppBatch(rows); err != nil {
		log.Printf("⚠️ Notification %s: %v", event.ID, err)
		status, lastErr = "partial", err.Error()
	}

	for _, u := range recipients {
		if u.Email == "" {
			continue
		}
		if err := utils.SendEmail(u.Email, event.Title, event.Message); err != nil {
			log.Printf("⚠️ Notification %s: email to %s failed: %v", event.ID, u.Email, err)
			status, lastErr = "partial", err.Error()
		}
	}

	s.push(event, userIDs)
	s.logDelivery(event, userIDs, status, lastErr)
}

// push sends the event to every registered device of the recipients.
func (s *Service) push(event Event, userIDs []uint) {
	client := utils.GetFCMClient()
	if client == nil {
		return
	}

	tokens, err := s.repo.TokensForUsers(userIDs)
	if err != nil {
		log.Printf("⚠️ Notification %s: %v", event.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, token := range tokens {
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: event.Title,
				Body:  event.Message,
			},
			Data: map[string]string{
				"kind":               event.Kind,
				"tenant_question_id": fmt.Sprintf("%d", event.TenantQuestionID),
			},
		}
		if _, err := client.Send(ctx, msg); err != nil {
			log.Printf("⚠️ Notification %s: push to device failed: %v", event.ID, err)
		}
	}
}

func (s *Service) logDelivery(event Event, userIDs []uint, status, errMsg string) {
	recipients, err := json.Marshal(userIDs)
	if err != nil {
		recipients = []byte("[]")
	}
	entry := &NotificationLog{
		EventID:    event.ID,
		Kind:       event.Kind,
		TenantID:   event.TenantID,
		Recipients: datatypes.JSON(recipients),
		Status:     status,
		Error:      errMsg,
	}
	if err := s.repo.CreateLog(entry); err != nil {
		log.Printf("⚠️ Failed to write notification log for %s: %v", event.ID, err)
	}
}

// List returns the user's bell entries with the unread count.
func (s *Service) List(userID uint, limit int) ([]InAppNotification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.repo.ListByUser(userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(userID)
	if err != nil {
		return nil, 0, err
	}
	return rows, unread, nil
}

func (s *Service) MarkRead(id, userID uint) error {
	return s.repo.MarkRead(id, userID)
}

func (s *Service) MarkAllRead(userID uint) error {
	return s.repo.MarkAllRead(userID)
}

func (s *Service) RegisterDevice(userID uint, token, platform string) error {
	return s.repo.RegisterDevice(userID, token, platform)
}

func (s *Service) UnregisterDevice(userID uint, token string) error {
	return s.repo.DeleteDevice(userID, token)
}
