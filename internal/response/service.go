package response

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/assignment"
	"github.com/grcworks/requirement-gathering-backend/internal/auditlog"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/internal/storage"
)

// Notifier delivers thread notifications to the owning tenant's users.
type Notifier interface {
	ResponseAdded(tenantID, actorID uint, questionTitle string, tenantQuestionID uint)
	FileUploaded(tenantID, actorID uint, fileName string, tenantQuestionID uint)
}

type Service struct {
	repo     *Repository
	threads  *assignment.Service
	store    storage.Storage
	audit    *auditlog.Service
	notifier Notifier
}

func NewService(repo *Repository, threads *assignment.Service, store storage.Storage, audit *auditlog.Service, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		threads:  threads,
		store:    store,
		audit:    audit,
		notifier: notifier,
	}
}

// PostResponse appends a thread entry. Content must be non-empty after
// trimming; the stored content keeps the author's original whitespace.
func (s *Service) PostResponse(tenantQuestionID uint, content string, actor *auth.User, ip string) (*ResponseView, error) {
	tq, err := s.threads.GetThread(tenantQuestionID, actor)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validationf("response content must not be empty")
	}

	resp := &Response{
		TenantQuestionID: tq.ID,
		UserID:           actor.ID,
		Content:          content,
	}
	if err := s.repo.Create(resp); err != nil {
		return nil, err
	}
	if err := s.threads.TouchThread(tq.ID); err != nil {
		log.Printf("⚠️ Failed to touch thread %d: %v", tq.ID, err)
	}

	s.audit.Record(actor.ID, &tq.TenantID, auditlog.ActionResponsePosted,
		fmt.Sprintf("response %d posted on tenant question %d", resp.ID, tq.ID), ip)

	if s.notifier != nil {
		title := ""
		if tq.Question != nil {
			title = tq.Question.Title
		}
		s.notifier.ResponseAdded(tq.TenantID, actor.ID, title, tq.ID)
	}

	resp.User = actor
	view := toView(*resp)
	return &view, nil
}

// ListResponses returns the thread oldest-first with authors projected and
// attachments eagerly loaded.
func (s *Service) ListResponses(tenantQuestionID uint, actor *auth.User) ([]ResponseView, error) {
	tq, err := s.threads.GetThread(tenantQuestionID, actor)
	if err != nil {
		return nil, err
	}

	responses, err := s.repo.ListByThread(tq.ID)
	if err != nil {
		return nil, err
	}

	views := make([]ResponseView, 0, len(responses))
	for _, r := range responses {
		views = append(views, toView(r))
	}
	return views, nil
}

// UpdateResponse edits a thread entry; only the author or an admin may.
func (s *Service) UpdateResponse(id uint, content string, actor *auth.User, ip string) (*ResponseView, error) {
	resp, tq, err := s.resolve(id, actor)
	if err != nil {
		return nil, err
	}
	if !s.canModify(resp, actor) {
		return nil, apperrors.Forbiddenf("user %d may not edit response %d", actor.ID, id)
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validationf("response content must not be empty")
	}

	resp.Content = content
	if err := s.repo.Update(resp); err != nil {
		return nil, err
	}

	s.audit.Record(actor.ID, &tq.TenantID, auditlog.ActionResponseEdited,
		fmt.Sprintf("response %d edited", resp.ID), ip)

	view := toView(*resp)
	return &view, nil
}

// DeleteResponse removes a thread entry with its attachments; only the
// author or an admin may.
func (s *Service) DeleteResponse(id uint, actor *auth.User, ip string) error {
	resp, tq, err := s.resolve(id, actor)
	if err != nil {
		return err
	}
	if !s.canModify(resp, actor) {
		return apperrors.Forbiddenf("user %d may not delete response %d", actor.ID, id)
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}
	// Blob cleanup is best effort; orphaned objects are harmless.
	for _, a := range resp.Attachments {
		if err := s.store.Delete(context.Background(), a.StorageKey); err != nil {
			log.Printf("⚠️ Failed to delete stored file %s: %v", a.StorageKey, err)
		}
	}

	s.audit.Record(actor.ID, &tq.TenantID, auditlog.ActionResponseDeleted,
		fmt.Sprintf("response %d deleted", id), ip)
	return nil
}

// AttachFile stores a file against a response. Only the response author or
// an admin may attach; the file must pass the size cap and MIME allow-list.
func (s *Service) AttachFile(responseID uint, fileName, contentType string, data []byte, actor *auth.User, ip string) (*Attachment, error) {
	resp, tq, err := s.resolve(responseID, actor)
	if err != nil {
		return nil, err
	}
	if !s.canModify(resp, actor) {
		return nil, apperrors.Forbiddenf("user %d may not attach to response %d", actor.ID, responseID)
	}
	if len(data) == 0 {
		return nil, apperrors.Validationf("file is empty")
	}
	if len(data) > MaxAttachmentSize {
		return nil, fmt.Errorf("%w: file exceeds the %d MiB limit", apperrors.ErrUnsupportedMediaType, MaxAttachmentSize>>20)
	}
	if !AllowedContentType(contentType) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedMediaType, contentType)
	}

	key, err := s.store.Save(context.Background(), data, fileName, contentType)
	if err != nil {
		return nil, err
	}

	attachment := &Attachment{
		ResponseID:  resp.ID,
		FileName:    fileName,
		StorageKey:  key,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		UploadedBy:  actor.ID,
	}
	if err := s.repo.CreateAttachment(attachment); err != nil {
		// Roll the blob back so storage does not accumulate orphans.
		if derr := s.store.Delete(context.Background(), key); derr != nil {
			log.Printf("⚠️ Failed to clean up stored file %s: %v", key, derr)
		}
		return nil, err
	}
	if err := s.threads.TouchThread(tq.ID); err != nil {
		log.Printf("⚠️ Failed to touch thread %d: %v", tq.ID, err)
	}

	s.audit.Record(actor.ID, &tq.TenantID, auditlog.ActionFileUploaded,
		fmt.Sprintf("file %q attached to response %d", fileName, resp.ID), ip)

	if s.notifier != nil {
		s.notifier.FileUploaded(tq.TenantID, actor.ID, fileName, tq.ID)
	}
	return attachment, nil
}

// DownloadAttachment re-resolves the full ownership chain, re-checks thread
// access, and returns the metadata with the stored bytes.
func (s *Service) DownloadAttachment(id uint, actor *auth.User) (*Attachment, []byte, error) {
	attachment, err := s.repo.GetAttachment(id)
	if err != nil {
		return nil, nil, err
	}
	resp, err := s.repo.GetByID(attachment.ResponseID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.threads.GetThread(resp.TenantQuestionID, actor); err != nil {
		return nil, nil, err
	}

	data, err := s.store.Read(context.Background(), attachment.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return attachment, data, nil
}

// resolve loads the response and its thread, applying the thread access
// check on the way.
func (s *Service) resolve(responseID uint, actor *auth.User) (*Response, *assignment.TenantQuestion, error) {
	resp, err := s.repo.GetByID(responseID)
	if err != nil {
		return nil, nil, err
	}
	tq, err := s.threads.GetThread(resp.TenantQuestionID, actor)
	if err != nil {
		return nil, nil, err
	}
	return resp, tq, nil
}

func (s *Service) canModify(resp *Response, actor *auth.User) bool {
	return actor.Role == auth.RoleAdmin || resp.UserID == actor.ID
}
