package response

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/assignment"
	"github.com/grcworks/requirement-gathering-backend/internal/auditlog"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/internal/domain"
	"github.com/grcworks/requirement-gathering-backend/internal/question"
	"github.com/grcworks/requirement-gathering-backend/internal/storage"
	"github.com/grcworks/requirement-gathering-backend/internal/tenant"
)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	threads *assignment.Service
	store   storage.Storage
	tenant  *tenant.Tenant
	thread  *assignment.TenantQuestion
	admin   *auth.User
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&tenant.Tenant{},
		&auth.User{},
		&domain.Domain{},
		&question.Question{},
		&assignment.TenantQuestion{},
		&Response{},
		&Attachment{},
		&auditlog.AuditLog{},
	))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	audit := auditlog.NewService(auditlog.NewRepository(db))
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	threads := assignment.NewService(
		assignment.NewRepository(db),
		tenant.NewRepository(db),
		question.NewRepository(db),
		store,
		audit,
		nil,
	)

	svc := NewService(NewRepository(db), threads, store, audit, nil)

	tn := &tenant.Tenant{Name: "Acme"}
	require.NoError(t, db.Create(tn).Error)

	d := &domain.Domain{Name: "Access Management"}
	require.NoError(t, db.Create(d).Error)
	q := &question.Question{Title: "How is MFA enforced?", DomainID: d.ID}
	require.NoError(t, db.Create(q).Error)

	admin := &auth.User{Username: "root", Email: "root@example.com", FullName: "Root Admin", Role: auth.RoleAdmin, PasswordHash: "x"}
	require.NoError(t, db.Create(admin).Error)

	thread, err := threads.AssignQuestion(tn.ID, q.ID, admin, "")
	require.NoError(t, err)

	return &fixture{db: db, svc: svc, threads: threads, store: store, tenant: tn, thread: thread, admin: admin}
}

func (f *fixture) customer(t *testing.T, name string, tenantID uint) *auth.User {
	t.Helper()
	u := &auth.User{
		Username:     name,
		Email:        name + "@example.com",
		FullName:     name,
		Role:         auth.RoleCustomer,
		TenantID:     &tenantID,
		PasswordHash: "x",
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func TestPostResponse(t *testing.T) {
	f := setupFixture(t)
	user := f.customer(t, "alice", f.tenant.ID)

	view, err := f.svc.PostResponse(f.thread.ID, "We enforce MFA via SSO.", user, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "We enforce MFA via SSO.", view.Content)
	assert.Equal(t, user.ID, view.User.ID)
	assert.Equal(t, "alice", view.User.FullName)
	assert.Equal(t, auth.RoleCustomer, view.User.Role)
	assert.Empty(t, view.Attachments)
}

func TestPostResponseRejectsBlankContent(t *testing.T) {
	f := setupFixture(t)
	user := f.customer(t, "alice", f.tenant.ID)

	_, err := f.svc.PostResponse(f.thread.ID, "   \n\t ", user, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPostResponseForbiddenForOtherTenant(t *testing.T) {
	f := setupFixture(t)

	other := &tenant.Tenant{Name: "Globex"}
	require.NoError(t, f.db.Create(other).Error)
	outsider := f.customer(t, "mallory", other.ID)

	_, err := f.svc.PostResponse(f.thread.ID, "hello", outsider, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestPostResponseTouchesThread(t *testing.T) {
	f := setupFixture(t)
	user := f.customer(t, "alice", f.tenant.ID)

	before := f.thread.LastUpdated
	time.Sleep(10 * time.Millisecond)

	_, err := f.svc.PostResponse(f.thread.ID, "update", user, "")
	require.NoError(t, err)

	reloaded, err := f.threads.GetThread(f.thread.ID, f.admin)
	require.NoError(t, err)
	assert.True(t, reloaded.LastUpdated.After(before))
}

func TestListResponsesChronological(t *testing.T) {
	f := setupFixture(t)
	user := f.customer(t, "alice", f.tenant.ID)

	for i := 1; i <= 3; i++ {
		_, err := f.svc.PostResponse(f.thread.ID, fmt.Sprintf("entry %d", i), user, "")
		require.NoError(t, err)
	}

	views, err := f.svc.ListResponses(f.thread.ID, f.admin)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "entry 1", views[0].Content)
	assert.Equal(t, "entry 2", views[1].Content)
	assert.Equal(t, "entry 3", views[2].Content)
}

func TestUpdateResponseAuthorOrAdmin(t *testing.T) {
	f := setupFixture(t)
	alice := f.customer(t, "alice", f.tenant.ID)
	bob := f.customer(t, "bob", f.tenant.ID)

	view, err := f.svc.PostResponse(f.thread.ID, "draft", alice, "")
	require.NoError(t, err)

	// Another customer of the same tenant may read but not edit.
	_, err = f.svc.UpdateResponse(view.ID, "hijacked", bob, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := f.svc.UpdateResponse(view.ID, "final", alice, "")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)

	updated, err = f.svc.UpdateResponse(view.ID, "admin note", f.admin, "")
	require.NoError(t, err)
	assert.Equal(t, "admin note", updated.Content)
}

func TestDeleteResponse(t *testing.T) {
	f := setupFixture(t)
	alice := f.customer(t, "alice", f.tenant.ID)
	bob := f.customer(t, "bob", f.tenant.ID)

	view, err := f.svc.PostResponse(f.thread.ID, "to be removed", alice, "")
	require.NoError(t, err)

	err = f.svc.DeleteResponse(view.ID, bob, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.svc.DeleteResponse(view.ID, alice, ""))

	views, err := f.svc.ListResponses(f.thread.ID, f.admin)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestAttachFile(t *testing.T) {
	f := setupFixture(t)
	alice := f.customer(t, "alice", f.tenant.ID)

	view, err := f.svc.PostResponse(f.thread.ID, "see attached", alice, "")
	require.NoError(t, err)

	attachment, err := f.svc.AttachFile(view.ID, "policy.pdf", "application/pdf", []byte("%PDF-1.4"), alice, "")
	require.NoError(t, err)
	assert.Equal(t, "policy.pdf", attachment.FileName)
	assert.Equal(t, int64(8), attachment.SizeBytes)
	assert.Equal(t, alice.ID, attachment.UploadedBy)

	views, err := f.svc.ListResponses(f.thread.ID, f.admin)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Attachments, 1)
	assert.Equal(t, "policy.pdf", views[0].Attachments[0].FileName)
}

func TestAttachFileRejectsDisallowedType(t *testing.T) {
	f := setupFixture(t)
	alice := f.customer(t, "alice", f.tenant.ID)

	view, err := f.svc.PostResponse(f.thread.ID, "see attached", alice, "")
	require.NoError(t, err)

	_, err = f.svc.AttachFile(view.ID, "run.sh", "application/x-sh", []byte("#!/bin/sh"), alice, "")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMediaType)
}

func TestAttachFileRejectsOversize(t *testing.T) {
	f := setupFixture(t)
	alice := f.customer(t, "alice", f.tenant.ID)

	view, err := f.svc.PostResponse(f.thread.ID, "see attached", alice, "")
	require.NoError(t, err)

	big := make([]byte, MaxAttachmentSize+1)
	_, err = f.svc.AttachFile(view.ID, "huge.pdf", "application/pdf", big, alice, "")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMediaType)
}

func TestAttachFileOnlyAuthorOrAdmin(t *testing.T) {
	f := setupFixture(t)
	alice := f.customer(t, "alice", f.tenant.ID)
	bob := f.customer(t, "bob", f.tenant.ID)

	view, err := f.svc.PostResponse(f.thread.ID, "see attached", alice, "")
	require.NoError(t, err)

	_, err = f.svc.AttachFile(view.ID, "note.png", "image/png", []byte{1}, bob, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.AttachFile(view.ID, "note.png", "image/png", []byte{1}, f.admin, "")
	require.NoError(t, err)
}

func TestUnassignCleansUpStoredFiles(t *testing.T) {
	f := setupFixture(t)
	alice := f.customer(t, "alice", f.tenant.ID)

	view, err := f.svc.PostResponse(f.thread.ID, "see attached", alice, "")
	require.NoError(t, err)
	attachment, err := f.svc.AttachFile(view.ID, "policy.pdf", "application/pdf", []byte("%PDF-1.4"), alice, "")
	require.NoError(t, err)

	_, err = f.store.Read(context.Background(), attachment.StorageKey)
	require.NoError(t, err)

	require.NoError(t, f.threads.Unassign(f.thread.ID, f.admin, ""))

	// The thread cascade removes the blob along with the rows.
	_, err = f.store.Read(context.Background(), attachment.StorageKey)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteTenantCleansUpStoredFiles(t *testing.T) {
	f := setupFixture(t)
	alice := f.customer(t, "alice", f.tenant.ID)

	view, err := f.svc.PostResponse(f.thread.ID, "see attached", alice, "")
	require.NoError(t, err)
	attachment, err := f.svc.AttachFile(view.ID, "policy.pdf", "application/pdf", []byte("%PDF-1.4"), alice, "")
	require.NoError(t, err)

	tenantSvc := tenant.NewService(tenant.NewRepository(f.db), f.store)
	require.NoError(t, tenantSvc.DeleteTenant(f.tenant.ID))

	_, err = f.store.Read(context.Background(), attachment.StorageKey)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDownloadAttachment(t *testing.T) {
	f := setupFixture(t)
	alice := f.customer(t, "alice", f.tenant.ID)

	view, err := f.svc.PostResponse(f.thread.ID, "see attached", alice, "")
	require.NoError(t, err)
	attachment, err := f.svc.AttachFile(view.ID, "policy.pdf", "application/pdf", []byte("%PDF-1.4"), alice, "")
	require.NoError(t, err)

	meta, data, err := f.svc.DownloadAttachment(attachment.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "policy.pdf", meta.FileName)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	// Access is re-checked on the way down the ownership chain.
	other := &tenant.Tenant{Name: "Globex"}
	require.NoError(t, f.db.Create(other).Error)
	outsider := f.customer(t, "mallory", other.ID)

	_, _, err = f.svc.DownloadAttachment(attachment.ID, outsider)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, _, err = f.svc.DownloadAttachment(999, f.admin)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
