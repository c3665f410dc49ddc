package assignment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/auditlog"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/internal/domain"
	"github.com/grcworks/requirement-gathering-backend/internal/question"
	"github.com/grcworks/requirement-gathering-backend/internal/storage"
	"github.com/grcworks/requirement-gathering-backend/internal/tenant"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
		&TenantQuestion{},
		&auditlog.AuditLog{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	return NewService(
		NewRepository(db),
		tenant.NewRepository(db),
		question.NewRepository(db),
		store,
		auditlog.NewService(auditlog.NewRepository(db)),
		nil,
	)
}

func seedTenant(t *testing.T, db *gorm.DB, name string) *tenant.Tenant {
	t.Helper()
	tn := &tenant.Tenant{Name: name}
	require.NoError(t, db.Create(tn).Error)
	return tn
}

func seedQuestion(t *testing.T, db *gorm.DB, title string, required bool) *question.Question {
	t.Helper()

	var d domain.Domain
	err := db.Where("name = ?", "Access Management").First(&d).Error
	if err != nil {
		d = domain.Domain{Name: "Access Management"}
		require.NoError(t, db.Create(&d).Error)
	}

	q := &question.Question{Title: title, DomainID: d.ID, Required: required}
	require.NoError(t, q.SetTags([]string{"iam"}))
	require.NoError(t, db.Create(q).Error)
	return q
}

func adminUser() *auth.User {
	return &auth.User{ID: 1, Role: auth.RoleAdmin}
}

func customerUser(id, tenantID uint) *auth.User {
	return &auth.User{ID: id, Role: auth.RoleCustomer, TenantID: &tenantID}
}

func TestAssignQuestion(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	tn := seedTenant(t, db, "Acme")
	q := seedQuestion(t, db, "How is MFA enforced?", false)

	tq, err := svc.AssignQuestion(tn.ID, q.ID, adminUser(), "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, StatusUnanswered, tq.Status)
	assert.Equal(t, tn.ID, tq.TenantID)
	require.NotNil(t, tq.Question)
	assert.Equal(t, "How is MFA enforced?", tq.Question.Title)
	require.NotNil(t, tq.Question.Domain)
	assert.Equal(t, "Access Management", tq.Question.Domain.Name)
}

func TestAssignQuestionDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	tn := seedTenant(t, db, "Acme")
	q := seedQuestion(t, db, "How is MFA enforced?", false)

	_, err := svc.AssignQuestion(tn.ID, q.ID, adminUser(), "")
	require.NoError(t, err)

	_, err = svc.AssignQuestion(tn.ID, q.ID, adminUser(), "")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateAssignment)
}

func TestAssignQuestionRaceMapsToDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	tn := seedTenant(t, db, "Acme")
	q := seedQuestion(t, db, "How is MFA enforced?", false)

	require.NoError(t, repo.Create(&TenantQuestion{TenantID: tn.ID, QuestionID: q.ID, Status: StatusUnanswered}))

	// Simulates losing the race after the pre-check: the unique index fires.
	err := repo.Create(&TenantQuestion{TenantID: tn.ID, QuestionID: q.ID, Status: StatusUnanswered})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateAssignment)
}

func TestAssignQuestionUnknownTenantAndQuestion(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	q := seedQuestion(t, db, "How is MFA enforced?", false)

	_, err := svc.AssignQuestion(999, q.ID, adminUser(), "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	tn := seedTenant(t, db, "Acme")
	_, err = svc.AssignQuestion(tn.ID, 999, adminUser(), "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAssignDefaultsSkipsExisting(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	tn := seedTenant(t, db, "Acme")
	q1 := seedQuestion(t, db, "Password policy?", true)
	seedQuestion(t, db, "Access reviews?", true)
	seedQuestion(t, db, "Optional extra?", false)

	_, err := svc.AssignQuestion(tn.ID, q1.ID, adminUser(), "")
	require.NoError(t, err)

	created, err := svc.AssignDefaults(tn.ID, adminUser(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, created, "only the missing required question is assigned")

	views, err := svc.ListTenantQuestions(tn.ID, false)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestListTenantQuestionsInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	tn := seedTenant(t, db, "Acme")
	q1 := seedQuestion(t, db, "First", false)
	q2 := seedQuestion(t, db, "Second", false)
	q3 := seedQuestion(t, db, "Third", false)

	for _, q := range []uint{q1.ID, q2.ID, q3.ID} {
		_, err := svc.AssignQuestion(tn.ID, q, adminUser(), "")
		require.NoError(t, err)
	}

	views, err := svc.ListTenantQuestions(tn.ID, false)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "First", views[0].Title)
	assert.Equal(t, "Second", views[1].Title)
	assert.Equal(t, "Third", views[2].Title)
}

func TestListTenantQuestionsStatusSort(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	tn := seedTenant(t, db, "Acme")
	admin := adminUser()

	var ids []uint
	for i := 0; i < 4; i++ {
		q := seedQuestion(t, db, fmt.Sprintf("Question %d", i+1), false)
		tq, err := svc.AssignQuestion(tn.ID, q.ID, admin, "")
		require.NoError(t, err)
		ids = append(ids, tq.ID)
	}

	_, err := svc.SetStatus(ids[0], StatusAnswered, admin, "")
	require.NoError(t, err)
	_, err = svc.SetStatus(ids[2], StatusInProgress, admin, "")
	require.NoError(t, err)

	views, err := svc.ListTenantQuestions(tn.ID, true)
	require.NoError(t, err)
	require.Len(t, views, 4)

	// Unanswered first (insertion order within the bucket), then
	// In Progress, then Answered.
	assert.Equal(t, "Question 2", views[0].Title)
	assert.Equal(t, "Question 4", views[1].Title)
	assert.Equal(t, "Question 3", views[2].Title)
	assert.Equal(t, "Question 1", views[3].Title)
}

func TestSetStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	tn := seedTenant(t, db, "Acme")
	q := seedQuestion(t, db, "How is MFA enforced?", false)
	tq, err := svc.AssignQuestion(tn.ID, q.ID, adminUser(), "")
	require.NoError(t, err)

	updated, err := svc.SetStatus(tq.ID, StatusAnswered, adminUser(), "")
	require.NoError(t, err)
	assert.Equal(t, StatusAnswered, updated.Status)
	assert.False(t, updated.LastUpdated.Before(tq.LastUpdated))
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.SetStatus(1, "Done", adminUser(), "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSetStatusForbiddenForOtherTenant(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	tn := seedTenant(t, db, "Acme")
	other := seedTenant(t, db, "Globex")
	q := seedQuestion(t, db, "How is MFA enforced?", false)
	tq, err := svc.AssignQuestion(tn.ID, q.ID, adminUser(), "")
	require.NoError(t, err)

	_, err = svc.SetStatus(tq.ID, StatusAnswered, customerUser(7, other.ID), "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestGetThreadAccess(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	tn := seedTenant(t, db, "Acme")
	other := seedTenant(t, db, "Globex")
	q := seedQuestion(t, db, "How is MFA enforced?", false)
	tq, err := svc.AssignQuestion(tn.ID, q.ID, adminUser(), "")
	require.NoError(t, err)

	// Own tenant's customer can read the thread.
	got, err := svc.GetThread(tq.ID, customerUser(7, tn.ID))
	require.NoError(t, err)
	assert.Equal(t, tq.ID, got.ID)

	// Another tenant's customer cannot.
	_, err = svc.GetThread(tq.ID, customerUser(8, other.ID))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Consultants see every tenant's threads.
	_, err = svc.GetThread(tq.ID, &auth.User{ID: 9, Role: auth.RoleConsultant})
	require.NoError(t, err)

	_, err = svc.GetThread(999, adminUser())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
