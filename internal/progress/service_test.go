package progress

import (
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
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/internal/domain"
	"github.com/grcworks/requirement-gathering-backend/internal/question"
	"github.com/grcworks/requirement-gathering-backend/internal/response"
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
		&assignment.TenantQuestion{},
		&response.Response{},
		&response.Attachment{},
	))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// seedAssignment creates a domain, a question in it, and an assignment with
// the given status.
func seedAssignment(t *testing.T, db *gorm.DB, tenantID uint, domainName, title, status string) *assignment.TenantQuestion {
	t.Helper()

	var d domain.Domain
	if err := db.Where("name = ?", domainName).First(&d).Error; err != nil {
		d = domain.Domain{Name: domainName}
		require.NoError(t, db.Create(&d).Error)
	}

	q := &question.Question{Title: title, DomainID: d.ID}
	require.NoError(t, db.Create(q).Error)

	tq := &assignment.TenantQuestion{
		TenantID:    tenantID,
		QuestionID:  q.ID,
		Status:      status,
		LastUpdated: time.Now(),
	}
	require.NoError(t, db.Create(tq).Error)
	return tq
}

func TestGetTenantProgress(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db), tenant.NewRepository(db))

	tn := &tenant.Tenant{Name: "Acme"}
	require.NoError(t, db.Create(tn).Error)

	seedAssignment(t, db, tn.ID, "Access Management", "MFA?", assignment.StatusAnswered)
	seedAssignment(t, db, tn.ID, "Access Management", "SSO?", assignment.StatusAnswered)
	seedAssignment(t, db, tn.ID, "Access Management", "Reviews?", assignment.StatusUnanswered)
	seedAssignment(t, db, tn.ID, "Logging", "Retention?", assignment.StatusInProgress)

	// A domain with questions in the pool but none assigned to this tenant
	// must not appear in the split.
	emptyDomain := &domain.Domain{Name: "Physical Security"}
	require.NoError(t, db.Create(emptyDomain).Error)

	prog, err := svc.GetTenantProgress(tn.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, prog.TotalQuestions)
	assert.Equal(t, 2, prog.Answered)
	assert.Equal(t, 50, prog.OverallCompletion)

	require.Len(t, prog.Domains, 2)
	assert.Equal(t, "Access Management", prog.Domains[0].DomainName)
	assert.Equal(t, 3, prog.Domains[0].TotalQuestions)
	assert.Equal(t, 2, prog.Domains[0].Answered)
	assert.Equal(t, 67, prog.Domains[0].Percent, "2/3 rounds to 67")
	assert.Equal(t, "Logging", prog.Domains[1].DomainName)
	assert.Equal(t, 0, prog.Domains[1].Percent)
}

func TestGetTenantProgressEmptyTenant(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db), tenant.NewRepository(db))

	tn := &tenant.Tenant{Name: "Fresh"}
	require.NoError(t, db.Create(tn).Error)

	prog, err := svc.GetTenantProgress(tn.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, prog.OverallCompletion)
	assert.Equal(t, 0, prog.TotalQuestions)
	assert.Empty(t, prog.Domains)
}

func TestGetTenantProgressUnknownTenant(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db), tenant.NewRepository(db))

	_, err := svc.GetTenantProgress(999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRecentActivity(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db), tenant.NewRepository(db))

	tn := &tenant.Tenant{Name: "Acme"}
	require.NoError(t, db.Create(tn).Error)

	tenantID := tn.ID
	user := &auth.User{
		Username: "alice", Email: "alice@example.com", FullName: "Alice Smith",
		Role: auth.RoleCustomer, TenantID: &tenantID, PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)

	tq := seedAssignment(t, db, tn.ID, "Access Management", "How is MFA enforced?", assignment.StatusInProgress)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		r := &response.Response{
			TenantQuestionID: tq.ID,
			UserID:           user.ID,
			Content:          fmt.Sprintf("entry %d", i+1),
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(r).Error)
	}

	items, err := svc.GetRecentActivity(tn.ID)
	require.NoError(t, err)
	require.Len(t, items, 5, "feed is capped at five entries")

	// Newest first.
	assert.Equal(t, "How is MFA enforced?", items[0].QuestionTitle)
	assert.Equal(t, "Alice Smith", items[0].User.FullName)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].CreatedAt.After(items[i-1].CreatedAt))
	}
}

func TestRecentActivityTiesBreakOnID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db), tenant.NewRepository(db))

	tn := &tenant.Tenant{Name: "Acme"}
	require.NoError(t, db.Create(tn).Error)

	tenantID := tn.ID
	user := &auth.User{
		Username: "alice", Email: "alice@example.com", FullName: "Alice Smith",
		Role: auth.RoleCustomer, TenantID: &tenantID, PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)

	tq := seedAssignment(t, db, tn.ID, "Logging", "Retention?", assignment.StatusUnanswered)

	ts := time.Now().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		r := &response.Response{
			TenantQuestionID: tq.ID,
			UserID:           user.ID,
			Content:          fmt.Sprintf("same instant %d", i+1),
			CreatedAt:        ts,
		}
		require.NoError(t, db.Create(r).Error)
	}

	items, err := svc.GetRecentActivity(tn.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Greater(t, items[0].ResponseID, items[1].ResponseID)
	assert.Greater(t, items[1].ResponseID, items[2].ResponseID)
}
