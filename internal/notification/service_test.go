package notification

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
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
		&InAppNotification{},
		&NotificationLog{},
		&DeviceToken{},
	))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, tenantID uint, status string) *auth.User {
	t.Helper()
	u := &auth.User{
		Username:     name,
		Email:        name + "@example.com",
		FullName:     name,
		Role:         auth.RoleCustomer,
		TenantID:     &tenantID,
		Status:       status,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestDeliverFansOutToTenantUsersExceptActor(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db))

	tn := &tenant.Tenant{Name: "Acme"}
	require.NoError(t, db.Create(tn).Error)

	actor := seedUser(t, db, "alice", tn.ID, "active")
	bob := seedUser(t, db, "bob", tn.ID, "active")
	carol := seedUser(t, db, "carol", tn.ID, "active")
	seedUser(t, db, "dormant", tn.ID, "inactive")

	svc.Deliver(Event{
		ID:               "evt-1",
		Kind:             KindResponseAdded,
		TenantID:         tn.ID,
		ActorID:          actor.ID,
		TenantQuestionID: 42,
		Title:            "New response",
		Message:          "A new response was posted.",
	})

	for _, u := range []*auth.User{bob, carol} {
		rows, unread, err := svc.List(u.ID, 20)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, KindResponseAdded, rows[0].Kind)
		assert.Equal(t, uint(42), rows[0].TenantQuestionID)
		assert.Equal(t, int64(1), unread)
	}

	// Actor and inactive users are skipped.
	rows, _, err := svc.List(actor.ID, 20)
	require.NoError(t, err)
	assert.Empty(t, rows)

	var logs []NotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "delivered", logs[0].Status)
	assert.Equal(t, "evt-1", logs[0].EventID)
}

func TestDeliverWithNoRecipients(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db))

	tn := &tenant.Tenant{Name: "Ghost"}
	require.NoError(t, db.Create(tn).Error)

	svc.Deliver(Event{ID: "evt-2", Kind: KindFileUploaded, TenantID: tn.ID, ActorID: 1})

	var logs []NotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "skipped", logs[0].Status)
}

func TestMarkReadIsOwnerScoped(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db))

	tn := &tenant.Tenant{Name: "Acme"}
	require.NoError(t, db.Create(tn).Error)
	bob := seedUser(t, db, "bob", tn.ID, "active")
	eve := seedUser(t, db, "eve", tn.ID, "active")

	require.NoError(t, db.Create(&InAppNotification{
		UserID: bob.ID, Kind: KindQuestionUpdated, Title: "Question updated",
	}).Error)

	rows, _, err := svc.List(bob.ID, 20)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	err = svc.MarkRead(rows[0].ID, eve.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.MarkRead(rows[0].ID, bob.ID))

	_, unread, err := svc.List(bob.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestMarkAllRead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db))

	tn := &tenant.Tenant{Name: "Acme"}
	require.NoError(t, db.Create(tn).Error)
	bob := seedUser(t, db, "bob", tn.ID, "active")

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&InAppNotification{
			UserID: bob.ID, Kind: KindResponseAdded, Title: "New response",
		}).Error)
	}

	require.NoError(t, svc.MarkAllRead(bob.ID))

	_, unread, err := svc.List(bob.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestRegisterDeviceReownsToken(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db))

	tn := &tenant.Tenant{Name: "Acme"}
	require.NoError(t, db.Create(tn).Error)
	bob := seedUser(t, db, "bob", tn.ID, "active")
	carol := seedUser(t, db, "carol", tn.ID, "active")

	require.NoError(t, svc.RegisterDevice(bob.ID, "token-1", "android"))
	// Same physical device logs in as another user.
	require.NoError(t, svc.RegisterDevice(carol.ID, "token-1", "android"))

	var row DeviceToken
	require.NoError(t, db.Where("token = ?", "token-1").First(&row).Error)
	assert.Equal(t, carol.ID, row.UserID)

	require.NoError(t, svc.UnregisterDevice(carol.ID, "token-1"))
	err := svc.UnregisterDevice(carol.ID, "token-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
