package notification

import (
	"errors"

	"gorm.io/gorm"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Recipients returns the active users of a tenant except the actor.
func (r *Repository) Recipients(tenantID, actorID uint) ([]auth.User, error) {
	var users []auth.User
	err := r.db.Where("tenant_id = ? AND id <> ? AND status = ?", tenantID, actorID, "active").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Upstreamf("list recipients: %v", err)
	}
	return users, nil
}

func (r *Repository) CreateInAppBatch(rows []InAppNotification) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.Create(&rows).Error; err != nil {
		return apperrors.Upstreamf("create notifications: %v", err)
	}
	return nil
}

// ListByUser returns the user's bell entries, newest first.
func (r *Repository) ListByUser(userID uint, limit int) ([]InAppNotification, error) {
	var rows []InAppNotification
	err := r.db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Upstreamf("list notifications: %v", err)
	}
	return rows, nil
}

func (r *Repository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&InAppNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Upstreamf("count unread: %v", err)
	}
	return count, nil
}

// MarkRead flips one entry; scoped to the owner so users cannot touch each
// other's bells.
func (r *Repository) MarkRead(id, userID uint) error {
	res := r.db.Model(&InAppNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return apperrors.Upstreamf("mark read: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFoundf("notification %d", id)
	}
	return nil
}

func (r *Repository) MarkAllRead(userID uint) error {
	err := r.db.Model(&InAppNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
	if err != nil {
		return apperrors.Upstreamf("mark all read: %v", err)
	}
	return nil
}

func (r *Repository) CreateLog(entry *NotificationLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return apperrors.Upstreamf("create notification log: %v", err)
	}
	return nil
}

// RegisterDevice stores a push token, re-owning it if another user had it.
func (r *Repository) RegisterDevice(userID uint, token, platform string) error {
	var existing DeviceToken
	err := r.db.Where("token = ?", token).First(&existing).Error
	if err == nil {
		existing.UserID = userID
		existing.Platform = platform
		if err := r.db.Save(&existing).Error; err != nil {
			return apperrors.Upstreamf("update device token: %v", err)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Upstreamf("check device token: %v", err)
	}

	row := DeviceToken{UserID: userID, Token: token, Platform: platform}
	if err := r.db.Create(&row).Error; err != nil {
		return apperrors.Upstreamf("create device token: %v", err)
	}
	return nil
}

func (r *Repository) DeleteDevice(userID uint, token string) error {
	res := r.db.Where("user_id = ? AND token = ?", userID, token).Delete(&DeviceToken{})
	if res.Error != nil {
		return apperrors.Upstreamf("delete device token: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFoundf("device token")
	}
	return nil
}

// TokensForUsers returns every push token registered by the given users.
func (r *Repository) TokensForUsers(userIDs []uint) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []string
	err := r.db.Model(&DeviceToken{}).
		Where("user_id IN ?", userIDs).
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, apperrors.Upstreamf("list device tokens: %v", err)
	}
	return tokens, nil
}
