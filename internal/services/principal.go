package services

import (
	"errors"
	"time"

	"github.com/emutrack/emutrack-backend/internal/apperr"
	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// requireRole loads the acting user and checks their tier. A principal that
// authenticated but no longer exists in the store is a server bug (stale
// session surviving account deletion), so it maps to INTERNAL, not to a
// user-facing auth error.
func requireRole(db *gorm.DB, userID uuid.UUID, minRole string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("acting user not found in store", err)
		}
		return nil, apperr.Internal("failed to load acting user", err)
	}
	if !models.RoleAtLeast(user.Role, minRole) {
		return nil, apperr.Forbidden("insufficient role for this operation")
	}
	return &user, nil
}

// activeBan returns the author's ban in force at now, or nil.
func activeBan(db *gorm.DB, userID uuid.UUID, now time.Time) (*models.UserBan, error) {
	var ban models.UserBan
	err := db.Where("user_id = ? AND is_active = ?", userID, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		First(&ban).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("failed to check author bans", err)
	}
	return &ban, nil
}
