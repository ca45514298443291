package services

import (
	"context"
	"errors"
	"time"

	"github.com/emutrack/emutrack-backend/internal/apperr"
	"github.com/emutrack/emutrack-backend/internal/dto"
	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/emutrack/emutrack-backend/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BanService manages author bans. An active ban does not block submission;
// it forces rejection when a moderator tries to approve the author's work.
type BanService struct {
	db   *gorm.DB
	sink notify.Sink
}

func NewBanService(db *gorm.DB, sink notify.Sink) *BanService {
	return &BanService{db: db, sink: sink}
}

func (s *BanService) Ban(ctx context.Context, moderatorID, userID uuid.UUID, req *dto.BanUserRequest) (*models.UserBan, error) {
	moderator, err := requireRole(s.db, moderatorID, models.RoleModerator)
	if err != nil {
		return nil, err
	}
	if req.Reason == "" {
		return nil, apperr.Validation("ban reason is required")
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return nil, apperr.Validation("ban expiry must be in the future")
	}

	var target models.User
	if err := s.db.First(&target, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if models.RoleRank(target.Role) >= models.RoleRank(moderator.Role) {
		return nil, apperr.Forbidden("cannot ban a user at or above your own tier")
	}

	existing, err := activeBan(s.db, userID, time.Now())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("user already has an active ban")
	}

	ban := models.UserBan{
		ID:         uuid.New(),
		UserID:     userID,
		BannedByID: moderator.ID,
		Reason:     req.Reason,
		ExpiresAt:  req.ExpiresAt,
		IsActive:   true,
	}
	if err := s.db.Create(&ban).Error; err != nil {
		return nil, apperr.Internal("failed to create ban", err)
	}

	s.sink.Emit(ctx, notify.Event{
		Type:        notify.EventUserBanned,
		EntityType:  "user",
		EntityID:    userID.String(),
		TriggeredBy: moderator.ID.String(),
		Payload:     map[string]interface{}{"reason": req.Reason},
	})
	return &ban, nil
}

func (s *BanService) Lift(ctx context.Context, moderatorID, banID uuid.UUID, reason string) (*models.UserBan, error) {
	moderator, err := requireRole(s.db, moderatorID, models.RoleModerator)
	if err != nil {
		return nil, err
	}

	var ban models.UserBan
	if err := s.db.First(&ban, "id = ?", banID).Error; err != nil {
		return nil, apperr.NotFound("ban not found")
	}
	if !ban.IsActive {
		return nil, apperr.BadRequest("ban is not active")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_active":     false,
		"lifted_by_id":  moderator.ID,
		"lifted_at":     now,
		"lifted_reason": reason,
	}
	if err := s.db.Model(&ban).Updates(updates).Error; err != nil {
		return nil, apperr.Internal("failed to lift ban", err)
	}

	if err := s.db.First(&ban, "id = ?", banID).Error; err != nil {
		return nil, apperr.Internal("failed to reload ban", err)
	}
	return &ban, nil
}

func (s *BanService) List(moderatorID uuid.UUID, activeOnly bool, limit, offset int) ([]models.UserBan, int64, error) {
	if _, err := requireRole(s.db, moderatorID, models.RoleModerator); err != nil {
		return nil, 0, err
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.UserBan{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	query.Count(&total)

	var bans []models.UserBan
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&bans).Error; err != nil {
		return nil, 0, apperr.Internal("failed to list bans", err)
	}
	return bans, total, nil
}
