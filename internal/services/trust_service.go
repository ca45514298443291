package services

import (
	"fmt"

	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// trustWeights fixes the score delta per action tag. Reversals negate the
// original entry's weight, so a reversed action nets to zero.
var trustWeights = map[string]int{
	models.TrustListingCreated:  2,
	models.TrustListingApproved: 10,
	models.TrustListingRejected: -5,
	models.TrustUpvote:          1,
	models.TrustDownvote:        -1,
}

// TrustLedger records reputation actions. Callers pass the *gorm.DB they
// want the write to ride on, which is how ledger entries join the caller's
// transaction.
type TrustLedger interface {
	Apply(db *gorm.DB, userID uuid.UUID, action, externalKey string) error
	Reverse(db *gorm.DB, userID uuid.UUID, action, externalKey string) error
	ScoreFor(db *gorm.DB, userID uuid.UUID) (int, error)
}

// TrustService is the GORM-backed TrustLedger.
type TrustService struct{}

func NewTrustService() *TrustService {
	return &TrustService{}
}

func (s *TrustService) Apply(db *gorm.DB, userID uuid.UUID, action, externalKey string) error {
	weight, ok := trustWeights[action]
	if !ok {
		return fmt.Errorf("unknown trust action %q", action)
	}
	entry := models.TrustAction{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      action,
		Weight:      weight,
		ExternalKey: externalKey,
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record trust action: %w", err)
	}
	return nil
}

// Reverse appends a negated-weight entry for the same (user, action, key)
// context. It requires a prior matching entry: reversal undoes a specific
// ledger line, it is not a freestanding opposite action.
func (s *TrustService) Reverse(db *gorm.DB, userID uuid.UUID, action, externalKey string) error {
	var original models.TrustAction
	err := db.Where("user_id = ? AND action = ? AND external_key = ? AND reversal = ?",
		userID, action, externalKey, false).
		Order("created_at").First(&original).Error
	if err != nil {
		return fmt.Errorf("no trust entry to reverse for action %q: %w", action, err)
	}

	entry := models.TrustAction{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      action,
		Weight:      -original.Weight,
		ExternalKey: externalKey,
		Reversal:    true,
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record trust reversal: %w", err)
	}
	return nil
}

func (s *TrustService) ScoreFor(db *gorm.DB, userID uuid.UUID) (int, error) {
	var score int
	err := db.Model(&models.TrustAction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(weight), 0)").
		Scan(&score).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute trust score: %w", err)
	}
	return score, nil
}
