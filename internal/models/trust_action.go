package models

import (
	"time"

	"github.com/google/uuid"
)

// Trust action tags. Each tag has a fixed weight; a user's trust score is
// the sum of their ledger weights.
const (
	TrustListingCreated  = "LISTING_CREATED"
	TrustListingApproved = "LISTING_APPROVED"
	TrustListingRejected = "LISTING_REJECTED"
	TrustUpvote          = "UPVOTE"
	TrustDownvote        = "DOWNVOTE"
)

// TrustAction is an append-only reputation ledger entry. Reversals are new
// rows carrying the negated weight and the same external key, so the net
// effect of the original entry is exactly undone without rewriting history.
type TrustAction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Action      string    `gorm:"size:50;not null;index" json:"action"`
	Weight      int       `gorm:"not null" json:"weight"`
	ExternalKey string    `gorm:"size:100;not null;index" json:"external_key"`
	Reversal    bool      `gorm:"default:false" json:"reversal"`
	CreatedAt   time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
