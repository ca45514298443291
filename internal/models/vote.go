package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one user's up/down verdict on a listing. The (user, listing) pair
// is unique; submitting the same value twice removes the row (toggle-off).
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_listing" json:"user_id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_votes_user_listing" json:"listing_id"`
	Value     bool      `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Listing Listing `gorm:"foreignKey:ListingID" json:"-"`
}
