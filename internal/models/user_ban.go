package models

import (
	"time"

	"github.com/google/uuid"
)

// UserBan blocks an author from having listings approved. A ban is in force
// while IsActive and not past ExpiresAt (nil means permanent).
type UserBan struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	BannedByID   uuid.UUID  `gorm:"type:uuid;not null" json:"banned_by_id"`
	Reason       string     `gorm:"not null;size:500" json:"reason"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsActive     bool       `gorm:"default:true;index" json:"is_active"`
	LiftedByID   *uuid.UUID `gorm:"type:uuid" json:"lifted_by_id,omitempty"`
	LiftedAt     *time.Time `json:"lifted_at,omitempty"`
	LiftedReason string     `gorm:"size:500" json:"lifted_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	User     User `gorm:"foreignKey:UserID" json:"-"`
	BannedBy User `gorm:"foreignKey:BannedByID" json:"-"`
}

// InForce reports whether the ban applies at time now.
func (b *UserBan) InForce(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.ExpiresAt != nil && now.After(*b.ExpiresAt) {
		return false
	}
	return true
}
