package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing status values. PENDING is the only non-terminal state; the normal
// moderation path only ever moves PENDING -> APPROVED or PENDING -> REJECTED.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// ValidStatus reports whether s is one of the listing status values.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Listing is a compatibility report for a game on a device/emulator combo.
// The (author, game, device, emulator) tuple is unique: one report per
// author per combination.
type Listing struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GameID            uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_listings_author_target" json:"game_id"`
	DeviceID          uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_listings_author_target" json:"device_id"`
	EmulatorID        uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_listings_author_target" json:"emulator_id"`
	PerformanceID     uuid.UUID  `gorm:"type:uuid;not null" json:"performance_id"`
	AuthorID          uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_listings_author_target" json:"author_id"`
	Status            string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Notes             string     `gorm:"type:text" json:"notes"`
	ProcessedByUserID *uuid.UUID `gorm:"type:uuid" json:"processed_by_user_id,omitempty"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	ProcessedNotes    *string    `gorm:"size:1000" json:"processed_notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Author            User              `gorm:"foreignKey:AuthorID" json:"-"`
	Game              Game              `gorm:"foreignKey:GameID" json:"-"`
	Device            Device            `gorm:"foreignKey:DeviceID" json:"-"`
	Emulator          Emulator          `gorm:"foreignKey:EmulatorID" json:"-"`
	Performance       PerformanceScale  `gorm:"foreignKey:PerformanceID" json:"-"`
	CustomFieldValues []CustomFieldValue `gorm:"foreignKey:ListingID" json:"custom_field_values,omitempty"`
}
