package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Game is a title a compatibility report is filed against.
type Game struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string         `gorm:"not null;size:255;index" json:"title"`
	System    string         `gorm:"size:100" json:"system"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Device is the handheld or PC hardware a listing was tested on.
type Device struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Brand     string         `gorm:"not null;size:100" json:"brand"`
	Model     string         `gorm:"not null;size:100" json:"model"`
	Cpu       string         `gorm:"size:100" json:"cpu"`
	Gpu       string         `gorm:"size:100" json:"gpu"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Emulator owns the custom field schema its listings are validated against.
type Emulator struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:100;uniqueIndex" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CustomFieldDefinitions []CustomFieldDefinition `gorm:"foreignKey:EmulatorID" json:"custom_field_definitions,omitempty"`
}

// PerformanceScale is the playability rank attached to a listing.
type PerformanceScale struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Label       string    `gorm:"not null;size:50;uniqueIndex" json:"label"`
	Rank        int       `gorm:"not null" json:"rank"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
