package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Custom field types an emulator can define for its listings.
const (
	FieldTypeText     = "TEXT"
	FieldTypeTextarea = "TEXTAREA"
	FieldTypeURL      = "URL"
	FieldTypeSelect   = "SELECT"
	FieldTypeRange    = "RANGE"
	FieldTypeBoolean  = "BOOLEAN"
)

// CustomFieldDefinition is a per-emulator typed metadata field. Options
// holds the SELECT choices as a JSON array of {"value","label"} objects.
type CustomFieldDefinition struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EmulatorID   uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_field_defs_emulator_name" json:"emulator_id"`
	Name         string         `gorm:"not null;size:100;uniqueIndex:idx_field_defs_emulator_name" json:"name"`
	Label        string         `gorm:"not null;size:255" json:"label"`
	Type         string         `gorm:"size:20;not null" json:"type"`
	IsRequired   bool           `gorm:"default:false" json:"is_required"`
	Options      datatypes.JSON `json:"options,omitempty"`
	RangeMin     *float64       `json:"range_min,omitempty"`
	RangeMax     *float64       `json:"range_max,omitempty"`
	DisplayOrder int            `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CustomFieldValue stores a validated field value for a listing as JSON.
type CustomFieldValue struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID         uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_field_values_listing_def" json:"listing_id"`
	FieldDefinitionID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_field_values_listing_def" json:"field_definition_id"`
	Value             datatypes.JSON `gorm:"not null" json:"value"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`

	FieldDefinition CustomFieldDefinition `gorm:"foreignKey:FieldDefinitionID" json:"field_definition,omitempty"`
}
