// Package domain contains persistence models for addon services.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// AddonStatus represents addon service lifecycle states.
type AddonStatus string

const (
	AddonStatusPending    AddonStatus = "Pending"
	AddonStatusActive     AddonStatus = "Active"
	AddonStatusSuspended  AddonStatus = "Suspended"
	AddonStatusCancelled  AddonStatus = "Cancelled"
	AddonStatusTerminated AddonStatus = "Terminated"
)

// Addon is a recurring addon service attached to a customer account.
type Addon struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	UserID         snowflake.ID `gorm:"not null;index"`
	AddonID        snowflake.ID `gorm:"not null;index"`
	Name           string       `gorm:"type:text"`
	Notes          string       `gorm:"type:text;not null;default:''"`
	SubscriptionID string       `gorm:"type:text;not null;default:''"`
	PaymentMethod  string       `gorm:"type:text;not null;default:''"`
	Status         AddonStatus  `gorm:"type:text;not null;default:'Pending'"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Addon) TableName() string { return "hosting_addons" }

// CustomFieldTypeAddon scopes a custom field to addon definitions.
const CustomFieldTypeAddon = "addon"

// CustomField defines a named field attached to an addon definition.
type CustomField struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Type      string       `gorm:"type:text;not null;index:ix_custom_fields_lookup"`
	RelID     snowflake.ID `gorm:"not null;index:ix_custom_fields_lookup"`
	FieldName string       `gorm:"type:text;not null;index:ix_custom_fields_lookup"`
}

func (CustomField) TableName() string { return "custom_fields" }

// CustomFieldValue holds the value of a custom field for one addon service.
type CustomFieldValue struct {
	ID      snowflake.ID `gorm:"primaryKey"`
	FieldID snowflake.ID `gorm:"not null;index:ix_custom_field_values_lookup"`
	RelID   snowflake.ID `gorm:"not null;index:ix_custom_field_values_lookup"`
	Value   string       `gorm:"type:text;not null;default:''"`
}

func (CustomFieldValue) TableName() string { return "custom_field_values" }
