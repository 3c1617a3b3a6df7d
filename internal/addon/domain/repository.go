package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Addon, error)
	UpdateNotes(ctx context.Context, db *gorm.DB, id snowflake.ID, notes string, at time.Time) error
	ClearSubscription(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	FindCustomFieldValue(ctx context.Context, db *gorm.DB, fieldName string, definitionID, addonID snowflake.ID) (string, error)
}

var (
	ErrAddonNotFound = errors.New("addon_not_found")
)
