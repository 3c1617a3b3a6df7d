package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/addonhook/internal/addon/domain"
	"github.com/smallbiznis/addonhook/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Addon, error) {
	var addon domain.Addon
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, addon_id, name, notes, subscription_id, payment_method,
		        status, created_at, updated_at
		 FROM hosting_addons
		 WHERE id = ?`,
		id,
	).Scan(&addon).Error
	if err != nil {
		return nil, err
	}
	if addon.ID == 0 {
		return nil, nil
	}
	return &addon, nil
}

func (r *repo) UpdateNotes(ctx context.Context, db *gorm.DB, id snowflake.ID, notes string, at time.Time) error {
	return r.update(ctx, db, id, "notes", notes, at)
}

func (r *repo) ClearSubscription(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return r.update(ctx, db, id, "subscription_id", "", at)
}

func (r *repo) update(ctx context.Context, db *gorm.DB, id snowflake.ID, column string, value any, at time.Time) error {
	affected, err := repository.ProvideStore[domain.Addon](db).Update(ctx, id, map[string]any{
		column:       value,
		"updated_at": at,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAddonNotFound
	}
	return nil
}

// FindCustomFieldValue returns an empty string when the field or its value is missing.
func (r *repo) FindCustomFieldValue(ctx context.Context, db *gorm.DB, fieldName string, definitionID, addonID snowflake.ID) (string, error) {
	var values []string
	err := db.WithContext(ctx).Raw(
		`SELECT v.value
		 FROM custom_field_values v
		 JOIN custom_fields f ON f.id = v.field_id
		 WHERE f.field_name = ? AND f.type = ? AND f.rel_id = ? AND v.rel_id = ?
		 ORDER BY v.id
		 LIMIT 1`,
		fieldName,
		domain.CustomFieldTypeAddon,
		definitionID,
		addonID,
	).Scan(&values).Error
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}
