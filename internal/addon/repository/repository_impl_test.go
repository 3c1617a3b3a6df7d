package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/addonhook/internal/addon/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Addon{}, &domain.CustomField{}, &domain.CustomFieldValue{}))
	return db
}

func TestFindByID(t *testing.T) {
	db := setupDB(t)
	r := Provide()
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.Addon{
		ID:             42,
		UserID:         7,
		AddonID:        3,
		Name:           "Backups",
		Notes:          "first",
		SubscriptionID: "sub_123",
		PaymentMethod:  "stripe",
		Status:         domain.AddonStatusCancelled,
	}).Error)

	addon, err := r.FindByID(ctx, db, 42)
	require.NoError(t, err)
	require.NotNil(t, addon)
	assert.Equal(t, snowflake.ID(7), addon.UserID)
	assert.Equal(t, "sub_123", addon.SubscriptionID)
	assert.Equal(t, "stripe", addon.PaymentMethod)

	missing, err := r.FindByID(ctx, db, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateNotesAndClearSubscription(t *testing.T) {
	db := setupDB(t)
	r := Provide()
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.Addon{ID: 42, UserID: 7, SubscriptionID: "sub_123"}).Error)

	noted := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
	cleared := noted.Add(time.Minute)
	require.NoError(t, r.UpdateNotes(ctx, db, 42, "a\nb", noted))
	require.NoError(t, r.ClearSubscription(ctx, db, 42, cleared))

	var stored domain.Addon
	require.NoError(t, db.First(&stored, 42).Error)
	assert.Equal(t, "a\nb", stored.Notes)
	assert.Empty(t, stored.SubscriptionID)
	assert.True(t, stored.UpdatedAt.Equal(cleared), "updated_at %s", stored.UpdatedAt)

	assert.ErrorIs(t, r.UpdateNotes(ctx, db, 99, "x", noted), domain.ErrAddonNotFound)
	assert.ErrorIs(t, r.ClearSubscription(ctx, db, 99, cleared), domain.ErrAddonNotFound)
}

func TestFindCustomFieldValue(t *testing.T) {
	db := setupDB(t)
	r := Provide()
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.CustomField{ID: 1, Type: domain.CustomFieldTypeAddon, RelID: 3, FieldName: "Cancellation Ticket ID"}).Error)
	require.NoError(t, db.Create(&domain.CustomField{ID: 2, Type: "product", RelID: 3, FieldName: "Cancellation Ticket ID"}).Error)
	require.NoError(t, db.Create(&domain.CustomFieldValue{ID: 10, FieldID: 1, RelID: 42, Value: "TKT-9"}).Error)
	require.NoError(t, db.Create(&domain.CustomFieldValue{ID: 11, FieldID: 2, RelID: 43, Value: "PRODUCT"}).Error)

	value, err := r.FindCustomFieldValue(ctx, db, "Cancellation Ticket ID", 3, 42)
	require.NoError(t, err)
	assert.Equal(t, "TKT-9", value)

	value, err = r.FindCustomFieldValue(ctx, db, "Cancellation Ticket ID", 3, 43)
	require.NoError(t, err)
	assert.Empty(t, value)

	value, err = r.FindCustomFieldValue(ctx, db, "Other", 3, 42)
	require.NoError(t, err)
	assert.Empty(t, value)
}
