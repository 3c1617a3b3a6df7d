package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/addonhook/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}, &domain.InvoiceItem{}))
	return db
}

func seedInvoice(t *testing.T, db *gorm.DB, id snowflake.ID, status domain.InvoiceStatus) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Invoice{
		ID:      id,
		UserID:  7,
		Status:  status,
		Date:    testNow,
		DueDate: testNow,
	}).Error)
}

func TestMarkCancelled(t *testing.T) {
	db := setupDB(t)
	r := Provide()
	ctx := context.Background()

	seedInvoice(t, db, 100, domain.InvoiceStatusUnpaid)
	seedInvoice(t, db, 101, domain.InvoiceStatusPaid)

	require.NoError(t, r.MarkCancelled(ctx, db, 100, testNow))

	cancelled, err := r.FindByID(ctx, db, 100)
	require.NoError(t, err)
	require.NotNil(t, cancelled)
	assert.Equal(t, domain.InvoiceStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.DateCancelled)
	assert.True(t, cancelled.DateCancelled.Equal(testNow))

	t.Run("already cancelled", func(t *testing.T) {
		assert.ErrorIs(t, r.MarkCancelled(ctx, db, 100, testNow), domain.ErrInvoiceNotCancelled)
	})

	t.Run("paid invoice stays paid", func(t *testing.T) {
		assert.ErrorIs(t, r.MarkCancelled(ctx, db, 101, testNow), domain.ErrInvoiceNotCancelled)

		paid, err := r.FindByID(ctx, db, 101)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
		assert.Nil(t, paid.DateCancelled)
	})

	t.Run("missing invoice", func(t *testing.T) {
		assert.ErrorIs(t, r.MarkCancelled(ctx, db, 999, testNow), domain.ErrInvoiceNotCancelled)
	})
}

func TestReassignItems(t *testing.T) {
	db := setupDB(t)
	r := Provide()
	ctx := context.Background()

	seedInvoice(t, db, 100, domain.InvoiceStatusUnpaid)
	seedInvoice(t, db, 101, domain.InvoiceStatusUnpaid)
	require.NoError(t, db.Create(&[]domain.InvoiceItem{
		{ID: 1, InvoiceID: 100, UserID: 7, Type: domain.ItemTypeAddon, RelID: 42, Amount: decimal.RequireFromString("10.00")},
		{ID: 2, InvoiceID: 100, UserID: 7, Type: "Hosting", RelID: 5, Amount: decimal.RequireFromString("25.00")},
	}).Error)

	t.Run("empty list", func(t *testing.T) {
		moved, err := r.ReassignItems(ctx, db, nil, 101)
		require.NoError(t, err)
		assert.Zero(t, moved)

		items, err := r.ListItems(ctx, db, 100)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("moves only the listed items", func(t *testing.T) {
		moved, err := r.ReassignItems(ctx, db, []snowflake.ID{2}, 101)
		require.NoError(t, err)
		assert.Equal(t, int64(1), moved)

		kept, err := r.ListItems(ctx, db, 100)
		require.NoError(t, err)
		require.Len(t, kept, 1)
		assert.Equal(t, snowflake.ID(1), kept[0].ID)

		movedItems, err := r.ListItems(ctx, db, 101)
		require.NoError(t, err)
		require.Len(t, movedItems, 1)
		assert.Equal(t, snowflake.ID(2), movedItems[0].ID)
	})

	t.Run("missing ids report fewer rows", func(t *testing.T) {
		moved, err := r.ReassignItems(ctx, db, []snowflake.ID{1, 404}, 101)
		require.NoError(t, err)
		assert.Equal(t, int64(1), moved)
	})
}

func TestUpdateTotalsStampsGivenTime(t *testing.T) {
	db := setupDB(t)
	r := Provide()
	ctx := context.Background()

	seedInvoice(t, db, 100, domain.InvoiceStatusUnpaid)
	at := testNow.Add(time.Hour)
	totals := domain.Totals{
		Subtotal: decimal.RequireFromString("25.00"),
		Tax:      decimal.RequireFromString("5.00"),
		Tax2:     decimal.Zero,
		Total:    decimal.RequireFromString("30.00"),
	}
	require.NoError(t, r.UpdateTotals(ctx, db, 100, totals, at))

	stored, err := r.FindByID(ctx, db, 100)
	require.NoError(t, err)
	assert.Equal(t, "30.00", stored.Total.StringFixed(2))
	assert.True(t, stored.UpdatedAt.Equal(at), "updated_at %s", stored.UpdatedAt)

	assert.ErrorIs(t, r.UpdateTotals(ctx, db, 999, totals, at), domain.ErrInvoiceNotFound)
}

func TestListItemsByIDEmpty(t *testing.T) {
	db := setupDB(t)

	items, err := Provide().ListItemsByID(context.Background(), db, []snowflake.ID{})
	require.NoError(t, err)
	assert.Empty(t, items)
}
