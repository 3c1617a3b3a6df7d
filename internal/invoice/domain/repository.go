package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	ListByUserAndStatus(ctx context.Context, db *gorm.DB, userID snowflake.ID, status InvoiceStatus) ([]Invoice, error)
	NextInvoiceNumber(ctx context.Context, db *gorm.DB) (int64, error)
	MarkCancelled(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	UpdateTotals(ctx context.Context, db *gorm.DB, id snowflake.ID, totals Totals, at time.Time) error

	ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	ListItemsByID(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]InvoiceItem, error)
	ReassignItems(ctx context.Context, db *gorm.DB, itemIDs []snowflake.ID, invoiceID snowflake.ID) (int64, error)
}
