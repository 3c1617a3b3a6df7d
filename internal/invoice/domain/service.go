package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateInvoiceRequest struct {
	UserID        snowflake.ID
	Status        InvoiceStatus
	PaymentMethod string
	TaxRate       decimal.Decimal
	TaxRate2      decimal.Decimal
	Date          time.Time
	DueDate       time.Time
	Notes         string
}

type Service interface {
	// Create inserts a new empty invoice on db, which may be a transaction.
	Create(ctx context.Context, db *gorm.DB, req CreateInvoiceRequest) (Invoice, error)
	GetByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (Invoice, error)
	ListUnpaid(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Invoice, error)
	ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	Cancel(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	MoveItems(ctx context.Context, db *gorm.DB, itemIDs []snowflake.ID, invoiceID snowflake.ID) error
	// RecalculateTotals recomputes and stores totals for invoice from the given items.
	RecalculateTotals(ctx context.Context, db *gorm.DB, invoice Invoice, itemIDs []snowflake.ID) (Totals, error)
}

var (
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrItemsNotMoved       = errors.New("invoice_items_not_moved")
	ErrInvoiceNumberInUse  = errors.New("invoice_number_in_use")
	ErrInvoiceNotCancelled = errors.New("invoice_not_cancelled")
)
