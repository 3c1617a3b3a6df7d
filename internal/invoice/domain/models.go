// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft       InvoiceStatus = "Draft"
	InvoiceStatusUnpaid      InvoiceStatus = "Unpaid"
	InvoiceStatusPaid        InvoiceStatus = "Paid"
	InvoiceStatusCancelled   InvoiceStatus = "Cancelled"
	InvoiceStatusRefunded    InvoiceStatus = "Refunded"
	InvoiceStatusCollections InvoiceStatus = "Collections"
)

// Invoice is a customer invoice. Subtotal, Tax, Tax2 and Total are stored
// values and only change through an explicit totals recomputation.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	InvoiceNum    int64           `gorm:"not null;default:0"`
	UserID        snowflake.ID    `gorm:"not null;index:ix_invoices_user_status"`
	Status        InvoiceStatus   `gorm:"type:text;not null;default:'Unpaid';index:ix_invoices_user_status"`
	Date          time.Time       `gorm:"not null"`
	DueDate       time.Time       `gorm:"not null"`
	DatePaid      *time.Time      `gorm:""`
	DateCancelled *time.Time      `gorm:""`
	Subtotal      decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	Credit        decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	Tax2          decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	TaxRate2      decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	PaymentMethod string          `gorm:"type:text;not null;default:''"`
	Notes         string          `gorm:"type:text;not null;default:''"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// ItemTypeAddon tags invoice lines billed for an addon service.
const ItemTypeAddon = "Addon"

// InvoiceItem represents a line on an invoice. InvoiceID is mutable; moving
// a line to another invoice is a plain update of that column.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	InvoiceID   snowflake.ID    `gorm:"not null;index"`
	UserID      snowflake.ID    `gorm:"not null;index"`
	Type        string          `gorm:"type:text;not null;default:''"`
	RelID       snowflake.ID    `gorm:"not null;default:0"`
	Description string          `gorm:"type:text;not null;default:''"`
	Amount      decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	Taxed       bool            `gorm:"not null;default:false"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// RelatesTo reports whether the line bills the given addon service.
func (i InvoiceItem) RelatesTo(addonID snowflake.ID) bool {
	return i.Type == ItemTypeAddon && i.RelID == addonID
}
