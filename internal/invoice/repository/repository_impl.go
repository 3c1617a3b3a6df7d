package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/addonhook/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	if invoice == nil {
		return nil
	}
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, nil
	}
	return &invoices[0], nil
}

func (r *repo) ListByUserAndStatus(ctx context.Context, db *gorm.DB, userID snowflake.ID, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("id ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) NextInvoiceNumber(ctx context.Context, db *gorm.DB) (int64, error) {
	var next int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(invoice_num), 0) + 1
		 FROM invoices`,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// MarkCancelled only transitions unpaid invoices, so a concurrent payment wins.
func (r *repo) MarkCancelled(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, date_cancelled = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.InvoiceStatusCancelled,
		at,
		at,
		id,
		domain.InvoiceStatusUnpaid,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInvoiceNotCancelled
	}
	return nil
}

func (r *repo) UpdateTotals(ctx context.Context, db *gorm.DB, id snowflake.ID, totals domain.Totals, at time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET subtotal = ?, tax = ?, tax2 = ?, total = ?, updated_at = ?
		 WHERE id = ?`,
		totals.Subtotal,
		totals.Tax,
		totals.Tax2,
		totals.Total,
		at,
		id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListItemsByID(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.InvoiceItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ReassignItems(ctx context.Context, db *gorm.DB, itemIDs []snowflake.ID, invoiceID snowflake.ID) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	result := db.WithContext(ctx).Exec(
		`UPDATE invoice_items
		 SET invoice_id = ?
		 WHERE id IN ?`,
		invoiceID,
		itemIDs,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
