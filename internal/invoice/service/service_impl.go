package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/addonhook/internal/clock"
	invoicedomain "github.com/smallbiznis/addonhook/internal/invoice/domain"
	"github.com/smallbiznis/addonhook/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  invoicedomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  invoicedomain.Repository
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, tx *gorm.DB, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	if req.UserID == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidUser
	}
	status := req.Status
	if status == "" {
		status = invoicedomain.InvoiceStatusUnpaid
	}
	switch status {
	case invoicedomain.InvoiceStatusDraft, invoicedomain.InvoiceStatusUnpaid:
	default:
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	now := s.clock.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	date = truncateDay(date)
	// Due dates carried over from an older invoice may already be past.
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = date
	}

	number, err := s.repo.NextInvoiceNumber(ctx, tx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoice := invoicedomain.Invoice{
		ID:            s.genID.Generate(),
		InvoiceNum:    number,
		UserID:        req.UserID,
		Status:        status,
		Date:          date,
		DueDate:       truncateDay(dueDate),
		Subtotal:      decimal.Zero,
		Credit:        decimal.Zero,
		Tax:           decimal.Zero,
		Tax2:          decimal.Zero,
		Total:         decimal.Zero,
		TaxRate:       req.TaxRate,
		TaxRate2:      req.TaxRate2,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNumberInUse
		}
		return invoicedomain.Invoice{}, err
	}

	s.log.Debug("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.Int64("invoice_num", invoice.InvoiceNum),
		zap.String("user_id", invoice.UserID.String()),
	)
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (invoicedomain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if invoice == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}
	return *invoice, nil
}

func (s *Service) ListUnpaid(ctx context.Context, tx *gorm.DB, userID snowflake.ID) ([]invoicedomain.Invoice, error) {
	return s.repo.ListByUserAndStatus(ctx, tx, userID, invoicedomain.InvoiceStatusUnpaid)
}

func (s *Service) ListItems(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) ([]invoicedomain.InvoiceItem, error) {
	return s.repo.ListItems(ctx, tx, invoiceID)
}

func (s *Service) Cancel(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	return s.repo.MarkCancelled(ctx, tx, id, s.clock.Now())
}

func (s *Service) MoveItems(ctx context.Context, tx *gorm.DB, itemIDs []snowflake.ID, invoiceID snowflake.ID) error {
	moved, err := s.repo.ReassignItems(ctx, tx, itemIDs, invoiceID)
	if err != nil {
		return err
	}
	if moved != int64(len(itemIDs)) {
		return fmt.Errorf("%w: moved %d of %d", invoicedomain.ErrItemsNotMoved, moved, len(itemIDs))
	}
	return nil
}

func (s *Service) RecalculateTotals(ctx context.Context, tx *gorm.DB, invoice invoicedomain.Invoice, itemIDs []snowflake.ID) (invoicedomain.Totals, error) {
	items, err := s.repo.ListItemsByID(ctx, tx, itemIDs)
	if err != nil {
		return invoicedomain.Totals{}, err
	}

	totals := invoicedomain.TotalsFor(invoice, items)
	if err := s.repo.UpdateTotals(ctx, tx, invoice.ID, totals, s.clock.Now()); err != nil {
		return invoicedomain.Totals{}, err
	}
	return totals, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
