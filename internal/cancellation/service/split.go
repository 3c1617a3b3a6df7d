package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/addonhook/internal/actor"
	addondomain "github.com/smallbiznis/addonhook/internal/addon/domain"
	cancellationdomain "github.com/smallbiznis/addonhook/internal/cancellation/domain"
	"github.com/smallbiznis/addonhook/internal/config"
	invoicedomain "github.com/smallbiznis/addonhook/internal/invoice/domain"
	"github.com/smallbiznis/addonhook/internal/localapi"
	"github.com/smallbiznis/addonhook/internal/observability/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// partitionItems splits invoice lines into those billing the addon and the rest.
func partitionItems(items []invoicedomain.InvoiceItem, addonID snowflake.ID) (related, unrelated []snowflake.ID) {
	for _, item := range items {
		if item.RelatesTo(addonID) {
			related = append(related, item.ID)
			continue
		}
		unrelated = append(unrelated, item.ID)
	}
	return related, unrelated
}

func (s *Service) splitInvoices(ctx context.Context, log *zap.Logger, cfg config.HookConfig, by actor.Actor, addon *addondomain.Addon, report *cancellationdomain.Report) {
	invoices, err := s.invoices.ListUnpaid(ctx, s.db, addon.UserID)
	if err != nil {
		s.recordFailure(ctx, log, metrics.StepListInvoices,
			fmt.Sprintf("Unable to list unpaid invoices for addon #%d. Reason: %v", addon.ID, err), err)
		return
	}

	for _, inv := range invoices {
		outcome := s.splitInvoice(ctx, log.With(zap.String("invoice_id", inv.ID.String())), cfg, by, addon, inv)
		s.metrics.RecordInvoice(ctx, string(outcome.Action))
		report.Invoices = append(report.Invoices, outcome)
	}
}

// splitInvoice cancels inv when it bills the addon and moves its other lines
// to a new unpaid invoice. All writes for one invoice share a transaction.
func (s *Service) splitInvoice(ctx context.Context, log *zap.Logger, cfg config.HookConfig, by actor.Actor, addon *addondomain.Addon, inv invoicedomain.Invoice) cancellationdomain.InvoiceOutcome {
	outcome := cancellationdomain.InvoiceOutcome{InvoiceID: inv.ID}

	items, err := s.invoices.ListItems(ctx, s.db, inv.ID)
	if err != nil {
		return s.splitFailed(ctx, log, addon, outcome, err)
	}
	related, unrelated := partitionItems(items, addon.ID)
	outcome.RelatedItems = len(related)
	outcome.UnrelatedItems = len(unrelated)
	if len(related) == 0 {
		outcome.Action = cancellationdomain.InvoiceActionSkipped
		return outcome
	}

	createNew := len(unrelated) > 0 || cfg.CreateEmptySplitInvoice
	var newInvoiceID snowflake.ID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.invoices.Cancel(ctx, tx, inv.ID); err != nil {
			return fmt.Errorf("cancel invoice: %w", err)
		}

		if createNew {
			created, err := s.api.CreateInvoice(ctx, tx, by, localapi.CreateInvoiceRequest{
				UserID:        inv.UserID,
				Status:        invoicedomain.InvoiceStatusUnpaid,
				PaymentMethod: inv.PaymentMethod,
				TaxRate:       inv.TaxRate,
				TaxRate2:      inv.TaxRate2,
				Date:          s.clock.Now(),
				DueDate:       inv.DueDate,
			})
			if err != nil {
				return fmt.Errorf("create invoice: %w", err)
			}
			if err := s.invoices.MoveItems(ctx, tx, unrelated, created.InvoiceID); err != nil {
				return fmt.Errorf("move items: %w", err)
			}
			newInvoice, err := s.invoices.GetByID(ctx, tx, created.InvoiceID)
			if err != nil {
				return fmt.Errorf("load new invoice: %w", err)
			}
			if _, err := s.invoices.RecalculateTotals(ctx, tx, newInvoice, unrelated); err != nil {
				return fmt.Errorf("recalculate new invoice: %w", err)
			}
			newInvoiceID = created.InvoiceID
		}

		if _, err := s.invoices.RecalculateTotals(ctx, tx, inv, related); err != nil {
			return fmt.Errorf("recalculate invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return s.splitFailed(ctx, log, addon, outcome, err)
	}

	outcome.Action = cancellationdomain.InvoiceActionCancelled
	if newInvoiceID == 0 {
		log.Info("invoice cancelled")
		return outcome
	}

	outcome.Action = cancellationdomain.InvoiceActionSplit
	outcome.NewInvoiceID = newInvoiceID
	log.Info("invoice split", zap.String("new_invoice_id", newInvoiceID.String()))

	if cfg.SendInvoiceCreatedEmail {
		err := s.api.SendEmail(ctx, by, localapi.SendEmailRequest{
			MessageName: cfg.InvoiceCreatedTemplate,
			RelatedID:   newInvoiceID,
		})
		if err != nil {
			s.recordFailure(ctx, log, metrics.StepEmail,
				fmt.Sprintf("Unable to send %s email for invoice #%d. Reason: %v", cfg.InvoiceCreatedTemplate, newInvoiceID, err), err)
		} else {
			outcome.EmailSent = true
		}
	}
	return outcome
}

func (s *Service) splitFailed(ctx context.Context, log *zap.Logger, addon *addondomain.Addon, outcome cancellationdomain.InvoiceOutcome, err error) cancellationdomain.InvoiceOutcome {
	outcome.Action = cancellationdomain.InvoiceActionFailed
	outcome.NewInvoiceID = 0
	outcome.Error = err.Error()
	s.recordFailure(ctx, log, metrics.StepSplitInvoice,
		fmt.Sprintf("Unable to split invoice #%d for addon #%d. Reason: %v", outcome.InvoiceID, addon.ID, err), err)
	return outcome
}
