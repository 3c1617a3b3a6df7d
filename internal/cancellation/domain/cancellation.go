package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/addonhook/internal/actor"
	addondomain "github.com/smallbiznis/addonhook/internal/addon/domain"
)

// InvoiceAction is what the hook did to one unpaid invoice.
type InvoiceAction string

const (
	InvoiceActionSkipped   InvoiceAction = "skipped"
	InvoiceActionCancelled InvoiceAction = "cancelled"
	InvoiceActionSplit     InvoiceAction = "split"
	InvoiceActionFailed    InvoiceAction = "failed"
)

type InvoiceOutcome struct {
	InvoiceID      snowflake.ID  `json:"invoice_id"`
	Action         InvoiceAction `json:"action"`
	NewInvoiceID   snowflake.ID  `json:"new_invoice_id,omitempty"`
	RelatedItems   int           `json:"related_items"`
	UnrelatedItems int           `json:"unrelated_items"`
	EmailSent      bool          `json:"email_sent"`
	Error          string        `json:"error,omitempty"`
}

// Report lists what each step of one cancellation did. Failed steps are
// recorded here and in the activity log; they never fail the hook.
type Report struct {
	AddonID               snowflake.ID     `json:"addon_id"`
	Note                  string           `json:"note"`
	NoteAppended          bool             `json:"note_appended"`
	SubscriptionCancelled bool             `json:"subscription_cancelled"`
	SubscriptionCleared   bool             `json:"subscription_cleared"`
	Invoices              []InvoiceOutcome `json:"invoices"`
}

type Service interface {
	HandleAddonCancelled(ctx context.Context, by actor.Actor, addonID snowflake.ID) (Report, error)
}

var (
	ErrInvalidAddonID         = errors.New("invalid_addon_id")
	ErrAddonNotFound          = addondomain.ErrAddonNotFound
	ErrCancellationInProgress = errors.New("cancellation_in_progress")
)
