// Package localapi exposes the administrative commands hooks may run against
// the platform: invoice creation and templated customer email.
package localapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	activitydomain "github.com/smallbiznis/addonhook/internal/activity/domain"
	"github.com/smallbiznis/addonhook/internal/actor"
	customerdomain "github.com/smallbiznis/addonhook/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/addonhook/internal/invoice/domain"
	"github.com/smallbiznis/addonhook/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUnknownMessage = errors.New("unknown_message")
	ErrNoRecipient    = errors.New("no_recipient")
	ErrInvalidRelID   = errors.New("invalid_related_id")
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Invoices  invoicedomain.Service
	Customers customerdomain.Repository
	Email     email.Provider
	Activity  activitydomain.Service
}

type API struct {
	db        *gorm.DB
	log       *zap.Logger
	invoices  invoicedomain.Service
	customers customerdomain.Repository
	email     email.Provider
	activity  activitydomain.Service

	mu       sync.RWMutex
	messages map[string]Message
}

func New(p Params) *API {
	api := &API{
		db:        p.DB,
		log:       p.Log.Named("localapi"),
		invoices:  p.Invoices,
		customers: p.Customers,
		email:     p.Email,
		activity:  p.Activity,
		messages:  map[string]Message{},
	}
	api.RegisterMessage(MessageInvoiceCreated, api.invoiceCreatedMessage())
	return api
}

type CreateInvoiceRequest struct {
	UserID        snowflake.ID
	Status        invoicedomain.InvoiceStatus
	PaymentMethod string
	TaxRate       decimal.Decimal
	TaxRate2      decimal.Decimal
	Date          time.Time
	DueDate       time.Time
	Notes         string
}

type CreateInvoiceResult struct {
	InvoiceID  snowflake.ID
	InvoiceNum int64
}

// CreateInvoice inserts an empty invoice on tx. A nil tx runs on the API's
// own connection.
func (a *API) CreateInvoice(ctx context.Context, tx *gorm.DB, by actor.Actor, req CreateInvoiceRequest) (CreateInvoiceResult, error) {
	if tx == nil {
		tx = a.db
	}

	inv, err := a.invoices.Create(ctx, tx, invoicedomain.CreateInvoiceRequest{
		UserID:        req.UserID,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		TaxRate:       req.TaxRate,
		TaxRate2:      req.TaxRate2,
		Date:          req.Date,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	})
	if err != nil {
		return CreateInvoiceResult{}, err
	}

	a.log.Info("invoice created",
		zap.String("actor", by.Name()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("user_id", inv.UserID.String()),
	)
	return CreateInvoiceResult{InvoiceID: inv.ID, InvoiceNum: inv.InvoiceNum}, nil
}

type SendEmailRequest struct {
	MessageName string
	RelatedID   snowflake.ID
}

// SendEmail renders the named message for the related record and delivers it
// to the record's client.
func (a *API) SendEmail(ctx context.Context, by actor.Actor, req SendEmailRequest) error {
	msg, ok := a.message(req.MessageName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessage, req.MessageName)
	}
	if req.RelatedID == 0 {
		return ErrInvalidRelID
	}

	envelope, err := msg.Build(ctx, a.db, req.RelatedID)
	if err != nil {
		return err
	}
	if len(envelope.To) == 0 {
		return ErrNoRecipient
	}

	if err := a.email.SendTemplate(ctx, envelope.To, msg.Template, envelope.Data); err != nil {
		return fmt.Errorf("send %s: %w", req.MessageName, err)
	}

	entry := fmt.Sprintf("Email Sent to %s (%s)", envelope.RecipientName, strings.TrimSpace(req.MessageName))
	if err := a.activity.Log(ctx, by.Username, entry); err != nil {
		a.log.Warn("failed to record email activity", zap.Error(err))
	}
	return nil
}

// RegisterMessage adds or replaces a message template. Names are matched
// case-insensitively.
func (a *API) RegisterMessage(name string, msg Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages[normalizeName(name)] = msg
}

func (a *API) message(name string) (Message, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	msg, ok := a.messages[normalizeName(name)]
	return msg, ok
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
