package localapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/addonhook/internal/customer/domain"
	"gorm.io/gorm"
)

const MessageInvoiceCreated = "Invoice Created"

const emailDateFormat = "02/01/2006"

// Message is a named email resolved against a related record.
type Message struct {
	// Template is the email provider template name.
	Template string
	Build    func(ctx context.Context, db *gorm.DB, relatedID snowflake.ID) (Envelope, error)
}

type Envelope struct {
	To            []string
	RecipientName string
	Data          map[string]interface{}
}

type emailItem struct {
	Description string
	Amount      string
}

func (a *API) invoiceCreatedMessage() Message {
	return Message{
		Template: "invoice_created",
		Build: func(ctx context.Context, db *gorm.DB, relatedID snowflake.ID) (Envelope, error) {
			inv, err := a.invoices.GetByID(ctx, db, relatedID)
			if err != nil {
				return Envelope{}, err
			}
			client, err := a.customers.FindByID(ctx, db, inv.UserID)
			if err != nil {
				return Envelope{}, err
			}
			if client == nil {
				return Envelope{}, customerdomain.ErrCustomerNotFound
			}
			items, err := a.invoices.ListItems(ctx, db, inv.ID)
			if err != nil {
				return Envelope{}, err
			}

			lines := make([]emailItem, 0, len(items))
			for _, item := range items {
				lines = append(lines, emailItem{Description: item.Description, Amount: item.Amount.StringFixed(2)})
			}

			env := Envelope{
				RecipientName: client.DisplayName(),
				Data: map[string]interface{}{
					"subject":                fmt.Sprintf("Customer Invoice #%d", inv.InvoiceNum),
					"client_name":            client.DisplayName(),
					"invoice_id":             inv.ID.String(),
					"invoice_num":            inv.InvoiceNum,
					"invoice_date":           inv.Date.Format(emailDateFormat),
					"invoice_due_date":       inv.DueDate.Format(emailDateFormat),
					"invoice_subtotal":       inv.Subtotal.StringFixed(2),
					"invoice_total":          inv.Total.StringFixed(2),
					"invoice_payment_method": inv.PaymentMethod,
					"items":                  lines,
				},
			}
			if addr := strings.TrimSpace(client.Email); addr != "" {
				env.To = []string{addr}
			}
			return env, nil
		},
	}
}
