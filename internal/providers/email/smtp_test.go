package email

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
	auth smtp.Auth
}

func newTestProvider(t *testing.T, cfg Config) (*SMTPProvider, *capturedMail) {
	t.Helper()
	p, err := NewSMTP(cfg)
	require.NoError(t, err)

	captured := &capturedMail{}
	p.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.auth = a
		captured.from = from
		captured.to = to
		captured.msg = string(msg)
		return nil
	}
	return p, captured
}

func TestSendTemplateInvoiceCreated(t *testing.T) {
	p, captured := newTestProvider(t, Config{Host: "mail.local", Port: 2525, From: "billing@example.com"})

	err := p.SendTemplate(context.Background(), []string{"jane@example.com"}, "invoice_created", map[string]interface{}{
		"subject":                "Customer Invoice #101",
		"client_name":            "Jane <Doe>",
		"invoice_num":            101,
		"invoice_date":           "17/05/2024",
		"invoice_due_date":       "01/06/2024",
		"invoice_total":          "30.00",
		"invoice_payment_method": "stripe",
		"items": []struct {
			Description string
			Amount      string
		}{{Description: "Hosting", Amount: "25.00"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "mail.local:2525", captured.addr)
	assert.Nil(t, captured.auth)
	assert.Equal(t, "billing@example.com", captured.from)
	assert.Equal(t, []string{"jane@example.com"}, captured.to)
	assert.Contains(t, captured.msg, "Subject: Customer Invoice #101\r\n")
	assert.Contains(t, captured.msg, "Content-Type: text/html")
	assert.Contains(t, captured.msg, "Jane &lt;Doe&gt;")
	assert.Contains(t, captured.msg, "30.00")
	assert.Contains(t, captured.msg, "Hosting")
}

func TestSendTemplateUnknown(t *testing.T) {
	p, _ := newTestProvider(t, Config{Host: "mail.local", Port: 25})

	err := p.SendTemplate(context.Background(), []string{"jane@example.com"}, "missing", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestSendRequiresRecipient(t *testing.T) {
	p, _ := newTestProvider(t, Config{Host: "mail.local", Port: 25, Username: "user", Password: "secret"})

	assert.ErrorIs(t, p.Send(context.Background(), nil, "hello", "<p>hi</p>"), ErrNoRecipients)
}

func TestSendUsesAuthWhenConfigured(t *testing.T) {
	p, captured := newTestProvider(t, Config{Host: "mail.local", Port: 587, Username: "user", Password: "secret"})

	require.NoError(t, p.Send(context.Background(), []string{"a@example.com", "b@example.com"}, "", "<p>hi</p>"))
	assert.NotNil(t, captured.auth)
	assert.Contains(t, captured.msg, "To: a@example.com, b@example.com\r\n")
}
