package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals are the stored aggregate fields of an invoice.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Tax2     decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives invoice totals from a set of line items. Amounts are
// summed and rounded half away from zero to cents. Each tax component is taken
// from the rounded subtotal, and the total is built from the unrounded taxes
// less credit before it is rounded once. The stored tax fields are rounded to
// cents on their own.
func ComputeTotals(taxRate, taxRate2, credit decimal.Decimal, items []InvoiceItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(taxRate).Div(hundred)
	tax2 := subtotal.Mul(taxRate2).Div(hundred)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax.Round(2),
		Tax2:     tax2.Round(2),
		Total:    subtotal.Add(tax).Add(tax2).Sub(credit).Round(2),
	}
}

// TotalsFor computes totals for inv using its own rates and credit.
func TotalsFor(inv Invoice, items []InvoiceItem) Totals {
	return ComputeTotals(inv.TaxRate, inv.TaxRate2, inv.Credit, items)
}

