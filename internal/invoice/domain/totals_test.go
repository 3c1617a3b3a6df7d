package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(amount string) InvoiceItem {
	return InvoiceItem{Amount: decimal.RequireFromString(amount)}
}

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name     string
		rate     string
		rate2    string
		credit   string
		items    []InvoiceItem
		subtotal string
		tax      string
		tax2     string
		total    string
	}{
		{
			name: "addon line at 20 percent", rate: "20", rate2: "0", credit: "0",
			items:    []InvoiceItem{item("10.00")},
			subtotal: "10.00", tax: "2.00", tax2: "0", total: "12.00",
		},
		{
			name: "hosting line at 20 percent", rate: "20", rate2: "0", credit: "0",
			items:    []InvoiceItem{item("25.00")},
			subtotal: "25.00", tax: "5.00", tax2: "0", total: "30.00",
		},
		{
			name: "two tax components and credit", rate: "10", rate2: "5", credit: "3.50",
			items:    []InvoiceItem{item("40.00"), item("9.99")},
			subtotal: "49.99", tax: "5.00", tax2: "2.50", total: "53.99",
		},
		{
			name: "half cent rounds away from zero", rate: "0", rate2: "0", credit: "0",
			items:    []InvoiceItem{item("0.005"), item("1.00")},
			subtotal: "1.01", tax: "0", tax2: "0", total: "1.01",
		},
		{
			name: "half cent taxes add up before rounding", rate: "0.5", rate2: "0.5", credit: "0",
			items:    []InvoiceItem{item("1.00")},
			subtotal: "1.00", tax: "0.01", tax2: "0.01", total: "1.01",
		},
		{
			name: "credit applies to the unrounded sum", rate: "0.5", rate2: "0", credit: "0.004",
			items:    []InvoiceItem{item("1.00")},
			subtotal: "1.00", tax: "0.01", tax2: "0", total: "1.00",
		},
		{
			name: "no items leaves only the credit", rate: "20", rate2: "0", credit: "5",
			items:    nil,
			subtotal: "0", tax: "0", tax2: "0", total: "-5",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(
				decimal.RequireFromString(tc.rate),
				decimal.RequireFromString(tc.rate2),
				decimal.RequireFromString(tc.credit),
				tc.items,
			)
			assert.True(t, got.Subtotal.Equal(decimal.RequireFromString(tc.subtotal)), "subtotal %s", got.Subtotal)
			assert.True(t, got.Tax.Equal(decimal.RequireFromString(tc.tax)), "tax %s", got.Tax)
			assert.True(t, got.Tax2.Equal(decimal.RequireFromString(tc.tax2)), "tax2 %s", got.Tax2)
			assert.True(t, got.Total.Equal(decimal.RequireFromString(tc.total)), "total %s", got.Total)
		})
	}
}

func TestComputeTotalsIsIdempotent(t *testing.T) {
	inv := Invoice{
		TaxRate:  decimal.RequireFromString("17.5"),
		TaxRate2: decimal.RequireFromString("2"),
		Credit:   decimal.RequireFromString("1.25"),
	}
	items := []InvoiceItem{item("12.34"), item("0.66"), item("100")}

	first := TotalsFor(inv, items)
	second := TotalsFor(inv, items)
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Tax2.Equal(second.Tax2))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestRelatesTo(t *testing.T) {
	assert.True(t, InvoiceItem{Type: ItemTypeAddon, RelID: 42}.RelatesTo(42))
	assert.False(t, InvoiceItem{Type: ItemTypeAddon, RelID: 43}.RelatesTo(42))
	assert.False(t, InvoiceItem{Type: "Hosting", RelID: 42}.RelatesTo(42))
}
