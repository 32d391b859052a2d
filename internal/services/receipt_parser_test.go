package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurascan/receipt-scan/internal/models"
)

func TestParseDeterminism(t *testing.T) {
	p := NewReceiptParser()
	text := "SPAR Market\n12 High Street\n01/02/2023 09:15\nMILK 2L  1.99\nBREAD  2,49\nTotal: $4.48\n"

	first := p.Parse(text)
	second := p.Parse(text)
	assert.Equal(t, first, second)
}

func TestParseEmptyInput(t *testing.T) {
	p := NewReceiptParser()

	for _, text := range []string{"", "   \n\t \n"} {
		got := p.Parse(text)
		assert.Empty(t, got.CompanyName)
		assert.Empty(t, got.MerchantName)
		assert.Empty(t, got.Address)
		assert.Empty(t, got.Date)
		assert.Empty(t, got.Time)
		assert.Empty(t, got.Currency)
		assert.Empty(t, got.Subtotal)
		assert.Empty(t, got.TaxAmount)
		assert.Empty(t, got.Total)
		assert.Empty(t, got.Change)
		assert.Empty(t, got.TransactionStatus)
		assert.Empty(t, got.Items)
		assert.Empty(t, got.Dates)
		assert.Empty(t, got.Currencies)
		assert.Equal(t, text, got.RawText)
	}
}

func TestParseTotalSubtotalIndependence(t *testing.T) {
	p := NewReceiptParser()

	tests := []struct {
		name string
		text string
	}{
		{"subtotal first", "Corner Shop\nSubtotal: $10.00\nTotal: $12.10"},
		{"total first", "Corner Shop\nTotal: $12.10\nSubtotal: $10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.text)
			assert.Equal(t, "12.10", got.Total)
			assert.Equal(t, "10.00", got.Subtotal)
		})
	}
}

func TestParseKeywordLinesNeverBecomeItems(t *testing.T) {
	p := NewReceiptParser()
	text := "Shop\nTOTAL £12.10\nSubtotal £10.00\nTax £2.10\nCHANGE 0.90\nPaid by card 12.10\nCOFFEE BEANS  8.50"

	got := p.Parse(text)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "COFFEE BEANS", got.Items[0].Name)
	assert.Equal(t, "8.50", got.Items[0].Price)
}

func TestParseCurrency(t *testing.T) {
	p := NewReceiptParser()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"no symbol defaults to USD", "Shop\nMILK 1.99\nTotal: 1.99", "USD"},
		{"pound", "Shop\nTotal: £5.00", "GBP"},
		{"euro", "Shop\nTotal: €5.00", "EUR"},
		{"dollar", "Shop\nTotal: $5.00", "USD"},
		{"first symbol wins", "Price: £5.00 something later $3.00", "GBP"},
		{"first symbol wins reversed", "Price: $3.00 something later £5.00", "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.text)
			assert.Equal(t, tt.want, got.Currency)
			assert.Equal(t, []string{tt.want}, got.Currencies)
		})
	}
}

func TestParseItemFiltering(t *testing.T) {
	p := NewReceiptParser()

	tests := []struct {
		name string
		line string
		want []models.ParsedLineItem
	}{
		{"short name rejected", "12 3.50", nil},
		{"numeric name rejected", "123 456  3.50", nil},
		{"two char name rejected", "AB 3.50", nil},
		{"three char name accepted", "EGGS 3.50", []models.ParsedLineItem{{Name: "EGGS", Price: "3.50"}}},
		{"comma price normalized", "KAAS JONG  4,29", []models.ParsedLineItem{{Name: "KAAS JONG", Price: "4.29"}}},
		{"currency symbol before price", "TEA BOX £2.80", []models.ParsedLineItem{{Name: "TEA BOX", Price: "2.80"}}},
		{"no trailing price", "THANK YOU FOR SHOPPING", nil},
		{"integer amount rejected", "DEPOSIT 5", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Prepend a merchant line so the candidate is a body line.
			got := p.Parse("Shop\n" + tt.line)
			if tt.want == nil {
				assert.Empty(t, got.Items)
			} else {
				assert.Equal(t, tt.want, got.Items)
			}
		})
	}
}

func TestParseItemOrderAndDuplicatesPreserved(t *testing.T) {
	p := NewReceiptParser()
	text := "Shop\nAPPLES  1.00\nBANANAS  2.00\nAPPLES  1.00"

	got := p.Parse(text)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "APPLES", got.Items[0].Name)
	assert.Equal(t, "BANANAS", got.Items[1].Name)
	assert.Equal(t, "APPLES", got.Items[2].Name)
}

func TestParseDateTime(t *testing.T) {
	p := NewReceiptParser()

	tests := []struct {
		name     string
		text     string
		wantDate string
		wantTime string
	}{
		{"dashes", "Shop\n09-09-2025 14:32", "09-09-2025", "14:32"},
		{"slashes", "Shop\n9/12/23", "9/12/23", ""},
		{"dots", "Shop\n01.02.2024", "01.02.2024", ""},
		{"first date wins", "Shop\n01-01-2020\n02-02-2021", "01-01-2020", ""},
		{"first time wins", "Shop\nopen 08:00\nprinted 14:32", "", "08:00"},
		{"none", "Shop\nMILK 1.99", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.text)
			assert.Equal(t, tt.wantDate, got.Date)
			assert.Equal(t, tt.wantTime, got.Time)
		})
	}
}

func TestParseMonetaryFields(t *testing.T) {
	p := NewReceiptParser()

	tests := []struct {
		name         string
		text         string
		wantTotal    string
		wantSubtotal string
		wantTax      string
	}{
		{"colon separated", "Shop\nSubtotal: 10.00\nTax: 1.50\nTotal: 11.50", "11.50", "10.00", "1.50"},
		{"vat keyword", "Shop\nVAT £2.10\nTotal £12.10", "12.10", "", "2.10"},
		{"comma decimals normalized", "Shop\nSubtotal: 10,00\nTotal: 12,10", "12.10", "10.00", ""},
		{"missing keywords stay empty", "Shop\nMILK 1.99", "", "", ""},
		{"uppercase", "Shop\nSUBTOTAL 9.99\nTOTAL 10.99", "10.99", "9.99", ""},
		{"first total wins", "Shop\nTotal: 5.00\nTotal: 9.00", "5.00", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.text)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantSubtotal, got.Subtotal)
			assert.Equal(t, tt.wantTax, got.TaxAmount)
		})
	}
}

func TestParseMerchantAndAddress(t *testing.T) {
	p := NewReceiptParser()

	t.Run("merchant is first line", func(t *testing.T) {
		got := p.Parse("  PLUS Schouteten  \nMain Street 12")
		assert.Equal(t, "PLUS Schouteten", got.MerchantName)
		assert.Equal(t, got.MerchantName, got.CompanyName)
	})

	t.Run("street keyword qualifies short line", func(t *testing.T) {
		got := p.Parse("Shop\n12 Elm Rd\nmore text")
		assert.Equal(t, "12 Elm Rd", got.Address)
	})

	t.Run("lines without digits are skipped", func(t *testing.T) {
		got := p.Parse("Shop\nWelcome valued customer\nHigh Street")
		assert.Empty(t, got.Address)
	})

	t.Run("window excludes late lines", func(t *testing.T) {
		got := p.Parse("Shop\na\nb\nc\n42 Long Avenue Name Here")
		assert.Empty(t, got.Address)
	})
}

func TestParseEndToEnd(t *testing.T) {
	p := NewReceiptParser()
	text := "PLUS Schouteten\n" +
		"Main Street 12\n" +
		"09-09-2025 14:32\n" +
		"ENERGYDRINK 8-PACK  12.79\n" +
		"Statiegeld 1.20\n" +
		"Subtotal: 12.79\n" +
		"Total: 13.99\n"

	got := p.Parse(text)

	assert.Equal(t, "PLUS Schouteten", got.MerchantName)
	assert.Equal(t, "09-09-2025", got.Date)
	assert.Equal(t, "14:32", got.Time)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "12.79", got.Subtotal)
	assert.Equal(t, "13.99", got.Total)
	assert.Contains(t, got.Address, "Main Street 12")
	require.Len(t, got.Items, 2)
	assert.Equal(t, models.ParsedLineItem{Name: "ENERGYDRINK 8-PACK", Price: "12.79"}, got.Items[0])
	assert.Equal(t, models.ParsedLineItem{Name: "Statiegeld", Price: "1.20"}, got.Items[1])
	assert.Equal(t, "13.99", got.AmountPaid)
	assert.Equal(t, "Completed", got.TransactionStatus)
	assert.Equal(t, text, got.RawText)
}
