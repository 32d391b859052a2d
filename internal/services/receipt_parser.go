package services

import (
	"regexp"
	"strings"

	"github.com/aurascan/receipt-scan/internal/models"
)

var (
	// currencySymbols maps receipt glyphs to ISO currency codes. The first
	// symbol in raw character order decides the whole receipt, even when
	// OCR noise produces mixed symbols.
	currencySymbols = map[rune]string{
		'£': "GBP",
		'$': "USD",
		'€': "EUR",
	}

	// defaultCurrency applies when no symbol appears anywhere in the text.
	defaultCurrency = "USD"
)

const (
	// minItemNameLen is the trimmed name length an item line must exceed.
	// Guards against stray numeric OCR noise becoming a product.
	minItemNameLen = 2

	// addressWindowStart/End bound the early lines (merchant line excluded)
	// scanned for address candidates.
	addressWindowStart = 1
	addressWindowEnd   = 4
)

// ReceiptParser extracts structured receipt data from OCR text. It holds
// only compiled regexps, so a single instance is safe for concurrent use.
type ReceiptParser struct {
	dateRe     *regexp.Regexp
	timeRe     *regexp.Regexp
	totalRe    *regexp.Regexp
	subtotalRe *regexp.Regexp
	taxRe      *regexp.Regexp
	itemRe     *regexp.Regexp
	rejectRe   *regexp.Regexp
	numericRe  *regexp.Regexp
	digitRe    *regexp.Regexp
	streetRe   *regexp.Regexp
}

// NewReceiptParser creates a new receipt parser
func NewReceiptParser() *ReceiptParser {
	return &ReceiptParser{
		// Raw matched substring is kept verbatim; day/month order is not
		// validated or normalized here.
		dateRe: regexp.MustCompile(`\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}`),
		timeRe: regexp.MustCompile(`\d{1,2}:\d{2}`),
		// "total" must not be preceded by a letter, otherwise the pattern
		// would consume a Subtotal line.
		totalRe:    regexp.MustCompile(`(?im)(?:^|[^a-z])total[:\s]*[£$€]?\s*(\d+[.,]\d{2})`),
		subtotalRe: regexp.MustCompile(`(?i)subtotal[:\s]*[£$€]?\s*(\d+[.,]\d{2})`),
		taxRe:      regexp.MustCompile(`(?i)(?:tax|vat)[:\s]*[£$€]?\s*(\d+[.,]\d{2})`),
		// Trailing-price pattern: name, whitespace, optional symbol, amount
		// at line end.
		itemRe: regexp.MustCompile(`^(.+?)\s+[£$€]?(\d+[.,]\d{2})$`),
		// Lines carrying these keywords are totals/headers, never items.
		rejectRe:  regexp.MustCompile(`(?i)total|subtotal|tax|vat|change|paid`),
		numericRe: regexp.MustCompile(`^[\d\s]+$`),
		digitRe:   regexp.MustCompile(`\d`),
		streetRe:  regexp.MustCompile(`(?i)street|road|lane|avenue|st\b|rd\b`),
	}
}

// Parse extracts a structured receipt record from raw OCR text. Every
// field is independently best-effort: absent data degrades to an empty
// value, never an error. Parsing is deterministic for a given input.
func (p *ReceiptParser) Parse(text string) *models.ParsedReceipt {
	result := &models.ParsedReceipt{
		Dates:      []string{},
		Times:      []string{},
		Currencies: []string{},
		Items:      []models.ParsedLineItem{},
		TaxVAT:     []models.TaxEntry{},
		RawText:    text,
	}

	// Whitespace-only input yields an all-empty record; the currency
	// default only applies once there is text to scan.
	if strings.TrimSpace(text) == "" {
		return result
	}

	lines := p.normalizeLines(text)

	// First line is assumed to be the merchant name
	if len(lines) > 0 {
		result.CompanyName = lines[0]
		result.MerchantName = lines[0]
	}
	result.Address = p.extractAddress(lines)

	if date := p.dateRe.FindString(text); date != "" {
		result.Date = date
		result.Dates = []string{date}
	}
	if t := p.timeRe.FindString(text); t != "" {
		result.Time = t
		result.Times = []string{t}
	}

	result.Currency = p.detectCurrency(text)
	result.Currencies = []string{result.Currency}

	result.Subtotal = p.extractAmount(p.subtotalRe, text)
	result.SubtotalAmount = result.Subtotal
	result.TaxAmount = p.extractAmount(p.taxRe, text)
	if result.TaxAmount != "" {
		result.TaxVAT = []models.TaxEntry{{Amount: result.TaxAmount}}
	}
	result.Total = p.extractAmount(p.totalRe, text)
	result.TotalAmount = result.Total
	result.AmountPaid = result.Total

	result.Items = p.extractItems(lines)

	result.TransactionStatus = "Completed"
	result.Change = "0.00"

	return result
}

// normalizeLines splits raw text into trimmed, non-empty lines. Order is
// preserved and repeated lines are kept.
func (p *ReceiptParser) normalizeLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// detectCurrency scans the whole text for the first known currency
// symbol in raw character order.
func (p *ReceiptParser) detectCurrency(text string) string {
	for _, r := range text {
		if code, ok := currencySymbols[r]; ok {
			return code
		}
	}
	return defaultCurrency
}

// extractAmount returns the first captured amount for a monetary field,
// normalized to "." as the decimal separator.
func (p *ReceiptParser) extractAmount(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], ",", ".")
}

// extractItems collects product lines in original order. Keyword lines
// are rejected before the price pattern runs, so "Total £12.00" can never
// become an item named "Total".
func (p *ReceiptParser) extractItems(lines []string) []models.ParsedLineItem {
	items := []models.ParsedLineItem{}
	for _, line := range lines {
		if p.rejectRe.MatchString(line) {
			continue
		}
		m := p.itemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if len(name) <= minItemNameLen || p.numericRe.MatchString(name) {
			continue
		}
		items = append(items, models.ParsedLineItem{
			Name:  name,
			Price: strings.ReplaceAll(m[2], ",", "."),
		})
	}
	return items
}

// extractAddress joins candidate lines from a fixed window of early
// lines. A candidate must contain a digit and either be reasonably long
// or mention a street type. Heuristic, not a structured address parser.
func (p *ReceiptParser) extractAddress(lines []string) string {
	end := addressWindowEnd
	if end > len(lines) {
		end = len(lines)
	}
	var candidates []string
	for i := addressWindowStart; i < end; i++ {
		line := lines[i]
		if !p.digitRe.MatchString(line) {
			continue
		}
		if len(line) > 10 || p.streetRe.MatchString(line) {
			candidates = append(candidates, line)
		}
	}
	return strings.Join(candidates, ", ")
}
