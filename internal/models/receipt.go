package models

import (
	"time"
)

// ReceiptStatus represents the processing status of a receipt
type ReceiptStatus string

const (
	ReceiptStatusPending    ReceiptStatus = "pending"
	ReceiptStatusProcessing ReceiptStatus = "processing"
	ReceiptStatusCompleted  ReceiptStatus = "completed"
	ReceiptStatusFailed     ReceiptStatus = "failed"
)

// ParsedLineItem is a single product line extracted from OCR text.
// Price is a normalized decimal string with "." as the separator.
type ParsedLineItem struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// TaxEntry holds one detected tax/VAT amount
type TaxEntry struct {
	Amount string `json:"amount"`
}

// ParsedReceipt is the structured record produced by the receipt text
// parser. Every field is best-effort: a missing match leaves the field
// empty rather than failing the parse. All keys are always present in
// the JSON form so consumers never have to probe for them.
type ParsedReceipt struct {
	CompanyName       string           `json:"company_name"`
	MerchantName      string           `json:"merchant_name"`
	Address           string           `json:"address"`
	Phone             string           `json:"phone"`
	Date              string           `json:"date"`
	Dates             []string         `json:"dates"`
	Time              string           `json:"time"`
	Times             []string         `json:"times"`
	Currency          string           `json:"currency"`
	Currencies        []string         `json:"currencies"`
	TransactionID     string           `json:"transaction_id"`
	PaymentMethod     string           `json:"payment_method"`
	CardNumber        string           `json:"card_number"`
	TransactionStatus string           `json:"transaction_status"`
	Items             []ParsedLineItem `json:"items"`
	Subtotal          string           `json:"subtotal"`
	SubtotalAmount    string           `json:"subtotal_amount"`
	TaxAmount         string           `json:"tax_amount"`
	TaxVAT            []TaxEntry       `json:"tax_vat"`
	Total             string           `json:"total"`
	TotalAmount       string           `json:"total_amount"`
	AmountPaid        string           `json:"amount_paid"`
	Change            string           `json:"change"`
	RawText           string           `json:"raw_text"`
}

// Receipt represents a stored receipt row
type Receipt struct {
	ID               int              `json:"id"`
	UserID           *int             `json:"user_id,omitempty"`
	Status           ReceiptStatus    `json:"status"`
	CompanyName      string           `json:"company_name"`
	Address          string           `json:"address"`
	ReceiptDate      string           `json:"date"`
	ReceiptTime      string           `json:"time"`
	Currency         string           `json:"currency"`
	Subtotal         string           `json:"subtotal"`
	TaxAmount        string           `json:"tax_amount"`
	Total            string           `json:"total"`
	Items            []ParsedLineItem `json:"items"`
	RawText          *string          `json:"raw_text,omitempty"`
	ErrorMessage     *string          `json:"error_message,omitempty"`
	S3Bucket         string           `json:"s3_bucket"`
	S3Key            string           `json:"s3_key"`
	OriginalFilename *string          `json:"original_filename,omitempty"`
	ContentType      *string          `json:"content_type,omitempty"`
	FileSizeBytes    *int64           `json:"file_size_bytes,omitempty"`
	ProcessedAt      time.Time        `json:"processed_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	ImageURL         *string          `json:"image_url,omitempty"`
}

// CreateReceiptRequest is used when uploading a receipt
type CreateReceiptRequest struct {
	UserID           int
	S3Bucket         string
	S3Key            string
	OriginalFilename string
	ContentType      string
	FileSizeBytes    int64
}

// ReceiptListParams contains parameters for listing receipts
type ReceiptListParams struct {
	UserID int
	Limit  int
	Offset int
}

// UploadReceiptResponse is returned after a successful upload + parse
type UploadReceiptResponse struct {
	ReceiptID int            `json:"receipt_id"`
	Parsed    *ParsedReceipt `json:"parsed"`
	ImageURL  string         `json:"image_url,omitempty"`
}
