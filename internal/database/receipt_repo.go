package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/aurascan/receipt-scan/internal/models"
)

var (
	ErrReceiptNotFound = errors.New("receipt not found")
)

const receiptColumns = `
	id, user_id, status, company_name, address, receipt_date, receipt_time,
	currency, subtotal, tax_amount, total, items, raw_text, error_message,
	s3_bucket, s3_key, original_filename, content_type, file_size_bytes,
	processed_at, created_at, updated_at`

func scanReceipt(row pgx.Row) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	err := row.Scan(
		&receipt.ID, &receipt.UserID, &receipt.Status, &receipt.CompanyName,
		&receipt.Address, &receipt.ReceiptDate, &receipt.ReceiptTime,
		&receipt.Currency, &receipt.Subtotal, &receipt.TaxAmount, &receipt.Total,
		&receipt.Items, &receipt.RawText, &receipt.ErrorMessage,
		&receipt.S3Bucket, &receipt.S3Key, &receipt.OriginalFilename,
		&receipt.ContentType, &receipt.FileSizeBytes,
		&receipt.ProcessedAt, &receipt.CreatedAt, &receipt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if receipt.Items == nil {
		receipt.Items = []models.ParsedLineItem{}
	}
	return receipt, nil
}

// CreateReceipt creates a new receipt record for an uploaded image
func (db *DB) CreateReceipt(ctx context.Context, req *models.CreateReceiptRequest) (*models.Receipt, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO receipts (user_id, s3_bucket, s3_key, original_filename, content_type, file_size_bytes, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING`+receiptColumns,
		req.UserID, req.S3Bucket, req.S3Key, req.OriginalFilename, req.ContentType, req.FileSizeBytes,
	)
	return scanReceipt(row)
}

// UpdateReceiptStatus updates the processing status, optionally recording
// the OCR text and an error message
func (db *DB) UpdateReceiptStatus(ctx context.Context, id int, status models.ReceiptStatus, rawText, errorMessage *string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE receipts
		SET status = $2,
		    raw_text = COALESCE($3, raw_text),
		    error_message = $4,
		    updated_at = NOW()
		WHERE id = $1
	`, id, status, rawText, errorMessage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReceiptNotFound
	}
	return nil
}

// UpdateReceiptParsed stores the parsed record on a receipt and marks it
// completed
func (db *DB) UpdateReceiptParsed(ctx context.Context, id int, parsed *models.ParsedReceipt) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE receipts
		SET status = 'completed',
		    company_name = $2,
		    address = $3,
		    receipt_date = $4,
		    receipt_time = $5,
		    currency = $6,
		    subtotal = $7,
		    tax_amount = $8,
		    total = $9,
		    items = $10,
		    raw_text = $11,
		    error_message = NULL,
		    processed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`, id, parsed.CompanyName, parsed.Address, parsed.Date, parsed.Time,
		parsed.Currency, parsed.Subtotal, parsed.TaxAmount, parsed.Total,
		parsed.Items, parsed.RawText)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReceiptNotFound
	}
	return nil
}

// GetReceiptByID retrieves a receipt by ID
func (db *DB) GetReceiptByID(ctx context.Context, id int) (*models.Receipt, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT`+receiptColumns+`
		FROM receipts
		WHERE id = $1
	`, id)

	receipt, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return receipt, nil
}

// ListReceipts returns a page of a user's receipts, newest first
func (db *DB) ListReceipts(ctx context.Context, params *models.ReceiptListParams) ([]models.Receipt, int, error) {
	var total int
	err := db.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM receipts WHERE user_id = $1",
		params.UserID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT`+receiptColumns+`
		FROM receipts
		WHERE user_id = $1
		ORDER BY processed_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, params.UserID, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	receipts := []models.Receipt{}
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, 0, err
		}
		receipts = append(receipts, *receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return receipts, total, nil
}

// DeleteReceipt detaches a receipt from its owner. The row is kept with a
// NULL user_id rather than dropped.
func (db *DB) DeleteReceipt(ctx context.Context, id int) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE receipts
		SET user_id = NULL, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReceiptNotFound
	}
	return nil
}
