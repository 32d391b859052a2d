package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aurascan/receipt-scan/internal/config"
	"github.com/aurascan/receipt-scan/internal/database"
	"github.com/aurascan/receipt-scan/internal/middleware"
	"github.com/aurascan/receipt-scan/internal/models"
	"github.com/aurascan/receipt-scan/internal/services"
)

const maxUploadBytes = 10 * 1024 * 1024

// ReceiptHandler handles receipt upload and retrieval endpoints
type ReceiptHandler struct {
	db      *database.DB
	cfg     *config.Config
	storage *services.StorageService
	ocr     *services.OCRService
	parser  *services.ReceiptParser
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(
	db *database.DB,
	cfg *config.Config,
	storage *services.StorageService,
	ocr *services.OCRService,
	parser *services.ReceiptParser,
) *ReceiptHandler {
	return &ReceiptHandler{
		db:      db,
		cfg:     cfg,
		storage: storage,
		ocr:     ocr,
		parser:  parser,
	}
}

// UploadReceipt handles receipt image upload: the image is stored, run
// through OCR, and the recognized text parsed into a structured record.
// Parsing itself cannot fail; an unreadable image still produces a row
// with an all-empty parsed record.
func (h *ReceiptHandler) UploadReceipt(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "image file is required")
	}

	contentType := file.Header.Get("Content-Type")
	if !isValidImageType(contentType) {
		return Error(c, fiber.StatusBadRequest, "invalid image type. Supported: JPEG, PNG, WebP")
	}

	if file.Size > maxUploadBytes {
		return Error(c, fiber.StatusBadRequest, "file too large. Maximum size is 10MB")
	}

	objectKey := generateObjectKey(userID, file.Filename)

	src, err := file.Open()
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}
	defer src.Close()

	// Keep the bytes in memory for both the upload and OCR
	imageBytes, err := io.ReadAll(src)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}

	uploadResult, err := h.storage.Upload(c.Context(), objectKey, bytes.NewReader(imageBytes), file.Size, contentType)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to upload image")
	}

	receipt, err := h.db.CreateReceipt(c.Context(), &models.CreateReceiptRequest{
		UserID:           userID,
		S3Bucket:         uploadResult.Bucket,
		S3Key:            objectKey,
		OriginalFilename: file.Filename,
		ContentType:      contentType,
		FileSizeBytes:    file.Size,
	})
	if err != nil {
		// Clean up the stored image on failure
		if deleteErr := h.storage.Delete(c.Context(), objectKey); deleteErr != nil {
			log.Printf("Warning: Failed to clean up object %s after receipt creation failure: %v", objectKey, deleteErr)
		}
		return Error(c, fiber.StatusInternalServerError, "failed to create receipt record")
	}

	if err := h.db.UpdateReceiptStatus(c.Context(), receipt.ID, models.ReceiptStatusProcessing, nil, nil); err != nil {
		log.Printf("Warning: Failed to update receipt %d status to processing: %v", receipt.ID, err)
	}

	text, err := h.ocr.Recognize(imageBytes)
	if err != nil {
		errMsg := err.Error()
		if statusErr := h.db.UpdateReceiptStatus(c.Context(), receipt.ID, models.ReceiptStatusFailed, nil, &errMsg); statusErr != nil {
			log.Printf("Warning: Failed to update receipt %d status to failed: %v", receipt.ID, statusErr)
		}
		return Error(c, fiber.StatusInternalServerError, "OCR processing failed")
	}

	parsed := h.parser.Parse(text)

	if err := h.db.UpdateReceiptParsed(c.Context(), receipt.ID, parsed); err != nil {
		log.Printf("Warning: Failed to store parsed data for receipt %d: %v", receipt.ID, err)
		return Error(c, fiber.StatusInternalServerError, "failed to store parsed receipt")
	}

	imageURL, err := h.storage.GetPresignedURL(c.Context(), objectKey, 1*time.Hour)
	if err != nil {
		log.Printf("Warning: Failed to presign image URL for receipt %d: %v", receipt.ID, err)
	}

	return Success(c, &models.UploadReceiptResponse{
		ReceiptID: receipt.ID,
		Parsed:    parsed,
		ImageURL:  imageURL,
	})
}

// ListReceipts returns a paginated list of the user's receipts
func (h *ReceiptHandler) ListReceipts(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	params := &models.ReceiptListParams{
		UserID: userID,
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}

	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	receipts, total, err := h.db.ListReceipts(c.Context(), params)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list receipts")
	}

	return SuccessWithMeta(c, receipts, total, params.Limit, params.Offset)
}

// GetReceipt returns a single receipt
func (h *ReceiptHandler) GetReceipt(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid receipt ID")
	}

	receipt, err := h.db.GetReceiptByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrReceiptNotFound) {
			return Error(c, fiber.StatusNotFound, "receipt not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get receipt")
	}

	if receipt.UserID == nil || *receipt.UserID != userID {
		return Error(c, fiber.StatusForbidden, "access denied")
	}

	imageURL, presignErr := h.storage.GetPresignedURL(c.Context(), receipt.S3Key, 1*time.Hour)
	if presignErr == nil {
		receipt.ImageURL = &imageURL
	}

	return Success(c, receipt)
}

// DeleteReceipt removes a receipt and its stored image
func (h *ReceiptHandler) DeleteReceipt(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid receipt ID")
	}

	receipt, err := h.db.GetReceiptByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrReceiptNotFound) {
			return Error(c, fiber.StatusNotFound, "receipt not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get receipt")
	}

	if receipt.UserID == nil || *receipt.UserID != userID {
		return Error(c, fiber.StatusForbidden, "access denied")
	}

	// Remove the image but keep going if storage fails
	if err := h.storage.Delete(c.Context(), receipt.S3Key); err != nil {
		log.Printf("Warning: Failed to delete object %s for receipt %d: %v", receipt.S3Key, receipt.ID, err)
	}

	if err := h.db.DeleteReceipt(c.Context(), receipt.ID); err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to delete receipt")
	}

	return Success(c, fiber.Map{"deleted": true})
}

// GetReceiptImage returns a presigned URL for the receipt image
func (h *ReceiptHandler) GetReceiptImage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid receipt ID")
	}

	receipt, err := h.db.GetReceiptByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrReceiptNotFound) {
			return Error(c, fiber.StatusNotFound, "receipt not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get receipt")
	}

	if receipt.UserID == nil || *receipt.UserID != userID {
		return Error(c, fiber.StatusForbidden, "access denied")
	}

	url, err := h.storage.GetPresignedURL(c.Context(), receipt.S3Key, 1*time.Hour)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to generate image URL")
	}

	return Success(c, fiber.Map{"url": url})
}

// isValidImageType checks if the content type is a valid image
func isValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/webp",
	}

	for _, t := range validTypes {
		if strings.EqualFold(contentType, t) {
			return true
		}
	}
	return false
}

// generateObjectKey generates a unique storage key for a receipt image
func generateObjectKey(userID int, filename string) string {
	timestamp := time.Now().UnixNano()
	ext := ""
	if idx := strings.LastIndex(filename, "."); idx != -1 {
		ext = strings.ToLower(filename[idx:])
	}
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("receipts/%d/%d%s", userID, timestamp, ext)
}
