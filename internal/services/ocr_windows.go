//go:build windows

package services

import (
	"errors"
)

// OCRService converts receipt images to raw text (stub for Windows)
type OCRService struct{}

// NewOCRService creates a new OCR service (not available on Windows)
func NewOCRService() (*OCRService, error) {
	return nil, errors.New("OCR service is not available on Windows - run in Docker container")
}

// Recognize extracts text from raw image bytes
func (s *OCRService) Recognize(imageBytes []byte) (string, error) {
	return "", errors.New("OCR service is not available on Windows")
}

// RecognizeFile extracts text from an image on disk
func (s *OCRService) RecognizeFile(imagePath string) (string, error) {
	return "", errors.New("OCR service is not available on Windows")
}

// Close releases OCR resources
func (s *OCRService) Close() error {
	return nil
}
