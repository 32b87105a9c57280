package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid line item input")
	ErrConfiguration       = errors.New("analysis option out of range")
	ErrSessionNotFound     = errors.New("session not found")
	ErrNoRFPItems          = errors.New("no rfp line items in session")
	ErrNoBidItems          = errors.New("no bid line items in session")
	ErrNoPlanItems         = errors.New("no plan quantities in session")
	ErrNoAnalysis          = errors.New("no analysis report in session")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrExtractionFailed    = errors.New("document extraction failed")
)
