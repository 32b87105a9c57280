package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"bidrecon/internal/domain"
	"bidrecon/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"session_not_found", domain.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"not_found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"invalid_input", domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_LINE_ITEMS"},
		{"configuration", domain.ErrConfiguration, http.StatusBadRequest, "INVALID_ANALYSIS_OPTIONS"},
		{"no_rfp_items", domain.ErrNoRFPItems, http.StatusConflict, "NO_RFP_ITEMS"},
		{"no_bid_items", domain.ErrNoBidItems, http.StatusConflict, "NO_BID_ITEMS"},
		{"no_plan_items", domain.ErrNoPlanItems, http.StatusConflict, "NO_PLAN_ITEMS"},
		{"no_analysis", domain.ErrNoAnalysis, http.StatusConflict, "NO_ANALYSIS"},
		{"unsupported_file_type", domain.ErrUnsupportedFileType, http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE"},
		{"file_too_large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"upload_failed", domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{"extraction_failed", domain.ErrExtractionFailed, http.StatusBadGateway, "EXTRACTION_FAILED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestMapDomainError_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("running analysis: %w", domain.ErrNoBidItems)
	status, code, _ := handler.MapDomainError(wrapped)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "NO_BID_ITEMS", code)
}
