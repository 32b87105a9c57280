package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bidrecon/internal/domain"
	"bidrecon/internal/middleware"
	"bidrecon/internal/service"
)

// DocumentHandler handles document upload endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload handles POST /api/v1/documents/:kind
func (h *DocumentHandler) Upload(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "NO_SESSION", "missing session context")
		return
	}

	kind, ok := domain.ParseDocumentKind(c.Param("kind"))
	if !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_KIND", "document kind must be rfp, bid, or plan")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	result, err := h.documentService.Upload(c.Request.Context(), &service.DocumentUploadInput{
		SessionID: sessionID,
		Kind:      kind,
		File:      file,
		Header:    header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// GetDownloadURL handles GET /api/v1/documents/:id/url
func (h *DocumentHandler) GetDownloadURL(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "NO_SESSION", "missing session context")
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	url, err := h.documentService.GetDownloadURL(c.Request.Context(), sessionID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}
