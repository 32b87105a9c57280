package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bidrecon/internal/middleware"
	"bidrecon/internal/service"
)

// AnalysisHandler handles reconciliation endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// Run handles POST /api/v1/analyze
func (h *AnalysisHandler) Run(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "NO_SESSION", "missing session context")
		return
	}

	result, err := h.analysisService.Run(c.Request.Context(), sessionID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Compare handles POST /api/v1/compare
func (h *AnalysisHandler) Compare(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "NO_SESSION", "missing session context")
		return
	}

	comparison, err := h.analysisService.CompareQuantities(c.Request.Context(), sessionID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, comparison)
}

// History handles GET /api/v1/history
func (h *AnalysisHandler) History(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "NO_SESSION", "missing session context")
		return
	}

	records, err := h.analysisService.History(c.Request.Context(), sessionID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, records)
}

// GetRecord handles GET /api/v1/history/:id
func (h *AnalysisHandler) GetRecord(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid analysis ID")
		return
	}

	record, err := h.analysisService.GetRecord(c.Request.Context(), recordID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, record)
}
