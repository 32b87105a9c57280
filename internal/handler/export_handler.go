package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bidrecon/internal/middleware"
	"bidrecon/internal/service"
)

// ExportHandler handles file download endpoints.
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

type renderFunc func(c *gin.Context, sessionID string, buf *bytes.Buffer) (string, error)

// serve renders one export into a buffer and streams it with the right
// headers. Buffering first means errors still produce a JSON error body
// instead of a truncated download.
func (h *ExportHandler) serve(c *gin.Context, contentType string, render renderFunc) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "NO_SESSION", "missing session context")
		return
	}

	var buf bytes.Buffer
	filename, err := render(c, sessionID, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Excel handles GET /api/v1/export/excel
func (h *ExportHandler) Excel(c *gin.Context) {
	h.serve(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		func(c *gin.Context, sessionID string, buf *bytes.Buffer) (string, error) {
			return h.exportService.WriteExcel(c.Request.Context(), sessionID, buf)
		})
}

// CSV handles GET /api/v1/export/csv
func (h *ExportHandler) CSV(c *gin.Context) {
	h.serve(c, "text/csv; charset=utf-8",
		func(c *gin.Context, sessionID string, buf *bytes.Buffer) (string, error) {
			return h.exportService.WriteCSV(c.Request.Context(), sessionID, buf)
		})
}

// Report handles GET /api/v1/export/report
func (h *ExportHandler) Report(c *gin.Context) {
	h.serve(c, "application/pdf",
		func(c *gin.Context, sessionID string, buf *bytes.Buffer) (string, error) {
			return h.exportService.WritePDF(c.Request.Context(), sessionID, buf)
		})
}
