package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"bidrecon/internal/domain"
	"bidrecon/internal/export"
	"bidrecon/internal/port"
)

// ExportService defines the download contract. Each method streams one
// rendering of the session state to w and returns the suggested filename.
type ExportService interface {
	WriteExcel(ctx context.Context, sessionID string, w io.Writer) (string, error)
	WriteCSV(ctx context.Context, sessionID string, w io.Writer) (string, error)
	WritePDF(ctx context.Context, sessionID string, w io.Writer) (string, error)
}

type exportService struct {
	sessions port.SessionStore
}

// NewExportService creates a new ExportService implementation.
func NewExportService(sessions port.SessionStore) ExportService {
	return &exportService{sessions: sessions}
}

func (s *exportService) WriteExcel(ctx context.Context, sessionID string, w io.Writer) (string, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	log.Printf("exportService.WriteExcel: session %s", sessionID)
	if err := export.WriteWorkbook(w, state); err != nil {
		return "", fmt.Errorf("rendering workbook: %w", err)
	}
	return export.BuildFilename(state.ProjectInfo.ProjectName, "xlsx"), nil
}

func (s *exportService) WriteCSV(ctx context.Context, sessionID string, w io.Writer) (string, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	log.Printf("exportService.WriteCSV: session %s", sessionID)

	if _, err := w.Write(export.BOM); err != nil {
		return "", fmt.Errorf("writing BOM: %w", err)
	}
	cw := export.NewCSVWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	for _, items := range [][]domain.LineItem{state.RFPItems, state.BidItems, state.PlanItems} {
		if err := cw.WriteItems(items); err != nil {
			return "", fmt.Errorf("writing rows: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}
	return export.BuildFilename(state.ProjectInfo.ProjectName, "csv"), nil
}

func (s *exportService) WritePDF(ctx context.Context, sessionID string, w io.Writer) (string, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if state.Report == nil {
		return "", domain.ErrNoAnalysis
	}
	log.Printf("exportService.WritePDF: session %s", sessionID)
	if err := export.WriteReportPDF(w, state); err != nil {
		return "", fmt.Errorf("rendering report pdf: %w", err)
	}
	return export.BuildFilename(state.ProjectInfo.ProjectName, "pdf"), nil
}
