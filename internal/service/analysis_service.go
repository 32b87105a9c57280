package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"bidrecon/internal/config"
	"bidrecon/internal/domain"
	"bidrecon/internal/port"
	"bidrecon/internal/recon"
)

// AnalysisRunResult pairs the report with its history record. AnalysisID is
// the zero UUID when the history insert failed.
type AnalysisRunResult struct {
	AnalysisID uuid.UUID              `json:"analysis_id,omitempty"`
	Report     *domain.AnalysisReport `json:"report"`
}

// AnalysisService defines the reconciliation contract.
type AnalysisService interface {
	// Run reconciles the session's collections and stores the report both in
	// the session and in the history table.
	Run(ctx context.Context, sessionID string) (*AnalysisRunResult, error)
	// CompareQuantities checks bid quantities directly against plan takeoffs.
	CompareQuantities(ctx context.Context, sessionID string) (*domain.QuantityComparison, error)
	History(ctx context.Context, sessionID string) ([]domain.AnalysisRecord, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error)
}

type analysisService struct {
	sessions port.SessionStore
	history  port.AnalysisRepository
	cfg      *config.AnalysisConfig
}

// NewAnalysisService creates a new AnalysisService implementation.
func NewAnalysisService(
	sessions port.SessionStore,
	history port.AnalysisRepository,
	cfg *config.AnalysisConfig,
) AnalysisService {
	return &analysisService{
		sessions: sessions,
		history:  history,
		cfg:      cfg,
	}
}

func (s *analysisService) options() recon.Options {
	return recon.Options{
		QuantityTolerancePct:     s.cfg.QuantityTolerancePct,
		HighSeverityThresholdPct: s.cfg.HighSeverityThresholdPct,
		PlanTolerancePct:         s.cfg.PlanTolerancePct,
		CandidateFloor:           s.cfg.CandidateFloor,
		MatchThreshold:           s.cfg.MatchThreshold,
	}
}

func (s *analysisService) Run(ctx context.Context, sessionID string) (*AnalysisRunResult, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(state.RFPItems) == 0 {
		return nil, domain.ErrNoRFPItems
	}
	if len(state.BidItems) == 0 {
		return nil, domain.ErrNoBidItems
	}

	log.Printf("analysisService.Run: session %s, %d rfp / %d bid / %d plan items",
		sessionID, len(state.RFPItems), len(state.BidItems), len(state.PlanItems))

	report, err := recon.Analyze(state.RFPItems, state.BidItems, state.PlanItems, s.options())
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Update(ctx, sessionID, func(st *domain.SessionState) {
		st.Report = report
	}); err != nil {
		return nil, fmt.Errorf("storing report: %w", err)
	}

	// History is best effort: the caller already has the report, a failed
	// insert should not fail the analysis.
	analysisID, err := s.persist(ctx, sessionID, state.ProjectInfo.ProjectName, report)
	if err != nil {
		log.Printf("analysisService.Run: persisting history for session %s failed: %v", sessionID, err)
	}

	return &AnalysisRunResult{AnalysisID: analysisID, Report: report}, nil
}

func (s *analysisService) persist(ctx context.Context, sessionID, projectName string, report *domain.AnalysisReport) (uuid.UUID, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshaling report: %w", err)
	}
	record := &domain.AnalysisRecord{
		ID:           uuid.New(),
		SessionID:    sessionID,
		ProjectName:  projectName,
		Status:       report.Status,
		Completeness: report.Completeness,
		Accuracy:     report.Accuracy,
		RFPItems:     report.Summary.RFPItems,
		BidItems:     report.Summary.BidItems,
		PlanItems:    report.Summary.PlanItems,
		Criticals:    len(report.CriticalIssues),
		Warnings:     len(report.Warnings),
		Report:       raw,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.history.Create(ctx, record); err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

func (s *analysisService) CompareQuantities(ctx context.Context, sessionID string) (*domain.QuantityComparison, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(state.BidItems) == 0 {
		return nil, domain.ErrNoBidItems
	}
	if len(state.PlanItems) == 0 {
		return nil, domain.ErrNoPlanItems
	}
	return recon.CompareQuantities(state.BidItems, state.PlanItems, s.options())
}

func (s *analysisService) History(ctx context.Context, sessionID string) ([]domain.AnalysisRecord, error) {
	limit := s.cfg.HistoryLimit
	if limit <= 0 {
		limit = 20
	}
	return s.history.ListBySession(ctx, sessionID, limit)
}

func (s *analysisService) GetRecord(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error) {
	return s.history.GetByID(ctx, id)
}
