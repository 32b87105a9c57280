package port

import (
	"context"

	"github.com/google/uuid"

	"bidrecon/internal/domain"
)

// AnalysisRepository persists completed analyses for the history view.
type AnalysisRepository interface {
	Create(ctx context.Context, record *domain.AnalysisRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error)
	// ListBySession returns records newest first, capped at limit.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.AnalysisRecord, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
}
