package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bidrecon/internal/domain"
	"bidrecon/internal/port"
)

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a new PostgreSQL-backed AnalysisRepository.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Create(ctx context.Context, record *domain.AnalysisRecord) error {
	query := `INSERT INTO analyses (
		id, session_id, project_name, status, completeness, accuracy,
		rfp_items, bid_items, plan_items, criticals, warnings, report, created_at
	) VALUES (
		:id, :session_id, :project_name, :status, :completeness, :accuracy,
		:rfp_items, :bid_items, :plan_items, :criticals, :warnings, :report, :created_at
	)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("analysisRepo.Create: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error) {
	var record domain.AnalysisRecord
	query := `SELECT * FROM analyses WHERE id = $1`
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByID: %w", err)
	}
	return &record, nil
}

func (r *analysisRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []domain.AnalysisRecord
	query := `SELECT id, session_id, project_name, status, completeness, accuracy,
		rfp_items, bid_items, plan_items, criticals, warnings, created_at
	FROM analyses
	WHERE session_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2`
	if err := r.db.SelectContext(ctx, &records, query, sessionID, limit); err != nil {
		return nil, fmt.Errorf("analysisRepo.ListBySession: %w", err)
	}
	return records, nil
}

func (r *analysisRepo) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM analyses WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("analysisRepo.DeleteBySession: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("analysisRepo.DeleteBySession rows: %w", err)
	}
	return n, nil
}
