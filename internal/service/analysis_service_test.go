package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidrecon/internal/config"
	"bidrecon/internal/domain"
	"bidrecon/internal/service"
	"bidrecon/internal/session"
)

// stubAnalysisRepo records inserts in memory.
type stubAnalysisRepo struct {
	created   []domain.AnalysisRecord
	createErr error
}

func (r *stubAnalysisRepo) Create(_ context.Context, record *domain.AnalysisRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, *record)
	return nil
}

func (r *stubAnalysisRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.AnalysisRecord, error) {
	for i := range r.created {
		if r.created[i].ID == id {
			return &r.created[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubAnalysisRepo) ListBySession(_ context.Context, sessionID string, limit int) ([]domain.AnalysisRecord, error) {
	var out []domain.AnalysisRecord
	for _, rec := range r.created {
		if rec.SessionID == sessionID && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *stubAnalysisRepo) DeleteBySession(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

func analysisConfig() *config.AnalysisConfig {
	return &config.AnalysisConfig{
		QuantityTolerancePct:     5,
		HighSeverityThresholdPct: 15,
		PlanTolerancePct:         10,
		CandidateFloor:           0.35,
		MatchThreshold:           0.55,
		HistoryLimit:             20,
	}
}

func qty(v float64) *float64 { return &v }

func seedSession(t *testing.T, store *session.MemoryStore, id string, rfp, bid, plan []domain.LineItem) {
	t.Helper()
	_, err := store.Update(context.Background(), id, func(st *domain.SessionState) {
		st.ProjectInfo.ProjectName = "SH-130 Widening"
		st.RFPItems = rfp
		st.BidItems = bid
		st.PlanItems = plan
	})
	require.NoError(t, err)
}

func excavationItems() (rfp, bid []domain.LineItem) {
	rfp = []domain.LineItem{
		{ID: "100-1", Description: "Unclassified Excavation", Unit: domain.UnitCY, Quantity: qty(12500), Category: domain.CategoryEarthwork, Source: domain.SourceRFP},
	}
	bid = []domain.LineItem{
		{ID: "B-1", Description: "Unclassified Excavation", Unit: domain.UnitCY, Quantity: qty(12400), Category: domain.CategoryEarthwork, Source: domain.SourceBid},
	}
	return rfp, bid
}

func TestAnalysisService_Run(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, 0)
	defer store.Close()
	repo := &stubAnalysisRepo{}
	svc := service.NewAnalysisService(store, repo, analysisConfig())

	rfp, bid := excavationItems()
	seedSession(t, store, "s1", rfp, bid, nil)

	result, err := svc.Run(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	assert.Equal(t, domain.BidStatusReady, result.Report.Status)
	assert.NotEqual(t, uuid.Nil, result.AnalysisID)

	t.Run("report_stored_in_session", func(t *testing.T) {
		state, err := store.Get(context.Background(), "s1")
		require.NoError(t, err)
		require.NotNil(t, state.Report)
		assert.Equal(t, result.Report.Status, state.Report.Status)
	})

	t.Run("history_row_persisted", func(t *testing.T) {
		require.Len(t, repo.created, 1)
		rec := repo.created[0]
		assert.Equal(t, "s1", rec.SessionID)
		assert.Equal(t, "SH-130 Widening", rec.ProjectName)
		assert.Equal(t, result.AnalysisID, rec.ID)
		assert.NotEmpty(t, rec.Report)
	})
}

func TestAnalysisService_RunHistoryFailureIsNotFatal(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, 0)
	defer store.Close()
	repo := &stubAnalysisRepo{createErr: errors.New("db down")}
	svc := service.NewAnalysisService(store, repo, analysisConfig())

	rfp, bid := excavationItems()
	seedSession(t, store, "s1", rfp, bid, nil)

	result, err := svc.Run(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	assert.Equal(t, uuid.Nil, result.AnalysisID)
}

func TestAnalysisService_RunMissingCollections(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, 0)
	defer store.Close()
	svc := service.NewAnalysisService(store, &stubAnalysisRepo{}, analysisConfig())

	rfp, bid := excavationItems()

	t.Run("unknown_session", func(t *testing.T) {
		_, err := svc.Run(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("no_rfp_items", func(t *testing.T) {
		seedSession(t, store, "s2", nil, bid, nil)
		_, err := svc.Run(context.Background(), "s2")
		assert.ErrorIs(t, err, domain.ErrNoRFPItems)
	})

	t.Run("no_bid_items", func(t *testing.T) {
		seedSession(t, store, "s3", rfp, nil, nil)
		_, err := svc.Run(context.Background(), "s3")
		assert.ErrorIs(t, err, domain.ErrNoBidItems)
	})
}

func TestAnalysisService_CompareQuantities(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, 0)
	defer store.Close()
	svc := service.NewAnalysisService(store, &stubAnalysisRepo{}, analysisConfig())

	_, bid := excavationItems()
	plan := []domain.LineItem{
		{ID: "P-1", Description: "Unclassified Excavation", Unit: domain.UnitCY, Quantity: qty(12600), Category: domain.CategoryEarthwork, Source: domain.SourcePlan},
	}

	t.Run("no_plan_items", func(t *testing.T) {
		seedSession(t, store, "s1", nil, bid, nil)
		_, err := svc.CompareQuantities(context.Background(), "s1")
		assert.ErrorIs(t, err, domain.ErrNoPlanItems)
	})

	t.Run("within_plan_tolerance", func(t *testing.T) {
		seedSession(t, store, "s2", nil, bid, plan)
		cmp, err := svc.CompareQuantities(context.Background(), "s2")
		require.NoError(t, err)
		assert.Len(t, cmp.Matches, 1)
		assert.Empty(t, cmp.Overestimated)
		assert.Empty(t, cmp.Underestimated)
	})
}

func TestAnalysisService_History(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, 0)
	defer store.Close()
	repo := &stubAnalysisRepo{}
	svc := service.NewAnalysisService(store, repo, analysisConfig())

	rfp, bid := excavationItems()
	seedSession(t, store, "s1", rfp, bid, nil)

	_, err := svc.Run(context.Background(), "s1")
	require.NoError(t, err)

	records, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.BidStatusReady, records[0].Status)
}
