package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidrecon/internal/domain"
)

func newTestStore(ttl time.Duration) (*MemoryStore, *time.Time) {
	s := NewMemoryStore(ttl, 0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMemoryStore_GetUnknownSession(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	defer s.Close()

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemoryStore_GetOrCreateThenGet(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	defer s.Close()

	created, err := s.GetOrCreate(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", created.ID)

	got, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestMemoryStore_UpdateExtendsTTL(t *testing.T) {
	s, now := newTestStore(time.Hour)
	defer s.Close()

	_, err := s.Update(context.Background(), "abc", func(st *domain.SessionState) {
		st.ProjectInfo.ProjectName = "FM 1960 Resurfacing"
	})
	require.NoError(t, err)

	// 50 minutes later the session is still alive because Update refreshed it.
	*now = now.Add(50 * time.Minute)
	_, err = s.Update(context.Background(), "abc", func(st *domain.SessionState) {})
	require.NoError(t, err)

	*now = now.Add(50 * time.Minute)
	got, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "FM 1960 Resurfacing", got.ProjectInfo.ProjectName)
}

func TestMemoryStore_ExpiredSessionIsReplaced(t *testing.T) {
	s, now := newTestStore(time.Hour)
	defer s.Close()

	_, err := s.Update(context.Background(), "abc", func(st *domain.SessionState) {
		st.RFPItems = []domain.LineItem{{ID: "1", Description: "Mobilization"}}
	})
	require.NoError(t, err)

	*now = now.Add(2 * time.Hour)

	_, err = s.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// GetOrCreate after expiry starts from an empty state.
	fresh, err := s.GetOrCreate(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, fresh.RFPItems)
}

func TestMemoryStore_ClearKeepsCreatedAt(t *testing.T) {
	s, now := newTestStore(time.Hour)
	defer s.Close()

	_, err := s.Update(context.Background(), "abc", func(st *domain.SessionState) {
		st.BidItems = []domain.LineItem{{ID: "1", Description: "Silt Fence"}}
		st.Report = &domain.AnalysisReport{Status: domain.BidStatusReady}
	})
	require.NoError(t, err)

	before, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)

	*now = now.Add(10 * time.Minute)
	require.NoError(t, s.Clear(context.Background(), "abc"))

	after, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, after.BidItems)
	assert.Nil(t, after.Report)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestMemoryStore_ClearUnknownSession(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	defer s.Close()

	assert.ErrorIs(t, s.Clear(context.Background(), "nope"), domain.ErrSessionNotFound)
}

func TestMemoryStore_CopiesAreIsolated(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	defer s.Close()

	_, err := s.Update(context.Background(), "abc", func(st *domain.SessionState) {
		st.RFPItems = []domain.LineItem{{ID: "1", Description: "Mobilization"}}
	})
	require.NoError(t, err)

	got, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	got.RFPItems[0].Description = "mutated"

	again, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Mobilization", again.RFPItems[0].Description)
}
