package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/webinsights/webinsights/internal/core"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := New(Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = s.Close() })
	return mr, s
}

func TestIncrWindowCountsWithinOneWindow(t *testing.T) {
	_, s := newTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		count, ttl, err := s.IncrWindow(ctx, "rate-limit:T1", time.Minute)
		require.NoError(t, err)
		require.Equal(t, i, count)
		require.Greater(t, ttl, time.Duration(0))
		require.LessOrEqual(t, ttl, time.Minute)
	}
}

func TestIncrWindowDoesNotExtendExpiry(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()

	_, first, err := s.IncrWindow(ctx, "rate-limit:T1", time.Minute)
	require.NoError(t, err)

	mr.FastForward(30 * time.Second)

	_, second, err := s.IncrWindow(ctx, "rate-limit:T1", time.Minute)
	require.NoError(t, err)
	require.Less(t, second, first)
}

func TestIncrWindowResetsAfterExpiry(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()

	count, _, err := s.IncrWindow(ctx, "rate-limit:T1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, _, err = s.IncrWindow(ctx, "rate-limit:T1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	mr.FastForward(time.Minute + time.Second)

	count, _, err = s.IncrWindow(ctx, "rate-limit:T1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestIncrWindowIsPerKey(t *testing.T) {
	_, s := newTestStore(t)
	ctx := context.Background()

	count, _, err := s.IncrWindow(ctx, "rate-limit:A", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, _, err = s.IncrWindow(ctx, "rate-limit:B", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestSessionRoundtrip(t *testing.T) {
	_, s := newTestStore(t)
	ctx := context.Background()
	sessions := NewSessions(s, time.Hour)

	industry := "Footwear"
	analysis := core.AnalysisResult{
		URL:               "https://example.com/",
		AnalysisTimestamp: "2025-06-01T12:00:00Z",
		CompanyInfo:       core.CompanyInfo{Industry: &industry, CoreProductsServices: []string{"shoes"}},
		ExtractedAnswers:  []core.ExtractedAnswer{},
	}

	id, err := sessions.Create(ctx, "https://example.com/", analysis)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/", got.URL)
	require.Equal(t, analysis, got.Analysis)
}

func TestSessionExpiresToNotFound(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()
	sessions := NewSessions(s, time.Minute)

	id, err := sessions.Create(ctx, "https://example.com/", core.AnalysisResult{URL: "https://example.com/"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = sessions.Get(ctx, id)
	require.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestSessionUnknownIDIsNotFound(t *testing.T) {
	_, s := newTestStore(t)
	sessions := NewSessions(s, time.Minute)

	_, err := sessions.Get(context.Background(), "b5cbd07e-05da-4e22-a9dd-16ec886842f3")
	require.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestSessionCorruptedPayloadIsDistinctFromNotFound(t *testing.T) {
	mr, s := newTestStore(t)
	sessions := NewSessions(s, time.Minute)

	require.NoError(t, mr.Set("broken-session", "not json at all"))

	_, err := sessions.Get(context.Background(), "broken-session")
	require.ErrorIs(t, err, core.ErrSessionCorrupted)
	require.NotErrorIs(t, err, core.ErrSessionNotFound)
}
