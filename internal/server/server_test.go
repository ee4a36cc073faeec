package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webinsights/webinsights/internal/core"
	"github.com/webinsights/webinsights/internal/core/engine"
	"github.com/webinsights/webinsights/internal/core/store"
	apperrors "github.com/webinsights/webinsights/internal/errors"
	"github.com/webinsights/webinsights/internal/server/handlers"
)

const testAuthSecret = "integration-secret"

type fixedExtractor struct{}

func (fixedExtractor) HomepageText(context.Context, string) (string, error) {
	return "Acme builds widgets for small businesses.", nil
}

type fixedAnalyzer struct{}

func (fixedAnalyzer) AnalyzeContent(_ context.Context, _ string, canonicalURL string, _ []string) (*core.AnalysisResult, error) {
	industry := "Manufacturing"
	return &core.AnalysisResult{
		URL:               canonicalURL,
		AnalysisTimestamp: time.Now().UTC().Format(time.RFC3339),
		CompanyInfo:       core.CompanyInfo{Industry: &industry},
		ExtractedAnswers:  []core.ExtractedAnswer{},
	}, nil
}

func (fixedAnalyzer) Followup(_ context.Context, _ *core.Session, _ []core.ConversationTurn, query string) (string, []string, error) {
	return "They make widgets.", []string{"core_products_services"}, nil
}

func newTestServer(t *testing.T, limit int) *Server {
	t.Helper()

	mr := miniredis.RunT(t)
	st := store.New(store.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = st.Close() })

	sessions := store.NewSessions(st, time.Hour)

	orchestrator := &engine.Orchestrator{
		Extractor: fixedExtractor{},
		Analyzer:  fixedAnalyzer{},
		Sessions:  sessions,
	}

	health := handlers.NewHealthManager("test")
	health.RegisterChecker("store", st)

	return New(Options{
		Host:       "127.0.0.1",
		Port:       0,
		AuthSecret: testAuthSecret,
		Limiter:    &engine.RateLimiter{Store: st, Limit: limit, Window: time.Minute},
		API:        handlers.NewAPI(orchestrator),
		Health:     health,
	})
}

func analyzeRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/analyze",
		strings.NewReader(`{"url":"https://acme.example"}`))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := newTestServer(t, 5)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var body apperrors.HTTPErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected error code NOT_FOUND, got %s", body.Error.Code)
	}
}

func TestAnalyzeRequiresAuthentication(t *testing.T) {
	srv := newTestServer(t, 5)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, analyzeRequest(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnalyzeThenConverseRoundtrip(t *testing.T) {
	srv := newTestServer(t, 10)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, analyzeRequest(testAuthSecret))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var analysis core.AnalysisWithSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	require.NotEmpty(t, analysis.SessionID)
	assert.Equal(t, "https://acme.example/", analysis.URL)

	converseBody := `{"session_id":"` + analysis.SessionID + `","query":"What do they make?"}`
	req := httptest.NewRequest(http.MethodPost, "/converse", strings.NewReader(converseBody))
	req.Header.Set("Authorization", "Bearer "+testAuthSecret)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var conv core.ConversationalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.Equal(t, "https://acme.example/", conv.URL)
	assert.Equal(t, "They make widgets.", conv.AgentResponse)
	assert.Equal(t, []string{"core_products_services"}, conv.ContextSources)
}

func TestRateLimitAcrossEndpoints(t *testing.T) {
	srv := newTestServer(t, 5)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, analyzeRequest(testAuthSecret))
		require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
	}

	// The budget is shared between endpoints, so the sixth request is
	// rejected even on /converse.
	req := httptest.NewRequest(http.MethodPost, "/converse",
		strings.NewReader(`{"session_id":"any","query":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+testAuthSecret)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestHealthEndpointIsPublic(t *testing.T) {
	srv := newTestServer(t, 5)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVersionEndpointIsPublic(t *testing.T) {
	srv := newTestServer(t, 5)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
