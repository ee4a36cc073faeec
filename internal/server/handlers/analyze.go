// Analysis and conversation handlers for the gateway API. Both decode a
// JSON body, hand off to the engine, and translate engine errors into the
// shared envelope taxonomy.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/webinsights/webinsights/internal/core"
	"github.com/webinsights/webinsights/internal/core/engine"
	apperrors "github.com/webinsights/webinsights/internal/errors"
	"github.com/webinsights/webinsights/internal/metrics"
)

// AnalysisEngine is the engine surface the handlers depend on. It is
// implemented by engine.Orchestrator.
type AnalysisEngine interface {
	Analyze(ctx context.Context, req core.WebsiteRequest) (*core.AnalysisWithSession, error)
	Converse(ctx context.Context, req core.ConversationalRequest) (*core.ConversationalResponse, error)
}

// API exposes the analysis endpoints over HTTP.
type API struct {
	Engine AnalysisEngine
}

// NewAPI creates the handler set around an analysis engine.
func NewAPI(eng AnalysisEngine) *API {
	return &API{Engine: eng}
}

// AnalyzeHandler handles POST /analyze requests.
func (a *API) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req core.WebsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "Request body must be valid JSON"))
		return
	}

	result, err := a.Engine.Analyze(r.Context(), req)
	if err != nil {
		metrics.RecordAnalysis(false, time.Since(start))
		respondWithError(w, r, translateEngineError(r, err))
		return
	}

	metrics.RecordAnalysis(true, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}

// translateEngineError maps engine and store failures onto envelope codes.
func translateEngineError(r *http.Request, err error) error {
	ctx := r.Context()

	var upstream *engine.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Stage {
		case engine.StageExtract:
			return apperrors.WrapExtractionFailed(ctx, upstream.Err, "Failed to fetch or parse the target webpage")
		default:
			return apperrors.WrapExternalService(ctx, upstream.Err, "Generative model request failed")
		}
	}

	switch {
	case errors.Is(err, core.ErrInvalidURL):
		return apperrors.WrapInvalidInput(ctx, err, "A valid http or https URL is required")
	case errors.Is(err, core.ErrMissingSessionID):
		return apperrors.WrapValidationError(ctx, err, "session_id is required")
	case errors.Is(err, core.ErrSessionNotFound):
		return apperrors.WrapNotFound(ctx, err, "No analysis session found for the supplied session_id")
	case errors.Is(err, core.ErrSessionCorrupted):
		return apperrors.WrapInternal(ctx, err, "Stored session could not be decoded")
	default:
		return apperrors.WrapStoreError(ctx, err, "Session store operation failed")
	}
}
