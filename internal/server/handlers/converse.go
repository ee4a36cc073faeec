package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/webinsights/webinsights/internal/core"
	apperrors "github.com/webinsights/webinsights/internal/errors"
	"github.com/webinsights/webinsights/internal/metrics"
)

// ConverseHandler handles POST /converse requests.
func (a *API) ConverseHandler(w http.ResponseWriter, r *http.Request) {
	var req core.ConversationalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "Request body must be valid JSON"))
		return
	}

	result, err := a.Engine.Converse(r.Context(), req)
	if err != nil {
		metrics.RecordConversation(false)
		respondWithError(w, r, translateEngineError(r, err))
		return
	}

	metrics.RecordConversation(true)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}
