package errors

import (
	"errors"
	"net/http"
	"testing"

	gferrors "github.com/fulmenhq/gofulmen/errors"
)

func TestHTTPStatusFromCode(t *testing.T) {
	cases := []struct {
		code     string
		expected int
	}{
		{"INVALID_INPUT", http.StatusBadRequest},
		{"VALIDATION_FAILED", http.StatusBadRequest},
		{"NOT_FOUND", http.StatusNotFound},
		{"UNAUTHORIZED", http.StatusUnauthorized},
		{"METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed},
		{"RATE_LIMITED", http.StatusTooManyRequests},
		{"TIMEOUT", http.StatusGatewayTimeout},
		{"EXTRACTION_FAILED", http.StatusBadGateway},
		{"EXTERNAL_SERVICE_ERROR", http.StatusBadGateway},
		{"SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
		{"STORE_ERROR", http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := HTTPStatusFromCode(tc.code); got != tc.expected {
			t.Errorf("HTTPStatusFromCode(%q) = %d, want %d", tc.code, got, tc.expected)
		}
	}
}

func TestEnsureEnvelopePassesThroughEnvelopes(t *testing.T) {
	original := NewRateLimitError("too many requests")

	envelope := EnsureEnvelope(original)
	if envelope != original {
		t.Fatal("expected the original envelope to be returned unchanged")
	}
}

func TestEnsureEnvelopeWrapsPlainErrors(t *testing.T) {
	envelope := EnsureEnvelope(errors.New("boom"))

	if envelope.Code != "INTERNAL_ERROR" {
		t.Fatalf("expected INTERNAL_ERROR, got %s", envelope.Code)
	}
	if envelope.Context["wrapped_error"] != "boom" {
		t.Fatalf("expected wrapped_error context, got %v", envelope.Context)
	}
}

func TestEnsureCorrelationIDKeepsExisting(t *testing.T) {
	envelope := gferrors.NewErrorEnvelope("NOT_FOUND", "missing").
		WithCorrelationID("existing-id")

	result := EnsureCorrelationID(envelope, nil)
	if result.CorrelationID != "existing-id" {
		t.Fatalf("expected existing-id, got %s", result.CorrelationID)
	}
}

func TestEnsureCorrelationIDGeneratesFallback(t *testing.T) {
	envelope := gferrors.NewErrorEnvelope("NOT_FOUND", "missing")

	result := EnsureCorrelationID(envelope, nil)
	if result.CorrelationID == "" {
		t.Fatal("expected a fallback correlation id")
	}
}
