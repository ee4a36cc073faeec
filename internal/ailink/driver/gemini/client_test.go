package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webinsights/webinsights/internal/ailink/driver"
)

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Generate(context.Background(), &driver.Request{Model: "test", Prompt: "hi"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestClientRequiresPrompt(t *testing.T) {
	client := NewClient("", "test-key")
	_, err := client.Generate(context.Background(), &driver.Request{Model: "test"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "prompt")
}

func TestClientSendsRequestAndParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		contents, ok := payload["contents"].([]any)
		require.True(t, ok)
		require.Len(t, contents, 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"part one "},{"text":"part two"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":7,"totalTokenCount":12}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	resp, err := client.Generate(context.Background(), &driver.Request{
		Model:  "gemini-2.0-flash",
		Prompt: "describe the page",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, "part one part two", resp.Text)
	require.Equal(t, "STOP", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	require.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestClientErrorsOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("quota exhausted"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	_, err := client.Generate(context.Background(), &driver.Request{Model: "test", Prompt: "hi"})
	require.Error(t, err)

	var perr *driver.ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	require.Contains(t, perr.Message, "quota exhausted")
}

func TestClientErrorsOnEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	_, err := client.Generate(context.Background(), &driver.Request{Model: "test", Prompt: "hi"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty response candidates")
}
