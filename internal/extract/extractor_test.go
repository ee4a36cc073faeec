package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHomepageTextFlattensMarkup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Acme</title><style>p{color:red}</style></head>
<body><h1>Acme  Widgets</h1><script>var x = "ignore me";</script><p>We sell widgets.</p></body></html>`))
	}))
	defer server.Close()

	client := NewClient()
	client.HTTPClient = server.Client()

	text, err := client.HomepageText(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "Acme Widgets We sell widgets.", text)
}

func TestHomepageTextRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient()
	client.HTTPClient = server.Client()

	_, err := client.HomepageText(context.Background(), server.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 503")
}

func TestHomepageTextSurfacesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient()

	_, err := client.HomepageText(context.Background(), server.URL)
	require.Error(t, err)
}

func TestHomepageTextSendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	client := NewClient()
	client.HTTPClient = server.Client()
	client.UserAgent = "webinsights/test"

	_, err := client.HomepageText(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "webinsights/test", gotUA)
}
