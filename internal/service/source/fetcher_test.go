package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Employee ID,Type,Timestamp\n"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(server.URL, 5*time.Second, time.Minute)

	body, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Employee ID,Type,Timestamp\n", string(body))
}

func TestFetch_NoURLConfigured(t *testing.T) {
	fetcher := NewHTTPFetcher("", 5*time.Second, time.Minute)

	_, err := fetcher.Fetch(context.Background())
	assert.ErrorIs(t, err, punch.ErrSourceUnavailable)
}

func TestFetch_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(server.URL, 5*time.Second, time.Minute)

	_, err := fetcher.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
