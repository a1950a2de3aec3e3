package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	transport := NewTransport(srv.URL, "my-token")
	_, err := transport.Get("/anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer my-token", gotAuth)
}

func TestTransportParsesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "An entry is already open",
			"entryId": "entry-a",
		})
	}))
	defer srv.Close()

	transport := NewTransport(srv.URL, "token")
	_, err := transport.Post("/clock", map[string]any{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "An entry is already open", apiErr.Message)
	assert.Equal(t, "entry-a", apiErr.EntryID)
}

func TestTransportBuildsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{"entries": []any{}})
	}))
	defer srv.Close()

	transport := NewTransport(srv.URL, "token")
	_, err := transport.Get("/clock/history", map[string]string{"month": "2026-02"})
	require.NoError(t, err)
	assert.Equal(t, "month=2026-02", gotQuery)
}

func TestPingReportsReachability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}))
	client := NewArchtimeClient(srv.URL, "token")
	assert.True(t, client.Ping())

	srv.Close()
	assert.False(t, client.Ping())
}
