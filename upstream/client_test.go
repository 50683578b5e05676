package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, func()) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, "secret-token", 2*time.Second), srv.Close
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	client, closeFn := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(MaintenanceEvent{ID: 1})
	}))
	defer closeFn()

	_, err := client.GetEvent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestClientParsesErrorEnvelope(t *testing.T) {
	client, closeFn := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "event already approved", "code": "conflict"})
	}))
	defer closeFn()

	_, err := client.ApproveEvent(context.Background(), 5)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "event already approved", apiErr.Message)
	assert.Equal(t, "conflict", apiErr.Code)
}

func TestClientFallsBackToStatusText(t *testing.T) {
	client, closeFn := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>nginx</html>"))
	}))
	defer closeFn()

	_, err := client.GetEvent(context.Background(), 1)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
}

func TestClientRejectsMalformedBody(t *testing.T) {
	client, closeFn := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "not-a-number"`))
	}))
	defer closeFn()

	_, err := client.GetEvent(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestListEventsBuildsQuery(t *testing.T) {
	var gotQuery string
	client, closeFn := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]MaintenanceEvent{})
	}))
	defer closeFn()

	_, err := client.ListEvents(context.Background(), EventFilters{
		Status:    EventStatusInProgress,
		EventType: "Overhaul",
		Search:    "psv",
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "status=InProgress")
	assert.Contains(t, gotQuery, "event_type=Overhaul")
	assert.Contains(t, gotQuery, "search=psv")
}

func TestLoginInstallsToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TokenResponse{Token: "fresh-token", TokenType: "bearer"})
	})
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(AccountInfo{Username: "svc-maintdeck", Role: "service", Active: true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, "", 2*time.Second)
	require.False(t, client.HasToken())

	resp, err := client.Login(context.Background(), "svc-maintdeck", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", resp.Token)
	require.True(t, client.HasToken())

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "svc-maintdeck", me.Username)
	assert.Equal(t, "Bearer fresh-token", gotAuth)
}

func TestReconfigureSwitchesBackend(t *testing.T) {
	var oldCalls, newCalls int
	oldSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		oldCalls++
		json.NewEncoder(w).Encode(MaintenanceEvent{ID: 1, Title: "old"})
	}))
	defer oldSrv.Close()
	newSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		newCalls++
		json.NewEncoder(w).Encode(MaintenanceEvent{ID: 1, Title: "new"})
	}))
	defer newSrv.Close()

	client := NewClient(oldSrv.URL, "secret-token", 2*time.Second)

	event, err := client.GetEvent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "old", event.Title)

	client.Reconfigure(newSrv.URL, 5*time.Second)

	event, err = client.GetEvent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "new", event.Title)
	assert.Equal(t, 1, oldCalls)
	assert.Equal(t, 1, newCalls)
}

func TestRetryableClassification(t *testing.T) {
	assert.False(t, Retryable(&APIError{Status: http.StatusUnauthorized}))
	assert.False(t, Retryable(&APIError{Status: http.StatusNotFound}))
	assert.False(t, Retryable(&APIError{Status: http.StatusUnprocessableEntity}))
	assert.True(t, Retryable(&APIError{Status: http.StatusInternalServerError}))
	assert.True(t, Retryable(&APIError{Status: http.StatusServiceUnavailable}))
	assert.False(t, Retryable(ErrMalformedResponse))
	assert.True(t, Retryable(context.DeadlineExceeded))
}
