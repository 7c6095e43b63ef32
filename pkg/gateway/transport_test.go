package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

func TestHTTPTransportDo(t *testing.T) {
	var received ActionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/browser/action", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(automation.Result{Success: true, Message: "done", SessionID: "s1"})
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, time.Second)
	result, err := transport.Do(context.Background(), ActionRequest{
		Action:    "launch",
		Params:    automation.Params{"url": "example.com"},
		SessionID: "",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "s1", result.SessionID)
	assert.Equal(t, "launch", received.Action)
	assert.Equal(t, "example.com", received.Params["url"])
}

func TestHTTPTransportServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(automation.Result{Success: false, Message: "no active session"})
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, time.Second)
	result, err := transport.Do(context.Background(), ActionRequest{Action: "click"})

	require.NoError(t, err, "a server rejection is a result, not a transport error")
	assert.False(t, result.Success)
	assert.Equal(t, "no active session", result.Message)
}

func TestHTTPTransportUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // free the port so the dial fails

	transport := NewHTTPTransport(srv.URL, 200*time.Millisecond)
	_, err := transport.Do(context.Background(), ActionRequest{Action: "click"})

	var te *TransportError
	assert.True(t, errors.As(err, &te))
}

func TestHTTPTransportHealth(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, time.Second)
	assert.NoError(t, transport.Health(context.Background()))

	status = http.StatusServiceUnavailable
	assert.Error(t, transport.Health(context.Background()))
}

func TestSimulatedTransportResults(t *testing.T) {
	transport := NewSimulatedTransport()
	ctx := context.Background()

	launch, err := transport.Do(ctx, ActionRequest{Action: "launch", Params: automation.Params{"url": "example.com"}})
	require.NoError(t, err)
	assert.True(t, launch.Success)
	assert.Equal(t, "https://example.com", launch.URL)
	assert.NotEmpty(t, launch.Screenshot)
	assert.Empty(t, launch.SessionID)

	shot, err := transport.Do(ctx, ActionRequest{Action: "screenshot"})
	require.NoError(t, err)
	assert.Equal(t, placeholderPNG, shot.Screenshot)

	click, err := transport.Do(ctx, ActionRequest{Action: "click"})
	require.NoError(t, err)
	assert.True(t, click.Success)
	assert.Contains(t, click.Message, "simulated")
}
