package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// ActionRequest is the wire form of one dispatched action.
type ActionRequest struct {
	Action    string            `json:"action"`
	Params    automation.Params `json:"params,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
}

// Transport delivers an action request and returns the server's result.
// Implementations: HTTPTransport for the real automation daemon,
// SimulatedTransport for the offline fallback.
type Transport interface {
	Do(ctx context.Context, req ActionRequest) (*automation.Result, error)
}

// HTTPTransport dispatches actions to a remote automation daemon over
// HTTP/JSON.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport creates a transport for the daemon at baseURL.
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &HTTPTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Do posts the action to /browser/action. Network-level failures are
// wrapped in *TransportError; a decoded {success:false} result is returned
// as-is with a nil error.
func (t *HTTPTransport) Do(ctx context.Context, req ActionRequest) (*automation.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode action request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/browser/action", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build action request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	var result automation.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed response: %w", err)}
	}

	return &result, nil
}

// Health probes the daemon's health endpoint. Used to choose between the
// real and simulated transports at startup.
func (t *HTTPTransport) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &TransportError{Err: fmt.Errorf("health check returned %d", resp.StatusCode)}
	}
	return nil
}

// placeholderPNG is a 1x1 transparent PNG used as the simulated screenshot
// so the UI keeps rendering while the daemon is down.
const placeholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// SimulatedTransport synthesizes plausible results locally. It never
// returns an error and never claims a real session; the gateway only
// toggles its local active flag off simulated launch/close results.
type SimulatedTransport struct{}

// NewSimulatedTransport creates the offline fallback transport.
func NewSimulatedTransport() *SimulatedTransport {
	return &SimulatedTransport{}
}

// Do fabricates a success result appropriate to the action kind.
func (t *SimulatedTransport) Do(_ context.Context, req ActionRequest) (*automation.Result, error) {
	kind := automation.ActionKind(req.Action)

	switch kind {
	case automation.ActionLaunch:
		url := automation.EnsureValidURL(stringParam(req.Params, "url"))
		return &automation.Result{
			Success:    true,
			Message:    fmt.Sprintf("simulated navigation to %s", url),
			URL:        url,
			Title:      "Simulated Page",
			Screenshot: placeholderPNG,
		}, nil
	case automation.ActionScreenshot:
		return &automation.Result{
			Success:    true,
			Message:    "simulated screenshot",
			Screenshot: placeholderPNG,
		}, nil
	case automation.ActionDetectForms:
		return &automation.Result{
			Success: true,
			Message: "simulated form detection",
			Data:    []automation.FormField{},
		}, nil
	case automation.ActionDetectElements:
		return &automation.Result{
			Success: true,
			Message: "simulated element detection",
			Data:    []automation.PageElement{},
		}, nil
	case automation.ActionClose:
		return &automation.Result{Success: true, Message: "simulated session closed"}, nil
	default:
		return &automation.Result{
			Success: true,
			Message: fmt.Sprintf("simulated %s", req.Action),
		}, nil
	}
}

func stringParam(params automation.Params, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}
