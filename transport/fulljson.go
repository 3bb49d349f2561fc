package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/roach88/apiwrapper/auth"
)

// DefaultTimeout bounds one HTTP round trip.
const DefaultTimeout = 30 * time.Second

// FullJSON is the HTTP Transport speaking the API's "fulljson" dialect:
// every call is a POST of a JSON body, answered with
//
//	{"success": true, "response": ...}
//
// or an error body (see NewErrorFromBody).
type FullJSON struct {
	server  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a FullJSON transport.
type Option func(*FullJSON)

// WithHTTPClient replaces the HTTP client. Its Timeout is left untouched.
func WithHTTPClient(c *http.Client) Option {
	return func(t *FullJSON) { t.client = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *FullJSON) {
		t.client = &http.Client{Timeout: d, Transport: t.client.Transport}
	}
}

// WithRateLimit limits outgoing calls to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(t *FullJSON) {
		if rps <= 0 {
			t.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for per-call debug output.
func WithLogger(l *slog.Logger) Option {
	return func(t *FullJSON) { t.logger = l }
}

// NewFullJSON creates a transport for server, e.g. "https://shop.example.com".
// An empty server is allowed; calls then fail with ErrServerNotSet.
func NewFullJSON(server string, opts ...Option) *FullJSON {
	t := &FullJSON{
		server: server,
		client: &http.Client{Timeout: DefaultTimeout},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetServer changes the API server.
func (t *FullJSON) SetServer(server string) {
	t.server = server
}

// Server returns the configured API server.
func (t *FullJSON) Server() string {
	return t.server
}

// ResourceURL returns the server; resources are served from the same host.
func (t *FullJSON) ResourceURL() string {
	return t.server
}

func (t *FullJSON) String() string {
	return "FullJSON(" + t.server + ")"
}

func actionPath(action string) string {
	return "/?action=" + url.QueryEscape(action) + "&api=fulljson"
}

func requestPath(module, function string) string {
	return actionPath("request") +
		"&module=" + url.QueryEscape(module) +
		"&function=" + url.QueryEscape(function)
}

// Call invokes module::function. The auth must be valid.
func (t *FullJSON) Call(ctx context.Context, module, function string, params []any, a *auth.Auth) (any, error) {
	if a == nil || !a.IsValid() {
		return nil, ErrInvalidAuth
	}
	body := map[string]any{
		"auth":   a.Fields(),
		"params": nonNilParams(params),
	}
	return t.post(ctx, requestPath(module, function), body, module+"::"+function)
}

// CallAction invokes a named action; params are the whole request body.
func (t *FullJSON) CallAction(ctx context.Context, action string, params []any) (any, error) {
	return t.post(ctx, actionPath(action), nonNilParams(params), "Action("+action+")")
}

// nonNilParams makes nil encode as [] rather than null.
func nonNilParams(params []any) []any {
	if params == nil {
		return []any{}
	}
	return params
}

func (t *FullJSON) post(ctx context.Context, path string, body any, name string) (any, error) {
	if t.server == "" {
		return nil, ErrServerNotSet
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, NewConnectionError(CodeRequestSendError, "rate limiter: "+name, err)
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(t.server, "/")+path, bytes.NewReader(payload))
	if err != nil {
		return nil, NewConnectionError(CodeConnectionOpenError, "build request for "+name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, NewConnectionError(CodeRequestSendError, "send "+name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(CodeReadBodyError, "read "+name+" response", err)
	}

	t.logger.Debug("call to "+name,
		"duration_ms", time.Since(start).Milliseconds(),
		"status", resp.StatusCode,
	)

	return decodeEnvelope(raw, name, resp.StatusCode)
}

// decodeEnvelope interprets a fulljson response body.
func decodeEnvelope(raw []byte, name string, status int) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var envelope any
	if err := dec.Decode(&envelope); err != nil {
		return nil, NewConnectionError(CodeReadBodyError,
			fmt.Sprintf("decode %s response (HTTP %d)", name, status), err)
	}
	if err := validateEnvelope(envelope); err != nil {
		return nil, NewConnectionError(CodeReadBodyError,
			fmt.Sprintf("unexpected %s response envelope (HTTP %d)", name, status), err)
	}

	body := envelope.(map[string]any)
	if success, _ := body["success"].(bool); !success {
		return nil, NewErrorFromBody(body)
	}
	return body["response"], nil
}
