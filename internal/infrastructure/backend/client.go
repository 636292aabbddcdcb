// Package backend is the typed HTTP client for the retail backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/retail/storefront/internal/infrastructure/config"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HeaderRequestID carries the inbound request id downstream
const HeaderRequestID = "X-Request-ID"

const maxErrorBody = 64 << 10

func init() {
	// The backend reads money as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// RequestObserver is notified of every completed backend call
type RequestObserver interface {
	ObserveBackendRequest(client, method string, status int, elapsed time.Duration)
}

type tokenKey struct{}

// WithToken attaches the signed-in user's bearer token to ctx
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token attached to ctx
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client performs JSON requests against the backend base URL. It never retries.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	observer  RequestObserver
	logger    *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithObserver reports every call to o
func WithObserver(o RequestObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger sets the fallback logger used when ctx carries none
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the configured backend
func NewClient(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: u,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: cfg.UserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request describes one backend call
type request struct {
	resource string // metrics/tracing label, e.g. "products"
	method   string
	path     string
	query    url.Values
	body     any
}

// do executes req and decodes a JSON response into out when out is non-nil.
// Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, req request, out any) error {
	ctx, span := telemetry.StartSpan(ctx, "backend."+req.resource,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrBackendRoute, req.method+" "+req.path),
	)
	defer span.End()

	err := c.execute(ctx, req, out)
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

func (c *Client) execute(ctx context.Context, req request, out any) error {
	u := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", req.resource, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", req.resource, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if token := TokenFrom(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if rid := logger.GetRequestID(ctx); rid != "" {
		httpReq.Header.Set(HeaderRequestID, rid)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	log := logger.Enrich(ctx, c.loggerFor(ctx)).With(
		zap.String("backend_method", req.method),
		zap.String("backend_path", req.path),
		zap.Duration("backend_latency", elapsed),
	)
	if err != nil {
		c.observe(req, 0, elapsed)
		log.Warn("Backend request failed", zap.Error(err))
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()
	c.observe(req, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp)
		log.Warn("Backend request rejected",
			zap.Int("backend_status", resp.StatusCode),
			zap.String("backend_message", apiErr.Message),
		)
		return apiErr
	}
	log.Debug("Backend request completed", zap.Int("backend_status", resp.StatusCode))

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", req.resource, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.resource, err)
	}
	return nil
}

func (c *Client) observe(req request, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendRequest(req.resource, req.method, status, elapsed)
	}
}

func (c *Client) loggerFor(ctx context.Context) *zap.Logger {
	if l := logger.FromContext(ctx); l.Core().Enabled(zap.FatalLevel) {
		return l
	}
	return c.logger
}

// pathf joins escaped path segments under /api
func pathf(segments ...any) string {
	var b strings.Builder
	b.WriteString("/api")
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(fmt.Sprint(s)))
	}
	return b.String()
}
