// Package transport is the single outbound path to external providers. Every
// failure leaving it is classified into the application error taxonomy.
package transport

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 10 << 20
	redacted       = "***"
)

// RequestInterceptor mutates an outgoing request before it is sent
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor inspects or rewrites a successful response
type ResponseInterceptor func(resp *Response) error

// Request describes one outbound call. Endpoint is absolute or relative to
// the client's base URL.
type Request struct {
	Method    string
	Endpoint  string
	Query     url.Values
	Body      interface{}
	Headers   map[string]string
	Operation string
	Timeout   time.Duration
}

// Response is a successful upstream response with its body fully read
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Endpoint   string
	Duration   time.Duration
}

// DecodeJSON unmarshals the body; a shape mismatch is a validation failure
func (r *Response) DecodeJSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(errors.ValidationError,
			fmt.Sprintf("unexpected response shape from %s", r.Endpoint), err)
	}
	return nil
}

// Config holds per-provider client settings
type Config struct {
	Provider    string
	BaseURL     string
	Timeout     time.Duration
	Headers     map[string]string
	Retry       RetryPolicies
	Secrets     []string
	Development bool
}

// Client issues requests for one provider
type Client struct {
	provider    string
	baseURL     string
	timeout     time.Duration
	headers     map[string]string
	retry       RetryPolicies
	secrets     []string
	development bool

	httpClient    *http.Client
	limiter       *rate.Limiter
	requestChain  []RequestInterceptor
	responseChain []ResponseInterceptor
	logger        ports.Logger
	metrics       ports.MetricsCollector
	tracer        trace.Tracer
	sleep         func(ctx context.Context, d time.Duration) error
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the structured logger
func WithLogger(logger ports.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector
func WithMetrics(metrics ports.MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithRequestInterceptor appends to the request chain
func WithRequestInterceptor(interceptor RequestInterceptor) Option {
	return func(c *Client) {
		c.requestChain = append(c.requestChain, interceptor)
	}
}

// WithResponseInterceptor appends to the response chain
func WithResponseInterceptor(interceptor ResponseInterceptor) Option {
	return func(c *Client) {
		c.responseChain = append(c.responseChain, interceptor)
	}
}

// WithRateLimit caps outbound requests per second; rps <= 0 disables it
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a client. A request-id interceptor always runs first.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	headers := map[string]string{"Accept": "application/json"}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	c := &Client{
		provider:     cfg.Provider,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		timeout:      timeout,
		headers:      headers,
		retry:        cfg.Retry,
		secrets:      cfg.Secrets,
		development:  cfg.Development,
		httpClient:   &http.Client{},
		requestChain: []RequestInterceptor{RequestIDInterceptor()},
		logger:       discardLogger{},
		tracer:       otel.Tracer("geosynth.app/transport"),
		sleep:        sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Provider returns the provider name this client serves
func (c *Client) Provider() string {
	return c.provider
}

// BaseURL returns the configured base address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs exactly one attempt
func (c *Client) Request(ctx context.Context, req Request) (*Response, error) {
	return c.do(ctx, req, 1)
}

// RequestWithRetry performs the request under the retry policy configured for
// req.Operation. Only retryable failures trigger another attempt.
func (c *Client) RequestWithRetry(ctx context.Context, req Request) (*Response, error) {
	policy := c.retry.For(req.Operation)

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		resp, err := c.do(ctx, req, attempt)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts || !errors.IsRetryable(err) {
			break
		}

		delay := policy.Backoff(attempt)
		c.logger.Warn("Retrying upstream request",
			ports.F("event", "retry"),
			ports.F("provider", c.provider),
			ports.F("operation", req.Operation),
			ports.F("attempt", attempt),
			ports.F("max_attempts", policy.MaxAttempts),
			ports.F("delay_ms", delay.Milliseconds()),
			ports.F("error", err.Error()))
		if c.metrics != nil {
			c.metrics.RecordUpstreamRetry(ctx, c.provider, req.Operation)
		}

		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			break
		}
	}

	return nil, lastErr
}

// GetJSON performs a retried request and decodes the JSON body into out
func (c *Client) GetJSON(ctx context.Context, req Request, out interface{}) error {
	resp, err := c.RequestWithRetry(ctx, req)
	if err != nil {
		return err
	}
	return resp.DecodeJSON(out)
}

func (c *Client) do(ctx context.Context, req Request, attempt int) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.buildURL(req.Endpoint, req.Query)
	if err != nil {
		return nil, errors.Wrap(errors.ValidationError, "invalid endpoint "+req.Endpoint, err)
	}
	logTarget := c.redact(target)

	ctx, span := c.tracer.Start(ctx, "upstream "+c.provider,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider", c.provider),
			attribute.String("operation", req.Operation),
			attribute.String("http.method", method),
			attribute.Int("attempt", attempt),
		))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			// Wait refuses up front when the next token lies past the deadline
			if ctx.Err() == nil {
				err = errors.NewTimeoutError(fmt.Sprintf("rate limit wait for %s would exceed the deadline", logTarget), err)
			}
			return nil, c.fail(ctx, span, req, method, logTarget, "", attempt, 0, Classify(err, logTarget))
		}
	}

	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := c.newHTTPRequest(callCtx, method, target, req)
	if err != nil {
		return nil, c.fail(ctx, span, req, method, logTarget, "", attempt, 0, err)
	}
	requestID := httpReq.Header.Get(RequestIDHeader)

	c.logger.Info("Upstream request started",
		ports.F("event", "request"),
		ports.F("provider", c.provider),
		ports.F("operation", req.Operation),
		ports.F("method", method),
		ports.F("target", logTarget),
		ports.F("attempt", attempt),
		ports.F("request_id", requestID))

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.fail(ctx, span, req, method, logTarget, requestID, attempt, time.Since(start), Classify(err, logTarget))
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close upstream response body", ports.F("provider", c.provider), ports.F("error", closeErr))
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	duration := time.Since(start)
	if err != nil {
		return nil, c.fail(ctx, span, req, method, logTarget, requestID, attempt, duration, Classify(err, logTarget))
	}

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		apiErr := errors.NewAPIError(httpResp.StatusCode, logTarget,
			errorMessage(raw), parseBody(raw, httpResp.Header.Get("Content-Type")))
		return nil, c.fail(ctx, span, req, method, logTarget, requestID, attempt, duration, apiErr)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
		Endpoint:   logTarget,
		Duration:   duration,
	}

	for _, interceptor := range c.responseChain {
		if err := interceptor(resp); err != nil {
			return nil, c.fail(ctx, span, req, method, logTarget, requestID, attempt, duration, Classify(err, logTarget))
		}
	}

	c.logger.Info("Upstream request completed",
		ports.F("event", "response"),
		ports.F("provider", c.provider),
		ports.F("operation", req.Operation),
		ports.F("method", method),
		ports.F("target", logTarget),
		ports.F("status", resp.StatusCode),
		ports.F("attempt", attempt),
		ports.F("duration_ms", duration.Milliseconds()),
		ports.F("request_id", requestID))
	if c.development {
		c.logger.Debug("Upstream response detail",
			ports.F("provider", c.provider),
			ports.F("content_type", resp.Header.Get("Content-Type")),
			ports.F("bytes", len(resp.Body)),
			ports.F("request_id", requestID))
	}

	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(ctx, c.provider, req.Operation, "success", duration)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	return resp, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, method, target string, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(errors.ValidationError, "request body cannot be serialized", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrap(errors.ValidationError, "invalid request", err)
	}

	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for _, interceptor := range c.requestChain {
		if err := interceptor(httpReq); err != nil {
			return nil, Classify(err, c.redact(target))
		}
	}

	return httpReq, nil
}

func (c *Client) fail(ctx context.Context, span trace.Span, req Request, method, target, requestID string,
	attempt int, duration time.Duration, err error) error {
	fields := []ports.Field{
		ports.F("event", "error"),
		ports.F("provider", c.provider),
		ports.F("operation", req.Operation),
		ports.F("method", method),
		ports.F("target", target),
		ports.F("attempt", attempt),
		ports.F("duration_ms", duration.Milliseconds()),
		ports.F("request_id", requestID),
		ports.F("error_kind", errors.KindOf(err).String()),
		ports.F("error", err.Error()),
	}
	if status := errors.StatusCode(err); status != 0 {
		fields = append(fields, ports.F("status", status))
	}
	c.logger.Error("Upstream request failed", fields...)

	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(ctx, c.provider, req.Operation, outcome(err), duration)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, errors.KindOf(err).String())

	return err
}

func (c *Client) buildURL(endpoint string, query url.Values) (string, error) {
	target := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			endpoint = "/" + endpoint
		}
		target = c.baseURL + endpoint
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		merged := u.Query()
		for k, values := range query {
			for _, v := range values {
				merged.Add(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}

func (c *Client) redact(target string) string {
	for _, secret := range c.secrets {
		if secret != "" {
			target = strings.ReplaceAll(target, secret, redacted)
			target = strings.ReplaceAll(target, url.QueryEscape(secret), redacted)
		}
	}
	return target
}

func outcome(err error) string {
	if status := errors.StatusCode(err); status != 0 {
		return fmt.Sprintf("http_%dxx", status/100)
	}
	switch errors.KindOf(err) {
	case errors.NetworkError:
		if errors.IsTimeoutError(err) {
			return "timeout"
		}
		return "network_error"
	case errors.ValidationError:
		return "invalid_response"
	default:
		return "error"
	}
}

// errorMessage pulls a human-readable message out of an error body
func errorMessage(raw []byte) string {
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"message", "status_message", "error-type", "title", "detail"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
		switch e := body["error"].(type) {
		case string:
			return e
		case map[string]interface{}:
			if s, ok := e["message"].(string); ok {
				return s
			}
		}
		return ""
	}

	// World Bank style: [{"message":[{"value":"..."}]}]
	var list []map[string]interface{}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		if msgs, ok := list[0]["message"].([]interface{}); ok && len(msgs) > 0 {
			if m, ok := msgs[0].(map[string]interface{}); ok {
				if s, ok := m["value"].(string); ok {
					return s
				}
			}
		}
	}

	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func parseBody(raw []byte, contentType string) interface{} {
	if len(raw) == 0 {
		return nil
	}
	if strings.Contains(contentType, "json") {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...ports.Field) {}
func (discardLogger) Info(string, ...ports.Field)  {}
func (discardLogger) Warn(string, ...ports.Field)  {}
func (discardLogger) Error(string, ...ports.Field) {}
