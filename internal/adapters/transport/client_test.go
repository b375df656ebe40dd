package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosynth.app/internal/mocks"
	"geosynth.app/pkg/errors"
)

func newTestClient(t *testing.T, baseURL string, policies RetryPolicies, opts ...Option) (*Client, *[]time.Duration) {
	t.Helper()
	slept := &[]time.Duration{}
	c := NewClient(Config{
		Provider: "test",
		BaseURL:  baseURL,
		Timeout:  2 * time.Second,
		Retry:    policies,
	}, opts...)
	c.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return c, slept
}

func threeAttempts() RetryPolicies {
	return NewRetryPolicies(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second})
}

func TestClient_RequestWithRetry_StatusCodes(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedCalls int32
		retryable     bool
	}{
		{name: "server error is retried up to the limit", status: http.StatusInternalServerError, expectedCalls: 3, retryable: true},
		{name: "bad gateway is retried", status: http.StatusBadGateway, expectedCalls: 3, retryable: true},
		{name: "bad request is not retried", status: http.StatusBadRequest, expectedCalls: 1},
		{name: "not found is not retried", status: http.StatusNotFound, expectedCalls: 1},
		{name: "unauthorized is not retried", status: http.StatusUnauthorized, expectedCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"upstream said no"}`))
			}))
			defer server.Close()

			client, slept := newTestClient(t, server.URL, threeAttempts())

			resp, err := client.RequestWithRetry(context.Background(), Request{Endpoint: "/thing", Operation: "test.op"})

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.expectedCalls, atomic.LoadInt32(&calls))
			assert.Equal(t, tt.retryable, errors.IsRetryable(err))

			var appErr *errors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, errors.APIError, appErr.Type)
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.Equal(t, server.URL+"/thing", appErr.Endpoint)
			assert.Equal(t, "upstream said no", appErr.Message)
			assert.Equal(t, map[string]interface{}{"message": "upstream said no"}, appErr.Body)
			assert.Len(t, *slept, int(tt.expectedCalls)-1)
		})
	}
}

func TestClient_RequestWithRetry_RecoversAfterTransientFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	metrics := mocks.NewMetrics()
	client, slept := newTestClient(t, server.URL, threeAttempts(), WithMetrics(metrics))

	resp, err := client.RequestWithRetry(context.Background(), Request{Endpoint: "/thing", Operation: "test.op"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
	assert.Equal(t, 2, metrics.Count("retry:test:test.op"))
	assert.Equal(t, 1, metrics.Count("upstream:test:test.op:success"))
	assert.Equal(t, 2, metrics.Count("upstream:test:test.op:http_5xx"))
}

func TestClient_RequestWithRetry_PerOperationPolicy(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	policies := NewRetryPolicies(
		RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		map[string]int{"single.shot": 1},
	)
	client, _ := newTestClient(t, server.URL, policies)

	_, err := client.RequestWithRetry(context.Background(), Request{Endpoint: "/", Operation: "single.shot"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	_, err = client.RequestWithRetry(context.Background(), Request{Endpoint: "/", Operation: "other"})
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_NetworkFailureIsRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, slept := newTestClient(t, baseURL, threeAttempts())

	_, err := client.RequestWithRetry(context.Background(), Request{Endpoint: "/", Operation: "test.op"})

	require.Error(t, err)
	assert.True(t, errors.IsNetworkError(err))
	assert.Len(t, *slept, 2)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, _ := newTestClient(t, server.URL, NewRetryPolicies(RetryPolicy{MaxAttempts: 1}))

	_, err := client.Request(context.Background(), Request{Endpoint: "/slow", Timeout: 50 * time.Millisecond})

	require.Error(t, err)
	assert.True(t, errors.IsNetworkError(err))
	assert.True(t, errors.IsTimeoutError(err))
}

func TestClient_RateLimitWaitPastDeadlineIsTimeout(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, NewRetryPolicies(RetryPolicy{MaxAttempts: 1}),
		WithRateLimit(0.001, 1))

	_, err := client.Request(context.Background(), Request{Endpoint: "/first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Request(ctx, Request{Endpoint: "/second"})

	require.Error(t, err)
	assert.True(t, errors.IsNetworkError(err))
	assert.True(t, errors.IsTimeoutError(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_GetJSON_ShapeMismatchIsValidationError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"name": 42}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, threeAttempts())

	var out struct {
		Name string `json:"name"`
	}
	err := client.GetJSON(context.Background(), Request{Endpoint: "/"}, &out)

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.False(t, errors.IsRetryable(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Interceptors(t *testing.T) {
	var got http.Header
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, threeAttempts(),
		WithRequestInterceptor(QueryParamInterceptor("apiKey", "secret")),
		WithRequestInterceptor(HeaderInterceptor("X-Trace", "abc")),
		WithRequestInterceptor(UserAgentInterceptor("geosynth-test")),
	)

	_, err := client.Request(context.Background(), Request{
		Endpoint: "/search",
		Query:    url.Values{"q": {"japan"}},
		Headers:  map[string]string{"X-Extra": "1"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, got.Get(RequestIDHeader))
	assert.Equal(t, "abc", got.Get("X-Trace"))
	assert.Equal(t, "1", got.Get("X-Extra"))
	assert.Equal(t, "geosynth-test", got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "japan", gotQuery.Get("q"))
	assert.Equal(t, "secret", gotQuery.Get("apiKey"))
}

func TestClient_ResponseInterceptorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, threeAttempts(),
		WithResponseInterceptor(func(resp *Response) error {
			return errors.NewAPIError(http.StatusOK, resp.Endpoint, "envelope reported failure", nil)
		}))

	_, err := client.RequestWithRetry(context.Background(), Request{Endpoint: "/"})

	require.Error(t, err)
	assert.True(t, errors.IsAPIError(err))
	assert.False(t, errors.IsRetryable(err))
}

func TestClient_SecretsAreRedacted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	logger := mocks.NewLogger()
	client := NewClient(Config{Provider: "test", BaseURL: server.URL, Secrets: []string{"topsecret"}}, WithLogger(logger))

	_, err := client.Request(context.Background(), Request{Endpoint: "/v6/topsecret/latest/USD"})

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "topsecret")
	for _, entry := range logger.Entries() {
		assert.NotContains(t, fmt.Sprint(entry.Fields["target"]), "topsecret")
	}
	assert.NotEmpty(t, logger.Find("event", "error"))
}

func TestClient_AbsoluteEndpointBypassesBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(Config{Provider: "test", BaseURL: "http://unused.invalid"})

	resp, err := client.Request(context.Background(), Request{Endpoint: server.URL + "/abs"})

	require.NoError(t, err)
	assert.Equal(t, server.URL+"/abs", resp.Endpoint)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"message field", `{"message":"not found"}`, "not found"},
		{"nested error", `{"error":{"message":"bad key"}}`, "bad key"},
		{"error type", `{"result":"error","error-type":"invalid-key"}`, "invalid-key"},
		{"world bank list", `[{"message":[{"id":"120","value":"Invalid value"}]}]`, "Invalid value"},
		{"plain text", "  boom  ", "boom"},
		{"unknown json", `{"foo":"bar"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.raw)))
		})
	}
}
