package external

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"geosynth.app/internal/adapters/transport"
)

// recordingServer counts calls and remembers the last request
type recordingServer struct {
	*httptest.Server
	calls int32
	last  *http.Request
}

func (s *recordingServer) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

func newRecordingServer(t *testing.T, handler http.HandlerFunc) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&rs.calls, 1)
		rs.last = r.Clone(r.Context())
		handler(w, r)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// newTestTransport builds a real client against the server with near-zero backoff
func newTestTransport(baseURL string, attempts int, opts ...transport.Option) *transport.Client {
	return transport.NewClient(transport.Config{
		Provider: "test",
		BaseURL:  baseURL,
		Timeout:  2 * time.Second,
		Retry: transport.NewRetryPolicies(transport.RetryPolicy{
			MaxAttempts: attempts,
			BaseDelay:   time.Millisecond,
			MaxDelay:    2 * time.Millisecond,
		}),
	}, opts...)
}
