package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"geosynth.app/pkg/errors"
)

func TestRetryPolicy_Backoff(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	assert.Equal(t, time.Duration(0), policy.Backoff(0))
	assert.Equal(t, time.Second, policy.Backoff(1))
	assert.Equal(t, 2*time.Second, policy.Backoff(2))
	assert.Equal(t, 4*time.Second, policy.Backoff(3))
	assert.Equal(t, 8*time.Second, policy.Backoff(4))
	assert.Equal(t, 10*time.Second, policy.Backoff(5))
	assert.Equal(t, 10*time.Second, policy.Backoff(60))
}

func TestRetryPolicies_For(t *testing.T) {
	policies := NewRetryPolicies(
		RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
		map[string]int{"economics.indicator": 1, "registry.byCode": 2},
		map[string]int{"registry.byCode": 4, "broken": 0},
	)

	assert.Equal(t, 1, policies.For("economics.indicator").MaxAttempts)
	assert.Equal(t, 4, policies.For("registry.byCode").MaxAttempts)
	assert.Equal(t, 3, policies.For("unknown").MaxAttempts)
	assert.Equal(t, 1, policies.For("broken").MaxAttempts)
	assert.Equal(t, time.Second, policies.For("registry.byCode").BaseDelay)

	var zero RetryPolicies
	assert.Equal(t, 1, zero.For("anything").MaxAttempts)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	already := errors.NewValidationError("bad")

	tests := []struct {
		name    string
		err     error
		kind    errors.ErrorType
		timeout bool
	}{
		{"deadline", context.DeadlineExceeded, errors.NetworkError, true},
		{"cancelled", fmt.Errorf("wrap: %w", context.Canceled), errors.NetworkError, false},
		{"net timeout", timeoutErr{}, errors.NetworkError, true},
		{"dial error", &net.OpError{Op: "dial", Err: fmt.Errorf("connection refused")}, errors.NetworkError, false},
		{"json syntax", &json.SyntaxError{}, errors.ValidationError, false},
		{"other", fmt.Errorf("boom"), errors.ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "http://x")
			assert.Equal(t, tt.kind, errors.KindOf(got))
			assert.Equal(t, tt.timeout, errors.IsTimeoutError(got))
		})
	}

	assert.Same(t, already, Classify(already, "http://x"))
	assert.NoError(t, Classify(nil, "http://x"))
}
