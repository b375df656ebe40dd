package transport

import "time"

// RetryPolicy bounds the attempts for one operation. MaxAttempts counts every
// call including the first.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Backoff returns the wait after the given failed attempt: base * 2^(attempt-1),
// capped at MaxDelay
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
		if delay <= 0 {
			return p.MaxDelay
		}
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// RetryPolicies resolves a policy per operation name
type RetryPolicies struct {
	Default    RetryPolicy
	Operations map[string]int
}

// NewRetryPolicies merges attempt counts; later maps win
func NewRetryPolicies(def RetryPolicy, attempts ...map[string]int) RetryPolicies {
	merged := make(map[string]int)
	for _, m := range attempts {
		for op, n := range m {
			merged[op] = n
		}
	}
	return RetryPolicies{Default: def, Operations: merged}
}

// For returns the policy for an operation, falling back to the default
func (p RetryPolicies) For(operation string) RetryPolicy {
	policy := p.Default
	if n, ok := p.Operations[operation]; ok {
		policy.MaxAttempts = n
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return policy
}
