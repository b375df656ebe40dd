package transport

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-attempt correlation id
const RequestIDHeader = "X-Request-ID"

// RequestIDInterceptor stamps a fresh id unless one is already set
func RequestIDInterceptor() RequestInterceptor {
	return func(req *http.Request) error {
		if req.Header.Get(RequestIDHeader) == "" {
			req.Header.Set(RequestIDHeader, uuid.NewString())
		}
		return nil
	}
}

// HeaderInterceptor sets a fixed header on every request
func HeaderInterceptor(key, value string) RequestInterceptor {
	return func(req *http.Request) error {
		req.Header.Set(key, value)
		return nil
	}
}

// QueryParamInterceptor adds a query parameter, typically an API key
func QueryParamInterceptor(key, value string) RequestInterceptor {
	return func(req *http.Request) error {
		q := req.URL.Query()
		q.Set(key, value)
		req.URL.RawQuery = q.Encode()
		return nil
	}
}

// UserAgentInterceptor identifies the service to upstream providers
func UserAgentInterceptor(userAgent string) RequestInterceptor {
	return func(req *http.Request) error {
		if userAgent != "" {
			req.Header.Set("User-Agent", userAgent)
		}
		return nil
	}
}
