package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error kind onto the HTTP status returned to clients.
// Upstream failures are reported as gateway errors, never as the upstream's
// own status.
func statusFor(err error) (int, string) {
	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError, "Internal server error"
	}

	switch appErr.Type {
	case errors.ValidationError:
		return http.StatusBadRequest, appErr.Message
	case errors.NotFoundError:
		return http.StatusNotFound, appErr.Message
	case errors.NetworkError:
		if appErr.Timeout {
			return http.StatusGatewayTimeout, "Upstream service timed out"
		}
		return http.StatusServiceUnavailable, "Upstream service unavailable"
	case errors.APIError:
		switch appErr.StatusCode {
		case http.StatusNotFound:
			return http.StatusNotFound, "Upstream resource not found"
		case http.StatusTooManyRequests:
			return http.StatusServiceUnavailable, "Upstream rate limit reached"
		}
		return http.StatusBadGateway, "Upstream service error"
	case errors.AuthError:
		return http.StatusUnauthorized, appErr.Message
	case errors.ConfigurationError:
		return http.StatusServiceUnavailable, appErr.Message
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// handleError writes the mapped status and logs server-side failures
func (s *HTTPServerAdapter) handleError(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			ports.F("path", c.FullPath()),
			ports.F("status", status),
			ports.F("error_kind", errors.KindOf(err).String()),
			ports.F("error", err.Error()))
	}
	c.JSON(status, ErrorResponse{Error: message, Kind: errors.KindOf(err).String()})
}
