package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Application error kinds. Every failure that leaves the transport boundary
// carries exactly one of these.

type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound

	// Upstream failures
	ErrorTypeNetwork
	ErrorTypeAPI
	ErrorTypeAuth

	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeNetwork:
		return "NETWORK_ERROR"
	case ErrorTypeAPI:
		return "API_ERROR"
	case ErrorTypeAuth:
		return "AUTH_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "APP_ERROR"
	}
}

// Short aliases used at call sites
const (
	ValidationError    = ErrorTypeValidation
	NotFoundError      = ErrorTypeNotFound
	NetworkError       = ErrorTypeNetwork
	APIError           = ErrorTypeAPI
	AuthError          = ErrorTypeAuth
	ConfigurationError = ErrorTypeConfiguration
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error

	// Set for API errors
	StatusCode int
	Endpoint   string
	Body       interface{}

	// Set for network errors caused by an expired deadline
	Timeout bool
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Type == ErrorTypeAPI && e.StatusCode != 0 {
		msg = fmt.Sprintf("%s [status %d, endpoint %s]", e.Message, e.StatusCode, e.Endpoint)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), msg)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

func NewNetworkError(message string, cause error) *AppError {
	return Wrap(NetworkError, message, cause)
}

func NewTimeoutError(message string, cause error) *AppError {
	err := Wrap(NetworkError, message, cause)
	err.Timeout = true
	return err
}

func NewAPIError(statusCode int, endpoint, message string, body interface{}) *AppError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &AppError{
		Type:       APIError,
		Message:    message,
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Body:       body,
	}
}

// NewAuthError is reserved for the authentication collaborator.
func NewAuthError(message string) *AppError {
	return New(AuthError, message)
}

func NewAppError(message string, cause error) *AppError {
	return Wrap(ErrorTypeUnknown, message, cause)
}

func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, ErrorTypeUnknown for unclassified errors.
func KindOf(err error) ErrorType {
	if appErr, ok := As(err); ok {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable reports whether another attempt may succeed: no response at
// all, or a 5xx response.
func IsRetryable(err error) bool {
	appErr, ok := As(err)
	if !ok {
		return false
	}
	switch appErr.Type {
	case NetworkError:
		return true
	case APIError:
		return appErr.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}

func IsValidationError(err error) bool {
	return KindOf(err) == ValidationError
}

func IsNotFoundError(err error) bool {
	return KindOf(err) == NotFoundError
}

func IsNetworkError(err error) bool {
	return KindOf(err) == NetworkError
}

func IsTimeoutError(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == NetworkError && appErr.Timeout
}

func IsAPIError(err error) bool {
	return KindOf(err) == APIError
}

func IsAuthError(err error) bool {
	return KindOf(err) == AuthError
}

func IsConfigurationError(err error) bool {
	return KindOf(err) == ConfigurationError
}

// StatusCode returns the upstream status of an API error, 0 otherwise.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok && appErr.Type == APIError {
		return appErr.StatusCode
	}
	return 0
}
