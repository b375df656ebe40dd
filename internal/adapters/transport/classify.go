package transport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"

	"geosynth.app/pkg/errors"
)

// Classify maps a raw failure onto the error taxonomy. Errors that are
// already classified pass through unchanged.
func Classify(err error, endpoint string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(fmt.Sprintf("request to %s timed out", endpoint), err)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.NewNetworkError(fmt.Sprintf("request to %s was cancelled", endpoint), err)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return errors.NewTimeoutError(fmt.Sprintf("request to %s timed out", endpoint), err)
		}
		return errors.NewNetworkError(fmt.Sprintf("no response from %s", endpoint), err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr) {
		return errors.Wrap(errors.ValidationError, fmt.Sprintf("unexpected response shape from %s", endpoint), err)
	}

	return errors.NewAppError(fmt.Sprintf("request to %s failed", endpoint), err)
}
