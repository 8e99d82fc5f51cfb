package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4096

// classifyStatus maps an HTTP status to a domain sentinel.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusTooManyRequests, status >= 500:
		return domain.ErrNetworkFailure
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthenticated
	default:
		return domain.ErrValidationFailure
	}
}

// statusFailure builds a Failure from an error response.
func statusFailure(op string, resp *http.Response) *domain.Failure {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := http.StatusText(resp.StatusCode)
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		msg = body.Detail
	} else if len(raw) > 0 {
		msg = string(raw)
	}

	return &domain.Failure{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    msg,
		Err:        classifyStatus(resp.StatusCode),
	}
}

// transportFailure wraps a transport or encoding error.
func transportFailure(op string, err error) *domain.Failure {
	return &domain.Failure{Op: op, Message: err.Error(), Err: domain.ErrNetworkFailure}
}

// IsNotFound checks if the error indicates a missing remote record.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsRateLimited checks if the error is a 429 response.
func IsRateLimited(err error) bool {
	var f *domain.Failure
	if errors.As(err, &f) {
		return f.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsUnauthorized checks if the server rejected the bearer token.
func IsUnauthorized(err error) bool {
	var f *domain.Failure
	if errors.As(err, &f) {
		return f.StatusCode == http.StatusUnauthorized
	}
	return false
}

func opError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
