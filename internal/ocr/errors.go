package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

var (
	// ErrRetriesExhausted wraps the last error once every attempt failed.
	ErrRetriesExhausted = errors.New("ocr retries exhausted")

	// ErrNoBackend is returned when a backend was not compiled in.
	ErrNoBackend = errors.New("ocr backend not available in this build")
)

// ServiceError is an error reported by the OCR service inside an otherwise
// successful response.
type ServiceError struct {
	Code      int
	Message   string
	Retryable bool
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ocr service error %d: %s", e.Code, e.Message)
}

// Status codes the Vision API reports for transient conditions.
const (
	rpcResourceExhausted = 8
	rpcUnavailable       = 14
)

var transientMarkers = []string{"429", "502", "503", "unavailable", "rate limit"}

// IsRetryable reports whether err is a transient rate-limit or availability
// failure worth retrying.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return se.Retryable
	}

	var ge *googleapi.Error
	if errors.As(err, &ge) {
		switch ge.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
