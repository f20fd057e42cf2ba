package ticktick

import (
	"errors"
	"fmt"
)

// maxErrorBody bounds how much of an error response body is kept.
const maxErrorBody = 512

// APIError is returned when TickTick answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ticktick: status %d", e.StatusCode)
	}
	return fmt.Sprintf("ticktick: status %d: %s", e.StatusCode, e.Body)
}

// IsAuthError reports whether the token or project access was refused.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func truncateBody(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}
	return string(body[:maxErrorBody]) + "..."
}
