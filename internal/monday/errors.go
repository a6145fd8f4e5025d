package monday

import (
	"errors"
	"fmt"
)

// ErrCursorRepeated is returned when pagination hands back a cursor that was
// already followed.
var ErrCursorRepeated = errors.New("monday: items page cursor repeated")

// APIError is returned when the board API answers with an error status or a
// GraphQL error payload.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("monday api error (status %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("monday api error (status %d): %s", e.StatusCode, e.Message)
}
