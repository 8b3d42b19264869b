package fetch

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a request exceeds its deadline.
var ErrTimeout = errors.New("fetch: deadline exceeded")

// StatusError reports a non-2xx response. The body is intentionally not
// carried; callers only branch on the code.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned status %d", e.URL, e.Code)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
