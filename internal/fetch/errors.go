package fetch

import (
	"errors"
	"fmt"
)

// ErrSizeUnknown means the size probe could not establish a total length, so
// the chunked path cannot run. Callers route this to the fallback download.
var ErrSizeUnknown = errors.New("could not determine file size")

// ErrCanceled means the context was canceled between chunks. The partial file
// on disk is valid for a later resume, so no fallback is attempted.
var ErrCanceled = errors.New("download canceled")

// StatusError is a server response the chunk loop does not tolerate: anything
// other than 200, 206, or a retryable 403. The server answered decisively, so
// retrying the same bytes unranged would not help.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// IsFatalStatus reports whether err carries a StatusError.
func IsFatalStatus(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}
