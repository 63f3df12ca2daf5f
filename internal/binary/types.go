package binary

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDestinationNotDirectory is returned when the extraction target
	// exists and is not a directory.
	ErrDestinationNotDirectory = errors.New("destination is not a directory")
	// ErrUnsafePath is returned for archive entries that would be written
	// outside the extraction target.
	ErrUnsafePath = errors.New("archive entry escapes destination")
	// ErrArchiveFormat is returned for corrupt or unreadable archives.
	ErrArchiveFormat = errors.New("invalid archive")
	// ErrChecksumMismatch is returned when a file does not hash to the
	// published SHA-256.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// HTTPStatusError is returned when a server answers with anything but 200 OK.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status code %d (%s)", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the request is worth retrying.
func (e *HTTPStatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
