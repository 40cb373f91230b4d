package tubefetch

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyURL   = errors.New("please enter a YouTube URL")
	ErrInvalidURL = errors.New("please enter a valid YouTube URL")

	ErrNoActiveVideo    = errors.New("no active video, look up a URL first")
	ErrUnknownFormat    = errors.New("format is not offered for the active video")
	ErrLookupInProgress = errors.New("a lookup is already in progress")
	ErrSuperseded       = errors.New("superseded by a newer action")
	ErrClosed           = errors.New("controller closed")
)

// Backend operations, used to tell fetch failures from start failures.
const (
	OpVideoInfo = "video-info"
	OpDownload  = "download"
	OpProgress  = "progress"
)

const (
	msgFetchFailed   = "Failed to fetch video information"
	msgStartFailed   = "Failed to start download"
	msgUnreachable   = "Network error. Please check if the backend server is running."
	msgProgressError = "Download failed"
)

// ValidationError means the input was rejected before any network call was made.
type ValidationError struct {
	Input string
	Err   error
	// Reasons explains per URL pattern why the input did not match, if it was not empty.
	Reasons error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BackendError is a failure reported by the backend itself, in a well-formed response.
type BackendError struct {
	Op      string
	Message string
}

// NewBackendError fills in the generic message for op if the backend did not provide one.
func NewBackendError(op string, message string) *BackendError {
	if message == "" {
		switch op {
		case OpVideoInfo:
			message = msgFetchFailed
		case OpDownload:
			message = msgStartFailed
		default:
			message = fmt.Sprintf("%s failed", op)
		}
	}
	return &BackendError{Op: op, Message: message}
}

func (e *BackendError) Error() string {
	return e.Message
}

// UnreachableError means no usable response was received: transport failure, bad status without a body we
// understand, or a malformed body.
type UnreachableError struct {
	Op  string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// JobError is a terminal failure reported for a download job by the progress endpoint.
type JobError struct {
	VideoID VideoID
	Message string
}

func (e *JobError) Error() string {
	if e.Message == "" {
		return msgProgressError
	}
	return e.Message
}

// IsUnreachable returns true if err is (or wraps) an UnreachableError.
func IsUnreachable(err error) bool {
	var unreachable *UnreachableError
	return errors.As(err, &unreachable)
}

// Hint gives the message to show a user for err.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	if IsUnreachable(err) {
		return msgUnreachable
	}
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Message
	}
	return err.Error()
}
