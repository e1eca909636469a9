package server

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is returned when a request fails validation before reaching the engine
var ErrInvalidRequest = errors.New("invalid request")

// ErrorKind identifies a class of engine failure that can be explained to a caller
type ErrorKind string

const (
	ErrorKindPrivateVideo      ErrorKind = "private_video"
	ErrorKindUnavailable       ErrorKind = "unavailable"
	ErrorKindAgeRestricted     ErrorKind = "age_restricted"
	ErrorKindAuthRequired      ErrorKind = "auth_required"
	ErrorKindFormatUnavailable ErrorKind = "format_unavailable"
	ErrorKindSizeExceeded      ErrorKind = "size_exceeded"
	ErrorKindUnknown           ErrorKind = "unknown"
)

// Operation is the service operation a failure happened in. Some messages differ between them.
type Operation string

const (
	OperationInfo     Operation = "info"
	OperationDownload Operation = "download"
)

const (
	msgPrivateDownload   = "This video is private and cannot be downloaded."
	msgPrivateInfo       = "This video is private and cannot be accessed."
	msgUnavailable       = "This video is unavailable or has been removed."
	msgAgeRestricted     = "This video is age-restricted and cannot be downloaded."
	msgSizeExceeded      = "Video exceeds maximum file size of %dMB."
	msgFormatUnavailable = "No downloadable video found. This may be due to: 1) The video requires login/authentication, 2) Geographic restrictions, 3) The platform has blocked access. Try a different video or platform."
	msgAuthRequired      = "This video requires authentication to access. Public videos only."
)

// ClassifiedError is an engine or internal failure mapped to a caller facing message
type ClassifiedError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ClassifiedError) Error() string {
	return e.Message
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// ClassifyText maps raw engine output to a ClassifiedError. Rules are checked in order and the
// first match wins; unmatched text is passed through unchanged.
func ClassifyText(raw string, op Operation, maxFileSizeMB int) *ClassifiedError {
	lower := strings.ToLower(raw)

	switch {
	case strings.Contains(raw, "Private video"):
		msg := msgPrivateDownload
		if op == OperationInfo {
			msg = msgPrivateInfo
		}
		return &ClassifiedError{Kind: ErrorKindPrivateVideo, Message: msg}
	case strings.Contains(raw, "Video unavailable"):
		return &ClassifiedError{Kind: ErrorKindUnavailable, Message: msgUnavailable}
	case strings.Contains(lower, "age"):
		return &ClassifiedError{Kind: ErrorKindAgeRestricted, Message: msgAgeRestricted}
	case op == OperationDownload && strings.Contains(lower, "file is larger"):
		return &ClassifiedError{Kind: ErrorKindSizeExceeded, Message: fmt.Sprintf(msgSizeExceeded, maxFileSizeMB)}
	case strings.Contains(raw, "No video formats found"):
		return &ClassifiedError{Kind: ErrorKindFormatUnavailable, Message: msgFormatUnavailable}
	case strings.Contains(lower, "login") || strings.Contains(lower, "sign in"):
		return &ClassifiedError{Kind: ErrorKindAuthRequired, Message: msgAuthRequired}
	default:
		return &ClassifiedError{Kind: ErrorKindUnknown, Message: raw}
	}
}

// Classify maps any error returned by the engine path to a ClassifiedError. Engine failures go
// through ClassifyText; anything else is reported as an unknown failure of the operation.
func Classify(err error, op Operation, maxFileSizeMB int) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		c := ClassifyText(fetchErr.Error(), op, maxFileSizeMB)
		c.Err = err
		return c
	}

	prefix := "Download failed"
	if op == OperationInfo {
		prefix = "Failed to get video info"
	}
	return &ClassifiedError{
		Kind:    ErrorKindUnknown,
		Message: fmt.Sprintf("%s: %v", prefix, err),
		Err:     err,
	}
}
