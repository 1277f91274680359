package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrUnsupportedDriver  = fmt.Errorf("unsupported destination driver")

	// Pipeline stage errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrExtractionFailed = fmt.Errorf("extraction failed")
	ErrLoadFailed       = fmt.Errorf("load failed")

	// Run history errors
	ErrRunNotFound = fmt.Errorf("run not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// AuthenticationError is returned when the token request fails or its response cannot be used.
//
// StatusCode is zero when no response was received.
type AuthenticationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthenticationError) Error() string {
	msg := ErrAuthFailed.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthFailed }

// ExtractionError is returned when the catalog request fails or its body is malformed.
type ExtractionError struct {
	StatusCode int
	Err        error
}

func (e *ExtractionError) Error() string {
	msg := ErrExtractionFailed.Error()
	if e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode >= 300) {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtractionFailed }

// LoadError is returned when the destination table could not be replaced.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: table %s", ErrLoadFailed, e.Table)
	}
	return fmt.Sprintf("%s: table %s: %v", ErrLoadFailed, e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoadFailed }

// StatusCode extracts the HTTP status carried by a stage error, or zero.
func StatusCode(err error) int {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return authErr.StatusCode
	}
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		return extractErr.StatusCode
	}
	return 0
}
