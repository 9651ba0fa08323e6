package sfrest

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned by record operations called without a valid session.
var ErrNoSession = errors.New("salesforce: no authenticated session, call Authorize first")

// TransportError means the HTTP exchange could not complete.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError means a response body did not have the expected shape.
type ParseError struct {
	Op  string
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: parse error: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: parse error: %s", e.Op, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError means the API answered with an unexpected status. Body is kept
// verbatim.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

func IsParse(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// IsAPI reports whether err is an *APIError, optionally with one of the given statuses.
func IsAPI(err error, statuses ...int) bool {
	var e *APIError
	if !errors.As(err, &e) {
		return false
	}
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if e.StatusCode == s {
			return true
		}
	}
	return false
}
