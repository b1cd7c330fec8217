package console

import "fmt"

// ErrorKind categorizes a failed console call so callers can pick a recovery
// path without string matching.
type ErrorKind string

const (
	KindNetwork      ErrorKind = "network"
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindServer       ErrorKind = "server"
)

// APIError is a categorized error from the console backend, built from an
// RFC7807 problem document when one is present.
type APIError struct {
	Kind   ErrorKind
	Status int
	Title  string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("console: %s (%d): %s", e.Title, e.Status, e.Detail)
	}
	return fmt.Sprintf("console: %s (%d)", e.Title, e.Status)
}

// Categorize returns the error kind, KindNetwork for anything that is not an
// APIError.
func Categorize(err error) ErrorKind {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Kind
	}
	return KindNetwork
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == 404:
		return KindNotFound
	case status == 409:
		return KindConflict
	case status == 401 || status == 403:
		return KindUnauthorized
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindServer
	}
}
