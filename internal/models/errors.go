package models

import "fmt"

// UpstreamError represents a failed call to the registry or the geocoder:
// a transport failure, a non-2xx status, or an undecodable payload.
type UpstreamError struct {
	Service string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s call failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s call failed", e.Service)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(service string, status int, err error) *UpstreamError {
	return &UpstreamError{Service: service, Status: status, Err: err}
}

// ParseError represents a malformed snapshot or reference file. It degrades
// to an empty or untouched state with a warning, never a crash.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParseError(source string, err error) *ParseError {
	return &ParseError{Source: source, Err: err}
}

// UnsupportedParameterError is returned for an unknown field name on the
// distinct-values lookup. Surfaced to the caller as a client error.
type UnsupportedParameterError struct {
	Parameter string
}

func (e *UnsupportedParameterError) Error() string {
	return fmt.Sprintf("unsupported parameter: %s", e.Parameter)
}

// MissingParameterError is returned when a required parameter is absent.
type MissingParameterError struct {
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter: %s", e.Parameter)
}
