package application

import (
	"errors"
	"fmt"
)

// Cycle failure taxonomy. Every kind is caught at the coordinator boundary
// and converted into a failed cycle; none of them crash the process.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrTransport     = errors.New("transport error")
	ErrStatus        = errors.New("response status error")
	ErrParse         = errors.New("parse error")
)

// CycleError marks one fetch cycle as failed. It carries the taxonomy kind,
// the HTTP status for status failures, and the underlying cause.
type CycleError struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *CycleError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *CycleError) Unwrap() []error {
	out := []error{e.Kind}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func NewConfigurationError(msg string) error {
	return &CycleError{Kind: ErrConfiguration, Err: errors.New(msg)}
}

func NewTransportError(err error) error {
	return &CycleError{Kind: ErrTransport, Err: err}
}

func NewStatusError(code int) error {
	return &CycleError{Kind: ErrStatus, StatusCode: code}
}

func NewParseError(err error) error {
	return &CycleError{Kind: ErrParse, Err: err}
}
