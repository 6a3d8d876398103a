package model

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds surfaced by a render. Match them with errors.Is.
var (
	ErrProbe         = errors.New("image size could not be determined")
	ErrTimeout       = errors.New("conversion over timeout")
	ErrExecution     = errors.New("conversion failed")
	ErrInvalidAction = errors.New("invalid action")
)

// ConversionError carries the failure kind together with the command that
// failed and whatever it wrote to its error stream.
type ConversionError struct {
	Kind    error
	Command string
	Output  string
}

func (e *ConversionError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, out)
}

func (e *ConversionError) Unwrap() error {
	return e.Kind
}
