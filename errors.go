package beanwire

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrEndOfInput signals that a stream of concatenated records has been
// fully consumed. It is not an error condition (spec.md §7) - callers
// reading a sequence of records use it to know when to stop.
var ErrEndOfInput = errors.New("beanwire: end of input")

// ConfigurationError reports a problem discovered while building a class
// descriptor (spec.md §4.C, §7). It is fatal: the class can never be used
// with this codec until the struct definition is fixed.
type ConfigurationError struct {
	Type   reflect.Type
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("beanwire: cannot build descriptor for %s: %s", e.Type, e.Reason)
}

// DecodeFailure wraps a lower-level read error with the record's class
// name and the standard hint from spec.md §7.
type DecodeFailure struct {
	Type reflect.Type
	Err  error
}

func (e *DecodeFailure) Error() string {
	return fmt.Sprintf("beanwire: failed to read externalized instance of %s - maybe field order was changed: %v", e.Type, e.Err)
}

func (e *DecodeFailure) Unwrap() error { return e.Err }

// EncodeFailure wraps a lower-level write error with the record's class
// name.
type EncodeFailure struct {
	Type reflect.Type
	Err  error
}

func (e *EncodeFailure) Error() string {
	return fmt.Sprintf("beanwire: failed to write externalized instance of %s: %v", e.Type, e.Err)
}

func (e *EncodeFailure) Unwrap() error { return e.Err }

// UnknownClassError is raised when decoding a wire-named class that has no
// corresponding entry in the registry (spec.md §7, §9).
type UnknownClassError struct {
	Name string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("beanwire: unknown class name %q - no RegisterExternalizable call registered it", e.Name)
}

func configErr(t reflect.Type, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Type: t, Reason: fmt.Sprintf(format, args...)}
}
