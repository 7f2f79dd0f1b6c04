package beanwire

import "fmt"

// DecodeLimits bounds how much a single decode call will trust the wire to
// ask for, guarding against a corrupt or hostile stream claiming an
// enormous string/slice/schema length. Kept from the teacher's own
// DecodeLimits (glint.go) - spec.md never asks for this to be removed, and
// a length-prefixed format without any bound is a memory-exhaustion vector
// regardless of wire layout.
type DecodeLimits struct {
	MaxStringLen    uint // maximum UTF string length, in bytes (0 = unlimited)
	MaxSliceInitCap uint // caps the initial capacity of a slice allocated from a wire-supplied size
	MaxFieldCount   uint // maximum number of fields accepted in a single record header (0 = unlimited; N is one byte, so this is mostly documentary)
	MaxByteSliceLen uint // maximum element count of a primitive, String or Date array, or of one row of a 2D one (0 = unlimited)
}

// DefaultLimits provides sensible defaults for untrusted input.
var DefaultLimits = DecodeLimits{
	MaxStringLen:    50 * 1024 * 1024,  // 50MB
	MaxSliceInitCap: 10_000,            // 10K elements initial cap
	MaxFieldCount:   255,               // N is a single byte; 255 is its ceiling anyway
	MaxByteSliceLen: 100 * 1024 * 1024, // 100MB
}

func checkLimit(length, limit uint, name string) error {
	if limit > 0 && length > limit {
		return configErrorf("%s length %d exceeds limit %d", name, length, limit)
	}
	return nil
}

func initCap(requested uint, limit uint) int {
	if limit > 0 && requested > limit {
		return int(limit)
	}
	return int(requested)
}

func configErrorf(format string, args ...any) error {
	return &limitError{msg: fmt.Sprintf(format, args...)}
}

type limitError struct{ msg string }

func (e *limitError) Error() string { return "beanwire: " + e.msg }
