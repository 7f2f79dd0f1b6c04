package beanwire

import (
	"encoding/gob"
	"io"
)

// ObjectCodec implements the generic opaque-object fallback spec.md §4.B
// reserves for any field type the registry can't otherwise place (wire
// variant 29, "Object"). It is deliberately pluggable rather than hard-
// wired to one format: the wire contract only requires that whatever is
// written self-terminates so a decoder can skip past it without
// understanding the concrete type (spec.md §9), which encoding/gob already
// guarantees stream-by-stream. When an unknown Object field is skipped,
// DecodeObject is called with a nil v and must read and discard the value.
type ObjectCodec interface {
	EncodeObject(w io.Writer, v any) error
	DecodeObject(r io.Reader, v any) error
}

type gobObjectCodec struct{}

func (gobObjectCodec) EncodeObject(w io.Writer, v any) error {
	return gob.NewEncoder(w).Encode(v)
}

func (gobObjectCodec) DecodeObject(r io.Reader, v any) error {
	return gob.NewDecoder(r).Decode(v)
}

// DefaultObjectCodec is encoding/gob, the teacher/pack's own go-to for
// "serialize an arbitrary Go value with no wire schema" needs.
var DefaultObjectCodec ObjectCodec = gobObjectCodec{}

var activeObjectCodec = DefaultObjectCodec

// SetObjectCodec replaces the codec used for Object-variant fields
// process-wide. Call it once at program startup, before any Marshal or
// Unmarshal that might touch an Object field.
func SetObjectCodec(c ObjectCodec) {
	activeObjectCodec = c
}

// writerIOAdapter lets a *Writer satisfy io.Writer for ObjectCodec, which
// speaks to readers/writers rather than this package's own Writer/Reader
// so that a custom ObjectCodec isn't forced to depend on beanwire's
// internal buffer type.
type writerIOAdapter Writer

func (w *writerIOAdapter) Write(p []byte) (int, error) {
	w.Bytes = append(w.Bytes, p...)
	return len(p), nil
}

// readerIOAdapter is ObjectCodec's reading counterpart: it lets an
// io.Reader consumer (gob.Decoder) read directly from the bytes remaining
// in a *Reader.
type readerIOAdapter struct {
	r *Reader
}

func (a *readerIOAdapter) Read(p []byte) (int, error) {
	if a.r.AtEnd() {
		return 0, io.EOF
	}
	n := len(p)
	if n > a.r.BytesLeft() {
		n = a.r.BytesLeft()
	}
	b, err := a.r.read(n)
	if err != nil {
		return 0, err
	}
	copy(p, b)
	return len(b), nil
}

// ReadByte makes readerIOAdapter an io.ByteReader, so gob.NewDecoder reads
// from it directly instead of wrapping it in a read-ahead bufio.Reader that
// would consume the bytes following the object.
func (a *readerIOAdapter) ReadByte() (byte, error) {
	return a.r.ReadByte()
}
