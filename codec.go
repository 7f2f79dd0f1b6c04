package beanwire

import "io"

// Encoder writes a stream of concatenated records of type T to an
// underlying io.Writer, the generic facade the teacher's own
// Encoder[T]/Decoder[T] wrapped glint's Buffer-based API with (see
// DESIGN.md).
type Encoder[T any] struct {
	w io.Writer
}

// NewEncoder returns an Encoder[T] writing to w.
func NewEncoder[T any](w io.Writer) *Encoder[T] {
	return &Encoder[T]{w: w}
}

// Encode writes one record to the underlying writer. Records are
// self-delimiting (each carries its own field count and per-field
// lengths where needed), so a sequence of Encode calls can be read back
// with a matching sequence of Decoder[T].Decode calls with no added
// framing.
func (e *Encoder[T]) Encode(v *T) error {
	buf := NewWriterFromPool()
	defer buf.Release()
	if err := EncodeStruct(buf, v); err != nil {
		return err
	}
	_, err := e.w.Write(buf.Bytes)
	return err
}

// Decoder reads a stream of concatenated records of type T from an
// underlying io.Reader.
type Decoder[T any] struct {
	r *Reader
}

// NewDecoder returns a Decoder[T] reading from r with DefaultLimits.
func NewDecoder[T any](r io.Reader) *Decoder[T] {
	return &Decoder[T]{r: NewStreamReader(r, DefaultLimits)}
}

// NewDecoderWithLimits is NewDecoder with caller-supplied DecodeLimits.
func NewDecoderWithLimits[T any](r io.Reader, limits DecodeLimits) *Decoder[T] {
	return &Decoder[T]{r: NewStreamReader(r, limits)}
}

// Decode reads one record into a freshly allocated *T. It returns
// ErrEndOfInput once the stream has been cleanly exhausted between
// records - the signal, not an error, spec.md §7 describes for "no more
// records" - or a *DecodeFailure if the stream ends partway through one.
func (d *Decoder[T]) Decode() (*T, error) {
	ok, err := d.r.TryFillOne()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEndOfInput
	}

	v := new(T)
	if err := DecodeStruct(d.r, v); err != nil {
		return nil, err
	}
	return v, nil
}
