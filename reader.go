package beanwire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader provides bounds-checked sequential access to an encoded record.
// All multi-byte integers are read big-endian per spec.md §6.
//
// A Reader normally wraps a fixed byte slice (one already-received
// record, or a length-dynamic field's framed payload). It can optionally
// wrap a live io.Reader (src) instead, refilling bytes on demand as a
// multi-record stream is consumed - see NewStreamReader and
// Decoder[T].Decode.
type Reader struct {
	bytes    []byte
	position int
	limits   DecodeLimits
	src      io.Reader
}

// NewReader wraps b for reading with DefaultLimits.
func NewReader(b []byte) *Reader {
	return &Reader{bytes: b, limits: DefaultLimits}
}

// NewReaderWithLimits wraps b for reading with custom bounds-checking
// limits (spec.md's scratch/size limits, see DecodeLimits).
func NewReaderWithLimits(b []byte, limits DecodeLimits) *Reader {
	return &Reader{bytes: b, limits: limits}
}

// NewStreamReader wraps a live io.Reader, growing its internal buffer on
// demand as more bytes are needed - the basis of the concatenated-record
// streaming API (spec.md §7's EndOfInput signal only has teeth against a
// reader like this one; a fixed byte slice always knows its own end).
func NewStreamReader(src io.Reader, limits DecodeLimits) *Reader {
	return &Reader{limits: limits, src: src}
}

func (r *Reader) errEOF(need int) error {
	return fmt.Errorf("%w: need %d bytes, have %d", ErrEndOfInput, need, len(r.bytes)-r.position)
}

func (r *Reader) require(n int) error {
	if n < 0 {
		return fmt.Errorf("beanwire: negative length %d", n)
	}
	if r.position+n <= len(r.bytes) {
		return nil
	}
	if r.src == nil {
		return r.errEOF(n)
	}
	short := r.position + n - len(r.bytes)
	grown := make([]byte, short)
	if _, err := io.ReadFull(r.src, grown); err != nil {
		return r.errEOF(n)
	}
	r.bytes = append(r.bytes, grown...)
	return nil
}

// TryFillOne reports whether at least one more byte is available,
// refilling from src if necessary. It returns (false, nil) at a clean
// stream boundary (no bytes available and none forthcoming), which is
// exactly spec.md §7's EndOfInput signal, as opposed to a read error
// encountered partway through a record.
func (r *Reader) TryFillOne() (bool, error) {
	if r.position < len(r.bytes) {
		return true, nil
	}
	if r.src == nil {
		return false, nil
	}
	var one [1]byte
	n, err := io.ReadFull(r.src, one[:])
	if n == 0 {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	r.bytes = append(r.bytes, one[:n]...)
	return true, nil
}

func (r *Reader) ReadByte() (byte, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	b := r.bytes[r.position]
	r.position++
	return b, nil
}

func (r *Reader) ReadFlag() (bool, error) {
	b, err := r.ReadByte()
	return b == 1, err
}

func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

func (r *Reader) ReadUint8() (uint8, error) {
	return r.ReadByte()
}

func (r *Reader) read(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	b := r.bytes[r.position : r.position+n]
	r.position += n
	return b, nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

func (r *Reader) ReadBool() (bool, error) {
	return r.ReadFlag()
}

// ReadUTF reads a 2-byte-length-prefixed UTF-8 string.
func (r *Reader) ReadUTF() (string, error) {
	l, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	if r.limits.MaxStringLen > 0 && uint(l) > r.limits.MaxStringLen {
		return "", fmt.Errorf("beanwire: string length %d exceeds limit %d", l, r.limits.MaxStringLen)
	}
	b, err := r.read(int(l))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadLength reads the 4-byte big-endian length prefix a length-dynamic
// variant (spec.md §4.B) always carries.
func (r *Reader) ReadLength() (int32, error) {
	return r.ReadInt32()
}

// Skip advances the read position by n bytes without interpreting them -
// used to discard the payload of an unknown length-dynamic field
// (spec.md §4.F step d).
func (r *Reader) Skip(n int) error {
	if err := r.require(n); err != nil {
		return err
	}
	r.position += n
	return nil
}

// BytesLeft reports how many unread bytes remain.
func (r *Reader) BytesLeft() int {
	return len(r.bytes) - r.position
}

// AtEnd reports whether every byte has been consumed.
func (r *Reader) AtEnd() bool {
	return r.position >= len(r.bytes)
}
