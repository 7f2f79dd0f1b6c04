package beanwire

import (
	"fmt"
	"io"
)

// FieldHeader describes one field's wire header as read back off the
// wire, without requiring the caller to have the record's Go struct type
// at hand - the introspection spec.md §9 anticipates for debugging wire
// compatibility problems (cmd/beaninspect is built on this).
type FieldHeader struct {
	Index   int
	Variant string
	Length  int // -1 when the variant is not length-dynamic
}

// InspectNextRecord reads one record's field headers from r, skipping
// every field's payload without decoding it into a value. It never
// touches a classDescriptor, so it works on wire bytes whose Go type the
// caller may not even know.
func InspectNextRecord(r *Reader) ([]FieldHeader, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	headers := make([]FieldHeader, 0, n)
	for i := 0; i < int(n); i++ {
		idx, err := r.ReadByte()
		if err != nil {
			return headers, err
		}
		tagByte, err := r.ReadByte()
		if err != nil {
			return headers, err
		}
		variant, ok := variantForTagID(tagByte)
		if !ok {
			return headers, fmt.Errorf("beanwire: unrecognized wire tag %d at field index %d", tagByte, idx)
		}

		length := -1
		if isLengthDynamic(variant) {
			l, err := r.ReadLength()
			if err != nil {
				return headers, err
			}
			length = int(l)
			if err := r.Skip(length); err != nil {
				return headers, err
			}
		} else if err := skipField(r, variant); err != nil {
			return headers, err
		}

		headers = append(headers, FieldHeader{Index: int(idx), Variant: variant.String(), Length: length})
	}
	return headers, nil
}

// InspectStream walks every record in a concatenated-record stream,
// calling emit with each one's headers in order. It stops cleanly at
// ErrEndOfInput.
func InspectStream(src io.Reader, emit func(recordIndex int, headers []FieldHeader)) error {
	r := NewStreamReader(src, DefaultLimits)
	for i := 0; ; i++ {
		ok, err := r.TryFillOne()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		headers, err := InspectNextRecord(r)
		if err != nil {
			return err
		}
		emit(i, headers)
	}
}
