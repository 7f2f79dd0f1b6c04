package beanwire

import (
	"fmt"
	"reflect"
	"time"

	uuid "github.com/satori/go.uuid"
)

// presence byte values used by the nullable Externalizable/String/Date/
// UUID/boxed-primitive wire shapes: 0 means the value is null/absent, 1
// means it is present and its static declared type, 2 (Externalizable
// only) means it is present but a different concrete type than declared,
// whose wire name follows (spec.md §4.E's "same as declared -> elide the
// class name" optimization).
const (
	presenceNull    = 0
	presenceDefault = 1
	presenceNamed   = 2
)

// Marshal encodes v, a pointer to a struct with `bean` tags, into its
// wire form (spec.md §4.E).
func Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, fmt.Errorf("beanwire: Marshal requires a non-nil pointer, got %T", v)
	}
	w := NewWriterFromPool()
	defer w.Release()
	if err := encodeStructValue(w, rv.Elem()); err != nil {
		return nil, err
	}
	out := make([]byte, len(w.Bytes))
	copy(out, w.Bytes)
	return out, nil
}

// EncodeStruct writes v's fields into w without any outer framing -
// the building block both Marshal and a hand-written WriteBean method
// delegate to (see externalizable.go's doc comment for the pattern).
func EncodeStruct(w *Writer, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("beanwire: EncodeStruct requires a non-nil pointer, got %T", v)
	}
	return encodeStructValue(w, rv.Elem())
}

// encodeStructValue is the core of spec.md §4.E: write the field count,
// then for every field its (index, wire tag) header followed by its
// payload, buffering length-dynamic payloads through a scratch buffer
// first so their length can be prefixed (spec.md §3, §4.D).
func encodeStructValue(w *Writer, rv reflect.Value) error {
	d, err := getClassDescriptor(rv.Type())
	if err != nil {
		return err
	}
	if len(d.fields) > 255 {
		return &EncodeFailure{Type: rv.Type(), Err: fmt.Errorf("record has %d fields, header byte can address at most 255", len(d.fields))}
	}

	w.WriteByte(byte(len(d.fields)))
	for i := range d.fields {
		fd := &d.fields[i]
		fv := fd.accessor.get(rv)

		w.WriteByte(byte(fd.index))
		w.WriteByte(byte(fd.variant))

		if isLengthDynamic(fd.variant) {
			s := getScratch()
			err := encodeField(&s.w, fd, fv)
			if err == nil {
				w.WriteLengthPrefixed(s.w.Bytes)
			}
			putScratch(s)
			if err != nil {
				return &EncodeFailure{Type: rv.Type(), Err: err}
			}
			continue
		}

		if err := encodeField(w, fd, fv); err != nil {
			return &EncodeFailure{Type: rv.Type(), Err: err}
		}
	}
	return nil
}

func encodeField(w *Writer, fd *fieldDescriptor, fv reflect.Value) error {
	switch fd.variant {
	case variantInt:
		w.WriteInt32(int32(fv.Int()))
	case variantBoolean:
		w.WriteBool(fv.Bool())
	case variantByte:
		w.WriteInt8(int8(fv.Int()))
	case variantChar:
		w.WriteUint16(uint16(fv.Uint()))
	case variantDouble:
		w.WriteFloat64(fv.Float())
	case variantFloat:
		w.WriteFloat32(float32(fv.Float()))
	case variantLong:
		w.WriteInt64(fv.Int())
	case variantShort:
		w.WriteInt16(int16(fv.Int()))
	case variantString:
		encodeStringValue(w, fv)
	case variantDate:
		encodeDateValue(w, fv)
	case variantUUID:
		encodeUUIDValue(w, fv)
	case variantBoxedInt, variantBoxedBool, variantBoxedByte, variantBoxedChar,
		variantBoxedDouble, variantBoxedFloat, variantBoxedLong, variantBoxedShort:
		encodeBoxedValue(w, fd.variant, fv)
	case variantExternalizable:
		return encodeExternalizableValue(w, externalizableElem(fv), fd.elem)
	case variantExternalizableArray:
		return encodeExternalizableArray(w, fv, fd.elem)
	case variantExternalizableArrayArray:
		return encodeExternalizableArrayArray(w, fv, fd.elem)
	case variantListOfExternalizables:
		return encodeListOfExternalizables(w, fv, fd.elem)
	case variantListOfStrings:
		encodeListOfStrings(w, fv)
	case variantStringArray, variantDateArray, variantIntArray, variantByteArray,
		variantDoubleArray, variantFloatArray, variantLongArray:
		encodePrimitiveArray(w, fd.variant, fv)
	case variantStringArrayArray, variantDateArrayArray, variantIntArrayArray, variantByteArrayArray,
		variantDoubleArrayArray, variantFloatArrayArray, variantLongArrayArray:
		encodePrimitiveArrayArray(w, fd.variant, fv)
	case variantEnum:
		w.WriteInt32(int32(fv.Int()))
	case variantEnumSet:
		w.WriteUint64(uint64(fv.Uint()))
	case variantObject:
		return encodeObject(w, fv)
	default:
		return fmt.Errorf("beanwire: unhandled wire variant %s", fd.variant)
	}
	return nil
}

// externalizableElem unwraps an interface-typed field value (a field
// declared as the Externalizable interface itself, rather than a concrete
// pointer type) to the concrete value it holds.
func externalizableElem(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Interface {
		return v.Elem()
	}
	return v
}

func encodeStringValue(w *Writer, fv reflect.Value) {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			w.WriteFlag(false)
			return
		}
		w.WriteFlag(true)
		w.WriteUTF(fv.Elem().String())
		return
	}
	w.WriteFlag(true)
	w.WriteUTF(fv.String())
}

func encodeDateValue(w *Writer, fv reflect.Value) {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			w.WriteFlag(false)
			return
		}
		w.WriteFlag(true)
		w.WriteInt64(fv.Interface().(*time.Time).UnixMilli())
		return
	}
	w.WriteFlag(true)
	w.WriteInt64(fv.Interface().(time.Time).UnixMilli())
}

func encodeUUIDValue(w *Writer, fv reflect.Value) {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			w.WriteFlag(false)
			return
		}
		w.WriteFlag(true)
		writeUUID(w, *fv.Interface().(*uuid.UUID))
		return
	}
	w.WriteFlag(true)
	writeUUID(w, fv.Interface().(uuid.UUID))
}

func encodeBoxedValue(w *Writer, variant wireVariant, fv reflect.Value) {
	if fv.IsNil() {
		w.WriteFlag(false)
		return
	}
	w.WriteFlag(true)
	e := fv.Elem()
	switch variant {
	case variantBoxedInt:
		w.WriteInt32(int32(e.Int()))
	case variantBoxedBool:
		w.WriteBool(e.Bool())
	case variantBoxedByte:
		w.WriteInt8(int8(e.Int()))
	case variantBoxedChar:
		w.WriteUint16(uint16(e.Uint()))
	case variantBoxedDouble:
		w.WriteFloat64(e.Float())
	case variantBoxedFloat:
		w.WriteFloat32(float32(e.Float()))
	case variantBoxedLong:
		w.WriteInt64(e.Int())
	case variantBoxedShort:
		w.WriteInt16(int16(e.Int()))
	}
}

// encodeExternalizableValue writes one Externalizable value unframed: a
// presence byte, the wire class name when the dynamic type differs from
// declared (spec.md §4.E's class-name elision), and the value's own
// WriteBean bytes. It carries no length prefix of its own - callers that
// need one (a bare Externalizable field, or a List[T] element, see
// DESIGN.md) add it themselves.
func encodeExternalizableValue(w *Writer, fv reflect.Value, declared reflect.Type) error {
	if fv.Kind() == reflect.Ptr && fv.IsNil() {
		w.WriteByte(presenceNull)
		return nil
	}
	actual := fv.Type()
	if actual == declared {
		w.WriteByte(presenceDefault)
	} else {
		name, ok := lookupClassName(actual)
		if !ok {
			return fmt.Errorf("type %s must be registered with RegisterExternalizable to be written as a polymorphic %s", actual, declared)
		}
		w.WriteByte(presenceNamed)
		w.WriteUTF(name)
	}
	return fv.Interface().(Externalizable).WriteBean(w)
}

func encodeExternalizableArray(w *Writer, fv reflect.Value, declared reflect.Type) error {
	if fv.IsNil() {
		w.WriteFlag(false)
		return nil
	}
	w.WriteFlag(true)
	w.WriteInt32(int32(fv.Len()))
	for i := 0; i < fv.Len(); i++ {
		if err := encodeExternalizableValue(w, externalizableElem(fv.Index(i)), declared); err != nil {
			return err
		}
	}
	return nil
}

func encodeExternalizableArrayArray(w *Writer, fv reflect.Value, declared reflect.Type) error {
	if fv.IsNil() {
		w.WriteFlag(false)
		return nil
	}
	w.WriteFlag(true)
	w.WriteInt32(int32(fv.Len()))
	for i := 0; i < fv.Len(); i++ {
		if err := encodeExternalizableArray(w, fv.Index(i), declared); err != nil {
			return err
		}
	}
	return nil
}

// encodeListOfExternalizables writes spec.md §6 tag 26: like
// ExternalizableArray, but since the field itself carries no outer length
// prefix (List is not in the length-dynamic set), each element is framed
// with its own length so an unfamiliar reader can still skip the whole
// list one element at a time (see DESIGN.md).
func encodeListOfExternalizables(w *Writer, fv reflect.Value, declared reflect.Type) error {
	if fv.IsNil() {
		w.WriteFlag(false)
		return nil
	}
	w.WriteFlag(true)

	if name, ok := lookupListKindName(fv.Type()); ok {
		w.WriteFlag(true)
		w.WriteUTF(name)
	} else {
		w.WriteFlag(false)
	}

	w.WriteInt32(int32(fv.Len()))
	for i := 0; i < fv.Len(); i++ {
		s := getScratch()
		err := encodeExternalizableValue(&s.w, externalizableElem(fv.Index(i)), declared)
		if err == nil {
			w.WriteLengthPrefixed(s.w.Bytes)
		}
		putScratch(s)
		if err != nil {
			return err
		}
	}
	return nil
}

func encodeListOfStrings(w *Writer, fv reflect.Value) {
	if fv.IsNil() {
		w.WriteFlag(false)
		return
	}
	w.WriteFlag(true)
	w.WriteInt32(int32(fv.Len()))
	for i := 0; i < fv.Len(); i++ {
		w.WriteUTF(fv.Index(i).String())
	}
}

func encodePrimitiveArray(w *Writer, variant wireVariant, fv reflect.Value) {
	if fv.IsNil() {
		w.WriteFlag(false)
		return
	}
	w.WriteFlag(true)
	w.WriteInt32(int32(fv.Len()))
	for i := 0; i < fv.Len(); i++ {
		e := fv.Index(i)
		switch variant {
		case variantStringArray:
			encodeStringValue(w, e)
		case variantDateArray:
			encodeDateValue(w, e)
		case variantIntArray:
			w.WriteInt32(int32(e.Int()))
		case variantByteArray:
			w.WriteInt8(int8(e.Int()))
		case variantDoubleArray:
			w.WriteFloat64(e.Float())
		case variantFloatArray:
			w.WriteFloat32(float32(e.Float()))
		case variantLongArray:
			w.WriteInt64(e.Int())
		}
	}
}

func encodePrimitiveArrayArray(w *Writer, variant wireVariant, fv reflect.Value) {
	if fv.IsNil() {
		w.WriteFlag(false)
		return
	}
	w.WriteFlag(true)
	w.WriteInt32(int32(fv.Len()))
	row := arrayArrayRowVariant(variant)
	for i := 0; i < fv.Len(); i++ {
		encodePrimitiveArray(w, row, fv.Index(i))
	}
}

// arrayArrayRowVariant maps a 2D array variant to the 1D variant each of
// its rows is encoded with.
func arrayArrayRowVariant(v wireVariant) wireVariant {
	switch v {
	case variantStringArrayArray:
		return variantStringArray
	case variantDateArrayArray:
		return variantDateArray
	case variantIntArrayArray:
		return variantIntArray
	case variantByteArrayArray:
		return variantByteArray
	case variantDoubleArrayArray:
		return variantDoubleArray
	case variantFloatArrayArray:
		return variantFloatArray
	case variantLongArrayArray:
		return variantLongArray
	}
	return variantUnknown
}

func encodeObject(w *Writer, fv reflect.Value) error {
	if fv.Kind() == reflect.Ptr && fv.IsNil() {
		w.WriteFlag(false)
		return nil
	}
	w.WriteFlag(true)
	return activeObjectCodec.EncodeObject((*writerIOAdapter)(w), fv.Interface())
}
