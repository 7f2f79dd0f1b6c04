package beanwire

import (
	"fmt"
	"reflect"
	"time"
)

// Unmarshal decodes data into v, a pointer to a struct with `bean` tags
// (spec.md §4.F).
func Unmarshal(data []byte, v any) error {
	return UnmarshalWithLimits(data, v, DefaultLimits)
}

// UnmarshalWithLimits is Unmarshal with caller-supplied DecodeLimits.
func UnmarshalWithLimits(data []byte, v any, limits DecodeLimits) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("beanwire: Unmarshal requires a non-nil pointer, got %T", v)
	}
	r := NewReaderWithLimits(data, limits)
	return decodeStructValue(r, rv.Elem())
}

// DecodeStruct reads into v's fields from r without expecting any outer
// framing - the decode-side counterpart of EncodeStruct, and what a
// hand-written ReadBean method typically delegates to.
func DecodeStruct(r *Reader, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("beanwire: DecodeStruct requires a non-nil pointer, got %T", v)
	}
	return decodeStructValue(r, rv.Elem())
}

// decodeStructValue implements spec.md §4.F's sorted-merge cursor: the
// wire's fields and the class descriptor's fields are both sorted
// ascending by index, so a single forward pass over both, advancing
// whichever side is behind, finds every field the two have in common
// without a name lookup. A field present on the wire but not in the
// descriptor (or present in the descriptor but absent from the wire) is
// simply skipped/left at its zero value - this is the whole of spec.md's
// forward- and backward-compatibility story.
func decodeStructValue(r *Reader, rv reflect.Value) error {
	d, err := getClassDescriptor(rv.Type())
	if err != nil {
		return err
	}

	n, err := r.ReadByte()
	if err != nil {
		return err
	}
	if err := checkLimit(uint(n), r.limits.MaxFieldCount, "field count"); err != nil {
		return &DecodeFailure{Type: rv.Type(), Err: err}
	}

	fi := 0
	for i := 0; i < int(n); i++ {
		idx, err := r.ReadByte()
		if err != nil {
			return &DecodeFailure{Type: rv.Type(), Err: err}
		}
		tagByte, err := r.ReadByte()
		if err != nil {
			return &DecodeFailure{Type: rv.Type(), Err: err}
		}
		variant, ok := variantForTagID(tagByte)
		if !ok {
			return &DecodeFailure{Type: rv.Type(), Err: fmt.Errorf("field %d: unrecognized wire tag %d", idx, tagByte)}
		}

		for fi < len(d.fields) && d.fields[fi].index < int(idx) {
			fi++
		}

		if fi < len(d.fields) && d.fields[fi].index == int(idx) {
			fd := &d.fields[fi]
			if fd.variant != variant {
				log.Warningf("beanwire: %s field %d changed wire variant (wire=%s, struct=%s) - skipping, maybe field order was changed", rv.Type(), idx, variant, fd.variant)
				if err := skipField(r, variant); err != nil {
					return &DecodeFailure{Type: rv.Type(), Err: err}
				}
				continue
			}

			var (
				value reflect.Value
				err   error
			)
			if isLengthDynamic(variant) {
				value, err = decodeLengthDynamicField(r, fd)
			} else {
				value, err = decodeField(r, fd)
			}
			if err != nil {
				return &DecodeFailure{Type: rv.Type(), Err: err}
			}
			fd.accessor.set(rv, value)
			fi++
			continue
		}

		log.Debugf("beanwire: %s skipping unknown field %d (%s)", rv.Type(), idx, variant)
		if err := skipField(r, variant); err != nil {
			return &DecodeFailure{Type: rv.Type(), Err: err}
		}
	}
	return nil
}

// skipField discards one field's payload without materializing a value,
// spec.md §4.F's unknown-field handling. Length-dynamic variants (the
// Externalizable family) carry their own length prefix and are skipped
// blind; every other variant is skipped structurally, by walking exactly
// as many bytes as its own self-describing shape defines (spec.md §9: an
// unrecognized fixed-shape variant cannot be skipped at all, but this
// never arises here because the wire variant set is closed and frozen -
// any tag byte not in that closed set is a decode error, not a skip).
func skipField(r *Reader, variant wireVariant) error {
	if isLengthDynamic(variant) {
		length, err := r.ReadLength()
		if err != nil {
			return err
		}
		return r.Skip(int(length))
	}

	switch variant {
	case variantInt:
		return r.Skip(4)
	case variantBoxedInt:
		return skipFlaggedFixed(r, 4)
	case variantBoolean:
		return r.Skip(1)
	case variantBoxedBool:
		return skipFlaggedFixed(r, 1)
	case variantByte:
		return r.Skip(1)
	case variantBoxedByte:
		return skipFlaggedFixed(r, 1)
	case variantChar:
		return r.Skip(2)
	case variantBoxedChar:
		return skipFlaggedFixed(r, 2)
	case variantDouble:
		return r.Skip(8)
	case variantBoxedDouble:
		return skipFlaggedFixed(r, 8)
	case variantFloat:
		return r.Skip(4)
	case variantBoxedFloat:
		return skipFlaggedFixed(r, 4)
	case variantLong:
		return r.Skip(8)
	case variantBoxedLong:
		return skipFlaggedFixed(r, 8)
	case variantShort:
		return r.Skip(2)
	case variantBoxedShort:
		return skipFlaggedFixed(r, 2)
	case variantString:
		return skipString(r)
	case variantDate:
		return skipFlaggedFixed(r, 8)
	case variantUUID:
		return skipFlaggedFixed(r, 16)
	case variantEnum:
		_, err := r.ReadInt32()
		return err
	case variantEnumSet:
		_, err := r.ReadUint64()
		return err
	case variantStringArray, variantDateArray, variantIntArray, variantByteArray,
		variantDoubleArray, variantFloatArray, variantLongArray:
		return skipPrimitiveArray(r, variant)
	case variantStringArrayArray, variantDateArrayArray, variantIntArrayArray, variantByteArrayArray,
		variantDoubleArrayArray, variantFloatArrayArray, variantLongArrayArray:
		return skipPrimitiveArrayArray(r, variant)
	case variantListOfStrings:
		return skipListOfStrings(r)
	case variantListOfExternalizables:
		return skipListOfExternalizables(r)
	case variantObject:
		return skipObject(r)
	}
	return fmt.Errorf("beanwire: no skip rule for wire variant %s", variant)
}

// skipFlaggedFixed skips a nullable fixed-width value: a presence flag
// followed, if true, by exactly width bytes. Used by the boxed primitive
// variants and by Date/UUID, which are always nullable.
func skipFlaggedFixed(r *Reader, width int) error {
	present, err := r.ReadFlag()
	if err != nil {
		return err
	}
	if !present {
		return nil
	}
	return r.Skip(width)
}

func skipString(r *Reader) error {
	present, err := r.ReadFlag()
	if err != nil || !present {
		return err
	}
	_, err = r.ReadUTF()
	return err
}

func skipPrimitiveArray(r *Reader, variant wireVariant) error {
	present, err := r.ReadFlag()
	if err != nil || !present {
		return err
	}
	n, err := r.ReadInt32()
	if err != nil {
		return err
	}
	for i := int32(0); i < n; i++ {
		switch variant {
		case variantStringArray:
			if err := skipString(r); err != nil {
				return err
			}
		case variantDateArray:
			if err := skipFlaggedFixed(r, 8); err != nil {
				return err
			}
		case variantIntArray:
			if err := r.Skip(4); err != nil {
				return err
			}
		case variantByteArray:
			if err := r.Skip(1); err != nil {
				return err
			}
		case variantDoubleArray:
			if err := r.Skip(8); err != nil {
				return err
			}
		case variantFloatArray:
			if err := r.Skip(4); err != nil {
				return err
			}
		case variantLongArray:
			if err := r.Skip(8); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipPrimitiveArrayArray(r *Reader, variant wireVariant) error {
	present, err := r.ReadFlag()
	if err != nil || !present {
		return err
	}
	n, err := r.ReadInt32()
	if err != nil {
		return err
	}
	row := arrayArrayRowVariant(variant)
	for i := int32(0); i < n; i++ {
		if err := skipPrimitiveArray(r, row); err != nil {
			return err
		}
	}
	return nil
}

func skipListOfStrings(r *Reader) error {
	present, err := r.ReadFlag()
	if err != nil || !present {
		return err
	}
	n, err := r.ReadInt32()
	if err != nil {
		return err
	}
	for i := int32(0); i < n; i++ {
		if _, err := r.ReadUTF(); err != nil {
			return err
		}
	}
	return nil
}

// skipListOfExternalizables walks a List<Externalizable> element by
// element: the list itself has no outer length (see DESIGN.md), but every
// element carries its own 4-byte length prefix, so each can be skipped
// blind in turn.
func skipListOfExternalizables(r *Reader) error {
	present, err := r.ReadFlag()
	if err != nil || !present {
		return err
	}
	named, err := r.ReadFlag() // named-kind flag
	if err != nil {
		return err
	}
	// the named-kind flag, if true, is followed by its UTF name
	if named {
		if _, err := r.ReadUTF(); err != nil {
			return err
		}
	}
	n, err := r.ReadInt32()
	if err != nil {
		return err
	}
	for i := int32(0); i < n; i++ {
		length, err := r.ReadLength()
		if err != nil {
			return err
		}
		if err := r.Skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

func skipObject(r *Reader) error {
	present, err := r.ReadFlag()
	if err != nil || !present {
		return err
	}
	return activeObjectCodec.DecodeObject(&readerIOAdapter{r: r}, nil)
}

// decodeLengthDynamicField reads the 4-byte length prefix spec.md §4.E
// writes ahead of a known Externalizable/ExternalizableArray/
// ExternalizableArrayArray field (the `isLengthDynamic` variants) and
// decodes its payload out of a bounded sub-reader, the same technique
// decodeListOfExternalizables already uses per-element. Bounding the
// payload this way both keeps a malformed inner length from reading past
// the field's own frame and lets MaxStringLen etc. keep
// applying inside it.
func decodeLengthDynamicField(r *Reader, fd *fieldDescriptor) (reflect.Value, error) {
	length, err := r.ReadLength()
	if err != nil {
		return reflect.Value{}, err
	}
	payload, err := r.read(int(length))
	if err != nil {
		return reflect.Value{}, err
	}
	sub := NewReaderWithLimits(payload, r.limits)
	return decodeField(sub, fd)
}

func decodeField(r *Reader, fd *fieldDescriptor) (reflect.Value, error) {
	switch fd.variant {
	case variantInt:
		v, err := r.ReadInt32()
		return reflect.ValueOf(v).Convert(fd.goType), err
	case variantBoolean:
		v, err := r.ReadBool()
		return reflect.ValueOf(v).Convert(fd.goType), err
	case variantByte:
		v, err := r.ReadInt8()
		return reflect.ValueOf(v).Convert(fd.goType), err
	case variantChar:
		v, err := r.ReadUint16()
		return reflect.ValueOf(v).Convert(fd.goType), err
	case variantDouble:
		v, err := r.ReadFloat64()
		return reflect.ValueOf(v).Convert(fd.goType), err
	case variantFloat:
		v, err := r.ReadFloat32()
		return reflect.ValueOf(v).Convert(fd.goType), err
	case variantLong:
		v, err := r.ReadInt64()
		return reflect.ValueOf(v).Convert(fd.goType), err
	case variantShort:
		v, err := r.ReadInt16()
		return reflect.ValueOf(v).Convert(fd.goType), err
	case variantString:
		return decodeStringValue(r, fd.goType)
	case variantDate:
		return decodeDateValue(r, fd.goType)
	case variantUUID:
		return decodeUUIDValue(r, fd.goType)
	case variantBoxedInt, variantBoxedBool, variantBoxedByte, variantBoxedChar,
		variantBoxedDouble, variantBoxedFloat, variantBoxedLong, variantBoxedShort:
		return decodeBoxedValue(r, fd.variant, fd.goType)
	case variantExternalizable:
		return decodeExternalizableValue(r, fd.goType, fd.elem)
	case variantExternalizableArray:
		return decodeExternalizableArray(r, fd.goType, fd.elem)
	case variantExternalizableArrayArray:
		return decodeExternalizableArrayArray(r, fd.goType, fd.elem)
	case variantListOfExternalizables:
		return decodeListOfExternalizables(r, fd.goType, fd.elem)
	case variantListOfStrings:
		return decodeListOfStrings(r, fd.goType)
	case variantStringArray, variantDateArray, variantIntArray, variantByteArray,
		variantDoubleArray, variantFloatArray, variantLongArray:
		return decodePrimitiveArray(r, fd.variant, fd.goType)
	case variantStringArrayArray, variantDateArrayArray, variantIntArrayArray, variantByteArrayArray,
		variantDoubleArrayArray, variantFloatArrayArray, variantLongArrayArray:
		return decodePrimitiveArrayArray(r, fd.variant, fd.goType)
	case variantEnum:
		v, err := r.ReadInt32()
		rv := reflect.New(fd.goType).Elem()
		rv.SetInt(int64(v))
		return rv, err
	case variantEnumSet:
		v, err := r.ReadUint64()
		return reflect.ValueOf(EnumSet(v)), err
	case variantObject:
		return decodeObject(r, fd.goType)
	}
	return reflect.Value{}, fmt.Errorf("beanwire: unhandled wire variant %s", fd.variant)
}

func decodeStringValue(r *Reader, t reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if t.Kind() == reflect.Ptr {
		if !present {
			return reflect.Zero(t), nil
		}
		s, err := r.ReadUTF()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&s), nil
	}
	if !present {
		return reflect.Zero(t), nil
	}
	s, err := r.ReadUTF()
	return reflect.ValueOf(s), err
}

func decodeDateValue(r *Reader, t reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if !present {
		return reflect.Zero(t), nil
	}
	millis, err := r.ReadInt64()
	if err != nil {
		return reflect.Value{}, err
	}
	tm := time.UnixMilli(millis).UTC()
	if t.Kind() == reflect.Ptr {
		return reflect.ValueOf(&tm), nil
	}
	return reflect.ValueOf(tm), nil
}

func decodeUUIDValue(r *Reader, t reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if !present {
		return reflect.Zero(t), nil
	}
	u, err := readUUID(r)
	if err != nil {
		return reflect.Value{}, err
	}
	if t.Kind() == reflect.Ptr {
		return reflect.ValueOf(&u), nil
	}
	return reflect.ValueOf(u), nil
}

func decodeBoxedValue(r *Reader, variant wireVariant, t reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if !present {
		return reflect.Zero(t), nil
	}
	elem := t.Elem()
	switch variant {
	case variantBoxedInt:
		v, err := r.ReadInt32()
		p := reflect.New(elem)
		p.Elem().SetInt(int64(v))
		return p, err
	case variantBoxedBool:
		v, err := r.ReadBool()
		p := reflect.New(elem)
		p.Elem().SetBool(v)
		return p, err
	case variantBoxedByte:
		v, err := r.ReadInt8()
		p := reflect.New(elem)
		p.Elem().SetInt(int64(v))
		return p, err
	case variantBoxedChar:
		v, err := r.ReadUint16()
		p := reflect.New(elem)
		p.Elem().SetUint(uint64(v))
		return p, err
	case variantBoxedDouble:
		v, err := r.ReadFloat64()
		p := reflect.New(elem)
		p.Elem().SetFloat(v)
		return p, err
	case variantBoxedFloat:
		v, err := r.ReadFloat32()
		p := reflect.New(elem)
		p.Elem().SetFloat(float64(v))
		return p, err
	case variantBoxedLong:
		v, err := r.ReadInt64()
		p := reflect.New(elem)
		p.Elem().SetInt(v)
		return p, err
	case variantBoxedShort:
		v, err := r.ReadInt16()
		p := reflect.New(elem)
		p.Elem().SetInt(int64(v))
		return p, err
	}
	return reflect.Value{}, fmt.Errorf("beanwire: unreachable boxed variant %s", variant)
}

// newExternalizableFor constructs a new zero value of declared, which must
// be a pointer type, returning an addressable pointer value implementing
// Externalizable. A type named on the wire is constructed by the caller
// through the name registry instead.
func newExternalizableFor(declared reflect.Type) (reflect.Value, error) {
	if declared.Kind() == reflect.Ptr {
		return reflect.New(declared.Elem()), nil
	}
	return reflect.Value{}, fmt.Errorf("beanwire: %s has no default constructor (not a pointer type) - wire must carry an explicit class name", declared)
}

func decodeExternalizableValue(r *Reader, fieldType, declared reflect.Type) (reflect.Value, error) {
	presence, err := r.ReadByte()
	if err != nil {
		return reflect.Value{}, err
	}
	switch presence {
	case presenceNull:
		return reflect.Zero(fieldType), nil
	case presenceDefault:
		v, err := newExternalizableFor(declared)
		if err != nil {
			return reflect.Value{}, err
		}
		if err := v.Interface().(Externalizable).ReadBean(r); err != nil {
			return reflect.Value{}, err
		}
		return v, nil
	case presenceNamed:
		name, err := r.ReadUTF()
		if err != nil {
			return reflect.Value{}, err
		}
		maker, ok := lookupExternalizableMaker(name)
		if !ok {
			return reflect.Value{}, &UnknownClassError{Name: name}
		}
		obj := maker()
		if err := obj.ReadBean(r); err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(obj), nil
	}
	return reflect.Value{}, fmt.Errorf("beanwire: invalid Externalizable presence byte %d", presence)
}

func decodeExternalizableArray(r *Reader, sliceType, declared reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if !present {
		return reflect.Zero(sliceType), nil
	}
	n, err := r.ReadInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(sliceType, int(n), int(n))
	for i := int32(0); i < n; i++ {
		v, err := decodeExternalizableValue(r, sliceType.Elem(), declared)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(int(i)).Set(v)
	}
	return out, nil
}

func decodeExternalizableArrayArray(r *Reader, sliceType, declared reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if !present {
		return reflect.Zero(sliceType), nil
	}
	n, err := r.ReadInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(sliceType, int(n), int(n))
	for i := int32(0); i < n; i++ {
		row, err := decodeExternalizableArray(r, sliceType.Elem(), declared)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(int(i)).Set(row)
	}
	return out, nil
}

func decodeListOfExternalizables(r *Reader, listType, declared reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if !present {
		return reflect.Zero(listType), nil
	}
	named, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if named {
		if _, err := r.ReadUTF(); err != nil { // list-kind name, informational only
			return reflect.Value{}, err
		}
	}
	n, err := r.ReadInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(listType, int(n), int(n))
	for i := int32(0); i < n; i++ {
		length, err := r.ReadLength()
		if err != nil {
			return reflect.Value{}, err
		}
		payload, err := r.read(int(length))
		if err != nil {
			return reflect.Value{}, err
		}
		sub := NewReaderWithLimits(payload, r.limits)
		v, err := decodeExternalizableValue(sub, listType.Elem(), declared)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(int(i)).Set(v)
	}
	return out, nil
}

func decodeListOfStrings(r *Reader, listType reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if !present {
		return reflect.Zero(listType), nil
	}
	n, err := r.ReadInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(listType, int(n), int(n))
	for i := int32(0); i < n; i++ {
		s, err := r.ReadUTF()
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(int(i)).SetString(s)
	}
	return out, nil
}

func decodePrimitiveArray(r *Reader, variant wireVariant, sliceType reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if !present {
		return reflect.Zero(sliceType), nil
	}
	n, err := r.ReadInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	if err := checkLimit(uint(n), r.limits.MaxByteSliceLen, "array"); err != nil {
		return reflect.Value{}, err
	}
	initialCap := initCap(uint(n), r.limits.MaxSliceInitCap)
	out := reflect.MakeSlice(sliceType, 0, initialCap)
	elemType := sliceType.Elem()
	for i := int32(0); i < n; i++ {
		out = reflect.Append(out, reflect.Zero(elemType))
		switch variant {
		case variantStringArray:
			v, err := decodeStringValue(r, elemType)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(int(i)).Set(v)
		case variantDateArray:
			v, err := decodeDateValue(r, elemType)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(int(i)).Set(v)
		case variantIntArray:
			v, err := r.ReadInt32()
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(int(i)).SetInt(int64(v))
		case variantByteArray:
			v, err := r.ReadInt8()
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(int(i)).SetInt(int64(v))
		case variantDoubleArray:
			v, err := r.ReadFloat64()
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(int(i)).SetFloat(v)
		case variantFloatArray:
			v, err := r.ReadFloat32()
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(int(i)).SetFloat(float64(v))
		case variantLongArray:
			v, err := r.ReadInt64()
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(int(i)).SetInt(v)
		}
	}
	return out, nil
}

func decodePrimitiveArrayArray(r *Reader, variant wireVariant, sliceType reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if !present {
		return reflect.Zero(sliceType), nil
	}
	n, err := r.ReadInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	row := arrayArrayRowVariant(variant)
	out := reflect.MakeSlice(sliceType, int(n), int(n))
	for i := int32(0); i < n; i++ {
		v, err := decodePrimitiveArray(r, row, sliceType.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(int(i)).Set(v)
	}
	return out, nil
}

func decodeObject(r *Reader, t reflect.Type) (reflect.Value, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return reflect.Value{}, err
	}
	if !present {
		return reflect.Zero(t), nil
	}
	out := reflect.New(t)
	if err := activeObjectCodec.DecodeObject(&readerIOAdapter{r: r}, out.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}
