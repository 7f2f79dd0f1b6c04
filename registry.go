package beanwire

import (
	"reflect"
	"time"

	uuid "github.com/satori/go.uuid"
)

var (
	typeOfTime = reflect.TypeOf(time.Time{})
	typeOfUUID = reflect.TypeOf(uuid.UUID{})
)

// resolvedField is what the type registry hands back to the descriptor
// builder for a single struct field: the wire variant it encodes with,
// plus (for the handful of variants that need it) the static element
// type the field declares, used both as the Externalizable
// default-element-type spec.md §4.E's "same as declared/default class"
// elision relies on, and as the concrete type to instantiate when
// decoding an unknown-name class is not possible.
type resolvedField struct {
	variant wireVariant
	elem    reflect.Type
}

// variantForType implements spec.md §4.B's resolution order: first an
// exact match against the closed set of built-in primitive/boxed/String
// /Date/UUID types and their array/list forms, then Externalizable
// (record, array, 2D array, list), then Enum/EnumSet, and only then the
// generic Object fallback.
func variantForType(t reflect.Type, opts fieldOptions) (resolvedField, error) {
	if v, ok := exactVariant(t); ok {
		return resolvedField{variant: v}, nil
	}

	if t.Kind() == reflect.Ptr {
		if v, ok := boxedVariant(t.Elem()); ok {
			return resolvedField{variant: v}, nil
		}
		switch t.Elem() {
		case reflect.TypeOf(""):
			return resolvedField{variant: variantString}, nil
		case typeOfTime:
			return resolvedField{variant: variantDate}, nil
		case typeOfUUID:
			return resolvedField{variant: variantUUID}, nil
		}
	}

	if isExternalizableRecord(t) {
		return resolvedField{variant: variantExternalizable, elem: t}, nil
	}

	if t.Kind() == reflect.Slice && t.Implements(beanListType) {
		elem := t.Elem()
		if isExternalizableElem(elem) {
			return resolvedField{variant: variantListOfExternalizables, elem: elem}, nil
		}
		if elem.Kind() == reflect.String {
			return resolvedField{variant: variantListOfStrings}, nil
		}
		return resolvedField{}, configErr(t, "List element type %s is not Externalizable or string", elem)
	}

	if t.Kind() == reflect.Slice {
		elem := t.Elem()

		if elem.Kind() == reflect.Slice {
			inner := elem.Elem()
			if isExternalizableElem(inner) {
				return resolvedField{variant: variantExternalizableArrayArray, elem: inner}, nil
			}
			if v, ok := arrayArrayVariant(inner); ok {
				return resolvedField{variant: v}, nil
			}
			return resolvedField{}, configErr(t, "unsupported 2D array element type %s", inner)
		}

		if isExternalizableElem(elem) {
			return resolvedField{variant: variantExternalizableArray, elem: elem}, nil
		}
		if v, ok := arrayVariant(elem); ok {
			return resolvedField{variant: v}, nil
		}
		return resolvedField{}, configErr(t, "unsupported array element type %s", elem)
	}

	if t == reflect.TypeOf(EnumSet(0)) {
		if opts.enumValues <= 0 {
			return resolvedField{}, configErr(t, "EnumSet field requires an `enumvalues=<n>` tag option")
		}
		if opts.enumValues > 64 {
			return resolvedField{}, configErr(t, "EnumSet cardinality %d exceeds the 64-value limit", opts.enumValues)
		}
		return resolvedField{variant: variantEnumSet}, nil
	}

	if t.Kind() == reflect.Int32 && t != reflect.TypeOf(int32(0)) {
		return resolvedField{variant: variantEnum, elem: t}, nil
	}

	// spec.md §4.B: anything else falls back to opaque-object encoding.
	return resolvedField{variant: variantObject, elem: t}, nil
}

// exactVariant matches the closed set of built-in non-pointer primitive,
// String, Date, and UUID types (spec.md §6 tags 0-9, 30).
func exactVariant(t reflect.Type) (wireVariant, bool) {
	switch {
	case t == typeOfTime:
		return variantDate, true
	case t == typeOfUUID:
		return variantUUID, true
	}

	switch t.Kind() {
	case reflect.Int32:
		if t == reflect.TypeOf(int32(0)) {
			return variantInt, true
		}
	case reflect.Bool:
		return variantBoolean, true
	case reflect.Int8:
		return variantByte, true
	case reflect.Uint16:
		return variantChar, true
	case reflect.Float64:
		return variantDouble, true
	case reflect.Float32:
		return variantFloat, true
	case reflect.Int64:
		return variantLong, true
	case reflect.Int16:
		return variantShort, true
	case reflect.String:
		return variantString, true
	}
	return variantUnknown, false
}

// boxedVariant matches the pointee type of a pointer field against the
// nullable "boxed primitive" variants (spec.md §6 tags 10-17). Pointers to
// String/Date/UUID are handled by their already-nullable base variant, not
// a separate boxed tag - the wire table only gives boxed forms to the
// eight primitive kinds.
func boxedVariant(elem reflect.Type) (wireVariant, bool) {
	switch elem.Kind() {
	case reflect.Int32:
		if elem == reflect.TypeOf(int32(0)) {
			return variantBoxedInt, true
		}
	case reflect.Bool:
		return variantBoxedBool, true
	case reflect.Int8:
		return variantBoxedByte, true
	case reflect.Uint16:
		return variantBoxedChar, true
	case reflect.Float64:
		return variantBoxedDouble, true
	case reflect.Float32:
		return variantBoxedFloat, true
	case reflect.Int64:
		return variantBoxedLong, true
	case reflect.Int16:
		return variantBoxedShort, true
	}
	return variantUnknown, false
}

// arrayVariant matches a 1D slice's element type against the five
// primitive array variants plus String/Date (tags 19-25).
func arrayVariant(elem reflect.Type) (wireVariant, bool) {
	switch {
	case elem == typeOfTime:
		return variantDateArray, true
	}
	switch elem.Kind() {
	case reflect.String:
		return variantStringArray, true
	case reflect.Int32:
		return variantIntArray, true
	case reflect.Int8:
		return variantByteArray, true
	case reflect.Float64:
		return variantDoubleArray, true
	case reflect.Float32:
		return variantFloatArray, true
	case reflect.Int64:
		return variantLongArray, true
	}
	return variantUnknown, false
}

// arrayArrayVariant is arrayVariant's 2D counterpart (tags 31-37).
func arrayArrayVariant(elem reflect.Type) (wireVariant, bool) {
	switch {
	case elem == typeOfTime:
		return variantDateArrayArray, true
	}
	switch elem.Kind() {
	case reflect.String:
		return variantStringArrayArray, true
	case reflect.Int32:
		return variantIntArrayArray, true
	case reflect.Int8:
		return variantByteArrayArray, true
	case reflect.Float64:
		return variantDoubleArrayArray, true
	case reflect.Float32:
		return variantFloatArrayArray, true
	case reflect.Int64:
		return variantLongArrayArray, true
	}
	return variantUnknown, false
}

// isExternalizableRecord reports whether t is a pointer type implementing
// Externalizable - records are always encoded/decoded through a pointer
// receiver, mirroring a Java Externalizable's no-arg-constructor-then-
// readExternal protocol (spec.md §4.F).
func isExternalizableRecord(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr && t.Implements(externalizableType)
}

// isExternalizableElem reports whether a slice/array element type is
// Externalizable - either directly a pointer type, or the Externalizable
// interface type itself (a polymorphic field declared as []Externalizable).
func isExternalizableElem(t reflect.Type) bool {
	if t == externalizableType {
		return true
	}
	return isExternalizableRecord(t)
}
