// Package beanwire implements a self-describing binary record codec.
//
// Records carry per-field type tags and stable numeric indices so that a
// reader and writer may disagree about which fields exist: unknown fields
// are skipped, missing fields keep their zero value. See spec.md for the
// full wire contract.
package beanwire

import "fmt"

// wireVariant identifies one of the closed set of wire encodings a field
// may use. The numeric value is the tag byte written immediately after a
// field's index on the wire - it is a frozen contract (spec.md §6, §8.4).
type wireVariant uint8

const (
	variantInt        wireVariant = 0
	variantBoolean    wireVariant = 1
	variantByte       wireVariant = 2
	variantChar       wireVariant = 3
	variantDouble     wireVariant = 4
	variantFloat      wireVariant = 5
	variantLong       wireVariant = 6
	variantShort      wireVariant = 7
	variantString     wireVariant = 8
	variantDate       wireVariant = 9
	variantBoxedInt    wireVariant = 10
	variantBoxedBool   wireVariant = 11
	variantBoxedByte   wireVariant = 12
	variantBoxedChar   wireVariant = 13
	variantBoxedDouble wireVariant = 14
	variantBoxedFloat  wireVariant = 15
	variantBoxedLong   wireVariant = 16
	variantBoxedShort  wireVariant = 17
	variantExternalizable       wireVariant = 18
	variantStringArray          wireVariant = 19
	variantDateArray            wireVariant = 20
	variantIntArray             wireVariant = 21
	variantByteArray            wireVariant = 22
	variantDoubleArray          wireVariant = 23
	variantFloatArray           wireVariant = 24
	variantLongArray            wireVariant = 25
	variantListOfExternalizables wireVariant = 26
	variantExternalizableArray   wireVariant = 27
	variantExternalizableArrayArray wireVariant = 28
	variantObject     wireVariant = 29
	variantUUID       wireVariant = 30
	variantStringArrayArray wireVariant = 31
	variantDateArrayArray   wireVariant = 32
	variantIntArrayArray    wireVariant = 33
	variantByteArrayArray   wireVariant = 34
	variantDoubleArrayArray wireVariant = 35
	variantFloatArrayArray  wireVariant = 36
	variantLongArrayArray   wireVariant = 37
	variantEnum       wireVariant = 38
	variantEnumSet    wireVariant = 39
	variantListOfStrings wireVariant = 40

	variantUnknown wireVariant = 255
)

func (v wireVariant) String() string {
	switch v {
	case variantInt:
		return "pInt"
	case variantBoolean:
		return "pBoolean"
	case variantByte:
		return "pByte"
	case variantChar:
		return "pChar"
	case variantDouble:
		return "pDouble"
	case variantFloat:
		return "pFloat"
	case variantLong:
		return "pLong"
	case variantShort:
		return "pShort"
	case variantString:
		return "String"
	case variantDate:
		return "Date"
	case variantBoxedInt:
		return "Integer"
	case variantBoxedBool:
		return "Boolean"
	case variantBoxedByte:
		return "Byte"
	case variantBoxedChar:
		return "Character"
	case variantBoxedDouble:
		return "Double"
	case variantBoxedFloat:
		return "Float"
	case variantBoxedLong:
		return "Long"
	case variantBoxedShort:
		return "Short"
	case variantExternalizable:
		return "Externalizable"
	case variantStringArray:
		return "StringArray"
	case variantDateArray:
		return "DateArray"
	case variantIntArray:
		return "pIntArray"
	case variantByteArray:
		return "pByteArray"
	case variantDoubleArray:
		return "pDoubleArray"
	case variantFloatArray:
		return "pFloatArray"
	case variantLongArray:
		return "pLongArray"
	case variantListOfExternalizables:
		return "ListOfExternalizables"
	case variantExternalizableArray:
		return "ExternalizableArray"
	case variantExternalizableArrayArray:
		return "ExternalizableArrayArray"
	case variantObject:
		return "Object"
	case variantUUID:
		return "UUID"
	case variantStringArrayArray:
		return "StringArrayArray"
	case variantDateArrayArray:
		return "DateArrayArray"
	case variantIntArrayArray:
		return "pIntArrayArray"
	case variantByteArrayArray:
		return "pByteArrayArray"
	case variantDoubleArrayArray:
		return "pDoubleArrayArray"
	case variantFloatArrayArray:
		return "pFloatArrayArray"
	case variantLongArrayArray:
		return "pLongArrayArray"
	case variantEnum:
		return "Enum"
	case variantEnumSet:
		return "EnumSet"
	case variantListOfStrings:
		return "ListOfStrings"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// isLengthDynamic reports whether v's payload is preceded by a 4-byte
// length prefix, which lets a reader skip an unrecognized field of this
// variant without understanding its payload. This set is frozen by
// spec.md §4.B: exactly Externalizable, ExternalizableArray and
// ExternalizableArrayArray. Every other variant must be fully understood
// or treated as a parse error - guessing at an unknown fixed-shape variant
// is what spec.md §9 calls out as the codec's one unrecoverable hazard.
func isLengthDynamic(v wireVariant) bool {
	switch v {
	case variantExternalizable, variantExternalizableArray, variantExternalizableArrayArray:
		return true
	default:
		return false
	}
}

// variantForTagID reverse-looks-up a wire variant by its tag byte. Returns
// (variantUnknown, false) for a tag id outside 0..40.
func variantForTagID(id uint8) (wireVariant, bool) {
	if id > uint8(variantListOfStrings) {
		return variantUnknown, false
	}
	return wireVariant(id), true
}
