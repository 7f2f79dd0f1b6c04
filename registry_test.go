package beanwire

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	uuid "github.com/satori/go.uuid"
)

type inspectorRecord struct{}

func (*inspectorRecord) WriteBean(w *Writer) error { return nil }
func (*inspectorRecord) ReadBean(r *Reader) error   { return nil }

func TestVariantForType_Primitives(t *testing.T) {
	cases := []struct {
		v    any
		want wireVariant
	}{
		{int32(0), variantInt},
		{false, variantBoolean},
		{int8(0), variantByte},
		{uint16(0), variantChar},
		{float64(0), variantDouble},
		{float32(0), variantFloat},
		{int64(0), variantLong},
		{int16(0), variantShort},
		{"", variantString},
		{time.Time{}, variantDate},
		{uuid.UUID{}, variantUUID},
	}
	for _, c := range cases {
		got, err := variantForType(reflect.TypeOf(c.v), fieldOptions{})
		require.NoError(t, err, "%T", c.v)
		assert.Equal(t, c.want, got.variant, "%T", c.v)
	}
}

func TestVariantForType_Boxed(t *testing.T) {
	var i32 int32
	got, err := variantForType(reflect.TypeOf(&i32), fieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, variantBoxedInt, got.variant)
}

func TestVariantForType_Arrays(t *testing.T) {
	got, err := variantForType(reflect.TypeOf([]int32{}), fieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, variantIntArray, got.variant)

	got, err = variantForType(reflect.TypeOf([][]int32{}), fieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, variantIntArrayArray, got.variant)
}

func TestVariantForType_Externalizable(t *testing.T) {
	got, err := variantForType(reflect.TypeOf(&inspectorRecord{}), fieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, variantExternalizable, got.variant)

	got, err = variantForType(reflect.TypeOf([]*inspectorRecord{}), fieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, variantExternalizableArray, got.variant)
}

func TestVariantForType_EnumSet(t *testing.T) {
	_, err := variantForType(reflect.TypeOf(EnumSet(0)), fieldOptions{})
	assert.Error(t, err, "EnumSet with no cardinality must be rejected")

	got, err := variantForType(reflect.TypeOf(EnumSet(0)), fieldOptions{enumValues: 3})
	require.NoError(t, err)
	assert.Equal(t, variantEnumSet, got.variant)

	_, err = variantForType(reflect.TypeOf(EnumSet(0)), fieldOptions{enumValues: 65})
	assert.Error(t, err, "EnumSet cardinality over 64 must be rejected")
}

func TestVariantForType_Enum(t *testing.T) {
	type Suit int32
	got, err := variantForType(reflect.TypeOf(Suit(0)), fieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, variantEnum, got.variant)
}

func TestRegisterExternalizable_RoundTripsName(t *testing.T) {
	RegisterExternalizable("beanwire.test.inspectorRecord", func() Externalizable { return &inspectorRecord{} })

	name, ok := lookupClassName(reflect.TypeOf(&inspectorRecord{}))
	require.True(t, ok)
	assert.Equal(t, "beanwire.test.inspectorRecord", name)

	maker, ok := lookupExternalizableMaker("beanwire.test.inspectorRecord")
	require.True(t, ok)
	assert.IsType(t, &inspectorRecord{}, maker())
}
