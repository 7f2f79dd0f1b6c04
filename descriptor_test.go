package beanwire

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldTag(t *testing.T) {
	cases := []struct {
		tag     string
		want    fieldOptions
		wantOK  bool
		wantErr bool
	}{
		{tag: "3", want: fieldOptions{index: 3}, wantOK: true},
		{tag: "3,method", want: fieldOptions{index: 3, method: true}, wantOK: true},
		{tag: "9,enumvalues=12", want: fieldOptions{index: 9, enumValues: 12}, wantOK: true},
		{tag: "-", wantOK: false},
		{tag: "", wantOK: false},
		{tag: "notanumber", wantErr: true},
		{tag: "3,bogus", wantErr: true},
	}
	for _, c := range cases {
		got, ok, err := parseFieldTag(c.tag)
		if c.wantErr {
			assert.Error(t, err, c.tag)
			continue
		}
		require.NoError(t, err, c.tag)
		assert.Equal(t, c.wantOK, ok, c.tag)
		if ok {
			assert.Equal(t, c.want, got, c.tag)
		}
	}
}

type simpleRecord struct {
	Name string `bean:"0"`
	Age  int32  `bean:"1"`
}

type methodTaggedRecord struct {
	name string `bean:"0,method"`
}

func (r *methodTaggedRecord) GetName() string { return r.name }
func (r *methodTaggedRecord) SetName(v string) { r.name = v }

func TestBuildClassDescriptor_MethodAccessor(t *testing.T) {
	d, err := buildClassDescriptor(reflect.TypeOf(methodTaggedRecord{}))
	require.NoError(t, err)
	require.Len(t, d.fields, 1)

	rec := &methodTaggedRecord{}
	rv := reflect.ValueOf(rec).Elem()
	d.fields[0].accessor.set(rv, reflect.ValueOf("hello"))
	assert.Equal(t, "hello", rec.name)
	assert.Equal(t, "hello", d.fields[0].accessor.get(rv).String())
}

func TestBuildClassDescriptor_Direct(t *testing.T) {
	d, err := buildClassDescriptor(reflect.TypeOf(simpleRecord{}))
	require.NoError(t, err)
	require.Len(t, d.fields, 2)
	assert.Equal(t, 0, d.fields[0].index)
	assert.Equal(t, variantString, d.fields[0].variant)
	assert.Equal(t, 1, d.fields[1].index)
	assert.Equal(t, variantInt, d.fields[1].variant)
}

func TestBuildClassDescriptor_DuplicateIndex(t *testing.T) {
	type dup struct {
		A string `bean:"0"`
		B string `bean:"0"`
	}
	_, err := buildClassDescriptor(reflect.TypeOf(dup{}))
	require.Error(t, err)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestGetClassDescriptor_Cached(t *testing.T) {
	d1, err := getClassDescriptor(reflect.TypeOf(simpleRecord{}))
	require.NoError(t, err)
	d2, err := getClassDescriptor(reflect.TypeOf(simpleRecord{}))
	require.NoError(t, err)
	assert.Same(t, d1, d2)
}
