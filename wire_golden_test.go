package beanwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type goldenIntRecord struct {
	X int32 `bean:"0"`
}

type goldenStringRecord struct {
	Greeting string `bean:"0"`
}

func TestGolden_SingleIntField(t *testing.T) {
	got, err := Marshal(&goldenIntRecord{X: 5})
	require.NoError(t, err)
	want := []byte{
		0x01,             // field count
		0x00, 0x00,       // field index 0, variant 0 (pInt)
		0x00, 0x00, 0x00, 0x05, // int32(5), big-endian
	}
	assert.Equal(t, want, got)
}

func TestGolden_SingleStringField(t *testing.T) {
	got, err := Marshal(&goldenStringRecord{Greeting: "hi"})
	require.NoError(t, err)
	want := []byte{
		0x01,       // field count
		0x00, 0x08, // field index 0, variant 8 (String)
		0x01,       // non-null
		0x00, 0x02, // UTF length 2
		'h', 'i',
	}
	assert.Equal(t, want, got)
}

func TestGolden_RoundTrip(t *testing.T) {
	var out goldenStringRecord
	data, err := Marshal(&goldenStringRecord{Greeting: "round trip"})
	require.NoError(t, err)
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, "round trip", out.Greeting)
}
