package beanwire_test

import (
	"io"
	"testing"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kungfusheep/beanwire"
)

type address struct {
	Street string `bean:"0"`
	City   string `bean:"1"`
}

func (a *address) WriteBean(w *beanwire.Writer) error { return beanwire.EncodeStruct(w, a) }
func (a *address) ReadBean(r *beanwire.Reader) error  { return beanwire.DecodeStruct(r, a) }

func init() {
	beanwire.RegisterExternalizable("roundtrip.address", func() beanwire.Externalizable { return &address{} })
}

type suit int32

const (
	suitClubs suit = iota
	suitDiamonds
	suitHearts
	suitSpades
)

type person struct {
	Name      string            `bean:"0"`
	Age       int32             `bean:"1"`
	Nickname  *string           `bean:"2"`
	Height    *float64          `bean:"3"`
	Born      time.Time         `bean:"4"`
	ID        uuid.UUID         `bean:"5"`
	Home      *address          `bean:"6"`
	Aliases   []string          `bean:"7"`
	Scores    []int32           `bean:"8"`
	Grid      [][]int32         `bean:"9"`
	FavSuit   suit              `bean:"10"`
	Suits     beanwire.EnumSet  `bean:"11,enumvalues=4"`
	Addresses []*address        `bean:"12"`
	Tags      beanwire.List[string] `bean:"13"`
}

func (p *person) WriteBean(w *beanwire.Writer) error { return beanwire.EncodeStruct(w, p) }
func (p *person) ReadBean(r *beanwire.Reader) error  { return beanwire.DecodeStruct(r, p) }

func samplePerson() *person {
	nick := "J"
	height := 1.8
	var suits beanwire.EnumSet
	suits.Add(int32(suitHearts))
	suits.Add(int32(suitSpades))
	return &person{
		Name:     "Jordan",
		Age:      30,
		Nickname: &nick,
		Height:   &height,
		Born:     time.Date(2000, 1, 2, 3, 4, 5, 0, time.UTC),
		ID:       uuid.NewV4(),
		Home:     &address{Street: "1 Main St", City: "Springfield"},
		Aliases:  []string{"J", "Jordie"},
		Scores:   []int32{1, 2, 3},
		Grid:     [][]int32{{1, 2}, {3, 4, 5}},
		FavSuit:  suitHearts,
		Suits:    suits,
		Addresses: []*address{
			{Street: "2 Side St", City: "Shelbyville"},
			{Street: "3 Back Rd", City: "Ogdenville"},
		},
		Tags: beanwire.List[string]{"vip", "returning"},
	}
}

func TestRoundTrip_FullRecord(t *testing.T) {
	in := samplePerson()
	data, err := beanwire.Marshal(in)
	require.NoError(t, err)

	var out person
	require.NoError(t, beanwire.Unmarshal(data, &out))

	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Age, out.Age)
	require.NotNil(t, out.Nickname)
	assert.Equal(t, *in.Nickname, *out.Nickname)
	require.NotNil(t, out.Height)
	assert.Equal(t, *in.Height, *out.Height)
	assert.True(t, in.Born.Equal(out.Born))
	assert.Equal(t, in.ID, out.ID)
	require.NotNil(t, out.Home)
	assert.Equal(t, *in.Home, *out.Home)
	assert.Equal(t, in.Aliases, out.Aliases)
	assert.Equal(t, in.Scores, out.Scores)
	assert.Equal(t, in.Grid, out.Grid)
	assert.Equal(t, in.FavSuit, out.FavSuit)
	assert.True(t, out.Suits.Has(int32(suitHearts)))
	assert.True(t, out.Suits.Has(int32(suitSpades)))
	assert.False(t, out.Suits.Has(int32(suitClubs)))
	require.Len(t, out.Addresses, 2)
	assert.Equal(t, *in.Addresses[0], *out.Addresses[0])
	assert.Equal(t, *in.Addresses[1], *out.Addresses[1])
	assert.Equal(t, in.Tags, out.Tags)
}

func TestRoundTrip_NilPointers(t *testing.T) {
	in := &person{Name: "Nil Fields"}
	data, err := beanwire.Marshal(in)
	require.NoError(t, err)

	var out person
	require.NoError(t, beanwire.Unmarshal(data, &out))
	assert.Nil(t, out.Nickname)
	assert.Nil(t, out.Height)
	assert.Nil(t, out.Home)
	assert.Nil(t, out.Aliases)
	assert.Nil(t, out.Addresses)
}

// narrowPerson has only a subset of person's fields, at the same indices,
// modeling a reader built from an older/smaller version of the class -
// the forward-compatibility case spec.md's unknown-field skip exists for.
type narrowPerson struct {
	Name string `bean:"0"`
	Age  int32  `bean:"1"`
}

func TestRoundTrip_UnknownFieldsAreSkipped(t *testing.T) {
	in := samplePerson()
	data, err := beanwire.Marshal(in)
	require.NoError(t, err)

	var out narrowPerson
	require.NoError(t, beanwire.Unmarshal(data, &out))
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Age, out.Age)
}

// widePerson declares a field (index 99) that never appears on the wire -
// spec.md's missing-field case: the field simply keeps its zero value.
type widePerson struct {
	Name    string `bean:"0"`
	Age     int32  `bean:"1"`
	Unknown int32  `bean:"99"`
}

func TestRoundTrip_MissingFieldsKeepZeroValue(t *testing.T) {
	in := &narrowPerson{Name: "Old Format", Age: 41}
	data, err := beanwire.Marshal(in)
	require.NoError(t, err)

	var out widePerson
	require.NoError(t, beanwire.Unmarshal(data, &out))
	assert.Equal(t, "Old Format", out.Name)
	assert.Equal(t, int32(41), out.Age)
	assert.Equal(t, int32(0), out.Unknown)
}

func TestStreamEncodeDecode(t *testing.T) {
	var buf streamBuffer
	enc := beanwire.NewEncoder[person](&buf)
	p1, p2 := samplePerson(), samplePerson()
	p2.Name = "Second"
	require.NoError(t, enc.Encode(p1))
	require.NoError(t, enc.Encode(p2))

	dec := beanwire.NewDecoder[person](&buf)
	got1, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, p1.Name, got1.Name)

	got2, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, "Second", got2.Name)

	_, err = dec.Decode()
	assert.ErrorIs(t, err, beanwire.ErrEndOfInput)
}

// streamBuffer is a minimal growable io.Reader/io.Writer backed by a
// slice, standing in for a real socket/file in the streaming test above.
type streamBuffer struct {
	data []byte
	pos  int
}

func (b *streamBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *streamBuffer) Read(p []byte) (int, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}
