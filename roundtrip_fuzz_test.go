package beanwire_test

import (
	"math"
	"testing"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/kungfusheep/beanwire"
)

// FuzzPrimitiveRecordRoundtrip fuzzes the exact-match primitive variants
// through a full Marshal/Unmarshal cycle.
func FuzzPrimitiveRecordRoundtrip(f *testing.F) {
	f.Add("greetings", int32(0), int64(0), float64(0.0), true)
	f.Add("", int32(math.MinInt32), int64(math.MaxInt64), math.NaN(), false)
	f.Add("world", int32(math.MaxInt32), int64(math.MinInt64), math.Inf(1), true)
	f.Add(string([]byte{0xFF, 0xFE, 0xFD}), int32(-1), int64(1), 3.14159, false)

	type primitiveRecord struct {
		Name  string  `bean:"0"`
		Age   int32   `bean:"1"`
		Big   int64   `bean:"2"`
		Score float64 `bean:"3"`
		Alive bool    `bean:"4"`
	}

	f.Fuzz(func(t *testing.T, name string, age int32, big int64, score float64, alive bool) {
		in := &primitiveRecord{Name: name, Age: age, Big: big, Score: score, Alive: alive}

		data, err := beanwire.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		var out primitiveRecord
		if err := beanwire.Unmarshal(data, &out); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		if out.Name != in.Name {
			t.Errorf("Name mismatch: got %q, want %q", out.Name, in.Name)
		}
		if out.Age != in.Age {
			t.Errorf("Age mismatch: got %d, want %d", out.Age, in.Age)
		}
		if out.Big != in.Big {
			t.Errorf("Big mismatch: got %d, want %d", out.Big, in.Big)
		}
		if out.Alive != in.Alive {
			t.Errorf("Alive mismatch: got %v, want %v", out.Alive, in.Alive)
		}
		if math.IsNaN(in.Score) {
			if !math.IsNaN(out.Score) {
				t.Errorf("Score NaN mismatch")
			}
		} else if out.Score != in.Score {
			t.Errorf("Score mismatch: got %f, want %f", out.Score, in.Score)
		}
	})
}

// FuzzBoxedAndArrayRecordRoundtrip fuzzes the boxed-pointer and primitive-array
// variants, including nil-vs-present pointer fields.
func FuzzBoxedAndArrayRecordRoundtrip(f *testing.F) {
	f.Add(int32(0), true, byte(0), byte(3))
	f.Add(int32(-7), false, byte(1), byte(0))
	f.Add(int32(math.MaxInt32), true, byte(1), byte(12))

	type boxedRecord struct {
		Value  *int32  `bean:"0"`
		Scores []int32 `bean:"1"`
	}

	f.Fuzz(func(t *testing.T, v int32, hasValue bool, hasScores byte, n byte) {
		in := &boxedRecord{}
		if hasValue {
			in.Value = &v
		}
		if hasScores != 0 {
			scores := make([]int32, int(n)%32)
			for i := range scores {
				scores[i] = int32(i) + v
			}
			in.Scores = scores
		}

		data, err := beanwire.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		var out boxedRecord
		if err := beanwire.Unmarshal(data, &out); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		if (in.Value == nil) != (out.Value == nil) {
			t.Fatalf("Value nil mismatch")
		}
		if in.Value != nil && *in.Value != *out.Value {
			t.Errorf("Value mismatch: got %d, want %d", *out.Value, *in.Value)
		}
		if len(in.Scores) != len(out.Scores) {
			t.Fatalf("Scores length mismatch: got %d, want %d", len(out.Scores), len(in.Scores))
		}
		for i := range in.Scores {
			if in.Scores[i] != out.Scores[i] {
				t.Errorf("Scores[%d] mismatch: got %d, want %d", i, out.Scores[i], in.Scores[i])
			}
		}
	})
}

// FuzzDateAndUUIDRoundtrip fuzzes the Date and UUID variants, both of which
// carry their own presence flag ahead of a fixed-width payload.
func FuzzDateAndUUIDRoundtrip(f *testing.F) {
	f.Add(int64(0), [16]byte{})
	f.Add(int64(1700000000), [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	f.Add(int64(-62135596800), [16]byte{0xFF})

	type timeRecord struct {
		When time.Time `bean:"0"`
		ID   uuid.UUID `bean:"1"`
	}

	f.Fuzz(func(t *testing.T, unixSeconds int64, idBytes [16]byte) {
		in := &timeRecord{
			When: time.Unix(unixSeconds, 0).UTC(),
			ID:   uuid.UUID(idBytes),
		}

		data, err := beanwire.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		var out timeRecord
		if err := beanwire.Unmarshal(data, &out); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		if !in.When.Equal(out.When) {
			t.Errorf("When mismatch: got %v, want %v", out.When, in.When)
		}
		if in.ID != out.ID {
			t.Errorf("ID mismatch: got %v, want %v", out.ID, in.ID)
		}
	})
}

// FuzzDecodeArbitraryBytesNeverPanics feeds arbitrary byte slices into the
// decoder to confirm malformed or truncated input always surfaces as an
// error rather than a panic.
func FuzzDecodeArbitraryBytesNeverPanics(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x00})
	f.Add([]byte{0x01, 0x00, 0x00})
	f.Add([]byte{0x01, 0x00, 0x08, 0x01, 0x00, 0x02, 'h', 'i'})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	type arbitraryRecord struct {
		Name  string  `bean:"0"`
		Age   int32   `bean:"1"`
		Score float64 `bean:"2"`
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Unmarshal panicked on input %x: %v", data, r)
			}
		}()

		var out arbitraryRecord
		_ = beanwire.Unmarshal(data, &out)
	})
}
