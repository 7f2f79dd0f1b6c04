package beanwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScratchBuffer_ResetShrinksWhenOversized(t *testing.T) {
	s := &scratchBuffer{}
	s.w.Bytes = make([]byte, 10, scratchShrinkThreshold+1)
	s.reset()
	assert.Equal(t, scratchShrinkTo, cap(s.w.Bytes))
	assert.Empty(t, s.w.Bytes)
}

func TestScratchBuffer_ResetKeepsSmallBacking(t *testing.T) {
	s := &scratchBuffer{}
	s.w.Bytes = append(s.w.Bytes, []byte("small")...)
	backing := cap(s.w.Bytes)
	s.reset()
	assert.Equal(t, backing, cap(s.w.Bytes))
	assert.Empty(t, s.w.Bytes)
}

func TestGetPutScratch_PoolRoundTrip(t *testing.T) {
	s := getScratch()
	s.w.WriteByte(7)
	putScratch(s)

	s2 := getScratch()
	assert.Empty(t, s2.w.Bytes)
	putScratch(s2)
}
