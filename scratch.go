package beanwire

import "sync"

const (
	scratchShrinkThreshold = 1 << 20 // 1 MiB - spec.md §3
	scratchShrinkTo        = 1 << 10 // 1 KiB - spec.md §3
)

// scratchBuffer is the growable byte buffer spec.md §3/§4.D describes:
// a length-dynamic field (Externalizable, ExternalizableArray,
// ExternalizableArrayArray) is encoded into one of these first so its
// total size is known before the 4-byte length prefix is written to the
// real output. Reset shrinks an oversized buffer back down so one huge
// record doesn't pin memory forever.
//
// Each use of a length-dynamic field acquires its own scratchBuffer from
// scratchPool rather than sharing a single per-goroutine instance; this is
// a safe generalization of the teacher's single-buffer-per-thread model
// (see DESIGN.md) that also sidesteps spec.md §5's reentrancy caveat about
// two dynamic encodings being active at once on the same thread - with
// pooled, independently-acquired buffers that situation simply cannot
// arise.
type scratchBuffer struct {
	w Writer
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuffer{} },
}

func getScratch() *scratchBuffer {
	s := scratchPool.Get().(*scratchBuffer)
	s.reset()
	return s
}

func putScratch(s *scratchBuffer) {
	scratchPool.Put(s)
}

// reset clears the buffer for reuse, shrinking its backing array back to
// scratchShrinkTo if a previous use grew it past scratchShrinkThreshold.
func (s *scratchBuffer) reset() {
	if cap(s.w.Bytes) > scratchShrinkThreshold {
		s.w.Bytes = make([]byte, 0, scratchShrinkTo)
		return
	}
	s.w.Bytes = s.w.Bytes[:0]
}
