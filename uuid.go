package beanwire

import uuid "github.com/satori/go.uuid"

// writeUUID writes u as two big-endian int64 halves (most significant
// bits, then least significant bits), spec.md §6 tag 30's UUID layout.
// A standard UUID's 16-byte array is already laid out MSB-first, so this
// is a direct copy rather than any kind of reassembly.
func writeUUID(w *Writer, u uuid.UUID) {
	w.Bytes = append(w.Bytes, u[:]...)
}

func readUUID(r *Reader) (uuid.UUID, error) {
	b, err := r.read(16)
	if err != nil {
		return uuid.UUID{}, err
	}
	var u uuid.UUID
	copy(u[:], b)
	return u, nil
}
