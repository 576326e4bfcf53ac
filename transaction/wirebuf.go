// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transaction

import (
	"github.com/luxfi/cclib/bigint"
)

// wireWriter appends fixed-width little-endian fields to a caller
// buffer, tracking the position past the end so overflow errors can
// report the needed size.
type wireWriter struct {
	buf []byte
	pos int
}

func (w *wireWriter) overflowed() bool {
	return w.pos > len(w.buf)
}

func (w *wireWriter) err() error {
	if w.overflowed() {
		return &BufferOverflowError{Need: w.pos}
	}
	return nil
}

func (w *wireWriter) putUint(v uint64, nbytes int) {
	for i := 0; i < nbytes; i++ {
		if w.pos < len(w.buf) {
			w.buf[w.pos] = byte(v >> (8 * i))
		}
		w.pos++
	}
}

func (w *wireWriter) putBig(v *bigint.Big, nbytes int) {
	le := bigint.LittleEndianBytes(v)
	for i := 0; i < nbytes; i++ {
		if w.pos < len(w.buf) {
			w.buf[w.pos] = le[i]
		}
		w.pos++
	}
}

func (w *wireWriter) putBytes(b []byte) {
	for _, c := range b {
		if w.pos < len(w.buf) {
			w.buf[w.pos] = c
		}
		w.pos++
	}
}

// wireReader consumes fixed-width little-endian fields.
type wireReader struct {
	buf []byte
	pos int
}

func (r *wireReader) overflowed() bool {
	return r.pos > len(r.buf)
}

func (r *wireReader) err() error {
	if r.overflowed() {
		return &BufferOverflowError{Need: r.pos}
	}
	return nil
}

func (r *wireReader) getUint(nbytes int) uint64 {
	var v uint64
	for i := 0; i < nbytes; i++ {
		if r.pos < len(r.buf) {
			v |= uint64(r.buf[r.pos]) << (8 * i)
		}
		r.pos++
	}
	return v
}

func (r *wireReader) getBig(nbytes int) bigint.Big {
	var le [32]byte
	for i := 0; i < nbytes; i++ {
		if r.pos < len(r.buf) && i < len(le) {
			le[i] = r.buf[r.pos]
		}
		r.pos++
	}
	var v bigint.Big
	bigint.SetLittleEndian(&v, le[:])
	return v
}

func (r *wireReader) getBytes(n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		if r.pos < len(r.buf) {
			out[i] = r.buf[r.pos]
		}
		r.pos++
	}
	return out
}

func (r *wireReader) remaining() int {
	if r.pos >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.pos
}
