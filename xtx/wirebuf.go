// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xtx

import (
	"errors"

	"github.com/luxfi/cclib/bigint"
)

var ErrWireOverflow = errors.New("xtx wire buffer overflow")

// WireWriter appends fixed-width little-endian fields.
type WireWriter struct {
	buf []byte
	pos int
}

func NewWireWriter(buf []byte) *WireWriter {
	return &WireWriter{buf: buf}
}

func (w *WireWriter) Pos() int { return w.pos }

func (w *WireWriter) Err() error {
	if w.pos > len(w.buf) {
		return ErrWireOverflow
	}
	return nil
}

func (w *WireWriter) PutUint(v uint64, nbytes int) {
	for i := 0; i < nbytes; i++ {
		if w.pos < len(w.buf) {
			w.buf[w.pos] = byte(v >> (8 * i))
		}
		w.pos++
	}
}

func (w *WireWriter) PutBig(v *bigint.Big, nbytes int) {
	le := bigint.LittleEndianBytes(v)
	for i := 0; i < nbytes; i++ {
		if w.pos < len(w.buf) {
			w.buf[w.pos] = le[i]
		}
		w.pos++
	}
}

func (w *WireWriter) PutBytes(b []byte) {
	for _, c := range b {
		if w.pos < len(w.buf) {
			w.buf[w.pos] = c
		}
		w.pos++
	}
}

// WireReader consumes fixed-width little-endian fields.
type WireReader struct {
	buf []byte
	pos int
}

func NewWireReader(buf []byte) *WireReader {
	return &WireReader{buf: buf}
}

func (r *WireReader) Pos() int { return r.pos }

func (r *WireReader) Err() error {
	if r.pos > len(r.buf) {
		return ErrWireOverflow
	}
	return nil
}

func (r *WireReader) GetUint(nbytes int) uint64 {
	var v uint64
	for i := 0; i < nbytes; i++ {
		if r.pos < len(r.buf) {
			v |= uint64(r.buf[r.pos]) << (8 * i)
		}
		r.pos++
	}
	return v
}

func (r *WireReader) GetBig(nbytes int) bigint.Big {
	var le [32]byte
	for i := 0; i < nbytes && i < 32; i++ {
		if r.pos < len(r.buf) {
			le[i] = r.buf[r.pos]
		}
		r.pos++
	}
	var v bigint.Big
	bigint.SetLittleEndian(&v, le[:])
	return v
}

func (r *WireReader) GetBytes(n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		if r.pos < len(r.buf) {
			out[i] = r.buf[r.pos]
		}
		r.pos++
	}
	return out
}

func (r *WireReader) Remaining() int {
	if r.pos >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.pos
}
