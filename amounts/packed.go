// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amounts

import (
	"encoding/binary"

	"github.com/luxfi/cclib/bigint"
)

// PackedUnsigned is a 128-bit big-endian amount image. Lexicographic byte
// comparison matches numeric comparison.
type PackedUnsigned [UnsignedPackedBytes]byte

// PackedSigned is a 192-bit big-endian amount image offset by 2^191, so
// lexicographic byte comparison matches signed numeric comparison.
type PackedSigned [SignedPackedBytes]byte

// PackUnsigned stores amount into a PackedUnsigned. It fails when the
// value does not fit in 128 bits.
func PackUnsigned(amount *bigint.Big) (PackedUnsigned, error) {
	var p PackedUnsigned
	if amount[2] != 0 || amount[3] != 0 {
		return p, ErrAmountRange
	}
	binary.BigEndian.PutUint64(p[0:], amount[1])
	binary.BigEndian.PutUint64(p[8:], amount[0])
	return p, nil
}

// UnpackUnsigned restores the value stored by PackUnsigned.
func UnpackUnsigned(p *PackedUnsigned) bigint.Big {
	var v bigint.Big
	v[1] = binary.BigEndian.Uint64(p[0:])
	v[0] = binary.BigEndian.Uint64(p[8:])
	return v
}

// packOffset is 2^191, the bias added to signed amounts before packing.
func packOffset() bigint.Big {
	var v bigint.Big
	v.SetOne()
	bigint.ShiftUp(&v, 191)
	return v
}

// PackSigned stores a two's-complement amount into a PackedSigned. It
// fails when the value is outside [-2^191, 2^191).
func PackSigned(amount *bigint.Big) (PackedSigned, error) {
	var p PackedSigned

	off := packOffset()
	var adj bigint.Big
	adj.Add(amount, &off)

	binary.BigEndian.PutUint64(p[0:], adj[2])
	binary.BigEndian.PutUint64(p[8:], adj[1])
	binary.BigEndian.PutUint64(p[16:], adj[0])

	if check := UnpackSigned(&p); check != *amount {
		return p, ErrAmountRange
	}
	return p, nil
}

// UnpackSigned restores the two's-complement value stored by PackSigned.
func UnpackSigned(p *PackedSigned) bigint.Big {
	var v bigint.Big
	v[2] = binary.BigEndian.Uint64(p[0:])
	v[1] = binary.BigEndian.Uint64(p[8:])
	v[0] = binary.BigEndian.Uint64(p[16:])

	off := packOffset()
	v.Sub(&v, &off)

	if v[2]&(uint64(1)<<63) != 0 {
		v[3] = ^uint64(0)
	} else {
		v[3] = 0
	}
	return v
}
