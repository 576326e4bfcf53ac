// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bigint provides the fixed-width 4x64-limb integer used across
// the transaction library, together with the BN254 scalar field element
// that backs circuit variables. The limb layout is little-endian, so
// limb 0 carries the low 64 bits.
package bigint

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
)

// Big is a 256-bit unsigned integer with little-endian 64-bit limbs.
type Big = uint256.Int

// Field is an element of the BN254 scalar field, the field the proof
// system operates over.
type Field = fr.Element

// FieldBits is the bit width of the BN254 scalar field prime.
const FieldBits = 254

// NonFieldHiWord marks the high limb of "any value" witnesses so they can
// never alias a reduced field element.
const NonFieldHiWord = uint64(7) << (FieldBits - 3 - 3*64)

// FieldModulus returns the BN254 scalar field prime as a Big.
func FieldModulus() *Big {
	var v Big
	m := fr.Modulus()
	v.SetFromBig(m)
	return &v
}

// FieldMax returns the largest value accepted for prime-field bounded
// inputs (the prime minus one).
func FieldMax() *Big {
	v := FieldModulus()
	var one Big
	one.SetOne()
	v.Sub(v, &one)
	return v
}

// Bit reports whether bit i of v is set. Bits at or above 256 are zero.
func Bit(v *Big, i uint) bool {
	if i >= 256 {
		return false
	}
	return v[i/64]&(uint64(1)<<(i%64)) != 0
}

// ShiftUp shifts v left by n bits in place.
func ShiftUp(v *Big, n uint) {
	if n >= 256 {
		v.Clear()
		return
	}
	v.Lsh(v, n)
}

// ShiftDown shifts v right by n bits in place.
func ShiftDown(v *Big, n uint) {
	if n >= 256 {
		v.Clear()
		return
	}
	v.Rsh(v, n)
}

// Mask clears all bits of v at or above n.
func Mask(v *Big, n uint) {
	if n >= 256 {
		return
	}
	for i := 0; i < 4; i++ {
		base := uint(i) * 64
		switch {
		case base >= n:
			v[i] = 0
		case base+64 > n:
			v[i] &= (uint64(1) << (n - base)) - 1
		}
	}
}

// BytesInUse returns the minimal byte length of v: the index plus one of
// the highest non-zero byte of the little-endian limb image, or zero.
func BytesInUse(v *Big) int {
	for i := 31; i >= 0; i-- {
		if byte(v[i/8]>>(uint(i%8)*8)) != 0 {
			return i + 1
		}
	}
	return 0
}

// Byteswap writes the byte-reversed image of v into out. Reversing twice
// restores the original value.
func Byteswap(v *Big, out *Big) {
	out[0] = bswap64(v[3])
	out[1] = bswap64(v[2])
	out[2] = bswap64(v[1])
	out[3] = bswap64(v[0])
}

func bswap64(x uint64) uint64 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], x)
	return binary.LittleEndian.Uint64(b[:])
}

// Randomize fills v with OS randomness.
func Randomize(v *Big) error {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return err
	}
	v.SetBytes(b[:])
	return nil
}

// LittleEndianBytes returns the full 32-byte little-endian image of v.
func LittleEndianBytes(v *Big) [32]byte {
	var b [32]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(b[i*8:], v[i])
	}
	return b
}

// SetLittleEndian loads v from up to 32 little-endian bytes.
func SetLittleEndian(v *Big, b []byte) {
	var buf [32]byte
	copy(buf[:], b)
	for i := 0; i < 4; i++ {
		v[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
}

// ToField reduces v into the scalar field.
func ToField(v *Big) Field {
	var e Field
	b := v.Bytes32()
	e.SetBytes(b[:])
	return e
}

// FromField expands e back into a Big.
func FromField(e *Field) Big {
	var v Big
	b := e.Bytes()
	v.SetBytes(b[:])
	return v
}

// AddModField returns (a + b) mod the field prime.
func AddModField(a, b *Big) Big {
	ea, eb := ToField(a), ToField(b)
	ea.Add(&ea, &eb)
	return FromField(&ea)
}

// SubModField returns (a - b) mod the field prime.
func SubModField(a, b *Big) Big {
	ea, eb := ToField(a), ToField(b)
	ea.Sub(&ea, &eb)
	return FromField(&ea)
}

// MulModField returns (a * b) mod the field prime.
func MulModField(a, b *Big) Big {
	ea, eb := ToField(a), ToField(b)
	ea.Mul(&ea, &eb)
	return FromField(&ea)
}
