// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snark

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
)

// A proof travels as nine 256-bit values. Each group element stores its
// x-coordinate, whose top two bits are free under the BN254 base field;
// bit 254 carries the y selector. The G2 element spans slots 2 and 8
// (its two x-coordinates), and slot 8's final byte is spread across bit
// 255 of slots 0..7 so the wire form is exactly 9*32 - 1 bytes.

// ProofVec is the expanded 9-value form.
type ProofVec [params.ZkproofVals]bigint.Big

const (
	selectorBit = 254
	carryBit    = 255

	flagMask            = byte(0b11) << 6
	flagCompressedSmall = byte(0b10) << 6
	flagCompressedLarge = byte(0b11) << 6
)

func g1ToInt(p *bn254.G1Affine) (bigint.Big, error) {
	var v bigint.Big
	if p.IsInfinity() {
		return v, ErrPointAtInfinity
	}
	b := p.Bytes() // compressed: x big-endian, flags in the top bits
	large := b[0]&flagMask == flagCompressedLarge
	b[0] &^= flagMask
	v.SetBytes(b[:])
	if large {
		v[3] |= uint64(1) << (selectorBit - 192)
	}
	return v, nil
}

func intToG1(v bigint.Big, p *bn254.G1Affine) error {
	large := bigint.Bit(&v, selectorBit)
	v[3] &^= uint64(3) << (selectorBit - 192)
	b := v.Bytes32()
	if large {
		b[0] |= flagCompressedLarge
	} else {
		b[0] |= flagCompressedSmall
	}
	if _, err := p.SetBytes(b[:]); err != nil {
		return ErrBadProofData
	}
	return nil
}

func g2ToInt(p *bn254.G2Affine) (x1, x0 bigint.Big, err error) {
	if p.IsInfinity() {
		return x1, x0, ErrPointAtInfinity
	}
	b := p.Bytes() // compressed: x.A1 || x.A0 big-endian, flags up front
	large := b[0]&flagMask == flagCompressedLarge
	b[0] &^= flagMask
	x1.SetBytes(b[:32])
	x0.SetBytes(b[32:])
	if large {
		x1[3] |= uint64(1) << (selectorBit - 192)
	}
	return x1, x0, nil
}

func intToG2(x1, x0 bigint.Big, p *bn254.G2Affine) error {
	large := bigint.Bit(&x1, selectorBit)
	x1[3] &^= uint64(3) << (selectorBit - 192)
	var b [bn254.SizeOfG2AffineCompressed]byte
	b1 := x1.Bytes32()
	b0 := x0.Bytes32()
	copy(b[:32], b1[:])
	copy(b[32:], b0[:])
	if large {
		b[0] |= flagCompressedLarge
	} else {
		b[0] |= flagCompressedSmall
	}
	if _, err := p.SetBytes(b[:]); err != nil {
		return ErrBadProofData
	}
	return nil
}

// Compress packs a proof into its nine-value vector.
func (p *Proof) Compress() (ProofVec, error) {
	var vec ProofVec
	var err error

	if vec[0], err = g1ToInt(&p.A); err != nil {
		return vec, err
	}
	if vec[1], err = g1ToInt(&p.Ap); err != nil {
		return vec, err
	}
	if vec[2], vec[8], err = g2ToInt(&p.B); err != nil {
		return vec, err
	}
	if vec[3], err = g1ToInt(&p.Bp); err != nil {
		return vec, err
	}
	if vec[4], err = g1ToInt(&p.C); err != nil {
		return vec, err
	}
	if vec[5], err = g1ToInt(&p.Cp); err != nil {
		return vec, err
	}
	if vec[6], err = g1ToInt(&p.H); err != nil {
		return vec, err
	}
	if vec[7], err = g1ToInt(&p.K); err != nil {
		return vec, err
	}

	// spread the last serialized byte across the carry bits so the wire
	// form drops it
	lastByte := vec[8][3] >> 56
	vec[8][3] &^= uint64(0xFF) << 56
	for i := 0; i < 8; i++ {
		vec[i][3] |= (lastByte & 1) << (carryBit - 192)
		lastByte >>= 1
	}

	return vec, nil
}

// Decompress expands a nine-value vector back into a proof.
func Decompress(vec ProofVec) (*Proof, error) {
	// reassemble the carried byte
	var lastByte uint64
	for i := 7; i >= 0; i-- {
		lastByte <<= 1
		lastByte |= (vec[i][3] >> (carryBit - 192)) & 1
		vec[i][3] &^= uint64(1) << (carryBit - 192)
	}
	vec[8][3] |= lastByte << 56

	p := &Proof{}
	if err := intToG1(vec[0], &p.A); err != nil {
		return nil, err
	}
	if err := intToG1(vec[1], &p.Ap); err != nil {
		return nil, err
	}
	if err := intToG2(vec[2], vec[8], &p.B); err != nil {
		return nil, err
	}
	if err := intToG1(vec[3], &p.Bp); err != nil {
		return nil, err
	}
	if err := intToG1(vec[4], &p.C); err != nil {
		return nil, err
	}
	if err := intToG1(vec[5], &p.Cp); err != nil {
		return nil, err
	}
	if err := intToG1(vec[6], &p.H); err != nil {
		return nil, err
	}
	if err := intToG1(vec[7], &p.K); err != nil {
		return nil, err
	}
	return p, nil
}
