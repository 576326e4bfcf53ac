// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package encode

import (
	"errors"
	"strings"

	"github.com/luxfi/cclib/bigint"
)

var (
	ErrInvalidCharacter = errors.New("invalid character in encoded string")
	ErrInputEnd         = errors.New("unexpected end of encoded string")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// computeShift strips low zero bits from val (and maxval in step) and
// returns the shift count, bounded by the alphabet modulus.
func computeShift(mod uint, maxval, val *bigint.Big) uint {
	var shift uint
	for {
		if val.Uint64()&1 != 0 {
			break
		}
		bigint.ShiftDown(val, 1)
		bigint.ShiftDown(maxval, 1)
		shift++
		if shift == mod-1 {
			break
		}
	}
	return shift
}

// Stringify appends the little-endian digit string of val to sb.
//
// With normalize, a one-symbol prefix carries the left bit shift needed
// to restore the value, which elides trailing-zero suffixes. nchars > 0
// fixes the width; nchars == 0 uses the width required for maxval
// (maxval zero meaning the full 256-bit range); nchars < 0 emits digits
// until the remainder is zero.
func (t *Table) Stringify(maxval *bigint.Big, normalize bool, nchars int, val *bigint.Big, sb *strings.Builder) {
	v := *val
	mod := t.mod

	var mval bigint.Big
	if maxval != nil {
		mval = *maxval
	}
	if mval.IsZero() {
		mval.SetAllOne()
	}

	if normalize {
		shift := computeShift(mod, &mval, &v)
		sb.WriteByte(t.StringifyByte(byte(shift)))
	}

	modBig := bigint.NewBig(uint64(mod))
	nc := 0
	for !mval.IsZero() {
		var digit bigint.Big
		digit.Mod(&v, modBig)
		sb.WriteByte(t.StringifyByte(byte(digit.Uint64())))
		v.Div(&v, modBig)
		mval.Div(&mval, modBig)
		nc++

		if nc == nchars || (nchars < 0 && v.IsZero()) {
			break
		}
	}
}

// Destringify removes the first encoded field from instring and returns
// the decoded value along with the remainder of the input. Either nchars
// must be non-zero or the field must be terminated with a separator.
func (t *Table) Destringify(normalize bool, nchars int, instring string) (bigint.Big, string, error) {
	var val bigint.Big
	var shift uint

	if normalize {
		if len(instring) < 1 {
			return val, instring, ErrInputEnd
		}
		s := t.DestringifyChar(instring[0])
		if s == InvalidSymbol {
			return val, instring, ErrInvalidCharacter
		}
		shift = uint(s)
	}

	if nchars == 0 {
		n := strings.IndexByte(instring, Separator)
		n2 := strings.IndexByte(instring, SeparatorAlt)
		if n < 0 || (n2 >= 0 && n2 < n) {
			n = n2
		}
		if n < 0 {
			return val, instring, ErrInputEnd
		}
		nchars = n
	}

	norm := 0
	if normalize {
		norm = 1
	}
	nchars -= norm

	if len(instring) < nchars+norm || nchars < 0 {
		return val, instring, ErrInputEnd
	}

	sval := instring[norm : norm+nchars]
	rest := instring[norm+nchars:]

	modBig := bigint.NewBig(uint64(t.mod))
	for i := len(sval) - 1; i >= 0; i-- {
		c := t.DestringifyChar(sval[i])
		if c == InvalidSymbol {
			return bigint.Big{}, instring, ErrInvalidCharacter
		}
		val.Mul(&val, modBig)
		var d bigint.Big
		d.SetUint64(uint64(c))
		val.Add(&val, &d)
	}

	bigint.ShiftUp(&val, shift)

	return val, rest, nil
}

// Base64Encode encodes data using the table's 64-symbol alphabet, with
// '=' padding unless noPadding is set.
func Base64Encode(t *Table, data []byte, noPadding bool) string {
	var sb strings.Builder

	for i := 0; i < len(data); i += 3 {
		group := uint(0)
		nbits := 0
		for j := 0; j < 3; j++ {
			group <<= 8
			if i+j < len(data) {
				group |= uint(data[i+j])
				nbits += 8
			}
		}
		for j := 0; nbits > 0; j++ {
			sb.WriteByte(t.StringifyByte(byte((group >> ((3 - j) * 6)) & 63)))
			nbits -= 6
		}
	}

	s := sb.String()
	for !noPadding && len(s)&3 != 0 {
		s += "="
	}
	return s
}

// Base64Decode reverses Base64Encode.
func Base64Decode(t *Table, s string) ([]byte, error) {
	slen := len(s)
	for slen > 0 && s[slen-1] == '=' {
		slen--
	}

	var data []byte
	acc := uint(0)
	nbits := 0
	for i := 0; i < slen; i++ {
		v := t.DestringifyChar(s[i])
		if v == InvalidSymbol {
			return nil, ErrInvalidCharacter
		}
		acc = acc<<6 | uint(v)
		nbits += 6
		if nbits >= 8 {
			nbits -= 8
			data = append(data, byte(acc>>nbits))
			acc &= (1 << nbits) - 1
		}
	}
	return data, nil
}
