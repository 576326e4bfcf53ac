// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package encode

import (
	"bytes"
	"sync/atomic"
)

// Range coder parameters: 64-bit working registers with an 8-bit output
// byte and a 7-bit safety margin.
const (
	encShift = 64 - 8 - 7 - 1
	encLower = (uint64(1) << encShift) - 1
	encUpper = ^encLower
	encMax   = uint64(1) << encShift << 8
)

const lengthDiffOffset = 9

// AlphaEncode converts a symbol string to binary using range encoding
// over the table's modulus. The conversion is lossless in the
// symbols -> binary -> symbols direction.
func AlphaEncode(t *Table, data []byte) ([]byte, error) {
	mod := uint64(t.mod)

	if len(data) == 0 {
		return nil, nil
	}

	if mod == 256 {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	var outv []byte
	bufpos := 0
	hval := encMax - 1
	lval := uint64(0)
	eofm := uint64(0)
	done := false

	for !done {
		c := mod / 2 // midpoint phantom symbols keep the tail short

		if bufpos < len(data) {
			b := t.DestringifyChar(data[bufpos])
			if b == InvalidSymbol {
				return nil, ErrInvalidCharacter
			}
			c = uint64(b)
			bufpos++
		}

		denom := hval - lval + 1

		hval = lval + ((c+1)*denom+mod-1)/mod - 1
		lval = lval + (c*denom+mod-1)/mod

		for ((hval^lval)&encUpper) == 0 || hval < lval+mod-1 {
			outv = append(outv, byte(lval>>encShift))

			hval = ((hval & encLower) << 8) | 255
			lval = (lval & encLower) << 8

			if bufpos == len(data) {
				eofm = (eofm << 8) | 255
				if ((eofm >> encShift) & 255) == 255 {
					// every bit of the next output byte would come
					// from the eof mask
					done = true
					break
				}
			}
		}
	}

	return outv, nil
}

// AlphaDecode converts binary data back to nchars symbols.
func AlphaDecode(t *Table, data []byte, nchars int) string {
	mod := uint64(t.mod)

	if len(data) == 0 || nchars <= 0 {
		return ""
	}

	if mod == 256 {
		n := nchars
		if n > len(data) {
			n = len(data)
		}
		return string(data[:n])
	}

	var out []byte
	bufpos := 0
	dval := uint64(0)
	hval := uint64(0)
	lval := uint64(0)

	for len(out) < nchars {
		for ((hval^lval)&encUpper) == 0 || hval < lval+mod-1 {
			b := uint64(128) // midpoint phantom bytes

			if bufpos < len(data) {
				b = uint64(data[bufpos])
			}
			bufpos++

			hval = ((hval & encLower) << 8) | 255
			dval = ((dval & encLower) << 8) | b
			lval = (lval & encLower) << 8
		}

		denom := hval - lval + 1
		c := ((dval - lval) * mod) / denom

		hval = lval + ((c+1)*denom+mod-1)/mod - 1
		lval = lval + (c*denom+mod-1)/mod

		out = append(out, t.StringifyByte(byte(c)))
	}

	return string(out)
}

// AlphaEncodeShortest encodes data and truncates the result to the
// shortest prefix that still decodes back to the exact input.
func AlphaEncodeShortest(t *Table, data []byte) ([]byte, error) {
	outv, err := AlphaEncode(t, data)
	if err != nil {
		return nil, err
	}

	shortest := len(outv)
	for testSize := shortest; testSize > 0; testSize-- {
		lenDiff := t.ExpectedStrLen(testSize) - len(data) + lengthDiffOffset
		if lenDiff < 0 || lenDiff > 15 {
			continue
		}

		decoded := AlphaDecode(t, outv[:testSize], len(data))
		if len(decoded) != len(data) || !bytes.Equal([]byte(decoded), data) {
			break
		}

		shortest = testSize
	}

	return outv[:shortest], nil
}

// bestTables is the fixed alphabet roster tried by AlphaEncodeBest, in
// table-index order. The index is carried in the high nibble of the
// output's first byte.
var bestTables = []*Table{
	Base10, Base16, Base32, Base32Z, Base34, Base38,
	Base58, Base66, Base95, Base224, Base256,
}

// AlphaEncodeBest encodes data with every candidate alphabet and keeps
// whichever produced the shortest stream, prepending one byte holding
// the table index and the length adjustment.
func AlphaEncodeBest(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var best []byte
	for i, t := range bestTables {
		if !t.usesSymbols(data) {
			continue
		}

		body, err := AlphaEncodeShortest(t, data)
		if err != nil {
			continue
		}

		lenDiff := t.ExpectedStrLen(len(body)) - len(data) + lengthDiffOffset
		if lenDiff < 0 || lenDiff > 15 {
			continue
		}

		if best != nil && len(body)+1 >= len(best) {
			continue
		}

		best = make([]byte, 0, len(body)+1)
		best = append(best, byte(i<<4)|byte(lenDiff))
		best = append(best, body...)
	}

	if best == nil {
		return nil, ErrInvalidCharacter
	}
	return best, nil
}

// oldTableMapping works around a backward compatibility problem
// introduced in the v2.0.1 release that scrambled foreign block ids when
// decoding older blocks.
var oldTableMapping atomic.Bool

func init() {
	oldTableMapping.Store(true)
}

// SetDefaultDecodeTables selects the historical table remap based on the
// payload timestamp. The cutover constant must be preserved bit-exactly.
func SetDefaultDecodeTables(timestamp uint64) {
	if timestamp > 1726100000 {
		oldTableMapping.Store(false)
	}
}

// AlphaDecodeBest reverses AlphaEncodeBest. useOldTableMapping < 0
// defers to the timestamp-selected default.
func AlphaDecodeBest(data []byte, useOldTableMapping int) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	table := uint(data[0] >> 4)

	if useOldTableMapping < 0 {
		if oldTableMapping.Load() {
			useOldTableMapping = 1
		} else {
			useOldTableMapping = 0
		}
	}
	if table == 9 && useOldTableMapping != 0 {
		table = 10
	}

	if table > uint(len(bestTables)-1) {
		return "", ErrInvalidCharacter
	}

	t := bestTables[table]
	lenDiff := int(data[0]&15) - lengthDiffOffset
	nchars := t.ExpectedStrLen(len(data)-1) - lenDiff

	if nchars < 0 {
		return "", nil
	}

	return AlphaDecode(t, data[1:], nchars), nil
}
