// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bigint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitShiftMask(t *testing.T) {
	var v Big
	for i := uint(0); i < 300; i++ {
		require.False(t, Bit(&v, i))
	}

	v.SetAllOne()
	for i := uint(0); i < 300; i++ {
		require.Equal(t, i < 256, Bit(&v, i))
	}

	for j := uint(0); j < 300; j++ {
		v.SetOne()
		ShiftUp(&v, j)
		for i := uint(0); i < 300; i++ {
			require.Equal(t, i < 256 && i == j, Bit(&v, i), "bit %d after shift %d", i, j)
		}
	}

	var r Big
	require.NoError(t, Randomize(&r))
	for j := uint(0); j < 256; j++ {
		v.Set(&r)
		ShiftDown(&v, j)
		for i := uint(0); i < 256-j; i++ {
			require.Equal(t, Bit(&r, i+j), Bit(&v, i))
		}
		v.Set(&r)
		Mask(&v, j)
		for i := uint(0); i < 256; i++ {
			require.Equal(t, Bit(&r, i) && i < j, Bit(&v, i))
		}
	}
}

func TestBytesInUse(t *testing.T) {
	var v Big
	require.Equal(t, 0, BytesInUse(&v))

	for i := uint(1); i <= 256; i++ {
		v.SetOne()
		ShiftUp(&v, i-1)
		require.Equal(t, int(i+7)/8, BytesInUse(&v))
	}
}

func TestByteswapRoundTrip(t *testing.T) {
	var v, s, back Big
	require.NoError(t, Randomize(&v))
	Byteswap(&v, &s)
	Byteswap(&s, &back)
	require.Equal(t, v, back)

	le := LittleEndianBytes(&v)
	sw := LittleEndianBytes(&s)
	for i := 0; i < 32; i++ {
		require.Equal(t, le[i], sw[31-i])
	}
}

func TestFieldRoundTrip(t *testing.T) {
	var v Big
	v.SetUint64(12345)
	e := ToField(&v)
	back := FromField(&e)
	require.Equal(t, v, back)

	// values above the modulus reduce
	m := FieldModulus()
	var above Big
	above.Add(m, NewBig(7))
	e = ToField(&above)
	back = FromField(&e)
	require.Equal(t, uint64(7), back.Uint64())
}

func TestParseFormatRoundTrip(t *testing.T) {
	var v Big
	for i := 0; i < 200; i++ {
		require.NoError(t, Randomize(&v))
		got, err := ParseInt(FormatDec(&v), 256, nil)
		require.NoError(t, err)
		require.Equal(t, v, got)

		got, err = ParseInt("0x"+FormatHex(&v), 256, nil)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestParseForms(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"123", 123},
		{"0x1f", 31},
		{"X1F", 31},
		{"123L", 123},
		{"1.5e1", 15},
		{"12e2", 1200},
		{"1200e-2", 12},
		{"+7", 7},
	}
	for _, c := range cases {
		v, err := ParseInt(c.in, 64, nil)
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, v.Uint64(), c.in)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := ParseInt("12g", 64, nil)
	require.ErrorIs(t, err, ErrInvalidDigit)

	_, err = ParseInt("256", 8, nil)
	require.ErrorIs(t, err, ErrValueOverflow)

	_, err = ParseInt("", 8, nil)
	require.ErrorIs(t, err, ErrUnterminated)

	_, err = ParseInt("-", 8, nil)
	require.ErrorIs(t, err, ErrUnterminated)

	_, err = ParseInt("1.23e1", 64, nil)
	require.ErrorIs(t, err, ErrInvalidDigit) // not integral

	_, err = ParseInt("0x", 64, nil)
	require.ErrorIs(t, err, ErrUnterminated)
}

func TestParseNegative(t *testing.T) {
	// two's complement against a bit width: sign-extends above the width
	v, err := ParseInt("-1", 16, nil)
	require.NoError(t, err)
	var want Big
	want.SetAllOne()
	require.Equal(t, want, v)

	// prime-field negation against the field max bound
	fm := FieldMax()
	v, err = ParseInt("-1", 0, fm)
	require.NoError(t, err)
	require.Equal(t, *fm, v)
}
