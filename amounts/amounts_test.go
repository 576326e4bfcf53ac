// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amounts

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/cclib/bigint"
)

func TestDecode(t *testing.T) {
	// zero exponent decodes the raw mantissa
	v := Decode(7<<ExponentBits, false)
	require.Equal(t, uint64(7), v.Uint64())

	// non-zero exponent adds the implied leading increment
	v = Decode(7<<ExponentBits|3, false)
	require.Equal(t, uint64(8000), v.Uint64())
}

func TestEncodeExactRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		mantissa := rng.Uint64() & ((1 << (AmountBits - ExponentBits)) - 1)
		exponent := rng.Uint64() & ExponentMask
		word := mantissa<<ExponentBits | exponent

		dec := Decode(word, false)
		enc := Encode(&dec, false, 0, ExponentMask, NoRound)
		require.NotEqual(t, EncodeError, enc)

		back := Decode(enc, false)
		require.Equal(t, dec, back, "word %#x enc %#x", word, enc)
	}
}

func TestEncodeS5(t *testing.T) {
	// 123.45e6 base units with closest rounding
	var amount bigint.Big
	amount.SetUint64(123_450_000_000)

	enc := Encode(&amount, false, 0, 22, RoundClosest)
	require.Equal(t, uint64(0x60707), enc) // mantissa 12345, exponent 7

	dec := Decode(enc, false)
	require.Equal(t, uint64(123_450_000_000), dec.Uint64())
}

func TestEncodeRounding(t *testing.T) {
	var amount bigint.Big

	// a value needing rounding fails under NoRound
	amount.SetUint64((uint64(1)<<35)*10 + 1)
	require.Equal(t, EncodeError, Encode(&amount, false, 0, ExponentMask, NoRound))

	// round down vs round up straddle the true value
	down := Decode(Encode(&amount, false, 0, ExponentMask, RoundDown), false)
	up := Decode(Encode(&amount, false, 0, ExponentMask, RoundUp), false)
	require.True(t, down.Lt(&amount))
	require.True(t, up.Gt(&amount))

	// monotone: encode of a larger value never decodes smaller
	prev := Decode(Encode(&amount, false, 0, ExponentMask, RoundClosest), false)
	for i := 0; i < 1000; i++ {
		amount.AddUint64(&amount, 917)
		cur := Decode(Encode(&amount, false, 0, ExponentMask, RoundClosest), false)
		require.False(t, cur.Lt(&prev))
		prev = cur
	}
}

func TestEncodeMintAmount(t *testing.T) {
	amount, err := bigint.ParseInt("1000000000000000000000000000000", 256, nil)
	require.NoError(t, err)

	enc := Encode(&amount, false, 22, 22, ^uint(0))
	require.NotEqual(t, EncodeError, enc)
	require.Equal(t, uint(22), DecodeExponent(enc))

	dec := Decode(enc, false)
	require.Equal(t, amount, dec)
}

func TestPackedUnsignedOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	var prevPacked PackedUnsigned
	var prev bigint.Big
	for i := 0; i < 2000; i++ {
		var v bigint.Big
		v[0] = rng.Uint64()
		v[1] = rng.Uint64() >> uint(rng.Intn(64))

		p, err := PackUnsigned(&v)
		require.NoError(t, err)
		require.Equal(t, v, UnpackUnsigned(&p))

		if i > 0 {
			cmp := bytes.Compare(prevPacked[:], p[:])
			switch {
			case prev.Lt(&v):
				require.Equal(t, -1, cmp)
			case prev.Gt(&v):
				require.Equal(t, 1, cmp)
			default:
				require.Equal(t, 0, cmp)
			}
		}
		prev, prevPacked = v, p
	}

	// 128-bit overflow rejected
	var big bigint.Big
	big[2] = 1
	_, err := PackUnsigned(&big)
	require.ErrorIs(t, err, ErrAmountRange)
}

func TestPackedSignedOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	vals := make([]bigint.Big, 0, 1000)
	for i := 0; i < 500; i++ {
		var v bigint.Big
		v[0] = rng.Uint64()
		v[1] = rng.Uint64() >> uint(rng.Intn(64))
		vals = append(vals, v)

		var neg, zero bigint.Big
		neg.Sub(&zero, &v)
		vals = append(vals, neg)
	}

	for _, v := range vals {
		p, err := PackSigned(&v)
		require.NoError(t, err)
		require.Equal(t, v, UnpackSigned(&p))
	}

	// pairwise order spot checks
	for i := 0; i+1 < len(vals); i += 2 {
		a, b := vals[i], vals[i+1]
		pa, _ := PackSigned(&a)
		pb, _ := PackSigned(&b)
		sa, sb := signedLess(&a, &b), bytes.Compare(pa[:], pb[:]) < 0
		require.Equal(t, sa, sb)
	}

	// out of signed 192-bit range rejected
	var big bigint.Big
	big[2] = uint64(1) << 63
	_, err := PackSigned(&big)
	require.ErrorIs(t, err, ErrAmountRange)
}

func signedLess(a, b *bigint.Big) bool {
	na, nb := bigint.Bit(a, 255), bigint.Bit(b, 255)
	if na != nb {
		return na
	}
	return a.Lt(b)
}

func TestAmountStrings(t *testing.T) {
	var v bigint.Big
	v.SetUint64(123_450_000_000)

	s := ToString(assetWithScale(0), &v, false)
	require.Equal(t, "123450000000", s)

	s = ToString(assetWithScale(0), &v, true)
	require.Equal(t, "123450000000.0", s)

	s = ToString(assetWithScale(6), &v, false)
	require.Equal(t, "123450", s)

	back, err := FromString(assetWithScale(6), "123450")
	require.NoError(t, err)
	require.Equal(t, v, back)
}

// assetWithScale returns an asset id whose scale factor is 10^n.
func assetWithScale(n uint64) uint64 {
	noScale := int64(AssetNoScale)
	return uint64(noScale) + n
}

func TestUniFloatWireRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 5000; i++ {
		v := NewUniFloat((rng.Float64() - 0.5) * float64(uint64(1)<<uint(rng.Intn(50))))
		word := WireEncode(v, 0)
		back := WireDecode(word)
		word2 := WireEncode(back, 0)
		require.Equal(t, word, word2)
	}

	require.Equal(t, uint64(0), WireEncode(UniFloat{}, 0))
	require.True(t, WireDecode(0).IsZero())
}

func TestUniFloatRoundingMonotone(t *testing.T) {
	a := NewUniFloat(1)
	b := NewUniFloat(3)
	down := UniDivide(a, b, -1)
	near := UniDivide(a, b, 0)
	up := UniDivide(a, b, 1)
	require.True(t, down.AsFloat() <= near.AsFloat())
	require.True(t, near.AsFloat() <= up.AsFloat())
	require.True(t, down.AsFloat() < up.AsFloat())

	// multiply rounding respects direction as well
	md := UniMultiply(near, b, -1)
	mu := UniMultiply(near, b, 1)
	require.True(t, md.AsFloat() <= mu.AsFloat())
}

func TestExpMapRoundTrip(t *testing.T) {
	m := NewExpMap(10, 5, 255, 172800)

	prev := uint32(0)
	for e := uint32(0); e <= 255; e++ {
		d := m.Decode(e)
		require.True(t, d >= prev, "decode not monotone at %d", e)
		prev = d

		require.Equal(t, e, m.Encode(d, true), "encode(decode(%d))", e)
	}
	require.Equal(t, uint32(172800), m.Decode(255))
	require.Equal(t, uint32(255), m.Encode(172800, true))
}
