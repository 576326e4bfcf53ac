// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package encode

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/cclib/bigint"
)

var allTables = []*Table{
	Base10, Base16, Base16UC, Base32, Base32Z, Base34, Base38,
	Base57, Base58, Base64, Base64URL, Base66, Base95, Base224, Base256,
}

func TestTableInverses(t *testing.T) {
	for _, tbl := range allTables {
		require.Equal(t, int(tbl.Mod()), len(tbl.sym), tbl.Name())
		for i := uint(0); i < tbl.Mod(); i++ {
			c := tbl.StringifyByte(byte(i))
			require.Equal(t, byte(i), tbl.DestringifyChar(c), tbl.Name())
		}
	}
}

func TestSeparatorsOutsideBase57(t *testing.T) {
	require.Equal(t, byte(InvalidSymbol), Base57.DestringifyChar(Separator))
	require.Equal(t, byte(InvalidSymbol), Base57.DestringifyChar(SeparatorAlt))
	require.Equal(t, byte(InvalidSymbol), Base58.DestringifyChar(Separator))
}

func TestStringifyRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, tbl := range allTables {
		if tbl.Mod() >= 255 {
			continue
		}
		for i := 0; i < 500; i++ {
			var val bigint.Big
			val[0] = rng.Uint64()
			if rng.Intn(2) == 0 {
				val[1] = rng.Uint64()
			}
			if rng.Intn(2) == 0 {
				val[2] = rng.Uint64()
			}
			if rng.Intn(2) == 0 {
				val[3] = rng.Uint64()
			}

			normalize := rng.Intn(2) == 0

			var sb strings.Builder
			tbl.Stringify(nil, normalize, -1, &val, &sb)
			encoded := sb.String()

			got, rest, err := tbl.Destringify(normalize, len(encoded), encoded)
			require.NoError(t, err, tbl.Name())
			require.Empty(t, rest)
			require.Equal(t, val, got, "%s normalize %v encoded %q", tbl.Name(), normalize, encoded)
		}
	}
}

func TestStringifyFixedWidthS4(t *testing.T) {
	val, err := bigint.ParseInt("0x0123456789ABCDEF", 256, nil)
	require.NoError(t, err)

	var sb strings.Builder
	Base57.Stringify(nil, false, 11, &val, &sb)
	s := sb.String()
	require.Len(t, s, 11)

	got, _, err := Base57.Destringify(false, 11, s)
	require.NoError(t, err)
	require.Equal(t, val, got)

	// any single-character mutation either fails to decode or decodes to
	// a different value
	for i := 0; i < len(s); i++ {
		mutated := []byte(s)
		orig := mutated[i]
		mutated[i] = Base57.StringifyByte(byte((uint(Base57.DestringifyChar(orig)) + 1) % Base57.Mod()))
		got2, _, err := Base57.Destringify(false, 11, string(mutated))
		if err == nil {
			require.NotEqual(t, val, got2)
		}
	}
}

func TestDestringifyErrors(t *testing.T) {
	_, _, err := Base57.Destringify(true, 0, "")
	require.ErrorIs(t, err, ErrInputEnd)

	_, _, err = Base57.Destringify(false, 4, "ab!")
	require.ErrorIs(t, err, ErrInputEnd)

	_, _, err = Base57.Destringify(false, 3, "ab!")
	require.ErrorIs(t, err, ErrInvalidCharacter)

	// separator-terminated field
	var sb strings.Builder
	v := bigint.NewBig(123456)
	Base57.Stringify(nil, false, -1, v, &sb)
	sb.WriteByte(Separator)
	sb.WriteString("tail")
	got, rest, err := Base57.Destringify(false, 0, sb.String())
	require.NoError(t, err)
	require.Equal(t, *v, got)
	require.Equal(t, string(rune(Separator))+"tail", rest)
}

func TestBase64RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	for _, tbl := range []*Table{Base64, Base64URL} {
		for i := 0; i < 500; i++ {
			n := rng.Intn(40) + 1
			data := make([]byte, n)
			rng.Read(data)

			noPadding := rng.Intn(2) == 0
			enc := Base64Encode(tbl, data, noPadding)
			dec, err := Base64Decode(tbl, enc)
			require.NoError(t, err)
			require.Equal(t, data, dec)
		}
	}
}

func randomSymbols(rng *rand.Rand, tbl *Table, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = tbl.StringifyByte(byte(rng.Intn(int(tbl.Mod()))))
	}
	return out
}

func TestAlphaRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for _, tbl := range allTables {
		for i := 0; i < 300; i++ {
			n := rng.Intn(50)
			data := randomSymbols(rng, tbl, n)

			enc, err := AlphaEncode(tbl, data)
			require.NoError(t, err, tbl.Name())

			dec := AlphaDecode(tbl, enc, len(data))
			require.Equal(t, string(data), dec, "%s n %d", tbl.Name(), n)
		}
	}
}

func TestAlphaShortestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	for _, tbl := range allTables {
		for i := 0; i < 200; i++ {
			n := rng.Intn(50)
			data := randomSymbols(rng, tbl, n)

			enc, err := AlphaEncodeShortest(tbl, data)
			require.NoError(t, err)

			full, err := AlphaEncode(tbl, data)
			require.NoError(t, err)
			require.LessOrEqual(t, len(enc), len(full))

			dec := AlphaDecode(tbl, enc, len(data))
			require.Equal(t, string(data), dec)
		}
	}
}

func TestAlphaBestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(15))
	for _, tbl := range bestTables {
		for i := 0; i < 200; i++ {
			n := rng.Intn(100)
			data := randomSymbols(rng, tbl, n)

			enc, err := AlphaEncodeBest(data)
			require.NoError(t, err)

			dec, err := AlphaDecodeBest(enc, 0)
			require.NoError(t, err)
			require.Equal(t, string(data), dec)
		}
	}
}

func TestAlphaBestKnownStrings(t *testing.T) {
	for _, s := range []string{
		"205800",
		"71b9cd0864c66880fd4fb16ac2f0102c949d0df73f58e8f05516e410af1ccf9c",
		"qp05fd87402sh5j9596wd5cq072sjucc050ynyjjdl",
	} {
		enc, err := AlphaEncodeBest([]byte(s))
		require.NoError(t, err)
		require.Less(t, len(enc), len(s)+1, "no compression for %q", s)

		dec, err := AlphaDecodeBest(enc, 0)
		require.NoError(t, err)
		require.Equal(t, s, dec)
	}
}

func TestAlphaBestOldTableMapping(t *testing.T) {
	// table index 9 decodes via table 10 under the historical remap
	data := []byte{0x00, 0x01, 0x02}
	enc, err := AlphaEncodeBest(data)
	require.NoError(t, err)
	require.Equal(t, uint(10), uint(enc[0]>>4)) // raw bytes pick base256

	remapped := append([]byte{}, enc...)
	remapped[0] = (9 << 4) | (enc[0] & 15)

	dec, err := AlphaDecodeBest(remapped, 1)
	require.NoError(t, err)
	require.Equal(t, string(data), dec)

	// without the remap, table 9 is base224 and the result differs
	dec2, err := AlphaDecodeBest(remapped, 0)
	require.NoError(t, err)
	require.NotEqual(t, string(data), dec2)
}
