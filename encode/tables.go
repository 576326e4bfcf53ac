// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package encode implements the canonical base-N text codecs: symbol
// tables for a fixed set of alphabets, positional integer encoding, and
// a bounded-precision range coder that converts symbol strings to and
// from compact binary.
package encode

import (
	"math"
)

// Separator characters used to delimit variable-length fields inside
// encoded strings. Every alphabet with a separator role excludes both.
const (
	Separator    = '0'
	SeparatorAlt = 'O'
)

// InvalidSymbol is returned by Table.DestringifyChar for bytes outside the
// alphabet.
const InvalidSymbol = 255

// Table pairs an index-to-symbol alphabet with its inverse map.
type Table struct {
	name   string
	mod    uint
	sym    []byte
	bin    [256]byte
	resize uint // 2^16-scaled bytes-per-symbol ratio, 0 means 2^16
}

func newTable(name, alphabet string) *Table {
	t := &Table{name: name, mod: uint(len(alphabet)), sym: []byte(alphabet)}
	for i := range t.bin {
		t.bin[i] = InvalidSymbol
	}
	for i := 0; i < len(alphabet); i++ {
		t.bin[alphabet[i]] = byte(i)
	}
	if t.mod < 256 {
		t.resize = uint(math.Round(65536 * math.Log2(float64(t.mod)) / 8))
	}
	return t
}

func newByteRangeTable(name string, lo int) *Table {
	alphabet := make([]byte, 256-lo)
	for i := range alphabet {
		alphabet[i] = byte(lo + i)
	}
	t := &Table{name: name, mod: uint(len(alphabet)), sym: alphabet}
	for i := range t.bin {
		t.bin[i] = InvalidSymbol
	}
	for i, c := range alphabet {
		t.bin[c] = byte(i)
	}
	if t.mod < 256 {
		t.resize = uint(math.Round(65536 * math.Log2(float64(t.mod)) / 8))
	}
	return t
}

// Name returns the table's alphabet name.
func (t *Table) Name() string { return t.name }

// Mod returns the alphabet modulus.
func (t *Table) Mod() uint { return t.mod }

// ExpectedStrLen computes the symbol count a binary payload of binLength
// bytes is expected to decode to.
func (t *Table) ExpectedStrLen(binLength int) int {
	resize := t.resize
	if resize == 0 {
		resize = 1 << 16
	}
	return binLength * (1 << 16) / int(resize)
}

// StringifyByte maps a digit to its symbol.
func (t *Table) StringifyByte(c byte) byte {
	return t.sym[c]
}

// DestringifyChar maps a symbol back to its digit, or InvalidSymbol.
func (t *Table) DestringifyChar(c byte) byte {
	return t.bin[c]
}

// usesSymbols reports whether every byte of data is in the alphabet.
func (t *Table) usesSymbols(data []byte) bool {
	if t.mod == 256 {
		return true
	}
	for _, c := range data {
		if t.bin[c] == InvalidSymbol {
			return false
		}
	}
	return true
}

var (
	Base10    = newTable("base10", "0123456789")
	Base16    = newTable("base16", "0123456789abcdef")
	Base16UC  = newTable("base16uc", "0123456789ABCDEF")
	Base32    = newTable("base32", "abcdefghijklmnopqrstuvwxyz234567")
	Base32Z   = newTable("base32z", "ybndrfg8ejkmcpqxot1uwisza345h769")
	Base34    = newTable("base34", "0123456789abcdefghijkmnpqrstuvwxyz")
	Base38    = newTable("base38", "0123456789abcdefghijklmnopqrstuvwxyz-.")
	Base57    = newTable("base57", "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz")
	Base58    = newTable("base58", "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz")
	Base64    = newTable("base64", "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/")
	Base64URL = newTable("base64url", "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_")
	Base66    = newTable("base66", "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~")
	Base95    = newTable("base95", " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~")
	Base224   = newByteRangeTable("base224", 32)
	Base256   = newByteRangeTable("base256", 0)
)
