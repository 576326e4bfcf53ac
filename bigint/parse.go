// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bigint

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrValueOverflow = errors.New("integer value overflow")
	ErrInvalidDigit  = errors.New("invalid numeric character")
	ErrUnterminated  = errors.New("unterminated numeric value")
)

// ParseInt parses sval as an integer bounded either by a bit width or by
// an explicit maximum value. Exactly one bound applies: when nbits is
// non-zero the maximum is 2^nbits - 1 and maxval must be nil; otherwise
// maxval supplies the bound directly.
//
// Accepted forms: optional leading sign, "0x"/"0X"/"x"/"X" hex prefix,
// decimal digits with an optional decimal point and "eN" exponent, and an
// optional trailing "L". A negative value parsed against a bit-width
// bound is returned in two's complement over the full 256-bit image (all
// ones above the width); a negative value parsed against the field
// maximum is negated in the prime field.
func ParseInt(sval string, nbits uint, maxval *Big) (Big, error) {
	var val Big

	bound := new(Big)
	if maxval != nil {
		bound.Set(maxval)
	} else {
		if nbits == 0 {
			return val, ErrValueOverflow
		}
		if nbits >= 256 {
			bound.SetAllOne()
		} else {
			bound.SetOne()
			bound.Lsh(bound, nbits)
			var one Big
			one.SetOne()
			bound.Sub(bound, &one)
		}
	}

	if len(sval) == 0 {
		return val, ErrUnterminated
	}

	pos := 0
	negative := false
	switch sval[0] {
	case '-':
		negative = true
		pos++
	case '+':
		pos++
	}
	if pos >= len(sval) {
		return val, ErrUnterminated
	}

	// a negative two's-complement bound admits one more magnitude step
	if negative && maxval == nil {
		var one Big
		one.SetOne()
		bound.Add(bound, &one)
		if bound.IsZero() {
			bound.SetAllOne()
		}
	}

	end := len(sval)
	if end > pos && sval[end-1] == 'L' {
		end--
		if end == pos {
			return val, ErrUnterminated
		}
	}

	s := sval[pos:end]

	var err error
	if len(s) >= 1 && (s[0] == 'x' || s[0] == 'X') {
		val, err = parseHex(s[1:], bound)
	} else if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		val, err = parseHex(s[2:], bound)
	} else {
		val, err = parseDec(s, bound)
	}
	if err != nil {
		return Big{}, err
	}

	if negative && !val.IsZero() {
		fieldMax := FieldMax()
		if maxval != nil && maxval.Eq(fieldMax) {
			var zero Big
			v := SubModField(&zero, &val)
			return v, nil
		}
		var zero Big
		val.Sub(&zero, &val)
	}

	return val, nil
}

func parseHex(s string, bound *Big) (Big, error) {
	var val Big
	if len(s) == 0 {
		return val, ErrUnterminated
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return Big{}, ErrInvalidDigit
		}
		if val[3]>>60 != 0 {
			return Big{}, ErrValueOverflow
		}
		val.Lsh(&val, 4)
		var dv Big
		dv.SetUint64(d)
		val.Add(&val, &dv)
		if val.Gt(bound) {
			return Big{}, ErrValueOverflow
		}
	}
	return val, nil
}

func parseDec(s string, bound *Big) (Big, error) {
	var val Big
	digits := 0
	decimals := -1 // digits seen after the decimal point, -1 = no point
	exp := 0
	i := 0

	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			var overflow bool
			var ten, dv Big
			ten.SetUint64(10)
			dv.SetUint64(uint64(c - '0'))
			_, overflow = val.MulOverflow(&val, &ten)
			if overflow {
				return Big{}, ErrValueOverflow
			}
			_, overflow = val.AddOverflow(&val, &dv)
			if overflow {
				return Big{}, ErrValueOverflow
			}
			digits++
			if decimals >= 0 {
				decimals++
			}
		case c == '.':
			if decimals >= 0 {
				return Big{}, ErrInvalidDigit
			}
			decimals = 0
		case c == 'e' || c == 'E':
			e, err := parseExp(s[i+1:])
			if err != nil {
				return Big{}, err
			}
			exp = e
			i = len(s)
		default:
			return Big{}, ErrInvalidDigit
		}
		if i == len(s) {
			break
		}
	}

	if digits == 0 {
		return Big{}, ErrUnterminated
	}

	if decimals > 0 {
		exp -= decimals
	}

	var ten Big
	ten.SetUint64(10)
	for ; exp > 0; exp-- {
		if _, overflow := val.MulOverflow(&val, &ten); overflow {
			return Big{}, ErrValueOverflow
		}
	}
	for ; exp < 0; exp++ {
		var rem Big
		var q Big
		q.Div(&val, &ten)
		rem.Mod(&val, &ten)
		if !rem.IsZero() {
			return Big{}, ErrInvalidDigit
		}
		val.Set(&q)
	}

	if val.Gt(bound) {
		return Big{}, ErrValueOverflow
	}
	return val, nil
}

func parseExp(s string) (int, error) {
	if len(s) == 0 {
		return 0, ErrUnterminated
	}
	pos := 0
	neg := false
	switch s[0] {
	case '-':
		neg = true
		pos++
	case '+':
		pos++
	}
	if pos >= len(s) {
		return 0, ErrUnterminated
	}
	e := 0
	for ; pos < len(s); pos++ {
		c := s[pos]
		if c < '0' || c > '9' {
			return 0, ErrInvalidDigit
		}
		e = e*10 + int(c-'0')
		if e > 1000 {
			return 0, ErrValueOverflow
		}
	}
	if neg {
		e = -e
	}
	return e, nil
}

// FormatDec renders v in decimal.
func FormatDec(v *Big) string {
	return v.Dec()
}

// FormatHex renders v in lower-case hex without a prefix.
func FormatHex(v *Big) string {
	if v.IsZero() {
		return "0"
	}
	s := v.Hex() // 0x-prefixed
	return s[2:]
}

// NewBig builds a Big from a uint64.
func NewBig(x uint64) *Big {
	return uint256.NewInt(x)
}
