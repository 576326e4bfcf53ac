// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package amounts implements the floating-point amount codec used on the
// wire, the sort-compatible packed amount forms, and decimal string
// conversion. Amounts travel as a mantissa/exponent word decoded as
// (mantissa + [exponent>0]) * 10^exponent.
package amounts

import (
	"errors"
	"math/big"
	"strings"
	"sync"

	"github.com/luxfi/cclib/bigint"
)

const (
	AmountBits       = 40
	DonationBits     = 16
	ExponentBits     = 5
	ExponentMask     = (1 << ExponentBits) - 1
	AmountDecodedBits = 128

	// packed forms, big-endian so byte order matches numeric order
	UnsignedPackedBytes = 16
	SignedPackedBytes   = 24

	// asset ids are offset by this before selecting a decimal scale
	AssetNoScale = -27
)

// Rounding modes for Encode.
const (
	RoundClosest = 0
	RoundUp      = 1
	NoRound      = 2
	RoundDown    = 3
)

var (
	ErrNoExactRepresentation = errors.New("amount has no exact representation")
	ErrAmountRange           = errors.New("amount out of range")
)

// EncodeError is the sentinel returned by Encode on a NoRound failure.
const EncodeError = ^uint64(0)

var (
	initOnce      sync.Once
	factors       [ExponentMask + 1]bigint.Big
	maxs          [4][ExponentMask + 1]bigint.Big
)

func initTables() {
	initOnce.Do(func() {
		for i := 0; i <= ExponentMask; i++ {
			if i == 0 {
				factors[i].SetOne()
			} else {
				var ten bigint.Big
				ten.SetUint64(10)
				factors[i].Mul(&factors[i-1], &ten)
			}

			// 2 = donation round up (always)
			setMax(&maxs[2][i], donationMantissaBits, i)

			// 1 = amount round up
			setMax(&maxs[1][i], amountMantissaBits, i)

			// 0 = amount round to closest
			half := factors[i]
			bigint.ShiftDown(&half, 1)
			maxs[0][i].Add(&maxs[1][i], &half)
			if i > 0 {
				var one bigint.Big
				one.SetOne()
				maxs[0][i].Sub(&maxs[0][i], &one)
			}

			// 3 = amount round down
			if i > 0 {
				var adj bigint.Big
				var one bigint.Big
				one.SetOne()
				adj.Sub(&factors[i], &one)
				maxs[3][i].Add(&maxs[1][i], &adj)
			} else {
				maxs[3][i] = maxs[1][i]
			}
		}
	})
}

const (
	amountMantissaBits   = AmountBits - ExponentBits
	donationMantissaBits = DonationBits - ExponentBits
)

func setMax(dst *bigint.Big, mantissaBits, exponent int) {
	var m bigint.Big
	sub := uint64(0)
	if exponent == 0 {
		sub = 1
	}
	m.SetUint64((uint64(1) << mantissaBits) - sub)
	dst.Mul(&m, &factors[exponent])
}

// Factor returns 10^exponent.
func Factor(exponent uint) bigint.Big {
	initTables()
	return factors[exponent&ExponentMask]
}

// DecodeExponent extracts the exponent field of an encoded amount.
func DecodeExponent(amount uint64) uint {
	return uint(amount & ExponentMask)
}

// Decode expands an encoded amount into its integer value.
func Decode(amount uint64, isDonation bool) bigint.Big {
	initTables()

	exponent := amount & ExponentMask
	mantissa := amount >> ExponentBits
	if exponent > 0 {
		mantissa++
	}

	var result bigint.Big
	result.SetUint64(mantissa)
	result.Mul(&result, &factors[exponent])
	return result
}

// Encode packs amount into a mantissa/exponent word, scanning exponents
// from maxExponent downward and rounding per the requested mode. The
// mantissa is minimized by moving trailing factors of ten into the
// exponent. A NoRound failure returns EncodeError.
func Encode(amount *bigint.Big, isDonation bool, minExponent, maxExponent uint, rounding uint) uint64 {
	initTables()

	if minExponent > ExponentMask {
		minExponent = ExponentMask
	}
	if maxExponent > ExponentMask {
		maxExponent = ExponentMask
	}
	if maxExponent < minExponent {
		maxExponent = minExponent
	}

	rounding &= 3
	noRounding := rounding == NoRound
	roundIndex := rounding
	if rounding >= 2 {
		roundIndex = 3
	}
	if isDonation {
		roundIndex = 2
	}

	mantissaBits := uint(amountMantissaBits)
	if isDonation {
		mantissaBits = donationMantissaBits
	}

	if amount.IsZero() {
		return 0
	}

	exponent := int(maxExponent)
	for ; exponent >= int(minExponent); exponent-- {
		if amount.Gt(&maxs[roundIndex][exponent]) {
			exponent++
			break
		}
	}

	if exponent < int(minExponent) {
		if !amount.Gt(&maxs[roundIndex][minExponent]) {
			exponent = int(minExponent)
		} else if noRounding {
			return EncodeError
		} else {
			return uint64(minExponent)
		}
	}

	var mantissa uint64
	if exponent <= int(maxExponent) {
		var quotient, rem bigint.Big
		quotient.Div(amount, &factors[exponent])
		rem.Mod(amount, &factors[exponent])

		mantissa = quotient.Uint64()

		if !rem.IsZero() {
			if noRounding {
				return EncodeError
			}
			if isDonation || rounding <= 1 {
				if !isDonation && rounding == RoundClosest {
					bigint.ShiftUp(&rem, 1)
				}
				if isDonation || rounding == RoundUp || !rem.Lt(&factors[exponent]) {
					mantissa++
				}
			}
		}
	}

	if exponent > int(maxExponent) {
		if noRounding || (isDonation && rounding != RoundDown) {
			return EncodeError
		}
		return (((uint64(1) << mantissaBits) - 1) << ExponentBits) | uint64(maxExponent)
	}

	if mantissa == 0 {
		if noRounding {
			return EncodeError
		}
		return 0
	}

	for exponent < int(maxExponent) {
		div := mantissa / 10
		if div*10 != mantissa {
			break
		}
		mantissa = div
		exponent++
	}

	adj := uint64(0)
	if exponent > 0 {
		adj = 1
	}
	return ((mantissa - adj) << ExponentBits) | uint64(exponent)
}

// MaxEncoded returns the largest encodable amount word for the given
// maximum exponent (zero or out-of-range selects the absolute maximum).
func MaxEncoded(maxExponent uint) uint64 {
	if maxExponent == 0 || maxExponent > ExponentMask {
		maxExponent = ExponentMask
	}
	return (((uint64(1) << amountMantissaBits) - 1) << ExponentBits) | uint64(maxExponent)
}

// MaxAmount returns the decoded value of MaxEncoded.
func MaxAmount(maxExponent uint) bigint.Big {
	return Decode(MaxEncoded(maxExponent), false)
}

// ScaleFactor returns the decimal scale 10^((asset - AssetNoScale) mod 32)
// applied to an asset's display amounts.
func ScaleFactor(asset uint64) *big.Float {
	initTables()
	noScale := int64(AssetNoScale)
	idx := (asset - uint64(noScale)) & 31
	f := new(big.Float).SetPrec(256)
	f.SetInt(factors[idx].ToBig())
	return f
}

// ToString renders amount (in base units of the given asset) as a decimal
// string with the asset's scale divided out. With addDecimal, a bare
// integer result keeps one trailing ".0".
func ToString(asset uint64, amount *bigint.Big, addDecimal bool) string {
	neg := bigint.Bit(amount, 255)
	mag := *amount
	if neg {
		var zero bigint.Big
		mag.Sub(&zero, amount)
	}

	f := new(big.Float).SetPrec(256)
	f.SetInt(mag.ToBig())
	f.Quo(f, ScaleFactor(asset))

	s := f.Text('f', 31)
	s = trimAmountString(s, addDecimal)
	if neg && s != "0" {
		s = "-" + s
	}
	return s
}

func trimAmountString(s string, addDecimal bool) string {
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		end := len(s)
		for end > dot+1 && s[end-1] == '0' {
			end--
		}
		if end == dot+1 {
			end = dot
		}
		s = s[:end]
	}
	if addDecimal && !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// FromString parses a decimal string into base units of the given asset.
// A value that is not integral after scaling is rounded half away from
// zero.
func FromString(asset uint64, s string) (bigint.Big, error) {
	var out bigint.Big

	f, ok := new(big.Float).SetPrec(256).SetString(s)
	if !ok {
		return out, ErrAmountRange
	}
	f.Mul(f, ScaleFactor(asset))

	i, acc := f.Int(nil)
	if acc != big.Exact {
		// round half away from zero, matching the display precision
		half := big.NewFloat(0.5)
		if f.Sign() < 0 {
			half.Neg(half)
		}
		f.Add(f, half)
		i, _ = f.Int(nil)
	}

	if i.Sign() < 0 {
		var mag bigint.Big
		if overflow := mag.SetFromBig(new(big.Int).Neg(i)); overflow {
			return out, ErrAmountRange
		}
		var zero bigint.Big
		out.Sub(&zero, &mag)
		return out, nil
	}
	if overflow := out.SetFromBig(i); overflow {
		return out, ErrAmountRange
	}
	return out, nil
}
