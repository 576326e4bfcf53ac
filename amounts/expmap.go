// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amounts

import (
	"math"
)

// ExpMap compresses a wide range of unsigned values into a small encoded
// range: the low half of the encoded range is linear with the given step,
// the high half grows geometrically to reach DecMax at EncMax. Used for
// single-byte payment-time fields on the wire.
type ExpMap struct {
	Offset uint32
	Step   uint32
	EncMax uint32
	DecMax uint32

	base       float64
	linearMax  uint32
	linearTop  uint32
}

// NewExpMap computes the mapping parameters.
func NewExpMap(offset, step, encMax, decMax uint32) ExpMap {
	m := ExpMap{Offset: offset, Step: step, EncMax: encMax, DecMax: decMax}
	m.linearMax = encMax / 2
	m.linearTop = offset + step*m.linearMax
	n := encMax - m.linearMax
	m.base = math.Pow(float64(decMax)/float64(m.linearTop), 1/float64(n))
	return m
}

// Decode expands an encoded value.
func (m *ExpMap) Decode(enc uint32) uint32 {
	if enc > m.EncMax {
		enc = m.EncMax
	}
	if enc <= m.linearMax {
		return m.Offset + m.Step*enc
	}
	if enc == m.EncMax {
		return m.DecMax
	}
	v := float64(m.linearTop) * math.Pow(m.base, float64(enc-m.linearMax))
	d := uint32(math.Round(v))
	if d > m.DecMax {
		d = m.DecMax
	}
	return d
}

// Encode compresses val, rounding up to the next representable value by
// default, or down when roundUp is false. Values beyond the mapped range
// clamp to the endpoints.
func (m *ExpMap) Encode(val uint32, roundUp bool) uint32 {
	if val <= m.Offset {
		return 0
	}
	if val >= m.DecMax {
		return m.EncMax
	}
	lo, hi := uint32(0), m.EncMax
	for lo < hi {
		mid := (lo + hi) / 2
		if m.Decode(mid) < val {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	// lo is the smallest encoding that decodes >= val
	if !roundUp && m.Decode(lo) != val && lo > 0 {
		lo--
	}
	return lo
}
