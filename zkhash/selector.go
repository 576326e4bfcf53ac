// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package zkhash

import (
	"github.com/luxfi/cclib/bigint"
)

// Selector exposes the basis-walk to the circuit layer, which must
// consume base indices in exactly the same order as the evaluator.
type Selector struct {
	inner *basisSelector
}

// NewSelector starts a basis walk for one hash invocation.
func NewSelector(basis int) *Selector {
	return &Selector{inner: newBasisSelector(basis)}
}

// Next returns the base index for bit i of the current knapsack.
func (s *Selector) Next(i uint, sequential bool) uint {
	return s.inner.next(i, sequential)
}

// BaseFieldAt returns base table entry i as a field element.
func BaseFieldAt(i uint) bigint.Field {
	initBases()
	return baseTable[i]
}

// TableSize returns the base table length.
func TableSize() uint {
	return basesTotal
}
