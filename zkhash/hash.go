// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package zkhash

import (
	"github.com/luxfi/cclib/bigint"

	"github.com/luxfi/cclib/params"
)

// Input is one hash input: a value together with the bit width of its
// decomposition. Bits at or above NBits are always discarded;
// MaskHigherBits marks inputs that may carry such bits and does not change
// the evaluated hash.
type Input struct {
	Value          bigint.Big
	NBits          uint
	MaskHigherBits bool
}

// NewInput builds an Input from a value and width.
func NewInput(value bigint.Big, nbits uint) Input {
	return Input{Value: value, NBits: nbits}
}

// NewInputUint builds an Input from a uint64 value and width.
func NewInputUint(value uint64, nbits uint) Input {
	var v bigint.Big
	v.SetUint64(value)
	return Input{Value: v, NBits: nbits}
}

// extractBits returns the low nbits of v as a boolean vector, low bit
// first.
func extractBits(v *bigint.Big, nbits uint) []bool {
	bits := make([]bool, nbits)
	for i := uint(0); i < nbits; i++ {
		bits[i] = bigint.Bit(v, i)
	}
	return bits
}

// knapsack computes one knapsack sum over the bit vector, consuming base
// indices from the selector.
func knapsack(bits []bool, sel *basisSelector, sequential bool) bigint.Field {
	var sum bigint.Field
	for i, b := range bits {
		idx := sel.next(uint(i), sequential)
		if b {
			sum.Add(&sum, baseField(idx))
		}
	}
	return sum
}

// Hash computes the parameterized hash of the input sequence under the
// given domain basis, truncated to outBits.
func Hash(inputs []Input, basis int, outBits uint) bigint.Big {
	return hashInternal(inputs, basis, outBits, false)
}

// hashInternal optionally skips the final knapsack; Merkle interior
// nodes skip it on every step but the last.
func hashInternal(inputs []Input, basis int, outBits uint, skipFinalKnapsack bool) bigint.Big {
	sel := newBasisSelector(basis)

	var acc, ks0, ks1 bigint.Field

	for i := range inputs {
		in := &inputs[i]
		bits := extractBits(&in.Value, in.NBits)

		k0 := knapsack(bits, sel, true)
		k1 := knapsack(bits, sel, false)

		ks0.Add(&ks0, &k0)
		ks1.Add(&ks1, &k1)
		acc.Add(&acc, &k0)
		acc.Add(&acc, &k1)
	}

	return hashFinish(&acc, &ks0, &ks1, sel, outBits, skipFinalKnapsack)
}

func hashFinish(acc, ks0, ks1 *bigint.Field, sel *basisSelector, outBits uint, skipFinalKnapsack bool) bigint.Big {
	var one bigint.Field
	one.SetOne()

	for i := 0; i < 8; i++ {
		var t bigint.Field

		// ks0 = ks0^2 + ks0 + 1
		t.Square(ks0)
		t.Add(&t, ks0)
		t.Add(&t, &one)
		*ks0 = t

		// ks1 = ks1^2 - ks1 + 1
		t.Square(ks1)
		t.Sub(&t, ks1)
		t.Add(&t, &one)
		*ks1 = t
	}

	acc.Add(acc, ks0)
	acc.Add(acc, ks1)

	if !skipFinalKnapsack {
		inBits := outBits * 2
		if inBits > params.TxFieldBits {
			inBits = params.TxFieldBits
		}

		v := bigint.FromField(acc)
		bits := extractBits(&v, inBits)
		k := knapsack(bits, sel, true)
		*acc = k
	}

	result := bigint.FromField(acc)
	if outBits < params.TxFieldBits {
		bigint.Mask(&result, outBits)
	}
	return result
}

// Merkle folds a leaf value up a path of interior nodes, hashing each
// (running, path[i]) pair under the keyless node basis. The final
// knapsack runs only on the last step.
func Merkle(leaf bigint.Big, leafBits uint, path []bigint.Big, pathBits uint) bigint.Big {
	running := leaf
	runningBits := leafBits

	for i := range path {
		a := [2]Input{
			{Value: running, NBits: runningBits, MaskHigherBits: runningBits < params.TxFieldBits},
			{Value: path[i], NBits: pathBits},
		}
		running = hashInternal(a[:], BasisMerkleNode, pathBits, i < len(path)-1)
		runningBits = pathBits
	}

	return running
}
