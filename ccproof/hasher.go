// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ccproof

import (
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/snark"
	"github.com/luxfi/cclib/zkhash"
)

// zkvar pairs a circuit expression with the raw integer it was blessed
// from. The raw value drives bit decomposition; the expression carries
// the field-reduced value through constraints.
type zkvar struct {
	e   snark.Expr
	raw bigint.Big
}

func (c *circuit) newVar(raw bigint.Big) zkvar {
	return zkvar{e: c.sys.Bless(bigint.ToField(&raw)), raw: raw}
}

func fieldVar(e snark.Expr) zkvar {
	v := e.Value()
	return zkvar{e: e, raw: bigint.FromField(&v)}
}

// extractBits decomposes the low nbits of v into boolean witness
// variables, enforcing booleanity on each and binding the recomposition
// to v. With wantRem the bits above nbits return as a remainder
// variable; with wantBitval the masked low value returns as its own
// variable.
func (c *circuit) extractBits(v zkvar, nbits uint, wantRem, wantBitval bool) (bits []snark.Expr, rem, bitval zkvar) {
	bits = make([]snark.Expr, nbits)

	var bval bigint.Big
	remval := v.raw

	for i := uint(0); i < nbits; i++ {
		bit := uint64(0)
		if bigint.Bit(&v.raw, i) {
			bit = 1
			var b bigint.Big
			b.SetOne()
			bigint.ShiftUp(&b, i)
			bval.Add(&bval, &b)
		}
		bits[i] = c.sys.Bless(frUint(bit))
		c.sys.AddBooleanity(bits[i])
	}
	bigint.ShiftDown(&remval, nbits)

	if wantRem {
		rem = c.newVar(remval)
	}
	if wantBitval {
		bitval = c.newVar(bval)
	}

	// sum(bit_i * 2^i) [+ bitval splice] [+ rem * 2^nbits] = v
	sum := c.sys.ConstantUint(0)
	for i := uint(0); i < nbits; i++ {
		f := zkhash.BaseFieldAt(i)
		sum = sum.Add(bits[i].Scale(f))
	}

	if wantBitval {
		c.sys.ConstrainEqual(sum, bitval.e)
		sum = bitval.e
	}
	if wantRem {
		f := zkhash.BaseFieldAt(nbits)
		sum = sum.Add(rem.e.Scale(f))
	}
	c.sys.ConstrainEqual(sum, v.e)

	return bits, rem, bitval
}

// knapsack1 allocates the knapsack sum of a bit vector and constrains it
// to the selected bases.
func (c *circuit) knapsack1(bits []snark.Expr, sel *zkhash.Selector, sequential bool) zkvar {
	idxs := make([]uint, len(bits))
	var sum bigint.Field
	for i := range bits {
		idxs[i] = sel.Next(uint(i), sequential)
		bv := bits[i].Value()
		if bv.IsOne() {
			f := zkhash.BaseFieldAt(idxs[i])
			sum.Add(&sum, &f)
		}
	}

	out := c.newVar(bigint.FromField(&sum))

	lc := c.sys.ConstantUint(0)
	for i := range bits {
		lc = lc.Add(bits[i].Scale(zkhash.BaseFieldAt(idxs[i])))
	}
	c.sys.ConstrainEqual(lc, out.e)

	return out
}

// hashInput is one input to the in-circuit hasher: either a prepared bit
// vector or a variable to decompose.
type hashInput struct {
	bits  []snark.Expr
	v     *zkvar
	nbits uint
	mask  bool // discard bits above nbits through a remainder
}

func bitsInput(bits []snark.Expr, nbits uint) hashInput {
	return hashInput{bits: bits, nbits: nbits}
}

func varInput(v zkvar, nbits uint, mask bool) hashInput {
	return hashInput{v: &v, nbits: nbits, mask: mask}
}

// hashBits runs the knapsack hash over circuit values, mirroring the
// evaluator bit for bit: same basis walk, same Diophantine rounds, same
// final knapsack and extraction.
func (c *circuit) hashBits(inputs []hashInput, basis int, outBits uint, skipFinalKnapsack bool) zkvar {
	sel := zkhash.NewSelector(basis)

	var acc, ks0, ks1 snark.Expr
	first := true

	for i := range inputs {
		in := &inputs[i]

		abits := in.bits
		if abits == nil {
			abits, _, _ = c.extractBits(*in.v, in.nbits, in.mask, false)
		}

		k0 := c.knapsack1(abits, sel, true)
		k1 := c.knapsack1(abits, sel, false)

		if first {
			ks0, ks1 = k0.e, k1.e
			acc = k0.e.Add(k1.e)
			first = false
		} else {
			ks0 = ks0.Add(k0.e)
			ks1 = ks1.Add(k1.e)
			acc = acc.Add(k0.e).Add(k1.e)
		}
	}

	one := c.sys.ConstantUint(1)
	for i := 0; i < 8; i++ {
		ks0 = ks0.Mul(ks0).Add(ks0).Add(one)
		ks1 = ks1.Mul(ks1).Sub(ks1).Add(one)
	}

	acc = acc.Add(ks0).Add(ks1)

	if !skipFinalKnapsack {
		inBits := outBits * 2
		if inBits > params.TxFieldBits {
			inBits = params.TxFieldBits
		}

		accBits, _, _ := c.extractBits(fieldVar(acc), inBits, inBits < params.TxFieldBits, false)
		acc = c.knapsack1(accBits, sel, true).e
	}

	if outBits >= params.TxFieldBits {
		return fieldVar(acc)
	}

	_, _, result := c.extractBits(fieldVar(acc), outBits, true, true)
	return result
}

// merkle folds a leaf up the path inside the circuit.
func (c *circuit) merkle(leaf zkvar, leafBits uint, path []zkvar, pathBits uint) zkvar {
	running := leaf
	runningBits := leafBits

	for i := range path {
		in := []hashInput{
			varInput(running, runningBits, runningBits < params.TxFieldBits),
			varInput(path[i], pathBits, false),
		}
		running = c.hashBits(in, zkhash.BasisMerkleNode, pathBits, i < len(path)-1)
		runningBits = pathBits
	}

	return running
}

func frUint(v uint64) bigint.Field {
	var f bigint.Field
	f.SetUint64(v)
	return f
}
