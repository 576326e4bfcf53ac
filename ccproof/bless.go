// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ccproof

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2s"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/snark"
	"github.com/luxfi/cclib/transaction"
)

// Blessing binds a circuit variable to a concrete value. The blessing
// sequence is the variable allocation order, so it must be identical
// between proving and verifying; every conditional below depends only on
// values both sides share.
//
// The badsel counter drives constraint-tightness testing: when it
// reaches zero on a perturbable variable, that variable is blessed with
// an invalidating value and the resulting proof must fail to verify.

type circuit struct {
	sys *snark.System

	tx *transaction.TxPay

	randSeed      bigint.Big
	randCount     int32
	randCountPriv int32

	verify bool

	zk *txPayZK
}

func (c *circuit) initRandSeed(seed uint64) {
	c.randSeed.SetUint64(seed)
	c.randCount = 0
	c.randCountPriv = -999999
}

// randVal draws the next value of the keyed deterministic stream. The
// prover and verifier agree on the stream because it is seeded from the
// transaction's random_seed.
func (c *circuit) randVal(priv bool) bigint.Big {
	pcount := &c.randCount
	if priv {
		pcount = &c.randCountPriv
	}
	*pcount++

	var key [4]byte
	binary.LittleEndian.PutUint32(key[:], uint32(*pcount))
	h, err := blake2s.New256(key[:])
	if err != nil {
		panic(err)
	}
	seed := bigint.LittleEndianBytes(&c.randSeed)
	h.Write(seed[:])

	var out bigint.Big
	out.SetBytes(h.Sum(nil))
	return out
}

// blessOpt carries the test knobs of one blessing.
type blessOpt struct {
	nobad  bool // perturbing this variable cannot invalidate the proof
	anyval bool // the variable may take any value; blessed as zero
	nomod  bool // value-plus-prime would still satisfy the constraints
	badval *bigint.Big
}

func (c *circuit) blessInput(pub bool, badsel *int, val bigint.Big, nbits uint, o blessOpt) zkvar {
	blessval := val

	if o.anyval {
		blessval = bigint.Big{}
		if nbits >= params.TxFieldBits {
			blessval[3] = bigint.NonFieldHiWord
		}
	}

	if *badsel == 0 {
		rval := c.randVal(false)

		if o.nobad || o.anyval {
			// this variable cannot be made bad, defer to the next one
			*badsel++
		} else if o.badval != nil {
			blessval = *o.badval
		} else if !pub && !o.nomod && rval[0]&7 == 0 {
			// hidden inputs must reject value-plus-prime aliases
			var prime bigint.Big
			prime.Set(bigint.FieldModulus())
			blessval.Add(&blessval, &prime)
		} else {
			// flip one or two bits, possibly just past the field width
			rbits := nbits
			if rbits < 256 {
				rbits++
			}
			bit1 := uint(rval[1] % uint64(rbits))
			blessval[bit1/64] ^= uint64(1) << (bit1 % 64)
			if rval[0]&4 != 0 {
				bit2 := uint(rval[2] % uint64(rbits))
				if bit2 != bit1 {
					blessval[bit2/64] ^= uint64(1) << (bit2 % 64)
				}
			}
		}
	}

	*badsel--

	return c.newVar(blessval)
}

func (c *circuit) blessUint(pub bool, badsel *int, val uint64, nbits uint, o blessOpt) zkvar {
	var v bigint.Big
	v.SetUint64(val)
	return c.blessInput(pub, badsel, v, nbits, o)
}

func (c *circuit) blessBool(pub bool, badsel *int, val bool, o blessOpt) zkvar {
	u := uint64(0)
	if val {
		u = 1
	}
	return c.blessUint(pub, badsel, u, 1, o)
}

// bless binds a plain enforcement flag with no test hooks.
func (c *circuit) bless(val bool) zkvar {
	u := uint64(0)
	if val {
		u = 1
	}
	var v bigint.Big
	v.SetUint64(u)
	return c.newVar(v)
}

// computeBadMask flips a mask bit whose pad bit is set, producing an
// invalid mask that still xors consistently on the other bits.
func (c *circuit) computeBadMask(mask, pad uint64) bigint.Big {
	for i := 0; i < 200 && pad != 0; i++ {
		// this path depends on private values, so it draws from the
		// private counter and leaves the shared stream undisturbed
		rnd := c.randVal(true)
		bit := uint64(1) << (rnd[0] & 63)
		if bit&pad != 0 {
			var v bigint.Big
			v.SetUint64(mask ^ bit)
			return v
		}
	}
	var v bigint.Big
	v.SetUint64(mask ^ pad)
	return v
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func decodeExponent(amountFP uint64) uint {
	return amounts.DecodeExponent(amountFP)
}
