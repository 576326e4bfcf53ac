// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package zkhash implements the parameter-indexed knapsack hash used by
// the proof circuit and by every secret, address, commitment and serial
// number derivation. The hash consumes bit decompositions of its inputs,
// combines them through two knapsack sums over a public base table, and
// hardens the result with Diophantine squaring rounds.
package zkhash

import (
	"encoding/binary"
	"sync"

	"github.com/aead/siphash"
	"golang.org/x/crypto/blake2b"

	"github.com/luxfi/cclib/bigint"
)

// Domain separation basis ids. MerkleNode must stay -1: it selects the
// keyless sequential bases shared by every tree level.
const (
	BasisMerkleNode    = -1
	BasisRootSecret    = 0
	BasisSpendSecret   = 1
	BasisTrustSecret   = 2
	BasisMonitorSecret = 3
	BasisReceiveSecret = 4
	BasisDestination   = 5
	BasisAddress       = 6
	BasisAmountEnc     = 7
	BasisCommitment    = 8
	BasisMerkleLeaf    = 9
	BasisSerialnum     = 10

	NumBases = 12
)

const (
	// the first 256 bases are the powers of two used for bit
	// decomposition; the rest are the knapsack bases
	basesRandomStart = 256
	basesNRandom     = 16384 // must be a power of two
	basesTotal       = basesRandomStart + basesNRandom
)

// The base table and the basis PRF keys are public protocol parameters.
// They are expanded deterministically from a fixed seed at first use;
// the expansion is part of the protocol definition.
var basesSeed = [16]byte{
	'C', 'C', '-', 'h', 'a', 's', 'h', '-',
	'b', 'a', 's', 'e', 's', '-', 'v', '1',
}

var (
	basesOnce   sync.Once
	baseTable   []bigint.Field
	baseBig     []bigint.Big
	basisPRFKey [NumBases][16]byte
)

func initBases() {
	basesOnce.Do(func() {
		baseTable = make([]bigint.Field, basesTotal)
		baseBig = make([]bigint.Big, basesTotal)

		for i := 0; i < basesRandomStart; i++ {
			baseBig[i].SetOne()
			bigint.ShiftUp(&baseBig[i], uint(i))
			baseTable[i] = bigint.ToField(&baseBig[i])
		}

		h, err := blake2b.New256(basesSeed[:])
		if err != nil {
			panic(err)
		}
		var ctr [4]byte
		for i := basesRandomStart; i < basesTotal; i++ {
			binary.LittleEndian.PutUint32(ctr[:], uint32(i))
			h.Reset()
			h.Write(ctr[:])
			sum := h.Sum(nil)
			baseBig[i].SetBytes(sum)
			baseTable[i] = bigint.ToField(&baseBig[i])
		}

		for k := 0; k < NumBases; k++ {
			binary.LittleEndian.PutUint32(ctr[:], uint32(basesTotal+k))
			h.Reset()
			h.Write(ctr[:])
			sum := h.Sum(nil)
			copy(basisPRFKey[k][:], sum[:16])
		}
	})
}

// Base returns entry i of the public base table as a raw integer.
func Base(i uint) bigint.Big {
	initBases()
	return baseBig[i]
}

// baseField returns entry i of the public base table as a field element.
func baseField(i uint) *bigint.Field {
	return &baseTable[i]
}

// basisSelector walks the base table for one hash invocation. The
// counter is shared by every knapsack in the call, so base selection
// depends on the position of each bit across the whole input sequence.
type basisSelector struct {
	key     *[16]byte // nil for the Merkle node basis
	counter uint32
}

func newBasisSelector(basis int) *basisSelector {
	initBases()
	s := &basisSelector{}
	if basis >= 0 {
		if basis >= NumBases {
			panic("zkhash: basis out of range")
		}
		s.key = &basisPRFKey[basis]
	}
	return s
}

// next returns the base index for bit i of the current knapsack.
// Sequential selection offsets a window by the low 16 bits of the key;
// PRF selection runs the shared counter through SipHash.
func (s *basisSelector) next(i uint, sequential bool) uint {
	if s.key == nil {
		return i + basesRandomStart
	}

	var idx uint
	if sequential {
		idx = uint(binary.LittleEndian.Uint16(s.key[:2])) + uint(s.counter)
	} else {
		var msg [4]byte
		binary.LittleEndian.PutUint32(msg[:], s.counter)
		idx = uint(siphash.Sum64(msg[:], s.key))
	}
	idx &= basesNRandom - 1
	idx += basesRandomStart
	s.counter++
	return idx
}
