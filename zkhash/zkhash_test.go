// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package zkhash

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
)

func TestBaseTable(t *testing.T) {
	// the first 256 bases are the powers of two
	for i := uint(0); i < 256; i++ {
		b := Base(i)
		var want bigint.Big
		want.SetOne()
		bigint.ShiftUp(&want, i)
		require.Equal(t, want, b)
	}

	// the knapsack bases are distinct and non-trivial
	seen := map[bigint.Big]bool{}
	for i := uint(basesRandomStart); i < basesRandomStart+64; i++ {
		b := Base(i)
		require.False(t, b.IsZero())
		require.False(t, seen[b])
		seen[b] = true
	}
}

func TestHashDeterministic(t *testing.T) {
	in := []Input{
		NewInputUint(0x42, params.TxInputBits),
	}
	h1 := Hash(in, BasisRootSecret, params.TxFieldBits)
	h2 := Hash(in, BasisRootSecret, params.TxFieldBits)
	require.Equal(t, h1, h2)
	require.False(t, h1.IsZero())

	// different basis, different result
	h3 := Hash(in, BasisTrustSecret, params.TxFieldBits)
	require.NotEqual(t, h1, h3)

	// different width, different result
	h4 := Hash([]Input{NewInputUint(0x42, 16)}, BasisRootSecret, params.TxFieldBits)
	require.NotEqual(t, h1, h4)
}

func TestHashOutputWidth(t *testing.T) {
	in := []Input{NewInputUint(7, 8)}

	h := Hash(in, BasisAddress, params.TxAddressBits)
	masked := h
	bigint.Mask(&masked, params.TxAddressBits)
	require.Equal(t, h, masked)

	h = Hash(in, BasisAmountEnc, 104)
	masked = h
	bigint.Mask(&masked, 104)
	require.Equal(t, h, masked)
}

func TestHashBitSensitivity(t *testing.T) {
	var v bigint.Big
	require.NoError(t, bigint.Randomize(&v))
	bigint.Mask(&v, params.TxFieldBits)

	base := Hash([]Input{NewInput(v, params.TxFieldBits)}, BasisCommitment, params.TxFieldBits)

	for i := uint(0); i < params.TxFieldBits; i += 17 {
		flipped := v
		flipped[i/64] ^= uint64(1) << (i % 64)
		h := Hash([]Input{NewInput(flipped, params.TxFieldBits)}, BasisCommitment, params.TxFieldBits)
		require.NotEqual(t, base, h, "bit %d", i)
	}
}

func TestSecretChain(t *testing.T) {
	var master bigint.Big
	master.SetUint64(1)

	root := RootSecret(master)
	spend := SpendSecret(root, 0)
	trust := TrustSecret(spend)
	monitor := MonitorSecret(trust)

	for _, v := range []bigint.Big{root, spend, trust, monitor} {
		require.False(t, v.IsZero())
		masked := v
		bigint.Mask(&masked, params.TxFieldBits)
		require.Equal(t, v, masked)
	}

	// the spend secret number distinguishes slot-0 derivations
	spend1 := SpendSecret(root, 1)
	require.NotEqual(t, spend, spend1)

	// chain is deterministic
	require.Equal(t, root, RootSecret(master))
}

func TestAddressDeterministic(t *testing.T) {
	var dest bigint.Big
	dest.SetUint64(0x0123456789abcdef)

	a1 := Address(dest, params.MainnetBlockchain, 42)
	a2 := Address(dest, params.MainnetBlockchain, 42)
	require.Equal(t, a1, a2)

	require.NotEqual(t, a1, Address(dest, params.MainnetBlockchain, 43))
	require.NotEqual(t, a1, Address(dest, 2, 42))

	masked := a1
	bigint.Mask(&masked, params.TxAddressBits)
	require.Equal(t, a1, masked)
}

func TestSerialnumNonMalleable(t *testing.T) {
	var monitor, commitment bigint.Big
	require.NoError(t, bigint.Randomize(&monitor))
	require.NoError(t, bigint.Randomize(&commitment))
	bigint.Mask(&commitment, params.TxFieldBits)

	s1 := Serialnum(monitor, commitment, 5)
	require.Equal(t, s1, Serialnum(monitor, commitment, 5))
	require.NotEqual(t, s1, Serialnum(monitor, commitment, 6))

	// adding the field prime to the commitment must change the serial
	// number: the commitment is decomposed as a full-width integer, not
	// reduced first
	var wrapped bigint.Big
	wrapped.Add(&commitment, bigint.FieldModulus())
	require.NotEqual(t, s1, Serialnum(monitor, wrapped, 5))
}

func TestMerkleConsistency(t *testing.T) {
	var commitment bigint.Big
	require.NoError(t, bigint.Randomize(&commitment))
	bigint.Mask(&commitment, params.TxFieldBits)

	leaf := MerkleLeaf(commitment, 3)

	path := make([]bigint.Big, params.TxMerkleDepth)
	for i := range path {
		require.NoError(t, bigint.Randomize(&path[i]))
		bigint.Mask(&path[i], params.TxMerkleBits)
	}

	root := Merkle(leaf, params.TxMerkleBits, path, params.TxMerkleBits)

	// step-by-step node hashing agrees with the folded form
	running := leaf
	for i := range path {
		running = MerkleNode(running, path[i], i < len(path)-1)
	}
	require.Equal(t, root, running)

	// a perturbed path element changes the root
	path[11][0] ^= 1
	require.NotEqual(t, root, Merkle(leaf, params.TxMerkleBits, path, params.TxMerkleBits))
}

func TestCommitmentAndPad(t *testing.T) {
	var iv, dest bigint.Big
	iv.SetUint64(0x1122334455)
	bigint.Mask(&iv, params.TxCommitIVBits)
	require.NoError(t, bigint.Randomize(&dest))
	bigint.Mask(&dest, params.TxFieldBits)

	c1 := Commitment(iv, dest, 7, 0, 0, 1234)
	c2 := Commitment(iv, dest, 7, 0, 0, 1234)
	require.Equal(t, c1, c2)
	require.NotEqual(t, c1, Commitment(iv, dest, 7, 0, 0, 1235))
	require.NotEqual(t, c1, Commitment(iv, dest, 7, 1, 0, 1234))

	assetPad, amountPad := AmountPad(iv, dest, 7)
	assetPad2, amountPad2 := AmountPad(iv, dest, 7)
	require.Equal(t, assetPad, assetPad2)
	require.Equal(t, amountPad, amountPad2)
	require.Zero(t, amountPad&^params.TxAmountMask)
}
