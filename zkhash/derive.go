// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package zkhash

import (
	"github.com/luxfi/cclib/bigint"

	"github.com/luxfi/cclib/params"
)

// The named derivations below are the protocol's secret chain and output
// binding rules. Each one is a single call of the parameterized hash
// under a dedicated basis, with fixed input widths.

// RootSecret derives the root secret from a 256-bit master secret.
func RootSecret(masterSecret bigint.Big) bigint.Big {
	in := []Input{NewInput(masterSecret, params.TxInputBits)}
	return Hash(in, BasisRootSecret, params.TxFieldBits)
}

// SpendSecret derives a spend secret from the root secret. The secret
// number is only meaningful for slot 0; other slots pass zero.
func SpendSecret(rootSecret bigint.Big, spendSecretNumber uint32) bigint.Big {
	in := []Input{
		NewInput(rootSecret, params.TxFieldBits),
		NewInputUint(uint64(spendSecretNumber), params.TxSpendSecretNumBits),
	}
	return Hash(in, BasisSpendSecret, params.TxFieldBits)
}

// TrustSecret derives a trust secret from a spend secret.
func TrustSecret(spendSecret bigint.Big) bigint.Big {
	in := []Input{NewInput(spendSecret, params.TxInputBits)}
	return Hash(in, BasisTrustSecret, params.TxFieldBits)
}

// MonitorSecret derives a monitor secret from a trust secret.
func MonitorSecret(trustSecret bigint.Big) bigint.Big {
	in := []Input{NewInput(trustSecret, params.TxInputBits)}
	return Hash(in, BasisMonitorSecret, params.TxFieldBits)
}

// splitHalves returns the low and high 128-bit halves of a 256-bit
// value, the form in which monitor secrets enter the hash.
func splitHalves(v bigint.Big) (lo, hi bigint.Big) {
	lo = v
	bigint.Mask(&lo, params.TxInputBits/2)
	hi = v
	bigint.ShiftDown(&hi, params.TxInputBits/2)
	return lo, hi
}

// ReceiveSecretParams carries the address gating terms bound into the
// receive secret.
type ReceiveSecretParams struct {
	EnforceSpendSpecWithSpendSecrets bool
	EnforceSpendSpecWithTrustSecrets bool
	RequiredSpendSpecHash            bigint.Big
	AllowMasterSecret                bool
	AllowFreeze                      bool
	AllowTrustUnfreeze               bool
	RequirePublicHashkey             bool
	RestrictAddresses                bool
	SpendLocktime                    uint64
	TrustLocktime                    uint64
	SpendDelaytime                   uint8
	TrustDelaytime                   uint8
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// ReceiveSecret derives the receive secret from monitor secret slot 0
// and the gating parameters.
func ReceiveSecret(monitorSecret bigint.Big, p *ReceiveSecretParams) bigint.Big {
	lo, hi := splitHalves(monitorSecret)

	in := []Input{
		NewInput(lo, params.TxInputBits/2),
		NewInput(hi, params.TxInputBits/2),
		NewInputUint(boolBit(p.EnforceSpendSpecWithSpendSecrets), 1),
		NewInputUint(boolBit(p.EnforceSpendSpecWithTrustSecrets), 1),
		NewInput(p.RequiredSpendSpecHash, params.TxInputBits),
		NewInputUint(boolBit(p.AllowMasterSecret), 1),
		NewInputUint(boolBit(p.AllowFreeze), 1),
		NewInputUint(boolBit(p.AllowTrustUnfreeze), 1),
		NewInputUint(boolBit(p.RequirePublicHashkey), 1),
		NewInputUint(boolBit(p.RestrictAddresses), 1),
		NewInputUint(p.SpendLocktime, params.TxTimeBits),
		NewInputUint(p.TrustLocktime, params.TxTimeBits),
		NewInputUint(uint64(p.SpendDelaytime), params.TxDelaytimeBits),
		NewInputUint(uint64(p.TrustDelaytime), params.TxDelaytimeBits),
	}
	return Hash(in, BasisReceiveSecret, params.TxFieldBits)
}

// Destination derives a payment destination from the receive secret, the
// upper monitor secret slots, and the multi-secret policy terms.
func Destination(receiveSecret bigint.Big, monitorSecrets *[params.TxMaxSecretSlots]bigint.Big,
	useSpendSecret, useTrustSecret *[params.TxMaxSecrets]bool,
	requiredSpendSecrets, requiredTrustSecrets uint16, destnum uint32) bigint.Big {

	var useSpendBits, useTrustBits uint64
	for j := 0; j < params.TxMaxSecrets; j++ {
		useSpendBits |= boolBit(useSpendSecret[j]) << j
		useTrustBits |= boolBit(useTrustSecret[j]) << j
	}

	in := make([]Input, 0, 2*params.TxMaxSecretSlots+4)
	in = append(in, NewInput(receiveSecret, params.TxFieldBits))
	for j := 1; j < params.TxMaxSecretSlots; j++ {
		lo, hi := splitHalves(monitorSecrets[j])
		in = append(in,
			NewInput(lo, params.TxInputBits/2),
			NewInput(hi, params.TxInputBits/2))
	}
	in = append(in,
		NewInputUint(useSpendBits, params.TxMaxSecrets),
		NewInputUint(useTrustBits, params.TxMaxSecrets),
		NewInputUint(uint64(requiredSpendSecrets), params.TxMaxSecretsBits),
		NewInputUint(uint64(requiredTrustSecrets), params.TxMaxSecretsBits),
		NewInputUint(uint64(destnum), params.TxDestnumBits))

	return Hash(in, BasisDestination, params.TxFieldBits)
}

// Address derives the 128-bit payment address for a destination on a
// chain.
func Address(destination bigint.Big, destChain uint64, paynum uint32) bigint.Big {
	in := []Input{
		NewInput(destination, params.TxFieldBits),
		NewInputUint(destChain, params.TxChainBits),
		NewInputUint(uint64(paynum), params.TxPaynumBits),
	}
	return Hash(in, BasisAddress, params.TxAddressBits)
}

// AmountPad derives the one-time pad that encrypts an output's public
// asset and amount fields. The low TxAssetBits of the hash mask the
// asset; the next TxAmountBits mask the amount.
func AmountPad(commitIV, dest bigint.Big, paynum uint32) (assetPad, amountPad uint64) {
	encIV := commitIV
	bigint.Mask(&encIV, params.TxEncIVBits)

	in := []Input{
		NewInput(encIV, params.TxEncIVBits),
		NewInput(dest, params.TxFieldBits),
		NewInputUint(uint64(paynum), params.TxPaynumBits),
	}
	pad := Hash(in, BasisAmountEnc, params.TxAssetBits+params.TxAmountBits)

	assetPad = pad[0] & params.TxAssetMask
	amountPad = pad[1] & params.TxAmountMask
	return assetPad, amountPad
}

// Commitment derives an output commitment.
func Commitment(commitIV, dest bigint.Big, paynum uint32, domain uint32, asset, amountFP uint64) bigint.Big {
	in := []Input{
		NewInput(commitIV, params.TxCommitIVBits),
		NewInput(dest, params.TxFieldBits),
		NewInputUint(uint64(paynum), params.TxPaynumBits),
		NewInputUint(uint64(domain), params.TxDomainBits),
		NewInputUint(asset, params.TxAssetBits),
		NewInputUint(amountFP, params.TxAmountBits),
	}
	return Hash(in, BasisCommitment, params.TxFieldBits)
}

// Serialnum derives the serial number that marks a billet spent.
func Serialnum(monitorSecret, commitment bigint.Big, commitnum uint64) bigint.Big {
	lo, hi := splitHalves(monitorSecret)

	in := []Input{
		NewInput(lo, params.TxInputBits/2),
		NewInput(hi, params.TxInputBits/2),
		NewInput(commitment, params.TxFieldBits),
		NewInputUint(commitnum, params.TxCommitnumBits),
	}
	return Hash(in, BasisSerialnum, params.TxSerialnumBits)
}

// MerkleLeaf hashes a commitment and its position into a tree leaf.
func MerkleLeaf(commitment bigint.Big, commitnum uint64) bigint.Big {
	in := []Input{
		NewInput(commitment, params.TxFieldBits),
		NewInputUint(commitnum, params.TxCommitnumBits),
	}
	return Hash(in, BasisMerkleLeaf, params.TxMerkleBits)
}

// MerkleNode hashes two interior values; skipFinalKnapsack is set on all
// levels but the root.
func MerkleNode(val1, val2 bigint.Big, skipFinalKnapsack bool) bigint.Big {
	in := []Input{
		NewInput(val1, params.TxMerkleBits),
		NewInput(val2, params.TxMerkleBits),
	}
	return hashInternal(in, BasisMerkleNode, params.TxMerkleBits, skipFinalKnapsack)
}
