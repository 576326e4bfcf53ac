// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transaction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/zkhash"
)

// buildTestTx constructs a self-consistent one-output one-input payment:
// the input's secrets derive the destination whose commitment the input
// spends, and a synthetic Merkle path roots the commitment.
func buildTestTx(t *testing.T) *TxPay {
	t.Helper()

	tx := &TxPay{}
	Init(tx)

	tx.TagType = params.TypeTxPay
	tx.TxType = params.TypeTxPay
	tx.ParamLevel = 100
	tx.ParamTime = 1700000000
	tx.Outvalmax = uint16(params.TxAmountExponentMask)
	require.NoError(t, bigint.Randomize(&tx.TxMerkleRoot))
	bigint.Mask(&tx.TxMerkleRoot, params.TxFieldBits)

	// the input billet's secrets
	txin := &tx.Inputs[0]
	txin.Secrets[0].MasterSecret.SetUint64(0x42)
	txin.Secrets[0].HaveMasterSecret = true
	require.NoError(t, ComputeOrVerifySecrets(&txin.Params, &txin.Secrets[0], false))
	txin.Params.Nsecrets = 1

	dest := ComputeDestination(&txin.Params, &txin.Secrets)

	// the billet being spent
	var amount bigint.Big
	amount.SetUint64(250_000)
	amountFP := amounts.Encode(&amount, false, 0, params.TxAmountExponentMask, amounts.NoRound)
	require.NotEqual(t, amounts.EncodeError, amountFP)

	var iv bigint.Big
	require.NoError(t, bigint.Randomize(&iv))
	bigint.Mask(&iv, params.TxCommitIVBits)

	txin.EnforceTrustSecrets = true
	txin.MCommitmentIV = iv
	txin.AmountFP = amountFP
	txin.MCommitnum = 7
	txin.Invalmax = uint16(params.TxAmountExponentMask)
	txin.MCommitment = zkhash.Commitment(iv, dest, txin.Params.Addrparams.Paynum,
		txin.MDomain, txin.Asset, amountFP)

	// synthetic path: fold the leaf up random siblings and adopt the root
	leaf := zkhash.MerkleLeaf(txin.MCommitment, txin.MCommitnum)
	path := &tx.Inpaths[0]
	for i := range path.MMerklePath {
		require.NoError(t, bigint.Randomize(&path.MMerklePath[i]))
		bigint.Mask(&path.MMerklePath[i], params.TxMerkleBits)
	}
	txin.MerkleRoot = zkhash.Merkle(leaf, params.TxMerkleBits,
		path.MMerklePath[:], params.TxMerkleBits)
	txin.Pathnum = 1
	tx.TxMerkleRoot = txin.MerkleRoot

	tx.Nin = 1
	tx.NinWithPath = 1

	// one output returning the full amount to the same destination
	txout := &tx.Outputs[0]
	txout.Addrparams.Dest = dest
	txout.Addrparams.DestChain = params.MainnetBlockchain
	txout.Addrparams.Paynum = 3
	txout.AssetMask = params.TxAssetWireMask
	txout.AmountMask = params.TxAmountMask
	txout.AmountFP = amountFP
	tx.Nout = 1

	SetDependents(tx)
	return tx
}

func TestSetDependents(t *testing.T) {
	tx := buildTestTx(t)

	require.Equal(t, uint16(1), tx.Nassets)
	require.Equal(t, uint64(0), tx.AssetList[0])
	// spare slots filled with an unused asset id
	require.Equal(t, params.TxAssetMask, tx.AssetList[1])

	// the output address derives from the destination, chain and paynum,
	// and the commitment IV from the Merkle root
	expectedAddr := zkhash.Address(tx.Outputs[0].Addrparams.Dest,
		tx.Outputs[0].Addrparams.DestChain, tx.Outputs[0].Addrparams.Paynum)
	require.Equal(t, expectedAddr, tx.Outputs[0].MAddress)

	require.Equal(t, tx.TxMerkleRoot, unmaskIV(tx))
}

func unmaskIV(tx *TxPay) bigint.Big {
	v := tx.TxMerkleRoot
	bigint.Mask(&v, params.TxCommitIVBits)
	if v == tx.MCommitmentIV {
		return tx.TxMerkleRoot
	}
	return bigint.Big{}
}

func TestPrecheckPasses(t *testing.T) {
	tx := buildTestTx(t)
	require.NoError(t, Precheck(tx))
}

func TestPrecheckConservation(t *testing.T) {
	tx := buildTestTx(t)

	// breaking the output amount breaks conservation
	tx.Outputs[0].AmountFP++
	SetDependents(tx)
	err := Precheck(tx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sum(input amounts)")
}

func TestPrecheckMerklePath(t *testing.T) {
	tx := buildTestTx(t)

	tx.Inpaths[0].MMerklePath[5][0] ^= 1
	err := Precheck(tx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Merkle path")
}

func TestPrecheckCommitment(t *testing.T) {
	tx := buildTestTx(t)

	tx.Inputs[0].Params.Destnum++
	err := Precheck(tx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "commitment")
}

func TestPrecheckOutputGates(t *testing.T) {
	tx := buildTestTx(t)

	// force the static-address gate: clear the middle destination bits
	tx.Outputs[0].Addrparams.Dest[0] &^= params.TxStaticAddressMask
	tx.Outputs[0].Addrparams.Dest[0] |= 1 // keep acceptance gate clear
	err := Precheck(tx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "static address")
}

func TestWireRoundTrip(t *testing.T) {
	tx := buildTestTx(t)

	// a plausible proof placeholder; the codec does not interpret it
	for i := range tx.ZkProof {
		require.NoError(t, bigint.Randomize(&tx.ZkProof[i]))
		bigint.Mask(&tx.ZkProof[i], 248)
	}
	tx.ZkKeyID = 3
	tx.DonationFP = 0x21

	buf := make([]byte, params.TxMaxSize)
	n, err := ToWire(tx, ErrCheckStrict, buf)
	require.NoError(t, err)
	require.Greater(t, n, params.CCMsgHeaderSize+params.TxPowSize)
	require.True(t, tx.HaveObjID)

	var back TxPay
	require.NoError(t, FromWire(&back, buf[:n]))

	require.Equal(t, params.TypeTxPay, back.TagType)
	require.Equal(t, tx.ParamLevel, back.ParamLevel)
	require.Equal(t, tx.ZkProof, back.ZkProof)
	require.Equal(t, tx.ZkKeyID, back.ZkKeyID)
	require.Equal(t, tx.DonationFP, back.DonationFP)
	require.Equal(t, tx.Nout, back.Nout)
	require.Equal(t, tx.Nin, back.Nin)
	require.Equal(t, tx.NinWithPath, back.NinWithPath)

	require.Equal(t, tx.Outputs[0].MAddress, back.Outputs[0].MAddress)
	require.Equal(t, tx.Outputs[0].MAssetEnc, back.Outputs[0].MAssetEnc)
	require.Equal(t, tx.Outputs[0].MAmountEnc, back.Outputs[0].MAmountEnc)
	require.Equal(t, tx.Outputs[0].MCommitment, back.Outputs[0].MCommitment)

	require.Equal(t, tx.Inputs[0].SSerialnum, back.Inputs[0].SSerialnum)
	hk := tx.Inputs[0].SHashkey
	bigint.Mask(&hk, params.TxHashkeyWireBits)
	require.Equal(t, hk, back.Inputs[0].SHashkey)

	// the fast path extracts the parameter level
	level, ok := ParamLevelFromWire(buf[:n])
	require.True(t, ok)
	require.Equal(t, tx.ParamLevel, level)
}

func TestWireMultiCounts(t *testing.T) {
	// the combined count byte round-trips every legal shape
	for nout := uint16(1); nout <= params.TxMaxOut; nout++ {
		for ninw := uint16(1); ninw <= params.TxMaxInPath; ninw++ {
			nadj := byte(nout-1)<<4 | byte(ninw-1)
			require.Equal(t, nout, uint16(nadj>>4)+1)
			require.Equal(t, ninw, uint16(nadj&15)+1)
		}
	}
}

func TestWireStrictChecks(t *testing.T) {
	tx := buildTestTx(t)
	buf := make([]byte, params.TxMaxSize)

	tx.Inputs[0].Delaytime = 1
	_, err := ToWire(tx, ErrCheckStrict, buf)
	require.ErrorIs(t, err, ErrInvalidBinaryTx)

	// relaxed mode admits what the JSON interface can restore
	_, err = ToWire(tx, ErrCheckRelaxed, buf)
	require.NoError(t, err)
}

func TestWireBufferOverflow(t *testing.T) {
	tx := buildTestTx(t)

	small := make([]byte, 64)
	_, err := ToWire(tx, ErrCheckNone, small)
	need, ok := IsBufferOverflow(err)
	require.True(t, ok)
	require.Greater(t, need, len(small))
}

func TestMintFromWire(t *testing.T) {
	tx := &TxPay{}
	Init(tx)
	tx.TagType = params.TypeMint
	tx.TxType = params.TypeMint
	tx.ParamLevel = 5
	tx.Nout = 1
	tx.Outputs[0].Addrparams.DestChain = params.MainnetBlockchain

	mintAmount, err := bigint.ParseInt(params.TxCCMintAmount, 256, nil)
	require.NoError(t, err)
	tx.Outputs[0].AmountFP = amounts.Encode(&mintAmount, false,
		params.TxCCMintExponent, params.TxCCMintExponent, ^uint(0))
	require.NoError(t, SetMintInputs(tx))
	SetDependents(tx)

	buf := make([]byte, params.TxMaxSize)
	n, err := ToWire(tx, ErrCheckStrict, buf)
	require.NoError(t, err)

	var back TxPay
	require.NoError(t, FromWire(&back, buf[:n]))
	require.Equal(t, params.TypeMint, back.TagType)
	require.Equal(t, uint16(params.TxMintZkkeyID), back.ZkKeyID)
	require.Equal(t, uint16(1), back.Nin)
	require.True(t, back.Inputs[0].NoSerialnum)
	require.Equal(t, tx.Inputs[0].MCommitment, back.Inputs[0].MCommitment)

	// the reconstructed mint input carries the full mint amount
	mintDecoded := amounts.Decode(back.Inputs[0].AmountFP, false)
	require.Equal(t, mintAmount, mintDecoded)
}
