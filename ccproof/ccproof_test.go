// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ccproof

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/snark"
	"github.com/luxfi/cclib/transaction"
	"github.com/luxfi/cclib/zkhash"
	"github.com/luxfi/cclib/zkkeys"
)

// buildPaymentTx mirrors the transaction package's self-consistent test
// payment.
func buildPaymentTx(t *testing.T) *transaction.TxPay {
	t.Helper()

	tx := &transaction.TxPay{}
	transaction.Init(tx)

	tx.TagType = params.TypeTxPay
	tx.TxType = params.TypeTxPay
	tx.ParamLevel = 100
	tx.ParamTime = 1700000000
	tx.Outvalmax = uint16(params.TxAmountExponentMask)
	tx.RandomSeed = 12345

	txin := &tx.Inputs[0]
	txin.Secrets[0].MasterSecret.SetUint64(0x42)
	txin.Secrets[0].HaveMasterSecret = true
	require.NoError(t, transaction.ComputeOrVerifySecrets(&txin.Params, &txin.Secrets[0], false))
	txin.Params.Nsecrets = 1

	dest := transaction.ComputeDestination(&txin.Params, &txin.Secrets)

	var amount bigint.Big
	amount.SetUint64(250_000)
	amountFP := amounts.Encode(&amount, false, 0, params.TxAmountExponentMask, amounts.NoRound)

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

	txout := &tx.Outputs[0]
	txout.Addrparams.Dest = dest
	txout.Addrparams.DestChain = params.MainnetBlockchain
	txout.Addrparams.Paynum = 3
	txout.AssetMask = params.TxAssetWireMask
	txout.AmountMask = params.TxAmountMask
	txout.AmountFP = amountFP
	tx.Nout = 1

	transaction.SetDependents(tx)
	require.NoError(t, transaction.Precheck(tx))
	return tx
}

// buildCircuit runs the blessing schedule against an in-memory store so
// the key lookup resolves without key files.
func buildCircuit(t *testing.T, tx *transaction.TxPay, verify bool) (*circuit, *Prover) {
	t.Helper()

	store := zkkeys.NewStore(t.TempDir(), nil)
	p := NewProver(store)

	// seed a stand-in key file so the shape lookup succeeds
	sys := snark.NewSystem()
	sys.EndInput()
	pk, vk, err := snark.Setup(sys)
	require.NoError(t, err)
	for i := 0; i < store.NKeys(); i++ {
		require.NoError(t, store.SaveKeyPair(i, pk, vk))
	}

	c, keyindex, err := p.compute(tx, -1, verify)
	require.NoError(t, err)
	require.GreaterOrEqual(t, keyindex, 0)
	return c, p
}

func TestBlessScheduleStable(t *testing.T) {
	tx := buildPaymentTx(t)

	c1, _ := buildCircuit(t, tx, false)
	c2, _ := buildCircuit(t, tx, false)

	require.Equal(t, c1.sys.NumVars(), c2.sys.NumVars())
	require.Equal(t, c1.sys.NumPublic(), c2.sys.NumPublic())
	require.Equal(t, c1.sys.NumConstraints(), c2.sys.NumConstraints())
	require.Equal(t, c1.sys.PublicValues(), c2.sys.PublicValues())
}

func TestVerifierPublicsMatchProver(t *testing.T) {
	tx := buildPaymentTx(t)

	prove, _ := buildCircuit(t, tx, false)
	verify, _ := buildCircuit(t, tx, true)

	require.Equal(t, prove.sys.NumPublic(), verify.sys.NumPublic())
	require.Equal(t, prove.sys.PublicValues(), verify.sys.PublicValues())
}

func TestCircuitSatisfied(t *testing.T) {
	tx := buildPaymentTx(t)

	c, _ := buildCircuit(t, tx, false)
	require.True(t, c.sys.IsSatisfied())
}

func TestMakeBadBreaksSatisfaction(t *testing.T) {
	tx := buildPaymentTx(t)

	// walk a sample of perturbation targets; each one must break a
	// constraint or defer to a perturbable neighbor
	broken := 0
	for sel := uint32(1); sel <= 25; sel += 3 {
		txBad := *tx
		txBad.TestMakeBad = sel

		store := zkkeys.NewStore(t.TempDir(), nil)
		p := NewProver(store)
		sys := snark.NewSystem()
		sys.EndInput()
		pk, vk, err := snark.Setup(sys)
		require.NoError(t, err)
		for i := 0; i < store.NKeys(); i++ {
			require.NoError(t, store.SaveKeyPair(i, pk, vk))
		}

		c, _, err := p.compute(&txBad, -1, false)
		if err != nil {
			continue // perturbation landed on an unusable variable
		}
		if !c.sys.IsSatisfied() {
			broken++
		}
	}
	require.Greater(t, broken, 0)
}

func TestBadselVarsFormula(t *testing.T) {
	tx := buildPaymentTx(t)

	zk := &txPayZK{
		nout:        2,
		nin:         1,
		ninWithPath: 1,
		nassets:     2,
		nsecrets:    params.TxMaxSecrets,
		nraddrs:     params.TxMaxRestrictedAddresses,
		nrouts:      2,
	}
	want := 4 + 1 + (18+2)*int(tx.Nout) +
		(42+2+3*params.TxMaxSecrets+2*params.TxMaxSecrets+params.TxMaxSecretSlots+2*params.TxMaxRestrictedAddresses)*int(tx.Nin) +
		params.TxMerkleDepth*int(tx.NinWithPath)
	require.Equal(t, want, badselVars(zk, tx))
}

func TestProveVerifyEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full proof generation in short mode")
	}

	tx := buildPaymentTx(t)

	dir := t.TempDir()
	store := zkkeys.NewStore(dir, nil)
	p := NewProver(store)

	// generate a real keypair for the shape this transaction uses
	c, _, err := func() (*circuit, int, error) {
		// shape probe against a stand-in store
		probeStore := zkkeys.NewStore(t.TempDir(), nil)
		probe := NewProver(probeStore)
		sys := snark.NewSystem()
		sys.EndInput()
		pk, vk, err := snark.Setup(sys)
		require.NoError(t, err)
		for i := 0; i < probeStore.NKeys(); i++ {
			require.NoError(t, probeStore.SaveKeyPair(i, pk, vk))
		}
		return probe.compute(tx, -1, false)
	}()
	require.NoError(t, err)

	pk, vk, err := snark.Setup(c.sys)
	require.NoError(t, err)
	require.NoError(t, store.SaveKeyPair(int(tx.ZkKeyID), pk, vk))

	require.NoError(t, p.GenProof(tx))
	require.NoError(t, p.VerifyProof(tx))

	// a tampered public input fails verification
	bad := *tx
	bad.DonationFP ^= 1
	require.Error(t, p.VerifyProof(&bad))
}
