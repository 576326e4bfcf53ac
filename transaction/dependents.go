// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transaction

import (
	"golang.org/x/crypto/blake2s"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/zkhash"
)

// SetCommitIV derives the per-transaction commitment IV from the Merkle
// root the transaction was built against. The root must be drawn from
// the set of recently valid roots, which keeps commitment values out of
// the payer's control.
func SetCommitIV(tx *TxPay) {
	if tx.OverrideCommitmentIV {
		return
	}

	tx.MCommitmentIV = tx.TxMerkleRoot
	bigint.Mask(&tx.MCommitmentIV, params.TxCommitIVBits)
}

// SetRefhashFromAppendData fills the refhash from appended data when the
// caller did not set one.
func SetRefhashFromAppendData(tx *TxPay) {
	if !tx.Refhash.IsZero() || len(tx.AppendData) == 0 {
		return
	}
	sum := blake2s.Sum256(tx.AppendData)
	tx.Refhash.SetBytes(sum[:])
}

func assetInList(tx *TxPay, asset uint64) bool {
	for i := uint16(0); i < tx.Nassets; i++ {
		if tx.AssetList[i] == asset {
			return true
		}
	}
	return false
}

func updateAssetList(tx *TxPay, asset uint64) {
	if assetInList(tx, asset) {
		return
	}
	if int(tx.Nassets) >= len(tx.AssetList) {
		return
	}
	tx.AssetList[tx.Nassets] = asset
	tx.Nassets++
}

// setUnusedAssetList fills the spare list entries with an asset id the
// transaction does not use, so the proof key's asset count can exceed
// the transaction's.
func setUnusedAssetList(tx *TxPay) {
	for asset := params.TxAssetMask; ; asset-- {
		if !assetInList(tx, asset) {
			for i := tx.Nassets; i < uint16(len(tx.AssetList)); i++ {
				tx.AssetList[i] = asset
			}
			return
		}
	}
}

func setOutputDependents(txout *TxOut) {
	txout.MAddress = zkhash.Address(txout.Addrparams.Dest,
		txout.Addrparams.DestChain, txout.Addrparams.Paynum)
}

func setOutputIVDependents(tx *TxPay, txout *TxOut) {
	txout.AssetPad, txout.AmountPad = zkhash.AmountPad(tx.MCommitmentIV,
		txout.Addrparams.Dest, txout.Addrparams.Paynum)

	if !txout.NoAsset {
		txout.MAssetEnc = txout.Asset ^ (txout.AssetMask & txout.AssetPad)
	}
	if !txout.NoAmount {
		txout.MAmountEnc = txout.AmountFP ^ (txout.AmountMask & txout.AmountPad)
	}

	txout.MCommitment = zkhash.Commitment(tx.MCommitmentIV,
		txout.Addrparams.Dest, txout.Addrparams.Paynum,
		txout.MDomain, txout.Asset, txout.AmountFP)
}

func setInputDependents(tx *TxPay, txin *TxIn) {
	// autocompute master_secret_valid
	if !txin.HaveMasterSecretValid && txin.Params.AllowMasterSecret && txin.Secrets[0].HaveMasterSecret {
		txin.MasterSecretValid = true
	}

	spendCount := 0
	trustCount := 0
	for i := 0; i < params.TxMaxSecrets; i++ {
		if txin.Params.UseSpendSecret[i] && txin.Secrets[i].HaveSpendSecret {
			spendCount++
		}
		if txin.Params.UseTrustSecret[i] && txin.Secrets[i].HaveTrustSecret {
			trustCount++
		}
	}

	// autocompute trust_secrets_valid
	if !txin.HaveTrustSecretsValid && (txin.EnforceTrustSecrets || txin.EnforceUnfreeze) {
		txin.TrustSecretsValid = trustCount >= int(txin.Params.RequiredTrustSecrets) &&
			tx.ParamTime >= txin.Params.TrustLocktime &&
			txin.Delaytime >= uint16(txin.Params.TrustDelaytime)

		if txin.TrustSecretsValid && txin.EnforceUnfreeze {
			txin.TrustSecretsValid = txin.Params.AllowTrustUnfreeze
		}
		if txin.TrustSecretsValid && txin.Params.EnforceSpendSpecWithTrustSecrets {
			txin.TrustSecretsValid = txin.SSpendspecHashed == txin.Params.RequiredSpendSpecHash
		}
	}

	// autocompute spend_secrets_valid; leave it unset when trust secrets
	// already suffice, since setting it could invalidate an unfreeze
	if !txin.HaveSpendSecretsValid && (txin.EnforceSpendSecrets || (txin.EnforceTrustSecrets && !txin.TrustSecretsValid)) {
		txin.SpendSecretsValid = spendCount >= int(txin.Params.RequiredSpendSecrets) &&
			tx.ParamTime >= txin.Params.SpendLocktime &&
			txin.Delaytime >= uint16(txin.Params.SpendDelaytime)

		if txin.SpendSecretsValid && txin.Params.RequirePublicHashkey {
			txin.SpendSecretsValid = txin.SHashkey == txin.Secrets[1].SpendSecret
		}
		if txin.SpendSecretsValid && txin.Params.EnforceSpendSpecWithSpendSecrets {
			txin.SpendSecretsValid = txin.SSpendspecHashed == txin.Params.RequiredSpendSpecHash
		}
	}

	if !txin.HaveTrustSecretsValid && txin.SpendSecretsValid && txin.TrustSecretsValid {
		// secret_valid[i] now follows the spend secrets, so the trust
		// count must be retaken over them
		trustCount = 0
		for i := 0; i < params.TxMaxSecrets; i++ {
			if txin.Params.UseTrustSecret[i] && txin.Secrets[i].HaveSpendSecret {
				trustCount++
			}
		}
		txin.TrustSecretsValid = trustCount >= int(txin.Params.RequiredTrustSecrets) &&
			tx.ParamTime >= txin.Params.TrustLocktime &&
			txin.Delaytime >= uint16(txin.Params.TrustDelaytime)
	}

	txin.SSerialnum = zkhash.Serialnum(txin.Secrets[0].MonitorSecret,
		txin.MCommitment, txin.MCommitnum)
}

// SetDependents recomputes every derived field of the transaction, in
// the fixed order the circuit expects.
func SetDependents(tx *TxPay) {
	SetRefhashFromAppendData(tx)

	for i := uint16(0); i < tx.Nin; i++ {
		if tx.Nsecrets < tx.Inputs[i].Params.Nsecrets {
			tx.Nsecrets = tx.Inputs[i].Params.Nsecrets
		}
		if tx.Nraddrs < tx.Inputs[i].Params.Nraddrs {
			tx.Nraddrs = tx.Inputs[i].Params.Nraddrs
		}
	}

	// asset 0 is always first in the list
	tx.Nassets = 1
	tx.AssetList[0] = 0
	for i := uint16(0); i < tx.Nout; i++ {
		updateAssetList(tx, tx.Outputs[i].Asset)
	}
	for i := uint16(0); i < tx.Nin; i++ {
		updateAssetList(tx, tx.Inputs[i].Asset)
	}
	setUnusedAssetList(tx)

	for i := uint16(0); i < tx.Nout; i++ {
		setOutputDependents(&tx.Outputs[i])
	}
	for i := uint16(0); i < tx.Nin; i++ {
		setInputDependents(tx, &tx.Inputs[i])
	}

	SetCommitIV(tx)

	for i := uint16(0); i < tx.Nout; i++ {
		setOutputIVDependents(tx, &tx.Outputs[i])
	}
}

// SetMintInputs synthesizes the fixed input of a mint transaction.
func SetMintInputs(tx *TxPay) error {
	if tx.TagType != params.TypeMint {
		return ErrInvalidTxType
	}
	if tx.Nin != 0 {
		return ErrInvalidBinaryTx
	}

	tx.Nin = 1
	txin := &tx.Inputs[0]

	amount, err := bigint.ParseInt(params.TxCCMintAmount, 256, nil)
	if err != nil {
		return err
	}

	txin.Invalmax = params.TxCCMintExponent
	txin.AmountFP = amounts.Encode(&amount, false,
		params.TxCCMintExponent, params.TxCCMintExponent, ^uint(0))

	txin.MerkleRoot = tx.TxMerkleRoot
	txin.EnforceTrustSecrets = true

	if err := ComputeOrVerifySecrets(&txin.Params, &txin.Secrets[0], true); err != nil {
		return err
	}

	// the mint billet is publicly spendable: its commitment derives
	// from the empty secret chain, so every node reconstructs it
	dest := ComputeDestination(&txin.Params, &txin.Secrets)
	txin.MCommitment = zkhash.Commitment(txin.MCommitmentIV, dest,
		txin.Params.Addrparams.Paynum, txin.MDomain, txin.Asset, txin.AmountFP)

	txin.NoSerialnum = true

	return nil
}
