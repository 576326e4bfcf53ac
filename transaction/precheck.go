// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transaction

import (
	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/zkhash"
)

// Precheck re-runs every circuit rule in plain code so the caller gets a
// specific failure before paying for proof generation. It never mutates
// the transaction.
func Precheck(tx *TxPay) error {
	for i := uint16(0); i < tx.Nout; i++ {
		if err := precheckOutput(tx, int(i), &tx.Outputs[i]); err != nil {
			return err
		}
	}

	for i := uint16(0); i < tx.Nin; i++ {
		txin := &tx.Inputs[i]
		if err := precheckInput(tx, int(i), txin); err != nil {
			return err
		}
		if txin.Pathnum != 0 {
			if err := precheckInputPath(int(i), txin, &tx.Inpaths[txin.Pathnum-1]); err != nil {
				return err
			}
		}
	}

	return precheckConservation(tx)
}

func precheckOutput(tx *TxPay, index int, txout *TxOut) error {
	// native-asset output exponents stay inside the window
	if txout.Asset == 0 && txout.AmountFP != 0 &&
		amounts.DecodeExponent(txout.AmountFP) < uint(tx.Outvalmin) {
		return precheckError("amount < minimum for output %d", index)
	}
	if txout.Asset == 0 &&
		amounts.DecodeExponent(txout.AmountFP) > uint(tx.Outvalmax) {
		return precheckError("amount > maximum for output %d", index)
	}

	// a destination with the low mask bits clear requires acceptance
	if txout.Addrparams.Dest[0]&params.TxAcceptReqDestMask == 0 && !txout.AcceptanceRequired {
		return precheckError("acceptance-required not set but required by destination for output %d", index)
	}

	// a destination with the static mask bits clear pins paynum to 0
	if txout.Addrparams.Dest[0]&params.TxStaticAddressMask == 0 && txout.Addrparams.Paynum != 0 {
		return precheckError("requires static address but paynum > 0 for output %d", index)
	}

	return nil
}

func precheckInput(tx *TxPay, index int, txin *TxIn) error {
	if txin.Asset == 0 &&
		amounts.DecodeExponent(txin.AmountFP) > uint(txin.Invalmax) {
		return precheckError("amount > maximum for input %d", index)
	}

	if txin.EnforceMasterSecret && !txin.MasterSecretValid {
		return precheckError("enforce-master-secret set but master-secret-valid not set for input %d", index)
	}
	if txin.MasterSecretValid && !txin.Params.AllowMasterSecret {
		return precheckError("master-secret-valid set but allow-master-secret not set for input %d", index)
	}
	if txin.EnforceFreeze && !txin.Params.AllowFreeze {
		return precheckError("enforce-freeze set but allow-freeze not set for input %d", index)
	}
	if txin.EnforceUnfreeze && !txin.MasterSecretValid && !txin.TrustSecretsValid {
		return precheckError("enforce-unfreeze set but master-secret and trust secrets are both invalid for input %d", index)
	}
	if txin.EnforceUnfreeze && txin.TrustSecretsValid && !txin.Params.AllowTrustUnfreeze {
		return precheckError("enforce-unfreeze and trust-secrets-valid set but allow-trust-unfreeze not set for input %d", index)
	}
	if txin.EnforceSpendSecrets && !txin.MasterSecretValid && !txin.SpendSecretsValid {
		return precheckError("enforce-spend-secrets set but master-secret and spend secrets are both invalid, or delaytime is invalid for input %d", index)
	}
	if txin.EnforceTrustSecrets && !txin.MasterSecretValid && !txin.SpendSecretsValid && !txin.TrustSecretsValid {
		return precheckError("enforce-trust-secrets set but master-secret, spend secrets and trust secrets are all invalid, or delaytime is invalid for input %d", index)
	}

	if txin.Params.RequirePublicHashkey && txin.SpendSecretsValid {
		if !txin.Secrets[1].HaveSpendSecret {
			return precheckError("require-public-hashkey and spend secrets valid but second spend secret is invalid for input %d", index)
		}
		if txin.SHashkey != txin.Secrets[1].SpendSecret {
			return precheckError("require-public-hashkey and spend secrets valid but public hashkey != second spend secret for input %d", index)
		}
	}

	if ((txin.SpendSecretsValid && txin.Params.EnforceSpendSpecWithSpendSecrets) ||
		(txin.TrustSecretsValid && txin.Params.EnforceSpendSpecWithTrustSecrets)) &&
		txin.SSpendspecHashed != txin.Params.RequiredSpendSpecHash {
		return precheckError("hashed-spendspec != required-spendspec-hash for input %d", index)
	}

	spendCount := 0
	trustCount := 0
	for j := 0; j < params.TxMaxSecrets; j++ {
		if txin.Params.UseSpendSecret[j] && txin.Secrets[j].HaveSpendSecret {
			spendCount++
		}
		if txin.Params.UseTrustSecret[j] && txin.Secrets[j].HaveTrustSecret {
			trustCount++
		}
	}

	if txin.SpendSecretsValid && spendCount < int(txin.Params.RequiredSpendSecrets) {
		return precheckError("insufficient spend-secrets for input %d", index)
	}
	if txin.TrustSecretsValid && trustCount < int(txin.Params.RequiredTrustSecrets) {
		return precheckError("insufficient trust-secrets for input %d", index)
	}

	if txin.SpendSecretsValid && tx.ParamTime < txin.Params.SpendLocktime {
		return precheckError("parameter-time < spend-locktime for input %d", index)
	}
	if txin.TrustSecretsValid && tx.ParamTime < txin.Params.TrustLocktime {
		return precheckError("parameter-time < trust-locktime for input %d", index)
	}
	if txin.SpendSecretsValid && txin.Delaytime < uint16(txin.Params.SpendDelaytime) {
		return precheckError("delaytime < spend-delaytime for input %d", index)
	}
	if txin.TrustSecretsValid && txin.Delaytime < uint16(txin.Params.TrustDelaytime) {
		return precheckError("delaytime < trust-delaytime for input %d", index)
	}

	if txin.MasterSecretValid && !txin.Secrets[0].HaveMasterSecret {
		return precheckError("master-secret-valid set but master-secret invalid for input %d", index)
	}

	// the secret chain must reproduce the billet's commitment
	destination := ComputeDestination(&txin.Params, &txin.Secrets)
	commitment := zkhash.Commitment(txin.MCommitmentIV, destination,
		txin.Params.Addrparams.Paynum, txin.MDomain, txin.Asset, txin.AmountFP)

	if commitment != txin.MCommitment {
		return precheckError("inputs do not hash to the commitment for input %d", index)
	}

	return nil
}

func precheckInputPath(index int, txin *TxIn, txpath *TxInPath) error {
	hash := zkhash.MerkleLeaf(txin.MCommitment, txin.MCommitnum)

	for i := 0; i < params.TxMerkleDepth; i++ {
		hash = zkhash.MerkleNode(hash, txpath.MMerklePath[i], i < params.TxMerkleDepth-1)
	}

	if hash != txin.MerkleRoot {
		return precheckError("commitment Merkle path does not hash to the Merkle root for input %d", index)
	}

	return nil
}

// precheckConservation checks the per-asset value balance: input amounts
// cover outputs (scaled by repeat counts) plus, for the native asset,
// the donation and any amount carried across combined transactions.
func precheckConservation(tx *TxPay) error {
	for j := uint16(0); j < tx.Nassets; j++ {
		asset := tx.AssetList[j]

		var valsum bigint.Big // modular signed sum; zero when balanced

		if asset == 0 {
			donation := amounts.Decode(tx.DonationFP, true)
			valsum.Add(&valsum, &donation)
			valsum.Add(&valsum, &tx.AmountCarryOut)
			valsum.Sub(&valsum, &tx.AmountCarryIn)
		}

		for i := uint16(0); i < tx.Nout; i++ {
			if tx.Outputs[i].Asset == asset {
				amount := amounts.Decode(tx.Outputs[i].AmountFP, false)
				mult := bigint.NewBig(uint64(tx.Outputs[i].RepeatCount) + 1)
				amount.Mul(&amount, mult)
				valsum.Add(&valsum, &amount)
			}
		}

		for i := uint16(0); i < tx.Nin; i++ {
			if tx.Inputs[i].Asset == asset {
				amount := amounts.Decode(tx.Inputs[i].AmountFP, false)
				valsum.Sub(&valsum, &amount)
			}
		}

		if !valsum.IsZero() {
			return precheckError("sum(input amounts) != sum(output amounts) for asset id %d", asset)
		}
	}

	return nil
}
