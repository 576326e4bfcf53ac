// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ccproof

import (
	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/snark"
	"github.com/luxfi/cclib/transaction"
	"github.com/luxfi/cclib/zkhash"
)

// breakoutBits decomposes every multi-bit variable the constraints need
// in bit form, and enforces booleanity on the variables blessed as
// single bits.
func (c *circuit) breakoutBits() {
	zk := c.zk

	zk.publics.mCommitmentIVBits, _, _ = c.extractBits(zk.publics.mCommitmentIV, params.TxCommitIVBits, false, false)
	zk.publics.mEncryptIVBits = zk.publics.mCommitmentIVBits[:params.TxEncIVBits]

	for i := uint16(0); i < zk.nout; i++ {
		zkoutpub := &zk.outputPublic[i]
		zkoutpriv := &zk.outputPrivate[i]

		zkoutpub.destChainBits, _, _ = c.extractBits(zkoutpub.destChain, params.TxChainBits, false, false)
		zkoutpub.mDomainBits, _, _ = c.extractBits(zkoutpub.mDomain, params.TxDomainBits, false, false)
		zkoutpub.assetMaskBits, _, _ = c.extractBits(zkoutpub.assetMask, params.TxAssetBits, false, false)
		zkoutpub.mAssetEncBits, _, _ = c.extractBits(zkoutpub.mAssetEnc, params.TxAssetBits, false, false)
		zkoutpub.amountMaskBits, _, _ = c.extractBits(zkoutpub.amountMask, params.TxAmountBits, false, false)
		zkoutpub.mAmountEncBits, _, _ = c.extractBits(zkoutpub.mAmountEnc, params.TxAmountBits, false, false)

		for j := uint16(0); j < zk.nassets; j++ {
			c.sys.AddBooleanity(zkoutpriv.isAsset[j].e)
		}

		zkoutpriv.destBits, _, _ = c.extractBits(zkoutpriv.dest, params.TxFieldBits, false, false)
		zkoutpriv.paynumBits, _, _ = c.extractBits(zkoutpriv.paynum, params.TxPaynumBits, false, false)
		zkoutpriv.assetBits, _, _ = c.extractBits(zkoutpriv.asset, params.TxAssetBits, false, false)
		zkoutpriv.assetXorBits, _, _ = c.extractBits(zkoutpriv.assetXor, params.TxAssetBits, false, false)
		zkoutpriv.amountFPBits, _, _ = c.extractBits(zkoutpriv.amountFP, params.TxAmountBits, false, false)
		zkoutpriv.amountXorBits, _, _ = c.extractBits(zkoutpriv.amountXor, params.TxAmountBits, false, false)
	}

	for i := uint16(0); i < zk.nin; i++ {
		zkinpub := &zk.inputPublic[i]
		zkinpriv := &zk.inputPrivate[i]

		zkinpub.mDomainBits, _, _ = c.extractBits(zkinpub.mDomain, params.TxDomainBits, false, false)

		for j := uint16(0); j < zk.nassets; j++ {
			c.sys.AddBooleanity(zkinpriv.isAsset[j].e)
		}

		c.sys.AddBooleanity(zkinpriv.enforceSpendspecWithSpendSecretsBit.e)
		c.sys.AddBooleanity(zkinpriv.enforceSpendspecWithTrustSecretsBit.e)
		c.sys.AddBooleanity(zkinpriv.allowMasterSecretBit.e)
		c.sys.AddBooleanity(zkinpriv.allowFreezeBit.e)
		c.sys.AddBooleanity(zkinpriv.allowTrustUnfreezeBit.e)
		c.sys.AddBooleanity(zkinpriv.requirePublicHashkeyBit.e)
		c.sys.AddBooleanity(zkinpriv.restrictAddressesBit.e)

		c.sys.AddBooleanity(zkinpriv.masterSecretValid.e)
		c.sys.AddBooleanity(zkinpriv.spendSecretsValid.e)
		c.sys.AddBooleanity(zkinpriv.trustSecretsValid.e)

		zkinpriv.assetBits, _, _ = c.extractBits(zkinpriv.asset, params.TxAssetBits, false, false)
		zkinpriv.amountFPBits, _, _ = c.extractBits(zkinpriv.amountFP, params.TxAmountBits, false, false)
		zkinpriv.mCommitmentIVBits, _, _ = c.extractBits(zkinpriv.mCommitmentIV, params.TxCommitIVBits, false, false)

		zkinpriv.mCommitmentBits, _, _ = c.extractBits(zkinpriv.mCommitment, params.TxFieldBits, false, false)
		zkinpriv.mCommitnumBits, _, _ = c.extractBits(zkinpriv.mCommitnum, params.TxCommitnumBits, false, false)

		zkinpriv.masterSecretBits, _, _ = c.extractBits(zkinpriv.masterSecret, params.TxInputBits, false, false)
		zkinpriv.spendSecretNumberBits, _, _ = c.extractBits(zkinpriv.spendSecretNumber, params.TxSpendSecretNumBits, false, false)
		zkinpriv.requiredSpendspecHashBits, _, _ = c.extractBits(zkinpriv.requiredSpendspecHash, params.TxInputBits, false, false)
		zkinpriv.spendLocktimeBits, _, _ = c.extractBits(zkinpriv.spendLocktime, params.TxTimeBits, false, false)
		zkinpriv.trustLocktimeBits, _, _ = c.extractBits(zkinpriv.trustLocktime, params.TxTimeBits, false, false)
		zkinpriv.spendDelaytimeBits, _, _ = c.extractBits(zkinpriv.spendDelaytime, params.TxDelaytimeBits, false, false)
		zkinpriv.trustDelaytimeBits, _, _ = c.extractBits(zkinpriv.trustDelaytime, params.TxDelaytimeBits, false, false)

		zkinpriv.requiredSpendSecretsBits, _, _ = c.extractBits(zkinpriv.requiredSpendSecrets, params.TxMaxSecretsBits, false, false)
		zkinpriv.requiredTrustSecretsBits, _, _ = c.extractBits(zkinpriv.requiredTrustSecrets, params.TxMaxSecretsBits, false, false)
		zkinpriv.destnumBits, _, _ = c.extractBits(zkinpriv.destnum, params.TxDestnumBits, false, false)
		zkinpriv.paynumBits, _, _ = c.extractBits(zkinpriv.paynum, params.TxPaynumBits, false, false)

		for j := uint16(0); j < zkinpriv.nsecrets; j++ {
			c.sys.AddBooleanity(zkinpriv.secretValid[j].e)

			zkinpriv.spendSecretBits[j], _, _ = c.extractBits(zkinpriv.spendSecret[j], params.TxInputBits, false, false)
			zkinpriv.trustSecretBits[j], _, _ = c.extractBits(zkinpriv.trustSecret[j], params.TxInputBits, false, false)
		}

		for j := 0; j < params.TxMaxSecrets; j++ {
			c.sys.AddBooleanity(zkinpriv.useSpendSecretBits[j].e)
			c.sys.AddBooleanity(zkinpriv.useTrustSecretBits[j].e)
		}

		for j := 0; j < params.TxMaxSecretSlots; j++ {
			lo, hi, loVal := c.extractBits(zkinpriv.monitorSecret[j], params.TxInputBits/2, true, true)
			zkinpriv.monitorSecretLoBits[j] = lo
			zkinpriv.monitorSecretHi[j] = hi
			zkinpriv.monitorSecretLo[j] = loVal
			zkinpriv.monitorSecretHiBits[j], _, _ = c.extractBits(hi, params.TxInputBits/2, false, false)
		}

		for k := uint16(0); k < zk.nrouts; k++ {
			for j := uint16(0); j < zk.nraddrs; j++ {
				c.sys.AddBooleanity(zkinpriv.outputAddressMatches[k][j].e)
			}
		}
	}
}

// checkGreaterEqual enforces a >= b for nbits-wide values: the carry
// bits of a - b must vanish (or the orZero selector must).
func (c *circuit) checkGreaterEqual(a, b snark.Expr, nbits uint, orZero *snark.Expr) {
	diff := a.Sub(b)
	_, rem, _ := c.extractBits(fieldVar(diff), nbits, true, false)

	remE := rem.e
	if orZero != nil {
		remE = remE.Mul(*orZero)
	}
	c.sys.ConstrainZero(remE)
}

// checkAnd enforces val = a & b bitwise: AND = a*b.
func (c *circuit) checkAnd(val, a, b []snark.Expr) {
	for i := range val {
		c.sys.ConstrainZero(a[i].Mul(b[i]).Sub(val[i]))
	}
}

// checkXor enforces val = a ^ b bitwise: XOR = a + b - 2ab.
func (c *circuit) checkXor(val, a, b []snark.Expr) {
	for i := range val {
		ab2 := a[i].Mul(b[i]).ScaleUint(2)
		c.sys.ConstrainZero(a[i].Add(b[i]).Sub(ab2).Sub(val[i]))
	}
}

// computeIntegerAmount rebuilds the integer amount from the mantissa and
// exponent bits, one conditional multiplication per exponent bit.
func (c *circuit) computeIntegerAmount(amountFPBits []snark.Expr) snark.Expr {
	one := c.sys.ConstantUint(1)

	// zero iff every exponent bit is zero
	amountInt := one
	for i := 0; i < params.TxAmountExponentBits; i++ {
		amountInt = amountInt.Mul(one.Sub(amountFPBits[i]))
	}
	amountInt = one.Sub(amountInt)

	for i := 0; i < params.TxAmountBits-params.TxAmountExponentBits; i++ {
		amountInt = amountInt.Add(amountFPBits[i+params.TxAmountExponentBits].ScaleUint(uint64(1) << i))
	}

	for i := 0; i < params.TxAmountExponentBits; i++ {
		base := amounts.Factor(uint(1) << i)
		f := bigint.ToField(&base)
		factor := amountFPBits[i].Scale(f).Add(one.Sub(amountFPBits[i]))
		amountInt = amountInt.Mul(factor)
	}

	return amountInt
}

func (c *circuit) computeOutput(zkoutpub *txOutZKPub, zkoutpriv *txOutZKPriv) {
	zk := c.zk
	one := c.sys.ConstantUint(1)

	zkoutpriv.amountInt = c.computeIntegerAmount(zkoutpriv.amountFPBits)

	// exactly one is_asset selector fires
	check := one
	for i := uint16(0); i < zk.nassets; i++ {
		check = check.Sub(zkoutpriv.isAsset[i].e)
	}
	c.sys.ConstrainZero(check)

	// the selected asset matches the shared asset list
	for i := uint16(0); i < zk.nassets; i++ {
		check = zkoutpriv.asset.e
		if i > 0 {
			check = check.Sub(zk.txAsset[i-1].e)
		}
		c.sys.ConstrainZero(check.Mul(zkoutpriv.isAsset[i].e))
	}

	// native-asset outputs respect the exponent window
	enforceMinmax := zkoutpub.enforce.e
	for i := 0; i < params.TxAssetBits; i++ {
		enforceMinmax = enforceMinmax.Mul(one.Sub(zkoutpriv.assetBits[i]))
	}

	exponent := c.sys.ConstantUint(0)
	for i := 0; i < params.TxAmountExponentBits; i++ {
		exponent = exponent.Add(zkoutpriv.amountFPBits[i].ScaleUint(uint64(1) << i))
	}

	c.checkGreaterEqual(exponent, zk.publics.outvalmin.e.Mul(enforceMinmax),
		params.TxAmountExponentBits, &zkoutpriv.amountFP.e)
	c.checkGreaterEqual(zk.publics.outvalmax.e, exponent.Mul(enforceMinmax),
		params.TxAmountExponentBits, nil)

	// encryption identities
	in := []hashInput{
		bitsInput(zk.publics.mEncryptIVBits, params.TxEncIVBits),
		bitsInput(zkoutpriv.destBits, params.TxFieldBits),
		bitsInput(zkoutpriv.paynumBits, params.TxPaynumBits),
	}
	oneTimePad := c.hashBits(in, zkhash.BasisAmountEnc, params.TxAssetBits+params.TxAmountBits, false)
	_, hiPad, lowPad := c.extractBits(oneTimePad, params.TxAssetBits, true, true)

	lowSel := lowPad.e.Mul(zkoutpub.enforceAsset.e).
		Add(one.Sub(zkoutpub.enforceAsset.e).Mul(zkoutpriv.asset.e))
	lowPadBits, _, _ := c.extractBits(fieldVar(lowSel), params.TxAssetBits, false, false)
	c.checkAnd(zkoutpriv.assetXorBits, zkoutpub.assetMaskBits, lowPadBits)
	c.checkXor(zkoutpub.mAssetEncBits, zkoutpriv.assetBits, zkoutpriv.assetXorBits)

	hiSel := hiPad.e.Mul(zkoutpub.enforceAmount.e).
		Add(one.Sub(zkoutpub.enforceAmount.e).Mul(zkoutpriv.amountFP.e))
	hiPadBits, _, _ := c.extractBits(fieldVar(hiSel), params.TxAmountBits, false, false)
	c.checkAnd(zkoutpriv.amountXorBits, zkoutpub.amountMaskBits, hiPadBits)
	c.checkXor(zkoutpub.mAmountEncBits, zkoutpriv.amountFPBits, zkoutpriv.amountXorBits)

	// a destination with the low mask bits clear requires acceptance
	check = one.Sub(zkoutpub.acceptanceRequired.e)
	for i, mask := 0, uint(params.TxAcceptReqDestMask); mask != 0; i, mask = i+1, mask>>1 {
		if mask&1 != 0 {
			check = check.Mul(one.Sub(zkoutpriv.destBits[i]))
		}
	}
	c.sys.ConstrainZero(check)

	// a destination with the static mask bits clear pins paynum to 0
	check = zkoutpriv.paynum.e
	for i, mask := 0, uint(params.TxStaticAddressMask); mask != 0; i, mask = i+1, mask>>1 {
		if mask&1 != 0 {
			check = check.Mul(one.Sub(zkoutpriv.destBits[i]))
		}
	}
	c.sys.ConstrainZero(check)

	// address binding
	in = []hashInput{
		bitsInput(zkoutpriv.destBits, params.TxFieldBits),
		bitsInput(zkoutpub.destChainBits, params.TxChainBits),
		bitsInput(zkoutpriv.paynumBits, params.TxPaynumBits),
	}
	addr := c.hashBits(in, zkhash.BasisAddress, params.TxAddressBits, false)
	c.sys.ConstrainZero(addr.e.Sub(zkoutpub.mAddress.e).Mul(zkoutpub.enforceAddress.e))

	// commitment binding
	in = []hashInput{
		bitsInput(zk.publics.mCommitmentIVBits, params.TxCommitIVBits),
		bitsInput(zkoutpriv.destBits, params.TxFieldBits),
		bitsInput(zkoutpriv.paynumBits, params.TxPaynumBits),
		bitsInput(zkoutpub.mDomainBits, params.TxDomainBits),
		bitsInput(zkoutpriv.assetBits, params.TxAssetBits),
		bitsInput(zkoutpriv.amountFPBits, params.TxAmountBits),
	}
	commit := c.hashBits(in, zkhash.BasisCommitment, params.TxFieldBits, false)
	c.sys.ConstrainZero(commit.e.Sub(zkoutpub.mCommitment.e).Mul(zkoutpub.enforce.e))
}

func (c *circuit) computeInput(zkinpub *txInZKPub, zkinpriv *txInZKPriv) {
	zk := c.zk
	one := c.sys.ConstantUint(1)

	zkinpriv.amountInt = c.computeIntegerAmount(zkinpriv.amountFPBits)

	check := one
	for i := uint16(0); i < zk.nassets; i++ {
		check = check.Sub(zkinpriv.isAsset[i].e)
	}
	c.sys.ConstrainZero(check)

	for i := uint16(0); i < zk.nassets; i++ {
		check = zkinpriv.asset.e
		if i > 0 {
			check = check.Sub(zk.txAsset[i-1].e)
		}
		c.sys.ConstrainZero(check.Mul(zkinpriv.isAsset[i].e))
	}

	enforceMinmax := zkinpub.enforce.e
	for i := 0; i < params.TxAssetBits; i++ {
		enforceMinmax = enforceMinmax.Mul(one.Sub(zkinpriv.assetBits[i]))
	}

	exponent := c.sys.ConstantUint(0)
	for i := 0; i < params.TxAmountExponentBits; i++ {
		exponent = exponent.Add(zkinpriv.amountFPBits[i].ScaleUint(uint64(1) << i))
	}
	c.checkGreaterEqual(zkinpub.invalmax.e, exponent.Mul(enforceMinmax), params.TxAmountExponentBits, nil)

	// enforcement and validity implications
	c.sys.ConstrainZero(zkinpub.enforceMasterSecret.e.Mul(one.Sub(zkinpriv.masterSecretValid.e)))
	c.sys.ConstrainZero(zkinpriv.masterSecretValid.e.Mul(one.Sub(zkinpriv.allowMasterSecretBit.e)))
	c.sys.ConstrainZero(zkinpub.enforceFreeze.e.Mul(one.Sub(zkinpriv.allowFreezeBit.e)))
	c.sys.ConstrainZero(zkinpub.enforceUnfreeze.e.
		Mul(one.Sub(zkinpriv.masterSecretValid.e)).
		Mul(one.Sub(zkinpriv.trustSecretsValid.e)))
	c.sys.ConstrainZero(zkinpub.enforceUnfreeze.e.
		Mul(zkinpriv.trustSecretsValid.e).
		Mul(one.Sub(zkinpriv.allowTrustUnfreezeBit.e)))
	c.sys.ConstrainZero(zkinpub.enforceSpendSecrets.e.
		Mul(one.Sub(zkinpriv.masterSecretValid.e)).
		Mul(one.Sub(zkinpriv.spendSecretsValid.e)))
	c.sys.ConstrainZero(zkinpub.enforceTrustSecrets.e.
		Mul(one.Sub(zkinpriv.masterSecretValid.e)).
		Mul(one.Sub(zkinpriv.spendSecretsValid.e)).
		Mul(one.Sub(zkinpriv.trustSecretsValid.e)))

	// public hashkey binding
	c.sys.ConstrainZero(zkinpriv.requirePublicHashkeyBit.e.
		Mul(zkinpriv.spendSecretsValid.e).
		Mul(one.Sub(zkinpriv.secretValid[1].e)))
	c.sys.ConstrainZero(zkinpriv.requirePublicHashkeyBit.e.
		Mul(zkinpriv.spendSecretsValid.e).
		Mul(zkinpub.sHashkey.e.Sub(zkinpriv.spendSecret[1].e)))

	// spendspec binding
	spendspecDiff := zkinpub.sSpendspecHashed.e.Sub(zkinpriv.requiredSpendspecHash.e)
	c.sys.ConstrainZero(zkinpriv.spendSecretsValid.e.
		Mul(zkinpriv.enforceSpendspecWithSpendSecretsBit.e).
		Mul(spendspecDiff))
	c.sys.ConstrainZero(zkinpriv.trustSecretsValid.e.
		Mul(zkinpriv.enforceSpendspecWithTrustSecretsBit.e).
		Mul(spendspecDiff))

	// enough secrets of each kind
	check = c.sys.ConstantUint(0)
	for i := uint16(0); i < zkinpriv.nsecrets; i++ {
		check = check.Add(zkinpriv.secretValid[i].e.Mul(zkinpriv.useSpendSecretBits[i].e))
	}
	c.checkGreaterEqual(check, zkinpriv.requiredSpendSecrets.e.Mul(zkinpriv.spendSecretsValid.e),
		params.TxMaxSecretsBits, nil)

	check = c.sys.ConstantUint(0)
	for i := uint16(0); i < zkinpriv.nsecrets; i++ {
		check = check.Add(zkinpriv.secretValid[i].e.Mul(zkinpriv.useTrustSecretBits[i].e))
	}
	c.checkGreaterEqual(check, zkinpriv.requiredTrustSecrets.e.Mul(zkinpriv.trustSecretsValid.e),
		params.TxMaxSecretsBits, nil)

	// time locks and delays
	c.checkGreaterEqual(zk.publics.paramTime.e, zkinpriv.spendLocktime.e.Mul(zkinpriv.spendSecretsValid.e),
		params.TxTimeBits, nil)
	c.checkGreaterEqual(zk.publics.paramTime.e, zkinpriv.trustLocktime.e.Mul(zkinpriv.trustSecretsValid.e),
		params.TxTimeBits, nil)
	c.checkGreaterEqual(zkinpub.delaytime.e, zkinpriv.spendDelaytime.e.Mul(zkinpriv.spendSecretsValid.e),
		params.TxDelaytimeBits, nil)
	c.checkGreaterEqual(zkinpub.delaytime.e, zkinpriv.trustDelaytime.e.Mul(zkinpriv.trustSecretsValid.e),
		params.TxDelaytimeBits, nil)

	// the master secret derives spend_secret[0]
	in := []hashInput{bitsInput(zkinpriv.masterSecretBits, params.TxInputBits)}
	rootSecret := c.hashBits(in, zkhash.BasisRootSecret, params.TxFieldBits, false)
	rootSecretBits, _, _ := c.extractBits(rootSecret, params.TxFieldBits, false, false)

	in = []hashInput{
		bitsInput(rootSecretBits, params.TxFieldBits),
		bitsInput(zkinpriv.spendSecretNumberBits, params.TxSpendSecretNumBits),
	}
	spendCheck := c.hashBits(in, zkhash.BasisSpendSecret, params.TxFieldBits, false)
	c.sys.ConstrainZero(spendCheck.e.Sub(zkinpriv.spendSecret[0].e).Mul(zkinpriv.masterSecretValid.e))

	for i := uint16(0); i < zkinpriv.nsecrets; i++ {
		// trust secrets chain from spend secrets
		in = []hashInput{bitsInput(zkinpriv.spendSecretBits[i], params.TxInputBits)}
		trustCheck := c.hashBits(in, zkhash.BasisTrustSecret, params.TxFieldBits, false)
		check = trustCheck.e.Sub(zkinpriv.trustSecret[i].e)
		if i == 0 {
			check = check.Mul(zkinpriv.masterSecretValid.e.
				Add(zkinpriv.spendSecretsValid.e.Mul(zkinpriv.secretValid[i].e)))
		} else {
			check = check.Mul(zkinpriv.spendSecretsValid.e.Mul(zkinpriv.secretValid[i].e))
		}
		c.sys.ConstrainZero(check)

		// monitor secrets chain from trust secrets
		in = []hashInput{bitsInput(zkinpriv.trustSecretBits[i], params.TxInputBits)}
		monitorCheck := c.hashBits(in, zkhash.BasisMonitorSecret, params.TxFieldBits, false)
		check = monitorCheck.e.Sub(zkinpriv.monitorSecret[i].e)
		if i == 0 {
			check = check.Mul(zkinpriv.masterSecretValid.e.Add(zkinpriv.secretValid[i].e))
		} else {
			check = check.Mul(zkinpriv.secretValid[i].e)
		}
		c.sys.ConstrainZero(check)
	}

	// restricted addresses
	enforceRestricted := zkinpriv.restrictAddressesBit.e.
		Mul(one.Sub(zkinpriv.masterSecretValid.e)).
		Mul(one.Sub(zkinpub.enforceFreeze.e))

	c.sys.ConstrainZero(enforceRestricted.Mul(one.Sub(zk.publics.allowRestrictedAddresses.e)))

	for i := uint16(0); i < zk.nout; i++ {
		check = enforceRestricted.Mul(zk.outputPublic[i].enforceAddress.e)
		for j := uint16(0); j < zk.nraddrs && i < zk.nrouts; j++ {
			check = check.Mul(one.Sub(zkinpriv.outputAddressMatches[i][j].e))
		}
		c.sys.ConstrainZero(check)
	}

	for i := uint16(0); i < zk.nrouts; i++ {
		for j := uint16(0); j < zk.nraddrs; j++ {
			secreti := transaction.RestrictedAddressSecretIndex(uint(j))

			if secreti < params.TxMaxSecrets {
				c.sys.ConstrainZero(zkinpriv.outputAddressMatches[i][j].e.
					Mul(zkinpriv.useSpendSecretBits[secreti].e))
				c.sys.ConstrainZero(zkinpriv.outputAddressMatches[i][j].e.
					Mul(zkinpriv.useTrustSecretBits[secreti].e))
			}

			var half snark.Expr
			if j&1 != 0 {
				half = zkinpriv.monitorSecretHi[secreti].e
			} else {
				half = zkinpriv.monitorSecretLo[secreti].e
			}
			c.sys.ConstrainZero(zkinpriv.outputAddressMatches[i][j].e.
				Mul(zk.outputPublic[i].mAddress.e.Sub(half)))
		}
	}

	// the input's commitment reproduces from the derived destination
	in = make([]hashInput, 0, 14)
	in = append(in,
		bitsInput(zkinpriv.monitorSecretLoBits[0], params.TxInputBits/2),
		bitsInput(zkinpriv.monitorSecretHiBits[0], params.TxInputBits/2),
		bitsInput([]snark.Expr{zkinpriv.enforceSpendspecWithSpendSecretsBit.e}, 1),
		bitsInput([]snark.Expr{zkinpriv.enforceSpendspecWithTrustSecretsBit.e}, 1),
		bitsInput(zkinpriv.requiredSpendspecHashBits, params.TxInputBits),
		bitsInput([]snark.Expr{zkinpriv.allowMasterSecretBit.e}, 1),
		bitsInput([]snark.Expr{zkinpriv.allowFreezeBit.e}, 1),
		bitsInput([]snark.Expr{zkinpriv.allowTrustUnfreezeBit.e}, 1),
		bitsInput([]snark.Expr{zkinpriv.requirePublicHashkeyBit.e}, 1),
		bitsInput([]snark.Expr{zkinpriv.restrictAddressesBit.e}, 1),
		bitsInput(zkinpriv.spendLocktimeBits, params.TxTimeBits),
		bitsInput(zkinpriv.trustLocktimeBits, params.TxTimeBits),
		bitsInput(zkinpriv.spendDelaytimeBits, params.TxDelaytimeBits),
		bitsInput(zkinpriv.trustDelaytimeBits, params.TxDelaytimeBits))
	receiveSecret := c.hashBits(in, zkhash.BasisReceiveSecret, params.TxFieldBits, false)
	receiveSecretBits, _, _ := c.extractBits(receiveSecret, params.TxFieldBits, false, false)

	in = in[:0]
	in = append(in, bitsInput(receiveSecretBits, params.TxFieldBits))
	for i := 1; i < params.TxMaxSecretSlots; i++ {
		in = append(in,
			bitsInput(zkinpriv.monitorSecretLoBits[i], params.TxInputBits/2),
			bitsInput(zkinpriv.monitorSecretHiBits[i], params.TxInputBits/2))
	}
	useSpendBits := make([]snark.Expr, params.TxMaxSecrets)
	useTrustBits := make([]snark.Expr, params.TxMaxSecrets)
	for j := 0; j < params.TxMaxSecrets; j++ {
		useSpendBits[j] = zkinpriv.useSpendSecretBits[j].e
		useTrustBits[j] = zkinpriv.useTrustSecretBits[j].e
	}
	in = append(in,
		bitsInput(useSpendBits, params.TxMaxSecrets),
		bitsInput(useTrustBits, params.TxMaxSecrets),
		bitsInput(zkinpriv.requiredSpendSecretsBits, params.TxMaxSecretsBits),
		bitsInput(zkinpriv.requiredTrustSecretsBits, params.TxMaxSecretsBits),
		bitsInput(zkinpriv.destnumBits, params.TxDestnumBits))
	dest := c.hashBits(in, zkhash.BasisDestination, params.TxFieldBits, false)
	destBits, _, _ := c.extractBits(dest, params.TxFieldBits, false, false)

	in = []hashInput{
		bitsInput(zkinpriv.mCommitmentIVBits, params.TxCommitIVBits),
		bitsInput(destBits, params.TxFieldBits),
		bitsInput(zkinpriv.paynumBits, params.TxPaynumBits),
		bitsInput(zkinpub.mDomainBits, params.TxDomainBits),
		bitsInput(zkinpriv.assetBits, params.TxAssetBits),
		bitsInput(zkinpriv.amountFPBits, params.TxAmountBits),
	}
	commit := c.hashBits(in, zkhash.BasisCommitment, params.TxFieldBits, false)
	c.sys.ConstrainZero(commit.e.Sub(zkinpriv.mCommitment.e).Mul(zkinpub.enforce.e))

	// the published commitment (and commitnum) match the private ones
	c.sys.ConstrainZero(zkinpub.mCommitment.e.Sub(zkinpriv.mCommitment.e).
		Mul(zkinpub.enforcePublicCommitment.e))
	c.sys.ConstrainZero(zkinpub.mCommitnum.e.Sub(zkinpriv.mCommitnum.e).
		Mul(zkinpub.enforcePublicCommitnum.e))

	// the serial number binds the monitor secret to the commitment
	in = []hashInput{
		bitsInput(zkinpriv.monitorSecretLoBits[0], params.TxInputBits/2),
		bitsInput(zkinpriv.monitorSecretHiBits[0], params.TxInputBits/2),
		bitsInput(zkinpriv.mCommitmentBits, params.TxFieldBits),
		bitsInput(zkinpriv.mCommitnumBits, params.TxCommitnumBits),
	}
	serial := c.hashBits(in, zkhash.BasisSerialnum, params.TxSerialnumBits, false)
	c.sys.ConstrainZero(serial.e.Sub(zkinpub.sSerialnum.e).Mul(zkinpub.enforceSerialnum.e))
}

func (c *circuit) checkMerkle(zkinpub *txInZKPub, zkinpriv *txInZKPriv, path *txInPathZK) {
	in := []hashInput{
		bitsInput(zkinpriv.mCommitmentBits, params.TxFieldBits),
		bitsInput(zkinpriv.mCommitnumBits, params.TxCommitnumBits),
	}
	leaf := c.hashBits(in, zkhash.BasisMerkleLeaf, params.TxMerkleBits, false)

	root := c.merkle(leaf, params.TxMerkleBits, path.merklePath, params.TxMerkleBits)
	c.sys.ConstrainZero(root.e.Sub(zkinpub.merkleRoot.e).Mul(path.enforcePath.e))
}

func (c *circuit) computeTx() {
	zk := c.zk

	for i := uint16(0); i < zk.nout; i++ {
		c.computeOutput(&zk.outputPublic[i], &zk.outputPrivate[i])
	}

	for i := uint16(0); i < zk.nin; i++ {
		c.computeInput(&zk.inputPublic[i], &zk.inputPrivate[i])

		if i < zk.ninWithPath {
			c.checkMerkle(&zk.inputPublic[i], &zk.inputPrivate[i], &zk.inpaths[i])
		}
	}

	// per-asset value conservation, donation included for the native
	// asset
	for j := uint16(0); j < zk.nassets; j++ {
		var check snark.Expr
		if j == 0 {
			check = zk.publics.donation.e
		} else {
			check = c.sys.ConstantUint(0)
		}

		for i := uint16(0); i < zk.nout; i++ {
			check = check.Add(zk.outputPrivate[i].isAsset[j].e.
				Mul(zk.outputPrivate[i].amountInt).
				Mul(zk.outputPublic[i].multiplier.e))
		}

		for i := uint16(0); i < zk.nin; i++ {
			check = check.Sub(zk.inputPrivate[i].isAsset[j].e.
				Mul(zk.inputPrivate[i].amountInt))
		}

		c.sys.ConstrainZero(check)
	}
}
