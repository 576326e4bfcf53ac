// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ccproof

import (
	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/snark"
	"github.com/luxfi/cclib/transaction"
)

// Circuit variable groups. Field order tracks the blessing schedule, not
// the wire layout.

type txOutZKPub struct {
	enforce zkvar

	destChain zkvar
	mDomain   zkvar

	enforceAddress zkvar
	mAddress       zkvar

	acceptanceRequired zkvar
	multiplier         zkvar

	enforceAsset zkvar
	assetMask    zkvar
	mAssetEnc    zkvar

	enforceAmount zkvar
	amountMask    zkvar
	mAmountEnc    zkvar

	mCommitment zkvar

	destChainBits  []snark.Expr
	mDomainBits    []snark.Expr
	assetMaskBits  []snark.Expr
	amountMaskBits []snark.Expr
	mAssetEncBits  []snark.Expr
	mAmountEncBits []snark.Expr
}

type txOutZKPriv struct {
	isAsset [params.TxMaxNAssets]zkvar

	dest      zkvar
	paynum    zkvar
	asset     zkvar
	amountFP  zkvar
	amountInt snark.Expr

	assetXor  zkvar
	amountXor zkvar

	destBits      []snark.Expr
	paynumBits    []snark.Expr
	assetBits     []snark.Expr
	amountFPBits  []snark.Expr
	assetXorBits  []snark.Expr
	amountXorBits []snark.Expr
}

type txInZKPub struct {
	enforce zkvar

	enforceMasterSecret zkvar
	enforceSpendSecrets zkvar
	enforceTrustSecrets zkvar
	enforceFreeze       zkvar
	enforceUnfreeze     zkvar

	merkleRoot zkvar
	invalmax   zkvar
	delaytime  zkvar

	mDomain zkvar

	enforcePublicCommitment zkvar
	enforcePublicCommitnum  zkvar
	mCommitment             zkvar
	mCommitnum              zkvar

	enforceSerialnum zkvar
	sSerialnum       zkvar
	sHashkey         zkvar
	sSpendspecHashed zkvar

	mDomainBits []snark.Expr
}

type txInZKPriv struct {
	nsecrets uint16

	isAsset [params.TxMaxNAssets]zkvar

	asset         zkvar
	amountFP      zkvar
	amountInt     snark.Expr
	mCommitmentIV zkvar

	mCommitment zkvar
	mCommitnum  zkvar

	masterSecret      zkvar
	spendSecretNumber zkvar

	requiredSpendspecHash zkvar

	enforceSpendspecWithSpendSecretsBit zkvar
	enforceSpendspecWithTrustSecretsBit zkvar
	allowMasterSecretBit                zkvar
	allowFreezeBit                      zkvar
	allowTrustUnfreezeBit               zkvar
	requirePublicHashkeyBit             zkvar
	restrictAddressesBit                zkvar

	spendLocktime  zkvar
	trustLocktime  zkvar
	spendDelaytime zkvar
	trustDelaytime zkvar

	requiredSpendSecrets zkvar
	requiredTrustSecrets zkvar
	destnum              zkvar
	paynum               zkvar

	masterSecretValid zkvar
	spendSecretsValid zkvar
	trustSecretsValid zkvar
	secretValid       [params.TxMaxSecrets]zkvar

	spendSecret   [params.TxMaxSecrets]zkvar
	trustSecret   [params.TxMaxSecrets]zkvar
	monitorSecret [params.TxMaxSecretSlots]zkvar

	outputAddressMatches [params.TxMaxOut][]zkvar

	useSpendSecretBits []zkvar
	useTrustSecretBits []zkvar

	assetBits         []snark.Expr
	amountFPBits      []snark.Expr
	mCommitmentIVBits []snark.Expr
	mCommitmentBits   []snark.Expr
	mCommitnumBits    []snark.Expr

	masterSecretBits          []snark.Expr
	spendSecretNumberBits     []snark.Expr
	requiredSpendspecHashBits []snark.Expr
	spendLocktimeBits         []snark.Expr
	trustLocktimeBits         []snark.Expr
	spendDelaytimeBits        []snark.Expr
	trustDelaytimeBits        []snark.Expr

	requiredSpendSecretsBits []snark.Expr
	requiredTrustSecretsBits []snark.Expr
	destnumBits              []snark.Expr
	paynumBits               []snark.Expr

	spendSecretBits [params.TxMaxSecrets][]snark.Expr
	trustSecretBits [params.TxMaxSecrets][]snark.Expr

	monitorSecretLo [params.TxMaxSecretSlots]zkvar
	monitorSecretHi [params.TxMaxSecretSlots]zkvar

	monitorSecretLoBits [params.TxMaxSecretSlots][]snark.Expr
	monitorSecretHiBits [params.TxMaxSecretSlots][]snark.Expr
}

type txInPathZK struct {
	enforcePath zkvar
	merklePath  []zkvar
}

type txPayZKPublics struct {
	txType      zkvar
	sourceChain zkvar
	paramLevel  zkvar
	paramTime   zkvar
	revision    zkvar
	expiration  zkvar
	refhash     zkvar
	reserved    zkvar

	donation                 zkvar
	outvalmin                zkvar
	outvalmax                zkvar
	allowRestrictedAddresses zkvar

	mCommitmentIV zkvar

	mCommitmentIVBits []snark.Expr
	mEncryptIVBits    []snark.Expr
}

type txPayZK struct {
	nout        uint16
	nin         uint16
	ninWithPath uint16
	nassets     uint16
	nsecrets    uint16
	nraddrs     uint16
	nrouts      uint16

	publics txPayZKPublics

	txAsset [params.TxMaxNAssets - 1]zkvar // privates; asset[0] is 0

	outputPublic  []txOutZKPub
	inputPublic   []txInZKPub
	outputPrivate []txOutZKPriv
	inputPrivate  []txInZKPriv
	inpaths       [params.TxMaxInPath]txInPathZK
}

func (c *circuit) blessTxPublicInputs(badsel *int) {
	zk, tx := c.zk, c.tx
	notbad := -99

	// context fields are bound but changing them cannot break the proof
	zk.publics.txType = c.blessUint(true, &notbad, uint64(tx.TxType), params.TxTypeBits, blessOpt{})
	zk.publics.sourceChain = c.blessUint(true, &notbad, tx.SourceChain, params.TxChainBits, blessOpt{})
	zk.publics.paramLevel = c.blessUint(true, &notbad, tx.ParamLevel, params.TxBlockLevelBits, blessOpt{})
	zk.publics.paramTime = c.blessUint(true, &notbad, tx.ParamTime, params.TxTimeBits, blessOpt{})
	zk.publics.revision = c.blessUint(true, &notbad, uint64(tx.Revision), params.TxRevisionBits, blessOpt{})
	zk.publics.expiration = c.blessUint(true, &notbad, tx.Expiration, params.TxTimeBits, blessOpt{})
	zk.publics.refhash = c.blessInput(true, &notbad, tx.Refhash, params.TxRefhashBits, blessOpt{})
	zk.publics.reserved = c.blessUint(true, &notbad, tx.Reserved, params.TxReservedBits, blessOpt{})

	donation := amounts.Decode(tx.DonationFP, true)
	zk.publics.donation = c.blessInput(true, badsel, donation, params.TxInputBits, blessOpt{})

	// outvalmin cannot be made bad when no native output has a
	// non-maximal exponent
	nobad := true
	for i := uint16(0); i < tx.Nout; i++ {
		if tx.Outputs[i].Asset == 0 && uint64(decodeExponent(tx.Outputs[i].AmountFP)) < params.TxAmountExponentMask {
			nobad = false
		}
	}
	if tx.Nout > 0 {
		badval := bigint.NewBig(params.TxAmountExponentMask + 1)
		zk.publics.outvalmin = c.blessUint(true, badsel, uint64(tx.Outvalmin), params.TxAmountExponentBits,
			blessOpt{nobad: nobad, badval: badval})
	} else {
		zk.publics.outvalmin = c.blessUint(true, badsel, 0, params.TxAmountExponentBits, blessOpt{anyval: true})
	}

	// outvalmax cannot be made bad when no native output has a non-zero
	// exponent
	nobad = true
	for i := uint16(0); i < tx.Nout; i++ {
		if tx.Outputs[i].Asset == 0 && decodeExponent(tx.Outputs[i].AmountFP) > 0 {
			nobad = false
		}
	}
	if tx.Nout > 0 {
		badval := bigint.NewBig(0)
		zk.publics.outvalmax = c.blessUint(true, badsel, uint64(tx.Outvalmax), params.TxAmountExponentBits,
			blessOpt{nobad: nobad, badval: badval})
		zk.publics.mCommitmentIV = c.blessInput(true, badsel, tx.MCommitmentIV, params.TxCommitIVBits, blessOpt{})
	} else {
		zk.publics.outvalmax = c.blessUint(true, badsel, 0, params.TxAmountExponentBits, blessOpt{anyval: true})
		zk.publics.mCommitmentIV = c.blessInput(true, badsel, bigint.Big{}, params.TxCommitIVBits, blessOpt{anyval: true})
	}

	zk.publics.allowRestrictedAddresses = c.blessBool(true, &notbad, tx.AllowRestrictedAddresses, blessOpt{})
}

func (c *circuit) blessOutputPublicInputs(zkoutpub *txOutZKPub, txout *transaction.TxOut, enforce bool, badsel *int) {
	notbad := -99

	zkoutpub.enforce = c.bless(enforce)

	enforceAddress := !txout.NoAddress && enforce

	zkoutpub.destChain = c.blessUint(true, badsel, txout.Addrparams.DestChain, params.TxChainBits,
		blessOpt{anyval: !enforceAddress})

	zkoutpub.mDomain = c.blessUint(true, badsel, uint64(txout.MDomain), params.TxDomainBits, blessOpt{})

	// enforce_address cannot be made bad while the address is valid
	zkoutpub.enforceAddress = c.blessBool(true, badsel, enforceAddress, blessOpt{nobad: enforceAddress})

	zkoutpub.mAddress = c.blessInput(true, badsel, txout.MAddress, params.TxAddressBits,
		blessOpt{anyval: !enforceAddress})

	if enforce {
		nobad := txout.AcceptanceRequired || txout.Addrparams.Dest[0]&params.TxAcceptReqDestMask != 0
		zkoutpub.acceptanceRequired = c.blessBool(true, badsel, txout.AcceptanceRequired, blessOpt{nobad: nobad})
	} else {
		zkoutpub.acceptanceRequired = c.blessBool(true, badsel, true, blessOpt{})
	}

	multiplier := uint64(0)
	if enforce {
		multiplier = uint64(txout.RepeatCount) + 1
	}
	zkoutpub.multiplier = c.blessUint(true, &notbad, multiplier, params.TxFieldBits, blessOpt{})

	enforceAsset := !txout.NoAsset && enforce
	zkoutpub.enforceAsset = c.blessBool(true, badsel, enforceAsset, blessOpt{nobad: enforceAsset})
	if enforceAsset {
		var badval bigint.Big
		if *badsel == 0 {
			badval = c.computeBadMask(txout.AssetMask, txout.AssetPad)
		}
		zkoutpub.assetMask = c.blessUint(true, badsel, txout.AssetMask, params.TxAssetBits,
			blessOpt{nobad: txout.AssetPad == 0, badval: &badval})
		zkoutpub.mAssetEnc = c.blessUint(true, badsel, txout.MAssetEnc, params.TxAssetBits, blessOpt{})
	} else {
		var badval bigint.Big
		if *badsel == 0 {
			badval = c.computeBadMask(txout.AssetMask, txout.Asset)
		}
		zkoutpub.assetMask = c.blessUint(true, badsel, params.TxAssetMask, params.TxAssetBits,
			blessOpt{nobad: txout.Asset == 0, badval: &badval})
		zkoutpub.mAssetEnc = c.blessUint(true, badsel, 0, params.TxAssetBits, blessOpt{})
	}

	enforceAmount := !txout.NoAmount && enforce
	zkoutpub.enforceAmount = c.blessBool(true, badsel, enforceAmount, blessOpt{nobad: enforceAmount})
	if enforceAmount {
		var badval bigint.Big
		if *badsel == 0 {
			badval = c.computeBadMask(txout.AmountMask, txout.AmountPad)
		}
		zkoutpub.amountMask = c.blessUint(true, badsel, txout.AmountMask, params.TxAmountBits,
			blessOpt{nobad: txout.AmountPad == 0, badval: &badval})
		zkoutpub.mAmountEnc = c.blessUint(true, badsel, txout.MAmountEnc, params.TxAmountBits, blessOpt{})
	} else {
		var badval bigint.Big
		if *badsel == 0 {
			badval = c.computeBadMask(txout.AmountMask, txout.AmountFP)
		}
		zkoutpub.amountMask = c.blessUint(true, badsel, params.TxAmountMask, params.TxAmountBits,
			blessOpt{nobad: txout.AmountFP == 0, badval: &badval})
		zkoutpub.mAmountEnc = c.blessUint(true, badsel, 0, params.TxAmountBits, blessOpt{})
	}

	zkoutpub.mCommitment = c.blessInput(true, badsel, txout.MCommitment, params.TxFieldBits, blessOpt{})
}

func (c *circuit) blessInputPublicInputs(zkinpub *txInZKPub, txin *transaction.TxIn, enforce bool, badsel *int) {
	notbad := -99

	zkinpub.enforce = c.bless(enforce)

	if enforce {
		nobad := txin.EnforceMasterSecret || txin.MasterSecretValid
		zkinpub.enforceMasterSecret = c.blessBool(true, badsel, txin.EnforceMasterSecret, blessOpt{nobad: nobad})

		nobad = txin.EnforceSpendSecrets || txin.MasterSecretValid || txin.SpendSecretsValid
		zkinpub.enforceSpendSecrets = c.blessBool(true, badsel, txin.EnforceSpendSecrets, blessOpt{nobad: nobad})

		nobad = txin.EnforceTrustSecrets || txin.MasterSecretValid || txin.SpendSecretsValid || txin.TrustSecretsValid
		zkinpub.enforceTrustSecrets = c.blessBool(true, badsel, txin.EnforceTrustSecrets, blessOpt{nobad: nobad})

		nobad = txin.EnforceFreeze || txin.Params.AllowFreeze
		zkinpub.enforceFreeze = c.blessBool(true, badsel, txin.EnforceFreeze, blessOpt{nobad: nobad})

		nobad = txin.EnforceUnfreeze || txin.MasterSecretValid ||
			(txin.TrustSecretsValid && txin.Params.AllowTrustUnfreeze)
		zkinpub.enforceUnfreeze = c.blessBool(true, badsel, txin.EnforceUnfreeze, blessOpt{nobad: nobad})

		nobad = txin.Asset != 0 || decodeExponent(txin.AmountFP) == 0
		badval := bigint.NewBig(0)
		zkinpub.invalmax = c.blessUint(true, badsel, uint64(txin.Invalmax), params.TxAmountExponentBits,
			blessOpt{nobad: nobad, badval: badval})

		spendBad := txin.SpendSecretsValid && txin.Params.SpendDelaytime != 0
		trustBad := txin.TrustSecretsValid && txin.Params.TrustDelaytime != 0
		var dtBadval bigint.Big
		dtNobad := true
		if spendBad && (!trustBad || c.randVal(true)[0]&1 == 0) {
			dtBadval.SetUint64(uint64(txin.Params.SpendDelaytime) - 1)
			dtNobad = false
		} else if trustBad {
			dtBadval.SetUint64(uint64(txin.Params.TrustDelaytime) - 1)
			dtNobad = false
		}
		zkinpub.delaytime = c.blessUint(true, badsel, uint64(txin.Delaytime), params.TxDelaytimeBits,
			blessOpt{nobad: dtNobad, badval: &dtBadval})

		zkinpub.mDomain = c.blessUint(true, badsel, uint64(txin.MDomain), params.TxDomainBits, blessOpt{})

		zkinpub.enforceSerialnum = c.blessBool(true, badsel, !txin.NoSerialnum, blessOpt{nobad: !txin.NoSerialnum})
	} else {
		zkinpub.enforceMasterSecret = c.blessBool(true, badsel, false, blessOpt{})
		zkinpub.enforceSpendSecrets = c.blessBool(true, badsel, false, blessOpt{})
		zkinpub.enforceTrustSecrets = c.blessBool(true, badsel, false, blessOpt{})
		zkinpub.enforceFreeze = c.blessBool(true, badsel, false, blessOpt{})
		zkinpub.enforceUnfreeze = c.blessBool(true, badsel, false, blessOpt{})
		zkinpub.invalmax = c.blessUint(true, badsel, 0, params.TxAmountExponentBits, blessOpt{anyval: true})
		zkinpub.delaytime = c.blessUint(true, badsel, 0, params.TxDelaytimeBits, blessOpt{anyval: true})
		zkinpub.mDomain = c.blessUint(true, badsel, 0, params.TxDomainBits, blessOpt{anyval: true})
		zkinpub.enforceSerialnum = c.blessBool(true, badsel, false, blessOpt{})
	}

	enforcePublicCommitment := txin.Pathnum == 0 && enforce
	zkinpub.enforcePublicCommitment = c.blessBool(true, badsel, enforcePublicCommitment,
		blessOpt{nobad: enforcePublicCommitment})

	zkinpub.mCommitment = c.blessInput(true, badsel, txin.MCommitment, params.TxFieldBits,
		blessOpt{anyval: !enforcePublicCommitment})

	enforcePublicCommitnum := txin.Pathnum == 0 && enforce && !txin.NoSerialnum
	nobad := enforcePublicCommitnum || (txin.Pathnum == 0 && txin.NoSerialnum)
	zkinpub.enforcePublicCommitnum = c.blessBool(true, badsel, enforcePublicCommitnum, blessOpt{nobad: nobad})

	zkinpub.mCommitnum = c.blessUint(true, badsel, txin.MCommitnum, params.TxCommitnumBits,
		blessOpt{anyval: !enforcePublicCommitnum})

	zkinpub.merkleRoot = c.blessInput(true, badsel, txin.MerkleRoot, params.TxFieldBits,
		blessOpt{anyval: enforcePublicCommitment})

	zkinpub.sSerialnum = c.blessInput(true, badsel, txin.SSerialnum, params.TxSerialnumBits,
		blessOpt{anyval: txin.NoSerialnum || !enforce})

	zkinpub.sHashkey = c.blessInput(true, badsel, txin.SHashkey, params.TxHashkeyBits,
		blessOpt{
			nobad:  !(txin.Params.RequirePublicHashkey && txin.SpendSecretsValid),
			anyval: !enforce,
		})

	zkinpub.sSpendspecHashed = c.blessInput(true, &notbad, txin.SSpendspecHashed, params.TxInputBits,
		blessOpt{anyval: !enforce})
}

func (c *circuit) blessTxPrivateInputs(badsel *int) {
	zk, tx := c.zk, c.tx

	for i := uint16(1); i < zk.nassets; i++ {
		asset := tx.AssetList[i]
		anyval := true // an asset slot no input or output uses cannot be bad
		for j := uint16(0); j < tx.Nout; j++ {
			if asset == tx.Outputs[j].Asset {
				anyval = false
			}
		}
		for j := uint16(0); j < tx.Nin; j++ {
			if asset == tx.Inputs[j].Asset {
				anyval = false
			}
		}
		zk.txAsset[i-1] = c.blessUint(false, badsel, asset, params.TxAssetBits,
			blessOpt{anyval: anyval, nomod: true})
	}
}

func (c *circuit) blessOutputPrivateInputs(zkoutpriv *txOutZKPriv, txout *transaction.TxOut, enforce bool, badsel *int) {
	zk, tx := c.zk, c.tx

	for i := uint16(0); i < zk.nassets; i++ {
		zkoutpriv.isAsset[i] = c.blessBool(false, badsel, txout.Asset == tx.AssetList[i], blessOpt{nomod: true})
	}

	zkoutpriv.dest = c.blessInput(false, badsel, txout.Addrparams.Dest, params.TxFieldBits, blessOpt{})
	zkoutpriv.paynum = c.blessUint(false, badsel, uint64(txout.Addrparams.Paynum), params.TxPaynumBits, blessOpt{})
	zkoutpriv.asset = c.blessUint(false, badsel, txout.Asset, params.TxAssetBits, blessOpt{})
	zkoutpriv.amountFP = c.blessUint(false, badsel, txout.AmountFP, params.TxAmountBits, blessOpt{})

	if !txout.NoAsset && enforce {
		zkoutpriv.assetXor = c.blessUint(false, badsel, txout.MAssetEnc^txout.Asset, params.TxAssetBits, blessOpt{})
	} else {
		zkoutpriv.assetXor = c.blessUint(false, badsel, txout.Asset, params.TxAssetBits, blessOpt{})
	}

	if !txout.NoAmount && enforce {
		zkoutpriv.amountXor = c.blessUint(false, badsel, txout.MAmountEnc^txout.AmountFP, params.TxAmountBits, blessOpt{})
	} else {
		zkoutpriv.amountXor = c.blessUint(false, badsel, txout.AmountFP, params.TxAmountBits, blessOpt{})
	}
}

func (c *circuit) blessInputPrivateInputs(zkinpriv *txInZKPriv, txin *transaction.TxIn, enforce bool, badsel *int) {
	zk, tx := c.zk, c.tx

	zkinpriv.nsecrets = zk.nsecrets

	for i := uint16(0); i < zk.nassets; i++ {
		zkinpriv.isAsset[i] = c.blessBool(false, badsel, txin.Asset == tx.AssetList[i], blessOpt{nomod: true})
	}

	zkinpriv.asset = c.blessUint(false, badsel, txin.Asset, params.TxAssetBits, blessOpt{})
	zkinpriv.amountFP = c.blessUint(false, badsel, txin.AmountFP, params.TxAmountBits, blessOpt{})
	zkinpriv.mCommitmentIV = c.blessInput(false, badsel, txin.MCommitmentIV, params.TxCommitIVBits, blessOpt{})

	zkinpriv.mCommitnum = c.blessUint(false, badsel, txin.MCommitnum, params.TxCommitnumBits,
		blessOpt{anyval: txin.Pathnum == 0 && txin.NoSerialnum})

	zkinpriv.mCommitment = c.blessInput(false, badsel, txin.MCommitment, params.TxFieldBits,
		blessOpt{anyval: !enforce, nomod: true})

	anyval := !txin.MasterSecretValid
	zkinpriv.masterSecret = c.blessInput(false, badsel, txin.Secrets[0].MasterSecret, params.TxInputBits,
		blessOpt{anyval: anyval})
	zkinpriv.spendSecretNumber = c.blessUint(false, badsel, uint64(txin.Secrets[0].SpendSecretNumber),
		params.TxSpendSecretNumBits, blessOpt{anyval: anyval})

	zkinpriv.enforceSpendspecWithSpendSecretsBit = c.blessBool(false, badsel,
		txin.Params.EnforceSpendSpecWithSpendSecrets, blessOpt{nomod: true})
	zkinpriv.enforceSpendspecWithTrustSecretsBit = c.blessBool(false, badsel,
		txin.Params.EnforceSpendSpecWithTrustSecrets, blessOpt{nomod: true})

	zkinpriv.requiredSpendspecHash = c.blessInput(false, badsel, txin.Params.RequiredSpendSpecHash,
		params.TxInputBits, blessOpt{nomod: true})

	zkinpriv.allowMasterSecretBit = c.blessBool(false, badsel, txin.Params.AllowMasterSecret, blessOpt{nomod: true})
	zkinpriv.allowFreezeBit = c.blessBool(false, badsel, txin.Params.AllowFreeze, blessOpt{nomod: true})
	zkinpriv.allowTrustUnfreezeBit = c.blessBool(false, badsel, txin.Params.AllowTrustUnfreeze, blessOpt{nomod: true})
	zkinpriv.requirePublicHashkeyBit = c.blessBool(false, badsel, txin.Params.RequirePublicHashkey, blessOpt{nomod: true})
	zkinpriv.restrictAddressesBit = c.blessBool(false, badsel, txin.Params.RestrictAddresses, blessOpt{nomod: true})

	zkinpriv.spendLocktime = c.blessUint(false, badsel, txin.Params.SpendLocktime, params.TxTimeBits, blessOpt{})
	zkinpriv.trustLocktime = c.blessUint(false, badsel, txin.Params.TrustLocktime, params.TxTimeBits, blessOpt{})
	zkinpriv.spendDelaytime = c.blessUint(false, badsel, uint64(txin.Params.SpendDelaytime), params.TxDelaytimeBits, blessOpt{})
	zkinpriv.trustDelaytime = c.blessUint(false, badsel, uint64(txin.Params.TrustDelaytime), params.TxDelaytimeBits, blessOpt{})

	zkinpriv.requiredSpendSecrets = c.blessUint(false, badsel, uint64(txin.Params.RequiredSpendSecrets), params.TxMaxSecretsBits, blessOpt{})
	zkinpriv.requiredTrustSecrets = c.blessUint(false, badsel, uint64(txin.Params.RequiredTrustSecrets), params.TxMaxSecretsBits, blessOpt{})

	zkinpriv.destnum = c.blessUint(false, badsel, uint64(txin.Params.Destnum), params.TxDestnumBits, blessOpt{})
	zkinpriv.paynum = c.blessUint(false, badsel, uint64(txin.Params.Addrparams.Paynum), params.TxPaynumBits, blessOpt{})

	nobad := !(txin.EnforceMasterSecret ||
		(txin.EnforceSpendSecrets && !txin.SpendSecretsValid) ||
		(txin.EnforceTrustSecrets && !txin.SpendSecretsValid && !txin.TrustSecretsValid) ||
		(txin.EnforceUnfreeze && (!txin.TrustSecretsValid || !txin.Params.AllowTrustUnfreeze)))
	zkinpriv.masterSecretValid = c.blessBool(false, badsel, txin.MasterSecretValid, blessOpt{nobad: nobad, nomod: true})

	nobad = !(txin.EnforceSpendSecrets && !txin.MasterSecretValid)
	zkinpriv.spendSecretsValid = c.blessBool(false, badsel, txin.SpendSecretsValid, blessOpt{nobad: nobad, nomod: true})

	nobad = !((txin.EnforceTrustSecrets && !txin.MasterSecretValid && !txin.SpendSecretsValid) ||
		(txin.EnforceUnfreeze && !txin.MasterSecretValid))
	zkinpriv.trustSecretsValid = c.blessBool(false, badsel, txin.TrustSecretsValid, blessOpt{nobad: nobad, nomod: true})

	for j := uint16(0); j < zkinpriv.nsecrets; j++ {
		secretValid := (txin.SpendSecretsValid && txin.Secrets[j].HaveSpendSecret) ||
			(!txin.SpendSecretsValid && txin.Secrets[j].HaveTrustSecret)
		secretValid = secretValid && !txin.Secrets[j].HaveRestrictedAddress

		nobad := secretValid
		if j == 0 {
			nobad = nobad || txin.MasterSecretValid
		}
		zkinpriv.secretValid[j] = c.blessBool(false, badsel, secretValid, blessOpt{nobad: nobad, nomod: true})

		anyval := !((j == 0 && txin.MasterSecretValid) || (txin.SpendSecretsValid && secretValid))
		zkinpriv.spendSecret[j] = c.blessInput(false, badsel, txin.Secrets[j].SpendSecret, params.TxInputBits,
			blessOpt{anyval: anyval})

		anyval = anyval && !secretValid
		zkinpriv.trustSecret[j] = c.blessInput(false, badsel, txin.Secrets[j].TrustSecret, params.TxInputBits,
			blessOpt{anyval: anyval})
	}

	zkinpriv.useSpendSecretBits = make([]zkvar, params.TxMaxSecrets)
	zkinpriv.useTrustSecretBits = make([]zkvar, params.TxMaxSecrets)
	for j := 0; j < params.TxMaxSecrets; j++ {
		zkinpriv.useSpendSecretBits[j] = c.blessBool(false, badsel, txin.Params.UseSpendSecret[j], blessOpt{nomod: true})
		zkinpriv.useTrustSecretBits[j] = c.blessBool(false, badsel, txin.Params.UseTrustSecret[j], blessOpt{nomod: true})
	}

	for j := 0; j < params.TxMaxSecretSlots; j++ {
		zkinpriv.monitorSecret[j] = c.blessInput(false, badsel, txin.Secrets[j].MonitorSecret, params.TxInputBits, blessOpt{})
	}

	enforceRestrictedAddresses := txin.Params.RestrictAddresses && !txin.MasterSecretValid && !txin.EnforceFreeze

	for i := uint16(0); i < zk.nrouts; i++ {
		zkinpriv.outputAddressMatches[i] = make([]zkvar, zk.nraddrs)

		matchTotal := 0
		for j := uint16(0); j < zk.nraddrs; j++ {
			if i < tx.Nout && transaction.RestrictedAddressSlotOpen(&txin.Params, uint(j)) {
				raddress := transaction.GetRestrictedAddress(&txin.Secrets, uint(j))
				if !tx.Outputs[i].NoAddress && tx.Outputs[i].MAddress == raddress {
					matchTotal++
				}
			}
		}

		nobad := !(enforceRestrictedAddresses && matchTotal == 1)

		for j := uint16(0); j < zk.nraddrs; j++ {
			match := false
			if i < tx.Nout && transaction.RestrictedAddressSlotOpen(&txin.Params, uint(j)) {
				raddress := transaction.GetRestrictedAddress(&txin.Secrets, uint(j))
				match = !tx.Outputs[i].NoAddress && tx.Outputs[i].MAddress == raddress
			}
			zkinpriv.outputAddressMatches[i][j] = c.blessBool(false, badsel, match, blessOpt{nobad: nobad, nomod: true})
		}
	}
}

func (c *circuit) blessPublicInputs(badsel *int) {
	zk, tx := c.zk, c.tx
	notbad := -99

	c.blessTxPublicInputs(badsel)

	for i := uint16(0); i < zk.nout; i++ {
		if i < tx.Nout {
			c.blessOutputPublicInputs(&zk.outputPublic[i], &tx.Outputs[i], true, badsel)
		} else {
			c.blessOutputPublicInputs(&zk.outputPublic[i], &tx.Outputs[i], false, &notbad)
		}
	}

	// tx inputs with Merkle paths map to the leading circuit slots
	zkindex := uint16(0)
	for i := uint16(0); i < tx.Nin; i++ {
		if tx.Inputs[i].Pathnum == 0 {
			continue
		}
		tx.Inputs[i].ZKIndex = zkindex
		c.blessInputPublicInputs(&zk.inputPublic[zkindex], &tx.Inputs[i], true, badsel)

		zk.inpaths[zkindex].enforcePath = c.bless(true)
		zkindex++
	}

	for i := uint16(0); i < zk.nin; i++ {
		if tx.Inputs[i].Pathnum != 0 {
			continue
		}
		tx.Inputs[i].ZKIndex = zkindex

		if zkindex < tx.Nin {
			c.blessInputPublicInputs(&zk.inputPublic[zkindex], &tx.Inputs[i], true, badsel)
		} else {
			c.blessInputPublicInputs(&zk.inputPublic[zkindex], &tx.Inputs[i], false, &notbad)
		}

		if zkindex < zk.ninWithPath {
			zk.inpaths[zkindex].enforcePath = c.bless(false)
		}
		zkindex++
	}
}

func (c *circuit) blessPrivateInputs(badsel *int) {
	zk, tx := c.zk, c.tx
	notbad := -99

	c.blessTxPrivateInputs(badsel)

	for i := uint16(0); i < zk.nout; i++ {
		if i < tx.Nout {
			c.blessOutputPrivateInputs(&zk.outputPrivate[i], &tx.Outputs[i], true, badsel)
		} else {
			c.blessOutputPrivateInputs(&zk.outputPrivate[i], &tx.Outputs[i], false, &notbad)
		}
	}

	for i := uint16(0); i < tx.Nin; i++ {
		if tx.Inputs[i].Pathnum == 0 {
			continue
		}
		zkindex := tx.Inputs[i].ZKIndex
		c.blessInputPrivateInputs(&zk.inputPrivate[zkindex], &tx.Inputs[i], true, badsel)

		zkinpath := &zk.inpaths[zkindex]
		zkinpath.merklePath = make([]zkvar, params.TxMerkleDepth)
		pathnum := tx.Inputs[i].Pathnum
		for j := 0; j < params.TxMerkleDepth; j++ {
			zkinpath.merklePath[j] = c.blessInput(false, badsel,
				tx.Inpaths[pathnum-1].MMerklePath[j], params.TxFieldBits, blessOpt{})
		}
	}

	for i := uint16(0); i < zk.nin; i++ {
		if tx.Inputs[i].Pathnum != 0 {
			continue
		}

		zkindex := tx.Inputs[i].ZKIndex
		if zkindex < tx.Nin {
			c.blessInputPrivateInputs(&zk.inputPrivate[zkindex], &tx.Inputs[i], true, badsel)
		} else {
			c.blessInputPrivateInputs(&zk.inputPrivate[zkindex], &tx.Inputs[i], false, &notbad)
		}

		if zkindex < zk.ninWithPath {
			// the key shape requires path variables even for path-less
			// inputs; bless dummies
			zkinpath := &zk.inpaths[zkindex]
			zkinpath.merklePath = make([]zkvar, params.TxMerkleDepth)
			for j := 0; j < params.TxMerkleDepth; j++ {
				zkinpath.merklePath[j] = c.blessInput(false, &notbad,
					*bigint.NewBig(99), params.TxFieldBits, blessOpt{anyval: true})
			}
		}
	}
}
