// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transaction

import (
	"encoding/binary"

	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/pow"
)

// Error-check levels for ToWire:
//
//	0  = report anything the blockchain would not accept
//	1  = allow values settable through the JSON interface on extraction
//	2+ = no error checking
const (
	ErrCheckStrict  = 0
	ErrCheckRelaxed = 1
	ErrCheckNone    = 2
)

func outputToWire(tx *TxPay, txout *TxOut, errCheck uint, w *wireWriter) error {
	if txout.NoAddress && errCheck < ErrCheckNone {
		return wireValueError("no-address != 0")
	}
	if txout.Addrparams.DestChain != tx.Outputs[0].Addrparams.DestChain && errCheck < ErrCheckNone {
		return wireValueError("destination-chain values do not all match")
	}

	if !txout.NoAddress {
		w.putBig(&txout.MAddress, params.TxAddressBytes)
	}

	if txout.AcceptanceRequired != tx.Outputs[0].AcceptanceRequired && errCheck < ErrCheckNone {
		return wireValueError("acceptance-required values do not all match")
	}
	if txout.AcceptanceRequired && errCheck < ErrCheckRelaxed {
		return wireValueError("acceptance-required != 0")
	}
	if txout.RepeatCount != 0 && errCheck < ErrCheckNone {
		return wireValueError("repeat-count != 0")
	}
	if tx.WireTag == params.TagTxXdomain {
		w.putUint(uint64(txout.MDomain), params.TxDomainBytes)
	}

	if txout.NoAsset && errCheck < ErrCheckNone {
		return wireValueError("no-asset != 0")
	}
	if txout.NoAmount && errCheck < ErrCheckNone {
		return wireValueError("no-amount != 0")
	}

	switch tx.TagType {
	case params.TypeMint:
		if errCheck < ErrCheckNone {
			if txout.AssetMask != 0 {
				return wireValueError("asset-mask != 0 in mint transaction")
			}
			if txout.AmountMask != 0 {
				return wireValueError("amount-mask != 0 in mint transaction")
			}
			if txout.MAssetEnc != 0 {
				return wireValueError("encrypted-asset != 0 in mint transaction")
			}
		}

	case params.TypeTxPay, params.TypeXcxSimpleBuy, params.TypeXcxSimpleSell,
		params.TypeXcxMiningTrade, params.TypeXcxNakedBuy, params.TypeXcxNakedSell:
		if errCheck < ErrCheckNone {
			if txout.AssetMask != params.TxAssetWireMask {
				return wireValueError("asset-mask != all 1's")
			}
			if txout.AmountMask != params.TxAmountMask {
				return wireValueError("amount-mask != all 1's")
			}
			if txout.MAssetEnc&^params.TxAssetWireMask != 0 {
				return wireValueError("encrypted-asset upper bits != all 0's")
			}
		}
		w.putUint(txout.MAssetEnc, params.TxAssetWireBytes)

	default:
		return ErrInvalidTxType
	}

	if txout.MAmountEnc&^params.TxAmountMask != 0 && errCheck < ErrCheckNone {
		return wireValueError("encrypted-amount upper bits != all 0's")
	}
	w.putUint(txout.MAmountEnc, params.TxAmountBytes)

	w.putBig(&txout.MCommitment, params.TxCommitmentBytes)

	return nil
}

func outputFromWire(tx *TxPay, txout *TxOut, r *wireReader) {
	txout.Addrparams.DestChain = tx.DestChain

	if !txout.NoAddress {
		txout.MAddress = r.getBig(params.TxAddressBytes)
	}

	txout.AcceptanceRequired = tx.AcceptanceRequired
	if tx.WireTag == params.TagTxXdomain {
		txout.MDomain = uint32(r.getUint(params.TxDomainBytes))
	} else {
		txout.MDomain = tx.DefaultDomain
	}

	if tx.TagType != params.TypeMint {
		txout.AssetMask = params.TxAssetWireMask
		txout.AmountMask = params.TxAmountMask
		txout.MAssetEnc = r.getUint(params.TxAssetWireBytes)
	}

	txout.MAmountEnc = r.getUint(params.TxAmountBytes)
	txout.MCommitment = r.getBig(params.TxCommitmentBytes)
}

func inputToWire(tx *TxPay, txin *TxIn, errCheck uint, w *wireWriter) error {
	if errCheck < ErrCheckNone {
		if txin.EnforceMasterSecret {
			return wireValueError("enforce-master-secret != 0")
		}
		if txin.EnforceSpendSecrets {
			return wireValueError("enforce-spend-secrets != 0")
		}
		if !txin.EnforceTrustSecrets {
			return wireValueError("enforce-trust-secrets != 1")
		}
		if txin.EnforceFreeze {
			return wireValueError("enforce-freeze != 0")
		}
		if txin.EnforceUnfreeze {
			return wireValueError("enforce-unfreeze != 0")
		}
		if txin.MerkleRoot != tx.Inputs[0].MerkleRoot {
			return wireValueError("merkle-root values do not all match")
		}
		if txin.Invalmax != tx.Inputs[0].Invalmax {
			return wireValueError("maximum-input-exponent values do not all match")
		}
		if txin.Delaytime != tx.Inputs[0].Delaytime {
			return wireValueError("delaytime values do not all match")
		}
		if txin.NoSerialnum {
			return wireValueError("no-serialnum != 0")
		}
		if !txin.SSpendspecHashed.IsZero() {
			return wireValueError("hashed-spendspec != 0")
		}
	}
	if txin.Delaytime != 0 && errCheck < ErrCheckRelaxed {
		return wireValueError("delaytime != 0")
	}

	if tx.WireTag == params.TagTxXdomain {
		w.putUint(uint64(txin.MDomain), params.TxDomainBytes)
	}

	if txin.Pathnum == 0 {
		w.putBig(&txin.MCommitment, params.TxCommitmentBytes)
		if !txin.NoSerialnum {
			w.putUint(txin.MCommitnum, params.TxCommitnumBytes)
		}
	}

	if !txin.NoSerialnum {
		w.putBig(&txin.SSerialnum, params.TxSerialnumBytes)
	}

	masked := txin.SHashkey
	bigint.Mask(&masked, params.TxHashkeyWireBits)
	if masked != txin.SHashkey && errCheck < ErrCheckNone {
		return wireValueError("hashkey exceeds wire bytes")
	}
	w.putBig(&txin.SHashkey, params.TxHashkeyWireBytes)

	return nil
}

func inputFromWire(tx *TxPay, txin *TxIn, r *wireReader) {
	txin.EnforceTrustSecrets = true
	txin.MerkleRoot = tx.TxMerkleRoot
	txin.Invalmax = tx.Invalmax
	txin.Delaytime = tx.Delaytime
	if tx.WireTag == params.TagTxXdomain {
		txin.MDomain = uint32(r.getUint(params.TxDomainBytes))
	} else {
		txin.MDomain = tx.DefaultDomain
	}

	if txin.Pathnum == 0 {
		txin.MCommitment = r.getBig(params.TxCommitmentBytes)
		if !txin.NoSerialnum {
			txin.MCommitnum = r.getUint(params.TxCommitnumBytes)
		}
	}

	if !txin.NoSerialnum {
		txin.SSerialnum = r.getBig(params.TxSerialnumBytes)
	}

	txin.SHashkey = r.getBig(params.TxHashkeyWireBytes)
}

func bodyToWire(tx *TxPay, errCheck uint, w *wireWriter) error {
	// param_level leads so the fast path can extract it without parsing
	w.putUint(tx.ParamLevel, params.TxBlockLevelBytes)

	// the 9-value proof rides in its compressed 9*32-1 byte form
	for i := 0; i < params.ZkproofVals-1; i++ {
		w.putBig(&tx.ZkProof[i], 32)
	}
	w.putBig(&tx.ZkProof[params.ZkproofVals-1], 31)

	if tx.TagType != params.TypeMint {
		w.putUint(uint64(tx.ZkKeyID), 1)
	} else if tx.ZkKeyID != params.TxMintZkkeyID && errCheck < ErrCheckNone {
		return wireValueError("invalid proof key id for mint transaction")
	}

	w.putUint(tx.DonationFP, params.TxDonationBytes)

	ninWithoutPath := tx.Nin - tx.NinWithPath

	switch tx.TagType {
	case params.TypeTxPay, params.TypeXcxSimpleBuy, params.TypeXcxSimpleSell,
		params.TypeXcxMiningTrade, params.TypeXcxNakedBuy, params.TypeXcxNakedSell:
		if errCheck < ErrCheckNone {
			if tx.Nout == 0 {
				return wireValueError("# outputs = 0")
			}
			if tx.Nin == 0 {
				return wireValueError("# inputs = 0")
			}
			if ninWithoutPath != 0 {
				return wireValueError("input without Merkle paths")
			}
		}
		if tx.Nout == 0 || tx.Nout > 16 || tx.NinWithPath == 0 || tx.NinWithPath > 16 {
			return ErrInvalidBinaryTx
		}
		nadj := byte(tx.Nout-1)<<4 | byte(tx.NinWithPath-1)
		w.putUint(uint64(nadj), 1)

	case params.TypeMint:
		if errCheck < ErrCheckNone {
			if tx.Nout != params.TxMintNout {
				return wireValueError("invalid # outputs for mint transaction")
			}
			if tx.Nin != 1 {
				return wireValueError("# inputs != 1 for mint transaction")
			}
		}

	default:
		return ErrInvalidTxType
	}

	for i := uint16(0); i < tx.Nout; i++ {
		if err := outputToWire(tx, &tx.Outputs[i], errCheck, w); err != nil {
			return err
		}
	}

	if tx.TagType != params.TypeMint {
		// path-bearing inputs precede path-less inputs on the wire
		count := uint16(0)
		for i := uint16(0); i < tx.Nin; i++ {
			if tx.Inputs[i].Pathnum == 0 {
				continue
			}
			if err := inputToWire(tx, &tx.Inputs[i], errCheck, w); err != nil {
				return err
			}
			count++
		}
		if count != tx.NinWithPath {
			return ErrInvalidBinaryTx
		}

		for i := uint16(0); i < tx.Nin; i++ {
			if tx.Inputs[i].Pathnum != 0 {
				continue
			}
			if err := inputToWire(tx, &tx.Inputs[i], errCheck, w); err != nil {
				return err
			}
		}
	}

	return nil
}

// ToWire frames the transaction into binbuf: size word, tag, zeroed PoW
// region and body. The object id is recomputed over the result.
func ToWire(tx *TxPay, errCheck uint, binbuf []byte) (int, error) {
	w := &wireWriter{buf: binbuf}

	w.putUint(0, 4) // patched with the total size below

	tx.WireTag = params.TypeToWireTag(tx.TagType)
	if tx.WireTag == 0 || tx.WireTag == params.TagBlock {
		return 0, ErrInvalidTxType
	}

	// any off-default domain promotes the tag to the xdomain form
	for i := uint16(0); i < tx.Nout; i++ {
		if tx.WireTag == params.TagTx && tx.Outputs[i].MDomain != tx.DefaultDomain {
			tx.WireTag = params.TagTxXdomain
		}
	}
	for i := uint16(0); i < tx.Nin; i++ {
		if tx.WireTag == params.TagTx && tx.Inputs[i].MDomain != tx.DefaultDomain {
			tx.WireTag = params.TagTxXdomain
		}
	}

	w.putUint(uint64(tx.WireTag), 4)

	var zeroPow [params.TxPowSize]byte
	w.putBytes(zeroPow[:])

	if err := bodyToWire(tx, errCheck, w); err != nil {
		return 0, err
	}

	if len(tx.AppendData) != 0 {
		tx.AppendWireOffset = uint32(w.pos)
		w.putBytes(tx.AppendData)
	}

	if err := w.err(); err != nil {
		return 0, err
	}

	binary.LittleEndian.PutUint32(binbuf, uint32(w.pos))

	oid, err := pow.ComputeObjID(binbuf)
	if err != nil {
		return 0, err
	}
	tx.ObjID = oid
	tx.HaveObjID = true

	return w.pos, nil
}

func bodyFromWire(tx *TxPay, r *wireReader) error {
	tx.ParamLevel = r.getUint(params.TxBlockLevelBytes)

	for i := 0; i < params.ZkproofVals-1; i++ {
		tx.ZkProof[i] = r.getBig(32)
	}
	tx.ZkProof[params.ZkproofVals-1] = r.getBig(31)

	if tx.TagType == params.TypeMint {
		tx.ZkKeyID = params.TxMintZkkeyID
	} else {
		tx.ZkKeyID = uint16(r.getUint(1))
	}

	tx.DonationFP = r.getUint(params.TxDonationBytes)

	ninWithoutPath := uint16(0)

	switch tx.TagType {
	case params.TypeTxPay, params.TypeXcxSimpleBuy, params.TypeXcxSimpleSell,
		params.TypeXcxMiningTrade, params.TypeXcxNakedBuy, params.TypeXcxNakedSell:
		nadj := byte(r.getUint(1))
		tx.Nout = uint16(nadj>>4) + 1
		tx.NinWithPath = uint16(nadj&15) + 1
		tx.Nin = tx.NinWithPath + ninWithoutPath

	case params.TypeMint:
		tx.Nout = params.TxMintNout

	default:
		return ErrInvalidTxType
	}

	if tx.Nout > params.TxMaxOut || tx.Nin > params.TxMaxIn || tx.NinWithPath > params.TxMaxInPath {
		return ErrInvalidBinaryTx
	}

	if tx.Nout != 0 && !tx.HaveAllowRestrictedAddresses {
		tx.AllowRestrictedAddresses = true
	}

	for i := uint16(0); i < tx.Nout; i++ {
		outputFromWire(tx, &tx.Outputs[i], r)

		if tx.Outputs[i].NoAddress && !tx.HaveAllowRestrictedAddresses {
			tx.AllowRestrictedAddresses = false
		}
	}

	for i := uint16(0); i < tx.Nin; i++ {
		if i < tx.NinWithPath {
			tx.Inputs[i].Pathnum = i + 1
		}
		inputFromWire(tx, &tx.Inputs[i], r)
	}

	if tx.TagType == params.TypeMint {
		if err := SetMintInputs(tx); err != nil {
			return err
		}
	}

	return nil
}

// typeHasBareMsg reports wire types that carry no transaction body.
func typeHasBareMsg(objType int) bool {
	switch objType {
	case params.TypeXcxNakedBuy, params.TypeXcxAccept, params.TypeXcxCancel, params.TypeXcxPayment:
		return true
	}
	return false
}

// typeIsXtx reports the exchange object range that may carry appended
// data after the transaction body.
func typeIsXtx(objType int) bool {
	return objType >= params.TypeXcxNakedBuy && objType <= params.TypeXcxMiningSell
}

// FromWire parses a framed transaction, replacing tx.
func FromWire(tx *TxPay, binbuf []byte) error {
	Init(tx)
	return addFromWire(tx, binbuf)
}

func addFromWire(tx *TxPay, binbuf []byte) error {
	r := &wireReader{buf: binbuf}

	wiresize := uint32(r.getUint(4))
	if int(wiresize) > len(binbuf) || wiresize < params.CCMsgHeaderSize {
		return ErrInvalidBinaryTx
	}
	r.buf = binbuf[:wiresize]

	tx.WireTag = uint32(r.getUint(4))
	tx.TagType = params.ObjType(tx.WireTag)
	if tx.TagType == params.TypeVoid || tx.TagType == params.TypeBlock {
		tx.TagType = params.TypeVoid
		return ErrInvalidBinaryTx
	}
	tx.TxType = uint16(tx.TagType)

	if params.HasPOW(tx.WireTag) {
		r.pos += params.TxPowSize
	}

	if !typeHasBareMsg(tx.TagType) {
		if err := bodyFromWire(tx, r); err != nil {
			return err
		}
	}

	if nappend := r.remaining(); nappend > 0 {
		if !typeIsXtx(tx.TagType) {
			return ErrInvalidBinaryTx
		}
		tx.AppendWireOffset = uint32(r.pos)
		tx.AppendData = append([]byte(nil), r.getBytes(nappend)...)
		SetRefhashFromAppendData(tx)
	}

	return r.err()
}

// ParamLevelFromWire extracts just the parameter level from a framed
// transaction without parsing the body.
func ParamLevelFromWire(binbuf []byte) (uint64, bool) {
	if len(binbuf) < params.CCMsgHeaderSize {
		return 0, false
	}
	size := binary.LittleEndian.Uint32(binbuf)
	tag := binary.LittleEndian.Uint32(binbuf[4:])

	objType := params.ObjType(tag)
	if objType == params.TypeVoid {
		return 0, false
	}
	if typeHasBareMsg(objType) {
		return 0, true
	}

	offset := params.CCMsgHeaderSize + params.TxPowSize
	if int(size) < offset+params.TxBlockLevelBytes || int(size) > len(binbuf) {
		return 0, false
	}

	var level uint64
	for i := 0; i < params.TxBlockLevelBytes; i++ {
		level |= uint64(binbuf[offset+i]) << (8 * i)
	}
	return level, true
}
