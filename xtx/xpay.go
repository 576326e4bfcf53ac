// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xtx

import (
	"golang.org/x/crypto/blake2s"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/encode"
	"github.com/luxfi/cclib/params"
)

// SatoshiPerBitcoin scales foreign BTC amounts.
const SatoshiPerBitcoin = 1e8

// Xpay claims that a foreign-chain payment satisfied a match.
type Xpay struct {
	Xtx

	MatchLeftToPay  amounts.UniFloat
	ForeignAmount   amounts.UniFloat
	ForeignAmountFP uint64

	Xmatchnum                    uint64
	MatchTimestamp               uint64
	ForeignBlockchain            uint64
	ForeignConfirmationsRequired uint32
	PaymentTime                  uint16

	ForeignBlockID string
	ForeignTxID    string
	ForeignAddress string
}

// NewXpay builds a payment claim against a match.
func NewXpay(xmatchnum uint64, foreignAmount amounts.UniFloat, foreignBlockID, foreignTxID string) *Xpay {
	return &Xpay{
		Xtx:            *NewXtx(params.TypeXcxPayment, 0),
		Xmatchnum:      xmatchnum,
		ForeignAmount:  foreignAmount,
		ForeignBlockID: foreignBlockID,
		ForeignTxID:    foreignTxID,
	}
}

// PaymentIDHash derives the canonical identifier of the foreign payment.
// Every field entering the hash must be in canonical form, so each
// payment has exactly one identifier; the hash serves as a pseudo serial
// number that stops a payment being claimed twice.
func (x *Xpay) PaymentIDHash() (params.Oid, error) {
	var oid params.Oid

	if x.ForeignBlockchain == 0 {
		return oid, badValue("foreign_blockchain must be set from the match")
	}

	// the foreign blockchain id keys the hash
	var chain [8]byte
	for i := 0; i < 8; i++ {
		chain[i] = byte(x.ForeignBlockchain >> (8 * i))
	}
	h, err := blake2s.New128(chain[:])
	if err != nil {
		return oid, err
	}

	if x.ForeignBlockchain > BlockchainMax {
		// some future foreign chains may need the block id to make the
		// txid unique
		h.Write([]byte(x.ForeignBlockID))
	}
	h.Write([]byte(x.ForeignTxID))
	h.Write([]byte(x.ForeignAddress))

	copy(oid[:], h.Sum(nil))
	return oid, nil
}

// DataToWire serializes the claim. The foreign blockchain and address
// are not serialized; the receiving side restores them from the match.
// The block id rides last because it is optional.
func (x *Xpay) DataToWire(w *WireWriter) error {
	if !TypeIsXpay(x.Type) {
		return ErrBadXtxType
	}

	w.PutUint(x.Xmatchnum, 8)

	// round down so the claimed amount never exceeds the actual amount
	amountFP := amounts.WireEncode(x.ForeignAmount, -1)
	w.PutUint(amountFP, amounts.UniFloatWireBytes)

	enc, err := encode.AlphaEncodeBest([]byte(x.ForeignTxID))
	if err != nil {
		return badValue("failure encoding foreign_txid")
	}
	if len(enc) == 0 || len(enc)-1 > XtxMaxItemSize {
		return badValue("foreign_txid length exceeds limit")
	}
	w.PutUint(uint64(len(enc)-1), 1)
	w.PutBytes(enc)

	enc, err = encode.AlphaEncodeBest([]byte(x.ForeignBlockID))
	if err != nil {
		return badValue("failure encoding foreign_block_id")
	}
	w.PutBytes(enc)

	return nil
}

// DataFromWire parses the claim.
func (x *Xpay) DataFromWire(r *WireReader) error {
	if !TypeIsXpay(x.Type) {
		return ErrBadXtxType
	}

	x.Xmatchnum = r.GetUint(8)

	x.ForeignAmountFP = r.GetUint(amounts.UniFloatWireBytes)
	x.ForeignAmount = amounts.WireDecode(x.ForeignAmountFP)

	n := int(r.GetUint(1)) + 1
	data := r.GetBytes(n)
	s, err := encode.AlphaDecodeBest(data, -1)
	if err != nil {
		return badValue("failure decoding foreign_txid")
	}
	x.ForeignTxID = s

	if rem := r.Remaining(); rem > 0 {
		data = r.GetBytes(rem)
		s, err = encode.AlphaDecodeBest(data, -1)
		if err != nil {
			return badValue("failure decoding foreign_block_id")
		}
		x.ForeignBlockID = s
	} else {
		x.ForeignBlockID = ""
	}

	return nil
}
