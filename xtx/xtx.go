// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package xtx implements the exchange-layer objects: trade requests,
// match state and foreign-chain payment claims, with their wire codecs
// and rate arithmetic.
package xtx

import (
	"errors"
	"fmt"

	"math/big"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/pow"
)

const (
	// XtxTimeDivisor scales encoded expiration times. At one-second
	// accuracy the 32-bit wire value overflows after 136 years.
	XtxTimeDivisor = 1

	// XtxTimeOffset rebases wire times to the chain epoch.
	XtxTimeOffset = 1546300800

	// XtxMaxItemSize bounds range-coded string items; larger length
	// bytes are reserved.
	XtxMaxItemSize = 247

	BlocktimeWireBytes     = 4
	ConfirmationsWireBytes = 1
	BlockchainWireBytes    = 2
)

var (
	ErrBadXtxType  = errors.New("xtx type not serializable")
	ErrBadXtxValue = errors.New("invalid xtx field value")
)

func badValue(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadXtxValue, msg)
}

// Xtx is the common part of every exchange object and the whole of a
// bare message.
type Xtx struct {
	Type         int
	Expiration   uint64 // seconds until expiration when small
	AmountBits   uint
	ExponentBits uint

	AmountCarryIn  bigint.Big
	AmountCarryOut bigint.Big

	ExpireTime  uint64
	DBSearchMax uint64
}

// NewXtx builds a base object. Values over one year are taken as
// absolute expire times.
func NewXtx(objType int, expiration uint64) *Xtx {
	x := &Xtx{Type: objType}
	if expiration > 365*24*60*60 {
		x.ExpireTime = expiration
	} else {
		x.Expiration = expiration
	}
	x.AmountBits = params.TxAmountBits
	x.ExponentBits = params.TxAmountExponentBits
	return x
}

// Type predicates. The serialized exchange range runs from naked buys to
// crosschain sell requests; the mining types are internal.

func TypeIsXtx(t int) bool {
	return t >= params.TypeXcxNakedBuy && t <= params.TypeXcxMiningSell
}

func TypeIsCrosschain(t int) bool {
	return t >= params.TypeXcxNakedBuy && t <= params.TypeXcxMiningSell
}

func TypeIsXpay(t int) bool {
	return t == params.TypeXcxPayment
}

func TypeIsXreq(t int) bool {
	return (t >= params.TypeXcxNakedBuy && t <= params.TypeXcxReqSell) ||
		(t >= params.TypeXcxMiningTrade && t <= params.TypeXcxMiningSell)
}

func TypeHasBareMsg(t int) bool {
	return t == params.TypeXcxNakedBuy || t == params.TypeXcxAccept ||
		t == params.TypeXcxCancel || t == params.TypeXcxPayment
}

func TypeIsNaked(t int) bool {
	return t == params.TypeXcxNakedBuy || t == params.TypeXcxNakedSell
}

func TypeIsBuyer(t int) bool {
	// a mining trade request is both a buy and a sell
	return t == params.TypeXcxReqBuy || t == params.TypeXcxSimpleBuy ||
		t == params.TypeXcxNakedBuy || t == params.TypeXcxMiningBuy ||
		t == params.TypeXcxMiningTrade
}

func TypeIsSeller(t int) bool {
	return t == params.TypeXcxReqSell || t == params.TypeXcxSimpleSell ||
		t == params.TypeXcxNakedSell || t == params.TypeXcxMiningSell ||
		t == params.TypeXcxMiningTrade
}

func TypeIsSimple(t int) bool {
	return t == params.TypeXcxSimpleBuy || t == params.TypeXcxSimpleSell ||
		t == params.TypeXcxMiningBuy || t == params.TypeXcxMiningSell ||
		t == params.TypeXcxMiningTrade
}

// TypeString names an object type for diagnostics.
func TypeString(t int) string {
	names := []string{
		"VOID",
		"Mint", "Send", "Block",
		"Crosschain Naked Buy Request", "Crosschain Naked Sell Request",
		"Crosschain Simple Buy Request", "Crosschain Simple Sell Request",
		"Crosschain Buy Request", "Crosschain Sell Request",
		"Crosschain Accept", "Crosschain Cancel",
		"Crosschain Payment Claim",
		"INVALID",
	}
	if t < 0 || t >= len(names) {
		t = len(names) - 1
	}
	return names[t]
}

// EncodeTime packs an absolute time into the 32-bit wire form.
func EncodeTime(timestamp uint64) uint64 {
	if timestamp <= XtxTimeOffset {
		return 0
	}
	v := (timestamp - XtxTimeOffset) / XtxTimeDivisor
	if v > 0xFFFFFFFF {
		v = 0xFFFFFFFF
	}
	return v
}

// DecodeTime is the inverse of EncodeTime.
func DecodeTime(encoded uint64) uint64 {
	return encoded*XtxTimeDivisor + XtxTimeOffset
}

// Serializer is implemented by each concrete object.
type Serializer interface {
	ObjType() int
	DataToWire(w *WireWriter) error
	DataFromWire(r *WireReader) error
}

// ObjType returns the base type.
func (x *Xtx) ObjType() int { return x.Type }

// DataToWire on the base type only serves bare messages, which have no
// body.
func (x *Xtx) DataToWire(w *WireWriter) error { return nil }

// DataFromWire on the base type only serves bare messages.
func (x *Xtx) DataFromWire(r *WireReader) error { return nil }

// ToWire writes the tag and body of obj into binbuf, returning the byte
// count.
func ToWire(obj Serializer, binbuf []byte) (int, error) {
	tag := params.TypeToWireTag(obj.ObjType())
	if tag == 0 {
		return 0, ErrBadXtxType
	}

	w := NewWireWriter(binbuf)
	w.PutUint(uint64(tag), 4)

	if err := obj.DataToWire(w); err != nil {
		return 0, err
	}
	if err := w.Err(); err != nil {
		return 0, err
	}
	return w.Pos(), nil
}

// FromWire parses a tagged body into obj. When readTag is set the buffer
// starts with a tag, which must name a known type and, when obj already
// has a non-zero type, match it.
func FromWire(obj Serializer, readTag bool, binbuf []byte) error {
	r := NewWireReader(binbuf)

	if readTag {
		tag := uint32(r.GetUint(4))
		objType := params.ObjType(tag)
		if objType == params.TypeVoid {
			return ErrBadXtxType
		}
		if t := obj.ObjType(); t != 0 && t != objType {
			return badValue("type mismatch")
		}
	}

	if err := obj.DataFromWire(r); err != nil {
		return err
	}
	return r.Err()
}

// SetPow computes the trailing 64-bit nonce stamp of a bare message
// buffer: everything between the tag and the nonce is hashed.
func SetPow(binbuf []byte, difficulty, expiration uint64) error {
	if len(binbuf) < 12 {
		return badValue("buffer too small for pow")
	}
	hashStart := 4
	hashBytes := len(binbuf) - hashStart - 8

	var nonce uint64
	rc := pow.ComputePOW(binbuf[hashStart:hashStart+hashBytes], difficulty, expiration, &nonce)
	if rc != pow.WorkDone {
		return fmt.Errorf("pow search failed: %d", rc)
	}

	for i := 0; i < 8; i++ {
		binbuf[hashStart+hashBytes+i] = byte(nonce >> (8 * i))
	}

	return CheckPow(binbuf[hashStart:], difficulty, expiration)
}

// CheckPow validates the trailing nonce of a bare message body.
func CheckPow(body []byte, difficulty, expiration uint64) error {
	if len(body) < 8 {
		return badValue("buffer too small for pow")
	}
	hashBytes := len(body) - 8

	var nonce uint64
	for i := 7; i >= 0; i-- {
		nonce = nonce<<8 | uint64(body[hashBytes+i])
	}

	return pow.CheckPOW(body[:hashBytes], difficulty, expiration, nonce)
}

// AmountAsUniFloat converts a base-unit amount to its floating form for
// rate math, with the asset's decimal scale divided out.
func AmountAsUniFloat(asset uint64, amount *bigint.Big) amounts.UniFloat {
	f := new(big.Float).SetPrec(128)
	f.SetInt(amount.ToBig())
	f.Quo(f, amounts.ScaleFactor(asset))
	v, _ := f.Float64()
	return amounts.NewUniFloat(v)
}
