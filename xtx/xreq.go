// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xtx

import (
	"math"
	"strings"
	"sync"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/encode"
	"github.com/luxfi/cclib/params"
)

// Foreign blockchains with implied asset symbols.
const (
	BlockchainBTC = 1
	BlockchainBCH = 2
	BlockchainMax = BlockchainBCH

	SymbolBTC = "btc"
	SymbolBCH = "bch"
)

// Simple-request pinned knobs. Simple and naked requests do not carry
// these on the wire.
const (
	SimplePledge      = 50 // percent of base amount
	SimpleHoldTime    = 60
	MinPostholdTime   = 60
	SimpleWaitTime    = 60
	MaxExpireTime     = 2 * 60 * 60

	MainnetConfirmations = 12
	TestnetConfirmations = 2
	MainnetPaymentTime   = (60*MainnetConfirmations + 0) * 60
	TestnetPaymentTime   = (30*TestnetConfirmations + 30) * 60

	MatchingSecsPerEpoch = 20
	WaitDiscountInterval = MatchingSecsPerEpoch
)

var (
	paytimeOnce   sync.Once
	paytimeParams amounts.ExpMap
)

func paytimeMap() *amounts.ExpMap {
	paytimeOnce.Do(func() {
		paytimeParams = amounts.NewExpMap(10, 5, 255, 172800)
	})
	return &paytimeParams
}

// XreqFlags packs the request's boolean knobs; they travel in one byte.
type XreqFlags struct {
	AddImmediatelyToBlockchain   bool
	AutoAcceptMatches            bool
	NoMinimumAfterFirstMatch     bool
	MustLiquidateCrossingMinimum bool
	MustLiquidateBelowMinimum    bool
	HasSigningKey                bool
}

// Xreq is an exchange trade request.
type Xreq struct {
	Xtx

	Destination bigint.Big
	MinAmount   bigint.Big // units of the base asset
	MaxAmount   bigint.Big

	OpenAmount              bigint.Big
	MatchingAmount          bigint.Big
	BestAmount              bigint.Big
	BestOtherMatchingAmount bigint.Big
	PendingMatchAmount      bigint.Big

	SigningPrivateKey [64]byte
	SigningPublicKey  [32]byte

	ObjID params.Oid

	AddressID uint64 // wallet bookkeeping

	Seqnum         int64
	BestOtherSeqnum int64

	Blocktime         uint64
	Xreqnum           uint64
	DBSearchMaxXreqnum uint64
	RecalcTime        uint64
	LastMatched       uint64
	BestOtherXreqnum  uint64
	PendingMatchEpoch uint64
	PendingMatchOrder uint64

	BaseAsset  uint64 // always zero: the native asset
	QuoteAsset uint64 // the foreign blockchain id

	NetRateRequired amounts.UniFloat // buyer's max; seller's min
	WaitDiscount    amounts.UniFloat
	BaseCosts       amounts.UniFloat // units of the base asset
	QuoteCosts      amounts.UniFloat // units of the quote asset

	OpenRateRequired     amounts.UniFloat
	MatchingRateRequired amounts.UniFloat
	BestRate             amounts.UniFloat
	BestNetRate          amounts.UniFloat
	BestOtherNetRate     amounts.UniFloat

	PendingMatchRate     amounts.UniFloat
	PendingMatchHoldTime uint16

	ForTestnet bool
	ForWitness bool
	Recalc     bool

	ConsiderationRequired uint16 // units of 1% of base amount
	ConsiderationOffered  uint16
	Pledge                uint16
	HoldTime              uint16
	HoldTimeRequired      uint16
	MinWaitTime           uint16
	AcceptTimeRequired    uint16
	AcceptTimeOffered     uint16
	PaymentTime           uint16 // required by seller; offered by buyer
	Confirmations         uint16

	Flags XreqFlags

	Changed bool

	ForeignAsset   string
	ForeignAddress string
}

// NewXreq builds a request with the user-supplied terms; everything else
// starts at its defaults.
func NewXreq(objType int, expiration uint64, minAmount, maxAmount bigint.Big,
	netRateRequired, quoteCosts amounts.UniFloat, quoteAsset uint64,
	foreignAsset, foreignAddress string, forTestnet bool) *Xreq {

	x := &Xreq{
		Xtx:             *NewXtx(objType, expiration),
		MinAmount:       minAmount,
		MaxAmount:       maxAmount,
		NetRateRequired: netRateRequired,
		QuoteCosts:      quoteCosts,
		QuoteAsset:      quoteAsset,
		ForeignAsset:    foreignAsset,
		ForeignAddress:  foreignAddress,
		ForTestnet:      forTestnet,
	}
	x.OpenAmount = maxAmount
	x.Flags.AutoAcceptMatches = true
	return x
}

// DefaultPaymentTime returns the seller payment window for a network.
func DefaultPaymentTime(isTestnet bool) uint16 {
	if isTestnet {
		return TestnetPaymentTime
	}
	return MainnetPaymentTime
}

// DefaultConfirmations returns the confirmation count for a network.
func DefaultConfirmations(isTestnet bool) uint16 {
	if isTestnet {
		return TestnetConfirmations
	}
	return MainnetConfirmations
}

// ForeignAssetString maps an implied quote asset to its symbol.
func ForeignAssetString(quoteAsset uint64, foreignAsset string) string {
	if foreignAsset != "" {
		return foreignAsset
	}
	switch quoteAsset {
	case BlockchainBTC:
		return SymbolBTC
	case BlockchainBCH:
		return SymbolBCH
	}
	return foreignAsset
}

// RateSign gives the direction a participant profits in: buyers want
// lower rates.
func RateSign(isBuyer bool) int {
	if isBuyer {
		return -1
	}
	return 1
}

// NormalizeForeignAddress strips chain prefixes and validates the
// result. Only seller crosschain requests carry an address.
func (x *Xreq) NormalizeForeignAddress() error {
	if !TypeIsCrosschain(x.Type) || !TypeIsSeller(x.Type) {
		return nil
	}

	if x.QuoteAsset == BlockchainBCH {
		if pos := strings.LastIndexByte(x.ForeignAddress, ':'); pos >= 0 {
			x.ForeignAddress = x.ForeignAddress[pos+1:]
		}
	}

	return x.CheckForeignAddress()
}

// CheckForeignAddress validates the address format for the quote chain.
func (x *Xreq) CheckForeignAddress() error {
	if !TypeIsCrosschain(x.Type) || !TypeIsSeller(x.Type) {
		return nil
	}

	addr := x.ForeignAddress
	start := 0

	switch x.QuoteAsset {
	case BlockchainBTC:
		if len(addr) != 42 && len(addr) != 62 {
			return badValue("invalid foreign_address")
		}
		start = 4
		if !strings.HasPrefix(addr, "bc1q") && !strings.HasPrefix(addr, "tb1q") {
			return badValue("invalid foreign_address")
		}
	case BlockchainBCH:
		if len(addr) != 42 {
			return badValue("invalid foreign_address")
		}
		start = 1
		if addr[0] != 'p' && addr[0] != 'q' {
			return badValue("invalid foreign_address")
		}
	}

	// base-32 charset: digits and lower-case letters minus 1, b, i, o
	for i := start; i < len(addr); i++ {
		c := addr[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
			return badValue("invalid foreign_address")
		}
		if c == '1' || c == 'b' || c == 'i' || c == 'o' {
			return badValue("invalid foreign_address")
		}
	}

	return nil
}

// QuoteAmount computes the quote-asset side of a match, rounded up so
// the buyer never underpays.
func QuoteAmount(baseAmount, rate amounts.UniFloat) amounts.UniFloat {
	return amounts.UniMultiply(baseAmount, rate, 1)
}

// NetRate computes the participant's net rate at a given match rate,
// with costs folded in:
//
//	seller: (amount*rate - quote_costs) / (amount + base_costs)
//	buyer:  (amount*rate + quote_costs) / (amount - base_costs)
func (x *Xreq) NetRate(baseAmount, rate amounts.UniFloat, rounding int) amounts.UniFloat {
	sign := RateSign(TypeIsBuyer(x.Type))

	base := amounts.UniAdd(baseAmount, amounts.ApplySign(sign, x.BaseCosts), -rounding)
	if base.IsZero() {
		return amounts.NewUniFloat(float64(sign) * math.MaxFloat64)
	}

	quote := amounts.UniMultiply(baseAmount, rate, rounding)
	quote = amounts.UniAdd(quote, amounts.ApplySign(-sign, x.QuoteCosts), rounding)

	return amounts.UniDivide(quote, base, rounding)
}

// MatchRateRequired inverts NetRate: the match rate that meets the
// request's required net rate at a given amount.
func (x *Xreq) MatchRateRequired(baseAmount amounts.UniFloat, rounding int) amounts.UniFloat {
	sign := RateSign(TypeIsBuyer(x.Type))

	if baseAmount.IsZero() {
		return amounts.NewUniFloat(float64(sign) * math.MaxFloat64)
	}

	result := amounts.UniAdd(baseAmount, amounts.ApplySign(sign, x.BaseCosts), rounding)
	result = amounts.UniMultiply(result, x.NetRateRequired, 0)
	result = amounts.UniAdd(result, amounts.ApplySign(sign, x.QuoteCosts), rounding)

	return amounts.UniDivide(result, baseAmount, rounding)
}

// knobsOnWire reports whether the type serializes its knob bytes; the
// simple and naked forms pin them instead.
func (x *Xreq) knobsOnWire() bool {
	if x.Type >= params.TypeXcxNakedBuy && x.Type <= params.TypeXcxSimpleSell {
		return false
	}
	return x.Type != params.TypeXcxMiningTrade
}

// DataToWire serializes the request body.
func (x *Xreq) DataToWire(w *WireWriter) error {
	if !TypeIsXreq(x.Type) {
		return ErrBadXtxType
	}
	if x.Type == params.TypeXcxMiningBuy || x.Type == params.TypeXcxMiningSell {
		return ErrBadXtxType
	}

	if x.ExpireTime == 0 {
		return badValue("expire_time is 0")
	}
	if err := x.NormalizeForeignAddress(); err != nil {
		return err
	}

	w.PutUint(EncodeTime(x.ExpireTime), BlocktimeWireBytes)

	w.PutBig(&x.Destination, 32)

	amountBytes := int(x.AmountBits+7) / 8
	amountFP := amounts.Encode(&x.MinAmount, false, 0, ^uint(0), ^uint(0))
	w.PutUint(amountFP, amountBytes)

	if x.Type != params.TypeXcxMiningTrade {
		amountFP = amounts.Encode(&x.MaxAmount, false, 0, ^uint(0), ^uint(0))
		w.PutUint(amountFP, amountBytes)
	} else if x.MaxAmount != x.MinAmount {
		return badValue("max_amount must = min_amount for a trade request")
	}

	w.PutUint(amounts.WireEncode(x.NetRateRequired, 0), amounts.UniFloatWireBytes)

	if x.Type != params.TypeXcxMiningTrade {
		w.PutUint(amounts.WireEncode(x.WaitDiscount, 0), amounts.UniFloatWireBytes)
	} else if !x.WaitDiscount.Equal(amounts.NewUniFloat(1)) {
		return badValue("wait_discount must be 1 for a trade request")
	}

	if x.BaseAsset != 0 {
		return badValue("base_asset must be 0")
	}
	if !x.BaseCosts.IsZero() {
		return badValue("base_costs must be 0")
	}

	if x.QuoteAsset >= uint64(1)<<(BlockchainWireBytes*8) {
		return badValue("quote_asset exceeds limit")
	}
	w.PutUint(x.QuoteAsset, BlockchainWireBytes)

	if x.Type != params.TypeXcxMiningTrade {
		w.PutUint(amounts.WireEncode(x.QuoteCosts, 0), amounts.UniFloatWireBytes)
	} else if !x.QuoteCosts.IsZero() {
		return badValue("quote_costs must be 0 for a trade request")
	}

	if !x.knobsOnWire() {
		if x.ConsiderationRequired != 0 {
			return badValue("consideration_required non-zero")
		}
		if x.ConsiderationOffered != 0 {
			return badValue("consideration_offered non-zero")
		}
		if TypeIsSimple(x.Type) {
			if x.Pledge != SimplePledge {
				return badValue("pledge != standard simple pledge")
			}
		} else if x.Pledge != 0 {
			return badValue("pledge != 0")
		}
		if x.HoldTime != SimpleHoldTime || x.HoldTimeRequired != SimpleHoldTime {
			return badValue("hold times != standard hold time")
		}
		if x.AcceptTimeRequired != 0 || x.AcceptTimeOffered != 0 {
			return badValue("accept times non-zero")
		}
		if x.PaymentTime != DefaultPaymentTime(x.ForTestnet) {
			return badValue("payment_time != default payment time")
		}
		if x.Confirmations != DefaultConfirmations(x.ForTestnet) {
			return badValue("confirmations != default confirmations")
		}
	} else {
		for _, v := range []uint16{
			x.ConsiderationRequired, x.ConsiderationOffered, x.Pledge,
			x.HoldTime, x.HoldTimeRequired, x.AcceptTimeRequired, x.AcceptTimeOffered,
		} {
			if v > 255 {
				return badValue("knob value exceeds limit")
			}
		}
		w.PutUint(uint64(x.ConsiderationRequired), 1)
		w.PutUint(uint64(x.ConsiderationOffered), 1)
		w.PutUint(uint64(x.Pledge), 1)
		w.PutUint(uint64(x.HoldTime), 1)
		w.PutUint(uint64(x.HoldTimeRequired), 1)
		w.PutUint(uint64(x.AcceptTimeRequired), 1)
		w.PutUint(uint64(x.AcceptTimeOffered), 1)

		encodedPaymentTime := paytimeMap().Encode(uint32(x.PaymentTime), true)
		if encodedPaymentTime > 255 {
			return badValue("payment_time exceeds limits")
		}
		w.PutUint(uint64(encodedPaymentTime), 1)

		if x.Confirmations == 0 || uint64(x.Confirmations-1) >= uint64(1)<<(ConfirmationsWireBytes*8) {
			return badValue("confirmations exceeds limits")
		}
		w.PutUint(uint64(x.Confirmations-1), ConfirmationsWireBytes)
	}

	if x.MinWaitTime > 255 {
		return badValue("min_wait_time exceeds limit")
	}
	if x.Type != params.TypeXcxMiningTrade {
		w.PutUint(uint64(x.MinWaitTime), 1)
	} else if x.MinWaitTime != SimpleWaitTime {
		return badValue("min_wait_time invalid for trade request")
	}

	packedFlags := uint64(0)
	for _, f := range []bool{
		x.Flags.AddImmediatelyToBlockchain,
		x.Flags.AutoAcceptMatches,
		x.Flags.NoMinimumAfterFirstMatch,
		x.Flags.MustLiquidateCrossingMinimum,
		x.Flags.MustLiquidateBelowMinimum,
		x.Flags.HasSigningKey,
	} {
		packedFlags <<= 1
		if f {
			packedFlags |= 1
		}
	}
	w.PutUint(packedFlags, 1)

	if TypeIsCrosschain(x.Type) {
		if (x.QuoteAsset == BlockchainBTC && x.ForeignAsset == SymbolBTC) ||
			(x.QuoteAsset == BlockchainBCH && x.ForeignAsset == SymbolBCH) ||
			x.ForeignAsset == "" {
			w.PutUint(0, 1)
		} else {
			enc, err := encode.AlphaEncodeBest([]byte(x.ForeignAsset))
			if err != nil {
				return badValue("failure encoding foreign_asset")
			}
			if len(enc) > XtxMaxItemSize {
				return badValue("foreign_asset length exceeds limit")
			}
			w.PutUint(uint64(len(enc)), 1)
			w.PutBytes(enc)
		}
	}

	if TypeIsCrosschain(x.Type) && TypeIsSeller(x.Type) {
		enc, err := encode.AlphaEncodeBest([]byte(x.ForeignAddress))
		if err != nil {
			return badValue("failure encoding foreign_address")
		}
		if len(enc) == 0 || len(enc)-1 > XtxMaxItemSize {
			return badValue("foreign_address length exceeds limit")
		}
		w.PutUint(uint64(len(enc)-1), 1)
		w.PutBytes(enc)
	}

	if x.Flags.HasSigningKey {
		w.PutBytes(x.SigningPublicKey[:])
	}

	if x.Type == params.TypeXcxNakedBuy {
		// nonce space for the bare-message proof of work
		w.PutUint(0, 8)
	}

	return nil
}

// DataFromWire parses the request body.
func (x *Xreq) DataFromWire(r *WireReader) error {
	if !TypeIsXreq(x.Type) {
		return ErrBadXtxType
	}
	if x.Type == params.TypeXcxMiningBuy || x.Type == params.TypeXcxMiningSell {
		return ErrBadXtxType
	}

	x.ExpireTime = DecodeTime(r.GetUint(BlocktimeWireBytes))

	x.Destination = r.GetBig(32)

	if x.AmountBits == 0 {
		x.AmountBits = params.TxAmountBits
		x.ExponentBits = params.TxAmountExponentBits
	}
	amountBytes := int(x.AmountBits+7) / 8

	x.MinAmount = amounts.Decode(r.GetUint(amountBytes), false)

	if x.Type != params.TypeXcxMiningTrade {
		x.MaxAmount = amounts.Decode(r.GetUint(amountBytes), false)
	} else {
		x.MaxAmount = x.MinAmount
	}

	x.NetRateRequired = amounts.WireDecode(r.GetUint(amounts.UniFloatWireBytes))

	if x.Type != params.TypeXcxMiningTrade {
		x.WaitDiscount = amounts.WireDecode(r.GetUint(amounts.UniFloatWireBytes))
	} else {
		x.WaitDiscount = amounts.NewUniFloat(1)
	}

	x.BaseAsset = 0
	x.BaseCosts = amounts.UniFloat{}

	x.QuoteAsset = r.GetUint(BlockchainWireBytes)

	if x.Type != params.TypeXcxMiningTrade {
		x.QuoteCosts = amounts.WireDecode(r.GetUint(amounts.UniFloatWireBytes))
	} else {
		x.QuoteCosts = amounts.UniFloat{}
	}

	if !x.knobsOnWire() {
		x.ConsiderationRequired = 0
		x.ConsiderationOffered = 0
		if TypeIsSimple(x.Type) {
			x.Pledge = SimplePledge
		} else {
			x.Pledge = 0
		}
		x.HoldTime = SimpleHoldTime
		x.HoldTimeRequired = SimpleHoldTime
		x.AcceptTimeRequired = 0
		x.AcceptTimeOffered = 0
		x.PaymentTime = DefaultPaymentTime(x.ForTestnet)
		x.Confirmations = DefaultConfirmations(x.ForTestnet)
	} else {
		x.ConsiderationRequired = uint16(r.GetUint(1))
		x.ConsiderationOffered = uint16(r.GetUint(1))
		x.Pledge = uint16(r.GetUint(1))
		x.HoldTime = uint16(r.GetUint(1))
		x.HoldTimeRequired = uint16(r.GetUint(1))
		x.AcceptTimeRequired = uint16(r.GetUint(1))
		x.AcceptTimeOffered = uint16(r.GetUint(1))
		x.PaymentTime = uint16(paytimeMap().Decode(uint32(r.GetUint(1))))
		x.Confirmations = uint16(r.GetUint(ConfirmationsWireBytes)) + 1
	}

	if x.Type != params.TypeXcxMiningTrade {
		x.MinWaitTime = uint16(r.GetUint(1))
	} else {
		x.MinWaitTime = SimpleWaitTime
	}

	packed := r.GetUint(1)
	x.Flags.HasSigningKey = packed&1 != 0
	packed >>= 1
	x.Flags.MustLiquidateBelowMinimum = packed&1 != 0
	packed >>= 1
	x.Flags.MustLiquidateCrossingMinimum = packed&1 != 0
	packed >>= 1
	x.Flags.NoMinimumAfterFirstMatch = packed&1 != 0
	packed >>= 1
	x.Flags.AutoAcceptMatches = packed&1 != 0
	packed >>= 1
	x.Flags.AddImmediatelyToBlockchain = packed&1 != 0

	if TypeIsCrosschain(x.Type) {
		n := int(r.GetUint(1))
		if n == 0 {
			x.ForeignAsset = ForeignAssetString(x.QuoteAsset, "")
		} else {
			data := r.GetBytes(n)
			s, err := encode.AlphaDecodeBest(data, -1)
			if err != nil {
				return badValue("failure decoding foreign_asset")
			}
			x.ForeignAsset = s
		}
	}

	if TypeIsCrosschain(x.Type) && TypeIsSeller(x.Type) {
		n := int(r.GetUint(1)) + 1
		data := r.GetBytes(n)
		s, err := encode.AlphaDecodeBest(data, -1)
		if err != nil {
			return badValue("failure decoding foreign_address")
		}
		x.ForeignAddress = s

		if err := x.CheckForeignAddress(); err != nil {
			return err
		}
	}

	if x.Flags.HasSigningKey {
		copy(x.SigningPublicKey[:], r.GetBytes(32))
	}

	if x.Type == params.TypeXcxNakedBuy {
		r.GetUint(8) // pow nonce space
	}

	return nil
}

// ConvertTradeToBuy specializes a mining trade into its buy half.
func (x *Xreq) ConvertTradeToBuy() {
	x.Type = params.TypeXcxMiningBuy
	x.ForeignAddress = ""
}

// ConvertTradeToSell specializes a mining trade into its sell half with
// a distinct object id.
func (x *Xreq) ConvertTradeToSell() {
	x.Type = params.TypeXcxMiningSell
	x.Seqnum = 0
	x.Xreqnum = 0
	x.ObjID[0] ^= 1
}
