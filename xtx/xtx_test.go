// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xtx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
)

func TestEncodeDecodeTime(t *testing.T) {
	ts := uint64(XtxTimeOffset + 123456)
	enc := EncodeTime(ts)
	require.Equal(t, uint64(123456), enc)
	require.Equal(t, ts, DecodeTime(enc))

	require.Equal(t, uint64(0), EncodeTime(0))
}

func TestTypePredicates(t *testing.T) {
	require.True(t, TypeIsXreq(params.TypeXcxNakedBuy))
	require.True(t, TypeIsXreq(params.TypeXcxReqSell))
	require.False(t, TypeIsXreq(params.TypeXcxPayment))
	require.True(t, TypeIsXpay(params.TypeXcxPayment))

	require.True(t, TypeIsBuyer(params.TypeXcxMiningTrade))
	require.True(t, TypeIsSeller(params.TypeXcxMiningTrade))

	require.True(t, TypeHasBareMsg(params.TypeXcxNakedBuy))
	require.False(t, TypeHasBareMsg(params.TypeXcxNakedSell))
}

func buildNakedBuy(t *testing.T) *Xreq {
	t.Helper()

	min := *bigint.NewBig(10)
	max := *bigint.NewBig(100)

	x := NewXreq(params.TypeXcxNakedBuy, 0, min, max,
		amounts.NewUniFloat(0.00001), amounts.UniFloat{}, BlockchainBTC,
		SymbolBTC, "", false)
	x.ExpireTime = XtxTimeOffset + 1000000
	x.WaitDiscount = amounts.NewUniFloat(1)
	x.Pledge = 0
	x.HoldTime = SimpleHoldTime
	x.HoldTimeRequired = SimpleHoldTime
	x.PaymentTime = DefaultPaymentTime(false)
	x.Confirmations = DefaultConfirmations(false)
	return x
}

func TestXreqNakedBuyRoundTrip(t *testing.T) {
	x := buildNakedBuy(t)

	buf := make([]byte, 4096)
	n, err := ToWire(x, buf)
	require.NoError(t, err)
	require.Greater(t, n, 4)

	back := &Xreq{Xtx: Xtx{Type: params.TypeXcxNakedBuy}}
	require.NoError(t, FromWire(back, true, buf[:n]))

	require.Equal(t, x.ExpireTime, back.ExpireTime)
	require.Equal(t, x.Destination, back.Destination)
	require.Equal(t, x.MinAmount, back.MinAmount)
	require.Equal(t, x.MaxAmount, back.MaxAmount)
	require.Equal(t, amounts.WireEncode(x.NetRateRequired, 0), amounts.WireEncode(back.NetRateRequired, 0))
	require.Equal(t, x.QuoteAsset, back.QuoteAsset)
	require.Equal(t, SymbolBTC, back.ForeignAsset)
	require.Equal(t, x.PaymentTime, back.PaymentTime)
	require.Equal(t, x.Confirmations, back.Confirmations)
	require.Equal(t, x.Flags, back.Flags)
}

func TestXreqNakedBuyPow(t *testing.T) {
	x := buildNakedBuy(t)

	buf := make([]byte, 4096)
	n, err := ToWire(x, buf)
	require.NoError(t, err)

	difficulty := uint64(1) << 48
	require.NoError(t, SetPow(buf[:n], difficulty, x.ExpireTime))
	require.NoError(t, CheckPow(buf[4:n], difficulty, x.ExpireTime))

	// perturbing the body invalidates the stamp
	buf[12] ^= 1
	require.Error(t, CheckPow(buf[4:n], difficulty, x.ExpireTime))
}

func TestXreqSellerAddressRoundTrip(t *testing.T) {
	min := *bigint.NewBig(5)
	max := *bigint.NewBig(50)

	x := NewXreq(params.TypeXcxSimpleSell, 0, min, max,
		amounts.NewUniFloat(2.5), amounts.NewUniFloat(0.0001), BlockchainBTC,
		SymbolBTC, "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", false)
	x.ExpireTime = XtxTimeOffset + 5000
	x.WaitDiscount = amounts.NewUniFloat(1)
	x.Pledge = SimplePledge
	x.HoldTime = SimpleHoldTime
	x.HoldTimeRequired = SimpleHoldTime
	x.PaymentTime = DefaultPaymentTime(false)
	x.Confirmations = DefaultConfirmations(false)
	x.MinWaitTime = 30

	buf := make([]byte, 4096)
	n, err := ToWire(x, buf)
	require.NoError(t, err)

	back := &Xreq{Xtx: Xtx{Type: params.TypeXcxSimpleSell}}
	require.NoError(t, FromWire(back, true, buf[:n]))
	require.Equal(t, x.ForeignAddress, back.ForeignAddress)
	require.Equal(t, x.MinWaitTime, back.MinWaitTime)
}

func TestForeignAddressValidation(t *testing.T) {
	x := &Xreq{Xtx: Xtx{Type: params.TypeXcxSimpleSell}, QuoteAsset: BlockchainBTC}

	x.ForeignAddress = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
	require.NoError(t, x.CheckForeignAddress())

	x.ForeignAddress = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdb" // 'b' invalid
	require.Error(t, x.CheckForeignAddress())

	x.ForeignAddress = "xxx"
	require.Error(t, x.CheckForeignAddress())

	// BCH prefix strips during normalization
	x.QuoteAsset = BlockchainBCH
	x.ForeignAddress = "bitcoincash:qp05fd87402sh5j9596wd5cq072sjucc050ynyjjdl"
	require.NoError(t, x.NormalizeForeignAddress())
	require.Equal(t, "qp05fd87402sh5j9596wd5cq072sjucc050ynyjjdl", x.ForeignAddress)

	// buyers carry no address
	x.Type = params.TypeXcxSimpleBuy
	x.ForeignAddress = "whatever"
	require.NoError(t, x.CheckForeignAddress())
}

func TestNetRateMatchRateInverse(t *testing.T) {
	x := &Xreq{Xtx: Xtx{Type: params.TypeXcxReqSell}}
	x.NetRateRequired = amounts.NewUniFloat(1.5)
	x.BaseCosts = amounts.NewUniFloat(0.25)
	x.QuoteCosts = amounts.NewUniFloat(0.125)

	amount := amounts.NewUniFloat(100)

	rate := x.MatchRateRequired(amount, 0)
	net := x.NetRate(amount, rate, 0)

	diff := net.AsFloat() - x.NetRateRequired.AsFloat()
	require.InDelta(t, 0, diff, 1e-6)

	// the seller's required rate rises with costs
	x2 := *x
	x2.QuoteCosts = amounts.NewUniFloat(1.0)
	rate2 := x2.MatchRateRequired(amount, 0)
	require.Greater(t, rate2.AsFloat(), rate.AsFloat())

	// a buyer's falls
	xb := &Xreq{Xtx: Xtx{Type: params.TypeXcxReqBuy}}
	xb.NetRateRequired = amounts.NewUniFloat(1.5)
	xb.BaseCosts = x.BaseCosts
	xb.QuoteCosts = x.QuoteCosts
	rateBuy := xb.MatchRateRequired(amount, 0)
	require.Less(t, rateBuy.AsFloat(), rate.AsFloat())
}

func TestXpayRoundTrip(t *testing.T) {
	x := NewXpay(42, amounts.NewUniFloat(0.125),
		"00000000000000000002c9a6bca2d227e1d342dd0ab56c0b11e897d1c1f63bf4",
		"71b9cd0864c66880fd4fb16ac2f0102c949d0df73f58e8f05516e410af1ccf9c")

	buf := make([]byte, 4096)
	n, err := ToWire(x, buf)
	require.NoError(t, err)

	back := &Xpay{Xtx: Xtx{Type: params.TypeXcxPayment}}
	require.NoError(t, FromWire(back, true, buf[:n]))

	require.Equal(t, x.Xmatchnum, back.Xmatchnum)
	require.Equal(t, x.ForeignTxID, back.ForeignTxID)
	require.Equal(t, x.ForeignBlockID, back.ForeignBlockID)
	// the amount round-trips through the rounded-down wire form
	require.Equal(t, amounts.WireEncode(x.ForeignAmount, -1), amounts.WireEncode(back.ForeignAmount, -1))
}

func TestPaymentIDHash(t *testing.T) {
	x := NewXpay(1, amounts.NewUniFloat(1), "block", "txid")
	x.ForeignBlockchain = BlockchainBTC
	x.ForeignAddress = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"

	h1, err := x.PaymentIDHash()
	require.NoError(t, err)
	h2, err := x.PaymentIDHash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	// for BTC the block id stays out of the hash
	x2 := *x
	x2.ForeignBlockID = "other"
	h3, err := x2.PaymentIDHash()
	require.NoError(t, err)
	require.Equal(t, h1, h3)

	// the txid and address are both bound
	x2 = *x
	x2.ForeignTxID = "txid2"
	h4, err := x2.PaymentIDHash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h4)

	x2 = *x
	x2.ForeignBlockchain = 0
	_, err = x2.PaymentIDHash()
	require.Error(t, err)
}

func TestXmatchDebug(t *testing.T) {
	m := &Xmatch{Xmatchnum: 7, Type: params.TypeXcxSimpleBuy, Status: MatchStatusMatched}
	m.BaseAmount = *bigint.NewBig(1000)
	m.Rate = amounts.NewUniFloat(2)
	require.Contains(t, m.DebugString(), "Matched")

	var req Xreq
	req.Type = params.TypeXcxSimpleBuy
	req.MinAmount = *bigint.NewBig(1)
	m.BuyerReq.FromXreq(&req)
	require.Equal(t, req.MinAmount, m.BuyerReq.MinAmount)
}
