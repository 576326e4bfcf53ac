// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xtx

import (
	"fmt"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
)

// Match request dispositions.
const (
	MatchReqDispositionVoid = iota
	MatchReqDispositionCancelledAll
	MatchReqDispositionCancelledRem
	MatchReqDispositionExpiredAll
	MatchReqDispositionExpiredRem
	MatchReqDispositionOpenAll
	MatchReqDispositionOpenPart
	MatchReqDispositionMatchedPart
	MatchReqDispositionMatchedAll
	MatchReqDispositionInvalid
)

// Match statuses.
const (
	MatchStatusVoid = iota
	MatchStatusBuyerCancel
	MatchStatusSellerCancel
	MatchStatusMatched
	MatchStatusBuyerAccepted
	MatchStatusSellerAccepted
	MatchStatusAccepted
	MatchStatusPartPaidOpen
	MatchStatusPartPaidExpired
	MatchStatusPaid
	MatchStatusUnpaidExpired
	MatchStatusInvalid
)

// MinedAsset is the asset id credited by exchange mining.
const MinedAsset = 0

// MatchStatusString names a status for diagnostics and query responses.
func MatchStatusString(status int) string {
	names := []string{
		"Void", "Buyer Cancel", "Seller Cancel", "Matched",
		"Buyer Accepted", "Seller Accepted", "Accepted",
		"Part Paid Open", "Part Paid Expired", "Paid",
		"Unpaid Expired", "Invalid",
	}
	if status < 0 || status >= len(names) {
		status = len(names) - 1
	}
	return names[status]
}

// Xmatchreq is the snapshot of one side's request inside a match.
type Xmatchreq struct {
	Destination bigint.Big
	OpenAmount  bigint.Big

	SigningPublicKey [32]byte

	ObjID params.Oid

	Xreqnum    uint64
	AddressID  uint64
	Blocktime  uint64
	ExpireTime uint64

	Type        int
	Disposition int

	BaseAsset  uint64
	QuoteAsset uint64

	MinAmount bigint.Big
	MaxAmount bigint.Big

	NetRateRequired amounts.UniFloat
	WaitDiscount    amounts.UniFloat
	BaseCosts       amounts.UniFloat
	QuoteCosts      amounts.UniFloat

	ConsiderationRequired uint16
	ConsiderationOffered  uint16
	Pledge                uint16
	HoldTime              uint16
	HoldTimeRequired      uint16
	MinWaitTime           uint16
	AcceptTimeRequired    uint16
	AcceptTimeOffered     uint16
	PaymentTime           uint16
	Confirmations         uint16

	Flags XreqFlags

	ForeignAsset   string
	ForeignAddress string
}

// FromXreq snapshots a live request into the match-side form.
func (mr *Xmatchreq) FromXreq(x *Xreq) {
	mr.Destination = x.Destination
	mr.OpenAmount = x.OpenAmount
	mr.SigningPublicKey = x.SigningPublicKey
	mr.ObjID = x.ObjID
	mr.Xreqnum = x.Xreqnum
	mr.AddressID = x.AddressID
	mr.Blocktime = x.Blocktime
	mr.ExpireTime = x.ExpireTime
	mr.Type = x.Type
	mr.BaseAsset = x.BaseAsset
	mr.QuoteAsset = x.QuoteAsset
	mr.MinAmount = x.MinAmount
	mr.MaxAmount = x.MaxAmount
	mr.NetRateRequired = x.NetRateRequired
	mr.WaitDiscount = x.WaitDiscount
	mr.BaseCosts = x.BaseCosts
	mr.QuoteCosts = x.QuoteCosts
	mr.ConsiderationRequired = x.ConsiderationRequired
	mr.ConsiderationOffered = x.ConsiderationOffered
	mr.Pledge = x.Pledge
	mr.HoldTime = x.HoldTime
	mr.HoldTimeRequired = x.HoldTimeRequired
	mr.MinWaitTime = x.MinWaitTime
	mr.AcceptTimeRequired = x.AcceptTimeRequired
	mr.AcceptTimeOffered = x.AcceptTimeOffered
	mr.PaymentTime = x.PaymentTime
	mr.Confirmations = x.Confirmations
	mr.Flags = x.Flags
	mr.ForeignAsset = x.ForeignAsset
	mr.ForeignAddress = x.ForeignAddress
}

// Xmatch binds a buyer and a seller request at a rate and amount, and
// tracks the payment lifecycle.
type Xmatch struct {
	Xmatchnum uint64

	BuyerReq  Xmatchreq
	SellerReq Xmatchreq

	Type   int
	Status int

	BaseAmount bigint.Big
	Rate       amounts.UniFloat

	AmountPaid    amounts.UniFloat
	MiningAmount  bigint.Big

	HoldTime           uint16
	MatchPledge        uint16
	MatchTimestamp     uint64
	AcceptTimestamp    uint64
	FinalTimestamp     uint64
	AcceptTime         uint16
	MatchDeadline      uint64
	PaymentDeadline    uint64
	NextDeadline       uint64
	WalletPaid         bool
	WalletPaymentFinal bool
}

// QuoteAmount returns the foreign amount due for the match.
func (m *Xmatch) QuoteAmount() amounts.UniFloat {
	base := AmountAsUniFloat(m.BuyerReq.BaseAsset, &m.BaseAmount)
	return QuoteAmount(base, m.Rate)
}

// DebugString summarizes the match.
func (m *Xmatch) DebugString() string {
	return fmt.Sprintf("Xmatch num %d type %s status %s base_amount %s rate %v paid %v",
		m.Xmatchnum, TypeString(m.Type), MatchStatusString(m.Status),
		bigint.FormatDec(&m.BaseAmount), m.Rate.AsFloat(), m.AmountPaid.AsFloat())
}
