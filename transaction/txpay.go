// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transaction holds the in-memory transaction model, the rule
// prechecks that run before proof generation, the dependent-field
// derivations, and the deterministic wire codec.
package transaction

import (
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
)

// AddressParams identifies a payment destination on a chain.
type AddressParams struct {
	DestID uint64 // wallet bookkeeping only
	Flags  uint64 // wallet bookkeeping only

	Dest      bigint.Big
	DestChain uint64
	Paynum    uint32
}

// SpendSecretParams carries the per-input spend policy: gating bits,
// required secret counts, time locks and the slot usage map. Restricted
// addresses live in the upper monitor-secret slots, two per slot.
type SpendSecretParams struct {
	Nsecrets uint16
	Nraddrs  uint16

	EnforceSpendSpecWithSpendSecrets bool
	EnforceSpendSpecWithTrustSecrets bool
	RequiredSpendSpecHash            bigint.Big
	AllowMasterSecret                bool
	AllowFreeze                      bool
	AllowTrustUnfreeze               bool
	RequirePublicHashkey             bool
	RestrictAddresses                bool
	SpendLocktime                    uint64
	TrustLocktime                    uint64
	SpendDelaytime                   uint8
	TrustDelaytime                   uint8

	UseSpendSecret [params.TxMaxSecrets]bool
	UseTrustSecret [params.TxMaxSecrets]bool

	RequiredSpendSecrets uint16
	RequiredTrustSecrets uint16
	Destnum              uint32

	AcceptanceRequired bool // wallet bookkeeping only
	StaticAddress      bool // wallet bookkeeping only

	Addrparams AddressParams
}

// SpendSecret is one slot of an input's secret chain. Each value is
// derivable from the one before it; the Have* flags track which links
// were supplied versus derived.
type SpendSecret struct {
	SpendSecretNumber uint32

	HaveMasterSecret      bool
	HaveRootSecret        bool
	HaveSpendSecret       bool
	HaveTrustSecret       bool
	HaveMonitorSecret     bool
	HaveRestrictedAddress bool
	HaveReceiveSecret     bool

	MasterSecret  bigint.Big
	RootSecret    bigint.Big
	SpendSecret   bigint.Big
	TrustSecret   bigint.Big
	MonitorSecret bigint.Big
	ReceiveSecret bigint.Big
}

// SpendSecrets is the full 8-slot secret array of one input.
type SpendSecrets [params.TxMaxSecretSlots]SpendSecret

// TxOut is one transaction output.
type TxOut struct {
	Addrparams AddressParams

	NoAddress          bool
	MAddress           bigint.Big
	AcceptanceRequired bool
	RepeatCount        uint32

	MDomain uint32

	Asset     uint64
	NoAsset   bool
	AssetMask uint64
	AssetPad  uint64
	MAssetEnc uint64

	AmountFP   uint64
	NoAmount   bool
	AmountMask uint64
	AmountPad  uint64
	MAmountEnc uint64

	MCommitment bigint.Big
}

// TxIn is one transaction input, spending a billet.
type TxIn struct {
	EnforceMasterSecret bool
	EnforceSpendSecrets bool
	EnforceTrustSecrets bool
	EnforceFreeze       bool
	EnforceUnfreeze     bool

	Params  SpendSecretParams
	Secrets SpendSecrets

	HaveMasterSecretValid bool
	HaveSpendSecretsValid bool
	HaveTrustSecretsValid bool
	MasterSecretValid     bool
	SpendSecretsValid     bool
	TrustSecretsValid     bool

	MerkleRoot bigint.Big
	Invalmax   uint16
	Delaytime  uint16

	MDomain       uint32
	Asset         uint64
	AmountFP      uint64
	MCommitmentIV bigint.Big
	MCommitment   bigint.Big
	MCommitnum    uint64

	NoSerialnum      bool
	SSerialnum       bigint.Big
	SHashkey         bigint.Big
	SSpendspecHashed bigint.Big

	Pathnum uint16 // path index + 1, zero when the commitment is published
	ZKIndex uint16 // assigned during blessing
}

// TxInPath is one input's Merkle path.
type TxInPath struct {
	MMerklePath [params.TxMerkleDepth]bigint.Big
}

// TxPay is the full transaction under construction or verification.
type TxPay struct {
	// construction modes, never serialized
	NoPrecheck        bool
	NoProof           bool
	NoVerify          bool
	TestUseLargerZkKey bool
	TestMakeBad       uint32
	RandomSeed        uint64

	// defaults copied into outputs and inputs as they are parsed
	HaveDestChain          bool
	HaveDefaultDomain      bool
	HaveAcceptanceRequired bool
	HaveInvalmax           bool
	HaveDelaytime          bool
	DestChain              uint64
	DefaultDomain          uint32
	AcceptanceRequired     bool
	Invalmax               uint16
	Delaytime              uint16

	// wire framing
	WireTag uint32
	TagType int
	ZkKeyID uint16
	ZkProof [params.ZkproofVals]bigint.Big

	// combined exchange transactions settle amounts across objects
	AmountCarryIn  bigint.Big
	AmountCarryOut bigint.Big

	// appended data rides after the body on exchange wire types
	AppendWireOffset uint32
	AppendData       []byte

	HaveObjID bool
	ObjID     params.Oid

	// public header, bound into the proof
	TxType      uint16
	SourceChain uint64
	ParamLevel  uint64
	ParamTime   uint64
	Revision    uint32
	Expiration  uint64
	Refhash     bigint.Big
	Reserved    uint64
	DonationFP  uint64
	Outvalmin   uint16
	Outvalmax   uint16

	HaveAllowRestrictedAddresses bool
	AllowRestrictedAddresses     bool

	TxMerkleRoot         bigint.Big
	OverrideCommitmentIV bool
	MCommitmentIV        bigint.Big

	// derived during build
	Nsecrets  uint16
	Nraddrs   uint16
	Nassets   uint16
	AssetList [params.TxMaxNAssets]uint64

	Nout        uint16
	Nin         uint16
	NinWithPath uint16
	Outputs     [params.TxMaxOut]TxOut
	Inputs      [params.TxMaxIn]TxIn
	Inpaths     [params.TxMaxInPath]TxInPath
}

// Init resets a transaction to its zero state.
func Init(tx *TxPay) {
	*tx = TxPay{}
}

// InputPath returns the Merkle path of an input, or nil for a path-less
// input.
func (tx *TxPay) InputPath(in *TxIn) *TxInPath {
	if in.Pathnum == 0 {
		return nil
	}
	return &tx.Inpaths[in.Pathnum-1]
}
