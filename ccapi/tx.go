// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ccapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/pow"
	"github.com/luxfi/cclib/transaction"
)

// parseAmountCommon consumes the width declarations shared by the
// amount codec commands.
func parseAmountCommon(fn string, root jmap) (isDonation bool, err error) {
	if v, ok, err := root.optBool(fn, "is-donation"); err != nil {
		return false, err
	} else if ok {
		isDonation = v
	}

	key := "amount-bits"
	want := uint64(params.TxAmountBits)
	if isDonation {
		key = "donation-bits"
		want = params.TxDonationBits
	}
	bits, err := root.requireUint(fn, key, 8)
	if err != nil {
		return false, err
	}
	if bits != want {
		return false, fmt.Errorf("%w: %s: %s", ErrInvalidValue, fn, key)
	}

	expBits, err := root.requireUint(fn, "exponent-bits", 8)
	if err != nil {
		return false, err
	}
	if expBits != params.TxAmountExponentBits {
		return false, fmt.Errorf("%w: %s: exponent-bits", ErrInvalidValue, fn)
	}

	return isDonation, nil
}

func encodeAmount(fn string, root jmap) (string, error) {
	isDonation, err := parseAmountCommon(fn, root)
	if err != nil {
		return "", err
	}

	minExp := uint(0)
	maxExp := ^uint(0)
	rounding := ^uint(0)

	if v, ok, err := root.optUint(fn, "minimum-exponent", 32); err != nil {
		return "", err
	} else if ok {
		minExp = uint(v)
	}
	if v, ok, err := root.optUint(fn, "maximum-exponent", 32); err != nil {
		return "", err
	} else if ok {
		maxExp = uint(v)
	}
	if v, ok, err := root.optUint(fn, "rounding", 32); err != nil {
		return "", err
	} else if ok {
		rounding = uint(v)
	}
	if maxExp < minExp {
		return "", fmt.Errorf("%w: %s: maximum-exponent", ErrInvalidValue, fn)
	}

	amount, err := root.requireIntValue(fn, "amount", params.TxInputBits, nil)
	if err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	result := amounts.Encode(&amount, isDonation, minExp, maxExp, rounding)
	if result == amounts.EncodeError {
		return "", fmt.Errorf("%w: %s: amount", ErrInvalidValue, fn)
	}

	return `{"amount-encoded":"` + hexUint(result) + `"}`, nil
}

func decodeAmount(fn string, root jmap) (string, error) {
	isDonation, err := parseAmountCommon(fn, root)
	if err != nil {
		return "", err
	}

	bits := uint(params.TxAmountBits)
	if isDonation {
		bits = params.TxDonationBits
	}
	encoded, err := root.requireUint(fn, "amount-encoded", bits)
	if err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	v := amounts.Decode(encoded, isDonation)
	return `{"amount":"` + hexBig(&v) + `"}`, nil
}

// outputFromJSON fills one transaction output.
func (c *Client) outputFromJSON(fn string, root jmap, tx *transaction.TxPay, txout *transaction.TxOut) error {
	fieldMax := bigint.FieldMax()

	dest, err := root.requireIntValue(fn, "destination", 0, fieldMax)
	if err != nil {
		return err
	}
	txout.Addrparams.Dest = dest

	if v, ok, err := root.optUint(fn, "destination-chain", params.TxChainBits); err != nil {
		return err
	} else if ok {
		txout.Addrparams.DestChain = v
	} else if tx.HaveDestChain {
		txout.Addrparams.DestChain = tx.DestChain
	} else {
		return fmt.Errorf("%w: %s: destination-chain", ErrMissingKey, fn)
	}

	if v, ok, err := root.optUint(fn, "payment-number", params.TxPaynumBits); err != nil {
		return err
	} else if ok {
		txout.Addrparams.Paynum = uint32(v)
	}

	if v, ok, err := root.optBool(fn, "no-address"); err != nil {
		return err
	} else if ok {
		txout.NoAddress = v
	}
	if v, ok, err := root.optBool(fn, "acceptance-required"); err != nil {
		return err
	} else if ok {
		txout.AcceptanceRequired = v
	} else if tx.HaveAcceptanceRequired {
		txout.AcceptanceRequired = tx.AcceptanceRequired
	}
	if v, ok, err := root.optUint(fn, "repeat-count", 32); err != nil {
		return err
	} else if ok {
		txout.RepeatCount = uint32(v)
	}

	if v, ok, err := root.optUint(fn, "domain", params.TxDomainBits); err != nil {
		return err
	} else if ok {
		txout.MDomain = uint32(v)
	} else {
		txout.MDomain = tx.DefaultDomain
	}

	if v, ok, err := root.optUint(fn, "asset", params.TxAssetBits); err != nil {
		return err
	} else if ok {
		txout.Asset = v
	}
	if v, ok, err := root.optBool(fn, "no-asset"); err != nil {
		return err
	} else if ok {
		txout.NoAsset = v
	}
	if v, ok, err := root.optUint(fn, "asset-mask", params.TxAssetBits); err != nil {
		return err
	} else if ok {
		txout.AssetMask = v
	} else if tx.TagType != params.TypeMint {
		txout.AssetMask = params.TxAssetWireMask
	}

	amount, err := root.requireUint(fn, "amount", params.TxAmountBits)
	if err != nil {
		return err
	}
	txout.AmountFP = amount

	if v, ok, err := root.optBool(fn, "no-amount"); err != nil {
		return err
	} else if ok {
		txout.NoAmount = v
	}
	if v, ok, err := root.optUint(fn, "amount-mask", params.TxAmountBits); err != nil {
		return err
	} else if ok {
		txout.AmountMask = v
	} else if tx.TagType != params.TypeMint {
		txout.AmountMask = params.TxAmountMask
	}

	return root.checkEmpty(fn)
}

// inputFromJSON fills one transaction input, with its secrets and
// optional Merkle path.
func (c *Client) inputFromJSON(fn string, root jmap, tx *transaction.TxPay, txin *transaction.TxIn,
	path *transaction.TxInPath, noPrecheck bool) (hasPath bool, err error) {

	fieldMax := bigint.FieldMax()

	for _, f := range []struct {
		key string
		dst *bool
	}{
		{"enforce-master-secret", &txin.EnforceMasterSecret},
		{"enforce-spend-secrets", &txin.EnforceSpendSecrets},
		{"enforce-trust-secrets", &txin.EnforceTrustSecrets},
		{"enforce-freeze", &txin.EnforceFreeze},
		{"enforce-unfreeze", &txin.EnforceUnfreeze},
	} {
		if v, ok, err := root.optBool(fn, f.key); err != nil {
			return false, err
		} else if ok {
			*f.dst = v
		}
	}

	if err := secretsFromJSON(fn, root, true, &txin.Params, &txin.Secrets, noPrecheck); err != nil {
		return false, err
	}

	if v, ok, err := root.optIntValue(fn, "merkle-root", 0, fieldMax); err != nil {
		return false, err
	} else if ok {
		txin.MerkleRoot = v
	} else {
		txin.MerkleRoot = tx.TxMerkleRoot
	}

	if v, ok, err := root.optUint(fn, "maximum-input-exponent", params.TxAmountExponentBits); err != nil {
		return false, err
	} else if ok {
		txin.Invalmax = uint16(v)
	} else if tx.HaveInvalmax {
		txin.Invalmax = tx.Invalmax
	} else {
		txin.Invalmax = uint16(params.TxAmountExponentMask)
	}

	if v, ok, err := root.optUint(fn, "delaytime", params.TxDelaytimeBits); err != nil {
		return false, err
	} else if ok {
		txin.Delaytime = uint16(v)
	} else if tx.HaveDelaytime {
		txin.Delaytime = tx.Delaytime
	}

	if v, ok, err := root.optUint(fn, "domain", params.TxDomainBits); err != nil {
		return false, err
	} else if ok {
		txin.MDomain = uint32(v)
	} else {
		txin.MDomain = tx.DefaultDomain
	}

	if v, ok, err := root.optUint(fn, "asset", params.TxAssetBits); err != nil {
		return false, err
	} else if ok {
		txin.Asset = v
	}

	amount, err := root.requireUint(fn, "amount", params.TxAmountBits)
	if err != nil {
		return false, err
	}
	txin.AmountFP = amount

	if v, ok, err := root.optIntValue(fn, "commitment-iv", params.TxCommitIVBits, nil); err != nil {
		return false, err
	} else if ok {
		txin.MCommitmentIV = v
	}
	commitment, err := root.requireIntValue(fn, "commitment", 0, fieldMax)
	if err != nil {
		return false, err
	}
	txin.MCommitment = commitment

	if v, ok, err := root.optUint(fn, "commitment-number", params.TxCommitnumBits); err != nil {
		return false, err
	} else if ok {
		txin.MCommitnum = v
	}

	if v, ok, err := root.optBool(fn, "no-serial-number"); err != nil {
		return false, err
	} else if ok {
		txin.NoSerialnum = v
	}
	if v, ok, err := root.optIntValue(fn, "hashkey", params.TxHashkeyBits, nil); err != nil {
		return false, err
	} else if ok {
		txin.SHashkey = v
	}
	if v, ok, err := root.optIntValue(fn, "hashed-spendspec", params.TxInputBits, nil); err != nil {
		return false, err
	} else if ok {
		txin.SSpendspecHashed = v
	}

	if raw, ok := root.remove("merkle-path"); ok {
		vals, err := asStringArray(raw)
		if err != nil {
			return false, fmt.Errorf("%w: %s: merkle-path", ErrNotArray, fn)
		}
		if len(vals) != params.TxMerkleDepth {
			return false, fmt.Errorf("%w: %s: merkle-path", ErrNumValues, fn)
		}
		for i, sval := range vals {
			v, err := parseIntValue(fn, "merkle-path", sval, 0, fieldMax)
			if err != nil {
				return false, err
			}
			path.MMerklePath[i] = v
		}
		hasPath = true
	}

	return hasPath, root.checkEmpty(fn)
}

// txCommonFromJSON consumes the transaction-level header fields.
func (c *Client) txCommonFromJSON(fn string, root jmap, tx *transaction.TxPay) error {
	fieldMax := bigint.FieldMax()

	if v, ok, err := root.optBool(fn, "no-precheck"); err != nil {
		return err
	} else if ok {
		tx.NoPrecheck = v
	}
	if v, ok, err := root.optBool(fn, "no-proof"); err != nil {
		return err
	} else if ok {
		tx.NoProof = v
	}
	if v, ok, err := root.optBool(fn, "no-verify"); err != nil {
		return err
	} else if ok {
		tx.NoVerify = v
	}
	if v, ok, err := root.optUint(fn, "test-make-bad", 32); err != nil {
		return err
	} else if ok {
		tx.TestMakeBad = uint32(v)
	}
	if v, ok, err := root.optBool(fn, "test-use-larger-zkkey"); err != nil {
		return err
	} else if ok {
		tx.TestUseLargerZkKey = v
	}
	if v, ok, err := root.optUint(fn, "random-seed", 64); err != nil {
		return err
	} else if ok {
		tx.RandomSeed = v
	}

	if v, ok, err := root.optUint(fn, "source-chain", params.TxChainBits); err != nil {
		return err
	} else if ok {
		tx.SourceChain = v
	}
	if v, ok, err := root.optUint(fn, "destination-chain", params.TxChainBits); err != nil {
		return err
	} else if ok {
		tx.DestChain = v
		tx.HaveDestChain = true
	}
	if v, ok, err := root.optUint(fn, "default-domain", params.TxDomainBits); err != nil {
		return err
	} else if ok {
		tx.DefaultDomain = uint32(v)
		tx.HaveDefaultDomain = true
	}
	if v, ok, err := root.optBool(fn, "acceptance-required"); err != nil {
		return err
	} else if ok {
		tx.AcceptanceRequired = v
		tx.HaveAcceptanceRequired = true
	}
	if v, ok, err := root.optUint(fn, "maximum-input-exponent", params.TxAmountExponentBits); err != nil {
		return err
	} else if ok {
		tx.Invalmax = uint16(v)
		tx.HaveInvalmax = true
	}
	if v, ok, err := root.optUint(fn, "delaytime", params.TxDelaytimeBits); err != nil {
		return err
	} else if ok {
		tx.Delaytime = uint16(v)
		tx.HaveDelaytime = true
	}

	if v, ok, err := root.optUint(fn, "parameter-level", params.TxBlockLevelBits); err != nil {
		return err
	} else if ok {
		tx.ParamLevel = v
	}
	if v, ok, err := root.optUint(fn, "parameter-time", params.TxTimeBits); err != nil {
		return err
	} else if ok {
		tx.ParamTime = v
	}
	if v, ok, err := root.optUint(fn, "revision", params.TxRevisionBits); err != nil {
		return err
	} else if ok {
		tx.Revision = uint32(v)
	}
	if v, ok, err := root.optUint(fn, "expiration", params.TxTimeBits); err != nil {
		return err
	} else if ok {
		tx.Expiration = v
	}
	if v, ok, err := root.optIntValue(fn, "reference-hash", params.TxRefhashBits, nil); err != nil {
		return err
	} else if ok {
		tx.Refhash = v
	}
	if v, ok, err := root.optUint(fn, "reserved", params.TxReservedBits); err != nil {
		return err
	} else if ok {
		tx.Reserved = v
	}
	if v, ok, err := root.optUint(fn, "donation", params.TxDonationBits); err != nil {
		return err
	} else if ok {
		tx.DonationFP = v
	}
	if v, ok, err := root.optUint(fn, "minimum-output-exponent", params.TxAmountExponentBits); err != nil {
		return err
	} else if ok {
		tx.Outvalmin = uint16(v)
	}
	if v, ok, err := root.optUint(fn, "maximum-output-exponent", params.TxAmountExponentBits); err != nil {
		return err
	} else if ok {
		tx.Outvalmax = uint16(v)
	} else {
		tx.Outvalmax = uint16(params.TxAmountExponentMask)
	}
	if v, ok, err := root.optBool(fn, "allow-restricted-addresses"); err != nil {
		return err
	} else if ok {
		tx.AllowRestrictedAddresses = v
		tx.HaveAllowRestrictedAddresses = true
	}

	if v, ok, err := root.optIntValue(fn, "merkle-root", 0, fieldMax); err != nil {
		return err
	} else if ok {
		tx.TxMerkleRoot = v
	}
	if v, ok, err := root.optIntValue(fn, "commitment-iv", params.TxCommitIVBits, nil); err != nil {
		return err
	} else if ok {
		tx.MCommitmentIV = v
		tx.OverrideCommitmentIV = true
	}

	return nil
}

// txCreateFromJSON builds the full transaction model.
func (c *Client) txCreateFromJSON(fn string, root jmap, tx *transaction.TxPay) error {
	transaction.Init(tx)

	typeRaw, ok := root.remove("type")
	if !ok {
		return fmt.Errorf("%w: %s: type", ErrMissingKey, fn)
	}
	switch asString(typeRaw) {
	case "mint":
		tx.TagType = params.TypeMint
	case "send", "txpay":
		tx.TagType = params.TypeTxPay
	default:
		return fmt.Errorf("%w: %s", transaction.ErrInvalidTxType, asString(typeRaw))
	}
	tx.TxType = uint16(tx.TagType)

	if err := c.txCommonFromJSON(fn, root, tx); err != nil {
		return err
	}

	if raw, ok := root.remove("outputs"); ok {
		objs, err := asObjectArray(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: outputs", ErrNotArray, fn)
		}
		if len(objs) > params.TxMaxOut {
			return fmt.Errorf("%w: %s: outputs", ErrTooManyObjects, fn)
		}
		for i, obj := range objs {
			if err := c.outputFromJSON(fn, obj, tx, &tx.Outputs[i]); err != nil {
				return err
			}
			tx.Nout++
		}
	}

	if raw, ok := root.remove("inputs"); ok {
		objs, err := asObjectArray(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: inputs", ErrNotArray, fn)
		}
		if len(objs) > params.TxMaxIn {
			return fmt.Errorf("%w: %s: inputs", ErrTooManyObjects, fn)
		}
		for i, obj := range objs {
			txin := &tx.Inputs[i]
			hasPath, err := c.inputFromJSON(fn, obj, tx, txin, &tx.Inpaths[tx.NinWithPath], tx.NoPrecheck)
			if err != nil {
				return err
			}
			if hasPath {
				if tx.NinWithPath >= params.TxMaxInPath {
					return fmt.Errorf("%w: %s: merkle paths", ErrTooManyObjects, fn)
				}
				tx.NinWithPath++
				txin.Pathnum = tx.NinWithPath
			}
			tx.Nin++
		}
	}

	if tx.TagType == params.TypeMint {
		if err := transaction.SetMintInputs(tx); err != nil {
			return err
		}
	}

	if err := root.checkEmpty(fn); err != nil {
		return err
	}

	transaction.SetDependents(tx)

	return nil
}

// CreateFinish runs the precheck and proof over a constructed
// transaction.
func (c *Client) CreateFinish(tx *transaction.TxPay) error {
	if !tx.NoPrecheck {
		if err := transaction.Precheck(tx); err != nil {
			return err
		}
	}

	if err := c.Prover.GenProof(tx); err != nil {
		return err
	}

	if !tx.NoVerify {
		return c.Prover.VerifyProof(tx)
	}
	return nil
}

func (c *Client) txCreate(fn string, root jmap) (string, error) {
	inner, ok := root.remove("tx-pay")
	if !ok {
		// mint transactions arrive under their own key
		inner, ok = root.remove("tx-mint")
		if !ok {
			return "", fmt.Errorf("%w: %s: tx-pay or tx-mint", ErrMissingKey, fn)
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(inner, &m); err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidValue, fn)
		}
		m["type"] = json.RawMessage(`"mint"`)
		if err := root.checkEmpty(fn); err != nil {
			return "", err
		}
		if err := c.txCreateFromJSON(fn, jmap(m), &c.tx); err != nil {
			return "", err
		}
		if err := c.CreateFinish(&c.tx); err != nil {
			return "", err
		}
		return "{}", nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(inner, &m); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidValue, fn)
	}
	if _, has := m["type"]; !has {
		m["type"] = json.RawMessage(`"send"`)
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}
	if err := c.txCreateFromJSON(fn, jmap(m), &c.tx); err != nil {
		return "", err
	}
	if err := c.CreateFinish(&c.tx); err != nil {
		return "", err
	}
	return "{}", nil
}

func (c *Client) txVerify(fn string, root jmap) (string, error) {
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}
	if err := c.Prover.VerifyProof(&c.tx); err != nil {
		return "", err
	}
	return "{}", nil
}

// txToJSON renders the current transaction's public view.
func (c *Client) txToJSON(fn string, root jmap) (string, error) {
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}
	tx := &c.tx

	var sb strings.Builder
	sb.WriteString(`{"tx-pay":{`)
	fmt.Fprintf(&sb, `"type":%q`, txTypeName(tx.TagType))
	fmt.Fprintf(&sb, `,"parameter-level":%q`, hexUint(tx.ParamLevel))
	fmt.Fprintf(&sb, `,"parameter-time":%q`, hexUint(tx.ParamTime))
	fmt.Fprintf(&sb, `,"source-chain":%q`, hexUint(tx.SourceChain))
	fmt.Fprintf(&sb, `,"donation":%q`, hexUint(tx.DonationFP))
	fmt.Fprintf(&sb, `,"minimum-output-exponent":%q`, hexUint(uint64(tx.Outvalmin)))
	fmt.Fprintf(&sb, `,"maximum-output-exponent":%q`, hexUint(uint64(tx.Outvalmax)))
	fmt.Fprintf(&sb, `,"merkle-root":%q`, hexBig(&tx.TxMerkleRoot))
	fmt.Fprintf(&sb, `,"commitment-iv":%q`, hexBig(&tx.MCommitmentIV))
	fmt.Fprintf(&sb, `,"zkkeyid":%q`, hexUint(uint64(tx.ZkKeyID)))

	sb.WriteString(`,"outputs":[`)
	for i := uint16(0); i < tx.Nout; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		o := &tx.Outputs[i]
		sb.WriteString(`{`)
		fmt.Fprintf(&sb, `"destination":%q`, hexBig(&o.Addrparams.Dest))
		fmt.Fprintf(&sb, `,"destination-chain":%q`, hexUint(o.Addrparams.DestChain))
		fmt.Fprintf(&sb, `,"payment-number":%q`, hexUint(uint64(o.Addrparams.Paynum)))
		fmt.Fprintf(&sb, `,"address":%q`, hexBig(&o.MAddress))
		fmt.Fprintf(&sb, `,"domain":%q`, hexUint(uint64(o.MDomain)))
		fmt.Fprintf(&sb, `,"asset":%q`, hexUint(o.Asset))
		fmt.Fprintf(&sb, `,"asset-mask":%q`, hexUint(o.AssetMask))
		fmt.Fprintf(&sb, `,"encrypted-asset":%q`, hexUint(o.MAssetEnc))
		fmt.Fprintf(&sb, `,"amount":%q`, hexUint(o.AmountFP))
		fmt.Fprintf(&sb, `,"amount-mask":%q`, hexUint(o.AmountMask))
		fmt.Fprintf(&sb, `,"encrypted-amount":%q`, hexUint(o.MAmountEnc))
		fmt.Fprintf(&sb, `,"commitment":%q`, hexBig(&o.MCommitment))
		sb.WriteString(`}`)
	}
	sb.WriteString(`],"inputs":[`)
	for i := uint16(0); i < tx.Nin; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		in := &tx.Inputs[i]
		sb.WriteString(`{`)
		fmt.Fprintf(&sb, `"merkle-root":%q`, hexBig(&in.MerkleRoot))
		fmt.Fprintf(&sb, `,"maximum-input-exponent":%q`, hexUint(uint64(in.Invalmax)))
		fmt.Fprintf(&sb, `,"delaytime":%q`, hexUint(uint64(in.Delaytime)))
		fmt.Fprintf(&sb, `,"domain":%q`, hexUint(uint64(in.MDomain)))
		if in.Pathnum == 0 {
			fmt.Fprintf(&sb, `,"commitment":%q`, hexBig(&in.MCommitment))
			fmt.Fprintf(&sb, `,"commitment-number":%q`, hexUint(in.MCommitnum))
		}
		if !in.NoSerialnum {
			fmt.Fprintf(&sb, `,"serial-number":%q`, hexBig(&in.SSerialnum))
		}
		fmt.Fprintf(&sb, `,"hashkey":%q`, hexBig(&in.SHashkey))
		sb.WriteString(`}`)
	}
	sb.WriteString(`]}}`)

	return sb.String(), nil
}

func txTypeName(tagType int) string {
	switch tagType {
	case params.TypeMint:
		return "mint"
	default:
		return "send"
	}
}

func (c *Client) txToWire(fn string, root jmap, binbuf []byte) (string, error) {
	if binbuf == nil {
		return "", fmt.Errorf("%w: %s: requires binary buffer", ErrInvalidValue, fn)
	}

	errCheck := uint(transaction.ErrCheckStrict)
	if v, ok, err := root.optUint(fn, "error-check", 2); err != nil {
		return "", err
	} else if ok {
		errCheck = uint(v)
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	n, err := transaction.ToWire(&c.tx, errCheck, binbuf)
	if err != nil {
		return "", err
	}
	return `{"wire-size":"` + hexUint(uint64(n)) + `"}`, nil
}

func (c *Client) txFromWire(fn string, root jmap, binbuf []byte) (string, error) {
	if binbuf == nil {
		return "", fmt.Errorf("%w: %s: requires binary buffer", ErrInvalidValue, fn)
	}

	transaction.Init(&c.tx)
	if err := c.txCommonFromJSON(fn, root, &c.tx); err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	if err := transaction.FromWire(&c.tx, binbuf); err != nil {
		return "", err
	}
	transaction.SetCommitIV(&c.tx)

	return "{}", nil
}

func (c *Client) txDump(fn string, root jmap) (string, error) {
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}
	return c.txToJSON(fn, root)
}

func workReset(fn string, root jmap, binbuf []byte) (string, error) {
	if binbuf == nil {
		return "", fmt.Errorf("%w: %s: requires binary buffer", ErrInvalidValue, fn)
	}

	timestamp, err := root.requireUint(fn, "timestamp", 64)
	if err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	if err := pow.ResetWork(binbuf, timestamp); err != nil {
		return "", err
	}
	return "{}", nil
}

func workAdd(fn string, root jmap, binbuf []byte) (string, error) {
	if binbuf == nil {
		return "", fmt.Errorf("%w: %s: requires binary buffer", ErrInvalidValue, fn)
	}

	index, err := root.requireIntValue(fn, "index", 0, bigint.NewBig(params.TxPowNproofs-1))
	if err != nil {
		return "", err
	}
	iterations, err := root.requireUint(fn, "iterations", 64)
	if err != nil {
		return "", err
	}
	difficulty, err := root.requireUint(fn, "difficulty", 64)
	if err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	rc, err := pow.SetWork(binbuf, uint(index.Uint64()), 1, iterations, difficulty)
	if err != nil {
		return "", err
	}
	return `{"work-result":"` + hexUint(uint64(rc)) + `"}`, nil
}

func testParseNumber(fn string, root jmap) (string, error) {
	nbits, err := root.requireUint(fn, "nbits", 16)
	if err != nil {
		return "", err
	}
	if nbits > 256 {
		return "", fmt.Errorf("%w: %s: nbits", ErrInvalidValue, fn)
	}

	raw, ok := root.remove("amount")
	if !ok {
		return "", fmt.Errorf("%w: %s: amount", ErrMissingKey, fn)
	}
	sval := asString(raw)

	var maxval *bigint.Big
	if nbits == 0 {
		maxval = bigint.FieldMax()
	}
	v, err := parseIntValue(fn, "amount", sval, uint(nbits), maxval)
	if err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	negative := strings.HasPrefix(sval, "-")
	if !v.IsZero() && negative {
		var zero bigint.Big
		if nbits != 0 {
			v.Sub(&zero, &v)
		} else {
			v = bigint.SubModField(&zero, &v)
		}
		return `{"parsed":"-` + bigint.FormatDec(&v) + `"}`, nil
	}
	return `{"parsed":"` + bigint.FormatDec(&v) + `"}`, nil
}
