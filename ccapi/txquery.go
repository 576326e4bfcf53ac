// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ccapi

import (
	"encoding/binary"
	"fmt"

	"github.com/luxfi/cclib/amounts"
	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/encode"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/xtx"
)

// Query flags for xreqs listings.
const (
	QueryXreqsFlagIncludePendingMatched = 1
	QueryXreqsFlagOnlyPendingMatched    = 2
)

// queryWriter frames a query object: size, tag, then the body.
type queryWriter struct {
	w *xtx.WireWriter
}

func newQuery(binbuf []byte, tag uint32) *queryWriter {
	w := xtx.NewWireWriter(binbuf)
	w.PutUint(0, 4) // size backpatched on finish
	w.PutUint(uint64(tag), 4)
	return &queryWriter{w: w}
}

func (q *queryWriter) finish(binbuf []byte) (string, error) {
	if err := q.w.Err(); err != nil {
		return "", err
	}
	binary.LittleEndian.PutUint32(binbuf, uint32(q.w.Pos()))
	return `{"query-size":"` + hexUint(uint64(q.w.Pos())) + `"}`, nil
}

// QueryParamsCreate frames a blockchain-parameters query.
func QueryParamsCreate(binbuf []byte) (string, error) {
	q := newQuery(binbuf, params.TagQueryParams)
	return q.finish(binbuf)
}

// QueryAddressCreate frames an address polling query.
func QueryAddressCreate(binbuf []byte, blockchain uint64, address *bigint.Big, commitstart uint64, maxret uint16) (string, error) {
	q := newQuery(binbuf, params.TagQueryAddress)
	q.w.PutUint(blockchain, params.TxChainBytes)
	q.w.PutBig(address, params.TxAddressBytes)
	q.w.PutUint(commitstart, params.TxCommitnumBytes)
	q.w.PutUint(uint64(maxret), 2)
	return q.finish(binbuf)
}

// QuerySerialsCreate frames a serial-number status query.
func QuerySerialsCreate(binbuf []byte, blockchain uint64, serials []bigint.Big) (string, error) {
	q := newQuery(binbuf, params.TagQuerySerial)
	q.w.PutUint(blockchain, params.TxChainBytes)
	q.w.PutUint(uint64(len(serials)), 2)
	for i := range serials {
		q.w.PutBig(&serials[i], params.TxSerialnumBytes)
	}
	return q.finish(binbuf)
}

// QueryInputsCreate frames a query for input Merkle paths.
func QueryInputsCreate(binbuf []byte, blockchain uint64, commitnums []uint64) (string, error) {
	q := newQuery(binbuf, params.TagQueryInputs)
	q.w.PutUint(blockchain, params.TxChainBytes)
	q.w.PutUint(uint64(len(commitnums)), 2)
	for _, cn := range commitnums {
		q.w.PutUint(cn, params.TxCommitnumBytes)
	}
	return q.finish(binbuf)
}

// QueryXreqsCreate frames an exchange-requests listing query.
func QueryXreqsCreate(binbuf []byte, xcxType int, minAmount, maxAmount *bigint.Big,
	minRate float64, baseAsset, quoteAsset uint64, foreignAsset string,
	maxret, offset uint16, flags uint) (string, error) {

	q := newQuery(binbuf, params.TagQueryXreqs)
	q.w.PutUint(uint64(xcxType), 1)
	q.w.PutUint(amounts.Encode(minAmount, false, 0, ^uint(0), amounts.RoundUp), params.TxAmountBytes)
	q.w.PutUint(amounts.Encode(maxAmount, false, 0, ^uint(0), amounts.RoundDown), params.TxAmountBytes)
	q.w.PutUint(amounts.WireEncode(amounts.NewUniFloat(minRate), -1), amounts.UniFloatWireBytes)
	q.w.PutUint(baseAsset, params.TxAssetBytes)
	q.w.PutUint(quoteAsset, xtx.BlockchainWireBytes)

	enc, err := encode.AlphaEncodeBest([]byte(foreignAsset))
	if err != nil {
		return "", fmt.Errorf("%w: foreign-asset", ErrInvalidValue)
	}
	if len(enc) > xtx.XtxMaxItemSize {
		return "", fmt.Errorf("%w: foreign-asset", ErrInvalidValue)
	}
	q.w.PutUint(uint64(len(enc)), 1)
	q.w.PutBytes(enc)

	q.w.PutUint(uint64(maxret), 2)
	q.w.PutUint(uint64(offset), 2)
	q.w.PutUint(uint64(flags), 1)
	return q.finish(binbuf)
}

// QueryXmatchObjidCreate frames a match query by request object id.
func QueryXmatchObjidCreate(binbuf []byte, blockchain uint64, objid params.Oid, maxret uint16) (string, error) {
	q := newQuery(binbuf, params.TagQueryXmatchObjid)
	q.w.PutUint(blockchain, params.TxChainBytes)
	q.w.PutBytes(objid[:])
	q.w.PutUint(uint64(maxret), 2)
	return q.finish(binbuf)
}

// QueryXmatchReqnumCreate frames a match query by request number.
func QueryXmatchReqnumCreate(binbuf []byte, blockchain, xreqnum, xmatchnumStart uint64, maxret uint16) (string, error) {
	q := newQuery(binbuf, params.TagQueryXmatchReqnum)
	q.w.PutUint(blockchain, params.TxChainBytes)
	q.w.PutUint(xreqnum, 8)
	q.w.PutUint(xmatchnumStart, 8)
	q.w.PutUint(uint64(maxret), 2)
	return q.finish(binbuf)
}

// QueryXmatchMatchnumCreate frames a match query by match number.
func QueryXmatchMatchnumCreate(binbuf []byte, blockchain, xmatchnum uint64) (string, error) {
	q := newQuery(binbuf, params.TagQueryXmatchMatchnum)
	q.w.PutUint(blockchain, params.TxChainBytes)
	q.w.PutUint(xmatchnum, 8)
	return q.finish(binbuf)
}

// QueryXminingInfoCreate frames an exchange-mining info query.
func QueryXminingInfoCreate(binbuf []byte) (string, error) {
	q := newQuery(binbuf, params.TagQueryXminingInfo)
	return q.finish(binbuf)
}

// txQueryFromJSON dispatches the tx-query-create command.
func txQueryFromJSON(fn string, root jmap, binbuf []byte) (string, error) {
	if binbuf == nil {
		return "", fmt.Errorf("%w: %s: requires binary buffer", ErrInvalidValue, fn)
	}

	if _, ok := root.remove("parameters"); ok {
		if err := root.checkEmpty(fn); err != nil {
			return "", err
		}
		return QueryParamsCreate(binbuf)
	}

	if raw, ok := root.remove("address"); ok {
		var m jmap
		var err error
		if m, err = innerObject(raw); err != nil {
			return "", err
		}
		blockchain, err := m.requireUint(fn, "blockchain", params.TxChainBits)
		if err != nil {
			return "", err
		}
		address, err := m.requireIntValue(fn, "address", params.TxAddressBits, nil)
		if err != nil {
			return "", err
		}
		commitstart, _, err := m.optUint(fn, "commitment-number-start", params.TxCommitnumBits)
		if err != nil {
			return "", err
		}
		maxret, _, err := m.optUint(fn, "maximum-results", 16)
		if err != nil {
			return "", err
		}
		if err := m.checkEmpty(fn); err != nil {
			return "", err
		}
		return QueryAddressCreate(binbuf, blockchain, &address, commitstart, uint16(maxret))
	}

	if raw, ok := root.remove("serial-numbers"); ok {
		m, err := innerObject(raw)
		if err != nil {
			return "", err
		}
		blockchain, err := m.requireUint(fn, "blockchain", params.TxChainBits)
		if err != nil {
			return "", err
		}
		listRaw, ok := m.remove("serial-numbers")
		if !ok {
			return "", fmt.Errorf("%w: %s: serial-numbers", ErrMissingKey, fn)
		}
		vals, err := asStringArray(listRaw)
		if err != nil {
			return "", fmt.Errorf("%w: %s: serial-numbers", ErrNotArray, fn)
		}
		serials := make([]bigint.Big, len(vals))
		for i, sval := range vals {
			serials[i], err = parseIntValue(fn, "serial-numbers", sval, 0, bigint.FieldMax())
			if err != nil {
				return "", err
			}
		}
		if err := m.checkEmpty(fn); err != nil {
			return "", err
		}
		return QuerySerialsCreate(binbuf, blockchain, serials)
	}

	if raw, ok := root.remove("inputs"); ok {
		m, err := innerObject(raw)
		if err != nil {
			return "", err
		}
		blockchain, err := m.requireUint(fn, "blockchain", params.TxChainBits)
		if err != nil {
			return "", err
		}
		listRaw, ok := m.remove("commitment-numbers")
		if !ok {
			return "", fmt.Errorf("%w: %s: commitment-numbers", ErrMissingKey, fn)
		}
		vals, err := asStringArray(listRaw)
		if err != nil {
			return "", fmt.Errorf("%w: %s: commitment-numbers", ErrNotArray, fn)
		}
		commitnums := make([]uint64, len(vals))
		for i, sval := range vals {
			v, err := parseIntValue(fn, "commitment-numbers", sval, params.TxCommitnumBits, nil)
			if err != nil {
				return "", err
			}
			commitnums[i] = v.Uint64()
		}
		if err := m.checkEmpty(fn); err != nil {
			return "", err
		}
		return QueryInputsCreate(binbuf, blockchain, commitnums)
	}

	if raw, ok := root.remove("exchange-requests"); ok {
		m, err := innerObject(raw)
		if err != nil {
			return "", err
		}
		xcxType, err := m.requireUint(fn, "type", 8)
		if err != nil {
			return "", err
		}
		minAmount, err := m.requireIntValue(fn, "minimum-amount", params.TxAmountDecodedBits, nil)
		if err != nil {
			return "", err
		}
		maxAmount, err := m.requireIntValue(fn, "maximum-amount", params.TxAmountDecodedBits, nil)
		if err != nil {
			return "", err
		}
		quoteAsset, err := m.requireUint(fn, "quote-asset", 16)
		if err != nil {
			return "", err
		}
		maxret, _, err := m.optUint(fn, "maximum-results", 16)
		if err != nil {
			return "", err
		}
		offset, _, err := m.optUint(fn, "offset", 16)
		if err != nil {
			return "", err
		}
		flags, _, err := m.optUint(fn, "flags", 8)
		if err != nil {
			return "", err
		}
		foreignAsset := ""
		if raw, ok := m.remove("foreign-asset"); ok {
			foreignAsset = asString(raw)
		}
		if err := m.checkEmpty(fn); err != nil {
			return "", err
		}
		return QueryXreqsCreate(binbuf, int(xcxType), &minAmount, &maxAmount,
			0, 0, quoteAsset, foreignAsset, uint16(maxret), uint16(offset), uint(flags))
	}

	if raw, ok := root.remove("exchange-matches"); ok {
		m, err := innerObject(raw)
		if err != nil {
			return "", err
		}
		blockchain, err := m.requireUint(fn, "blockchain", params.TxChainBits)
		if err != nil {
			return "", err
		}
		if objRaw, ok := m.remove("object-id"); ok {
			oid, err := parseObjID(fn, "object-id", asString(objRaw))
			if err != nil {
				return "", err
			}
			maxret, _, err := m.optUint(fn, "maximum-results", 16)
			if err != nil {
				return "", err
			}
			if err := m.checkEmpty(fn); err != nil {
				return "", err
			}
			return QueryXmatchObjidCreate(binbuf, blockchain, oid, uint16(maxret))
		}
		if v, ok, err := m.optUint(fn, "request-number", 64); err != nil {
			return "", err
		} else if ok {
			start, _, err := m.optUint(fn, "match-number-start", 64)
			if err != nil {
				return "", err
			}
			maxret, _, err := m.optUint(fn, "maximum-results", 16)
			if err != nil {
				return "", err
			}
			if err := m.checkEmpty(fn); err != nil {
				return "", err
			}
			return QueryXmatchReqnumCreate(binbuf, blockchain, v, start, uint16(maxret))
		}
		matchnum, err := m.requireUint(fn, "match-number", 64)
		if err != nil {
			return "", err
		}
		if err := m.checkEmpty(fn); err != nil {
			return "", err
		}
		return QueryXmatchMatchnumCreate(binbuf, blockchain, matchnum)
	}

	if _, ok := root.remove("exchange-mining-info"); ok {
		if err := root.checkEmpty(fn); err != nil {
			return "", err
		}
		return QueryXminingInfoCreate(binbuf)
	}

	return "", fmt.Errorf("%w: %s: query type", ErrMissingKey, fn)
}
