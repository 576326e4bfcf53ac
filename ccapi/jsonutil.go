// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ccapi is the textual command facade: one JSON entry point
// dispatching to transaction construction, verification, codecs and the
// secret and address derivations.
package ccapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
)

var (
	ErrMissingKey         = errors.New("missing key")
	ErrUnexpectedKey      = errors.New("unexpected key")
	ErrInvalidValue       = errors.New("invalid value")
	ErrValueOverflow      = errors.New("value overflow")
	ErrInvalidNumericChar = errors.New("invalid numeric character")
	ErrNotHex             = errors.New("not a hex value")
	ErrNotArray           = errors.New("not an array")
	ErrNumValues          = errors.New("wrong number of values")
	ErrTooManyObjects     = errors.New("too many objects")
	ErrUnexpectedError    = errors.New("unexpected error")
)

// jmap is a parsed JSON object with removeMember-style consumption: each
// handler removes the keys it understands and rejects leftovers.
type jmap map[string]json.RawMessage

func parseRoot(jsonText string) (string, jmap, error) {
	var root map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(jsonText))
	dec.UseNumber()
	if err := dec.Decode(&root); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if len(root) != 1 {
		return "", nil, fmt.Errorf("%w: json root must contain exactly one object", ErrInvalidValue)
	}

	for key, raw := range root {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err != nil {
			// some commands take a bare value
			inner = map[string]json.RawMessage{"": raw}
		}
		return key, jmap(inner), nil
	}
	return "", nil, ErrUnexpectedError
}

// remove pops a key, reporting whether it was present.
func (m jmap) remove(key string) (json.RawMessage, bool) {
	raw, ok := m[key]
	if ok {
		delete(m, key)
	}
	return raw, ok
}

// checkEmpty rejects unconsumed keys.
func (m jmap) checkEmpty(fn string) error {
	for key := range m {
		return fmt.Errorf("%w: %s: %s", ErrUnexpectedKey, fn, key)
	}
	return nil
}

// asString renders a raw JSON value the way the original API does: the
// literal text of strings, numbers and booleans.
func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// asStringArray extracts an array of stringifiable values.
func asStringArray(raw json.RawMessage) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrNotArray
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = asString(item)
	}
	return out, nil
}

// asObjectArray extracts an array of objects.
func asObjectArray(raw json.RawMessage) ([]jmap, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrNotArray
	}
	out := make([]jmap, len(items))
	for i, item := range items {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(item, &m); err != nil {
			return nil, ErrNotArray
		}
		out[i] = jmap(m)
	}
	return out, nil
}

// parseIntValue parses a bounded integer field, mapping the numeric
// parser's failures onto the API error kinds.
func parseIntValue(fn, key, sval string, nbits uint, maxval *bigint.Big) (bigint.Big, error) {
	v, err := bigint.ParseInt(sval, nbits, maxval)
	if err != nil {
		switch {
		case errors.Is(err, bigint.ErrValueOverflow):
			return v, fmt.Errorf("%w: %s: %s", ErrValueOverflow, fn, key)
		case errors.Is(err, bigint.ErrInvalidDigit):
			return v, fmt.Errorf("%w: %s: %s", ErrInvalidNumericChar, fn, key)
		default:
			return v, fmt.Errorf("%w: %s: %s", ErrInvalidValue, fn, key)
		}
	}
	return v, nil
}

// requireIntValue parses a mandatory integer field.
func (m jmap) requireIntValue(fn, key string, nbits uint, maxval *bigint.Big) (bigint.Big, error) {
	raw, ok := m.remove(key)
	if !ok {
		return bigint.Big{}, fmt.Errorf("%w: %s: %s", ErrMissingKey, fn, key)
	}
	return parseIntValue(fn, key, asString(raw), nbits, maxval)
}

// optIntValue parses an optional integer field.
func (m jmap) optIntValue(fn, key string, nbits uint, maxval *bigint.Big) (bigint.Big, bool, error) {
	raw, ok := m.remove(key)
	if !ok {
		return bigint.Big{}, false, nil
	}
	v, err := parseIntValue(fn, key, asString(raw), nbits, maxval)
	return v, true, err
}

// optUint parses an optional small integer.
func (m jmap) optUint(fn, key string, nbits uint) (uint64, bool, error) {
	v, ok, err := m.optIntValue(fn, key, nbits, nil)
	if err != nil || !ok {
		return 0, ok, err
	}
	return v.Uint64(), true, nil
}

// requireUint parses a mandatory small integer.
func (m jmap) requireUint(fn, key string, nbits uint) (uint64, error) {
	v, err := m.requireIntValue(fn, key, nbits, nil)
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// optBool parses an optional boolean encoded as a 1-bit integer.
func (m jmap) optBool(fn, key string) (bool, bool, error) {
	v, ok, err := m.optIntValue(fn, key, 1, nil)
	if err != nil || !ok {
		return false, ok, err
	}
	return !v.IsZero(), true, nil
}

// parseObjID parses a 128-bit object id given as hex.
func parseObjID(fn, key, sval string) (params.Oid, error) {
	var oid params.Oid
	v, err := parseIntValue(fn, key, sval, params.CCOidSize*8, nil)
	if err != nil {
		return oid, err
	}
	le := bigint.LittleEndianBytes(&v)
	copy(oid[:], le[:params.CCOidSize])
	return oid, nil
}

// hexBig renders a value as a 0x-prefixed JSON string.
func hexBig(v *bigint.Big) string {
	return "0x" + bigint.FormatHex(v)
}

func hexUint(v uint64) string {
	var b bigint.Big
	b.SetUint64(v)
	return hexBig(&b)
}

// resultError formats an error into the JSON error envelope.
func resultError(fn string, err error) string {
	msg := fmt.Sprintf("error: %v", err)
	out, _ := json.Marshal(map[string]string{"error": msg})
	_ = fn
	return string(out)
}
