// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pow implements the SipHash-keyed proof-of-work stamps carried
// by framed objects, and the canonical object id derivation.
package pow

import (
	"encoding/binary"
	"errors"
	"sync/atomic"
	"time"

	"github.com/aead/siphash"
	"golang.org/x/crypto/blake2b"

	"github.com/luxfi/cclib/params"
)

var (
	ErrBufferTooSmall = errors.New("object buffer too small")
	ErrTimestampAge   = errors.New("object timestamp out of range")
)

// Work search results.
const (
	WorkDone       = 0  // difficulty met
	WorkUnfinished = 1  // iteration budget exhausted, more work possible
	WorkExhausted  = -2 // nonce space exhausted
	WorkCancelled  = -3 // shutdown requested
)

// shutdown is the cooperative cancellation flag polled by the search
// loops.
var shutdown atomic.Bool

// SetShutdown requests cancellation of in-flight searches.
func SetShutdown(v bool) { shutdown.Store(v) }

// frameSize reads the frame's leading size word.
func frameSize(buf []byte) (uint32, error) {
	if len(buf) < params.CCMsgHeaderSize+params.TxPowSize {
		return 0, ErrBufferTooSmall
	}
	size := binary.LittleEndian.Uint32(buf)
	if int(size) > len(buf) || size < params.CCMsgHeaderSize+params.TxPowSize {
		return 0, ErrBufferTooSmall
	}
	return size, nil
}

// ResetWork zeroes the frame's PoW region and stamps the timestamp.
func ResetWork(buf []byte, timestamp uint64) error {
	if _, err := frameSize(buf); err != nil {
		return err
	}
	pow := buf[params.CCMsgHeaderSize : params.CCMsgHeaderSize+params.TxPowSize]
	for i := range pow {
		pow[i] = 0
	}
	binary.LittleEndian.PutUint64(pow, timestamp)
	return nil
}

// CheckTimestamp bounds a timestamp's age against the configured past
// and future allowances (in seconds).
func CheckTimestamp(timestamp uint64, pastAllowance, futureAllowance uint) error {
	now := uint64(time.Now().Unix())
	age := int64(now) - int64(timestamp)
	if age > int64(pastAllowance) || (age < 0 && -age > int64(futureAllowance)) {
		return ErrTimestampAge
	}
	return nil
}

// objHash computes the 128-bit keyed hash of the frame body that the
// nonce search is bound to.
func objHash(buf []byte, size uint32) (out [params.CCOidSize]byte, err error) {
	h, err := blake2b.New(params.CCOidSize, buf[4:8])
	if err != nil {
		return out, err
	}
	dataOffset := params.CCMsgHeaderSize + params.TxPowSize
	h.Write(buf[dataOffset:size])
	copy(out[:], h.Sum(nil))
	return out, nil
}

// ComputeObjID derives the canonical object id: a keyed BLAKE2b over the
// frame from the tag to the end.
func ComputeObjID(buf []byte) (params.Oid, error) {
	var oid params.Oid
	if len(buf) < params.CCMsgHeaderSize {
		return oid, ErrBufferTooSmall
	}
	size := binary.LittleEndian.Uint32(buf)
	if int(size) > len(buf) || size < params.CCMsgHeaderSize {
		return oid, ErrBufferTooSmall
	}
	h, err := blake2b.New(params.CCOidSize, buf[4:8])
	if err != nil {
		return oid, err
	}
	h.Write(buf[4:size])
	copy(oid[:], h.Sum(nil))
	return oid, nil
}

// noncePos returns the byte offset of a proof's 5-byte nonce field.
func noncePos(proofIndex uint) int {
	return params.CCMsgHeaderSize + 8 + int(proofIndex)*params.TxPowNonceSize
}

func readNonce(buf []byte, proofIndex uint) uint64 {
	pos := noncePos(proofIndex)
	var v uint64
	for i := params.TxPowNonceSize - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[pos+i])
	}
	return v
}

func writeNonce(buf []byte, proofIndex uint, nonce uint64) {
	pos := noncePos(proofIndex)
	for i := 0; i < params.TxPowNonceSize; i++ {
		buf[pos+i] = byte(nonce >> (8 * i))
	}
}

// priorKey returns the 8 bytes keyed into a proof: the timestamp for the
// first proof, and the 8 bytes ending at the prior nonce for the rest,
// which chains the nonces and defeats parallel search.
func priorKey(buf []byte, proofIndex uint) uint64 {
	if proofIndex == 0 {
		return binary.LittleEndian.Uint64(buf[params.CCMsgHeaderSize:])
	}
	return binary.LittleEndian.Uint64(buf[noncePos(proofIndex)-8:])
}

// SetWork runs the nonce search for proofCount proofs starting at
// proofStart, spending at most iterCount iterations per proof. Partial
// progress persists in the frame's nonce fields.
func SetWork(buf []byte, proofStart, proofCount uint, iterCount, difficulty uint64) (int, error) {
	size, err := frameSize(buf)
	if err != nil {
		return WorkExhausted, err
	}

	if difficulty == 0 {
		return WorkDone, nil
	}

	txhash, err := objHash(buf, size)
	if err != nil {
		return WorkExhausted, err
	}

	result := WorkDone

	for proofIndex := proofStart; proofIndex < proofStart+proofCount; proofIndex++ {
		if proofIndex >= params.TxPowNproofs {
			return WorkExhausted, ErrBufferTooSmall
		}

		iterStart := readNonce(buf, proofIndex) & params.TxPowNonceMask

		const iterLimit = params.TxPowNonceMask - 1
		iterEnd := iterStart + iterCount - 1
		if iterEnd > iterLimit || iterLimit-iterCount < iterStart {
			iterEnd = iterLimit
		}

		var key [16]byte
		binary.LittleEndian.PutUint64(key[:8], priorKey(buf, proofIndex))

		var nonce uint64
		for nonce = iterStart; nonce <= iterEnd; nonce++ {
			if shutdown.Load() {
				return WorkCancelled, nil
			}

			binary.LittleEndian.PutUint64(key[8:],
				uint64(proofIndex)<<params.TxPowNonceBits|nonce)

			if siphash.Sum64(txhash[:], &key) < difficulty {
				break
			}
		}

		writeNonce(buf, proofIndex, nonce&params.TxPowNonceMask)

		if nonce > iterLimit {
			return WorkExhausted, nil
		} else if nonce > iterEnd {
			result = WorkUnfinished
		}
	}

	return result, nil
}

// CheckWork verifies every nonce of a stamped frame against the
// difficulty.
func CheckWork(buf []byte, difficulty uint64) error {
	size, err := frameSize(buf)
	if err != nil {
		return err
	}

	if difficulty == 0 {
		return nil
	}

	txhash, err := objHash(buf, size)
	if err != nil {
		return err
	}

	for proofIndex := uint(0); proofIndex < params.TxPowNproofs; proofIndex++ {
		var key [16]byte
		binary.LittleEndian.PutUint64(key[:8], priorKey(buf, proofIndex))

		nonce := readNonce(buf, proofIndex)
		binary.LittleEndian.PutUint64(key[8:],
			uint64(proofIndex)<<params.TxPowNonceBits|nonce)

		if siphash.Sum64(txhash[:], &key) >= difficulty {
			return errors.New("proof of work difficulty not met")
		}
	}

	return nil
}

// ComputePOW searches a single trailing 64-bit nonce for a bare message:
// the hash is keyed by the expiration time rather than chained.
func ComputePOW(data []byte, difficulty, expiration uint64, nonce *uint64) int {
	if difficulty == 0 {
		return WorkDone
	}

	var key [16]byte
	binary.LittleEndian.PutUint64(key[:8], expiration)

	for n := *nonce; ; n++ {
		if shutdown.Load() {
			return WorkCancelled
		}

		binary.LittleEndian.PutUint64(key[8:], n)
		if siphash.Sum64(data, &key) < difficulty {
			*nonce = n
			return WorkDone
		}

		if n == ^uint64(0) {
			*nonce = n
			return WorkExhausted
		}
	}
}

// CheckPOW verifies a bare-message nonce.
func CheckPOW(data []byte, difficulty, expiration, nonce uint64) error {
	if difficulty == 0 {
		return nil
	}

	var key [16]byte
	binary.LittleEndian.PutUint64(key[:8], expiration)
	binary.LittleEndian.PutUint64(key[8:], nonce)

	if siphash.Sum64(data, &key) >= difficulty {
		return errors.New("proof of work difficulty not met")
	}
	return nil
}
