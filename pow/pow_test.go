// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pow

import (
	"encoding/binary"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/cclib/params"
)

func testFrame(t *testing.T, bodyLen int) []byte {
	t.Helper()
	size := params.CCMsgHeaderSize + params.TxPowSize + bodyLen
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf, uint32(size))
	binary.LittleEndian.PutUint32(buf[4:], params.TagTx)
	rng := rand.New(rand.NewSource(21))
	rng.Read(buf[params.CCMsgHeaderSize+params.TxPowSize:])
	return buf
}

func TestResetWork(t *testing.T) {
	buf := testFrame(t, 64)
	require.NoError(t, ResetWork(buf, 1234567890))

	pow := buf[params.CCMsgHeaderSize : params.CCMsgHeaderSize+params.TxPowSize]
	require.Equal(t, uint64(1234567890), binary.LittleEndian.Uint64(pow))
	for _, b := range pow[8:] {
		require.Zero(t, b)
	}

	require.Error(t, ResetWork(buf[:10], 1))
}

func TestSetCheckWork(t *testing.T) {
	buf := testFrame(t, 128)
	require.NoError(t, ResetWork(buf, 1700000000))

	// difficulty 2^48: about 2^16 tries per nonce
	difficulty := uint64(1) << 48

	rc, err := SetWork(buf, 0, params.TxPowNproofs, 1<<24, difficulty)
	require.NoError(t, err)
	require.Equal(t, WorkDone, rc)

	require.NoError(t, CheckWork(buf, difficulty))

	// perturbing the body invalidates the stamps
	buf[len(buf)-1] ^= 1
	require.Error(t, CheckWork(buf, difficulty))
	buf[len(buf)-1] ^= 1

	// perturbing a nonce invalidates it
	buf[params.CCMsgHeaderSize+8] ^= 1
	require.Error(t, CheckWork(buf, difficulty))
}

func TestSetWorkIterationBudget(t *testing.T) {
	buf := testFrame(t, 32)
	require.NoError(t, ResetWork(buf, 1700000000))

	// an impossible difficulty with a tiny budget reports unfinished
	rc, err := SetWork(buf, 0, 1, 4, 1)
	require.NoError(t, err)
	require.Equal(t, WorkUnfinished, rc)

	// progress was recorded for resumption
	require.NotZero(t, buf[params.CCMsgHeaderSize+8])
}

func TestSetWorkCancel(t *testing.T) {
	buf := testFrame(t, 32)
	require.NoError(t, ResetWork(buf, 1700000000))

	SetShutdown(true)
	defer SetShutdown(false)

	rc, err := SetWork(buf, 0, 1, 1<<20, 1)
	require.NoError(t, err)
	require.Equal(t, WorkCancelled, rc)
}

func TestZeroDifficulty(t *testing.T) {
	buf := testFrame(t, 32)
	require.NoError(t, ResetWork(buf, 1700000000))

	rc, err := SetWork(buf, 0, params.TxPowNproofs, 1, 0)
	require.NoError(t, err)
	require.Equal(t, WorkDone, rc)
	require.NoError(t, CheckWork(buf, 0))
}

func TestBareMessagePOW(t *testing.T) {
	data := []byte("naked buy request body")
	difficulty := uint64(1) << 48

	var nonce uint64
	rc := ComputePOW(data, difficulty, 1800000000, &nonce)
	require.Equal(t, WorkDone, rc)
	require.NoError(t, CheckPOW(data, difficulty, 1800000000, nonce))

	// a different expiration key fails
	require.Error(t, CheckPOW(data, difficulty, 1800000001, nonce))
}

func TestObjIDStable(t *testing.T) {
	buf := testFrame(t, 64)
	require.NoError(t, ResetWork(buf, 42))

	id1, err := ComputeObjID(buf)
	require.NoError(t, err)
	id2, err := ComputeObjID(buf)
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	// the id covers the PoW region
	buf[params.CCMsgHeaderSize+9] ^= 1
	id3, err := ComputeObjID(buf)
	require.NoError(t, err)
	require.NotEqual(t, id1, id3)
}

func TestCheckTimestamp(t *testing.T) {
	require.Error(t, CheckTimestamp(0, 60, 60))
	require.NoError(t, CheckTimestamp(uint64(time.Now().Unix()), 60, 60))
	require.Error(t, CheckTimestamp(uint64(time.Now().Unix())+3600, 60, 60))
}
