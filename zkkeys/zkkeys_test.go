// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package zkkeys

import (
	"path/filepath"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/cclib/snark"
)

func TestKeyTableShape(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	require.Equal(t, 16, s.NKeys())

	// the first eight keys cover nout {2,5} x ninw {1..4}
	for i := 0; i < 8; i++ {
		nout, nin, ninw := s.TxCounts(i)
		require.Equal(t, uint16(i%4+1), ninw)
		require.Equal(t, uint16((i/4)*3+2), nout)
		require.Equal(t, nin, ninw)
	}

	// the rest are 10-output keys
	for i := 8; i < 16; i++ {
		nout, _, ninw := s.TxCounts(i)
		require.Equal(t, uint16(10), nout)
		require.Equal(t, uint16(i-8+1), ninw)
	}

	// work order is non-decreasing
	prev := uint(0)
	for _, idx := range s.workorder {
		w := s.keytable[idx].Work
		require.GreaterOrEqual(t, w, prev)
		prev = w
	}
}

func TestKeyFileNames(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, nil)

	name := s.keyFileName(0, false)
	require.Equal(t, filepath.Join(dir, "CC-ZK-Prove-Key-0-2-1-0.dat"), name)

	name = s.keyFileName(9, true)
	require.Equal(t, filepath.Join(dir, "CC-ZK-Verify-Key-9-10-2-0.dat"), name)
}

func TestMissingKeys(t *testing.T) {
	s := NewStore(t.TempDir(), nil)

	_, err := s.ProveKey(0)
	require.ErrorIs(t, err, ErrNoKey)

	nout, nin, ninw := uint16(1), uint16(1), uint16(1)
	_, err = s.KeyIndex(&nout, &nin, &ninw)
	require.ErrorIs(t, err, ErrNoKey)

	require.Error(t, s.PreloadVerifyKeys(false))
}

func TestCheckPinned(t *testing.T) {
	s := NewStore(t.TempDir(), nil)

	nout, nin, ninw := uint16(10), uint16(8), uint16(8)
	require.ErrorIs(t, s.CheckPinned(0, &nout, &nin, &ninw), ErrInsufficientKey)

	nout, nin, ninw = 1, 1, 1
	require.NoError(t, s.CheckPinned(0, &nout, &nin, &ninw))
	require.Equal(t, uint16(2), nout) // rewritten to the key's shape
	require.Equal(t, uint16(1), ninw)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping keypair generation in short mode")
	}

	s := NewStore(t.TempDir(), nil)

	// a tiny stand-in system; the store does not inspect key shape
	sys := snark.NewSystem()
	pub := sys.Bless(fr.NewElement(12))
	sys.EndInput()
	w := sys.Bless(fr.NewElement(3))
	sys.ConstrainEqual(w.Mul(sys.Constant(fr.NewElement(4))), pub)

	pk, vk, err := snark.Setup(sys)
	require.NoError(t, err)
	require.NoError(t, s.SaveKeyPair(3, pk, vk))

	got, err := s.ProveKey(3)
	require.NoError(t, err)
	require.Equal(t, pk.NumPublic, got.NumPublic)

	gotVK, err := s.VerifyKey(3)
	require.NoError(t, err)
	require.Equal(t, len(vk.IC), len(gotVK.IC))

	// pinned fit now succeeds through KeyIndex as well
	nout, nin, ninw := uint16(2), uint16(2), uint16(2)
	idx, err := s.KeyIndex(&nout, &nin, &ninw)
	require.NoError(t, err)
	require.Equal(t, 3, idx)
}
