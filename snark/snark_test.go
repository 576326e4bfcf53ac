// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snark

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

// buildSystem constructs a small system proving knowledge of x, y with
// x*y = z and x + y = w for public z, w. verifyOnly stops after the
// public section, matching a verifier's view.
func buildSystem(x, y uint64, verifyOnly bool) *System {
	var xe, ye, ze, we fr.Element
	xe.SetUint64(x)
	ye.SetUint64(y)
	ze.Mul(&xe, &ye)
	we.Add(&xe, &ye)

	s := NewSystem()
	z := s.Bless(ze)
	w := s.Bless(we)
	s.EndInput()
	if verifyOnly {
		return s
	}

	xv := s.Bless(xe)
	yv := s.Bless(ye)

	prod := xv.Mul(yv)
	s.ConstrainEqual(prod, z)
	s.ConstrainEqual(xv.Add(yv), w)

	// exercise booleanity and scaling paths as well
	bit := s.Bless(fr.NewElement(1))
	s.AddBooleanity(bit)
	s.ConstrainZero(bit.ScaleUint(3).Sub(s.ConstantUint(3)))

	return s
}

func TestSystemSatisfied(t *testing.T) {
	s := buildSystem(6, 7, false)
	require.True(t, s.IsSatisfied())
	require.Equal(t, 2, s.NumPublic())

	// a wrong public input breaks satisfaction
	s2 := NewSystem()
	bad := s2.Bless(fr.NewElement(41))
	s2.EndInput()
	xv := s2.Bless(fr.NewElement(6))
	yv := s2.Bless(fr.NewElement(7))
	s2.ConstrainEqual(xv.Mul(yv), bad)
	require.False(t, s2.IsSatisfied())
}

func TestProveVerify(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping keypair generation in short mode")
	}

	s := buildSystem(6, 7, false)
	pk, vk, err := Setup(s)
	require.NoError(t, err)

	proof, err := Prove(s, pk)
	require.NoError(t, err)

	ok, err := Verify(proof, vk, s.PublicValues())
	require.NoError(t, err)
	require.True(t, ok)

	// verifying against wrong public inputs fails
	badPub := s.PublicValues()
	badPub[0].SetUint64(43)
	ok, err = Verify(proof, vk, badPub)
	require.NoError(t, err)
	require.False(t, ok)

	// an unsatisfied assignment refuses to prove
	sBad := buildSystem(6, 7, false)
	sBad.values[sBad.NumPublic()+1].SetUint64(999)
	_, err = Prove(sBad, pk)
	require.ErrorIs(t, err, ErrUnsatisfied)
}

func TestProofCompression(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping keypair generation in short mode")
	}

	s := buildSystem(3, 5, false)
	pk, vk, err := Setup(s)
	require.NoError(t, err)

	proof, err := Prove(s, pk)
	require.NoError(t, err)

	vec, err := proof.Compress()
	require.NoError(t, err)

	back, err := Decompress(vec)
	require.NoError(t, err)

	require.True(t, proof.A.Equal(&back.A))
	require.True(t, proof.Ap.Equal(&back.Ap))
	require.True(t, proof.B.Equal(&back.B))
	require.True(t, proof.Bp.Equal(&back.Bp))
	require.True(t, proof.C.Equal(&back.C))
	require.True(t, proof.Cp.Equal(&back.Cp))
	require.True(t, proof.H.Equal(&back.H))
	require.True(t, proof.K.Equal(&back.K))

	ok, err := Verify(back, vk, s.PublicValues())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestKeySerialization(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping keypair generation in short mode")
	}

	s := buildSystem(2, 9, false)
	pk, vk, err := Setup(s)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, pk.WriteTo(&buf))
	var pk2 ProveKey
	require.NoError(t, pk2.ReadFrom(&buf))
	require.Equal(t, pk.NumPublic, pk2.NumPublic)
	require.Equal(t, pk.DomainN, pk2.DomainN)
	require.Equal(t, len(pk.A), len(pk2.A))

	buf.Reset()
	require.NoError(t, vk.WriteTo(&buf))
	var vk2 VerifyKey
	require.NoError(t, vk2.ReadFrom(&buf))
	require.Equal(t, len(vk.IC), len(vk2.IC))

	// a proof from the reloaded proving key verifies under the reloaded
	// verification key
	proof, err := Prove(s, &pk2)
	require.NoError(t, err)
	ok, err := Verify(proof, &vk2, s.PublicValues())
	require.NoError(t, err)
	require.True(t, ok)
}
