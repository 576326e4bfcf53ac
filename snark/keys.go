// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snark

import (
	"encoding/binary"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ProveKey holds the per-variable query elements of the proving side.
// Slices indexed by variable cover every variable including ONE; the A
// queries for public variables are unused by the prover (their share of
// the A side lives in the verification key).
type ProveKey struct {
	NumPublic int
	DomainN   uint64

	A, Ap  []bn254.G1Affine
	B      []bn254.G2Affine
	Bp     []bn254.G1Affine
	C, Cp  []bn254.G1Affine
	K      []bn254.G1Affine
	H      []bn254.G1Affine // powers of tau, degree 0..DomainN

	// zero-knowledge shift elements (the vanishing polynomial at tau
	// under each query's blinding)
	ZA, ZAp       bn254.G1Affine
	ZB            bn254.G2Affine
	ZBp, ZC, ZCp  bn254.G1Affine
	ZK1, ZK2, ZK3 bn254.G1Affine
}

// VerifyKey holds the verifier side. IC has one entry per public input
// plus the ONE wire.
type VerifyKey struct {
	AlphaA     bn254.G2Affine
	AlphaB     bn254.G1Affine
	AlphaC     bn254.G2Affine
	Gamma      bn254.G2Affine
	BetaGamma1 bn254.G1Affine
	BetaGamma2 bn254.G2Affine
	RhoZ       bn254.G2Affine
	IC         []bn254.G1Affine
}

// Proof is the eight-element proof: seven G1 points (K being the
// knowledge commitment) and one G2 point, which fill nine wire values.
type Proof struct {
	A, Ap  bn254.G1Affine
	B      bn254.G2Affine
	Bp     bn254.G1Affine
	C, Cp  bn254.G1Affine
	H, K   bn254.G1Affine
}

func g1Gen() bn254.G1Affine {
	_, _, g1, _ := bn254.Generators()
	return g1
}

func g2Gen() bn254.G2Affine {
	_, _, _, g2 := bn254.Generators()
	return g2
}

func g1Scalar(s *fr.Element) bn254.G1Affine {
	var p bn254.G1Affine
	g := g1Gen()
	p.ScalarMultiplication(&g, s.BigInt(new(big.Int)))
	return p
}

func g2Scalar(s *fr.Element) bn254.G2Affine {
	var p bn254.G2Affine
	g := g2Gen()
	p.ScalarMultiplication(&g, s.BigInt(new(big.Int)))
	return p
}

// Setup samples a keypair for the system's constraint structure. The
// assignment present in s is ignored; only the shape matters.
func Setup(s *System) (*ProveKey, *VerifyKey, error) {
	if !s.InputClosed() {
		return nil, nil, ErrInputsOpen
	}

	domain := domainFor(s)
	n := int(domain.Cardinality)
	nv := s.NumVars()

	var tau, rhoA, rhoB, alphaA, alphaB, alphaC, beta, gamma fr.Element
	for _, e := range []*fr.Element{&tau, &rhoA, &rhoB, &alphaA, &alphaB, &alphaC, &beta, &gamma} {
		if _, err := e.SetRandom(); err != nil {
			return nil, nil, err
		}
	}

	lag, zTau := lagrangeAtTau(domain, tau)
	aT, bT, cT := qapEvalAtTau(s, lag)

	var rhoAB fr.Element
	rhoAB.Mul(&rhoA, &rhoB)

	pk := &ProveKey{
		NumPublic: s.NumPublic(),
		DomainN:   domain.Cardinality,
		A:         make([]bn254.G1Affine, nv),
		Ap:        make([]bn254.G1Affine, nv),
		B:         make([]bn254.G2Affine, nv),
		Bp:        make([]bn254.G1Affine, nv),
		C:         make([]bn254.G1Affine, nv),
		Cp:        make([]bn254.G1Affine, nv),
		K:         make([]bn254.G1Affine, nv),
		H:         make([]bn254.G1Affine, n+1),
	}

	var t1, t2 fr.Element
	for i := 0; i < nv; i++ {
		t1.Mul(&rhoA, &aT[i])
		pk.A[i] = g1Scalar(&t1)
		t2.Mul(&t1, &alphaA)
		pk.Ap[i] = g1Scalar(&t2)

		t1.Mul(&rhoB, &bT[i])
		pk.B[i] = g2Scalar(&t1)
		t2.Mul(&t1, &alphaB)
		pk.Bp[i] = g1Scalar(&t2)

		t1.Mul(&rhoAB, &cT[i])
		pk.C[i] = g1Scalar(&t1)
		t2.Mul(&t1, &alphaC)
		pk.Cp[i] = g1Scalar(&t2)

		// beta * (rhoA A_i + rhoB B_i + rhoA rhoB C_i)
		var k fr.Element
		t1.Mul(&rhoA, &aT[i])
		k.Set(&t1)
		t1.Mul(&rhoB, &bT[i])
		k.Add(&k, &t1)
		t1.Mul(&rhoAB, &cT[i])
		k.Add(&k, &t1)
		k.Mul(&k, &beta)
		pk.K[i] = g1Scalar(&k)
	}

	var tPow fr.Element
	tPow.SetOne()
	for j := 0; j <= n; j++ {
		pk.H[j] = g1Scalar(&tPow)
		tPow.Mul(&tPow, &tau)
	}

	// vanishing polynomial shifts for proof randomization
	var zA, zB, zAB fr.Element
	zA.Mul(&rhoA, &zTau)
	zB.Mul(&rhoB, &zTau)
	zAB.Mul(&rhoAB, &zTau)

	pk.ZA = g1Scalar(&zA)
	t1.Mul(&zA, &alphaA)
	pk.ZAp = g1Scalar(&t1)
	pk.ZB = g2Scalar(&zB)
	t1.Mul(&zB, &alphaB)
	pk.ZBp = g1Scalar(&t1)
	pk.ZC = g1Scalar(&zAB)
	t1.Mul(&zAB, &alphaC)
	pk.ZCp = g1Scalar(&t1)

	t1.Mul(&zA, &beta)
	pk.ZK1 = g1Scalar(&t1)
	t1.Mul(&zB, &beta)
	pk.ZK2 = g1Scalar(&t1)
	t1.Mul(&zAB, &beta)
	pk.ZK3 = g1Scalar(&t1)

	var betaGamma fr.Element
	betaGamma.Mul(&beta, &gamma)

	vk := &VerifyKey{
		AlphaA:     g2Scalar(&alphaA),
		AlphaB:     g1Scalar(&alphaB),
		AlphaC:     g2Scalar(&alphaC),
		Gamma:      g2Scalar(&gamma),
		BetaGamma1: g1Scalar(&betaGamma),
		BetaGamma2: g2Scalar(&betaGamma),
		IC:         make([]bn254.G1Affine, s.NumPublic()+1),
	}

	var rhoZ fr.Element
	rhoZ.Mul(&rhoAB, &zTau)
	vk.RhoZ = g2Scalar(&rhoZ)

	for i := 0; i <= s.NumPublic(); i++ {
		t1.Mul(&rhoA, &aT[i])
		vk.IC[i] = g1Scalar(&t1)
	}

	return pk, vk, nil
}

// --- serialization -------------------------------------------------------

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeG1(w io.Writer, p *bn254.G1Affine) error {
	b := p.RawBytes()
	_, err := w.Write(b[:])
	return err
}

func readG1(r io.Reader, p *bn254.G1Affine) error {
	var b [bn254.SizeOfG1AffineUncompressed]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}
	if _, err := p.SetBytes(b[:]); err != nil {
		return ErrBadKeyData
	}
	return nil
}

func writeG2(w io.Writer, p *bn254.G2Affine) error {
	b := p.RawBytes()
	_, err := w.Write(b[:])
	return err
}

func readG2(r io.Reader, p *bn254.G2Affine) error {
	var b [bn254.SizeOfG2AffineUncompressed]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}
	if _, err := p.SetBytes(b[:]); err != nil {
		return ErrBadKeyData
	}
	return nil
}

// WriteTo serializes the proving key.
func (pk *ProveKey) WriteTo(w io.Writer) error {
	if err := writeU32(w, uint32(pk.NumPublic)); err != nil {
		return err
	}
	if err := writeU32(w, uint32(pk.DomainN)); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(pk.A))); err != nil {
		return err
	}
	for i := range pk.A {
		if err := writeG1(w, &pk.A[i]); err != nil {
			return err
		}
		if err := writeG1(w, &pk.Ap[i]); err != nil {
			return err
		}
		if err := writeG2(w, &pk.B[i]); err != nil {
			return err
		}
		if err := writeG1(w, &pk.Bp[i]); err != nil {
			return err
		}
		if err := writeG1(w, &pk.C[i]); err != nil {
			return err
		}
		if err := writeG1(w, &pk.Cp[i]); err != nil {
			return err
		}
		if err := writeG1(w, &pk.K[i]); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(pk.H))); err != nil {
		return err
	}
	for i := range pk.H {
		if err := writeG1(w, &pk.H[i]); err != nil {
			return err
		}
	}
	for _, p := range []*bn254.G1Affine{&pk.ZA, &pk.ZAp, &pk.ZBp, &pk.ZC, &pk.ZCp, &pk.ZK1, &pk.ZK2, &pk.ZK3} {
		if err := writeG1(w, p); err != nil {
			return err
		}
	}
	return writeG2(w, &pk.ZB)
}

// ReadFrom deserializes a proving key.
func (pk *ProveKey) ReadFrom(r io.Reader) error {
	np, err := readU32(r)
	if err != nil {
		return err
	}
	dn, err := readU32(r)
	if err != nil {
		return err
	}
	nv, err := readU32(r)
	if err != nil {
		return err
	}
	if nv > 1<<26 {
		return ErrBadKeyData
	}

	pk.NumPublic = int(np)
	pk.DomainN = uint64(dn)
	pk.A = make([]bn254.G1Affine, nv)
	pk.Ap = make([]bn254.G1Affine, nv)
	pk.B = make([]bn254.G2Affine, nv)
	pk.Bp = make([]bn254.G1Affine, nv)
	pk.C = make([]bn254.G1Affine, nv)
	pk.Cp = make([]bn254.G1Affine, nv)
	pk.K = make([]bn254.G1Affine, nv)

	for i := 0; i < int(nv); i++ {
		if err := readG1(r, &pk.A[i]); err != nil {
			return err
		}
		if err := readG1(r, &pk.Ap[i]); err != nil {
			return err
		}
		if err := readG2(r, &pk.B[i]); err != nil {
			return err
		}
		if err := readG1(r, &pk.Bp[i]); err != nil {
			return err
		}
		if err := readG1(r, &pk.C[i]); err != nil {
			return err
		}
		if err := readG1(r, &pk.Cp[i]); err != nil {
			return err
		}
		if err := readG1(r, &pk.K[i]); err != nil {
			return err
		}
	}

	nh, err := readU32(r)
	if err != nil {
		return err
	}
	if nh > 1<<26 {
		return ErrBadKeyData
	}
	pk.H = make([]bn254.G1Affine, nh)
	for i := 0; i < int(nh); i++ {
		if err := readG1(r, &pk.H[i]); err != nil {
			return err
		}
	}

	for _, p := range []*bn254.G1Affine{&pk.ZA, &pk.ZAp, &pk.ZBp, &pk.ZC, &pk.ZCp, &pk.ZK1, &pk.ZK2, &pk.ZK3} {
		if err := readG1(r, p); err != nil {
			return err
		}
	}
	return readG2(r, &pk.ZB)
}

// WriteTo serializes the verification key.
func (vk *VerifyKey) WriteTo(w io.Writer) error {
	for _, p := range []*bn254.G2Affine{&vk.AlphaA, &vk.AlphaC, &vk.Gamma, &vk.BetaGamma2, &vk.RhoZ} {
		if err := writeG2(w, p); err != nil {
			return err
		}
	}
	for _, p := range []*bn254.G1Affine{&vk.AlphaB, &vk.BetaGamma1} {
		if err := writeG1(w, p); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(vk.IC))); err != nil {
		return err
	}
	for i := range vk.IC {
		if err := writeG1(w, &vk.IC[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrom deserializes a verification key.
func (vk *VerifyKey) ReadFrom(r io.Reader) error {
	for _, p := range []*bn254.G2Affine{&vk.AlphaA, &vk.AlphaC, &vk.Gamma, &vk.BetaGamma2, &vk.RhoZ} {
		if err := readG2(r, p); err != nil {
			return err
		}
	}
	for _, p := range []*bn254.G1Affine{&vk.AlphaB, &vk.BetaGamma1} {
		if err := readG1(r, p); err != nil {
			return err
		}
	}
	n, err := readU32(r)
	if err != nil {
		return err
	}
	if n > 1<<20 {
		return ErrBadKeyData
	}
	vk.IC = make([]bn254.G1Affine, n)
	for i := range vk.IC {
		if err := readG1(r, &vk.IC[i]); err != nil {
			return err
		}
	}
	return nil
}
