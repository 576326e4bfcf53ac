// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snark

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func msmG1(points []bn254.G1Affine, scalars []fr.Element) (bn254.G1Affine, error) {
	var acc bn254.G1Jac
	if _, err := acc.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return bn254.G1Affine{}, err
	}
	var out bn254.G1Affine
	out.FromJacobian(&acc)
	return out, nil
}

func msmG2(points []bn254.G2Affine, scalars []fr.Element) (bn254.G2Affine, error) {
	var acc bn254.G2Jac
	if _, err := acc.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return bn254.G2Affine{}, err
	}
	var out bn254.G2Affine
	out.FromJacobian(&acc)
	return out, nil
}

func addScaledG1(dst *bn254.G1Affine, p *bn254.G1Affine, s *fr.Element) {
	var t bn254.G1Affine
	t.ScalarMultiplication(p, s.BigInt(new(big.Int)))
	dst.Add(dst, &t)
}

func addScaledG2(dst *bn254.G2Affine, p *bn254.G2Affine, s *fr.Element) {
	var t bn254.G2Affine
	t.ScalarMultiplication(p, s.BigInt(new(big.Int)))
	dst.Add(dst, &t)
}

// Prove builds a proof for the assignment held in s. The system must be
// satisfied and its shape must match the proving key.
func Prove(s *System, pk *ProveKey) (*Proof, error) {
	if !s.InputClosed() {
		return nil, ErrInputsOpen
	}
	if s.NumVars() != len(pk.A) || s.NumPublic() != pk.NumPublic {
		return nil, ErrBadKeyData
	}
	if !s.IsSatisfied() {
		return nil, ErrUnsatisfied
	}

	domain := domainFor(s)
	if domain.Cardinality != pk.DomainN {
		return nil, ErrBadKeyData
	}

	// proof randomization
	var d1, d2, d3 fr.Element
	for _, e := range []*fr.Element{&d1, &d2, &d3} {
		if _, err := e.SetRandom(); err != nil {
			return nil, err
		}
	}

	values := s.values
	pub := pk.NumPublic

	proof := &Proof{}
	var err error

	// the A side over witness variables only; the public share is bound
	// by the verification key
	if proof.A, err = msmG1(pk.A[pub+1:], values[pub+1:]); err != nil {
		return nil, err
	}
	if proof.Ap, err = msmG1(pk.Ap[pub+1:], values[pub+1:]); err != nil {
		return nil, err
	}
	if proof.B, err = msmG2(pk.B, values); err != nil {
		return nil, err
	}
	if proof.Bp, err = msmG1(pk.Bp, values); err != nil {
		return nil, err
	}
	if proof.C, err = msmG1(pk.C, values); err != nil {
		return nil, err
	}
	if proof.Cp, err = msmG1(pk.Cp, values); err != nil {
		return nil, err
	}
	if proof.K, err = msmG1(pk.K, values); err != nil {
		return nil, err
	}

	addScaledG1(&proof.A, &pk.ZA, &d1)
	addScaledG1(&proof.Ap, &pk.ZAp, &d1)
	addScaledG2(&proof.B, &pk.ZB, &d2)
	addScaledG1(&proof.Bp, &pk.ZBp, &d2)
	addScaledG1(&proof.C, &pk.ZC, &d3)
	addScaledG1(&proof.Cp, &pk.ZCp, &d3)
	addScaledG1(&proof.K, &pk.ZK1, &d1)
	addScaledG1(&proof.K, &pk.ZK2, &d2)
	addScaledG1(&proof.K, &pk.ZK3, &d3)

	// H(x) = (A B - C) / Z, shifted for the randomizers:
	// H' = H + d1*B(x) + d2*A(x) + d1*d2*Z(x) - d3
	h := hPoly(s, domain)
	aPoly := sideCoeffs(s, domain, 0)
	bPoly := sideCoeffs(s, domain, 1)

	n := int(domain.Cardinality)
	hs := make([]fr.Element, n+1)
	copy(hs, h)

	var t fr.Element
	for j := 0; j < n; j++ {
		t.Mul(&d1, &bPoly[j])
		hs[j].Add(&hs[j], &t)
		t.Mul(&d2, &aPoly[j])
		hs[j].Add(&hs[j], &t)
	}
	// d1*d2*Z(x) = d1*d2*(x^n - 1)
	var d12 fr.Element
	d12.Mul(&d1, &d2)
	hs[n].Add(&hs[n], &d12)
	hs[0].Sub(&hs[0], &d12)
	hs[0].Sub(&hs[0], &d3)

	if proof.H, err = msmG1(pk.H[:len(hs)], hs); err != nil {
		return nil, err
	}

	return proof, nil
}
