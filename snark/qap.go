// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snark

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// The quadratic arithmetic program view of a constraint system:
// constraint j is attached to evaluation point omega^j of a radix-2
// domain, and A_i/B_i/C_i are the polynomials interpolating variable i's
// coefficients across constraints.

func domainFor(s *System) *fft.Domain {
	n := uint64(s.NumConstraints() + 1)
	return fft.NewDomain(n)
}

// lagrangeAtTau evaluates every Lagrange basis polynomial of the domain
// at the secret point tau: L_j(tau) = Z(tau)/n * omega^j / (tau - omega^j).
func lagrangeAtTau(domain *fft.Domain, tau fr.Element) ([]fr.Element, fr.Element) {
	n := int(domain.Cardinality)

	var zTau fr.Element
	zTau.Exp(tau, big.NewInt(int64(n)))
	var one fr.Element
	one.SetOne()
	zTau.Sub(&zTau, &one) // tau^n - 1

	// common factor Z(tau)/n
	var nInv fr.Element
	nInv.SetUint64(uint64(n))
	nInv.Inverse(&nInv)
	var common fr.Element
	common.Mul(&zTau, &nInv)

	out := make([]fr.Element, n)
	omega := domain.Generator

	var wj fr.Element
	wj.SetOne()
	for j := 0; j < n; j++ {
		var den fr.Element
		den.Sub(&tau, &wj)
		den.Inverse(&den)
		out[j].Mul(&common, &wj)
		out[j].Mul(&out[j], &den)
		wj.Mul(&wj, &omega)
	}

	return out, zTau
}

// qapEvalAtTau computes A_i(tau), B_i(tau), C_i(tau) for every variable.
func qapEvalAtTau(s *System, lag []fr.Element) (a, b, c []fr.Element) {
	nv := s.NumVars()
	a = make([]fr.Element, nv)
	b = make([]fr.Element, nv)
	c = make([]fr.Element, nv)

	accumulate := func(dst []fr.Element, lc LC, lj *fr.Element) {
		var t fr.Element
		for _, term := range lc {
			t.Mul(&term.Coeff, lj)
			dst[term.Var].Add(&dst[term.Var], &t)
		}
	}

	for j := range s.constraints {
		cs := &s.constraints[j]
		lj := &lag[j]
		accumulate(a, cs.A, lj)
		accumulate(b, cs.B, lj)
		accumulate(c, cs.C, lj)
	}
	return a, b, c
}

// hPoly computes the coefficients of H(x) = (A(x)B(x) - C(x)) / Z(x)
// for the full assignment, via coset FFTs.
func hPoly(s *System, domain *fft.Domain) []fr.Element {
	n := int(domain.Cardinality)

	a := make([]fr.Element, n)
	b := make([]fr.Element, n)
	c := make([]fr.Element, n)

	for j := range s.constraints {
		cs := &s.constraints[j]
		a[j] = s.evalLC(cs.A)
		b[j] = s.evalLC(cs.B)
		c[j] = s.evalLC(cs.C)
	}

	// interpolate, then evaluate on the coset where Z is invertible
	domain.FFTInverse(a, fft.DIF)
	domain.FFTInverse(b, fft.DIF)
	domain.FFTInverse(c, fft.DIF)

	domain.FFT(a, fft.DIT, fft.OnCoset())
	domain.FFT(b, fft.DIT, fft.OnCoset())
	domain.FFT(c, fft.DIT, fft.OnCoset())

	// Z is constant on the coset: Z(g w^j) = g^n - 1
	var zCoset fr.Element
	zCoset.Exp(domain.FrMultiplicativeGen, big.NewInt(int64(n)))
	var one fr.Element
	one.SetOne()
	zCoset.Sub(&zCoset, &one)
	var zInv fr.Element
	zInv.Inverse(&zCoset)

	h := make([]fr.Element, n)
	for j := 0; j < n; j++ {
		h[j].Mul(&a[j], &b[j])
		h[j].Sub(&h[j], &c[j])
		h[j].Mul(&h[j], &zInv)
	}

	domain.FFTInverse(h, fft.DIF, fft.OnCoset())
	fft.BitReverse(h)

	return h
}

// sideCoeffs interpolates the per-constraint evaluations of one side of
// the system into polynomial coefficients, for the zero-knowledge shift
// terms of the prover.
func sideCoeffs(s *System, domain *fft.Domain, side int) []fr.Element {
	n := int(domain.Cardinality)
	v := make([]fr.Element, n)
	for j := range s.constraints {
		cs := &s.constraints[j]
		switch side {
		case 0:
			v[j] = s.evalLC(cs.A)
		case 1:
			v[j] = s.evalLC(cs.B)
		default:
			v[j] = s.evalLC(cs.C)
		}
	}
	domain.FFTInverse(v, fft.DIF)
	fft.BitReverse(v)
	return v
}
