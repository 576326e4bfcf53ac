// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snark provides the constraint system builder and the pairing
// based proof engine behind the transaction circuit. The contract is
// narrow: the circuit layer feeds it a rank-1 constraint system with an
// assignment, and gets back a compact proof that verifies against a
// verification key using only the public inputs.
package snark

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	ErrInputsClosed  = errors.New("public input section already closed")
	ErrInputsOpen    = errors.New("public input section still open")
	ErrUnsatisfied   = errors.New("constraint system not satisfied")
	ErrPointAtInfinity = errors.New("proof element is the point at infinity")
	ErrBadProofData  = errors.New("malformed proof data")
	ErrBadKeyData    = errors.New("malformed key data")
)

// Term is one (variable, coefficient) pair of a linear combination.
type Term struct {
	Var   int
	Coeff fr.Element
}

// LC is a linear combination over system variables. Variable 0 is the
// constant ONE wire.
type LC []Term

// Constraint is a rank-1 constraint A * B = C.
type Constraint struct {
	A, B, C LC
}

// System accumulates variables, their assignment, and constraints.
// Variables are allocated in bless order: ONE, then the public inputs,
// then witness variables. The allocation order must be identical between
// prover and verifier, so callers run the same blessing sequence on both
// sides.
type System struct {
	values      []fr.Element
	numPublic   int // public variables, excluding ONE
	inputClosed bool
	constraints []Constraint
}

// NewSystem starts an empty system holding only the ONE wire.
func NewSystem() *System {
	s := &System{}
	var one fr.Element
	one.SetOne()
	s.values = append(s.values, one)
	return s
}

// NumVars returns the variable count including ONE.
func (s *System) NumVars() int { return len(s.values) }

// NumPublic returns the public input count excluding ONE.
func (s *System) NumPublic() int { return s.numPublic }

// NumConstraints returns the constraint count.
func (s *System) NumConstraints() int { return len(s.constraints) }

// EndInput closes the public input section. Variables allocated after
// this call are witness-only.
func (s *System) EndInput() {
	s.inputClosed = true
}

// InputClosed reports whether the public section is closed.
func (s *System) InputClosed() bool { return s.inputClosed }

// alloc creates a new variable carrying val.
func (s *System) alloc(val fr.Element) int {
	idx := len(s.values)
	s.values = append(s.values, val)
	if !s.inputClosed {
		s.numPublic++
	}
	return idx
}

// PublicValues returns a copy of the public input assignment (without
// the ONE wire).
func (s *System) PublicValues() []fr.Element {
	out := make([]fr.Element, s.numPublic)
	copy(out, s.values[1:1+s.numPublic])
	return out
}

// AddConstraint appends a raw constraint.
func (s *System) AddConstraint(c Constraint) {
	s.constraints = append(s.constraints, c)
}

// evalLC evaluates a linear combination against the assignment.
func (s *System) evalLC(lc LC) fr.Element {
	var sum, t fr.Element
	for _, term := range lc {
		t.Mul(&term.Coeff, &s.values[term.Var])
		sum.Add(&sum, &t)
	}
	return sum
}

// IsSatisfied checks every constraint against the assignment.
func (s *System) IsSatisfied() bool {
	for i := range s.constraints {
		c := &s.constraints[i]
		a := s.evalLC(c.A)
		b := s.evalLC(c.B)
		cc := s.evalLC(c.C)
		a.Mul(&a, &b)
		if !a.Equal(&cc) {
			return false
		}
	}
	return true
}

// Expr is a linear expression with its evaluated value. Linear operators
// are free; multiplication allocates an intermediate witness variable
// carrying the product, with a constraint binding it.
type Expr struct {
	sys *System
	lc  LC
	val fr.Element
}

// Bless allocates a fresh variable carrying val and returns it as an
// expression. This is the only way circuit inputs enter the system.
func (s *System) Bless(val fr.Element) Expr {
	idx := s.alloc(val)
	var one fr.Element
	one.SetOne()
	return Expr{sys: s, lc: LC{{Var: idx, Coeff: one}}, val: val}
}

// Constant wraps a constant as an expression on the ONE wire.
func (s *System) Constant(val fr.Element) Expr {
	return Expr{sys: s, lc: LC{{Var: 0, Coeff: val}}, val: val}
}

// ConstantUint wraps a uint64 constant.
func (s *System) ConstantUint(v uint64) Expr {
	var e fr.Element
	e.SetUint64(v)
	return s.Constant(e)
}

// Value returns the evaluated value of the expression.
func (e Expr) Value() fr.Element { return e.val }

func mergeLC(a, b LC, negB bool) LC {
	out := make(LC, 0, len(a)+len(b))
	out = append(out, a...)
	for _, t := range b {
		if negB {
			t.Coeff.Neg(&t.Coeff)
		}
		out = append(out, t)
	}
	return out
}

// Add returns e + o without adding constraints.
func (e Expr) Add(o Expr) Expr {
	var v fr.Element
	v.Add(&e.val, &o.val)
	return Expr{sys: e.sys, lc: mergeLC(e.lc, o.lc, false), val: v}
}

// Sub returns e - o without adding constraints.
func (e Expr) Sub(o Expr) Expr {
	var v fr.Element
	v.Sub(&e.val, &o.val)
	return Expr{sys: e.sys, lc: mergeLC(e.lc, o.lc, true), val: v}
}

// Scale returns k * e without adding constraints.
func (e Expr) Scale(k fr.Element) Expr {
	out := Expr{sys: e.sys, lc: make(LC, len(e.lc))}
	for i, t := range e.lc {
		t.Coeff.Mul(&t.Coeff, &k)
		out.lc[i] = t
	}
	out.val.Mul(&e.val, &k)
	return out
}

// ScaleUint returns k * e.
func (e Expr) ScaleUint(k uint64) Expr {
	var f fr.Element
	f.SetUint64(k)
	return e.Scale(f)
}

// Mul returns e * o, allocating a product witness variable and the
// constraint e * o = product.
func (e Expr) Mul(o Expr) Expr {
	s := e.sys
	var v fr.Element
	v.Mul(&e.val, &o.val)

	idx := s.alloc(v)
	var one fr.Element
	one.SetOne()
	prod := LC{{Var: idx, Coeff: one}}

	s.AddConstraint(Constraint{A: e.lc, B: o.lc, C: prod})

	return Expr{sys: s, lc: prod, val: v}
}

// ConstrainZero adds the constraint e = 0.
func (s *System) ConstrainZero(e Expr) {
	var one fr.Element
	one.SetOne()
	s.AddConstraint(Constraint{
		A: e.lc,
		B: LC{{Var: 0, Coeff: one}},
		C: nil,
	})
}

// AddBooleanity constrains e to 0 or 1 via e * (1 - e) = 0.
func (s *System) AddBooleanity(e Expr) {
	var one fr.Element
	one.SetOne()
	oneExpr := s.Constant(one)
	s.AddConstraint(Constraint{
		A: e.lc,
		B: oneExpr.Sub(e).lc,
		C: nil,
	})
}

// ConstrainEqual adds the constraint a = b.
func (s *System) ConstrainEqual(a, b Expr) {
	s.ConstrainZero(a.Sub(b))
}
