// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snark

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Verify checks proof against the verification key and the public
// inputs. It retraces nothing about the witness; the public assignment
// alone decides the outcome.
func Verify(proof *Proof, vk *VerifyKey, public []fr.Element) (bool, error) {
	if len(public) != len(vk.IC)-1 {
		return false, ErrBadKeyData
	}

	g2 := g2Gen()

	// VK_x = IC[0] + sum(public_i * IC[i+1])
	vkx := vk.IC[0]
	for i := range public {
		var t bn254.G1Affine
		t.ScalarMultiplication(&vk.IC[i+1], public[i].BigInt(new(big.Int)))
		vkx.Add(&vkx, &t)
	}

	var neg bn254.G1Affine

	// knowledge commitment checks: each query side was built from the
	// same polynomial evaluations
	neg.Neg(&proof.Ap)
	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{proof.A, neg},
		[]bn254.G2Affine{vk.AlphaA, g2})
	if err != nil || !ok {
		return false, err
	}

	neg.Neg(&proof.Bp)
	ok, err = bn254.PairingCheck(
		[]bn254.G1Affine{vk.AlphaB, neg},
		[]bn254.G2Affine{proof.B, g2})
	if err != nil || !ok {
		return false, err
	}

	neg.Neg(&proof.Cp)
	ok, err = bn254.PairingCheck(
		[]bn254.G1Affine{proof.C, neg},
		[]bn254.G2Affine{vk.AlphaC, g2})
	if err != nil || !ok {
		return false, err
	}

	// QAP divisibility: e(VKx + A, B) = e(H, rhoZ) * e(C, g2)
	var aFull bn254.G1Affine
	aFull.Add(&vkx, &proof.A)

	var negH, negC bn254.G1Affine
	negH.Neg(&proof.H)
	negC.Neg(&proof.C)

	ok, err = bn254.PairingCheck(
		[]bn254.G1Affine{aFull, negH, negC},
		[]bn254.G2Affine{proof.B, vk.RhoZ, g2})
	if err != nil || !ok {
		return false, err
	}

	// same-coefficient check over K:
	// e(K, gamma) = e(VKx + A + C, betaGamma2) * e(betaGamma1, B)
	var acc bn254.G1Affine
	acc.Add(&aFull, &proof.C)
	var negAcc, negBG bn254.G1Affine
	negAcc.Neg(&acc)
	negBG.Neg(&vk.BetaGamma1)

	ok, err = bn254.PairingCheck(
		[]bn254.G1Affine{proof.K, negAcc, negBG},
		[]bn254.G2Affine{vk.Gamma, vk.BetaGamma2, proof.B})
	if err != nil || !ok {
		return false, err
	}

	return true, nil
}
