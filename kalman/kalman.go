// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kalman implements the per-subdomain Kalman filter: prior
// propagation through the inverse model matrix and posterior correction
// from local sensor observations (spec §4.3). The prior/posterior split
// and the Symmetrize-after-update discipline follow the Predict/Update
// shape used by github.com/milosgajdos/go-estimate's kf.KF (design
// grounding only; this package stays on the teacher's own dense
// row-major convention instead of gonum.org/v1/gonum/mat).
package kalman

import (
	"github.com/fearghalodonncha/allscale-amdados/errs"
	"github.com/fearghalodonncha/allscale-amdados/linalg"
)

// PropagateStateInverse advances the prior through the inverse model
// matrix B (A = B^-1):
//
//  1. x <- B^-1 x            (one LU solve)
//  2. P <- A P Aᵀ             (two right-solves against B, no A materialised)
//  3. P <- P + Q, then Symmetrize(P)
func PropagateStateInverse(x linalg.Vector, P *linalg.Matrix, B *linalg.Matrix, Q *linalg.Matrix, lu *linalg.LU) error {
	n := len(x)
	if err := lu.Init(B); err != nil {
		return errs.New(errs.FactorizationFailure, "PropagateStateInverse: cannot factor B: %v", err)
	}

	xNext := linalg.NewVector(n)
	if err := lu.Solve(xNext, x); err != nil {
		return errs.New(errs.FactorizationFailure, "PropagateStateInverse: cannot solve B x = x_prev: %v", err)
	}
	copy(x, xNext)

	// tmp <- B^-1 P  (n x n right-solve)
	tmp := linalg.NewMatrix(n, n)
	if err := lu.BatchSolve(tmp, P); err != nil {
		return errs.New(errs.FactorizationFailure, "PropagateStateInverse: cannot solve B tmp = P: %v", err)
	}
	// P <- (B^-1 tmpᵀ)ᵀ = A P Aᵀ
	if err := lu.BatchSolveTr(P, linalg.Transpose(tmp)); err != nil {
		return errs.New(errs.FactorizationFailure, "PropagateStateInverse: cannot solve B Pᵀ = tmpᵀ: %v", err)
	}

	linalg.Add(P, P, Q)
	linalg.Symmetrize(P)
	return nil
}

// SolveFilter performs the posterior correction from m local observations
// (m == 0 is a no-op, the caller skips the Kalman branch entirely when a
// subdomain has no sensors):
//
//  1. y <- z - H x
//  2. S <- H P Hᵀ + R, then Symmetrize(S)
//  3. Cholesky-factor S
//  4. x <- x + P Hᵀ S^-1 y
//  5. P <- P - P Hᵀ S^-1 H P, then Symmetrize(P)
func SolveFilter(x linalg.Vector, P *linalg.Matrix, H *linalg.Matrix, R *linalg.Matrix, z linalg.Vector, chol *linalg.Cholesky) error {
	m := len(z)
	if m == 0 {
		return nil
	}
	n := len(x)

	Hx := linalg.NewVector(m)
	linalg.MatVecMul(Hx, H, x)
	innov := linalg.NewVector(m)
	for i := 0; i < m; i++ {
		innov[i] = z[i] - Hx[i]
	}

	PHt := linalg.NewMatrix(n, m)
	linalg.MatMulTr(PHt, P, H)

	S := linalg.NewMatrix(m, m)
	linalg.MatMul(S, H, PHt)
	linalg.Add(S, S, R)
	linalg.Symmetrize(S)

	if err := chol.Init(S); err != nil {
		return errs.New(errs.FactorizationFailure, "SolveFilter: innovation covariance S is not SPD: %v", err)
	}

	// Ky = P Hᵀ S^-1 y
	Sinvy := linalg.NewVector(m)
	if err := chol.Solve(Sinvy, innov); err != nil {
		return errs.New(errs.FactorizationFailure, "SolveFilter: cannot solve S y = innov: %v", err)
	}
	dx := linalg.NewVector(n)
	linalg.MatVecMul(dx, PHt, Sinvy)
	for i := 0; i < n; i++ {
		x[i] += dx[i]
	}

	// P <- P - PHt S^-1 (H P)
	HP := linalg.NewMatrix(m, n)
	linalg.MatMul(HP, H, P)
	SinvHP := linalg.NewMatrix(m, n)
	if err := chol.BatchSolve(SinvHP, HP); err != nil {
		return errs.New(errs.FactorizationFailure, "SolveFilter: cannot solve S X = H P: %v", err)
	}
	correction := linalg.NewMatrix(n, n)
	linalg.MatMul(correction, PHt, SinvHP)
	linalg.Sub(P, P, correction)
	linalg.Symmetrize(P)
	return nil
}
