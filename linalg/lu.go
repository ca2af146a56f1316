// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/fearghalodonncha/allscale-amdados/errs"
)

// LU factors a square matrix A with partial pivoting and solves A·x = b
// (and batched right-hand sides) via forward/back substitution against the
// combined LU storage. This is the scratch the per-subdomain Context keeps
// (spec §3 "LU: decomposition scratch") for the implicit-Euler inverse
// operator B.
type LU struct {
	n    int
	lu   *Matrix // combined L (unit diagonal, below) and U (on/above diagonal)
	piv  []int   // row permutation
	sign float64 // sign of the permutation (unused by Solve, kept for Det-style diagnostics)
}

// NewLU allocates an LU for n x n matrices.
func NewLU(n int) *LU {
	return &LU{n: n, lu: NewMatrix(n, n), piv: make([]int, n)}
}

// Init factors A in place with partial pivoting.
func (o *LU) Init(A *Matrix) error {
	n := A.Rows
	if A.Cols != n {
		chk.Panic("LU.Init: A must be square, got %dx%d", A.Rows, A.Cols)
	}
	if o.n != n {
		o.n = n
		o.lu = NewMatrix(n, n)
		o.piv = make([]int, n)
	}
	m := o.lu.Data
	for i := 0; i < n; i++ {
		copy(m[i], A.Data[i])
		o.piv[i] = i
	}
	o.sign = 1
	for k := 0; k < n; k++ {
		// partial pivot: largest magnitude in column k, rows >= k
		p := k
		best := math.Abs(m[k][k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(m[i][k]); v > best {
				best = v
				p = i
			}
		}
		if best <= pivotTol {
			return errs.SingularOperator
		}
		if p != k {
			m[k], m[p] = m[p], m[k]
			o.piv[k], o.piv[p] = o.piv[p], o.piv[k]
			o.sign = -o.sign
		}
		for i := k + 1; i < n; i++ {
			factor := m[i][k] / m[k][k]
			m[i][k] = factor
			for j := k + 1; j < n; j++ {
				m[i][j] -= factor * m[k][j]
			}
		}
	}
	return nil
}

// Solve returns x = A^-1 b.
func (o *LU) Solve(x, b Vector) error {
	n := o.n
	if len(b) != n || len(x) != n {
		chk.Panic("LU.Solve: expected length-%d vectors, got b=%d x=%d", n, len(b), len(x))
	}
	m := o.lu.Data
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = b[o.piv[i]]
	}
	// forward substitution with unit-diagonal L
	for i := 0; i < n; i++ {
		sum := y[i]
		for k := 0; k < i; k++ {
			sum -= m[i][k] * y[k]
		}
		y[i] = sum
	}
	// back substitution with U
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < n; k++ {
			sum -= m[i][k] * x[k]
		}
		x[i] = sum / m[i][i]
	}
	return nil
}

// BatchSolve returns X = A^-1 B.
func (o *LU) BatchSolve(X, B *Matrix) error {
	if B.Rows != o.n || X.Rows != o.n || X.Cols != B.Cols {
		chk.Panic("LU.BatchSolve: incompatible shapes B=%dx%d X=%dx%d n=%d", B.Rows, B.Cols, X.Rows, X.Cols, o.n)
	}
	col := make([]float64, o.n)
	res := make([]float64, o.n)
	for j := 0; j < B.Cols; j++ {
		for i := 0; i < o.n; i++ {
			col[i] = B.Data[i][j]
		}
		if err := o.Solve(res, col); err != nil {
			return err
		}
		for i := 0; i < o.n; i++ {
			X.Data[i][j] = res[i]
		}
	}
	return nil
}

// BatchSolveTr returns X = (A^-1 B)ᵀ = Bᵀ·A^-ᵀ without materializing
// A^-1: it solves A·col = B[:,j] one column at a time (same as BatchSolve)
// and writes the result transposed, the shape needed to implement
// A·P·Aᵀ + Q via two right solves of B = A^-1 P (spec §4.1).
func (o *LU) BatchSolveTr(X, B *Matrix) error {
	if B.Rows != o.n || X.Cols != o.n || X.Rows != B.Cols {
		chk.Panic("LU.BatchSolveTr: incompatible shapes B=%dx%d X=%dx%d n=%d", B.Rows, B.Cols, X.Rows, X.Cols, o.n)
	}
	col := make([]float64, o.n)
	res := make([]float64, o.n)
	for j := 0; j < B.Cols; j++ {
		for i := 0; i < o.n; i++ {
			col[i] = B.Data[i][j]
		}
		if err := o.Solve(res, col); err != nil {
			return err
		}
		for i := 0; i < o.n; i++ {
			X.Data[j][i] = res[i]
		}
	}
	return nil
}
