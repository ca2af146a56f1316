// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/fearghalodonncha/allscale-amdados/errs"
)

// pivotTol is the smallest admissible diagonal pivot magnitude; below this a
// factorization is declared singular (errs.SingularOperator).
const pivotTol = 1e-300

// Cholesky factors a symmetric positive-definite matrix S = L·Lᵀ and solves
// S·x = b via forward/back substitution. Init reuses internal storage across
// repeated calls, the same way gofem's la.LinSol keeps its factorization
// alive across an Init -> Fact -> Solve lifecycle (fem/solver.go).
type Cholesky struct {
	n int
	L *Matrix // lower-triangular factor
}

// NewCholesky allocates a Cholesky for n x n matrices.
func NewCholesky(n int) *Cholesky {
	return &Cholesky{n: n, L: NewMatrix(n, n)}
}

// Init factors S in place into the reusable L storage.
func (c *Cholesky) Init(S *Matrix) error {
	n := S.Rows
	if S.Cols != n {
		chk.Panic("Cholesky.Init: S must be square, got %dx%d", S.Rows, S.Cols)
	}
	if c.n != n {
		c.n = n
		c.L = NewMatrix(n, n)
	}
	c.L.Fill(0)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			var sum float64
			for k := 0; k < j; k++ {
				sum += c.L.Data[i][k] * c.L.Data[j][k]
			}
			if i == j {
				diag := S.Data[i][i] - sum
				if diag <= pivotTol {
					return errs.SingularOperator
				}
				c.L.Data[i][i] = math.Sqrt(diag)
			} else {
				c.L.Data[i][j] = (S.Data[i][j] - sum) / c.L.Data[j][j]
			}
		}
	}
	return nil
}

// Solve returns x = S^-1 b via forward then back substitution against L.
func (c *Cholesky) Solve(x, b Vector) error {
	n := c.n
	if len(b) != n || len(x) != n {
		chk.Panic("Cholesky.Solve: expected length-%d vectors, got b=%d x=%d", n, len(b), len(x))
	}
	y := make([]float64, n)
	// forward substitution: L y = b
	for i := 0; i < n; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= c.L.Data[i][k] * y[k]
		}
		y[i] = sum / c.L.Data[i][i]
	}
	// back substitution: Lᵀ x = y
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < n; k++ {
			sum -= c.L.Data[k][i] * x[k]
		}
		x[i] = sum / c.L.Data[i][i]
	}
	return nil
}

// BatchSolve returns X = S^-1 B for a multi-column right-hand side B.
func (c *Cholesky) BatchSolve(X, B *Matrix) error {
	if B.Rows != c.n || X.Rows != c.n || X.Cols != B.Cols {
		chk.Panic("Cholesky.BatchSolve: incompatible shapes B=%dx%d X=%dx%d n=%d", B.Rows, B.Cols, X.Rows, X.Cols, c.n)
	}
	col := make([]float64, c.n)
	res := make([]float64, c.n)
	for j := 0; j < B.Cols; j++ {
		for i := 0; i < c.n; i++ {
			col[i] = B.Data[i][j]
		}
		if err := c.Solve(res, col); err != nil {
			return err
		}
		for i := 0; i < c.n; i++ {
			X.Data[i][j] = res[i]
		}
	}
	return nil
}
