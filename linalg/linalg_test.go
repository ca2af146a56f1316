// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func randMatrix(n int, seed int64) *Matrix {
	state := seed
	next := func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		return float64(uint64(state)>>11) / (1 << 53)
	}
	A := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			A.Data[i][j] = 2*next() - 1
		}
	}
	return A
}

func Test_lu_roundtrip(tst *testing.T) {
	chk.PrintTitle("lu_roundtrip. LU solve reproduces b")
	n := 12
	A := randMatrix(n, 42)
	for i := 0; i < n; i++ {
		A.Data[i][i] += float64(n) // diagonally dominant => non-singular
	}
	b := make(Vector, n)
	for i := range b {
		b[i] = float64(i+1) * 0.37
	}
	lu := NewLU(n)
	if err := lu.Init(A); err != nil {
		tst.Fatalf("Init failed: %v", err)
	}
	x := make(Vector, n)
	if err := lu.Solve(x, b); err != nil {
		tst.Fatalf("Solve failed: %v", err)
	}
	Ax := make(Vector, n)
	MatVecMul(Ax, A, x)
	var num, den float64
	for i := range b {
		d := Ax[i] - b[i]
		num += d * d
		den += b[i] * b[i]
	}
	rel := math.Sqrt(num / den)
	chk.Scalar(tst, "rel", 1e-9, rel, 0)
}

func Test_cholesky_roundtrip(tst *testing.T) {
	chk.PrintTitle("cholesky_roundtrip. Cholesky solve reproduces b")
	n := 10
	R := randMatrix(n, 7)
	S := NewMatrix(n, n)
	MatMulTr(S, R, R) // S = R Rᵀ is SPD
	for i := 0; i < n; i++ {
		S.Data[i][i] += float64(n)
	}
	b := make(Vector, n)
	for i := range b {
		b[i] = float64(i+1) * 0.91
	}
	c := NewCholesky(n)
	if err := c.Init(S); err != nil {
		tst.Fatalf("Init failed: %v", err)
	}
	x := make(Vector, n)
	if err := c.Solve(x, b); err != nil {
		tst.Fatalf("Solve failed: %v", err)
	}
	Sx := make(Vector, n)
	MatVecMul(Sx, S, x)
	var num, den float64
	for i := range b {
		d := Sx[i] - b[i]
		num += d * d
		den += b[i] * b[i]
	}
	rel := math.Sqrt(num / den)
	chk.Scalar(tst, "rel", 1e-9, rel, 0)
}

func Test_symmetrize(tst *testing.T) {
	chk.PrintTitle("symmetrize. (A+Aᵀ)/2 is exactly symmetric")
	A := NewMatrix(4, 4)
	A.Data[0][1] = 1.0000000001
	A.Data[1][0] = 0.9999999999
	A.Data[2][3] = 5
	A.Data[3][2] = 3
	Symmetrize(A)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			chk.Scalar(tst, io.Sf("A[%d][%d]-A[%d][%d]", i, j, j, i), 0, A.Data[i][j], A.Data[j][i])
		}
	}
}

func Test_batchSolveTr_matches_batchSolve_transposed(tst *testing.T) {
	chk.PrintTitle("batchSolveTr. (A^-1 B)ᵀ matches transposed BatchSolve")
	n, m := 6, 3
	A := randMatrix(n, 99)
	for i := 0; i < n; i++ {
		A.Data[i][i] += float64(n)
	}
	B := NewMatrix(n, m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			B.Data[i][j] = float64(i + j)
		}
	}
	lu := NewLU(n)
	if err := lu.Init(A); err != nil {
		tst.Fatalf("Init failed: %v", err)
	}
	X1 := NewMatrix(n, m)
	if err := lu.BatchSolve(X1, B); err != nil {
		tst.Fatalf("BatchSolve failed: %v", err)
	}
	X2 := NewMatrix(m, n)
	if err := lu.BatchSolveTr(X2, B); err != nil {
		tst.Fatalf("BatchSolveTr failed: %v", err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			chk.Scalar(tst, io.Sf("X1[%d][%d]-X2[%d][%d]", i, j, j, i), 1e-9, X1.Data[i][j], X2.Data[j][i])
		}
	}
}
