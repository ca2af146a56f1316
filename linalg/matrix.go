// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linalg implements the dense linear-algebra kernels used by the
// per-subdomain PDE operator and Kalman filter: Matrix/Vector element-wise
// operations plus Cholesky and LU factorizations with forward/back
// substitution and batched right-hand-side solves.
package linalg

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Matrix is a dense row-major rectangular array of float64, following the
// same [][]float64 slab convention gosl/la uses for element matrices
// (la.MatAlloc).
type Matrix struct {
	Rows, Cols int
	Data       [][]float64
}

// Vector is a contiguous array of float64.
type Vector []float64

// NewMatrix allocates a Rows x Cols matrix initialised to zero.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: la.MatAlloc(rows, cols)}
}

// NewVector allocates a length-n vector initialised to zero.
func NewVector(n int) Vector {
	return make(Vector, n)
}

// Fill sets every entry of A to v.
func (A *Matrix) Fill(v float64) { la.MatFill(A.Data, v) }

// Fill sets every entry of v to val.
func (v Vector) Fill(val float64) { la.VecFill(v, val) }

// Clone returns a deep copy of A.
func (A *Matrix) Clone() *Matrix {
	B := NewMatrix(A.Rows, A.Cols)
	la.MatCopy(B.Data, 1, A.Data)
	return B
}

// Clone returns a deep copy of v.
func (v Vector) Clone() Vector {
	w := NewVector(len(v))
	la.VecCopy(w, 1, v)
	return w
}

func sameShape(a, b *Matrix) bool { return a.Rows == b.Rows && a.Cols == b.Cols }

// MatMul computes C ← A·B. C must be disjoint from A and B.
func MatMul(C, A, B *Matrix) {
	if A.Cols != B.Rows || C.Rows != A.Rows || C.Cols != B.Cols {
		chk.Panic("MatMul: incompatible shapes (%dx%d)·(%dx%d) -> (%dx%d)", A.Rows, A.Cols, B.Rows, B.Cols, C.Rows, C.Cols)
	}
	if C == A || C == B {
		chk.Panic("MatMul: result must be disjoint from operands")
	}
	for i := 0; i < A.Rows; i++ {
		for j := 0; j < B.Cols; j++ {
			var sum float64
			for k := 0; k < A.Cols; k++ {
				sum += A.Data[i][k] * B.Data[k][j]
			}
			C.Data[i][j] = sum
		}
	}
}

// MatMulTr computes C ← A·Bᵀ without physically transposing B.
func MatMulTr(C, A, B *Matrix) {
	if A.Cols != B.Cols || C.Rows != A.Rows || C.Cols != B.Rows {
		chk.Panic("MatMulTr: incompatible shapes (%dx%d)·(%dx%d)ᵀ -> (%dx%d)", A.Rows, A.Cols, B.Rows, B.Cols, C.Rows, C.Cols)
	}
	if C == A || C == B {
		chk.Panic("MatMulTr: result must be disjoint from operands")
	}
	for i := 0; i < A.Rows; i++ {
		for j := 0; j < B.Rows; j++ {
			var sum float64
			for k := 0; k < A.Cols; k++ {
				sum += A.Data[i][k] * B.Data[j][k]
			}
			C.Data[i][j] = sum
		}
	}
}

// MatVecMul computes y ← A·x, reusing gosl/la's scaled mat-vec kernel with
// alpha=1 (the same call shape ele/solid/beam.go uses for o.fi = o.K·o.ue).
func MatVecMul(y Vector, A *Matrix, x Vector) {
	if A.Cols != len(x) || A.Rows != len(y) {
		chk.Panic("MatVecMul: incompatible shapes (%dx%d)·(%d) -> (%d)", A.Rows, A.Cols, len(x), len(y))
	}
	la.MatVecMul(y, 1, A.Data, x)
}

// Add computes C ← A+B.
func Add(C, A, B *Matrix) {
	if !sameShape(A, B) || !sameShape(A, C) {
		chk.Panic("Add: shape mismatch")
	}
	for i := 0; i < A.Rows; i++ {
		for j := 0; j < A.Cols; j++ {
			C.Data[i][j] = A.Data[i][j] + B.Data[i][j]
		}
	}
}

// Sub computes C ← A-B.
func Sub(C, A, B *Matrix) {
	if !sameShape(A, B) || !sameShape(A, C) {
		chk.Panic("Sub: shape mismatch")
	}
	for i := 0; i < A.Rows; i++ {
		for j := 0; j < A.Cols; j++ {
			C.Data[i][j] = A.Data[i][j] - B.Data[i][j]
		}
	}
}

// Scale computes B ← s·A.
func Scale(B *Matrix, s float64, A *Matrix) {
	if !sameShape(A, B) {
		chk.Panic("Scale: shape mismatch")
	}
	for i := 0; i < A.Rows; i++ {
		for j := 0; j < A.Cols; j++ {
			B.Data[i][j] = s * A.Data[i][j]
		}
	}
}

// Transpose returns a new matrix equal to Aᵀ.
func Transpose(A *Matrix) *Matrix {
	T := NewMatrix(A.Cols, A.Rows)
	for i := 0; i < A.Rows; i++ {
		for j := 0; j < A.Cols; j++ {
			T.Data[j][i] = A.Data[i][j]
		}
	}
	return T
}

// Negate computes B ← -A.
func Negate(B, A *Matrix) { Scale(B, -1, A) }

// Symmetrize sets A ← (A+Aᵀ)/2 for a square A, correcting round-off
// asymmetry accumulated across repeated updates.
func Symmetrize(A *Matrix) {
	if A.Rows != A.Cols {
		chk.Panic("Symmetrize: matrix must be square, got %dx%d", A.Rows, A.Cols)
	}
	n := A.Rows
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			avg := 0.5 * (A.Data[i][j] + A.Data[j][i])
			A.Data[i][j] = avg
			A.Data[j][i] = avg
		}
	}
}

// Norm returns the Frobenius norm of A.
func Norm(A *Matrix) float64 {
	var sum float64
	for i := 0; i < A.Rows; i++ {
		for j := 0; j < A.Cols; j++ {
			sum += A.Data[i][j] * A.Data[i][j]
		}
	}
	return math.Sqrt(sum)
}

// NormDiff returns the Frobenius norm of A-B.
func NormDiff(A, B *Matrix) float64 {
	if !sameShape(A, B) {
		chk.Panic("NormDiff: shape mismatch")
	}
	var sum float64
	for i := 0; i < A.Rows; i++ {
		for j := 0; j < A.Cols; j++ {
			d := A.Data[i][j] - B.Data[i][j]
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}
