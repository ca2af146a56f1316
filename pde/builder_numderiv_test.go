// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pde

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/num"
)

// Test_buildB_dVx_matches_numeric_derivative checks BuildB's vx-dependence
// against a numeric central derivative, the same num.DerivCen-vs-
// chk.AnaNum tangent check the teacher runs on its own constitutive models
// (mdl/solid/t_hyperelast1_test.go's D_ij vs dσ/dε).
func Test_buildB_dVx_matches_numeric_derivative(tst *testing.T) {
	chk.PrintTitle("buildB_dVx_matches_numeric_derivative. dB/dvx matches a numeric central derivative")
	p := Params{D: 0.3, Dx: 0.2, Dy: 0.2, Dt: 0.01, Sx: 5, Sy: 5}
	Ey := p.Sy + 2
	x, y := 2, 2
	i := Index(x, y, Ey)
	jMinus := Index(x-1, y, Ey)
	jPlus := Index(x+1, y, Ey)
	vy := -0.4
	tol := 1e-10
	verb := false

	entryAt := func(col int) func(vx float64, args ...interface{}) float64 {
		return func(vx float64, args ...interface{}) float64 {
			B := BuildB(Flow{Vx: vx, Vy: vy}, p)
			return B.Data[i][col]
		}
	}

	vx0 := 0.7
	anaMinus := -p.Dt / (2 * p.Dx)
	numMinus := num.DerivCen(entryAt(jMinus), vx0)
	chk.AnaNum(tst, "dB[i][x-1]/dvx", tol, anaMinus, numMinus, verb)

	anaPlus := p.Dt / (2 * p.Dx)
	numPlus := num.DerivCen(entryAt(jPlus), vx0)
	chk.AnaNum(tst, "dB[i][x+1]/dvx", tol, anaPlus, numPlus, verb)
}
