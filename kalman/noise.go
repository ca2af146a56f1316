// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kalman

import (
	"math"

	"github.com/cpmech/gosl/rnd"

	"github.com/fearghalodonncha/allscale-amdados/linalg"
	"github.com/fearghalodonncha/allscale-amdados/pde"
)

// NoiseSource supplies the per-step diagonal noise amplitude re-drawn into
// Q and R (spec §9 "Per-step RNG": "Implementations may replace with
// deterministic constants for reproducibility in tests"). RandomNoise is
// the production source; ConstantNoise lets scenario tests fix the
// diagonal instead of depending on the RNG stream.
type NoiseSource interface {
	// Diagonal returns n draws to seed a diagonal: 1 + amplitude*u, u in
	// [0,1) for RandomNoise, or a fixed constant for ConstantNoise.
	Diagonal(n int, amplitude float64) []float64
}

// RandomNoise draws each diagonal entry from gosl/rnd, the pack's RNG of
// record (inp/sim.go's rnd.GetDistribution/rnd.VarData usage).
type RandomNoise struct{}

func (RandomNoise) Diagonal(n int, amplitude float64) []float64 {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1 + amplitude*rnd.Float64(0, 1)
	}
	return d
}

// ConstantNoise always returns 1+amplitude*Value, for deterministic tests.
type ConstantNoise struct {
	Value float64
}

func (c ConstantNoise) Diagonal(n int, amplitude float64) []float64 {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1 + amplitude*c.Value
	}
	return d
}

// SeedDiagonal writes src's draws onto the diagonal of M (off-diagonal
// entries untouched).
func SeedDiagonal(M *linalg.Matrix, amplitude float64, src NoiseSource) {
	d := src.Diagonal(M.Rows, amplitude)
	for i := 0; i < M.Rows; i++ {
		M.Data[i][i] = d[i]
	}
}

// SeedCovariance fills P with the initial prior covariance of a Kalman
// subdomain context (config keys model_ini_var, model_ini_covar_radius):
// a Gaussian-kernel correlation over the extended (sx+2)x(sy+2) grid,
// P[i][j] = variance * exp(-dist(i,j)^2 / (2*radius^2)). radius <= 0
// degenerates to an uncorrelated diagonal prior (P = variance*I).
func SeedCovariance(P *linalg.Matrix, sx, sy int, variance, radius float64) {
	ex, ey := sx+2, sy+2
	type point struct{ x, y int }
	pts := make([]point, ex*ey)
	for x := 0; x < ex; x++ {
		for y := 0; y < ey; y++ {
			pts[pde.Index(x, y, ey)] = point{x, y}
		}
	}
	if radius <= 0 {
		for i := range pts {
			P.Data[i][i] = variance
		}
		return
	}
	twoR2 := 2 * radius * radius
	for i, pi := range pts {
		for j, pj := range pts {
			dx, dy := float64(pi.x-pj.x), float64(pi.y-pj.y)
			d2 := dx*dx + dy*dy
			P.Data[i][j] = variance * math.Exp(-d2/twoR2)
		}
	}
}
