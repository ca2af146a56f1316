// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ana implements analytical reference solutions used by scenario
// tests (spec §8) to check the stencil driver against a closed form instead
// of only another numerical run.
package ana

import "math"

// GaussianDiffusion is the free-space 2D heat-kernel solution of
// ∂u/∂t = D·∇²u with no advection and no domain boundary, for an initial
// condition of unit-integral Gaussian mass centered at (x0,y0):
//
//	u(x,y,t) = mass/(4·π·D·(t+t0)) · exp( -((x-x0)² + (y-y0)²) / (4·D·(t+t0)) )
//
// t0 > 0 sets the initial spread (the bump at t=0 is already the kernel at
// t0, not a literal point mass), matching spec §8 scenario 1's "initial
// Gaussian bump of integral 1".
type GaussianDiffusion struct {
	D          float64 // diffusion coefficient
	Mass       float64 // total integral of the field
	X0, Y0     float64 // bump center
	T0         float64 // initial spread parameter, > 0
}

// At evaluates the field at (x,y) after elapsed time t (t=0 is the initial
// bump itself).
func (o GaussianDiffusion) At(x, y, t float64) float64 {
	denom := 4 * o.D * (t + o.T0)
	dx, dy := x-o.X0, y-o.Y0
	return o.Mass / (math.Pi * denom) * math.Exp(-(dx*dx+dy*dy)/denom)
}

// Peak returns the field's value at its own center at elapsed time t, the
// decay curve spec §8 scenario 1 checks against ("peak ≤ initial/2.5").
func (o GaussianDiffusion) Peak(t float64) float64 {
	return o.At(o.X0, o.Y0, t)
}
