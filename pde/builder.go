// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pde assembles the per-subdomain implicit-Euler inverse operator B
// (spec §4.2) acting on the extended (Sx+2) x (Sy+2) subdomain: interior
// plus one-cell halo. B is materialized dense, as spec §9's design notes
// recommend for clarity; entries are set directly the way
// ele/diffusion/diffusion.go assembles its element Jacobian row by row
// before handing it to the global (sparse) Kb, except here B itself is the
// whole per-subdomain operand the Kalman filter and direct-solve branches
// need.
package pde

import (
	"github.com/fearghalodonncha/allscale-amdados/linalg"
)

// Flow is the advective velocity at a point in time.
type Flow struct {
	Vx, Vy float64
}

// Params collects the coefficients needed to assemble B.
type Params struct {
	D      float64 // diffusion coefficient
	Dx, Dy float64 // spatial steps
	Dt     float64 // effective time step (dt or dt/Nsub_iter)
	Sx, Sy int     // interior subdomain size
}

// Index flattens extended-subdomain coordinates (x,y) in
// [0,Sx+2) x [0,Sy+2) into the row-major unrolled state vector, inner
// index = y, matching spec §4.2 ("unrolled ... row-major order
// (inner index = y)").
func Index(x, y, sy int) int { return x*sy + y }

// Dims returns the extended-subdomain state dimension n = (Sx+2)(Sy+2).
func Dims(sx, sy int) int { return (sx + 2) * (sy + 2) }

// BuildB assembles the dense inverse implicit-Euler operator B for the
// given flow and parameters. Halo rows are the identity (border rows pass
// through unchanged); interior rows carry the five-point stencil of
// spec §4.2.
func BuildB(flow Flow, p Params) *linalg.Matrix {
	Ex, Ey := p.Sx+2, p.Sy+2
	n := Ex * Ey
	rhoX := p.D * p.Dt / (p.Dx * p.Dx)
	rhoY := p.D * p.Dt / (p.Dy * p.Dy)
	alphaX := flow.Vx * p.Dt / (2 * p.Dx)
	alphaY := flow.Vy * p.Dt / (2 * p.Dy)

	B := linalg.NewMatrix(n, n)
	idx := func(x, y int) int { return Index(x, y, Ey) }

	for x := 0; x < Ex; x++ {
		for y := 0; y < Ey; y++ {
			i := idx(x, y)
			interior := x >= 1 && x <= p.Sx && y >= 1 && y <= p.Sy
			if !interior {
				B.Data[i][i] = 1 // halo row: identity (pass-through)
				continue
			}
			B.Data[i][i] = 1 + 2*(rhoX+rhoY)
			B.Data[i][idx(x-1, y)] = -alphaX - rhoX
			B.Data[i][idx(x+1, y)] = alphaX - rhoX
			B.Data[i][idx(x, y-1)] = -alphaY - rhoY
			B.Data[i][idx(x, y+1)] = alphaY - rhoY
		}
	}
	return B
}
