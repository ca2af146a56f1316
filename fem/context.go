// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fem implements the stencil driver (spec §4.6): the grid of
// per-subdomain contexts, the parallel-for scheduler over logical time
// steps, and the diagnostics profile. Context ownership and allocation
// follow spec §9's "grid-of-contexts" design note and gofem's own FEM
// struct (fem/fem.go: Sim/Summary/Domains/Solver allocated once, mutated
// in place by SetStage/ZeroStage/SolveOneStage across the time loop).
package fem

import (
	"github.com/fearghalodonncha/allscale-amdados/cell"
	"github.com/fearghalodonncha/allscale-amdados/inp"
	"github.com/fearghalodonncha/allscale-amdados/kalman"
	"github.com/fearghalodonncha/allscale-amdados/linalg"
	"github.com/fearghalodonncha/allscale-amdados/obs"
	"github.com/fearghalodonncha/allscale-amdados/pde"
	"github.com/fearghalodonncha/allscale-amdados/schwarz"
)

// Context is the per-subdomain state (spec §3 "Subdomain context"):
// allocated once at simulation start, mutated in place every time step.
type Context struct {
	Idx schwarz.Index

	Cell *cell.Cell

	// CurrState/NextState are the extended-subdomain (Sx+2)x(Sy+2) flat
	// state vectors; swapped (not copied) at the end of every sub-step so
	// a subdomain's neighbors always read a start-of-t snapshot (spec §5
	// "Shared-resource policy").
	CurrState, NextState linalg.Vector

	HasSensors bool
	Sensors    []obs.Coord
	H          *linalg.Matrix
	Table      *obs.Table

	P, Q, R *linalg.Matrix

	LU   *linalg.LU
	Chol *linalg.Cholesky

	// LastRecords is the direct-solve branch's most recent per-side Schwarz
	// classification, kept for diagnostics (e.g. a future Observer wanting
	// per-side rel_diff); the driver itself only reads schwarz.RelDiff of
	// the same records it returns from stepDirect.
	LastRecords map[cell.Side]schwarz.Record
}

// NewContext allocates a Context for subdomain idx with the given sensor
// binding (sensors may be empty: the Kalman branch is then skipped
// entirely, as spec §4.6 requires). iniVar/iniRadius seed the Kalman prior
// covariance (config keys model_ini_var, model_ini_covar_radius); ignored
// when the subdomain has no sensors.
func NewContext(idx schwarz.Index, sensors []obs.Coord, table *obs.Table, iniVar, iniRadius float64) *Context {
	n := pde.Dims(inp.Sx, inp.Sy)
	c := cell.New(inp.Sx, inp.Sy)
	c.SetActiveLayer(cell.Fine)

	ctx := &Context{
		Idx:        idx,
		Cell:       c,
		CurrState:  linalg.NewVector(n),
		NextState:  linalg.NewVector(n),
		HasSensors: len(sensors) > 0,
		Sensors:    sensors,
		Table:      table,
		P:          linalg.NewMatrix(n, n),
		Q:          linalg.NewMatrix(n, n),
		LU:         linalg.NewLU(n),
	}
	if ctx.HasSensors {
		ctx.H = obs.BuildH(sensors, inp.Sx, inp.Sy)
		ctx.R = linalg.NewMatrix(len(sensors), len(sensors))
		ctx.Chol = linalg.NewCholesky(len(sensors))
		kalman.SeedCovariance(ctx.P, inp.Sx, inp.Sy, iniVar, iniRadius)
	}
	return ctx
}

// swap exchanges curr/next state buffers (spec §5: "read/write swapped per t").
func (ctx *Context) swap() {
	ctx.CurrState, ctx.NextState = ctx.NextState, ctx.CurrState
}

// syncCellFromState copies the extended-subdomain interior (excluding the
// halo ring) of CurrState into the Fine-layer cell, so schwarz neighbor
// lookups (which read cell.GetBoundary) see the latest interior.
func (ctx *Context) syncCellFromState() {
	ey := inp.Sy + 2
	ctx.Cell.SetActiveLayer(cell.Fine)
	for x := 0; x < inp.Sx; x++ {
		for y := 0; y < inp.Sy; y++ {
			v := ctx.CurrState[pde.Index(x+1, y+1, ey)]
			ctx.Cell.Set(x, y, v)
		}
	}
}

// clampNonNegative zeroes every negative entry of CurrState (spec §4.4
// "the field is then clamped to be element-wise >= 0").
func (ctx *Context) clampNonNegative() {
	for i := range ctx.CurrState {
		if ctx.CurrState[i] < 0 {
			ctx.CurrState[i] = 0
		}
	}
}
