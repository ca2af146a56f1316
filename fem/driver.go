// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"context"
	"sync"
	"time"

	"github.com/fearghalodonncha/allscale-amdados/cell"
	"github.com/fearghalodonncha/allscale-amdados/errs"
	"github.com/fearghalodonncha/allscale-amdados/inp"
	"github.com/fearghalodonncha/allscale-amdados/kalman"
	"github.com/fearghalodonncha/allscale-amdados/pde"
	"github.com/fearghalodonncha/allscale-amdados/schwarz"
)

// Observer receives one full snapshot at a selected time index (spec §4.8).
type Observer interface {
	Snapshot(timeIndex int, globalX, globalY int, value float64) error
}

// Driver runs the stencil loop of spec §4.6 over a Grid.
type Driver struct {
	Grid      *Grid
	Cfg       *inp.Config
	Scheduler Scheduler
	Profile   *Profile
	Noise     kalman.NoiseSource
	Observer  Observer
}

// NewDriver wires a Driver with the production defaults (errgroup
// scheduler, gosl/rnd-backed noise).
func NewDriver(grid *Grid, cfg *inp.Config, obs Observer) *Driver {
	return &Driver{
		Grid:      grid,
		Cfg:       cfg,
		Scheduler: ErrgroupScheduler{},
		Profile:   &Profile{},
		Noise:     kalman.RandomNoise{},
		Observer:  obs,
	}
}

// Run executes the full outer time loop t in [0, Nt*Nsub_iter) (spec
// §4.6), dispatching every subdomain's per-t routine through Scheduler and
// emitting snapshots at the selected t_step values.
func (d *Driver) Run(ctx context.Context) error {
	nt := d.Cfg.Nt
	nsub := d.Cfg.SchwarzNumIters
	mode := schwarzMode(d.Cfg.SchwarzOutflow)

	for t := 0; t < nt*nsub; t++ {
		tStep := t / nsub
		sub := t % nsub
		started := time.Now()

		var mu sync.Mutex
		var relDiffSum float64
		var relDiffCount int

		err := d.Scheduler.ParallelFor(ctx, d.Grid.Lattice.Nx*d.Grid.Lattice.Ny, func(_ context.Context, flat int) error {
			ix, iy := flat/d.Grid.Lattice.Ny, flat%d.Grid.Lattice.Ny
			sctx := d.Grid.Contexts[ix][iy]
			rel, err := d.stepSubdomain(sctx, tStep, sub, mode)
			if err != nil {
				return err
			}
			if rel >= 0 {
				mu.Lock()
				relDiffSum += rel
				relDiffCount++
				mu.Unlock()
			}
			return nil
		})
		if err != nil {
			return err
		}

		// barrier: swap buffers and refresh each context's Cell only
		// after every subdomain in this t has finished (concurrently)
		// reading its neighbors' start-of-t Cell snapshots (spec §5).
		d.Grid.ForEach(func(c *Context) {
			c.swap()
			c.syncCellFromState()
			c.Cell.Coarsen(nil)
		})

		avgRel := 0.0
		if relDiffCount > 0 {
			avgRel = relDiffSum / float64(relDiffCount)
		}
		d.Profile.RecordStep(avgRel, time.Since(started))

		if sub == 0 && d.shouldSnapshot(tStep) {
			if err := d.emitSnapshot(tStep); err != nil {
				return err
			}
		}
	}
	d.Profile.Flush()
	return nil
}

func schwarzMode(m inp.OutflowMode) schwarz.OutflowMode {
	if m == inp.Neumann {
		return schwarz.Neumann
	}
	return schwarz.Mirror
}

// stepSubdomain runs one subdomain's per-t routine (spec §4.6) and returns
// its Schwarz rel_diff: -1 on the Kalman branch, which does no Schwarz
// update; a direct-solve subdomain with no inflow side this step returns 0.
func (d *Driver) stepSubdomain(sctx *Context, tStep, sub int, mode schwarz.OutflowMode) (float64, error) {
	if sctx.HasSensors {
		return -1, d.stepKalman(sctx, tStep, sub)
	}
	return d.stepDirect(sctx, tStep, mode)
}

func (d *Driver) stepKalman(sctx *Context, tStep, sub int) error {
	if sub == 0 {
		vx := d.Cfg.VxFunc().F(float64(tStep), nil)
		vy := d.Cfg.VyFunc().F(float64(tStep), nil)

		kalman.SeedDiagonal(sctx.Q, d.Cfg.ModelNoiseQ, d.Noise)
		kalman.SeedDiagonal(sctx.R, d.Cfg.ModelNoiseR, d.Noise)

		B := pde.BuildB(pde.Flow{Vx: vx, Vy: vy}, pde.Params{
			D: d.Cfg.DiffusionCoef, Dx: d.Cfg.Dx, Dy: d.Cfg.Dy, Dt: d.Cfg.Dt,
			Sx: inp.Sx, Sy: inp.Sy,
		})
		if err := kalman.PropagateStateInverse(sctx.CurrState, sctx.P, B, sctx.Q, sctx.LU); err != nil {
			return err
		}
	}

	z := sctx.Table.RowAt(tStep)
	if err := kalman.SolveFilter(sctx.CurrState, sctx.P, sctx.H, sctx.R, z, sctx.Chol); err != nil {
		return err
	}

	if sctx.Idx.IsOuter(cell.Up, d.Grid.Lattice) || sctx.Idx.IsOuter(cell.Down, d.Grid.Lattice) ||
		sctx.Idx.IsOuter(cell.Left, d.Grid.Lattice) || sctx.Idx.IsOuter(cell.Right, d.Grid.Lattice) {
		clampOuterState(sctx)
	}
	sctx.clampNonNegative()
	copy(sctx.NextState, sctx.CurrState)
	return nil
}

func (d *Driver) stepDirect(sctx *Context, tStep int, mode schwarz.OutflowMode) (float64, error) {
	vx := d.Cfg.VxFunc().F(float64(tStep), nil)
	vy := d.Cfg.VyFunc().F(float64(tStep), nil)

	B := pde.BuildB(pde.Flow{Vx: vx, Vy: vy}, pde.Params{
		D: d.Cfg.DiffusionCoef, Dx: d.Cfg.Dx, Dy: d.Cfg.Dy, Dt: d.Cfg.Dt / float64(d.Cfg.SchwarzNumIters),
		Sx: inp.Sx, Sy: inp.Sy,
	})
	if err := sctx.LU.Init(B); err != nil {
		return -1, errs.New(errs.FactorizationFailure, "subdomain %v: cannot factor B: %v", sctx.Idx, err)
	}
	if err := sctx.LU.Solve(sctx.NextState, sctx.CurrState); err != nil {
		return -1, errs.New(errs.FactorizationFailure, "subdomain %v: cannot solve B x = x_prev: %v", sctx.Idx, err)
	}
	copy(sctx.CurrState, sctx.NextState)

	// schwarz.Update reads neighbor Cells as they stood at the start of
	// this t (last refreshed at the previous barrier) — never another
	// subdomain's in-flight update, per spec §5's happens-before rule.
	records := schwarz.Update(sctx.CurrState, inp.Sx, inp.Sy, sctx.Idx, d.Grid.Lattice, pde.Flow{Vx: vx, Vy: vy}, d.Grid.NeighborLookup, mode)
	schwarz.ClampOuter(sctx.CurrState, inp.Sx, inp.Sy, records)
	sctx.LastRecords = records
	sctx.clampNonNegative()

	copy(sctx.NextState, sctx.CurrState)
	return schwarz.RelDiff(records), nil
}

// clampOuterState zeroes the halo ring of an outer subdomain's state
// directly (the Kalman branch has no schwarz.Record set to drive
// schwarz.ClampOuter, since it never calls schwarz.Update).
func clampOuterState(sctx *Context) {
	ex, ey := inp.Sx+2, inp.Sy+2
	for x := 0; x < ex; x++ {
		sctx.CurrState[pde.Index(x, 0, ey)] = 0
		sctx.CurrState[pde.Index(x, ey-1, ey)] = 0
	}
	for y := 0; y < ey; y++ {
		sctx.CurrState[pde.Index(0, y, ey)] = 0
		sctx.CurrState[pde.Index(ex-1, y, ey)] = 0
	}
}

// shouldSnapshot reports whether t_step is a selected snapshot index per
// spec §4.6's floor-bracket formula.
func (d *Driver) shouldSnapshot(tStep int) bool {
	nt, nwrite := d.Cfg.Nt, d.Cfg.WriteNumFields
	if nt <= 1 {
		return tStep == 0
	}
	if tStep == 0 {
		return true
	}
	prevBucket := ((nwrite - 1) * (tStep - 1)) / (nt - 1)
	currBucket := ((nwrite - 1) * tStep) / (nt - 1)
	return prevBucket != currBucket
}

func (d *Driver) emitSnapshot(tStep int) error {
	if d.Observer == nil {
		return nil
	}
	for ix := range d.Grid.Contexts {
		for iy := range d.Grid.Contexts[ix] {
			sctx := d.Grid.Contexts[ix][iy]
			for x := 0; x < inp.Sx; x++ {
				for y := 0; y < inp.Sy; y++ {
					v := sctx.CurrState[pde.Index(x+1, y+1, inp.Sy+2)]
					gx := ix*inp.Sx + x
					gy := iy*inp.Sy + y
					if err := d.Observer.Snapshot(tStep, gx, gy, v); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
