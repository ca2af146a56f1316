// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"context"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/fearghalodonncha/allscale-amdados/inp"
	"github.com/fearghalodonncha/allscale-amdados/kalman"
	"github.com/fearghalodonncha/allscale-amdados/linalg"
	"github.com/fearghalodonncha/allscale-amdados/obs"
	"github.com/fearghalodonncha/allscale-amdados/pde"
	"github.com/fearghalodonncha/allscale-amdados/schwarz"
)

// collectObserver records every snapshot call, for test assertions.
type collectObserver struct {
	snapshots int
	tSteps    map[int]bool
}

func (o *collectObserver) Snapshot(timeIndex int, gx, gy int, v float64) error {
	o.snapshots++
	if o.tSteps == nil {
		o.tSteps = make(map[int]bool)
	}
	o.tSteps[timeIndex] = true
	return nil
}

func smallConfig(nxSub, nySub int) *inp.Config {
	return &inp.Config{
		DiffusionCoef:   0.1,
		NumSubdomainsX:  nxSub,
		NumSubdomainsY:  nySub,
		SubdomainX:      inp.Sx,
		SubdomainY:      inp.Sy,
		DomainSizeX:     1,
		DomainSizeY:     1,
		FlowModelMaxVx:  0.2,
		FlowModelMaxVy:  0.1,
		ModelNoiseQ:     0.01,
		ModelNoiseR:     0.01,
		SchwarzNumIters: 2,
		SchwarzOutflow:  inp.Mirror,
		WriteNumFields:  2,
		Dx:              0.1,
		Dy:              0.1,
		Dt:              0.01,
		Nt:              3,
	}
}

func Test_driver_runs_direct_solve_grid_without_sensors(tst *testing.T) {
	chk.PrintTitle("driver_runs_direct_solve_grid. 2x1 lattice, no sensors, all subdomains direct-solve")
	cfg := smallConfig(2, 1)
	grid := NewGrid(2, 1, obs.SensorList{}, nil, 0, 0)

	// seed a nonzero interior bump in one subdomain's state so the stencil
	// has something to propagate.
	sctx := grid.At(schwarz.Index{Ix: 0, Iy: 0})
	mid := pde.Index(inp.Sx/2, inp.Sy/2, inp.Sy+2)
	sctx.CurrState[mid] = 1.0
	sctx.NextState[mid] = 1.0

	observer := &collectObserver{}
	d := NewDriver(grid, cfg, observer)
	d.Noise = kalman.ConstantNoise{Value: 0.5}

	if err := d.Run(context.Background()); err != nil {
		tst.Fatalf("Run failed: %v", err)
	}

	if observer.snapshots == 0 {
		tst.Fatalf("expected at least one emitted snapshot")
	}
	if !observer.tSteps[0] {
		tst.Fatalf("expected t_step 0 to always be snapshotted")
	}

	grid.ForEach(func(c *Context) {
		for _, v := range c.CurrState {
			if v < 0 {
				tst.Fatalf("state must stay non-negative after clamping, got %v", v)
			}
		}
	})
}

func Test_driver_runs_kalman_subdomain_with_sensor(tst *testing.T) {
	chk.PrintTitle("driver_runs_kalman_subdomain. single subdomain with one sensor, Kalman branch")
	cfg := smallConfig(1, 1)
	cfg.ModelIniVar = 1.0
	cfg.ModelIniCovarRadius = 1.0
	nt := cfg.Nt

	sensors := obs.SensorList{
		{Ix: 0, Iy: 0}: {{X: inp.Sx / 2, Y: inp.Sy / 2}},
	}

	rows := make([]linalg.Vector, nt)
	for i := range rows {
		rows[i] = linalg.Vector{0.5}
	}
	tables := map[obs.SubIndex]*obs.Table{
		{Ix: 0, Iy: 0}: {Nt: nt, M: 1, Z: rows},
	}

	grid := NewGrid(1, 1, sensors, tables, cfg.ModelIniVar, cfg.ModelIniCovarRadius)
	observer := &collectObserver{}
	d := NewDriver(grid, cfg, observer)
	d.Noise = kalman.ConstantNoise{Value: 0.1}

	if err := d.Run(context.Background()); err != nil {
		tst.Fatalf("Run failed: %v", err)
	}
	if observer.snapshots == 0 {
		tst.Fatalf("expected at least one emitted snapshot")
	}
}
