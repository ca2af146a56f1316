// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/fearghalodonncha/allscale-amdados/cell"
	"github.com/fearghalodonncha/allscale-amdados/inp"
	"github.com/fearghalodonncha/allscale-amdados/obs"
	"github.com/fearghalodonncha/allscale-amdados/schwarz"
)

// Grid is the 2D array of subdomain contexts owned by the driver (spec §9
// "grid-of-contexts ownership"): allocated once, indexed in place, never
// transferred across tasks.
type Grid struct {
	Lattice  schwarz.Lattice
	Contexts [][]*Context // [Ix][Iy]
}

// NewGrid allocates every subdomain context and binds sensors/measurement
// tables. iniVar/iniRadius seed the Kalman-branch contexts' prior
// covariance (config keys model_ini_var, model_ini_covar_radius).
func NewGrid(nxSub, nySub int, sensors obs.SensorList, tables map[obs.SubIndex]*obs.Table, iniVar, iniRadius float64) *Grid {
	g := &Grid{
		Lattice:  schwarz.Lattice{Nx: nxSub, Ny: nySub},
		Contexts: make([][]*Context, nxSub),
	}
	for ix := 0; ix < nxSub; ix++ {
		g.Contexts[ix] = make([]*Context, nySub)
		for iy := 0; iy < nySub; iy++ {
			idx := schwarz.Index{Ix: ix, Iy: iy}
			obsIdx := obs.SubIndex{Ix: ix, Iy: iy}
			g.Contexts[ix][iy] = NewContext(idx, sensors[obsIdx], tables[obsIdx], iniVar, iniRadius)
		}
	}
	return g
}

// At returns the context at lattice position idx.
func (g *Grid) At(idx schwarz.Index) *Context { return g.Contexts[idx.Ix][idx.Iy] }

// ForEach calls fn for every context, one after another on the calling
// goroutine (Driver.Run uses it for its serial barrier pass after
// ParallelFor returns). The visiting order is not part of the contract.
func (g *Grid) ForEach(fn func(*Context)) {
	for ix := range g.Contexts {
		for iy := range g.Contexts[ix] {
			fn(g.Contexts[ix][iy])
		}
	}
}

// NeighborLookup implements schwarz.NeighborLookup against this grid: the
// neighbor's Cell carries the "start-of-t" interior snapshot because
// syncCellFromState is called once per context before any context's
// Schwarz update runs within the same t (spec §5's happens-before rule).
func (g *Grid) NeighborLookup(idx schwarz.Index, s cell.Side) (*cell.Cell, bool) {
	nx, ny := idx.Ix, idx.Iy
	switch s {
	case cell.Up:
		ny++
	case cell.Down:
		ny--
	case cell.Left:
		nx--
	case cell.Right:
		nx++
	}
	if nx < 0 || nx >= g.Lattice.Nx || ny < 0 || ny >= g.Lattice.Ny {
		return nil, false
	}
	return g.Contexts[nx][ny].Cell, true
}
