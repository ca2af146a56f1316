// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schwarz implements flow-aware border exchange between
// neighboring subdomains (spec §4.4): inflow detection per side, halo
// assembly from neighbors, and the outer-domain Dirichlet clamp. It
// operates on the extended (Sx+2)x(Sy+2) field matrix (spec §3) that the
// implicit-Euler operator B acts on; the one-cell-thick halo ring is what
// gets overwritten here, from either a neighbor's interior strip (inflow)
// or this subdomain's own interior (outflow/parallel flow).
//
// Grounded on the per-side natural/essential boundary condition idiom
// gofem uses in fem/essenbcs.go and ele/diffusion.go's add_natbcs_to_rhs (a
// loop over sides/faces with a per-side behavior switch), generalized here
// to structured-grid neighbor lookup instead of unstructured face lists.
package schwarz

import (
	"math"

	"github.com/fearghalodonncha/allscale-amdados/cell"
	"github.com/fearghalodonncha/allscale-amdados/linalg"
	"github.com/fearghalodonncha/allscale-amdados/pde"
)

// Lattice describes the subdomain grid dimensions.
type Lattice struct {
	Nx, Ny int
}

// Index is a subdomain's position on the lattice.
type Index struct {
	Ix, Iy int
}

// OutflowMode selects how non-inflow sides are handled (spec §9 Open
// Question i): Mirror duplicates the second interior row/column (Neumann
// via mirroring); Neumann copies the first interior row/column directly
// (zero-gradient extension). Selected by configuration, not compile-time
// flag.
type OutflowMode int

const (
	Mirror OutflowMode = iota
	Neumann
)

// Opposite returns the side a neighbor sees this subdomain across.
func Opposite(s cell.Side) cell.Side {
	switch s {
	case cell.Up:
		return cell.Down
	case cell.Down:
		return cell.Up
	case cell.Left:
		return cell.Right
	case cell.Right:
		return cell.Left
	}
	return s
}

// IsOuter reports whether side s of subdomain idx is on the outer domain
// face of the lattice.
func (idx Index) IsOuter(s cell.Side, lat Lattice) bool {
	switch s {
	case cell.Up:
		return idx.Iy == lat.Ny-1
	case cell.Down:
		return idx.Iy == 0
	case cell.Left:
		return idx.Ix == 0
	case cell.Right:
		return idx.Ix == lat.Nx-1
	}
	return false
}

// normal returns the outward unit normal of side s.
func normal(s cell.Side) (nx, ny float64) {
	switch s {
	case cell.Up:
		return 0, 1
	case cell.Down:
		return 0, -1
	case cell.Left:
		return -1, 0
	case cell.Right:
		return 1, 0
	}
	return 0, 0
}

// Record is the per-side boundary diagnostic state (spec §3 "Boundary
// record").
type Record struct {
	Outer       bool
	Inflow      bool
	MismatchNum float64 // numerator of the L1 relative-difference metric
	MismatchDen float64 // denominator of the L1 relative-difference metric
}

// NeighborLookup resolves the cell owning the subdomain adjacent to idx
// across side s, or returns ok=false if idx is on the outer domain.
type NeighborLookup func(idx Index, s cell.Side) (neighbor *cell.Cell, ok bool)

const epsilon = 1e-12

// haloStrip reads the current halo ring of field (flat state vector of the
// extended (sx+2)x(sy+2) subdomain, row-major inner index = y per
// pde.Index) on side s, over the interior-facing extent only (length sx for
// Up/Down, sy for Left/Right): the four corner halo cells are never read by
// pde.BuildB's interior stencil rows and are excluded here so this strip's
// length matches cell.Cell.GetBoundary's interior-only strip exactly (Cell
// stores no halo of its own).
func haloStrip(field linalg.Vector, sx, sy int, s cell.Side) []float64 {
	ex, ey := sx+2, sy+2
	switch s {
	case cell.Up:
		strip := make([]float64, sx)
		for x := 0; x < sx; x++ {
			strip[x] = field[pde.Index(x+1, ey-1, ey)]
		}
		return strip
	case cell.Down:
		strip := make([]float64, sx)
		for x := 0; x < sx; x++ {
			strip[x] = field[pde.Index(x+1, 0, ey)]
		}
		return strip
	case cell.Left:
		strip := make([]float64, sy)
		for y := 0; y < sy; y++ {
			strip[y] = field[pde.Index(0, y+1, ey)]
		}
		return strip
	case cell.Right:
		strip := make([]float64, sy)
		for y := 0; y < sy; y++ {
			strip[y] = field[pde.Index(ex-1, y+1, ey)]
		}
		return strip
	}
	return nil
}

// setHaloStrip overwrites the interior-facing extent of field's halo ring on
// side s with vals (length sx for Up/Down, sy for Left/Right; see haloStrip).
func setHaloStrip(field linalg.Vector, sx, sy int, s cell.Side, vals []float64) {
	ex, ey := sx+2, sy+2
	switch s {
	case cell.Up:
		for x := 0; x < sx; x++ {
			field[pde.Index(x+1, ey-1, ey)] = vals[x]
		}
	case cell.Down:
		for x := 0; x < sx; x++ {
			field[pde.Index(x+1, 0, ey)] = vals[x]
		}
	case cell.Left:
		for y := 0; y < sy; y++ {
			field[pde.Index(0, y+1, ey)] = vals[y]
		}
	case cell.Right:
		for y := 0; y < sy; y++ {
			field[pde.Index(ex-1, y+1, ey)] = vals[y]
		}
	}
}

// interiorStrip reads the interior row/column one cell in from side s (the
// strip a neighbor across that side would read as its inflow halo).
func interiorStrip(field linalg.Vector, sx, sy int, s cell.Side) []float64 {
	ex, ey := sx+2, sy+2
	switch s {
	case cell.Up:
		strip := make([]float64, sx)
		for x := 0; x < sx; x++ {
			strip[x] = field[pde.Index(x+1, ey-2, ey)]
		}
		return strip
	case cell.Down:
		strip := make([]float64, sx)
		for x := 0; x < sx; x++ {
			strip[x] = field[pde.Index(x+1, 1, ey)]
		}
		return strip
	case cell.Left:
		strip := make([]float64, sy)
		for y := 0; y < sy; y++ {
			strip[y] = field[pde.Index(1, y+1, ey)]
		}
		return strip
	case cell.Right:
		strip := make([]float64, sy)
		for y := 0; y < sy; y++ {
			strip[y] = field[pde.Index(ex-2, y+1, ey)]
		}
		return strip
	}
	return nil
}

// secondInteriorStrip reads the interior row/column two cells in from side
// s, used by the Mirror outflow variant.
func secondInteriorStrip(field linalg.Vector, sx, sy int, s cell.Side) []float64 {
	ex, ey := sx+2, sy+2
	switch s {
	case cell.Up:
		strip := make([]float64, sx)
		for x := 0; x < sx; x++ {
			strip[x] = field[pde.Index(x+1, ey-3, ey)]
		}
		return strip
	case cell.Down:
		strip := make([]float64, sx)
		for x := 0; x < sx; x++ {
			strip[x] = field[pde.Index(x+1, 2, ey)]
		}
		return strip
	case cell.Left:
		strip := make([]float64, sy)
		for y := 0; y < sy; y++ {
			strip[y] = field[pde.Index(2, y+1, ey)]
		}
		return strip
	case cell.Right:
		strip := make([]float64, sy)
		for y := 0; y < sy; y++ {
			strip[y] = field[pde.Index(ex-3, y+1, ey)]
		}
		return strip
	}
	return nil
}

// Update performs the border exchange on one subdomain's extended field
// matrix (shape (sx+2)x(sy+2)): for every side, classify outer/inflow,
// assemble the halo from the neighbor (inflow) or by interior
// mirroring/Neumann extension (outflow or parallel flow), and accumulate
// the Schwarz mismatch metric over in-flow sides. Returns the per-side
// diagnostic records.
func Update(field linalg.Vector, sx, sy int, idx Index, lat Lattice, flow pde.Flow, lookup NeighborLookup, mode OutflowMode) map[cell.Side]Record {
	sides := []cell.Side{cell.Up, cell.Down, cell.Left, cell.Right}
	records := make(map[cell.Side]Record, 4)

	for _, s := range sides {
		if idx.IsOuter(s, lat) {
			records[s] = Record{Outer: true}
			continue
		}

		nx, ny := normal(s)
		dot := nx*flow.Vx + ny*flow.Vy

		if dot < 0 {
			// inflow: pull the neighbor's interior strip facing us
			neighbor, ok := lookup(idx, s)
			if !ok {
				records[s] = Record{Outer: true}
				continue
			}
			before := haloStrip(field, sx, sy, s)
			remote := neighbor.GetBoundary(Opposite(s))
			setHaloStrip(field, sx, sy, s, remote)

			var num, den float64
			for i := range remote {
				num += math.Abs(remote[i] - before[i])
				den += math.Abs(remote[i])
			}
			records[s] = Record{Inflow: true, MismatchNum: num, MismatchDen: den}
			continue
		}

		// outflow or parallel flow: Neumann-style halo
		if mode == Mirror {
			setHaloStrip(field, sx, sy, s, secondInteriorStrip(field, sx, sy, s))
		} else {
			setHaloStrip(field, sx, sy, s, interiorStrip(field, sx, sy, s))
		}
		records[s] = Record{}
	}
	return records
}

// ClampOuter zeroes every outer-facing border strip of field (Dirichlet),
// for the sides recorded as Outer in records, including the two halo corner
// cells at the ends of that strip.
func ClampOuter(field linalg.Vector, sx, sy int, records map[cell.Side]Record) {
	sides := []cell.Side{cell.Up, cell.Down, cell.Left, cell.Right}
	ex, ey := sx+2, sy+2
	for _, s := range sides {
		if !records[s].Outer {
			continue
		}
		n := sx
		if s == cell.Left || s == cell.Right {
			n = sy
		}
		zeros := make([]float64, n)
		setHaloStrip(field, sx, sy, s, zeros)
		switch s {
		case cell.Up:
			field[pde.Index(0, ey-1, ey)], field[pde.Index(ex-1, ey-1, ey)] = 0, 0
		case cell.Down:
			field[pde.Index(0, 0, ey)], field[pde.Index(ex-1, 0, ey)] = 0, 0
		case cell.Left:
			field[pde.Index(0, 0, ey)], field[pde.Index(0, ey-1, ey)] = 0, 0
		case cell.Right:
			field[pde.Index(ex-1, 0, ey)], field[pde.Index(ex-1, ey-1, ey)] = 0, 0
		}
	}
}

// RelDiff aggregates the L1 relative-difference mismatch metric over every
// inflow side of the given records (spec §4.4): not a convergence
// criterion, used only for diagnostics.
func RelDiff(records map[cell.Side]Record) float64 {
	var num, den float64
	for _, r := range records {
		if !r.Inflow {
			continue
		}
		num += r.MismatchNum
		den += r.MismatchDen
	}
	if den < epsilon {
		den = epsilon
	}
	return num / den
}
