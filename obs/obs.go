// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package obs loads the sensor coordinate list and per-subdomain
// measurement tables and binds them into the Kalman observation operator H
// and observation vector z (spec §4.7). File parsing follows the
// whitespace-record convention gofem's own input readers use
// (io.ReadFile + strings.Fields), the same way inp/func.go and inp/mat.go
// scan their data sections rather than reaching for a generic CSV/JSON
// decoder the pack doesn't otherwise use for this shape of data.
package obs

import (
	"strconv"
	"strings"

	"github.com/cpmech/gosl/io"

	"github.com/fearghalodonncha/allscale-amdados/errs"
	"github.com/fearghalodonncha/allscale-amdados/linalg"
	"github.com/fearghalodonncha/allscale-amdados/pde"
)

// SubIndex identifies a subdomain on the lattice.
type SubIndex struct {
	Ix, Iy int
}

// Coord is a local sensor position within a subdomain, 0 <= X < Sx,
// 0 <= Y < Sy.
type Coord struct {
	X, Y int
}

// SensorList maps each subdomain index to its ordered local sensor
// coordinates; the same order is assumed by the measurement table.
type SensorList map[SubIndex][]Coord

// LoadSensors parses a sensors_Nx<Sx>_Ny<Sy>.txt file: whitespace-separated
// records (subdomain_ix, subdomain_iy, local_x, local_y), one per line.
func LoadSensors(path string, sx, sy int) (SensorList, error) {
	buf, err := io.ReadFile(path)
	if err != nil {
		return nil, errs.New(errs.IoFailure, "cannot read sensor file %q: %v", path, err)
	}
	list := make(SensorList)
	for lineNo, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, errs.New(errs.InvalidInput, "sensor file %q line %d: expected 4 fields, got %d", path, lineNo+1, len(fields))
		}
		ix, e1 := strconv.Atoi(fields[0])
		iy, e2 := strconv.Atoi(fields[1])
		x, e3 := strconv.Atoi(fields[2])
		y, e4 := strconv.Atoi(fields[3])
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
			return nil, errs.New(errs.InvalidInput, "sensor file %q line %d: non-integer field", path, lineNo+1)
		}
		if x < 0 || x >= sx || y < 0 || y >= sy {
			return nil, errs.New(errs.InvalidInput, "sensor file %q line %d: local coord (%d,%d) out of [0,%d)x[0,%d)", path, lineNo+1, x, y, sx, sy)
		}
		idx := SubIndex{Ix: ix, Iy: iy}
		list[idx] = append(list[idx], Coord{X: x, Y: y})
	}
	return list, nil
}

// Table is the per-subdomain Nt x m measurement matrix: row t holds the
// sensor readings (in sensor-list order) at time step t.
type Table struct {
	Nt int
	M  int
	Z  []linalg.Vector
}

// RowAt returns the observation vector z at the given time step.
func (t *Table) RowAt(tStep int) linalg.Vector { return t.Z[tStep] }

// BuildTables parses the global analytic observation file
// (analytic_Nx<..>_Ny<..>_Nt<..>.txt): for each of Nt time steps, a leading
// (t, physical_time) pair followed by NxSub*NySub*Sx*Sy triples
// (global_x, global_y, value) ordered global_x outer, global_y inner. It
// extracts, for every subdomain with sensors, the values at its sensors'
// global coordinates into that subdomain's Table.
func BuildTables(path string, sensors SensorList, nxSub, nySub, sx, sy, nt int) (map[SubIndex]*Table, error) {
	buf, err := io.ReadFile(path)
	if err != nil {
		return nil, errs.New(errs.IoFailure, "cannot read observation file %q: %v", path, err)
	}
	fields := strings.Fields(string(buf))

	globalW := nxSub * sx
	globalH := nySub * sy
	nodesPerStep := globalW * globalH

	tables := make(map[SubIndex]*Table, len(sensors))
	for idx, coords := range sensors {
		tables[idx] = &Table{Nt: nt, M: len(coords), Z: make([]linalg.Vector, nt)}
	}

	pos := 0
	readFloat := func() (float64, error) {
		if pos >= len(fields) {
			return 0, errs.New(errs.InvalidInput, "observation file %q: unexpected end of data", path)
		}
		v, err := strconv.ParseFloat(fields[pos], 64)
		if err != nil {
			return 0, errs.New(errs.InvalidInput, "observation file %q: non-numeric field %q", path, fields[pos])
		}
		pos++
		return v, nil
	}

	for tStep := 0; tStep < nt; tStep++ {
		if _, err := readFloat(); err != nil { // t index (loop counter is authoritative)
			return nil, err
		}
		if _, err := readFloat(); err != nil { // physical_time
			return nil, err
		}

		grid := make([]float64, nodesPerStep)
		for gx := 0; gx < globalW; gx++ {
			for gy := 0; gy < globalH; gy++ {
				fx, err := readFloat()
				if err != nil {
					return nil, err
				}
				fy, err := readFloat()
				if err != nil {
					return nil, err
				}
				val, err := readFloat()
				if err != nil {
					return nil, err
				}
				if int(fx) != gx || int(fy) != gy {
					return nil, errs.New(errs.InvalidInput, "observation file %q: bad ordering at t=%d, expected (%d,%d) got (%v,%v)", path, tStep, gx, gy, fx, fy)
				}
				grid[gx*globalH+gy] = val
			}
		}

		for idx, coords := range sensors {
			row := linalg.NewVector(len(coords))
			for k, c := range coords {
				gx := idx.Ix*sx + c.X
				gy := idx.Iy*sy + c.Y
				row[k] = grid[gx*globalH+gy]
			}
			tables[idx].Z[tStep] = row
		}
	}
	return tables, nil
}

// BuildH assembles the observation operator H (len(coords) x n) for a
// subdomain with the given ordered local sensor coordinates: row k has a
// single 1 at the flat extended-subdomain index of the k-th sensor,
// (x+1, y+1) per spec §4.7.
func BuildH(coords []Coord, sx, sy int) *linalg.Matrix {
	n := pde.Dims(sx, sy)
	ey := sy + 2
	H := linalg.NewMatrix(len(coords), n)
	for k, c := range coords {
		j := pde.Index(c.X+1, c.Y+1, ey)
		H.Data[k][j] = 1
	}
	return H
}
