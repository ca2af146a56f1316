// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pde

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_buildB_halo_is_identity(tst *testing.T) {
	chk.PrintTitle("buildB_halo_is_identity. halo rows pass through unchanged")
	p := Params{D: 1, Dx: 0.1, Dy: 0.1, Dt: 0.001, Sx: 4, Sy: 4}
	B := BuildB(Flow{}, p)
	Ex, Ey := p.Sx+2, p.Sy+2
	for x := 0; x < Ex; x++ {
		for y := 0; y < Ey; y++ {
			interior := x >= 1 && x <= p.Sx && y >= 1 && y <= p.Sy
			if interior {
				continue
			}
			i := Index(x, y, Ey)
			for j := 0; j < B.Cols; j++ {
				want := 0.0
				if j == i {
					want = 1
				}
				if B.Data[i][j] != want {
					tst.Fatalf("halo row %d not identity at col %d: got %v", i, j, B.Data[i][j])
				}
			}
		}
	}
}

func Test_buildB_diagonally_dominant(tst *testing.T) {
	chk.PrintTitle("buildB_diagonally_dominant. interior rows are strictly diagonally dominant")
	p := Params{D: 1, Dx: 0.1, Dy: 0.1, Dt: 0.001, Sx: 5, Sy: 5}
	B := BuildB(Flow{Vx: 2, Vy: -1}, p)
	Ey := p.Sy + 2
	for x := 1; x <= p.Sx; x++ {
		for y := 1; y <= p.Sy; y++ {
			i := Index(x, y, Ey)
			diag := B.Data[i][i]
			var offsum float64
			for j := 0; j < B.Cols; j++ {
				if j == i {
					continue
				}
				if B.Data[i][j] != 0 {
					offsum += absf(B.Data[i][j])
				}
			}
			if diag <= offsum {
				tst.Fatalf("row %d not diagonally dominant: diag=%v offsum=%v", i, diag, offsum)
			}
		}
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
