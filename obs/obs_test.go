// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obs

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func writeTemp(tst *testing.T, name, content string) string {
	dir := tst.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tst.Fatalf("cannot write temp file: %v", err)
	}
	return path
}

func Test_loadSensors_parses_records(tst *testing.T) {
	chk.PrintTitle("loadSensors_parses_records")
	path := writeTemp(tst, "sensors.txt", "0 0 1 2\n0 0 3 3\n1 0 0 0\n")
	list, err := LoadSensors(path, 4, 4)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	got := list[SubIndex{Ix: 0, Iy: 0}]
	want := []Coord{{X: 1, Y: 2}, {X: 3, Y: 3}}
	if len(got) != len(want) {
		tst.Fatalf("subdomain (0,0): got %d sensors, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			tst.Fatalf("subdomain (0,0) sensor %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if len(list[SubIndex{Ix: 1, Iy: 0}]) != 1 {
		tst.Fatalf("subdomain (1,0): expected 1 sensor")
	}
}

func Test_loadSensors_rejects_out_of_range(tst *testing.T) {
	chk.PrintTitle("loadSensors_rejects_out_of_range")
	path := writeTemp(tst, "sensors.txt", "0 0 9 0\n")
	if _, err := LoadSensors(path, 4, 4); err == nil {
		tst.Fatalf("expected an error for out-of-range local coordinate")
	}
}

func Test_buildH_places_single_one_per_row(tst *testing.T) {
	chk.PrintTitle("buildH_places_single_one_per_row")
	coords := []Coord{{X: 1, Y: 2}, {X: 0, Y: 0}}
	sx, sy := 4, 4
	H := BuildH(coords, sx, sy)
	if H.Rows != 2 {
		tst.Fatalf("expected 2 rows, got %d", H.Rows)
	}
	for i := range coords {
		var ones int
		for j := 0; j < H.Cols; j++ {
			if H.Data[i][j] == 1 {
				ones++
			} else if H.Data[i][j] != 0 {
				tst.Fatalf("row %d has a non-{0,1} entry %v at col %d", i, H.Data[i][j], j)
			}
		}
		if ones != 1 {
			tst.Fatalf("row %d: expected exactly one 1, found %d", i, ones)
		}
	}
}

func Test_buildTables_extracts_subdomain_readings(tst *testing.T) {
	chk.PrintTitle("buildTables_extracts_subdomain_readings")
	// 2x1 subdomains of 2x2; global grid 4x2 (x outer, y inner).
	nxSub, nySub, sx, sy, nt := 2, 1, 2, 2, 2
	sensors := SensorList{
		SubIndex{Ix: 0, Iy: 0}: {{X: 1, Y: 1}},
		SubIndex{Ix: 1, Iy: 0}: {{X: 0, Y: 0}},
	}

	var buf string
	for t := 0; t < nt; t++ {
		buf += fmt.Sprintf("%d %v\n", t, float64(t)*0.5)
		for gx := 0; gx < nxSub*sx; gx++ {
			for gy := 0; gy < nySub*sy; gy++ {
				val := float64(t)*100 + float64(gx)*10 + float64(gy)
				buf += fmt.Sprintf("%d %d %v\n", gx, gy, val)
			}
		}
	}
	path := writeTemp(tst, "analytic.txt", buf)

	tables, err := BuildTables(path, sensors, nxSub, nySub, sx, sy, nt)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}

	left := tables[SubIndex{Ix: 0, Iy: 0}]
	right := tables[SubIndex{Ix: 1, Iy: 0}]

	// left subdomain sensor at local (1,1) -> global (1,1)
	for t := 0; t < nt; t++ {
		want := float64(t)*100 + 1*10 + 1
		if got := left.RowAt(t)[0]; got != want {
			tst.Fatalf("left t=%d: got %v want %v", t, got, want)
		}
	}
	// right subdomain sensor at local (0,0) -> global (2,0)
	for t := 0; t < nt; t++ {
		want := float64(t)*100 + 2*10 + 0
		if got := right.RowAt(t)[0]; got != want {
			tst.Fatalf("right t=%d: got %v want %v", t, got, want)
		}
	}
}
