// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cell

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func Test_refine_coarsen_uniform_is_exact(tst *testing.T) {
	chk.PrintTitle("refine_coarsen_uniform_is_exact. round trip on a uniform field changes nothing")
	c := New(8, 8)
	c.SetActiveLayer(Fine)
	c.ForAllActiveNodes(func(x, y int, v float64) {})
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			c.Set(x, y, 3.5)
		}
	}
	c.Coarsen(nil)
	c.Refine(nil)
	c.SetActiveLayer(Fine)
	maxDiff := 0.0
	c.ForAllActiveNodes(func(x, y int, v float64) {
		if d := math.Abs(v - 3.5); d > maxDiff {
			maxDiff = d
		}
	})
	chk.Scalar(tst, "maxDiff", 0, maxDiff, 0)
}

func Test_refine_coarsen_smooth_field(tst *testing.T) {
	chk.PrintTitle("refine_coarsen_smooth_field. round trip on a smooth field is nearly exact")
	c := New(16, 16)
	c.SetActiveLayer(Fine)
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			c.Set(x, y, float64(x)+0.5*float64(y))
		}
	}
	c.Coarsen(nil)
	c.SetActiveLayer(Coarse)
	coarseSnapshot := make([]float64, 0, 64)
	c.ForAllActiveNodes(func(x, y int, v float64) { coarseSnapshot = append(coarseSnapshot, v) })
	c.Refine(nil)
	c.Coarsen(nil)
	c.SetActiveLayer(Coarse)
	i := 0
	var maxRel float64
	c.ForAllActiveNodes(func(x, y int, v float64) {
		want := coarseSnapshot[i]
		i++
		if want != 0 {
			if rel := math.Abs(v-want) / math.Abs(want); rel > maxRel {
				maxRel = rel
			}
		}
	})
	chk.Scalar(tst, "maxRel", 1e-12, maxRel, 0)
}

func Test_boundary_strip_roundtrip(tst *testing.T) {
	chk.PrintTitle("boundary_strip_roundtrip. SetBoundary then GetBoundary reproduces the strip")
	c := New(6, 4)
	c.SetActiveLayer(Fine)
	for _, s := range []Side{Up, Down, Left, Right} {
		n := 6
		if s == Left || s == Right {
			n = 4
		}
		strip := make([]float64, n)
		for i := range strip {
			strip[i] = float64(i) + float64(s)*10
		}
		c.SetBoundary(s, strip)
		got := c.GetBoundary(s)
		chk.Vector(tst, io.Sf("side %v", s), 0, got, strip)
	}
}
