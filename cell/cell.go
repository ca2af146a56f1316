// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cell implements the resolution-aware subdomain cell (spec §4.5,
// §3): a stackable two-layer (Fine, Coarse) value grid with uniform
// refine/coarsen operators and boundary-strip accessors keyed by side.
// Modeled as a tagged variant with identical operations on either layer,
// per spec §9's design note, the same way gofem models an element's
// active/auxiliary internal-variable copies (ele/diffusion keeps ivs
// consistent across states) rather than through an inheritance hierarchy.
package cell

import "github.com/cpmech/gosl/chk"

// Layer is the active resolution of a subdomain cell.
type Layer int

const (
	Fine Layer = iota
	Coarse
)

// Side identifies one of the four border strips of a subdomain.
type Side int

const (
	Up Side = iota
	Down
	Left
	Right
)

// Cell is a two-layer resolution-aware subdomain value grid. Fine has size
// Sx x Sy; Coarse has size (Sx/2) x (Sy/2).
type Cell struct {
	active Layer
	sx, sy int // fine size
	fine   []float64
	coarse []float64
}

// New allocates a Cell for a fine layer of size sx x sy (sx, sy even).
func New(sx, sy int) *Cell {
	if sx%2 != 0 || sy%2 != 0 {
		chk.Panic("cell.New: fine size must be even to coarsen, got %dx%d", sx, sy)
	}
	return &Cell{
		active: Coarse,
		sx:     sx,
		sy:     sy,
		fine:   make([]float64, sx*sy),
		coarse: make([]float64, (sx/2)*(sy/2)),
	}
}

// SetActiveLayer sets the currently active resolution.
func (c *Cell) SetActiveLayer(l Layer) { c.active = l }

// GetActiveLayer returns the currently active resolution.
func (c *Cell) GetActiveLayer() Layer { return c.active }

// dims returns (width, height) of the active layer.
func (c *Cell) dims() (int, int) {
	if c.active == Fine {
		return c.sx, c.sy
	}
	return c.sx / 2, c.sy / 2
}

// values returns the backing slice of the active layer.
func (c *Cell) values() []float64 {
	if c.active == Fine {
		return c.fine
	}
	return c.coarse
}

// At returns the value at (x,y) of the active layer.
func (c *Cell) At(x, y int) float64 {
	_, h := c.dims()
	return c.values()[x*h+y]
}

// Set writes the value at (x,y) of the active layer.
func (c *Cell) Set(x, y int, v float64) {
	_, h := c.dims()
	c.values()[x*h+y] = v
}

// ForAllActiveNodes iterates every (x,y,value) of the active layer.
func (c *Cell) ForAllActiveNodes(fn func(x, y int, v float64)) {
	w, h := c.dims()
	vals := c.values()
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			fn(x, y, vals[x*h+y])
		}
	}
}

// GetBoundary returns the active-layer border strip on the given side
// (length = width at Up/Down, height at Left/Right).
func (c *Cell) GetBoundary(s Side) []float64 {
	w, h := c.dims()
	vals := c.values()
	switch s {
	case Up:
		strip := make([]float64, w)
		for x := 0; x < w; x++ {
			strip[x] = vals[x*h+(h-1)]
		}
		return strip
	case Down:
		strip := make([]float64, w)
		for x := 0; x < w; x++ {
			strip[x] = vals[x*h+0]
		}
		return strip
	case Left:
		strip := make([]float64, h)
		copy(strip, vals[0:h])
		return strip
	case Right:
		strip := make([]float64, h)
		copy(strip, vals[(w-1)*h:(w-1)*h+h])
		return strip
	}
	chk.Panic("cell.GetBoundary: invalid side %v", s)
	return nil
}

// SetBoundary injects a strip into the active layer's border on side s.
func (c *Cell) SetBoundary(s Side, strip []float64) {
	w, h := c.dims()
	vals := c.values()
	switch s {
	case Up:
		for x := 0; x < w; x++ {
			vals[x*h+(h-1)] = strip[x]
		}
	case Down:
		for x := 0; x < w; x++ {
			vals[x*h+0] = strip[x]
		}
	case Left:
		copy(vals[0:h], strip)
	case Right:
		copy(vals[(w-1)*h:(w-1)*h+h], strip)
	default:
		chk.Panic("cell.SetBoundary: invalid side %v", s)
	}
}

// Refine populates the Fine layer from the Coarse layer by duplication,
// mapped through f (identity by default: f(v) = v).
func (c *Cell) Refine(f func(float64) float64) {
	if f == nil {
		f = identity
	}
	cw, ch := c.sx/2, c.sy/2
	for x := 0; x < cw; x++ {
		for y := 0; y < ch; y++ {
			v := f(c.coarse[x*ch+y])
			for dx := 0; dx < 2; dx++ {
				for dy := 0; dy < 2; dy++ {
					fx, fy := 2*x+dx, 2*y+dy
					c.fine[fx*c.sy+fy] = v
				}
			}
		}
	}
}

// Coarsen populates the Coarse layer from the Fine layer by averaging the
// 2x2 block, mapped through f (identity by default).
func (c *Cell) Coarsen(f func(float64) float64) {
	if f == nil {
		f = identity
	}
	cw, ch := c.sx/2, c.sy/2
	for x := 0; x < cw; x++ {
		for y := 0; y < ch; y++ {
			var sum float64
			for dx := 0; dx < 2; dx++ {
				for dy := 0; dy < 2; dy++ {
					fx, fy := 2*x+dx, 2*y+dy
					sum += f(c.fine[fx*c.sy+fy])
				}
			}
			c.coarse[x*ch+y] = sum / 4
		}
	}
}

func identity(v float64) float64 { return v }
