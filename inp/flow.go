// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"math"

	"github.com/cpmech/gosl/fun"
)

// velocityFunc implements gosl/fun.Func (the same `F(t float64, x []float64)
// float64` interface fem/e_diffu.go's Sfun and fem/essenbcs.go's Fcn
// fields use) for the frozen flow model of spec §6:
// vx(t) = -max_vx*sin(0.1*t/Nt - pi), vy(t) = -max_vy*sin(0.2*t/Nt - pi).
type velocityFunc struct {
	amp   float64
	omega float64
	nt    float64
}

var _ fun.Func = velocityFunc{}

// F evaluates the velocity component at logical time t (a step index, as
// the driver calls it); x is unused (spatially uniform flow).
func (f velocityFunc) F(t float64, x []float64) float64 {
	return -f.amp * math.Sin(f.omega*t/f.nt-math.Pi)
}

// VxFunc returns the fun.Func-compatible vx(t) of spec §6's frozen flow
// model.
func (c *Config) VxFunc() velocityFunc {
	return velocityFunc{amp: c.FlowModelMaxVx, omega: 0.1, nt: float64(c.Nt)}
}

// VyFunc returns the fun.Func-compatible vy(t) of spec §6's frozen flow
// model.
func (c *Config) VyFunc() velocityFunc {
	return velocityFunc{amp: c.FlowModelMaxVy, omega: 0.2, nt: float64(c.Nt)}
}
