// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"sync"
	"time"

	"github.com/cpmech/gosl/io"
)

// Profile is the "average-profile collaborator" spec §7 names without
// detailing: it accumulates the running mean/max of the Schwarz rel_diff
// diagnostic and the per-step wall-clock, flushed at end of run. Logging
// uses gosl/io's colored Pf family exactly as fem/fem.go reports stage
// progress.
type Profile struct {
	mu sync.Mutex

	steps int

	relDiffSum float64
	relDiffMax float64

	stepWallSum time.Duration
	stepWallMax time.Duration
}

// RecordStep folds one time step's Schwarz rel_diff and wall-clock into
// the running statistics. Safe for concurrent use.
func (p *Profile) RecordStep(relDiff float64, wall time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps++
	p.relDiffSum += relDiff
	if relDiff > p.relDiffMax {
		p.relDiffMax = relDiff
	}
	p.stepWallSum += wall
	if wall > p.stepWallMax {
		p.stepWallMax = wall
	}
}

// Flush prints the accumulated averages/maxima via io.Pf, the same
// colored-console report style fem/fem.go uses for stage completion.
func (p *Profile) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.steps == 0 {
		io.Pf("> profile: no steps recorded\n")
		return
	}
	avgRel := p.relDiffSum / float64(p.steps)
	avgWall := p.stepWallSum / time.Duration(p.steps)
	io.PfGreen("> profile: %d steps, rel_diff avg=%.3e max=%.3e, step wall avg=%v max=%v\n",
		p.steps, avgRel, p.relDiffMax, avgWall, p.stepWallMax)
}
