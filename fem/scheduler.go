// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Scheduler dispatches "for each subdomain at logical time t" (spec §5):
// the per-t implicit barrier is exactly ParallelFor returning. It is an
// interface, not a concrete errgroup call, because spec §9/§2 calls the
// target "a parallel task runtime... with pluggable alternatives" — an
// implementation swap (e.g. a bounded worker pool) should not touch the
// driver.
type Scheduler interface {
	ParallelFor(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}

// ErrgroupScheduler runs every iteration as its own goroutine under a
// golang.org/x/sync/errgroup.Group, the idiomatic Go stand-in for the
// spec's shared-memory parallel-for (grounded on
// other_examples/d81d09d9_janpfeifer-go-highway and
// other_examples/b64cf042_famouswizard-gnark, both of which use
// errgroup.Group as their fan-out/barrier primitive). The first error
// cancels the group's context; ParallelFor returns that error after every
// goroutine has exited.
type ErrgroupScheduler struct{}

func (ErrgroupScheduler) ParallelFor(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return fn(gctx, i) })
	}
	return g.Wait()
}
