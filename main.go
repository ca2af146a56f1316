// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"

	"github.com/fearghalodonncha/allscale-amdados/fem"
	"github.com/fearghalodonncha/allscale-amdados/inp"
	"github.com/fearghalodonncha/allscale-amdados/kalman"
	"github.com/fearghalodonncha/allscale-amdados/obs"
	"github.com/fearghalodonncha/allscale-amdados/resultio"
)

// resultObserver adapts a resultio.Writer to fem.Observer.
type resultObserver struct {
	w *resultio.Writer
}

func (o resultObserver) Snapshot(timeIndex, gx, gy int, v float64) error {
	return o.w.Append(timeIndex, gx, gy, v)
}

func main() {
	// catch errors raised below (configuration, inputs, Driver.Run),
	// printing the panic and exiting non-zero rather than a bare stack trace.
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			for i := 8; i > 3; i-- {
				chk.CallerInfo(i)
			}
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	cfgPath := flag.String("config", "", "configuration file (key = value text format)")
	sensorsPath := flag.String("sensors", "", "sensor coordinate file (optional: omit for a sensor-less run)")
	obsPath := flag.String("observations", "", "analytic observation file (required if -sensors is set)")
	outPath := flag.String("out", "amdados.out", "result stream output file")
	flag.Parse()

	if *cfgPath == "" {
		chk.Panic("Please provide a configuration file. Ex.: -config amdados.cfg\n")
	}

	io.PfWhite("\nAMDADOS -- parallel PDE data assimilation engine\n\n")
	defer utl.DoProf(false)()

	cfg, err := inp.Load(*cfgPath)
	if err != nil {
		chk.Panic("%v\n", err)
	}
	io.Pf("> loaded configuration: %dx%d subdomains of %dx%d, Nt=%d, dt=%.4e\n",
		cfg.NumSubdomainsX, cfg.NumSubdomainsY, inp.Sx, inp.Sy, cfg.Nt, cfg.Dt)

	var sensors obs.SensorList
	var tables map[obs.SubIndex]*obs.Table
	if *sensorsPath != "" {
		sensors, err = obs.LoadSensors(*sensorsPath, inp.Sx, inp.Sy)
		if err != nil {
			chk.Panic("%v\n", err)
		}
		if *obsPath == "" {
			chk.Panic("-observations is required when -sensors is set\n")
		}
		tables, err = obs.BuildTables(*obsPath, sensors, cfg.NumSubdomainsX, cfg.NumSubdomainsY, inp.Sx, inp.Sy, cfg.Nt)
		if err != nil {
			chk.Panic("%v\n", err)
		}
		io.Pf("> loaded %d sensor-bearing subdomains\n", len(sensors))
	}

	grid := fem.NewGrid(cfg.NumSubdomainsX, cfg.NumSubdomainsY, sensors, tables, cfg.ModelIniVar, cfg.ModelIniCovarRadius)

	writer, err := resultio.Open(*outPath)
	if err != nil {
		chk.Panic("%v\n", err)
	}
	defer writer.Close()

	driver := fem.NewDriver(grid, cfg, resultObserver{w: writer})
	driver.Noise = kalman.RandomNoise{}

	if err := driver.Run(context.Background()); err != nil {
		chk.Panic("%v\n", err)
	}
	io.PfGreen("\n> done\n")
}
