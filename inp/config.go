// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp reads the simulation configuration (spec §6): a flat
// key=value text file, not gofem's JSON .sim format, because spec.md
// mandates a simple text grammar. The lifecycle (read file, validate,
// derive constants, collect every violation) mirrors
// inp.ReadSim (`inp/sim.go`): load, fill defaults, then panic/err-out on
// the first structurally unrecoverable problem. No pack library parses an
// arbitrary "key = value" text grammar, so the scanner itself is built on
// gosl/io.ReadFile + strings.Split/IndexByte; justified as stdlib-adjacent in
// DESIGN.md.
package inp

import (
	"math"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/io"

	"github.com/fearghalodonncha/allscale-amdados/errs"
)

// Sx, Sy are the compile-time subdomain dimensions; the configuration's
// subdomain_x/subdomain_y must agree with these (spec §6 ConfigMismatch).
const (
	Sx = 16
	Sy = 16
)

// OutflowMode mirrors schwarz.OutflowMode without importing it here
// (inp must not depend on schwarz); fem/driver.go converts between them.
type OutflowMode string

const (
	Mirror  OutflowMode = "mirror"
	Neumann OutflowMode = "neumann"
)

// Config is the fully parsed and validated simulation configuration.
type Config struct {
	DiffusionCoef float64

	NumSubdomainsX, NumSubdomainsY int
	SubdomainX, SubdomainY         int

	DomainSizeX, DomainSizeY float64

	IntegrationPeriod float64
	IntegrationNsteps int

	FlowModelMaxVx, FlowModelMaxVy float64

	ModelIniVar          float64
	ModelIniCovarRadius  float64
	ModelNoiseQ          float64
	ModelNoiseR          float64

	SchwarzNumIters   int
	SchwarzOutflow    OutflowMode
	WriteNumFields    int
	OutputDir         string

	// Derived.
	Dx, Dy float64
	Dt     float64
	Nt     int
}

// required keys and their setters, used to detect missing keys and to
// apply each parsed key without a long if/else chain.
type keySpec struct {
	name string
	set  func(c *Config, raw string, errsOut *[]string)
}

func parseFloat(name, raw string, errsOut *[]string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errsOut = append(*errsOut, io.Sf("%s: %q is not a number", name, raw))
	}
	return v
}

func parseInt(name, raw string, errsOut *[]string) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errsOut = append(*errsOut, io.Sf("%s: %q is not an integer", name, raw))
	}
	return v
}

var keySpecs = []keySpec{
	{"diffusion_coef", func(c *Config, raw string, e *[]string) { c.DiffusionCoef = parseFloat("diffusion_coef", raw, e) }},
	{"num_subdomains_x", func(c *Config, raw string, e *[]string) { c.NumSubdomainsX = parseInt("num_subdomains_x", raw, e) }},
	{"num_subdomains_y", func(c *Config, raw string, e *[]string) { c.NumSubdomainsY = parseInt("num_subdomains_y", raw, e) }},
	{"subdomain_x", func(c *Config, raw string, e *[]string) { c.SubdomainX = parseInt("subdomain_x", raw, e) }},
	{"subdomain_y", func(c *Config, raw string, e *[]string) { c.SubdomainY = parseInt("subdomain_y", raw, e) }},
	{"domain_size_x", func(c *Config, raw string, e *[]string) { c.DomainSizeX = parseFloat("domain_size_x", raw, e) }},
	{"domain_size_y", func(c *Config, raw string, e *[]string) { c.DomainSizeY = parseFloat("domain_size_y", raw, e) }},
	{"integration_period", func(c *Config, raw string, e *[]string) { c.IntegrationPeriod = parseFloat("integration_period", raw, e) }},
	{"integration_nsteps", func(c *Config, raw string, e *[]string) { c.IntegrationNsteps = parseInt("integration_nsteps", raw, e) }},
	{"flow_model_max_vx", func(c *Config, raw string, e *[]string) { c.FlowModelMaxVx = parseFloat("flow_model_max_vx", raw, e) }},
	{"flow_model_max_vy", func(c *Config, raw string, e *[]string) { c.FlowModelMaxVy = parseFloat("flow_model_max_vy", raw, e) }},
	{"model_ini_var", func(c *Config, raw string, e *[]string) { c.ModelIniVar = parseFloat("model_ini_var", raw, e) }},
	{"model_ini_covar_radius", func(c *Config, raw string, e *[]string) { c.ModelIniCovarRadius = parseFloat("model_ini_covar_radius", raw, e) }},
	{"model_noise_Q", func(c *Config, raw string, e *[]string) { c.ModelNoiseQ = parseFloat("model_noise_Q", raw, e) }},
	{"model_noise_R", func(c *Config, raw string, e *[]string) { c.ModelNoiseR = parseFloat("model_noise_R", raw, e) }},
	{"schwarz_num_iters", func(c *Config, raw string, e *[]string) { c.SchwarzNumIters = parseInt("schwarz_num_iters", raw, e) }},
	{"write_num_fields", func(c *Config, raw string, e *[]string) { c.WriteNumFields = parseInt("write_num_fields", raw, e) }},
	{"output_dir", func(c *Config, raw string, e *[]string) { c.OutputDir = raw }},
	{"schwarz_outflow_mode", func(c *Config, raw string, e *[]string) {
		switch OutflowMode(raw) {
		case Mirror, Neumann:
			c.SchwarzOutflow = OutflowMode(raw)
		default:
			*e = append(*e, io.Sf("schwarz_outflow_mode: must be %q or %q, got %q", Mirror, Neumann, raw))
		}
	}},
}

// Load reads, parses and validates the configuration file at path,
// collecting every violation before returning (friendlier than spec.md
// strictly requires, per SPEC_FULL §3, but changes no documented
// behavior).
func Load(path string) (*Config, error) {
	buf, err := io.ReadFile(path)
	if err != nil {
		return nil, errs.New(errs.IoFailure, "cannot read configuration file %q: %v", path, err)
	}

	c := &Config{SchwarzOutflow: Mirror}
	seen := make(map[string]bool, len(keySpecs))
	var problems []string

	for lineNo, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			problems = append(problems, io.Sf("line %d: missing '=' in %q", lineNo+1, line))
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		applied := false
		for _, spec := range keySpecs {
			if spec.name == key {
				spec.set(c, val, &problems)
				seen[key] = true
				applied = true
				break
			}
		}
		if !applied {
			problems = append(problems, io.Sf("line %d: unrecognized key %q", lineNo+1, key))
		}
	}

	for _, spec := range keySpecs {
		if spec.name == "schwarz_outflow_mode" {
			continue // optional, defaults to Mirror
		}
		if !seen[spec.name] {
			problems = append(problems, io.Sf("missing required key %q", spec.name))
		}
	}

	if len(problems) > 0 {
		return nil, errs.New(errs.InvalidInput, "configuration file %q: %s", path, strings.Join(problems, "; "))
	}

	if err := c.validateAndDerive(); err != nil {
		return nil, err
	}
	return c, nil
}

// validateAndDerive applies spec §6's range checks and derives dx, dy, dt,
// Nt. Collects every range violation into a single error, of kind
// ConfigMismatch when subdomain_x/y disagree with Sx/Sy and InvalidInput
// otherwise.
func (c *Config) validateAndDerive() error {
	var problems []string

	if c.DiffusionCoef <= 0 {
		problems = append(problems, "diffusion_coef must be > 0")
	}
	if c.NumSubdomainsX < 1 || c.NumSubdomainsY < 1 {
		problems = append(problems, "num_subdomains_x/y must be >= 1")
	}
	mismatch := c.SubdomainX != Sx || c.SubdomainY != Sy
	if mismatch {
		problems = append(problems, io.Sf("subdomain_x/y (%d,%d) disagree with compile-time Sx,Sy (%d,%d)", c.SubdomainX, c.SubdomainY, Sx, Sy))
	}
	if c.ModelIniVar < 0 || c.ModelIniCovarRadius < 0 || c.ModelNoiseQ < 0 || c.ModelNoiseR < 0 {
		problems = append(problems, "model_ini_var/model_ini_covar_radius/model_noise_Q/model_noise_R must be >= 0")
	}
	if c.SchwarzNumIters < 1 {
		problems = append(problems, "schwarz_num_iters must be >= 1")
	}
	if c.WriteNumFields < 2 {
		problems = append(problems, "write_num_fields must be >= 2")
	}
	if c.IntegrationNsteps < 1 {
		problems = append(problems, "integration_nsteps must be >= 1")
	}
	if len(problems) > 0 {
		if mismatch {
			return errs.New(errs.ConfigMismatch, "%s", strings.Join(problems, "; "))
		}
		return errs.New(errs.InvalidInput, "%s", strings.Join(problems, "; "))
	}

	const eps = 1e-12
	c.Dx = c.DomainSizeX / float64(c.NumSubdomainsX*Sx-1)
	c.Dy = c.DomainSizeY / float64(c.NumSubdomainsY*Sy-1)

	dtFromPeriod := c.IntegrationPeriod / float64(c.IntegrationNsteps)
	dtFromDiffusion := math.Min(c.Dx*c.Dx, c.Dy*c.Dy) / (2*c.DiffusionCoef + eps)
	dtFromAdvection := 1 / (math.Abs(c.FlowModelMaxVx)/c.Dx + math.Abs(c.FlowModelMaxVy)/c.Dy + eps)
	c.Dt = math.Min(dtFromPeriod, math.Min(dtFromDiffusion, dtFromAdvection))

	if c.Dt <= 0 {
		return errs.New(errs.StabilityViolation, "derived dt = %v is not positive", c.Dt)
	}
	c.Nt = int(math.Ceil(c.IntegrationPeriod / c.Dt))
	return nil
}
