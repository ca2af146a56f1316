// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs defines the fatal error kinds raised at the core boundary,
// matching spec §7: every kind is fatal, there is no per-subdomain retry.
package errs

import "github.com/cpmech/gosl/chk"

// Kind identifies one of the fatal error categories of the core.
type Kind int

const (
	// ConfigMismatch: hard-coded Sx/Sy disagree with configuration.
	ConfigMismatch Kind = iota
	// InvalidInput: sensor coordinate out of range, measurement length
	// mismatch, negative diffusion coefficient, and similar.
	InvalidInput
	// FactorizationFailure: LU or Cholesky pivot underflow.
	FactorizationFailure
	// StabilityViolation: derived dt <= 0.
	StabilityViolation
	// IoFailure: missing input file or result-stream write failure.
	IoFailure
)

func (k Kind) String() string {
	switch k {
	case ConfigMismatch:
		return "ConfigMismatch"
	case InvalidInput:
		return "InvalidInput"
	case FactorizationFailure:
		return "FactorizationFailure"
	case StabilityViolation:
		return "StabilityViolation"
	case IoFailure:
		return "IoFailure"
	}
	return "UnknownError"
}

// Error is a fatal core error tagged with its Kind.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Msg }

// New builds a fatal error of the given kind, formatting the message with
// gosl/chk's Err the way the teacher's own element/material code raises
// its own fatal errors (e.g. ele/factory.go's chk.Err calls).
func New(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: chk.Err(format, args...).Error()}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}

// SingularOperator is returned by Cholesky/LU factorization when a pivot
// magnitude underflows. The engine treats this as fatal (wraps it as
// FactorizationFailure at the caller).
var SingularOperator = New(FactorizationFailure, "pivot magnitude underflow: operator is singular or ill-conditioned")
