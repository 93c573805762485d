// Package errs defines the core's uniform error taxonomy:
// PreconditionViolation, GeometryOverflow, ParticleOutOfRange,
// SolverDivergence, and NonConvergence. Every fatal kind is logged with a
// stack trace (via github.com/pkg/errors) and aborts the process; recoverable
// kinds are returned to the caller.
/*
 * Copyright (c) 2024, Cello Mesh Project. All rights reserved.
 */
package errs

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cello-mesh/refresh/cmn/nlog"
)

type Kind int

const (
	PreconditionViolation Kind = iota
	GeometryOverflow
	ParticleOutOfRange
	SolverDivergence
	NonConvergence
)

func (k Kind) String() string {
	switch k {
	case PreconditionViolation:
		return "PreconditionViolation"
	case GeometryOverflow:
		return "GeometryOverflow"
	case ParticleOutOfRange:
		return "ParticleOutOfRange"
	case SolverDivergence:
		return "SolverDivergence"
	case NonConvergence:
		return "NonConvergence"
	default:
		return "Unknown"
	}
}

// Fatal reports whether errors of this kind terminate the process rather
// than return to the caller.
func (k Kind) Fatal() bool {
	switch k {
	case SolverDivergence, NonConvergence:
		return false
	default:
		return true
	}
}

// Error carries {kind, block, refresh-id, detail}, a uniform replacement
// for the scattered abort macros a C++ original would use.
type Error struct {
	Kind      Kind
	Block     string
	RefreshID int
	Detail    string
	cause     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: block=%s refresh=%d: %s", e.Kind, e.Block, e.RefreshID, e.Detail)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error, wrapping it with a stack trace via pkg/errors so
// a fatal abort's log line carries the call path.
func New(kind Kind, block string, refreshID int, detail string) *Error {
	e := &Error{Kind: kind, Block: block, RefreshID: refreshID, Detail: detail}
	e.cause = errors.WithStack(e)
	return e
}

// Abort logs a fatal error's stack trace and terminates the process. Callers
// are expected to call Abort only for Kind.Fatal() errors; the core never
// attempts partial-refresh recovery.
func Abort(e *Error) {
	nlog.Errorf("%+v", e.cause)
	nlog.Fatalf("fatal %s (block=%s refresh=%d): %s", e.Kind, e.Block, e.RefreshID, e.Detail)
}
