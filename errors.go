// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package eda

import (
	"strings"

	"github.com/pkg/errors"
)

// Structural errors, returned while assembling chips. Use errors.Cause to
// compare a returned error against these values.
//
var (
	ErrDuplicateName      = errors.New("duplicate name")
	ErrMissingPortBinding = errors.New("missing port binding")
	ErrHierarchyCycle     = errors.New("hierarchy cycle")
	ErrUnknownSignal      = errors.New("unknown signal")
	ErrUnknownPort        = errors.New("unknown port")
	ErrUnknownParam       = errors.New("unknown parameter")
	ErrWidthMismatch      = errors.New("width mismatch")
	ErrForeignSignal      = errors.New("signal does not belong to chip")
	ErrAlreadyAttached    = errors.New("signal already attached to a chip")
	ErrDrivesInput        = errors.New("output connected to chip input port")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidWidth       = errors.New("invalid width")
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrArity              = errors.New("invalid number of connections")
	ErrInvalidGate        = errors.New("invalid gate")
)

// Evaluation errors.
//
var (
	// ErrInvalidValue is returned when a negative value is assigned to a
	// signal. Positive values wider than the signal are silently truncated.
	ErrInvalidValue = errors.New("invalid value")

	// ErrCombinationalLoop is returned when the gates and instances of a chip
	// cannot be ordered so that every signal is produced before it is read.
	ErrCombinationalLoop = errors.New("combinational loop")

	// ErrCapability is the panic value (wrapped) raised when calling a gate
	// capability that the gate does not implement.
	ErrCapability = errors.New("capability not implemented")

	ErrInsufficientPorts = errors.New("chip needs at least one input and one output port")
	ErrTooManyInputs     = errors.New("too many input ports")
)

var structural = []error{
	ErrDuplicateName, ErrMissingPortBinding, ErrHierarchyCycle,
	ErrUnknownSignal, ErrUnknownPort, ErrUnknownParam, ErrWidthMismatch,
	ErrForeignSignal, ErrAlreadyAttached, ErrDrivesInput, ErrInvalidName,
	ErrInvalidWidth, ErrInvalidDirection, ErrArity, ErrInvalidGate,
}

// IsStructural returns true if err was caused by an invalid chip structure.
//
func IsStructural(err error) bool {
	c := errors.Cause(err)
	for _, e := range structural {
		if c == e {
			return true
		}
	}
	return false
}

// MultiDriverWarning reports a signal driven by more than one gate or
// instance. When this happens, the driver that runs last in the evaluation
// order wins.
//
type MultiDriverWarning struct {
	Chip    string
	Signal  string
	Drivers []string // driver names, in evaluation order
}

func (w MultiDriverWarning) String() string {
	return w.Chip + "." + w.Signal + ": multiple drivers: " + strings.Join(w.Drivers, ", ")
}
