// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package edalib

import (
	"strconv"

	"github.com/panhaiqi/OpenChipEDA"
	"github.com/pkg/errors"
)

// ConstGate drives a constant value. It has no inputs.
//
//	Function: out = value
//
type ConstGate struct {
	eda.GateBase
	value uint64
}

// NewConst returns a gate driving value on outs. Each output must be wide
// enough to hold value.
//
func NewConst(name string, value uint64, outs []*eda.Signal, opts ...eda.Option) (*ConstGate, error) {
	for _, o := range outs {
		if o != nil && value&^o.Mask() != 0 {
			return nil, errors.Wrapf(eda.ErrWidthMismatch, "%s: %d does not fit in %v", name, value, o)
		}
	}
	b, err := eda.NewGateBase(name, nil, outs, opts...)
	if err != nil {
		return nil, err
	}
	g := &ConstGate{GateBase: b, value: value}
	eda.Connect(g)
	return g, nil
}

// Const returns a gate driving value on out. It panics on invalid
// connections.
//
func Const(name string, out *eda.Signal, value uint64) eda.Gate {
	return must(NewConst(name, value, []*eda.Signal{out}))
}

// True returns a gate driving 1 on out.
func True(name string, out *eda.Signal) eda.Gate { return Const(name, out, 1) }

// False returns a gate driving 0 on out.
func False(name string, out *eda.Signal) eda.Gate { return Const(name, out, 0) }

// Value returns the constant value.
func (g *ConstGate) Value() uint64 { return g.value }

// Eval implements eda.Gate.
func (g *ConstGate) Eval(f *eda.Frame) { g.Drive(f, g.value) }

// Emit implements eda.Gate. The literal is sized to the first output.
func (g *ConstGate) Emit() string {
	w := g.Outputs()[0].Width()
	return g.Assign(strconv.Itoa(w) + "'d" + strconv.FormatUint(g.value, 10))
}
