// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package edalib

import (
	"github.com/panhaiqi/OpenChipEDA"
	"github.com/pkg/errors"
)

// MuxGate is a 2 way multiplexer.
//
//	Inputs: a, b, sel
//	Function: if sel == 0 { out = a } else { out = b }
//
type MuxGate struct {
	eda.GateBase
	a, b, sel *eda.Signal
}

// NewMux returns a new multiplexer.
//
func NewMux(name string, a, b, sel *eda.Signal, outs []*eda.Signal, opts ...eda.Option) (*MuxGate, error) {
	if a == nil || b == nil || sel == nil {
		return nil, errors.Wrap(eda.ErrArity, name+": MUX needs a, b and sel inputs")
	}
	base, err := eda.NewGateBase(name, []*eda.Signal{a, b, sel}, outs, opts...)
	if err != nil {
		return nil, err
	}
	g := &MuxGate{GateBase: base, a: a, b: b, sel: sel}
	eda.Connect(g)
	return g, nil
}

// Mux returns a multiplexer driving out. It panics on invalid connections.
//
func Mux(name string, out, a, b, sel *eda.Signal) eda.Gate {
	return must(NewMux(name, a, b, sel, []*eda.Signal{out}))
}

// Eval implements eda.Gate.
func (g *MuxGate) Eval(f *eda.Frame) {
	if f.Get(g.sel) != 0 {
		g.Drive(f, f.Get(g.b))
	} else {
		g.Drive(f, f.Get(g.a))
	}
}

// Emit implements eda.Gate.
func (g *MuxGate) Emit() string {
	return g.Assign(g.sel.Name() + " ? " + g.b.Name() + " : " + g.a.Name())
}
