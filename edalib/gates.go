// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package edalib provides a library of reusable gates and chips.
//
package edalib

import (
	"github.com/panhaiqi/OpenChipEDA"
	"github.com/pkg/errors"
)

// LogicGate is a N-ary bitwise gate, optionally inverted.
//
type LogicGate struct {
	eda.GateBase
	op  string
	fn  func(a, b uint64) uint64
	inv bool
}

func newLogic(name, op string, fn func(a, b uint64) uint64, inv bool, ins, outs []*eda.Signal, opts []eda.Option) (*LogicGate, error) {
	if len(ins) == 0 {
		return nil, errors.Wrap(eda.ErrArity, name+": no input")
	}
	b, err := eda.NewGateBase(name, ins, outs, opts...)
	if err != nil {
		return nil, err
	}
	g := &LogicGate{GateBase: b, op: op, fn: fn, inv: inv}
	eda.Connect(g)
	return g, nil
}

// Eval implements eda.Gate.
func (g *LogicGate) Eval(f *eda.Frame) {
	ins := g.Inputs()
	v := f.Get(ins[0])
	for _, in := range ins[1:] {
		v = g.fn(v, f.Get(in))
	}
	if g.inv {
		v = ^v
	}
	g.Drive(f, v)
}

// Emit implements eda.Gate.
func (g *LogicGate) Emit() string {
	e := g.Join(" " + g.op + " ")
	if g.inv {
		if len(g.Inputs()) > 1 {
			e = "(" + e + ")"
		}
		e = "~" + e
	}
	return g.Assign(e)
}

func and(a, b uint64) uint64 { return a & b }
func or(a, b uint64) uint64  { return a | b }
func xor(a, b uint64) uint64 { return a ^ b }

// NewXor returns a XOR gate.
//
//	Function: out = in[0] ^ in[1] ^ ... ^ in[n-1]
//
func NewXor(name string, ins, outs []*eda.Signal, opts ...eda.Option) (*LogicGate, error) {
	return newLogic(name, "^", xor, false, ins, outs, opts)
}

// NewXnor returns a XNOR gate.
//
//	Function: out = ~(in[0] ^ in[1] ^ ... ^ in[n-1])
//
func NewXnor(name string, ins, outs []*eda.Signal, opts ...eda.Option) (*LogicGate, error) {
	return newLogic(name, "^", xor, true, ins, outs, opts)
}

// NewNand returns a NAND gate.
//
//	Function: out = ~(in[0] & in[1] & ... & in[n-1])
//
func NewNand(name string, ins, outs []*eda.Signal, opts ...eda.Option) (*LogicGate, error) {
	return newLogic(name, "&", and, true, ins, outs, opts)
}

// NewNor returns a NOR gate.
//
//	Function: out = ~(in[0] | in[1] | ... | in[n-1])
//
func NewNor(name string, ins, outs []*eda.Signal, opts ...eda.Option) (*LogicGate, error) {
	return newLogic(name, "|", or, true, ins, outs, opts)
}

// NewBuf returns a buffer.
//
//	Function: out = in
//
func NewBuf(name string, in *eda.Signal, outs []*eda.Signal, opts ...eda.Option) (*LogicGate, error) {
	if in == nil {
		return nil, errors.Wrap(eda.ErrArity, name+": BUF needs exactly one input")
	}
	return newLogic(name, "", nil, false, []*eda.Signal{in}, outs, opts)
}

func must(g eda.Gate, err error) eda.Gate {
	if err != nil {
		panic(err)
	}
	return g
}

// Xor returns a XOR gate driving out. It panics on invalid connections.
func Xor(name string, out *eda.Signal, ins ...*eda.Signal) eda.Gate {
	return must(NewXor(name, ins, []*eda.Signal{out}))
}

// Xnor returns a XNOR gate driving out. It panics on invalid connections.
func Xnor(name string, out *eda.Signal, ins ...*eda.Signal) eda.Gate {
	return must(NewXnor(name, ins, []*eda.Signal{out}))
}

// Nand returns a NAND gate driving out. It panics on invalid connections.
func Nand(name string, out *eda.Signal, ins ...*eda.Signal) eda.Gate {
	return must(NewNand(name, ins, []*eda.Signal{out}))
}

// Nor returns a NOR gate driving out. It panics on invalid connections.
func Nor(name string, out *eda.Signal, ins ...*eda.Signal) eda.Gate {
	return must(NewNor(name, ins, []*eda.Signal{out}))
}

// Buf returns a buffer driving out. It panics on invalid connections.
func Buf(name string, out, in *eda.Signal) eda.Gate {
	return must(NewBuf(name, in, []*eda.Signal{out}))
}
