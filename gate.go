// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package eda

import (
	"strconv"
	"strings"

	"github.com/panhaiqi/OpenChipEDA/internal/hdl"
	"github.com/pkg/errors"
)

// A Gate is a combinational logic primitive.
//
// Eval reads the gate inputs from f and writes its outputs to f. Emit returns
// a single line of Verilog implementing the gate.
//
// Custom gates are implemented by embedding a GateBase:
//
//	type xorGate struct{ eda.GateBase }
//
//	func (g *xorGate) Eval(f *eda.Frame) {
//		var v uint64
//		for _, in := range g.Inputs() {
//			v ^= f.Get(in)
//		}
//		g.Drive(f, v)
//	}
//
//	func (g *xorGate) Emit() string { return g.Assign(g.Join(" ^ ")) }
//
// and registered with Connect once built.
//
type Gate interface {
	Name() string
	Inputs() []*Signal
	Outputs() []*Signal
	Eval(f *Frame)
	Emit() string
}

// GateBase holds the connections and metadata common to all gates.
//
type GateBase struct {
	name  string
	ins   []*Signal
	outs  []*Signal
	delay uint
	attrs Attributes
}

// NewGateBase checks the gate connections and returns a new GateBase.
// A gate must have at least one output.
//
func NewGateBase(name string, inputs, outputs []*Signal, opts ...Option) (GateBase, error) {
	if !hdl.IsIdent(name) {
		return GateBase{}, errors.Wrapf(ErrInvalidName, "gate %q", name)
	}
	if len(outputs) == 0 {
		return GateBase{}, errors.Wrap(ErrArity, name+": no output")
	}
	for _, s := range inputs {
		if s == nil {
			return GateBase{}, errors.Wrap(ErrArity, name+": nil input")
		}
	}
	for _, s := range outputs {
		if s == nil {
			return GateBase{}, errors.Wrap(ErrArity, name+": nil output")
		}
	}
	o := newOptions(opts)
	return GateBase{
		name:  name,
		ins:   append([]*Signal(nil), inputs...),
		outs:  append([]*Signal(nil), outputs...),
		delay: o.delay,
		attrs: o.attrs,
	}, nil
}

// Name returns the gate name.
func (g *GateBase) Name() string { return g.name }

// Inputs returns the gate inputs, in order.
func (g *GateBase) Inputs() []*Signal { return append([]*Signal(nil), g.ins...) }

// Outputs returns the gate outputs, in order.
func (g *GateBase) Outputs() []*Signal { return append([]*Signal(nil), g.outs...) }

// Delay returns the advisory propagation delay of the gate.
func (g *GateBase) Delay() uint { return g.delay }

// Attrs returns a copy of the gate attributes.
func (g *GateBase) Attrs() Attributes { return g.attrs.copy() }

// Drive sets all the gate outputs to v. Each output is truncated to its own
// width.
//
func (g *GateBase) Drive(f *Frame, v uint64) {
	for _, o := range g.outs {
		f.Set(o, v)
	}
}

// Join returns the names of the gate inputs joined by op.
//
func (g *GateBase) Join(op string) string {
	names := make([]string, len(g.ins))
	for i, in := range g.ins {
		names[i] = in.name
	}
	return strings.Join(names, op)
}

// Assign returns a Verilog statement assigning expr to all the gate outputs,
// as a continuous assignment for nets and a combinational always block for
// reg outputs.
//
func (g *GateBase) Assign(expr string) string {
	var b strings.Builder
	b.WriteString(attrString(g.attrs))
	var nets, regs []*Signal
	for _, o := range g.outs {
		if o.typ == Reg {
			regs = append(regs, o)
		} else {
			nets = append(nets, o)
		}
	}
	if len(nets) > 0 {
		b.WriteString("assign ")
		if g.delay > 0 {
			b.WriteString("#" + strconv.FormatUint(uint64(g.delay), 10) + " ")
		}
		for i, o := range nets {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(o.name + " = " + expr)
		}
		b.WriteByte(';')
	}
	if len(regs) > 0 {
		if len(nets) > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("always @(*) ")
		if len(regs) > 1 {
			b.WriteString("begin ")
		}
		for _, o := range regs {
			b.WriteString(o.name + " = ")
			if g.delay > 0 {
				b.WriteString("#" + strconv.FormatUint(uint64(g.delay), 10) + " ")
			}
			b.WriteString(expr + "; ")
		}
		if len(regs) > 1 {
			b.WriteString("end ")
		}
	}
	s := strings.TrimRight(b.String(), " ")
	return s + " // " + g.name
}

// attrString formats attributes as a Verilog attribute instance followed by a
// space, or returns an empty string if there are no attributes.
func attrString(a Attributes) string {
	if len(a) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("(* ")
	for i, k := range a.keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		if v := a[k]; v != "" {
			b.WriteString(" = " + strconv.Quote(v))
		}
	}
	b.WriteString(" *) ")
	return b.String()
}

// Connect registers g as a driver of its outputs and a load of its inputs.
// All gate constructors call Connect; custom gates must call it once built.
//
func Connect(g Gate) Gate {
	for _, o := range g.Outputs() {
		o.ConnectDriver(g)
	}
	for _, i := range g.Inputs() {
		i.ConnectLoad(g)
	}
	return g
}

// AndGate is a N-ary AND gate.
//
//	Function: out = in[0] & in[1] & ... & in[n-1]
//
type AndGate struct{ GateBase }

// NewAnd returns a new AND gate. With a single input, the gate is a buffer.
//
func NewAnd(name string, inputs, outputs []*Signal, opts ...Option) (*AndGate, error) {
	b, err := NewGateBase(name, inputs, outputs, opts...)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, errors.Wrap(ErrArity, name+": AND needs at least one input")
	}
	g := &AndGate{b}
	Connect(g)
	return g, nil
}

// Eval implements Gate.
func (g *AndGate) Eval(f *Frame) {
	v := ^uint64(0)
	for _, in := range g.ins {
		v &= f.Get(in)
	}
	g.Drive(f, v)
}

// Emit implements Gate.
func (g *AndGate) Emit() string { return g.Assign(g.Join(" & ")) }

// OrGate is a N-ary OR gate.
//
//	Function: out = in[0] | in[1] | ... | in[n-1]
//
type OrGate struct{ GateBase }

// NewOr returns a new OR gate.
//
func NewOr(name string, inputs, outputs []*Signal, opts ...Option) (*OrGate, error) {
	b, err := NewGateBase(name, inputs, outputs, opts...)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, errors.Wrap(ErrArity, name+": OR needs at least one input")
	}
	g := &OrGate{b}
	Connect(g)
	return g, nil
}

// Eval implements Gate.
func (g *OrGate) Eval(f *Frame) {
	var v uint64
	for _, in := range g.ins {
		v |= f.Get(in)
	}
	g.Drive(f, v)
}

// Emit implements Gate.
func (g *OrGate) Emit() string { return g.Assign(g.Join(" | ")) }

// NotGate is a NOT gate. The complement is masked to the width of each
// output.
//
//	Function: out = ~in
//
type NotGate struct{ GateBase }

// NewNot returns a new NOT gate.
//
func NewNot(name string, input *Signal, outputs []*Signal, opts ...Option) (*NotGate, error) {
	if input == nil {
		return nil, errors.Wrap(ErrArity, name+": NOT needs exactly one input")
	}
	b, err := NewGateBase(name, []*Signal{input}, outputs, opts...)
	if err != nil {
		return nil, err
	}
	g := &NotGate{b}
	Connect(g)
	return g, nil
}

// Eval implements Gate.
func (g *NotGate) Eval(f *Frame) {
	in := f.Get(g.ins[0])
	for _, o := range g.outs {
		f.Set(o, ^in&o.Mask())
	}
}

// Emit implements Gate.
func (g *NotGate) Emit() string { return g.Assign("~" + g.ins[0].name) }

// FuncGate is a gate built from functions. fn computes the output value from
// the input values, expr returns the Verilog expression for the gate given
// the names of its inputs.
//
// Calling Eval on a FuncGate without fn, or Emit on a FuncGate without expr,
// panics with an error whose cause is ErrCapability.
//
type FuncGate struct {
	GateBase
	fn   func(in []uint64) uint64
	expr func(in []string) string
}

// NewFunc returns a new FuncGate.
//
func NewFunc(name string, inputs, outputs []*Signal, fn func(in []uint64) uint64, expr func(in []string) string, opts ...Option) (*FuncGate, error) {
	b, err := NewGateBase(name, inputs, outputs, opts...)
	if err != nil {
		return nil, err
	}
	g := &FuncGate{b, fn, expr}
	Connect(g)
	return g, nil
}

// Eval implements Gate.
func (g *FuncGate) Eval(f *Frame) {
	if g.fn == nil {
		panic(errors.Wrap(ErrCapability, g.name+": Eval"))
	}
	in := make([]uint64, len(g.ins))
	for i, s := range g.ins {
		in[i] = f.Get(s)
	}
	g.Drive(f, g.fn(in))
}

// Emit implements Gate.
func (g *FuncGate) Emit() string {
	if g.expr == nil {
		panic(errors.Wrap(ErrCapability, g.name+": Emit"))
	}
	names := make([]string, len(g.ins))
	for i, s := range g.ins {
		names[i] = s.name
	}
	return g.Assign(g.expr(names))
}

func must(g Gate, err error) Gate {
	if err != nil {
		panic(err)
	}
	return g
}

// And returns a new AND gate driving out. It panics on invalid connections.
//
func And(name string, out *Signal, ins ...*Signal) Gate {
	return must(NewAnd(name, ins, []*Signal{out}))
}

// Or returns a new OR gate driving out. It panics on invalid connections.
//
func Or(name string, out *Signal, ins ...*Signal) Gate {
	return must(NewOr(name, ins, []*Signal{out}))
}

// Not returns a new NOT gate driving out. It panics on invalid connections.
//
func Not(name string, out *Signal, in *Signal) Gate {
	return must(NewNot(name, in, []*Signal{out}))
}
