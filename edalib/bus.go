// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package edalib

import (
	"strconv"
	"strings"

	"github.com/panhaiqi/OpenChipEDA"
	"github.com/pkg/errors"
)

// SliceGate extracts bits [lsb, lsb+width) from its input, where width is the
// width of its output.
//
//	Function: out = in[lsb+width-1:lsb]
//
type SliceGate struct {
	eda.GateBase
	in  *eda.Signal
	lsb int
	msb int
}

// NewSlice returns a new bus slice driving out.
//
func NewSlice(name string, out, in *eda.Signal, lsb int, opts ...eda.Option) (*SliceGate, error) {
	if in == nil || out == nil {
		return nil, errors.Wrap(eda.ErrArity, name+": slice needs one input and one output")
	}
	msb := lsb + out.Width() - 1
	if lsb < 0 || msb >= in.Width() {
		return nil, errors.Wrapf(eda.ErrWidthMismatch, "%s: [%d:%d] out of range for %v", name, msb, lsb, in)
	}
	b, err := eda.NewGateBase(name, []*eda.Signal{in}, []*eda.Signal{out}, opts...)
	if err != nil {
		return nil, err
	}
	g := &SliceGate{GateBase: b, in: in, lsb: lsb, msb: msb}
	eda.Connect(g)
	return g, nil
}

// Slice returns a bus slice. It panics on invalid connections.
//
func Slice(name string, out, in *eda.Signal, lsb int) eda.Gate {
	return must(NewSlice(name, out, in, lsb))
}

// Eval implements eda.Gate.
func (g *SliceGate) Eval(f *eda.Frame) {
	g.Drive(f, f.Get(g.in)>>uint(g.lsb))
}

// Emit implements eda.Gate.
func (g *SliceGate) Emit() string {
	switch {
	case g.in.Width() == 1:
		return g.Assign(g.in.Name())
	case g.msb == g.lsb:
		return g.Assign(g.in.Name() + "[" + strconv.Itoa(g.lsb) + "]")
	}
	return g.Assign(g.in.Name() + "[" + strconv.Itoa(g.msb) + ":" + strconv.Itoa(g.lsb) + "]")
}

// ConcatGate concatenates its inputs, the first input in the least
// significant bits.
//
//	Function: out = {in[n-1], ..., in[1], in[0]}
//
type ConcatGate struct {
	eda.GateBase
}

// NewConcat returns a new concatenation driving out. The sum of the input
// widths must be the width of out.
//
func NewConcat(name string, out *eda.Signal, ins []*eda.Signal, opts ...eda.Option) (*ConcatGate, error) {
	if out == nil || len(ins) == 0 {
		return nil, errors.Wrap(eda.ErrArity, name+": concatenation needs inputs and one output")
	}
	w := 0
	for _, in := range ins {
		if in == nil {
			return nil, errors.Wrap(eda.ErrArity, name+": nil input")
		}
		w += in.Width()
	}
	if w != out.Width() {
		return nil, errors.Wrapf(eda.ErrWidthMismatch, "%s: %d input bits, %v is %d bits", name, w, out, out.Width())
	}
	b, err := eda.NewGateBase(name, ins, []*eda.Signal{out}, opts...)
	if err != nil {
		return nil, err
	}
	g := &ConcatGate{b}
	eda.Connect(g)
	return g, nil
}

// Concat returns a concatenation. It panics on invalid connections.
//
func Concat(name string, out *eda.Signal, ins ...*eda.Signal) eda.Gate {
	return must(NewConcat(name, out, ins))
}

// Eval implements eda.Gate.
func (g *ConcatGate) Eval(f *eda.Frame) {
	var v uint64
	shift := uint(0)
	for _, in := range g.Inputs() {
		v |= f.Get(in) << shift
		shift += uint(in.Width())
	}
	g.Drive(f, v)
}

// Emit implements eda.Gate.
func (g *ConcatGate) Emit() string {
	ins := g.Inputs()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[len(ins)-1-i] = in.Name()
	}
	return g.Assign("{" + strings.Join(names, ", ") + "}")
}
