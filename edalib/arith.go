// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package edalib

import (
	"strconv"

	"github.com/panhaiqi/OpenChipEDA"
	"github.com/pkg/errors"
)

// common port names
const (
	pIn  = "in"
	pOut = "out"
)

// builder collects the first error of a chain of chip construction calls.
type builder struct {
	c   *eda.Chip
	err error
}

func (b *builder) declare(dir eda.Direction, spec string) []*eda.Signal {
	if b.err != nil {
		return nil
	}
	var ss []*eda.Signal
	ss, b.err = b.c.Declare(dir, spec)
	return ss
}

func (b *builder) gate(fn func() (eda.Gate, error)) {
	if b.err != nil {
		return
	}
	var g eda.Gate
	if g, b.err = fn(); b.err == nil {
		b.err = b.c.AddGate(g)
	}
}

func (b *builder) inst(child *eda.Chip, name, bindings string) {
	if b.err != nil {
		return
	}
	_, b.err = b.c.InstantiateSpec(child, name, bindings, nil)
}

func (b *builder) chip() (*eda.Chip, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.c, nil
}

func newBuilder(name string) *builder {
	c, err := eda.NewChip(name)
	return &builder{c, err}
}

func one(outs ...*eda.Signal) []*eda.Signal { return outs }

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder() (*eda.Chip, error) {
	b := newBuilder("HalfAdder")
	ins := b.declare(eda.Input, "a, b")
	outs := b.declare(eda.Output, "s, c")
	b.gate(func() (eda.Gate, error) { return NewXor("xor_s", ins, one(outs[0])) })
	b.gate(func() (eda.Gate, error) { return eda.NewAnd("and_c", ins, one(outs[1])) })
	return b.chip()
}

// FullAdder returns a full adder built from two half adders.
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
func FullAdder() (*eda.Chip, error) {
	ha, err := HalfAdder()
	if err != nil {
		return nil, err
	}
	return fullAdder(ha)
}

func fullAdder(ha *eda.Chip) (*eda.Chip, error) {
	b := newBuilder("FullAdder")
	b.declare(eda.Input, "a, b, cin")
	outs := b.declare(eda.Output, "s, cout")
	ws := b.declare(eda.None, "s0, c0, c1")
	b.inst(ha, "ha0", "a=a, b=b, s=s0, c=c0")
	b.inst(ha, "ha1", "a=s0, b=cin, s=s, c=c1")
	b.gate(func() (eda.Gate, error) { return eda.NewOr("or_cout", ws[1:], one(outs[1])) })
	return b.chip()
}

// AdderN returns a N-bits ripple carry adder. Bit 0 is added by a half
// adder, the other bits by full adders.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out[bits], c
//	Function: out = lsb(a + b)
//	          c = carry out of bit bits-1
//
func AdderN(bits int) (*eda.Chip, error) {
	if bits < 1 || bits > eda.MaxWidth {
		return nil, errors.Wrapf(eda.ErrInvalidWidth, "AdderN: %d bits", bits)
	}
	ha, err := HalfAdder()
	if err != nil {
		return nil, err
	}
	fa, err := fullAdder(ha)
	if err != nil {
		return nil, err
	}

	b := newBuilder("Adder" + strconv.Itoa(bits))
	ins := b.declare(eda.Input, "a["+strconv.Itoa(bits)+"], b["+strconv.Itoa(bits)+"]")
	outs := b.declare(eda.Output, "out["+strconv.Itoa(bits)+"], c")
	sums := make([]*eda.Signal, bits)
	for i := 0; i < bits; i++ {
		n := strconv.Itoa(i)
		ws := b.declare(eda.None, "a"+n+", b"+n+", s"+n)
		if ws == nil {
			break
		}
		sums[i] = ws[2]
		b.gate(func() (eda.Gate, error) { return NewSlice("slice_a"+n, ws[0], ins[0], i) })
		b.gate(func() (eda.Gate, error) { return NewSlice("slice_b"+n, ws[1], ins[1], i) })

		cout := "c" + n
		if i == bits-1 {
			cout = "c"
		} else {
			b.declare(eda.None, cout)
		}
		if i == 0 {
			b.inst(ha, "ha0", "a=a0, b=b0, s=s0, c="+cout)
		} else {
			b.inst(fa, "fa"+n, "a=a"+n+", b=b"+n+", cin=c"+strconv.Itoa(i-1)+", s=s"+n+", cout="+cout)
		}
	}
	b.gate(func() (eda.Gate, error) { return NewConcat("concat_out", outs[0], sums) })
	return b.chip()
}

// NotN returns a N-bits NOT chip.
//
//	Inputs: in[bits]
//	Outputs: out[bits]
//	Function: out = ~in
//
func NotN(bits int) (*eda.Chip, error) {
	if bits < 1 || bits > eda.MaxWidth {
		return nil, errors.Wrapf(eda.ErrInvalidWidth, "NotN: %d bits", bits)
	}
	w := strconv.Itoa(bits)
	b := newBuilder("NOT" + w)
	in := b.declare(eda.Input, pIn+"["+w+"]")
	out := b.declare(eda.Output, pOut+"["+w+"]")
	b.gate(func() (eda.Gate, error) { return eda.NewNot("inv", in[0], out) })
	return b.chip()
}
