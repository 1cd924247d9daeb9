// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package eda

import (
	"sort"

	"github.com/pkg/errors"
)

// A Frame holds the signal values of one chip during an evaluation.
//
// The top-level chip of an evaluation is evaluated in a frame loaded from and
// written back to its own signals. Every chip instance is evaluated in a
// fresh frame of its own, so that instances of the same chip never share
// values.
//
type Frame struct {
	chip *Chip
	vals []uint64
	subs []*Frame // instance frames, by instance index
	plan plan
}

func newFrame(c *Chip, p plan, current bool) *Frame {
	f := &Frame{
		chip: c,
		vals: make([]uint64, len(c.signals)),
		subs: make([]*Frame, len(c.insts)),
		plan: p,
	}
	for i, s := range c.signals {
		if current {
			f.vals[i] = s.value
		} else {
			f.vals[i] = s.def
		}
	}
	return f
}

// Chip returns the chip evaluated in f.
func (f *Frame) Chip() *Chip { return f.chip }

func (f *Frame) slot(s *Signal) int {
	if s.owner != f.chip {
		panic(errors.Wrapf(ErrForeignSignal, "%s: %s", f.chip.name, s.name))
	}
	return s.index
}

// Get returns the value of signal s in f. s must belong to the chip
// evaluated in f.
//
func (f *Frame) Get(s *Signal) uint64 {
	return f.vals[f.slot(s)]
}

// Set sets the value of signal s in f, truncated to the width of s.
//
func (f *Frame) Set(s *Signal, v uint64) {
	f.vals[f.slot(s)] = v & s.Mask()
}

func (f *Frame) run() {
	for _, g := range f.plan[f.chip] {
		g.Eval(f)
	}
}

// Eval implements Gate. It binds the child's inputs from f, evaluates the
// child in a new frame and copies the child's outputs back to f.
//
func (i *Instance) Eval(f *Frame) {
	sub := newFrame(i.child, f.plan, false)
	for _, cn := range i.conns {
		if cn.port.dir == Input || cn.port.dir == InOut {
			sub.vals[cn.port.index] = f.Get(cn.sig)
		}
	}
	sub.run()
	for _, cn := range i.conns {
		if cn.port.dir == Output || cn.port.dir == InOut {
			f.Set(cn.sig, sub.vals[cn.port.index])
		}
	}
	f.subs[i.index] = sub
}

// A SignalRef references a signal, either directly with a *Signal or by
// name with a Name.
//
type SignalRef interface {
	refName() string
}

// Name references a signal by name.
//
type Name string

func (n Name) refName() string { return string(n) }

func (s *Signal) refName() string { return s.name }

// Assignment maps signals to the values they are set to before evaluation.
//
type Assignment map[SignalRef]int64

// Values maps signal names to values.
//
type Values map[string]uint64

// Names returns the names in v, sorted.
//
func (v Values) Names() []string {
	ns := make([]string, 0, len(v))
	for n := range v {
		ns = append(ns, n)
	}
	sort.Strings(ns)
	return ns
}

// resolve maps the assignment to signals of c. Names are only looked up in
// the scope of c, not in its instances.
//
func (c *Chip) resolve(in Assignment) (map[*Signal]int64, error) {
	r := make(map[*Signal]int64, len(in))
	for ref, v := range in {
		var s *Signal
		switch ref := ref.(type) {
		case *Signal:
			if ref == nil {
				return nil, errors.Wrap(ErrUnknownSignal, c.name+": nil signal")
			}
			if ref.owner != c {
				return nil, errors.Wrapf(ErrUnknownSignal, "%s: %s", c.name, ref.name)
			}
			s = ref
		case nil:
			return nil, errors.Wrap(ErrUnknownSignal, c.name+": nil reference")
		default:
			if s = c.Lookup(ref.refName()); s == nil {
				return nil, errors.Wrapf(ErrUnknownSignal, "%s: %s", c.name, ref.refName())
			}
		}
		if v < 0 {
			return nil, errors.Wrapf(ErrInvalidValue, "signal %s: %d", s.name, v)
		}
		if old, ok := r[s]; ok && old != v {
			return nil, errors.Wrapf(ErrInvalidValue, "signal %s: conflicting values %d and %d", s.name, old, v)
		}
		r[s] = v
	}
	return r, nil
}

// Evaluate sets the signals in the assignment, evaluates the chip and its
// instances and returns the values of the chip's output and inout ports.
//
// Gates and instances are evaluated in a deterministic topological order
// with ties broken by declaration order, gates before instances. Nothing is
// modified if the assignment or the chip structure is invalid.
//
func (c *Chip) Evaluate(in Assignment) (Values, error) {
	set, err := c.resolve(in)
	if err != nil {
		return nil, err
	}
	p := make(plan)
	if err = p.build(c); err != nil {
		return nil, err
	}
	for s, v := range set {
		if err = s.Set(v); err != nil {
			return nil, err
		}
	}
	logger.Debug("evaluate", "chip", c.name, "assigned", len(set))
	c.run(p)
	return c.outputs(), nil
}

// run evaluates c from the current values of its signals and writes the
// results back.
//
func (c *Chip) run(p plan) {
	f := newFrame(c, p, true)
	f.run()
	for i, s := range c.signals {
		s.value = f.vals[i]
	}
	c.last = f
}

func (c *Chip) outputs() Values {
	v := make(Values)
	for _, p := range c.ports {
		if p.dir == Output || p.dir == InOut {
			v[p.name] = p.value
		}
	}
	return v
}

// Dump returns the values of all signals in the hierarchy as of the last
// evaluation of c. Signals of instances are prefixed with the instance name,
// like "u0.sum" or "u0.ha.carry".
//
func (c *Chip) Dump() Values {
	v := make(Values)
	if c.last == nil {
		for _, s := range c.signals {
			v[s.name] = s.value
		}
		return v
	}
	c.last.dump(v, "")
	return v
}

func (f *Frame) dump(v Values, prefix string) {
	for i, s := range f.chip.signals {
		if i < len(f.vals) {
			v[prefix+s.name] = f.vals[i]
		}
	}
	for n, sub := range f.subs {
		if sub != nil {
			sub.dump(v, prefix+f.chip.insts[n].name+".")
		}
	}
}
