// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package eda

import (
	"sort"
	"strconv"

	"github.com/panhaiqi/OpenChipEDA/internal/hdl"
	"github.com/pkg/errors"
)

// MaxWidth is the maximum width of a signal, in bits.
//
const MaxWidth = 64

// Direction is the direction of a signal. Ports have a direction other than
// None, internal signals have direction None.
//
type Direction int

// Signal directions.
const (
	None Direction = iota
	Input
	Output
	InOut
)

func (d Direction) String() string {
	switch d {
	case None:
		return "none"
	case Input:
		return "input"
	case Output:
		return "output"
	case InOut:
		return "inout"
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// SignalType is the storage type of a signal.
//
type SignalType int

// Signal types. Reg signals are declared as registered storage in emitted
// modules but are still driven combinationally.
const (
	Net SignalType = iota
	Reg
)

func (t SignalType) String() string {
	if t == Reg {
		return "reg"
	}
	return "wire"
}

// Attributes is a set of opaque key/value metadata.
//
type Attributes map[string]string

// keys returns the attribute keys in sorted order.
func (a Attributes) keys() []string {
	ks := make([]string, 0, len(a))
	for k := range a {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func (a Attributes) copy() Attributes {
	if len(a) == 0 {
		return nil
	}
	t := make(Attributes, len(a))
	for k, v := range a {
		t[k] = v
	}
	return t
}

type options struct {
	def   uint64
	typ   SignalType
	delay uint
	attrs Attributes
}

// An Option configures a signal or gate at construction time.
//
type Option func(*options)

// Default sets the default value of a signal. Ignored by gates.
//
func Default(v uint64) Option { return func(o *options) { o.def = v } }

// Registered declares a signal as registered storage (reg). Ignored by gates.
//
func Registered() Option { return func(o *options) { o.typ = Reg } }

// Delay sets the propagation delay of a signal or gate. Delays are only
// emitted, never simulated.
//
func Delay(d uint) Option { return func(o *options) { o.delay = d } }

// Attr adds an attribute.
//
func Attr(key, value string) Option {
	return func(o *options) {
		if o.attrs == nil {
			o.attrs = make(Attributes)
		}
		o.attrs[key] = value
	}
}

func newOptions(opts []Option) *options {
	o := new(options)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// A Signal is a named, fixed width wire. Two signals with the same name are
// the same signal as far as a chip is concerned.
//
type Signal struct {
	name    string
	width   int
	dir     Direction
	typ     SignalType
	value   uint64
	def     uint64
	delay   uint
	attrs   Attributes
	drivers []Gate
	loads   []Gate

	owner *Chip
	index int // index in owner.signals
}

// NewSignal creates a new signal.
//
func NewSignal(name string, width int, dir Direction, opts ...Option) (*Signal, error) {
	if !hdl.IsIdent(name) {
		return nil, errors.Wrapf(ErrInvalidName, "signal %q", name)
	}
	if width < 1 || width > MaxWidth {
		return nil, errors.Wrapf(ErrInvalidWidth, "signal %s: %d", name, width)
	}
	if dir < None || dir > InOut {
		return nil, errors.Wrapf(ErrInvalidDirection, "signal %s: %v", name, dir)
	}
	o := newOptions(opts)
	if o.typ == Reg && (dir == Input || dir == InOut) {
		return nil, errors.Wrapf(ErrInvalidDirection, "signal %s: %v port cannot be a reg", name, dir)
	}
	s := &Signal{
		name:  name,
		width: width,
		dir:   dir,
		typ:   o.typ,
		delay: o.delay,
		attrs: o.attrs,
		index: -1,
	}
	s.def = o.def & s.Mask()
	s.value = s.def
	return s, nil
}

func mustSignal(s *Signal, err error) *Signal {
	if err != nil {
		panic(err)
	}
	return s
}

// In returns a new input port signal. It panics if name or width are invalid.
//
func In(name string, width int, opts ...Option) *Signal {
	return mustSignal(NewSignal(name, width, Input, opts...))
}

// Out returns a new output port signal. It panics if name or width are
// invalid.
//
func Out(name string, width int, opts ...Option) *Signal {
	return mustSignal(NewSignal(name, width, Output, opts...))
}

// Bidir returns a new bidirectional (inout) port signal. It panics if name or
// width are invalid.
//
func Bidir(name string, width int, opts ...Option) *Signal {
	return mustSignal(NewSignal(name, width, InOut, opts...))
}

// Wire returns a new internal signal. It panics if name or width are invalid.
//
func Wire(name string, width int, opts ...Option) *Signal {
	return mustSignal(NewSignal(name, width, None, opts...))
}

// Name returns the signal name.
func (s *Signal) Name() string { return s.name }

// Width returns the signal width in bits.
func (s *Signal) Width() int { return s.width }

// Direction returns the signal direction.
func (s *Signal) Direction() Direction { return s.dir }

// Type returns the storage type of the signal.
func (s *Signal) Type() SignalType { return s.typ }

// Default returns the default value of the signal.
func (s *Signal) Default() uint64 { return s.def }

// Delay returns the advisory propagation delay of the signal.
func (s *Signal) Delay() uint { return s.delay }

// Attrs returns a copy of the signal attributes.
func (s *Signal) Attrs() Attributes { return s.attrs.copy() }

// Owner returns the chip the signal is attached to, or nil.
func (s *Signal) Owner() *Chip { return s.owner }

// Value returns the current value of the signal.
func (s *Signal) Value() uint64 { return s.value }

// Mask returns a bit mask covering the width of the signal.
//
func (s *Signal) Mask() uint64 { return mask(s.width) }

func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(width) - 1
}

// Set sets the value of the signal. Negative values are rejected with
// ErrInvalidValue, other values are truncated to the signal's width.
//
func (s *Signal) Set(v int64) error {
	if v < 0 {
		return errors.Wrapf(ErrInvalidValue, "signal %s: %d", s.name, v)
	}
	s.value = uint64(v) & s.Mask()
	return nil
}

// SetUint64 sets the value of the signal, truncated to the signal's width.
//
func (s *Signal) SetUint64(v uint64) {
	s.value = v & s.Mask()
}

// Reset sets the signal back to its default value.
//
func (s *Signal) Reset() {
	s.value = s.def
}

// Equal returns true if s and o have the same name.
//
func (s *Signal) Equal(o *Signal) bool {
	return o != nil && s.name == o.name
}

// ConnectDriver registers g as a driver of s.
//
func (s *Signal) ConnectDriver(g Gate) {
	s.drivers = appendGate(s.drivers, g)
}

// ConnectLoad registers g as a load of s.
//
func (s *Signal) ConnectLoad(g Gate) {
	s.loads = appendGate(s.loads, g)
}

func appendGate(gs []Gate, g Gate) []Gate {
	for _, x := range gs {
		if x == g {
			return gs
		}
	}
	return append(gs, g)
}

// Drivers returns the gates driving s (fan-in). Once s belongs to a chip,
// only the gates and instances added to that chip are listed.
//
func (s *Signal) Drivers() []Gate {
	return s.attached(s.drivers)
}

// Loads returns the gates reading s (fan-out). Once s belongs to a chip, only
// the gates and instances added to that chip are listed.
//
func (s *Signal) Loads() []Gate {
	return s.attached(s.loads)
}

func (s *Signal) attached(gs []Gate) []Gate {
	if s.owner == nil {
		return append([]Gate(nil), gs...)
	}
	var r []Gate
	for _, g := range gs {
		if s.owner.holds(g) {
			r = append(r, g)
		}
	}
	return r
}

func (s *Signal) String() string {
	if s.width == 1 {
		return s.name
	}
	return s.name + "[" + strconv.Itoa(s.width) + "]"
}
