package eda

import (
	"sort"
	"strconv"
	"strings"

	"github.com/panhaiqi/OpenChipEDA/internal/hdl"
	"github.com/pkg/errors"
)

// kinds of names in a chip scope
const (
	kindPort     = "port"
	kindWire     = "wire"
	kindInstance = "instance"
	kindParam    = "parameter"
)

// A Chip is a named container of ports, internal signals, gates and chip
// instances.
//
// A chip owns its signals and gates. A chip instantiated in another chip is
// shared, not owned, and may be instantiated any number of times.
//
type Chip struct {
	name    string
	attrs   Attributes
	params  map[string]int64
	signals []*Signal // ports and internal signals, in declaration order
	ports   []*Signal
	wires   []*Signal
	gates   []Gate
	insts   []*Instance

	// names maps all names in the chip scope to their kind.
	names     map[string]string
	gateNames map[string]bool

	last *Frame // last top-level evaluation
}

// NewChip returns a new empty chip. Only the Attr option is used.
//
func NewChip(name string, opts ...Option) (*Chip, error) {
	if !hdl.IsIdent(name) {
		return nil, errors.Wrapf(ErrInvalidName, "chip %q", name)
	}
	return &Chip{
		name:      name,
		attrs:     newOptions(opts).attrs,
		params:    make(map[string]int64),
		names:     make(map[string]string),
		gateNames: make(map[string]bool),
	}, nil
}

// Name returns the chip name.
func (c *Chip) Name() string { return c.name }

// Attrs returns a copy of the chip attributes.
func (c *Chip) Attrs() Attributes { return c.attrs.copy() }

// Ports returns the chip ports in declaration order.
func (c *Chip) Ports() []*Signal { return append([]*Signal(nil), c.ports...) }

// Wires returns the internal signals in declaration order.
func (c *Chip) Wires() []*Signal { return append([]*Signal(nil), c.wires...) }

// Signals returns the ports and internal signals in declaration order.
func (c *Chip) Signals() []*Signal { return append([]*Signal(nil), c.signals...) }

// Gates returns the gates in declaration order.
func (c *Chip) Gates() []Gate { return append([]Gate(nil), c.gates...) }

// Instances returns the chip instances in declaration order.
func (c *Chip) Instances() []*Instance { return append([]*Instance(nil), c.insts...) }

// Lookup returns the port or internal signal with the given name, or nil.
// Only the chip's own scope is searched.
//
func (c *Chip) Lookup(name string) *Signal {
	switch c.names[name] {
	case kindPort, kindWire:
		for _, s := range c.signals {
			if s.name == name {
				return s
			}
		}
	}
	return nil
}

func (c *Chip) checkName(name string) error {
	if k, ok := c.names[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "%s: %s already declared as %s", c.name, name, k)
	}
	return nil
}

func (c *Chip) attach(s *Signal) error {
	if s == nil {
		return errors.Wrap(ErrUnknownSignal, c.name+": nil signal")
	}
	if err := c.checkName(s.name); err != nil {
		return err
	}
	if s.owner != nil {
		return errors.Wrapf(ErrAlreadyAttached, "%s: %s owned by %s", c.name, s.name, s.owner.name)
	}
	s.owner = c
	s.index = len(c.signals)
	c.signals = append(c.signals, s)
	if s.dir == None {
		c.names[s.name] = kindWire
		c.wires = append(c.wires, s)
	} else {
		c.names[s.name] = kindPort
		c.ports = append(c.ports, s)
	}
	return nil
}

// AddPort adds a port to the chip. The signal's direction must not be None.
//
func (c *Chip) AddPort(s *Signal) error {
	if s != nil && s.dir == None {
		return errors.Wrapf(ErrInvalidDirection, "%s: port %s has no direction", c.name, s.name)
	}
	return c.attach(s)
}

// AddInternalWire adds an internal signal to the chip. The signal's
// direction must be None.
//
func (c *Chip) AddInternalWire(s *Signal) error {
	if s != nil && s.dir != None {
		return errors.Wrapf(ErrInvalidDirection, "%s: internal signal %s declared as %v", c.name, s.name, s.dir)
	}
	return c.attach(s)
}

// AddGate adds a gate to the chip. All gate connections must be signals of
// this chip and gate outputs may not drive input ports.
//
func (c *Chip) AddGate(g Gate) error {
	if g == nil {
		return errors.Wrap(ErrInvalidGate, c.name+": nil gate")
	}
	if _, ok := g.(*Instance); ok {
		return errors.Wrap(ErrInvalidGate, c.name+"."+g.Name()+": instances are added with Instantiate")
	}
	name := g.Name()
	if c.gateNames[name] {
		return errors.Wrapf(ErrDuplicateName, "%s: gate %s already declared", c.name, name)
	}
	for _, s := range g.Inputs() {
		if s.owner != c {
			return errors.Wrapf(ErrForeignSignal, "%s.%s: input %s", c.name, name, s.name)
		}
	}
	for _, s := range g.Outputs() {
		if s.owner != c {
			return errors.Wrapf(ErrForeignSignal, "%s.%s: output %s", c.name, name, s.name)
		}
		if s.dir == Input {
			return errors.Wrap(ErrDrivesInput, c.name+"."+name+":"+s.name)
		}
	}
	c.gateNames[name] = true
	c.gates = append(c.gates, g)
	return nil
}

// holds returns true if g has been added to c.
func (c *Chip) holds(g Gate) bool {
	if i, ok := g.(*Instance); ok {
		return i.parent == c
	}
	if !c.gateNames[g.Name()] {
		return false
	}
	for _, x := range c.gates {
		if x == g {
			return true
		}
	}
	return false
}

// SetParam declares a parameter or sets its default value. Parameters are
// not used by evaluation; they are emitted and can be overridden per
// instance.
//
func (c *Chip) SetParam(name string, v int64) error {
	if !hdl.IsIdent(name) {
		return errors.Wrapf(ErrInvalidName, "%s: parameter %q", c.name, name)
	}
	if _, ok := c.params[name]; !ok {
		if err := c.checkName(name); err != nil {
			return err
		}
		c.names[name] = kindParam
	}
	c.params[name] = v
	return nil
}

// Param returns the default value of parameter name.
//
func (c *Chip) Param(name string) (int64, bool) {
	v, ok := c.params[name]
	return v, ok
}

// Params returns a copy of the chip parameters.
//
func (c *Chip) Params() map[string]int64 {
	m := make(map[string]int64, len(c.params))
	for k, v := range c.params {
		m[k] = v
	}
	return m
}

func sortedKeys(m map[string]int64) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// uses returns true if c instantiates target, directly or not.
//
func (c *Chip) uses(target *Chip, seen map[*Chip]bool) bool {
	for _, i := range c.insts {
		if i.child == target {
			return true
		}
		if seen[i.child] {
			continue
		}
		seen[i.child] = true
		if i.child.uses(target, seen) {
			return true
		}
	}
	return false
}

// checkModules returns ErrDuplicateName if c and child, or the chips they
// instantiate, use one module name for chips with different definitions.
// Chips with identical definitions share a single module.
//
func (c *Chip) checkModules(child *Chip) error {
	mods := make(map[string]*Chip)
	seen := make(map[*Chip]bool)
	var walk func(x *Chip) error
	walk = func(x *Chip) error {
		if seen[x] {
			return nil
		}
		seen[x] = true
		if x != c && x.name == c.name {
			return errors.Wrapf(ErrDuplicateName, "module %s is used inside itself", c.name)
		}
		if y, ok := mods[x.name]; !ok {
			mods[x.name] = x
		} else if y.module() != x.module() {
			return errors.Wrapf(ErrDuplicateName, "module %s has two different definitions", x.name)
		}
		for _, i := range x.insts {
			if err := walk(i.child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(c); err != nil {
		return err
	}
	return walk(child)
}

// Instantiate places an instance of child in c.
//
// ports maps every port of child to the name of a signal in c (port or
// internal signal) of the same width. params overrides parameters declared
// by child.
//
// Two different chips may share a module name only if they have the same
// definition. Otherwise Instantiate returns ErrDuplicateName.
//
func (c *Chip) Instantiate(child *Chip, name string, ports map[string]string, params map[string]int64) (*Instance, error) {
	if child == nil {
		return nil, errors.Wrap(ErrInvalidGate, c.name+": nil child chip")
	}
	if !hdl.IsIdent(name) {
		return nil, errors.Wrapf(ErrInvalidName, "%s: instance %q", c.name, name)
	}
	if err := c.checkName(name); err != nil {
		return nil, err
	}
	if child == c || child.uses(c, make(map[*Chip]bool)) {
		return nil, errors.Wrapf(ErrHierarchyCycle, "%s.%s: %s instantiates %s", c.name, name, child.name, c.name)
	}
	if err := c.checkModules(child); err != nil {
		return nil, errors.Wrapf(err, "%s.%s", c.name, name)
	}

	keys := make([]string, 0, len(ports))
	for k := range ports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if p := child.Lookup(k); p == nil || p.dir == None {
			return nil, errors.Wrapf(ErrUnknownPort, "%s.%s: %s has no port %s", c.name, name, child.name, k)
		}
	}

	var missing []string
	conns := make([]conn, 0, len(child.ports))
	for _, p := range child.ports {
		sn, ok := ports[p.name]
		if !ok {
			missing = append(missing, p.name)
			continue
		}
		s := c.Lookup(sn)
		if s == nil {
			return nil, errors.Wrapf(ErrUnknownSignal, "%s.%s:%s: %s", c.name, name, p.name, sn)
		}
		if s.width != p.width {
			return nil, errors.Wrapf(ErrWidthMismatch, "%s.%s:%s: port is %d bits, %s is %d bits", c.name, name, p.name, p.width, s.name, s.width)
		}
		if p.dir != Input && s.dir == Input {
			return nil, errors.Wrap(ErrDrivesInput, c.name+"."+name+"."+p.name+":"+s.name)
		}
		conns = append(conns, conn{port: p, sig: s})
	}
	if len(missing) > 0 {
		return nil, errors.Wrapf(ErrMissingPortBinding, "%s.%s: %s", c.name, name, strings.Join(missing, ", "))
	}

	ps := make(map[string]int64, len(params))
	for _, k := range sortedKeys(params) {
		if _, ok := child.params[k]; !ok {
			return nil, errors.Wrapf(ErrUnknownParam, "%s.%s: %s has no parameter %s", c.name, name, child.name, k)
		}
		ps[k] = params[k]
	}

	inst := &Instance{
		name:   name,
		parent: c,
		child:  child,
		conns:  conns,
		params: ps,
		index:  len(c.insts),
	}
	Connect(inst)
	c.names[name] = kindInstance
	c.insts = append(c.insts, inst)
	logger.Debug("instantiate", "chip", c.name, "instance", name, "child", child.name)
	return inst, nil
}

// conn connects a child port to a parent signal.
type conn struct {
	port *Signal
	sig  *Signal
}

// An Instance is a placement of a child chip inside a parent chip.
//
// Instance implements Gate: its inputs are the parent signals bound to the
// child's input and inout ports, its outputs the parent signals bound to the
// child's output and inout ports.
//
type Instance struct {
	name   string
	parent *Chip
	child  *Chip
	conns  []conn
	params map[string]int64
	index  int
}

// Name returns the instance name.
func (i *Instance) Name() string { return i.name }

// Chip returns the instantiated chip.
func (i *Instance) Chip() *Chip { return i.child }

// Parent returns the chip containing the instance.
func (i *Instance) Parent() *Chip { return i.parent }

// Bindings returns the port map of the instance: child port name to parent
// signal name.
//
func (i *Instance) Bindings() map[string]string {
	m := make(map[string]string, len(i.conns))
	for _, cn := range i.conns {
		m[cn.port.name] = cn.sig.name
	}
	return m
}

// Params returns the effective parameters of the instance: the child's
// defaults with the instance overrides applied.
//
func (i *Instance) Params() map[string]int64 {
	m := i.child.Params()
	for k, v := range i.params {
		m[k] = v
	}
	return m
}

// Inputs implements Gate.
func (i *Instance) Inputs() []*Signal {
	var r []*Signal
	for _, cn := range i.conns {
		if cn.port.dir == Input || cn.port.dir == InOut {
			r = append(r, cn.sig)
		}
	}
	return r
}

// Outputs implements Gate.
func (i *Instance) Outputs() []*Signal {
	var r []*Signal
	for _, cn := range i.conns {
		if cn.port.dir == Output || cn.port.dir == InOut {
			r = append(r, cn.sig)
		}
	}
	return r
}

// Emit implements Gate. It returns the Verilog instantiation statement.
//
func (i *Instance) Emit() string {
	var b strings.Builder
	b.WriteString(i.child.name)
	if len(i.params) > 0 {
		b.WriteString(" #(")
		for n, k := range sortedKeys(i.params) {
			if n > 0 {
				b.WriteString(", ")
			}
			b.WriteString("." + k + "(" + strconv.FormatInt(i.params[k], 10) + ")")
		}
		b.WriteByte(')')
	}
	b.WriteString(" " + i.name + " (")
	for n, cn := range i.conns {
		if n > 0 {
			b.WriteString(", ")
		}
		b.WriteString("." + cn.port.name + "(" + cn.sig.name + ")")
	}
	b.WriteString(");")
	return b.String()
}
