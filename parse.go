package eda

import (
	"github.com/panhaiqi/OpenChipEDA/internal/hdl"
	"github.com/pkg/errors"
)

// ParseSignals parses a declaration string and returns the corresponding
// signals, all with the given direction and options. Declarations are
// separated by commas, a bus of width n is declared as name[n]:
//
//	ParseSignals(Input, "a, b, sel[2]") // a and b are 1 bit wide, sel is 2 bits wide
//
func ParseSignals(dir Direction, spec string, opts ...Option) ([]*Signal, error) {
	ds, err := hdl.ParseDecls(spec)
	if err != nil {
		return nil, err
	}
	out := make([]*Signal, 0, len(ds))
	for _, d := range ds {
		s, err := NewSignal(d.Name, d.Width, dir, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Declare parses a declaration string (see ParseSignals) and adds the
// signals to c, as ports if dir is not None, as internal signals otherwise.
// Either all or none of the signals are added.
//
func (c *Chip) Declare(dir Direction, spec string, opts ...Option) ([]*Signal, error) {
	ss, err := ParseSignals(dir, spec, opts...)
	if err != nil {
		return nil, errors.Wrap(err, c.name)
	}
	seen := make(map[string]bool, len(ss))
	for _, s := range ss {
		if err := c.checkName(s.name); err != nil {
			return nil, err
		}
		if seen[s.name] {
			return nil, errors.Wrapf(ErrDuplicateName, "%s: %s declared twice", c.name, s.name)
		}
		seen[s.name] = true
	}
	for _, s := range ss {
		if err := c.attach(s); err != nil {
			return nil, err
		}
	}
	return ss, nil
}

// ParseBindings parses a binding string like "a=x, b=y" into a port map
// suitable for Instantiate.
//
func ParseBindings(bindings string) (map[string]string, error) {
	bs, err := hdl.ParseBindings(bindings)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(bs))
	for _, b := range bs {
		if _, ok := m[b.Port]; ok {
			return nil, errors.Wrapf(ErrDuplicateName, "in %q: port %s bound twice", bindings, b.Port)
		}
		m[b.Port] = b.Signal
	}
	return m, nil
}

// InstantiateSpec is like Instantiate with the port map given as a binding
// string:
//
//	c.InstantiateSpec(halfAdder, "ha0", "a=x, b=y, s=sum, c=carry", nil)
//
func (c *Chip) InstantiateSpec(child *Chip, name string, bindings string, params map[string]int64) (*Instance, error) {
	ports, err := ParseBindings(bindings)
	if err != nil {
		return nil, errors.Wrap(err, c.name+"."+name)
	}
	return c.Instantiate(child, name, ports, params)
}
