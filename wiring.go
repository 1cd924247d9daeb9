package eda

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// wiring is the dependency graph of a chip. Nodes are the chip gates followed
// by its instances, in declaration order.
type wiring struct {
	c       *Chip
	nodes   []Gate
	drivers [][]int // signal index -> driving nodes
	succ    [][]int // node -> nodes reading one of its outputs
	deps    []int   // node -> number of distinct driving nodes
}

func newWiring(c *Chip) (*wiring, error) {
	wr := &wiring{
		c:       c,
		nodes:   make([]Gate, 0, len(c.gates)+len(c.insts)),
		drivers: make([][]int, len(c.signals)),
	}
	wr.nodes = append(wr.nodes, c.gates...)
	for _, i := range c.insts {
		wr.nodes = append(wr.nodes, i)
	}
	for n, g := range wr.nodes {
		for _, o := range g.Outputs() {
			ds := wr.drivers[o.index]
			if len(ds) == 0 || ds[len(ds)-1] != n {
				wr.drivers[o.index] = append(ds, n)
			}
		}
	}
	wr.succ = make([][]int, len(wr.nodes))
	wr.deps = make([]int, len(wr.nodes))
	for n, g := range wr.nodes {
		seen := make(map[int]bool)
		_, isInst := g.(*Instance)
		for _, in := range g.Inputs() {
			for _, d := range wr.drivers[in.index] {
				if d == n {
					// an instance may read and write the same signal through
					// an inout port.
					if isInst {
						continue
					}
					return nil, errors.Wrapf(ErrCombinationalLoop, "%s: %s reads its own output %s", c.name, g.Name(), in.name)
				}
				if seen[d] {
					continue
				}
				seen[d] = true
				wr.succ[d] = append(wr.succ[d], n)
				wr.deps[n]++
			}
		}
	}
	return wr, nil
}

// order returns the nodes in evaluation order: a topological order of the
// dependency graph where ties are broken by declaration order, gates first.
// For a chip whose gates are declared in dependency order and whose gates do
// not read instance outputs, this is the declaration order.
//
func (wr *wiring) order() ([]Gate, []int, error) {
	deps := append([]int(nil), wr.deps...)
	var ready []int
	for n, d := range deps {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	order := make([]Gate, 0, len(wr.nodes))
	pos := make([]int, len(wr.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		pos[n] = len(order)
		order = append(order, wr.nodes[n])
		for _, m := range wr.succ[n] {
			deps[m]--
			if deps[m] == 0 {
				i := sort.SearchInts(ready, m)
				ready = append(ready, 0)
				copy(ready[i+1:], ready[i:])
				ready[i] = m
			}
		}
	}
	if len(order) < len(wr.nodes) {
		var loop []string
		for n, d := range deps {
			if d > 0 {
				loop = append(loop, wr.nodes[n].Name())
			}
		}
		return nil, nil, errors.Wrapf(ErrCombinationalLoop, "%s: %s", wr.c.name, strings.Join(loop, ", "))
	}
	return order, pos, nil
}

// multiDriven returns a warning for every signal with more than one driver.
// Drivers are listed in evaluation order if pos is not nil, in declaration
// order otherwise.
//
func (wr *wiring) multiDriven(pos []int) []MultiDriverWarning {
	var ws []MultiDriverWarning
	for _, s := range wr.c.signals {
		ds := append([]int(nil), wr.drivers[s.index]...)
		if len(ds) < 2 {
			continue
		}
		if pos != nil {
			sort.Slice(ds, func(i, j int) bool { return pos[ds[i]] < pos[ds[j]] })
		}
		names := make([]string, len(ds))
		for i, d := range ds {
			names[i] = wr.nodes[d].Name()
		}
		ws = append(ws, MultiDriverWarning{Chip: wr.c.name, Signal: s.name, Drivers: names})
	}
	return ws
}

// MultiDriven returns a warning for every signal of c driven by more than one
// gate or instance. The value of such a signal after evaluation is the one
// written by its last driver in evaluation order.
//
func (c *Chip) MultiDriven() []MultiDriverWarning {
	wr, err := newWiring(c)
	if err != nil {
		return nil
	}
	_, pos, err := wr.order()
	if err != nil {
		pos = nil
	}
	return wr.multiDriven(pos)
}

// plan holds the evaluation order of every chip in a hierarchy.
type plan map[*Chip][]Gate

// build computes the evaluation order of c and, recursively, of the chips it
// instantiates. Multi-driven signals are logged.
//
func (p plan) build(c *Chip) error {
	if _, ok := p[c]; ok {
		return nil
	}
	wr, err := newWiring(c)
	if err != nil {
		return err
	}
	order, pos, err := wr.order()
	if err != nil {
		return err
	}
	for _, w := range wr.multiDriven(pos) {
		logger.Warn("multiple drivers", "chip", w.Chip, "signal", w.Signal, "drivers", w.Drivers)
	}
	p[c] = order
	for _, i := range c.insts {
		// ports added to the child after instantiation are left unbound.
		if len(i.conns) != len(i.child.ports) {
			var missing []string
			for _, cp := range i.child.ports {
				bound := false
				for _, cn := range i.conns {
					if cn.port == cp {
						bound = true
						break
					}
				}
				if !bound {
					missing = append(missing, cp.name)
				}
			}
			return errors.Wrapf(ErrMissingPortBinding, "%s.%s: %s", c.name, i.name, strings.Join(missing, ", "))
		}
		if err := p.build(i.child); err != nil {
			return err
		}
	}
	return nil
}
