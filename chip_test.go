package eda_test

import (
	"strings"
	"testing"

	"github.com/panhaiqi/OpenChipEDA"
	"github.com/pkg/errors"
)

func TestChip_build_errors(t *testing.T) {
	data := []struct {
		name string
		fn   func(t *testing.T) error
		err  error
	}{
		{"bad_chip_name", func(*testing.T) error { _, err := eda.NewChip("1chip"); return err }, eda.ErrInvalidName},
		{"keyword_chip_name", func(*testing.T) error { _, err := eda.NewChip("module"); return err }, eda.ErrInvalidName},
		{"keyword_chip_name_while", func(*testing.T) error { _, err := eda.NewChip("while"); return err }, eda.ErrInvalidName},
		{"duplicate_port", func(t *testing.T) error {
			c := newChip(t, "C")
			check(t, c.AddPort(eda.In("a", 1)))
			return c.AddPort(eda.Out("a", 1))
		}, eda.ErrDuplicateName},
		{"port_wire_clash", func(t *testing.T) error {
			c := newChip(t, "C")
			check(t, c.AddPort(eda.In("a", 1)))
			return c.AddInternalWire(eda.Wire("a", 1))
		}, eda.ErrDuplicateName},
		{"port_without_direction", func(t *testing.T) error {
			return newChip(t, "C").AddPort(eda.Wire("w", 1))
		}, eda.ErrInvalidDirection},
		{"wire_with_direction", func(t *testing.T) error {
			return newChip(t, "C").AddInternalWire(eda.In("a", 1))
		}, eda.ErrInvalidDirection},
		{"already_attached", func(t *testing.T) error {
			a := eda.In("a", 1)
			check(t, newChip(t, "C1").AddPort(a))
			return newChip(t, "C2").AddPort(a)
		}, eda.ErrAlreadyAttached},
		{"nil_gate", func(t *testing.T) error { return newChip(t, "C").AddGate(nil) }, eda.ErrInvalidGate},
		{"foreign_signal", func(t *testing.T) error {
			c := newChip(t, "C")
			a, out := eda.In("a", 1), eda.Out("out", 1)
			check(t, c.AddPort(out))
			return c.AddGate(eda.Not("n", out, a))
		}, eda.ErrForeignSignal},
		{"drives_input", func(t *testing.T) error {
			c := newChip(t, "C")
			a, b := eda.In("a", 1), eda.In("b", 1)
			check(t, c.AddPort(a))
			check(t, c.AddPort(b))
			return c.AddGate(eda.Not("n", b, a))
		}, eda.ErrDrivesInput},
		{"duplicate_gate", func(t *testing.T) error {
			c := newChip(t, "C")
			a, out := eda.In("a", 1), eda.Out("out", 1)
			check(t, c.AddPort(a))
			check(t, c.AddPort(out))
			check(t, c.AddGate(eda.Not("n", out, a)))
			return c.AddGate(eda.And("n", out, a))
		}, eda.ErrDuplicateName},
		{"duplicate_param", func(t *testing.T) error {
			c := newChip(t, "C")
			check(t, c.AddPort(eda.In("W", 1)))
			return c.SetParam("W", 8)
		}, eda.ErrDuplicateName},
		{"declare_twice", func(t *testing.T) error {
			_, err := newChip(t, "C").Declare(eda.Input, "a, b, a")
			return err
		}, eda.ErrDuplicateName},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			err := d.fn(t)
			if errors.Cause(err) != d.err {
				t.Fatalf("got error %v, expected %v", err, d.err)
			}
			if !eda.IsStructural(err) {
				t.Fatalf("%v is not a structural error", err)
			}
		})
	}
}

func TestChip_Declare_atomic(t *testing.T) {
	c := newChip(t, "C")
	check(t, c.AddPort(eda.In("b", 1)))
	if _, err := c.Declare(eda.Input, "a, b"); errors.Cause(err) != eda.ErrDuplicateName {
		t.Fatalf("got error %v, expected %v", err, eda.ErrDuplicateName)
	}
	if c.Lookup("a") != nil || len(c.Ports()) != 1 {
		t.Fatal("failed declaration modified the chip")
	}
}

func TestChip_Instantiate_errors(t *testing.T) {
	data := []struct {
		name   string
		inst   string
		ports  map[string]string
		params map[string]int64
		err    error
	}{
		{"ok", "u0", map[string]string{"a": "x", "b": "y", "out": "z"}, nil, nil},
		{"ok_param", "u0", map[string]string{"a": "x", "b": "y", "out": "z"}, map[string]int64{"N": 2}, nil},
		{"bad_name", "u-0", map[string]string{"a": "x", "b": "y", "out": "z"}, nil, eda.ErrInvalidName},
		{"name_clash", "x", map[string]string{"a": "x", "b": "y", "out": "z"}, nil, eda.ErrDuplicateName},
		{"missing_binding", "u0", map[string]string{"a": "x", "out": "z"}, nil, eda.ErrMissingPortBinding},
		{"unknown_port", "u0", map[string]string{"a": "x", "b": "y", "out": "z", "c": "x"}, nil, eda.ErrUnknownPort},
		{"wire_is_not_a_port", "u0", map[string]string{"a": "x", "b": "y", "out": "z", "and_ab": "x"}, nil, eda.ErrUnknownPort},
		{"unknown_signal", "u0", map[string]string{"a": "x", "b": "nope", "out": "z"}, nil, eda.ErrUnknownSignal},
		{"width_mismatch", "u0", map[string]string{"a": "x", "b": "bus", "out": "z"}, nil, eda.ErrWidthMismatch},
		{"output_to_input", "u0", map[string]string{"a": "x", "b": "y", "out": "y"}, nil, eda.ErrDrivesInput},
		{"unknown_param", "u0", map[string]string{"a": "x", "b": "y", "out": "z"}, map[string]int64{"M": 2}, eda.ErrUnknownParam},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			child := nandChip(t, "NAND")
			check(t, child.SetParam("N", 1))
			c := newChip(t, "TOP")
			_, err := c.Declare(eda.Input, "x, y, bus[2]")
			check(t, err)
			_, err = c.Declare(eda.Output, "z")
			check(t, err)
			i, err := c.Instantiate(child, d.inst, d.ports, d.params)
			if errors.Cause(err) != d.err {
				t.Fatalf("got error %v, expected %v", err, d.err)
			}
			if err != nil {
				if !eda.IsStructural(err) {
					t.Fatalf("%v is not a structural error", err)
				}
				if len(c.Instances()) != 0 {
					t.Fatal("failed instantiation modified the chip")
				}
				return
			}
			if i.Chip() != child || i.Parent() != c || len(c.Instances()) != 1 {
				t.Fatal("bad instance")
			}
		})
	}
}

func TestChip_Instantiate_cycle(t *testing.T) {
	a, b, c := newChip(t, "A"), newChip(t, "B"), newChip(t, "C")
	if _, err := a.Instantiate(a, "self", nil, nil); errors.Cause(err) != eda.ErrHierarchyCycle {
		t.Fatalf("self instantiation: got error %v", err)
	}
	if _, err := a.Instantiate(b, "b0", nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Instantiate(c, "c0", nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Instantiate(a, "a0", nil, nil); errors.Cause(err) != eda.ErrHierarchyCycle {
		t.Fatalf("transitive cycle: got error %v", err)
	}
	// instantiating the same chip twice is not a cycle
	if _, err := a.Instantiate(c, "c1", nil, nil); err != nil {
		t.Fatal(err)
	}
}

func TestChip_InstantiateSpec(t *testing.T) {
	child := nandChip(t, "NAND")
	c := newChip(t, "TOP")
	_, err := c.Declare(eda.Input, "x, y")
	check(t, err)
	_, err = c.Declare(eda.Output, "z")
	check(t, err)
	i, err := c.InstantiateSpec(child, "u0", "a=x, b=y, out=z", nil)
	check(t, err)
	bs := i.Bindings()
	if bs["a"] != "x" || bs["b"] != "y" || bs["out"] != "z" || len(bs) != 3 {
		t.Fatalf("bad bindings %v", bs)
	}
	if _, err = c.InstantiateSpec(child, "u1", "a=x, a=y, out=z", nil); errors.Cause(err) != eda.ErrDuplicateName {
		t.Fatalf("got error %v, expected %v", err, eda.ErrDuplicateName)
	}
}

func TestInstance_Params(t *testing.T) {
	child := newChip(t, "CHILD")
	check(t, child.SetParam("WIDTH", 8))
	check(t, child.SetParam("DEPTH", 4))
	c := newChip(t, "TOP")
	i, err := c.Instantiate(child, "u0", nil, map[string]int64{"DEPTH": 16})
	check(t, err)
	ps := i.Params()
	if ps["WIDTH"] != 8 || ps["DEPTH"] != 16 {
		t.Fatalf("bad effective parameters %v", ps)
	}
	if v, _ := child.Param("DEPTH"); v != 4 {
		t.Fatalf("instance override changed the child default to %d", v)
	}
}

func TestChip_AddGate_instance(t *testing.T) {
	c := newChip(t, "TOP")
	i, err := c.Instantiate(newChip(t, "EMPTY"), "u0", nil, nil)
	check(t, err)
	if err = c.AddGate(i); errors.Cause(err) != eda.ErrInvalidGate {
		t.Fatalf("got error %v, expected %v", err, eda.ErrInvalidGate)
	}
}

func TestChip_unbound_late_port(t *testing.T) {
	child := newChip(t, "CHILD")
	c := newChip(t, "TOP")
	_, err := c.Instantiate(child, "u0", nil, nil)
	check(t, err)
	check(t, child.AddPort(eda.In("late", 1)))
	if _, err = c.Evaluate(nil); errors.Cause(err) != eda.ErrMissingPortBinding {
		t.Fatalf("got error %v, expected %v", err, eda.ErrMissingPortBinding)
	}
}

func orChip(t *testing.T, name string) *eda.Chip {
	t.Helper()
	c := newChip(t, name)
	a, b, out := eda.In("a", 1), eda.In("b", 1), eda.Out("out", 1)
	for _, p := range []*eda.Signal{a, b, out} {
		check(t, c.AddPort(p))
	}
	check(t, c.AddGate(eda.Or("or1", out, a, b)))
	return c
}

func TestChip_Instantiate_module_names(t *testing.T) {
	top := newChip(t, "TOP")
	_, err := top.Declare(eda.Input, "x, y")
	check(t, err)
	_, err = top.Declare(eda.Output, "z0, z1, z2, z3, z4")
	check(t, err)

	// identical definitions share one module
	_, err = top.InstantiateSpec(nandChip(t, "NAND"), "u0", "a=x, b=y, out=z0", nil)
	check(t, err)
	_, err = top.InstantiateSpec(nandChip(t, "NAND"), "u1", "a=y, b=x, out=z1", nil)
	check(t, err)
	if n := strings.Count(top.Emit(), "module NAND("); n != 1 {
		t.Fatalf("NAND emitted %d times", n)
	}

	// different definition
	_, err = top.InstantiateSpec(orChip(t, "NAND"), "u2", "a=x, b=y, out=z2", nil)
	if errors.Cause(err) != eda.ErrDuplicateName {
		t.Fatalf("got error %v, expected %v", err, eda.ErrDuplicateName)
	}

	// nested
	w := newChip(t, "WRAP")
	_, err = w.Declare(eda.Input, "a, b")
	check(t, err)
	_, err = w.Declare(eda.Output, "out")
	check(t, err)
	_, err = w.InstantiateSpec(orChip(t, "NAND"), "u0", "a=a, b=b, out=out", nil)
	check(t, err)
	_, err = top.InstantiateSpec(w, "u3", "a=x, b=y, out=z3", nil)
	if errors.Cause(err) != eda.ErrDuplicateName {
		t.Fatalf("got error %v, expected %v", err, eda.ErrDuplicateName)
	}

	// same name as the parent
	_, err = top.InstantiateSpec(orChip(t, "TOP"), "u4", "a=x, b=y, out=z4", nil)
	if errors.Cause(err) != eda.ErrDuplicateName {
		t.Fatalf("got error %v, expected %v", err, eda.ErrDuplicateName)
	}
	if n := len(top.Instances()); n != 2 {
		t.Fatalf("got %d instances, expected 2", n)
	}
}

func TestChip_AddGate_foreign_fan(t *testing.T) {
	c := newChip(t, "C")
	other := newChip(t, "OTHER")
	a, o, x := eda.In("a", 1), eda.Out("o", 1), eda.Wire("x", 1)
	check(t, c.AddPort(a))
	check(t, c.AddPort(o))
	check(t, other.AddInternalWire(x))

	err := c.AddGate(eda.And("g", o, a, x))
	if errors.Cause(err) != eda.ErrForeignSignal {
		t.Fatalf("got error %v, expected %v", err, eda.ErrForeignSignal)
	}
	if n := len(a.Loads()); n != 0 {
		t.Errorf("a: %d loads", n)
	}
	if n := len(o.Drivers()); n != 0 {
		t.Errorf("o: %d drivers", n)
	}
	if n := len(x.Loads()); n != 0 {
		t.Errorf("x: %d loads", n)
	}

	g := eda.Not("n", o, a)
	check(t, c.AddGate(g))
	if ls := a.Loads(); len(ls) != 1 || ls[0] != g {
		t.Errorf("a loads: %v", ls)
	}
	if ds := o.Drivers(); len(ds) != 1 || ds[0] != g {
		t.Errorf("o drivers: %v", ds)
	}
}
