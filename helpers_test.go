package eda_test

import (
	"testing"

	"github.com/panhaiqi/OpenChipEDA"
	"github.com/pkg/errors"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
}

func newChip(t *testing.T, name string) *eda.Chip {
	t.Helper()
	c, err := eda.NewChip(name)
	check(t, err)
	return c
}

// nandChip returns the chip out = ~(a & b), built from an AND gate followed
// by a NOT gate.
func nandChip(t *testing.T, name string) *eda.Chip {
	t.Helper()
	c := newChip(t, name)
	a, b, out := eda.In("a", 1), eda.In("b", 1), eda.Out("out", 1)
	w := eda.Wire("and_ab", 1)
	for _, p := range []*eda.Signal{a, b, out} {
		check(t, c.AddPort(p))
	}
	check(t, c.AddInternalWire(w))
	check(t, c.AddGate(eda.And("and1", w, a, b)))
	check(t, c.AddGate(eda.Not("not1", out, w)))
	return c
}

func evaluate(t *testing.T, c *eda.Chip, in eda.Assignment) eda.Values {
	t.Helper()
	v, err := c.Evaluate(in)
	check(t, err)
	return v
}
