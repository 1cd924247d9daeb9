package eda_test

import (
	"reflect"
	"testing"

	"github.com/panhaiqi/OpenChipEDA"
	"github.com/pkg/errors"
)

func TestParseSignals(t *testing.T) {
	ss, err := eda.ParseSignals(eda.Output, "a, sum[4], carry", eda.Registered())
	check(t, err)
	if len(ss) != 3 {
		t.Fatalf("got %d signals", len(ss))
	}
	for i, w := range []int{1, 4, 1} {
		s := ss[i]
		if s.Width() != w || s.Direction() != eda.Output || s.Type() != eda.Reg {
			t.Errorf("%v: width %d, direction %v, type %v", s, s.Width(), s.Direction(), s.Type())
		}
	}
	if _, err = eda.ParseSignals(eda.Input, "a, wire"); errors.Cause(err) != eda.ErrInvalidName {
		t.Fatalf("got error %v, expected %v", err, eda.ErrInvalidName)
	}
	if _, err = eda.ParseSignals(eda.Input, "a[65]"); errors.Cause(err) != eda.ErrInvalidWidth {
		t.Fatalf("got error %v, expected %v", err, eda.ErrInvalidWidth)
	}
	if _, err = eda.ParseSignals(eda.Input, "a[", eda.Registered()); err == nil {
		t.Fatal("syntax error not reported")
	}
}

func TestChip_Declare(t *testing.T) {
	c := newChip(t, "C")
	_, err := c.Declare(eda.Input, "a, b[2]")
	check(t, err)
	_, err = c.Declare(eda.None, "w[3]")
	check(t, err)
	if len(c.Ports()) != 2 || len(c.Wires()) != 1 || c.Lookup("w").Width() != 3 {
		t.Fatalf("got ports %v, wires %v", c.Ports(), c.Wires())
	}
}

func TestParseBindings_root(t *testing.T) {
	m, err := eda.ParseBindings("a=x, b = y")
	check(t, err)
	if !reflect.DeepEqual(m, map[string]string{"a": "x", "b": "y"}) {
		t.Fatalf("got %v", m)
	}
	if _, err = eda.ParseBindings("a=x, a=y"); errors.Cause(err) != eda.ErrDuplicateName {
		t.Fatalf("got error %v, expected %v", err, eda.ErrDuplicateName)
	}
	if _, err = eda.ParseBindings("a=x[2]"); err == nil {
		t.Fatal("bus slice not rejected")
	}
}
