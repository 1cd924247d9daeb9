package eda_test

import (
	"strings"
	"testing"
	"testing/quick"

	"github.com/panhaiqi/OpenChipEDA"
	"github.com/pkg/errors"
)

func TestNot_mask(t *testing.T) {
	c := newChip(t, "NOT4")
	in, out := eda.In("in", 4), eda.Out("out", 4)
	check(t, c.AddPort(in))
	check(t, c.AddPort(out))
	check(t, c.AddGate(eda.Not("n", out, in)))
	for i := int64(0); i < 16; i++ {
		v := evaluate(t, c, eda.Assignment{in: i})
		if v["out"] != uint64(15-i) {
			t.Errorf("NOT(%d) = %d, expected %d", i, v["out"], 15-i)
		}
	}
}

func TestNot_involution(t *testing.T) {
	c := newChip(t, "NOTNOT")
	x, y := eda.In("x", 1), eda.Out("y", 1)
	w := eda.Wire("w", 1)
	check(t, c.AddPort(x))
	check(t, c.AddPort(y))
	check(t, c.AddInternalWire(w))
	check(t, c.AddGate(eda.Not("n0", w, x)))
	check(t, c.AddGate(eda.Not("n1", y, w)))
	for i := int64(0); i < 2; i++ {
		if v := evaluate(t, c, eda.Assignment{x: i}); v["y"] != uint64(i) {
			t.Errorf("NOT(NOT(%d)) = %d", i, v["y"])
		}
	}
}

// algebra builds a chip computing op over (a, b, c) in different
// groupings and orders:
//
//	o0 = op(a, b, c)
//	o1 = op(c, a, b)
//	o2 = op(op(a, b), c)
//	o3 = op(a, op(b, c))
//	o4 = op(b, a)
//	o5 = op(a, b)
func algebra(t *testing.T, op func(name string, out *eda.Signal, ins ...*eda.Signal) eda.Gate) *eda.Chip {
	c := newChip(t, "ALGEBRA")
	ss, err := c.Declare(eda.Input, "a[8], b[8], c[8]")
	check(t, err)
	a, b, cc := ss[0], ss[1], ss[2]
	outs, err := c.Declare(eda.Output, "o0[8], o1[8], o2[8], o3[8], o4[8], o5[8]")
	check(t, err)
	ws, err := c.Declare(eda.None, "ab[8], bc[8]")
	check(t, err)
	for _, g := range []eda.Gate{
		op("g0", outs[0], a, b, cc),
		op("g1", outs[1], cc, a, b),
		op("g2", ws[0], a, b),
		op("g3", outs[2], ws[0], cc),
		op("g4", ws[1], b, cc),
		op("g5", outs[3], a, ws[1]),
		op("g6", outs[4], b, a),
		op("g7", outs[5], a, b),
	} {
		check(t, c.AddGate(g))
	}
	return c
}

func testAlgebra(t *testing.T, c *eda.Chip, ref func(a, b uint64) uint64) {
	f := func(a, b, cc uint8) bool {
		v, err := c.Evaluate(eda.Assignment{eda.Name("a"): int64(a), eda.Name("b"): int64(b), eda.Name("c"): int64(cc)})
		if err != nil {
			t.Fatal(err)
		}
		abc := ref(ref(uint64(a), uint64(b)), uint64(cc))
		ab := ref(uint64(a), uint64(b))
		return v["o0"] == abc && v["o1"] == abc && v["o2"] == abc && v["o3"] == abc &&
			v["o4"] == ab && v["o5"] == ab
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestAnd_algebra(t *testing.T) {
	testAlgebra(t, algebra(t, eda.And), func(a, b uint64) uint64 { return a & b })
}

func TestOr_algebra(t *testing.T) {
	testAlgebra(t, algebra(t, eda.Or), func(a, b uint64) uint64 { return a | b })
}

func TestAnd_single_input(t *testing.T) {
	c := newChip(t, "BUF")
	in, out := eda.In("in", 3), eda.Out("out", 3)
	check(t, c.AddPort(in))
	check(t, c.AddPort(out))
	check(t, c.AddGate(eda.And("g_buf", out, in)))
	if v := evaluate(t, c, eda.Assignment{in: 5}); v["out"] != 5 {
		t.Fatalf("got %d, expected 5", v["out"])
	}
}

func TestGate_errors(t *testing.T) {
	a, out := eda.In("a", 1), eda.Out("out", 1)
	data := []struct {
		name string
		fn   func() error
		err  error
	}{
		{"and_no_input", func() error { _, err := eda.NewAnd("g", nil, []*eda.Signal{out}); return err }, eda.ErrArity},
		{"or_no_input", func() error { _, err := eda.NewOr("g", nil, []*eda.Signal{out}); return err }, eda.ErrArity},
		{"no_output", func() error { _, err := eda.NewAnd("g", []*eda.Signal{a}, nil); return err }, eda.ErrArity},
		{"nil_input", func() error { _, err := eda.NewOr("g", []*eda.Signal{a, nil}, []*eda.Signal{out}); return err }, eda.ErrArity},
		{"not_nil_input", func() error { _, err := eda.NewNot("g", nil, []*eda.Signal{out}); return err }, eda.ErrArity},
		{"bad_name", func() error { _, err := eda.NewAnd("assign", []*eda.Signal{a}, []*eda.Signal{out}); return err }, eda.ErrInvalidName},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			if err := d.fn(); errors.Cause(err) != d.err {
				t.Errorf("got error %v, expected %v", err, d.err)
			}
		})
	}
}

func TestGate_Emit(t *testing.T) {
	a, b, w := eda.In("a", 1), eda.In("b", 1), eda.Wire("w", 1)
	q := eda.Out("q", 1, eda.Registered())
	r := eda.Out("r", 1, eda.Registered())
	and2, err := eda.NewAnd("and2", []*eda.Signal{a, b}, []*eda.Signal{w, q}, eda.Delay(2), eda.Attr("keep", "true"))
	check(t, err)
	or2, err := eda.NewOr("or2", []*eda.Signal{a, b}, []*eda.Signal{q, r})
	check(t, err)
	data := []struct {
		g   eda.Gate
		out string
	}{
		{eda.And("g0", w, a, b), "assign w = a & b; // g0"},
		{eda.Or("g1", w, a, b, a), "assign w = a | b | a; // g1"},
		{eda.Not("g2", w, a), "assign w = ~a; // g2"},
		{eda.And("g3", q, a), "always @(*) q = a; // g3"},
		{and2, `(* keep = "true" *) assign #2 w = a & b; always @(*) q = #2 a & b; // and2`},
		{or2, "always @(*) begin q = a | b; r = a | b; end // or2"},
	}
	for _, d := range data {
		if s := d.g.Emit(); s != d.out {
			t.Errorf("%s: got %q, expected %q", d.g.Name(), s, d.out)
		}
	}
}

func TestFuncGate(t *testing.T) {
	c := newChip(t, "XOR")
	a, b, out := eda.In("a", 2), eda.In("b", 2), eda.Out("out", 2)
	for _, s := range []*eda.Signal{a, b, out} {
		check(t, c.AddPort(s))
	}
	g, err := eda.NewFunc("x", []*eda.Signal{a, b}, []*eda.Signal{out},
		func(in []uint64) uint64 { return in[0] ^ in[1] },
		func(in []string) string { return strings.Join(in, " ^ ") })
	check(t, err)
	check(t, c.AddGate(g))
	if v := evaluate(t, c, eda.Assignment{a: 1, b: 3}); v["out"] != 2 {
		t.Fatalf("1 ^ 3 = %d, expected 2", v["out"])
	}
	if s := g.Emit(); s != "assign out = a ^ b; // x" {
		t.Fatalf("got %q", s)
	}
}

func expectCapabilityPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		if !ok || errors.Cause(err) != eda.ErrCapability {
			t.Fatalf("got panic %v, expected %v", r, eda.ErrCapability)
		}
	}()
	fn()
}

func TestFuncGate_capability(t *testing.T) {
	c := newChip(t, "BROKEN")
	a, out := eda.In("a", 1), eda.Out("out", 1)
	check(t, c.AddPort(a))
	check(t, c.AddPort(out))
	noEval, err := eda.NewFunc("noeval", []*eda.Signal{a}, []*eda.Signal{out}, nil,
		func(in []string) string { return in[0] })
	check(t, err)
	check(t, c.AddGate(noEval))
	expectCapabilityPanic(t, func() { c.Evaluate(nil) })

	noEmit, err := eda.NewFunc("noemit", []*eda.Signal{a}, []*eda.Signal{out},
		func(in []uint64) uint64 { return in[0] }, nil)
	check(t, err)
	expectCapabilityPanic(t, func() { noEmit.Emit() })
}
