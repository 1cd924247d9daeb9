// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package edatest provides utility functions for testing chips.
//
package edatest

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/panhaiqi/OpenChipEDA"
	"github.com/pkg/errors"
)

// MaxExhaustiveBits is the maximum total width of the input ports of a chip
// for exhaustive comparison.
//
const MaxExhaustiveBits = 12

func split(c *eda.Chip) (ins, outs []*eda.Signal) {
	for _, p := range c.Ports() {
		switch p.Direction() {
		case eda.Input:
			ins = append(ins, p)
		case eda.Output, eda.InOut:
			outs = append(outs, p)
		}
	}
	return ins, outs
}

func sameInterface(a, b []*eda.Signal) error {
	if len(a) != len(b) {
		return errors.Errorf("%d ports != %d ports", len(a), len(b))
	}
	for i := range a {
		if a[i].Name() != b[i].Name() || a[i].Width() != b[i].Width() {
			return errors.Errorf("port %d: %v != %v", i, a[i], b[i])
		}
	}
	return nil
}

func vectorString(ins []*eda.Signal, vals []uint64) string {
	var b strings.Builder
	for i, s := range ins {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", s.Name(), vals[i])
	}
	return b.String()
}

// CompareChips takes two chips and compares their outputs given the same
// inputs. Both chips must have the same input and output ports, in the same
// order.
//
// If the input ports of the chips are MaxExhaustiveBits wide or less in
// total, all input combinations are tried. Otherwise the chips are compared
// with all inputs set to zero, all inputs set to ones, and random vectors.
//
func CompareChips(t testing.TB, c1, c2 *eda.Chip) {
	t.Helper()

	ins1, outs1 := split(c1)
	ins2, outs2 := split(c2)
	if err := sameInterface(ins1, ins2); err != nil {
		t.Fatalf("%s and %s inputs differ: %v", c1.Name(), c2.Name(), err)
	}
	if err := sameInterface(outs1, outs2); err != nil {
		t.Fatalf("%s and %s outputs differ: %v", c1.Name(), c2.Name(), err)
	}

	bits := 0
	for _, s := range ins1 {
		bits += s.Width()
	}
	vals := make([]uint64, len(ins1))

	try := func() {
		a1, a2 := make(eda.Assignment, len(ins1)), make(eda.Assignment, len(ins1))
		for i := range ins1 {
			a1[ins1[i]] = int64(vals[i])
			a2[ins2[i]] = int64(vals[i])
		}
		o1, err := c1.Evaluate(a1)
		if err != nil {
			t.Fatal(err)
		}
		o2, err := c2.Evaluate(a2)
		if err != nil {
			t.Fatal(err)
		}
		for _, o := range outs1 {
			if n := o.Name(); o1[n] != o2[n] {
				t.Fatalf("\n%s => %s: %s=%d, %s=%d", vectorString(ins1, vals), n, c1.Name(), o1[n], c2.Name(), o2[n])
			}
		}
	}

	start := time.Now()
	count := 0
	if bits <= MaxExhaustiveBits {
		for v := uint64(0); v < 1<<uint(bits); v++ {
			shift := uint(0)
			for i, s := range ins1 {
				vals[i] = v >> shift & s.Mask()
				shift += uint(s.Width())
			}
			try()
			count++
		}
	} else {
		// all 0
		try()
		// all 1; assignments are int64, so bit 63 of a 64 bit port stays 0
		for i, s := range ins1 {
			vals[i] = s.Mask() & math.MaxInt64
		}
		try()
		seed := time.Now().UnixNano()
		rnd := rand.New(rand.NewSource(seed))
		for n := 0; n < 1<<MaxExhaustiveBits; n++ {
			for i, s := range ins1 {
				vals[i] = uint64(rnd.Int63()) & s.Mask()
			}
			try()
		}
		count = 2 + 1<<MaxExhaustiveBits
		t.Logf("random seed %d", seed)
	}
	t.Logf("%d vectors in %v", count, time.Since(start))
}

// AssertTable evaluates c for every row of want and checks the outputs. A row
// lists the values of the input ports followed by the values of the output
// and inout ports, in declaration order.
//
func AssertTable(t testing.TB, c *eda.Chip, want [][]uint64) {
	t.Helper()
	ins, outs := split(c)
	for r, row := range want {
		if len(row) != len(ins)+len(outs) {
			t.Fatalf("row %d: got %d values, expected %d", r, len(row), len(ins)+len(outs))
		}
		a := make(eda.Assignment, len(ins))
		for i, s := range ins {
			a[s] = int64(row[i])
		}
		o, err := c.Evaluate(a)
		if err != nil {
			t.Fatal(err)
		}
		for i, s := range outs {
			if got, exp := o[s.Name()], row[len(ins)+i]; got != exp {
				t.Errorf("%s: %s => %s=%d, expected %d", c.Name(), vectorString(ins, row), s.Name(), got, exp)
			}
		}
	}
}
