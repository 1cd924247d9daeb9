// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package eda

import (
	"io"
	"strconv"
	"strings"

	"github.com/markkurossi/tabulate"
	"github.com/pkg/errors"
)

// MaxTableInputs is the maximum number of input ports of a chip for truth
// table generation.
//
const MaxTableInputs = 20

// Table is the truth table of a chip.
//
type Table struct {
	Chip    string
	Inputs  []string // input port names, in declaration order
	Outputs []string // output and inout port names, in declaration order
	Rows    []Row
}

// Row is a truth table row.
//
type Row struct {
	In  []uint64
	Out []uint64
}

// TruthTable enumerates all the combinations of the chip input ports. In row
// i, input port j is set to (i >> j) & 1. Before each row, all ports and
// internal signals are reset to 0.
//
func (c *Chip) TruthTable() (*Table, error) {
	var ins, outs []*Signal
	for _, p := range c.ports {
		switch p.dir {
		case Input:
			ins = append(ins, p)
		case Output, InOut:
			outs = append(outs, p)
		}
	}
	if len(ins) == 0 || len(outs) == 0 {
		return nil, errors.Wrapf(ErrInsufficientPorts, "%s: %d inputs, %d outputs", c.name, len(ins), len(outs))
	}
	if len(ins) > MaxTableInputs {
		return nil, errors.Wrapf(ErrTooManyInputs, "%s: %d inputs, maximum is %d", c.name, len(ins), MaxTableInputs)
	}
	p := make(plan)
	if err := p.build(c); err != nil {
		return nil, err
	}

	t := &Table{
		Chip:    c.name,
		Inputs:  make([]string, len(ins)),
		Outputs: make([]string, len(outs)),
		Rows:    make([]Row, 0, 1<<uint(len(ins))),
	}
	for j, s := range ins {
		t.Inputs[j] = s.name
	}
	for j, s := range outs {
		t.Outputs[j] = s.name
	}
	for i := 0; i < 1<<uint(len(ins)); i++ {
		for _, s := range c.signals {
			s.value = 0
		}
		row := Row{In: make([]uint64, len(ins)), Out: make([]uint64, len(outs))}
		for j, s := range ins {
			row.In[j] = uint64(i>>uint(j)) & 1
			s.value = row.In[j]
		}
		c.run(p)
		for j, s := range outs {
			row.Out[j] = s.value
		}
		t.Rows = append(t.Rows, row)
	}
	logger.Debug("truth table", "chip", c.name, "rows", len(t.Rows))
	return t, nil
}

// Output returns the value of output name in row i.
//
func (t *Table) Output(i int, name string) (uint64, bool) {
	for j, n := range t.Outputs {
		if n == name {
			return t.Rows[i].Out[j], true
		}
	}
	return 0, false
}

// Render writes the table to w in the given tabulate style. The header row
// lists the inputs then the outputs.
//
func (t *Table) Render(w io.Writer, style tabulate.Style) {
	tab := tabulate.New(style)
	for _, n := range t.Inputs {
		tab.Header(n).SetAlign(tabulate.MC)
	}
	for _, n := range t.Outputs {
		tab.Header(n).SetAlign(tabulate.MC)
	}
	for _, r := range t.Rows {
		row := tab.Row()
		for _, v := range r.In {
			row.Column(strconv.FormatUint(v, 10))
		}
		for _, v := range r.Out {
			row.Column(strconv.FormatUint(v, 10))
		}
	}
	tab.Print(w)
}

func (t *Table) String() string {
	var b strings.Builder
	t.Render(&b, tabulate.Plain)
	return b.String()
}

// GenerateTruthTable returns the rendered truth table of c.
//
func (c *Chip) GenerateTruthTable() (string, error) {
	t, err := c.TruthTable()
	if err != nil {
		return "", err
	}
	return t.String(), nil
}
