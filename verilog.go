// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package eda

import (
	"io"
	"strconv"
	"strings"
)

// Emit returns the Verilog source of c.
//
// The module for c comes first. It is followed by the modules of the chips it
// instantiates, depth first in order of first use, each module name emitted
// once and introduced by a comment banner.
//
func (c *Chip) Emit() string {
	var b strings.Builder
	c.emit(&b, make(map[string]bool))
	return b.String()
}

// WriteVerilog writes the Verilog source of c to w.
//
func (c *Chip) WriteVerilog(w io.Writer) error {
	_, err := io.WriteString(w, c.Emit())
	return err
}

// module returns the Verilog source of c alone.
func (c *Chip) module() string {
	var b strings.Builder
	c.emitModule(&b)
	return b.String()
}

// modules are emitted once per name.
func (c *Chip) emit(b *strings.Builder, done map[string]bool) {
	done[c.name] = true
	c.emitModule(b)
	for _, i := range c.insts {
		if done[i.child.name] {
			continue
		}
		b.WriteString("\n// ---- module " + i.child.name + " (instantiated in " + c.name + " as " + i.name + ") ----\n")
		i.child.emit(b, done)
	}
}

func widthString(s *Signal) string {
	if s.width == 1 {
		return ""
	}
	return "[" + strconv.Itoa(s.width-1) + ":0] "
}

func (c *Chip) emitModule(b *strings.Builder) {
	b.WriteString(attrString(c.attrs))
	b.WriteString("module " + c.name)
	if len(c.ports) > 0 {
		b.WriteByte('(')
		for i, p := range c.ports {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.name)
		}
		b.WriteByte(')')
	}
	b.WriteString(";\n")

	for _, k := range sortedKeys(c.params) {
		b.WriteString("  parameter " + k + " = " + strconv.FormatInt(c.params[k], 10) + ";\n")
	}
	for _, p := range c.ports {
		b.WriteString("  " + attrString(p.attrs) + p.dir.String() + " ")
		if p.typ == Reg {
			b.WriteString("reg ")
		}
		b.WriteString(widthString(p) + p.name + ";\n")
	}
	for _, w := range c.wires {
		b.WriteString("  " + attrString(w.attrs) + w.typ.String() + " " + widthString(w))
		if w.delay > 0 && w.typ == Net {
			b.WriteString("#" + strconv.FormatUint(uint64(w.delay), 10) + " ")
		}
		b.WriteString(w.name + ";\n")
	}
	for _, g := range c.gates {
		b.WriteString("  " + g.Emit() + "\n")
	}
	for _, i := range c.insts {
		b.WriteString("\n  // instance " + i.name + " of " + i.child.name + "\n")
		b.WriteString("  " + i.Emit() + "\n")
	}
	b.WriteString("endmodule\n")
}
