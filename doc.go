/*
Package eda models combinational digital circuits: signals, logic gates and
hierarchical chips.

The same chip model is used to evaluate steady state output values for a
given input assignment, to emit a synthesizable Verilog module and to
enumerate a truth table.

A NAND chip can be built like this:

	c, _ := eda.NewChip("Nand")
	a, b, out := eda.In("a", 1), eda.In("b", 1), eda.Out("out", 1)
	and := eda.Wire("and_ab", 1)
	c.AddPort(a)
	c.AddPort(b)
	c.AddPort(out)
	c.AddInternalWire(and)
	c.AddGate(eda.And("and1", and, a, b))
	c.AddGate(eda.Not("not1", out, and))

	v, _ := c.Evaluate(eda.Assignment{a: 1, eda.Name("b"): 1}) // v["out"] == 0
	src := c.Emit()
	tt, _ := c.GenerateTruthTable()

Chips are composed with Instantiate; each instance is evaluated with its own
signal values, so a chip can be instantiated any number of times.

Sequential logic and timing are not simulated: delays are only emitted and
reg signals are driven combinationally.
*/
package eda
