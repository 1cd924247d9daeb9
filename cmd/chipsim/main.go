// Command chipsim builds an example chip, evaluates it and prints its Verilog
// source and truth table.
//
// Usage:
//
//	chipsim [-config file] [-circuit name] [-eval a=1,b=0] [-emit=false] [-table=false] [-style name]
//
// Settings are read from the "chipsim" field of an optional CUE
// configuration file, then overridden by the flags given on the command line:
//
//	chipsim: {
//		circuit: "fulladder"
//		style:   "unicode"
//		eval: {a: 1, b: 1, cin: 0}
//		log: level: "debug"
//	}
//
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/markkurossi/tabulate"
	"github.com/panhaiqi/OpenChipEDA"
	"github.com/panhaiqi/OpenChipEDA/edalib"
	"github.com/pkg/errors"
	slogmulti "github.com/samber/slog-multi"
)

var styles = map[string]tabulate.Style{
	"plain":   tabulate.Plain,
	"ascii":   tabulate.ASCII,
	"unicode": tabulate.Unicode,
	"light":   tabulate.UnicodeLight,
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, "chipsim:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("chipsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgFile := fs.String("config", "", "read settings from CUE `file`")
	circuit := fs.String("circuit", "nand", "example `circuit`: nand, halfadder, fulladder or adder4")
	style := fs.String("style", "plain", "truth table `style`: plain, ascii, unicode or light")
	emit := fs.Bool("emit", true, "print the Verilog source")
	table := fs.Bool("table", true, "print the truth table")
	eval := fs.String("eval", "", "evaluate the chip with `assignment`, like a=1,b=0")
	level := fs.String("log", "warn", "log `level`: debug, info, warn or error")
	logFile := fs.String("logfile", "", "also write JSON logs to `file`")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := defaultConfig()
	if *cfgFile != "" {
		if err := cfg.load(*cfgFile); err != nil {
			return err
		}
	}
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "circuit":
			cfg.Circuit = *circuit
		case "style":
			cfg.Style = *style
		case "emit":
			cfg.Emit = *emit
		case "table":
			cfg.Table = *table
		case "eval":
			if cfg.Eval, err = parseAssignment(*eval); err != nil {
				err = errors.Wrap(err, "-eval")
			}
		case "log":
			cfg.Log.Level = *level
		case "logfile":
			cfg.Log.File = *logFile
		}
	})
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := buildCircuit(cfg.Circuit)
	if err != nil {
		return err
	}
	logger.Info("circuit built", "chip", c.Name(), "ports", len(c.Ports()), "gates", len(c.Gates()), "instances", len(c.Instances()))
	for _, w := range c.MultiDriven() {
		logger.Warn(w.String())
	}

	if len(cfg.Eval) > 0 {
		a := make(eda.Assignment, len(cfg.Eval))
		for k, v := range cfg.Eval {
			a[eda.Name(k)] = v
		}
		vals, err := c.Evaluate(a)
		if err != nil {
			return err
		}
		for _, n := range vals.Names() {
			fmt.Fprintf(stdout, "%s = %d\n", n, vals[n])
		}
	}
	if cfg.Emit {
		if err = c.WriteVerilog(stdout); err != nil {
			return err
		}
	}
	if cfg.Table {
		st, ok := styles[cfg.Style]
		if !ok {
			return errors.Errorf("unknown table style %q", cfg.Style)
		}
		tt, err := c.TruthTable()
		if err != nil {
			return err
		}
		tt.Render(stdout, st)
	}
	return nil
}

// parseAssignment parses a comma separated list of name=value pairs.
//
func parseAssignment(s string) (map[string]int64, error) {
	m := make(map[string]int64)
	for _, kv := range strings.Split(s, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			return nil, errors.Errorf("%q: expected name=value", kv)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(kv[i+1:]), 0, 64)
		if err != nil {
			return nil, errors.Wrap(err, kv)
		}
		m[strings.TrimSpace(kv[:i])] = v
	}
	return m, nil
}

// newLogger sets up a text handler on w and, if cfg.File is set, a JSON
// handler on that file. The handlers are fanned out and also used by the eda
// package.
//
func newLogger(cfg logConfig, w io.Writer) (*slog.Logger, func(), error) {
	lvl, ok := levels[cfg.Level]
	if !ok {
		return nil, nil, errors.Errorf("unknown log level %q", cfg.Level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	handlers := []slog.Handler{slog.NewTextHandler(w, opts)}
	closer := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrap(err, "log file")
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		closer = func() { f.Close() }
	}
	eda.SetLogHandlers(handlers...)
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

func nand() (*eda.Chip, error) {
	c, err := eda.NewChip("SimpleChip")
	if err != nil {
		return nil, err
	}
	ins, err := c.Declare(eda.Input, "a, b")
	if err != nil {
		return nil, err
	}
	outs, err := c.Declare(eda.Output, "out")
	if err != nil {
		return nil, err
	}
	ws, err := c.Declare(eda.None, "and_ab")
	if err != nil {
		return nil, err
	}
	if err = c.AddGate(eda.And("and1", ws[0], ins...)); err != nil {
		return nil, err
	}
	if err = c.AddGate(eda.Not("not1", outs[0], ws[0])); err != nil {
		return nil, err
	}
	return c, nil
}

func buildCircuit(name string) (*eda.Chip, error) {
	switch name {
	case "nand":
		return nand()
	case "halfadder":
		return edalib.HalfAdder()
	case "fulladder":
		return edalib.FullAdder()
	case "adder4":
		return edalib.AdderN(4)
	}
	return nil, errors.Errorf("unknown circuit %q", name)
}
