package main

import (
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pkg/errors"
)

// configPath is the path of the chipsim settings in a configuration file.
const configPath = "chipsim"

const configSchema = `
chipsim?: close({
	circuit?: "nand" | "halfadder" | "fulladder" | "adder4"
	style?:   "plain" | "ascii" | "unicode" | "light"
	emit?:    bool
	table?:   bool
	eval?: [string]: int & >=0
	log?: close({
		level?: "debug" | "info" | "warn" | "error"
		file?:  string
	})
})
`

type logConfig struct {
	Level string
	File  string
}

type config struct {
	Circuit string
	Style   string
	Emit    bool
	Table   bool
	Eval    map[string]int64
	Log     logConfig
}

func defaultConfig() *config {
	return &config{
		Circuit: "nand",
		Style:   "plain",
		Emit:    true,
		Table:   true,
		Log:     logConfig{Level: "warn"},
	}
}

// fileConfig is the configuration file layout. Unset fields keep their
// current value.
type fileConfig struct {
	Circuit *string          `json:"circuit"`
	Style   *string          `json:"style"`
	Emit    *bool            `json:"emit"`
	Table   *bool            `json:"table"`
	Eval    map[string]int64 `json:"eval"`
	Log     *struct {
		Level *string `json:"level"`
		File  *string `json:"file"`
	} `json:"log"`
}

// load merges the settings of the CUE file at path into cfg.
//
func (cfg *config) load(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	ctx := cuecontext.New()
	schema := ctx.CompileString("close({" + configSchema + "})")
	if err = schema.Err(); err != nil {
		return errors.Wrap(err, "config schema")
	}
	value := ctx.CompileBytes(content, cue.Filename(path))
	if err = value.Err(); err != nil {
		return errors.Wrap(err, path)
	}
	if err = schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return errors.Wrap(err, path)
	}
	v := value.LookupPath(cue.ParsePath(configPath))
	if !v.Exists() {
		return nil
	}
	var fc fileConfig
	if err = v.Decode(&fc); err != nil {
		return errors.Wrap(err, path)
	}
	cfg.merge(&fc)
	return nil
}

func (cfg *config) merge(fc *fileConfig) {
	if fc.Circuit != nil {
		cfg.Circuit = *fc.Circuit
	}
	if fc.Style != nil {
		cfg.Style = *fc.Style
	}
	if fc.Emit != nil {
		cfg.Emit = *fc.Emit
	}
	if fc.Table != nil {
		cfg.Table = *fc.Table
	}
	if fc.Eval != nil {
		cfg.Eval = fc.Eval
	}
	if fc.Log != nil {
		if fc.Log.Level != nil {
			cfg.Log.Level = *fc.Log.Level
		}
		if fc.Log.File != nil {
			cfg.Log.File = *fc.Log.File
		}
	}
}
