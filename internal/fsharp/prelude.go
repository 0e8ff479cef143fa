package fsharp

import (
	_ "embed"
	"strings"

	"github.com/funvibe/fsgen/internal/config"
)

//go:embed prelude.fs
var preludeSource string

// PreludeFileName returns the file the prelude module is written to.
func PreludeFileName(opts *config.Options) string {
	return preludeModule(opts) + config.TargetFileExt
}

// Prelude returns the F# runtime support every generated module opens:
// the bit array implementation and the division helpers. The module line
// follows the configured prelude module name.
func Prelude(opts *config.Options) string {
	name := preludeModule(opts)
	if name == config.PreludeModule {
		return preludeSource
	}
	return strings.Replace(preludeSource, "module "+config.PreludeModule, "module "+name, 1)
}

func preludeModule(opts *config.Options) string {
	if opts == nil || opts.PreludeModule == "" {
		return config.PreludeModule
	}
	return opts.PreludeModule
}
