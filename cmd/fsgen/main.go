package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/fsgen/internal/backend"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/irfile"
	"github.com/funvibe/fsgen/internal/pipeline"
	"github.com/funvibe/fsgen/internal/token"
)

const usage = `Usage: fsgen [options] <file.yaml | file.json | dir>...

Lowers typed IR modules to F# source files.

Options:
  -config <path>   read settings from path instead of the nearest fsgen.yaml
  -out <dir>       output directory (default "build")
  -jobs <n>        modules lowered in parallel (default: no limit)
  -prelude         also write the runtime prelude module
  -check           lower and report diagnostics without writing files
  -help            show this message
`

type cliOptions struct {
	configPath string
	outDir     string
	jobs       int
	prelude    bool
	check      bool
	inputs     []string
}

func parseArgs(args []string) (*cliOptions, error) {
	opts := &cliOptions{outDir: "build"}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		value := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s needs a value", arg)
			}
			i++
			return args[i], nil
		}
		var err error
		switch arg {
		case "-config", "--config":
			opts.configPath, err = value()
		case "-out", "--out", "-o":
			opts.outDir, err = value()
		case "-jobs", "--jobs", "-j":
			var v string
			if v, err = value(); err == nil {
				opts.jobs, err = strconv.Atoi(v)
				if err != nil {
					err = fmt.Errorf("-jobs: %q is not a number", v)
				}
			}
		case "-prelude", "--prelude":
			opts.prelude = true
		case "-check", "--check":
			opts.check = true
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown option %s", arg)
			}
			opts.inputs = append(opts.inputs, arg)
		}
		if err != nil {
			return nil, err
		}
	}
	if len(opts.inputs) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	return opts, nil
}

// loadOptions reads the explicit config file, or the nearest fsgen.yaml
// above the working directory, or falls back to the defaults.
func loadOptions(path string) (*config.Options, error) {
	if path == "" {
		found, err := config.FindOptions(".")
		if err != nil {
			return nil, err
		}
		if found == "" {
			return config.DefaultOptions(), nil
		}
		path = found
	}
	return config.LoadOptions(path)
}

// collectInputs expands directories to the IR files below them.
func collectInputs(inputs []string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, in)
			continue
		}
		err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isIRFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func isIRFile(path string) bool {
	ext := filepath.Ext(path)
	for _, known := range config.SourceFileExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 1 && (args[0] == "-help" || args[0] == "--help" || args[0] == "help") {
		fmt.Fprint(stdout, usage)
		return 0
	}
	r := newReporter(stderr)

	cli, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "fsgen: %s\n\n%s", err, usage)
		return 2
	}
	opts, err := loadOptions(cli.configPath)
	if err != nil {
		r.diagnostic(diagnostics.Errorf(diagnostics.ErrC001, token.Token{}, "%v", err))
		return 1
	}
	files, err := collectInputs(cli.inputs)
	if err != nil {
		r.diagnostic(diagnostics.Errorf(diagnostics.ErrD001, token.Token{}, "%v", err))
		return 1
	}

	stages := []pipeline.Processor{
		irfile.DecodeProcessor{},
		backend.NewEmitProcessor(backend.FSharp{}),
	}
	if !cli.check {
		stages = append(stages, &backend.WriteProcessor{OutDir: cli.outDir})
	}
	units := make([]*pipeline.PipelineContext, len(files))
	for i, f := range files {
		units[i] = pipeline.NewPipelineContext(f, opts)
	}
	if err := pipeline.New(stages...).RunAll(context.Background(), units, cli.jobs); err != nil {
		fmt.Fprintf(stderr, "fsgen: %v\n", err)
		return 1
	}

	failed := 0
	for _, u := range units {
		if u.Failed() {
			failed++
			for _, e := range u.Errors {
				r.diagnostic(e)
			}
			continue
		}
		if !cli.check {
			r.wrote(u.FilePath, filepath.Join(cli.outDir, filepath.FromSlash(u.OutputPath)))
		}
	}

	if (cli.prelude || opts.EmitPrelude) && !cli.check && failed == 0 {
		path, err := backend.WritePrelude(cli.outDir, opts)
		if err != nil {
			r.diagnostic(diagnostics.Errorf(diagnostics.ErrC001, token.Token{}, "%v", err))
			return 1
		}
		r.wrote("prelude", path)
	}

	r.summary(len(units), failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
