package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/fsgen/internal/diagnostics"
)

const (
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// reporter prints progress and diagnostics, coloured on terminals.
type reporter struct {
	w     io.Writer
	color bool
}

func newReporter(w io.Writer) *reporter {
	return &reporter{w: w, color: useColor(w)}
}

func useColor(w io.Writer) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func (r *reporter) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

func (r *reporter) diagnostic(e *diagnostics.DiagnosticError) {
	fmt.Fprintln(r.w, r.paint(ansiRed+ansiBold, e.Error()))
	if e.IsLowering() {
		fmt.Fprintln(r.w, "  the IR handed to the backend is inconsistent; this is a bug in the front end")
	}
}

func (r *reporter) wrote(from, to string) {
	fmt.Fprintf(r.w, "%s %s -> %s\n", r.paint(ansiGreen, "wrote"), from, to)
}

func (r *reporter) summary(total, failed int) {
	if failed == 0 {
		fmt.Fprintf(r.w, "%d module(s) lowered\n", total)
		return
	}
	fmt.Fprintf(r.w, "%s %d of %d module(s) failed\n", r.paint(ansiRed+ansiBold, "failed"), failed, total)
}
