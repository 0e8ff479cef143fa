package tests

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/fsgen/internal/backend"
	"github.com/funvibe/fsgen/internal/irfile"
	"github.com/funvibe/fsgen/internal/pipeline"
)

var update = flag.Bool("update", false, "rewrite .want files with the current output")

// TestFunctional lowers every testdata/*.yaml IR file and compares the F#
// source, or the diagnostics of a rejected unit, with the .want file.
func TestFunctional(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Skip("No test files found")
	}

	units := make([]*pipeline.PipelineContext, len(files))
	for i, f := range files {
		units[i] = pipeline.NewPipelineContext(filepath.ToSlash(f), nil)
	}
	p := pipeline.New(irfile.DecodeProcessor{}, backend.NewEmitProcessor(backend.FSharp{}))
	if err := p.RunAll(context.Background(), units, 4); err != nil {
		t.Fatal(err)
	}

	for _, u := range units {
		name := strings.TrimSuffix(filepath.Base(u.FilePath), ".yaml")
		t.Run(name, func(t *testing.T) {
			got := u.Generated
			if u.Failed() {
				var lines []string
				for _, e := range u.Errors {
					lines = append(lines, e.Error())
				}
				got = strings.Join(lines, "\n") + "\n"
			}

			wantFile := strings.TrimSuffix(u.FilePath, ".yaml") + ".want"
			if *update {
				if err := os.WriteFile(wantFile, []byte(got), 0o644); err != nil {
					t.Fatal(err)
				}
				return
			}
			want, err := os.ReadFile(wantFile)
			if err != nil {
				t.Fatalf("missing %s: %v", wantFile, err)
			}
			if got != string(want) {
				t.Errorf("output mismatch for %s\n--- got ---\n%s\n--- want ---\n%s", u.FilePath, got, want)
			}
		})
	}
}
