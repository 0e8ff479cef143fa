// Package backend connects code generators to the pipeline.
package backend

import (
	"github.com/funvibe/fsgen/internal/fsharp"
	"github.com/funvibe/fsgen/internal/pipeline"
)

// Artifact is the generated source of one unit.
type Artifact struct {
	Module string
	Path   string // relative to the output directory
	Source string
}

// Backend is the interface for code generation backends
type Backend interface {
	// Run lowers the unit held by the pipeline context
	Run(ctx *pipeline.PipelineContext) (*Artifact, error)

	// Name returns the backend name for display
	Name() string
}

// FSharp lowers units to F# source files.
type FSharp struct{}

func (FSharp) Name() string { return "fsharp" }

func (FSharp) Run(ctx *pipeline.PipelineContext) (*Artifact, error) {
	out, err := fsharp.Generate(ctx.AstRoot, ctx.Options)
	if err != nil {
		return nil, err
	}
	return &Artifact{Module: out.Module, Path: out.Path, Source: out.Source}, nil
}
