package pipeline

import (
	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
)

// PipelineContext carries one unit through the processing stages.
type PipelineContext struct {
	FilePath string
	Source   []byte
	Options  *config.Options

	AstRoot *ast.Module

	// Set by the emit stage.
	ModuleName string
	OutputPath string
	Generated  string

	Errors []*diagnostics.DiagnosticError
}

// NewPipelineContext creates a context for the IR file at path.
func NewPipelineContext(path string, opts *config.Options) *PipelineContext {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	return &PipelineContext{FilePath: path, Options: opts}
}

// Failed reports whether any stage recorded a diagnostic.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// AddError records err, keeping the unit's file on the diagnostic.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}
