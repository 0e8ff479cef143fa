package irfile

import (
	"errors"
	"os"

	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/pipeline"
	"github.com/funvibe/fsgen/internal/token"
)

// DecodeProcessor is the pipeline stage that reads a unit's IR file.
type DecodeProcessor struct{}

func (DecodeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot != nil {
		return ctx
	}
	if ctx.Source == nil {
		data, err := os.ReadFile(ctx.FilePath)
		if err != nil {
			ctx.AddError(diagnostics.Errorf(diagnostics.ErrD001, token.Token{File: ctx.FilePath}, "%v", err))
			return ctx
		}
		ctx.Source = data
	}

	mod, err := Decode(ctx.Source, ctx.FilePath)
	if err != nil {
		var de *diagnostics.DiagnosticError
		if !errors.As(err, &de) {
			de = diagnostics.Errorf(diagnostics.ErrD001, token.Token{File: ctx.FilePath}, "%v", err)
		}
		ctx.AddError(de)
		return ctx
	}
	ctx.AstRoot = mod
	return ctx
}
