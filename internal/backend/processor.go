package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/fsharp"
	"github.com/funvibe/fsgen/internal/pipeline"
	"github.com/funvibe/fsgen/internal/token"
)

// EmitProcessor runs a Backend as a pipeline stage.
type EmitProcessor struct {
	Backend Backend
}

// NewEmitProcessor creates a new pipeline stage for the given backend
func NewEmitProcessor(b Backend) *EmitProcessor {
	return &EmitProcessor{Backend: b}
}

func (p *EmitProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous stages failed, don't generate anything
	if ctx.AstRoot == nil || ctx.Failed() {
		return ctx
	}

	art, err := p.Backend.Run(ctx)
	if err != nil {
		p.handleError(ctx, err)
		return ctx
	}
	ctx.ModuleName = art.Module
	ctx.OutputPath = art.Path
	ctx.Generated = art.Source
	return ctx
}

func (p *EmitProcessor) handleError(ctx *pipeline.PipelineContext, err error) {
	var de *diagnostics.DiagnosticError
	if !errors.As(err, &de) {
		de = diagnostics.Errorf(diagnostics.ErrL006, token.Token{}, "%s backend: %v", p.Backend.Name(), err)
	}
	ctx.AddError(de)
}

// WriteProcessor writes generated sources below OutDir.
type WriteProcessor struct {
	OutDir string
}

func (p *WriteProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || ctx.OutputPath == "" {
		return ctx
	}
	if err := writeFile(filepath.Join(p.OutDir, filepath.FromSlash(ctx.OutputPath)), ctx.Generated); err != nil {
		ctx.AddError(diagnostics.Errorf(diagnostics.ErrC001, token.Token{}, "%v", err))
	}
	return ctx
}

// WritePrelude writes the runtime support module into outDir and returns
// the file's path.
func WritePrelude(outDir string, opts *config.Options) (string, error) {
	path := filepath.Join(outDir, fsharp.PreludeFileName(opts))
	return path, writeFile(path, fsharp.Prelude(opts))
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
