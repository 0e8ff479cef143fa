package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors so later stages can decide to skip themselves.
	}
	return ctx
}

// RunAll runs the pipeline over independent units, at most limit at a time
// (no limit when limit <= 0). Units share nothing but the read-only options,
// so their diagnostics stay on their own contexts. The returned error is
// only set when ctx is cancelled before every unit ran.
func (p *Pipeline) RunAll(ctx context.Context, units []*PipelineContext, limit int) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, unit := range units {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			units[i] = p.Run(unit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
