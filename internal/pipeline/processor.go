package pipeline

// Processor is one stage of the pipeline. A stage that cannot run because an
// earlier one failed returns the context unchanged.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}
