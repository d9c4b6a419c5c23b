// Package action exposes the export as a pipeline action with a
// definition-time and a run-time hook.
package action

import (
	"context"

	"github.com/fbz-tec/vexport/core/config"
	"github.com/fbz-tec/vexport/core/export"
	"github.com/fbz-tec/vexport/core/validation"
	"github.com/elliotchance/orderedmap/v3"
)

// Name identifies the action in a pipeline.
const Name = "VerticaBulkExportAction"

// PipelineConfigurer is handed to the action when a pipeline is defined.
type PipelineConfigurer interface {
	FailureCollector() validation.Collector
}

// ActionContext is handed to the action when it runs.
type ActionContext interface {
	StageName() string
	FailureCollector() validation.Collector
}

// StageContext is a standalone ActionContext and PipelineConfigurer.
type StageContext struct {
	Stage     string
	collector *validation.FailureCollector
}

// NewStageContext returns a context with an empty failure collector.
func NewStageContext(stage string) *StageContext {
	return &StageContext{Stage: stage, collector: validation.NewFailureCollector(stage)}
}

func (c *StageContext) StageName() string { return c.Stage }

func (c *StageContext) FailureCollector() validation.Collector { return c.collector }

// Failures lists what has been collected so far.
func (c *StageContext) Failures() []validation.Failure { return c.collector.Failures() }

// ByField groups the collected failures per config property.
func (c *StageContext) ByField() *orderedmap.OrderedMap[string, []validation.Failure] {
	return c.collector.ByField()
}

// Action exports the result of a Vertica select statement to a file.
type Action struct {
	cfg    config.ExportConfig
	runner *export.Runner
}

// Option customizes an Action.
type Option func(*Action)

// WithRunner replaces the default Vertica runner.
func WithRunner(r *export.Runner) Option {
	return func(a *Action) { a.runner = r }
}

func New(cfg config.ExportConfig, opts ...Option) *Action {
	a := &Action{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.runner == nil {
		a.runner = export.NewRunner()
	}
	return a
}

// Config returns the action's configuration.
func (a *Action) Config() config.ExportConfig { return a.cfg }

// ConfigurePipeline validates the configuration at definition time. Fields
// that still contain macros are skipped. Failures are only recorded.
func (a *Action) ConfigurePipeline(configurer PipelineConfigurer) {
	a.cfg.Validate(configurer.FailureCollector())
}

// Run validates the configuration again and, if no failure was recorded,
// performs the export. Validation failures abort before any I/O.
func (a *Action) Run(ctx context.Context, actx ActionContext) (export.Result, error) {
	collector := actx.FailureCollector()
	a.cfg.Validate(collector)
	if err := collector.GetOrThrow(); err != nil {
		return export.Result{}, &export.Error{Kind: export.KindConfiguration, Op: "validate", Err: err}
	}
	return a.runner.Run(ctx, a.cfg)
}

// Run executes cfg once with the default runner, outside of any pipeline.
func Run(ctx context.Context, cfg config.ExportConfig, actx ActionContext) (export.Result, error) {
	return New(cfg).Run(ctx, actx)
}
