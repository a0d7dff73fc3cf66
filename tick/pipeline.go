package tick

import (
	"context"

	"github.com/gekko3d/voxcore/world"
)

// Inputs is what every hook registered on a Pipeline's stages receives.
// Sectors lists every sector the tick touches, so the pipeline's
// terminal hook can call Sector.EndTick on each one (spec.md §4.5
// "end-of-tick: the pipeline runs a terminal hook that iterates all
// sectors and calls Sector::end_tick"). Extra carries whatever
// additional state a particular caller's hooks need (e.g. a *voxcore.World)
// without coupling this package to it.
type Inputs struct {
	Sectors []*world.Sector
	Extra   any
}

// Pipeline runs an ordered sequence of Stages once per tick, then runs
// the mandatory terminal end-tick pass.
type Pipeline struct {
	Name   string
	Logger Logger
	Stages []*Stage[Inputs]
}

// NewPipeline constructs an empty pipeline.
func NewPipeline(name string, logger Logger) *Pipeline {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Pipeline{Name: name, Logger: logger}
}

// AddStage appends stage to the pipeline's run order. Stages run in
// append order; Run returns the first error a stage's Schedule returns.
// Hook failures are logged and skipped per hook, so they never reach Run.
func (p *Pipeline) AddStage(stage *Stage[Inputs]) {
	p.Stages = append(p.Stages, stage)
}

// Run schedules every stage in order, then calls EndTick on every sector
// in inputs.Sectors.
func (p *Pipeline) Run(ctx context.Context, inputs Inputs) error {
	for _, stage := range p.Stages {
		if err := stage.Schedule(ctx, inputs); err != nil {
			return err
		}
	}
	for _, s := range inputs.Sectors {
		s.EndTick()
	}
	return nil
}
