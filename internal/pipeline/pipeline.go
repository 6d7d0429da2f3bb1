package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/strainkit/strainkit/internal/config"
	"github.com/strainkit/strainkit/internal/model"
	"github.com/strainkit/strainkit/internal/runner"
)

// CommandRunner executes external commands. *runner.Runner implements it;
// tests substitute recording fakes.
type CommandRunner interface {
	Run(ctx context.Context, cmd runner.Command) error
}

// NotifyFunc is called before each stage executes, with the stage's 1-based
// position and the total stage count. The CLI uses it to print progress
// banners; the pipeline itself writes only to its logger.
type NotifyFunc func(current, total int, stage Stage)

// Pipeline orchestrates the execution of the build plan. Stages run
// strictly in sequence: each depends on artifacts of its predecessors, so
// there is no parallelism to exploit. The first failing stage aborts the
// run, except the terminal viewer stage, whose failure is reported but does
// not invalidate the artifacts built before it.
type Pipeline struct {
	// stages contains the ordered plan to execute.
	stages []Stage

	// runner executes each stage's command.
	runner CommandRunner

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// notify receives stage progress callbacks, may be nil.
	notify NotifyFunc
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithStages replaces the default plan. Used by tests; production callers
// run DefaultPlan.
func WithStages(stages []Stage) Option {
	return func(p *Pipeline) {
		p.stages = stages
	}
}

// WithRunner sets the command runner executing each stage.
// If not set, a default runner with inherited stdio is used.
func WithRunner(r CommandRunner) Option {
	return func(p *Pipeline) {
		p.runner = r
	}
}

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithNotify sets the stage progress callback.
func WithNotify(notify NotifyFunc) Option {
	return func(p *Pipeline) {
		p.notify = notify
	}
}

// New creates a Pipeline with the default plan and the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		stages: DefaultPlan(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.runner == nil {
		p.runner = runner.New()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// StageCount returns the number of stages in the plan.
func (p *Pipeline) StageCount() int {
	return len(p.stages)
}

// StageNames returns the names of all stages in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name()
	}
	return names
}

// Run executes the plan against cfg and returns the build report. The
// report is returned non-nil even on failure so callers can render and
// persist partial results.
//
// Behavior:
//   - The results and auspice directories are created before the first
//     stage (skipped for dry runs).
//   - Each stage's command is resolved from the configuration and the run
//     state, executed via the runner, and recorded as a StageResult.
//   - With cfg.DryRun, commands are recorded but nothing executes.
//   - With cfg.StageTimeout > 0, each stage runs under its own deadline.
//   - The first failure aborts the run with a *StageError. A terminal
//     stage's failure still returns an error, but ArtifactsComplete remains
//     true: the dataset was already exported.
//   - Context cancellation between stages returns ctx.Err(); cancellation
//     during a stage surfaces through the runner and is wrapped like any
//     stage failure.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config) (*model.BuildReport, error) {
	report := model.NewBuildReport(cfg.Title, cfg.DatasetPath())
	report.DryRun = cfg.DryRun
	state := NewRunState()
	total := len(p.stages)

	if !cfg.DryRun {
		for _, dir := range []string{cfg.ResultsDir, cfg.AuspiceDir} {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				report.ErrorMessage = err.Error()
				report.Finish(false)
				return report, fmt.Errorf("create directory %s: %w", dir, err)
			}
		}
	}

	for i, stage := range p.stages {
		// Check for cancellation before starting each stage.
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"stage", stage.Name(),
				"reason", ctx.Err(),
			)
			report.FailedStage = stage.Name()
			report.ErrorMessage = ctx.Err().Error()
			report.Finish(false)
			return report, ctx.Err()
		default:
		}

		// Reaching a terminal stage means every artifact-producing
		// stage has succeeded.
		if !cfg.DryRun && isTerminal(stage) {
			report.ArtifactsComplete = true
		}

		cmd, err := stage.Command(cfg, state)
		if err != nil {
			stageErr := &StageError{Stage: stage.Name(), Err: err}
			report.FailedStage = stage.Name()
			report.ErrorMessage = stageErr.Error()
			report.Finish(false)
			return report, stageErr
		}

		if p.notify != nil {
			p.notify(i+1, total, stage)
		}

		result := model.StageResult{
			Name:        stage.Name(),
			Description: stage.Description(),
			Command:     cmd.String(),
			Outputs:     stage.Outputs(cfg),
			StartedAt:   time.Now(),
		}

		if cfg.DryRun {
			report.AddStage(result)
			state.Record(stage.Name(), stage.Outputs(cfg))
			continue
		}

		p.logger.Info("executing stage",
			"stage", stage.Name(),
			"command", cmd.String(),
		)

		runCtx := ctx
		cancel := func() {}
		if cfg.StageTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, cfg.StageTimeout)
		}
		err = p.runner.Run(runCtx, cmd)
		cancel()
		result.Duration = time.Since(result.StartedAt)

		if err != nil {
			// A stage deadline surfaces as DeadlineExceeded while
			// the parent context is still live; label it so the
			// report says what actually happened.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				err = fmt.Errorf("timed out after %s: %w", cfg.StageTimeout, err)
			}

			var exitErr *runner.ExitError
			if errors.As(err, &exitErr) {
				result.ExitCode = exitErr.ExitCode
			}
			result.Err = err.Error()
			report.AddStage(result)

			stageErr := &StageError{Stage: stage.Name(), Err: err}
			report.FailedStage = stage.Name()
			report.ErrorMessage = stageErr.Error()
			report.Finish(false)

			p.logger.Error("stage failed",
				"stage", stage.Name(),
				"error", err,
			)
			return report, stageErr
		}

		p.logger.Debug("stage completed",
			"stage", stage.Name(),
			"duration", result.Duration,
		)
		report.AddStage(result)
		state.Record(stage.Name(), stage.Outputs(cfg))
	}

	if !cfg.DryRun {
		report.ArtifactsComplete = true
	}
	report.Finish(true)
	return report, nil
}

// isTerminal reports whether a stage marks itself as non-artifact-producing.
func isTerminal(s Stage) bool {
	t, ok := s.(interface{ Terminal() bool })
	return ok && t.Terminal()
}
