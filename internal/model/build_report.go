package model

import (
	"time"

	"github.com/google/uuid"
)

// StageResult records the outcome of a single pipeline stage.
// One is appended to the build report per stage attempted, in execution
// order, so a failed run shows every stage up to and including the failure.
type StageResult struct {
	// Name is the short stage name (e.g. "align", "refine").
	Name string `json:"name"`

	// Description is the human-readable stage description shown in
	// progress banners and reports.
	Description string `json:"description"`

	// Command is the full rendered command line that was (or would be)
	// executed.
	Command string `json:"command"`

	// Outputs are the artifact paths the stage declares it produces.
	Outputs []string `json:"outputs,omitempty"`

	// StartedAt is when the stage began executing.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the stage ran.
	Duration time.Duration `json:"duration"`

	// ExitCode is the external tool's exit status. Zero for success and
	// for stages that never executed (dry runs, start failures).
	ExitCode int `json:"exit_code"`

	// Err is the failure message, empty on success.
	Err string `json:"error,omitempty"`
}

// Succeeded reports whether the stage completed without error.
func (s StageResult) Succeeded() bool {
	return s.Err == ""
}

// BuildReport is the main result structure for one pipeline run.
// It accumulates per-stage results as the pipeline executes and is the unit
// of persistence for the run history database and of rendering for the
// report writers.
type BuildReport struct {
	// === Run Identity ===

	// RunID uniquely identifies this run. Generated at report creation.
	RunID string `json:"run_id"`

	// Title is the build title the run was configured with.
	Title string `json:"title"`

	// DatasetPath is where the export stage writes the visualization
	// dataset (e.g. "auspice/nextstrain-analysis.json").
	DatasetPath string `json:"dataset_path"`

	// === Timing ===

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended, successfully or not.
	FinishedAt time.Time `json:"finished_at"`

	// === Outcome ===

	// Success is true only when every stage completed.
	Success bool `json:"success"`

	// ArtifactsComplete is true once all artifact-producing stages have
	// completed. It stays true when only the final viewer launch fails,
	// because the exported dataset exists and can be served later.
	ArtifactsComplete bool `json:"artifacts_complete"`

	// FailedStage names the stage that aborted the run, empty on success.
	FailedStage string `json:"failed_stage,omitempty"`

	// ErrorMessage is the failure description, empty on success.
	ErrorMessage string `json:"error_message,omitempty"`

	// DryRun is true when the commands were printed but not executed.
	DryRun bool `json:"dry_run,omitempty"`

	// === Stage Results ===

	// Stages holds per-stage results in execution order.
	Stages []StageResult `json:"stages"`
}

// NewBuildReport creates a BuildReport for a run starting now, with a fresh
// run ID.
func NewBuildReport(title, datasetPath string) *BuildReport {
	return &BuildReport{
		RunID:       uuid.NewString(),
		Title:       title,
		DatasetPath: datasetPath,
		StartedAt:   time.Now(),
		Stages:      make([]StageResult, 0, 9),
	}
}

// AddStage appends a stage result to the report.
func (r *BuildReport) AddStage(result StageResult) {
	r.Stages = append(r.Stages, result)
}

// Finish marks the run as ended with the given outcome.
func (r *BuildReport) Finish(success bool) {
	r.FinishedAt = time.Now()
	r.Success = success
}

// Elapsed returns the total wall-clock duration of the run. For a run still
// in progress it returns the time since the run started.
func (r *BuildReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
