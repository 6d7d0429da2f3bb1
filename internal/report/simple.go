package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/strainkit/strainkit/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with a per-stage status
// listing and clear section formatting. It works in all terminals and
// pipes cleanly to files.
type SimpleWriter struct {
	baseWriter

	// verbose enables per-stage command lines and artifact lists.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.BuildReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)

	if report.DryRun {
		w.writePlan(&sb, report)
	} else {
		w.writeStages(&sb, report)
		w.writeFailure(&sb, report)
		w.writeArtifacts(&sb, report)
	}

	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.BuildReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      STRAINKIT BUILD REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Title:    %s\n", report.Title))
	sb.WriteString(fmt.Sprintf("Run ID:   %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Dataset:  %s\n", report.DatasetPath))
	sb.WriteString(fmt.Sprintf("Started:  %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:  %s\n", formatDuration(report.Elapsed())))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", statusText(report)))
	sb.WriteString("\n")
}

// statusText summarizes the run outcome in one line.
func statusText(report *model.BuildReport) string {
	switch {
	case report.DryRun:
		return "Dry run (commands recorded, nothing executed)"
	case report.Success:
		return "Complete"
	case report.ArtifactsComplete:
		return fmt.Sprintf("FAILED at %s (dataset artifacts are complete)", report.FailedStage)
	default:
		return fmt.Sprintf("FAILED at %s", report.FailedStage)
	}
}

// writeStages writes the per-stage status listing.
func (w *SimpleWriter) writeStages(sb *strings.Builder, report *model.BuildReport) {
	if len(report.Stages) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("STAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, stage := range report.Stages {
		mark := "✓"
		if !stage.Succeeded() {
			mark = "✗"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %-10s %-42s %9s\n",
			mark, stage.Name, stage.Description, formatDuration(stage.Duration)))

		if w.verbose {
			sb.WriteString(fmt.Sprintf("        $ %s\n", stage.Command))
			for _, output := range stage.Outputs {
				sb.WriteString(fmt.Sprintf("        -> %s\n", output))
			}
		}
	}
	sb.WriteString("\n")
}

// writePlan writes the recorded commands of a dry run.
func (w *SimpleWriter) writePlan(sb *strings.Builder, report *model.BuildReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PLANNED COMMANDS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for i, stage := range report.Stages {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, stage.Command))
	}
	sb.WriteString("\n")
}

// writeFailure writes the failure details section.
func (w *SimpleWriter) writeFailure(sb *strings.Builder, report *model.BuildReport) {
	if report.Success {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILURE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Stage: %s\n", report.FailedStage))
	sb.WriteString(fmt.Sprintf("  Error: %s\n", report.ErrorMessage))
	sb.WriteString("\n")
}

// writeArtifacts writes the produced artifacts section.
func (w *SimpleWriter) writeArtifacts(sb *strings.Builder, report *model.BuildReport) {
	if !report.ArtifactsComplete {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ARTIFACTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Dataset: %s\n", report.DatasetPath))
	sb.WriteString(fmt.Sprintf("  View it with: nextstrain view %s%c\n",
		filepath.Dir(report.DatasetPath), filepath.Separator))
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by strainkit\n")
	sb.WriteString("https://github.com/strainkit/strainkit\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// formatDuration renders a duration for display. Sub-10ms noise is
// rounded away. Zero reads as not measured.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(10 * time.Millisecond).String()
}
