package report

import (
	"io"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/strainkit/strainkit/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, e.g. attaching a
// build summary to a pull request or lab notebook.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.BuildReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeStages(md, report)

	if !report.DryRun {
		w.writeDurationChart(md, report)
	}
	w.writeArtifacts(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.BuildReport) {
	md.H1("Strainkit Build Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Title", report.Title},
			{"Run ID", "`" + report.RunID + "`"},
			{"Dataset", "`" + report.DatasetPath + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", formatDuration(report.Elapsed())},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on the run outcome.
func (w *MarkdownWriter) getStatusText(report *model.BuildReport) string {
	switch {
	case report.DryRun:
		return "📝 Dry Run"
	case report.Success:
		return "✅ Complete"
	case report.ArtifactsComplete:
		return "⚠️ Failed at " + report.FailedStage + " (dataset built)"
	default:
		return "❌ Failed at " + report.FailedStage
	}
}

// writeAlert writes an outcome alert.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.BuildReport) {
	switch {
	case report.DryRun:
		md.Note("This was a dry run. The commands below were recorded but not executed.")
	case report.Success:
		md.Tip("All stages completed. The dataset is ready to view.")
	case report.ArtifactsComplete:
		md.Warningf(
			"The %s stage failed, but the dataset artifacts were fully built: %s",
			report.FailedStage, report.ErrorMessage,
		)
	default:
		md.Cautionf(
			"The build failed at the %s stage: %s",
			report.FailedStage, report.ErrorMessage,
		)
	}
	md.PlainText("")
}

// writeStages writes the per-stage table.
func (w *MarkdownWriter) writeStages(md *markdown.Markdown, report *model.BuildReport) {
	md.H2("Stages")
	md.PlainText("")

	if len(report.Stages) == 0 {
		md.PlainText("No stages were executed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Stages))
	for i, stage := range report.Stages {
		status := "✅"
		if report.DryRun {
			status = "📝 planned"
		} else if !stage.Succeeded() {
			status = "❌"
		}

		rows[i] = []string{
			stage.Name,
			status,
			formatDuration(stage.Duration),
			"`" + truncateString(stage.Command, 80) + "`",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Status", "Duration", "Command"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDurationChart writes a mermaid pie chart of stage durations.
func (w *MarkdownWriter) writeDurationChart(md *markdown.Markdown, report *model.BuildReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Stage Duration Breakdown"),
		piechart.WithShowData(true),
	)

	plotted := false
	for _, stage := range report.Stages {
		ms := stage.Duration.Milliseconds()
		if ms <= 0 {
			continue
		}
		chart.LabelAndIntValue(stage.Name, uint64(ms))
		plotted = true
	}
	if !plotted {
		return
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeArtifacts writes the produced artifacts section.
func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, report *model.BuildReport) {
	md.H2("Artifacts")
	md.PlainText("")

	if !report.ArtifactsComplete {
		md.PlainText("The run ended before the dataset was exported.")
		md.PlainText("")
		return
	}

	var outputs []string
	for _, stage := range report.Stages {
		for _, output := range stage.Outputs {
			outputs = append(outputs, "`"+output+"`")
		}
	}
	if len(outputs) == 0 {
		outputs = []string{"`" + report.DatasetPath + "`"}
	}

	md.BulletList(outputs...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [strainkit](https://github.com/strainkit/strainkit)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
