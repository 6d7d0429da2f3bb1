package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/strainkit/strainkit/internal/config"
	"github.com/strainkit/strainkit/internal/database"
	"github.com/strainkit/strainkit/internal/model"
	"github.com/strainkit/strainkit/internal/report"
)

// NewRunsCmd creates the runs command.
// This command browses the build history stored in the database.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Browse the recorded build history",
		Long: `Runs lists the builds recorded in the history database, newest first.

Every completed 'strainkit build' (except dry runs and builds invoked
with --no-save) is recorded with its per-stage results. Pass a run ID,
or any unique prefix of one, to print that run's full report; the
keyword 'latest' selects the most recent run.

Examples:
  # List the most recent runs
  strainkit runs

  # List more history
  strainkit runs --limit 50

  # Show one run in detail (ID prefix is enough)
  strainkit runs 1f3a2b90

  # Show the most recent run
  strainkit runs latest

  # Machine-readable output
  strainkit runs --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunsCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if len(args) == 1 {
		return showRun(ctx, db, args[0], jsonOutput)
	}
	return listRuns(ctx, db, limit, jsonOutput)
}

// listRuns prints a table of the most recent recorded runs.
func listRuns(ctx context.Context, db *database.RunDB, limit int, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded in the database.")
		fmt.Println("\nUse 'strainkit build' to run an analysis.")
		return nil
	}

	fmt.Printf("Recent runs (%d):\n\n", len(runs))
	fmt.Printf("  %-10s  %-20s  %-8s  %6s  %s\n", "Run", "Date", "Status", "Stages", "Title")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, meta := range runs {
		fmt.Printf("  %-10s  %-20s  %-8s  %6d  %s\n",
			shortRunID(meta.UUID),
			meta.Started.Format("2006-01-02 15:04:05"),
			runStatus(meta),
			meta.StageCount,
			meta.Title,
		)
	}

	fmt.Println("\nUse 'strainkit runs <run>' to see the full report for a run.")
	return nil
}

// showRun prints the full report of a single recorded run.
// The ref may be a run ID, a unique prefix of one, a database row ID, or
// the keyword "latest".
func showRun(ctx context.Context, db *database.RunDB, ref string, jsonOutput bool) error {
	var buildReport *model.BuildReport
	var err error

	if ref == "latest" {
		buildReport, err = db.LatestRun(ctx)
	} else {
		buildReport, err = db.GetRun(ctx, ref)
	}
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", ref, err)
	}
	if buildReport == nil {
		return fmt.Errorf("no run found for %q (use 'strainkit runs' to list recorded runs)", ref)
	}

	if jsonOutput {
		writer := report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
		_, err := writer.Write(buildReport)
		return err
	}

	// Stored runs are shown with commands included; that is usually what
	// a post-mortem is after.
	writer := report.NewSimpleWriter(os.Stdout, report.WithVerbose(true))
	_, err = writer.Write(buildReport)
	return err
}

// runStatus condenses a run's outcome into one table cell.
func runStatus(meta database.RunMetadata) string {
	switch {
	case meta.DryRun:
		return "dry-run"
	case meta.Success:
		return "ok"
	case meta.ArtifactsComplete:
		return "partial"
	default:
		return "failed"
	}
}

// shortRunID returns the leading segment of a run ID, enough to reference
// the run uniquely in day-to-day use.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
