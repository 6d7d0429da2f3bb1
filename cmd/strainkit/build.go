package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/strainkit/strainkit/internal/config"
	"github.com/strainkit/strainkit/internal/database"
	"github.com/strainkit/strainkit/internal/log"
	"github.com/strainkit/strainkit/internal/model"
	"github.com/strainkit/strainkit/internal/pipeline"
	"github.com/strainkit/strainkit/internal/report"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the full Nextstrain analysis pipeline",
		Long: `Build runs the nine augur stages of a Nextstrain analysis in order:

  index, filter, align, tree, refine, traits, ancestral, export

and finishes by launching 'nextstrain view' on the exported dataset.
Each stage consumes artifacts produced by its predecessors; the first
failing stage aborts the build. The external augur and nextstrain
executables must be on PATH.

The sequence archive, reference, and metadata inputs are required. They
can be given as flags or pinned in a .strainkit profile; flags win over
profile values.

Examples:
  # Minimal build
  strainkit build -s sequences.fasta -f reference.gb -m metadata.tsv

  # Custom title and thread count
  strainkit build -s sequences.fasta -f reference.gb -m metadata.tsv \
    -T "West Nile 4 Lineage" -t 16

  # Preview the commands without running anything
  strainkit build --dry-run -s sequences.fasta -f reference.gb -m metadata.tsv

  # Bound each external tool invocation
  strainkit build --stage-timeout 30m -s sequences.fasta -f reference.gb -m metadata.tsv

Profile file (.strainkit) example:
  sequences: data/sequences.fasta
  reference: data/reference.gb
  metadata: data/metadata.tsv
  title: West Nile 4 Lineage
  threads: 16
  clockRate: 0.0008`,
		Args: cobra.NoArgs,
		RunE: runBuildCmd,
	}

	// Input flags
	cmd.Flags().StringP("sequences", "s", "",
		"Path to the FASTA file containing sequences (required unless set in a profile)")
	cmd.Flags().StringP("reference", "f", "",
		"Path to the reference sequence file, FASTA or GenBank format (required unless set in a profile)")
	cmd.Flags().StringP("metadata", "m", "",
		"Path to the sequence metadata file, TSV format (required unless set in a profile)")

	// Directory flags
	cmd.Flags().StringP("results", "r", config.DefaultResultsDir,
		"Directory to store intermediate results")
	cmd.Flags().StringP("configs", "c", config.DefaultConfigsDir,
		"Directory containing Nextstrain configs")

	// Analysis flags
	cmd.Flags().IntP("threads", "t", config.DefaultThreads,
		"Number of threads for alignment and tree building")
	cmd.Flags().StringP("lat-longs", "l", config.DefaultLatLongs,
		"Path to the latitudes and longitudes file")
	cmd.Flags().StringP("colors", "e", config.DefaultColors,
		"Path to the colors file")
	cmd.Flags().StringP("maintainers", "n", "",
		"Analysis maintained by (e.g. 'Name <URL>; Name2 <URL2>')")
	cmd.Flags().StringP("build-url", "b", "",
		"Build URL/repository to be displayed by auspice")
	cmd.Flags().StringP("include-where", "w", "",
		"Include samples matching this metadata condition (e.g. host=rat)")
	cmd.Flags().StringP("include-strains", "i", "",
		"File with a list of strains to include regardless of subsampling")
	cmd.Flags().StringP("title", "T", config.DefaultTitle,
		"Custom title for the Nextstrain build")

	// Profile file
	cmd.Flags().StringP("profile", "p", "",
		"Build profile path (default: .strainkit in current or home directory)")

	// Execution flags
	cmd.Flags().Duration("stage-timeout", 0,
		"Per-stage timeout for external tools (0 disables)")
	cmd.Flags().Bool("dry-run", false,
		"Print the resolved stage commands without executing anything")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().Bool("markdown", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not record this run in the history database")

	return cmd
}

// runBuildCmd executes the build command.
func runBuildCmd(cmd *cobra.Command, _ []string) error {
	// Build config from profile and flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// Resolve ${configs} templating, then validate
	cfg.ResolvePaths()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runBuild(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the profile file and cobra command flags.
// The profile is applied first and flags override it only when explicitly
// set, keeping the flag > profile > default layering.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	profilePath, err := cmd.Flags().GetString("profile")
	if err != nil {
		return nil, err
	}

	// If user explicitly specified a profile path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitProfile := profilePath != ""
	foundProfile := config.FindProfile(profilePath)

	if foundProfile != "" {
		profile, err := config.LoadProfile(foundProfile)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile %s: %w", foundProfile, err)
		}
		if err := profile.Apply(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply profile %s: %w", foundProfile, err)
		}
	} else if explicitProfile {
		return nil, fmt.Errorf("profile file not found: %s", profilePath)
	}

	if cmd.Flags().Changed("sequences") {
		cfg.Sequences, err = cmd.Flags().GetString("sequences")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("reference") {
		cfg.Reference, err = cmd.Flags().GetString("reference")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("metadata") {
		cfg.Metadata, err = cmd.Flags().GetString("metadata")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("results") {
		cfg.ResultsDir, err = cmd.Flags().GetString("results")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("configs") {
		cfg.ConfigsDir, err = cmd.Flags().GetString("configs")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("threads") {
		cfg.Threads, err = cmd.Flags().GetInt("threads")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("lat-longs") {
		cfg.LatLongs, err = cmd.Flags().GetString("lat-longs")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("colors") {
		cfg.Colors, err = cmd.Flags().GetString("colors")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("maintainers") {
		cfg.Maintainers, err = cmd.Flags().GetString("maintainers")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("build-url") {
		cfg.BuildURL, err = cmd.Flags().GetString("build-url")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("include-where") {
		cfg.IncludeWhere, err = cmd.Flags().GetString("include-where")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("include-strains") {
		cfg.IncludeStrains, err = cmd.Flags().GetString("include-strains")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("title") {
		cfg.Title, err = cmd.Flags().GetString("title")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("stage-timeout") {
		cfg.StageTimeout, err = cmd.Flags().GetDuration("stage-timeout")
		if err != nil {
			return nil, err
		}
	}

	// Flags without a profile counterpart are read unconditionally.
	cfg.DryRun, err = cmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The secure handler masks credential-shaped attributes, so a verbose run
// never echoes an NCBI API key into the terminal or a pasted log.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// runBuild executes the pipeline and renders the outcome.
func runBuild(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting build",
		"title", cfg.Title,
		"sequences", cfg.Sequences,
		"threads", cfg.Threads,
		"dryRun", cfg.DryRun,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled. Dry runs are never
	// recorded: nothing executed, so there is no outcome to keep.
	var db *database.RunDB
	if cfg.SaveToDB && !cfg.DryRun {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithNotify(stageBanner()),
	)

	if cfg.DryRun {
		fmt.Printf("Dry run: resolving %d stage commands for %q\n\n", p.StageCount(), cfg.Title)
	} else {
		fmt.Printf("Building %q (%d stages)\n\n", cfg.Title, p.StageCount())
	}

	startTime := time.Now()
	buildReport, runErr := p.Run(ctx, cfg)
	elapsed := time.Since(startTime)

	printOutcome(buildReport, elapsed)

	// Render and persist even on failure; partial results matter most then.
	if err := outputReport(cfg, buildReport); err != nil {
		logger.Error("report failed", "error", err)
	}
	if err := saveBuildReport(ctx, db, buildReport, logger); err != nil {
		logger.Error("failed to save build report", "error", err)
	}

	return runErr
}

// stageBanner returns a progress callback printing one colored line per
// stage before it executes.
func stageBanner() pipeline.NotifyFunc {
	banner := color.New(color.FgCyan, color.Bold)
	return func(current, total int, stage pipeline.Stage) {
		banner.Printf("[%d/%d] %s", current, total, stage.Name())
		fmt.Printf("  %s\n", stage.Description())
	}
}

// printOutcome prints a one-line colored summary of how the run ended.
// The detailed report follows from outputReport.
func printOutcome(buildReport *model.BuildReport, elapsed time.Duration) {
	fmt.Println()
	switch {
	case buildReport.DryRun && buildReport.Success:
		fmt.Printf("Dry run completed: %d commands resolved, nothing executed.\n\n", len(buildReport.Stages))
	case buildReport.Success:
		color.New(color.FgGreen, color.Bold).Printf("Build completed in %s\n", elapsed.Round(time.Millisecond))
		fmt.Println()
	case buildReport.ArtifactsComplete:
		color.New(color.FgYellow, color.Bold).Printf("Viewer failed after %s\n", elapsed.Round(time.Millisecond))
		fmt.Printf("The dataset was exported; serve it later with: nextstrain view %s%c\n\n",
			filepath.Dir(buildReport.DatasetPath), os.PathSeparator)
	default:
		color.New(color.FgRed, color.Bold).Printf("Build failed after %s\n", elapsed.Round(time.Millisecond))
		fmt.Println()
	}
}

// outputReport outputs the build report in the requested format.
func outputReport(cfg *config.Config, buildReport *model.BuildReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report plus the tool version that produced it)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(buildReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(buildReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(buildReport)
	return err
}

// saveBuildReport saves the build report to the database.
// If db is nil, this function is a no-op.
func saveBuildReport(ctx context.Context, db *database.RunDB, buildReport *model.BuildReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveBuildReport(ctx, buildReport); err != nil {
		return fmt.Errorf("failed to save build report: %w", err)
	}

	logger.Info("build report saved to database", "runID", buildReport.RunID)
	return nil
}
