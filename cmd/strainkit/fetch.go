package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/strainkit/strainkit/internal/entrez"
	"github.com/strainkit/strainkit/internal/idlist"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download genomes from GenBank by accession number",
		Long: `Fetch downloads the nucleotide record for every accession listed in a
file (one per line) through the NCBI EFetch service and writes each one
to the output directory as {accession}.fasta.

Each download is independent: a failing accession is reported and the
rest of the batch continues. The command exits 0 once the batch loop
completes, even when some accessions failed; the final summary lists
every failure.

NCBI asks clients to identify themselves and throttles anonymous ones
to three requests per second. Pass --email and --api-key to lift the
rate ceiling. Without an API key the default inter-request delay keeps
the batch under the anonymous limit.

Examples:
  # Download genomes listed in accessions.txt
  strainkit fetch -a accessions.txt -o genomes/

  # Identify yourself to NCBI and fetch four at a time
  strainkit fetch -a accessions.txt -o genomes/ \
    --email you@example.org --api-key $NCBI_API_KEY --concurrency 4`,
		Args: cobra.NoArgs,
		RunE: runFetchCmd,
	}

	cmd.Flags().StringP("accessions", "a", "",
		"Path to the file containing accession numbers, one per line (required)")
	cmd.Flags().StringP("output", "o", "",
		"Path to the output folder where FASTA files will be saved (required)")
	cmd.Flags().String("email", "",
		"Contact e-mail sent to NCBI with each request")
	cmd.Flags().String("api-key", "",
		"NCBI API key (defaults to the NCBI_API_KEY environment variable)")
	cmd.Flags().Duration("delay", entrez.DefaultDelay,
		"Pause between consecutive requests")
	cmd.Flags().Int("concurrency", 1,
		"Maximum number of concurrent downloads")
	cmd.Flags().DurationP("timeout", "t", entrez.DefaultTimeout,
		"HTTP timeout per request")

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, _ []string) error {
	// Set up structured logging
	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	accFile, err := cmd.Flags().GetString("accessions")
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if accFile == "" {
		return errors.New("no accession list provided (--accessions is required)")
	}
	if outDir == "" {
		return errors.New("no output folder provided (--output is required)")
	}

	fetcher, err := buildFetcher(cmd, logger)
	if err != nil {
		return err
	}

	accessions, err := idlist.Load(accFile)
	if err != nil {
		return fmt.Errorf("failed to read accession list: %w", err)
	}
	if len(accessions) == 0 {
		return fmt.Errorf("accession list is empty: %s", accFile)
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	fmt.Printf("Fetching %d sequences from GenBank...\n", len(accessions))

	summary, err := fetcher.FetchAll(ctx, accessions, outDir)
	if err != nil {
		// The batch itself could not run (bad output dir, interrupt).
		return err
	}

	printFetchSummary(summary, outDir)
	return nil
}

// buildFetcher assembles the EFetch client and batch fetcher from flags.
func buildFetcher(cmd *cobra.Command, logger *slog.Logger) (*entrez.Fetcher, error) {
	email, err := cmd.Flags().GetString("email")
	if err != nil {
		return nil, err
	}
	apiKey, err := cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		apiKey = os.Getenv("NCBI_API_KEY")
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	delay, err := cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	clientOpts := []entrez.ClientOption{entrez.WithTimeout(timeout)}
	if email != "" {
		clientOpts = append(clientOpts, entrez.WithEmail(email))
	}
	if apiKey != "" {
		clientOpts = append(clientOpts, entrez.WithAPIKey(apiKey))
	}

	return entrez.NewFetcher(entrez.NewClient(clientOpts...),
		entrez.WithConcurrency(concurrency),
		entrez.WithDelay(delay),
		entrez.WithLogger(logger),
	), nil
}

// printFetchSummary prints the batch outcome, listing every failed
// accession rather than collapsing partial failure into a success line.
func printFetchSummary(summary *entrez.Summary, outDir string) {
	fmt.Println()
	if summary.AllSucceeded() {
		color.New(color.FgGreen).Printf("All %d sequences downloaded to %s\n", summary.Succeeded, outDir)
		return
	}

	fmt.Printf("Downloaded %d of %d sequences to %s\n", summary.Succeeded, summary.Requested, outDir)
	color.New(color.FgRed).Printf("%d download(s) failed:\n", summary.Failed)
	for _, failure := range summary.Failures {
		fmt.Printf("  %s: %v\n", failure.Accession, failure.Err)
	}
}
