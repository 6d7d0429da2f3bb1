package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/strainkit/strainkit/internal/extract"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract sequences from a FASTA archive by identifier",
		Long: `Extract copies the records whose identifier appears in an ID list from
an input FASTA archive into a new archive, preserving input order.

Identifiers are matched against the first whitespace-delimited token of
each FASTA header line. IDs absent from the input are ignored; a list
matching nothing produces an empty output file rather than an error.

Examples:
  # Subset an archive by accession number
  strainkit extract --ids keep.txt --input all.fasta --output subset.fasta

  # Pull the strains a build force-includes into their own archive
  strainkit extract --ids configs/include.txt --input sequences.fasta --output included.fasta`,
		Args: cobra.NoArgs,
		RunE: runExtractCmd,
	}

	cmd.Flags().String("ids", "", "File containing the list of sequence IDs, one per line (required)")
	cmd.Flags().String("input", "", "Input FASTA file (required)")
	cmd.Flags().String("output", "", "Output FASTA file for matched sequences (required)")

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, _ []string) error {
	opts, err := extractOptions(cmd)
	if err != nil {
		return err
	}

	// Set up structured logging
	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

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

	extractor := extract.New(extract.WithLogger(logger))
	matched, err := extractor.Extract(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Extracted %d sequences to %s\n", matched, opts.Output)
	return nil
}

// extractOptions reads the extract flags. All three paths are required.
func extractOptions(cmd *cobra.Command) (extract.Options, error) {
	var opts extract.Options
	var err error

	opts.IDFile, err = cmd.Flags().GetString("ids")
	if err != nil {
		return opts, err
	}

	opts.Input, err = cmd.Flags().GetString("input")
	if err != nil {
		return opts, err
	}

	opts.Output, err = cmd.Flags().GetString("output")
	if err != nil {
		return opts, err
	}

	if opts.IDFile == "" {
		return opts, errors.New("no ID list provided (--ids is required)")
	}
	if opts.Input == "" {
		return opts, errors.New("no input archive provided (--input is required)")
	}
	if opts.Output == "" {
		return opts, errors.New("no output path provided (--output is required)")
	}

	return opts, nil
}
