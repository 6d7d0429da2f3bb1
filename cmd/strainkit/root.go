// Package main provides the entry point for the strainkit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for strainkit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strainkit",
		Short: "Nextstrain build pipeline orchestrator",
		Long: `Strainkit drives a complete Nextstrain phylogenetic analysis.
It runs the augur stages (index, filter, align, tree, refine, traits,
ancestral, export) in order and finishes by launching the auspice viewer.

Companion commands prepare the inputs: 'fetch' downloads genomes from
GenBank by accession number, and 'extract' subsets a FASTA archive by
sequence identifier.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
