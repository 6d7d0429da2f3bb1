// Package main provides the entry point for the strainkit CLI.
//
// Strainkit orchestrates Nextstrain phylogenetic builds: it chains the augur
// analysis stages from raw sequences to an auspice visualization dataset,
// and ships companion utilities for preparing the input sequence archives.
//
// Usage:
//
//	strainkit build -s sequences.fasta -f reference.gb -m metadata.tsv
//	strainkit fetch -a accessions.txt -o genomes/
//
// See --help for all available options.
package main

// main is the entry point for strainkit.
func main() {
	Execute()
}
