// Package entrez downloads nucleotide sequences from the NCBI Entrez
// E-utilities.
//
// This package contains two layers:
//   - Client: A thin EFetch wrapper that retrieves one accession as
//     FASTA text
//   - Fetcher: A batch downloader that writes one file per accession,
//     records per-accession failures, and keeps going
//
// The E-utilities ask clients to identify themselves (tool and email
// parameters) and to stay under a request-rate ceiling. The Fetcher
// enforces an inter-request delay and defaults to sequential downloads;
// an API key raises the ceiling NCBI grants and can be combined with a
// higher concurrency limit.
package entrez
