// Package fasta provides streaming FASTA parsing and writing.
//
// This package contains the following main types:
//   - Record: A single sequence entry (ID, description, sequence)
//   - Reader: Streams records from an input without loading the whole file
//   - Writer: Emits records with line-wrapped sequence data
//
// The parser is conservative: text before the first header line is skipped,
// blank lines are ignored, and both LF and CRLF line endings are accepted.
// Sequence bytes are preserved as read, without case folding.
package fasta
