// Package extract filters a FASTA archive down to a named subset of
// sequences.
//
// An extraction reads an identifier list (one ID per line), streams the
// input archive record by record, and writes every record whose ID is in
// the list to the output file. Records keep their input order and their
// header descriptions. A run with no matches still produces an empty
// output file.
package extract
