package extract

import "errors"

var (
	// ErrInputNotFound is returned when the input FASTA file does not exist.
	ErrInputNotFound = errors.New("input FASTA file not found")

	// ErrInputEmpty is returned when the input FASTA file exists but has
	// no content.
	ErrInputEmpty = errors.New("input FASTA file is empty")

	// ErrIDListNotFound is returned when the identifier list file does
	// not exist.
	ErrIDListNotFound = errors.New("id list file not found")
)
