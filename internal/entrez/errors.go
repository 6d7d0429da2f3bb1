package entrez

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyAccession is returned when an accession string is empty.
	ErrEmptyAccession = errors.New("empty accession")

	// ErrInvalidResponse is returned when the E-utilities answer with a
	// body that is not FASTA data, such as an error page served with
	// status 200.
	ErrInvalidResponse = errors.New("response is not FASTA data")
)

// StatusError reports an unexpected HTTP status from the E-utilities.
type StatusError struct {
	// Accession is the accession the request was for.
	Accession string

	// StatusCode is the HTTP status code received.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("efetch %s: unexpected status %d", e.Accession, e.StatusCode)
}
