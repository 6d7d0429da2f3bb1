package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Record is a single FASTA sequence entry.
type Record struct {
	// ID is the first whitespace-delimited token of the header line.
	ID string

	// Description is the remainder of the header line. May be empty.
	Description string

	// Seq holds the concatenated sequence bytes.
	Seq []byte
}

// Header reassembles the header line without the leading '>'.
func (r Record) Header() string {
	if r.Description == "" {
		return r.ID
	}
	return r.ID + " " + r.Description
}

// Reader streams FASTA records from an input.
type Reader struct {
	br *bufio.Reader

	// header holds the '>' line of the next record, already read while
	// scanning the previous record's sequence.
	header []byte

	err error
}

// NewReader returns a Reader that parses records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Read returns the next record. It returns io.EOF when the input is
// exhausted.
func (r *Reader) Read() (*Record, error) {
	if r.err != nil {
		return nil, r.err
	}

	header, err := r.nextHeader()
	if err != nil {
		r.err = err
		return nil, err
	}

	rec := parseHeader(header)
	for {
		line, err := r.readLine()
		if err == io.EOF {
			if len(line) > 0 && line[0] != '>' {
				rec.Seq = append(rec.Seq, line...)
			} else if len(line) > 0 {
				r.header = line
			}
			if r.header == nil {
				r.err = io.EOF
			}
			return rec, nil
		}
		if err != nil {
			r.err = err
			return nil, err
		}
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			r.header = line
			return rec, nil
		}
		rec.Seq = append(rec.Seq, line...)
	}
}

// nextHeader returns the header line of the next record, skipping any
// text before it.
func (r *Reader) nextHeader() ([]byte, error) {
	if r.header != nil {
		header := r.header
		r.header = nil
		return header, nil
	}
	for {
		line, err := r.readLine()
		if len(line) > 0 && line[0] == '>' {
			return line, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// readLine reads a single line with the trailing newline and any carriage
// return removed. A final unterminated line is returned together with io.EOF.
func (r *Reader) readLine() ([]byte, error) {
	line, err := r.br.ReadBytes('\n')
	line = bytes.TrimRight(line, "\r\n")
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return line, io.EOF
		}
		return nil, err
	}
	return line, nil
}

// parseHeader splits a '>' line into an ID and a description.
func parseHeader(line []byte) *Record {
	header := strings.TrimSpace(string(line[1:]))
	id, desc, _ := strings.Cut(header, " ")
	return &Record{
		ID:          id,
		Description: strings.TrimSpace(desc),
	}
}

// ReadAll parses every record from r.
func ReadAll(r io.Reader) ([]Record, error) {
	fr := NewReader(r)
	var records []Record
	for {
		rec, err := fr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
}
