package fasta

import (
	"fmt"
	"io"
)

// DefaultLineWidth is the sequence wrap column used when no other width
// is configured. It matches the layout of records served by GenBank.
const DefaultLineWidth = 60

// Writer emits FASTA records with line-wrapped sequence data.
type Writer struct {
	w     io.Writer
	width int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithLineWidth sets the sequence wrap column. A width of zero or less
// disables wrapping.
func WithLineWidth(width int) WriterOption {
	return func(w *Writer) {
		w.width = width
	}
}

// NewWriter returns a Writer that emits records to w.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	fw := &Writer{
		w:     w,
		width: DefaultLineWidth,
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw
}

// Write emits a single record.
func (w *Writer) Write(rec Record) error {
	if _, err := fmt.Fprintf(w.w, ">%s\n", rec.Header()); err != nil {
		return err
	}

	seq := rec.Seq
	if w.width <= 0 {
		if len(seq) == 0 {
			return nil
		}
		_, err := fmt.Fprintf(w.w, "%s\n", seq)
		return err
	}

	for len(seq) > 0 {
		n := w.width
		if n > len(seq) {
			n = len(seq)
		}
		if _, err := fmt.Fprintf(w.w, "%s\n", seq[:n]); err != nil {
			return err
		}
		seq = seq[n:]
	}
	return nil
}

// WriteAll emits every record in order.
func (w *Writer) WriteAll(records []Record) error {
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
