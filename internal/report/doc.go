// Package report provides build report rendering.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for documentation and sharing
//
// Report data structures live in the model package; keeping the rendering
// here allows adding output formats without touching the core types.
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
