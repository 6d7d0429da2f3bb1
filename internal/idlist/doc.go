// Package idlist loads line-oriented identifier files, such as sequence
// ID lists and GenBank accession lists.
//
// Files are expected to hold one identifier per line. The loader tolerates
// the artifacts of hand-maintained lists: a UTF-8 or UTF-16 byte order mark,
// Windows line endings, surrounding whitespace, and blank lines.
package idlist
