package idlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Set holds identifiers for membership checks.
type Set map[string]struct{}

// NewSet builds a Set from a list of identifiers. Duplicates collapse.
func NewSet(ids []string) Set {
	set := make(Set, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is in the set.
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers in the set.
func (s Set) Len() int {
	return len(s)
}

// Load reads a line-per-entry identifier file and returns the entries in
// file order. Blank lines are skipped and surrounding whitespace is
// trimmed. Duplicates are preserved.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open id list: %w", err)
	}
	defer f.Close()

	ids, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read id list %s: %w", path, err)
	}
	return ids, nil
}

// LoadSet reads a line-per-entry identifier file into a Set.
func LoadSet(path string) (Set, error) {
	ids, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewSet(ids), nil
}

// Parse reads identifiers from r, one per line. A leading byte order mark
// is stripped, and UTF-16 encoded input is decoded transparently.
func Parse(r io.Reader) ([]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	var ids []string
	scanner := bufio.NewScanner(decoded)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
