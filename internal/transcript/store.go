package transcript

import (
	"errors"
	"fmt"
)

// ErrNoTimestamp reports a scan that reached a transcript bound without
// finding a timestamped line.
var ErrNoTimestamp = errors.New("no timestamp found before transcript bound")

// Line is one positional transcript record.
type Line struct {
	Index int
	Text  string
}

// Store is an immutable, 1-indexed sequence of raw transcript lines.
// Position 0 is an empty sentinel.
type Store struct {
	lines []string
}

// NewStore builds a store from raw lines in file order. lines[0] becomes
// line 1.
func NewStore(lines []string) *Store {
	buf := make([]string, 0, len(lines)+1)
	buf = append(buf, "")
	buf = append(buf, lines...)
	return &Store{lines: buf}
}

// Len returns the number of real lines.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lines) - 1
}

// Line returns the raw text at a 1-based index.
func (s *Store) Line(index int) (string, bool) {
	if s == nil || index < 1 || index >= len(s.lines) {
		return "", false
	}
	return s.lines[index], true
}

// Lines returns every real line with its index.
func (s *Store) Lines() []Line {
	if s == nil {
		return nil
	}
	out := make([]Line, 0, s.Len())
	for i := 1; i < len(s.lines); i++ {
		out = append(out, Line{Index: i, Text: s.lines[i]})
	}
	return out
}

// Stamp returns the leading timestamp token of a line, if any.
func (s *Store) Stamp(index int) (string, bool) {
	line, ok := s.Line(index)
	if !ok {
		return "", false
	}
	stamp, _, ok := SplitLine(line)
	return stamp, ok
}

// NextTimestamp scans forward from index (exclusive) and returns the first
// timestamp token found together with its line.
func (s *Store) NextTimestamp(index int) (string, int, error) {
	for i := index + 1; i <= s.Len(); i++ {
		if stamp, ok := s.Stamp(i); ok {
			return stamp, i, nil
		}
	}
	return "", 0, fmt.Errorf("%w: forward from line %d of %d", ErrNoTimestamp, index, s.Len())
}

// PreviousTimestamp scans backward from index (exclusive) and returns the
// first timestamp token found together with its line.
func (s *Store) PreviousTimestamp(index int) (string, int, error) {
	if index > s.Len()+1 {
		index = s.Len() + 1
	}
	for i := index - 1; i >= 1; i-- {
		if stamp, ok := s.Stamp(i); ok {
			return stamp, i, nil
		}
	}
	return "", 0, fmt.Errorf("%w: backward from line %d", ErrNoTimestamp, index)
}
