package align

import (
	"fmt"
	"strconv"
	"strings"
)

// Span is an inclusive, 1-based line range claimed by the annotation tool.
type Span struct {
	Start int
	End   int
}

// Len returns the number of lines the span covers.
func (s Span) Len() int {
	return s.End - s.Start + 1
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// ParseSpan parses a loc attribute of the form "!start@N, end@M!". The
// trailing "!" is optional.
func ParseSpan(loc string) (Span, error) {
	trimmed := strings.Trim(loc, "!")
	startPart, endPart, ok := strings.Cut(trimmed, ",")
	if !ok || strings.Contains(endPart, ",") {
		return Span{}, fmt.Errorf("%w: %q: expected two comma-separated bounds", ErrMalformedSpan, loc)
	}
	start, err := parseBound(startPart)
	if err != nil {
		return Span{}, fmt.Errorf("%w: %q: start: %v", ErrMalformedSpan, loc, err)
	}
	end, err := parseBound(endPart)
	if err != nil {
		return Span{}, fmt.Errorf("%w: %q: end: %v", ErrMalformedSpan, loc, err)
	}
	if start < 1 {
		return Span{}, fmt.Errorf("%w: %q: start line %d is before line 1", ErrMalformedSpan, loc, start)
	}
	if start > end {
		return Span{}, fmt.Errorf("%w: %q: start %d is after end %d", ErrMalformedSpan, loc, start, end)
	}
	return Span{Start: start, End: end}, nil
}

func parseBound(part string) (int, error) {
	_, value, ok := strings.Cut(part, "@")
	if !ok {
		return 0, fmt.Errorf("missing '@' in %q", strings.TrimSpace(part))
	}
	value, _, _ = strings.Cut(value, "@")
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("line number %q", strings.TrimSpace(value))
	}
	return n, nil
}
