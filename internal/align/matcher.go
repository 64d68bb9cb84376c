package align

import (
	"fmt"
	"strings"

	"stampatlas/internal/textutil"
	"stampatlas/internal/transcript"
)

// Quotation is one annotated excerpt as handed over by the document layer.
type Quotation struct {
	ID string
	// Label is the short display name used as the last-resort match key.
	Label string
	// Loc is the raw claimed span, e.g. "!start@61, end@62!".
	Loc string
	// Paragraphs holds the rendered text, one entry per claimed line.
	// Empty entries stand for blank lines.
	Paragraphs []string
}

// Slot is one paragraph placed on a transcript line.
type Slot struct {
	Line int
	Text string
}

// Match is a fully placed quotation.
type Match struct {
	Span  Span
	Slots []Slot
	Rigor textutil.Rigor
}

// StartLine returns the first matched transcript line.
func (m Match) StartLine() int {
	return m.Slots[0].Line
}

// EndLine returns the last matched transcript line.
func (m Match) EndLine() int {
	return m.Slots[len(m.Slots)-1].Line
}

// Matcher places quotations on transcript lines. Normalized transcript keys
// are computed once at construction; a Matcher is read-only afterwards.
type Matcher struct {
	store    *transcript.Store
	maxRigor textutil.Rigor
	keys     [textutil.MaxRigor + 1][]string
}

// NewMatcher prepares a matcher over store that escalates up to maxRigor.
// Out-of-range values are clamped.
func NewMatcher(store *transcript.Store, maxRigor textutil.Rigor) *Matcher {
	if maxRigor < textutil.RigorWhitespace {
		maxRigor = textutil.RigorWhitespace
	}
	if maxRigor > textutil.MaxRigor {
		maxRigor = textutil.MaxRigor
	}
	m := &Matcher{store: store, maxRigor: maxRigor}
	for rigor := textutil.RigorWhitespace; rigor <= textutil.MaxRigor; rigor++ {
		keys := make([]string, store.Len()+1)
		for i := 1; i <= store.Len(); i++ {
			line, _ := store.Line(i)
			keys[i] = lineKey(line, rigor)
		}
		m.keys[rigor] = keys
	}
	return m
}

// lineKey normalizes the text after a line's timestamp. Transcript lines have
// no label, so the label rigor compares them with alphanumeric removals.
func lineKey(line string, rigor textutil.Rigor) string {
	_, rest, _ := transcript.SplitLine(line)
	if rigor == textutil.RigorLabel {
		rigor = textutil.RigorAlphanumeric
	}
	return textutil.Normalize(rest, rigor)
}

// quotationKeys returns one key per slot. Paragraphs past the slot count are
// ignored and missing paragraphs count as blank lines.
func quotationKeys(q Quotation, slots int, rigor textutil.Rigor) []string {
	keys := make([]string, slots)
	for i := range keys {
		if i >= len(q.Paragraphs) || q.Paragraphs[i] == "" {
			continue
		}
		text := q.Paragraphs[i]
		if rigor == textutil.RigorLabel {
			text = q.Label
		}
		keys[i] = textutil.Normalize(text, rigor)
	}
	return keys
}

// Find places every paragraph of q, trying each rigor level in turn and
// returning the first complete placement. A malformed span fails with
// ErrMalformedSpan; exhausting all levels fails with ErrMatchNotFound.
func (m *Matcher) Find(q Quotation) (Match, error) {
	span, err := ParseSpan(q.Loc)
	if err != nil {
		return Match{}, fmt.Errorf("quotation %s: %w", q.ID, err)
	}
	for rigor := textutil.RigorWhitespace; rigor <= m.maxRigor; rigor++ {
		// A blank label would match any line.
		if rigor == textutil.RigorLabel && textutil.Normalize(q.Label, rigor) == "" {
			continue
		}
		if slots, ok := m.place(span, quotationKeys(q, span.Len(), rigor), rigor); ok {
			return Match{Span: span, Slots: slots, Rigor: rigor}, nil
		}
	}
	return Match{}, fmt.Errorf("%w: quotation %s span %s (tried rigor 0-%d)", ErrMatchNotFound, q.ID, span, int(m.maxRigor))
}

// place walks a single cursor forward from the span start. Each key takes the
// first line at or after the cursor whose key contains it; every line
// examined is consumed whether or not it matched.
func (m *Matcher) place(span Span, keys []string, rigor textutil.Rigor) ([]Slot, bool) {
	lines := m.keys[rigor]
	slots := make([]Slot, 0, len(keys))
	cursor := span.Start
	for _, key := range keys {
		placed := false
		for !placed && cursor < len(lines) {
			if strings.Contains(lines[cursor], key) {
				raw, _ := m.store.Line(cursor)
				slots = append(slots, Slot{Line: cursor, Text: raw})
				placed = true
			}
			cursor++
		}
		if !placed {
			return nil, false
		}
	}
	return slots, true
}
