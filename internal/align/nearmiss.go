package align

import (
	"stampatlas/internal/textutil"
)

// NearMiss points at the transcript line most similar to an unmatched
// quotation's first non-empty paragraph.
type NearMiss struct {
	Line  int
	Score float64
	Text  string
}

// NearMissOptions bounds the near-miss search. A zero Window disables it.
type NearMissOptions struct {
	Window    int
	Threshold float64
}

// NearMiss scores lines within the claimed span widened by opts.Window and
// returns the closest one, or nil when nothing reaches opts.Threshold.
func (m *Matcher) NearMiss(q Quotation, opts NearMissOptions) *NearMiss {
	if opts.Window <= 0 {
		return nil
	}
	span, err := ParseSpan(q.Loc)
	if err != nil {
		return nil
	}
	var target string
	for _, p := range q.Paragraphs {
		if key := textutil.Normalize(p, textutil.RigorAlphanumeric); key != "" {
			target = key
			break
		}
	}
	if target == "" {
		return nil
	}
	lo := max(1, span.Start-opts.Window)
	hi := min(m.store.Len(), span.End+opts.Window)
	if lo > hi {
		return nil
	}
	best, ok := textutil.BestCandidate(target, m.keys[textutil.RigorAlphanumeric][lo:hi+1], opts.Threshold)
	if !ok {
		return nil
	}
	line := lo + best.Index
	raw, _ := m.store.Line(line)
	return &NearMiss{Line: line, Score: best.Score, Text: raw}
}
