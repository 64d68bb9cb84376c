// Package align locates annotated quotations inside a timestamped transcript
// and derives their start and estimated end times.
//
// Annotation tools report approximate line numbers and re-render quoted text,
// so a quotation's claimed span is only a starting point. The Matcher walks
// forward from the claimed start, comparing normalized keys by substring
// containment and retrying the whole quotation at escalating rigor until every
// paragraph is placed. The resolver then reads timestamps from the matched
// lines, falling back to neighbouring lines when needed, and the Merger runs
// both over a batch while collecting quotations that could not be placed.
//
// Everything here is a pure computation over in-memory inputs: no I/O happens
// inside the matching loops and results are identical across re-runs.
package align
