// Package textutil provides the comparison keys used to line up annotation
// quotations with transcript lines.
//
// The primary use cases are:
//   - Collapsing a transcript line or quotation paragraph into a canonical key
//     at an escalating rigor level
//   - Scoring near misses between keys when no rigor level produced a match
//
// Rigor levels only ever remove characters. Each level keeps the removals of
// the levels below it, so a key at rigor N is always a subsequence of the key
// at rigor N-1 for the same text.
package textutil
