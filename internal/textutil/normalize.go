package textutil

import (
	"fmt"
	"strings"
)

// Rigor controls how aggressively text is collapsed before comparison.
type Rigor int

const (
	// RigorWhitespace removes whitespace and keeps every other character.
	RigorWhitespace Rigor = iota
	// RigorAlphanumeric additionally removes everything that is not an ASCII
	// letter or digit.
	RigorAlphanumeric
	// RigorConsonants additionally removes ASCII vowels.
	RigorConsonants
	// RigorLabel is the last resort: quotation text is replaced by the
	// quotation's display label, collapsed with RigorAlphanumeric removals.
	RigorLabel
)

// MaxRigor is the highest supported rigor level.
const MaxRigor = RigorLabel

// String returns a short name for the rigor level.
func (r Rigor) String() string {
	switch r {
	case RigorWhitespace:
		return "whitespace"
	case RigorAlphanumeric:
		return "alphanumeric"
	case RigorConsonants:
		return "consonants"
	case RigorLabel:
		return "label"
	default:
		return fmt.Sprintf("rigor(%d)", int(r))
	}
}

// Valid reports whether r is a supported level.
func (r Rigor) Valid() bool {
	return r >= RigorWhitespace && r <= MaxRigor
}

type byteSet [256]bool

func newByteSet(pred func(b byte) bool) byteSet {
	var set byteSet
	for i := range set {
		set[i] = pred(byte(i))
	}
	return set
}

func (s *byteSet) has(r rune) bool {
	if r < 0 || r > 0xff {
		return false
	}
	return s[r]
}

var (
	whitespace = newByteSet(func(b byte) bool {
		switch b {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return true
		}
		return false
	})
	nonAlphanumerics = newByteSet(func(b byte) bool {
		return !(b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9')
	})
	vowels = newByteSet(func(b byte) bool {
		return strings.IndexByte("AaEeIiOoUu", b) >= 0
	})
)

// Normalize collapses text into a comparison key at the given rigor.
// RigorLabel applies the RigorAlphanumeric removals; substituting the label
// for the quotation text is the caller's concern.
func Normalize(text string, rigor Rigor) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if whitespace.has(r) {
			continue
		}
		if rigor >= RigorAlphanumeric && (r > 0x7f || nonAlphanumerics.has(r)) {
			continue
		}
		if rigor == RigorConsonants && vowels.has(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
