package textutil

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		rigor Rigor
		want  string
	}{
		{"whitespace only removal", " PA1: Oh /wow/ [@@]\n", RigorWhitespace, "PA1:Oh/wow/[@@]"},
		{"tabs and carriage returns", "a\tb\r\nc\v\fd", RigorWhitespace, "abcd"},
		{"alphanumeric strips punctuation", " PA1: Oh /wow/ [@@]\n", RigorAlphanumeric, "PA1Ohwow"},
		{"alphanumeric strips non-ascii", "café naïve", RigorAlphanumeric, "cafnave"},
		{"consonants strips vowels", "That I think would", RigorConsonants, "Thtthnkwld"},
		{"label uses alphanumeric removals", "PA1: I went to /Furman_Univers..", RigorLabel, "PA1IwenttoFurmanUnivers"},
		{"empty", "", RigorConsonants, ""},
		{"drawn out phonemes kept", "u:m tha:n", RigorAlphanumeric, "umthan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input, tt.rigor)
			if got != tt.want {
				t.Errorf("Normalize(%q, %v) = %q, want %q", tt.input, tt.rigor, got, tt.want)
			}
		})
	}
}

func TestNormalizeWhitespaceFreeIsIdentity(t *testing.T) {
	for _, input := range []string{"PA1:Oh/wow/[@@]", "((fMRI", "café", "[laughter]"} {
		if got := Normalize(input, RigorWhitespace); got != input {
			t.Errorf("Normalize(%q, 0) = %q, want unchanged", input, got)
		}
	}
}

func TestNormalizePunctuationOnlyCollapsesToEmpty(t *testing.T) {
	for _, input := range []string{"", " \t\n", "(.) -- @ [] //", "«» …"} {
		if got := Normalize(input, RigorAlphanumeric); got != "" {
			t.Errorf("Normalize(%q, 1) = %q, want empty", input, got)
		}
	}
}

func TestNormalizeHigherRigorIsSubsequence(t *testing.T) {
	text := "00 PA2: \t\t  [So] (1.8) /Yep/ so I was u:h-- I was in Massachusetts"
	prev := Normalize(text, RigorWhitespace)
	for _, rigor := range []Rigor{RigorAlphanumeric, RigorConsonants} {
		cur := Normalize(text, rigor)
		if !isSubsequence(cur, prev) {
			t.Fatalf("rigor %v key %q is not a subsequence of %q", rigor, cur, prev)
		}
		prev = cur
	}
}

func TestRigorString(t *testing.T) {
	if RigorLabel.String() != "label" {
		t.Fatalf("unexpected label name %q", RigorLabel.String())
	}
	if Rigor(9).String() != "rigor(9)" {
		t.Fatalf("unexpected fallback name %q", Rigor(9).String())
	}
	if Rigor(4).Valid() || !RigorWhitespace.Valid() {
		t.Fatal("unexpected validity")
	}
}

func isSubsequence(short, long string) bool {
	j := 0
	for i := 0; i < len(long) && j < len(short); i++ {
		if long[i] == short[j] {
			j++
		}
	}
	return j == len(short)
}
