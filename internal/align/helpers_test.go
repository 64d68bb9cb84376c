package align

import (
	"fmt"
	"testing"

	"stampatlas/internal/transcript"
)

// buildStore returns a transcript of n lines. Unlisted lines are filler turns
// carrying a timestamp derived from their index.
func buildStore(t *testing.T, n int, lines map[int]string) *transcript.Store {
	t.Helper()
	raw := make([]string, n)
	for i := 1; i <= n; i++ {
		if text, ok := lines[i]; ok {
			raw[i-1] = text
			continue
		}
		raw[i-1] = fmt.Sprintf("00:%02d:%02d-0 PA9: filler turn\n", i/60, i%60)
	}
	return transcript.NewStore(raw)
}

func lineNumbers(slots []Slot) []int {
	out := make([]int, len(slots))
	for i, s := range slots {
		out[i] = s.Line
	}
	return out
}
