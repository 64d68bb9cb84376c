package align

import (
	"errors"
	"reflect"
	"testing"

	"stampatlas/internal/logging"
)

func sampleStore(t *testing.T) *Merger {
	t.Helper()
	store := buildStore(t, 30, map[int]string{
		10: "00:00:10-0 PA1: hello there\n",
		11: "continued speech\n",
		12: "\n",
		13: "more words follow\n",
		14: "00:00:20-5 PA2: next turn\n",
		20: "00:01:00-0 PA1: I tried intramural volleyball briefly\n",
	})
	return NewMerger(store,
		WithLogger(logging.NewNop()),
		WithNearMiss(NearMissOptions{Window: 3, Threshold: 0.8}),
	)
}

func sampleQuotations() []Quotation {
	return []Quotation{
		{ID: "q1_1", Label: "PA1: hello there", Loc: "!start@10, end@11!", Paragraphs: []string{"PA1: hello there", "continued speech"}},
		{ID: "q1_2", Loc: "!start@13, end@13!", Paragraphs: []string{"more words follow"}},
		{ID: "q1_3", Loc: "!start@19, end@19!", Paragraphs: []string{"I tryed intramurel volleybal briefly"}},
	}
}

func TestMergeBatch(t *testing.T) {
	merger := sampleStore(t)
	result, err := merger.Merge(sampleQuotations())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got := result.Matched(); got != 2 {
		t.Fatalf("matched = %d, want 2", got)
	}
	if !reflect.DeepEqual(result.Failed, []string{"q1_3"}) {
		t.Fatalf("failed = %v, want [q1_3]", result.Failed)
	}

	fields := result.Fields()
	want := map[string]Fields{
		"q1_1": {StartTime: "00:00:10-0", EstimatedEndTime: "00:00:20-5", StartLine: "10", EndLine: "11"},
		"q1_2": {StartTime: "00:00:10-0", EstimatedEndTime: "00:00:20-5", StartLine: "13", EndLine: "13", EstimatedStartTime: "00:00:10-0"},
		"q1_3": {},
	}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("fields = %#v\nwant %#v", fields, want)
	}

	failed := result.Outcomes[2]
	if failed.Matched || failed.NearMiss == nil || failed.NearMiss.Line != 20 {
		t.Fatalf("unexpected outcome for unmatched quotation: %+v", failed)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	merger := sampleStore(t)
	first, err := merger.Merge(sampleQuotations())
	if err != nil {
		t.Fatalf("first Merge: %v", err)
	}
	second, err := merger.Merge(sampleQuotations())
	if err != nil {
		t.Fatalf("second Merge: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated merges over the same input differ")
	}
}

func TestMergeMatchedSlotsCoverSpan(t *testing.T) {
	result, err := sampleStore(t).Merge(sampleQuotations())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	for _, o := range result.Outcomes {
		if !o.Matched {
			continue
		}
		if len(o.Match.Slots) != o.Match.Span.Len() {
			t.Fatalf("%s: %d slots for span %s", o.QuotationID, len(o.Match.Slots), o.Match.Span)
		}
		if o.Match.StartLine() < o.Match.Span.Start {
			t.Fatalf("%s: start line %d before span start %d", o.QuotationID, o.Match.StartLine(), o.Match.Span.Start)
		}
	}
}

func TestMergeAbortsOnMalformedSpan(t *testing.T) {
	quotations := append(sampleQuotations(), Quotation{ID: "q1_bad", Loc: "start@x"})
	if _, err := sampleStore(t).Merge(quotations); !errors.Is(err, ErrMalformedSpan) {
		t.Fatalf("error = %v, want ErrMalformedSpan", err)
	}
}

func TestMergeAbortsOnBoundaryExhaustion(t *testing.T) {
	store := buildStore(t, 3, map[int]string{3: "00:00:03-0 PA1: closing remark\n"})
	_, err := NewMerger(store).Merge([]Quotation{
		{ID: "q1_9", Loc: "!start@3, end@3!", Paragraphs: []string{"closing remark"}},
	})
	if !errors.Is(err, ErrTimestampBoundaryExhausted) {
		t.Fatalf("error = %v, want ErrTimestampBoundaryExhausted", err)
	}
}

func TestMergeEmptyBatch(t *testing.T) {
	result, err := sampleStore(t).Merge(nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(result.Outcomes) != 0 || len(result.Failed) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
