package atlas

import (
	"bytes"
	"encoding/xml"
	"errors"
	"reflect"
	"strings"
	"testing"

	"stampatlas/internal/align"
)

const sampleExport = `<?xml version="1.0" encoding="utf-8"?>
<atlasTiDoc version="6">
  <hermUnit name="Interviews HU"/>
  <primDocs>
    <primDoc id="pd_1" name="interview.rtf">
      <quotations>
        <q id="q1_1" name="PA1: hello there" loc="!start@10, end@11!">
          <content size="2">
            <p>PA1: hello there</p>
            <p>continued speech</p>
          </content>
        </q>
        <q id="q1_2" name="more words follow" loc="!start@13, end@13!">
          <content><p>more words follow</p></content>
        </q>
        <q id="q1_3" name="blank lead" loc="!start@12, end@13!">
          <content><p/><p>more words follow</p></content>
        </q>
      </quotations>
    </primDoc>
    <primDoc id="pd_2" name="other.rtf">
      <quotations>
        <q id="q2_1" name="other" loc="!start@1, end@1!"><content><p>other</p></content></q>
      </quotations>
    </primDoc>
  </primDocs>
  <codes>
    <code id="co_1" name="Greeting"/>
    <code id="co_2" name="Sport"/>
  </codes>
  <memos>
    <memo id="me_1" name="Method"><content>Coding notes</content></memo>
  </memos>
  <families>
    <codeFamilies>
      <codeFamily id="cf_1" name="Social"><item id="co_1"/><item id="co_2"/></codeFamily>
    </codeFamilies>
  </families>
  <links>
    <objectSegmentLinks>
      <codings>
        <iLink obj="co_1" qRef="q1_1"/>
        <iLink obj="co_2" qRef="q1_2"/>
        <iLink obj="co_1" qRef="q1_2"/>
      </codings>
    </objectSegmentLinks>
  </links>
</atlasTiDoc>
`

func parseSample(t *testing.T, opts ...Option) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(sampleExport), opts...)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestParseQueries(t *testing.T) {
	doc := parseSample(t)

	if got := doc.UnitName(); got != "Interviews HU" {
		t.Fatalf("UnitName = %q", got)
	}
	if got := doc.PrimaryDocument(); got != "pd_1" {
		t.Fatalf("PrimaryDocument = %q", got)
	}

	quotes := doc.Quotations()
	var ids []string
	for _, q := range quotes {
		ids = append(ids, q.ID)
	}
	if !reflect.DeepEqual(ids, []string{"q1_1", "q1_2", "q1_3"}) {
		t.Fatalf("quotation ids = %v", ids)
	}
	if !reflect.DeepEqual(quotes[2].Paragraphs, []string{"", "more words follow"}) {
		t.Fatalf("paragraphs = %q", quotes[2].Paragraphs)
	}
	if got := quotes[0].Text(); got != "PA1: hello therecontinued speech" {
		t.Fatalf("Text = %q", got)
	}

	want := align.Quotation{
		ID:         "q1_1",
		Label:      "PA1: hello there",
		Loc:        "!start@10, end@11!",
		Paragraphs: []string{"PA1: hello there", "continued speech"},
	}
	if got := quotes[0].Input(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Input = %#v, want %#v", got, want)
	}

	if !reflect.DeepEqual(doc.Codes(), []Code{{"co_1", "Greeting"}, {"co_2", "Sport"}}) {
		t.Fatalf("Codes = %v", doc.Codes())
	}
	if c, ok := doc.CodeByID("co_2"); !ok || c.Name != "Sport" {
		t.Fatalf("CodeByID(co_2) = %v, %v", c, ok)
	}
	if _, ok := doc.CodeByID("co_9"); ok {
		t.Fatal("CodeByID(co_9) found a code")
	}
	if !reflect.DeepEqual(doc.Memos(), []Memo{{ID: "me_1", Name: "Method", Text: "Coding notes"}}) {
		t.Fatalf("Memos = %v", doc.Memos())
	}
	if !reflect.DeepEqual(doc.CodeFamilies(), []Family{{ID: "cf_1", Name: "Social", Members: []string{"co_1", "co_2"}}}) {
		t.Fatalf("CodeFamilies = %v", doc.CodeFamilies())
	}
	if got := len(doc.Links()); got != 3 {
		t.Fatalf("Links = %d, want 3", got)
	}
	if !doc.LinkExists("co_1", "q1_2") || doc.LinkExists("co_2", "q1_1") {
		t.Fatal("LinkExists returned wrong answers")
	}
}

func TestQuotationByID(t *testing.T) {
	doc := parseSample(t)
	q, err := doc.QuotationByID("q1_2")
	if err != nil {
		t.Fatalf("QuotationByID: %v", err)
	}
	if q.Loc != "!start@13, end@13!" {
		t.Fatalf("Loc = %q", q.Loc)
	}
	if _, err := doc.QuotationByID("q2_1"); !errors.Is(err, ErrQuotationNotFound) {
		t.Fatalf("quotation from another document: err = %v", err)
	}
}

func TestParsePrimaryDocumentOption(t *testing.T) {
	doc := parseSample(t, WithPrimaryDocument("pd_2"))
	quotes := doc.Quotations()
	if len(quotes) != 1 || quotes[0].ID != "q2_1" {
		t.Fatalf("quotations = %+v", quotes)
	}

	_, err := Parse(strings.NewReader(sampleExport), WithPrimaryDocument("pd_7"))
	if !errors.Is(err, ErrPrimaryDocumentNotFound) {
		t.Fatalf("err = %v, want ErrPrimaryDocumentNotFound", err)
	}
}

func TestParseRejectsBrokenInput(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want error
	}{
		{
			name: "missing loc",
			xml:  `<root><primDocs><primDoc id="pd_1"><quotations><q id="q1_1"/></quotations></primDoc></primDocs></root>`,
			want: ErrMissingAttribute,
		},
		{
			name: "missing id",
			xml:  `<root><primDocs><primDoc id="pd_1"><quotations><q loc="!start@1, end@1!"/></quotations></primDoc></primDocs></root>`,
			want: ErrMissingAttribute,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.xml)); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse(strings.NewReader("<root><unclosed></root>")); err == nil {
		t.Fatal("expected a decode error for malformed XML")
	}
}

func TestParseDeclaredCharset(t *testing.T) {
	raw := "<?xml version=\"1.0\" encoding=\"windows-1252\"?>" +
		"<root><primDocs><primDoc id=\"pd_1\"><quotations>" +
		"<q id=\"q1_1\" loc=\"!start@1, end@1!\"><content><p>caf\xe9</p></content></q>" +
		"</quotations></primDoc></primDocs></root>"
	doc, err := Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.Quotations()[0].Paragraphs[0]; got != "café" {
		t.Fatalf("paragraph = %q, want café", got)
	}
}

func TestApplyAndWrite(t *testing.T) {
	doc := parseSample(t)
	fields := map[string]align.Fields{
		"q1_1": {StartTime: "00:00:10-0", EstimatedEndTime: "00:00:20-5", StartLine: "10", EndLine: "11"},
		"q1_2": {StartTime: "00:00:10-0", EstimatedEndTime: "00:00:20-5", StartLine: "13", EndLine: "13", EstimatedStartTime: "00:00:10-0"},
		"q1_3": {},
	}
	if err := doc.Apply(fields); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	q, _ := doc.QuotationByID("q1_2")
	if q.Attr(AttrEstimatedStartTime) != "00:00:10-0" || q.Attr(AttrStartLine) != "13" {
		t.Fatalf("attributes not applied: %+v", q.node.Attrs)
	}

	var first bytes.Buffer
	if _, err := doc.WriteTo(&first); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !strings.HasPrefix(first.String(), "<?xml") {
		t.Fatalf("missing header: %q", first.String()[:20])
	}

	// The written document parses back with the derived attributes intact.
	reparsed, err := Parse(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	q3, _ := reparsed.QuotationByID("q1_3")
	if v, ok := q3.node.Attr(AttrStartTime); !ok || v != "" {
		t.Fatalf("q1_3 startTime = %q, %v; want present and empty", v, ok)
	}
	if !reflect.DeepEqual(reparsed.Quotations()[2].Paragraphs, []string{"", "more words follow"}) {
		t.Fatal("paragraphs changed across a round trip")
	}

	// Applying identical fields again yields byte-identical output.
	if err := reparsed.Apply(fields); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	var second bytes.Buffer
	if _, err := reparsed.WriteTo(&second); err != nil {
		t.Fatalf("second WriteTo: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("output differs across runs:\n%s\n---\n%s", first.String(), second.String())
	}
}

func TestApplyClearsStaleMarker(t *testing.T) {
	doc := parseSample(t)
	if err := doc.Apply(map[string]align.Fields{"q1_1": {EstimatedStartTime: "00:00:01-0"}}); err != nil {
		t.Fatal(err)
	}
	if err := doc.Apply(map[string]align.Fields{"q1_1": {StartTime: "00:00:10-0"}}); err != nil {
		t.Fatal(err)
	}
	q, _ := doc.QuotationByID("q1_1")
	if _, ok := q.node.Attr(AttrEstimatedStartTime); ok {
		t.Fatal("stale estimatedStartTime marker kept")
	}
}

func TestApplyUnknownQuotation(t *testing.T) {
	doc := parseSample(t)
	err := doc.Apply(map[string]align.Fields{"q9_9": {}})
	if !errors.Is(err, ErrQuotationNotFound) {
		t.Fatalf("err = %v, want ErrQuotationNotFound", err)
	}
}

const preservedExport = `<?xml version="1.0" encoding="UTF-8"?>
<!-- exported by Atlas.ti -->
<atlasTiDoc xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="atlas.xsd">
  <hermUnit name="Tom &amp; Jerry"/>
  <primDocs>
    <primDoc id="pd_1">
      <quotations>
        <q id="q1_1" name="wow" loc="!start@2, end@2!">
          <content><p>Oh &amp; <b>wow</b> yes</p></content>
        </q>
      </quotations>
    </primDoc>
  </primDocs>
  <?atlas keep?>
</atlasTiDoc>
`

func TestWriteToPreservesInputBytes(t *testing.T) {
	doc, err := Parse(strings.NewReader(preservedExport))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.Quotations()[0].Paragraphs[0]; got != "Oh & wow yes" {
		t.Fatalf("paragraph = %q", got)
	}
	if got := doc.UnitName(); got != "Tom & Jerry" {
		t.Fatalf("UnitName = %q", got)
	}

	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if out.String() != preservedExport {
		t.Fatalf("round trip changed the document:\n%s", out.String())
	}

	err = doc.Apply(map[string]align.Fields{
		"q1_1": {StartTime: "00:00:01-0", EstimatedEndTime: "00:00:02-0", StartLine: "2", EndLine: "2"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	out.Reset()
	if _, err := doc.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	want := strings.Replace(preservedExport,
		`loc="!start@2, end@2!">`,
		`loc="!start@2, end@2!" startTime="00:00:01-0" estimatedEndTime="00:00:02-0" startLine="2" endLine="2">`,
		1)
	if out.String() != want {
		t.Fatalf("applied output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestWriteToDeclaresUTF8(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "no declaration",
			raw:  `<root><primDocs><primDoc id="pd_1"/></primDocs></root>`,
			want: xml.Header + `<root><primDocs><primDoc id="pd_1"/></primDocs></root>`,
		},
		{
			name: "legacy charset",
			raw:  "<?xml version=\"1.0\" encoding=\"windows-1252\"?>\n<root><primDocs><primDoc id=\"pd_1\" name=\"caf\xe9\"/></primDocs></root>",
			want: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<root><primDocs><primDoc id=\"pd_1\" name=\"café\"/></primDocs></root>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tt.raw))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			var out bytes.Buffer
			if _, err := doc.WriteTo(&out); err != nil {
				t.Fatalf("WriteTo: %v", err)
			}
			if out.String() != tt.want {
				t.Fatalf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}
