package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"stampatlas/internal/align"
	"stampatlas/internal/atlas"
)

const export = `<?xml version="1.0" encoding="utf-8"?>
<atlasTiDoc>
  <hermUnit name="Interviews HU"/>
  <primDocs>
    <primDoc id="pd_1">
      <quotations>
        <q id="q1_1" name="PA1: hello" loc="!start@10, end@11!">
          <content><p>PA1: hello</p><p>again</p></content>
        </q>
        <q id="q1_2" name="lost" loc="!start@13, end@13!">
          <content><p>lost words</p></content>
        </q>
      </quotations>
    </primDoc>
  </primDocs>
  <codes>
    <code id="co_1" name="Greeting"/>
    <code id="co_2" name="Sport"/>
  </codes>
  <links><objectSegmentLinks><codings>
    <iLink obj="co_1" qRef="q1_1"/>
    <iLink obj="co_2" qRef="q1_1"/>
  </codings></objectSegmentLinks></links>
</atlasTiDoc>
`

func mergedDocument(t *testing.T) *atlas.Document {
	t.Helper()
	doc, err := atlas.Parse(strings.NewReader(export))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	err = doc.Apply(map[string]align.Fields{
		"q1_1": {StartTime: "00:08:07-4", EstimatedEndTime: "00:08:24-6", StartLine: "10", EndLine: "11"},
		"q1_2": {},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return doc
}

func TestRows(t *testing.T) {
	rows := Rows(mergedDocument(t), nil)
	want := []Row{
		{
			QuotationID: "q1_1",
			Unit:        "Interviews HU",
			Onset:       "00:08:07-4",
			Duration:    "0:00:17.200000",
			Text:        "PA1: helloagain",
			Codes:       []string{"Greeting", "Sport"},
			Flags:       []int{1, 1},
		},
		{
			QuotationID: "q1_2",
			Unit:        "Interviews HU",
			Text:        "lost words",
			Flags:       []int{0, 0},
		},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %#v\nwant %#v", rows, want)
	}
}

func TestHeader(t *testing.T) {
	got := Header([]atlas.Code{{ID: "co_1", Name: "Greeting"}, {ID: "co_2", Name: "Sport"}})
	want := []string{"HU Name", "Onset time", "Est. Duration", "Text", "All Codes", "Greeting", "Sport", "Code Count"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Header = %v", got)
	}
}

func TestWriteFormats(t *testing.T) {
	doc := mergedDocument(t)
	tests := []struct {
		format Format
		want   []string
	}{
		{FormatCSV, []string{"HU Name,Onset time,Est. Duration,Text,All Codes,Greeting,Sport,Code Count", "0:00:17.200000", "lost words"}},
		{FormatHTML, []string{"<table", "Est. Duration", "codings", "0:00:17.200000"}},
		{FormatMarkdown, []string{"| HU Name |", "| Interviews HU |", "0:00:17.200000"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, doc, Options{Format: tt.format}); err != nil {
				t.Fatalf("Write: %v", err)
			}
			for _, s := range tt.want {
				if !strings.Contains(buf.String(), s) {
					t.Fatalf("output missing %q:\n%s", s, buf.String())
				}
			}
		})
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, mergedDocument(t), Options{Format: "pdf"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codings.csv")
	if err := WriteFile(path, mergedDocument(t), Options{Format: FormatCSV}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "HU Name,") {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "out.csv", want: FormatCSV},
		{path: "out.HTML", want: FormatHTML},
		{path: "out.htm", want: FormatHTML},
		{path: "out.md", want: FormatMarkdown},
		{path: "out.xlsx", want: FormatXLSX},
		{path: "out.xls", wantErr: true},
		{path: "out.txt", wantErr: true},
		{path: "codings", wantErr: true},
	}
	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("FormatForPath(%q) err = %v, want ErrUnsupportedFormat", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, %v, want %q", tt.path, got, err, tt.want)
		}
	}
}

func TestWriteWorkbook(t *testing.T) {
	tests := []struct {
		name      string
		sheetName string
		wantSheet string
	}{
		{name: "default sheet", wantSheet: DefaultSheetName},
		{name: "configured sheet", sheetName: "pilot", wantSheet: "pilot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, mergedDocument(t), Options{Format: FormatXLSX, SheetName: tt.sheetName})
			if err != nil {
				t.Fatalf("Write: %v", err)
			}

			f, err := excelize.OpenReader(&buf)
			if err != nil {
				t.Fatalf("OpenReader: %v", err)
			}
			defer func() { _ = f.Close() }()

			if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{tt.wantSheet}) {
				t.Fatalf("sheets = %v, want [%s]", got, tt.wantSheet)
			}
			rows, err := f.GetRows(tt.wantSheet)
			if err != nil {
				t.Fatalf("GetRows: %v", err)
			}
			want := [][]string{
				{"HU Name", "Onset time", "Est. Duration", "Text", "All Codes", "Greeting", "Sport", "Code Count"},
				{"Interviews HU", "00:08:07-4", "0:00:17.200000", "PA1: helloagain", "Greeting, Sport", "1", "1", "2"},
				{"Interviews HU", "", "", "lost words", "", "0", "0", "0"},
			}
			if !reflect.DeepEqual(rows, want) {
				t.Fatalf("rows = %q\nwant %q", rows, want)
			}
		})
	}
}
