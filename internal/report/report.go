package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"stampatlas/internal/align"
	"stampatlas/internal/atlas"
	"stampatlas/internal/fileutil"
	"stampatlas/internal/logging"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatXLSX     Format = "xlsx"
)

// DefaultSheetName names the workbook sheet and titles HTML output when no
// name is configured.
const DefaultSheetName = "codings"

// ErrUnsupportedFormat reports a format or file extension with no writer.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// FormatForPath picks a format from the file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return "", fmt.Errorf("%w: legacy .xls workbooks cannot be written, use .xlsx", ErrUnsupportedFormat)
	case "":
		return "", fmt.Errorf("%w: %s has no extension, set --format", ErrUnsupportedFormat, path)
	default:
		return "", fmt.Errorf("%w: extension %s", ErrUnsupportedFormat, ext)
	}
}

func (o Options) sheetName() string {
	if o.SheetName == "" {
		return DefaultSheetName
	}
	return o.SheetName
}

// Source is the read side of a merged document.
type Source interface {
	UnitName() string
	Quotations() []atlas.Quotation
	Codes() []atlas.Code
	LinkExists(codeID, quotationID string) bool
}

// Options controls rendering.
type Options struct {
	Format    Format
	SheetName string
	Logger    *slog.Logger
}

// Row is one rendered quotation.
type Row struct {
	QuotationID string
	Unit        string
	Onset       string
	Duration    string
	Text        string
	Codes       []string
	// Flags holds 1 for each code linked to the quotation, in code order.
	Flags []int
}

// Header returns the column titles for codes.
func Header(codes []atlas.Code) []string {
	header := []string{"HU Name", "Onset time", "Est. Duration", "Text", "All Codes"}
	for _, c := range codes {
		header = append(header, c.Name)
	}
	return append(header, "Code Count")
}

// Rows builds one row per quotation in document order.
func Rows(src Source, logger *slog.Logger) []Row {
	if logger == nil {
		logger = logging.NewNop()
	}
	unit := src.UnitName()
	codes := src.Codes()
	quotes := src.Quotations()
	rows := make([]Row, 0, len(quotes))
	for _, q := range quotes {
		row := Row{
			QuotationID: q.ID,
			Unit:        unit,
			Onset:       q.Attr(atlas.AttrStartTime),
			Text:        q.Text(),
			Flags:       make([]int, len(codes)),
		}
		if row.Onset != "" {
			row.Duration = align.DurationOrEmpty(logger.With(logging.Quotation(q.ID)), row.Onset, q.Attr(atlas.AttrEstimatedEndTime))
		}
		for i, c := range codes {
			if src.LinkExists(c.ID, q.ID) {
				row.Flags[i] = 1
				row.Codes = append(row.Codes, c.Name)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (r Row) cells() table.Row {
	cells := table.Row{r.Unit, r.Onset, r.Duration, r.Text, strings.Join(r.Codes, ", ")}
	for _, f := range r.Flags {
		cells = append(cells, f)
	}
	return append(cells, len(r.Codes))
}

// Write renders src to w.
func Write(w io.Writer, src Source, opts Options) error {
	logger := logging.NewComponentLogger(opts.Logger, "report")

	header := Header(src.Codes())
	rows := Rows(src, logger)
	if opts.Format == FormatXLSX {
		return writeWorkbook(w, opts.sheetName(), header, rows)
	}

	tw := table.NewWriter()
	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	tw.AppendHeader(headerRow)
	for _, row := range rows {
		tw.AppendRow(row.cells())
	}

	var out string
	switch opts.Format {
	case FormatCSV, "":
		out = tw.RenderCSV()
	case FormatHTML:
		tw.SetTitle(opts.sheetName())
		out = tw.RenderHTML()
	case FormatMarkdown:
		out = tw.RenderMarkdown()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteFile renders src to path atomically.
func WriteFile(path string, src Source, opts Options) error {
	return fileutil.WriteLocked(path, 0o644, func(w io.Writer) error {
		return Write(w, src, opts)
	})
}
