package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"stampatlas/internal/align"
	"stampatlas/internal/atlas"
)

const inspectTextWidth = 48

type inspectQuotation struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Loc       string   `json:"loc"`
	Span      string   `json:"span,omitempty"`
	Lines     int      `json:"paragraphs"`
	Codes     []string `json:"codes"`
	StartTime string   `json:"start_time,omitempty"`
	Text      string   `json:"text"`
}

type inspectSummary struct {
	Unit            string             `json:"unit"`
	PrimaryDocument string             `json:"primary_document"`
	Quotations      int                `json:"quotations"`
	Codes           int                `json:"codes"`
	Memos           int                `json:"memos"`
	CodeFamilies    int                `json:"code_families"`
	Links           int                `json:"links"`
	MalformedSpans  int                `json:"malformed_spans"`
	Items           []inspectQuotation `json:"items,omitempty"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var listQuotations bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <atlas.xml>",
		Short: "Summarize an Atlas.ti export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc, err := atlas.ParseFile(args[0], atlas.WithPrimaryDocument(cfg.Document.PrimaryDocument))
			if err != nil {
				return err
			}
			summary := inspectDocument(doc, listQuotations)
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			printInspectSummary(out, summary, shouldColorize(out))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&listQuotations, "quotations", "q", false, "List every quotation with its claimed span and codes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}

func inspectDocument(doc *atlas.Document, withItems bool) inspectSummary {
	quotes := doc.Quotations()
	codes := doc.Codes()
	s := inspectSummary{
		Unit:            doc.UnitName(),
		PrimaryDocument: doc.PrimaryDocument(),
		Quotations:      len(quotes),
		Codes:           len(codes),
		Memos:           len(doc.Memos()),
		CodeFamilies:    len(doc.CodeFamilies()),
		Links:           len(doc.Links()),
	}
	for _, q := range quotes {
		item := inspectQuotation{
			ID:        q.ID,
			Name:      q.Name,
			Loc:       q.Loc,
			Lines:     len(q.Paragraphs),
			Codes:     []string{},
			StartTime: q.Attr(atlas.AttrStartTime),
			Text:      q.Text(),
		}
		if span, err := align.ParseSpan(q.Loc); err == nil {
			item.Span = span.String()
		} else {
			s.MalformedSpans++
		}
		for _, c := range codes {
			if doc.LinkExists(c.ID, q.ID) {
				item.Codes = append(item.Codes, c.Name)
			}
		}
		if withItems {
			s.Items = append(s.Items, item)
		}
	}
	return s
}

func printInspectSummary(out io.Writer, s inspectSummary, colorize bool) {
	fmt.Fprintln(out, renderSectionHeader("Atlas.ti export", colorize))
	unit := s.Unit
	if unit == "" {
		unit = "(unnamed)"
	}
	fmt.Fprintln(out, renderStatusLine("Unit", statusInfo, unit, colorize))
	fmt.Fprintln(out, renderStatusLine("Primary document", statusInfo, s.PrimaryDocument, colorize))
	fmt.Fprintln(out, renderStatusLine("Quotations", statusInfo, strconv.Itoa(s.Quotations), colorize))
	fmt.Fprintln(out, renderStatusLine("Codes", statusInfo, strconv.Itoa(s.Codes), colorize))
	fmt.Fprintln(out, renderStatusLine("Code families", statusInfo, strconv.Itoa(s.CodeFamilies), colorize))
	fmt.Fprintln(out, renderStatusLine("Memos", statusInfo, strconv.Itoa(s.Memos), colorize))
	fmt.Fprintln(out, renderStatusLine("Links", statusInfo, strconv.Itoa(s.Links), colorize))
	if s.MalformedSpans > 0 {
		fmt.Fprintln(out, renderStatusLine("Malformed spans", statusError, strconv.Itoa(s.MalformedSpans), colorize))
	}

	if len(s.Items) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Quotations", colorize))
		rows := make([][]string, 0, len(s.Items))
		for _, item := range s.Items {
			span := item.Span
			if span == "" {
				span = "invalid: " + item.Loc
			}
			rows = append(rows, []string{item.ID, span, strconv.Itoa(item.Lines), strings.Join(item.Codes, ", "), truncate(item.Text, inspectTextWidth)})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"ID", "Span", "Paragraphs", "Codes", "Text"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			colorize,
		))
	}
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if utf8.RuneCountInString(value) <= width {
		return value
	}
	runes := []rune(value)
	return string(runes[:width-3]) + "..."
}
