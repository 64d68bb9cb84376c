package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"stampatlas/internal/textutil"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var documentOut string
	var format string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "merge <atlas.xml> <transcript.txt> <report>",
		Short: "Attach transcript timestamps to quotations and write the coding report",
		Long: `Match every quotation of the primary document against the F5 transcript,
write the annotated export to document.output_path (or --document-out), and
write one report row per quotation. Quotations that cannot be matched keep
empty timestamps and are listed in the summary; they do not fail the command.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}
			summary, err := runMerge(cmd.Context(), cfg, logger, mergeRequest{
				DocumentPath:   args[0],
				TranscriptPath: args[1],
				ReportPath:     args[2],
				DocumentOut:    documentOut,
				ReportFormat:   format,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			printMergeSummary(out, summary, shouldColorize(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&documentOut, "document-out", "o", "", "Write the merged export here instead of document.output_path")
	cmd.Flags().StringVar(&format, "format", "", "Report format (xlsx, csv, html, markdown); defaults to config or file extension")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}

func printMergeSummary(out io.Writer, s *mergeSummary, colorize bool) {
	fmt.Fprintln(out, renderSectionHeader("Merge", colorize))
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, s.RunID, colorize))
	fmt.Fprintln(out, renderStatusLine("Transcript lines", statusInfo, strconv.Itoa(s.TranscriptLines), colorize))

	kind := statusOK
	if s.Failed > 0 {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Matched", kind, fmt.Sprintf("%d of %d quotations", s.Matched, s.Quotations), colorize))
	if s.EstimatedStarts > 0 {
		fmt.Fprintln(out, renderStatusLine("Estimated starts", statusInfo, strconv.Itoa(s.EstimatedStarts), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Merged document", statusInfo, s.MergedDocument, colorize))
	fmt.Fprintln(out, renderStatusLine("Report", statusInfo, fmt.Sprintf("%s (%s)", s.Report, s.ReportFormat), colorize))
	fmt.Fprintln(out, renderStatusLine("History", statusInfo, yesNo(s.HistoryRecorded), colorize))

	if len(s.ByRigor) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Matches by rigor", colorize))
		rows := make([][]string, 0, len(s.ByRigor))
		for rigor := textutil.RigorWhitespace; rigor <= textutil.MaxRigor; rigor++ {
			if n, ok := s.ByRigor[rigor.String()]; ok {
				rows = append(rows, []string{strconv.Itoa(int(rigor)), rigor.String(), strconv.Itoa(n)})
			}
		}
		fmt.Fprintln(out, renderTable([]string{"Level", "Rigor", "Quotations"}, rows, []columnAlignment{alignRight, alignLeft, alignRight}, colorize))
	}

	if len(s.Failures) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Unmatched quotations", colorize))
		rows := make([][]string, 0, len(s.Failures))
		for _, f := range s.Failures {
			hint := "-"
			if f.NearMissLine > 0 {
				hint = fmt.Sprintf("line %d (%.2f)", f.NearMissLine, f.NearMissScore)
			}
			rows = append(rows, []string{f.QuotationID, f.Loc, hint})
		}
		fmt.Fprintln(out, renderTable([]string{"Quotation", "Claimed span", "Near miss"}, rows, nil, colorize))
	}
}
