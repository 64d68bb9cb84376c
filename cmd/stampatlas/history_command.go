package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"stampatlas/internal/runstore"
	"stampatlas/internal/textutil"
)

const shortRunIDLength = 8

// historyDetail holds the unmatched quotations of a run, or every quotation
// when All is set.
type historyDetail struct {
	Run     runstore.Run               `json:"run"`
	All     bool                       `json:"all"`
	Results []runstore.QuotationResult `json:"results"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool
	var all bool

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past merge runs or the unmatched quotations of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runstore.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if len(args) == 0 {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []runstore.Run{}
					}
					return writeJSON(cmd, runs)
				}
				printRunList(out, runs, colorize)
				return nil
			}

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var results []runstore.QuotationResult
			if all {
				results, err = store.Results(cmd.Context(), run.ID)
			} else {
				results, err = store.Failures(cmd.Context(), run.ID)
			}
			if err != nil {
				return err
			}
			if results == nil {
				results = []runstore.QuotationResult{}
			}
			if jsonOutput {
				return writeJSON(cmd, historyDetail{Run: run, All: all, Results: results})
			}
			printRunDetail(out, run, results, colorize)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&all, "all", false, "Show every quotation of the run, not only unmatched ones")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of tables")
	return cmd
}

func printRunList(out io.Writer, runs []runstore.Run, colorize bool) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No merge runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			strconv.Itoa(r.Quotations),
			strconv.Itoa(r.Matched()),
			strconv.Itoa(r.Failed),
			r.DocumentPath,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Quotations", "Matched", "Failed", "Document"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
		colorize,
	))
}

func printRunDetail(out io.Writer, run runstore.Run, results []runstore.QuotationResult, colorize bool) {
	fmt.Fprintln(out, renderSectionHeader("Run "+shortID(run.ID), colorize))
	fmt.Fprintln(out, renderStatusLine("Run ID", statusInfo, run.ID, colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime), colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(), colorize))
	fmt.Fprintln(out, renderStatusLine("Document", statusInfo, run.DocumentPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Transcript", statusInfo, run.TranscriptPath, colorize))
	kind := statusOK
	if run.Failed > 0 {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Matched", kind, fmt.Sprintf("%d of %d quotations", run.Matched(), run.Quotations), colorize))

	if len(results) == 0 {
		return
	}
	fmt.Fprintln(out)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		lines, rigor, hint := "-", "-", "-"
		if r.Matched {
			lines = fmt.Sprintf("%d-%d", r.StartLine, r.EndLine)
			rigor = textutil.Rigor(r.Rigor).String()
		}
		if r.NearMissLine > 0 {
			hint = fmt.Sprintf("line %d (%.2f)", r.NearMissLine, r.NearMissScore)
		}
		rows = append(rows, []string{r.QuotationID, yesNo(r.Matched), lines, rigor, r.StartTime, r.EndTime, hint})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Quotation", "Matched", "Lines", "Rigor", "Start", "Est. end", "Near miss"},
		rows,
		nil,
		colorize,
	))
}

func shortID(id string) string {
	if len(id) <= shortRunIDLength {
		return id
	}
	return id[:shortRunIDLength]
}
