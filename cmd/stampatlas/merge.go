package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"stampatlas/internal/align"
	"stampatlas/internal/atlas"
	"stampatlas/internal/config"
	"stampatlas/internal/fileutil"
	"stampatlas/internal/logging"
	"stampatlas/internal/report"
	"stampatlas/internal/runstore"
	"stampatlas/internal/textutil"
	"stampatlas/internal/transcript"
)

type mergeRequest struct {
	DocumentPath   string
	TranscriptPath string
	ReportPath     string
	DocumentOut    string
	ReportFormat   string
}

type failureSummary struct {
	QuotationID   string  `json:"quotation_id"`
	Loc           string  `json:"loc"`
	NearMissLine  int     `json:"near_miss_line,omitempty"`
	NearMissScore float64 `json:"near_miss_score,omitempty"`
}

type mergeSummary struct {
	RunID           string           `json:"run_id"`
	Document        string           `json:"document"`
	Transcript      string           `json:"transcript"`
	TranscriptLines int              `json:"transcript_lines"`
	Report          string           `json:"report"`
	ReportFormat    string           `json:"report_format"`
	MergedDocument  string           `json:"merged_document"`
	Quotations      int              `json:"quotations"`
	Matched         int              `json:"matched"`
	Failed          int              `json:"failed"`
	EstimatedStarts int              `json:"estimated_starts"`
	ByRigor         map[string]int   `json:"by_rigor"`
	Failures        []failureSummary `json:"failures"`
	HistoryRecorded bool             `json:"history_recorded"`
	Elapsed         string           `json:"elapsed"`
}

// runMerge matches every quotation, writes the merged document and report,
// and records the run. Unmatched quotations are part of a successful result.
func runMerge(ctx context.Context, cfg *config.Config, logger *slog.Logger, req mergeRequest) (*mergeSummary, error) {
	started := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "merge"))

	format, err := reportFormat(req, cfg)
	if err != nil {
		return nil, err
	}
	doc, err := atlas.ParseFile(req.DocumentPath, atlas.WithPrimaryDocument(cfg.Document.PrimaryDocument))
	if err != nil {
		return nil, err
	}
	store, err := transcript.ReadFile(req.TranscriptPath, transcript.ReadOptions{Encoding: cfg.Transcript.Encoding})
	if err != nil {
		return nil, err
	}
	logger.Info("inputs loaded",
		logging.String("document", req.DocumentPath),
		logging.String("transcript", req.TranscriptPath),
		logging.Int("transcript_lines", store.Len()),
	)

	quotes := doc.Quotations()
	inputs := make([]align.Quotation, 0, len(quotes))
	locs := make(map[string]string, len(quotes))
	for _, q := range quotes {
		inputs = append(inputs, q.Input())
		locs[q.ID] = q.Loc
	}

	merger := align.NewMerger(store,
		align.WithLogger(logger),
		align.WithMaxRigor(textutil.Rigor(cfg.Matching.MaxRigor)),
		align.WithNearMiss(align.NearMissOptions{
			Window:    cfg.Matching.NearMissWindow,
			Threshold: cfg.Matching.NearMissThreshold,
		}),
	)
	result, err := merger.Merge(inputs)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if err := doc.Apply(result.Fields()); err != nil {
		return nil, err
	}

	output := strings.TrimSpace(req.DocumentOut)
	if output == "" {
		output = cfg.Document.OutputPath
	} else if output, err = config.ExpandPath(output); err != nil {
		return nil, fmt.Errorf("resolve document output: %w", err)
	}
	err = fileutil.WriteLocked(output, 0o644, func(w io.Writer) error {
		_, err := doc.WriteTo(w)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("write merged document: %w", err)
	}

	err = report.WriteFile(req.ReportPath, doc, report.Options{
		Format:    format,
		SheetName: cfg.Report.SheetName,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	summary := summarize(result, locs)
	summary.RunID = runID
	summary.Document = req.DocumentPath
	summary.Transcript = req.TranscriptPath
	summary.TranscriptLines = store.Len()
	summary.Report = req.ReportPath
	summary.ReportFormat = string(format)
	summary.MergedDocument = output

	finished := time.Now()
	summary.Elapsed = finished.Sub(started).Round(time.Millisecond).String()
	if cfg.History.Enabled {
		summary.HistoryRecorded = recordHistory(ctx, cfg, logger, runstore.Run{
			ID:             runID,
			StartedAt:      started,
			FinishedAt:     finished,
			DocumentPath:   req.DocumentPath,
			TranscriptPath: req.TranscriptPath,
			ReportPath:     req.ReportPath,
			OutputPath:     output,
			MaxRigor:       cfg.Matching.MaxRigor,
			Quotations:     summary.Quotations,
			Failed:         summary.Failed,
		}, runstore.ResultsFromOutcomes(result.Outcomes))
	}

	logger.Info("merge complete",
		logging.Int("quotations", summary.Quotations),
		logging.Int("matched", summary.Matched),
		logging.Int("unmatched", summary.Failed),
		logging.String("merged_document", output),
		logging.String("report", req.ReportPath),
	)
	return summary, nil
}

// reportFormat resolves the --format flag, then report.format, then the
// report file extension.
func reportFormat(req mergeRequest, cfg *config.Config) (report.Format, error) {
	if f := strings.ToLower(strings.TrimSpace(req.ReportFormat)); f != "" {
		switch report.Format(f) {
		case report.FormatCSV, report.FormatHTML, report.FormatMarkdown, report.FormatXLSX:
			return report.Format(f), nil
		case "md":
			return report.FormatMarkdown, nil
		default:
			return "", fmt.Errorf("%w: %q", report.ErrUnsupportedFormat, f)
		}
	}
	if cfg.Report.Format != "" {
		return report.Format(cfg.Report.Format), nil
	}
	return report.FormatForPath(req.ReportPath)
}

func summarize(result *align.Result, locs map[string]string) *mergeSummary {
	s := &mergeSummary{
		Quotations: len(result.Outcomes),
		Matched:    result.Matched(),
		Failed:     len(result.Failed),
		ByRigor:    make(map[string]int),
		Failures:   []failureSummary{},
	}
	for _, o := range result.Outcomes {
		if !o.Matched {
			f := failureSummary{QuotationID: o.QuotationID, Loc: locs[o.QuotationID]}
			if o.NearMiss != nil {
				f.NearMissLine = o.NearMiss.Line
				f.NearMissScore = o.NearMiss.Score
			}
			s.Failures = append(s.Failures, f)
			continue
		}
		s.ByRigor[o.Match.Rigor.String()]++
		if o.Resolution.StartEstimated {
			s.EstimatedStarts++
		}
	}
	return s
}

// recordHistory stores the run. History is auxiliary, so failures are logged
// and the merge still succeeds.
func recordHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, run runstore.Run, results []runstore.QuotationResult) bool {
	store, err := runstore.Open(ctx, cfg.HistoryPath())
	if err == nil {
		defer store.Close()
		_, err = store.RecordRun(ctx, run, results)
	}
	if err != nil {
		logging.WarnWithContext(logger, "run history not recorded", "history_write_failed",
			logging.String("history_path", cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.state_dir permissions or disable [history]"),
		)
		return false
	}
	return true
}
