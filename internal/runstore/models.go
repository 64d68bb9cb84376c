package runstore

import (
	"time"

	"stampatlas/internal/align"
)

// Run summarizes one merge invocation.
type Run struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	DocumentPath   string    `json:"document_path"`
	TranscriptPath string    `json:"transcript_path"`
	ReportPath     string    `json:"report_path,omitempty"`
	OutputPath     string    `json:"output_path,omitempty"`
	MaxRigor       int       `json:"max_rigor"`
	Quotations     int       `json:"quotations"`
	Failed         int       `json:"failed"`
}

// Matched returns the number of quotations placed in the run.
func (r Run) Matched() int {
	return r.Quotations - r.Failed
}

// QuotationResult is the stored outcome for one quotation. Line and rigor
// fields are meaningful only when Matched is set; NearMissLine is zero when
// no near miss was found.
type QuotationResult struct {
	Position       int     `json:"position"`
	QuotationID    string  `json:"quotation_id"`
	Matched        bool    `json:"matched"`
	Rigor          int     `json:"rigor,omitempty"`
	StartLine      int     `json:"start_line,omitempty"`
	EndLine        int     `json:"end_line,omitempty"`
	StartTime      string  `json:"start_time,omitempty"`
	EndTime        string  `json:"end_time,omitempty"`
	StartEstimated bool    `json:"start_estimated,omitempty"`
	NearMissLine   int     `json:"near_miss_line,omitempty"`
	NearMissScore  float64 `json:"near_miss_score,omitempty"`
}

// ResultsFromOutcomes converts merge outcomes into storable rows.
func ResultsFromOutcomes(outcomes []align.Outcome) []QuotationResult {
	out := make([]QuotationResult, 0, len(outcomes))
	for i, o := range outcomes {
		r := QuotationResult{Position: i, QuotationID: o.QuotationID, Matched: o.Matched}
		if o.Matched {
			r.Rigor = int(o.Match.Rigor)
			r.StartLine = o.Match.StartLine()
			r.EndLine = o.Match.EndLine()
			r.StartTime = o.Resolution.StartTime
			r.EndTime = o.Resolution.EstimatedEndTime
			r.StartEstimated = o.Resolution.StartEstimated
		}
		if nm := o.NearMiss; nm != nil {
			r.NearMissLine = nm.Line
			r.NearMissScore = nm.Score
		}
		out = append(out, r)
	}
	return out
}
