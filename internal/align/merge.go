package align

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"stampatlas/internal/logging"
	"stampatlas/internal/textutil"
	"stampatlas/internal/transcript"
)

// Fields are the derived attributes attached to a quotation after a merge.
// Unmatched quotations carry empty values.
type Fields struct {
	StartTime        string
	EstimatedEndTime string
	StartLine        string
	EndLine          string
	// EstimatedStartTime is set only when the start was inferred from an
	// earlier line.
	EstimatedStartTime string
}

// Outcome records what happened to one quotation.
type Outcome struct {
	QuotationID string
	Matched     bool
	Match       Match
	Resolution  Resolution
	Fields      Fields
	NearMiss    *NearMiss
}

// Result is the output of a merge, in quotation order.
type Result struct {
	Outcomes []Outcome
	// Failed lists the ids of quotations that could not be matched.
	Failed []string
}

// Fields maps quotation ids to their derived attributes.
func (r *Result) Fields() map[string]Fields {
	out := make(map[string]Fields, len(r.Outcomes))
	for _, o := range r.Outcomes {
		out[o.QuotationID] = o.Fields
	}
	return out
}

// Matched returns the number of quotations that were placed.
func (r *Result) Matched() int {
	return len(r.Outcomes) - len(r.Failed)
}

// Option configures a Merger.
type Option func(*Merger)

// WithLogger sets the logger used for per-quotation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Merger) {
		m.logger = logging.NewComponentLogger(logger, "align")
	}
}

// WithMaxRigor caps normalization escalation. Default: textutil.MaxRigor.
func WithMaxRigor(rigor textutil.Rigor) Option {
	return func(m *Merger) {
		m.maxRigor = rigor
	}
}

// WithNearMiss enables near-miss hints for unmatched quotations.
func WithNearMiss(opts NearMissOptions) Option {
	return func(m *Merger) {
		m.nearMiss = opts
	}
}

// Merger drives matching and timestamp resolution over a quotation batch.
type Merger struct {
	store    *transcript.Store
	matcher  *Matcher
	logger   *slog.Logger
	maxRigor textutil.Rigor
	nearMiss NearMissOptions
}

// NewMerger returns a Merger over store.
func NewMerger(store *transcript.Store, opts ...Option) *Merger {
	m := &Merger{
		store:    store,
		logger:   logging.NewNop(),
		maxRigor: textutil.MaxRigor,
	}
	for _, o := range opts {
		o(m)
	}
	m.matcher = NewMatcher(store, m.maxRigor)
	return m
}

// Merge processes quotations in order. Quotations that cannot be matched are
// listed in Result.Failed with empty fields and do not stop the batch. A
// malformed span or a transcript without timestamp anchors aborts the merge.
func (m *Merger) Merge(quotations []Quotation) (*Result, error) {
	result := &Result{Outcomes: make([]Outcome, 0, len(quotations))}
	for _, q := range quotations {
		outcome, err := m.mergeOne(q)
		if err != nil {
			return nil, err
		}
		if !outcome.Matched {
			result.Failed = append(result.Failed, q.ID)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	m.logger.Debug("merge finished",
		logging.Int("quotations", len(result.Outcomes)),
		logging.Int("unmatched", len(result.Failed)),
	)
	return result, nil
}

func (m *Merger) mergeOne(q Quotation) (Outcome, error) {
	outcome := Outcome{QuotationID: q.ID}
	match, err := m.matcher.Find(q)
	if errors.Is(err, ErrMatchNotFound) {
		outcome.NearMiss = m.matcher.NearMiss(q, m.nearMiss)
		attrs := []logging.Attr{
			logging.Quotation(q.ID),
			logging.String("loc", q.Loc),
			logging.String(logging.FieldErrorHint, "compare the quotation text with the transcript near its claimed lines"),
			logging.String(logging.FieldImpact, "quotation left without timestamps"),
		}
		if nm := outcome.NearMiss; nm != nil {
			attrs = append(attrs, logging.Int("near_miss_line", nm.Line), logging.Float64("near_miss_score", nm.Score))
		}
		logging.WarnWithContext(m.logger, "quotation unmatched", "match_not_found", attrs...)
		return outcome, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	res, err := Resolve(match, m.store)
	if err != nil {
		return Outcome{}, fmt.Errorf("quotation %s: %w", q.ID, err)
	}
	outcome.Matched = true
	outcome.Match = match
	outcome.Resolution = res
	outcome.Fields = Fields{
		StartTime:        res.StartTime,
		EstimatedEndTime: res.EstimatedEndTime,
		StartLine:        strconv.Itoa(match.StartLine()),
		EndLine:          strconv.Itoa(match.EndLine()),
	}
	if res.StartEstimated {
		outcome.Fields.EstimatedStartTime = res.StartTime
	}
	m.logger.Debug("quotation matched",
		logging.Quotation(q.ID),
		logging.Int("start_line", match.StartLine()),
		logging.Int("end_line", match.EndLine()),
		logging.String("rigor", match.Rigor.String()),
		logging.Bool("start_estimated", res.StartEstimated),
	)
	return outcome, nil
}
