package align

import (
	"errors"
	"fmt"
	"log/slog"

	"stampatlas/internal/logging"
	"stampatlas/internal/transcript"
)

// Resolution holds the timestamps derived for a matched quotation.
type Resolution struct {
	// StartTime is the first timestamp on a matched line, or the nearest
	// earlier timestamp when StartEstimated is set.
	StartTime      string
	StartEstimated bool
	// EstimatedEndTime is the first timestamp after the last matched line.
	EstimatedEndTime string
}

// Resolve derives start and estimated end timestamps for match.
func Resolve(match Match, store *transcript.Store) (Resolution, error) {
	if len(match.Slots) == 0 {
		return Resolution{}, errors.New("resolve: empty match")
	}
	var res Resolution
	for _, slot := range match.Slots {
		if stamp, _, ok := transcript.SplitLine(slot.Text); ok {
			res.StartTime = stamp
			break
		}
	}
	if res.StartTime == "" {
		stamp, _, err := store.PreviousTimestamp(match.StartLine())
		if err != nil {
			return Resolution{}, fmt.Errorf("%w: estimate start before line %d: %w", ErrTimestampBoundaryExhausted, match.StartLine(), err)
		}
		res.StartTime = stamp
		res.StartEstimated = true
	}
	end, _, err := store.NextTimestamp(match.EndLine())
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: estimate end after line %d: %w", ErrTimestampBoundaryExhausted, match.EndLine(), err)
	}
	res.EstimatedEndTime = end
	return res, nil
}

// Duration renders the elapsed time between two timestamps as H:MM:SS[.ffffff].
// A missing, unparseable, or reversed pair yields ErrUnparseableTimestamp.
func Duration(start, end string) (string, error) {
	elapsed, err := transcript.Elapsed(start, end)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnparseableTimestamp, err)
	}
	if elapsed < 0 {
		return "", fmt.Errorf("%w: end %s precedes start %s", ErrUnparseableTimestamp, end, start)
	}
	return transcript.FormatElapsed(elapsed), nil
}

// DurationOrEmpty is Duration for reporting: failures are logged as warnings
// and produce an empty string.
func DurationOrEmpty(logger *slog.Logger, start, end string) string {
	out, err := Duration(start, end)
	if err != nil {
		logging.WarnWithContext(logger, "duration unavailable", "duration_unparseable",
			logging.String("start", start),
			logging.String("end", end),
			logging.Error(err),
			logging.String(logging.FieldImpact, "report duration cell left empty"),
		)
		return ""
	}
	return out
}
