package align

import "errors"

var (
	// ErrMalformedSpan marks a claimed span that does not parse into two
	// ordered line numbers. It aborts the merge.
	ErrMalformedSpan = errors.New("malformed quotation span")
	// ErrMatchNotFound marks a quotation that could not be placed at any
	// rigor level. The merge records it and continues.
	ErrMatchNotFound = errors.New("quotation not found in transcript")
	// ErrTimestampBoundaryExhausted marks a timestamp scan that ran off the
	// transcript. It aborts the merge because the transcript lacks anchors.
	ErrTimestampBoundaryExhausted = errors.New("no timestamp within transcript bounds")
	// ErrUnparseableTimestamp marks a duration that could not be computed.
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
)
