package atlas

import "errors"

var (
	// ErrQuotationNotFound reports a quotation id absent from the primary document.
	ErrQuotationNotFound = errors.New("quotation not found")
	// ErrMissingAttribute reports an element lacking an attribute the merge needs.
	ErrMissingAttribute = errors.New("missing required attribute")
	// ErrPrimaryDocumentNotFound reports an export without the configured primary document.
	ErrPrimaryDocumentNotFound = errors.New("primary document not found")
)
