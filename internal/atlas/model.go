package atlas

import (
	"strings"

	"stampatlas/internal/align"
)

// Attribute names written by Apply.
const (
	AttrStartTime          = "startTime"
	AttrEstimatedEndTime   = "estimatedEndTime"
	AttrStartLine          = "startLine"
	AttrEndLine            = "endLine"
	AttrEstimatedStartTime = "estimatedStartTime"
)

// Quotation is a coded excerpt of the primary document.
type Quotation struct {
	ID   string
	Name string
	Loc  string
	// Paragraphs holds the text of each content/p element; empty elements
	// yield empty strings.
	Paragraphs []string

	node *Node
}

// Input converts the quotation into the matcher's input form.
func (q Quotation) Input() align.Quotation {
	return align.Quotation{
		ID:         q.ID,
		Label:      q.Name,
		Loc:        q.Loc,
		Paragraphs: q.Paragraphs,
	}
}

// Text joins the non-empty paragraphs.
func (q Quotation) Text() string {
	var b strings.Builder
	for _, p := range q.Paragraphs {
		b.WriteString(p)
	}
	return b.String()
}

// Attr reads an attribute of the underlying element, including the fields
// attached by Apply. Absent attributes read as "".
func (q Quotation) Attr(name string) string {
	if q.node == nil {
		return ""
	}
	return q.node.AttrOr(name, "")
}

// Code is a coding category.
type Code struct {
	ID   string
	Name string
}

// Memo is a free-text note attached to the unit.
type Memo struct {
	ID   string
	Name string
	Text string
}

// Family groups codes under a name.
type Family struct {
	ID      string
	Name    string
	Members []string
}

// Link records that a code was applied to a quotation.
type Link struct {
	CodeID      string
	QuotationID string
}

func newQuotation(n *Node) Quotation {
	q := Quotation{
		ID:   n.AttrOr("id", ""),
		Name: n.AttrOr("name", ""),
		Loc:  n.AttrOr("loc", ""),
		node: n,
	}
	for _, p := range n.Find("content/p") {
		q.Paragraphs = append(q.Paragraphs, p.Text())
	}
	return q
}
