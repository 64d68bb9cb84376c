package atlas

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/transform"

	"stampatlas/internal/align"
	"stampatlas/internal/transcript"
)

// DefaultPrimaryDocument is the primary document id used when none is set.
const DefaultPrimaryDocument = "pd_1"

const (
	pathPrimaryDocs = "primDocs/primDoc"
	pathQuotations  = "quotations/q"
	pathCodes       = "codes/code"
	pathMemos       = "memos/memo"
	pathFamilies    = "families/codeFamilies/codeFamily"
	pathLinks       = "links/objectSegmentLinks/codings/iLink"
	pathUnit        = "hermUnit"
)

type linkKey struct {
	code      string
	quotation string
}

// Document is a parsed Atlas.ti export.
type Document struct {
	tree    *Node
	root    *Node
	primary *Node
	links   map[linkKey]struct{}
}

// Option configures parsing.
type Option func(*parseOptions)

type parseOptions struct {
	primaryDocument string
}

// WithPrimaryDocument selects which primDoc supplies quotations.
func WithPrimaryDocument(id string) Option {
	return func(o *parseOptions) {
		if id != "" {
			o.primaryDocument = id
		}
	}
}

// ParseFile reads an export from disk.
func ParseFile(path string, opts ...Option) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open atlas export: %w", err)
	}
	defer file.Close()

	doc, err := Parse(file, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse atlas export %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes an export and checks that every quotation of the primary
// document carries an id and a loc attribute.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	cfg := parseOptions{primaryDocument: DefaultPrimaryDocument}
	for _, o := range opts {
		o(&cfg)
	}

	tree, err := decodeTree(r)
	if err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	root := tree.Children[0]

	doc := &Document{tree: tree, root: root, links: make(map[linkKey]struct{})}
	for _, pd := range root.Find(pathPrimaryDocs) {
		if pd.AttrOr("id", "") == cfg.primaryDocument {
			doc.primary = pd
			break
		}
	}
	if doc.primary == nil {
		return nil, fmt.Errorf("%w: %q", ErrPrimaryDocumentNotFound, cfg.primaryDocument)
	}
	for i, q := range doc.primary.Find(pathQuotations) {
		for _, name := range []string{"id", "loc"} {
			if _, ok := q.Attr(name); !ok {
				return nil, fmt.Errorf("%w: quotation #%d has no %s", ErrMissingAttribute, i+1, name)
			}
		}
	}
	for _, l := range root.Find(pathLinks) {
		doc.links[linkKey{code: l.AttrOr("obj", ""), quotation: l.AttrOr("qRef", "")}] = struct{}{}
	}
	return doc, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := transcript.LookupEncoding(label)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// Root exposes the element tree.
func (d *Document) Root() *Node {
	return d.root
}

// PrimaryDocument returns the id of the primary document.
func (d *Document) PrimaryDocument() string {
	return d.primary.AttrOr("id", "")
}

// UnitName returns the hermeneutic unit name, or "" when absent.
func (d *Document) UnitName() string {
	if unit := d.root.Child(pathUnit); unit != nil {
		return unit.AttrOr("name", "")
	}
	return ""
}

// Quotations lists the primary document's quotations in document order.
func (d *Document) Quotations() []Quotation {
	nodes := d.primary.Find(pathQuotations)
	out := make([]Quotation, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, newQuotation(n))
	}
	return out
}

// QuotationByID finds a quotation of the primary document.
func (d *Document) QuotationByID(id string) (Quotation, error) {
	for _, n := range d.primary.Find(pathQuotations) {
		if n.AttrOr("id", "") == id {
			return newQuotation(n), nil
		}
	}
	return Quotation{}, fmt.Errorf("%w: %s", ErrQuotationNotFound, id)
}

// Codes lists codes in document order.
func (d *Document) Codes() []Code {
	nodes := d.root.Find(pathCodes)
	out := make([]Code, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Code{ID: n.AttrOr("id", ""), Name: n.AttrOr("name", "")})
	}
	return out
}

// CodeByID finds a code by id.
func (d *Document) CodeByID(id string) (Code, bool) {
	for _, c := range d.Codes() {
		if c.ID == id {
			return c, true
		}
	}
	return Code{}, false
}

// Memos lists memos in document order.
func (d *Document) Memos() []Memo {
	nodes := d.root.Find(pathMemos)
	out := make([]Memo, 0, len(nodes))
	for _, n := range nodes {
		text := n.Text()
		if content := n.Child("content"); content != nil {
			text = content.Text()
		}
		out = append(out, Memo{ID: n.AttrOr("id", ""), Name: n.AttrOr("name", ""), Text: text})
	}
	return out
}

// CodeFamilies lists code families with the ids of their member codes.
func (d *Document) CodeFamilies() []Family {
	nodes := d.root.Find(pathFamilies)
	out := make([]Family, 0, len(nodes))
	for _, n := range nodes {
		f := Family{ID: n.AttrOr("id", ""), Name: n.AttrOr("name", "")}
		for _, item := range n.Children {
			if id, ok := item.Attr("id"); ok {
				f.Members = append(f.Members, id)
			}
		}
		out = append(out, f)
	}
	return out
}

// Links lists code-to-quotation links in document order.
func (d *Document) Links() []Link {
	nodes := d.root.Find(pathLinks)
	out := make([]Link, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Link{CodeID: n.AttrOr("obj", ""), QuotationID: n.AttrOr("qRef", "")})
	}
	return out
}

// LinkExists reports whether codeID was applied to quotationID.
func (d *Document) LinkExists(codeID, quotationID string) bool {
	_, ok := d.links[linkKey{code: codeID, quotation: quotationID}]
	return ok
}

// Apply writes derived fields onto the matching quotation elements. An
// empty EstimatedStartTime removes any marker left by an earlier run.
func (d *Document) Apply(fields map[string]align.Fields) error {
	nodes := make(map[string]*Node)
	for _, n := range d.primary.Find(pathQuotations) {
		nodes[n.AttrOr("id", "")] = n
	}
	for id, f := range fields {
		n, ok := nodes[id]
		if !ok {
			return fmt.Errorf("apply fields: %w: %s", ErrQuotationNotFound, id)
		}
		n.SetAttr(AttrStartTime, f.StartTime)
		n.SetAttr(AttrEstimatedEndTime, f.EstimatedEndTime)
		n.SetAttr(AttrStartLine, f.StartLine)
		n.SetAttr(AttrEndLine, f.EndLine)
		if f.EstimatedStartTime != "" {
			n.SetAttr(AttrEstimatedStartTime, f.EstimatedStartTime)
		} else {
			n.RemoveAttr(AttrEstimatedStartTime)
		}
	}
	return nil
}

// WriteTo serializes the tree as UTF-8. Everything the parser read is
// written back in place, including comments and whitespace, so only applied
// attributes differ from the input.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := encodeDocument(cw, d.tree); err != nil {
		return cw.n, fmt.Errorf("encode xml: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
