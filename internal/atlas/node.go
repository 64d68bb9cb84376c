package atlas

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is one XML element. Names keep their literal prefix in Space, so
// xsi:type has Space "xsi". Element content is held in document order so the
// tree writes back out unchanged.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr
	Children []*Node

	content []item
}

// item is a child element or one of xml.CharData, xml.Comment, xml.ProcInst
// and xml.Directive.
type item struct {
	node *Node
	tok  xml.Token
}

// Name returns the element's local name.
func (n *Node) Name() string {
	return n.XMLName.Local
}

// Text returns the character data of the element and its descendants.
func (n *Node) Text() string {
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	for _, it := range n.content {
		switch t := it.tok.(type) {
		case nil:
			it.node.collectText(b)
		case xml.CharData:
			b.Write(t)
		}
	}
}

// Attr returns the value of the named unprefixed attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or fallback when it is absent.
func (n *Node) AttrOr(name, fallback string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return fallback
}

// SetAttr replaces or appends an attribute.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// RemoveAttr deletes an attribute if present.
func (n *Node) RemoveAttr(name string) {
	kept := n.Attrs[:0]
	for _, a := range n.Attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			continue
		}
		kept = append(kept, a)
	}
	n.Attrs = kept
}

// Child returns the first child element with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Find walks a slash-separated path of element names and returns every
// element reached, in document order.
func (n *Node) Find(path string) []*Node {
	current := []*Node{n}
	for _, step := range strings.Split(path, "/") {
		var next []*Node
		for _, node := range current {
			for _, c := range node.Children {
				if c.Name() == step {
					next = append(next, c)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

func (n *Node) appendChild(c *Node) {
	n.Children = append(n.Children, c)
	n.content = append(n.content, item{node: c})
}

// decodeTree reads r into a document node. Its content is the prolog, the
// root element and anything after it.
func decodeTree(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charsetReader

	document := &Node{}
	stack := []*Node{document}
	for {
		tok, err := decoder.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		current := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 1 && len(document.Children) > 0 {
				return nil, fmt.Errorf("second root element <%s>", qualifiedName(t.Name))
			}
			t = t.Copy()
			node := &Node{XMLName: t.Name, Attrs: t.Attr}
			current.appendChild(node)
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 1 || t.Name != current.XMLName {
				return nil, fmt.Errorf("unexpected end element </%s>", qualifiedName(t.Name))
			}
			stack = stack[:len(stack)-1]
		default:
			current.content = append(current.content, item{tok: xml.CopyToken(t)})
		}
	}
	if len(stack) > 1 {
		return nil, fmt.Errorf("element <%s> is not closed", qualifiedName(stack[len(stack)-1].XMLName))
	}
	if len(document.Children) == 0 {
		return nil, errors.New("no root element")
	}
	return document, nil
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", "]]>", "]]&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;",
	)
)

const utf8Declaration = `<?xml version="1.0" encoding="UTF-8"?>`

// encodeDocument writes the document node. The XML declaration is kept when
// it already names UTF-8 and replaced otherwise, since output is always UTF-8.
func encodeDocument(w io.Writer, document *Node) error {
	bw := bufio.NewWriter(w)
	declared := false
	for i, it := range document.content {
		if pi, ok := it.tok.(xml.ProcInst); ok && pi.Target == "xml" && i == 0 {
			declared = true
			if isUTF8(declaredEncoding(pi.Inst)) {
				encodeItem(bw, it)
			} else {
				bw.WriteString(utf8Declaration)
			}
			continue
		}
		if !declared && i == 0 {
			bw.WriteString(xml.Header)
		}
		encodeItem(bw, it)
	}
	return bw.Flush()
}

func encodeItem(w *bufio.Writer, it item) {
	switch t := it.tok.(type) {
	case nil:
		it.node.encode(w)
	case xml.CharData:
		textEscaper.WriteString(w, string(t))
	case xml.Comment:
		w.WriteString("<!--")
		w.Write(t)
		w.WriteString("-->")
	case xml.ProcInst:
		w.WriteString("<?")
		w.WriteString(t.Target)
		if len(t.Inst) > 0 {
			w.WriteByte(' ')
			w.Write(t.Inst)
		}
		w.WriteString("?>")
	case xml.Directive:
		w.WriteString("<!")
		w.Write(t)
		w.WriteByte('>')
	}
}

func (n *Node) encode(w *bufio.Writer) {
	w.WriteByte('<')
	w.WriteString(qualifiedName(n.XMLName))
	for _, a := range n.Attrs {
		w.WriteByte(' ')
		w.WriteString(qualifiedName(a.Name))
		w.WriteString(`="`)
		attrEscaper.WriteString(w, a.Value)
		w.WriteByte('"')
	}
	if len(n.content) == 0 {
		w.WriteString("/>")
		return
	}
	w.WriteByte('>')
	for _, it := range n.content {
		encodeItem(w, it)
	}
	w.WriteString("</")
	w.WriteString(qualifiedName(n.XMLName))
	w.WriteByte('>')
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// declaredEncoding returns the encoding pseudo-attribute of an XML
// declaration, or "" when it has none.
func declaredEncoding(inst []byte) string {
	s := string(inst)
	idx := strings.Index(s, "encoding")
	if idx < 0 {
		return ""
	}
	s = strings.TrimLeft(s[idx+len("encoding"):], " \t\r\n")
	if !strings.HasPrefix(s, "=") {
		return ""
	}
	s = strings.TrimLeft(s[1:], " \t\r\n")
	if s == "" || (s[0] != '"' && s[0] != '\'') {
		return ""
	}
	quote := s[0]
	end := strings.IndexByte(s[1:], quote)
	if end < 0 {
		return ""
	}
	return s[1 : end+1]
}

func isUTF8(encoding string) bool {
	return encoding == "" || strings.EqualFold(encoding, "utf-8") || strings.EqualFold(encoding, "utf8")
}
