// Package svg parses SVG documents far enough for the library's needs:
// viewBox dimensions, path data, and fill/stroke color extraction and
// rewriting. It is not a general SVG renderer.
package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/iconvault/iconvault/internal/errors"
)

// DefaultSize is assumed when a document has no usable viewBox.
const DefaultSize = 24.0

// Document is a parsed SVG element tree.
type Document struct {
	root *element
}

type element struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*element
	text     string
}

// Path is one <path> element's relevant attributes.
type Path struct {
	D    string
	Fill string
}

// Parse builds a Document from raw SVG bytes.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var stack []*element
	var root *element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Validation("svg content is not well-formed XML").WithCause(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name, attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.Validation("svg content has multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.Validation("svg content is not well-formed XML")
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.Validation("svg content is empty")
	}
	if root.name.Local != "svg" {
		return nil, errors.Validationf("root element is <%s>, expected <svg>", root.name.Local)
	}
	return &Document{root: root}, nil
}

// ViewBox returns the document's width and height from the viewBox
// attribute. Absent, malformed, or non-positive dimensions fall back to
// DefaultSize per axis.
func (d *Document) ViewBox() (width, height float64) {
	width, height = DefaultSize, DefaultSize

	raw := d.root.attr("viewBox")
	if raw == "" {
		return width, height
	}
	fields := strings.Fields(strings.ReplaceAll(raw, ",", " "))
	if len(fields) != 4 {
		return width, height
	}
	if w, err := strconv.ParseFloat(fields[2], 64); err == nil && w > 0 {
		width = w
	}
	if h, err := strconv.ParseFloat(fields[3], 64); err == nil && h > 0 {
		height = h
	}
	return width, height
}

// Paths returns every <path> element with a non-empty d attribute, in
// document order.
func (d *Document) Paths() []Path {
	var out []Path
	d.root.walk(func(el *element) {
		if el.name.Local != "path" {
			return
		}
		pd := el.attr("d")
		if pd == "" {
			return
		}
		out = append(out, Path{D: pd, Fill: el.attr("fill")})
	})
	return out
}

// ExtractColors returns the distinct fill and stroke colors in document
// order. "none" and url(...) paint references are not colors and are
// skipped.
func (d *Document) ExtractColors() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		if !isColor(v) || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}
	d.root.walk(func(el *element) {
		add(el.attr("fill"))
		add(el.attr("stroke"))
	})
	return out
}

// Recolor rewrites fill and stroke attributes per the mapping (old color →
// new color). Unmapped colors and non-color paints are left alone.
func (d *Document) Recolor(mapping map[string]string) {
	d.root.walk(func(el *element) {
		for i := range el.attrs {
			name := el.attrs[i].Name.Local
			if name != "fill" && name != "stroke" {
				continue
			}
			v := el.attrs[i].Value
			if !isColor(v) {
				continue
			}
			if next, ok := mapping[v]; ok {
				el.attrs[i].Value = next
			}
		}
	})
}

// Encode serializes the document back to SVG bytes.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeElement(&buf, d.root); err != nil {
		return nil, errors.Internal("serialize svg").WithCause(err)
	}
	return buf.Bytes(), nil
}

func isColor(v string) bool {
	return v != "" && v != "none" && !strings.HasPrefix(v, "url")
}

func (e *element) attr(local string) string {
	for _, a := range e.attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func (e *element) walk(fn func(*element)) {
	fn(e)
	for _, c := range e.children {
		c.walk(fn)
	}
}

func writeElement(buf *bytes.Buffer, el *element) error {
	buf.WriteByte('<')
	buf.WriteString(el.name.Local)
	for _, a := range el.attrs {
		buf.WriteByte(' ')
		buf.WriteString(attrName(a.Name))
		buf.WriteString(`="`)
		if err := xml.EscapeText(buf, []byte(a.Value)); err != nil {
			return err
		}
		buf.WriteByte('"')
	}

	text := strings.TrimSpace(el.text)
	if len(el.children) == 0 && text == "" {
		buf.WriteString("/>")
		return nil
	}

	buf.WriteByte('>')
	if text != "" {
		if err := xml.EscapeText(buf, []byte(text)); err != nil {
			return err
		}
	}
	for _, c := range el.children {
		if err := writeElement(buf, c); err != nil {
			return err
		}
	}
	buf.WriteString("</")
	buf.WriteString(el.name.Local)
	buf.WriteByte('>')
	return nil
}

// attrName restores the source form of an attribute name from the decoder's
// namespace-resolved representation. The xlink namespace is the only
// prefixed attribute namespace seen in icon SVGs in practice.
func attrName(n xml.Name) string {
	switch n.Space {
	case "":
		return n.Local
	case "xmlns":
		return "xmlns:" + n.Local
	case "http://www.w3.org/1999/xlink":
		return "xlink:" + n.Local
	case "http://www.w3.org/2000/svg":
		return n.Local
	case "http://www.w3.org/XML/1998/namespace":
		return "xml:" + n.Local
	default:
		return n.Local
	}
}
