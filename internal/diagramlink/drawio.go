package diagramlink

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/klauspost/compress/flate"
	"golang.org/x/net/html"
)

const maxInflatedBytes = 32 << 20

var ErrNotDrawio = errors.New("not a draw.io document")

type DrawioDocument struct {
	Pages []DrawioPage
}

type DrawioPage struct {
	ID     string
	Name   string
	Shapes []DrawioShape
	Links  []DrawioLink
}

type DrawioShape struct {
	ID    string
	Label string
	Style string
}

type DrawioLink struct {
	ID     string
	Source string
	Target string
	Label  string
}

type mxFile struct {
	XMLName  xml.Name
	Diagrams []mxDiagram `xml:"diagram"`
	Root     *mxRoot     `xml:"root"`
}

type mxDiagram struct {
	ID      string        `xml:"id,attr"`
	Name    string        `xml:"name,attr"`
	Model   *mxGraphModel `xml:"mxGraphModel"`
	Payload string        `xml:",chardata"`
}

type mxGraphModel struct {
	Root mxRoot `xml:"root"`
}

type mxRoot struct {
	Cells       []mxCell   `xml:"mxCell"`
	Objects     []mxObject `xml:"object"`
	UserObjects []mxObject `xml:"UserObject"`
}

type mxObject struct {
	ID    string `xml:"id,attr"`
	Label string `xml:"label,attr"`
	Cell  mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID     string `xml:"id,attr"`
	Value  string `xml:"value,attr"`
	Style  string `xml:"style,attr"`
	Vertex string `xml:"vertex,attr"`
	Edge   string `xml:"edge,attr"`
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
}

// ReadDrawio parses an .drawio/.xml export. Both plain pages and compressed
// pages (base64 of raw deflate of the URL-escaped model) are supported.
func ReadDrawio(r io.Reader) (DrawioDocument, error) {
	var file mxFile
	if err := xml.NewDecoder(r).Decode(&file); err != nil {
		return DrawioDocument{}, fmt.Errorf("%w: %v", ErrNotDrawio, err)
	}

	switch file.XMLName.Local {
	case "mxGraphModel":
		if file.Root == nil {
			return DrawioDocument{}, ErrNotDrawio
		}
		return DrawioDocument{Pages: []DrawioPage{buildPage("", "", *file.Root)}}, nil
	case "mxfile":
	default:
		return DrawioDocument{}, fmt.Errorf("%w: unexpected root <%s>", ErrNotDrawio, file.XMLName.Local)
	}

	doc := DrawioDocument{Pages: make([]DrawioPage, 0, len(file.Diagrams))}
	for _, d := range file.Diagrams {
		model := d.Model
		if model == nil {
			inflated, err := inflatePayload(d.Payload)
			if err != nil {
				return DrawioDocument{}, fmt.Errorf("page %q: %w", d.Name, err)
			}
			model = inflated
		}
		doc.Pages = append(doc.Pages, buildPage(d.ID, d.Name, model.Root))
	}
	return doc, nil
}

func inflatePayload(payload string) (*mxGraphModel, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return &mxGraphModel{}, nil
	}
	compressed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode page payload: %w", err)
	}

	fr := flate.NewReader(bytes.NewReader(compressed))
	defer func() { _ = fr.Close() }()
	raw, err := io.ReadAll(io.LimitReader(fr, maxInflatedBytes))
	if err != nil {
		return nil, fmt.Errorf("inflate page payload: %w", err)
	}

	text, err := url.PathUnescape(string(raw))
	if err != nil {
		return nil, fmt.Errorf("unescape page payload: %w", err)
	}

	var model mxGraphModel
	if err := xml.Unmarshal([]byte(text), &model); err != nil {
		return nil, fmt.Errorf("parse page model: %w", err)
	}
	return &model, nil
}

func buildPage(id, name string, root mxRoot) DrawioPage {
	page := DrawioPage{ID: id, Name: name}
	add := func(c mxCell, id, label string) {
		switch {
		case c.Edge == "1":
			page.Links = append(page.Links, DrawioLink{ID: id, Source: c.Source, Target: c.Target, Label: cellText(label, c.Style)})
		case c.Vertex == "1":
			page.Shapes = append(page.Shapes, DrawioShape{ID: id, Label: cellText(label, c.Style), Style: c.Style})
		}
	}
	for _, c := range root.Cells {
		add(c, c.ID, c.Value)
	}
	for _, objects := range [][]mxObject{root.Objects, root.UserObjects} {
		for _, o := range objects {
			add(o.Cell, o.ID, o.Label)
		}
	}
	return page
}

// cellText turns a cell value into plain text. Values of cells styled with
// html=1 are markup.
func cellText(value, style string) string {
	if !strings.Contains(style, "html=1") {
		return strings.Join(strings.Fields(value), " ")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(value))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br", "div", "p", "li":
				b.WriteByte(' ')
			}
		}
	}
}

// Summary is a one-line description of the document's contents.
func (d DrawioDocument) Summary() string {
	var shapes, links int
	for _, p := range d.Pages {
		shapes += len(p.Shapes)
		links += len(p.Links)
	}
	return fmt.Sprintf("%d page(s), %d shape(s), %d connector(s)", len(d.Pages), shapes, links)
}
