package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"

	"github.com/russellconstruction9/RRsolutions/internal/document"
)

// headingSizes are half-point run sizes for h1..h6.
var headingSizes = [...]string{"36", "30", "26", "24", "22", "22"}

// DOCX writes doc as a Word document. The title becomes a Heading1
// paragraph; headings, paragraphs, lists, tables and preformatted blocks in
// the body are mapped to their Word counterparts.
func DOCX(doc document.Document, w io.Writer) error {
	nodes, err := document.ParseFragment(doc.Content)
	if err != nil {
		return fmt.Errorf("parse document html: %w", err)
	}

	f := docx.New().WithDefaultTheme()
	title := f.AddParagraph().Style("Heading1")
	title.AddText(doc.Title).Bold().Size(headingSizes[0])

	b := &docxBuilder{f: f}
	for _, n := range nodes {
		b.block(n, 0)
	}
	b.flush()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

type docxBuilder struct {
	f *docx.Docx
	// pending collects loose inline content between blocks.
	pending *docx.Paragraph
}

type runStyle struct {
	bold, italic bool
}

func (b *docxBuilder) flush() { b.pending = nil }

func (b *docxBuilder) block(n *html.Node, depth int) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return
		}
		if b.pending == nil {
			b.pending = b.f.AddParagraph()
		}
		addInline(b.pending, n, runStyle{})
		return
	case html.ElementNode:
	default:
		return
	}

	if level := document.HeadingLevel(n.Data); level > 0 {
		b.flush()
		p := b.f.AddParagraph().Style("Heading" + strconv.Itoa(level))
		p.AddText(collapse(document.TextContent(n))).Bold().Size(headingSizes[level-1])
		return
	}

	switch n.Data {
	case "p":
		b.flush()
		addChildren(b.f.AddParagraph(), n, runStyle{})
	case "ul", "ol":
		b.flush()
		b.list(n, n.Data == "ol", depth)
	case "table":
		b.flush()
		b.table(n)
	case "pre":
		b.flush()
		for _, line := range strings.Split(strings.Trim(document.TextContent(n), "\n"), "\n") {
			b.f.AddParagraph().AddText(line).Font("Courier New", "Courier New", "Courier New", "default")
		}
	case "br", "hr":
		b.flush()
	case "b", "strong", "i", "em", "span", "a", "u", "code":
		if b.pending == nil {
			b.pending = b.f.AddParagraph()
		}
		addInline(b.pending, n, runStyle{})
	default:
		b.flush()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.block(c, depth)
		}
		b.flush()
	}
}

func (b *docxBuilder) list(n *html.Node, ordered bool, depth int) {
	num := 0
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		num++
		marker := "• "
		if ordered {
			marker = strconv.Itoa(num) + ". "
		}
		p := b.f.AddParagraph()
		p.AddText(strings.Repeat("    ", depth) + marker)
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				nested = append(nested, c)
				continue
			}
			addInline(p, c, runStyle{})
		}
		for _, sub := range nested {
			b.list(sub, sub.Data == "ol", depth+1)
		}
	}
}

func (b *docxBuilder) table(n *html.Node) {
	var rows [][]*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "tr":
				var cells []*html.Node
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						cells = append(cells, cell)
					}
				}
				rows = append(rows, cells)
			case "thead", "tbody", "tfoot":
				collect(c)
			}
		}
	}
	collect(n)

	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if len(rows) == 0 || cols == 0 {
		return
	}

	t := b.f.AddTable(len(rows), cols, 0, nil)
	for i, r := range rows {
		for j := range cols {
			p := t.TableRows[i].TableCells[j].AddParagraph()
			if j >= len(r) {
				continue
			}
			addChildren(p, r[j], runStyle{bold: r[j].Data == "th"})
		}
	}
}

func addChildren(p *docx.Paragraph, n *html.Node, st runStyle) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		addInline(p, c, st)
	}
}

func addInline(p *docx.Paragraph, n *html.Node, st runStyle) {
	switch n.Type {
	case html.TextNode:
		text := collapse(n.Data)
		if text == "" {
			return
		}
		r := p.AddText(text)
		if st.bold {
			r.Bold()
		}
		if st.italic {
			r.Italic()
		}
	case html.ElementNode:
		switch n.Data {
		case "b", "strong", "th":
			st.bold = true
		case "i", "em":
			st.italic = true
		case "br":
			p.AddText(" ")
			return
		}
		addChildren(p, n, st)
	}
}

// collapse squeezes whitespace runs to one space, keeping a single leading
// or trailing space so adjacent runs stay separated.
func collapse(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if strings.TrimLeft(s, " \t\n\r") != s {
		out = " " + out
	}
	if strings.TrimRight(s, " \t\n\r") != s {
		out += " "
	}
	return out
}
