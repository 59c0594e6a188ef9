package document

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Heading is a node in a document's table of contents.
type Heading struct {
	Level    int        `json:"level"`
	Text     string     `json:"text"`
	Children []*Heading `json:"children,omitempty"`
}

// Outline builds the heading hierarchy of an HTML fragment. Lower-level
// headings nest under the closest preceding higher-level one.
func Outline(content string) []*Heading {
	nodes, err := ParseFragment(content)
	if err != nil {
		return nil
	}

	type stackEntry struct {
		node  *Heading
		level int
	}
	root := &Heading{}
	stack := []stackEntry{{node: root, level: 0}}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := HeadingLevel(n.Data); level > 0 {
				h := &Heading{Level: level, Text: TextContent(n)}
				for len(stack) > 1 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, h)
				stack = append(stack, stackEntry{node: h, level: level})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return root.Children
}

// PlainText strips markup from an HTML fragment and collapses whitespace,
// for previews and search.
func PlainText(content string) string {
	nodes, err := ParseFragment(content)
	if err != nil {
		return ""
	}
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			buf.WriteByte(' ')
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

// ParseFragment parses content as the children of a <body> element.
func ParseFragment(content string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(content), body)
}

// HeadingLevel returns 1-6 for h1-h6 and 0 for any other tag.
func HeadingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// TextContent returns the trimmed concatenated text below n.
func TextContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "tr", "td", "th", "br", "table", "ul", "ol", "pre",
		"h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}
