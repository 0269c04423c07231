package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags are elements that terminate a line of visible text
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "table": true, "blockquote": true, "pre": true,
	"br": true, "hr": true,
}

// FromHTML extracts the visible text of an HTML document, keeping block
// structure as line breaks so downstream boundary detection still has
// paragraphs and headings to work with.
func FromHTML(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			// Skip non-content elements
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockTags[n.Data] {
			buf.WriteString("\n")
			// Headings and paragraphs open a new paragraph
			switch n.Data {
			case "p", "h1", "h2", "h3", "h4", "h5", "h6", "table", "blockquote":
				buf.WriteString("\n")
			}
		}
	}

	walk(doc)
	return buf.String(), nil
}
