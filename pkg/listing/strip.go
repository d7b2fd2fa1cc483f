package listing

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags flattens an HTML fragment to its text content. Source scrapers
// sometimes hand us description snippets with markup still attached.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(b.String())
}
