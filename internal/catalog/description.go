// Package catalog normalizes incoming book data: descriptions, the sample
// catalog and bulk JSON imports.
package catalog

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// markupTags are the elements that mark a description as HTML rather than
// prose that happens to contain angle brackets.
var markupTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Div: true, atom.Span: true,
	atom.B: true, atom.I: true, atom.Strong: true, atom.Em: true,
	atom.A: true, atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true,
}

// ContainsHTML reports whether s contains at least one known markup element.
func ContainsHTML(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input: no tag found before the end.
			return false
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			if markupTags[atom.Lookup(name)] {
				return true
			}
		}
	}
}

// NormalizeDescription converts HTML descriptions to Markdown and trims
// surrounding whitespace. Plain text is returned trimmed but otherwise unchanged,
// as is HTML the converter rejects.
func NormalizeDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
