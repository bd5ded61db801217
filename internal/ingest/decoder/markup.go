package decoder

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func isMarkupType(ct string) bool {
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// sniffMarkup catches login pages served without a useful content type.
// Declared JSON/CSV bodies are never sniffed.
func sniffMarkup(ct string, text []byte) bool {
	if strings.Contains(ct, "json") || strings.Contains(ct, "csv") {
		return false
	}
	head := bytes.ToLower(bytes.TrimSpace(text))
	if len(head) > 64 {
		head = head[:64]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func newAuthError(contentType string, body []byte) *AuthError {
	return &AuthError{ContentType: contentType, Title: pageTitle(body)}
}

// pageTitle returns the trimmed text of the first <title> element.
func pageTitle(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var find func(n *html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			return strings.Join(strings.Fields(sb.String()), " ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := find(c); t != "" {
				return t
			}
		}
		return ""
	}
	return find(doc)
}
