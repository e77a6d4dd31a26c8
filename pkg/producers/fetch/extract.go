package fetch

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractText reduces an HTML document to its visible text: the page title
// followed by the text content of the body. Script, style, and noscript
// subtrees are skipped and surrounding whitespace is trimmed per text run.
func ExtractText(document string) string {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return document
	}

	var (
		title string
		parts []string
	)

	var walk func(node *html.Node, inBody bool)
	walk = func(node *html.Node, inBody bool) {
		switch node.Type {
		case html.ElementNode:
			switch node.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if title == "" && node.FirstChild != nil {
					title = strings.TrimSpace(node.FirstChild.Data)
				}

				return
			case "body":
				inBody = true
			}
		case html.TextNode:
			if inBody {
				if text := strings.TrimSpace(node.Data); text != "" {
					parts = append(parts, text)
				}
			}
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child, inBody)
		}
	}

	walk(root, false)

	text := strings.Join(parts, "\n")
	if title != "" && text != "" {
		return title + "\n\n" + text
	}

	if title != "" {
		return title
	}

	return text
}
