package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/docsift/docsift/internal/extract"
)

// HTML extracts readable text plus structure (title, headers, links, code
// blocks) from HTML sources. It prefers <main> or <article> over <body> and
// skips navigation and footer boilerplate.
type HTML struct{}

func (HTML) Extract(_ context.Context, data []byte, hint string, cfg extract.Config) (*extract.Result, error) {
	text, err := decodeToUTF8(data, hint)
	if err != nil {
		return nil, fmt.Errorf("decode html: %w", err)
	}
	root, err := html.Parse(bytes.NewReader([]byte(text)))
	if err != nil || root == nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	content := firstElement(root, "main")
	if content == nil {
		content = firstElement(root, "article")
	}
	if content == nil {
		content = firstElement(root, "body")
	}
	w := &htmlWalker{}
	if content != nil {
		w.walk(content, false)
	}
	body := capContent(extract.NormalizeWhitespace(w.text.String()), cfg.MaxContentBytes)
	return &extract.Result{
		Content:    body,
		Title:      strings.TrimSpace(pageTitle(root)),
		Format:     "text/html",
		Headers:    w.headers,
		Links:      w.links,
		CodeBlocks: w.code,
		WordCount:  extract.CountWords(body),
	}, nil
}

type htmlWalker struct {
	text    strings.Builder
	headers []string
	links   []string
	code    []string
}

func (w *htmlWalker) walk(n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch name {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe":
			return
		case "pre", "code":
			inPre = true
		case "br", "hr":
			w.text.WriteString("\n")
		case "p", "li", "ul", "ol":
			w.text.WriteString("\n")
		case "h1", "h2", "h3", "h4", "h5", "h6":
			w.text.WriteString("\n")
			w.headers = append(w.headers, strings.TrimSpace(innerText(n)))
		case "a":
			for _, attr := range n.Attr {
				if strings.EqualFold(attr.Key, "href") && attr.Val != "" && !strings.HasPrefix(attr.Val, "#") {
					w.links = append(w.links, attr.Val)
				}
			}
		}
	}
	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		w.text.WriteString(data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, inPre)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			w.text.WriteString("\n\n")
		case "li":
			w.text.WriteString("\n")
		case "pre":
			if c := strings.TrimRight(innerText(n), "\n"); c != "" {
				w.code = append(w.code, c)
			}
			w.text.WriteString("\n")
		case "code":
			w.text.WriteString("\n")
		}
	}
}

func pageTitle(root *html.Node) string {
	head := firstElement(root, "head")
	if head == nil {
		return ""
	}
	t := firstElement(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func firstElement(n *html.Node, tag string) *html.Node {
	var found *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if found != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			found = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if found != nil {
				return
			}
		}
	}
	dfs(n)
	return found
}

func innerText(n *html.Node) string {
	var b strings.Builder
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	dfs(n)
	return b.String()
}

