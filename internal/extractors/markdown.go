package extractors

import (
	"context"
	"regexp"
	"strings"

	"github.com/docsift/docsift/internal/extract"
)

var mdLinkRe = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)[^)]*\)`)

// Markdown extracts headers, links, and fenced code blocks from markdown by
// line scanning. The content is the source text itself; markdown is already
// readable.
type Markdown struct{}

func (Markdown) Extract(_ context.Context, data []byte, hint string, cfg extract.Config) (*extract.Result, error) {
	text, err := decodeToUTF8(data, hint)
	if err != nil {
		return nil, err
	}
	var (
		headers []string
		links   []string
		code    []string
		fence   strings.Builder
		inFence bool
		title   string
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				code = append(code, strings.TrimRight(fence.String(), "\n"))
				fence.Reset()
			}
			inFence = !inFence
			continue
		}
		if inFence {
			fence.WriteString(line)
			fence.WriteString("\n")
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			h := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			if h != "" {
				headers = append(headers, h)
				if title == "" && strings.HasPrefix(trimmed, "# ") {
					title = h
				}
			}
		}
		for _, m := range mdLinkRe.FindAllStringSubmatch(line, -1) {
			links = append(links, m[1])
		}
	}
	// An unterminated fence still counts as a code block.
	if inFence && fence.Len() > 0 {
		code = append(code, strings.TrimRight(fence.String(), "\n"))
	}
	body := capContent(text, cfg.MaxContentBytes)
	return &extract.Result{
		Content:    body,
		Title:      title,
		Format:     "text/markdown",
		Headers:    headers,
		Links:      links,
		CodeBlocks: code,
		WordCount:  extract.CountWords(body),
	}, nil
}
