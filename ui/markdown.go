package ui

import (
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
)

var (
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	inlineCodeRegex = regexp.MustCompile(`\x1b\[44;3m(.*?)\x1b\[0m`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// RenderMarkdown renders markdown for a terminal of the given width. Links
// are flattened to their URLs and autolinking is off so terminals can detect
// them.
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	content = mdLinkRegex.ReplaceAllString(content, "$2")

	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width, 0)
	rendered := string(gomarkdown.Render(p.Parse([]byte(content)), r))

	// inline code: blue background to red text
	rendered = inlineCodeRegex.ReplaceAllString(rendered, "\x1b[31m$1\x1b[0m")
	return strings.TrimRight(rendered, "\n")
}

// StripANSI removes color escape sequences.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
