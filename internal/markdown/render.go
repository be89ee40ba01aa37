// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts a lightweight markdown dialect to HTML.
//
// The dialect covers what assistant replies actually use: fenced and
// inline code, bold, italic, three heading levels, flat lists and
// paragraphs. Rendering is a pure function over the input string, so it
// is safe to call repeatedly on a growing prefix while a reply streams.
package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// Stage order is fixed. Escaping runs first so later stages operate on
// inert text, and fences are lifted out before inline code so a fence's
// backticks are consumed as a unit and its body stays untouched.
var (
	fenceRe      = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_+-]*\n)?(.*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`\n]+)`")

	boldStarRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnderscoreRe = regexp.MustCompile(`__([^_]+)__`)
	italicStarRe     = regexp.MustCompile(`\*([^*\n]+)\*`)
	italicUnderRe    = regexp.MustCompile(`_([^_\n]+)_`)

	h3Re = regexp.MustCompile(`(?m)^### (.+)$`)
	h2Re = regexp.MustCompile(`(?m)^## (.+)$`)
	h1Re = regexp.MustCompile(`(?m)^# (.+)$`)

	bulletRe  = regexp.MustCompile(`(?m)^[*+-] (.+)$`)
	numberRe  = regexp.MustCompile(`(?m)^\d+\. (.+)$`)
	itemRunRe = regexp.MustCompile(`(?m)(?:^<li>.*</li>\n?)+`)

	paragraphSplitRe = regexp.MustCompile(`\n{2,}`)
	blockStartRe     = regexp.MustCompile(`^(<(h[1-3]|ul|ol|pre)|\x00)`)
)

// Render converts markdown text to HTML. Empty input yields empty output.
// An unterminated code fence stays literal text; it never swallows the
// rest of the message, which matters while a fence is still streaming in.
func Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	out := escapeHTML(text)

	// Lift completed fences out so emphasis, headings and list markers
	// inside code are left alone. NUL cannot appear in escaped text.
	var blocks []string
	out = fenceRe.ReplaceAllStringFunc(out, func(m string) string {
		body := fenceRe.FindStringSubmatch(m)[1]
		blocks = append(blocks, "<pre><code>"+body+"</code></pre>")
		return "\x00" + strconv.Itoa(len(blocks)-1) + "\x00"
	})

	out = inlineCodeRe.ReplaceAllStringFunc(out, func(m string) string {
		body := inlineCodeRe.FindStringSubmatch(m)[1]
		blocks = append(blocks, "<code>"+body+"</code>")
		return "\x00" + strconv.Itoa(len(blocks)-1) + "\x00"
	})

	// Emphasis. Double markers before single so ** is not eaten as two *.
	out = boldStarRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = boldUnderscoreRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicStarRe.ReplaceAllString(out, "<em>$1</em>")
	out = italicUnderRe.ReplaceAllString(out, "<em>$1</em>")

	// Headings are line-anchored and need the space after #.
	out = h3Re.ReplaceAllString(out, "<h3>$1</h3>")
	out = h2Re.ReplaceAllString(out, "<h2>$1</h2>")
	out = h1Re.ReplaceAllString(out, "<h1>$1</h1>")

	// Unordered lists wrap first. A wrapped run collapses onto one line
	// so the ordered pass cannot see its items again.
	out = bulletRe.ReplaceAllString(out, "<li>$1</li>")
	out = itemRunRe.ReplaceAllStringFunc(out, func(run string) string {
		return wrapItems(run, "ul")
	})
	out = numberRe.ReplaceAllString(out, "<li>$1</li>")
	out = itemRunRe.ReplaceAllStringFunc(out, func(run string) string {
		return wrapItems(run, "ol")
	})

	out = paragraphs(out)

	// Put the code blocks back.
	for i, block := range blocks {
		out = strings.Replace(out, "\x00"+strconv.Itoa(i)+"\x00", block, 1)
	}
	return out
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// wrapItems joins a newline-separated run of <li> lines into one list
// element on a single line.
func wrapItems(run string, tag string) string {
	trailing := ""
	if strings.HasSuffix(run, "\n") {
		trailing = "\n"
		run = strings.TrimSuffix(run, "\n")
	}
	items := strings.ReplaceAll(run, "\n", "")
	return "<" + tag + ">" + items + "</" + tag + ">" + trailing
}

// paragraphs splits on blank lines, converts single newlines to <br>
// and leaves block-level chunks unwrapped.
func paragraphs(s string) string {
	chunks := paragraphSplitRe.Split(s, -1)
	var b strings.Builder
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		if blockStartRe.MatchString(chunk) {
			b.WriteString(chunk)
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(chunk, "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
