// Copyright 2026 The jotdown Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package jotdown

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go4.org/bytereplacer"
)

// An HTMLRenderer converts a parsed document's events into HTML.
//
// # Security considerations
//
// Djot permits raw HTML blocks and raw inline content,
// which can introduce Cross-Site Scripting (XSS) vulnerabilities
// when used with untrusted inputs.
// Set IgnoreRaw to drop raw content,
// or send the resulting HTML through a sanitizer.
type HTMLRenderer struct {
	// If IgnoreRaw is true, the renderer skips raw blocks and raw
	// inline content regardless of their format.
	IgnoreRaw bool
}

// RenderHTML writes the remaining events of p to w as HTML
// using the default options for [HTMLRenderer].
func RenderHTML(w io.Writer, p *Parser) error {
	return (&HTMLRenderer{}).Render(w, p)
}

// Render writes the remaining events of p to w as HTML.
func (r *HTMLRenderer) Render(w io.Writer, p *Parser) error {
	hw := &htmlWriter{opts: r}
	for {
		ev, ok := p.Next()
		if !ok {
			break
		}
		hw.event(ev)
	}
	if _, err := w.Write(hw.buf); err != nil {
		return fmt.Errorf("render djot to html: %w", err)
	}
	return nil
}

var (
	htmlEscaper = bytereplacer.New(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = bytereplacer.New(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
)

type htmlContainer struct {
	kind  EventKind
	tight bool
	level int
	style ListStyle
	head  bool
}

type htmlWriter struct {
	buf  []byte
	opts *HTMLRenderer

	containers []htmlContainer

	// Image alt text is captured instead of written.
	altDepth int
	alt      []byte

	// Raw content passes through unescaped or is dropped.
	raw     bool
	rawSkip bool
}

func (hw *htmlWriter) event(ev Event) {
	if hw.altDepth > 0 && ev.Kind != ImageKind {
		if ev.Kind == TextKind || ev.Kind == SoftBreakKind {
			hw.alt = append(hw.alt, hw.altText(ev)...)
		}
		return
	}
	switch ev.Pos {
	case PosStart:
		hw.start(ev)
	case PosEnd:
		hw.end(ev)
	default:
		hw.atom(ev)
	}
}

func (hw *htmlWriter) altText(ev Event) []byte {
	if ev.Kind == SoftBreakKind {
		return []byte(" ")
	}
	return ev.Text
}

func (hw *htmlWriter) push(ev Event) {
	c := htmlContainer{kind: ev.Kind, level: ev.Level, style: ev.ListStyle, head: ev.Head}
	switch ev.Kind {
	case ListKind:
		c.tight = ev.Tight
	case ListItemKind:
		if n := len(hw.containers); n > 0 {
			c.tight = hw.containers[n-1].tight
		}
	}
	hw.containers = append(hw.containers, c)
}

func (hw *htmlWriter) pop() htmlContainer {
	n := len(hw.containers)
	if n == 0 {
		return htmlContainer{}
	}
	c := hw.containers[n-1]
	hw.containers = hw.containers[:n-1]
	return c
}

// tightItemAt reports whether the container at stack index i is a list
// item of a tight list. Paragraphs inside such items are unwrapped.
func (hw *htmlWriter) tightItemAt(i int) bool {
	return i >= 0 && i < len(hw.containers) &&
		hw.containers[i].kind == ListItemKind && hw.containers[i].tight
}

func (hw *htmlWriter) start(ev Event) {
	hw.push(ev)
	switch ev.Kind {
	case ParagraphKind:
		if hw.tightItemAt(len(hw.containers) - 2) {
			return
		}
		hw.tag("p", ev.Attrs)
	case HeadingKind:
		hw.tag("h"+strconv.Itoa(ev.Level), ev.Attrs)
	case BlockQuoteKind:
		hw.tag("blockquote", ev.Attrs)
		hw.nl()
	case ListKind:
		if ev.ListStyle.IsOrdered() {
			hw.buf = append(hw.buf, "<ol"...)
			if ev.ListStart > 1 {
				hw.buf = append(hw.buf, ` start="`...)
				hw.buf = strconv.AppendInt(hw.buf, int64(ev.ListStart), 10)
				hw.buf = append(hw.buf, '"')
			}
			if t := listTypeAttr(ev.ListStyle); t != "" {
				hw.buf = append(hw.buf, ` type="`...)
				hw.buf = append(hw.buf, t...)
				hw.buf = append(hw.buf, '"')
			}
			hw.appendAttrs(ev.Attrs)
			hw.buf = append(hw.buf, '>')
		} else {
			hw.tag("ul", ev.Attrs)
		}
		hw.nl()
	case ListItemKind:
		hw.tag("li", ev.Attrs)
	case CodeBlockKind:
		hw.buf = append(hw.buf, "<pre><code"...)
		if len(ev.Lang) > 0 {
			hw.buf = append(hw.buf, ` class="language-`...)
			hw.buf = append(hw.buf, attrEscaped(ev.Lang)...)
			hw.buf = append(hw.buf, '"')
		}
		hw.appendAttrs(ev.Attrs)
		hw.buf = append(hw.buf, '>')
	case RawBlockKind, RawInlineKind:
		if hw.opts.IgnoreRaw || !bytes.Equal(ev.Lang, []byte("html")) {
			hw.rawSkip = true
		} else {
			hw.raw = true
		}
	case DivKind:
		hw.buf = append(hw.buf, "<div"...)
		if len(ev.Class) > 0 {
			hw.buf = append(hw.buf, ` class="`...)
			hw.buf = append(hw.buf, attrEscaped(ev.Class)...)
			hw.buf = append(hw.buf, '"')
		}
		hw.appendAttrs(ev.Attrs)
		hw.buf = append(hw.buf, '>')
		hw.nl()
	case TableKind:
		hw.tag("table", ev.Attrs)
		hw.nl()
	case TableRowKind:
		hw.tag("tr", ev.Attrs)
		hw.nl()
	case TableCellKind:
		name := "td"
		if ev.Head {
			name = "th"
		}
		hw.buf = append(hw.buf, '<')
		hw.buf = append(hw.buf, name...)
		if style := alignStyle(ev.Align); style != "" {
			hw.buf = append(hw.buf, ` style="`...)
			hw.buf = append(hw.buf, style...)
			hw.buf = append(hw.buf, '"')
		}
		hw.appendAttrs(ev.Attrs)
		hw.buf = append(hw.buf, '>')
	case FootnoteKind:
		hw.buf = append(hw.buf, `<div class="footnote" id="fn-`...)
		hw.buf = append(hw.buf, attrEscaped(ev.Text)...)
		hw.buf = append(hw.buf, `">`...)
		hw.nl()
	case EmphasisKind:
		hw.tag("em", ev.Attrs)
	case StrongKind:
		hw.tag("strong", ev.Attrs)
	case SuperscriptKind:
		hw.tag("sup", ev.Attrs)
	case SubscriptKind:
		hw.tag("sub", ev.Attrs)
	case InsertKind:
		hw.tag("ins", ev.Attrs)
	case DeleteKind:
		hw.tag("del", ev.Attrs)
	case MarkKind:
		hw.tag("mark", ev.Attrs)
	case SpanKind:
		hw.tag("span", ev.Attrs)
	case LinkKind:
		hw.buf = append(hw.buf, `<a href="`...)
		hw.buf = append(hw.buf, attrEscaped(ev.Dest)...)
		hw.buf = append(hw.buf, '"')
		hw.appendAttrs(ev.Attrs)
		hw.buf = append(hw.buf, '>')
	case ImageKind:
		hw.altDepth++
		if hw.altDepth == 1 {
			hw.alt = hw.alt[:0]
			hw.buf = append(hw.buf, `<img src="`...)
			hw.buf = append(hw.buf, attrEscaped(ev.Dest)...)
			hw.buf = append(hw.buf, '"')
			hw.appendAttrs(ev.Attrs)
		}
	case VerbatimKind:
		hw.tag("code", ev.Attrs)
	case InlineMathKind:
		hw.buf = append(hw.buf, `<span class="math inline">\(`...)
	case DisplayMathKind:
		hw.buf = append(hw.buf, `<span class="math display">\[`...)
	case SingleQuotedKind:
		hw.buf = append(hw.buf, "&lsquo;"...)
	case DoubleQuotedKind:
		hw.buf = append(hw.buf, "&ldquo;"...)
	}
}

func (hw *htmlWriter) end(ev Event) {
	c := hw.pop()
	switch ev.Kind {
	case ParagraphKind:
		if hw.tightItemAt(len(hw.containers) - 1) {
			hw.nl()
			return
		}
		hw.close("p")
		hw.nl()
	case HeadingKind:
		hw.close("h" + strconv.Itoa(c.level))
		hw.nl()
	case BlockQuoteKind:
		hw.close("blockquote")
		hw.nl()
	case ListKind:
		if c.style.IsOrdered() {
			hw.close("ol")
		} else {
			hw.close("ul")
		}
		hw.nl()
	case ListItemKind:
		hw.close("li")
		hw.nl()
	case CodeBlockKind:
		hw.buf = append(hw.buf, "</code></pre>"...)
		hw.nl()
	case RawBlockKind, RawInlineKind:
		hw.raw = false
		hw.rawSkip = false
	case DivKind:
		hw.close("div")
		hw.nl()
	case TableKind:
		hw.close("table")
		hw.nl()
	case TableRowKind:
		hw.close("tr")
		hw.nl()
	case TableCellKind:
		if c.head {
			hw.close("th")
		} else {
			hw.close("td")
		}
		hw.nl()
	case FootnoteKind:
		hw.close("div")
		hw.nl()
	case EmphasisKind:
		hw.close("em")
	case StrongKind:
		hw.close("strong")
	case SuperscriptKind:
		hw.close("sup")
	case SubscriptKind:
		hw.close("sub")
	case InsertKind:
		hw.close("ins")
	case DeleteKind:
		hw.close("del")
	case MarkKind:
		hw.close("mark")
	case SpanKind:
		hw.close("span")
	case LinkKind:
		hw.close("a")
	case ImageKind:
		hw.altDepth--
		if hw.altDepth == 0 {
			if len(hw.alt) > 0 {
				hw.buf = append(hw.buf, ` alt="`...)
				hw.buf = append(hw.buf, attrEscaped(hw.alt)...)
				hw.buf = append(hw.buf, '"')
			}
			hw.buf = append(hw.buf, '>')
		}
	case VerbatimKind:
		hw.close("code")
	case InlineMathKind:
		hw.buf = append(hw.buf, `\)</span>`...)
	case DisplayMathKind:
		hw.buf = append(hw.buf, `\]</span>`...)
	case SingleQuotedKind:
		hw.buf = append(hw.buf, "&rsquo;"...)
	case DoubleQuotedKind:
		hw.buf = append(hw.buf, "&rdquo;"...)
	}
}

func (hw *htmlWriter) atom(ev Event) {
	switch ev.Kind {
	case TextKind:
		switch {
		case hw.rawSkip:
		case hw.raw:
			hw.buf = append(hw.buf, ev.Text...)
		default:
			hw.buf = append(hw.buf, htmlEscaped(ev.Text)...)
		}
	case SoftBreakKind:
		if !hw.rawSkip {
			hw.nl()
		}
	case HardBreakKind:
		hw.buf = append(hw.buf, "<br>"...)
		hw.nl()
	case NonBreakingSpaceKind:
		hw.buf = append(hw.buf, "&nbsp;"...)
	case EllipsisKind:
		hw.buf = append(hw.buf, "&hellip;"...)
	case EnDashKind:
		hw.buf = append(hw.buf, "&ndash;"...)
	case EmDashKind:
		hw.buf = append(hw.buf, "&mdash;"...)
	case ThematicBreakKind:
		hw.buf = append(hw.buf, "<hr"...)
		hw.appendAttrs(ev.Attrs)
		hw.buf = append(hw.buf, '>')
		hw.nl()
	case AutolinkKind:
		hw.buf = append(hw.buf, `<a href="`...)
		if bytes.ContainsRune(ev.Dest, '@') && !bytes.Contains(ev.Dest, []byte("://")) {
			hw.buf = append(hw.buf, "mailto:"...)
		}
		hw.buf = append(hw.buf, attrEscaped(ev.Dest)...)
		hw.buf = append(hw.buf, `">`...)
		hw.buf = append(hw.buf, htmlEscaped(ev.Text)...)
		hw.close("a")
	case FootnoteReferenceKind:
		hw.buf = append(hw.buf, `<a href="#fn-`...)
		hw.buf = append(hw.buf, attrEscaped(ev.Text)...)
		hw.buf = append(hw.buf, `" class="footnote-ref"><sup>`...)
		hw.buf = append(hw.buf, htmlEscaped(ev.Text)...)
		hw.buf = append(hw.buf, "</sup></a>"...)
	}
}

func (hw *htmlWriter) tag(name string, attrs *Attributes) {
	hw.buf = append(hw.buf, '<')
	hw.buf = append(hw.buf, name...)
	hw.appendAttrs(attrs)
	hw.buf = append(hw.buf, '>')
}

func (hw *htmlWriter) close(name string) {
	hw.buf = append(hw.buf, "</"...)
	hw.buf = append(hw.buf, name...)
	hw.buf = append(hw.buf, '>')
}

func (hw *htmlWriter) nl() {
	hw.buf = append(hw.buf, '\n')
}

func (hw *htmlWriter) appendAttrs(attrs *Attributes) {
	if attrs.Len() == 0 {
		return
	}
	wroteClass := false
	for _, a := range attrs.Entries() {
		if a.Key == attrClassKey {
			// Repeated class entries collapse into one attribute.
			if wroteClass {
				continue
			}
			wroteClass = true
			hw.buf = append(hw.buf, ` class="`...)
			hw.buf = append(hw.buf, attrEscaped([]byte(strings.Join(attrs.Classes(), " ")))...)
			hw.buf = append(hw.buf, '"')
			continue
		}
		hw.buf = append(hw.buf, ' ')
		hw.buf = append(hw.buf, a.Key...)
		hw.buf = append(hw.buf, `="`...)
		hw.buf = append(hw.buf, attrEscaped([]byte(a.Value))...)
		hw.buf = append(hw.buf, '"')
	}
}

func htmlEscaped(b []byte) []byte {
	return htmlEscaper.Replace(append([]byte(nil), b...))
}

func attrEscaped(b []byte) []byte {
	return attrEscaper.Replace(append([]byte(nil), b...))
}

func listTypeAttr(style ListStyle) string {
	switch style {
	case ListStyleAlphaLowerPeriod, ListStyleAlphaLowerParen:
		return "a"
	case ListStyleAlphaUpperPeriod, ListStyleAlphaUpperParen:
		return "A"
	default:
		return ""
	}
}

func alignStyle(a Alignment) string {
	switch a {
	case AlignLeft:
		return "text-align: left;"
	case AlignCenter:
		return "text-align: center;"
	case AlignRight:
		return "text-align: right;"
	default:
		return ""
	}
}
