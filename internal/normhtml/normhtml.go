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

// Package normhtml normalizes rendered HTML
// so tests can compare outputs
// without depending on insignificant whitespace
// or attribute ordering.
package normhtml

import (
	"bytes"
	"regexp"
	"sort"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var textEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// Normalize strips insignificant differences from an HTML fragment:
// runs of whitespace outside <pre> collapse to a single space,
// whitespace around block tags is dropped,
// attributes are sorted,
// and text is re-escaped consistently.
func Normalize(b []byte) []byte {
	tok := html.NewTokenizerFragment(bytes.NewReader(b), "div")
	var output []byte
	last := html.StartTagToken
	var lastTag string
	inPre := false
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return output
		case html.TextToken:
			data := tok.Text()
			afterTag := last == html.EndTagToken || last == html.StartTagToken
			if afterTag && lastTag == "br" {
				data = bytes.TrimLeft(data, "\n")
			}
			if !inPre {
				data = whitespaceRE.ReplaceAll(data, []byte(" "))
				if afterTag && isBlockTag(lastTag) {
					if last == html.StartTagToken {
						data = bytes.TrimLeftFunc(data, unicode.IsSpace)
					} else {
						data = bytes.TrimSpace(data)
					}
				}
			}
			output = append(output, textEscaper.Replace(bytes.Clone(data))...)
		case html.EndTagToken:
			tagBytes, _ := tok.TagName()
			tag := string(tagBytes)
			if tag == "pre" {
				inPre = false
			} else if isBlockTag(tag) {
				output = bytes.TrimRightFunc(output, unicode.IsSpace)
			}
			output = append(output, "</"...)
			output = append(output, tag...)
			output = append(output, ">"...)
			lastTag = tag
		case html.StartTagToken, html.SelfClosingTagToken:
			tagBytes, hasAttr := tok.TagName()
			tag := string(tagBytes)
			if tag == "pre" {
				inPre = true
			}
			if isBlockTag(tag) {
				output = bytes.TrimRightFunc(output, unicode.IsSpace)
			}
			output = append(output, "<"...)
			output = append(output, tag...)
			if hasAttr {
				output = appendSortedAttrs(output, tok)
			}
			output = append(output, ">"...)
			lastTag = tag
		case html.CommentToken:
			output = append(output, tok.Raw()...)
		}

		last = tt
		if tt == html.SelfClosingTagToken {
			last = html.EndTagToken
		}
	}
}

func appendSortedAttrs(output []byte, tok *html.Tokenizer) []byte {
	type htmlAttribute struct {
		key   string
		value string
	}
	var attrs []htmlAttribute
	for {
		k, v, more := tok.TagAttr()
		attrs = append(attrs, htmlAttribute{string(k), string(v)})
		if !more {
			break
		}
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].key < attrs[j].key
	})
	for _, attr := range attrs {
		output = append(output, " "...)
		output = append(output, attr.key...)
		if attr.value != "" {
			output = append(output, `="`...)
			output = append(output, html.EscapeString(attr.value)...)
			output = append(output, `"`...)
		}
	}
	return output
}

var blockTags = map[string]struct{}{
	atom.Article.String():    {},
	atom.Aside.String():      {},
	atom.Blockquote.String(): {},
	atom.Body.String():       {},
	atom.Button.String():     {},
	atom.Canvas.String():     {},
	atom.Caption.String():    {},
	atom.Col.String():        {},
	atom.Colgroup.String():   {},
	atom.Dd.String():         {},
	atom.Div.String():        {},
	atom.Dl.String():         {},
	atom.Dt.String():         {},
	atom.Embed.String():      {},
	atom.Fieldset.String():   {},
	atom.Figcaption.String(): {},
	atom.Figure.String():     {},
	atom.Footer.String():     {},
	atom.Form.String():       {},
	atom.H1.String():         {},
	atom.H2.String():         {},
	atom.H3.String():         {},
	atom.H4.String():         {},
	atom.H5.String():         {},
	atom.H6.String():         {},
	atom.Header.String():     {},
	atom.Hgroup.String():     {},
	atom.Hr.String():         {},
	atom.Iframe.String():     {},
	atom.Li.String():         {},
	atom.Map.String():        {},
	atom.Object.String():     {},
	atom.Ol.String():         {},
	atom.Output.String():     {},
	atom.P.String():          {},
	atom.Pre.String():        {},
	atom.Progress.String():   {},
	atom.Script.String():     {},
	atom.Section.String():    {},
	atom.Style.String():      {},
	atom.Table.String():      {},
	atom.Tbody.String():      {},
	atom.Td.String():         {},
	atom.Textarea.String():   {},
	atom.Tfoot.String():      {},
	atom.Th.String():         {},
	atom.Thead.String():      {},
	atom.Tr.String():         {},
	atom.Ul.String():         {},
	atom.Video.String():      {},
}

func isBlockTag(tag string) bool {
	_, ok := blockTags[tag]
	return ok
}
