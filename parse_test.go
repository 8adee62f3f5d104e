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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// eventStrings formats events compactly for comparison:
// "+Kind" for starts, "-Kind" for ends,
// and "@Kind" (with any text payload) for atoms.
func eventStrings(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		switch ev.Pos {
		case PosStart:
			out = append(out, "+"+ev.Kind.String())
		case PosEnd:
			out = append(out, "-"+ev.Kind.String())
		default:
			s := "@" + ev.Kind.String()
			if len(ev.Text) > 0 {
				s += "(" + string(ev.Text) + ")"
			}
			out = append(out, s)
		}
	}
	return out
}

func parseEvents(t *testing.T, source string) []Event {
	t.Helper()
	return Collect(Parse([]byte(source)))
}

func TestParseBlocks(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "Paragraph",
			source: "hello\n",
			want:   []string{"+Paragraph", "@Text(hello)", "-Paragraph"},
		},
		{
			name:   "TwoParagraphs",
			source: "one\n\ntwo\n",
			want: []string{
				"+Paragraph", "@Text(one)", "-Paragraph",
				"+Paragraph", "@Text(two)", "-Paragraph",
			},
		},
		{
			name:   "MarkerDoesNotInterruptParagraph",
			source: "para\n> not a quote\n",
			want: []string{
				"+Paragraph",
				"@Text(para)", "@SoftBreak", "@Text(> not a quote)",
				"-Paragraph",
			},
		},
		{
			name:   "HeadingAbsorbsLines",
			source: "## a\nb\n\nc\n",
			want: []string{
				"+Heading", "@Text(a)", "@SoftBreak", "@Text(b)", "-Heading",
				"+Paragraph", "@Text(c)", "-Paragraph",
			},
		},
		{
			name:   "HeadingContinuationMarkerStripped",
			source: "## a\n## b\n",
			want: []string{
				"+Heading", "@Text(a)", "@SoftBreak", "@Text(b)", "-Heading",
			},
		},
		{
			name:   "BlockQuote",
			source: "> a\n> b\n",
			want: []string{
				"+BlockQuote",
				"+Paragraph", "@Text(a)", "@SoftBreak", "@Text(b)", "-Paragraph",
				"-BlockQuote",
			},
		},
		{
			name:   "LazyQuoteContinuation",
			source: "> a\nb\n",
			want: []string{
				"+BlockQuote",
				"+Paragraph", "@Text(a)", "@SoftBreak", "@Text(b)", "-Paragraph",
				"-BlockQuote",
			},
		},
		{
			name:   "BulletList",
			source: "- a\n- b\n",
			want: []string{
				"+List",
				"+ListItem", "+Paragraph", "@Text(a)", "-Paragraph", "-ListItem",
				"+ListItem", "+Paragraph", "@Text(b)", "-Paragraph", "-ListItem",
				"-List",
			},
		},
		{
			name:   "AlphaListSingleLetter",
			source: "a. x\n",
			want: []string{
				"+List",
				"+ListItem", "+Paragraph", "@Text(x)", "-Paragraph", "-ListItem",
				"-List",
			},
		},
		{
			name:   "DoubleLetterIsNotAList",
			source: "aa. x\n",
			want:   []string{"+Paragraph", "@Text(aa. x)", "-Paragraph"},
		},
		{
			name:   "Div",
			source: "::: note\ntext\n:::\n",
			want: []string{
				"+Div",
				"+Paragraph", "@Text(text)", "-Paragraph",
				"-Div",
			},
		},
		{
			name:   "CodeBlock",
			source: "```go\ncode {}\n```\n",
			want:   []string{"+CodeBlock", "@Text(code {}\n)", "-CodeBlock"},
		},
		{
			name:   "RawBlock",
			source: "```=html\n<b>\n```\n",
			want:   []string{"+RawBlock", "@Text(<b>\n)", "-RawBlock"},
		},
		{
			name:   "UnclosedCodeBlockRunsToEnd",
			source: "```\nabc\n",
			want:   []string{"+CodeBlock", "@Text(abc\n)", "-CodeBlock"},
		},
		{
			name:   "ThematicBreak",
			source: "para\n\n---\n",
			want: []string{
				"+Paragraph", "@Text(para)", "-Paragraph",
				"@ThematicBreak",
			},
		},
		{
			name:   "Table",
			source: "|a|b|\n|-|:-|\n|c|d|\n",
			want: []string{
				"+Table",
				"+TableRow",
				"+TableCell", "@Text(a)", "-TableCell",
				"+TableCell", "@Text(b)", "-TableCell",
				"-TableRow",
				"+TableRow",
				"+TableCell", "@Text(c)", "-TableCell",
				"+TableCell", "@Text(d)", "-TableCell",
				"-TableRow",
				"-Table",
			},
		},
		{
			name:   "LinkDefinitionDoesNotSurface",
			source: "[ref]: /url\n\nsee [text][ref]\n",
			want: []string{
				"+Paragraph",
				"@Text(see )", "+Link", "@Text(text)", "-Link",
				"-Paragraph",
			},
		},
		{
			name:   "Footnote",
			source: "x[^n]\n\n[^n]: body\n",
			want: []string{
				"+Paragraph", "@Text(x)", "@FootnoteReference(n)", "-Paragraph",
				"+Footnote",
				"+Paragraph", "@Text(body)", "-Paragraph",
				"-Footnote",
			},
		},
		{
			name:   "UnreferencedFootnoteNeverSurfaces",
			source: "x\n\n[^n]: body\n",
			want:   []string{"+Paragraph", "@Text(x)", "-Paragraph"},
		},
		{
			name:   "BlockAttributeLine",
			source: "{.note}\nx\n",
			want:   []string{"+Paragraph", "@Text(x)", "-Paragraph"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := eventStrings(parseEvents(t, test.source))
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("events for %q (-want +got):\n%s", test.source, diff)
			}
		})
	}
}

func findStart(t *testing.T, events []Event, kind EventKind) Event {
	t.Helper()
	for _, ev := range events {
		if ev.Kind == kind && ev.Pos != PosEnd {
			return ev
		}
	}
	t.Fatalf("no %v event", kind)
	return Event{}
}

func TestListTightness(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantTight bool
	}{
		{"NoBlanks", "- a\n- b\n", true},
		{"BlankBetweenItems", "- a\n\n- b\n", false},
		{"BlankInsideItem", "- a\n\n  more\n- b\n", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			list := findStart(t, parseEvents(t, test.source), ListKind)
			if list.Tight != test.wantTight {
				t.Errorf("list Tight = %t; want %t", list.Tight, test.wantTight)
			}
		})
	}
}

func TestListStyles(t *testing.T) {
	tests := []struct {
		source    string
		wantStyle ListStyle
		wantStart int
	}{
		{"- x\n", ListStyleDash, 1},
		{"+ x\n", ListStylePlus, 1},
		{"* x\n", ListStyleStar, 1},
		{"3. x\n", ListStyleDecimalPeriod, 3},
		{"3) x\n", ListStyleDecimalParen, 3},
		{"(3) x\n", ListStyleDecimalParens, 3},
		{"b. x\n", ListStyleAlphaLowerPeriod, 2},
		{"B) x\n", ListStyleAlphaUpperParen, 2},
	}
	for _, test := range tests {
		list := findStart(t, parseEvents(t, test.source), ListKind)
		if list.ListStyle != test.wantStyle || list.ListStart != test.wantStart {
			t.Errorf("%q: style = %v, start = %d; want %v, %d",
				test.source, list.ListStyle, list.ListStart, test.wantStyle, test.wantStart)
		}
	}
}

func TestStyleChangeSplitsList(t *testing.T) {
	got := eventStrings(parseEvents(t, "- a\n+ b\n"))
	want := []string{
		"+List",
		"+ListItem", "+Paragraph", "@Text(a)", "-Paragraph", "-ListItem",
		"-List",
		"+List",
		"+ListItem", "+Paragraph", "@Text(b)", "-Paragraph", "-ListItem",
		"-List",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestForwardReference(t *testing.T) {
	const source = "[text][lbl]\n\n[lbl]: http://example.com {.cls}\n"
	events := parseEvents(t, source)

	link := findStart(t, events, LinkKind)
	if got, want := string(link.Dest), "http://example.com"; got != want {
		t.Errorf("link Dest = %q; want %q", got, want)
	}
	if got := link.Attrs.Classes(); len(got) != 1 || got[0] != "cls" {
		t.Errorf("link classes = %q; want [cls]", got)
	}

	p := Parse([]byte(source))
	if def, ok := p.References().Lookup("LBL"); !ok {
		t.Error("References().Lookup(LBL) not found")
	} else if def.Destination != "http://example.com" {
		t.Errorf("definition destination = %q", def.Destination)
	}
}

func TestReferenceDefinitionContinuation(t *testing.T) {
	const source = "[lbl]: http://example.com\n  /path\n\n[x][lbl]\n"
	link := findStart(t, parseEvents(t, source), LinkKind)
	if got, want := string(link.Dest), "http://example.com/path"; got != want {
		t.Errorf("link Dest = %q; want %q", got, want)
	}
}

func TestFirstDefinitionWins(t *testing.T) {
	const source = "[l]: /one\n\n[l]: /two\n\n[x][l]\n"
	link := findStart(t, parseEvents(t, source), LinkKind)
	if got := string(link.Dest); got != "/one" {
		t.Errorf("link Dest = %q; want %q", got, "/one")
	}
}

func TestUnresolvedReference(t *testing.T) {
	got := eventStrings(parseEvents(t, "[x][missing]\n"))
	want := []string{"+Paragraph", "@Text([x][missing])", "-Paragraph"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestBlockAttributesAttach(t *testing.T) {
	const source = "{#intro .big}\n# Hi\n"
	h := findStart(t, parseEvents(t, source), HeadingKind)
	if h.Level != 1 {
		t.Errorf("heading Level = %d; want 1", h.Level)
	}
	if got := h.Attrs.ID(); got != "intro" {
		t.Errorf("heading ID = %q; want %q", got, "intro")
	}
	if got := h.Attrs.Classes(); len(got) != 1 || got[0] != "big" {
		t.Errorf("heading classes = %q; want [big]", got)
	}
}

func TestTableHeaderAndAlignment(t *testing.T) {
	events := parseEvents(t, "|a|\n|:-:|\n|b|\n")
	var cells []Event
	var rows []Event
	for _, ev := range events {
		if ev.Pos != PosStart {
			continue
		}
		switch ev.Kind {
		case TableCellKind:
			cells = append(cells, ev)
		case TableRowKind:
			rows = append(rows, ev)
		}
	}
	if len(rows) != 2 || len(cells) != 2 {
		t.Fatalf("got %d rows, %d cells; want 2, 2", len(rows), len(cells))
	}
	if !rows[0].Head || rows[1].Head {
		t.Errorf("row Head = %t, %t; want true, false", rows[0].Head, rows[1].Head)
	}
	if !cells[0].Head || cells[0].Align != AlignCenter {
		t.Errorf("header cell Head=%t Align=%v; want true, center", cells[0].Head, cells[0].Align)
	}
	if cells[1].Head || cells[1].Align != AlignCenter {
		t.Errorf("body cell Head=%t Align=%v; want false, center", cells[1].Head, cells[1].Align)
	}
}

func TestFootnoteEmittedOnceAfterFirstReference(t *testing.T) {
	const source = "a[^n]\n\nb[^n]\n\n[^n]: body\n"
	got := eventStrings(parseEvents(t, source))
	want := []string{
		"+Paragraph", "@Text(a)", "@FootnoteReference(n)", "-Paragraph",
		"+Footnote",
		"+Paragraph", "@Text(body)", "-Paragraph",
		"-Footnote",
		"+Paragraph", "@Text(b)", "@FootnoteReference(n)", "-Paragraph",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestFootnotePermissiveContinuation(t *testing.T) {
	const source = "x[^n]\n\n[^n]: first\n respect\n\n  second\n"
	got := eventStrings(parseEvents(t, source))
	want := []string{
		"+Paragraph", "@Text(x)", "@FootnoteReference(n)", "-Paragraph",
		"+Footnote",
		"+Paragraph", "@Text(first)", "@SoftBreak", "@Text(respect)", "-Paragraph",
		"+Paragraph", "@Text(second)", "-Paragraph",
		"-Footnote",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestDeterminism(t *testing.T) {
	const source = "# h\n\n- a\n- b\n\n|x|\n|-|\n\n> q[^n]\n\n[^n]: note\n"
	first := eventStrings(parseEvents(t, source))
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, eventStrings(parseEvents(t, source))); diff != "" {
			t.Fatalf("run %d differs (-first +now):\n%s", i, diff)
		}
	}
}

func TestCloneIndependence(t *testing.T) {
	p1 := Parse([]byte("one\n\ntwo\n"))
	for i := 0; i < 2; i++ {
		if _, ok := p1.Next(); !ok {
			t.Fatal("unexpected end of events")
		}
	}
	p2 := p1.Clone()

	rest1 := eventStrings(Collect(p1))
	rest2 := eventStrings(Collect(p2))
	if diff := cmp.Diff(rest1, rest2); diff != "" {
		t.Errorf("clone events differ (-original +clone):\n%s", diff)
	}
	want := []string{"-Paragraph", "+Paragraph", "@Text(two)", "-Paragraph"}
	if diff := cmp.Diff(want, rest1); diff != "" {
		t.Errorf("remaining events (-want +got):\n%s", diff)
	}
}

func TestNestingInvariant(t *testing.T) {
	const source = "# h\n\n> - a\n>\n> - _em *strong*_\n\n::: d\n|x|\n|-|\n:::\n\nx[^n]\n\n[^n]: note\n"
	events := parseEvents(t, source)

	var stack []EventKind
	for i, ev := range events {
		switch ev.Pos {
		case PosStart:
			stack = append(stack, ev.Kind)
		case PosEnd:
			if len(stack) == 0 {
				t.Fatalf("event %d: %v end with no open container", i, ev.Kind)
			}
			top := stack[len(stack)-1]
			if top != ev.Kind {
				t.Fatalf("event %d: %v end closes open %v", i, ev.Kind, top)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		t.Errorf("unclosed containers at end of document: %v", stack)
	}
}

func TestEventOffsets(t *testing.T) {
	const source = "# h\n\npara _em_ `v`\n\n- item\n"
	events := parseEvents(t, source)
	for i, ev := range events {
		span := ev.Span
		if span.Start < 0 || span.End < span.Start || span.End > len(source) {
			t.Errorf("event %d (%v): span [%d,%d) out of range", i, ev.Kind, span.Start, span.End)
			continue
		}
		if ev.Kind == TextKind && len(ev.Text) == span.Len() {
			if got := source[span.Start:span.End]; got != string(ev.Text) {
				t.Errorf("event %d: span text %q does not match Text %q", i, got, ev.Text)
			}
		}
	}
}

func TestWalkSkipChildren(t *testing.T) {
	const source = "> skipped\n\nkept\n"
	var kinds []string
	err := Walk(Parse([]byte(source)), func(ev Event) error {
		if ev.Kind == BlockQuoteKind && ev.Pos == PosStart {
			kinds = append(kinds, "+BlockQuote")
			return SkipChildren
		}
		kinds = append(kinds, eventStrings([]Event{ev})[0])
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"+BlockQuote", "+Paragraph", "@Text(kept)", "-Paragraph"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("walked events (-want +got):\n%s", diff)
	}
}

func TestWalkStopsOnError(t *testing.T) {
	errStop := errors.New("stop")
	n := 0
	err := Walk(Parse([]byte("a\n\nb\n")), func(Event) error {
		n++
		if n == 2 {
			return errStop
		}
		return nil
	})
	if !errors.Is(err, errStop) {
		t.Errorf("Walk error = %v; want %v", err, errStop)
	}
	if n != 2 {
		t.Errorf("callback ran %d times; want 2", n)
	}
}
