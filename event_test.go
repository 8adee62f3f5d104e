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

import "testing"

func TestSpan(t *testing.T) {
	source := []byte("hello world")
	s := Span{Start: 6, End: 11}
	if got := s.Len(); got != 5 {
		t.Errorf("Len() = %d; want 5", got)
	}
	if got := string(s.Bytes(source)); got != "world" {
		t.Errorf("Bytes() = %q; want %q", got, "world")
	}
	if got := s.String(); got != "[6,11)" {
		t.Errorf("String() = %q; want %q", got, "[6,11)")
	}

	valid := []struct {
		span Span
		n    int
		want bool
	}{
		{Span{0, 0}, 0, true},
		{Span{0, 5}, 11, true},
		{Span{11, 11}, 11, true},
		{Span{5, 12}, 11, false},
		{Span{-1, 3}, 11, false},
		{Span{7, 3}, 11, false},
	}
	for _, test := range valid {
		if got := test.span.IsValid(test.n); got != test.want {
			t.Errorf("%v.IsValid(%d) = %t; want %t", test.span, test.n, got, test.want)
		}
	}
}

func TestEventCloned(t *testing.T) {
	source := []byte("abc")
	attrs, _, _ := parseAttributes([]byte("{.x}"), 0, 4)
	ev := Event{
		Kind:  TextKind,
		Pos:   PosAtom,
		Span:  Span{0, 3},
		Text:  source,
		Attrs: attrs,
	}
	clone := ev.Cloned()
	source[0] = 'z'
	if got := string(clone.Text); got != "abc" {
		t.Errorf("cloned Text = %q; want %q", got, "abc")
	}
	if string(ev.Text) != "zbc" {
		t.Error("original Text no longer aliases the source")
	}
	attrs.add("class", "y")
	if got := clone.Attrs.Classes(); len(got) != 1 || got[0] != "x" {
		t.Errorf("cloned Attrs.Classes() = %q; want [x]", got)
	}
	if clone.Span != ev.Span || clone.Kind != ev.Kind {
		t.Error("clone changed non-payload fields")
	}
}

func TestListStyleIsOrdered(t *testing.T) {
	unordered := []ListStyle{ListStyleDash, ListStylePlus, ListStyleStar}
	for _, s := range unordered {
		if s.IsOrdered() {
			t.Errorf("%d.IsOrdered() = true", s)
		}
	}
	ordered := []ListStyle{
		ListStyleDecimalPeriod, ListStyleDecimalParen, ListStyleDecimalParens,
		ListStyleAlphaLowerPeriod, ListStyleAlphaLowerParen,
		ListStyleAlphaUpperPeriod, ListStyleAlphaUpperParen,
	}
	for _, s := range ordered {
		if !s.IsOrdered() {
			t.Errorf("%d.IsOrdered() = false", s)
		}
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{
			Event{Kind: ParagraphKind, Pos: PosStart, Span: Span{0, 6}},
			"Start(Paragraph)[0,6)",
		},
		{
			Event{Kind: ParagraphKind, Pos: PosEnd, Span: Span{6, 6}},
			"End(Paragraph)[6,6)",
		},
		{
			Event{Kind: TextKind, Pos: PosAtom, Span: Span{0, 2}, Text: []byte("hi")},
			`Text("hi")[0,2)`,
		},
		{
			Event{Kind: ThematicBreakKind, Pos: PosAtom, Span: Span{0, 4}},
			"ThematicBreak[0,4)",
		},
	}
	for _, test := range tests {
		if got := test.ev.String(); got != test.want {
			t.Errorf("Event.String() = %q; want %q", got, test.want)
		}
	}
}
