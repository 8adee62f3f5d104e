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

import "bytes"

// inlineScanner parses the content lines of a single leaf block into a
// flat, well-nested event sequence.
// It runs in one left-to-right pass with a stack of pending openers:
// a closer pairs with the nearest matching opener,
// and everything stacked above the match degrades to literal text.
// Parsing never fails; unpaired delimiters become text.
type inlineScanner struct {
	source []byte
	refs   ReferenceMap
	lines  []Span

	li        int // current line index
	pos       int // absolute offset into source
	textStart int // start of any pending plain text run

	events  []Event
	openers []inlineOpener

	// Most recently closed container, for attribute suffixes.
	lastCloseIdx    int // index of its Start event, or -1
	lastCloseEndIdx int // index of its End event
	lastCloseEnd    int // source offset just past its closer

	// noteRef records each footnote reference in reading order.
	noteRef func(label string)
}

type inlineOpener struct {
	kind  EventKind
	idx   int  // index of the placeholder Start event
	image bool // bracket opener preceded by !
}

// parseInlines scans the given content line spans into inline events.
// noteRef may be nil.
func parseInlines(source []byte, lines []Span, refs ReferenceMap, noteRef func(label string)) []Event {
	if len(lines) == 0 {
		return nil
	}
	s := &inlineScanner{
		source:       source,
		refs:         refs,
		lines:        lines,
		pos:          lines[0].Start,
		textStart:    lines[0].Start,
		lastCloseIdx: -1,
		noteRef:      noteRef,
	}
	s.run()
	return s.finish()
}

func (s *inlineScanner) run() {
	for s.li < len(s.lines) {
		line := s.lines[s.li]
		if s.pos > line.End {
			// A construct consumed past this line's end.
			s.li++
			if s.li < len(s.lines) && s.pos < s.lines[s.li].Start {
				s.pos = s.lines[s.li].Start
				s.textStart = s.pos
			}
			continue
		}
		if s.pos == line.End {
			s.flushText(line.End)
			s.endLine()
			continue
		}
		switch c := s.source[s.pos]; c {
		case '\\':
			s.scanEscape()
		case '`':
			s.scanVerbatim(VerbatimKind, s.pos)
		case '$':
			s.scanMath()
		case '<':
			s.scanAutolink()
		case '_':
			s.scanDelimiter(EmphasisKind)
		case '*':
			s.scanDelimiter(StrongKind)
		case '^':
			s.scanDelimiter(SuperscriptKind)
		case '~':
			s.scanDelimiter(SubscriptKind)
		case '\'':
			s.scanDelimiter(SingleQuotedKind)
		case '"':
			s.scanDelimiter(DoubleQuotedKind)
		case '{':
			s.scanBrace()
		case '+', '=':
			kind := InsertKind
			if c == '=' {
				kind = MarkKind
			}
			if !s.scanBracedCloser(kind) {
				s.pos++
			}
		case '-':
			if s.scanBracedCloser(DeleteKind) {
				break
			}
			s.scanDashes()
		case '.':
			s.scanEllipsis()
		case '!':
			if s.pos+1 < line.End && s.source[s.pos+1] == '[' {
				s.openBracket(true)
			} else {
				s.pos++
			}
		case '[':
			s.scanOpenBracket()
		case ']':
			s.scanCloseBracket()
		default:
			s.pos++
		}
	}
}

// finish flushes trailing text, degrades unmatched openers,
// and merges adjacent text atoms.
func (s *inlineScanner) finish() []Event {
	for _, op := range s.openers {
		s.degrade(op.idx)
	}
	s.openers = nil

	merged := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		// Only literal runs merge: an escape atom's text differs
		// from its source span and must stay separate.
		if ev.Kind == TextKind && len(ev.Text) == ev.Span.Len() && len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Kind == TextKind && last.Span.End == ev.Span.Start &&
				len(last.Text) == last.Span.Len() {
				last.Span.End = ev.Span.End
				last.Text = s.source[last.Span.Start:last.Span.End]
				continue
			}
		}
		merged = append(merged, ev)
	}
	return merged
}

// endLine flushes the current line and emits a soft break
// unless a hard break already ended it.
func (s *inlineScanner) endLine() {
	s.li++
	if s.li >= len(s.lines) {
		return
	}
	next := s.lines[s.li].Start
	if n := len(s.events); n == 0 || s.events[n-1].Kind != HardBreakKind {
		prev := s.lines[s.li-1].End
		s.events = append(s.events, Event{
			Kind: SoftBreakKind,
			Pos:  PosAtom,
			Span: Span{prev, next},
		})
	}
	s.pos = next
	s.textStart = next
}

func (s *inlineScanner) flushText(upto int) {
	if upto > s.textStart {
		s.events = append(s.events, Event{
			Kind: TextKind,
			Pos:  PosAtom,
			Span: Span{s.textStart, upto},
			Text: s.source[s.textStart:upto],
		})
	}
	s.textStart = upto
}

func (s *inlineScanner) atom(kind EventKind, span Span) {
	s.flushText(span.Start)
	s.events = append(s.events, Event{Kind: kind, Pos: PosAtom, Span: span})
	s.pos = span.End
	s.textStart = span.End
}

// open pushes a placeholder start event for a container.
func (s *inlineScanner) open(kind EventKind, span Span, image bool) {
	s.flushText(span.Start)
	s.openers = append(s.openers, inlineOpener{kind: kind, idx: len(s.events), image: image})
	s.events = append(s.events, Event{Kind: kind, Pos: PosStart, Span: span})
	s.pos = span.End
	s.textStart = span.End
}

// closeAt pairs the closer span with the opener at stack index j,
// degrading any openers stacked above it.
func (s *inlineScanner) closeAt(j int, closer Span) {
	s.flushText(closer.Start)
	for k := len(s.openers) - 1; k > j; k-- {
		s.degrade(s.openers[k].idx)
	}
	op := s.openers[j]
	s.openers = s.openers[:j]
	s.events = append(s.events, Event{Kind: s.events[op.idx].Kind, Pos: PosEnd, Span: closer})
	s.lastCloseIdx = op.idx
	s.lastCloseEndIdx = len(s.events) - 1
	s.lastCloseEnd = closer.End
	s.pos = closer.End
	s.textStart = closer.End
}

// degrade turns an abandoned opener's placeholder into literal text.
func (s *inlineScanner) degrade(idx int) {
	ev := &s.events[idx]
	ev.Kind = TextKind
	ev.Pos = PosAtom
	ev.Text = s.source[ev.Span.Start:ev.Span.End]
	ev.Attrs = nil
}

// findOpener returns the nearest opener of the given kind.
func (s *inlineScanner) findOpener(kind EventKind) (int, bool) {
	for j := len(s.openers) - 1; j >= 0; j-- {
		if s.openers[j].kind == kind {
			return j, true
		}
	}
	return 0, false
}

func (s *inlineScanner) lineEnd() int {
	return s.lines[s.li].End
}

func (s *inlineScanner) scanEscape() {
	end := s.lineEnd()
	if s.pos+1 >= end {
		// Backslash at end of line forces a hard break.
		s.atom(HardBreakKind, Span{s.pos, s.pos + 1})
		return
	}
	switch c := s.source[s.pos+1]; {
	case c == ' ':
		s.atom(NonBreakingSpaceKind, Span{s.pos, s.pos + 2})
	case isASCIIPunct(c):
		s.flushText(s.pos)
		s.events = append(s.events, Event{
			Kind: TextKind,
			Pos:  PosAtom,
			Span: Span{s.pos, s.pos + 2},
			Text: s.source[s.pos+1 : s.pos+2],
		})
		s.pos += 2
		s.textStart = s.pos
	default:
		s.pos++
	}
}

// scanDelimiter handles the bare forms of paired delimiters.
// A delimiter closes when it has a matching opener and is not preceded
// by whitespace; otherwise it opens when not followed by whitespace.
func (s *inlineScanner) scanDelimiter(kind EventKind) {
	if s.scanBracedCloser(kind) {
		return
	}
	prevWS := s.pos == s.lines[s.li].Start || isSpaceOrTab(s.source[s.pos-1])
	nextWS := s.pos+1 >= s.lineEnd() || isSpaceOrTab(s.source[s.pos+1])
	if !prevWS {
		if j, ok := s.findOpener(kind); ok {
			s.closeAt(j, Span{s.pos, s.pos + 1})
			return
		}
	}
	if !nextWS {
		s.open(kind, Span{s.pos, s.pos + 1}, false)
		return
	}
	s.pos++
}

// scanBracedCloser handles closers of the form X} at the cursor.
// Braced and bare delimiters of the same kind pair interchangeably.
func (s *inlineScanner) scanBracedCloser(kind EventKind) bool {
	if s.pos+1 >= s.lineEnd() || s.source[s.pos+1] != '}' {
		return false
	}
	j, ok := s.findOpener(kind)
	if !ok {
		return false
	}
	s.closeAt(j, Span{s.pos, s.pos + 2})
	return true
}

// scanBrace dispatches an opening brace:
// an attribute set attached to the construct that just closed,
// a braced delimiter opener, or literal text.
func (s *inlineScanner) scanBrace() {
	if s.lastCloseIdx >= 0 && s.pos == s.lastCloseEnd {
		if s.scanRawFormat() {
			return
		}
		if attrs, end, ok := parseAttributes(s.source, s.pos, s.lineEnd()); ok {
			start := &s.events[s.lastCloseIdx]
			start.Attrs = mergeAttributes(start.Attrs, attrs)
			s.events[s.lastCloseEndIdx].Span.End = end
			s.lastCloseEnd = end
			s.pos = end
			s.textStart = end
			return
		}
	}
	// Attributes directly after a plain word wrap the word in a span.
	if s.pos > s.textStart && !isSpaceOrTab(s.source[s.pos-1]) {
		if attrs, end, ok := parseAttributes(s.source, s.pos, s.lineEnd()); ok {
			wordStart := s.pos
			for wordStart > s.textStart && !isSpaceOrTab(s.source[wordStart-1]) {
				wordStart--
			}
			s.flushText(wordStart)
			openIdx := len(s.events)
			s.events = append(s.events,
				Event{Kind: SpanKind, Pos: PosStart, Span: Span{wordStart, wordStart}, Attrs: attrs},
				Event{Kind: TextKind, Pos: PosAtom, Span: Span{wordStart, s.pos}, Text: s.source[wordStart:s.pos]},
				Event{Kind: SpanKind, Pos: PosEnd, Span: Span{s.pos, end}})
			s.lastCloseIdx = openIdx
			s.lastCloseEndIdx = len(s.events) - 1
			s.lastCloseEnd = end
			s.pos = end
			s.textStart = end
			return
		}
	}

	if s.pos+1 < s.lineEnd() {
		switch s.source[s.pos+1] {
		case '_':
			s.open(EmphasisKind, Span{s.pos, s.pos + 2}, false)
			return
		case '*':
			s.open(StrongKind, Span{s.pos, s.pos + 2}, false)
			return
		case '^':
			s.open(SuperscriptKind, Span{s.pos, s.pos + 2}, false)
			return
		case '~':
			s.open(SubscriptKind, Span{s.pos, s.pos + 2}, false)
			return
		case '+':
			s.open(InsertKind, Span{s.pos, s.pos + 2}, false)
			return
		case '-':
			s.open(DeleteKind, Span{s.pos, s.pos + 2}, false)
			return
		case '=':
			s.open(MarkKind, Span{s.pos, s.pos + 2}, false)
			return
		case '\'':
			s.open(SingleQuotedKind, Span{s.pos, s.pos + 2}, false)
			return
		case '"':
			s.open(DoubleQuotedKind, Span{s.pos, s.pos + 2}, false)
			return
		}
	}
	s.pos++
}

// scanRawFormat handles a {=format} suffix on a verbatim span,
// converting it into raw inline content.
func (s *inlineScanner) scanRawFormat() bool {
	if s.events[s.lastCloseIdx].Kind != VerbatimKind {
		return false
	}
	end := s.lineEnd()
	if s.pos+2 >= end || s.source[s.pos+1] != '=' {
		return false
	}
	i := s.pos + 2
	for i < end && isAttrWordByte(s.source[i]) {
		i++
	}
	if i == s.pos+2 || i >= end || s.source[i] != '}' {
		return false
	}
	s.events[s.lastCloseIdx].Kind = RawInlineKind
	s.events[s.lastCloseIdx].Lang = s.source[s.pos+2 : i]
	s.events[s.lastCloseEndIdx].Kind = RawInlineKind
	s.events[s.lastCloseEndIdx].Span.End = i + 1
	s.lastCloseEnd = i + 1
	s.pos = i + 1
	s.textStart = i + 1
	return true
}

func (s *inlineScanner) scanMath() {
	n := 1
	if s.pos+1 < s.lineEnd() && s.source[s.pos+1] == '$' {
		n = 2
	}
	if s.pos+n >= s.lineEnd() || s.source[s.pos+n] != '`' {
		s.pos += n
		return
	}
	kind := InlineMathKind
	if n == 2 {
		kind = DisplayMathKind
	}
	start := s.pos
	s.pos += n
	s.scanVerbatim(kind, start)
}

// scanVerbatim parses a backtick-delimited span starting at the current
// cursor (the backticks themselves; start marks where the construct
// began, which is earlier for math).
// The closer is a backtick run of exactly the opener's length;
// longer and shorter runs are content.
// An unclosed span extends to the end of the inline content.
func (s *inlineScanner) scanVerbatim(kind EventKind, start int) {
	openLen := 0
	for s.pos+openLen < s.lineEnd() && s.source[s.pos+openLen] == '`' {
		openLen++
	}
	openEnd := s.pos + openLen

	// Collect content segments, scanning across lines for the closer.
	var segments []Span
	li, p := s.li, openEnd
	segStart := p
	closed := false
	var closerSpan Span
scan:
	for li < len(s.lines) {
		end := s.lines[li].End
		for p < end {
			if s.source[p] != '`' {
				p++
				continue
			}
			runStart := p
			for p < end && s.source[p] == '`' {
				p++
			}
			if p-runStart == openLen {
				segments = append(segments, Span{segStart, runStart})
				closerSpan = Span{runStart, p}
				closed = true
				break scan
			}
		}
		segments = append(segments, Span{segStart, end})
		li++
		if li < len(s.lines) {
			p = s.lines[li].Start
			segStart = p
		}
	}

	// A single space is stripped next to content edge backticks.
	if len(segments) > 0 {
		first := &segments[0]
		if first.Len() >= 2 && s.source[first.Start] == ' ' && s.source[first.Start+1] == '`' {
			first.Start++
		}
		last := &segments[len(segments)-1]
		if last.Len() >= 2 && s.source[last.End-1] == ' ' && s.source[last.End-2] == '`' {
			last.End--
		}
	}

	s.flushText(start)
	openIdx := len(s.events)
	s.events = append(s.events, Event{Kind: kind, Pos: PosStart, Span: Span{start, openEnd}})
	for i, seg := range segments {
		if i > 0 {
			s.events = append(s.events, Event{
				Kind: SoftBreakKind,
				Pos:  PosAtom,
				Span: Span{segments[i-1].End, seg.Start},
			})
		}
		if seg.Len() > 0 {
			s.events = append(s.events, Event{
				Kind: TextKind,
				Pos:  PosAtom,
				Span: seg,
				Text: s.source[seg.Start:seg.End],
			})
		}
	}
	if !closed {
		last := s.lines[len(s.lines)-1].End
		closerSpan = Span{last, last}
		li = len(s.lines) - 1
		p = last
	}
	s.events = append(s.events, Event{Kind: kind, Pos: PosEnd, Span: closerSpan})
	s.lastCloseIdx = openIdx
	s.lastCloseEndIdx = len(s.events) - 1
	s.lastCloseEnd = closerSpan.End
	s.li = li
	s.pos = closerSpan.End
	s.textStart = s.pos
}

// scanAutolink parses <url> and <email> forms on a single line.
func (s *inlineScanner) scanAutolink() {
	end := s.lineEnd()
	close := -1
	for i := s.pos + 1; i < end; i++ {
		c := s.source[i]
		if c == '>' {
			close = i
			break
		}
		if c == '<' || c == ' ' || c == '\t' {
			break
		}
	}
	if close < 0 || close == s.pos+1 {
		s.pos++
		return
	}
	content := s.source[s.pos+1 : close]
	if !bytes.ContainsRune(content, ':') && !bytes.ContainsRune(content, '@') {
		s.pos++
		return
	}
	s.flushText(s.pos)
	s.events = append(s.events, Event{
		Kind: AutolinkKind,
		Pos:  PosAtom,
		Span: Span{s.pos, close + 1},
		Text: content,
		Dest: content,
	})
	s.pos = close + 1
	s.textStart = s.pos
}

func (s *inlineScanner) scanDashes() {
	end := s.lineEnd()
	n := 0
	for s.pos+n < end && s.source[s.pos+n] == '-' {
		n++
	}
	if n < 2 {
		s.pos++
		return
	}
	// Runs prefer em dashes:
	// a run divisible by 3 is all em,
	// divisible by 2 all en, other runs mix.
	var em, en int
	switch {
	case n%3 == 0:
		em = n / 3
	case n%2 == 0:
		en = n / 2
	default:
		rest := n
		for rest%2 != 0 {
			em++
			rest -= 3
		}
		en = rest / 2
	}
	s.flushText(s.pos)
	p := s.pos
	for i := 0; i < em; i++ {
		s.events = append(s.events, Event{Kind: EmDashKind, Pos: PosAtom, Span: Span{p, p + 3}})
		p += 3
	}
	for i := 0; i < en; i++ {
		s.events = append(s.events, Event{Kind: EnDashKind, Pos: PosAtom, Span: Span{p, p + 2}})
		p += 2
	}
	s.pos = p
	s.textStart = p
}

func (s *inlineScanner) scanEllipsis() {
	if s.pos+2 < s.lineEnd() &&
		s.source[s.pos+1] == '.' && s.source[s.pos+2] == '.' {
		s.atom(EllipsisKind, Span{s.pos, s.pos + 3})
		return
	}
	s.pos++
}

// scanOpenBracket opens a bracket construct
// or recognizes a footnote reference.
func (s *inlineScanner) scanOpenBracket() {
	end := s.lineEnd()
	if s.pos+1 < end && s.source[s.pos+1] == '^' {
		if close := bytes.IndexByte(s.source[s.pos:end], ']'); close > 2 {
			// The label normalizes here so references and bodies
			// agree on the anchor name.
			label := NormalizeLabel(string(s.source[s.pos+2 : s.pos+close]))
			s.flushText(s.pos)
			s.events = append(s.events, Event{
				Kind: FootnoteReferenceKind,
				Pos:  PosAtom,
				Span: Span{s.pos, s.pos + close + 1},
				Text: []byte(label),
			})
			s.pos += close + 1
			s.textStart = s.pos
			if s.noteRef != nil {
				s.noteRef(label)
			}
			return
		}
	}
	s.openBracket(false)
}

func (s *inlineScanner) openBracket(image bool) {
	start := s.pos
	width := 1
	if image {
		width = 2
	}
	// The placeholder kind is patched when the bracket closes.
	s.open(SpanKind, Span{start, start + width}, image)
}

// scanCloseBracket resolves a bracket construct based on what follows
// the closing bracket: (dest), [label], or {attrs}.
// A bare bracket pair is not a construct; the opener degrades to text.
func (s *inlineScanner) scanCloseBracket() {
	j, ok := s.findOpener(SpanKind)
	if !ok {
		s.pos++
		return
	}
	op := s.openers[j]
	end := s.lineEnd()

	if s.pos+1 < end {
		switch s.source[s.pos+1] {
		case '(':
			if destEnd, ok := s.findBalancedEnd(s.pos+1, ')'); ok {
				dest := s.collectDest(s.pos+2, destEnd)
				s.closeAt(j, Span{s.pos, destEnd + 1})
				s.patchLink(op, dest, nil)
				return
			}
		case '[':
			if labelEnd, ok := s.findBalancedEnd(s.pos+1, ']'); ok {
				label := s.source[s.pos+2 : labelEnd]
				if len(label) == 0 {
					// Collapsed reference: the span's plain text,
					// with formatting stripped, is the label.
					label = s.collapsedLabel(op.idx)
				}
				if dest, attrs, ok := s.resolveReference(label); ok {
					s.closeAt(j, Span{s.pos, labelEnd + 1})
					s.patchLink(op, dest, attrs)
					return
				}
			}
		case '{':
			if attrs, attrEnd, ok := parseAttributes(s.source, s.pos+1, end); ok {
				s.closeAt(j, Span{s.pos, attrEnd})
				start := &s.events[op.idx]
				start.Attrs = mergeAttributes(start.Attrs, attrs)
				return
			}
		}
	}

	s.degrade(op.idx)
	s.openers = append(s.openers[:j], s.openers[j+1:]...)
	s.pos++
}

// patchLink rewrites the just-closed placeholder pair as a link or
// image with the given destination.
func (s *inlineScanner) patchLink(op inlineOpener, dest []byte, attrs *Attributes) {
	kind := LinkKind
	if op.image {
		kind = ImageKind
	}
	s.events[op.idx].Kind = kind
	s.events[op.idx].Dest = dest
	if attrs != nil {
		s.events[op.idx].Attrs = mergeAttributes(s.events[op.idx].Attrs, attrs)
	}
	s.events[s.lastCloseEndIdx].Kind = kind
}

// collapsedLabel reconstructs the plain text of the bracketed span
// whose placeholder sits at openIdx:
// the text payloads of its emitted atoms
// plus any unflushed tail, with formatting delimiters dropped.
func (s *inlineScanner) collapsedLabel(openIdx int) []byte {
	var label []byte
	for _, ev := range s.events[openIdx+1:] {
		switch {
		case ev.Pos != PosAtom:
		case ev.Kind == SoftBreakKind:
			label = append(label, ' ')
		default:
			label = append(label, ev.Text...)
		}
	}
	return append(label, s.source[s.textStart:s.pos]...)
}

// resolveReference looks up a reference label,
// carrying the definition's attributes onto the use site.
// An unresolved label is not a link;
// the caller degrades the bracketed text to literal text.
func (s *inlineScanner) resolveReference(label []byte) ([]byte, *Attributes, bool) {
	def, ok := s.refs.Lookup(string(label))
	if !ok {
		return nil, nil, false
	}
	return []byte(def.Destination), def.Attrs, true
}

// findBalancedEnd scans from the opening delimiter at start
// (possibly across lines) to its unescaped closer.
func (s *inlineScanner) findBalancedEnd(start int, close byte) (int, bool) {
	open := s.source[start]
	depth := 0
	li, p := s.li, start
	for li < len(s.lines) {
		end := s.lines[li].End
		for ; p < end; p++ {
			c := s.source[p]
			if c == '\\' {
				p++
				continue
			}
			if c == open && open != close {
				depth++
			} else if c == close {
				depth--
				if depth <= 0 {
					return p, true
				}
			}
		}
		li++
		if li < len(s.lines) {
			p = s.lines[li].Start
		}
	}
	return 0, false
}

// collectDest extracts a link destination,
// dropping interior whitespace from wrapped destinations.
func (s *inlineScanner) collectDest(start, end int) []byte {
	raw := s.source[start:end]
	if !bytes.ContainsAny(raw, " \t\r\n") {
		return raw
	}
	dest := make([]byte, 0, len(raw))
	for _, b := range raw {
		if !isSpaceTabOrLineEnding(b) {
			dest = append(dest, b)
		}
	}
	return dest
}

func isASCIIPunct(b byte) bool {
	return '!' <= b && b <= '/' ||
		':' <= b && b <= '@' ||
		'[' <= b && b <= '`' ||
		'{' <= b && b <= '~'
}
