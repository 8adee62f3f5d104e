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

// A block is a node in the container skeleton produced by block discovery.
// Blocks are immutable once discovery finishes;
// parser clones share them freely.
type block struct {
	kind     EventKind
	span     Span
	children []*block

	// inlines holds the content line spans of inline-bearing leaves
	// (paragraphs, headings, table cells)
	// and the raw content lines of code and raw blocks.
	inlines []Span

	attrs *Attributes

	// Kind-specific metadata.
	level       int       // heading
	fenceChar   byte      // code block, div
	fenceLen    int       // code block, div
	fenceIndent int       // code block: columns to strip from content lines
	lang        Span      // code block language / raw block format
	class       Span      // div class
	listStyle   ListStyle // list
	listStart   int       // list: first item number
	tight       bool      // list: resolved at close
	align       Alignment // table cell
	head        bool      // table row, table cell
	label       string    // footnote or link definition: normalized label
	dest        []byte    // link definition: accumulated destination

	// Scanner-only state. Meaningless after discovery.
	markerCol    int  // list, list item, footnote: marker column
	loose        bool // list
	blankPending bool // list: blank line seen, not yet attributed
}

func (b *block) lastChild() *block {
	if len(b.children) == 0 {
		return nil
	}
	return b.children[len(b.children)-1]
}

// acceptsLines reports whether remaining line text
// becomes content of this block directly.
func (kind EventKind) acceptsLines() bool {
	switch kind {
	case ParagraphKind, HeadingKind, CodeBlockKind, RawBlockKind:
		return true
	default:
		return false
	}
}

// blockScanner is the line-oriented scanner
// that performs the eager discovery pass over the whole input.
// It maintains an explicit stack of open containers,
// so nesting depth is bounded only by memory.
type blockScanner struct {
	source    []byte
	doc       *block
	open      []*block // open[0] is always doc
	refs      ReferenceMap
	footnotes map[string]*block

	lineStart  int
	line       []byte // current line, including its line ending
	i          int    // cursor within line
	contentEnd int    // end offset of the last non-blank line

	pendingAttrs *Attributes
}

// scanBlocks runs the discovery pass over the whole input.
// It has no failure outcome:
// malformed markers degrade to paragraph text.
func scanBlocks(source []byte) (doc *block, refs ReferenceMap, footnotes map[string]*block) {
	s := &blockScanner{
		source:    source,
		doc:       &block{kind: documentKind, span: Span{0, len(source)}},
		refs:      make(ReferenceMap),
		footnotes: make(map[string]*block),
	}
	s.open = append(s.open, s.doc)

	for offset := 0; offset < len(source); {
		end := len(source)
		if i := bytes.IndexByte(source[offset:], '\n'); i >= 0 {
			end = offset + i + 1
		}
		s.lineStart = offset
		s.line = source[offset:end]
		s.i = 0
		s.scanLine()
		if !isBlankLine(s.line) {
			s.contentEnd = end
		}
		offset = end
	}
	s.closeFrom(1, len(source))

	return s.doc, s.refs, s.footnotes
}

// scanLine advances the container stack by one line:
// matching continuations, closing unmatched containers,
// opening new ones, and collecting content.
func (s *blockScanner) scanLine() {
	matched, consumed := s.descendOpen()
	if consumed {
		return
	}

	if matched == len(s.open) {
		tip := s.open[len(s.open)-1]
		if !tip.kind.acceptsLines() && s.openNewBlocks() {
			return
		}
		s.addLineText()
		return
	}

	// Some containers did not match.
	// Lazy continuation: a non-blank line that cannot start a sibling
	// block keeps an open paragraph or heading alive,
	// even across failed container markers.
	tip := s.open[len(s.open)-1]
	if !isBlankLine(s.Bytes()) &&
		(tip.kind == ParagraphKind || tip.kind == HeadingKind) &&
		!s.wouldStartBlock() {
		s.addLineText()
		return
	}

	s.closeFrom(matched, s.contentEnd)
	if s.openNewBlocks() {
		return
	}
	s.addLineText()
}

// descendOpen matches the current line against each open container,
// outermost first, consuming continuation markers as it goes.
// It returns the number of containers that matched
// and whether a rule consumed the entire line
// (fence closers and table rows do).
func (s *blockScanner) descendOpen() (matched int, consumedLine bool) {
	for idx, b := range s.open {
		rule := blockRules[b.kind]
		if rule.match == nil {
			return idx, false
		}
		switch rule.match(s, b, idx) {
		case noMatch:
			return idx, false
		case matchedEntireLine:
			return idx + 1, true
		case closedEntireLine:
			s.closeFrom(idx, s.lineStart+len(s.line))
			return idx, true
		}
	}
	return len(s.open), false
}

// openNewBlocks repeatedly tries block start matchers at the deepest
// open container until a line-accepting block is open
// or no matcher fires.
// It reports whether a matcher consumed the entire line,
// in which case no content remains for addLineText.
func (s *blockScanner) openNewBlocks() (consumedLine bool) {
	for {
		tip := s.open[len(s.open)-1]
		if tip.kind.acceptsLines() {
			return false
		}
		fired := false
		for _, start := range blockStarts {
			switch start(s) {
			case started:
				fired = true
			case startedEntireLine:
				return true
			}
			if fired {
				break
			}
		}
		if !fired {
			return false
		}
	}
}

// addLineText appends the rest of the line to the deepest open block,
// opening a paragraph first when the tip does not accept lines.
func (s *blockScanner) addLineText() {
	tip := s.open[len(s.open)-1]
	switch tip.kind {
	case CodeBlockKind, RawBlockKind:
		// Code lines keep their line endings and interior whitespace;
		// only the fence's own indentation is stripped.
		strip := 0
		for strip < tip.fenceIndent && s.i+strip < len(s.line) && isSpaceOrTab(s.line[s.i+strip]) {
			strip++
		}
		start := s.lineStart + s.i + strip
		tip.inlines = append(tip.inlines, Span{start, s.lineStart + len(s.line)})
		return
	case ParagraphKind, HeadingKind:
		if span, ok := s.contentSpan(); ok {
			tip.inlines = append(tip.inlines, span)
		}
		return
	}

	// The tip is a structural container: open a paragraph.
	span, ok := s.contentSpan()
	if !ok {
		return
	}
	para := &block{
		kind: ParagraphKind,
		span: Span{Start: span.Start, End: -1},
	}
	s.appendChild(para)
	para.inlines = append(para.inlines, span)
}

// contentSpan returns the rest of the line trimmed of surrounding
// whitespace and the line ending. ok is false for blank remainders.
func (s *blockScanner) contentSpan() (Span, bool) {
	start := s.lineStart + s.i
	end := s.lineStart + len(s.line)
	for start < end && isSpaceOrTab(s.source[start]) {
		start++
	}
	for end > start && isSpaceTabOrLineEnding(s.source[end-1]) {
		end--
	}
	if start >= end {
		return Span{}, false
	}
	return Span{start, end}, true
}

// appendChild opens a new block as a child of the current tip
// and pushes it onto the open stack.
// Pending block attributes attach to the new block.
func (s *blockScanner) appendChild(b *block) {
	tip := s.open[len(s.open)-1]
	// Lists only hold items; anything else closes the list.
	if tip.kind == ListKind && b.kind != ListItemKind {
		s.closeFrom(len(s.open)-1, s.contentEnd)
		tip = s.open[len(s.open)-1]
	}
	if b.span.End == 0 {
		b.span.End = -1
	}
	if s.pendingAttrs != nil && b.kind != ListItemKind {
		b.attrs = mergeAttributes(s.pendingAttrs, b.attrs)
		s.pendingAttrs = nil
	}
	tip.children = append(tip.children, b)
	s.open = append(s.open, b)
}

// closeFrom closes open[idx:] innermost first,
// patching each block's end offset and running close hooks.
// The document itself (index 0) never closes before EOF.
func (s *blockScanner) closeFrom(idx int, end int) {
	if idx < 1 {
		idx = 1
	}
	for len(s.open) > idx {
		b := s.open[len(s.open)-1]
		s.open = s.open[:len(s.open)-1]
		if end > b.span.Start {
			b.span.End = end
		} else {
			b.span.End = b.span.Start
		}
		s.closeHook(b)
	}
}

// closeHook finalizes kind-specific state when a block closes.
func (s *blockScanner) closeHook(b *block) {
	switch b.kind {
	case ListKind:
		// Tightness is a whole-list property:
		// it can only be decided once the list's extent is known.
		b.tight = !b.loose
	case linkDefKind:
		s.refs.insert(b.label, LinkDefinition{
			Destination: string(b.dest),
			Attrs:       b.attrs,
		})
	case footnoteDefKind:
		if _, exists := s.footnotes[b.label]; !exists && b.label != "" {
			s.footnotes[b.label] = b
		}
	}
}

// Bytes returns the bytes remaining in the line.
func (s *blockScanner) Bytes() []byte {
	return s.line[s.i:]
}

// Advance advances the cursor by n bytes.
func (s *blockScanner) Advance(n int) {
	s.i += n
}

// Indent returns the number of space or tab bytes after the cursor.
func (s *blockScanner) Indent() int {
	n := 0
	for s.i+n < len(s.line) && isSpaceOrTab(s.line[s.i+n]) {
		n++
	}
	return n
}

type parseResult int8

const (
	noMatch parseResult = iota
	matched
	matchedEntireLine
	closedEntireLine
)

type startResult int8

const (
	noStart startResult = iota
	started
	startedEntireLine
)

type blockRule struct {
	match func(s *blockScanner, b *block, idx int) parseResult
}

var blockRules = map[EventKind]blockRule{
	documentKind: {match: func(*blockScanner, *block, int) parseResult { return matched }},

	ParagraphKind: {match: func(s *blockScanner, b *block, idx int) parseResult {
		if isBlankLine(s.Bytes()) {
			return noMatch
		}
		return matched
	}},

	BlockQuoteKind: {match: matchBlockQuote},
	HeadingKind:    {match: matchHeading},
	ListKind:       {match: matchList},
	ListItemKind:   {match: matchListItem},
	DivKind:        {match: matchFenced},
	CodeBlockKind:  {match: matchFenced},
	RawBlockKind:   {match: matchFenced},
	TableKind:      {match: matchTable},

	footnoteDefKind: {match: matchFootnoteDef},
	linkDefKind:     {match: matchLinkDefContinuation},
}

func matchBlockQuote(s *blockScanner, b *block, idx int) parseResult {
	if isBlankLine(s.Bytes()) {
		// Quotes stay open across blank lines;
		// the blank still closes any paragraph inside.
		return matched
	}
	indent := s.Indent()
	rest := s.line[s.i+indent:]
	if len(rest) == 0 || rest[0] != '>' {
		return noMatch
	}
	if len(rest) > 1 && !isSpaceTabOrLineEnding(rest[1]) {
		return noMatch
	}
	s.Advance(indent + 1)
	if s.i < len(s.line) && s.line[s.i] == ' ' {
		s.Advance(1)
	}
	return matched
}

func matchHeading(s *blockScanner, b *block, idx int) parseResult {
	if isBlankLine(s.Bytes()) {
		return noMatch
	}
	// Continuation lines may repeat the heading marker.
	indent := s.Indent()
	rest := s.line[s.i+indent:]
	n := 0
	for n < len(rest) && rest[n] == '#' {
		n++
	}
	if n == b.level && n < len(rest) && isSpaceTabOrLineEnding(rest[n]) {
		s.Advance(indent + n)
	}
	return matched
}

func matchList(s *blockScanner, b *block, idx int) parseResult {
	if isBlankLine(s.Bytes()) {
		b.blankPending = true
		return matched
	}
	indent := s.Indent()
	if s.i+indent > b.markerCol {
		// Indented content continuing the open item.
		return matched
	}
	// A compatible sibling marker at the list's column keeps the list
	// open; the stale item below it fails its own match.
	if m, ok := parseListMarker(s.line[s.i+indent:]); ok &&
		m.style == b.listStyle && s.i+indent == b.markerCol {
		return matched
	}
	return noMatch
}

func matchListItem(s *blockScanner, b *block, idx int) parseResult {
	if isBlankLine(s.Bytes()) {
		return matched
	}
	indent := s.Indent()
	if s.i+indent <= b.markerCol {
		return noMatch
	}
	// Blank lines inside a continuing item make the whole list loose.
	if idx > 0 {
		if list := s.open[idx-1]; list.kind == ListKind && list.blankPending {
			list.loose = true
			list.blankPending = false
		}
	}
	return matched
}

// matchFenced handles divs, code blocks, and raw blocks:
// every line is content until a closing fence
// at least as long as the opener.
func matchFenced(s *blockScanner, b *block, idx int) parseResult {
	indent := s.Indent()
	rest := s.line[s.i+indent:]
	n := 0
	for n < len(rest) && rest[n] == b.fenceChar {
		n++
	}
	if n >= b.fenceLen && isBlankLine(rest[n:]) {
		return closedEntireLine
	}
	return matched
}

func matchTable(s *blockScanner, b *block, idx int) parseResult {
	if isBlankLine(s.Bytes()) {
		return noMatch
	}
	indent := s.Indent()
	rest := bytes.TrimRight(trimLineEnding(s.line[s.i+indent:]), " \t")
	if len(rest) < 2 || rest[0] != '|' || rest[len(rest)-1] != '|' {
		return noMatch
	}
	s.appendTableRow(b, s.lineStart+s.i+indent, rest)
	return matchedEntireLine
}

func matchFootnoteDef(s *blockScanner, b *block, idx int) parseResult {
	if isBlankLine(s.Bytes()) {
		return matched
	}
	// Footnote bodies continue permissively:
	// any indentation past the marker column is enough,
	// it need not line up with the body's own indentation.
	if s.i+s.Indent() > b.markerCol {
		return matched
	}
	return noMatch
}

func matchLinkDefContinuation(s *blockScanner, b *block, idx int) parseResult {
	if isBlankLine(s.Bytes()) {
		return noMatch
	}
	indent := s.Indent()
	if indent == 0 {
		return noMatch
	}
	word := bytes.TrimRight(trimLineEnding(s.line[s.i+indent:]), " \t")
	if len(word) == 0 || bytes.ContainsAny(word, " \t") {
		return noMatch
	}
	b.dest = append(b.dest, word...)
	return matchedEntireLine
}

// blockStarts lists the start matchers in precedence order.
// Matchers never fail the parse:
// a line that matches nothing becomes paragraph text.
var blockStarts = []func(*blockScanner) startResult{
	startBlockAttributes,
	startBlockQuote,
	startHeading,
	startDiv,
	startCodeBlock,
	startThematicBreak,
	startFootnoteDef,
	startLinkDef,
	startTable,
	startListItem,
}

func startBlockAttributes(s *blockScanner) startResult {
	indent := s.Indent()
	rest := s.line[s.i+indent:]
	if len(rest) == 0 || rest[0] != '{' {
		return noStart
	}
	attrs, ok := parseBlockAttributes(rest)
	if !ok {
		return noStart
	}
	if s.pendingAttrs == nil {
		s.pendingAttrs = attrs
	} else {
		s.pendingAttrs.merge(attrs)
	}
	return startedEntireLine
}

func startBlockQuote(s *blockScanner) startResult {
	indent := s.Indent()
	rest := s.line[s.i+indent:]
	if len(rest) == 0 || rest[0] != '>' {
		return noStart
	}
	if len(rest) > 1 && !isSpaceTabOrLineEnding(rest[1]) {
		return noStart
	}
	start := s.lineStart + s.i + indent
	s.Advance(indent + 1)
	if s.i < len(s.line) && s.line[s.i] == ' ' {
		s.Advance(1)
	}
	s.appendChild(&block{kind: BlockQuoteKind, span: Span{Start: start, End: -1}})
	return started
}

func startHeading(s *blockScanner) startResult {
	indent := s.Indent()
	rest := s.line[s.i+indent:]
	level := 0
	for level < len(rest) && rest[level] == '#' {
		level++
	}
	if level == 0 || level >= len(rest) || !isSpaceTabOrLineEnding(rest[level]) {
		return noStart
	}
	start := s.lineStart + s.i + indent
	s.Advance(indent + level)
	s.appendChild(&block{
		kind:  HeadingKind,
		span:  Span{Start: start, End: -1},
		level: level,
	})
	return started
}

func startDiv(s *blockScanner) startResult {
	indent := s.Indent()
	rest := s.line[s.i+indent:]
	n := 0
	for n < len(rest) && rest[n] == ':' {
		n++
	}
	if n < 3 {
		return noStart
	}
	// Optional single class word, then nothing else on the line.
	after := trimLineEnding(rest[n:])
	pad := len(after) - len(bytes.TrimLeft(after, " \t"))
	word := bytes.TrimRight(after[pad:], " \t")
	if bytes.ContainsAny(word, " \t:") {
		return noStart
	}
	start := s.lineStart + s.i + indent
	classStart := start + n + pad
	div := &block{
		kind:      DivKind,
		span:      Span{Start: start, End: -1},
		fenceChar: ':',
		fenceLen:  n,
		class:     Span{classStart, classStart + len(word)},
	}
	if len(word) == 0 {
		div.class = Span{start, start}
	}
	s.appendChild(div)
	return startedEntireLine
}

func startCodeBlock(s *blockScanner) startResult {
	indent := s.Indent()
	rest := s.line[s.i+indent:]
	n := 0
	for n < len(rest) && rest[n] == '`' {
		n++
	}
	if n < 3 {
		return noStart
	}
	after := trimLineEnding(rest[n:])
	pad := len(after) - len(bytes.TrimLeft(after, " \t"))
	info := bytes.TrimRight(after[pad:], " \t")
	if bytes.ContainsAny(info, " \t`") {
		return noStart
	}
	start := s.lineStart + s.i + indent
	infoStart := start + n + pad
	b := &block{
		kind:        CodeBlockKind,
		span:        Span{Start: start, End: -1},
		fenceChar:   '`',
		fenceLen:    n,
		fenceIndent: indent,
		lang:        Span{infoStart, infoStart + len(info)},
	}
	if len(info) > 0 && info[0] == '=' {
		b.kind = RawBlockKind
		b.lang.Start++
	} else if len(info) == 0 {
		b.lang = Span{start, start}
	}
	s.appendChild(b)
	return startedEntireLine
}

func startThematicBreak(s *blockScanner) startResult {
	indent := s.Indent()
	end := parseThematicBreak(trimLineEnding(s.line[s.i+indent:]))
	if end < 0 {
		return noStart
	}
	start := s.lineStart + s.i + indent
	tip := s.open[len(s.open)-1]
	if tip.kind == ListKind {
		s.closeFrom(len(s.open)-1, s.contentEnd)
		tip = s.open[len(s.open)-1]
	}
	b := &block{
		kind: ThematicBreakKind,
		span: Span{start, start + end},
	}
	if s.pendingAttrs != nil {
		b.attrs = s.pendingAttrs
		s.pendingAttrs = nil
	}
	tip.children = append(tip.children, b)
	return startedEntireLine
}

func startFootnoteDef(s *blockScanner) startResult {
	indent := s.Indent()
	rest := s.line[s.i+indent:]
	if len(rest) < 4 || rest[0] != '[' || rest[1] != '^' {
		return noStart
	}
	close := bytes.IndexByte(rest, ']')
	if close < 3 || close+1 >= len(rest) || rest[close+1] != ':' {
		return noStart
	}
	start := s.lineStart + s.i + indent
	fn := &block{
		kind:      footnoteDefKind,
		span:      Span{Start: start, End: -1},
		label:     NormalizeLabel(string(rest[2:close])),
		markerCol: s.i + indent,
	}
	s.appendChild(fn)
	s.Advance(indent + close + 2)
	if s.i < len(s.line) && s.line[s.i] == ' ' {
		s.Advance(1)
	}
	return started
}

func startLinkDef(s *blockScanner) startResult {
	indent := s.Indent()
	rest := trimLineEnding(s.line[s.i+indent:])
	if len(rest) < 4 || rest[0] != '[' || rest[1] == '^' {
		return noStart
	}
	close := bytes.IndexByte(rest, ']')
	if close <= 1 || close+1 >= len(rest) || rest[close+1] != ':' {
		return noStart
	}
	after := bytes.TrimLeft(rest[close+2:], " \t")
	wordEnd := 0
	for wordEnd < len(after) && !isSpaceOrTab(after[wordEnd]) {
		wordEnd++
	}
	// Attributes may trail the destination on the same line.
	var attrs *Attributes
	if tail := bytes.TrimLeft(after[wordEnd:], " \t"); len(tail) > 0 {
		a, ok := parseBlockAttributes(tail)
		if !ok {
			return noStart
		}
		attrs = a
	}
	start := s.lineStart + s.i + indent
	def := &block{
		kind:  linkDefKind,
		span:  Span{Start: start, End: -1},
		label: string(rest[1:close]),
		dest:  append([]byte(nil), after[:wordEnd]...),
		attrs: attrs,
	}
	s.appendChild(def)
	return startedEntireLine
}

func startTable(s *blockScanner) startResult {
	indent := s.Indent()
	rest := bytes.TrimRight(trimLineEnding(s.line[s.i+indent:]), " \t")
	if len(rest) < 2 || rest[0] != '|' || rest[len(rest)-1] != '|' {
		return noStart
	}
	start := s.lineStart + s.i + indent
	table := &block{kind: TableKind, span: Span{Start: start, End: -1}}
	s.appendChild(table)
	s.appendTableRow(table, start, rest)
	return startedEntireLine
}

func startListItem(s *blockScanner) startResult {
	indent := s.Indent()
	m, ok := parseListMarker(s.line[s.i+indent:])
	if !ok {
		return noStart
	}
	col := s.i + indent
	start := s.lineStart + col

	// Reuse the enclosing open list when the marker is compatible.
	tip := s.open[len(s.open)-1]
	if tip.kind != ListKind || tip.listStyle != m.style || tip.markerCol != col {
		list := &block{
			kind:      ListKind,
			span:      Span{Start: start, End: -1},
			listStyle: m.style,
			listStart: m.start,
			markerCol: col,
		}
		s.appendChild(list)
		tip = list
	}
	if tip.blankPending {
		tip.loose = true
		tip.blankPending = false
	}
	item := &block{
		kind:      ListItemKind,
		span:      Span{Start: start, End: -1},
		markerCol: col,
	}
	s.appendChild(item)
	s.Advance(indent + m.len)
	return started
}

// wouldStartBlock reports whether the rest of the line could open a new
// block. Used only to decide lazy paragraph continuation;
// it must stay aligned with the blockStarts matchers.
func (s *blockScanner) wouldStartBlock() bool {
	rest := bytes.TrimLeft(s.Bytes(), " \t")
	if len(rest) == 0 {
		return false
	}
	switch rest[0] {
	case '>':
		return len(rest) == 1 || isSpaceTabOrLineEnding(rest[1])
	case '#':
		n := 0
		for n < len(rest) && rest[n] == '#' {
			n++
		}
		return n < len(rest) && isSpaceTabOrLineEnding(rest[n])
	case ':':
		return bytes.HasPrefix(rest, []byte(":::"))
	case '`':
		return bytes.HasPrefix(rest, []byte("```"))
	case '|':
		trimmed := bytes.TrimRight(trimLineEnding(rest), " \t")
		return len(trimmed) >= 2 && trimmed[len(trimmed)-1] == '|'
	case '{':
		_, ok := parseBlockAttributes(rest)
		return ok
	case '[':
		if len(rest) > 1 && rest[1] == '^' {
			return true
		}
		close := bytes.IndexByte(rest, ']')
		return close > 1 && close+1 < len(rest) && rest[close+1] == ':'
	}
	if parseThematicBreak(trimLineEnding(rest)) >= 0 {
		return true
	}
	_, ok := parseListMarker(rest)
	return ok
}

// appendTableRow splits a pipe row into cell blocks.
// Separator rows are not emitted:
// they mark the previous row as a header row
// and set the alignment of it and all following rows.
func (s *blockScanner) appendTableRow(table *block, start int, rest []byte) {
	var cells []Span
	cellStart := 1
	for i := 1; i < len(rest); i++ {
		if rest[i] != '|' || isEndEscaped(rest[:i]) || insideVerbatim(rest[cellStart:i]) {
			continue
		}
		cs := start + cellStart
		ce := start + i
		for cs < ce && isSpaceOrTab(s.source[cs]) {
			cs++
		}
		for ce > cs && isSpaceOrTab(s.source[ce-1]) {
			ce--
		}
		cells = append(cells, Span{cs, ce})
		cellStart = i + 1
	}

	aligns := make([]Alignment, 0, len(cells))
	isSep := len(cells) > 0
	for _, c := range cells {
		a, ok := parseAlignment(s.source[c.Start:c.End])
		if !ok {
			isSep = false
			break
		}
		aligns = append(aligns, a)
	}
	if isSep {
		// Retroactively promote the previous row to a header row.
		// Rows are only emitted after discovery completes,
		// so the patch is invisible to consumers.
		if prev := table.lastChild(); prev != nil && prev.kind == TableRowKind {
			prev.head = true
			for i, cellBlock := range prev.children {
				cellBlock.head = true
				if i < len(aligns) {
					cellBlock.align = aligns[i]
				}
			}
		}
		sep := &block{kind: tableSepKind, span: Span{start, start + len(rest)}}
		for _, a := range aligns {
			sep.children = append(sep.children, &block{kind: tableSepKind, align: a})
		}
		table.children = append(table.children, sep)
		return
	}

	row := &block{kind: TableRowKind, span: Span{start, start + len(rest)}}
	currentAligns := currentTableAligns(table)
	for i, c := range cells {
		cb := &block{
			kind:    TableCellKind,
			span:    c,
			inlines: []Span{c},
		}
		if i < len(currentAligns) {
			cb.align = currentAligns[i]
		}
		row.children = append(row.children, cb)
	}
	table.children = append(table.children, row)
}

// currentTableAligns returns the alignments set by the most recent
// separator row, if any.
func currentTableAligns(table *block) []Alignment {
	for i := len(table.children) - 1; i >= 0; i-- {
		if table.children[i].kind == tableSepKind {
			aligns := make([]Alignment, len(table.children[i].children))
			for j, c := range table.children[i].children {
				aligns[j] = c.align
			}
			return aligns
		}
	}
	return nil
}

func parseAlignment(cell []byte) (Alignment, bool) {
	if len(cell) == 0 {
		return AlignDefault, false
	}
	left := cell[0] == ':'
	right := cell[len(cell)-1] == ':'
	dashes := cell
	if left {
		dashes = dashes[1:]
	}
	if right && len(dashes) > 0 {
		dashes = dashes[:len(dashes)-1]
	}
	if len(dashes) == 0 {
		return AlignDefault, false
	}
	for _, b := range dashes {
		if b != '-' {
			return AlignDefault, false
		}
	}
	switch {
	case left && right:
		return AlignCenter, true
	case left:
		return AlignLeft, true
	case right:
		return AlignRight, true
	default:
		return AlignDefault, true
	}
}

// insideVerbatim reports whether the candidate cell text has an
// unclosed backtick span, meaning the pipe that follows it
// sits inside verbatim content and is not a cell boundary.
func insideVerbatim(cell []byte) bool {
	open := 0
	for i := 0; i < len(cell); {
		if cell[i] != '`' {
			i++
			continue
		}
		n := 0
		for i < len(cell) && cell[i] == '`' {
			n++
			i++
		}
		if open == 0 {
			open = n
		} else if open == n {
			open = 0
		}
	}
	return open != 0
}

type listMarker struct {
	style ListStyle
	start int // first item number
	len   int // marker length in bytes
}

// parseListMarker attempts to parse a list item marker at the start of
// rest. Alphabetic markers are exactly one letter;
// anything longer falls through to ordinary text.
func parseListMarker(rest []byte) (listMarker, bool) {
	if len(rest) == 0 {
		return listMarker{}, false
	}
	switch rest[0] {
	case '-', '+', '*':
		if len(rest) > 1 && !isSpaceTabOrLineEnding(rest[1]) {
			return listMarker{}, false
		}
		style := ListStyleDash
		switch rest[0] {
		case '+':
			style = ListStylePlus
		case '*':
			style = ListStyleStar
		}
		return listMarker{style: style, start: 1, len: 1}, true
	case '(':
		n, w := parseDecimal(rest[1:])
		if w == 0 || 1+w >= len(rest) || rest[1+w] != ')' {
			return listMarker{}, false
		}
		if 2+w < len(rest) && !isSpaceTabOrLineEnding(rest[2+w]) {
			return listMarker{}, false
		}
		return listMarker{style: ListStyleDecimalParens, start: n, len: 2 + w}, true
	}

	if n, w := parseDecimal(rest); w > 0 {
		if w >= len(rest) {
			return listMarker{}, false
		}
		var style ListStyle
		switch rest[w] {
		case '.':
			style = ListStyleDecimalPeriod
		case ')':
			style = ListStyleDecimalParen
		default:
			return listMarker{}, false
		}
		if w+1 < len(rest) && !isSpaceTabOrLineEnding(rest[w+1]) {
			return listMarker{}, false
		}
		return listMarker{style: style, start: n, len: w + 1}, true
	}

	if isASCIILetter(rest[0]) && len(rest) > 1 {
		lower := 'a' <= rest[0] && rest[0] <= 'z'
		var style ListStyle
		switch {
		case rest[1] == '.' && lower:
			style = ListStyleAlphaLowerPeriod
		case rest[1] == '.':
			style = ListStyleAlphaUpperPeriod
		case rest[1] == ')' && lower:
			style = ListStyleAlphaLowerParen
		case rest[1] == ')':
			style = ListStyleAlphaUpperParen
		default:
			return listMarker{}, false
		}
		if len(rest) > 2 && !isSpaceTabOrLineEnding(rest[2]) {
			return listMarker{}, false
		}
		start := int(rest[0]-'a') + 1
		if !lower {
			start = int(rest[0]-'A') + 1
		}
		return listMarker{style: style, start: start, len: 2}, true
	}
	return listMarker{}, false
}

func parseDecimal(rest []byte) (value, width int) {
	for width < len(rest) && '0' <= rest[width] && rest[width] <= '9' {
		value = value*10 + int(rest[width]-'0')
		width++
	}
	if width > 9 {
		return 0, 0
	}
	return value, width
}

// parseThematicBreak attempts to parse the line as a thematic break.
// It returns the end of the break characters
// or -1 if the line is not a thematic break.
func parseThematicBreak(line []byte) (end int) {
	n := 0
	var want byte
	for i, b := range line {
		switch b {
		case '-', '*':
			if n == 0 {
				want = b
			} else if b != want {
				return -1
			}
			n++
			end = i + 1
		case ' ', '\t':
			// Ignore.
		default:
			return -1
		}
	}
	if n < 3 {
		return -1
	}
	return end
}

func trimLineEnding(line []byte) []byte {
	return bytes.TrimRight(line, "\r\n")
}

func isBlankLine(line []byte) bool {
	for _, b := range line {
		if !isSpaceTabOrLineEnding(b) {
			return false
		}
	}
	return true
}

func isSpaceOrTab(b byte) bool {
	return b == ' ' || b == '\t'
}

func isSpaceTabOrLineEnding(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isASCIILetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

// isEndEscaped reports whether s ends with an odd number of backslashes.
func isEndEscaped(s []byte) bool {
	n := 0
	for ; n < len(s); n++ {
		if s[len(s)-n-1] != '\\' {
			break
		}
	}
	return n%2 == 1
}
