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

// Package jotdown provides a pull parser for the Djot light markup
// language. [Parse] discovers the block structure of the whole input
// up front, then [Parser.Next] emits events one at a time,
// scanning each block's inline content only when the cursor reaches
// it. Events borrow from the input by default; use [Event.Cloned] to
// obtain an event that does not alias the input.
package jotdown

// Parser is a pull-based event iterator over a parsed document.
//
// A Parser's cursor state is cheap to duplicate with [Parser.Clone];
// clones iterate independently over the same shared document.
// Parser is not safe for concurrent use, but clones may be used from
// different goroutines.
type Parser struct {
	source    []byte
	doc       *block
	refs      ReferenceMap
	footnotes map[string]*block

	stack      []frame
	pending    []Event
	pendingIdx int

	// Footnote bodies referenced but not yet emitted.
	// Bodies surface after the enclosing top-level block closes.
	noteQueue []string
	noteSeen  map[string]bool
}

type frame struct {
	b       *block
	child   int
	started bool
}

// Parse parses source and returns an event iterator positioned before
// the first event. Parsing has no error outcome:
// malformed constructs degrade to literal text.
func Parse(source []byte) *Parser {
	doc, refs, footnotes := scanBlocks(source)
	p := &Parser{
		source:    source,
		doc:       doc,
		refs:      refs,
		footnotes: footnotes,
		noteSeen:  make(map[string]bool),
	}
	p.stack = append(p.stack, frame{b: doc})
	return p
}

// References returns the document's reference definitions.
// The map is shared by all clones and must not be modified.
func (p *Parser) References() ReferenceMap {
	return p.refs
}

// Clone returns an independent iterator at the same position.
// The document tree and reference map are shared;
// advancing either parser does not affect the other.
func (p *Parser) Clone() *Parser {
	p2 := &Parser{
		source:     p.source,
		doc:        p.doc,
		refs:       p.refs,
		footnotes:  p.footnotes,
		stack:      append([]frame(nil), p.stack...),
		pending:    append([]Event(nil), p.pending...),
		pendingIdx: p.pendingIdx,
		noteQueue:  append([]string(nil), p.noteQueue...),
		noteSeen:   make(map[string]bool, len(p.noteSeen)),
	}
	for k, v := range p.noteSeen {
		p2.noteSeen[k] = v
	}
	return p2
}

// Next returns the next event in the document.
// ok is false once the document is exhausted.
// Returned events borrow from the source;
// they remain valid as long as the source does.
func (p *Parser) Next() (ev Event, ok bool) {
	for {
		if p.pendingIdx < len(p.pending) {
			ev := p.pending[p.pendingIdx]
			p.pendingIdx++
			return ev, true
		}
		p.pending = nil
		p.pendingIdx = 0

		if len(p.stack) == 0 {
			return Event{}, false
		}
		f := &p.stack[len(p.stack)-1]

		if !f.started {
			f.started = true
			if f.b.kind == documentKind {
				continue
			}
			p.fillPending(f.b)
			return p.startEvent(f), true
		}

		// Queued footnote bodies surface between top-level blocks.
		if f.b.kind == documentKind && len(p.noteQueue) > 0 {
			label := p.noteQueue[0]
			p.noteQueue = p.noteQueue[1:]
			p.stack = append(p.stack, frame{b: p.footnotes[label]})
			continue
		}

		if f.child < len(f.b.children) {
			child := f.b.children[f.child]
			f.child++
			switch child.kind {
			case linkDefKind, footnoteDefKind, tableSepKind:
				// Definitions do not surface as events.
				continue
			case ThematicBreakKind:
				return Event{
					Kind:  ThematicBreakKind,
					Pos:   PosAtom,
					Span:  child.span,
					Attrs: child.attrs,
				}, true
			}
			p.stack = append(p.stack, frame{b: child})
			continue
		}

		endEv, emit := p.endEvent(f)
		p.stack = p.stack[:len(p.stack)-1]
		if emit {
			return endEv, true
		}
	}
}

// fillPending lazily scans a leaf block's content into the pending
// event buffer. Structural containers leave the buffer empty.
func (p *Parser) fillPending(b *block) {
	switch b.kind {
	case ParagraphKind, HeadingKind, TableCellKind:
		p.pending = parseInlines(p.source, b.inlines, p.refs, p.noteRef)
	case CodeBlockKind, RawBlockKind:
		for _, line := range b.inlines {
			p.pending = append(p.pending, Event{
				Kind: TextKind,
				Pos:  PosAtom,
				Span: line,
				Text: p.source[line.Start:line.End],
			})
		}
	}
}

// noteRef records a footnote reference.
// Only the first reference to a label queues its body.
func (p *Parser) noteRef(label string) {
	if p.noteSeen[label] {
		return
	}
	if _, ok := p.footnotes[label]; !ok {
		return
	}
	p.noteSeen[label] = true
	p.noteQueue = append(p.noteQueue, label)
}

func (p *Parser) startEvent(f *frame) Event {
	b := f.b
	ev := Event{
		Kind:  b.kind,
		Pos:   PosStart,
		Span:  b.span,
		Attrs: b.attrs,
	}
	switch b.kind {
	case HeadingKind:
		ev.Level = b.level
	case CodeBlockKind, RawBlockKind:
		ev.Lang = p.source[b.lang.Start:b.lang.End]
	case DivKind:
		ev.Class = p.source[b.class.Start:b.class.End]
	case ListKind:
		ev.ListStyle = b.listStyle
		ev.ListStart = b.listStart
		ev.Tight = b.tight
	case TableRowKind:
		ev.Head = b.head
	case TableCellKind:
		ev.Align = b.align
		ev.Head = b.head
	case footnoteDefKind:
		ev.Kind = FootnoteKind
		ev.Text = []byte(b.label)
	}
	return ev
}

func (p *Parser) endEvent(f *frame) (Event, bool) {
	b := f.b
	if b.kind == documentKind {
		return Event{}, false
	}
	ev := Event{
		Kind: b.kind,
		Pos:  PosEnd,
		Span: Span{b.span.End, b.span.End},
	}
	if b.kind == footnoteDefKind {
		ev.Kind = FootnoteKind
	}
	return ev, true
}
