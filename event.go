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

import "fmt"

// Span is a half-open byte range into the source passed to [Parse].
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// Bytes returns the source bytes the span covers.
func (s Span) Bytes(source []byte) []byte {
	return source[s.Start:s.End]
}

// IsValid reports whether the span is within a source of the given length
// and well-ordered.
func (s Span) IsValid(n int) bool {
	return 0 <= s.Start && s.Start <= s.End && s.End <= n
}

// String formats the span as "[start,end)".
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Position distinguishes the role of an [Event] within the stream.
// Container kinds are emitted as a [PosStart]/[PosEnd] pair;
// leaf kinds are emitted once as [PosAtom].
type Position uint8

const (
	PosAtom Position = iota
	PosStart
	PosEnd
)

func (pos Position) String() string {
	switch pos {
	case PosAtom:
		return "Atom"
	case PosStart:
		return "Start"
	case PosEnd:
		return "End"
	default:
		return fmt.Sprintf("Position(%d)", uint8(pos))
	}
}

// EventKind is an enumeration of the constructs an [Event] can describe.
type EventKind uint16

const (
	// Block containers.
	ParagraphKind EventKind = 1 + iota
	HeadingKind
	BlockQuoteKind
	ListKind
	ListItemKind
	CodeBlockKind
	RawBlockKind
	DivKind
	TableKind
	TableRowKind
	TableCellKind
	FootnoteKind

	// Block leaves.
	ThematicBreakKind

	// Inline containers.
	EmphasisKind
	StrongKind
	SuperscriptKind
	SubscriptKind
	InsertKind
	DeleteKind
	MarkKind
	SpanKind
	LinkKind
	ImageKind
	VerbatimKind
	InlineMathKind
	DisplayMathKind
	RawInlineKind
	SingleQuotedKind
	DoubleQuotedKind

	// Inline leaves.
	TextKind
	SoftBreakKind
	HardBreakKind
	NonBreakingSpaceKind
	EllipsisKind
	EnDashKind
	EmDashKind
	AutolinkKind
	FootnoteReferenceKind

	// Scanner-internal kinds. Never emitted.
	documentKind
	linkDefKind
	footnoteDefKind
	tableSepKind
)

var eventKindNames = map[EventKind]string{
	ParagraphKind:         "Paragraph",
	HeadingKind:           "Heading",
	BlockQuoteKind:        "BlockQuote",
	ListKind:              "List",
	ListItemKind:          "ListItem",
	CodeBlockKind:         "CodeBlock",
	RawBlockKind:          "RawBlock",
	DivKind:               "Div",
	TableKind:             "Table",
	TableRowKind:          "TableRow",
	TableCellKind:         "TableCell",
	FootnoteKind:          "Footnote",
	ThematicBreakKind:     "ThematicBreak",
	EmphasisKind:          "Emphasis",
	StrongKind:            "Strong",
	SuperscriptKind:       "Superscript",
	SubscriptKind:         "Subscript",
	InsertKind:            "Insert",
	DeleteKind:            "Delete",
	MarkKind:              "Mark",
	SpanKind:              "Span",
	LinkKind:              "Link",
	ImageKind:             "Image",
	VerbatimKind:          "Verbatim",
	InlineMathKind:        "InlineMath",
	DisplayMathKind:       "DisplayMath",
	RawInlineKind:         "RawInline",
	SingleQuotedKind:      "SingleQuoted",
	DoubleQuotedKind:      "DoubleQuoted",
	TextKind:              "Text",
	SoftBreakKind:         "SoftBreak",
	HardBreakKind:         "HardBreak",
	NonBreakingSpaceKind:  "NonBreakingSpace",
	EllipsisKind:          "Ellipsis",
	EnDashKind:            "EnDash",
	EmDashKind:            "EmDash",
	AutolinkKind:          "Autolink",
	FootnoteReferenceKind: "FootnoteReference",
}

func (kind EventKind) String() string {
	if name, ok := eventKindNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", uint16(kind))
}

// isContainer reports whether the kind is emitted as a Start/End pair.
func (kind EventKind) isContainer() bool {
	switch kind {
	case ThematicBreakKind,
		TextKind, SoftBreakKind, HardBreakKind, NonBreakingSpaceKind,
		EllipsisKind, EnDashKind, EmDashKind,
		AutolinkKind, FootnoteReferenceKind:
		return false
	default:
		return true
	}
}

// ListStyle identifies the marker style of a list.
// Items only group into the same list when their styles are equal.
type ListStyle uint8

const (
	ListStyleDash ListStyle = 1 + iota // -
	ListStylePlus                      // +
	ListStyleStar                      // *
	ListStyleDecimalPeriod             // 1.
	ListStyleDecimalParen              // 1)
	ListStyleDecimalParens             // (1)
	ListStyleAlphaLowerPeriod          // a.
	ListStyleAlphaLowerParen           // a)
	ListStyleAlphaUpperPeriod          // A.
	ListStyleAlphaUpperParen           // A)
)

// IsOrdered reports whether the style carries item numbering.
func (s ListStyle) IsOrdered() bool {
	return s >= ListStyleDecimalPeriod
}

// Alignment is the column alignment of a table cell.
type Alignment uint8

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return ""
	}
}

// An Event is one unit of parser output.
//
// Byte slice fields (Text, Lang, Class, Dest) alias the source buffer
// passed to [Parse] whenever the payload appears literally in the source,
// so an Event is only valid while the source is.
// Call [Event.Cloned] to obtain an event with an independent lifetime.
type Event struct {
	// Kind identifies the construct and Pos its role.
	// Every PosStart has a matching PosEnd of the same kind
	// at the same nesting depth.
	Kind EventKind
	Pos  Position

	// Span is the byte range of the construct's source text.
	// A block container's Start span covers the whole block
	// and its End span is empty, at the block's end offset.
	// An inline container's Start and End spans cover its opening
	// and closing delimiters.
	Span Span

	// Text is the payload of leaf events:
	// literal text, autolink destination, or footnote label.
	Text []byte

	// Attrs holds the attributes attached to the element, if any.
	// It is only set on PosStart and PosAtom events.
	Attrs *Attributes

	// Level is the heading level (1-based) on HeadingKind events.
	Level int

	// Lang is the language tag of a CodeBlockKind event
	// or the output format of a RawBlockKind/RawInlineKind event.
	// Absence is an empty slice, never a missing value.
	Lang []byte

	// Class is the class string of a DivKind event.
	// Absence is an empty slice.
	Class []byte

	// Dest is the destination of a LinkKind, ImageKind,
	// or AutolinkKind event.
	Dest []byte

	// ListStyle, ListStart, and Tight describe ListKind events.
	// Tight is resolved over the whole list before the Start event
	// is produced.
	ListStyle ListStyle
	ListStart int
	Tight     bool

	// Align and Head describe TableCellKind events;
	// Head is also set on TableRowKind events for header rows.
	Align Alignment
	Head  bool
}

// Cloned returns a deep copy of the event
// whose payloads do not alias the parser's source buffer.
func (ev Event) Cloned() Event {
	ev.Text = cloneBytes(ev.Text)
	ev.Lang = cloneBytes(ev.Lang)
	ev.Class = cloneBytes(ev.Class)
	ev.Dest = cloneBytes(ev.Dest)
	if ev.Attrs != nil {
		ev.Attrs = ev.Attrs.Clone()
	}
	return ev
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (ev Event) String() string {
	switch ev.Pos {
	case PosStart:
		return fmt.Sprintf("Start(%v)%v", ev.Kind, ev.Span)
	case PosEnd:
		return fmt.Sprintf("End(%v)%v", ev.Kind, ev.Span)
	default:
		if len(ev.Text) > 0 {
			return fmt.Sprintf("%v(%q)%v", ev.Kind, ev.Text, ev.Span)
		}
		return fmt.Sprintf("%v%v", ev.Kind, ev.Span)
	}
}
