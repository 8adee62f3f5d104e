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

import "strings"

// attrClassKey and attrIDKey are the reserved keys
// that ".class" and "#id" shorthands expand to.
const (
	attrClassKey = "class"
	attrIDKey    = "id"
)

// An Attribute is a single key/value pair within an [Attributes] set.
// Class entries use the key "class" and identifier entries the key "id".
type Attribute struct {
	Key   string
	Value string
}

// Attributes is an ordered attribute set attached to one element.
//
// Classes keep their order and may repeat.
// The identifier and ordinary keys are unique:
// a later occurrence overwrites the value of an earlier one in place
// (for the identifier, the last one wins).
type Attributes struct {
	entries []Attribute
}

// Len returns the number of entries, counting repeated classes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// Entries returns the entries in insertion order.
// The caller must not modify the returned slice.
func (a *Attributes) Entries() []Attribute {
	if a == nil {
		return nil
	}
	return a.entries
}

// Classes returns all class values in order.
func (a *Attributes) Classes() []string {
	if a == nil {
		return nil
	}
	var classes []string
	for _, e := range a.entries {
		if e.Key == attrClassKey {
			classes = append(classes, e.Value)
		}
	}
	return classes
}

// ID returns the identifier or the empty string if none is set.
func (a *Attributes) ID() string {
	v, _ := a.Get(attrIDKey)
	return v
}

// Get returns the value for the given key.
// For the "class" key it returns the first class.
func (a *Attributes) Get(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	for _, e := range a.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the attribute set.
// Cloning nil returns nil.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return nil
	}
	entries := make([]Attribute, len(a.entries))
	copy(entries, a.entries)
	return &Attributes{entries: entries}
}

// add inserts a key/value pair following the overwrite rules:
// classes accumulate, everything else overwrites in place.
func (a *Attributes) add(key, value string) {
	if key != attrClassKey {
		for i := range a.entries {
			if a.entries[i].Key == key {
				a.entries[i].Value = value
				return
			}
		}
	}
	a.entries = append(a.entries, Attribute{Key: key, Value: value})
}

// merge appends all of src's entries under the same overwrite rules.
func (a *Attributes) merge(src *Attributes) {
	if src == nil {
		return
	}
	for _, e := range src.entries {
		a.add(e.Key, e.Value)
	}
}

// mergeAttributes combines two attribute sets into a new set,
// with entries of b taking precedence over entries of a.
// It returns nil if both are empty.
func mergeAttributes(a, b *Attributes) *Attributes {
	if a.Len() == 0 && b.Len() == 0 {
		return nil
	}
	merged := new(Attributes)
	merged.merge(a)
	merged.merge(b)
	return merged
}

// parseAttributes parses a "{...}" attribute block at source[start].
// It returns the parsed set and the position just past the closing brace.
// ok is false if source[start:] does not begin a well-formed attribute
// block ending at or before limit; the caller is expected to fall back to
// treating the text literally.
func parseAttributes(source []byte, start, limit int) (attrs *Attributes, end int, ok bool) {
	if start >= limit || source[start] != '{' {
		return nil, start, false
	}
	attrs = new(Attributes)
	pos := start + 1
	for {
		pos = skipAttrSpace(source, pos, limit)
		if pos >= limit {
			return nil, start, false
		}
		switch source[pos] {
		case '}':
			return attrs, pos + 1, true
		case '.':
			word, next := scanAttrWord(source, pos+1, limit)
			if word == "" {
				return nil, start, false
			}
			attrs.add(attrClassKey, word)
			pos = next
		case '#':
			word, next := scanAttrWord(source, pos+1, limit)
			if word == "" {
				return nil, start, false
			}
			attrs.add(attrIDKey, word)
			pos = next
		case '%':
			// Comment: skipped entirely.
			pos++
			for pos < limit && source[pos] != '%' && source[pos] != '}' {
				pos++
			}
			if pos >= limit {
				return nil, start, false
			}
			if source[pos] == '%' {
				pos++
			}
		default:
			key, next := scanAttrKey(source, pos, limit)
			if key == "" || next >= limit || source[next] != '=' {
				return nil, start, false
			}
			value, next, valueOK := scanAttrValue(source, next+1, limit)
			if !valueOK {
				return nil, start, false
			}
			attrs.add(key, value)
			pos = next
		}
	}
}

// parseBlockAttributes parses a standalone attribute line.
// The entire line (minus trailing whitespace) must be a single
// attribute block; anything else degrades to paragraph text.
func parseBlockAttributes(line []byte) (*Attributes, bool) {
	attrs, end, ok := parseAttributes(line, 0, len(line))
	if !ok {
		return nil, false
	}
	for _, b := range line[end:] {
		if !isSpaceTabOrLineEnding(b) {
			return nil, false
		}
	}
	return attrs, true
}

func skipAttrSpace(source []byte, pos, limit int) int {
	for pos < limit && isSpaceTabOrLineEnding(source[pos]) {
		pos++
	}
	return pos
}

// scanAttrWord consumes a class or identifier word.
func scanAttrWord(source []byte, pos, limit int) (word string, end int) {
	start := pos
	for pos < limit && isAttrWordByte(source[pos]) {
		pos++
	}
	return string(source[start:pos]), pos
}

// scanAttrKey consumes a key name: ASCII letters, digits, and [:_-].
func scanAttrKey(source []byte, pos, limit int) (key string, end int) {
	start := pos
	for pos < limit && isAttrKeyByte(source[pos]) {
		pos++
	}
	return string(source[start:pos]), pos
}

// scanAttrValue consumes a bare word or a double-quoted string.
// Backslash escapes inside quoted values are resolved,
// so the returned value is always an owned string.
func scanAttrValue(source []byte, pos, limit int) (value string, end int, ok bool) {
	if pos >= limit {
		return "", pos, false
	}
	if source[pos] != '"' {
		start := pos
		for pos < limit && isAttrWordByte(source[pos]) {
			pos++
		}
		if pos == start {
			return "", pos, false
		}
		return string(source[start:pos]), pos, true
	}

	pos++
	var sb strings.Builder
	for pos < limit {
		switch source[pos] {
		case '"':
			return sb.String(), pos + 1, true
		case '\\':
			if pos+1 < limit && (source[pos+1] == '"' || source[pos+1] == '\\') {
				sb.WriteByte(source[pos+1])
				pos += 2
				continue
			}
			sb.WriteByte('\\')
			pos++
		default:
			sb.WriteByte(source[pos])
			pos++
		}
	}
	return "", pos, false
}

func isAttrWordByte(b byte) bool {
	return !isSpaceTabOrLineEnding(b) && b != '{' && b != '}' && b != '"' && b != '%' && b != '='
}

func isAttrKeyByte(b byte) bool {
	return b == '-' || b == '_' || b == ':' ||
		'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9'
}
