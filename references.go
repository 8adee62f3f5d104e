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
	"strings"

	"golang.org/x/text/cases"
)

// A type that implements ReferenceMatcher
// can be checked for the presence of link reference definitions.
type ReferenceMatcher interface {
	MatchReference(normalizedLabel string) bool
}

// LinkDefinition is the data of a link reference definition.
// Attrs carries any attributes given on the definition;
// they apply to every link or image resolved through it.
type LinkDefinition struct {
	Destination string
	Attrs       *Attributes
}

// ReferenceMap is a mapping of normalized labels to link definitions.
// It is populated during block discovery and read-only afterward,
// so parser clones share a single map.
type ReferenceMap map[string]LinkDefinition

// MatchReference reports whether the normalized label appears in the map.
func (m ReferenceMap) MatchReference(normalizedLabel string) bool {
	_, ok := m[normalizedLabel]
	return ok
}

// Lookup returns the definition for a label,
// normalizing it first.
func (m ReferenceMap) Lookup(label string) (LinkDefinition, bool) {
	def, ok := m[NormalizeLabel(label)]
	return def, ok
}

// insert adds a definition under its normalized label.
// In case of conflicts the first definition in source order wins.
func (m ReferenceMap) insert(label string, def LinkDefinition) {
	normalized := NormalizeLabel(label)
	if normalized == "" {
		return
	}
	if _, exists := m[normalized]; exists {
		return
	}
	m[normalized] = def
}

// NormalizeLabel converts a reference label to its lookup form:
// ASCII whitespace runs collapse to a single space,
// leading and trailing whitespace is trimmed,
// and the result is Unicode case-folded.
func NormalizeLabel(label string) string {
	fields := strings.FieldsFunc(label, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return ""
	}
	return cases.Fold().String(strings.Join(fields, " "))
}
