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

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"foo", "foo"},
		{"FOO", "foo"},
		{"Straße", "strasse"},
		{"  foo  bar ", "foo bar"},
		{"foo\t\nbar", "foo bar"},
		{"", ""},
		{"   ", ""},
	}
	for _, test := range tests {
		if got := NormalizeLabel(test.label); got != test.want {
			t.Errorf("NormalizeLabel(%q) = %q; want %q", test.label, got, test.want)
		}
	}
}

func TestReferenceMapInsert(t *testing.T) {
	m := make(ReferenceMap)
	m.insert("Foo", LinkDefinition{Destination: "/one"})
	m.insert("foo", LinkDefinition{Destination: "/two"})
	m.insert("  ", LinkDefinition{Destination: "/blank"})

	if len(m) != 1 {
		t.Fatalf("len(m) = %d; want 1", len(m))
	}
	def, ok := m.Lookup("FOO ")
	if !ok {
		t.Fatal(`Lookup("FOO ") not found`)
	}
	if def.Destination != "/one" {
		t.Errorf("Destination = %q; want %q (first definition wins)", def.Destination, "/one")
	}
	if !m.MatchReference("foo") {
		t.Error(`MatchReference("foo") = false`)
	}
	if m.MatchReference("bar") {
		t.Error(`MatchReference("bar") = true`)
	}
}

func TestParserReferences(t *testing.T) {
	const source = "[A Label]: /dest {.cls}\n\ntext\n"
	refs := Parse([]byte(source)).References()
	def, ok := refs.Lookup("a  label")
	if !ok {
		t.Fatal("definition not found")
	}
	if def.Destination != "/dest" {
		t.Errorf("Destination = %q; want %q", def.Destination, "/dest")
	}
	if got := def.Attrs.Classes(); len(got) != 1 || got[0] != "cls" {
		t.Errorf("Attrs.Classes() = %q; want [cls]", got)
	}
}
