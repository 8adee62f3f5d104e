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

import "errors"

// SkipChildren can be returned from a [Walk] callback on a start event
// to skip past the container's contents.
var SkipChildren = errors.New("skip children")

// Walk calls fn for every remaining event of p.
// If fn returns [SkipChildren] on a start event,
// Walk consumes events through the matching end event
// without calling fn for them.
// Any other non-nil error stops the walk and is returned.
func Walk(p *Parser, fn func(ev Event) error) error {
	for {
		ev, ok := p.Next()
		if !ok {
			return nil
		}
		switch err := fn(ev); {
		case errors.Is(err, SkipChildren):
			if ev.Pos == PosStart {
				skipContainer(p)
			}
		case err != nil:
			return err
		}
	}
}

func skipContainer(p *Parser) {
	depth := 1
	for depth > 0 {
		ev, ok := p.Next()
		if !ok {
			return
		}
		switch ev.Pos {
		case PosStart:
			depth++
		case PosEnd:
			depth--
		}
	}
}

// Collect drains p and returns its remaining events.
func Collect(p *Parser) []Event {
	var events []Event
	for {
		ev, ok := p.Next()
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}
