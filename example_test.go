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

package jotdown_test

import (
	"fmt"
	"os"

	"github.com/clbarnes/jotdown"
)

func ExampleParse() {
	p := jotdown.Parse([]byte("# Greetings\n\nHello, _world_!\n"))
	if err := jotdown.RenderHTML(os.Stdout, p); err != nil {
		fmt.Println(err)
	}
	// Output:
	// <h1>Greetings</h1>
	// <p>Hello, <em>world</em>!</p>
}

func ExampleParser_Next() {
	p := jotdown.Parse([]byte("*hi*\n"))
	for {
		ev, ok := p.Next()
		if !ok {
			break
		}
		fmt.Printf("%v %v %v\n", ev.Pos, ev.Kind, ev.Span)
	}
	// Output:
	// Start Paragraph [0,5)
	// Start Strong [0,1)
	// Atom Text [1,3)
	// End Strong [3,4)
	// End Paragraph [5,5)
}
