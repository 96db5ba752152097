// Copyright 2025 Ross Light
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

package mystmark_test

import (
	"fmt"
	"os"

	"zombiezen.com/go/mystmark"
)

func ExampleParse() {
	source := []byte("# Greetings\n\nHello, **World**!\n")
	doc := mystmark.Parse(source, nil)
	if err := mystmark.RenderHTML(os.Stdout, doc); err != nil {
		panic(err)
	}
	// Output:
	// <h1>Greetings</h1>
	// <p>Hello, <strong>World</strong>!</p>
}

func ExampleDocument_Labels() {
	source := []byte("```{figure} cat.png\n:label: fig-cat\n```\n")
	doc := mystmark.Parse(source, nil)
	for _, label := range doc.Labels().Labels() {
		entry, _ := doc.Labels().Lookup(label)
		fmt.Printf("%s %d: %s\n", entry.Kind, entry.Ordinal, label)
	}
	// Output:
	// figure 1: fig-cat
}

func ExampleWalk() {
	source := []byte("See [](#fig) and [](#eq).\n")
	doc := mystmark.Parse(source, nil)
	mystmark.Walk(doc.AsNode(), &mystmark.WalkOptions{
		Pre: func(c *mystmark.Cursor) bool {
			if inline := c.Node().Inline(); inline.Kind() == mystmark.CrossRefKind {
				fmt.Println(inline.Label())
			}
			return true
		},
	})
	// Output:
	// fig
	// eq
}
