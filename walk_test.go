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

package mystmark

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWalk(t *testing.T) {
	doc := Parse([]byte("# Hi\n\n> *x*\n"), nil)

	t.Run("PreOrder", func(t *testing.T) {
		var got []string
		Walk(doc.AsNode(), &WalkOptions{Pre: func(c *Cursor) bool {
			if b := c.Node().Block(); b != nil {
				got = append(got, b.Kind().String())
			} else {
				got = append(got, c.Node().Inline().Kind().String())
			}
			return true
		}})
		want := []string{
			"documentKind",
			"HeadingKind", "TextKind",
			"BlockQuoteKind", "ParagraphKind", "EmphasisKind", "TextKind",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("visit order (-want +got):\n%s", diff)
		}
	})

	t.Run("PreFalseSkipsChildren", func(t *testing.T) {
		var got []BlockKind
		Walk(doc.AsNode(), &WalkOptions{Pre: func(c *Cursor) bool {
			b := c.Node().Block()
			if b != nil {
				got = append(got, b.Kind())
			}
			return b.Kind() != BlockQuoteKind
		}})
		want := []BlockKind{documentKind, HeadingKind, BlockQuoteKind}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("visited blocks (-want +got):\n%s", diff)
		}
	})

	t.Run("PostFalseStops", func(t *testing.T) {
		visits := 0
		Walk(doc.AsNode(), &WalkOptions{Post: func(c *Cursor) bool {
			visits++
			return false
		}})
		if visits != 1 {
			t.Errorf("Post called %d times; want 1", visits)
		}
	})

	t.Run("CursorParent", func(t *testing.T) {
		Walk(doc.AsNode(), &WalkOptions{Pre: func(c *Cursor) bool {
			if b := c.Node().Block(); b.Kind() == ParagraphKind {
				if parent := c.Parent().Block(); parent.Kind() != BlockQuoteKind {
					t.Errorf("paragraph parent = %v; want BlockQuoteKind", parent.Kind())
				}
				if c.Depth() != 2 {
					t.Errorf("paragraph depth = %d; want 2", c.Depth())
				}
			}
			return true
		}})
	})
}
