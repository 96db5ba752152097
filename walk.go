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

// A Cursor describes a node during a [Walk].
type Cursor struct {
	stack []Node
}

// Node returns the node the cursor is positioned at.
func (c *Cursor) Node() Node {
	return c.stack[len(c.stack)-1]
}

// Parent returns the parent of the current node
// or the zero Node if the cursor is at the walk's root.
func (c *Cursor) Parent() Node {
	if len(c.stack) < 2 {
		return Node{}
	}
	return c.stack[len(c.stack)-2]
}

// Depth returns the number of ancestors between
// the current node and the walk's root.
func (c *Cursor) Depth() int {
	return len(c.stack) - 1
}

// WalkOptions holds the callbacks for a [Walk].
type WalkOptions struct {
	// Pre is called before the node's children are visited.
	// If Pre returns false, the children are skipped.
	// May be nil.
	Pre func(c *Cursor) bool
	// Post is called after the node's children are visited.
	// If Post returns false, the walk stops.
	// May be nil.
	Post func(c *Cursor) bool
}

// Walk traverses the tree rooted at the given node in depth-first order.
func Walk(node Node, opts *WalkOptions) {
	c := &Cursor{stack: []Node{node}}
	c.walk(opts)
}

func (c *Cursor) walk(opts *WalkOptions) bool {
	if opts.Pre == nil || opts.Pre(c) {
		n := c.Node()
		for i := 0; i < n.ChildCount(); i++ {
			c.stack = append(c.stack, n.Child(i))
			keepGoing := c.walk(opts)
			c.stack = c.stack[:len(c.stack)-1]
			if !keepGoing {
				return false
			}
		}
	}
	return opts.Post == nil || opts.Post(c)
}
