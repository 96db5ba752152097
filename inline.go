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

// Inline represents MyST content elements like text, links, or emphasis.
type Inline struct {
	kind     InlineKind
	span     Span
	children []*Inline

	literal     string // overrides Text when non-empty: escapes, code, math, line joins, image alt
	destination string // link destination or image source
	label       string // cross-reference target or image label
	identifier  string // footnote or glossary reference key
	keys        []string
	prefix      string
	suffix      string
	ordinal     int // assigned during the cross-reference pass
}

// Kind returns the type of inline node
// or zero if the node is nil.
func (inline *Inline) Kind() InlineKind {
	if inline == nil {
		return 0
	}
	return inline.kind
}

// Span returns the inline's position in the document source
// or an invalid span if the node is nil.
func (inline *Inline) Span() Span {
	if inline == nil {
		return NullSpan()
	}
	return inline.span
}

// Text converts a non-container inline node into a string.
func (inline *Inline) Text(source []byte) string {
	switch inline.Kind() {
	case 0:
		return ""
	case TextKind, EscapedKind, CodeSpanKind, InlineMathKind, ImageKind:
		if inline.literal != "" {
			return inline.literal
		}
		if inline.kind == ImageKind {
			return ""
		}
		return string(source[inline.span.Start:inline.span.End])
	default:
		return ""
	}
}

// Children returns the node's children.
func (inline *Inline) Children() []*Inline {
	if inline == nil {
		return nil
	}
	return inline.children
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (inline *Inline) ChildCount() int {
	if inline == nil {
		return 0
	}
	return len(inline.children)
}

// Child returns the i'th child of the node.
func (inline *Inline) Child(i int) *Inline {
	return inline.children[i]
}

// Destination returns the target of a [LinkKind] node
// or the source path of an [ImageKind] node.
func (inline *Inline) Destination() string {
	if inline == nil {
		return ""
	}
	return inline.destination
}

// Label returns the target label of a [CrossRefKind] node
// or the label of a labeled [ImageKind] node.
func (inline *Inline) Label() string {
	if inline == nil {
		return ""
	}
	return inline.label
}

// Identifier returns the key of a [FootnoteRefKind] or [TermRefKind] node.
func (inline *Inline) Identifier() string {
	if inline == nil {
		return ""
	}
	return inline.identifier
}

// Keys returns the citation keys of a [CitationKind] node in source order.
func (inline *Inline) Keys() []string {
	if inline == nil {
		return nil
	}
	return inline.keys
}

// Prefix returns the free text captured before the first key
// of a bracketed [CitationKind] node.
func (inline *Inline) Prefix() string {
	if inline == nil {
		return ""
	}
	return inline.prefix
}

// Suffix returns the free text captured after the last key
// of a bracketed [CitationKind] node.
func (inline *Inline) Suffix() string {
	if inline == nil {
		return ""
	}
	return inline.suffix
}

// Ordinal returns the number assigned to the node's target
// by the cross-reference pass,
// or zero if the node is unresolved or of a kind that is not numbered.
func (inline *Inline) Ordinal() int {
	if inline == nil {
		return 0
	}
	return inline.ordinal
}

// AsNode converts the inline node to a [Node] pointer.
func (inline *Inline) AsNode() Node {
	if inline == nil {
		return Node{}
	}
	return Node{inline: inline}
}

// InlineKind is an enumeration of values returned by [*Inline.Kind].
type InlineKind uint16

const (
	TextKind InlineKind = 1 + iota
	EmphasisKind
	StrongKind
	StrikethroughKind
	EscapedKind
	SubscriptKind
	SuperscriptKind
	CodeSpanKind
	InlineMathKind
	LinkKind
	ImageKind
	FootnoteRefKind
	CitationKind
	TermRefKind
	CrossRefKind

	// UnparsedKind is used for inline text that has not been tokenized.
	UnparsedKind
)

var inlineKindNames = map[InlineKind]string{
	TextKind:          "TextKind",
	EmphasisKind:      "EmphasisKind",
	StrongKind:        "StrongKind",
	StrikethroughKind: "StrikethroughKind",
	EscapedKind:       "EscapedKind",
	SubscriptKind:     "SubscriptKind",
	SuperscriptKind:   "SuperscriptKind",
	CodeSpanKind:      "CodeSpanKind",
	InlineMathKind:    "InlineMathKind",
	LinkKind:          "LinkKind",
	ImageKind:         "ImageKind",
	FootnoteRefKind:   "FootnoteRefKind",
	CitationKind:      "CitationKind",
	TermRefKind:       "TermRefKind",
	CrossRefKind:      "CrossRefKind",
	UnparsedKind:      "UnparsedKind",
}

// String returns the kind as a Go constant name like "TextKind".
func (kind InlineKind) String() string {
	if s, ok := inlineKindNames[kind]; ok {
		return s
	}
	return "InlineKind(?)"
}
